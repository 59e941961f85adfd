// seehuhn.de/go/markup - ink and shape annotations for PDF files
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package testcases

import "seehuhn.de/go/markup"

var shapeCases = []Case{
	{
		Name: "line",
		Page: small,
		Shapes: []markup.Shape{
			{Kind: markup.Line, From: pt(20, 20), To: pt(180, 180), Color: black, Width: 4},
		},
	},
	{
		Name: "arrow",
		Page: small,
		Shapes: []markup.Shape{
			{Kind: markup.Arrow, From: pt(20, 180), To: pt(180, 20), Color: red, Width: 3},
		},
	},
	{
		Name: "arrow_short",
		Page: small,
		Shapes: []markup.Shape{
			{Kind: markup.Arrow, From: pt(90, 100), To: pt(120, 100), Color: red, Width: 2},
		},
	},
	{
		Name: "rectangle",
		Page: small,
		Shapes: []markup.Shape{
			{Kind: markup.Rectangle, From: pt(30, 40), To: pt(170, 150), Color: blue, Width: 5},
		},
	},
	{
		Name: "circle",
		Page: small,
		Shapes: []markup.Shape{
			{Kind: markup.Circle, From: pt(20, 20), To: pt(180, 180), Color: black, Width: 3},
		},
	},
	{
		Name: "ellipse",
		Page: small,
		Shapes: []markup.Shape{
			{Kind: markup.Circle, From: pt(170, 60), To: pt(30, 140), Color: red, Width: 2},
		},
	},
	{
		Name: "degenerate_arrow",
		Page: small,
		Shapes: []markup.Shape{
			{Kind: markup.Arrow, From: pt(100, 100), To: pt(100, 100), Color: black, Width: 6},
		},
	},
}
