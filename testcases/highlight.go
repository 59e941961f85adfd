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

var highlightCases = []Case{
	{
		Name: "single",
		Page: small,
		Strokes: []markup.Stroke{
			{Points: pts(20, 60, 180, 60), Color: yellow, Width: 16, Highlighter: true},
		},
	},
	{
		Name: "overlap",
		Page: small,
		Strokes: []markup.Stroke{
			{Points: pts(20, 80, 180, 80), Color: yellow, Width: 16, Highlighter: true},
			{Points: pts(100, 20, 100, 180), Color: yellow, Width: 16, Highlighter: true},
		},
	},
	{
		Name: "over_ink",
		Page: small,
		Strokes: []markup.Stroke{
			{Points: pts(20, 100, 180, 100), Color: black, Width: 2},
			{Points: pts(20, 100, 180, 100), Color: yellow, Width: 14, Highlighter: true},
			{Points: pts(20, 130, 180, 130), Color: blue, Width: 2},
		},
	},
}

var mixedCases = []Case{
	{
		Name: "all_kinds",
		Page: rectLetter,
		Strokes: []markup.Stroke{
			{Points: pts(72, 72, 144, 90, 216, 72), Color: blue, Width: 2},
			{Points: pts(72, 120, 540, 120), Color: yellow, Width: 18, Highlighter: true},
		},
		Shapes: []markup.Shape{
			{Kind: markup.Line, From: pt(72, 200), To: pt(540, 200), Color: black, Width: 1},
			{Kind: markup.Arrow, From: pt(72, 300), To: pt(300, 400), Color: red, Width: 3},
			{Kind: markup.Rectangle, From: pt(320, 280), To: pt(540, 420), Color: blue, Width: 2},
			{Kind: markup.Circle, From: pt(100, 480), To: pt(300, 700), Color: red, Width: 4},
		},
	},
}
