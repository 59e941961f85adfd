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

import (
	"math"

	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/markup"
)

var strokeCases = []Case{
	{
		Name: "line",
		Page: small,
		Strokes: []markup.Stroke{
			{Points: pts(20, 100, 180, 100), Color: black, Width: 8},
		},
	},
	{
		Name: "corner",
		Page: small,
		Strokes: []markup.Stroke{
			{Points: pts(30, 160, 100, 40, 170, 160), Color: red, Width: 6},
		},
	},
	{
		Name: "three_points",
		Page: small,
		Strokes: []markup.Stroke{
			{Points: pts(10, 10, 20, 10, 20, 20), Color: black, Width: 2},
		},
	},
	{
		Name: "dot",
		Page: small,
		Strokes: []markup.Stroke{
			{Points: pts(100, 100), Color: blue, Width: 12},
		},
	},
	{
		Name: "zigzag",
		Page: small,
		Strokes: []markup.Stroke{
			{Points: zigzag(20, 100, 160, 8, 30), Color: black, Width: 3},
		},
	},
	{
		Name: "spiral",
		Page: small,
		Strokes: []markup.Stroke{
			{Points: spiral(pt(100, 100), 80, 4, 200), Color: blue, Width: 2.5},
		},
	},
	{
		Name: "hairline",
		Page: small,
		Strokes: []markup.Stroke{
			{Points: pts(10, 190, 190, 10), Color: black, Width: 0},
		},
	},
}

// zigzag builds a zigzag line starting at (x, y) with n teeth of the
// given height, spanning the given width.
func zigzag(x, y, width float64, n int, height float64) []vec.Vec2 {
	res := make([]vec.Vec2, 0, n+1)
	for i := range n + 1 {
		dy := height / 2
		if i%2 == 1 {
			dy = -dy
		}
		res = append(res, pt(x+width*float64(i)/float64(n), y+dy))
	}
	return res
}

// spiral builds an Archimedean spiral with the given number of turns,
// sampled at n points.
func spiral(center vec.Vec2, radius float64, turns float64, n int) []vec.Vec2 {
	res := make([]vec.Vec2, n)
	for i := range res {
		t := float64(i) / float64(n-1)
		angle := 2 * math.Pi * turns * t
		r := radius * t
		res[i] = pt(center.X+r*math.Cos(angle), center.Y+r*math.Sin(angle))
	}
	return res
}
