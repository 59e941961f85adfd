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

// Package testcases provides sample markup shared by the tests of several
// packages and by the tools in the subdirectories.
package testcases

import (
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/markup"
)

// Case is a page together with the markup drawn on it.
type Case struct {
	Name    string    // lowercase a-z and _ only
	Page    rect.Rect // page size in PDF units
	Strokes []markup.Stroke
	Shapes  []markup.Shape
}

// Items returns the number of strokes and shapes in the test case.
func (c Case) Items() int {
	return len(c.Strokes) + len(c.Shapes)
}

var (
	// small is the page size used by most test cases.
	small = rect.Rect{URx: 200, URy: 200}

	// rectLetter is the size of a US Letter page.
	rectLetter = rect.Rect{URx: 612, URy: 792}
)

var (
	black  = markup.Color{}
	red    = markup.Color{R: 1}
	blue   = markup.Color{B: 1}
	yellow = markup.Color{R: 1, G: 1}
)

// pt is a helper to create a vec.Vec2 from x, y coordinates.
func pt(x, y float64) vec.Vec2 {
	return vec.Vec2{X: x, Y: y}
}

// pts is a helper to create a point list from coordinate pairs.
func pts(xy ...float64) []vec.Vec2 {
	res := make([]vec.Vec2, len(xy)/2)
	for i := range res {
		res[i] = pt(xy[2*i], xy[2*i+1])
	}
	return res
}
