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

// Package content generates PDF content streams for ink and shape markup.
//
// All numbers are written with exactly two digits after the decimal point
// and a '.' as the decimal separator.  Scientific notation is never used.
package content

import (
	"bytes"
	"math"
	"strconv"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/markup"
)

// Format formats a number for use in a content stream.
// Non-finite values are written as 0.00.
func Format(x float64) string {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return "0.00"
	}
	s := strconv.FormatFloat(x, 'f', 2, 64)
	if s == "-0.00" {
		return "0.00"
	}
	return s
}

// Flip returns the transformation from caller space (origin at the top-left
// of the page, y pointing down) to PDF user space.  The drift is added to
// all y coordinates after flipping:
//
//	pdf_x = bounds.LLx + x
//	pdf_y = bounds.URy - y + drift
func Flip(bounds rect.Rect, drift float64) matrix.Matrix {
	return matrix.Matrix{1, 0, 0, -1, bounds.LLx, bounds.URy + drift}
}

// Shift returns m followed by a translation by (-dx, -dy).
func Shift(m matrix.Matrix, dx, dy float64) matrix.Matrix {
	m[4] -= dx
	m[5] -= dy
	return m
}

// Apply applies the transformation m to the point p.
func Apply(m matrix.Matrix, p vec.Vec2) vec.Vec2 {
	return vec.Vec2{
		X: m[0]*p.X + m[2]*p.Y + m[4],
		Y: m[1]*p.X + m[3]*p.Y + m[5],
	}
}

// Build generates a content stream which strokes all drawable items.
// Points are mapped through m before they are written.
//
// If gs is not empty, highlighter items select the ExtGState resource of
// this name.  Each such item then has its own q/Q pair, so that the
// transparency does not carry over to later items.
//
// Items which have no points or contain non-finite coordinates are
// silently skipped.  If no items remain, Build returns nil.
func Build(items []markup.Item, m matrix.Matrix, gs string) []byte {
	w := &writer{}
	started := false
	for _, it := range items {
		if !it.IsDrawable() {
			continue
		}
		if !started {
			w.op("q")
			w.op("1 J")
			w.op("1 j")
			started = true
		}

		translucent := it.Highlighter && gs != ""
		if translucent {
			w.op("q")
		}

		c := it.Color.Clamped()
		w.nums(c.R, c.G, c.B)
		w.op("RG")
		w.nums(max(it.Width, 0))
		w.op("w")
		if translucent {
			w.name(gs)
			w.op("gs")
		}

		first := Apply(m, it.Points[0])
		w.nums(first.X, first.Y)
		w.op("m")
		if len(it.Points) == 1 {
			// a single tap is drawn as a dot, using the round cap
			w.nums(first.X, first.Y)
			w.op("l")
		}
		for _, p := range it.Points[1:] {
			q := Apply(m, p)
			w.nums(q.X, q.Y)
			w.op("l")
		}
		w.op("S")

		if translucent {
			w.op("Q")
		}
	}
	if !started {
		return nil
	}
	w.op("Q")
	return w.Bytes()
}

// Paint generates a content stream fragment which paints the named
// XObject, after concatenating m to the current transformation matrix.
// If gs is not empty, the named graphics state is selected first.
func Paint(name string, m matrix.Matrix, gs string) []byte {
	w := &writer{}
	w.op("q")
	if gs != "" {
		w.name(gs)
		w.op("gs")
	}
	w.nums(m[:]...)
	w.op("cm")
	w.name(name)
	w.op("Do")
	w.op("Q")
	return w.Bytes()
}

// writer accumulates content stream operators.  Operands are collected on
// the current line until an operator terminates it.
type writer struct {
	bytes.Buffer
	inLine bool
}

func (w *writer) sep() {
	if w.inLine {
		w.WriteByte(' ')
	}
	w.inLine = true
}

func (w *writer) nums(xs ...float64) {
	for _, x := range xs {
		w.sep()
		w.WriteString(Format(x))
	}
}

func (w *writer) name(n string) {
	w.sep()
	w.WriteByte('/')
	w.WriteString(n)
}

func (w *writer) op(op string) {
	w.sep()
	w.WriteString(op)
	w.WriteByte('\n')
	w.inLine = false
}
