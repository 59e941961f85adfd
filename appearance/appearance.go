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

// Package appearance generates appearance streams for ink annotations.
//
// Viewers draw an annotation using the form XObject in its /AP /N entry.
// When annotations are created programmatically, this form must be
// supplied explicitly.
package appearance

import (
	"errors"
	"fmt"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf"

	"seehuhn.de/go/markup"
	"seehuhn.de/go/markup/content"
	"seehuhn.de/go/markup/geometry"
	"seehuhn.de/go/markup/resources"
)

// Store is the part of the document interface needed to create appearance
// streams.
type Store interface {
	resources.Resolver
	GetRect(obj pdf.Object) (rect.Rect, error)
	NewStream(dict pdf.Dict, data []byte) (pdf.Reference, error)
}

// FinalizeInk sets the /Rect and /InkList entries of an ink annotation from
// the item's points.  Points are mapped to PDF user space using toPDF.  The
// rectangle encloses all points, grown by half the line width on every
// side, and is never empty.
func FinalizeInk(annot pdf.Dict, item markup.Item, toPDF matrix.Matrix) rect.Rect {
	ink := make(pdf.Array, 0, 2*len(item.Points))
	pts := make([]vec.Vec2, 0, len(item.Points))
	for _, p := range item.Points {
		q := content.Apply(toPDF, p)
		pts = append(pts, q)
		ink = append(ink, pdf.Real(q.X), pdf.Real(q.Y))
	}

	r := geometry.Bounds(pts, max(item.Width, minWidth))
	annot["Rect"] = pdf.Array{
		pdf.Real(r.LLx), pdf.Real(r.LLy),
		pdf.Real(r.URx), pdf.Real(r.URy),
	}
	annot["InkList"] = pdf.Array{ink}
	return r
}

// Synthesize creates the normal appearance stream of an annotation which
// shows the given item, and stores it in the /AP entry of annot.
//
// The annotation's /Rect must already be set, since the form draws in
// coordinates relative to the lower-left corner of this rectangle.  Item
// points are mapped to PDF user space using toPDF.  For highlighter items,
// the form selects the Multiply blend mode without changing the opacity.
// The opacity of the highlighter is given by the /CA entry of the
// annotation, which viewers apply to the whole appearance.
//
// The form is not a transparency group: an isolated group would blend
// the highlighter with a transparent backdrop instead of the page.
func Synthesize(s Store, annot pdf.Dict, item markup.Item, toPDF matrix.Matrix) (pdf.Reference, error) {
	r, err := s.GetRect(annot["Rect"])
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrNoRect, err)
	}
	w := r.URx - r.LLx
	h := r.URy - r.LLy
	if !(w > 0 && h > 0) {
		return 0, ErrNoRect
	}

	form := pdf.Dict{
		"Type":     pdf.Name("XObject"),
		"Subtype":  pdf.Name("Form"),
		"FormType": pdf.Integer(1),
		"BBox":     pdf.Array{pdf.Integer(0), pdf.Integer(0), pdf.Real(w), pdf.Real(h)},
		"Matrix":   pdf.Array{pdf.Integer(1), pdf.Integer(0), pdf.Integer(0), pdf.Integer(1), pdf.Integer(0), pdf.Integer(0)},
	}

	var gs pdf.Name
	if item.Highlighter {
		res := pdf.Dict{}
		gs, err = resources.EnsureMultiply(s, res)
		if err != nil {
			return 0, err
		}
		form["Resources"] = res
	}

	m := content.Shift(toPDF, r.LLx, r.LLy)
	data := content.Build([]markup.Item{item}, m, string(gs))
	if data == nil {
		return 0, ErrEmpty
	}

	ref, err := s.NewStream(form, data)
	if err != nil {
		return 0, err
	}
	annot["AP"] = pdf.Dict{"N": ref}
	return ref, nil
}

// minWidth is the line width used for the annotation rectangle of
// hairlines, so that the rectangle is never empty.
const minWidth = 1

var (
	// ErrNoRect is returned by Synthesize if the annotation has no valid
	// rectangle.
	ErrNoRect = errors.New("annotation rectangle missing or empty")

	// ErrEmpty is returned by Synthesize if the item has nothing to draw.
	ErrEmpty = errors.New("nothing to draw")
)
