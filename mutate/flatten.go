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

package mutate

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"slices"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf"

	"seehuhn.de/go/markup/content"
	"seehuhn.de/go/markup/pdfdoc"
	"seehuhn.de/go/markup/resources"
)

// flatten paints the normal appearance of every eligible annotation into
// the page content, and then removes these annotations.  Link and widget
// annotations, hidden annotations and annotations without an appearance
// stream are kept.
func (m *Mutator) flatten(p *pdfdoc.Page) (int, error) {
	doc := p.Doc()
	annots, err := p.Annots()
	if err != nil {
		return 0, err
	}
	if len(annots) == 0 {
		return 0, nil
	}

	prog := &bytes.Buffer{}
	var remove []int
	removed := make(map[pdf.Reference]bool)
	for i, obj := range annots {
		annot, err := doc.GetDict(obj)
		if err != nil || annot == nil {
			m.logger().Warn("skipping unreadable annotation", "page", p.Index, "item", i, "err", err)
			continue
		}
		subtype, _ := doc.GetName(annot["Subtype"])
		switch subtype {
		case "Link", "Widget", "Popup":
			continue
		}
		if flags, _ := doc.GetInt(annot["F"]); flags&flagHidden != 0 {
			continue
		}

		form, err := normalAppearance(doc, annot)
		if err != nil {
			m.logger().Warn("skipping annotation", "page", p.Index, "item", i,
				"subtype", string(subtype), "err", err)
			continue
		}
		place, err := placement(doc, form, annot["Rect"])
		if err != nil {
			m.logger().Warn("skipping annotation", "page", p.Index, "item", i,
				"subtype", string(subtype), "err", err)
			continue
		}

		res, err := p.Resources()
		if err != nil {
			return 0, err
		}
		name, err := resources.AddXObject(doc, res, "Fm", form)
		if err != nil {
			return 0, err
		}
		var gs pdf.Name
		if alpha, ok := opacity(doc, annot); ok {
			gs, err = resources.EnsureOpacity(doc, res, alpha)
			if err != nil {
				return 0, err
			}
		}
		prog.Write(content.Paint(string(name), place, string(gs)))

		remove = append(remove, i)
		if ref, isRef := obj.(pdf.Reference); isRef {
			removed[ref] = true
		}
	}
	if len(remove) == 0 {
		return 0, nil
	}
	n := len(remove)

	// pop-up windows of flattened annotations go with their parents
	for i, obj := range annots {
		annot, _ := doc.GetDict(obj)
		if annot == nil {
			continue
		}
		if subtype, _ := doc.GetName(annot["Subtype"]); subtype != "Popup" {
			continue
		}
		if parent, ok := annot["Parent"].(pdf.Reference); ok && removed[parent] {
			remove = append(remove, i)
			if ref, isRef := obj.(pdf.Reference); isRef {
				removed[ref] = true
			}
		}
	}

	if err := p.AppendIsolated(prog.Bytes()); err != nil {
		return 0, err
	}

	kept := slices.Clone(annots)
	slices.Sort(remove)
	for _, i := range slices.Backward(remove) {
		kept = slices.Delete(kept, i, i+1)
	}
	p.SetAnnots(kept)
	for ref := range removed {
		doc.Put(ref, nil)
	}

	return n, p.Commit()
}

// normalAppearance returns a reference to the normal appearance stream of
// an annotation.  If the normal appearance is a dictionary of appearance
// states, the state named by /AS is used.
func normalAppearance(doc *pdfdoc.Document, annot pdf.Dict) (pdf.Reference, error) {
	ap, err := doc.GetDict(annot["AP"])
	if err != nil {
		return 0, err
	}
	if ap == nil {
		return 0, errNoAppearance
	}

	n := ap["N"]
	resolved, err := doc.Resolve(n)
	if err != nil {
		return 0, err
	}
	if states, isDict := resolved.(pdf.Dict); isDict {
		state, err := doc.GetName(annot["AS"])
		if err != nil {
			return 0, err
		}
		if state == "" {
			return 0, errNoState
		}
		n = states[state]
		resolved, err = doc.Resolve(n)
		if err != nil {
			return 0, err
		}
	}

	stm, isStream := resolved.(*pdf.Stream)
	if !isStream {
		return 0, errNoAppearance
	}
	if subtype, _ := doc.GetName(stm.Dict["Subtype"]); subtype != "" && subtype != "Form" {
		return 0, fmt.Errorf("appearance has subtype /%s", subtype)
	}

	if ref, isRef := n.(pdf.Reference); isRef {
		return ref, nil
	}
	// streams should always be indirect, but some files get this wrong
	return doc.Add(stm)
}

// opacity returns the constant opacity of an annotation, given by its /CA
// entry.  The second result is false if the annotation is opaque.
func opacity(doc *pdfdoc.Document, annot pdf.Dict) (float64, bool) {
	obj, ok := annot["CA"]
	if !ok {
		return 1, false
	}
	alpha, err := doc.GetNumber(obj)
	if err != nil || !(alpha >= 0 && alpha < 1) {
		return 1, false
	}
	return alpha, true
}

// placement computes the transformation which maps the appearance stream of
// an annotation onto the annotation rectangle, as described in section
// 12.5.5 of ISO 32000-1.  The form matrix is applied by the Do operator, so
// the result only contains the mapping from the transformed bounding box
// to the rectangle.
func placement(doc *pdfdoc.Document, formRef pdf.Reference, rectObj pdf.Object) (matrix.Matrix, error) {
	form, err := doc.GetDict(formRef)
	if err != nil {
		return matrix.Matrix{}, err
	}
	bbox, err := doc.GetRect(form["BBox"])
	if err != nil {
		return matrix.Matrix{}, fmt.Errorf("appearance BBox: %w", err)
	}
	fm := matrix.Identity
	if obj, ok := form["Matrix"]; ok {
		x, err := doc.GetNumbers(obj, 6)
		if err != nil {
			return matrix.Matrix{}, fmt.Errorf("appearance Matrix: %w", err)
		}
		copy(fm[:], x)
	}
	r, err := doc.GetRect(rectObj)
	if err != nil {
		return matrix.Matrix{}, fmt.Errorf("annotation Rect: %w", err)
	}

	tb := transformRect(fm, bbox)
	bw := tb.URx - tb.LLx
	bh := tb.URy - tb.LLy
	if !(bw > eps && bh > eps) {
		return matrix.Matrix{}, errEmptyBBox
	}

	sx := (r.URx - r.LLx) / bw
	sy := (r.URy - r.LLy) / bh
	return matrix.Matrix{
		sx, 0,
		0, sy,
		r.LLx - sx*tb.LLx, r.LLy - sy*tb.LLy,
	}, nil
}

// transformRect returns the bounding box of the image of r under m.
func transformRect(m matrix.Matrix, r rect.Rect) rect.Rect {
	corners := [4]vec.Vec2{
		{X: r.LLx, Y: r.LLy},
		{X: r.URx, Y: r.LLy},
		{X: r.URx, Y: r.URy},
		{X: r.LLx, Y: r.URy},
	}
	res := rect.Rect{
		LLx: math.Inf(1), LLy: math.Inf(1),
		URx: math.Inf(-1), URy: math.Inf(-1),
	}
	for _, c := range corners {
		q := content.Apply(m, c)
		res.LLx = min(res.LLx, q.X)
		res.LLy = min(res.LLy, q.Y)
		res.URx = max(res.URx, q.X)
		res.URy = max(res.URy, q.Y)
	}
	return res
}

// eps is the smallest usable extent of a transformed bounding box.
const eps = 1e-6

var (
	errNoAppearance = errors.New("no appearance stream")
	errNoState      = errors.New("appearance state not selected")
	errEmptyBBox    = errors.New("appearance bounding box is empty")
)
