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

// Package sample generates small PDF documents for tests and tools.
package sample

import (
	"bytes"
	"os"

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/pdf"

	"seehuhn.de/go/markup/pdfdoc"
)

// Letter is the size of a US Letter page, in PDF units.
var Letter = rect.Rect{URx: 612, URy: 792}

// Page describes one page of a generated document.
type Page struct {
	MediaBox  rect.Rect // zero means [Letter]
	Content   string    // content stream, omitted if empty
	Resources pdf.Dict  // resource dictionary, omitted if nil
	Annots    []Annot
}

// Annot describes an annotation on a generated page.
type Annot struct {
	Subtype pdf.Name
	Rect    rect.Rect

	// Appearance is the content of the normal appearance stream.
	// If empty, the annotation has no appearance dictionary.
	Appearance string

	// BBox is the bounding box of the appearance stream.
	// The zero value means a box of the size of Rect, at the origin.
	BBox rect.Rect

	// Matrix is the form matrix of the appearance stream, if any.
	Matrix []float64

	// State, if set, turns /AP /N into a dictionary of appearance states
	// with entries State and /Off, and selects State via /AS.
	State pdf.Name

	// Flags is the value of the /F entry.
	Flags int
}

// Tree describes a generated document.
type Tree struct {
	// Resources, if set, is stored in the root of the page tree and is
	// inherited by all pages without their own resources.
	Resources pdf.Dict

	Pages []Page
}

// Encode generates a document with the given pages and returns the
// serialised PDF file.
func Encode(pages ...Page) ([]byte, error) {
	return Tree{Pages: pages}.Encode()
}

// New generates a document with the given pages.
func New(pages ...Page) (*pdfdoc.Document, error) {
	return Tree{Pages: pages}.Document()
}

// WriteFile generates a document with the given pages and writes it to
// the named file.
func WriteFile(path string, pages ...Page) error {
	data, err := Encode(pages...)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Document generates the document and reads it back.
func (t Tree) Document() (*pdfdoc.Document, error) {
	data, err := t.Encode()
	if err != nil {
		return nil, err
	}
	return pdfdoc.Read(bytes.NewReader(data))
}

// Encode generates the document and returns the serialised PDF file.
func (t Tree) Encode() ([]byte, error) {
	doc := pdfdoc.New(pdf.V1_7)
	defer doc.Close()

	if t.Resources != nil {
		ref, root, err := doc.PageTreeRoot()
		if err != nil {
			return nil, err
		}
		root["Resources"] = t.Resources
		if err := doc.Put(ref, root); err != nil {
			return nil, err
		}
	}

	for _, spec := range t.Pages {
		box := spec.MediaBox
		if box == (rect.Rect{}) {
			box = Letter
		}
		page, err := doc.AddPage(box)
		if err != nil {
			return nil, err
		}
		if spec.Resources != nil {
			page.Dict["Resources"] = spec.Resources
		}
		if spec.Content != "" {
			if err := page.AppendContent([]byte(spec.Content)); err != nil {
				return nil, err
			}
		}
		for _, a := range spec.Annots {
			dict, err := annotation(doc, a)
			if err != nil {
				return nil, err
			}
			if _, err := page.AddAnnotation(dict); err != nil {
				return nil, err
			}
		}
		if err := page.Commit(); err != nil {
			return nil, err
		}
	}

	buf := &bytes.Buffer{}
	if _, err := doc.WriteTo(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func annotation(doc *pdfdoc.Document, a Annot) (pdf.Dict, error) {
	dict := pdf.Dict{
		"Type":    pdf.Name("Annot"),
		"Subtype": a.Subtype,
		"Rect":    pdfdoc.RectArray(a.Rect),
	}
	if a.Flags != 0 {
		dict["F"] = pdf.Integer(a.Flags)
	}
	if a.Subtype == "Link" {
		dict["Border"] = pdf.Array{pdf.Integer(0), pdf.Integer(0), pdf.Integer(0)}
	}
	if a.Appearance == "" {
		return dict, nil
	}

	bbox := a.BBox
	if bbox == (rect.Rect{}) {
		bbox = rect.Rect{URx: a.Rect.URx - a.Rect.LLx, URy: a.Rect.URy - a.Rect.LLy}
	}
	form := pdf.Dict{
		"Type":     pdf.Name("XObject"),
		"Subtype":  pdf.Name("Form"),
		"FormType": pdf.Integer(1),
		"BBox":     pdfdoc.RectArray(bbox),
	}
	if a.Matrix != nil {
		m := make(pdf.Array, len(a.Matrix))
		for i, x := range a.Matrix {
			m[i] = pdf.Real(x)
		}
		form["Matrix"] = m
	}
	ref, err := doc.NewStream(form, []byte(a.Appearance))
	if err != nil {
		return nil, err
	}

	if a.State == "" {
		dict["AP"] = pdf.Dict{"N": ref}
		return dict, nil
	}

	off, err := doc.NewStream(form, nil)
	if err != nil {
		return nil, err
	}
	dict["AP"] = pdf.Dict{"N": pdf.Dict{a.State: ref, "Off": off}}
	dict["AS"] = a.State
	return dict, nil
}
