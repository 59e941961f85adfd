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

package pdfdoc

import (
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/pdf"
)

// Page is a single page of a [Document].
//
// Changes to the page dictionary are stored in the document by
// [Page.Commit].  Page methods never modify objects which may be shared with other pages:
// inherited or indirect resource dictionaries are copied into the page
// before they are changed.
type Page struct {
	// Index is the zero-based page number.
	Index int

	// Ref is the reference of the page dictionary.
	Ref pdf.Reference

	// Dict is the page dictionary.
	Dict pdf.Dict

	// Bounds is the visible area of the page in PDF user space.
	// This is the crop box if present, and the media box otherwise.
	Bounds rect.Rect

	doc          *Document
	inheritedRes pdf.Object
	res          pdf.Dict
}

// Doc returns the document the page belongs to.
func (p *Page) Doc() *Document {
	return p.doc
}

func (p *Page) bounds(inherited pdf.Dict) (rect.Rect, error) {
	var lastErr error
	for _, key := range []pdf.Name{"CropBox", "MediaBox"} {
		obj, ok := p.Dict[key]
		if !ok {
			obj, ok = inherited[key]
		}
		if !ok {
			continue
		}
		r, err := p.doc.GetRect(obj)
		if err != nil {
			lastErr = err
			continue
		}
		if r.URx > r.LLx && r.URy > r.LLy {
			return r, nil
		}
	}
	if lastErr != nil {
		return rect.Rect{}, lastErr
	}
	return defaultMediaBox, nil
}

// Resources returns the resource dictionary of the page.  If the page has
// no resource dictionary, an empty one is created.  The returned dictionary
// is stored directly inside the page dictionary and can be modified freely.
// This includes the category dictionaries stored directly inside it, which
// are copied as well, since the resource dictionary may be shared with
// other pages.
func (p *Page) Resources() (pdf.Dict, error) {
	if p.res != nil {
		return p.res, nil
	}

	obj, ok := p.Dict["Resources"]
	if !ok {
		obj = p.inheritedRes
	}
	res, err := p.doc.GetDict(obj)
	if err != nil {
		return nil, err
	}
	res = clone(res)
	for key, val := range res {
		if cat, isDict := val.(pdf.Dict); isDict {
			res[key] = clone(cat)
		}
	}
	p.Dict["Resources"] = res
	p.res = res
	return res, nil
}

// Annots returns the annotation array of the page.
// The result must not be modified in place; use [Page.SetAnnots].
func (p *Page) Annots() (pdf.Array, error) {
	return p.doc.GetArray(p.Dict["Annots"])
}

// SetAnnots replaces the annotation array of the page.  An empty array
// removes the /Annots entry.
func (p *Page) SetAnnots(annots pdf.Array) {
	if len(annots) == 0 {
		delete(p.Dict, "Annots")
		return
	}
	p.Dict["Annots"] = annots
}

// AddAnnotation stores the annotation dictionary as a new indirect object
// and appends it to the annotation array of the page.
func (p *Page) AddAnnotation(annot pdf.Dict) (pdf.Reference, error) {
	annots, err := p.Annots()
	if err != nil {
		return 0, err
	}
	annot["P"] = p.Ref
	ref, err := p.doc.Add(annot)
	if err != nil {
		return 0, err
	}

	res := make(pdf.Array, 0, len(annots)+1)
	res = append(res, annots...)
	res = append(res, ref)
	p.SetAnnots(res)
	return ref, nil
}

// AppendContent adds a new content stream after the existing content of
// the page.  Existing content streams are kept.
func (p *Page) AppendContent(data []byte) error {
	ref, err := p.doc.NewStream(nil, data)
	if err != nil {
		return err
	}
	streams, err := p.contentStreams()
	if err != nil {
		return err
	}
	p.setContents(append(streams, ref))
	return nil
}

// AppendIsolated adds a new content stream after the existing content of
// the page.  The existing content is enclosed in a q/Q pair first, so that
// graphics state changes left over at its end do not affect data.
func (p *Page) AppendIsolated(data []byte) error {
	streams, err := p.contentStreams()
	if err != nil {
		return err
	}
	if len(streams) == 0 {
		return p.AppendContent(data)
	}

	open, err := p.doc.NewStream(nil, []byte("q\n"))
	if err != nil {
		return err
	}
	body := make([]byte, 0, len(data)+2)
	body = append(body, "Q\n"...)
	body = append(body, data...)
	closeAndAppend, err := p.doc.NewStream(nil, body)
	if err != nil {
		return err
	}

	res := make(pdf.Array, 0, len(streams)+2)
	res = append(res, open)
	res = append(res, streams...)
	res = append(res, closeAndAppend)
	p.setContents(res)
	return nil
}

// contentStreams returns a fresh array holding the current content streams
// of the page.
func (p *Page) contentStreams() (pdf.Array, error) {
	obj, ok := p.Dict["Contents"]
	if !ok || obj == nil {
		return nil, nil
	}

	resolved, err := p.doc.Resolve(obj)
	if err != nil {
		return nil, err
	}
	switch x := resolved.(type) {
	case nil:
		return nil, nil
	case pdf.Array:
		return append(pdf.Array{}, x...), nil
	case *pdf.Stream:
		return pdf.Array{obj}, nil
	default:
		return nil, malformed("content stream", resolved)
	}
}

func (p *Page) setContents(streams pdf.Array) {
	if len(streams) == 1 {
		p.Dict["Contents"] = streams[0]
	} else {
		p.Dict["Contents"] = streams
	}
}

// Content returns the decoded content of all content streams of the page,
// concatenated and separated by newlines.
func (p *Page) Content() ([]byte, error) {
	streams, err := p.contentStreams()
	if err != nil {
		return nil, err
	}
	var res []byte
	for i, obj := range streams {
		data, err := p.doc.ReadStream(obj)
		if err != nil {
			return nil, err
		}
		if i > 0 {
			res = append(res, '\n')
		}
		res = append(res, data...)
	}
	return res, nil
}

// Commit stores the page dictionary back into the document.
func (p *Page) Commit() error {
	return p.doc.Put(p.Ref, p.Dict)
}

// defaultMediaBox is used for pages without a valid media box.
var defaultMediaBox = rect.Rect{URx: 612, URy: 792}
