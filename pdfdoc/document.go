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

// Package pdfdoc provides an editable, in-memory view of a PDF document.
//
// A [Document] holds the complete object graph of a PDF file.  Objects are
// addressed by indirect references and looked up with [Document.Resolve].
// Changes are made to the in-memory graph and only reach the file system
// when [Document.Save] is called.
//
// Dictionaries and arrays returned by the lookup methods may be copies of
// the stored objects.  Modified objects are stored with [Document.Put].
package pdfdoc

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mattetti/filebuffer"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/pdf"
)

// Document is a PDF document loaded into memory.
// A Document must not be used concurrently from multiple goroutines.
type Document struct {
	// Path is the file the document was opened from, if any.
	Path string

	// Compress controls whether new content streams are compressed.
	Compress bool

	data  *pdf.Data
	pages []pageInfo
}

// pageInfo records a page reference together with the inheritable
// attributes collected from its ancestors in the page tree.
type pageInfo struct {
	ref       pdf.Reference
	inherited pdf.Dict
}

// Open reads the PDF file at the given path into memory.
// The file is closed before Open returns.
func Open(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := Read(filebuffer.New(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	doc.Path = path
	return doc, nil
}

// Read reads a PDF document from r.
func Read(r io.ReadSeeker) (*Document, error) {
	data, err := pdf.Read(r, nil)
	if err != nil {
		return nil, err
	}
	doc := &Document{data: data}
	if err := doc.findPages(); err != nil {
		return nil, err
	}
	return doc, nil
}

// New creates an empty document with an empty page tree.
func New(v pdf.Version) *Document {
	data := pdf.NewData(v)
	doc := &Document{data: data}

	pagesRef := data.Alloc()
	data.Put(pagesRef, pdf.Dict{
		"Type":  pdf.Name("Pages"),
		"Kids":  pdf.Array{},
		"Count": pdf.Integer(0),
	})
	data.GetMeta().Catalog.Pages = pagesRef
	return doc
}

// NumPages returns the number of pages in the document.
func (d *Document) NumPages() int {
	return len(d.pages)
}

// Page returns the page with the given zero-based index.
func (d *Document) Page(i int) (*Page, error) {
	if i < 0 || i >= len(d.pages) {
		return nil, fmt.Errorf("page %d: %w", i, ErrPageRange)
	}
	info := d.pages[i]
	dict, err := d.GetDict(info.ref)
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", i, err)
	}
	if dict == nil {
		return nil, fmt.Errorf("page %d: %w", i, errMissingPage)
	}

	p := &Page{
		Index: i,
		Ref:   info.ref,
		Dict:  dict,
		doc:   d,
	}
	p.Bounds, err = p.bounds(info.inherited)
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", i, err)
	}
	if _, hasRes := dict["Resources"]; !hasRes {
		if res, ok := info.inherited["Resources"]; ok {
			p.inheritedRes = res
		}
	}
	return p, nil
}

// AddPage appends a new, empty page with the given media box to the
// document.  Only page trees created by [New] are supported.
func (d *Document) AddPage(mediaBox rect.Rect) (*Page, error) {
	pagesRef, pages, err := d.PageTreeRoot()
	if err != nil {
		return nil, err
	}
	if pages == nil {
		return nil, errMissingPage
	}
	kids, err := d.GetArray(pages["Kids"])
	if err != nil {
		return nil, err
	}

	ref := d.data.Alloc()
	dict := pdf.Dict{
		"Type":     pdf.Name("Page"),
		"Parent":   pagesRef,
		"MediaBox": RectArray(mediaBox),
	}
	if err := d.data.Put(ref, dict); err != nil {
		return nil, err
	}

	pages["Kids"] = append(kids, ref)
	pages["Count"] = pdf.Integer(len(kids) + 1)
	if err := d.Put(pagesRef, pages); err != nil {
		return nil, err
	}

	d.pages = append(d.pages, pageInfo{ref: ref, inherited: pdf.Dict{}})
	return d.Page(len(d.pages) - 1)
}

// PageTreeRoot returns the reference and the dictionary of the root node of
// the page tree.  Changes to the dictionary must be stored using
// [Document.Put].
func (d *Document) PageTreeRoot() (pdf.Reference, pdf.Dict, error) {
	ref := d.data.GetMeta().Catalog.Pages
	dict, err := d.GetDict(ref)
	return ref, dict, err
}

// Alloc allocates a new indirect reference.
func (d *Document) Alloc() pdf.Reference {
	return d.data.Alloc()
}

// Put stores obj under the reference ref, replacing any previous value.
// If obj is nil, the object is removed from the document.
func (d *Document) Put(ref pdf.Reference, obj pdf.Object) error {
	// the engine does not overwrite existing objects
	if err := d.data.Put(ref, nil); err != nil {
		return err
	}
	if obj == nil {
		return nil
	}
	return d.data.Put(ref, obj)
}

// Add stores obj as a new indirect object and returns its reference.
func (d *Document) Add(obj pdf.Object) (pdf.Reference, error) {
	ref := d.data.Alloc()
	if err := d.data.Put(ref, obj); err != nil {
		return 0, err
	}
	return ref, nil
}

// WriteTo writes the complete document to w.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	err := d.data.Write(cw)
	return cw.n, err
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

// Save writes the document to the file at the given path.  An existing file
// is replaced.  If writing fails, the partially written file is removed.
func (d *Document) Save(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		closeErr := f.Close()
		if err == nil {
			err = closeErr
		}
		if err != nil {
			os.Remove(path)
		}
	}()

	_, err = d.WriteTo(f)
	return err
}

// Close releases the memory held by the document.
func (d *Document) Close() error {
	if d.data == nil {
		return nil
	}
	err := d.data.Close()
	d.data = nil
	d.pages = nil
	return err
}

// findPages walks the page tree and records all pages in document order.
func (d *Document) findPages() error {
	root := d.data.GetMeta().Catalog.Pages
	if root == 0 {
		return errNoPageTree
	}

	type node struct {
		ref       pdf.Reference
		inherited pdf.Dict
	}
	todo := []node{{ref: root, inherited: pdf.Dict{}}}
	seen := map[pdf.Reference]bool{root: true}
	for len(todo) > 0 {
		k := len(todo) - 1
		n := todo[k]
		todo = todo[:k]

		dict, err := d.GetDict(n.ref)
		if err != nil {
			return err
		}
		if dict == nil {
			continue
		}
		tp, _ := d.GetName(dict["Type"])
		_, hasKids := dict["Kids"]
		if tp == "Page" || (tp == "" && !hasKids) {
			d.pages = append(d.pages, pageInfo{ref: n.ref, inherited: n.inherited})
			continue
		}

		inherited := n.inherited
		copied := false
		for _, key := range inheritable {
			if val, ok := dict[key]; ok {
				if !copied {
					inherited = clone(n.inherited)
					copied = true
				}
				inherited[key] = val
			}
		}

		kids, err := d.GetArray(dict["Kids"])
		if err != nil {
			return err
		}
		for i := len(kids) - 1; i >= 0; i-- {
			kidRef, ok := kids[i].(pdf.Reference)
			if !ok || seen[kidRef] {
				continue
			}
			seen[kidRef] = true
			todo = append(todo, node{ref: kidRef, inherited: inherited})
		}
	}
	return nil
}

// inheritable lists the page attributes which can be inherited from
// ancestor nodes in the page tree.
var inheritable = []pdf.Name{"Resources", "MediaBox", "CropBox", "Rotate"}

func clone(d pdf.Dict) pdf.Dict {
	res := make(pdf.Dict, len(d)+1)
	for k, v := range d {
		res[k] = v
	}
	return res
}

var (
	// ErrPageRange is returned when a page index is outside the document.
	ErrPageRange = errors.New("page index out of range")

	errNoPageTree  = errors.New("document has no page tree")
	errMissingPage = errors.New("page object missing")
)
