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
	"errors"
	"fmt"

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/pdf"
)

// Resolve follows indirect references until a direct object is reached.
// References to missing objects resolve to nil.
func (d *Document) Resolve(obj pdf.Object) (pdf.Object, error) {
	for range maxRefDepth {
		ref, isRef := obj.(pdf.Reference)
		if !isRef {
			return obj, nil
		}
		var err error
		obj, err = d.data.Get(ref, true)
		if err != nil {
			return nil, err
		}
	}
	return nil, errRefLoop
}

// GetDict resolves obj and returns it as a dictionary.  For streams, the
// stream dictionary is returned.  A missing object gives a nil dictionary
// and no error.
func (d *Document) GetDict(obj pdf.Object) (pdf.Dict, error) {
	obj, err := d.Resolve(obj)
	if err != nil {
		return nil, err
	}
	switch x := obj.(type) {
	case nil:
		return nil, nil
	case pdf.Dict:
		return x, nil
	case *pdf.Stream:
		return x.Dict, nil
	default:
		return nil, malformed("dictionary", obj)
	}
}

// GetArray resolves obj and returns it as an array.
func (d *Document) GetArray(obj pdf.Object) (pdf.Array, error) {
	obj, err := d.Resolve(obj)
	if err != nil {
		return nil, err
	}
	switch x := obj.(type) {
	case nil:
		return nil, nil
	case pdf.Array:
		return x, nil
	default:
		return nil, malformed("array", obj)
	}
}

// GetName resolves obj and returns it as a name.
func (d *Document) GetName(obj pdf.Object) (pdf.Name, error) {
	obj, err := d.Resolve(obj)
	if err != nil {
		return "", err
	}
	switch x := obj.(type) {
	case nil:
		return "", nil
	case pdf.Name:
		return x, nil
	default:
		return "", malformed("name", obj)
	}
}

// GetNumber resolves obj and returns it as a floating point number.
func (d *Document) GetNumber(obj pdf.Object) (float64, error) {
	obj, err := d.Resolve(obj)
	if err != nil {
		return 0, err
	}
	switch x := obj.(type) {
	case pdf.Integer:
		return float64(x), nil
	case pdf.Real:
		return float64(x), nil
	default:
		return 0, malformed("number", obj)
	}
}

// GetInt resolves obj and returns it as an integer.  A missing object
// gives 0.
func (d *Document) GetInt(obj pdf.Object) (int64, error) {
	obj, err := d.Resolve(obj)
	if err != nil {
		return 0, err
	}
	switch x := obj.(type) {
	case nil:
		return 0, nil
	case pdf.Integer:
		return int64(x), nil
	default:
		return 0, malformed("integer", obj)
	}
}

// GetStream resolves obj and returns it as a stream.
func (d *Document) GetStream(obj pdf.Object) (*pdf.Stream, error) {
	obj, err := d.Resolve(obj)
	if err != nil {
		return nil, err
	}
	switch x := obj.(type) {
	case nil:
		return nil, nil
	case *pdf.Stream:
		return x, nil
	default:
		return nil, malformed("stream", obj)
	}
}

// GetNumbers resolves obj and returns it as an array of n numbers.
func (d *Document) GetNumbers(obj pdf.Object, n int) ([]float64, error) {
	a, err := d.GetArray(obj)
	if err != nil {
		return nil, err
	}
	if len(a) != n {
		return nil, fmt.Errorf("%w: expected %d numbers, got %d",
			ErrMalformed, n, len(a))
	}
	res := make([]float64, n)
	for i, x := range a {
		res[i], err = d.GetNumber(x)
		if err != nil {
			return nil, err
		}
	}
	return res, nil
}

// GetRect resolves obj and returns it as a normalised rectangle, with
// LLx <= URx and LLy <= URy.
func (d *Document) GetRect(obj pdf.Object) (rect.Rect, error) {
	x, err := d.GetNumbers(obj, 4)
	if err != nil {
		return rect.Rect{}, err
	}
	return rect.Rect{
		LLx: min(x[0], x[2]),
		LLy: min(x[1], x[3]),
		URx: max(x[0], x[2]),
		URy: max(x[1], x[3]),
	}, nil
}

// RectArray converts a rectangle into a PDF array.
func RectArray(r rect.Rect) pdf.Array {
	return pdf.Array{
		pdf.Real(r.LLx), pdf.Real(r.LLy),
		pdf.Real(r.URx), pdf.Real(r.URy),
	}
}

func malformed(want string, obj pdf.Object) error {
	return fmt.Errorf("%w: expected %s, got %T", ErrMalformed, want, obj)
}

// maxRefDepth limits the length of reference chains followed by Resolve.
const maxRefDepth = 32

var (
	// ErrMalformed indicates an object of unexpected type or shape.
	ErrMalformed = errors.New("malformed PDF object")

	errRefLoop = errors.New("reference chain too long")
)
