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

// Package resources maintains entries in PDF resource dictionaries.
//
// All operations are idempotent: resources are keyed by their content, so
// that repeated calls reuse existing entries instead of adding duplicates.
// Category dictionaries which are missing are created, and category
// dictionaries which are indirect objects are copied into the resource
// dictionary before they are modified, so that objects shared with other
// pages are never changed.
package resources

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"seehuhn.de/go/pdf"
)

// Resolver looks up the values of indirect objects.
type Resolver interface {
	Resolve(obj pdf.Object) (pdf.Object, error)
}

// TransparencyName returns the resource name used for a transparency
// graphics state with the given opacity.
func TransparencyName(alpha float64) pdf.Name {
	return pdf.Name("GSa" + strconv.Itoa(int(math.Round(clampAlpha(alpha)*100))))
}

// EnsureTransparency makes sure that res contains an ExtGState entry which
// sets the stroking and non-stroking opacity to alpha and selects the
// Multiply blend mode.  The name of the entry is returned.
//
// If an entry of the same name already exists, it is reused unchanged.
func EnsureTransparency(r Resolver, res pdf.Dict, alpha float64) (pdf.Name, error) {
	alpha = clampAlpha(alpha)
	name := TransparencyName(alpha)

	states, err := category(r, res, "ExtGState")
	if err != nil {
		return "", err
	}
	if _, exists := states[name]; exists {
		return name, nil
	}
	a := pdf.Real(math.Round(alpha*100) / 100)
	states[name] = pdf.Dict{
		"Type": pdf.Name("ExtGState"),
		"CA":   a,
		"ca":   a,
		"BM":   pdf.Name("Multiply"),
	}
	return name, nil
}

// EnsureMultiply makes sure that res contains an ExtGState entry which
// selects the Multiply blend mode and leaves the opacity unchanged.  The
// name of the entry is returned.
func EnsureMultiply(r Resolver, res pdf.Dict) (pdf.Name, error) {
	states, err := category(r, res, "ExtGState")
	if err != nil {
		return "", err
	}
	if _, exists := states[multiplyName]; !exists {
		states[multiplyName] = pdf.Dict{
			"Type": pdf.Name("ExtGState"),
			"BM":   pdf.Name("Multiply"),
		}
	}
	return multiplyName, nil
}

// EnsureOpacity makes sure that res contains an ExtGState entry which sets
// the stroking and non-stroking opacity to alpha, using the normal blend
// mode.  The name of the entry is returned.
func EnsureOpacity(r Resolver, res pdf.Dict, alpha float64) (pdf.Name, error) {
	alpha = clampAlpha(alpha)
	name := pdf.Name("GSo" + strconv.Itoa(int(math.Round(alpha*100))))

	states, err := category(r, res, "ExtGState")
	if err != nil {
		return "", err
	}
	if _, exists := states[name]; !exists {
		a := pdf.Real(math.Round(alpha*100) / 100)
		states[name] = pdf.Dict{
			"Type": pdf.Name("ExtGState"),
			"CA":   a,
			"ca":   a,
		}
	}
	return name, nil
}

// EnsureTransparencyGroup marks a page or form dictionary as an isolated,
// non-knockout transparency group.  An existing /Group entry is kept.
func EnsureTransparencyGroup(owner pdf.Dict) {
	if _, exists := owner["Group"]; exists {
		return
	}
	owner["Group"] = pdf.Dict{
		"Type": pdf.Name("Group"),
		"S":    pdf.Name("Transparency"),
		"I":    pdf.Boolean(true),
		"K":    pdf.Boolean(false),
		"CS":   pdf.Name("DeviceRGB"),
	}
}

// AddXObject registers ref in the XObject category of res and returns the
// resource name.  If ref is already registered, the existing name is
// returned.  Otherwise the first unused name of the form <prefix><n> is
// chosen, counting from n = 1.
func AddXObject(r Resolver, res pdf.Dict, prefix string, ref pdf.Reference) (pdf.Name, error) {
	xobjects, err := category(r, res, "XObject")
	if err != nil {
		return "", err
	}
	for name, obj := range xobjects {
		if obj == ref {
			return name, nil
		}
	}
	for n := 1; ; n++ {
		name := pdf.Name(prefix + strconv.Itoa(n))
		if _, used := xobjects[name]; !used {
			xobjects[name] = ref
			return name, nil
		}
	}
}

// category returns the category dictionary key of res, creating it if
// needed.  The returned dictionary is stored directly in res.
func category(r Resolver, res pdf.Dict, key pdf.Name) (pdf.Dict, error) {
	if res == nil {
		return nil, errNoResources
	}
	obj, isRef := res[key], false
	if _, ok := obj.(pdf.Reference); ok {
		isRef = true
	}
	obj, err := r.Resolve(obj)
	if err != nil {
		return nil, err
	}

	switch d := obj.(type) {
	case nil:
		fresh := pdf.Dict{}
		res[key] = fresh
		return fresh, nil
	case pdf.Dict:
		if isRef {
			c := make(pdf.Dict, len(d)+1)
			for k, v := range d {
				c[k] = v
			}
			res[key] = c
			return c, nil
		}
		return d, nil
	default:
		return nil, fmt.Errorf("resource category /%s: unexpected %T", key, obj)
	}
}

func clampAlpha(alpha float64) float64 {
	if !(alpha > 0) {
		return 0
	}
	return min(alpha, 1)
}

// multiplyName is the resource name used by EnsureMultiply.
const multiplyName pdf.Name = "GSmul"

var errNoResources = errors.New("missing resource dictionary")
