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

package resources_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"seehuhn.de/go/pdf"

	"seehuhn.de/go/markup/internal/sample"
	"seehuhn.de/go/markup/pdfdoc"
	"seehuhn.de/go/markup/resources"
)

func newPage(t *testing.T) (*pdfdoc.Document, *pdfdoc.Page) {
	t.Helper()
	doc, err := sample.New(sample.Page{})
	if err != nil {
		t.Fatal(err)
	}
	p, err := doc.Page(0)
	if err != nil {
		t.Fatal(err)
	}
	return doc, p
}

func TestTransparencyReuse(t *testing.T) {
	doc, p := newPage(t)
	if _, ok := p.Dict["Resources"]; ok {
		t.Fatal("sample page already has resources")
	}
	res, err := p.Resources()
	if err != nil {
		t.Fatal(err)
	}

	n1, err := resources.EnsureTransparency(doc, res, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	n2, err := resources.EnsureTransparency(doc, res, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if n1 != n2 {
		t.Errorf("names differ: %q != %q", n1, n2)
	}
	if n1 != "GSa50" {
		t.Errorf("name = %q", n1)
	}

	states := res["ExtGState"].(pdf.Dict)
	if len(states) != 1 {
		t.Errorf("got %d ExtGState entries, want 1", len(states))
	}
	want := pdf.Dict{
		"Type": pdf.Name("ExtGState"),
		"CA":   pdf.Real(0.5),
		"ca":   pdf.Real(0.5),
		"BM":   pdf.Name("Multiply"),
	}
	if d := cmp.Diff(want, states[n1]); d != "" {
		t.Errorf("ExtGState mismatch (-want +got):\n%s", d)
	}

	n3, _ := resources.EnsureTransparency(doc, res, 0.3)
	if n3 == n1 || len(states) != 2 {
		t.Errorf("different alpha: name %q, %d entries", n3, len(states))
	}
}

func TestTransparencyName(t *testing.T) {
	cases := map[float64]pdf.Name{
		0:     "GSa0",
		0.5:   "GSa50",
		0.333: "GSa33",
		1:     "GSa100",
		7:     "GSa100",
		-2:    "GSa0",
	}
	for alpha, want := range cases {
		if got := resources.TransparencyName(alpha); got != want {
			t.Errorf("TransparencyName(%g) = %q, want %q", alpha, got, want)
		}
	}
}

func TestSharedCategoryIsCopied(t *testing.T) {
	doc, p := newPage(t)
	shared := pdf.Dict{"GS0": pdf.Dict{"LW": pdf.Integer(2)}}
	ref, err := doc.Add(shared)
	if err != nil {
		t.Fatal(err)
	}
	res, _ := p.Resources()
	res["ExtGState"] = ref

	name, err := resources.EnsureTransparency(doc, res, 0.25)
	if err != nil {
		t.Fatal(err)
	}
	if _, changed := shared[name]; changed {
		t.Error("shared ExtGState dictionary was modified")
	}
	states, ok := res["ExtGState"].(pdf.Dict)
	if !ok {
		t.Fatalf("category still indirect: %T", res["ExtGState"])
	}
	if _, ok := states["GS0"]; !ok {
		t.Error("existing entry lost while copying")
	}
	if _, ok := states[name]; !ok {
		t.Error("new entry missing")
	}
}

func TestTransparencyGroup(t *testing.T) {
	_, p := newPage(t)
	resources.EnsureTransparencyGroup(p.Dict)
	g1 := p.Dict["Group"]
	resources.EnsureTransparencyGroup(p.Dict)

	want := pdf.Dict{
		"Type": pdf.Name("Group"),
		"S":    pdf.Name("Transparency"),
		"I":    pdf.Boolean(true),
		"K":    pdf.Boolean(false),
		"CS":   pdf.Name("DeviceRGB"),
	}
	if d := cmp.Diff(want, p.Dict["Group"]); d != "" {
		t.Errorf("group mismatch (-want +got):\n%s", d)
	}
	if d := cmp.Diff(g1, p.Dict["Group"]); d != "" {
		t.Errorf("second call changed the group:\n%s", d)
	}

	existing := pdf.Dict{"Group": pdf.Dict{"S": pdf.Name("Transparency"), "CS": pdf.Name("DeviceCMYK")}}
	resources.EnsureTransparencyGroup(existing)
	if existing["Group"].(pdf.Dict)["CS"] != pdf.Name("DeviceCMYK") {
		t.Error("existing group replaced")
	}
}

func TestAddXObject(t *testing.T) {
	doc, p := newPage(t)
	res, _ := p.Resources()
	res["XObject"] = pdf.Dict{"Fm1": pdf.Reference(999)}

	a := doc.Alloc()
	b := doc.Alloc()
	na, err := resources.AddXObject(doc, res, "Fm", a)
	if err != nil {
		t.Fatal(err)
	}
	nb, _ := resources.AddXObject(doc, res, "Fm", b)
	again, _ := resources.AddXObject(doc, res, "Fm", a)

	if na != "Fm2" || nb != "Fm3" {
		t.Errorf("names = %q, %q", na, nb)
	}
	if again != na {
		t.Errorf("re-registering gave %q, want %q", again, na)
	}
	if n := len(res["XObject"].(pdf.Dict)); n != 3 {
		t.Errorf("got %d XObjects", n)
	}
}

func TestMissingResources(t *testing.T) {
	doc, _ := newPage(t)
	if _, err := resources.EnsureTransparency(doc, nil, 0.5); err == nil {
		t.Error("nil resource dictionary accepted")
	}
	bad := pdf.Dict{"ExtGState": pdf.Integer(3)}
	if _, err := resources.EnsureTransparency(doc, bad, 0.5); err == nil {
		t.Error("malformed category accepted")
	}
}
