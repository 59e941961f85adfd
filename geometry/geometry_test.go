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

package geometry

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/markup"
)

const eps = 1e-9

func TestLine(t *testing.T) {
	s := markup.Shape{Kind: markup.Line, From: vec.Vec2{X: 1, Y: 2}, To: vec.Vec2{X: 3, Y: 4}}
	got := Resolve(s)
	want := []vec.Vec2{{X: 1, Y: 2}, {X: 3, Y: 4}}
	if d := cmp.Diff(want, got); d != "" {
		t.Errorf("line mismatch (-want +got):\n%s", d)
	}
}

func TestRectangle(t *testing.T) {
	corners := [][2]vec.Vec2{
		{{X: 0, Y: 0}, {X: 10, Y: 20}},
		{{X: 10, Y: 20}, {X: 0, Y: 0}},
		{{X: -5, Y: 3}, {X: 7, Y: -1}},
		{{X: 4, Y: 4}, {X: 4, Y: 4}},
	}
	for _, c := range corners {
		pts := Resolve(markup.Shape{Kind: markup.Rectangle, From: c[0], To: c[1]})
		if len(pts) != 5 {
			t.Fatalf("%v: got %d points, want 5", c, len(pts))
		}
		if pts[0] != pts[4] {
			t.Errorf("%v: loop not closed: %v != %v", c, pts[0], pts[4])
		}
		if pts[0] != c[0] || pts[2] != c[1] {
			t.Errorf("%v: corners not preserved: %v", c, pts)
		}
	}
}

func TestCircle(t *testing.T) {
	type testCase struct {
		from, to vec.Vec2
	}
	cases := []testCase{
		{vec.Vec2{X: 0, Y: 0}, vec.Vec2{X: 100, Y: 100}},
		{vec.Vec2{X: 50, Y: 10}, vec.Vec2{X: 10, Y: 30}},
		{vec.Vec2{X: -3, Y: -3}, vec.Vec2{X: 3, Y: 9}},
	}
	for _, tc := range cases {
		pts := Resolve(markup.Shape{Kind: markup.Circle, From: tc.from, To: tc.to})
		if len(pts) != 37 {
			t.Fatalf("got %d points, want 37", len(pts))
		}

		cx := (tc.from.X + tc.to.X) / 2
		cy := (tc.from.Y + tc.to.Y) / 2
		rx := math.Abs(tc.to.X-tc.from.X) / 2
		ry := math.Abs(tc.to.Y-tc.from.Y) / 2
		for i, p := range pts {
			u := (p.X - cx) / rx
			v := (p.Y - cy) / ry
			if r := u*u + v*v; math.Abs(r-1) > 1e-9 {
				t.Errorf("point %d = %v is off the ellipse (%g)", i, p, r)
			}
		}
		if d := pts[0].Sub(pts[36]).Length(); d > eps {
			t.Errorf("first and last point differ by %g", d)
		}
	}
}

func TestArrow(t *testing.T) {
	shafts := [][2]vec.Vec2{
		{{X: 0, Y: 0}, {X: 100, Y: 0}},  // long: wing length 20
		{{X: 0, Y: 0}, {X: 0, Y: 30}},   // short: wing length 9
		{{X: 10, Y: 10}, {X: -40, Y: 60}},
		{{X: 5, Y: 5}, {X: 6, Y: 5}},
	}
	for _, s := range shafts {
		from, to := s[0], s[1]
		pts := Resolve(markup.Shape{Kind: markup.Arrow, From: from, To: to})
		if len(pts) != 4 {
			t.Fatalf("got %d points, want 4", len(pts))
		}
		if pts[0] != from || pts[1] != to {
			t.Errorf("shaft changed: %v", pts[:2])
		}

		shaft := to.Sub(from)
		wantLen := min(20, 0.3*shaft.Length())
		back := shaft.Mul(-1 / shaft.Length())
		for _, w := range pts[2:] {
			d := w.Sub(to)
			if l := d.Length(); math.Abs(l-wantLen) > 1e-9 {
				t.Errorf("wing length %g, want %g", l, wantLen)
			}
			cos := d.Dot(back) / d.Length()
			if math.Abs(cos-math.Cos(math.Pi/6)) > 1e-9 {
				t.Errorf("wing angle: cos = %g, want %g", cos, math.Cos(math.Pi/6))
			}
		}

		// the two wings lie on opposite sides of the shaft
		cross := func(v vec.Vec2) float64 { return shaft.X*v.Y - shaft.Y*v.X }
		if cross(pts[2].Sub(to))*cross(pts[3].Sub(to)) >= 0 {
			t.Errorf("wings on the same side: %v", pts[2:])
		}
	}
}

func TestDegenerateArrow(t *testing.T) {
	p := vec.Vec2{X: 7, Y: 7}
	pts := Resolve(markup.Shape{Kind: markup.Arrow, From: p, To: p})
	if d := cmp.Diff([]vec.Vec2{p, p}, pts); d != "" {
		t.Errorf("degenerate arrow (-want +got):\n%s", d)
	}
	if _, _, ok := Arrowhead(p, p); ok {
		t.Error("Arrowhead succeeded for zero-length shaft")
	}
}

func TestMalformed(t *testing.T) {
	cases := []markup.Shape{
		{},
		{Kind: markup.ShapeKind(99), To: vec.Vec2{X: 1}},
		{Kind: markup.Line, From: vec.Vec2{X: math.NaN()}, To: vec.Vec2{X: 1}},
		{Kind: markup.Circle, To: vec.Vec2{Y: math.Inf(1)}},
	}
	for _, s := range cases {
		if pts := Resolve(s); pts != nil {
			t.Errorf("%v: got %v, want nil", s, pts)
		}
		if ShapeItem(s).IsDrawable() {
			t.Errorf("%v: item is drawable", s)
		}
	}
}

func TestDeterministic(t *testing.T) {
	s := markup.Shape{Kind: markup.Circle, From: vec.Vec2{X: 1.5, Y: 2.25}, To: vec.Vec2{X: 17, Y: 3}}
	a := Resolve(s)
	b := Resolve(s)
	if d := cmp.Diff(a, b); d != "" {
		t.Errorf("results differ:\n%s", d)
	}
}

func TestArrowItem(t *testing.T) {
	s := markup.Shape{Kind: markup.Arrow, From: vec.Vec2{}, To: vec.Vec2{X: 50}, Width: 2}
	it := ShapeItem(s)
	if len(it.Points) != 5 {
		t.Fatalf("got %d points, want 5", len(it.Points))
	}
	if it.Points[1] != s.To || it.Points[3] != s.To {
		t.Errorf("arrow polyline does not return to the tip: %v", it.Points)
	}
	if it.Width != 2 {
		t.Errorf("width = %g", it.Width)
	}
}

func TestItemsOrder(t *testing.T) {
	strokes := []markup.Stroke{
		{Points: []vec.Vec2{{X: 1}}, Highlighter: true},
		{Points: []vec.Vec2{{X: 2}}},
	}
	shapes := []markup.Shape{
		{Kind: markup.Line, From: vec.Vec2{X: 3}, To: vec.Vec2{X: 4}},
	}
	items := Items(strokes, shapes)
	if len(items) != 3 {
		t.Fatalf("got %d items", len(items))
	}
	if !items[0].Highlighter || items[1].Highlighter || items[2].Highlighter {
		t.Errorf("highlighter flags wrong: %v", items)
	}
	if items[2].Points[0].X != 3 {
		t.Errorf("shape not last: %v", items)
	}
}

func TestBounds(t *testing.T) {
	pts := []vec.Vec2{{X: 10, Y: 20}, {X: 30, Y: 5}, {X: 15, Y: 40}}
	got := Bounds(pts, 4)
	want := rect.Rect{LLx: 8, LLy: 3, URx: 32, URy: 42}
	if got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	if got := Bounds(nil, 4); got != (rect.Rect{}) {
		t.Errorf("empty: got %v", got)
	}
}
