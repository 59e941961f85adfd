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

package content

import (
	"math"
	"regexp"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/markup"
)

func TestFormat(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "0.00"},
		{1, "1.00"},
		{-1.5, "-1.50"},
		{0.005, "0.01"},
		{1e-7, "0.00"},
		{-1e-7, "0.00"},
		{1e21, "1000000000000000000000.00"},
		{123.456, "123.46"},
		{math.NaN(), "0.00"},
		{math.Inf(-1), "0.00"},
	}
	for _, c := range cases {
		if got := Format(c.in); got != c.want {
			t.Errorf("Format(%g) = %q, want %q", c.in, got, c.want)
		}
	}
}

var numberRE = regexp.MustCompile(`^-?\d+\.\d{2}$`)

// checkNumbers verifies that all numeric operands have the fixed two-digit
// format.  The integer operands of the line cap and join operators are
// exempt.
func checkNumbers(t *testing.T, prog []byte) {
	t.Helper()
	for _, line := range strings.Split(strings.TrimSpace(string(prog)), "\n") {
		fields := strings.Fields(line)
		op := fields[len(fields)-1]
		if op == "J" || op == "j" {
			continue
		}
		for _, f := range fields[:len(fields)-1] {
			if strings.HasPrefix(f, "/") {
				continue
			}
			if !numberRE.MatchString(f) {
				t.Errorf("bad number %q in line %q", f, line)
			}
		}
	}
}

func TestBakeScenario(t *testing.T) {
	bounds := rect.Rect{URx: 612, URy: 792}
	items := []markup.Item{{
		Points: []vec.Vec2{{X: 10, Y: 10}, {X: 20, Y: 10}, {X: 20, Y: 20}},
		Color:  markup.Color{R: 1},
		Width:  2,
	}}
	got := string(Build(items, Flip(bounds, 0.5), ""))
	want := "q\n1 J\n1 j\n" +
		"1.00 0.00 0.00 RG\n" +
		"2.00 w\n" +
		"10.00 782.50 m\n" +
		"20.00 782.50 l\n" +
		"20.00 772.50 l\n" +
		"S\n" +
		"Q\n"
	if d := cmp.Diff(want, got); d != "" {
		t.Errorf("program mismatch (-want +got):\n%s", d)
	}
	if strings.Contains(got, " cm") {
		t.Error("bake program contains cm")
	}
}

func TestBuildSkipsEmpty(t *testing.T) {
	items := []markup.Item{
		{},
		{Points: []vec.Vec2{{X: math.NaN(), Y: 1}}},
		{Points: []vec.Vec2{{X: 1, Y: 2}, {X: 3, Y: 4}}, Width: 1},
	}
	prog := string(Build(items, matrix.Identity, ""))
	if n := strings.Count(prog, " m\n"); n != 1 {
		t.Errorf("got %d subpaths, want 1:\n%s", n, prog)
	}
	if Build(items[:2], matrix.Identity, "") != nil {
		t.Error("program for undrawable items is not empty")
	}
	if Build(nil, matrix.Identity, "") != nil {
		t.Error("program for no items is not empty")
	}
}

func TestBuildHighlighter(t *testing.T) {
	items := []markup.Item{
		{Points: []vec.Vec2{{X: 0, Y: 0}, {X: 1, Y: 1}}, Width: 12, Highlighter: true, Color: markup.Color{R: 1, G: 1}},
		{Points: []vec.Vec2{{X: 0, Y: 0}, {X: 2, Y: 2}}, Width: 1},
	}
	prog := string(Build(items, matrix.Identity, "GSa50"))
	if n := strings.Count(prog, "/GSa50 gs\n"); n != 1 {
		t.Fatalf("gs selected %d times:\n%s", n, prog)
	}

	// the translucent item is enclosed in its own q/Q pair
	lines := strings.Split(strings.TrimSpace(prog), "\n")
	depth := 0
	for _, l := range lines {
		switch l {
		case "q":
			depth++
		case "Q":
			depth--
		case "/GSa50 gs":
			if depth != 2 {
				t.Errorf("gs at nesting depth %d", depth)
			}
		}
	}
	if depth != 0 {
		t.Errorf("unbalanced q/Q: %d", depth)
	}

	// without a resource name, highlighters are drawn opaque
	if strings.Contains(string(Build(items, matrix.Identity, "")), " gs") {
		t.Error("gs emitted without resource name")
	}
}

func TestBuildDot(t *testing.T) {
	items := []markup.Item{{Points: []vec.Vec2{{X: 5, Y: 5}}, Width: 3}}
	prog := string(Build(items, matrix.Identity, ""))
	if !strings.Contains(prog, "5.00 5.00 m\n5.00 5.00 l\nS\n") {
		t.Errorf("dot not drawn:\n%s", prog)
	}
}

func TestNumberFormatInPrograms(t *testing.T) {
	items := []markup.Item{
		{
			Points: []vec.Vec2{{X: 1e-9, Y: -3.14159}, {X: 1234567.891, Y: 0.005}},
			Color:  markup.Color{R: 0.333333, G: 2, B: -1},
			Width:  0.1234,
		},
		{
			Points:      []vec.Vec2{{X: -0.0001, Y: 1e6}},
			Width:       -4,
			Highlighter: true,
		},
	}
	checkNumbers(t, Build(items, Flip(rect.Rect{LLx: 0.5, URx: 100, URy: 100.25}, 0.3), "GSa30"))
	checkNumbers(t, Paint("Fm1", matrix.Matrix{0.5, 0, 0, 1.0 / 3, -12.345, 1e-12}, "GSo50"))
}

func TestPaint(t *testing.T) {
	got := string(Paint("Fm2", matrix.Matrix{2, 0, 0, 2, 10, 20}, ""))
	want := "q\n2.00 0.00 0.00 2.00 10.00 20.00 cm\n/Fm2 Do\nQ\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	got = string(Paint("Fm2", matrix.Matrix{1, 0, 0, 1, 0, 0}, "GSo25"))
	want = "q\n/GSo25 gs\n1.00 0.00 0.00 1.00 0.00 0.00 cm\n/Fm2 Do\nQ\n"
	if got != want {
		t.Errorf("with gs: got %q, want %q", got, want)
	}
}

func TestFlip(t *testing.T) {
	m := Flip(rect.Rect{LLx: 10, LLy: 20, URx: 110, URy: 220}, 0)
	got := Apply(m, vec.Vec2{X: 5, Y: 50})
	want := vec.Vec2{X: 15, Y: 170}
	if got != want {
		t.Errorf("got %v, want %v", got, want)
	}

	s := Apply(Shift(m, 15, 170), vec.Vec2{X: 5, Y: 50})
	if s != (vec.Vec2{}) {
		t.Errorf("shifted point = %v", s)
	}
}
