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

package preview

import (
	"image"
	"image/color"
	"maps"
	"math"
	"slices"
	"testing"

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/markup"
	"seehuhn.de/go/markup/geometry"
	"seehuhn.de/go/markup/testcases"
)

var white = color.RGBA{255, 255, 255, 255}

func TestRenderFixtures(t *testing.T) {
	for _, category := range slices.Sorted(maps.Keys(testcases.All)) {
		for _, tc := range testcases.All[category] {
			t.Run(category+"_"+tc.Name, func(t *testing.T) {
				const scale = 1.5
				items := geometry.Items(tc.Strokes, tc.Shapes)
				img := Render(items, tc.Page, scale, 0)
				if got, want := img.Bounds(), ImageSize(tc.Page, scale); got != want {
					t.Fatalf("image size %v, want %v", got, want)
				}

				// ink may only appear within the bounding boxes of the items
				var boxes []image.Rectangle
				for _, it := range items {
					b := geometry.Bounds(it.Points, max(it.Width, 1))
					boxes = append(boxes, image.Rect(
						int(math.Floor(b.LLx*scale))-1, int(math.Floor(b.LLy*scale))-1,
						int(math.Ceil(b.URx*scale))+1, int(math.Ceil(b.URy*scale))+1))
				}
				inked := 0
				for y := range img.Bounds().Dy() {
					for x := range img.Bounds().Dx() {
						if img.RGBAAt(x, y) == white {
							continue
						}
						inked++
						inside := false
						for _, b := range boxes {
							inside = inside || image.Pt(x, y).In(b)
						}
						if !inside {
							t.Fatalf("stray ink at (%d,%d)", x, y)
						}
					}
				}
				if inked == 0 {
					t.Error("nothing drawn")
				}
			})
		}
	}
}

func horizontal(y float64, c markup.Color, highlighter bool) markup.Item {
	return markup.Item{
		Points:      []vec.Vec2{{X: 10, Y: y}, {X: 90, Y: y}},
		Color:       c,
		Width:       20,
		Highlighter: highlighter,
	}
}

func TestCompositing(t *testing.T) {
	page := rect.Rect{URx: 100, URy: 100}
	yellow := markup.Color{R: 1, G: 1}
	red := markup.Color{R: 1}

	type testCase struct {
		name  string
		items []markup.Item
		want  color.RGBA
	}
	cases := []testCase{
		{"ink", []markup.Item{horizontal(50, red, false)}, color.RGBA{255, 0, 0, 255}},
		{"highlighter", []markup.Item{horizontal(50, yellow, true)}, color.RGBA{255, 255, 128, 255}},
		{"double_highlighter", []markup.Item{horizontal(50, yellow, true), horizontal(52, yellow, true)}, color.RGBA{255, 255, 64, 255}},
		{"highlighter_over_ink", []markup.Item{horizontal(50, red, false), horizontal(50, yellow, true)}, color.RGBA{255, 0, 0, 255}},
		{"ink_over_highlighter", []markup.Item{horizontal(50, yellow, true), horizontal(50, red, false)}, color.RGBA{255, 0, 0, 255}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			img := Render(tc.items, page, 1, 0)
			got := img.RGBAAt(50, 50)
			if !closeTo(got, tc.want, 1) {
				t.Errorf("got %v, want %v", got, tc.want)
			}
			if corner := img.RGBAAt(2, 2); corner != white {
				t.Errorf("background is %v", corner)
			}
		})
	}
}

func closeTo(a, b color.RGBA, tol int) bool {
	d := func(x, y uint8) bool { return math.Abs(float64(x)-float64(y)) <= float64(tol) }
	return d(a.R, b.R) && d(a.G, b.G) && d(a.B, b.B) && d(a.A, b.A)
}

func TestDrift(t *testing.T) {
	page := rect.Rect{URx: 100, URy: 100}
	it := markup.Item{Points: []vec.Vec2{{X: 10, Y: 50.5}, {X: 90, Y: 50.5}}, Width: 1}

	plain := Render([]markup.Item{it}, page, 2, 0)
	shifted := Render([]markup.Item{it}, page, 2, 10)
	for y := range 200 {
		a := plain.RGBAAt(100, y)
		var b color.RGBA
		if y >= 20 {
			b = shifted.RGBAAt(100, y-20)
		} else {
			b = white
		}
		if !closeTo(a, b, 1) {
			t.Fatalf("row %d: %v vs %v", y, a, b)
		}
	}
}

func TestSkipsMalformed(t *testing.T) {
	page := rect.Rect{URx: 20, URy: 20}
	items := []markup.Item{
		{},
		{Points: []vec.Vec2{{X: math.NaN(), Y: 3}}, Width: 2},
	}
	img := Render(items, page, 1, 0)
	for i := 0; i < len(img.Pix); i++ {
		if img.Pix[i] != 255 {
			t.Fatal("malformed item drawn")
		}
	}
}

func TestThumbnail(t *testing.T) {
	big := image.NewRGBA(image.Rect(0, 0, 1224, 1584))
	thumb := Thumbnail(big, 200)
	if got := thumb.Bounds().Size(); got != image.Pt(154, 200) {
		t.Errorf("thumbnail size %v", got)
	}

	small := image.NewRGBA(image.Rect(10, 10, 60, 30))
	small.SetRGBA(10, 10, color.RGBA{1, 2, 3, 255})
	thumb = Thumbnail(small, 200)
	if got := thumb.Bounds(); got != image.Rect(0, 0, 50, 20) {
		t.Errorf("small image resized to %v", got)
	}
	if got := thumb.RGBAAt(0, 0); got != (color.RGBA{1, 2, 3, 255}) {
		t.Errorf("pixel not copied: %v", got)
	}
}
