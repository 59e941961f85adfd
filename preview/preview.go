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

// Package preview draws ink and shape markup into raster images.  It shows
// the markup the way it will appear once written into the document, and
// never renders the page content itself.
//
// Markup coordinates are in caller space: PDF units relative to the
// top-left corner of the visible page area.  Pixel (0, 0) of the image
// corresponds to this corner.
package preview

import (
	"image"
	"math"

	"golang.org/x/image/draw"
	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"

	"seehuhn.de/go/markup"
)

// DefaultHighlightAlpha is the highlighter opacity used by [Render].
const DefaultHighlightAlpha = 0.5

// Overlay composites markup onto existing images.
type Overlay struct {
	// Scale is the number of pixels per PDF unit.
	Scale float64

	// Drift is the vertical offset applied when the markup is written to
	// the document.  The preview applies the same offset.
	Drift float64

	// HighlightAlpha is the opacity of highlighter strokes.
	HighlightAlpha float64

	r *Rasteriser
}

// Draw paints the items onto dst, in order.  Normal ink is painted
// opaquely.  Highlighters multiply the existing colors with the ink color,
// at opacity HighlightAlpha.
func (o *Overlay) Draw(dst *image.RGBA, items []markup.Item) {
	b := dst.Bounds()
	clip := rect.Rect{
		LLx: float64(b.Min.X), LLy: float64(b.Min.Y),
		URx: float64(b.Max.X), URy: float64(b.Max.Y),
	}
	if o.r == nil {
		o.r = NewRasteriser(clip)
	}

	for _, it := range items {
		if !it.IsDrawable() {
			continue
		}
		o.r.Reset(clip)
		o.r.CTM = matrix.Matrix{o.Scale, 0, 0, o.Scale, 0, -o.Drift * o.Scale}
		o.r.Ink(it.Points, it.Width)

		c := it.Color.Clamped()
		src := [3]float64{c.R * 255, c.G * 255, c.B * 255}
		alpha := 1.0
		if it.Highlighter {
			alpha = clamp01(o.HighlightAlpha)
		}
		o.r.Fill(func(y, xMin int, coverage []float32) {
			pix := dst.Pix[dst.PixOffset(xMin, y):]
			for i, cov := range coverage {
				p := pix[4*i : 4*i+4 : 4*i+4]
				a := float64(cov) * alpha
				if it.Highlighter {
					multiply(p, src, a)
				} else {
					over(p, src, a)
				}
			}
		})
	}
}

// over composites an opaque color with coverage a onto the premultiplied
// pixel p.
func over(p []uint8, src [3]float64, a float64) {
	for k := range 3 {
		p[k] = toByte(float64(p[k])*(1-a) + src[k]*a)
	}
	p[3] = toByte(float64(p[3])*(1-a) + 255*a)
}

// multiply applies the multiply blend mode with opacity a to the
// premultiplied pixel p.
func multiply(p []uint8, src [3]float64, a float64) {
	for k := range 3 {
		p[k] = toByte(float64(p[k]) * (1 - a*(1-src[k]/255)))
	}
	p[3] = toByte(float64(p[3]) + (255-float64(p[3]))*a)
}

func toByte(x float64) uint8 {
	if !(x > 0) {
		return 0
	}
	if x >= 255 {
		return 255
	}
	return uint8(x + 0.5)
}

func clamp01(x float64) float64 {
	return math.Min(math.Max(x, 0), 1)
}

// ImageSize returns the size of an image showing a page area of the given
// size at scale pixels per PDF unit.
func ImageSize(bounds rect.Rect, scale float64) image.Rectangle {
	w := int(math.Ceil((bounds.URx - bounds.LLx) * scale))
	h := int(math.Ceil((bounds.URy - bounds.LLy) * scale))
	return image.Rect(0, 0, max(w, 1), max(h, 1))
}

// Render draws the items onto a white image of the page area described by
// bounds, at scale pixels per PDF unit.
func Render(items []markup.Item, bounds rect.Rect, scale, drift float64) *image.RGBA {
	img := image.NewRGBA(ImageSize(bounds, scale))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	o := &Overlay{
		Scale:          scale,
		Drift:          drift,
		HighlightAlpha: DefaultHighlightAlpha,
	}
	o.Draw(img, items)
	return img
}

// Thumbnail scales img down so that its longer side is at most maxSide
// pixels.  Smaller images are copied unchanged.
func Thumbnail(img image.Image, maxSide int) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if longest := max(w, h); longest > maxSide && maxSide > 0 {
		w = max(w*maxSide/longest, 1)
		h = max(h*maxSide/longest, 1)
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	}
	return dst
}
