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
	"cmp"
	"math"
	"slices"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
)

// edge is a polygon edge in device coordinates.
type edge struct {
	x0, y0 float64
	x1, y1 float64
	dxdy   float64 // (x1-x0)/(y1-y0)
}

// Rasteriser converts polygons to anti-aliased pixel coverage, using the
// nonzero winding rule.  Polygons are collected with [Rasteriser.AddPoint]
// and [Rasteriser.ClosePolygon], and are filled together as one compound
// shape by [Rasteriser.Fill].
//
// Internal buffers grow as needed but never shrink.  A Rasteriser is not
// safe for concurrent use.
type Rasteriser struct {
	// CTM maps user space to device space.
	CTM matrix.Matrix

	// Clip is the output region in device coordinates.
	// The coordinates must be integers.
	Clip rect.Rect

	// Flatness is the tolerance, in device pixels, for approximating
	// circular arcs by polygons.
	Flatness float64

	poly    []vec.Vec2 // vertices of all polygons, in user space
	offsets []int      // start of each polygon in poly
	open    bool       // whether the last polygon is still open

	edges     []edge
	cover     []float32 // cover change per pixel; reused as output
	area      []float32 // area within pixel
	rowXMin   []int
	rowXMax   []int
	active    []int
	crossings []float64

	bboxEmpty        bool
	devXMin, devXMax float64
	devYMin, devYMax float64

	smallPathThreshold int
}

// NewRasteriser allocates a rasteriser with the given clip rectangle and
// an identity transformation.
func NewRasteriser(clip rect.Rect) *Rasteriser {
	return &Rasteriser{
		CTM:                matrix.Identity,
		Clip:               clip,
		Flatness:           defaultFlatness,
		smallPathThreshold: smallPathThreshold,
	}
}

// Reset discards all collected polygons and restores the default
// settings, keeping the allocated buffers.
func (r *Rasteriser) Reset(clip rect.Rect) {
	r.CTM = matrix.Identity
	r.Clip = clip
	r.Flatness = defaultFlatness
	r.clear()
	if r.smallPathThreshold == 0 {
		r.smallPathThreshold = smallPathThreshold
	}
}

func (r *Rasteriser) clear() {
	r.poly = r.poly[:0]
	r.offsets = r.offsets[:0]
	r.open = false
}

// AddPoint appends a vertex to the current polygon.
func (r *Rasteriser) AddPoint(p vec.Vec2) {
	if !r.open {
		r.offsets = append(r.offsets, len(r.poly))
		r.open = true
	}
	r.poly = append(r.poly, p)
}

// ClosePolygon ends the current polygon.  The next call to AddPoint starts
// a new one.
func (r *Rasteriser) ClosePolygon() {
	r.open = false
}

// polygons calls fn for every collected polygon.
func (r *Rasteriser) polygons(fn func(poly []vec.Vec2)) {
	for i, start := range r.offsets {
		end := len(r.poly)
		if i+1 < len(r.offsets) {
			end = r.offsets[i+1]
		}
		fn(r.poly[start:end])
	}
}

// Fill rasterises all collected polygons and removes them.  Coverage is
// delivered row by row via emit; the coverage slice is only valid for the
// duration of the call.
func (r *Rasteriser) Fill(emit func(y, xMin int, coverage []float32)) {
	defer r.clear()

	xMin, xMax, yMin, yMax, ok := r.collectEdges()
	if !ok {
		return
	}
	if (xMax-xMin)*(yMax-yMin) < r.smallPathThreshold {
		r.fillSmall(xMin, xMax, yMin, yMax, emit)
	} else {
		r.fillLarge(xMin, xMax, yMin, yMax, emit)
	}
}

// collectEdges converts the polygons to device space edges and returns
// their bounding box, clamped to the clip rectangle.
func (r *Rasteriser) collectEdges() (xMin, xMax, yMin, yMax int, ok bool) {
	r.edges = r.edges[:0]
	r.bboxEmpty = true

	r.polygons(func(poly []vec.Vec2) {
		if len(poly) < 3 {
			return
		}
		prev := poly[len(poly)-1]
		for _, p := range poly {
			r.addEdge(prev, p)
			prev = p
		}
	})
	if len(r.edges) == 0 {
		return 0, 0, 0, 0, false
	}

	xMin = max(int(math.Floor(r.devXMin)), int(r.Clip.LLx))
	xMax = min(int(math.Floor(r.devXMax))+1, int(r.Clip.URx))
	yMin = max(int(math.Floor(r.devYMin)), int(r.Clip.LLy))
	yMax = min(int(math.Floor(r.devYMax))+1, int(r.Clip.URy))
	if xMin >= xMax || yMin >= yMax {
		return 0, 0, 0, 0, false
	}
	return xMin, xMax, yMin, yMax, true
}

func (r *Rasteriser) addEdge(p0, p1 vec.Vec2) {
	m := r.CTM
	x0 := m[0]*p0.X + m[2]*p0.Y + m[4]
	y0 := m[1]*p0.X + m[3]*p0.Y + m[5]
	x1 := m[0]*p1.X + m[2]*p1.Y + m[4]
	y1 := m[1]*p1.X + m[3]*p1.Y + m[5]

	dy := y1 - y0
	if dy > -horizontalEdgeThreshold && dy < horizontalEdgeThreshold {
		return
	}
	r.edges = append(r.edges, edge{x0: x0, y0: y0, x1: x1, y1: y1, dxdy: (x1 - x0) / dy})

	if r.bboxEmpty {
		r.devXMin, r.devXMax = min(x0, x1), max(x0, x1)
		r.devYMin, r.devYMax = min(y0, y1), max(y0, y1)
		r.bboxEmpty = false
		return
	}
	r.devXMin = min(r.devXMin, x0, x1)
	r.devXMax = max(r.devXMax, x0, x1)
	r.devYMin = min(r.devYMin, y0, y1)
	r.devYMax = max(r.devYMax, y0, y1)
}

// The coverage of a pixel is the signed area of the shape within the
// pixel.  Every edge piece inside a pixel adds
//
//	cover = sign * dy
//	area  = cover * (1 - xFrac)
//
// where xFrac is the horizontal position of the piece within the pixel.
// Scanning a row from left to right, the coverage of pixel i is the sum
// of the cover values of all pixels left of i, plus area[i].

// accumulate adds the contribution of edge e on scanline y.  The buffers
// cover the pixel range [xLo, xHi).
func (r *Rasteriser) accumulate(e *edge, y int, cover, area []float32, xLo, xHi int) {
	yTop := max(float64(y), min(e.y0, e.y1))
	yBot := min(float64(y+1), max(e.y0, e.y1))
	if yBot <= yTop {
		return
	}

	sign := float32(1)
	if e.y1 < e.y0 {
		sign = -1
	}

	xTop := e.x0 + e.dxdy*(yTop-e.y0)
	xBot := e.x0 + e.dxdy*(yBot-e.y0)
	pixLeft := int(math.Floor(min(xTop, xBot)))
	pixRight := int(math.Floor(max(xTop, xBot)))

	switch {
	case pixLeft >= xHi:
		return
	case pixRight < xLo:
		c := sign * float32(yBot-yTop)
		cover[0] += c
		area[0] += c
		return
	case pixLeft == pixRight:
		deposit(e, yTop, yBot, sign, cover, area, xLo, xHi)
		return
	}

	// split the edge where it crosses pixel boundaries
	r.crossings = append(r.crossings[:0], yTop, yBot)
	dydx := 1 / e.dxdy
	for x := pixLeft + 1; x <= pixRight; x++ {
		yx := e.y0 + dydx*(float64(x)-e.x0)
		if yx > yTop && yx < yBot {
			r.crossings = append(r.crossings, yx)
		}
	}
	slices.Sort(r.crossings)
	for i := range len(r.crossings) - 1 {
		deposit(e, r.crossings[i], r.crossings[i+1], sign, cover, area, xLo, xHi)
	}
}

// deposit adds the piece of e between y0 and y1, which lies within a
// single pixel column.
func deposit(e *edge, y0, y1 float64, sign float32, cover, area []float32, xLo, xHi int) {
	if y1 <= y0 {
		return
	}
	c := sign * float32(y1-y0)
	xMid := e.x0 + e.dxdy*((y0+y1)/2-e.y0)
	pix := int(math.Floor(xMid))
	switch {
	case pix < xLo:
		cover[0] += c
		area[0] += c
	case pix < xHi:
		cover[pix-xLo] += c
		area[pix-xLo] += c * float32(1-(xMid-float64(pix)))
	}
}

// integrate turns the accumulated cover and area values of one row into
// coverage values, in place.
func integrate(cover, area []float32) {
	var acc float32
	for i := range cover {
		raw := acc + area[i]
		acc += cover[i]
		if raw < 0 {
			raw = -raw
		}
		cover[i] = min(raw, 1)
	}
}

// trimZeros returns the non-zero part of a coverage row and its offset.
func trimZeros(coverage []float32) ([]float32, int) {
	lo := 0
	for lo < len(coverage) && coverage[lo] == 0 {
		lo++
	}
	if lo == len(coverage) {
		return nil, 0
	}
	hi := len(coverage) - 1
	for hi > lo && coverage[hi] == 0 {
		hi--
	}
	return coverage[lo : hi+1], lo
}

// midColumn returns the pixel column, relative to xLo, in which edge e
// crosses the middle of its extent on scanline y.
func midColumn(e *edge, y int, xLo, xHi int) (int, bool) {
	yTop := max(float64(y), min(e.y0, e.y1))
	yBot := min(float64(y+1), max(e.y0, e.y1))
	if yBot <= yTop {
		return 0, false
	}
	x := int(math.Floor(e.x0 + e.dxdy*((yTop+yBot)/2-e.y0)))
	return min(max(x, xLo), xHi-1) - xLo, true
}

// fillSmall rasterises using one buffer for the whole bounding box.
func (r *Rasteriser) fillSmall(xMin, xMax, yMin, yMax int, emit func(y, xMin int, coverage []float32)) {
	width := xMax - xMin
	height := yMax - yMin
	size := width * height
	r.cover = slices.Grow(r.cover[:0], size)[:size]
	r.area = slices.Grow(r.area[:0], size)[:size]
	clear(r.cover)
	clear(r.area)

	r.rowXMin = slices.Grow(r.rowXMin[:0], height)[:height]
	r.rowXMax = slices.Grow(r.rowXMax[:0], height)[:height]
	for i := range height {
		r.rowXMin[i] = width
		r.rowXMax[i] = -1
	}

	for i := range r.edges {
		e := &r.edges[i]
		lo := max(int(math.Floor(min(e.y0, e.y1))), yMin)
		hi := min(int(math.Floor(max(e.y0, e.y1)))+1, yMax)
		for y := lo; y < hi; y++ {
			row := y - yMin
			off := row * width
			r.accumulate(e, y, r.cover[off:off+width], r.area[off:off+width], xMin, xMax)
			if x, ok := midColumn(e, y, xMin, xMax); ok {
				r.rowXMin[row] = min(r.rowXMin[row], x)
				r.rowXMax[row] = max(r.rowXMax[row], x)
			}
		}
	}

	for row := range height {
		if r.rowXMax[row] < 0 {
			continue
		}
		off := row * width
		coverage := r.cover[off : off+width]
		integrate(coverage, r.area[off:off+width])
		if trimmed, x := trimZeros(coverage); trimmed != nil {
			emit(yMin+row, xMin+x, trimmed)
		}
	}
}

// fillLarge rasterises one scanline at a time, using an active edge list.
func (r *Rasteriser) fillLarge(xMin, xMax, yMin, yMax int, emit func(y, xMin int, coverage []float32)) {
	width := xMax - xMin
	r.cover = slices.Grow(r.cover[:0], width)[:width]
	r.area = slices.Grow(r.area[:0], width)[:width]

	slices.SortFunc(r.edges, func(a, b edge) int {
		return cmp.Compare(min(a.y0, a.y1), min(b.y0, b.y1))
	})
	r.active = r.active[:0]
	next := 0

	for y := yMin; y < yMax; y++ {
		for next < len(r.edges) && min(r.edges[next].y0, r.edges[next].y1) < float64(y+1) {
			r.active = append(r.active, next)
			next++
		}
		if len(r.active) == 0 {
			continue
		}

		clear(r.cover)
		clear(r.area)
		touched := false
		for i := 0; i < len(r.active); {
			e := &r.edges[r.active[i]]
			if max(e.y0, e.y1) <= float64(y) {
				r.active[i] = r.active[len(r.active)-1]
				r.active = r.active[:len(r.active)-1]
				continue
			}
			r.accumulate(e, y, r.cover, r.area, xMin, xMax)
			if _, ok := midColumn(e, y, xMin, xMax); ok {
				touched = true
			}
			i++
		}
		if !touched {
			continue
		}

		integrate(r.cover, r.area)
		if trimmed, x := trimZeros(r.cover); trimmed != nil {
			emit(y, xMin+x, trimmed)
		}
	}
}

const (
	// defaultFlatness is the default arc approximation tolerance in
	// device pixels.
	defaultFlatness = 0.25

	// horizontalEdgeThreshold is the minimum vertical extent of an edge
	// which contributes to the coverage.
	horizontalEdgeThreshold = 1e-10

	// smallPathThreshold is the largest bounding box area, in pixels, for
	// which a single buffer is used for the whole shape.
	smallPathThreshold = 65536
)
