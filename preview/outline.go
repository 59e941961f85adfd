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
	"math"

	"seehuhn.de/go/geom/vec"
)

// Ink adds the outline of a polyline, stroked with the given width and
// with round caps and joins, to the current set of polygons.  The outline
// is the union of one rectangle per segment and one disc per vertex; all
// of these have the same orientation, so that the nonzero rule fills the
// union without gaps.
//
// Lines thinner than one device pixel are widened to one pixel.  A
// polyline with a single point is drawn as a dot.
func (r *Rasteriser) Ink(pts []vec.Vec2, width float64) {
	if len(pts) == 0 {
		return
	}
	d := width / 2
	if s := r.deviceScale(); s > 0 {
		d = max(d, 0.5/s)
	}
	if !(d > 0) || math.IsInf(d, 0) {
		return
	}

	for i := 1; i < len(pts); i++ {
		r.addSegment(pts[i-1], pts[i], d)
	}
	for i, p := range pts {
		if i > 0 && p == pts[i-1] {
			continue
		}
		r.addDisc(p, d)
	}
}

// addSegment adds the rectangle of half-width d around the segment a-b.
func (r *Rasteriser) addSegment(a, b vec.Vec2, d float64) {
	t := b.Sub(a)
	l := t.Length()
	if l < zeroLengthThreshold {
		return
	}
	n := vec.Vec2{X: -t.Y, Y: t.X}.Mul(d / l)

	r.AddPoint(a.Add(n))
	r.AddPoint(b.Add(n))
	r.AddPoint(b.Sub(n))
	r.AddPoint(a.Sub(n))
	r.ClosePolygon()
}

// addDisc adds a regular polygon with the same area as the disc of radius
// d around c.
// The vertices are traversed in the same rotational direction as the
// corners in addSegment.
func (r *Rasteriser) addDisc(c vec.Vec2, d float64) {
	// The sagitta of a chord spanning the angle θ is d*(1 - cos(θ/2)).
	n := minDiscVertices
	if devRadius := d * r.deviceScale(); devRadius > r.Flatness {
		step := 2 * math.Acos(1-r.Flatness/devRadius)
		if step > 0 {
			n = max(n, int(math.Ceil(2*math.Pi/step)))
		}
	}
	// Enlarge the polygon so that its area equals the area of the disc.
	theta := 2 * math.Pi / float64(n)
	rad := d * math.Sqrt(theta/math.Sin(theta))
	for i := range n {
		angle := -theta * float64(i)
		r.AddPoint(vec.Vec2{
			X: c.X + rad*math.Cos(angle),
			Y: c.Y + rad*math.Sin(angle),
		})
	}
	r.ClosePolygon()
}

// deviceScale returns the geometric mean of the scale factors of the CTM.
func (r *Rasteriser) deviceScale() float64 {
	m := r.CTM
	return math.Sqrt(math.Abs(m[0]*m[3] - m[1]*m[2]))
}

const (
	// zeroLengthThreshold is the minimum length of a stroke segment.
	zeroLengthThreshold = 1e-10

	// minDiscVertices is the smallest number of vertices used for a disc.
	minDiscVertices = 8
)
