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

// Package geometry converts strokes and shapes into polylines.
//
// All functions in this package are pure.  The same shape always resolves
// to the same points, so that previews and saved documents agree.
package geometry

import (
	"math"

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/markup"
)

// Resolve converts a shape into an ordered list of points.
//
// Lines resolve to their two end points.  Rectangles resolve to a closed
// loop of five points.  Arrows resolve to the shaft followed by the two
// arrowhead wing points, or to a bare line if the shaft has zero length.
// Circles resolve to 37 points on the ellipse inscribed in the box spanned
// by the two corners.
//
// Shapes of unknown kind and shapes with non-finite corners resolve to nil.
func Resolve(s markup.Shape) []vec.Vec2 {
	if !finite(s.From) || !finite(s.To) {
		return nil
	}

	switch s.Kind {
	case markup.Line:
		return []vec.Vec2{s.From, s.To}

	case markup.Rectangle:
		a, b := s.From, s.To
		return []vec.Vec2{
			a,
			{X: b.X, Y: a.Y},
			b,
			{X: a.X, Y: b.Y},
			a,
		}

	case markup.Arrow:
		left, right, ok := Arrowhead(s.From, s.To)
		if !ok {
			return []vec.Vec2{s.From, s.To}
		}
		return []vec.Vec2{s.From, s.To, left, right}

	case markup.Circle:
		return ellipse(s.From, s.To)

	default:
		return nil
	}
}

// Arrowhead computes the two wing points of an arrow pointing from `from`
// to `to`.  The wings start at `to` and point back along the shaft, rotated
// by ±30°.  Their length is the smaller of 20 units and 30% of the shaft
// length.  If the shaft has zero length, ok is false.
func Arrowhead(from, to vec.Vec2) (left, right vec.Vec2, ok bool) {
	shaft := to.Sub(from)
	l := shaft.Length()
	if l < zeroLength {
		return vec.Vec2{}, vec.Vec2{}, false
	}

	wing := min(maxWingLength, wingFraction*l)
	back := shaft.Mul(-1 / l) // unit vector pointing from the tip to the tail

	left = to.Add(rotate(back, wingAngle).Mul(wing))
	right = to.Add(rotate(back, -wingAngle).Mul(wing))
	return left, right, true
}

// ellipse samples the ellipse inscribed in the box spanned by a and b.
func ellipse(a, b vec.Vec2) []vec.Vec2 {
	center := a.Add(b).Mul(0.5)
	rx := math.Abs(b.X-a.X) / 2
	ry := math.Abs(b.Y-a.Y) / 2

	pts := make([]vec.Vec2, circleSegments+1)
	for i := range pts {
		angle := 2 * math.Pi * float64(i) / circleSegments
		pts[i] = vec.Vec2{
			X: center.X + rx*math.Cos(angle),
			Y: center.Y + ry*math.Sin(angle),
		}
	}
	return pts
}

// rotate rotates v counter-clockwise by the given angle (in radians).
func rotate(v vec.Vec2, angle float64) vec.Vec2 {
	sin, cos := math.Sincos(angle)
	return vec.Vec2{
		X: cos*v.X - sin*v.Y,
		Y: sin*v.X + cos*v.Y,
	}
}

// ShapeItem resolves a shape into a drawable item.
//
// For arrows, the polyline runs along the shaft to the tip, out to the
// first wing, back to the tip and out to the second wing, so that a single
// open path draws the whole arrow.
func ShapeItem(s markup.Shape) markup.Item {
	pts := Resolve(s)
	if s.Kind == markup.Arrow && len(pts) == 4 {
		pts = []vec.Vec2{pts[0], pts[1], pts[2], pts[1], pts[3]}
	}
	return markup.Item{
		Points: pts,
		Color:  s.Color,
		Width:  s.Width,
	}
}

// StrokeItem converts a stroke into a drawable item.
func StrokeItem(s markup.Stroke) markup.Item {
	return markup.Item{
		Points:      s.Points,
		Color:       s.Color,
		Width:       s.Width,
		Highlighter: s.Highlighter,
	}
}

// Items converts strokes and shapes into drawable items.  Strokes come
// first, followed by shapes, both in input order.  Items which cannot be
// drawn are included; callers filter them with [markup.Item.IsDrawable].
func Items(strokes []markup.Stroke, shapes []markup.Shape) []markup.Item {
	res := make([]markup.Item, 0, len(strokes)+len(shapes))
	for _, s := range strokes {
		res = append(res, StrokeItem(s))
	}
	for _, s := range shapes {
		res = append(res, ShapeItem(s))
	}
	return res
}

// Bounds returns the bounding box of the points, grown by half the line
// width on every side.  If pts is empty, the zero rectangle is returned.
func Bounds(pts []vec.Vec2, width float64) rect.Rect {
	if len(pts) == 0 {
		return rect.Rect{}
	}
	r := rect.Rect{LLx: pts[0].X, LLy: pts[0].Y, URx: pts[0].X, URy: pts[0].Y}
	for _, p := range pts[1:] {
		r.LLx = min(r.LLx, p.X)
		r.LLy = min(r.LLy, p.Y)
		r.URx = max(r.URx, p.X)
		r.URy = max(r.URy, p.Y)
	}
	d := math.Abs(width) / 2
	r.LLx -= d
	r.LLy -= d
	r.URx += d
	r.URy += d
	return r
}

func finite(p vec.Vec2) bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) &&
		!math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

const (
	// circleSegments is the number of line segments used to approximate
	// a circle or ellipse.
	circleSegments = 36

	// maxWingLength is the maximal length of an arrowhead wing.
	maxWingLength = 20

	// wingFraction is the wing length relative to the shaft length, for
	// short arrows.
	wingFraction = 0.3

	// wingAngle is the angle between a wing and the shaft.
	wingAngle = math.Pi / 6

	// zeroLength is the shaft length below which an arrow is drawn as a
	// plain line.
	zeroLength = 1e-9
)
