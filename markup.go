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

// Package markup holds the data model for freehand ink and geometric shape
// markup placed on the pages of a PDF document.
//
// Coordinates of strokes and shapes are given in caller space: document
// units with the origin at the top-left corner of the page's visible area
// and the y-axis pointing down.  The content package converts them to PDF
// user space.
package markup

import (
	"fmt"
	"math"

	"seehuhn.de/go/geom/vec"
)

// Color is an RGB color with components in the range [0, 1].
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

// Clamped returns the color with all components clamped to [0, 1].
// NaN components are mapped to 0.
func (c Color) Clamped() Color {
	return Color{R: clamp01(c.R), G: clamp01(c.G), B: clamp01(c.B)}
}

func clamp01(x float64) float64 {
	if !(x > 0) {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// Stroke is a freehand ink stroke.
type Stroke struct {
	Points      []vec.Vec2 `json:"points"`
	Color       Color      `json:"color"`
	Width       float64    `json:"width"`
	Highlighter bool       `json:"highlighter,omitempty"`
}

// ShapeKind identifies the type of a geometric shape.
type ShapeKind int

// These are the supported shape kinds.
const (
	Line ShapeKind = iota + 1
	Arrow
	Rectangle
	Circle
)

func (k ShapeKind) String() string {
	switch k {
	case Line:
		return "line"
	case Arrow:
		return "arrow"
	case Rectangle:
		return "rectangle"
	case Circle:
		return "circle"
	default:
		return fmt.Sprintf("ShapeKind(%d)", int(k))
	}
}

// MarshalText implements the [encoding.TextMarshaler] interface.
func (k ShapeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements the [encoding.TextUnmarshaler] interface.
func (k *ShapeKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "line":
		*k = Line
	case "arrow":
		*k = Arrow
	case "rectangle", "rect":
		*k = Rectangle
	case "circle", "ellipse":
		*k = Circle
	default:
		return fmt.Errorf("unknown shape kind %q", text)
	}
	return nil
}

// Shape is a geometric shape spanned by two corner points.
// For lines and arrows, From is the start and To is the end point.
type Shape struct {
	Kind  ShapeKind `json:"kind"`
	From  vec.Vec2  `json:"from"`
	To    vec.Vec2  `json:"to"`
	Color Color     `json:"color"`
	Width float64   `json:"width"`
}

// Item is a stroke or a shape, after conversion to a single polyline.
type Item struct {
	Points      []vec.Vec2
	Color       Color
	Width       float64
	Highlighter bool
}

// IsDrawable reports whether the item has at least one point and all
// coordinates are finite.
func (it Item) IsDrawable() bool {
	if len(it.Points) == 0 {
		return false
	}
	for _, p := range it.Points {
		if !isFinite(p.X) || !isFinite(p.Y) {
			return false
		}
	}
	return isFinite(it.Width)
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// StrokesByPage maps zero-based page indices to the strokes on that page.
type StrokesByPage map[int][]Stroke

// ShapesByPage maps zero-based page indices to the shapes on that page.
type ShapesByPage map[int][]Shape

// Set is the markup of a whole document.  This is the format of the JSON
// markup files read by the command line tools, for example:
//
//	{
//	  "strokes": {"0": [{"points": [{"X": 10, "Y": 10}, {"X": 20, "Y": 10}],
//	                     "color": {"r": 1, "g": 0, "b": 0}, "width": 2}]},
//	  "shapes": {"1": [{"kind": "arrow", "from": {"X": 50, "Y": 50},
//	                    "to": {"X": 150, "Y": 90}, "width": 2}]}
//	}
type Set struct {
	Strokes StrokesByPage `json:"strokes,omitempty"`
	Shapes  ShapesByPage  `json:"shapes,omitempty"`
}
