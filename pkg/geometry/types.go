// Package geometry provides basic geometric types used throughout the application.
package geometry

import (
	"math"
)

// Point2D represents a 2D point with floating-point coordinates.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NewPoint2D creates a new Point2D.
func NewPoint2D(x, y float64) Point2D {
	return Point2D{X: x, Y: y}
}

// Distance returns the Euclidean distance to another point.
func (p Point2D) Distance(other Point2D) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Add returns the sum of two points.
func (p Point2D) Add(other Point2D) Point2D {
	return Point2D{X: p.X + other.X, Y: p.Y + other.Y}
}

// Sub returns the difference of two points.
func (p Point2D) Sub(other Point2D) Point2D {
	return Point2D{X: p.X - other.X, Y: p.Y - other.Y}
}

// Scale returns the point scaled by a factor.
func (p Point2D) Scale(factor float64) Point2D {
	return Point2D{X: p.X * factor, Y: p.Y * factor}
}

// Rect represents a rectangle with floating-point coordinates.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewRect creates a new Rect.
func NewRect(x, y, width, height float64) Rect {
	return Rect{X: x, Y: y, Width: width, Height: height}
}

// RectFromCorners creates the axis-aligned rectangle spanned by two
// arbitrary corner points.
func RectFromCorners(a, b Point2D) Rect {
	x1 := math.Min(a.X, b.X)
	y1 := math.Min(a.Y, b.Y)
	x2 := math.Max(a.X, b.X)
	y2 := math.Max(a.Y, b.Y)
	return Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// Contains returns true if the point is inside the rectangle.
func (r Rect) Contains(p Point2D) bool {
	return p.X >= r.X && p.X <= r.X+r.Width &&
		p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// Center returns the center point of the rectangle.
func (r Rect) Center() Point2D {
	return Point2D{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// TopLeft returns the top-left corner.
func (r Rect) TopLeft() Point2D {
	return Point2D{X: r.X, Y: r.Y}
}

// BottomRight returns the bottom-right corner.
func (r Rect) BottomRight() Point2D {
	return Point2D{X: r.X + r.Width, Y: r.Y + r.Height}
}

// Corners returns the four corners in TL, TR, BL, BR order.
func (r Rect) Corners() [4]Point2D {
	return [4]Point2D{
		{X: r.X, Y: r.Y},
		{X: r.X + r.Width, Y: r.Y},
		{X: r.X, Y: r.Y + r.Height},
		{X: r.X + r.Width, Y: r.Y + r.Height},
	}
}

// Expand returns the rectangle grown by margin on every side.
// A negative margin shrinks the rectangle.
func (r Rect) Expand(margin float64) Rect {
	return Rect{
		X:      r.X - margin,
		Y:      r.Y - margin,
		Width:  r.Width + 2*margin,
		Height: r.Height + 2*margin,
	}
}

// Intersects returns true if this rectangle intersects with another.
func (r Rect) Intersects(other Rect) bool {
	return r.X < other.X+other.Width && r.X+r.Width > other.X &&
		r.Y < other.Y+other.Height && r.Y+r.Height > other.Y
}

// Size represents a 2D size.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewSize creates a new Size.
func NewSize(width, height float64) Size {
	return Size{Width: width, Height: height}
}

// AffineTransform represents a 2x3 affine transformation matrix.
// [a b tx]
// [c d ty]
type AffineTransform struct {
	A, B, TX float64
	C, D, TY float64
}

// Identity returns the identity transform.
func Identity() AffineTransform {
	return AffineTransform{A: 1, D: 1}
}

// Translation returns a translation transform.
func Translation(tx, ty float64) AffineTransform {
	return AffineTransform{A: 1, D: 1, TX: tx, TY: ty}
}

// Scale returns a scaling transform.
func Scale(sx, sy float64) AffineTransform {
	return AffineTransform{A: sx, D: sy}
}

// Apply applies the transform to a point.
func (t AffineTransform) Apply(p Point2D) Point2D {
	return Point2D{
		X: t.A*p.X + t.B*p.Y + t.TX,
		Y: t.C*p.X + t.D*p.Y + t.TY,
	}
}

// Compose returns this transform composed with another (this * other).
func (t AffineTransform) Compose(other AffineTransform) AffineTransform {
	return AffineTransform{
		A:  t.A*other.A + t.B*other.C,
		B:  t.A*other.B + t.B*other.D,
		TX: t.A*other.TX + t.B*other.TY + t.TX,
		C:  t.C*other.A + t.D*other.C,
		D:  t.C*other.B + t.D*other.D,
		TY: t.C*other.TX + t.D*other.TY + t.TY,
	}
}

// Inverse returns the inverse transform, if it exists.
func (t AffineTransform) Inverse() (AffineTransform, bool) {
	det := t.A*t.D - t.B*t.C
	if math.Abs(det) < 1e-10 {
		return AffineTransform{}, false
	}

	invDet := 1.0 / det
	return AffineTransform{
		A:  t.D * invDet,
		B:  -t.B * invDet,
		TX: (t.B*t.TY - t.D*t.TX) * invDet,
		C:  -t.C * invDet,
		D:  t.A * invDet,
		TY: (t.C*t.TX - t.A*t.TY) * invDet,
	}, true
}

// Clamp01 clamps a value to the [0, 1] range.
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
