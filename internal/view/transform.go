// Package view maps between screen space under the shell's zoom/pan
// transform and the normalized image-fraction space boxes live in, and
// resolves pointer positions to boxes and resize handles.
package view

import (
	"box-marker/pkg/geometry"
)

// Viewport is the zoom/pan transform the GUI shell currently applies to
// the image. The shell owns it; the engine only reads it.
type Viewport struct {
	Zoom float64          // screen pixels per image pixel
	Pan  geometry.Point2D // screen position of the image's top-left corner
}

// Mapper converts between screen pixels and normalized box geometry for
// one image under one viewport. Interaction thresholds are defined in
// screen pixels and converted through the mapper, so they stay visually
// constant regardless of zoom.
type Mapper struct {
	view  Viewport
	image geometry.Size // image dimensions in pixels
}

// NewMapper creates a mapper for the given viewport and image size.
func NewMapper(view Viewport, imageSize geometry.Size) Mapper {
	return Mapper{view: view, image: imageSize}
}

// transform returns the normalized-to-screen affine transform.
func (m Mapper) transform() geometry.AffineTransform {
	scale := geometry.Scale(m.view.Zoom*m.image.Width, m.view.Zoom*m.image.Height)
	return geometry.Translation(m.view.Pan.X, m.view.Pan.Y).Compose(scale)
}

// ToScreen maps a normalized point to screen pixels.
func (m Mapper) ToScreen(p geometry.Point2D) geometry.Point2D {
	return m.transform().Apply(p)
}

// ToNormalized maps a screen point to normalized image fractions.
// It is the exact inverse of ToScreen up to floating-point tolerance.
func (m Mapper) ToNormalized(p geometry.Point2D) geometry.Point2D {
	inv, ok := m.transform().Inverse()
	if !ok {
		return geometry.Point2D{}
	}
	return inv.Apply(p)
}

// RectToScreen maps a normalized rectangle to screen pixels.
func (m Mapper) RectToScreen(r geometry.Rect) geometry.Rect {
	tl := m.ToScreen(r.TopLeft())
	br := m.ToScreen(r.BottomRight())
	return geometry.RectFromCorners(tl, br)
}

// SizeToNormalized converts a pixel extent to per-axis normalized
// extents, for thresholds like the minimum box size.
func (m Mapper) SizeToNormalized(pixels float64) (w, h float64) {
	return pixels / (m.view.Zoom * m.image.Width), pixels / (m.view.Zoom * m.image.Height)
}

// SizeToScreen converts normalized per-axis extents to screen pixels.
func (m Mapper) SizeToScreen(w, h float64) (pw, ph float64) {
	return w * m.view.Zoom * m.image.Width, h * m.view.Zoom * m.image.Height
}
