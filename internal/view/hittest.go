package view

import (
	"math"

	"box-marker/internal/annotation"
	"box-marker/pkg/geometry"
)

// Corner identifies one of the four resize handles of a box.
type Corner int

const (
	CornerTL Corner = iota
	CornerTR
	CornerBL
	CornerBR
)

// Opposite returns the corner diagonally across the box. Resizing keeps
// the opposite corner fixed.
func (c Corner) Opposite() Corner {
	switch c {
	case CornerTL:
		return CornerBR
	case CornerTR:
		return CornerBL
	case CornerBL:
		return CornerTR
	default:
		return CornerTL
	}
}

// HitKind classifies what a pointer position landed on.
type HitKind int

const (
	HitNone HitKind = iota
	HitBody
	HitHandle
)

// Hit is the result of resolving a pointer position.
type Hit struct {
	Kind   HitKind
	Index  int    // box index, -1 for HitNone
	Corner Corner // valid only for HitHandle
}

// HitTest resolves a screen-space pointer position against the set.
//
// The selected box's corner handles are tested first: a handle hit wins
// over everything else so a drag near a corner resizes instead of
// starting a new box. Otherwise boxes are scanned from topmost (last in
// stacking order) to bottommost and the first body hit wins, which
// resolves overlap ties to the most recently added box. tolerance is in
// screen pixels.
func HitTest(p geometry.Point2D, set *annotation.Set, selected int, m Mapper, tolerance float64) Hit {
	if selected >= 0 && selected < set.Len() {
		rect := m.RectToScreen(set.At(selected).Rect())
		for i, corner := range rect.Corners() {
			if math.Abs(p.X-corner.X) <= tolerance && math.Abs(p.Y-corner.Y) <= tolerance {
				return Hit{Kind: HitHandle, Index: selected, Corner: Corner(i)}
			}
		}
	}

	for i := set.Len() - 1; i >= 0; i-- {
		rect := m.RectToScreen(set.At(i).Rect()).Expand(tolerance)
		if rect.Contains(p) {
			return Hit{Kind: HitBody, Index: i}
		}
	}

	return Hit{Kind: HitNone, Index: -1}
}
