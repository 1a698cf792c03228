// Package annotation provides the bounding-box data model and the
// per-image annotation file codec.
package annotation

import (
	"box-marker/pkg/geometry"
)

// Box is a single bounding-box annotation in normalized image
// coordinates: center (CX, CY) and size (W, H) as fractions of the image
// dimensions. After any committed edit W and H are strictly positive.
type Box struct {
	ClassID int
	CX, CY  float64
	W, H    float64
}

// Rect returns the box as a normalized top-left anchored rectangle.
func (b Box) Rect() geometry.Rect {
	return geometry.Rect{
		X:      b.CX - b.W/2,
		Y:      b.CY - b.H/2,
		Width:  b.W,
		Height: b.H,
	}
}

// BoxFromRect builds a Box from a normalized rectangle.
func BoxFromRect(classID int, r geometry.Rect) Box {
	return Box{
		ClassID: classID,
		CX:      r.X + r.Width/2,
		CY:      r.Y + r.Height/2,
		W:       r.Width,
		H:       r.Height,
	}
}

// Set is the ordered list of boxes for one image. Order doubles as
// stacking order: later entries are on top and win hit-test ties.
// Any mutation sets the dirty flag; a successful save clears it.
type Set struct {
	boxes []Box
	dirty bool
}

// NewSet creates an empty annotation set.
func NewSet() *Set {
	return &Set{}
}

// Len returns the number of boxes.
func (s *Set) Len() int {
	return len(s.boxes)
}

// At returns the box at index i.
func (s *Set) At(i int) Box {
	return s.boxes[i]
}

// Boxes returns a copy of the boxes in stacking order.
func (s *Set) Boxes() []Box {
	out := make([]Box, len(s.boxes))
	copy(out, s.boxes)
	return out
}

// Append adds a box on top of the stack and returns its index.
func (s *Set) Append(b Box) int {
	s.boxes = append(s.boxes, b)
	s.dirty = true
	return len(s.boxes) - 1
}

// Insert places a box at index i, shifting later boxes up the stack.
func (s *Set) Insert(i int, b Box) {
	s.boxes = append(s.boxes, Box{})
	copy(s.boxes[i+1:], s.boxes[i:])
	s.boxes[i] = b
	s.dirty = true
}

// Remove deletes and returns the box at index i.
func (s *Set) Remove(i int) Box {
	b := s.boxes[i]
	s.boxes = append(s.boxes[:i], s.boxes[i+1:]...)
	s.dirty = true
	return b
}

// Replace overwrites the box at index i.
func (s *Set) Replace(i int, b Box) {
	s.boxes[i] = b
	s.dirty = true
}

// Dirty reports whether the set has unsaved mutations.
func (s *Set) Dirty() bool {
	return s.dirty
}

// MarkDirty forces the dirty flag, for mutations applied through a
// previously obtained box value.
func (s *Set) MarkDirty() {
	s.dirty = true
}

// ClearDirty resets the dirty flag after a successful save.
func (s *Set) ClearDirty() {
	s.dirty = false
}
