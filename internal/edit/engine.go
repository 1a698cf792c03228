// Package edit validates and applies box editing operations, recording
// an inverse entry for each committed mutation.
package edit

import (
	"box-marker/internal/annotation"
	"box-marker/internal/class"
	"box-marker/internal/view"
	"box-marker/pkg/geometry"
)

// Mode is the current pointer interaction.
type Mode int

const (
	ModeNone Mode = iota
	ModeCreating
	ModeMoving
	ModeResizing
)

// Selection is a non-owning positional reference to the active box plus
// the interaction mode. Index is -1 when nothing is selected. It must be
// cleared whenever a structural mutation invalidates its referent.
type Selection struct {
	Index  int
	Mode   Mode
	Corner view.Corner // valid while Mode == ModeResizing
}

// NoSelection returns the empty selection.
func NoSelection() Selection {
	return Selection{Index: -1}
}

// Active reports whether a box is selected.
func (s Selection) Active() bool {
	return s.Index >= 0
}

// Config holds the interaction thresholds, in screen pixels so they stay
// visually constant under zoom.
type Config struct {
	ClickTolerance float64 // how close a click near a box still counts
	MinBoxPixels   float64 // minimum accepted box extent per axis
	UndoCapacity   int
}

// DefaultConfig returns the standard interaction thresholds.
func DefaultConfig() Config {
	return Config{
		ClickTolerance: 8.0,
		MinBoxPixels:   6.0,
		UndoCapacity:   DefaultUndoCapacity,
	}
}

// Validate clamps values to safe ranges.
func (c *Config) Validate() {
	if c.ClickTolerance <= 0 {
		c.ClickTolerance = 8.0
	}
	if c.MinBoxPixels <= 0 {
		c.MinBoxPixels = 6.0
	}
	if c.UndoCapacity <= 0 {
		c.UndoCapacity = DefaultUndoCapacity
	}
}

// Engine applies editing operations to the active image's annotation
// set. All operations are synchronous and complete within the calling
// event handler; the engine is owned by a single goroutine.
//
// Pointer positions arrive in screen space together with the shell's
// current Mapper; the engine converts through it so thresholds stay
// zoom-independent.
type Engine struct {
	cfg     Config
	classes *class.Registry
	set     *annotation.Set
	undo    *UndoStack
	sel     Selection

	// drag holds the entry for an in-progress move/resize drag. It is
	// committed at drag end only if the box actually changed, so an
	// empty drag never consumes an undo step.
	drag *UndoEntry

	currentClass int // class assigned to newly created boxes
}

// NewEngine creates an engine over the given registry with an empty
// annotation set.
func NewEngine(cfg Config, classes *class.Registry) *Engine {
	cfg.Validate()
	return &Engine{
		cfg:     cfg,
		classes: classes,
		set:     annotation.NewSet(),
		undo:    NewUndoStack(cfg.UndoCapacity),
		sel:     NoSelection(),
	}
}

// SetAnnotations installs the annotation set for a newly active image.
// The undo history and selection are scoped to one image and reset.
func (e *Engine) SetAnnotations(set *annotation.Set) {
	e.set = set
	e.sel = NoSelection()
	e.drag = nil
	e.undo.Clear()
}

// Annotations returns the active annotation set.
func (e *Engine) Annotations() *annotation.Set {
	return e.set
}

// Selection returns the current selection.
func (e *Engine) Selection() Selection {
	return e.sel
}

// Config returns the current interaction thresholds.
func (e *Engine) Config() Config {
	return e.cfg
}

// SetConfig replaces the interaction thresholds. The undo stack keeps
// its existing entries.
func (e *Engine) SetConfig(cfg Config) {
	cfg.Validate()
	e.cfg = cfg
}

// CurrentClass returns the class id used for new boxes.
func (e *Engine) CurrentClass() int {
	return e.currentClass
}

// SetCurrentClass sets the class id used for new boxes.
func (e *Engine) SetCurrentClass(id int) {
	if id >= 0 && id < e.classes.Len() {
		e.currentClass = id
	}
}

// UndoDepth returns the number of undoable operations.
func (e *Engine) UndoDepth() int {
	return e.undo.Len()
}

// snapshot returns an undo entry preamble for the current state.
func (e *Engine) snapshot(kind entryKind, index int) UndoEntry {
	return UndoEntry{
		kind:           kind,
		index:          index,
		prevSel:        e.sel,
		classLenBefore: e.classes.Len(),
		classLenAfter:  e.classes.Len(),
	}
}

// SelectAt resolves a click in screen space. A body or handle hit
// selects that box; a miss clears the selection. Selection changes are
// not recorded in the undo history.
func (e *Engine) SelectAt(p geometry.Point2D, m view.Mapper) view.Hit {
	hit := view.HitTest(p, e.set, e.sel.Index, m, e.cfg.ClickTolerance)
	switch hit.Kind {
	case view.HitNone:
		e.sel = NoSelection()
	default:
		e.sel = Selection{Index: hit.Index}
	}
	return hit
}

// ClearSelection deselects without touching the set.
func (e *Engine) ClearSelection() {
	e.sel = NoSelection()
}

// CreateBox commits a creation drag between two screen points. The drag
// extent, clamped to the image, must reach MinBoxPixels in both axes;
// otherwise no box is appended and no undo entry is recorded. On success
// the new box carries the current class and becomes selected.
func (e *Engine) CreateBox(start, end geometry.Point2D, m view.Mapper) bool {
	a := m.ToNormalized(start)
	b := m.ToNormalized(end)
	a = geometry.NewPoint2D(geometry.Clamp01(a.X), geometry.Clamp01(a.Y))
	b = geometry.NewPoint2D(geometry.Clamp01(b.X), geometry.Clamp01(b.Y))

	rect := geometry.RectFromCorners(a, b)
	pw, ph := m.SizeToScreen(rect.Width, rect.Height)
	if pw < e.cfg.MinBoxPixels || ph < e.cfg.MinBoxPixels {
		return false
	}

	entry := e.snapshot(entryCreate, e.set.Len())
	e.undo.push(entry)

	idx := e.set.Append(annotation.BoxFromRect(e.currentClass, rect))
	e.sel = Selection{Index: idx}
	return true
}

// BeginMove starts a body drag on the selected box. At most one undo
// entry is recorded for the whole drag, at EndMove, and only if the
// box actually moved.
func (e *Engine) BeginMove() bool {
	if !e.sel.Active() {
		return false
	}
	entry := e.snapshot(entryModify, e.sel.Index)
	entry.before = e.set.At(e.sel.Index)
	e.drag = &entry
	e.sel.Mode = ModeMoving
	return true
}

// MoveBy translates the selected box by a screen-space delta. The box
// center is kept inside the image.
func (e *Engine) MoveBy(delta geometry.Point2D, m view.Mapper) {
	if e.sel.Mode != ModeMoving {
		return
	}
	dx, dy := m.SizeToNormalized(1)
	b := e.set.At(e.sel.Index)
	b.CX = geometry.Clamp01(b.CX + delta.X*dx)
	b.CY = geometry.Clamp01(b.CY + delta.Y*dy)
	e.set.Replace(e.sel.Index, b)
}

// EndMove finishes a body drag.
func (e *Engine) EndMove() {
	if e.sel.Mode == ModeMoving {
		e.commitDrag()
		e.sel.Mode = ModeNone
	}
}

// BeginResize starts a handle drag on the selected box's corner. At
// most one undo entry is recorded for the whole drag, at EndResize, and
// only if the box actually changed.
func (e *Engine) BeginResize(corner view.Corner) bool {
	if !e.sel.Active() {
		return false
	}
	entry := e.snapshot(entryModify, e.sel.Index)
	entry.before = e.set.At(e.sel.Index)
	e.drag = &entry
	e.sel.Mode = ModeResizing
	e.sel.Corner = corner
	return true
}

// ResizeTo drags the grabbed corner to a screen position, keeping the
// opposite corner fixed and recentering the box. Extents that would fall
// below the minimum are clamped to it, never to zero or negative.
func (e *Engine) ResizeTo(p geometry.Point2D, m view.Mapper) {
	if e.sel.Mode != ModeResizing {
		return
	}

	b := e.set.At(e.sel.Index)
	fixed := b.Rect().Corners()[e.sel.Corner.Opposite()]

	n := m.ToNormalized(p)
	n = geometry.NewPoint2D(geometry.Clamp01(n.X), geometry.Clamp01(n.Y))

	minW, minH := m.SizeToNormalized(e.cfg.MinBoxPixels)

	var x1, x2 float64
	if n.X >= fixed.X {
		x1, x2 = fixed.X, fixed.X+maxFloat(n.X-fixed.X, minW)
	} else {
		x1, x2 = fixed.X-maxFloat(fixed.X-n.X, minW), fixed.X
	}
	var y1, y2 float64
	if n.Y >= fixed.Y {
		y1, y2 = fixed.Y, fixed.Y+maxFloat(n.Y-fixed.Y, minH)
	} else {
		y1, y2 = fixed.Y-maxFloat(fixed.Y-n.Y, minH), fixed.Y
	}

	rect := geometry.NewRect(x1, y1, x2-x1, y2-y1)
	e.set.Replace(e.sel.Index, annotation.BoxFromRect(b.ClassID, rect))
}

// EndResize finishes a handle drag.
func (e *Engine) EndResize() {
	if e.sel.Mode == ModeResizing {
		e.commitDrag()
		e.sel.Mode = ModeNone
	}
}

// commitDrag records the pending drag entry, unless the drag ended with
// the box exactly where it started.
func (e *Engine) commitDrag() {
	if e.drag == nil {
		return
	}
	if e.set.At(e.drag.index) != e.drag.before {
		e.undo.push(*e.drag)
	}
	e.drag = nil
}

// Delete removes the selected box and clears the selection. With no
// selection it is a silent no-op.
func (e *Engine) Delete() bool {
	if !e.sel.Active() {
		return false
	}
	entry := e.snapshot(entryDelete, e.sel.Index)
	entry.before = e.set.At(e.sel.Index)
	e.undo.push(entry)

	e.set.Remove(e.sel.Index)
	e.sel = NoSelection()
	return true
}

// Duplicate inserts a copy of the selected box immediately above the
// original in stacking order and selects the copy. With no selection it
// is a silent no-op.
func (e *Engine) Duplicate() bool {
	if !e.sel.Active() {
		return false
	}
	src := e.set.At(e.sel.Index)
	copyIdx := e.sel.Index + 1

	entry := e.snapshot(entryCreate, copyIdx)
	e.undo.push(entry)

	e.set.Insert(copyIdx, src)
	e.sel = Selection{Index: copyIdx}
	return true
}

// AssignClass sets the selected box's class id. Unknown ids and missing
// selection are silent no-ops; assigning the class a box already has
// records nothing.
func (e *Engine) AssignClass(id int) bool {
	if !e.sel.Active() || id < 0 || id >= e.classes.Len() {
		return false
	}
	return e.assign(id, e.classes.Len())
}

// AssignClassToken resolves a class token (numeric id or name, possibly
// new) through the registry and assigns it to the selected box. Registry
// growth triggered by the token is captured in the undo entry.
func (e *Engine) AssignClassToken(token string) bool {
	if !e.sel.Active() {
		return false
	}
	lenBefore := e.classes.Len()
	id := e.classes.Resolve(token)
	return e.assign(id, lenBefore)
}

func (e *Engine) assign(id, classLenBefore int) bool {
	b := e.set.At(e.sel.Index)
	if b.ClassID == id {
		return false
	}

	entry := e.snapshot(entryModify, e.sel.Index)
	entry.before = b
	entry.classLenBefore = classLenBefore
	e.undo.push(entry)

	b.ClassID = id
	e.set.Replace(e.sel.Index, b)
	return true
}

// Undo pops the newest entry and applies its inverse to the set, the
// selection, and any registry growth the operation caused. Returns false
// when the history is empty.
func (e *Engine) Undo() bool {
	entry, ok := e.undo.pop()
	if !ok {
		return false
	}

	switch entry.kind {
	case entryCreate:
		e.set.Remove(entry.index)
	case entryDelete:
		e.set.Insert(entry.index, entry.before)
	case entryModify:
		e.set.Replace(entry.index, entry.before)
	}

	// Revert registry growth only if it came from this operation and is
	// still the registry tail; classes added since (e.g. through the
	// class panel) must survive.
	if entry.classLenAfter > entry.classLenBefore && e.classes.Len() == entry.classLenAfter {
		e.classes.Truncate(entry.classLenBefore)
	}
	e.sel = entry.prevSel
	e.sel.Mode = ModeNone
	return true
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
