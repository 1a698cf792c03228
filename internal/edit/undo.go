package edit

import (
	"box-marker/internal/annotation"
)

// DefaultUndoCapacity bounds the history. 200 entries covers any
// realistic labeling session on one image.
const DefaultUndoCapacity = 200

type entryKind int

const (
	entryCreate entryKind = iota // inverse: remove the created box
	entryDelete                  // inverse: re-insert the removed box
	entryModify                  // inverse: restore the pre-edit box value
)

// UndoEntry is a tagged inverse record for one committed operation. Each
// entry carries exactly the state needed to invert that one action: the
// box value before the edit, the selection before the edit, and the
// registry span the operation itself appended (so undo can revert that
// growth without touching classes added by anything else).
type UndoEntry struct {
	kind           entryKind
	index          int
	before         annotation.Box // entryDelete and entryModify only
	prevSel        Selection
	classLenBefore int
	classLenAfter  int
}

// UndoStack is a bounded LIFO of undo entries, scoped to one image.
// Pushing past capacity silently evicts the oldest entry. There is no
// redo.
type UndoStack struct {
	entries  []UndoEntry
	capacity int
}

// NewUndoStack creates a stack with the given capacity; non-positive
// values fall back to DefaultUndoCapacity.
func NewUndoStack(capacity int) *UndoStack {
	if capacity <= 0 {
		capacity = DefaultUndoCapacity
	}
	return &UndoStack{capacity: capacity}
}

// Len returns the number of recorded entries.
func (u *UndoStack) Len() int {
	return len(u.entries)
}

// Clear discards all history. Called when the active image changes:
// edits on one image are never undoable from another.
func (u *UndoStack) Clear() {
	u.entries = u.entries[:0]
}

func (u *UndoStack) push(e UndoEntry) {
	if len(u.entries) >= u.capacity {
		copy(u.entries, u.entries[1:])
		u.entries = u.entries[:len(u.entries)-1]
	}
	u.entries = append(u.entries, e)
}

func (u *UndoStack) pop() (UndoEntry, bool) {
	if len(u.entries) == 0 {
		return UndoEntry{}, false
	}
	e := u.entries[len(u.entries)-1]
	u.entries = u.entries[:len(u.entries)-1]
	return e, true
}
