package edit

import (
	"math"
	"reflect"
	"testing"

	"box-marker/internal/annotation"
	"box-marker/internal/class"
	"box-marker/internal/view"
	"box-marker/pkg/geometry"
)

// testMapper maps a 100x100 image at zoom 1 with no pan: screen pixels
// are normalized coordinates times 100.
func testMapper() view.Mapper {
	return view.NewMapper(view.Viewport{Zoom: 1}, geometry.NewSize(100, 100))
}

func newTestEngine() *Engine {
	reg := class.NewRegistryWithNames([]string{"object", "marker"})
	return NewEngine(DefaultConfig(), reg)
}

func TestCreateBox(t *testing.T) {
	e := newTestEngine()
	m := testMapper()

	if !e.CreateBox(geometry.NewPoint2D(20, 20), geometry.NewPoint2D(60, 40), m) {
		t.Fatal("valid drag rejected")
	}
	if e.Annotations().Len() != 1 {
		t.Fatalf("box count = %d, want 1", e.Annotations().Len())
	}

	b := e.Annotations().At(0)
	if math.Abs(b.CX-0.4) > 1e-9 || math.Abs(b.CY-0.3) > 1e-9 ||
		math.Abs(b.W-0.4) > 1e-9 || math.Abs(b.H-0.2) > 1e-9 {
		t.Errorf("created box = %+v", b)
	}
	if b.ClassID != 0 {
		t.Errorf("class id = %d, want current class 0", b.ClassID)
	}
	if sel := e.Selection(); sel.Index != 0 {
		t.Errorf("selection = %+v, want the new box", sel)
	}
	if e.UndoDepth() != 1 {
		t.Errorf("undo depth = %d, want 1", e.UndoDepth())
	}
}

func TestCreateBoxBelowMinimum(t *testing.T) {
	e := newTestEngine()
	m := testMapper()

	tests := []struct {
		name       string
		start, end geometry.Point2D
	}{
		{"tiny both axes", geometry.NewPoint2D(50, 50), geometry.NewPoint2D(53, 53)},
		{"thin horizontal", geometry.NewPoint2D(10, 10), geometry.NewPoint2D(90, 12)},
		{"thin vertical", geometry.NewPoint2D(10, 10), geometry.NewPoint2D(12, 90)},
		{"zero extent", geometry.NewPoint2D(50, 50), geometry.NewPoint2D(50, 50)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if e.CreateBox(tt.start, tt.end, m) {
				t.Error("drag below minimum was accepted")
			}
		})
	}

	if e.Annotations().Len() != 0 {
		t.Errorf("box count = %d, want 0", e.Annotations().Len())
	}
	if e.UndoDepth() != 0 {
		t.Errorf("rejected drags recorded %d undo entries", e.UndoDepth())
	}
}

func TestCreateBoxZoomIndependentMinimum(t *testing.T) {
	e := newTestEngine()
	// At zoom 10 a 10-pixel drag is only 1 image pixel (0.01 normalized)
	// but still a valid 10-screen-pixel box.
	m := view.NewMapper(view.Viewport{Zoom: 10}, geometry.NewSize(100, 100))

	if !e.CreateBox(geometry.NewPoint2D(100, 100), geometry.NewPoint2D(110, 110), m) {
		t.Error("10px drag at zoom 10 rejected")
	}
	// The same normalized extent at zoom 0.1 is far below the pixel minimum.
	small := view.NewMapper(view.Viewport{Zoom: 0.1}, geometry.NewSize(100, 100))
	if e.CreateBox(geometry.NewPoint2D(1, 1), geometry.NewPoint2D(2, 2), small) {
		t.Error("sub-minimum drag at zoom 0.1 accepted")
	}
}

func TestSelectAt(t *testing.T) {
	e := newTestEngine()
	m := testMapper()
	e.CreateBox(geometry.NewPoint2D(20, 20), geometry.NewPoint2D(40, 40), m)
	e.CreateBox(geometry.NewPoint2D(30, 30), geometry.NewPoint2D(60, 60), m)

	// Click in the overlap with no prior selection: topmost (second) wins.
	e.ClearSelection()
	hit := e.SelectAt(geometry.NewPoint2D(35, 35), m)
	if hit.Kind != view.HitBody || e.Selection().Index != 1 {
		t.Errorf("overlap click selected %+v (hit %+v), want box 1", e.Selection(), hit)
	}

	// Click on empty space clears.
	e.SelectAt(geometry.NewPoint2D(90, 90), m)
	if e.Selection().Active() {
		t.Errorf("miss left selection %+v", e.Selection())
	}

	// Selection changes never touch the undo history.
	if e.UndoDepth() != 2 {
		t.Errorf("undo depth = %d, want 2 (creates only)", e.UndoDepth())
	}
}

func TestMoveBox(t *testing.T) {
	e := newTestEngine()
	m := testMapper()
	e.CreateBox(geometry.NewPoint2D(20, 20), geometry.NewPoint2D(40, 40), m)

	if !e.BeginMove() {
		t.Fatal("BeginMove with selection failed")
	}
	e.MoveBy(geometry.NewPoint2D(10, 5), m)
	e.MoveBy(geometry.NewPoint2D(10, 5), m)
	e.EndMove()

	b := e.Annotations().At(0)
	if math.Abs(b.CX-0.5) > 1e-9 || math.Abs(b.CY-0.4) > 1e-9 {
		t.Errorf("moved center = (%v, %v), want (0.5, 0.4)", b.CX, b.CY)
	}
	if math.Abs(b.W-0.2) > 1e-9 || math.Abs(b.H-0.2) > 1e-9 {
		t.Errorf("move changed size: %+v", b)
	}
	// The whole drag is one operation.
	if e.UndoDepth() != 2 {
		t.Errorf("undo depth = %d, want 2", e.UndoDepth())
	}

	// Center is clamped inside the image.
	e.BeginMove()
	e.MoveBy(geometry.NewPoint2D(10000, 10000), m)
	e.EndMove()
	b = e.Annotations().At(0)
	if b.CX != 1 || b.CY != 1 {
		t.Errorf("clamped center = (%v, %v), want (1, 1)", b.CX, b.CY)
	}
}

func TestMoveWithoutSelection(t *testing.T) {
	e := newTestEngine()
	if e.BeginMove() {
		t.Error("BeginMove without selection succeeded")
	}
	if e.UndoDepth() != 0 {
		t.Error("no-op recorded an undo entry")
	}
}

func TestResizeBox(t *testing.T) {
	e := newTestEngine()
	m := testMapper()
	e.CreateBox(geometry.NewPoint2D(40, 40), geometry.NewPoint2D(60, 60), m)

	// Drag the BR corner outward; TL stays fixed at (0.4, 0.4).
	if !e.BeginResize(view.CornerBR) {
		t.Fatal("BeginResize failed")
	}
	e.ResizeTo(geometry.NewPoint2D(80, 70), m)
	e.EndResize()

	b := e.Annotations().At(0)
	r := b.Rect()
	if math.Abs(r.X-0.4) > 1e-9 || math.Abs(r.Y-0.4) > 1e-9 {
		t.Errorf("fixed corner moved: rect = %+v", r)
	}
	if math.Abs(r.Width-0.4) > 1e-9 || math.Abs(r.Height-0.3) > 1e-9 {
		t.Errorf("resized extent = (%v, %v), want (0.4, 0.3)", r.Width, r.Height)
	}
}

func TestResizeClampsToMinimum(t *testing.T) {
	e := newTestEngine()
	m := testMapper()
	e.CreateBox(geometry.NewPoint2D(40, 40), geometry.NewPoint2D(60, 60), m)

	// Collapse the box onto its fixed corner: extents clamp to the
	// 6-pixel minimum (0.06 normalized), never to zero.
	e.BeginResize(view.CornerBR)
	e.ResizeTo(geometry.NewPoint2D(40, 40), m)
	e.EndResize()

	b := e.Annotations().At(0)
	if b.W <= 0 || b.H <= 0 {
		t.Fatalf("resize produced non-positive extent: %+v", b)
	}
	if math.Abs(b.W-0.06) > 1e-9 || math.Abs(b.H-0.06) > 1e-9 {
		t.Errorf("clamped extent = (%v, %v), want (0.06, 0.06)", b.W, b.H)
	}
	r := b.Rect()
	if math.Abs(r.X-0.4) > 1e-9 || math.Abs(r.Y-0.4) > 1e-9 {
		t.Errorf("fixed corner moved during clamp: %+v", r)
	}
}

func TestResizeFlipAcrossFixedCorner(t *testing.T) {
	e := newTestEngine()
	m := testMapper()
	e.CreateBox(geometry.NewPoint2D(40, 40), geometry.NewPoint2D(60, 60), m)

	// Drag BR past TL: the box flips but the grabbed extent is honored.
	e.BeginResize(view.CornerBR)
	e.ResizeTo(geometry.NewPoint2D(20, 20), m)
	e.EndResize()

	b := e.Annotations().At(0)
	r := b.Rect()
	if math.Abs(r.X-0.2) > 1e-9 || math.Abs(r.Y-0.2) > 1e-9 ||
		math.Abs(r.Width-0.2) > 1e-9 || math.Abs(r.Height-0.2) > 1e-9 {
		t.Errorf("flipped rect = %+v", r)
	}
}

func TestDeleteBox(t *testing.T) {
	e := newTestEngine()
	m := testMapper()
	e.CreateBox(geometry.NewPoint2D(20, 20), geometry.NewPoint2D(40, 40), m)

	if !e.Delete() {
		t.Fatal("Delete with selection failed")
	}
	if e.Annotations().Len() != 0 {
		t.Errorf("box count = %d, want 0", e.Annotations().Len())
	}
	if e.Selection().Active() {
		t.Error("selection must be cleared after delete")
	}

	// No selection: silent no-op.
	if e.Delete() {
		t.Error("Delete without selection succeeded")
	}
}

func TestDuplicateBox(t *testing.T) {
	e := newTestEngine()
	m := testMapper()
	e.CreateBox(geometry.NewPoint2D(20, 20), geometry.NewPoint2D(40, 40), m)
	e.CreateBox(geometry.NewPoint2D(60, 60), geometry.NewPoint2D(80, 80), m)

	// Select and duplicate the first box: the copy lands at index 1,
	// directly above the original, not at the top of the stack.
	e.SelectAt(geometry.NewPoint2D(30, 30), m)
	if !e.Duplicate() {
		t.Fatal("Duplicate failed")
	}
	if e.Annotations().Len() != 3 {
		t.Fatalf("box count = %d, want 3", e.Annotations().Len())
	}
	if e.Annotations().At(0) != e.Annotations().At(1) {
		t.Errorf("copy not adjacent to original: %+v vs %+v",
			e.Annotations().At(0), e.Annotations().At(1))
	}
	if sel := e.Selection(); sel.Index != 1 {
		t.Errorf("selection = %+v, want the copy at index 1", sel)
	}

	e.ClearSelection()
	if e.Duplicate() {
		t.Error("Duplicate without selection succeeded")
	}
}

func TestAssignClass(t *testing.T) {
	e := newTestEngine()
	m := testMapper()
	e.CreateBox(geometry.NewPoint2D(20, 20), geometry.NewPoint2D(40, 40), m)

	if !e.AssignClass(1) {
		t.Fatal("AssignClass(1) failed")
	}
	if got := e.Annotations().At(0).ClassID; got != 1 {
		t.Errorf("class id = %d, want 1", got)
	}

	// Re-assigning the same class records nothing.
	depth := e.UndoDepth()
	if e.AssignClass(1) {
		t.Error("no-op assignment reported success")
	}
	if e.UndoDepth() != depth {
		t.Error("no-op assignment grew the undo history")
	}

	// Assigning by unknown name appends the class.
	if !e.AssignClassToken("red_ring") {
		t.Fatal("AssignClassToken failed")
	}
	if got := e.Annotations().At(0).ClassID; got != 2 {
		t.Errorf("class id = %d, want 2", got)
	}
}

func TestSetCurrentClass(t *testing.T) {
	e := newTestEngine()
	e.SetCurrentClass(1)
	if e.CurrentClass() != 1 {
		t.Errorf("current class = %d, want 1", e.CurrentClass())
	}
	e.SetCurrentClass(99) // out of range: ignored
	if e.CurrentClass() != 1 {
		t.Errorf("out-of-range set changed current class to %d", e.CurrentClass())
	}
}

func TestUndoRestoresState(t *testing.T) {
	e := newTestEngine()
	m := testMapper()

	e.CreateBox(geometry.NewPoint2D(10, 10), geometry.NewPoint2D(30, 30), m)
	before := e.Annotations().Boxes()

	// A batch of operations...
	e.CreateBox(geometry.NewPoint2D(50, 50), geometry.NewPoint2D(80, 80), m)
	e.BeginMove()
	e.MoveBy(geometry.NewPoint2D(5, 5), m)
	e.EndMove()
	e.AssignClass(1)
	e.Duplicate()
	e.Delete()

	// ...then the same number of undos restores the starting state.
	for i := 0; i < 5; i++ {
		if !e.Undo() {
			t.Fatalf("undo %d failed", i+1)
		}
	}
	if !reflect.DeepEqual(e.Annotations().Boxes(), before) {
		t.Errorf("after undos:\ngot  %+v\nwant %+v", e.Annotations().Boxes(), before)
	}

	if e.Undo() != true {
		t.Fatal("undo of the initial create failed")
	}
	if e.Annotations().Len() != 0 {
		t.Errorf("box count = %d, want 0", e.Annotations().Len())
	}
	if e.Undo() {
		t.Error("undo on empty history succeeded")
	}
}

func TestUndoRevertsRegistryGrowth(t *testing.T) {
	reg := class.NewRegistryWithNames([]string{"object"})
	e := NewEngine(DefaultConfig(), reg)
	m := testMapper()

	e.CreateBox(geometry.NewPoint2D(20, 20), geometry.NewPoint2D(40, 40), m)
	e.AssignClassToken("scratch")
	if reg.Len() != 2 {
		t.Fatalf("registry length = %d, want 2", reg.Len())
	}

	if !e.Undo() {
		t.Fatal("undo failed")
	}
	if reg.Len() != 1 {
		t.Errorf("registry length after undo = %d, want 1", reg.Len())
	}
	if got := e.Annotations().At(0).ClassID; got != 0 {
		t.Errorf("class id after undo = %d, want 0", got)
	}
}

func TestUndoKeepsClassesAddedAfterOperation(t *testing.T) {
	reg := class.NewRegistryWithNames([]string{"object"})
	e := NewEngine(DefaultConfig(), reg)
	m := testMapper()

	// A class added outside the engine (the class panel writes straight
	// to the registry) must survive undoing an earlier operation.
	e.CreateBox(geometry.NewPoint2D(20, 20), geometry.NewPoint2D(40, 40), m)
	reg.Add("panel_added")

	if !e.Undo() {
		t.Fatal("undo failed")
	}
	if e.Annotations().Len() != 0 {
		t.Errorf("box count after undo = %d, want 0", e.Annotations().Len())
	}
	if got := reg.Names(); !reflect.DeepEqual(got, []string{"object", "panel_added"}) {
		t.Errorf("registry after undo = %v, want [object panel_added]", got)
	}
}

func TestUndoSkipsRegistryRevertWhenGrowthIsNotTail(t *testing.T) {
	reg := class.NewRegistryWithNames([]string{"object"})
	e := NewEngine(DefaultConfig(), reg)
	m := testMapper()

	e.CreateBox(geometry.NewPoint2D(20, 20), geometry.NewPoint2D(40, 40), m)
	e.AssignClassToken("scratch")
	reg.Add("panel_added")

	if !e.Undo() {
		t.Fatal("undo failed")
	}
	// The assignment is reverted, but the registry is left alone:
	// "scratch" is no longer the tail and truncating would also remove
	// "panel_added".
	if got := e.Annotations().At(0).ClassID; got != 0 {
		t.Errorf("class id after undo = %d, want 0", got)
	}
	if got := reg.Names(); !reflect.DeepEqual(got, []string{"object", "scratch", "panel_added"}) {
		t.Errorf("registry after undo = %v, want all three classes kept", got)
	}
}

func TestEmptyDragRecordsNothing(t *testing.T) {
	e := newTestEngine()
	m := testMapper()
	e.CreateBox(geometry.NewPoint2D(20, 20), geometry.NewPoint2D(40, 40), m)
	before := e.Annotations().At(0)

	// Press and release without displacement: no undo entry.
	e.BeginMove()
	e.EndMove()
	e.BeginResize(view.CornerBR)
	e.EndResize()
	if e.UndoDepth() != 1 {
		t.Fatalf("undo depth = %d, want 1 after empty drags", e.UndoDepth())
	}
	if got := e.Annotations().At(0); got != before {
		t.Errorf("empty drag changed the box: %+v", got)
	}

	// The single remaining entry is the create itself.
	if !e.Undo() {
		t.Fatal("undo failed")
	}
	if e.Annotations().Len() != 0 {
		t.Errorf("box count = %d, want 0 (undo must hit the create)", e.Annotations().Len())
	}
}

func TestUndoCapacityEviction(t *testing.T) {
	cfg := DefaultConfig()
	cfg.UndoCapacity = 3
	e := NewEngine(cfg, class.NewRegistryWithNames([]string{"object"}))
	m := testMapper()

	for i := 0; i < 5; i++ {
		x := float64(10 * (i + 1))
		if !e.CreateBox(geometry.NewPoint2D(0, x), geometry.NewPoint2D(9, x+9), m) {
			t.Fatalf("create %d rejected", i)
		}
	}

	// Only the 3 most recent creates are reversible.
	undone := 0
	for e.Undo() {
		undone++
	}
	if undone != 3 {
		t.Errorf("undone %d operations, want 3", undone)
	}
	if e.Annotations().Len() != 2 {
		t.Errorf("box count = %d, want the 2 evicted creates to remain", e.Annotations().Len())
	}
}

func TestSetAnnotationsClearsHistory(t *testing.T) {
	e := newTestEngine()
	m := testMapper()
	e.CreateBox(geometry.NewPoint2D(20, 20), geometry.NewPoint2D(40, 40), m)

	e.SetAnnotations(annotation.NewSet())
	if e.UndoDepth() != 0 {
		t.Errorf("undo depth after image switch = %d, want 0", e.UndoDepth())
	}
	if e.Selection().Active() {
		t.Error("selection must reset on image switch")
	}
	if e.Undo() {
		t.Error("edits on the previous image were undoable")
	}
}
