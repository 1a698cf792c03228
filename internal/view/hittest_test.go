package view

import (
	"testing"

	"box-marker/internal/annotation"
	"box-marker/pkg/geometry"
)

// testMapper maps a 100x100 image at zoom 1 with no pan, so normalized
// coordinates are screen pixels divided by 100.
func testMapper() Mapper {
	return NewMapper(Viewport{Zoom: 1}, geometry.NewSize(100, 100))
}

func TestHitTestTopmostWins(t *testing.T) {
	set := annotation.NewSet()
	// A then B, overlapping in the middle; B is on top.
	set.Append(annotation.Box{ClassID: 0, CX: 0.4, CY: 0.4, W: 0.4, H: 0.4}) // 20..60
	set.Append(annotation.Box{ClassID: 1, CX: 0.6, CY: 0.6, W: 0.4, H: 0.4}) // 40..80

	hit := HitTest(geometry.NewPoint2D(50, 50), set, -1, testMapper(), 4)
	if hit.Kind != HitBody || hit.Index != 1 {
		t.Errorf("overlap click = %+v, want body hit on box 1", hit)
	}

	// Outside B but inside A.
	hit = HitTest(geometry.NewPoint2D(25, 25), set, -1, testMapper(), 4)
	if hit.Kind != HitBody || hit.Index != 0 {
		t.Errorf("click in A only = %+v, want body hit on box 0", hit)
	}
}

func TestHitTestToleranceBorder(t *testing.T) {
	set := annotation.NewSet()
	set.Append(annotation.Box{ClassID: 0, CX: 0.5, CY: 0.5, W: 0.2, H: 0.2}) // 40..60

	tests := []struct {
		name string
		p    geometry.Point2D
		want HitKind
	}{
		{"inside", geometry.NewPoint2D(50, 50), HitBody},
		{"just outside within tolerance", geometry.NewPoint2D(63, 50), HitBody},
		{"beyond tolerance", geometry.NewPoint2D(65, 50), HitNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit := HitTest(tt.p, set, -1, testMapper(), 4)
			if hit.Kind != tt.want {
				t.Errorf("hit = %+v, want kind %v", hit, tt.want)
			}
		})
	}
}

func TestHitTestHandlePriority(t *testing.T) {
	set := annotation.NewSet()
	set.Append(annotation.Box{ClassID: 0, CX: 0.5, CY: 0.5, W: 0.2, H: 0.2}) // 40..60
	// A second box stacked on top, covering the first box's BR corner.
	set.Append(annotation.Box{ClassID: 1, CX: 0.65, CY: 0.65, W: 0.2, H: 0.2}) // 55..75

	// With box 0 selected, a click on its BR corner must hit the handle
	// even though box 1 is stacked above that point.
	hit := HitTest(geometry.NewPoint2D(60, 60), set, 0, testMapper(), 6)
	if hit.Kind != HitHandle || hit.Index != 0 || hit.Corner != CornerBR {
		t.Errorf("corner click = %+v, want BR handle of box 0", hit)
	}

	// Without a selection the same click falls through to box 1's body.
	hit = HitTest(geometry.NewPoint2D(60, 60), set, -1, testMapper(), 6)
	if hit.Kind != HitBody || hit.Index != 1 {
		t.Errorf("unselected corner click = %+v, want body hit on box 1", hit)
	}
}

func TestHitTestCornerIndices(t *testing.T) {
	set := annotation.NewSet()
	set.Append(annotation.Box{ClassID: 0, CX: 0.5, CY: 0.5, W: 0.4, H: 0.4}) // 30..70

	tests := []struct {
		name string
		p    geometry.Point2D
		want Corner
	}{
		{"top left", geometry.NewPoint2D(30, 30), CornerTL},
		{"top right", geometry.NewPoint2D(70, 30), CornerTR},
		{"bottom left", geometry.NewPoint2D(30, 70), CornerBL},
		{"bottom right", geometry.NewPoint2D(70, 70), CornerBR},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit := HitTest(tt.p, set, 0, testMapper(), 5)
			if hit.Kind != HitHandle || hit.Corner != tt.want {
				t.Errorf("hit = %+v, want handle %v", hit, tt.want)
			}
		})
	}
}

func TestHitTestEmptySet(t *testing.T) {
	hit := HitTest(geometry.NewPoint2D(50, 50), annotation.NewSet(), -1, testMapper(), 8)
	if hit.Kind != HitNone || hit.Index != -1 {
		t.Errorf("empty set hit = %+v, want none", hit)
	}
}

func TestCornerOpposite(t *testing.T) {
	pairs := map[Corner]Corner{
		CornerTL: CornerBR,
		CornerTR: CornerBL,
		CornerBL: CornerTR,
		CornerBR: CornerTL,
	}
	for c, want := range pairs {
		if got := c.Opposite(); got != want {
			t.Errorf("%v.Opposite() = %v, want %v", c, got, want)
		}
	}
}
