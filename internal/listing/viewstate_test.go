package listing_test

import (
	"testing"

	"github.com/infocus-dev/showcase/internal/listing"
)

func TestViewState_VisibleCount(t *testing.T) {
	v := listing.NewViewState(4, 80)

	if got := v.VisibleCount(10); got != 4 {
		t.Errorf("collapsed count = %d, want 4", got)
	}
	if got := v.VisibleCount(3); got != 3 {
		t.Errorf("small set count = %d, want 3", got)
	}

	v.Expand()
	if got := v.VisibleCount(10); got != 10 {
		t.Errorf("expanded count = %d, want 10", got)
	}

	// Expanding twice changes nothing.
	v.Expand()
	if !v.Expanded() {
		t.Error("second Expand should leave the view expanded")
	}

	v.Reset()
	if v.Expanded() {
		t.Error("Reset should collapse the view")
	}
	if got := v.VisibleCount(10); got != 4 {
		t.Errorf("count after Reset = %d, want 4", got)
	}
}

func TestViewState_CollapsedHeight(t *testing.T) {
	v := listing.NewViewState(3, 50)

	heights := []int{100, 120, 90, 200, 150}
	if got := v.CollapsedHeight(heights); got != 100+120+90+50 {
		t.Errorf("height = %d, want %d", got, 360)
	}
	if got := v.CollapsedHeight([]int{100}); got != 150 {
		t.Errorf("short list height = %d, want 150", got)
	}
	if got := v.CollapsedHeight(nil); got != 0 {
		t.Errorf("empty list height = %d, want 0", got)
	}

	none := listing.NewViewState(0, 50)
	if got := none.CollapsedHeight(heights); got != 0 {
		t.Errorf("no-preview height = %d, want 0", got)
	}
}
