package listing

import "sync"

// ViewState tracks the expand/collapse state of a truncated list ("view
// more"). It is presentational bookkeeping over an already-rendered set and
// never touches pagination, filter, or search state.
type ViewState struct {
	mu           sync.Mutex
	expanded     bool
	previewCount int
	heightOffset int
}

// NewViewState builds a collapsed view showing previewCount items.
// heightOffset is added to the collapsed height so the first hidden item
// peeks through the gradient overlay.
func NewViewState(previewCount, heightOffset int) *ViewState {
	if previewCount < 0 {
		previewCount = 0
	}
	return &ViewState{previewCount: previewCount, heightOffset: heightOffset}
}

// Expand reveals the full set. Expanding an already-expanded view is a
// no-op.
func (v *ViewState) Expand() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.expanded = true
}

// Reset collapses the view back to the preview.
func (v *ViewState) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.expanded = false
}

// Expanded reports whether the full set is visible.
func (v *ViewState) Expanded() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.expanded
}

// VisibleCount returns how many of total items are visible under the
// current state.
func (v *ViewState) VisibleCount(total int) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.expanded || total <= v.previewCount {
		return total
	}
	return v.previewCount
}

// CollapsedHeight computes the pixel height of the collapsed region from
// per-item heights: the sum of the preview items plus the configured
// offset. Returns zero when there is nothing to collapse.
func (v *ViewState) CollapsedHeight(itemHeights []int) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(itemHeights) == 0 || v.previewCount == 0 {
		return 0
	}
	n := min(v.previewCount, len(itemHeights))
	var h int
	for _, height := range itemHeights[:n] {
		h += height
	}
	return h + v.heightOffset
}
