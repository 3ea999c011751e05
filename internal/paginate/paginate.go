// Package paginate implements offset pagination over collections with a
// reserved pickup prefix: a small fixed set of items pinned to a featured
// area and excluded from the numbered pages.
package paginate

// Config describes one collection's pagination geometry.
type Config struct {
	// SkipCount is the size of the pinned prefix excluded from numbered
	// pages.
	SkipCount int
	// PerPage is the number of items on each numbered page.
	PerPage int
}

// Window is the resolved slice of one numbered page.
type Window struct {
	Page      int
	SkipCount int
	PerPage   int
	// Offset is the absolute position of the page's first item within the
	// full collection, pickup prefix included.
	Offset int
}

// WindowFor computes the page window for a 1-based page number.
func WindowFor(page int, cfg Config) Window {
	if page < 1 {
		page = 1
	}
	return Window{
		Page:      page,
		SkipCount: cfg.SkipCount,
		PerPage:   cfg.PerPage,
		Offset:    cfg.SkipCount + (page-1)*cfg.PerPage,
	}
}

// TotalPages returns the numbered page count for totalItems, never less
// than 1. A collection no larger than its pickup prefix still has one
// (empty) numbered page.
func TotalPages(totalItems int, cfg Config) int {
	remaining := totalItems - cfg.SkipCount
	if remaining <= 0 {
		return 1
	}
	pages := (remaining + cfg.PerPage - 1) / cfg.PerPage
	if pages < 1 {
		return 1
	}
	return pages
}

// InRange reports whether navigating to page would change state: the target
// must be within [1, totalPages] and differ from current. Out-of-range and
// same-page requests are UI no-ops, not errors.
func InRange(page, current, totalPages int) bool {
	return page >= 1 && page <= totalPages && page != current
}

// PageRef is one entry of the rendered page-number control. An ellipsis
// entry has Number zero.
type PageRef struct {
	Number   int  `json:"number,omitempty"`
	Current  bool `json:"current,omitempty"`
	Ellipsis bool `json:"ellipsis,omitempty"`
}

// visiblePageLimit is the threshold below which every page number is shown
// without ellipsis.
const visiblePageLimit = 7

// PageRefs builds the windowed page-number display: all pages when few
// enough, otherwise the first page, the last page, and a band around the
// current page, with ellipsis markers wherever the band does not abut the
// edges. Near either edge the band widens so a marker never stands in for a
// single hidden page's neighbor run.
func PageRefs(current, totalPages int) []PageRef {
	if totalPages < 1 {
		totalPages = 1
	}
	if current < 1 {
		current = 1
	}
	if current > totalPages {
		current = totalPages
	}

	if totalPages <= visiblePageLimit {
		refs := make([]PageRef, 0, totalPages)
		for i := 1; i <= totalPages; i++ {
			refs = append(refs, PageRef{Number: i, Current: i == current})
		}
		return refs
	}

	var refs []PageRef
	push := func(n int) {
		refs = append(refs, PageRef{Number: n, Current: n == current})
	}
	ellipsis := func() {
		refs = append(refs, PageRef{Ellipsis: true})
	}

	switch {
	case current < 5:
		// Leading band 1..5 abuts the first page.
		for i := 1; i <= 5; i++ {
			push(i)
		}
		ellipsis()
		push(totalPages)
	case current > totalPages-4:
		// Trailing band abuts the last page.
		push(1)
		ellipsis()
		for i := totalPages - 4; i <= totalPages; i++ {
			push(i)
		}
	default:
		push(1)
		ellipsis()
		for i := current - 1; i <= current+1; i++ {
			push(i)
		}
		ellipsis()
		push(totalPages)
	}

	return refs
}
