// Package filter decides visibility of already-rendered collection items
// without re-fetching. Exactly one filter dimension is honored at a time,
// with deterministic precedence: archived over tag over category.
package filter

import (
	"strings"

	"github.com/infocus-dev/showcase/internal/cms"
)

// State is the current visibility filter for one listing. The zero value
// means "show all non-archived items".
type State struct {
	Archived bool   `json:"archived,omitempty"`
	Tag      string `json:"tag,omitempty"`
	Category string `json:"category,omitempty"`
}

// IsZero reports whether no dimension is set.
func (s State) IsZero() bool {
	return !s.Archived && s.Tag == "" && s.Category == ""
}

// Result counts the visibility outcome of one reconciliation pass.
type Result struct {
	Visible int `json:"visible"`
	Hidden  int `json:"hidden"`
}

// Apply toggles each item's Visible flag according to the filter and returns
// the visible/hidden counts. It is a pure function of (items, state): it
// never removes or reorders items, and repeated calls with the same state
// are idempotent.
func Apply(items []cms.Item, s State) Result {
	var res Result
	for i := range items {
		if Matches(&items[i], s) {
			items[i].Visible = true
			res.Visible++
		} else {
			items[i].Visible = false
			res.Hidden++
		}
	}
	return res
}

// Matches evaluates the visibility predicate for one item. The first
// matching branch wins; there is no fallthrough between dimensions.
func Matches(item *cms.Item, s State) bool {
	switch {
	case s.Archived:
		return item.Archived
	case s.Tag != "":
		// Tag match ignores the archived flag.
		return containsFold(item.TagSlugs, s.Tag)
	case s.Category != "":
		// Category match ignores the archived flag.
		return containsFold(item.CategorySlugs, s.Category)
	default:
		return !item.Archived
	}
}

func containsFold(slugs []string, want string) bool {
	for _, s := range slugs {
		if strings.EqualFold(s, want) {
			return true
		}
	}
	return false
}
