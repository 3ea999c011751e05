// Package search executes keyword queries against a collection, either
// against the upstream search endpoint or as an in-memory deep scan over an
// already-fetched corpus.
package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/infocus-dev/showcase/internal/cms"
)

// MinQueryLength is the activation threshold. Shorter trimmed queries are a
// silent no-op by design, never an error; the guard lives here and only
// here.
const MinQueryLength = 2

// Error wraps an upstream failure during a server-mode search. Callers must
// fall back to a zero-result error state, never a stale result set.
type Error struct {
	Query string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("search: query %q: %v", e.Query, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Active reports whether a query meets the activation threshold after
// trimming.
func Active(query string) bool {
	return len(strings.TrimSpace(query)) >= MinQueryLength
}

// Result is a search outcome with pagination metadata. Page and TotalPages
// are only meaningful for server-mode searches, which are themselves
// paginated; local results always report a single page.
type Result struct {
	Items      []cms.Item
	TotalItems int
	TotalPages int
	Page       int
}

// Engine runs searches for one collection.
type Engine struct {
	client     *cms.Client
	collection string
	mapping    cms.Mapping
}

// NewEngine builds an engine bound to one collection endpoint. The client
// may be nil for engines used only in local mode.
func NewEngine(client *cms.Client, collection string, mapping cms.Mapping) *Engine {
	return &Engine{client: client, collection: collection, mapping: mapping}
}

// Server performs one paginated search request upstream. The pagination
// metadata reflects the upstream-reported totals, not the returned item
// count; the caller's pagination UI is driven entirely by those totals.
func (e *Engine) Server(ctx context.Context, query string, page, perPage int, lang string) (*Result, error) {
	query = strings.TrimSpace(query)
	if !Active(query) {
		return &Result{Page: 1, TotalPages: 1}, nil
	}
	if page < 1 {
		page = 1
	}

	res, err := e.client.FetchPage(ctx, cms.PageQuery{
		Collection: e.collection,
		Page:       page,
		PerPage:    perPage,
		Search:     query,
		Lang:       lang,
	})
	if err != nil {
		return nil, &Error{Query: query, Err: err}
	}

	return &Result{
		Items:      cms.Normalize(res.Items, e.mapping, lang),
		TotalItems: res.TotalItems,
		TotalPages: res.TotalPages,
		Page:       page,
	}, nil
}

// Local performs the in-memory deep search over an already-fetched corpus.
// Fields are scanned in a fixed order with first-match short-circuit: title,
// outline, tag names, category names, the flattened basics blob, credited
// member names. An item matches at most once regardless of how many fields
// contain the query.
func (e *Engine) Local(query string, corpus []cms.Item) *Result {
	query = strings.TrimSpace(query)
	if !Active(query) {
		return &Result{Page: 1, TotalPages: 1}
	}

	needle := strings.ToLower(query)
	var matched []cms.Item
	for _, item := range corpus {
		if matchItem(&item, needle) {
			matched = append(matched, item)
		}
	}

	return &Result{
		Items:      matched,
		TotalItems: len(matched),
		TotalPages: 1,
		Page:       1,
	}
}

// ResultIDs extracts the matched id set used to reconcile search results
// against currently-rendered items.
func ResultIDs(items []cms.Item) map[int64]bool {
	ids := make(map[int64]bool, len(items))
	for _, item := range items {
		ids[item.ID] = true
	}
	return ids
}

func matchItem(item *cms.Item, needle string) bool {
	if containsFold(item.Title, needle) {
		return true
	}
	if containsFold(item.Outline, needle) {
		return true
	}
	for _, name := range item.TagNames {
		if containsFold(name, needle) {
			return true
		}
	}
	for _, name := range item.CategoryNames {
		if containsFold(name, needle) {
			return true
		}
	}
	if containsFold(cms.BasicsBlob(item.Basics), needle) {
		return true
	}
	for _, credit := range item.Credits {
		if containsFold(credit, needle) {
			return true
		}
	}
	return false
}

// containsFold does case-insensitive substring containment. Item text is
// already HTML-stripped during normalization.
func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), needle)
}
