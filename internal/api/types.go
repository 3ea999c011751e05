package api

import (
	"github.com/infocus-dev/showcase/internal/cms"
	"github.com/infocus-dev/showcase/internal/filter"
	"github.com/infocus-dev/showcase/internal/listing"
	"github.com/infocus-dev/showcase/internal/paginate"
)

// ItemResponse is one listing entry as served to clients.
type ItemResponse struct {
	ID            int64         `json:"id"`
	Title         string        `json:"title"`
	Slug          string        `json:"slug"`
	URL           string        `json:"url"`
	Date          string        `json:"date,omitempty"`
	Categories    []string      `json:"categories,omitempty"`
	CategoryNames []string      `json:"category_names,omitempty"`
	Tags          []string      `json:"tags,omitempty"`
	TagNames      []string      `json:"tag_names,omitempty"`
	Archived      bool          `json:"archived,omitempty"`
	Thumbnail     cms.Thumbnail `json:"thumbnail"`
	Visible       bool          `json:"visible"`
}

// ListingResponse is the rendered state of one collection listing.
type ListingResponse struct {
	Collection  string             `json:"collection"`
	Lang        string             `json:"lang"`
	Mode        listing.Mode       `json:"mode"`
	Page        int                `json:"page"`
	TotalItems  int                `json:"total_items"`
	TotalPages  int                `json:"total_pages"`
	Pickup      []ItemResponse     `json:"pickup,omitempty"`
	Items       []ItemResponse     `json:"items"`
	Pages       []paginate.PageRef `json:"pages"`
	Query       string             `json:"query,omitempty"`
	Filter      filter.State       `json:"filter,omitzero"`
	PageParam   string             `json:"page_param,omitempty"`
	ScrollToTop bool               `json:"scroll_to_top,omitempty"`
}

// SearchResponse extends a listing with the matched id set so clients can
// reconcile already-rendered entries in place.
type SearchResponse struct {
	ListingResponse
	Active    bool    `json:"active"`
	ResultIDs []int64 `json:"result_ids,omitempty"`
}

// VisibilityResponse reports the outcome of a filter pass.
type VisibilityResponse struct {
	ListingResponse
	Visible int `json:"visible"`
	Hidden  int `json:"hidden"`
}

// itemURL builds the language-scoped detail path for an item. The primary
// language lives at the site root; other languages get a path prefix.
func itemURL(collection string, it cms.Item, primaryLang string) string {
	prefix := "/"
	if it.Language != "" && it.Language != primaryLang {
		prefix = "/" + it.Language + "/"
	}
	return prefix + collection + "/" + it.Slug + "/"
}

func toItemResponse(collection string, it cms.Item, primaryLang string) ItemResponse {
	resp := ItemResponse{
		ID:            it.ID,
		Title:         it.Title,
		Slug:          it.Slug,
		URL:           itemURL(collection, it, primaryLang),
		Categories:    it.CategorySlugs,
		CategoryNames: it.CategoryNames,
		Tags:          it.TagSlugs,
		TagNames:      it.TagNames,
		Archived:      it.Archived,
		Thumbnail:     it.Thumbnail,
		Visible:       it.Visible,
	}
	if !it.Date.IsZero() {
		resp.Date = it.Date.Format("2006.01.02")
	}
	return resp
}

func toItemResponses(collection string, items []cms.Item, primaryLang string) []ItemResponse {
	out := make([]ItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, toItemResponse(collection, it, primaryLang))
	}
	return out
}

func toListingResponse(state listing.RenderState, primaryLang string) ListingResponse {
	return ListingResponse{
		Collection:  state.Collection,
		Lang:        state.Lang,
		Mode:        state.Mode,
		Page:        state.Page,
		TotalItems:  state.TotalItems,
		TotalPages:  state.TotalPages,
		Pickup:      toItemResponses(state.Collection, state.Pickup, primaryLang),
		Items:       toItemResponses(state.Collection, state.Items, primaryLang),
		Pages:       state.Pages,
		Query:       state.Query,
		Filter:      state.Filter,
		PageParam:   state.PageParam,
		ScrollToTop: state.ScrollToTop,
	}
}
