package cms

import (
	"bytes"
	"encoding/json"
	"time"
)

// RenderedText accepts both shapes the upstream CMS uses for text fields:
// a plain JSON string, or an object wrapping the value as {"rendered": "..."}.
type RenderedText struct {
	Value string
}

// UnmarshalJSON flattens either representation into Value. Null and unknown
// shapes decode to the empty string rather than failing the whole item.
func (t *RenderedText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		t.Value = ""
		return nil
	}

	if data[0] == '"' {
		return json.Unmarshal(data, &t.Value)
	}

	var wrapped struct {
		Rendered string `json:"rendered"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		t.Value = ""
		return nil
	}
	t.Value = wrapped.Rendered
	return nil
}

// RawTerm is a taxonomy term (category, tag, or position tag) as delivered
// by the upstream API.
type RawTerm struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// RawImage is an attached image with optional size variants. The sizes object
// also carries width/height integers under suffixed keys; only the URL fields
// are decoded here.
type RawImage struct {
	URL   string `json:"url"`
	Sizes struct {
		Thumbnail string `json:"thumbnail"`
		Medium    string `json:"medium"`
		Large     string `json:"large"`
	} `json:"sizes"`
}

// RawCredit is one credited member inside a project's custom fields.
type RawCredit struct {
	PostTitle string `json:"post_title"`
}

// RawACF holds the custom-field block. Field availability varies per
// collection; absent fields decode to their zero values.
type RawACF struct {
	NewsMV       *RawImage      `json:"news_mv"`
	Thumbnail    *RawImage      `json:"thumbnail"`
	Image        *RawImage      `json:"image"`
	Outline      string         `json:"outline"`
	Position     string         `json:"position"`
	PositionTags []RawTerm      `json:"position-tag"`
	Tags         []RawTerm      `json:"tags"`
	Basics       map[string]any `json:"basics"`
	Team         []RawCredit    `json:"team"`
	Archived     bool           `json:"archived"`
}

// RawItem is one collection entry exactly as the upstream API returns it.
type RawItem struct {
	ID            int64                `json:"id"`
	Date          string               `json:"date"`
	Slug          string               `json:"slug"`
	Title         RenderedText         `json:"title"`
	MenuOrder     int                  `json:"menu_order"`
	ACF           RawACF               `json:"acfs"`
	Taxonomy      map[string][]RawTerm `json:"taxonomy"`
	FeaturedImage string               `json:"featured_image"`
}

// Thumbnail is the resolved responsive image triple. All three URLs are
// guaranteed non-placeholder for any Item that survives normalization.
type Thumbnail struct {
	Fallback string `json:"fallback"`
	Medium   string `json:"medium"`
	Large    string `json:"large"`
}

// Item is the canonical normalized record shared by all collections.
type Item struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Slug          string    `json:"slug"`
	Date          time.Time `json:"date,omitzero"`
	Order         int       `json:"order"`
	CategorySlugs []string  `json:"category_slugs"`
	CategoryNames []string  `json:"-"`
	TagSlugs      []string  `json:"tag_slugs"`
	TagNames      []string  `json:"-"`
	Archived      bool      `json:"archived"`
	Language      string    `json:"language"`
	Thumbnail     Thumbnail `json:"thumbnail"`

	// Search-only fields, not rendered.
	Outline string            `json:"-"`
	Basics  map[string]string `json:"-"`
	Credits []string          `json:"-"`

	// Visible is the presentation handle toggled by filter reconciliation.
	// It never affects membership or ordering of the item sequence.
	Visible bool `json:"visible"`
}
