package cms

import (
	"fmt"
	"html"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
)

// Mapping is the per-collection field-mapping table used during
// normalization. The three collections share one record shape but disagree on
// where categories live and which fallback slug prefix to use.
type Mapping struct {
	// TaxonomyKey selects the taxonomy bucket holding the collection's
	// categories, e.g. "news" or "projects".
	TaxonomyKey string
	// SlugPrefix prefixes generated fallback slugs, e.g. "news" -> "news-42".
	SlugPrefix string
}

var (
	stripPolicy = bluemonday.StrictPolicy()

	slugInvalid  = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSpaces   = regexp.MustCompile(`\s+`)
	slugCollapse = regexp.MustCompile(`-+`)

	whitespace = regexp.MustCompile(`\s+`)
)

// StripHTML reduces a rich-text fragment to plain text: markup removed,
// entities unescaped, whitespace collapsed.
func StripHTML(s string) string {
	if s == "" {
		return ""
	}
	plain := html.UnescapeString(stripPolicy.Sanitize(s))
	return strings.TrimSpace(whitespace.ReplaceAllString(plain, " "))
}

// GenerateSlug derives a URL slug from a title, falling back to
// "<prefix>-<id>" when the title yields nothing usable.
func GenerateSlug(prefix, title string, id int64) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = slugInvalid.ReplaceAllString(s, "")
	s = slugSpaces.ReplaceAllString(s, "-")
	s = slugCollapse.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return fmt.Sprintf("%s-%d", prefix, id)
	}
	return s
}

// Normalize converts raw upstream records into canonical Items, dropping any
// record that lacks an id, title, slug, or fully-resolved thumbnail. A
// partially populated upstream record must never reach the render stage.
func Normalize(raws []RawItem, m Mapping, lang string) []Item {
	items := make([]Item, 0, len(raws))
	for _, raw := range raws {
		item, ok := normalizeOne(raw, m, lang)
		if !ok {
			continue
		}
		items = append(items, item)
	}
	return items
}

func normalizeOne(raw RawItem, m Mapping, lang string) (Item, bool) {
	if raw.ID == 0 {
		return Item{}, false
	}

	title := StripHTML(raw.Title.Value)
	if title == "" {
		return Item{}, false
	}

	slug := raw.Slug
	if slug == "" {
		slug = GenerateSlug(m.SlugPrefix, title, raw.ID)
	}
	if slug == "" {
		return Item{}, false
	}

	thumb, ok := resolveThumbnail(raw)
	if !ok {
		return Item{}, false
	}

	item := Item{
		ID:        raw.ID,
		Title:     title,
		Slug:      slug,
		Order:     raw.MenuOrder,
		Archived:  raw.ACF.Archived,
		Language:  lang,
		Thumbnail: thumb,
		Outline:   StripHTML(raw.ACF.Outline),
		Basics:    flattenBasics(raw.ACF.Basics),
		Visible:   true,
	}

	if t, err := time.Parse("2006-01-02T15:04:05", raw.Date); err == nil {
		item.Date = t
	} else if t, err := time.Parse(time.RFC3339, raw.Date); err == nil {
		item.Date = t
	}

	for _, term := range raw.Taxonomy[m.TaxonomyKey] {
		if term.Slug == "" && term.Name == "" {
			continue
		}
		itemSlug := term.Slug
		if itemSlug == "" {
			itemSlug = GenerateSlug(m.SlugPrefix, term.Name, raw.ID)
		}
		item.CategorySlugs = append(item.CategorySlugs, itemSlug)
		item.CategoryNames = append(item.CategoryNames, term.Name)
	}

	for _, tag := range itemTags(raw) {
		if tag.Slug == "" && tag.Name == "" {
			continue
		}
		tagSlug := tag.Slug
		if tagSlug == "" {
			tagSlug = GenerateSlug(m.SlugPrefix, tag.Name, raw.ID)
		}
		item.TagSlugs = append(item.TagSlugs, tagSlug)
		item.TagNames = append(item.TagNames, tag.Name)
	}

	for _, credit := range raw.ACF.Team {
		if credit.PostTitle != "" {
			item.Credits = append(item.Credits, credit.PostTitle)
		}
	}

	return item, true
}

// itemTags merges the two tag dimensions the custom fields may carry:
// project tags and team position tags. The single "position" string counts
// as a tag on team records.
func itemTags(raw RawItem) []RawTerm {
	tags := make([]RawTerm, 0, len(raw.ACF.Tags)+len(raw.ACF.PositionTags)+1)
	tags = append(tags, raw.ACF.Tags...)
	tags = append(tags, raw.ACF.PositionTags...)
	if raw.ACF.Position != "" {
		tags = append(tags, RawTerm{
			Name: raw.ACF.Position,
			Slug: GenerateSlug("position", raw.ACF.Position, raw.ID),
		})
	}
	return tags
}

// resolveThumbnail walks the fallback chain for each size slot: the
// size-specific URL, then the image's generic URL, then the flat legacy
// field. An item whose triple cannot be fully resolved to non-placeholder
// URLs is dropped.
func resolveThumbnail(raw RawItem) (Thumbnail, bool) {
	img := firstImage(raw.ACF.NewsMV, raw.ACF.Thumbnail, raw.ACF.Image)

	var generic, small, medium, large string
	if img != nil {
		generic = img.URL
		small = img.Sizes.Thumbnail
		medium = img.Sizes.Medium
		large = img.Sizes.Large
	}

	thumb := Thumbnail{
		Fallback: firstUsable(small, generic, raw.FeaturedImage),
		Medium:   firstUsable(medium, generic, raw.FeaturedImage),
		Large:    firstUsable(large, generic, raw.FeaturedImage),
	}
	if thumb.Fallback == "" || thumb.Medium == "" || thumb.Large == "" {
		return Thumbnail{}, false
	}
	return thumb, true
}

func firstImage(candidates ...*RawImage) *RawImage {
	for _, img := range candidates {
		if img != nil && (img.URL != "" || img.Sizes.Thumbnail != "" || img.Sizes.Medium != "" || img.Sizes.Large != "") {
			return img
		}
	}
	return nil
}

// firstUsable returns the first non-placeholder URL, or "".
func firstUsable(urls ...string) string {
	for _, u := range urls {
		if isPlaceholder(u) {
			continue
		}
		return u
	}
	return ""
}

// isPlaceholder reports whether a URL is empty or points at one of the
// static default images shipped with the site theme.
func isPlaceholder(u string) bool {
	return u == "" || strings.Contains(u, "/default.")
}

// flattenBasics converts the free-form basics block into a stable
// string-to-string map for the deep-search blob. Non-string values are
// stringified; nils are skipped.
func flattenBasics(basics map[string]any) map[string]string {
	if len(basics) == 0 {
		return nil
	}
	out := make(map[string]string, len(basics))
	for k, v := range basics {
		switch val := v.(type) {
		case nil:
			continue
		case string:
			out[k] = val
		default:
			out[k] = fmt.Sprint(val)
		}
	}
	return out
}

// BasicsBlob joins the basics values into one searchable string with
// deterministic ordering.
func BasicsBlob(basics map[string]string) string {
	if len(basics) == 0 {
		return ""
	}
	keys := make([]string, 0, len(basics))
	for k := range basics {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, basics[k])
	}
	return strings.Join(parts, " ")
}
