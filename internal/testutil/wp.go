// Package testutil provides a stub CMS server for handler and client tests.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// WPServer is an httptest server that mimics the CMS listing endpoints:
// it honors per_page, page, offset, search, and lang, and reports totals
// through the X-WP-Total and X-WP-TotalPages headers.
type WPServer struct {
	Server *httptest.Server

	mu       sync.Mutex
	items    map[string][]map[string]any
	failures map[string]int
	requests int

	blockOffset  int
	blockSignal  chan<- struct{}
	blockRelease <-chan struct{}
	blockOnce    sync.Once
}

// NewWPServer starts a stub CMS. It is closed automatically when the test
// ends.
func NewWPServer(t *testing.T) *WPServer {
	t.Helper()
	s := &WPServer{
		items:    make(map[string][]map[string]any),
		failures: make(map[string]int),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Server.Close)
	return s
}

// URL returns the stub's base URL.
func (s *WPServer) URL() string { return s.Server.URL }

// SetItems replaces the full item set for a collection.
func (s *WPServer) SetItems(collection string, items []map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[collection] = items
}

// FailNext makes the next n requests to a collection return 500.
func (s *WPServer) FailNext(collection string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[collection] = n
}

// BlockOffset makes requests with the given offset close signal and then
// stall until release is closed, so tests can hold one navigation in flight
// while another overtakes it.
func (s *WPServer) BlockOffset(offset int, signal chan<- struct{}, release <-chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blockOffset = offset
	s.blockSignal = signal
	s.blockRelease = release
}

// Requests returns how many requests the stub has served.
func (s *WPServer) Requests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests
}

func (s *WPServer) handle(w http.ResponseWriter, r *http.Request) {
	collection := strings.Trim(r.URL.Path, "/")

	s.mu.Lock()
	s.requests++
	if s.failures[collection] > 0 {
		s.failures[collection]--
		s.mu.Unlock()
		http.Error(w, "upstream boom", http.StatusInternalServerError)
		return
	}
	all := s.items[collection]
	s.mu.Unlock()

	q := r.URL.Query()
	if lang := q.Get("lang"); lang != "" {
		all = filterItems(all, func(it map[string]any) bool {
			l, ok := it["lang"].(string)
			return !ok || l == lang
		})
	}
	if term := q.Get("search"); term != "" {
		all = filterItems(all, func(it map[string]any) bool {
			return strings.Contains(strings.ToLower(itemTitle(it)), strings.ToLower(term))
		})
	}

	perPage := intParam(q.Get("per_page"), 10)
	offset := (intParam(q.Get("page"), 1) - 1) * perPage
	if v := q.Get("offset"); v != "" {
		offset = intParam(v, 0)
	}

	s.mu.Lock()
	signal, release := s.blockSignal, s.blockRelease
	blocked := signal != nil && offset == s.blockOffset
	s.mu.Unlock()
	if blocked {
		s.blockOnce.Do(func() { close(signal) })
		<-release
	}

	total := len(all)
	totalPages := (total + perPage - 1) / perPage
	if totalPages < 1 {
		totalPages = 1
	}

	var window []map[string]any
	if offset < total {
		end := offset + perPage
		if end > total {
			end = total
		}
		window = all[offset:end]
	}
	if window == nil {
		window = []map[string]any{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-WP-Total", strconv.Itoa(total))
	w.Header().Set("X-WP-TotalPages", strconv.Itoa(totalPages))
	json.NewEncoder(w).Encode(window)
}

func filterItems(items []map[string]any, keep func(map[string]any) bool) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}

func itemTitle(it map[string]any) string {
	switch t := it["title"].(type) {
	case string:
		return t
	case map[string]any:
		if r, ok := t["rendered"].(string); ok {
			return r
		}
	}
	return ""
}

func intParam(v string, def int) int {
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

// Item builds a raw CMS item with the fields the normalizer needs. Extra
// fields merge over the defaults.
func Item(id int, title string, extra map[string]any) map[string]any {
	it := map[string]any{
		"id":    id,
		"title": map[string]any{"rendered": title},
		"slug":  strings.ToLower(strings.ReplaceAll(title, " ", "-")),
		"date":  "2025-04-01T10:00:00",
		"acfs": map[string]any{
			"news_mv": map[string]any{
				"url": "https://cdn.example.com/mv.jpg",
				"sizes": map[string]any{
					"thumbnail": "https://cdn.example.com/mv-150.jpg",
					"medium":    "https://cdn.example.com/mv-300.jpg",
					"large":     "https://cdn.example.com/mv-1024.jpg",
				},
			},
		},
	}
	for k, v := range extra {
		it[k] = v
	}
	return it
}
