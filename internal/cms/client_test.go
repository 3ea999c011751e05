package cms_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/infocus-dev/showcase/internal/cms"
	"github.com/infocus-dev/showcase/internal/testutil"
)

func newClient(t *testing.T, baseURL string, opts cms.Options) *cms.Client {
	t.Helper()
	if opts.Backoff == 0 {
		opts.Backoff = time.Millisecond
	}
	c, err := cms.NewClient(baseURL, opts)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestClient_FetchPage(t *testing.T) {
	wp := testutil.NewWPServer(t)
	wp.SetItems("news", []map[string]any{
		testutil.Item(1, "First", nil),
		testutil.Item(2, "Second", nil),
		testutil.Item(3, "Third", nil),
	})

	c := newClient(t, wp.URL(), cms.Options{})
	res, err := c.FetchPage(context.Background(), cms.PageQuery{Collection: "news", Page: 1, PerPage: 2})
	if err != nil {
		t.Fatalf("FetchPage: %v", err)
	}
	if len(res.Items) != 2 {
		t.Errorf("items = %d, want 2", len(res.Items))
	}
	if res.TotalItems != 3 {
		t.Errorf("total items = %d, want 3", res.TotalItems)
	}
	if res.TotalPages != 2 {
		t.Errorf("total pages = %d, want 2", res.TotalPages)
	}
	if res.Items[0].ID != 1 || res.Items[0].Title.Value != "First" {
		t.Errorf("first item = %+v", res.Items[0])
	}
}

func TestClient_FetchPage_RetriesTransientFailures(t *testing.T) {
	wp := testutil.NewWPServer(t)
	wp.SetItems("news", []map[string]any{testutil.Item(1, "Only", nil)})
	wp.FailNext("news", 2)

	c := newClient(t, wp.URL(), cms.Options{MaxAttempts: 3})
	res, err := c.FetchPage(context.Background(), cms.PageQuery{Collection: "news"})
	if err != nil {
		t.Fatalf("FetchPage after retries: %v", err)
	}
	if len(res.Items) != 1 {
		t.Errorf("items = %d, want 1", len(res.Items))
	}
	if got := wp.Requests(); got != 3 {
		t.Errorf("requests = %d, want 3", got)
	}
}

func TestClient_FetchPage_ExhaustsRetries(t *testing.T) {
	wp := testutil.NewWPServer(t)
	wp.FailNext("news", 10)

	c := newClient(t, wp.URL(), cms.Options{MaxAttempts: 3})
	_, err := c.FetchPage(context.Background(), cms.PageQuery{Collection: "news"})
	if err == nil {
		t.Fatal("expected error")
	}
	var fe *cms.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("error type = %T, want *cms.FetchError", err)
	}
	if fe.Status != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", fe.Status)
	}
	if got := wp.Requests(); got != 3 {
		t.Errorf("requests = %d, want 3", got)
	}
}

func TestClient_FetchPage_NotArray(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"code":"rest_post_invalid_page_number"}`))
	}))
	defer srv.Close()

	c := newClient(t, srv.URL, cms.Options{MaxAttempts: 3})
	res, err := c.FetchPage(context.Background(), cms.PageQuery{Collection: "news", Page: 99})
	if !errors.Is(err, cms.ErrNotArray) {
		t.Fatalf("err = %v, want ErrNotArray", err)
	}
	if res == nil || res.TotalPages != 1 {
		t.Errorf("result = %+v, want empty page with TotalPages 1", res)
	}
	if got := requests.Load(); got != 1 {
		t.Errorf("requests = %d, want 1 (not retryable)", got)
	}
}

func TestClient_FetchPage_ItemsEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[{"id":5,"title":"Wrapped","slug":"wrapped"}]}`))
	}))
	defer srv.Close()

	c := newClient(t, srv.URL, cms.Options{})
	res, err := c.FetchPage(context.Background(), cms.PageQuery{Collection: "news"})
	if err != nil {
		t.Fatalf("FetchPage: %v", err)
	}
	if len(res.Items) != 1 || res.Items[0].ID != 5 {
		t.Errorf("items = %+v, want one item with id 5", res.Items)
	}
}

func TestClient_FetchPage_MalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"broken":`))
	}))
	defer srv.Close()

	c := newClient(t, srv.URL, cms.Options{MaxAttempts: 2})
	_, err := c.FetchPage(context.Background(), cms.PageQuery{Collection: "news"})
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, cms.ErrNotArray) {
		t.Fatal("malformed JSON must not read as end of collection")
	}
}

func TestClient_FetchPage_MissingTotalsHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":1,"title":"A","slug":"a"},{"id":2,"title":"B","slug":"b"}]`))
	}))
	defer srv.Close()

	c := newClient(t, srv.URL, cms.Options{})
	res, err := c.FetchPage(context.Background(), cms.PageQuery{Collection: "news"})
	if err != nil {
		t.Fatalf("FetchPage: %v", err)
	}
	if res.TotalItems != 2 {
		t.Errorf("total items = %d, want fallback to item count 2", res.TotalItems)
	}
	if res.TotalPages != 1 {
		t.Errorf("total pages = %d, want fallback 1", res.TotalPages)
	}
}

func TestClient_FetchAll(t *testing.T) {
	wp := testutil.NewWPServer(t)
	wp.SetItems("projects", []map[string]any{
		testutil.Item(1, "One", nil),
		testutil.Item(2, "Two", nil),
		testutil.Item(3, "Three", nil),
		testutil.Item(4, "Four", nil),
		testutil.Item(5, "Five", nil),
	})

	c := newClient(t, wp.URL(), cms.Options{})
	all, err := c.FetchAll(context.Background(), cms.PageQuery{Collection: "projects", PerPage: 2})
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if len(all) != 5 {
		t.Errorf("items = %d, want 5", len(all))
	}
	// Two full pages plus the final short page.
	if got := wp.Requests(); got != 3 {
		t.Errorf("requests = %d, want 3", got)
	}
}

func TestClient_FetchAll_PageCeiling(t *testing.T) {
	wp := testutil.NewWPServer(t)
	wp.SetItems("projects", []map[string]any{
		testutil.Item(1, "One", nil),
		testutil.Item(2, "Two", nil),
		testutil.Item(3, "Three", nil),
		testutil.Item(4, "Four", nil),
	})

	c := newClient(t, wp.URL(), cms.Options{PageCeiling: 2})
	all, err := c.FetchAll(context.Background(), cms.PageQuery{Collection: "projects", PerPage: 1})
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("items = %d, want 2 (stopped at ceiling)", len(all))
	}
}

func TestClient_FetchAll_StopsOnNonArray(t *testing.T) {
	var page atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if page.Add(1) == 1 {
			w.Write([]byte(`[{"id":1,"title":"A","slug":"a"}]`))
			return
		}
		w.Write([]byte(`{"code":"rest_post_invalid_page_number"}`))
	}))
	defer srv.Close()

	c := newClient(t, srv.URL, cms.Options{})
	all, err := c.FetchAll(context.Background(), cms.PageQuery{Collection: "news", PerPage: 1})
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("items = %d, want 1", len(all))
	}
}

func TestClient_FetchAll_AbortsOnError(t *testing.T) {
	wp := testutil.NewWPServer(t)
	wp.SetItems("news", []map[string]any{
		testutil.Item(1, "One", nil),
		testutil.Item(2, "Two", nil),
	})
	wp.FailNext("news", 10)

	c := newClient(t, wp.URL(), cms.Options{MaxAttempts: 1})
	_, err := c.FetchAll(context.Background(), cms.PageQuery{Collection: "news", PerPage: 1})
	if err == nil {
		t.Fatal("expected error, not partial results")
	}
}
