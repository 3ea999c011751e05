// Package cms fetches and normalizes collection content from the headless
// CMS REST API (news, team, projects).
package cms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
)

// ErrNotArray is returned by FetchPage when a response is well-formed JSON
// but neither a collection array nor an items envelope. FetchAll treats it
// as end-of-collection rather than a failure.
var ErrNotArray = errors.New("response is not a collection array")

// FetchError describes a failed upstream request: network error, non-2xx
// status, or malformed JSON. Status is zero when no response was received.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("cms: fetch %s: status %d: %v", e.URL, e.Status, e.Err)
	}
	return fmt.Sprintf("cms: fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Options tunes the client. Zero values fall back to defaults matching the
// production site's client behavior.
type Options struct {
	HTTPClient *http.Client
	Logger     *slog.Logger

	// MaxAttempts is the total number of tries per page request.
	MaxAttempts int
	// Backoff is the base delay between retries; subsequent delays grow.
	Backoff time.Duration
	// PageCeiling bounds FetchAll's page loop as a safety valve against an
	// upstream that never signals exhaustion.
	PageCeiling int
}

func (o *Options) defaults() {
	if o.HTTPClient == nil {
		o.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 3
	}
	if o.Backoff <= 0 {
		o.Backoff = time.Second
	}
	if o.PageCeiling <= 0 {
		o.PageCeiling = 20
	}
}

// Client is a paged REST client for the CMS collection endpoints.
type Client struct {
	base *url.URL
	opts Options
}

// NewClient builds a client for the given API base URL, e.g.
// "https://cms.example.com/wp-json/wp/v2".
func NewClient(baseURL string, opts Options) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("cms: parse base URL: %w", err)
	}
	opts.defaults()
	return &Client{base: u, opts: opts}, nil
}

// PageQuery describes one collection page request. Collection is the endpoint
// path segment ("news", "team", "projects"). Zero-valued fields are omitted
// from the query string.
type PageQuery struct {
	Collection string
	Page       int
	PerPage    int
	Offset     int
	Search     string
	Lang       string
	OrderBy    string
	Order      string
}

// PageResult is one fetched page plus the upstream pagination totals.
// Totals come from the X-WP-Total / X-WP-TotalPages headers and default to
// safe values when the headers are absent or malformed.
type PageResult struct {
	Items      []RawItem
	TotalItems int
	TotalPages int
}

// FetchPage performs one paged GET against a collection endpoint, retrying
// transient failures with growing backoff. A response that is valid JSON but
// not a collection (and not an items envelope) yields ErrNotArray with an
// empty result, so callers can distinguish exhaustion from failure.
func (c *Client) FetchPage(ctx context.Context, q PageQuery) (*PageResult, error) {
	reqURL := c.pageURL(q)
	reqID := uuid.NewString()

	var result *PageResult
	backoff := retry.WithMaxRetries(uint64(c.opts.MaxAttempts-1), retry.NewFibonacci(c.opts.Backoff))

	start := time.Now()
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		res, err := c.doRequest(ctx, reqURL)
		if errors.Is(err, ErrNotArray) {
			// Valid JSON, just not a collection. Retrying will not help.
			return err
		}
		if err != nil {
			c.opts.Logger.Warn("cms_fetch_retryable",
				slog.String("request_id", reqID),
				slog.String("url", reqURL),
				slog.String("err", err.Error()))
			return retry.RetryableError(err)
		}
		result = res
		return nil
	})
	if errors.Is(err, ErrNotArray) {
		return &PageResult{TotalPages: 1}, ErrNotArray
	}
	if err != nil {
		var fe *FetchError
		if !errors.As(err, &fe) {
			err = &FetchError{URL: reqURL, Err: err}
		}
		return nil, err
	}

	c.opts.Logger.Debug("cms_fetch_ok",
		slog.String("request_id", reqID),
		slog.String("collection", q.Collection),
		slog.Int("page", q.Page),
		slog.Int("items", len(result.Items)),
		slog.Duration("elapsed", time.Since(start)))

	return result, nil
}

// FetchAll accumulates pages from page 1 until the collection is exhausted:
// a non-collection response, an empty page, a short page, or the page ceiling,
// whichever comes first. Any request or decode failure aborts the whole fetch;
// partial results are never returned.
func (c *Client) FetchAll(ctx context.Context, q PageQuery) ([]RawItem, error) {
	if q.PerPage <= 0 {
		q.PerPage = 100
	}

	var all []RawItem
	for page := 1; ; page++ {
		if page > c.opts.PageCeiling {
			c.opts.Logger.Warn("cms_fetch_page_ceiling",
				slog.String("collection", q.Collection),
				slog.Int("ceiling", c.opts.PageCeiling))
			break
		}

		pq := q
		pq.Page = page
		res, err := c.FetchPage(ctx, pq)
		if errors.Is(err, ErrNotArray) {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(res.Items) == 0 {
			break
		}

		all = append(all, res.Items...)

		// Short page means the last page.
		if len(res.Items) < q.PerPage {
			break
		}
	}

	return all, nil
}

func (c *Client) pageURL(q PageQuery) string {
	u := *c.base
	u.Path, _ = url.JoinPath(u.Path, q.Collection)

	params := url.Values{}
	if q.PerPage > 0 {
		params.Set("per_page", strconv.Itoa(q.PerPage))
	}
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}
	if q.Offset > 0 {
		params.Set("offset", strconv.Itoa(q.Offset))
	}
	if q.Search != "" {
		params.Set("search", q.Search)
	}
	if q.Lang != "" {
		params.Set("lang", q.Lang)
	}
	if q.OrderBy != "" {
		params.Set("orderby", q.OrderBy)
	}
	if q.Order != "" {
		params.Set("order", q.Order)
	}
	u.RawQuery = params.Encode()

	return u.String()
}

func (c *Client) doRequest(ctx context.Context, reqURL string) (*PageResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &FetchError{URL: reqURL, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.opts.HTTPClient.Do(req)
	if err != nil {
		return nil, &FetchError{URL: reqURL, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{URL: reqURL, Status: resp.StatusCode, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: reqURL, Status: resp.StatusCode, Err: err}
	}

	items, err := decodeCollection(body)
	if errors.Is(err, ErrNotArray) {
		return nil, err
	}
	if err != nil {
		return nil, &FetchError{URL: reqURL, Status: resp.StatusCode, Err: err}
	}

	res := &PageResult{Items: items}
	res.TotalItems, res.TotalPages = parseTotals(resp.Header, len(items))
	return res, nil
}

// decodeCollection accepts either a bare JSON array of items or an envelope
// object carrying the array under "items". Any other valid JSON returns
// ErrNotArray; invalid JSON returns the decode error.
func decodeCollection(body []byte) ([]RawItem, error) {
	var raw json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("malformed JSON: %w", err)
	}

	trimmed := string(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []RawItem
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("malformed collection array: %w", err)
		}
		return items, nil
	}

	if len(trimmed) > 0 && trimmed[0] == '{' {
		var envelope struct {
			Items json.RawMessage `json:"items"`
		}
		if err := json.Unmarshal(raw, &envelope); err == nil && len(envelope.Items) > 0 && envelope.Items[0] == '[' {
			var items []RawItem
			if err := json.Unmarshal(envelope.Items, &items); err != nil {
				return nil, fmt.Errorf("malformed items envelope: %w", err)
			}
			return items, nil
		}
	}

	return nil, ErrNotArray
}

// parseTotals reads the pagination headers defensively: a missing or
// malformed total falls back to the returned item count, a missing or
// malformed page total falls back to 1.
func parseTotals(h http.Header, itemCount int) (totalItems, totalPages int) {
	totalItems = itemCount
	totalPages = 1

	if v := h.Get("X-WP-Total"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			totalItems = n
		}
	}
	if v := h.Get("X-WP-TotalPages"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			totalPages = n
		}
	}
	return totalItems, totalPages
}
