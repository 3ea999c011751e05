// Package listing orchestrates pagination, search, and filtering for one
// collection. The controller is the only component that mutates the current
// page and mode; collaborators read its state through snapshots.
package listing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/infocus-dev/showcase/internal/cms"
	"github.com/infocus-dev/showcase/internal/filter"
	"github.com/infocus-dev/showcase/internal/metrics"
	"github.com/infocus-dev/showcase/internal/paginate"
	"github.com/infocus-dev/showcase/internal/search"
	"github.com/infocus-dev/showcase/internal/store"
)

// Mode is the controller's navigation mode.
type Mode string

const (
	// ModeNormal pages through the collection with offset windows.
	ModeNormal Mode = "normal"
	// ModeSearch pages through an active search's results.
	ModeSearch Mode = "search"
)

// SearchMode selects how a collection's searches execute.
type SearchMode string

const (
	// SearchServer issues paginated search requests upstream.
	SearchServer SearchMode = "server"
	// SearchLocal deep-scans the fetched corpus in memory.
	SearchLocal SearchMode = "local"
)

// ErrSuperseded is returned when a navigation resolves after a newer request
// has already advanced the request generation; its result is discarded so
// the last issued navigation deterministically wins.
var ErrSuperseded = errors.New("listing: superseded by a newer request")

// ErrNotLoaded is returned when an operation needs the fetched corpus before
// Load has succeeded.
var ErrNotLoaded = errors.New("listing: collection not loaded")

// Config wires one controller instance. The same controller type serves all
// three collections; only the configuration differs.
type Config struct {
	Collection string
	// Endpoint overrides the upstream path segment when it differs from
	// the collection name.
	Endpoint   string
	Lang       string
	Window     paginate.Config
	Mapping    cms.Mapping
	SearchMode SearchMode
	OrderBy    string
	Order      string
	// FetchPerPage is the page size used when priming the corpus.
	FetchPerPage int
	Logger       *slog.Logger
}

// RenderState is an immutable snapshot handed to the render layer after any
// state change.
type RenderState struct {
	Collection string              `json:"collection"`
	Lang       string              `json:"lang"`
	Mode       Mode                `json:"mode"`
	Page       int                 `json:"page"`
	TotalItems int                 `json:"total_items"`
	TotalPages int                 `json:"total_pages"`
	Pickup     []cms.Item          `json:"pickup,omitempty"`
	Items      []cms.Item          `json:"items"`
	Pages      []paginate.PageRef  `json:"pages"`
	Query      string              `json:"query,omitempty"`
	Filter     filter.State        `json:"filter,omitzero"`
	// PageParam is the canonical value for the address bar's page
	// parameter; empty on page 1 so canonical URLs stay clean.
	PageParam string `json:"page_param,omitempty"`
	// ScrollToTop tells the client to scroll to the top of the list region.
	ScrollToTop bool `json:"scroll_to_top,omitempty"`
}

// Controller owns current-page state and mode for one collection listing.
type Controller struct {
	cfg    Config
	client *cms.Client
	engine *search.Engine
	items  *store.CollectionStore
	log    *slog.Logger

	mu         sync.Mutex
	mode       Mode
	page       int
	totalItems int
	query      string
	resultIDs  map[int64]bool
	searchPage int
	searchTot  int
	filter     filter.State
	current    []cms.Item
	generation uint64
}

// NewController builds a controller. Load must succeed before navigation.
func NewController(cfg Config, client *cms.Client, engine *search.Engine, items *store.CollectionStore) *Controller {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Controller{
		cfg:    cfg,
		client: client,
		engine: engine,
		items:  items,
		log:    cfg.Logger,
		mode:   ModeNormal,
		page:   1,
	}
}

// Load primes the corpus: fetches every page of the collection, normalizes,
// and stores the result. It resets the controller to page 1, normal mode.
func (c *Controller) Load(ctx context.Context) error {
	raws, err := c.client.FetchAll(ctx, cms.PageQuery{
		Collection: c.endpoint(),
		PerPage:    c.cfg.FetchPerPage,
		Lang:       c.cfg.Lang,
		OrderBy:    c.cfg.OrderBy,
		Order:      c.cfg.Order,
	})
	if err != nil {
		metrics.UpstreamFetchesTotal.WithLabelValues(c.cfg.Collection, "error").Inc()
		return fmt.Errorf("listing: load %s: %w", c.cfg.Collection, err)
	}
	metrics.UpstreamFetchesTotal.WithLabelValues(c.cfg.Collection, "ok").Inc()

	normalized := cms.Normalize(raws, c.cfg.Mapping, c.cfg.Lang)
	c.items.Replace(c.cfg.Collection, c.cfg.Lang, normalized)
	metrics.ItemsLoaded.WithLabelValues(c.cfg.Collection, c.cfg.Lang).Set(float64(len(normalized)))

	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.mode = ModeNormal
	c.page = 1
	c.totalItems = len(normalized)
	c.query = ""
	c.resultIDs = nil
	c.filter = filter.State{}
	c.current = pageSlice(normalized, paginate.WindowFor(1, c.cfg.Window))

	c.log.Info("listing_loaded",
		slog.String("collection", c.cfg.Collection),
		slog.String("lang", c.cfg.Lang),
		slog.Int("items", len(normalized)))

	return nil
}

// Current returns the present render snapshot without side effects.
func (c *Controller) Current() RenderState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked(false)
}

// GoToPage navigates to page n. Requests outside [1, totalPages] or equal to
// the current page are no-ops returning the unchanged state. A navigation
// that resolves after a newer one was issued is discarded with
// ErrSuperseded.
func (c *Controller) GoToPage(ctx context.Context, n int) (RenderState, error) {
	c.mu.Lock()
	total := c.totalPagesLocked()
	if !paginate.InRange(n, c.page, total) {
		state := c.snapshotLocked(false)
		c.mu.Unlock()
		return state, nil
	}
	mode := c.mode
	query := c.query
	c.generation++
	gen := c.generation
	c.mu.Unlock()

	if mode == ModeSearch {
		return c.goToSearchPage(ctx, gen, query, n)
	}
	return c.goToNormalPage(ctx, gen, n)
}

// Next navigates one page forward.
func (c *Controller) Next(ctx context.Context) (RenderState, error) {
	c.mu.Lock()
	n := c.page + 1
	c.mu.Unlock()
	return c.GoToPage(ctx, n)
}

// Prev navigates one page back.
func (c *Controller) Prev(ctx context.Context) (RenderState, error) {
	c.mu.Lock()
	n := c.page - 1
	c.mu.Unlock()
	return c.GoToPage(ctx, n)
}

func (c *Controller) goToNormalPage(ctx context.Context, gen uint64, n int) (RenderState, error) {
	window := paginate.WindowFor(n, c.cfg.Window)
	res, err := c.client.FetchPage(ctx, cms.PageQuery{
		Collection: c.endpoint(),
		Offset:     window.Offset,
		PerPage:    window.PerPage,
		Lang:       c.cfg.Lang,
		OrderBy:    c.cfg.OrderBy,
		Order:      c.cfg.Order,
	})
	if err != nil {
		metrics.UpstreamFetchesTotal.WithLabelValues(c.cfg.Collection, "error").Inc()
		return RenderState{}, err
	}
	metrics.UpstreamFetchesTotal.WithLabelValues(c.cfg.Collection, "ok").Inc()

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return c.snapshotLocked(false), ErrSuperseded
	}
	c.page = n
	c.totalItems = res.TotalItems
	c.current = cms.Normalize(res.Items, c.cfg.Mapping, c.cfg.Lang)
	return c.snapshotLocked(true), nil
}

func (c *Controller) goToSearchPage(ctx context.Context, gen uint64, query string, n int) (RenderState, error) {
	if c.cfg.SearchMode != SearchServer {
		// Local search results fit one page; InRange already rejects
		// everything else, so this path is unreachable in local mode.
		c.mu.Lock()
		defer c.mu.Unlock()
		return c.snapshotLocked(false), nil
	}

	res, err := c.engine.Server(ctx, query, n, c.cfg.Window.PerPage, c.cfg.Lang)
	if err != nil {
		return RenderState{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return c.snapshotLocked(false), ErrSuperseded
	}
	c.page = n
	c.searchPage = res.Page
	c.searchTot = res.TotalPages
	c.totalItems = res.TotalItems
	c.current = res.Items
	c.resultIDs = search.ResultIDs(res.Items)
	return c.snapshotLocked(true), nil
}

// Search runs a query and switches to search mode. Sub-threshold queries are
// a silent no-op returning the unchanged state. On upstream failure the
// previous result set is never presented as current; the error propagates
// for the caller's error state.
func (c *Controller) Search(ctx context.Context, query string) (RenderState, error) {
	if !search.Active(query) {
		c.mu.Lock()
		defer c.mu.Unlock()
		return c.snapshotLocked(false), nil
	}

	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.mu.Unlock()

	var res *search.Result
	var err error
	if c.cfg.SearchMode == SearchServer {
		res, err = c.engine.Server(ctx, query, 1, c.cfg.Window.PerPage, c.cfg.Lang)
		if err != nil {
			return RenderState{}, err
		}
	} else {
		corpus, ok := c.items.Get(c.cfg.Collection, c.cfg.Lang)
		if !ok {
			return RenderState{}, ErrNotLoaded
		}
		res = c.engine.Local(query, corpus)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return c.snapshotLocked(false), ErrSuperseded
	}
	c.mode = ModeSearch
	c.page = res.Page
	c.query = query
	c.searchPage = res.Page
	c.searchTot = res.TotalPages
	c.totalItems = res.TotalItems
	c.current = res.Items
	c.resultIDs = search.ResultIDs(res.Items)
	return c.snapshotLocked(true), nil
}

// SetFilter applies a visibility filter to the loaded corpus. Changing the
// filter exits search mode. The returned counts reflect the reconciliation
// pass; the item sequence itself is never reordered or truncated.
func (c *Controller) SetFilter(state filter.State) (RenderState, filter.Result, error) {
	corpus, ok := c.items.Get(c.cfg.Collection, c.cfg.Lang)
	if !ok {
		return RenderState{}, filter.Result{}, ErrNotLoaded
	}

	res := filter.Apply(corpus, state)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.mode = ModeNormal
	c.page = 1
	c.query = ""
	c.resultIDs = nil
	c.filter = state
	c.totalItems = len(corpus)
	c.current = corpus
	return c.snapshotLocked(false), res, nil
}

// Reset clears search and filter state and returns to page 1.
func (c *Controller) Reset() RenderState {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.mode = ModeNormal
	c.page = 1
	c.query = ""
	c.resultIDs = nil
	c.filter = filter.State{}
	if corpus, ok := c.items.Get(c.cfg.Collection, c.cfg.Lang); ok {
		c.totalItems = len(corpus)
		c.current = pageSlice(corpus, paginate.WindowFor(1, c.cfg.Window))
	}
	return c.snapshotLocked(false)
}

// ResultIDs exposes the active search's matched id set, used by the view
// layer to reconcile rendered nodes. Nil outside search mode.
func (c *Controller) ResultIDs() map[int64]bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make(map[int64]bool, len(c.resultIDs))
	for id := range c.resultIDs {
		ids[id] = true
	}
	if len(ids) == 0 && c.resultIDs == nil {
		return nil
	}
	return ids
}

func (c *Controller) endpoint() string {
	if c.cfg.Endpoint != "" {
		return c.cfg.Endpoint
	}
	return c.cfg.Collection
}

// Loaded reports whether the corpus for this collection has been fetched.
func (c *Controller) Loaded() bool {
	return c.items.Loaded(c.cfg.Collection, c.cfg.Lang)
}

// SearchMode reports how this collection's searches execute.
func (c *Controller) SearchMode() SearchMode {
	return c.cfg.SearchMode
}

func (c *Controller) totalPagesLocked() int {
	if c.mode == ModeSearch {
		if c.searchTot < 1 {
			return 1
		}
		return c.searchTot
	}
	return paginate.TotalPages(c.totalItems, c.cfg.Window)
}

func (c *Controller) snapshotLocked(navigated bool) RenderState {
	total := c.totalPagesLocked()
	state := RenderState{
		Collection:  c.cfg.Collection,
		Lang:        c.cfg.Lang,
		Mode:        c.mode,
		Page:        c.page,
		TotalItems:  c.totalItems,
		TotalPages:  total,
		Items:       c.current,
		Pages:       paginate.PageRefs(c.page, total),
		Query:       c.query,
		Filter:      c.filter,
		ScrollToTop: navigated,
	}
	if c.page > 1 {
		state.PageParam = strconv.Itoa(c.page)
	}
	// The pickup prefix only shows on the first page of a normal listing.
	if c.mode == ModeNormal && c.page == 1 {
		if corpus, ok := c.items.Get(c.cfg.Collection, c.cfg.Lang); ok {
			n := min(c.cfg.Window.SkipCount, len(corpus))
			state.Pickup = corpus[:n]
		}
	}
	return state
}

func pageSlice(items []cms.Item, w paginate.Window) []cms.Item {
	if w.Offset >= len(items) {
		return nil
	}
	end := min(w.Offset+w.PerPage, len(items))
	return items[w.Offset:end]
}
