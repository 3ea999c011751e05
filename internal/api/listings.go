package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/infocus-dev/showcase/internal/filter"
	"github.com/infocus-dev/showcase/internal/listing"
	"github.com/infocus-dev/showcase/internal/metrics"
	"github.com/infocus-dev/showcase/internal/search"
)

// listingsHandler serves listing state for every registered collection.
type listingsHandler struct {
	registry    *listing.Registry
	primaryLang string
	langs       map[string]bool
	log         *slog.Logger
}

// registerListingRoutes registers collection listing routes on r.
func registerListingRoutes(r chi.Router, deps Deps) {
	h := &listingsHandler{
		registry:    deps.Registry,
		primaryLang: deps.PrimaryLang,
		langs:       make(map[string]bool, len(deps.Languages)),
		log:         deps.Logger,
	}
	for _, lang := range deps.Languages {
		h.langs[lang] = true
	}

	r.Get("/{collection}", h.Show)
	r.Get("/{collection}/search", h.Search)
	r.Post("/{collection}/visibility", h.Visibility)
	r.Post("/{collection}/reset", h.Reset)
}

// resolve finds the controller for the request's collection and language.
// Unknown collections are a client error; they are logged because in practice
// they mean a template and its config drifted apart.
func (h *listingsHandler) resolve(w http.ResponseWriter, r *http.Request) (*listing.Controller, string, bool) {
	collection := chi.URLParam(r, "collection")
	lang := r.URL.Query().Get("lang")
	if lang == "" {
		lang = h.primaryLang
	}
	if !h.langs[lang] {
		writeError(w, http.StatusBadRequest, h.primaryLang, "BAD_REQUEST")
		return nil, lang, false
	}

	ctrl, ok := h.registry.Get(collection, lang)
	if !ok {
		h.log.Warn("unknown_collection",
			slog.String("collection", collection),
			slog.String("lang", lang))
		writeError(w, http.StatusNotFound, lang, "NOT_FOUND")
		return nil, lang, false
	}
	return ctrl, lang, true
}

// Show returns the listing state, navigating first when ?page= is present.
// GET /api/v1/{collection}
func (h *listingsHandler) Show(w http.ResponseWriter, r *http.Request) {
	ctrl, lang, ok := h.resolve(w, r)
	if !ok {
		return
	}

	pageParam := r.URL.Query().Get("page")
	if pageParam == "" {
		writeJSON(w, http.StatusOK, toListingResponse(ctrl.Current(), h.primaryLang))
		return
	}

	page, err := strconv.Atoi(pageParam)
	if err != nil {
		writeError(w, http.StatusBadRequest, lang, "BAD_REQUEST")
		return
	}

	start := time.Now()
	state, err := ctrl.GoToPage(r.Context(), page)
	metrics.FetchDuration.Observe(time.Since(start).Seconds())
	switch {
	case errors.Is(err, listing.ErrSuperseded):
		// A newer navigation already landed; its state is the current one.
		metrics.StaleNavigationsTotal.Inc()
		writeJSON(w, http.StatusOK, toListingResponse(state, h.primaryLang))
	case err != nil:
		h.log.Error("page_navigation_failed",
			slog.String("collection", state.Collection),
			slog.Int("page", page),
			slog.Any("error", err))
		writeUpstreamError(w, lang)
	default:
		writeJSON(w, http.StatusOK, toListingResponse(state, h.primaryLang))
	}
}

// Search runs a query against the collection. Queries below the minimum
// length leave the listing untouched and report active=false.
// GET /api/v1/{collection}/search
func (h *listingsHandler) Search(w http.ResponseWriter, r *http.Request) {
	ctrl, lang, ok := h.resolve(w, r)
	if !ok {
		return
	}

	query := r.URL.Query().Get("q")
	state, err := ctrl.Search(r.Context(), query)
	switch {
	case errors.Is(err, listing.ErrSuperseded):
		metrics.StaleNavigationsTotal.Inc()
	case errors.Is(err, listing.ErrNotLoaded):
		writeError(w, http.StatusServiceUnavailable, lang, "NOT_LOADED")
		return
	case err != nil:
		h.log.Error("search_failed",
			slog.String("query", query),
			slog.Any("error", err))
		writeUpstreamError(w, lang)
		return
	}

	active := search.Active(query) && state.Mode == listing.ModeSearch
	if active {
		metrics.SearchesTotal.WithLabelValues(state.Collection, string(ctrl.SearchMode())).Inc()
	}

	resp := SearchResponse{
		ListingResponse: toListingResponse(state, h.primaryLang),
		Active:          active,
	}
	if ids := ctrl.ResultIDs(); active && ids != nil {
		sorted := make([]int64, 0, len(ids))
		for id := range ids {
			sorted = append(sorted, id)
		}
		slices.Sort(sorted)
		resp.ResultIDs = sorted
	}
	writeJSON(w, http.StatusOK, resp)
}

// Visibility applies an archive/tag/category filter over the loaded corpus.
// POST /api/v1/{collection}/visibility
func (h *listingsHandler) Visibility(w http.ResponseWriter, r *http.Request) {
	ctrl, lang, ok := h.resolve(w, r)
	if !ok {
		return
	}

	var req filter.State
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, lang, "BAD_REQUEST")
		return
	}

	state, res, err := ctrl.SetFilter(req)
	if errors.Is(err, listing.ErrNotLoaded) {
		writeError(w, http.StatusServiceUnavailable, lang, "NOT_LOADED")
		return
	}

	writeJSON(w, http.StatusOK, VisibilityResponse{
		ListingResponse: toListingResponse(state, h.primaryLang),
		Visible:         res.Visible,
		Hidden:          res.Hidden,
	})
}

// Reset clears search and filter state.
// POST /api/v1/{collection}/reset
func (h *listingsHandler) Reset(w http.ResponseWriter, r *http.Request) {
	ctrl, _, ok := h.resolve(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toListingResponse(ctrl.Reset(), h.primaryLang))
}
