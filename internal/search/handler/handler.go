// Package handler implements the HTTP query API consumed by the
// presentation layer: paginated search over the ranked results, cache
// administration, and manual index reload.
package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"pubsearch/internal/search"
	apperrors "pubsearch/pkg/errors"
	"pubsearch/pkg/logger"
	"pubsearch/pkg/metrics"
)

// Searcher ranks a query. Implemented by search.Service.
type Searcher interface {
	Search(query string, topN int) ([]search.Result, error)
}

// ResultCache caches full rankings. Implemented by cache.QueryCache.
type ResultCache interface {
	GetOrCompute(ctx context.Context, query string, topN int, computeFn func() ([]search.Result, error)) ([]search.Result, bool, error)
	Invalidate(ctx context.Context) error
	Stats() (hits, misses int64)
}

// Reloader reloads the persisted index. Implemented by search.Reloader.
type Reloader interface {
	Reload(ctx context.Context) error
}

// SearchResponse is the JSON body of a search request.
type SearchResponse struct {
	Query        string          `json:"query"`
	TotalResults int             `json:"total_results"`
	Page         int             `json:"page"`
	PerPage      int             `json:"per_page"`
	TotalPages   int             `json:"total_pages"`
	Results      []search.Result `json:"results"`
}

// Handler serves the query API.
type Handler struct {
	searcher       Searcher
	cache          ResultCache
	reloader       Reloader
	defaultPerPage int
	maxResults     int
	metrics        *metrics.Metrics
	logger         *slog.Logger
}

// New creates a Handler. cache, reloader, and m may be nil.
func New(searcher Searcher, cache ResultCache, reloader Reloader, defaultPerPage, maxResults int, m *metrics.Metrics) *Handler {
	return &Handler{
		searcher:       searcher,
		cache:          cache,
		reloader:       reloader,
		defaultPerPage: defaultPerPage,
		maxResults:     maxResults,
		metrics:        m,
		logger:         slog.Default().With("component", "search-handler"),
	}
}

// Search handles GET /api/v1/search?q=...&top_n=...&page=...&per_page=...
// A blank query returns an empty result page without invoking the ranker.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	query := r.URL.Query().Get("q")

	topN := 0
	if topNStr := r.URL.Query().Get("top_n"); topNStr != "" {
		parsed, err := strconv.Atoi(topNStr)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "top_n must be an integer")
			return
		}
		if parsed > h.maxResults {
			parsed = h.maxResults
		}
		topN = parsed
	}
	page := intParamOrDefault(r, "page", 1)
	perPage := intParamOrDefault(r, "per_page", h.defaultPerPage)
	if perPage < 1 {
		perPage = h.defaultPerPage
	}

	var results []search.Result
	var err error
	cacheHit := false

	if h.cache != nil {
		results, cacheHit, err = h.cache.GetOrCompute(ctx, query, topN, func() ([]search.Result, error) {
			return h.searcher.Search(query, topN)
		})
	} else {
		results, err = h.searcher.Search(query, topN)
	}
	if err != nil {
		status := apperrors.HTTPStatusCode(err)
		log.Error("search failed", "query", query, "error", err, "status_code", status)
		h.writeError(w, status, err.Error())
		return
	}

	resp := paginate(query, results, page, perPage)

	latency := time.Since(start)
	if h.metrics != nil {
		status := "miss"
		if cacheHit {
			status = "hit"
		}
		h.metrics.SearchLatency.WithLabelValues(status).Observe(latency.Seconds())
	}
	log.Info("search completed",
		"query", query,
		"total_results", resp.TotalResults,
		"page", resp.Page,
		"cache_hit", cacheHit,
		"latency_ms", latency.Milliseconds(),
	)
	h.writeJSON(w, http.StatusOK, resp)
}

// CacheStats handles GET /api/v1/cache/stats.
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}

	hits, misses := h.cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": fmt.Sprintf("%.1f%%", hitRate),
	})
}

// CacheInvalidate handles POST /api/v1/cache/invalidate.
func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, http.StatusServiceUnavailable, "caching is disabled")
		return
	}

	if err := h.cache.Invalidate(r.Context()); err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

// Reload handles POST /api/v1/index/reload: load the snapshot from disk and
// swap it in.
func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	if h.reloader == nil {
		h.writeError(w, http.StatusServiceUnavailable, "reload is not configured")
		return
	}
	if err := h.reloader.Reload(r.Context()); err != nil {
		status := apperrors.HTTPStatusCode(err)
		h.logger.Error("index reload failed", "error", err, "status_code", status)
		h.writeError(w, status, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "reloaded"})
}

// paginate slices the full ranking into one page, clamping the page number
// into range the way the original results page did.
func paginate(query string, results []search.Result, page, perPage int) *SearchResponse {
	total := len(results)
	totalPages := (total + perPage - 1) / perPage
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}
	start := (page - 1) * perPage
	end := start + perPage
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}
	return &SearchResponse{
		Query:        query,
		TotalResults: total,
		Page:         page,
		PerPage:      perPage,
		TotalPages:   totalPages,
		Results:      results[start:end],
	}
}

func intParamOrDefault(r *http.Request, name string, fallback int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
