package search

import (
	"context"
	"log/slog"

	"pubsearch/internal/index"
	"pubsearch/internal/index/store"
	"pubsearch/pkg/metrics"
)

// CacheInvalidator drops cached query results. Implemented by
// cache.QueryCache; nil-safe at the call sites.
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

// Reloader loads persisted index snapshots into the holder and drops the
// query cache afterwards. It is driven by the index-published Kafka event
// and by the manual reload endpoint.
type Reloader struct {
	holder  *index.Holder
	path    string
	cache   CacheInvalidator
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewReloader creates a Reloader for the snapshot at path. cache and m may
// be nil.
func NewReloader(holder *index.Holder, path string, cache CacheInvalidator, m *metrics.Metrics) *Reloader {
	return &Reloader{
		holder:  holder,
		path:    path,
		cache:   cache,
		metrics: m,
		logger:  slog.Default().With("component", "index-reloader"),
	}
}

// Reload loads the snapshot from disk and publishes it atomically. On
// failure the previously published snapshot stays in place.
func (r *Reloader) Reload(ctx context.Context) error {
	state, err := store.Load(r.path)
	if err != nil {
		r.countReload("error")
		return err
	}
	r.holder.Publish(state)
	r.countReload("success")
	if r.metrics != nil {
		r.metrics.IndexDocuments.Set(float64(state.NumDocs()))
		r.metrics.IndexTerms.Set(float64(state.NumTerms()))
	}
	r.logger.Info("index reloaded",
		"path", r.path,
		"documents", state.NumDocs(),
		"terms", state.NumTerms(),
	)
	if r.cache != nil {
		if err := r.cache.Invalidate(ctx); err != nil {
			r.logger.Error("cache invalidation after reload failed", "error", err)
		}
	}
	return nil
}

func (r *Reloader) countReload(status string) {
	if r.metrics != nil {
		r.metrics.IndexReloadsTotal.WithLabelValues(status).Inc()
	}
}
