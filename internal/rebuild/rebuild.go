// Package rebuild orchestrates a full index rebuild: read every harvested
// record from the catalog, build a fresh snapshot, save it atomically, and
// announce it. The trigger is external (a scheduler calls the HTTP
// endpoint); no timing logic lives here.
package rebuild

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"pubsearch/internal/catalog"
	"pubsearch/internal/index"
	"pubsearch/internal/index/store"
	"pubsearch/internal/ingest"
	apperrors "pubsearch/pkg/errors"
	"pubsearch/pkg/kafka"
	"pubsearch/pkg/metrics"
	"pubsearch/pkg/resilience"
)

// Summary describes a completed rebuild.
type Summary struct {
	Documents int           `json:"documents"`
	Terms     int           `json:"terms"`
	Path      string        `json:"path"`
	Duration  time.Duration `json:"-"`
	DurationS string        `json:"duration"`
}

// Rebuilder runs full rebuilds. Only one rebuild may run at a time;
// concurrent triggers are rejected rather than queued.
type Rebuilder struct {
	store     *catalog.Store
	indexPath string
	producer  *kafka.Producer
	metrics   *metrics.Metrics
	logger    *slog.Logger
	mu        sync.Mutex
	running   bool
}

// New creates a Rebuilder writing snapshots to indexPath. producer and m may
// be nil (no announcement, no metrics).
func New(store *catalog.Store, indexPath string, producer *kafka.Producer, m *metrics.Metrics) *Rebuilder {
	return &Rebuilder{
		store:     store,
		indexPath: indexPath,
		producer:  producer,
		metrics:   m,
		logger:    slog.Default().With("component", "rebuilder"),
	}
}

// Rebuild performs one full build-and-save cycle. The new snapshot replaces
// any previous one wholesale; there is no incremental merge. An empty
// catalog is valid and produces an empty, well-formed index.
func (r *Rebuilder) Rebuild(ctx context.Context) (*Summary, error) {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return nil, apperrors.ErrRebuildInProgress
	}
	r.running = true
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
	}()

	start := time.Now()
	records, err := r.store.ListAll(ctx)
	if err != nil {
		r.countBuild("error")
		return nil, err
	}

	state := index.Build(records)

	if err := store.Save(state, r.indexPath); err != nil {
		r.countBuild("error")
		return nil, err
	}

	duration := time.Since(start)
	r.countBuild("success")
	if r.metrics != nil {
		r.metrics.IndexBuildDuration.Observe(duration.Seconds())
		r.metrics.IndexDocuments.Set(float64(state.NumDocs()))
		r.metrics.IndexTerms.Set(float64(state.NumTerms()))
	}
	r.logger.Info("rebuild complete",
		"documents", state.NumDocs(),
		"terms", state.NumTerms(),
		"path", r.indexPath,
		"duration", duration,
	)

	if r.producer != nil {
		event := ingest.IndexPublishedEvent{
			Path:      r.indexPath,
			Documents: state.NumDocs(),
			Terms:     state.NumTerms(),
			BuiltAt:   time.Now().UTC(),
		}
		err := resilience.Retry(ctx, "publish-index-event", resilience.RetryConfig{}, func() error {
			return r.producer.Publish(ctx, kafka.Event{Key: r.indexPath, Value: event})
		})
		if err != nil {
			// The snapshot is saved; searchers can still reload it
			// manually.
			r.logger.Error("failed to announce new index", "error", err)
		}
	}

	return &Summary{
		Documents: state.NumDocs(),
		Terms:     state.NumTerms(),
		Path:      r.indexPath,
		Duration:  duration,
		DurationS: duration.Round(time.Millisecond).String(),
	}, nil
}

// Handler returns the HTTP handler for the rebuild trigger endpoint.
func (r *Rebuilder) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		summary, err := r.Rebuild(req.Context())
		if err != nil {
			status := apperrors.HTTPStatusCode(err)
			r.logger.Error("rebuild failed", "error", err, "status_code", status)
			writeJSON(w, status, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, summary)
	}
}

func (r *Rebuilder) countBuild(status string) {
	if r.metrics != nil {
		r.metrics.IndexBuildsTotal.WithLabelValues(status).Inc()
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
