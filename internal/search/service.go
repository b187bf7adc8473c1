// Package search exposes the query side of the engine: it turns a query
// string into ranked publication results against the currently published
// index snapshot.
package search

import (
	"log/slog"
	"math"
	"strings"

	"pubsearch/internal/index"
	"pubsearch/pkg/metrics"
)

// Result is one ranked publication as returned by the query API. Score is
// rounded to 4 decimal places; ordering was decided on the full-precision
// values before rounding.
type Result struct {
	ID       int            `json:"id"`
	Title    string         `json:"title"`
	URL      string         `json:"url"`
	Date     string         `json:"date"`
	Authors  []index.Author `json:"authors"`
	Abstract string         `json:"abstract"`
	Score    float64        `json:"score"`
}

// Service ranks queries against the snapshot held by an index.Holder.
type Service struct {
	holder  *index.Holder
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New creates a search Service. m may be nil.
func New(holder *index.Holder, m *metrics.Metrics) *Service {
	return &Service{
		holder:  holder,
		metrics: m,
		logger:  slog.Default().With("component", "search"),
	}
}

// Search returns the ranking for a free-text query. A blank query returns an
// empty result without touching the ranker. A query whose terms are all
// stopwords likewise returns an empty result. A query with terms but no
// overlap returns every document at score 0 in ascending ID order, so the
// caller can tell "no matches" apart from "no query". topN > 0 truncates
// the ranking.
//
// Returns ErrIndexNotReady when no index has been built or loaded yet; the
// caller decides whether to trigger a rebuild or surface a flagged empty
// result.
func (s *Service) Search(query string, topN int) ([]Result, error) {
	if strings.TrimSpace(query) == "" {
		s.countQuery("empty_query")
		return []Result{}, nil
	}

	state, err := s.holder.Snapshot()
	if err != nil {
		s.countQuery("error")
		return nil, err
	}

	queryVec := index.QueryVector(query, state)
	ranked := index.Rank(queryVec, state, topN)

	results := make([]Result, 0, len(ranked))
	for _, sd := range ranked {
		results = append(results, Result{
			ID:       sd.Doc.ID,
			Title:    sd.Doc.Title,
			URL:      sd.Doc.URL,
			Date:     sd.Doc.Date,
			Authors:  sd.Doc.Authors,
			Abstract: sd.Doc.Abstract,
			Score:    math.Round(sd.Score*10000) / 10000,
		})
	}

	switch {
	case len(results) == 0:
		s.countQuery("empty_query")
	case results[0].Score > 0:
		s.countQuery("hit")
	default:
		s.countQuery("zero_score")
	}
	s.logger.Debug("query ranked",
		"query", query,
		"results", len(results),
	)
	return results, nil
}

// Ready reports whether an index snapshot is available for querying.
func (s *Service) Ready() bool {
	return s.holder.Ready()
}

func (s *Service) countQuery(resultType string) {
	if s.metrics != nil {
		s.metrics.SearchQueriesTotal.WithLabelValues(resultType).Inc()
	}
}
