// Package ingest defines the Kafka event schemas exchanged with the external
// collector and between the indexer and searcher services, and the consumer
// handler that lands harvested records in the catalog.
package ingest

import (
	"time"

	"pubsearch/internal/index"
)

// HarvestEvent is the message the external collector publishes for each
// harvested publication record.
type HarvestEvent struct {
	Record      index.Record `json:"record"`
	Source      string       `json:"source,omitempty"`
	HarvestedAt time.Time    `json:"harvested_at"`
}

// IndexPublishedEvent announces that a rebuild finished and its snapshot was
// saved. Query services reload the index from Path and drop their query
// caches when they receive it.
type IndexPublishedEvent struct {
	Path      string    `json:"path"`
	Documents int       `json:"documents"`
	Terms     int       `json:"terms"`
	BuiltAt   time.Time `json:"built_at"`
}
