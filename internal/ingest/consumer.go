package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"pubsearch/internal/index"
	"pubsearch/pkg/kafka"
	"pubsearch/pkg/metrics"
)

// RecordAppender lands harvested records in durable storage. Implemented by
// catalog.Store.
type RecordAppender interface {
	Append(ctx context.Context, rec index.Record) error
}

// HandleHarvest returns a Kafka message handler that decodes HarvestEvents
// and appends their records to the catalog. Malformed records are appended
// with their missing fields zero-valued; only undecodable messages are
// rejected.
func HandleHarvest(store RecordAppender, m *metrics.Metrics) kafka.MessageHandler {
	logger := slog.Default().With("component", "harvest-consumer")
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[HarvestEvent](value)
		if err != nil {
			return fmt.Errorf("decoding harvest event: %w", err)
		}
		if err := store.Append(ctx, event.Record); err != nil {
			return fmt.Errorf("storing harvested record: %w", err)
		}
		if m != nil {
			m.RecordsHarvestedTotal.Inc()
		}
		logger.Debug("record harvested",
			"title", event.Record.Title,
			"source", event.Source,
		)
		return nil
	}
}
