// Command loader replays a JSON file of publication records onto the harvest
// topic, simulating the external collector. With -reset it truncates the
// catalog first so the next rebuild reflects exactly the loaded file; with
// -direct it appends the records straight to the catalog, for environments
// without a broker.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"pubsearch/internal/catalog"
	"pubsearch/internal/index"
	"pubsearch/internal/ingest"
	"pubsearch/pkg/config"
	"pubsearch/pkg/kafka"
	"pubsearch/pkg/logger"
	"pubsearch/pkg/postgres"
)

const batchSize = 100

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	inputPath := flag.String("input", "", "JSON file containing an array of publication records")
	source := flag.String("source", "loader", "source tag stamped on each harvest event")
	reset := flag.Bool("reset", false, "truncate the catalog before loading")
	direct := flag.Bool("direct", false, "append records to the catalog directly instead of publishing to Kafka")
	flag.Parse()

	if *inputPath == "" {
		fmt.Fprintln(os.Stderr, "usage: loader -input publications.json [-reset]")
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	data, err := os.ReadFile(*inputPath)
	if err != nil {
		slog.Error("failed to read input file", "path", *inputPath, "error", err)
		os.Exit(1)
	}
	var records []index.Record
	if err := json.Unmarshal(data, &records); err != nil {
		slog.Error("failed to parse input file", "path", *inputPath, "error", err)
		os.Exit(1)
	}
	slog.Info("records loaded from file", "path", *inputPath, "count", len(records))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if *reset || *direct {
		db, err := postgres.New(cfg.Postgres)
		if err != nil {
			slog.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		store := catalog.New(db)
		if err := store.EnsureSchema(ctx); err != nil {
			slog.Error("failed to ensure catalog schema", "error", err)
			os.Exit(1)
		}
		if *reset {
			if err := store.Truncate(ctx); err != nil {
				slog.Error("failed to truncate catalog", "error", err)
				os.Exit(1)
			}
			slog.Info("catalog truncated")
		}
		if *direct {
			for start := 0; start < len(records); start += batchSize {
				end := start + batchSize
				if end > len(records) {
					end = len(records)
				}
				if err := store.AppendBatch(ctx, records[start:end]); err != nil {
					slog.Error("failed to append batch", "offset", start, "error", err)
					os.Exit(1)
				}
			}
			slog.Info("load complete", "records", len(records), "target", "catalog")
			return
		}
	}

	producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.PublicationHarvest)
	defer producer.Close()

	published := 0
	for start := 0; start < len(records); start += batchSize {
		end := start + batchSize
		if end > len(records) {
			end = len(records)
		}
		events := make([]kafka.Event, 0, end-start)
		for _, rec := range records[start:end] {
			events = append(events, kafka.Event{
				Key: rec.URL,
				Value: ingest.HarvestEvent{
					Record:      rec,
					Source:      *source,
					HarvestedAt: time.Now().UTC(),
				},
			})
		}
		if err := producer.PublishBatch(ctx, events); err != nil {
			slog.Error("failed to publish batch", "offset", start, "error", err)
			os.Exit(1)
		}
		published += len(events)
	}

	slog.Info("load complete",
		"records", published,
		"topic", cfg.Kafka.Topics.PublicationHarvest,
	)
}
