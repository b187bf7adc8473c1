package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"pubsearch/internal/catalog"
	"pubsearch/internal/ingest"
	"pubsearch/internal/rebuild"
	"pubsearch/pkg/config"
	"pubsearch/pkg/health"
	"pubsearch/pkg/kafka"
	"pubsearch/pkg/logger"
	"pubsearch/pkg/metrics"
	"pubsearch/pkg/middleware"
	"pubsearch/pkg/postgres"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting indexer service", "port", cfg.Server.Port, "index_path", cfg.Index.Path())

	m := metrics.New()

	db, err := postgres.New(cfg.Postgres)
	if err != nil {
		slog.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := catalog.New(db)
	if err := store.EnsureSchema(ctx); err != nil {
		slog.Error("failed to ensure catalog schema", "error", err)
		os.Exit(1)
	}

	producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.IndexPublished)
	defer producer.Close()

	harvestConsumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.PublicationHarvest,
		ingest.HandleHarvest(store, m))
	go func() {
		if err := harvestConsumer.Start(ctx); err != nil {
			slog.Error("harvest consumer error", "error", err)
		}
	}()
	slog.Info("harvest consumer started", "topic", cfg.Kafka.Topics.PublicationHarvest)

	rebuilder := rebuild.New(store, cfg.Index.Path(), producer, m)

	checker := health.NewChecker()
	checker.Register("postgres", func(ctx context.Context) health.ComponentHealth {
		if err := db.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDown, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})
	checker.Register("catalog", func(ctx context.Context) health.ComponentHealth {
		n, err := store.Count(ctx)
		if err != nil {
			return health.ComponentHealth{Status: health.StatusDown, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp, Message: fmt.Sprintf("%d records", n)}
	})

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/rebuild", rebuilder.Handler())
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	chain = middleware.Metrics(m)(chain)
	chain = middleware.RequestID(chain)

	if cfg.Metrics.Enabled {
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port)
		defer shutdownMetrics(context.Background())
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("indexer service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("indexer service stopped")
}
