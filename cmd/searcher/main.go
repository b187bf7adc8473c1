package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"pubsearch/internal/index"
	"pubsearch/internal/ingest"
	"pubsearch/internal/search"
	"pubsearch/internal/search/cache"
	"pubsearch/internal/search/handler"
	"pubsearch/pkg/config"
	apperrors "pubsearch/pkg/errors"
	"pubsearch/pkg/health"
	"pubsearch/pkg/kafka"
	"pubsearch/pkg/logger"
	"pubsearch/pkg/metrics"
	"pubsearch/pkg/middleware"
	pkgredis "pubsearch/pkg/redis"
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
	slog.Info("starting search service", "port", cfg.Server.Port, "index_path", cfg.Index.Path())

	m := metrics.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var queryCache *cache.QueryCache
	var redisClient *pkgredis.Client
	redisClient, err = pkgredis.NewClient(cfg.Redis)
	if err != nil {
		slog.Warn("redis unavailable, query caching disabled", "error", err)
	} else {
		defer redisClient.Close()
		queryCache = cache.New(redisClient, cfg.Redis, m)
		slog.Info("query cache enabled",
			"addr", cfg.Redis.Addr,
			"ttl", cfg.Redis.CacheTTL,
		)
	}

	holder := index.NewHolder()
	var cacheInvalidator search.CacheInvalidator
	if queryCache != nil {
		cacheInvalidator = queryCache
	}
	reloader := search.NewReloader(holder, cfg.Index.Path(), cacheInvalidator, m)

	// Load whatever snapshot is already on disk. A missing file just means
	// no build has run yet; the service starts not-ready and picks up the
	// first published index.
	if err := reloader.Reload(ctx); err != nil {
		if errors.Is(err, apperrors.ErrIndexMissing) {
			slog.Warn("no index snapshot on disk yet", "path", cfg.Index.Path())
		} else {
			slog.Error("failed to load index snapshot", "path", cfg.Index.Path(), "error", err)
			os.Exit(1)
		}
	}

	// Reload on every index-published announcement.
	reloadConsumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.IndexPublished,
		func(ctx context.Context, key, value []byte) error {
			event, err := kafka.DecodeJSON[ingest.IndexPublishedEvent](value)
			if err != nil {
				return err
			}
			slog.Info("index published event received",
				"path", event.Path,
				"documents", event.Documents,
				"terms", event.Terms,
			)
			return reloader.Reload(ctx)
		})
	go func() {
		if err := reloadConsumer.Start(ctx); err != nil {
			slog.Error("index reload consumer error", "error", err)
		}
	}()

	checker := health.NewChecker()
	checker.Register("index", func(ctx context.Context) health.ComponentHealth {
		state, err := holder.Snapshot()
		if err != nil {
			return health.ComponentHealth{Status: health.StatusDown, Message: "no index loaded"}
		}
		return health.ComponentHealth{
			Status:  health.StatusUp,
			Message: fmt.Sprintf("%d documents, %d terms", state.NumDocs(), state.NumTerms()),
		}
	})
	checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
		if redisClient == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "not configured"}
		}
		if err := redisClient.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})

	svc := search.New(holder, m)
	var resultCache handler.ResultCache
	if queryCache != nil {
		resultCache = queryCache
	}
	h := handler.New(svc, resultCache, reloader, cfg.Search.DefaultPerPage, cfg.Search.MaxResults, m)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
	mux.HandleFunc("POST /api/v1/index/reload", h.Reload)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
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

	slog.Info("search service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("search service stopped")
}
