// Package main is the entry point for the Boscotek configurator server.
// It wires all dependencies together and starts the HTTP server.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/opiegroup/boscotek2026-sub001/internal/catalog"
	"github.com/opiegroup/boscotek2026-sub001/internal/config"
	"github.com/opiegroup/boscotek2026-sub001/internal/identity"
	"github.com/opiegroup/boscotek2026-sub001/internal/observability"
	"github.com/opiegroup/boscotek2026-sub001/internal/pricing"
	"github.com/opiegroup/boscotek2026-sub001/internal/quote"
	"github.com/opiegroup/boscotek2026-sub001/internal/refcode"
	"github.com/opiegroup/boscotek2026-sub001/internal/rules"
	"github.com/opiegroup/boscotek2026-sub001/internal/transport"
)

// Build-time variables set via ldflags:
//
//	go build -ldflags "-X main.version=1.0.0 -X main.commit=abc1234"
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "config.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		return 1
	}

	observability.Version = version
	observability.Commit = commit

	logger, err := observability.NewLogger(cfg.Observability)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		return 1
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	tracingShutdown, err := observability.InitTracing(ctx, cfg.Observability.Tracing, "boscotek-configurator", version)
	if err != nil {
		logger.Error("tracing initialization failed", zap.Error(err))
		return 1
	}

	metrics := observability.InitMetrics(prometheus.DefaultRegisterer)

	// Load the catalog, validate it, and build the lookup registry.
	loader := catalog.NewLoader()
	docs, err := loader.LoadAll(cfg.Catalog.Directories)
	if err != nil {
		logger.Error("catalog loading failed", zap.Error(err))
		return 1
	}

	validator := catalog.NewValidator()
	verrs := validator.Validate(docs)
	if len(verrs) > 0 {
		for _, ve := range verrs {
			logger.Error("catalog validation error", zap.String("error", ve.Error()))
		}
		logger.Error("catalog validation failed", zap.Int("errors", len(verrs)))
		return 1
	}

	registry := catalog.NewRegistry(docs)
	metrics.SetCatalogProducts(float64(len(registry.Products())))
	metrics.RecordCatalogReload("ok")

	// Identity is optional. With no issuer configured every caller prices
	// at the public tier.
	var verifier transport.TokenVerifier
	if cfg.Identity.Issuer != "" {
		jwks := identity.NewJWKSClient(cfg.Identity.JWKSURL, cfg.Identity.JWKSCacheTTL, logger)
		verifier = identity.NewVerifier(cfg.Identity, jwks)
	}
	resolver := identity.NewResolver(cfg.Identity, registry, cfg.Pricing.PublicMarkupPercent)

	quoteStore, storeCloser, err := buildQuoteStore(ctx, cfg.Quotes.Store, logger)
	if err != nil {
		logger.Error("quote store initialization failed", zap.Error(err))
		return 1
	}
	idemStore, idemCloser, err := buildIdempotencyStore(ctx, cfg.Quotes.Idempotency, logger)
	if err != nil {
		logger.Error("idempotency store initialization failed", zap.Error(err))
		return 1
	}

	calculator := pricing.NewCalculator(registry, cfg.Pricing.PublicMarkupPercent)
	evaluator := rules.NewEvaluator(registry)
	quotes := quote.NewService(
		quoteStore, idemStore,
		calculator, evaluator, registry,
		refcode.Generate,
		cfg.Quotes.Idempotency.DefaultTTL,
	)

	readiness := observability.ReadinessChecks{
		CatalogLoaded: func() bool { return len(registry.Products()) > 0 },
	}
	if hc, ok := quoteStore.(observability.HealthChecker); ok {
		readiness.QuoteStore = hc
	}
	if hc, ok := idemStore.(observability.HealthChecker); ok {
		readiness.IdempotencyStore = hc
	}

	router := transport.NewRouter(transport.Dependencies{
		Config:     cfg,
		Logger:     logger,
		Catalog:    registry,
		Calculator: calculator,
		Rules:      evaluator,
		Quotes:     quotes,
		Verifier:   verifier,
		Resolver:   resolver,
		Metrics:    metrics,
		Readiness:  readiness,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	logger.Info("server started",
		zap.Int("port", cfg.Server.Port),
		zap.String("version", version),
		zap.String("commit", commit),
		zap.Int("products", len(registry.Products())),
		zap.String("catalog_checksum", registry.Checksum()),
	)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown initiated")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
		return 1
	}

	shutdownTimeout := cfg.Server.ShutdownTimeout
	if shutdownTimeout == 0 {
		shutdownTimeout = 30 * time.Second
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	// Stop accepting new connections and drain in-flight requests.
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	if storeCloser != nil {
		storeCloser()
	}
	if idemCloser != nil {
		idemCloser()
	}

	if err := tracingShutdown(shutdownCtx); err != nil {
		logger.Error("tracing shutdown error", zap.Error(err))
	}

	logger.Info("shutdown complete")
	return 0
}

// buildQuoteStore creates the quote store based on config.
func buildQuoteStore(ctx context.Context, cfg config.QuoteStoreConfig, logger *zap.Logger) (quote.Store, func(), error) {
	switch cfg.Driver {
	case "memory", "":
		logger.Info("using in-memory quote store")
		return quote.NewMemoryStore(), nil, nil
	case "postgres":
		dsn := os.Getenv(cfg.DSNEnv)
		if dsn == "" {
			return nil, nil, fmt.Errorf("quote store: %s environment variable not set", cfg.DSNEnv)
		}

		poolCfg, err := pgxpool.ParseConfig(dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("quote store: parse DSN: %w", err)
		}
		if cfg.MaxOpenConns > 0 {
			poolCfg.MaxConns = int32(cfg.MaxOpenConns)
		}
		poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime

		pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
		if err != nil {
			return nil, nil, fmt.Errorf("quote store: connect: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("quote store: ping: %w", err)
		}
		return quote.NewPgStore(pool), pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported quote store driver: %q", cfg.Driver)
	}
}

// buildIdempotencyStore creates the idempotency store based on config.
func buildIdempotencyStore(ctx context.Context, cfg config.IdempotencyConfig, logger *zap.Logger) (quote.IdempotencyStore, func(), error) {
	switch cfg.Driver {
	case "memory", "":
		logger.Info("using in-memory idempotency store")
		return quote.NewMemoryIdempotencyStore(), nil, nil
	case "redis":
		addr := os.Getenv(cfg.AddrEnv)
		if addr == "" {
			return nil, nil, fmt.Errorf("idempotency store: %s environment variable not set", cfg.AddrEnv)
		}

		client := redis.NewClient(&redis.Options{Addr: addr, DB: cfg.DB})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("idempotency store: ping: %w", err)
		}
		return quote.NewRedisIdempotencyStore(client), func() { client.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unsupported idempotency store driver: %q", cfg.Driver)
	}
}
