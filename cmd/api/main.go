// Package main is the entry point for the tour booking API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/pkordes/tourbook/internal/catalog"
	"github.com/pkordes/tourbook/internal/config"
	"github.com/pkordes/tourbook/internal/currency"
	"github.com/pkordes/tourbook/internal/domain"
	"github.com/pkordes/tourbook/internal/events"
	"github.com/pkordes/tourbook/internal/handler"
	"github.com/pkordes/tourbook/internal/mailer"
	"github.com/pkordes/tourbook/internal/middleware"
	"github.com/pkordes/tourbook/internal/repo"
	"github.com/pkordes/tourbook/internal/service"
	"github.com/pkordes/tourbook/migrations"
	"github.com/pkordes/tourbook/spec"
)

const (
	// idempotencyTTL is how long a submit Idempotency-Key is honoured.
	idempotencyTTL = 24 * time.Hour

	// janitorInterval is how often idle sessions are swept.
	janitorInterval = time.Minute
)

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		// Use plain stderr before the logger is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	// JSON handler writes machine-readable output suitable for log aggregators.
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// SIGINT/SIGTERM cancel ctx; everything below shuts down from it.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	// --- Database ---------------------------------------------------------
	// pgxpool manages a pool of Postgres connections.
	// New() does not open connections immediately; the first query does.
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("create database pool: %w", err)
	}
	defer pool.Close()

	// Verify the DB is reachable before accepting traffic.
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	logger.Info("database connection established")

	if cfg.MigrateOnStart {
		if err := migrate(ctx, pool, logger); err != nil {
			return err
		}
	}

	// --- Reference data ---------------------------------------------------
	rates, err := loadRates(cfg)
	if err != nil {
		return fmt.Errorf("load currency rates: %w", err)
	}
	destinations, err := loadCatalog(cfg)
	if err != nil {
		return fmt.Errorf("load destination catalog: %w", err)
	}

	// --- Notifications ----------------------------------------------------
	var publisher events.Publisher = events.NewLogPublisher(logger)
	if cfg.NATSURL != "" {
		nc, err := events.NewNATSPublisher(cfg.NATSURL, logger)
		if err != nil {
			return fmt.Errorf("connect to nats: %w", err)
		}
		publisher = nc
		logger.Info("publishing reservation events", "nats_url", cfg.NATSURL)
	}
	defer publisher.Close()

	var sender mailer.Sender = mailer.NewLogSender(logger)
	if cfg.Mailer.APIKey != "" {
		sender = mailer.NewMailerSend(cfg.Mailer.APIKey, cfg.Mailer.FromName, cfg.Mailer.FromEmail)
	}
	notifier := service.NewNotifier(publisher, sender, rates, logger)

	// --- Services ---------------------------------------------------------
	reservations := repo.NewReservationRepo(pool)
	catalogSvc := service.NewCatalogService(destinations, logger)

	sessionOpts := []service.SessionOption{
		service.WithCatalog(catalogSvc),
		service.WithNotifier(notifier),
	}
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("parse REDIS_URL: %w", err)
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		sessionOpts = append(sessionOpts,
			service.WithIdempotency(repo.NewRedisIdempotencyRepo(rdb, idempotencyTTL), reservations))
		logger.Info("submit idempotency keys enabled")
	}

	sessions := service.NewSessionService(service.SessionConfig{
		Rules: map[domain.FlowKind]domain.FlowRules{
			domain.FlowExperience:  domain.FlowRules(cfg.Experience),
			domain.FlowDestination: domain.FlowRules(cfg.Destination),
		},
		TTL:           cfg.SessionTTL,
		SubmitTimeout: cfg.SubmitTimeout,
		Logger:        logger,
	}, service.NewSubmissionService(reservations, rates.Base()), sessionOpts...)

	srv := handler.NewServer(handler.Services{
		Sessions:     sessions,
		Reservations: service.NewReservationService(reservations, notifier),
		Export:       service.NewExportService(reservations),
		Catalog:      catalogSvc,
		Currency:     rates,
	}, spec.OpenAPI, logger)

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer → CORS → body limit.
	// RequestID generates a unique trace ID per request.
	// RealIP sets r.RemoteAddr from X-Forwarded-For / X-Real-IP (safe behind a proxy).
	// SlogLogger writes one structured JSON log line per request.
	// Recoverer catches panics and returns HTTP 500 instead of crashing.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))
	r.Mount("/", srv.Routes())

	// --- HTTP Server ------------------------------------------------------
	// The write timeout leaves room for a submit that waits on the store.
	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.SubmitTimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server starting", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return sessions.RunJanitor(gctx, janitorInterval)
	})
	g.Go(func() error {
		// Graceful shutdown: give in-flight requests up to 15 seconds to complete.
		<-gctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), 15*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// migrate applies pending goose migrations through a database/sql view of pool.
func migrate(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return fmt.Errorf("create goose provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	for _, res := range results {
		logger.Info("migration applied", "version", res.Source.Version, "duration", res.Duration)
	}
	return nil
}

func loadRates(cfg config.Config) (*currency.Converter, error) {
	if cfg.CurrencyRatesFile != "" {
		c, err := currency.LoadFile(cfg.CurrencyRatesFile)
		if err != nil {
			return nil, err
		}
		if c.Base() != cfg.BaseCurrency {
			return nil, fmt.Errorf("%s has base %s, want %s", cfg.CurrencyRatesFile, c.Base(), cfg.BaseCurrency)
		}
		return c, nil
	}
	return currency.Default(cfg.BaseCurrency)
}

func loadCatalog(cfg config.Config) ([]domain.Destination, error) {
	if cfg.CatalogFile != "" {
		return catalog.LoadFile(cfg.CatalogFile)
	}
	return catalog.Default()
}
