package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"go.uber.org/fx"

	"github.com/zerovacancy/zerovacancy/internal/config"
	"github.com/zerovacancy/zerovacancy/pkg/logger"
	"github.com/zerovacancy/zerovacancy/pkg/pgutils"
)

var Module = fx.Module("database",
	fx.Provide(
		NewPgxPool,
		NewBunDB,
		NewIDB,
	),
)

// NewIDB exposes db as bun.IDB, keeping a missing database a nil interface.
func NewIDB(db *bun.DB) bun.IDB {
	if db == nil {
		return nil
	}
	return db
}

// slowQueryThreshold marks queries that are logged at warn level.
const slowQueryThreshold = time.Second

// NewPgxPool creates the pgx connection pool and verifies connectivity.
// Without POSTGRES_HOST it returns a nil pool: pages still render and
// database-backed endpoints answer with a configuration error.
func NewPgxPool(lc fx.Lifecycle, cfg *config.Config, log *slog.Logger) (*pgxpool.Pool, error) {
	log = log.With(logger.Scope("database"))

	if !cfg.Database.IsConfigured() {
		log.Warn("database not configured, set POSTGRES_HOST to enable signups")
		return nil, nil
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse pgx config: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.Database.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.Database.MaxIdleConns)
	poolConfig.MaxConnIdleTime = cfg.Database.MaxIdleTime

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	log.Info("database pool created",
		slog.String("host", cfg.Database.Host),
		slog.Int("port", cfg.Database.Port),
		slog.String("database", cfg.Database.Database),
		slog.Int("max_conns", cfg.Database.MaxOpenConns),
	)

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Info("closing database pool")
			pool.Close()
			return nil
		},
	})

	return pool, nil
}

// NewBunDB wraps the pgx pool in a bun.DB with the PostgreSQL dialect.
func NewBunDB(lc fx.Lifecycle, pool *pgxpool.Pool, cfg *config.Config, log *slog.Logger) *bun.DB {
	if pool == nil {
		return nil
	}
	log = log.With(logger.Scope("bun"))

	db := bun.NewDB(stdlib.OpenDBFromPool(pool), pgdialect.New())
	db.AddQueryHook(&queryLoggingHook{log: log, verbose: cfg.Database.QueryDebug})

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return db.Close()
		},
	})

	return db
}

// queryLoggingHook logs failed and slow queries, and every query when verbose.
type queryLoggingHook struct {
	log     *slog.Logger
	verbose bool
}

func (h *queryLoggingHook) BeforeQuery(ctx context.Context, event *bun.QueryEvent) context.Context {
	return ctx
}

func (h *queryLoggingHook) AfterQuery(ctx context.Context, event *bun.QueryEvent) {
	duration := time.Since(event.StartTime)

	// Unique violations are expected control flow for idempotent inserts.
	if event.Err != nil && !errors.Is(event.Err, sql.ErrNoRows) && !pgutils.IsUniqueViolation(event.Err) {
		h.log.Error("query error",
			slog.String("query", event.Query),
			slog.Duration("duration", duration),
			logger.Error(event.Err),
		)
		return
	}

	if duration > slowQueryThreshold {
		h.log.Warn("slow query",
			slog.String("query", event.Query),
			slog.Duration("duration", duration),
		)
		return
	}

	if h.verbose {
		h.log.Debug("query",
			slog.String("query", event.Query),
			slog.Duration("duration", duration),
		)
	}
}
