// Command migrate applies the embedded database migrations.
//
// Usage:
//
//	migrate [up|down|status|version|up-to VERSION]
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/zerovacancy/zerovacancy/internal/config"
	"github.com/zerovacancy/zerovacancy/internal/migrate"
)

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Overload(".env.local")

	log, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, "init logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(log, os.Args[1:]); err != nil {
		log.Error("migration failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(log *zap.Logger, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	db, err := sql.Open("pgx", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	m := migrate.NewMigrator(db, log)

	command := "up"
	if len(args) > 0 {
		command = args[0]
	}

	switch command {
	case "up":
		return m.Up(ctx)
	case "down":
		return m.Down(ctx)
	case "status":
		return m.Status(ctx)
	case "version":
		v, err := m.Version(ctx)
		if err != nil {
			return err
		}
		log.Info("current database version", zap.Int64("version", v))
		return nil
	case "up-to":
		if len(args) < 2 {
			return fmt.Errorf("up-to requires a version")
		}
		v, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", args[1], err)
		}
		return m.UpTo(ctx, v)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}
