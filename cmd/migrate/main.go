package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yangonmaps/citymap/internal/pkg/config"
	"github.com/yangonmaps/citymap/internal/pkg/logging"
)

var (
	upFiles = []string{
		"001_init_extensions.sql",
		"002_content_tables.sql",
	}
	downFiles = []string{
		"down.sql",
	}
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: migrate <up|down>")
	}

	cfg, err := config.Load("citymap-migrate")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format, "citymap-migrate")

	dir := os.Getenv("MIGRATIONS_DIR")
	if dir == "" {
		dir = "migrations"
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	switch os.Args[1] {
	case "up":
		err = run(ctx, pool, dir, upFiles)
	case "down":
		err = run(ctx, pool, dir, downFiles)
	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}
	if err != nil {
		log.Fatalf("migrate %s: %v", os.Args[1], err)
	}
	slog.Info("migrations applied", "direction", os.Args[1])
}

func run(ctx context.Context, pool *pgxpool.Pool, dir string, files []string) error {
	for _, f := range files {
		path := filepath.Join(dir, f)
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		if _, err := pool.Exec(ctx, string(data)); err != nil {
			return fmt.Errorf("exec %s: %w", path, err)
		}
		slog.Info("migration ok", "file", f)
	}
	return nil
}
