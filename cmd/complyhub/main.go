package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"

	"github.com/complyhub/complyhub/internal/action"
	"github.com/complyhub/complyhub/internal/cli"
	"github.com/complyhub/complyhub/internal/config"
	"github.com/complyhub/complyhub/internal/db"
	"github.com/complyhub/complyhub/internal/repository"
	"github.com/complyhub/complyhub/internal/sample"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is fine; the environment and defaults still apply.
	_ = godotenv.Load()
	cfg := config.Load()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx := context.Background()
	src, closeSrc, err := openSource(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSrc()

	app := &cli.App{
		Config:   cfg,
		Source:   src,
		Logger:   logger,
		Observer: action.NewLogObserver(logger),
	}

	// Detect interactive terminal for the dashboard entrypoint.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	return cli.NewRootCmd(app).ExecuteContext(ctx)
}

// openSource picks the snapshot store: Postgres, then SQLite, then a JSON
// file, then the embedded sample.
func openSource(ctx context.Context, cfg config.Config) (repository.SnapshotSource, func(), error) {
	noop := func() {}
	switch {
	case cfg.PostgresDSN != "":
		repo, err := repository.NewPostgresSnapshotRepo(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, noop, err
		}
		return repo, repo.Close, nil
	case cfg.DBPath != "":
		conn, err := db.OpenDB(cfg.DBPath)
		if err != nil {
			return nil, noop, fmt.Errorf("opening database: %w", err)
		}
		return repository.NewSQLiteSnapshotRepo(conn), func() { conn.Close() }, nil
	case cfg.DataPath != "":
		return repository.NewJSONFileSource(cfg.DataPath), noop, nil
	}
	return sample.Source{}, noop, nil
}
