package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/complyhub/complyhub/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `CREATE TABLE IF NOT EXISTS snapshots (
	id         UUID PRIMARY KEY,
	label      TEXT NOT NULL,
	body       JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresSnapshotRepo stores snapshots in a Postgres table through a pgx pool.
type PostgresSnapshotRepo struct {
	pool *pgxpool.Pool
}

// NewPostgresSnapshotRepo connects to dsn, verifies the connection and
// ensures the snapshots table exists.
func NewPostgresSnapshotRepo(ctx context.Context, dsn string) (*PostgresSnapshotRepo, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: parsing dsn: %w", err)
	}
	if cfg.MaxConns == 0 {
		cfg.MaxConns = 4
	}
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: creating pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ensuring schema: %w", err)
	}
	return &PostgresSnapshotRepo{pool: pool}, nil
}

func (r *PostgresSnapshotRepo) Close() {
	r.pool.Close()
}

func (r *PostgresSnapshotRepo) Load(ctx context.Context) (*domain.Snapshot, error) {
	var body []byte
	err := r.pool.QueryRow(ctx, `SELECT body FROM snapshots ORDER BY created_at DESC LIMIT 1`).Scan(&body)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("snapshot: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("postgres: loading snapshot: %w", err)
	}
	return DecodeSnapshot(strings.NewReader(string(body)))
}

func (r *PostgresSnapshotRepo) Save(ctx context.Context, label string, s *domain.Snapshot) (string, error) {
	body, err := EncodeSnapshot(s)
	if err != nil {
		return "", err
	}
	if label = strings.TrimSpace(label); label == "" {
		label = "snapshot"
	}
	id := uuid.New().String()
	_, err = r.pool.Exec(ctx, `INSERT INTO snapshots (id, label, body) VALUES ($1, $2, $3)`, id, label, body)
	if err != nil {
		return "", fmt.Errorf("postgres: inserting snapshot: %w", err)
	}
	return id, nil
}

func (r *PostgresSnapshotRepo) List(ctx context.Context) ([]SnapshotMeta, error) {
	rows, err := r.pool.Query(ctx, `SELECT id::text, label, created_at FROM snapshots ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("postgres: listing snapshots: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (SnapshotMeta, error) {
		var m SnapshotMeta
		err := row.Scan(&m.ID, &m.Label, &m.CreatedAt)
		return m, err
	})
}

var (
	_ SnapshotStore = (*SQLiteSnapshotRepo)(nil)
	_ SnapshotStore = (*PostgresSnapshotRepo)(nil)
)
