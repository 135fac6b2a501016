package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/complyhub/complyhub/internal/db"
	"github.com/complyhub/complyhub/internal/domain"
	"github.com/google/uuid"
)

// SQLiteSnapshotRepo stores JSON snapshot documents in SQLite. Load returns
// the most recently saved one.
type SQLiteSnapshotRepo struct {
	db db.DBTX
}

func NewSQLiteSnapshotRepo(conn db.DBTX) *SQLiteSnapshotRepo {
	return &SQLiteSnapshotRepo{db: conn}
}

func (r *SQLiteSnapshotRepo) Save(ctx context.Context, label string, s *domain.Snapshot) (string, error) {
	body, err := EncodeSnapshot(s)
	if err != nil {
		return "", err
	}
	label = strings.TrimSpace(label)
	if label == "" {
		label = "snapshot"
	}

	id := uuid.New().String()
	query := `INSERT INTO snapshots (id, label, body, created_at) VALUES (?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query, id, label, string(body), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return "", fmt.Errorf("inserting snapshot: %w", err)
	}
	return id, nil
}

func (r *SQLiteSnapshotRepo) Load(ctx context.Context) (*domain.Snapshot, error) {
	query := `SELECT body FROM snapshots ORDER BY created_at DESC, rowid DESC LIMIT 1`

	var body string
	if err := r.db.QueryRowContext(ctx, query).Scan(&body); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("snapshot: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning snapshot: %w", err)
	}
	return DecodeSnapshot(strings.NewReader(body))
}

func (r *SQLiteSnapshotRepo) List(ctx context.Context) ([]SnapshotMeta, error) {
	query := `SELECT id, label, created_at FROM snapshots ORDER BY created_at DESC, rowid DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	var out []SnapshotMeta
	for rows.Next() {
		var m SnapshotMeta
		var created string
		if err := rows.Scan(&m.ID, &m.Label, &created); err != nil {
			return nil, fmt.Errorf("scanning snapshot row: %w", err)
		}
		m.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, m)
	}
	return out, rows.Err()
}

// Prune deletes all but the keep most recent snapshots and returns how many
// rows were removed.
func (r *SQLiteSnapshotRepo) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	query := `DELETE FROM snapshots WHERE id NOT IN (
		SELECT id FROM snapshots ORDER BY created_at DESC, rowid DESC LIMIT ?)`
	res, err := r.db.ExecContext(ctx, query, keep)
	if err != nil {
		return 0, fmt.Errorf("pruning snapshots: %w", err)
	}
	return res.RowsAffected()
}
