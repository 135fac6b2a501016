package repository

import (
	"context"
	"errors"
	"time"

	"github.com/complyhub/complyhub/internal/domain"
)

var (
	// ErrNotFound is returned when a store holds no snapshot.
	ErrNotFound = errors.New("not found")
	// ErrDecode is returned when snapshot bytes are not a valid snapshot document.
	ErrDecode = errors.New("decoding snapshot")
)

// SnapshotSource supplies the dashboard's read-only data snapshot.
type SnapshotSource interface {
	Load(ctx context.Context) (*domain.Snapshot, error)
}

// SnapshotStore is a SnapshotSource that can also persist snapshots.
type SnapshotStore interface {
	SnapshotSource
	Save(ctx context.Context, label string, s *domain.Snapshot) (string, error)
	List(ctx context.Context) ([]SnapshotMeta, error)
}

// SnapshotMeta describes one stored snapshot without its body.
type SnapshotMeta struct {
	ID        string
	Label     string
	CreatedAt time.Time
}
