package db

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestMigrate_Idempotent(t *testing.T) {
	conn := openTestDB(t)

	require.NoError(t, Migrate(conn))
	require.NoError(t, Migrate(conn))
}

func TestMigrate_CreatesSnapshotSchema(t *testing.T) {
	conn := openTestDB(t)

	var name string
	require.NoError(t, conn.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name='snapshots'`).Scan(&name))
	assert.Equal(t, "snapshots", name)

	require.NoError(t, conn.QueryRow(`SELECT name FROM sqlite_master WHERE type='index' AND name='idx_snapshots_created'`).Scan(&name))
	assert.Equal(t, "idx_snapshots_created", name)
}

func TestWithinTx_RollsBackOnError(t *testing.T) {
	conn := openTestDB(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := WithinTx(ctx, conn, func(tx DBTX) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO snapshots (id, label, body, created_at) VALUES ('a', 'x', '{}', '2025-01-01T00:00:00Z')`)
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	var n int
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM snapshots`).Scan(&n))
	assert.Equal(t, 0, n)
}

func TestWithinTx_Commits(t *testing.T) {
	conn := openTestDB(t)
	ctx := context.Background()

	err := WithinTx(ctx, conn, func(tx DBTX) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO snapshots (id, label, body, created_at) VALUES ('a', 'x', '{}', '2025-01-01T00:00:00Z')`)
		return err
	})
	require.NoError(t, err)

	var n int
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM snapshots`).Scan(&n))
	assert.Equal(t, 1, n)
}
