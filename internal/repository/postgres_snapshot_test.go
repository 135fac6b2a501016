package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/complyhub/complyhub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs only against a live database: COMPLYHUB_TEST_PG_DSN=postgres://...
func TestPostgresSnapshotRepo_SaveAndLoad(t *testing.T) {
	dsn := os.Getenv("COMPLYHUB_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("COMPLYHUB_TEST_PG_DSN not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := NewPostgresSnapshotRepo(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(repo.Close)

	s := testutil.NewCleanSnapshot(testutil.WithValidation(250, 300))
	_, err = repo.Save(ctx, "pg-test", s)
	require.NoError(t, err)

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 250, got.Validation.ValidRecords)

	metas, err := repo.List(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, metas)
}

func TestNewPostgresSnapshotRepo_BadDSN(t *testing.T) {
	_, err := NewPostgresSnapshotRepo(context.Background(), "postgres://%zz")
	assert.Error(t, err)
}
