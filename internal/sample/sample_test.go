package sample

import (
	"context"
	"testing"

	"github.com/complyhub/complyhub/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSource_LoadsWellFormedSnapshot(t *testing.T) {
	s, err := Source{}.Load(context.Background())
	require.NoError(t, err)
	require.NoError(t, s.Validate())

	assert.Equal(t, 1247, s.Students.Total)
	assert.Equal(t, 1213, s.Validation.ValidRecords)
	assert.Equal(t, 34, s.Validation.InvalidRecords())
	assert.Equal(t, 2, s.OverdueCount())
	assert.Equal(t, 3, s.TierCount(domain.Tier3))
	assert.Equal(t, 6, s.IssueCountBySeverity(domain.SeverityCritical))
	assert.Len(t, s.Attendance.ChronicByDemographic, len(s.Students.Demographics))
}

func TestSource_LoadReturnsIndependentCopies(t *testing.T) {
	a, err := Source{}.Load(context.Background())
	require.NoError(t, err)
	b, err := Source{}.Load(context.Background())
	require.NoError(t, err)

	a.Compliance[0].Task = "changed"
	assert.NotEqual(t, "changed", b.Compliance[0].Task)
}

func TestSource_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Source{}.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
