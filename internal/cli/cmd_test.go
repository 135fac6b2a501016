package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/complyhub/complyhub/internal/action"
	"github.com/complyhub/complyhub/internal/db"
	"github.com/complyhub/complyhub/internal/domain"
	"github.com/complyhub/complyhub/internal/repository"
	"github.com/complyhub/complyhub/internal/testutil"
)

// executeCmd runs a cobra command and captures stdout/stderr.
func executeCmd(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

// writeSnapshot stores snap as JSON under a temp dir and returns its path.
func writeSnapshot(t *testing.T, snap *domain.Snapshot) string {
	t.Helper()
	data, err := repository.EncodeSnapshot(snap)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "snapshot.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// --- root ---

func TestRootCmd_NonInteractiveShowsHelp(t *testing.T) {
	app := testApp(t)
	app.IsInteractive = func() bool { return false }

	output, err := executeCmd(t, app)
	require.NoError(t, err)
	assert.Contains(t, output, "complyhub")
	assert.Contains(t, output, "serve")
}

// --- validate ---

func TestValidateCmd_Sample(t *testing.T) {
	output, err := executeCmd(t, testApp(t), "validate")
	require.NoError(t, err)
	assert.Contains(t, output, "Snapshot OK: 1247 students")
}

func TestValidateCmd_ReportsViolations(t *testing.T) {
	app := testApp(t)
	snap := testutil.NewCleanSnapshot(func(s *domain.Snapshot) {
		s.Students.ByGrade = append(s.Students.ByGrade, domain.GradeCount{Grade: 3, Count: 10})
	})
	app.Source = repository.NewJSONFileSource(writeSnapshot(t, snap))

	output, err := executeCmd(t, app, "validate")
	require.Error(t, err)
	assert.Contains(t, output, "grade 3 outside 6-12")
}

// --- alerts ---

func TestAlertsCmd_Sample(t *testing.T) {
	output, err := executeCmd(t, testApp(t), "alerts")
	require.NoError(t, err)
	assert.Contains(t, output, "Critical: Overdue Compliance Items")
	assert.Contains(t, output, "Truancy Interventions Required")
}

func TestAlertsCmd_CleanSnapshotHasNone(t *testing.T) {
	app := testApp(t)
	app.Source = repository.NewJSONFileSource(writeSnapshot(t, testutil.NewCleanSnapshot()))

	output, err := executeCmd(t, app, "alerts")
	require.NoError(t, err)
	assert.Contains(t, output, "No alerts")
}

// --- render ---

func TestRenderCmd_Stdout(t *testing.T) {
	output, err := executeCmd(t, testApp(t), "render")
	require.NoError(t, err)
	assert.Contains(t, output, "<!DOCTYPE html>")
	assert.Contains(t, output, "1,247")
}

func TestRenderCmd_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dashboard.html")
	output, err := executeCmd(t, testApp(t), "render", "--out", path)
	require.NoError(t, err)
	assert.Contains(t, output, "Wrote "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Critical: Overdue Compliance Items")
}

// --- actions / run ---

func TestActionsCmd_ListsCatalog(t *testing.T) {
	output, err := executeCmd(t, testApp(t), "actions")
	require.NoError(t, err)
	assert.Contains(t, output, "run-data-validation")
	assert.Contains(t, output, "blocking")
	assert.Contains(t, output, action.FieldSchedulerGrade)
}

func TestRunCmd_InstantAction(t *testing.T) {
	output, err := executeCmd(t, testApp(t), "run", "export-dashboard")
	require.NoError(t, err)
	assert.Contains(t, output, "Dashboard snapshot exported to PDF")
}

func TestRunCmd_DelayedActionWaits(t *testing.T) {
	output, err := executeCmd(t, testApp(t), "run", "run-auto-scheduler", "scheduler-grade=7")
	require.NoError(t, err)
	assert.Contains(t, output, "Scheduling Complete")
	assert.Contains(t, output, "Scheduling complete for 215 students in Grade 7")
}

func TestRunCmd_InvalidInput(t *testing.T) {
	output, err := executeCmd(t, testApp(t), "run", "execute-sql", "sql-query-input=   ")
	require.ErrorIs(t, err, action.ErrInvalidInput)
	assert.Contains(t, output, "Please enter a SQL query")
}

func TestRunCmd_ConfirmationRequired(t *testing.T) {
	app := testApp(t)

	output, err := executeCmd(t, app, "run", "fix-critical-issues")
	require.ErrorIs(t, err, action.ErrConfirmationRequired)
	assert.Contains(t, output, "Review and correct critical data issues?")

	output, err = executeCmd(t, app, "run", "fix-critical-issues", "--yes")
	require.NoError(t, err)
	assert.Contains(t, output, "Opening critical issues for review")
}

func TestRunCmd_UnknownAction(t *testing.T) {
	_, err := executeCmd(t, testApp(t), "run", "launch-rockets")
	require.ErrorIs(t, err, action.ErrUnknownAction)
}

func TestRunCmd_MalformedInput(t *testing.T) {
	_, err := executeCmd(t, testApp(t), "run", "filter-issues", "critical")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "want key=value")
}

// --- seed ---

func TestSeedCmd_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "complyhub.db")
	app := testApp(t)

	for range 3 {
		output, err := executeCmd(t, app, "seed", "--db", path, "--label", "nightly", "--keep", "2")
		require.NoError(t, err)
		assert.Contains(t, output, "Seeded snapshot")
	}

	conn, err := db.OpenDB(path)
	require.NoError(t, err)
	defer conn.Close()
	repo := repository.NewSQLiteSnapshotRepo(conn)

	metas, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, metas, 2, "retention keeps the newest two")
	assert.Equal(t, "nightly", metas[0].Label)

	snap, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1247, snap.Students.Total)
}

func TestSeedCmd_RequiresTarget(t *testing.T) {
	app := testApp(t)
	app.Config.DBPath = ""

	_, err := executeCmd(t, app, "seed")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--db or --pg")
}

func TestSeedCmd_RefusesInvalidSnapshot(t *testing.T) {
	snap := testutil.NewCleanSnapshot(func(s *domain.Snapshot) {
		s.Validation.ValidRecords = s.Validation.TotalRecords + 1
	})
	path := writeSnapshot(t, snap)

	_, err := executeCmd(t, testApp(t), "seed", "--db", filepath.Join(t.TempDir(), "x.db"), "--from", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refusing to seed")
}
