// Package cli is the terminal surface: cobra commands plus the bubbletea
// dashboard.
package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/complyhub/complyhub/internal/action"
	"github.com/complyhub/complyhub/internal/config"
	"github.com/complyhub/complyhub/internal/domain"
	"github.com/complyhub/complyhub/internal/repository"
	"github.com/complyhub/complyhub/internal/sample"
)

// App holds what every command needs: configuration, the snapshot source
// and the ambient logger and observer.
type App struct {
	Config   config.Config
	Source   repository.SnapshotSource
	Logger   *slog.Logger
	Observer action.Observer

	// IsInteractive reports whether stdin is a terminal. The bare
	// command starts the dashboard only when it is.
	IsInteractive func() bool
}

// NewRootCmd creates the top-level "complyhub" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "complyhub",
		Short:         "School data and compliance command center",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.IsInteractive != nil && app.IsInteractive() {
				return runTUI(cmd.Context(), app)
			}
			return cmd.Help()
		},
	}

	root.AddCommand(
		newTUICmd(app),
		newServeCmd(app),
		newRenderCmd(app),
		newValidateCmd(app),
		newAlertsCmd(app),
		newSeedCmd(app),
		newActionsCmd(app),
		newRunCmd(app),
	)

	return root
}

func (a *App) logger() *slog.Logger {
	if a.Logger == nil {
		return slog.Default()
	}
	return a.Logger
}

// settings maps configuration onto the action catalog's tunables.
func (a *App) settings() action.Settings {
	return action.Settings{
		Target:         a.Config.ValidationTarget,
		SimDelay:       a.Config.SimDelay,
		SQLDelay:       a.Config.SQLDelay,
		SchedulerDelay: a.Config.SchedulerDelay,
	}
}

// loadSnapshot reads the configured source, falling back to the embedded
// sample. Invariant violations are logged, not fatal: the dashboard shows
// whatever data it was given.
func (a *App) loadSnapshot(ctx context.Context) (*domain.Snapshot, error) {
	src := a.Source
	if src == nil {
		src = sample.Source{}
	}
	snap, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}
	if err := snap.Validate(); err != nil {
		a.logger().Warn("snapshot violates invariants", "error", err)
	}
	return snap, nil
}
