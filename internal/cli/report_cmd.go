package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/complyhub/complyhub/internal/alert"
	"github.com/complyhub/complyhub/internal/cli/formatter"
	"github.com/complyhub/complyhub/internal/kpi"
	"github.com/complyhub/complyhub/internal/web"
)

func newValidateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the snapshot against the data-model invariants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := app.loadSnapshot(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if verr := snap.Validate(); verr != nil {
				fmt.Fprintln(out, formatter.Header("Snapshot invariants"))
				fmt.Fprintln(out, formatter.RenderViolations(verr))
				return fmt.Errorf("snapshot is invalid")
			}
			v := snap.Validation
			fmt.Fprintf(out, "%s Snapshot OK: %d students, %d compliance items, %d truancy cases\n",
				formatter.StyleGreen.Render("✓"), snap.Students.Total, len(snap.Compliance), len(snap.Attendance.TruancyQueue))
			fmt.Fprintf(out, "  Data accuracy %s\n", formatter.RenderProgress(kpi.Accuracy(v), app.Config.ValidationTarget, 20))
			return nil
		},
	}
}

func newAlertsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "alerts",
		Short: "Print the dashboard alerts for the current snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := app.loadSnapshot(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.RenderAlerts(alert.Generate(snap, app.Config.ValidationTarget)))
			return nil
		},
	}
}

func newRenderCmd(app *App) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Write the fully rendered dashboard page as static HTML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := app.loadSnapshot(cmd.Context())
			if err != nil {
				return err
			}
			sh, err := web.NewShell(snap, web.ShellConfig{
				Settings:  app.settings(),
				ToastLife: app.Config.ToastDuration,
				Logger:    app.logger(),
				Observer:  app.Observer,
			})
			if err != nil {
				return err
			}
			defer sh.Close()

			page := sh.HTML()
			if out == "" || out == "-" {
				_, err = fmt.Fprint(cmd.OutOrStdout(), page)
				return err
			}
			if err := os.WriteFile(out, []byte(page), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", out, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "-", "output file (- for stdout)")
	return cmd
}
