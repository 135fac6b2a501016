package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/complyhub/complyhub/internal/a11y"
	"github.com/complyhub/complyhub/internal/action"
	"github.com/complyhub/complyhub/internal/cli/formatter"
	"github.com/complyhub/complyhub/internal/notify"
)

func newActionsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "actions",
		Short: "List the dashboard actions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := app.loadSnapshot(cmd.Context())
			if err != nil {
				return err
			}
			reg, err := action.NewCatalog(snap, app.settings()).Registry()
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(reg.Names()))
			for _, name := range reg.Names() {
				a, _ := reg.Get(name)
				inputs := make([]string, len(a.Fields))
				for i, f := range a.Fields {
					inputs[i] = f.Name
				}
				delay := "-"
				if a.Style != action.Instant {
					delay = a.Delay.String()
				}
				rows = append(rows, []string{name, a.Style.String(), delay, strings.Join(inputs, ", ")})
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.RenderTable([]string{"Action", "Style", "Delay", "Inputs"}, rows))
			return nil
		},
	}
}

func newRunCmd(app *App) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "run ACTION [input=value ...]",
		Short: "Run one dashboard action and print its outcome",
		Example: `  complyhub run run-data-validation
  complyhub run run-auto-scheduler scheduler-grade=7
  complyhub run fix-critical-issues --yes`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := parseInputArgs(args[1:])
			if err != nil {
				return err
			}
			if yes {
				in["confirm"] = "true"
			}
			return runAction(cmd, app, args[0], in)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "accept the action's confirmation prompt")
	return cmd
}

func parseInputArgs(args []string) (action.Input, error) {
	in := action.Input{}
	for _, a := range args {
		k, v, ok := strings.Cut(a, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("input %q: want key=value", a)
		}
		in[k] = v
	}
	return in, nil
}

func runAction(cmd *cobra.Command, app *App, name string, in action.Input) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	snap, err := app.loadSnapshot(ctx)
	if err != nil {
		return err
	}
	reg, err := action.NewCatalog(snap, app.settings()).Registry()
	if err != nil {
		return err
	}
	notifier := notify.New(app.Config.ToastDuration)
	status := &a11y.StatusLine{}
	board := newPanelBoard()
	d := action.NewDispatcher(reg, action.Deps{
		Notifier:  notifier,
		Announcer: status,
		View:      board,
		Observer:  app.Observer,
		Logger:    app.logger(),
	})
	defer d.Runner().Shutdown()

	t, err := d.Dispatch(ctx, name, in)
	if err != nil {
		var ce *action.ConfirmationError
		if errors.As(err, &ce) {
			fmt.Fprintln(out, formatter.StyleYellow.Render("?")+" "+ce.Prompt)
			fmt.Fprintln(out, formatter.Dim("Re-run with --yes to proceed."))
		} else {
			fmt.Fprintln(out, formatter.ErrorLine(err))
		}
		return err
	}

	if t.Style != action.Instant {
		stop := formatter.StartSpinner(cmd.ErrOrStderr(), pendingMessage(notifier, board))
		_, err = t.Wait(ctx)
		stop()
		if err != nil && ctx.Err() != nil {
			return err
		}
		d.Apply(t)
	}

	printOutcome(out, notifier, board, status)
	return nil
}

func pendingMessage(n *notify.Notifier, b *panelBoard) string {
	if msg, shown := n.Overlay(); shown {
		return msg
	}
	for _, p := range b.Panels() {
		if p.Live && len(p.Lines) > 0 {
			return p.Lines[0]
		}
	}
	return "Working..."
}

func printOutcome(w io.Writer, n *notify.Notifier, b *panelBoard, status *a11y.StatusLine) {
	for _, p := range b.Panels() {
		fmt.Fprintln(w, formatter.RenderPanel(p))
	}
	for _, t := range n.Active() {
		fmt.Fprintln(w, formatter.RenderToast(t))
	}
	if msg := status.Last(); msg != "" {
		fmt.Fprintln(w, formatter.Dim("🔊 "+msg))
	}
}
