package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/complyhub/complyhub/internal/web"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(app *App) *cobra.Command {
	var (
		addr   string
		noLogs bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			snap, err := app.loadSnapshot(ctx)
			if err != nil {
				return err
			}
			sh, err := web.NewShell(snap, web.ShellConfig{
				Settings:     app.settings(),
				ToastLife:    app.Config.ToastDuration,
				SyncInterval: app.Config.SyncInterval,
				Logger:       app.logger(),
				Observer:     app.Observer,
			})
			if err != nil {
				return err
			}
			defer sh.Close()
			sh.StartClock()

			srv := web.NewServer(&web.Options{
				Address:        addr,
				DisableReqLogs: noLogs,
				Shell:          sh,
				Logger:         app.logger(),
			})
			errc := make(chan error, 1)
			go func() { errc <- srv.Start() }()

			select {
			case err := <-errc:
				return err
			case <-ctx.Done():
			}
			app.logger().Info("shutting down")
			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Stop(sctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", app.Config.Addr, "listen address")
	cmd.Flags().BoolVar(&noLogs, "quiet", false, "disable request logs")
	return cmd
}
