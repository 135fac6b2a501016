package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/complyhub/complyhub/internal/db"
	"github.com/complyhub/complyhub/internal/domain"
	"github.com/complyhub/complyhub/internal/repository"
	"github.com/complyhub/complyhub/internal/sample"
)

type seedOptions struct {
	dbPath string
	pgDSN  string
	from   string
	label  string
	keep   int
}

func newSeedCmd(app *App) *cobra.Command {
	opts := seedOptions{}
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Store a snapshot in SQLite or Postgres",
		Long: "Store the built-in sample snapshot, or the JSON snapshot given with --from, " +
			"in the SQLite database at --db and/or the Postgres database at --pg.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.dbPath == "" && opts.pgDSN == "" {
				return fmt.Errorf("seed needs --db or --pg")
			}
			var src repository.SnapshotSource = sample.Source{}
			if opts.from != "" {
				src = repository.NewJSONFileSource(opts.from)
			}
			snap, err := src.Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("loading snapshot: %w", err)
			}
			if err := snap.Validate(); err != nil {
				return fmt.Errorf("refusing to seed an invalid snapshot: %w", err)
			}

			out := cmd.OutOrStdout()
			if opts.dbPath != "" {
				id, pruned, err := seedSQLite(cmd.Context(), opts, snap)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Seeded snapshot %s into %s", id, opts.dbPath)
				if pruned > 0 {
					fmt.Fprintf(out, " (pruned %d older)", pruned)
				}
				fmt.Fprintln(out)
			}
			if opts.pgDSN != "" {
				repo, err := repository.NewPostgresSnapshotRepo(cmd.Context(), opts.pgDSN)
				if err != nil {
					return err
				}
				defer repo.Close()
				id, err := repo.Save(cmd.Context(), opts.label, snap)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Seeded snapshot %s into postgres\n", id)
			}
			app.logger().Info("snapshot seeded", "sqlite", opts.dbPath, "postgres", opts.pgDSN != "", "label", opts.label)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.dbPath, "db", app.Config.DBPath, "SQLite database path")
	cmd.Flags().StringVar(&opts.pgDSN, "pg", "", "Postgres connection string")
	cmd.Flags().StringVar(&opts.from, "from", "", "JSON snapshot to store instead of the sample")
	cmd.Flags().StringVar(&opts.label, "label", "sample", "snapshot label")
	cmd.Flags().IntVar(&opts.keep, "keep", 0, "keep only the N most recent SQLite snapshots (0 keeps all)")
	return cmd
}

// seedSQLite saves snap and applies the retention limit in one transaction.
func seedSQLite(ctx context.Context, opts seedOptions, snap *domain.Snapshot) (string, int64, error) {
	conn, err := db.OpenDB(opts.dbPath)
	if err != nil {
		return "", 0, err
	}
	defer conn.Close()

	var (
		id     string
		pruned int64
	)
	err = db.WithinTx(ctx, conn, func(tx db.DBTX) error {
		repo := repository.NewSQLiteSnapshotRepo(tx)
		var err error
		if id, err = repo.Save(ctx, opts.label, snap); err != nil {
			return err
		}
		if opts.keep > 0 {
			pruned, err = repo.Prune(ctx, opts.keep)
		}
		return err
	})
	return id, pruned, err
}
