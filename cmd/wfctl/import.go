package main

import (
	"context"
	"fmt"
	"os"

	"github.com/cmlabs-hris/workforce-engine/internal/config"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/database"
	"github.com/cmlabs-hris/workforce-engine/internal/repository/csvfile"
	"github.com/cmlabs-hris/workforce-engine/internal/repository/postgresql"
	"github.com/jackc/pgx/v5"
	"github.com/spf13/cobra"
)

func (c *cli) importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load attendance and pay terms into PostgreSQL",
		Long: `Import writes into the database used by the API server. The database is
migrated first. --database-url may also be set through WFCTL_DATABASE_URL.`,
	}
	cmd.PersistentFlags().String("database-url", "", "PostgreSQL connection string")
	_ = c.v.BindPFlag("database-url", cmd.PersistentFlags().Lookup("database-url"))

	cmd.AddCommand(&cobra.Command{
		Use:   "attendance",
		Short: "Insert the entries of --attendance",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := c.v.GetString("attendance")
			if path == "" {
				return fmt.Errorf("--attendance is required")
			}
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			entries, err := csvfile.ReadAttendance(f)
			if err != nil {
				return err
			}
			return c.withDatabase(cmd.Context(), func(ctx context.Context, db *database.DB) error {
				if err := postgresql.InsertEntries(ctx, db, entries); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported %d attendance entries\n", len(entries))
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "compensations",
		Short: "Upsert the compensations of the engine config",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadEngineConfig(c.v.GetString("config"))
			if err != nil {
				return err
			}
			return c.withDatabase(cmd.Context(), func(ctx context.Context, db *database.DB) error {
				for _, comp := range cfg.Compensations {
					if err := postgresql.UpsertCompensation(ctx, db, comp); err != nil {
						return err
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported %d compensations\n", len(cfg.Compensations))
				return nil
			})
		},
	})
	return cmd
}

// withDatabase runs fn in one transaction so a failed import leaves nothing behind.
func (c *cli) withDatabase(ctx context.Context, fn func(ctx context.Context, db *database.DB) error) error {
	dsn := c.v.GetString("database-url")
	if dsn == "" {
		return fmt.Errorf("--database-url is required")
	}

	db, err := database.NewPostgreSQLDB(ctx, dsn, 4)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		return err
	}
	return postgresql.WithTransaction(ctx, db, func(ctx context.Context, _ pgx.Tx) error {
		return fn(ctx, db)
	})
}
