package main

import (
	"fmt"
	"log/slog"
	"text/tabwriter"

	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"github.com/heartmarshall/macrotrack-backend/internal/adapter/postgres"
	"github.com/heartmarshall/macrotrack-backend/migrations"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the PostgreSQL schema",
		Long: `Apply or roll back the embedded schema migrations against database.dsn.

Examples:
  macrotrack migrate up
  macrotrack migrate down
  macrotrack migrate status`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrations(cmd, opts, func(p *goose.Provider, log *slog.Logger) error {
					results, err := p.Up(cmd.Context())
					for _, r := range results {
						log.Info("migration applied",
							slog.Int64("version", r.Source.Version),
							slog.Duration("duration", r.Duration),
						)
					}
					if err != nil {
						return fmt.Errorf("migrate up: %w", err)
					}
					if len(results) == 0 {
						log.Info("schema is up to date")
					}
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrations(cmd, opts, func(p *goose.Provider, log *slog.Logger) error {
					r, err := p.Down(cmd.Context())
					if err != nil {
						return fmt.Errorf("migrate down: %w", err)
					}
					log.Info("migration rolled back", slog.Int64("version", r.Source.Version))
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show applied and pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrations(cmd, opts, func(p *goose.Provider, _ *slog.Logger) error {
					statuses, err := p.Status(cmd.Context())
					if err != nil {
						return fmt.Errorf("migrate status: %w", err)
					}
					w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
					fmt.Fprintln(w, "VERSION\tSTATE\tAPPLIED AT\tFILE")
					for _, s := range statuses {
						applied := "-"
						if !s.AppliedAt.IsZero() {
							applied = s.AppliedAt.Format("2006-01-02 15:04:05")
						}
						fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", s.Source.Version, s.State, applied, s.Source.Path)
					}
					return w.Flush()
				})
			},
		},
	)
	return cmd
}

func withMigrations(cmd *cobra.Command, opts *rootOptions, fn func(*goose.Provider, *slog.Logger) error) error {
	cfg, logger, err := opts.load(cmd)
	if err != nil {
		return err
	}
	if cfg.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required for migrations")
	}

	pool, err := postgres.NewPool(cmd.Context(), cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	db := postgres.SQLDB(pool)
	defer db.Close()

	provider, err := migrations.NewProvider(db)
	if err != nil {
		return err
	}
	return fn(provider, logger.With("component", "migrate"))
}
