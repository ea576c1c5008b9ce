package main

import (
	"context"
	"fmt"

	"timebank/internal/config"
	"timebank/internal/database"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gorm.io/gorm"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply, inspect or roll back schema migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply the schema according to SCHEMA_MODE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDB(cmd.Context(), false, func(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
				if err := database.ApplySchema(ctx, db, cfg); err != nil {
					return fmt.Errorf("apply schema: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Revert the most recently applied SQL migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDB(cmd.Context(), false, func(ctx context.Context, _ *config.Config, db *gorm.DB) error {
				m, err := database.RollbackLatest(ctx, db)
				if err != nil {
					return fmt.Errorf("rollback failed: %w", err)
				}
				if m == nil {
					fmt.Fprintln(cmd.OutOrStdout(), "no applied migrations")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "rolled back %s\n", m.String())
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the schema policy and pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDB(cmd.Context(), false, func(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
				status, err := database.GetSchemaStatus(ctx, db, cfg)
				if err != nil {
					return fmt.Errorf("schema status failed: %w", err)
				}
				out := cmd.OutOrStdout()
				if viper.GetBool("json") {
					return printJSON(out, status)
				}
				fmt.Fprintf(out, "mode=%s env=%s run_sql=%t run_auto=%t applied=%d pending=%d\n",
					status.Mode, status.Environment, status.WillRunSQL, status.WillRunAutoMigrate,
					len(status.AppliedVersions), len(status.PendingMigrations))
				if len(status.PendingMigrations) == 0 {
					return nil
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(out)
				tw.AppendHeader(table.Row{"Version", "Name"})
				for _, m := range status.PendingMigrations {
					tw.AppendRow(table.Row{fmt.Sprintf("%06d", m.Version), m.Name})
				}
				tw.Render()
				return nil
			})
		},
	})
	return cmd
}
