package main

import (
	"context"
	"fmt"

	"timebank/internal/config"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func dbCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Low-level database maintenance (postgres)",
	}

	var onlyTable string
	constraints := &cobra.Command{
		Use:   "constraints",
		Short: "List constraints in the public schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDB(cmd.Context(), false, func(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
				if cfg.DBDriver == "sqlite" {
					return fmt.Errorf("constraints listing needs postgres")
				}
				var rows []struct {
					Relname string `gorm:"column:relname"`
					Conname string `gorm:"column:conname"`
					Def     string `gorm:"column:def"`
				}
				q := `SELECT r.relname, c.conname, pg_get_constraintdef(c.oid) AS def
					FROM pg_constraint c
					JOIN pg_class r ON c.conrelid = r.oid
					JOIN pg_namespace n ON n.oid = r.relnamespace
					WHERE n.nspname = 'public' AND (? = '' OR r.relname = ?)
					ORDER BY r.relname, c.conname`
				if err := db.WithContext(ctx).Raw(q, onlyTable, onlyTable).Scan(&rows).Error; err != nil {
					return err
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(cmd.OutOrStdout())
				tw.AppendHeader(table.Row{"Table", "Constraint", "Definition"})
				for _, r := range rows {
					tw.AppendRow(table.Row{r.Relname, r.Conname, r.Def})
				}
				tw.Render()
				return nil
			})
		},
	}
	constraints.Flags().StringVar(&onlyTable, "table", "", "only this table")
	cmd.AddCommand(constraints)

	var confirm bool
	reset := &cobra.Command{
		Use:   "reset",
		Short: "Drop and recreate the public schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !confirm {
				return fmt.Errorf("reset destroys every row; pass --yes to continue")
			}
			return withDB(cmd.Context(), false, func(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
				if cfg.IsProduction() {
					return fmt.Errorf("refusing to reset a %q database", cfg.Env)
				}
				if cfg.DBDriver == "sqlite" {
					return fmt.Errorf("reset needs postgres; delete %s instead", cfg.DBPath)
				}
				if err := db.WithContext(ctx).Exec("DROP SCHEMA public CASCADE; CREATE SCHEMA public;").Error; err != nil {
					return fmt.Errorf("drop schema: %w", err)
				}
				if err := db.WithContext(ctx).Exec("GRANT ALL ON SCHEMA public TO public;").Error; err != nil {
					return fmt.Errorf("grant schema permissions: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "public schema recreated; run `timebankctl migrate up`")
				return nil
			})
		},
	}
	reset.Flags().BoolVar(&confirm, "yes", false, "confirm the reset")
	cmd.AddCommand(reset)
	return cmd
}
