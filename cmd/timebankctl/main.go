// Command timebankctl is the operator CLI: schema migrations, demo data,
// ledger inspection and account administration.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"timebank/internal/config"
	"timebank/internal/database"
	"timebank/internal/middleware"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gorm.io/gorm"
)

var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "timebankctl",
		Short:         "Operate a timebank deployment",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().Bool("json", false, "print JSON instead of tables")
	_ = viper.BindPFlag("json", root.PersistentFlags().Lookup("json"))

	root.AddCommand(migrateCmd())
	root.AddCommand(seedCmd())
	root.AddCommand(ledgerCmd())
	root.AddCommand(auditCmd())
	root.AddCommand(adminCmd())
	root.AddCommand(verifyOrgCmd())
	root.AddCommand(dbCmd())
	return root
}

// withDB loads the configuration, connects and hands the database to fn.
// Log output goes to stderr so tables and JSON stay clean on stdout.
func withDB(ctx context.Context, applySchema bool, fn func(context.Context, *config.Config, *gorm.DB) error) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	middleware.ConfigureLogger(os.Stderr, cfg.LogLevel, "text")

	db, err := database.Connect(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()

	if applySchema {
		if err := database.ApplySchema(ctx, db, cfg); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return fn(ctx, cfg, db)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
