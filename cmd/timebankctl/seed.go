package main

import (
	"context"
	"fmt"

	"timebank/internal/config"
	"timebank/internal/seed"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gorm.io/gorm"
)

func seedCmd() *cobra.Command {
	var opts seed.Options
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Populate the database with demo users, tasks, chats and community posts",
		Long: `Seed drives the real services, so every completed demo task has a ledger
entry and the audit stays clean. Demo accounts share the password "` + seed.DemoPassword + `".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDB(cmd.Context(), true, func(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
				if cfg.IsProduction() {
					return fmt.Errorf("refusing to seed in %q", cfg.Env)
				}
				summary, err := seed.Seed(ctx, db, opts)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if viper.GetBool("json") {
					return printJSON(out, summary)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(out)
				tw.AppendHeader(table.Row{"Users", "Tasks", "Accepted", "Completed", "Chats", "Messages", "Posts"})
				tw.AppendRow(table.Row{summary.Users, summary.Tasks, summary.Accepted, summary.Completed,
					summary.Chats, summary.Messages, summary.Posts})
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&opts.Users, "users", 20, "number of users to create")
	cmd.Flags().IntVar(&opts.Tasks, "tasks", 40, "number of tasks to create")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "random seed; 0 picks one")
	cmd.Flags().BoolVar(&opts.Clean, "clean", false, "delete existing marketplace rows first")
	cmd.Flags().BoolVar(&opts.SkipBcrypt, "skip-bcrypt", false, "store the demo password unhashed (tests only)")
	return cmd
}
