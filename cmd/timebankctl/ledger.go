package main

import (
	"context"
	"fmt"
	"io"

	"timebank/internal/config"
	"timebank/internal/models"
	"timebank/internal/repository"
	"timebank/internal/service"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gorm.io/gorm"
)

// DriftError is returned by audit when any balance disagrees with the ledger.
type DriftError struct{ Accounts int }

func (e DriftError) Error() string {
	return fmt.Sprintf("%d account(s) drifted from the ledger", e.Accounts)
}

func ledgerCmd() *cobra.Command {
	var (
		userID uint
		limit  int
		offset int
	)
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "List credit transactions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDB(cmd.Context(), false, func(ctx context.Context, _ *config.Config, db *gorm.DB) error {
				svc := service.NewLedgerService(service.NewRepositories(db))
				var (
					entries []models.CreditTransaction
					err     error
				)
				if userID != 0 {
					entries, err = svc.ListByUser(ctx, userID, limit, offset)
				} else {
					entries, err = svc.List(ctx, limit, offset)
				}
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(cmd.OutOrStdout(), entries)
				}
				renderLedger(cmd.OutOrStdout(), entries)
				return nil
			})
		},
	}
	cmd.Flags().UintVar(&userID, "user", 0, "only entries this user paid or received")
	cmd.Flags().IntVar(&limit, "limit", 50, "page size")
	cmd.Flags().IntVar(&offset, "offset", 0, "offset")
	return cmd
}

func renderLedger(w io.Writer, entries []models.CreditTransaction) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"ID", "Task", "From", "To", "Amount", "Type", "When"})
	total := 0
	for _, e := range entries {
		tw.AppendRow(table.Row{e.ID, e.TaskID, e.FromUserID, e.ToUserID, e.Amount, e.TransactionType,
			e.CreatedAt.Format("2006-01-02 15:04")})
		total += e.Amount
	}
	tw.AppendFooter(table.Row{"", "", "", "Total", total, "", ""})
	tw.Render()
}

func auditCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Compare every balance with its starting grant plus ledger flows",
		Long:  "Exits non-zero when any account's stored balance disagrees with the ledger.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDB(cmd.Context(), false, func(ctx context.Context, _ *config.Config, db *gorm.DB) error {
				svc := service.NewLedgerService(service.NewRepositories(db))
				rows, err := svc.Audit(ctx, all)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					if err := printJSON(cmd.OutOrStdout(), rows); err != nil {
						return err
					}
				} else {
					renderAudit(cmd.OutOrStdout(), rows)
				}
				if n := countDrift(rows); n > 0 {
					return DriftError{Accounts: n}
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "include accounts without drift")
	return cmd
}

func countDrift(rows []repository.LedgerBalance) int {
	n := 0
	for _, r := range rows {
		if r.Drift() != 0 {
			n++
		}
	}
	return n
}

func renderAudit(w io.Writer, rows []repository.LedgerBalance) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "ledger and balances agree")
		return
	}
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"User", "Name", "Kind", "Balance", "Received", "Paid", "Expected", "Drift"})
	for _, r := range rows {
		drift := fmt.Sprint(r.Drift())
		if r.Drift() != 0 {
			drift = text.FgRed.Sprint(drift)
		}
		tw.AppendRow(table.Row{r.UserID, r.FullName, r.AccountKind, r.TimeCredits, r.Received, r.Paid, r.Expected(), drift})
	}
	tw.Render()
}
