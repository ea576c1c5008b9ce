package main

import (
	"context"
	"fmt"
	"strconv"

	"timebank/internal/config"
	"timebank/internal/models"
	"timebank/internal/service"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gorm.io/gorm"
)

func parseUserID(arg string) (uint, error) {
	id, err := strconv.ParseUint(arg, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid user id %q", arg)
	}
	return uint(id), nil
}

// setAdmin flips the admin flag and reports whether anything changed.
func setAdmin(ctx context.Context, db *gorm.DB, id uint, admin bool) (*models.User, bool, error) {
	var user models.User
	if err := db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, false, fmt.Errorf("user %d: %w", id, err)
	}
	if user.IsAdmin == admin {
		return &user, false, nil
	}
	if err := db.WithContext(ctx).Model(&user).Update("is_admin", admin).Error; err != nil {
		return nil, false, err
	}
	return &user, true, nil
}

func adminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Grant, revoke and list the admin role",
	}

	toggle := func(use, short string, admin bool) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <user-id>",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseUserID(args[0])
				if err != nil {
					return err
				}
				return withDB(cmd.Context(), false, func(ctx context.Context, _ *config.Config, db *gorm.DB) error {
					user, changed, err := setAdmin(ctx, db, id, admin)
					if err != nil {
						return err
					}
					if !changed {
						fmt.Fprintf(cmd.OutOrStdout(), "%s (ID: %d) already has is_admin=%t\n", user.Email, user.ID, admin)
						return nil
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s (ID: %d) is_admin=%t\n", user.Email, user.ID, admin)
					return nil
				})
			},
		}
	}
	cmd.AddCommand(toggle("promote", "Grant the admin role", true))
	cmd.AddCommand(toggle("demote", "Revoke the admin role", false))

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List admins",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDB(cmd.Context(), false, func(ctx context.Context, _ *config.Config, db *gorm.DB) error {
				var admins []models.User
				if err := db.WithContext(ctx).Where("is_admin = ?", true).Order("id").Find(&admins).Error; err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if viper.GetBool("json") {
					return printJSON(out, admins)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(out)
				tw.AppendHeader(table.Row{"ID", "Name", "Email"})
				for _, a := range admins {
					tw.AppendRow(table.Row{a.ID, a.FullName, a.Email})
				}
				tw.Render()
				return nil
			})
		},
	})
	return cmd
}

func verifyOrgCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify-org <user-id>",
		Short: "Mark an organization account as verified",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			return withDB(cmd.Context(), false, func(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
				users := service.NewUserService(service.NewRepositories(db), nil, nil, cfg)
				user, err := users.VerifyOrganization(ctx, id)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s (ID: %d) verified\n", user.FullName, user.ID)
				return nil
			})
		},
	}
}
