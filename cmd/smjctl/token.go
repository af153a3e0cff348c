package main

import (
	"fmt"
	"time"

	"github.com/BAHUBALISID/smj/internal/middleware"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:     "token",
	Short:   "Mint an operator JWT signed with JWT_SECRET",
	Example: `  smjctl token --actor 6f1c... --role admin --ttl 8h`,
	RunE: func(cmd *cobra.Command, args []string) error {
		actor, _ := cmd.Flags().GetString("actor")
		role, _ := cmd.Flags().GetString("role")
		ttl, _ := cmd.Flags().GetDuration("ttl")

		if _, err := uuid.Parse(actor); err != nil {
			return fmt.Errorf("--actor: %w", err)
		}
		switch role {
		case middleware.RoleAdmin, middleware.RoleStaff:
		default:
			return fmt.Errorf("--role must be %s or %s", middleware.RoleAdmin, middleware.RoleStaff)
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		tok, err := middleware.IssueToken(cfg.JWTSecret, actor, role, ttl)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.Flags().String("actor", "", "user id carried in the token")
	tokenCmd.Flags().String("role", middleware.RoleStaff, "admin or staff")
	tokenCmd.Flags().Duration("ttl", 12*time.Hour, "token lifetime")
	_ = tokenCmd.MarkFlagRequired("actor")
}
