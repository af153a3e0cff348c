package main

import (
	"fmt"

	"github.com/BAHUBALISID/smj/internal/infra"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := infra.NewDatabase(cfg.DatabaseURL, infra.DefaultDatabaseConfig())
		if err != nil {
			return err
		}
		if err := infra.RunMigrations(db); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
