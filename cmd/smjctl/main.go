// smjctl is the operator CLI: migrations, rate maintenance, operator tokens
// and the receipt dead letter queue.
package main

import (
	"fmt"
	"os"

	"github.com/BAHUBALISID/smj/internal/config"
	"github.com/BAHUBALISID/smj/internal/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var version = "1.0.0"

var envFile string

var rootCmd = &cobra.Command{
	Use:           "smjctl",
	Short:         "Operator CLI for the SMJ billing backend",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if envFile != "" {
			if err := godotenv.Load(envFile); err != nil {
				return fmt.Errorf("load %s: %w", envFile, err)
			}
		}
		return logger.Setup(logger.Config{Level: os.Getenv("LOG_LEVEL"), Output: os.Stderr})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "load environment variables from this file first")
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log := logger.WithComponent("smjctl")
		log.Error().Err(err).Msg("command failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
