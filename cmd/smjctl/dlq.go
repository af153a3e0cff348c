package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/BAHUBALISID/smj/internal/infra"
	"github.com/BAHUBALISID/smj/internal/worker"

	"github.com/spf13/cobra"
)

var dlqCmd = &cobra.Command{
	Use:   "dlq",
	Short: "Inspect and requeue failed receipt jobs",
}

var dlqListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show dead receipt jobs, oldest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt64("limit")
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		rdb, err := infra.NewRedis(cfg.RedisURL)
		if err != nil {
			return err
		}
		entries, err := worker.ListDLQ(cmd.Context(), rdb, worker.QueueReceipt, limit)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tFAILED AT\tTYPE\tPAYLOAD\tREASON")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", e.ID, e.FailedAt.Format(time.RFC3339), e.JobType, string(e.Payload), e.Reason)
		}
		return w.Flush()
	},
}

var dlqReplayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Move dead receipt jobs back onto the receipt queue",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("max")
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		rdb, err := infra.NewRedis(cfg.RedisURL)
		if err != nil {
			return err
		}
		n, err := worker.ReplayDLQ(cmd.Context(), rdb, worker.QueueReceipt, limit)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d jobs requeued\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dlqCmd)
	dlqCmd.AddCommand(dlqListCmd, dlqReplayCmd)
	dlqListCmd.Flags().Int64("limit", 50, "maximum entries to show")
	dlqReplayCmd.Flags().Int("max", 100, "maximum jobs to requeue")
}
