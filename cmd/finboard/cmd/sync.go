package cmd

import (
	"context"
	"fmt"

	"FinBoard/internal/syncer"

	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Register configured instruments and run one incremental sync",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		s, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer s.Close()

		instruments, err := registerSeeds(cfg, s)
		if err != nil {
			return err
		}

		engine := buildEngine(cfg, s)
		report, runErr := engine.SyncAll(context.Background(), instruments)

		for _, o := range report.Outcomes {
			switch o.Status {
			case syncer.StatusSynced:
				fmt.Printf("  %-12s %s (%d rows)\n", o.Symbol, o.Status, o.RowsWritten)
			case syncer.StatusSkipped:
				fmt.Printf("  %-12s %s (%s)\n", o.Symbol, o.Status, o.Reason)
			case syncer.StatusFailed:
				fmt.Printf("  %-12s %s: %v\n", o.Symbol, o.Status, o.Err)
			}
		}
		fmt.Println(report.Summary())
		return runErr
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
