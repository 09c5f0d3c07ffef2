package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"FinBoard/internal/api"
	"FinBoard/internal/scheduler"

	"github.com/spf13/cobra"
)

var syncOnStart bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the scheduled sync daemon and the dashboard API",
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		s, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer s.Close()

		if _, err := registerSeeds(cfg, s); err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		engine := buildEngine(cfg, s)
		sched := scheduler.New(ctx, engine, s)
		if err := sched.Register(cfg.Schedule.AsiaCloseCron, cfg.Schedule.USCloseCron); err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()

		server := api.New(s, cfg.API.ListenAddr)
		go server.Start()
		defer server.Stop(context.Background())

		if syncOnStart {
			log.Println("[INFO] sync-on-start enabled, running sync now")
			go sched.RunNow()
		}

		log.Println("[INFO] finboard is running. Press Ctrl+C to stop.")

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		log.Println("[INFO] shutdown signal received, stopping...")
		return nil
	},
}

func init() {
	serveCmd.Flags().BoolVar(&syncOnStart, "sync-on-start", false,
		"run one sync immediately instead of waiting for the first cron trigger")
	rootCmd.AddCommand(serveCmd)
}
