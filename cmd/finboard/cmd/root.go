package cmd

import (
	"errors"
	"fmt"
	"log"
	"os"

	"FinBoard/internal/config"
	"FinBoard/internal/fetcher"
	"FinBoard/internal/model"
	"FinBoard/internal/store"
	"FinBoard/internal/syncer"

	"github.com/spf13/cobra"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "finboard",
	Short: "Daily OHLCV ingestion, indicators, and multi-currency reports",
	Long: `FinBoard keeps a local SQLite store of daily OHLCV series in sync with
the upstream market-data source, derives technical and performance
indicators on demand, and serves/exports them for the dashboard.`,
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", defaultConfigPath(),
		"path to the YAML config file")
}

func defaultConfigPath() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return "configs/config.yaml"
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func openStore(cfg *config.Config) (*store.Store, error) {
	return store.Open(cfg.Database.SQLitePath)
}

func buildEngine(cfg *config.Config, s *store.Store) *syncer.Engine {
	yahoo := fetcher.NewYahooFetcher(cfg.Proxy, cfg.FetchTimeout())
	engine := syncer.NewEngine(s, yahoo, cfg.FloorDate(), cfg.FetchTimeout())

	// Aliased seeds are stored under their alias but fetched under the
	// upstream symbol.
	aliases := make(map[string]string)
	for _, seed := range cfg.Instruments {
		if seed.Alias != "" && seed.Alias != seed.Symbol {
			aliases[seed.Alias] = seed.Symbol
		}
	}
	if len(aliases) > 0 {
		engine.Aliases = aliases
	}
	return engine
}

// registerSeeds makes sure every configured instrument exists before a
// sync. A conflicting re-registration is logged and skipped; it must not
// poison the rest of the seed list.
func registerSeeds(cfg *config.Config, s *store.Store) ([]model.Instrument, error) {
	var out []model.Instrument
	for _, seed := range cfg.Instruments {
		inst := model.Instrument{
			Symbol:         seed.StoredSymbol(),
			Name:           seed.Name,
			Classification: seed.Classification,
			Region:         seed.Region,
			Currency:       seed.Currency,
		}
		id, err := s.Register(inst)
		if err != nil {
			if errors.Is(err, store.ErrStorageUnavailable) {
				return nil, err
			}
			log.Printf("[WARN] register %s: %v", inst.Symbol, err)
			continue
		}
		inst.ID = id
		out = append(out, inst)
	}
	return out, nil
}
