package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"FinBoard/internal/model"

	"gopkg.in/yaml.v3"
)

// Seed describes one instrument to register before syncing. Alias, when
// set, replaces the upstream symbol as the stored identity (e.g. storing
// "USDTWD=X" as "USD_TWD").
type Seed struct {
	Symbol         string               `yaml:"symbol"`
	Alias          string               `yaml:"alias"`
	Name           string               `yaml:"name"`
	Classification model.Classification `yaml:"classification"`
	Region         string               `yaml:"region"`
	Currency       string               `yaml:"currency"`
}

// StoredSymbol returns the identity under which the instrument is kept.
func (s Seed) StoredSymbol() string {
	if s.Alias != "" {
		return s.Alias
	}
	return s.Symbol
}

// Config holds all application configuration.
type Config struct {
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Fetch struct {
		TimeoutSeconds int    `yaml:"timeout_seconds"`
		FloorDate      string `yaml:"floor_date"` // first date fetched for an empty instrument
	} `yaml:"fetch"`
	Schedule struct {
		AsiaCloseCron string `yaml:"asia_close_cron"` // after TW/JP close
		USCloseCron   string `yaml:"us_close_cron"`   // after US close
	} `yaml:"schedule"`
	API struct {
		ListenAddr string `yaml:"listen_addr"`
	} `yaml:"api"`
	Proxy       string `yaml:"proxy"`
	Instruments []Seed `yaml:"instruments"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file is not an error; defaults apply.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("FINBOARD_API_ADDR"); v != "" {
		cfg.API.ListenAddr = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("FETCH_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Fetch.TimeoutSeconds = n
		}
	}
	if v := os.Getenv("CRON_ASIA_CLOSE"); v != "" {
		cfg.Schedule.AsiaCloseCron = v
	}
	if v := os.Getenv("CRON_US_CLOSE"); v != "" {
		cfg.Schedule.USCloseCron = v
	}

	// Defaults
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/finance_data.db"
	}
	if cfg.Fetch.TimeoutSeconds == 0 {
		cfg.Fetch.TimeoutSeconds = 30
	}
	if cfg.Fetch.FloorDate == "" {
		cfg.Fetch.FloorDate = "2000-01-01"
	}
	if cfg.Schedule.AsiaCloseCron == "" {
		cfg.Schedule.AsiaCloseCron = "0 0 15 * * 1-5" // after TW/JP close, UTC+8 afternoon
	}
	if cfg.Schedule.USCloseCron == "" {
		cfg.Schedule.USCloseCron = "0 30 22 * * 1-5" // after NYSE close, UTC
	}
	if cfg.API.ListenAddr == "" {
		cfg.API.ListenAddr = ":8084"
	}
	if len(cfg.Instruments) == 0 {
		cfg.Instruments = defaultSeeds()
	}

	return cfg, nil
}

// Validate checks that all required fields are coherent.
func (c *Config) Validate() error {
	if c.Database.SQLitePath == "" {
		return fmt.Errorf("database.sqlite_path is required")
	}
	if c.Fetch.TimeoutSeconds <= 0 {
		return fmt.Errorf("fetch.timeout_seconds must be positive")
	}
	if _, err := time.Parse(model.DateFormat, c.Fetch.FloorDate); err != nil {
		return fmt.Errorf("fetch.floor_date: %w", err)
	}
	for _, s := range c.Instruments {
		if s.Symbol == "" {
			return fmt.Errorf("instrument seed with empty symbol")
		}
		if !s.Classification.Valid() {
			return fmt.Errorf("instrument %s: unknown classification %q", s.Symbol, s.Classification)
		}
	}
	return nil
}

// FloorDate returns the parsed historical floor. Call Validate first.
func (c *Config) FloorDate() time.Time {
	t, _ := time.Parse(model.DateFormat, c.Fetch.FloorDate)
	return t
}

// FetchTimeout returns the per-instrument fetch timeout.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.Fetch.TimeoutSeconds) * time.Second
}

func defaultSeeds() []Seed {
	return []Seed{
		{Symbol: "USDJPY=X", Name: "USD/JPY", Classification: model.ClassCurrencyPair, Region: "JP", Currency: "JPY"},
		{Symbol: "USDTWD=X", Alias: "USD_TWD", Name: "USD/TWD", Classification: model.ClassCurrencyPair, Region: "TW", Currency: "TWD"},
		{Symbol: "TWDJPY=X", Name: "TWD/JPY", Classification: model.ClassCurrencyPair, Region: "JP", Currency: "JPY"},
		{Symbol: "^GSPC", Name: "S&P 500", Classification: model.ClassIndex, Region: "US", Currency: "USD"},
		{Symbol: "^IXIC", Name: "NASDAQ Composite", Classification: model.ClassIndex, Region: "US", Currency: "USD"},
		{Symbol: "^DJI", Name: "Dow Jones Industrial Average", Classification: model.ClassIndex, Region: "US", Currency: "USD"},
		{Symbol: "URTH", Name: "MSCI World ETF", Classification: model.ClassETF, Region: "Global", Currency: "USD"},
		{Symbol: "0050.TW", Name: "Yuanta Taiwan 50", Classification: model.ClassETF, Region: "TW", Currency: "TWD"},
		{Symbol: "00878.TW", Name: "Cathay MSCI Taiwan ESG", Classification: model.ClassETF, Region: "TW", Currency: "TWD"},
		{Symbol: "00646.TW", Name: "Fubon NASDAQ-100 ETF", Classification: model.ClassETF, Region: "TW", Currency: "TWD"},
		{Symbol: "AAPL", Name: "Apple", Classification: model.ClassEquity, Region: "US", Currency: "USD"},
		{Symbol: "MSFT", Name: "Microsoft", Classification: model.ClassEquity, Region: "US", Currency: "USD"},
	}
}
