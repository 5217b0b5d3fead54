package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"DCFSuite/internal/credit"
	"DCFSuite/internal/model"
	"DCFSuite/internal/pipeline"
	"DCFSuite/internal/projection"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Port    int  `yaml:"port"`
		DevMode bool `yaml:"dev_mode"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`
	DataSource struct {
		Provider          string `yaml:"provider"` // yahoo, gateway or mock
		BaseURL           string `yaml:"base_url"`
		APIKey            string `yaml:"api_key"`
		RequestsPerSecond int    `yaml:"requests_per_second"`
		TimeoutSeconds    int    `yaml:"timeout_seconds"`
	} `yaml:"data_source"`
	Cache struct {
		Enabled    bool   `yaml:"enabled"`
		SQLitePath string `yaml:"sqlite_path"`
		TTLMinutes int    `yaml:"ttl_minutes"`
	} `yaml:"cache"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Schedule struct {
		WatchCron string `yaml:"watch_cron"`
	} `yaml:"schedule"`
	Watchlist struct {
		StateFile string `yaml:"state_file"`
	} `yaml:"watchlist"`
	CreditSpreads []model.CreditSpreadEntry `yaml:"credit_spreads"`
	Defaults      Defaults                  `yaml:"defaults"`
	Proxy         string                    `yaml:"proxy"`
}

// Defaults are the valuation parameters used when a caller supplies none.
// Rates are fractions; the per-year patterns are comma separated percentages.
type Defaults struct {
	RiskFree            float64   `yaml:"risk_free"`
	MarketPremium       float64   `yaml:"market_premium"`
	Rating              string    `yaml:"rating"`
	MarginalTax         float64   `yaml:"marginal_tax"`
	EffectiveTax        float64   `yaml:"effective_tax"`
	Index               string    `yaml:"index"`
	LookbackYears       int       `yaml:"lookback_years"`
	Horizon             int       `yaml:"horizon"`
	TerminalGrowth      float64   `yaml:"terminal_growth"`
	DiscountRates       []float64 `yaml:"discount_rates"` // empty means use the computed WACC bounds
	GrowthPattern       string    `yaml:"growth_pattern"`
	MarginPattern       string    `yaml:"margin_pattern"`
	ReinvestmentPattern string    `yaml:"reinvestment_pattern"`
}

// Load starts from the defaults, decodes the YAML file over them, then
// applies .env and environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// .env is optional
	_ = godotenv.Load()

	applyEnv(cfg)
	fillEmpty(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("DATA_PROVIDER"); v != "" {
		cfg.DataSource.Provider = v
	}
	if v := os.Getenv("GATEWAY_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("GATEWAY_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Cache.SQLitePath = v
		cfg.Cache.Enabled = true
	}
	if v := os.Getenv("CRON_WATCH"); v != "" {
		cfg.Schedule.WatchCron = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("RISK_FREE_RATE"); v != "" {
		if rf, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Defaults.RiskFree = rf
		}
	}
}

// defaultConfig returns the configuration used for anything the file and
// environment leave out. The file is decoded over it, so an explicit zero in
// YAML is kept rather than mistaken for "unset".
func defaultConfig() *Config {
	cfg := &Config{}
	cfg.Server.Port = 8080
	cfg.Log.Level = "info"
	cfg.DataSource.Provider = "yahoo"
	cfg.DataSource.RequestsPerSecond = 2
	cfg.DataSource.TimeoutSeconds = 30
	cfg.Cache.SQLitePath = "data/dcfsuite.db"
	cfg.Cache.TTLMinutes = 360
	cfg.Schedule.WatchCron = "0 30 22 * * 1-5"
	cfg.Watchlist.StateFile = "data/watchlist.json"

	cfg.Defaults = Defaults{
		RiskFree:            0.045,
		MarketPremium:       0.05,
		Rating:              credit.DefaultRating,
		MarginalTax:         0.25,
		EffectiveTax:        0.19,
		Index:               "^GSPC",
		LookbackYears:       5,
		Horizon:             10,
		TerminalGrowth:      0.03,
		GrowthPattern:       "20,15,15,15,10,10,10,8,8,6",
		MarginPattern:       "46,46,46,46,46,46,46,46,46,46",
		ReinvestmentPattern: "40,40,30,20,20,20,20,20,20,20",
	}
	return cfg
}

// fillEmpty restores settings that have no meaningful empty value, such as
// an empty credit table or a blank provider written out in the file.
func fillEmpty(cfg *Config) {
	def := defaultConfig()
	if cfg.DataSource.Provider == "" {
		cfg.DataSource.Provider = def.DataSource.Provider
	}
	if cfg.DataSource.RequestsPerSecond <= 0 {
		cfg.DataSource.RequestsPerSecond = def.DataSource.RequestsPerSecond
	}
	if cfg.DataSource.TimeoutSeconds <= 0 {
		cfg.DataSource.TimeoutSeconds = def.DataSource.TimeoutSeconds
	}
	if cfg.Schedule.WatchCron == "" {
		cfg.Schedule.WatchCron = def.Schedule.WatchCron
	}
	if cfg.Watchlist.StateFile == "" {
		cfg.Watchlist.StateFile = def.Watchlist.StateFile
	}
	if len(cfg.CreditSpreads) == 0 {
		cfg.CreditSpreads = credit.DefaultTable
	}
}

// Request builds a valuation request for ticker from the defaults.
func (d Defaults) Request(ticker string) (pipeline.Request, error) {
	growth, err := projection.ParsePattern("growth_pattern", d.GrowthPattern)
	if err != nil {
		return pipeline.Request{}, err
	}
	margin, err := projection.ParsePattern("margin_pattern", d.MarginPattern)
	if err != nil {
		return pipeline.Request{}, err
	}
	reinvest, err := projection.ParsePattern("reinvestment_pattern", d.ReinvestmentPattern)
	if err != nil {
		return pipeline.Request{}, err
	}
	return pipeline.Request{
		CapitalRequest: d.CapitalRequest(ticker),
		EffectiveTax:   d.EffectiveTax,
		Horizon:        d.Horizon,
		TerminalGrowth: d.TerminalGrowth,
		DiscountRates:  append([]float64(nil), d.DiscountRates...),
		Growth:         growth,
		EBITMargin:     margin,
		Reinvestment:   reinvest,
	}, nil
}

// CapitalRequest builds a cost of capital request for ticker from the defaults.
func (d Defaults) CapitalRequest(ticker string) pipeline.CapitalRequest {
	return pipeline.CapitalRequest{
		Ticker:        ticker,
		Index:         d.Index,
		LookbackYears: d.LookbackYears,
		RiskFree:      d.RiskFree,
		MarketPremium: d.MarketPremium,
		Rating:        d.Rating,
		MarginalTax:   d.MarginalTax,
	}
}

// TelegramEnabled reports whether Telegram credentials are configured.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	switch strings.ToLower(c.DataSource.Provider) {
	case "yahoo", "mock":
	case "gateway":
		if c.DataSource.BaseURL == "" {
			return fmt.Errorf("data_source.base_url is required for the gateway provider")
		}
	default:
		return fmt.Errorf("data_source.provider %q is not one of yahoo, gateway, mock", c.DataSource.Provider)
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(c.Schedule.WatchCron); err != nil {
		return fmt.Errorf("schedule.watch_cron: %w", err)
	}
	if err := credit.Validate(c.CreditSpreads); err != nil {
		return fmt.Errorf("credit_spreads: %w", err)
	}
	req, err := c.Defaults.Request("DEFAULT")
	if err != nil {
		return fmt.Errorf("defaults: %w", err)
	}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("defaults: %w", err)
	}
	return nil
}
