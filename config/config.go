package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"binance_pnl/internal/analysis"
	"binance_pnl/internal/logger"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// MaxLimit is the largest page Binance returns from allOrders.
const MaxLimit = 1000

type Config struct {
	BinanceAPIKey    string
	BinanceSecretKey string
	Testnet          bool

	TelegramToken    string
	AuthorizedUserID int64
	Port             string

	Report ReportConfig     `yaml:"report"`
	Fetch  FetchConfig      `yaml:"fetch"`
	Log    logger.LogConfig `yaml:"log"`
}

// ReportConfig drives how reports are computed and presented
type ReportConfig struct {
	RealizedMode      string `yaml:"realized_mode"` // cost-basis, spread, both
	SpreadSign        string `yaml:"spread_sign"`   // buy-minus-sell, sell-minus-buy
	DeriveMarketPrice bool   `yaml:"derive_market_price"`
	DefaultLimit      int    `yaml:"default_limit"`
}

// FetchConfig is the retry policy for exchange calls
type FetchConfig struct {
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
	MinBackoff time.Duration `yaml:"min_backoff"`
	MaxBackoff time.Duration `yaml:"max_backoff"`
}

// Default returns the settings used when nothing is configured.
func Default() *Config {
	return &Config{
		Port: "8080",
		Report: ReportConfig{
			RealizedMode: string(analysis.RealizedCostBasis),
			SpreadSign:   string(analysis.SpreadBuyMinusSell),
			DefaultLimit: 500,
		},
		Fetch: FetchConfig{
			Timeout:    20 * time.Second,
			MaxRetries: 3,
			MinBackoff: 500 * time.Millisecond,
			MaxBackoff: 10 * time.Second,
		},
		Log: logger.LogConfig{Level: "INFO", Format: "text"},
	}
}

// Load reads .env and the environment, then overlays the optional YAML file.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, using environment variables")
	}

	cfg := Default()
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.BinanceAPIKey = firstEnv("BINANCE_API_KEY", "BINKEY")
	c.BinanceSecretKey = firstEnv("BINANCE_SECRET_KEY", "BINSEC")
	c.TelegramToken = os.Getenv("TELEGRAM_BOT_TOKEN")

	if port := os.Getenv("PORT"); port != "" {
		c.Port = port
	}

	if v := os.Getenv("AUTHORIZED_USER_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid AUTHORIZED_USER_ID: %w", err)
		}
		c.AuthorizedUserID = id
	}

	var err error
	if c.Testnet, err = envBool("BINANCE_TESTNET", c.Testnet); err != nil {
		return err
	}
	if v := os.Getenv("PNL_REALIZED_MODE"); v != "" {
		c.Report.RealizedMode = v
	}
	if v := os.Getenv("PNL_SPREAD_SIGN"); v != "" {
		c.Report.SpreadSign = v
	}
	if c.Report.DeriveMarketPrice, err = envBool("PNL_DERIVE_MARKET_PRICE", c.Report.DeriveMarketPrice); err != nil {
		return err
	}
	if c.Report.DefaultLimit, err = envInt("PNL_DEFAULT_LIMIT", c.Report.DefaultLimit); err != nil {
		return err
	}
	if v := os.Getenv("FETCH_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid FETCH_TIMEOUT: %w", err)
		}
		c.Fetch.Timeout = d
	}
	if c.Fetch.MaxRetries, err = envInt("FETCH_MAX_RETRIES", c.Fetch.MaxRetries); err != nil {
		return err
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	if c.Log.TracingEnabled, err = envBool("LOG_TRACING_ENABLED", c.Log.TracingEnabled); err != nil {
		return err
	}
	return nil
}

// applyFile overlays report, fetch and log sections from a YAML file.
// Credentials are never read from the file.
func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	overlay := struct {
		Report *ReportConfig     `yaml:"report"`
		Fetch  *FetchConfig      `yaml:"fetch"`
		Log    *logger.LogConfig `yaml:"log"`
	}{&c.Report, &c.Fetch, &c.Log}

	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

// Validate checks the report and fetch settings.
func (c *Config) Validate() error {
	if _, err := analysis.ParseRealizedMode(c.Report.RealizedMode); err != nil {
		return fmt.Errorf("report.realized_mode: %w", err)
	}
	if _, err := analysis.ParseSpreadSign(c.Report.SpreadSign); err != nil {
		return fmt.Errorf("report.spread_sign: %w", err)
	}
	if c.Report.DefaultLimit <= 0 || c.Report.DefaultLimit > MaxLimit {
		return fmt.Errorf("report.default_limit must be between 1 and %d", MaxLimit)
	}
	if c.Fetch.MaxRetries < 0 {
		return fmt.Errorf("fetch.max_retries must not be negative")
	}
	if c.Fetch.Timeout < 0 {
		return fmt.Errorf("fetch.timeout must not be negative")
	}
	if c.Fetch.MinBackoff > c.Fetch.MaxBackoff {
		return fmt.Errorf("fetch.min_backoff must not exceed fetch.max_backoff")
	}
	return nil
}

// AnalysisOptions converts the validated report settings.
func (c *Config) AnalysisOptions() analysis.Options {
	mode, _ := analysis.ParseRealizedMode(c.Report.RealizedMode)
	sign, _ := analysis.ParseSpreadSign(c.Report.SpreadSign)
	opts := analysis.Options{RealizedMode: mode, SpreadSign: sign}
	opts.Classify.DeriveMarketPrice = c.Report.DeriveMarketPrice
	return opts
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func envBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
