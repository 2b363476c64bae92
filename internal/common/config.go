package common

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string           `toml:"environment"` // "development" or "production"
	Server      ServerConfig     `toml:"server"`
	Logging     LoggingConfig    `toml:"logging"`
	Sources     SourcesConfig    `toml:"sources"`
	Bars        BarsConfig       `toml:"bars"`
	News        NewsConfig       `toml:"news"`
	Scoring     ScoringConfig    `toml:"scoring"`
	Confidence  ConfidenceConfig `toml:"confidence"`
	Cache       CacheConfig      `toml:"cache"`
	Archive     ArchiveConfig    `toml:"archive"`
	Pipeline    PipelineConfig   `toml:"pipeline"`
}

type ServerConfig struct {
	Port int    `toml:"port" validate:"gte=0,lte=65535"`
	Host string `toml:"host"`
}

type LoggingConfig struct {
	Level      string   `toml:"level"`       // "debug", "info", "warn", "error"
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // Time format for logs (default: "15:04:05")
}

// SourcesConfig configures the upstream provider fetches
type SourcesConfig struct {
	ExportURL       string  `toml:"export_url"`        // Screener export CSV (candidates)
	NewsExportURL   string  `toml:"news_export_url"`   // News export CSV
	FilingsURL      string  `toml:"filings_url"`       // SEC filings export CSV
	QuotePageURL    string  `toml:"quote_page_url"`    // Quote page template, {ticker} is substituted
	FeedURL         string  `toml:"feed_url"`          // RSS template, {ticker} is substituted
	RequestTimeout  string  `toml:"request_timeout"`   // Per-request timeout (default: "10s")
	UserAgent       string  `toml:"user_agent"`        // User agent sent on every fetch
	RequestsPerSec  float64 `toml:"requests_per_sec"`  // Per-host rate limit (default: 4)
	MaxRetries      int     `toml:"max_retries"`       // Retries for transient fetch failures (default: 2)
	UseBrowser      bool    `toml:"use_browser"`       // Render quote pages with headless chrome
	BrowserWaitTime string  `toml:"browser_wait_time"` // Time to let scripts settle (default: "2s")
	Scraper         string  `toml:"scraper"`           // "regex" (default) or "dom"
}

// BarsConfig selects the bar-aggregation provider
type BarsConfig struct {
	Provider      string `toml:"provider" validate:"oneof=polygon eodhd none"`
	PolygonAPIKey string `toml:"polygon_api_key"`
	EODHDAPIKey   string `toml:"eodhd_api_key"`
	EODHDBaseURL  string `toml:"eodhd_base_url"`
	AvgVolumeDays int    `toml:"avg_volume_days" validate:"gte=1,lte=250"` // Trailing window for average daily volume (default: 30)
	EODHDNews     bool   `toml:"eodhd_news"`                               // Use EODHD news as the lowest-priority news source
}

// NewsConfig configures the news normalizer
type NewsConfig struct {
	MaxPerTicker int `toml:"max_per_ticker" validate:"gte=1"` // Rolling window per ticker (default: 8)
}

// ScoringWeights are the blend weights of the action score. They must sum to 1.
type ScoringWeights struct {
	AI     float64 `toml:"ai" validate:"gte=0,lte=1"`
	RVOL   float64 `toml:"rvol" validate:"gte=0,lte=1"`
	Gap    float64 `toml:"gap" validate:"gte=0,lte=1"`
	Change float64 `toml:"change" validate:"gte=0,lte=1"`
}

// ScoringConfig holds every tunable of the scoring engine
type ScoringConfig struct {
	Weights          ScoringWeights `toml:"weights"`
	FloatTargetM     float64        `toml:"float_target_m" validate:"gt=0"` // Float (millions) at or below which the bonus applies
	FloatCapM        float64        `toml:"float_cap_m" validate:"gtfield=FloatTargetM"`
	FloatBonus       float64        `toml:"float_bonus" validate:"gte=0"`
	FloatMaxPenalty  float64        `toml:"float_max_penalty" validate:"gte=0"`
	RedDayPenalty    float64        `toml:"red_day_penalty" validate:"gte=0"`
	StretchedPenalty float64        `toml:"stretched_penalty" validate:"gte=0"`
	RSIHigh          float64        `toml:"rsi_high" validate:"gte=0,lte=100"`
	RSILow           float64        `toml:"rsi_low" validate:"gte=0,lte=100"`
	TradeThreshold   float64        `toml:"trade_threshold" validate:"gte=0,lte=100"`
	WatchThreshold   float64        `toml:"watch_threshold" validate:"gte=0,ltefield=TradeThreshold"`
}

// ConfidenceConfig selects the aiConfidence provider
type ConfidenceConfig struct {
	Provider string      `toml:"provider" validate:"oneof=none heuristic model claude gemini"`
	Model    ModelConfig `toml:"model"`
	Claude   LLMConfig   `toml:"claude"`
	Gemini   LLMConfig   `toml:"gemini"`
}

// ModelConfig holds a trained logistic model over (gap, rvol, rsi)
type ModelConfig struct {
	Intercept    float64   `toml:"intercept"`
	Coefficients []float64 `toml:"coefficients"` // gap, rvol, rsi
	Means        []float64 `toml:"means"`        // Standard scaler means
	Scales       []float64 `toml:"scales"`       // Standard scaler scales
}

// LLMConfig contains settings shared by the LLM confidence raters
type LLMConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	MaxTokens   int     `toml:"max_tokens"`
	Temperature float32 `toml:"temperature"`
	Timeout     string  `toml:"timeout"` // Per-call timeout (default: "20s")
}

// CacheConfig selects the payload storage backend
type CacheConfig struct {
	Backend       string `toml:"backend" validate:"oneof=memory badger redis"`
	ScoresTTL     string `toml:"scores_ttl"` // e.g. "15m", empty disables expiry
	NewsTTL       string `toml:"news_ttl"`
	BadgerPath    string `toml:"badger_path"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	KeyPrefix     string `toml:"key_prefix"`
}

// ArchiveConfig configures the scored-run history
type ArchiveConfig struct {
	Enabled bool   `toml:"enabled"`
	Driver  string `toml:"driver" validate:"oneof=sqlite postgres"`
	DSN     string `toml:"dsn"`
}

// PipelineConfig configures the poll cycle
type PipelineConfig struct {
	Concurrency int      `toml:"concurrency" validate:"gte=1,lte=64"` // Parallel per-ticker workers (default: 8)
	MaxTickers  int      `toml:"max_tickers" validate:"gte=1"`        // Candidates kept from the export (default: 100)
	PriceMin    float64  `toml:"price_min" validate:"gte=0"`
	PriceMax    float64  `toml:"price_max" validate:"gte=0"` // 0 disables the upper bound
	Universe    []string `toml:"universe"`                   // Fallback tickers when the export is unavailable
}

// NewDefaultConfig creates a configuration with default values
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8086,
			Host: "localhost",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Output:     []string{"stdout"},
			TimeFormat: "15:04:05",
		},
		Sources: SourcesConfig{
			QuotePageURL:    "https://finviz.com/quote.ashx?t={ticker}",
			FeedURL:         "https://feeds.finance.yahoo.com/rss/2.0/headline?s={ticker}&region=US&lang=en-US",
			RequestTimeout:  "10s",
			UserAgent:       "Mozilla/5.0 (compatible; gapper/1.0)",
			RequestsPerSec:  4,
			MaxRetries:      2,
			BrowserWaitTime: "2s",
			Scraper:         "regex",
		},
		Bars: BarsConfig{
			Provider:      "none",
			EODHDBaseURL:  "https://eodhd.com/api",
			AvgVolumeDays: 30,
		},
		News: NewsConfig{
			MaxPerTicker: 8,
		},
		Scoring: ScoringConfig{
			Weights: ScoringWeights{
				AI:     0.45,
				RVOL:   0.30,
				Gap:    0.15,
				Change: 0.10,
			},
			FloatTargetM:     20,
			FloatCapM:        200,
			FloatBonus:       3,
			FloatMaxPenalty:  12,
			RedDayPenalty:    5,
			StretchedPenalty: 5,
			RSIHigh:          85,
			RSILow:           15,
			TradeThreshold:   75,
			WatchThreshold:   55,
		},
		Confidence: ConfidenceConfig{
			Provider: "heuristic",
			Claude: LLMConfig{
				Model:       "claude-3-5-haiku-latest",
				MaxTokens:   256,
				Temperature: 0,
				Timeout:     "20s",
			},
			Gemini: LLMConfig{
				Model:       "gemini-2.0-flash",
				MaxTokens:   256,
				Temperature: 0,
				Timeout:     "20s",
			},
		},
		Cache: CacheConfig{
			Backend:    "memory",
			ScoresTTL:  "15m",
			NewsTTL:    "30m",
			BadgerPath: "./data/cache",
			RedisAddr:  "localhost:6379",
			KeyPrefix:  "gapper",
		},
		Archive: ArchiveConfig{
			Enabled: false,
			Driver:  "sqlite",
			DSN:     "./data/archive.db",
		},
		Pipeline: PipelineConfig{
			Concurrency: 8,
			MaxTickers:  100,
			PriceMin:    1,
			PriceMax:    20,
		},
	}
}

// LoadFromFile loads configuration from a single file
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration with priority: defaults < file1 < file2 < ... < .env < env vars.
// Later files override earlier ones.
func LoadFromFiles(paths ...string) (*Config, error) {
	// Start with defaults
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier files)
	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		// Unmarshal into config (merges with existing values, later values override)
		err = toml.Unmarshal(data, config)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	// A missing .env is normal outside development
	_ = godotenv.Load()

	// Apply environment variables (overrides all file configs)
	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

var validate = validator.New()

// Validate checks field ranges and the cross-field scoring rules
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := c.Scoring.Weights.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Pipeline.PriceMax > 0 && c.Pipeline.PriceMax < c.Pipeline.PriceMin {
		return errors.New("invalid configuration: pipeline.price_max is below pipeline.price_min")
	}
	if c.Confidence.Provider == "model" {
		m := c.Confidence.Model
		if len(m.Coefficients) != 3 || len(m.Means) != 3 || len(m.Scales) != 3 {
			return errors.New("invalid configuration: confidence.model needs 3 coefficients, means and scales")
		}
	}
	return nil
}

// Validate checks each weight is in [0,1] and the four sum to 1
func (w ScoringWeights) Validate() error {
	if err := validate.Struct(w); err != nil {
		return err
	}
	sum := w.AI + w.RVOL + w.Gap + w.Change
	if math.Abs(sum-1) > 1e-6 {
		return fmt.Errorf("scoring weights must sum to 1, got %.4f", sum)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("GAPPER_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("GAPPER_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("GAPPER_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Logging configuration
	if level := os.Getenv("GAPPER_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("GAPPER_LOG_OUTPUT"); output != "" {
		if outputs := splitList(output); len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	// Source configuration
	if exportURL := os.Getenv("GAPPER_EXPORT_URL"); exportURL != "" {
		config.Sources.ExportURL = exportURL
	}
	if newsURL := os.Getenv("GAPPER_NEWS_EXPORT_URL"); newsURL != "" {
		config.Sources.NewsExportURL = newsURL
	}
	if filingsURL := os.Getenv("GAPPER_FILINGS_URL"); filingsURL != "" {
		config.Sources.FilingsURL = filingsURL
	}
	if timeout := os.Getenv("GAPPER_REQUEST_TIMEOUT"); timeout != "" {
		config.Sources.RequestTimeout = timeout
	}
	if useBrowser := os.Getenv("GAPPER_USE_BROWSER"); useBrowser != "" {
		if b, err := strconv.ParseBool(useBrowser); err == nil {
			config.Sources.UseBrowser = b
		}
	}

	// Bar provider configuration
	if provider := os.Getenv("GAPPER_BARS_PROVIDER"); provider != "" {
		config.Bars.Provider = provider
	}
	if apiKey := os.Getenv("POLYGON_API_KEY"); apiKey != "" {
		config.Bars.PolygonAPIKey = apiKey
	}
	if apiKey := os.Getenv("GAPPER_POLYGON_API_KEY"); apiKey != "" {
		config.Bars.PolygonAPIKey = apiKey
	}
	if apiKey := os.Getenv("GAPPER_EODHD_API_KEY"); apiKey != "" {
		config.Bars.EODHDAPIKey = apiKey
	}

	// News configuration
	if maxPerTicker := os.Getenv("GAPPER_NEWS_MAX_PER_TICKER"); maxPerTicker != "" {
		if n, err := strconv.Atoi(maxPerTicker); err == nil {
			config.News.MaxPerTicker = n
		}
	}

	// Confidence configuration
	if provider := os.Getenv("GAPPER_CONFIDENCE_PROVIDER"); provider != "" {
		config.Confidence.Provider = provider
	}
	if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		config.Confidence.Claude.APIKey = apiKey
	}
	if apiKey := os.Getenv("GAPPER_CLAUDE_API_KEY"); apiKey != "" {
		config.Confidence.Claude.APIKey = apiKey
	}
	if apiKey := os.Getenv("GAPPER_GEMINI_API_KEY"); apiKey != "" {
		config.Confidence.Gemini.APIKey = apiKey
	}

	// Cache configuration
	if backend := os.Getenv("GAPPER_CACHE_BACKEND"); backend != "" {
		config.Cache.Backend = backend
	}
	if addr := os.Getenv("GAPPER_REDIS_ADDR"); addr != "" {
		config.Cache.RedisAddr = addr
	}
	if password := os.Getenv("GAPPER_REDIS_PASSWORD"); password != "" {
		config.Cache.RedisPassword = password
	}
	if badgerPath := os.Getenv("GAPPER_BADGER_PATH"); badgerPath != "" {
		config.Cache.BadgerPath = badgerPath
	}

	// Archive configuration
	if driver := os.Getenv("GAPPER_ARCHIVE_DRIVER"); driver != "" {
		config.Archive.Driver = driver
	}
	if dsn := os.Getenv("GAPPER_ARCHIVE_DSN"); dsn != "" {
		config.Archive.DSN = dsn
		config.Archive.Enabled = true
	}

	// Pipeline configuration
	if concurrency := os.Getenv("GAPPER_CONCURRENCY"); concurrency != "" {
		if c, err := strconv.Atoi(concurrency); err == nil {
			config.Pipeline.Concurrency = c
		}
	}
	if universe := os.Getenv("GAPPER_UNIVERSE"); universe != "" {
		config.Pipeline.Universe = splitList(universe)
	}
}

// splitList splits a comma separated env value, dropping empty entries
func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// ParseDurationOr parses a duration string, returning fallback when empty or invalid
func ParseDurationOr(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
