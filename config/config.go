package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	Database DatabaseConfig

	// External service configurations
	Alpaca       AlpacaConfig
	AlphaVantage AlphaVantageConfig
	FMP          FMPConfig
	Bedrock      BedrockConfig

	// Engine configuration
	Engine EngineConfig

	// HTTP configuration
	HTTP HTTPConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL string
}

// AlpacaConfig holds Alpaca API configuration
type AlpacaConfig struct {
	APIKey    string
	APISecret string
}

// AlphaVantageConfig holds Alpha Vantage API configuration
type AlphaVantageConfig struct {
	APIKey string
}

// FMPConfig holds Financial Modeling Prep API configuration
type FMPConfig struct {
	APIKey string
}

// BedrockConfig holds AWS Bedrock configuration for the sentiment classifier
type BedrockConfig struct {
	Region  string
	ModelID string
}

// EngineConfig holds snapshot engine configuration
type EngineConfig struct {
	Workers             int    // per-snapshot instrument worker pool size
	TimeoutSeconds      int    // per-instrument analysis timeout
	HistoryDays         int    // calendar days of price history to fetch
	ChartBars           int    // closes included in the chart tail
	HeadlineLimit       int    // headlines per instrument
	FXBase              string // currency advisory base currency
	FXQuote             string // currency advisory quote currency
	FXPeriods           int    // rate series length for the advisory
	SnapshotConcurrency int    // concurrent snapshot builds across users
	CacheTTLSeconds     int    // snapshot cache TTL, 0 disables caching
	DefaultUserID       string // user assumed when a request names none
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	Port               string
	CORSAllowedOrigins string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Alpaca: AlpacaConfig{
			APIKey:    os.Getenv("ALPACA_API_KEY"),
			APISecret: os.Getenv("ALPACA_API_SECRET"),
		},
		AlphaVantage: AlphaVantageConfig{
			APIKey: os.Getenv("ALPHA_VANTAGE_API_KEY"),
		},
		FMP: FMPConfig{
			APIKey: os.Getenv("FMP_API_KEY"),
		},
		Bedrock: BedrockConfig{
			Region:  getEnvString("BEDROCK_REGION", "us-east-1"),
			ModelID: getEnvString("BEDROCK_MODEL_ID", "anthropic.claude-3-haiku-20240307-v1:0"),
		},
		Engine: EngineConfig{
			Workers:             getEnvInt("ENGINE_WORKERS", 4),
			TimeoutSeconds:      getEnvInt("ENGINE_TIMEOUT_SECONDS", 30),
			HistoryDays:         getEnvInt("ENGINE_HISTORY_DAYS", 365),
			ChartBars:           getEnvInt("ENGINE_CHART_BARS", 126),
			HeadlineLimit:       getEnvInt("ENGINE_HEADLINE_LIMIT", 5),
			FXBase:              getEnvString("ENGINE_FX_BASE", "USD"),
			FXQuote:             getEnvString("ENGINE_FX_QUOTE", "INR"),
			FXPeriods:           getEnvInt("ENGINE_FX_PERIODS", 30),
			SnapshotConcurrency: getEnvInt("SNAPSHOT_CONCURRENCY_LIMIT", 3),
			CacheTTLSeconds:     getEnvIntAllowZero("SNAPSHOT_CACHE_TTL_SECONDS", 0),
			DefaultUserID:       getEnvString("DEFAULT_USER_ID", "U001"),
		},
		HTTP: HTTPConfig{
			Port:               getEnvString("PORT", "8080"),
			CORSAllowedOrigins: getEnvString("CORS_ALLOWED_ORIGINS", "*"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Engine.Workers <= 0 {
		return fmt.Errorf("ENGINE_WORKERS must be positive, got %d", c.Engine.Workers)
	}
	if c.Engine.TimeoutSeconds <= 0 {
		return fmt.Errorf("ENGINE_TIMEOUT_SECONDS must be positive, got %d", c.Engine.TimeoutSeconds)
	}
	if c.Engine.HistoryDays <= 0 {
		return fmt.Errorf("ENGINE_HISTORY_DAYS must be positive, got %d", c.Engine.HistoryDays)
	}
	if c.Engine.ChartBars <= 0 {
		return fmt.Errorf("ENGINE_CHART_BARS must be positive, got %d", c.Engine.ChartBars)
	}
	if c.Engine.FXPeriods <= 0 {
		return fmt.Errorf("ENGINE_FX_PERIODS must be positive, got %d", c.Engine.FXPeriods)
	}
	if c.Engine.SnapshotConcurrency <= 0 {
		return fmt.Errorf("SNAPSHOT_CONCURRENCY_LIMIT must be positive, got %d", c.Engine.SnapshotConcurrency)
	}
	if c.Engine.DefaultUserID == "" {
		return fmt.Errorf("DEFAULT_USER_ID must not be empty")
	}

	return nil
}

// HasDatabase returns true if database configuration is available
func (c *Config) HasDatabase() bool {
	return c.Database.URL != ""
}

// HasAlpaca returns true if Alpaca configuration is available
func (c *Config) HasAlpaca() bool {
	return c.Alpaca.APIKey != "" && c.Alpaca.APISecret != ""
}

// HasAlphaVantage returns true if Alpha Vantage configuration is available
func (c *Config) HasAlphaVantage() bool {
	return c.AlphaVantage.APIKey != ""
}

// HasFMP returns true if Financial Modeling Prep configuration is available
func (c *Config) HasFMP() bool {
	return c.FMP.APIKey != ""
}

func getEnvString(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

func getEnvIntAllowZero(key string, defaultValue int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed >= 0 {
			return parsed
		}
	}
	return defaultValue
}

// NewTestConfig creates a Config with default values for testing
func NewTestConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			URL: "",
		},
		Alpaca: AlpacaConfig{
			APIKey:    "",
			APISecret: "",
		},
		AlphaVantage: AlphaVantageConfig{
			APIKey: "",
		},
		FMP: FMPConfig{
			APIKey: "",
		},
		Bedrock: BedrockConfig{
			Region:  "us-east-1",
			ModelID: "anthropic.claude-3-haiku-20240307-v1:0",
		},
		Engine: EngineConfig{
			Workers:             4,
			TimeoutSeconds:      30,
			HistoryDays:         365,
			ChartBars:           126,
			HeadlineLimit:       5,
			FXBase:              "USD",
			FXQuote:             "INR",
			FXPeriods:           30,
			SnapshotConcurrency: 3,
			CacheTTLSeconds:     0,
			DefaultUserID:       "U001",
		},
		HTTP: HTTPConfig{
			Port:               "8080",
			CORSAllowedOrigins: "*",
		},
	}
}
