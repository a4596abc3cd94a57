package config

import (
	"os"
	"testing"
)

// saveEnv saves current environment variables for restoration
func saveEnv(t *testing.T, keys []string) map[string]string {
	t.Helper()
	saved := make(map[string]string)
	for _, key := range keys {
		saved[key] = os.Getenv(key)
	}
	return saved
}

// restoreEnv restores previously saved environment variables
func restoreEnv(t *testing.T, saved map[string]string) {
	t.Helper()
	for key, val := range saved {
		if val == "" {
			os.Unsetenv(key)
		} else {
			os.Setenv(key, val)
		}
	}
}

// clearEnv clears environment variables
func clearEnv(t *testing.T, keys []string) {
	t.Helper()
	for _, key := range keys {
		os.Unsetenv(key)
	}
}

var allEnvKeys = []string{
	"DATABASE_URL",
	"ALPACA_API_KEY",
	"ALPACA_API_SECRET",
	"ALPHA_VANTAGE_API_KEY",
	"FMP_API_KEY",
	"BEDROCK_REGION",
	"BEDROCK_MODEL_ID",
	"ENGINE_WORKERS",
	"ENGINE_TIMEOUT_SECONDS",
	"ENGINE_HISTORY_DAYS",
	"ENGINE_CHART_BARS",
	"ENGINE_HEADLINE_LIMIT",
	"ENGINE_FX_BASE",
	"ENGINE_FX_QUOTE",
	"ENGINE_FX_PERIODS",
	"SNAPSHOT_CONCURRENCY_LIMIT",
	"SNAPSHOT_CACHE_TTL_SECONDS",
	"DEFAULT_USER_ID",
	"PORT",
	"CORS_ALLOWED_ORIGINS",
}

func TestLoad_Defaults(t *testing.T) {
	saved := saveEnv(t, allEnvKeys)
	defer restoreEnv(t, saved)
	clearEnv(t, allEnvKeys)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() with defaults failed: %v", err)
	}

	if cfg.Engine.Workers != 4 {
		t.Errorf("expected Workers=4, got %d", cfg.Engine.Workers)
	}
	if cfg.Engine.TimeoutSeconds != 30 {
		t.Errorf("expected TimeoutSeconds=30, got %d", cfg.Engine.TimeoutSeconds)
	}
	if cfg.Engine.HistoryDays != 365 {
		t.Errorf("expected HistoryDays=365, got %d", cfg.Engine.HistoryDays)
	}
	if cfg.Engine.ChartBars != 126 {
		t.Errorf("expected ChartBars=126, got %d", cfg.Engine.ChartBars)
	}
	if cfg.Engine.HeadlineLimit != 5 {
		t.Errorf("expected HeadlineLimit=5, got %d", cfg.Engine.HeadlineLimit)
	}
	if cfg.Engine.FXBase != "USD" || cfg.Engine.FXQuote != "INR" {
		t.Errorf("expected FX pair USD/INR, got %s/%s", cfg.Engine.FXBase, cfg.Engine.FXQuote)
	}
	if cfg.Engine.FXPeriods != 30 {
		t.Errorf("expected FXPeriods=30, got %d", cfg.Engine.FXPeriods)
	}
	if cfg.Engine.DefaultUserID != "U001" {
		t.Errorf("expected DefaultUserID='U001', got %s", cfg.Engine.DefaultUserID)
	}
	if cfg.Bedrock.Region != "us-east-1" {
		t.Errorf("expected Bedrock.Region='us-east-1', got %s", cfg.Bedrock.Region)
	}
	if cfg.HTTP.Port != "8080" {
		t.Errorf("expected Port='8080', got %s", cfg.HTTP.Port)
	}
	if cfg.HTTP.CORSAllowedOrigins != "*" {
		t.Errorf("expected CORSAllowedOrigins='*', got %s", cfg.HTTP.CORSAllowedOrigins)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	saved := saveEnv(t, allEnvKeys)
	defer restoreEnv(t, saved)
	clearEnv(t, allEnvKeys)

	os.Setenv("DATABASE_URL", "postgres://localhost/test")
	os.Setenv("ALPACA_API_KEY", "test-key")
	os.Setenv("ALPACA_API_SECRET", "test-secret")
	os.Setenv("ALPHA_VANTAGE_API_KEY", "av-key")
	os.Setenv("FMP_API_KEY", "fmp-key")
	os.Setenv("BEDROCK_REGION", "us-west-2")
	os.Setenv("ENGINE_WORKERS", "8")
	os.Setenv("ENGINE_TIMEOUT_SECONDS", "60")
	os.Setenv("ENGINE_FX_QUOTE", "EUR")
	os.Setenv("DEFAULT_USER_ID", "U042")
	os.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() with custom values failed: %v", err)
	}

	if cfg.Database.URL != "postgres://localhost/test" {
		t.Errorf("expected Database.URL='postgres://localhost/test', got %s", cfg.Database.URL)
	}
	if cfg.Alpaca.APIKey != "test-key" {
		t.Errorf("expected Alpaca.APIKey='test-key', got %s", cfg.Alpaca.APIKey)
	}
	if cfg.Bedrock.Region != "us-west-2" {
		t.Errorf("expected Bedrock.Region='us-west-2', got %s", cfg.Bedrock.Region)
	}
	if cfg.Engine.Workers != 8 {
		t.Errorf("expected Workers=8, got %d", cfg.Engine.Workers)
	}
	if cfg.Engine.TimeoutSeconds != 60 {
		t.Errorf("expected TimeoutSeconds=60, got %d", cfg.Engine.TimeoutSeconds)
	}
	if cfg.Engine.FXQuote != "EUR" {
		t.Errorf("expected FXQuote='EUR', got %s", cfg.Engine.FXQuote)
	}
	if cfg.Engine.DefaultUserID != "U042" {
		t.Errorf("expected DefaultUserID='U042', got %s", cfg.Engine.DefaultUserID)
	}
	if cfg.HTTP.CORSAllowedOrigins != "http://localhost:3000" {
		t.Errorf("expected CORSAllowedOrigins='http://localhost:3000', got %s", cfg.HTTP.CORSAllowedOrigins)
	}
}

func TestLoad_InvalidValuesUseDefaults(t *testing.T) {
	tests := []struct {
		name   string
		envKey string
		envVal string
	}{
		{name: "negative workers uses default", envKey: "ENGINE_WORKERS", envVal: "-5"},
		{name: "zero timeout uses default", envKey: "ENGINE_TIMEOUT_SECONDS", envVal: "0"},
		{name: "invalid number uses default", envKey: "ENGINE_CHART_BARS", envVal: "not-a-number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			saved := saveEnv(t, allEnvKeys)
			defer restoreEnv(t, saved)
			clearEnv(t, allEnvKeys)

			os.Setenv(tt.envKey, tt.envVal)

			if _, err := Load(); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	cfg := NewTestConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("test config should validate, got %v", err)
	}

	cfg.Engine.Workers = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero workers")
	}

	cfg = NewTestConfig()
	cfg.Engine.DefaultUserID = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for empty default user")
	}
}

func TestHasDatabase(t *testing.T) {
	cfg := &Config{
		Database: DatabaseConfig{URL: ""},
	}
	if cfg.HasDatabase() {
		t.Error("expected HasDatabase() to return false for empty URL")
	}

	cfg.Database.URL = "postgres://localhost/test"
	if !cfg.HasDatabase() {
		t.Error("expected HasDatabase() to return true for non-empty URL")
	}
}

func TestHasAlpaca(t *testing.T) {
	cfg := &Config{
		Alpaca: AlpacaConfig{APIKey: "", APISecret: ""},
	}
	if cfg.HasAlpaca() {
		t.Error("expected HasAlpaca() to return false for empty config")
	}

	cfg.Alpaca.APIKey = "key"
	if cfg.HasAlpaca() {
		t.Error("expected HasAlpaca() to return false without secret")
	}

	cfg.Alpaca.APISecret = "secret"
	if !cfg.HasAlpaca() {
		t.Error("expected HasAlpaca() to return true for complete config")
	}
}

func TestHasAlphaVantage(t *testing.T) {
	cfg := &Config{
		AlphaVantage: AlphaVantageConfig{APIKey: ""},
	}
	if cfg.HasAlphaVantage() {
		t.Error("expected HasAlphaVantage() to return false for empty key")
	}

	cfg.AlphaVantage.APIKey = "key"
	if !cfg.HasAlphaVantage() {
		t.Error("expected HasAlphaVantage() to return true for non-empty key")
	}
}

func TestHasFMP(t *testing.T) {
	cfg := &Config{
		FMP: FMPConfig{APIKey: ""},
	}
	if cfg.HasFMP() {
		t.Error("expected HasFMP() to return false for empty key")
	}

	cfg.FMP.APIKey = "key"
	if !cfg.HasFMP() {
		t.Error("expected HasFMP() to return true for non-empty key")
	}
}

func TestGetEnvString(t *testing.T) {
	key := "TEST_GET_ENV_STRING"
	defer os.Unsetenv(key)

	os.Unsetenv(key)
	if got := getEnvString(key, "default"); got != "default" {
		t.Errorf("expected 'default', got %s", got)
	}

	os.Setenv(key, "custom")
	if got := getEnvString(key, "default"); got != "custom" {
		t.Errorf("expected 'custom', got %s", got)
	}
}

func TestGetEnvInt(t *testing.T) {
	key := "TEST_GET_ENV_INT"
	defer os.Unsetenv(key)

	os.Unsetenv(key)
	if got := getEnvInt(key, 42); got != 42 {
		t.Errorf("expected 42, got %d", got)
	}

	os.Setenv(key, "100")
	if got := getEnvInt(key, 42); got != 100 {
		t.Errorf("expected 100, got %d", got)
	}

	os.Setenv(key, "invalid")
	if got := getEnvInt(key, 42); got != 42 {
		t.Errorf("expected 42 for invalid value, got %d", got)
	}

	os.Setenv(key, "-5")
	if got := getEnvInt(key, 42); got != 42 {
		t.Errorf("expected 42 for negative value, got %d", got)
	}

	os.Setenv(key, "0")
	if got := getEnvInt(key, 42); got != 42 {
		t.Errorf("expected 42 for zero value, got %d", got)
	}
}

func TestGetEnvIntAllowZero(t *testing.T) {
	key := "TEST_GET_ENV_INT_ZERO"
	defer os.Unsetenv(key)

	os.Setenv(key, "0")
	if got := getEnvIntAllowZero(key, 42); got != 0 {
		t.Errorf("expected 0, got %d", got)
	}

	os.Setenv(key, "-1")
	if got := getEnvIntAllowZero(key, 42); got != 42 {
		t.Errorf("expected 42 for negative value, got %d", got)
	}
}
