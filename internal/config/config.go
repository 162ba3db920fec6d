// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/igorcrp/lova-mia-sub000/internal/modules/backtest"
	"github.com/igorcrp/lova-mia-sub000/internal/utils"
	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir   string // Base directory for all databases (defaults to "./data", always absolute)
	LogLevel  string
	Port      int
	DevMode   bool
	Screening ScreeningConfig
	Archive   ArchiveConfig
}

// ScreeningConfig holds batch screening settings
type ScreeningConfig struct {
	BatchSize     int
	RiskFreeRate  float64 // percent
	HistoryLimit  int     // 0 = full history
	Schedule      string  // cron expression, empty disables the preset job
	RetentionDays int     // 0 keeps runs forever
	Preset        PresetConfig
}

// PresetConfig describes the screening the scheduler runs
type PresetConfig struct {
	Market     string
	AssetClass string
	Symbols    []string
	Strategy   backtest.StrategyConfig
}

// ArchiveConfig holds S3/R2 report archive settings
type ArchiveConfig struct {
	Enabled         bool
	Endpoint        string // empty = AWS, otherwise e.g. https://<account>.r2.cloudflarestorage.com
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Prefix          string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("LOVA_DATA_DIR", "./data")

	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:   absDataDir,
		Port:      getEnvAsInt("PORT", 8001),
		DevMode:   getEnvAsBool("DEV_MODE", false),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		Screening: loadScreeningConfig(),
		Archive:   loadArchiveConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	if c.Screening.BatchSize <= 0 {
		return fmt.Errorf("SCREENING_BATCH_SIZE must be positive, got %d", c.Screening.BatchSize)
	}
	if c.Screening.HistoryLimit < 0 {
		return fmt.Errorf("SCREENING_HISTORY_LIMIT must not be negative, got %d", c.Screening.HistoryLimit)
	}
	if c.Screening.RetentionDays < 0 {
		return fmt.Errorf("SCREENING_RETENTION_DAYS must not be negative, got %d", c.Screening.RetentionDays)
	}

	// The preset only matters when something will run it
	if c.Screening.Schedule != "" {
		p := c.Screening.Preset
		if p.Market == "" && len(p.Symbols) == 0 {
			return fmt.Errorf("SCREENING_SCHEDULE is set but neither SCREENING_PRESET_MARKET nor SCREENING_PRESET_SYMBOLS is")
		}
		strategy := p.Strategy
		if strategy.LotRounding == "" {
			strategy.LotRounding = backtest.LotInteger
		}
		if err := strategy.Validate(); err != nil {
			return fmt.Errorf("invalid screening preset: %w", err)
		}
	}

	if c.Archive.Enabled {
		if c.Archive.Bucket == "" {
			return fmt.Errorf("ARCHIVE_BUCKET is required when ARCHIVE_ENABLED is set")
		}
		if c.Archive.AccessKeyID == "" || c.Archive.SecretAccessKey == "" {
			return fmt.Errorf("ARCHIVE_ACCESS_KEY_ID and ARCHIVE_SECRET_ACCESS_KEY are required when ARCHIVE_ENABLED is set")
		}
	}

	return nil
}

func loadScreeningConfig() ScreeningConfig {
	return ScreeningConfig{
		BatchSize:     getEnvAsInt("SCREENING_BATCH_SIZE", 10),
		RiskFreeRate:  getEnvAsFloat("RISK_FREE_RATE", 0),
		HistoryLimit:  getEnvAsInt("SCREENING_HISTORY_LIMIT", 0),
		Schedule:      getEnv("SCREENING_SCHEDULE", ""),
		RetentionDays: getEnvAsInt("SCREENING_RETENTION_DAYS", 0),
		Preset: PresetConfig{
			Market:     getEnv("SCREENING_PRESET_MARKET", ""),
			AssetClass: getEnv("SCREENING_PRESET_ASSET_CLASS", ""),
			Symbols:    utils.ParseSymbols(getEnv("SCREENING_PRESET_SYMBOLS", "")),
			Strategy: backtest.StrategyConfig{
				Operation:       backtest.Operation(getEnv("SCREENING_PRESET_OPERATION", "buy")),
				ReferencePrice:  backtest.PriceField(getEnv("SCREENING_PRESET_REFERENCE_PRICE", "close")),
				EntryPercentage: getEnvAsFloat("SCREENING_PRESET_ENTRY_PERCENTAGE", 1),
				StopPercentage:  getEnvAsFloat("SCREENING_PRESET_STOP_PERCENTAGE", 2),
				InitialCapital:  getEnvAsFloat("SCREENING_PRESET_INITIAL_CAPITAL", 10000),
				Cadence:         backtest.Cadence(getEnv("SCREENING_PRESET_CADENCE", "day")),
				LotRounding:     backtest.LotRounding(getEnv("SCREENING_PRESET_LOT_ROUNDING", "")),
			},
		},
	}
}

func loadArchiveConfig() ArchiveConfig {
	return ArchiveConfig{
		Enabled:         getEnvAsBool("ARCHIVE_ENABLED", false),
		Endpoint:        getEnv("ARCHIVE_ENDPOINT", ""),
		Region:          getEnv("ARCHIVE_REGION", "auto"),
		Bucket:          getEnv("ARCHIVE_BUCKET", ""),
		AccessKeyID:     getEnv("ARCHIVE_ACCESS_KEY_ID", ""),
		SecretAccessKey: getEnv("ARCHIVE_SECRET_ACCESS_KEY", ""),
		Prefix:          getEnv("ARCHIVE_PREFIX", "screening-reports"),
	}
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
