package config

import (
	"os"
	"strconv"
	"strings"

	"arffmeta/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Loader    LoaderConfig
	Extractor ExtractorConfig
	Export    ExportConfig
	LogLevel  string
}

// LoaderConfig holds ARFF loading settings
type LoaderConfig struct {
	DecodeText bool
}

// ExtractorConfig holds metadata extraction settings
type ExtractorConfig struct {
	Workers           int
	UnsupportedPolicy string
}

// ExportConfig holds output settings for the CLI
type ExportConfig struct {
	Format string
}

// Unsupported column policies
const (
	UnsupportedError = "error"
	UnsupportedSkip  = "skip"
)

var exportFormats = map[string]bool{
	"table": true,
	"csv":   true,
	"json":  true,
	"xlsx":  true,
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Loader:    *loadLoaderConfig(),
		Extractor: *loadExtractorConfig(),
		Export:    *loadExportConfig(),
		LogLevel:  getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// Default returns the configuration used when no environment is set
func Default() *Config {
	return &Config{
		Loader:    LoaderConfig{DecodeText: true},
		Extractor: ExtractorConfig{Workers: 1, UnsupportedPolicy: UnsupportedError},
		Export:    ExportConfig{Format: "table"},
		LogLevel:  "INFO",
	}
}

func loadLoaderConfig() *LoaderConfig {
	return &LoaderConfig{
		DecodeText: getEnvBoolOrDefault("ARFF_DECODE_TEXT", true),
	}
}

func loadExtractorConfig() *ExtractorConfig {
	return &ExtractorConfig{
		Workers:           getEnvIntOrDefault("METADATA_WORKERS", 1),
		UnsupportedPolicy: strings.ToLower(getEnvOrDefault("METADATA_UNSUPPORTED", UnsupportedError)),
	}
}

func loadExportConfig() *ExportConfig {
	return &ExportConfig{
		Format: strings.ToLower(getEnvOrDefault("EXPORT_FORMAT", "table")),
	}
}

func validateConfig(config *Config) error {
	if config.Extractor.Workers < 1 {
		return errors.ConfigInvalid("METADATA_WORKERS must be at least 1")
	}
	switch config.Extractor.UnsupportedPolicy {
	case UnsupportedError, UnsupportedSkip:
	default:
		return errors.ConfigInvalid("METADATA_UNSUPPORTED must be one of error, skip")
	}
	if !exportFormats[config.Export.Format] {
		return errors.ConfigInvalid("EXPORT_FORMAT must be one of table, csv, json, xlsx")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
