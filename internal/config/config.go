package config

import (
	"os"
	"runtime"
	"strconv"
	"strings"
	"unicode/utf8"

	"jprofile/domain/profiling"
	"jprofile/internal/errors"
)

// DefaultMissingValues are the cell tokens read as missing by the loaders.
var DefaultMissingValues = []string{"", "NA", "N/A", "null", "NULL", "NaN", "nan", "None"}

// Config represents the complete application configuration
type Config struct {
	Profiling ProfilingConfig
	Loader    LoaderConfig
	Server    ServerConfig
	Log       LogConfig
}

// ProfilingConfig holds profile computation settings
type ProfilingConfig struct {
	TopFrequencyLimit int
	Workers           int
}

// LoaderConfig holds dataset loading settings
type LoaderConfig struct {
	Sheet         string
	Delimiter     rune
	MissingValues []string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Addr        string
	MaxUploadMB int
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Profiling: *loadProfilingConfig(),
		Loader:    *loadLoaderConfig(),
		Server:    *loadServerConfig(),
		Log:       *loadLogConfig(),
	}

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// Computer returns the profile computer configuration
func (c *Config) Computer() profiling.Config {
	return profiling.Config{TopFrequencyLimit: c.Profiling.TopFrequencyLimit}
}

// Validate checks the configuration for values the application cannot use
func (c *Config) Validate() error {
	if c.Profiling.TopFrequencyLimit < 1 {
		return errors.ConfigInvalid("top frequency limit must be at least 1")
	}
	if c.Profiling.Workers < 1 {
		return errors.ConfigInvalid("workers must be at least 1")
	}
	if c.Loader.Sheet == "" {
		return errors.ConfigInvalid("sheet name is required")
	}
	if c.Loader.Delimiter == 0 || c.Loader.Delimiter == '\n' || c.Loader.Delimiter == '"' {
		return errors.ConfigInvalid("invalid delimiter")
	}
	if c.Server.Addr == "" {
		return errors.ConfigInvalid("server address is required")
	}
	if c.Server.MaxUploadMB < 1 {
		return errors.ConfigInvalid("max upload size must be at least 1 MB")
	}
	return nil
}

func loadProfilingConfig() *ProfilingConfig {
	return &ProfilingConfig{
		TopFrequencyLimit: getEnvIntOrDefault("JPROFILE_TOP_FREQUENCY_LIMIT", profiling.DefaultTopFrequencyLimit),
		Workers:           getEnvIntOrDefault("JPROFILE_WORKERS", runtime.NumCPU()),
	}
}

func loadLoaderConfig() *LoaderConfig {
	return &LoaderConfig{
		Sheet:         getEnvOrDefault("JPROFILE_SHEET", "Sheet1"),
		Delimiter:     getEnvRuneOrDefault("JPROFILE_DELIMITER", ','),
		MissingValues: getEnvListOrDefault("JPROFILE_MISSING_VALUES", DefaultMissingValues),
	}
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Addr:        getEnvOrDefault("JPROFILE_ADDR", ":8080"),
		MaxUploadMB: getEnvIntOrDefault("JPROFILE_MAX_UPLOAD_MB", 32),
	}
}

func loadLogConfig() *LogConfig {
	return &LogConfig{
		Level:  getEnvOrDefault("JPROFILE_LOG_LEVEL", "info"),
		Format: getEnvOrDefault("JPROFILE_LOG_FORMAT", "logfmt"),
	}
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

func getEnvRuneOrDefault(key string, defaultValue rune) rune {
	value := os.Getenv(key)
	if value == `\t` {
		return '\t'
	}
	if utf8.RuneCountInString(value) == 1 {
		r, _ := utf8.DecodeRuneInString(value)
		return r
	}
	return defaultValue
}

// getEnvListOrDefault splits a comma separated value. A set but empty
// variable is distinct from an unset one: "" keeps only empty cells missing.
func getEnvListOrDefault(key string, defaultValue []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return append([]string(nil), defaultValue...)
	}
	parts := strings.Split(value, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
