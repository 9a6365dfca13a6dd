// Package config loads scopemap CLI configuration from a file and SCOPEMAP_* environment
// variables.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/viper"
)

// Sentinel validation errors.
var (
	ErrInvalidLogLevel    = errors.New("invalid log level")
	ErrInvalidLogFormat   = errors.New("invalid log format")
	ErrInvalidSampleRatio = errors.New("sample ratio must be within [0, 1]")
	ErrInvalidTimeout     = errors.New("shutdown timeout must be positive")
)

// EnvPrefix prefixes every environment override, e.g. SCOPEMAP_LOGGING_LEVEL.
const EnvPrefix = "SCOPEMAP"

const configName = ".scopemap"

var (
	validLevels  = []string{"debug", "info", "warn", "error"}
	validFormats = []string{"text", "json"}
)

// Config holds all configuration for the scopemap CLI.
type Config struct {
	Logging       LoggingConfig       `mapstructure:"logging"`
	Observability ObservabilityConfig `mapstructure:"observability"`
	Grammars      GrammarsConfig      `mapstructure:"grammars"`
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ObservabilityConfig holds telemetry export settings.
type ObservabilityConfig struct {
	OTLPEndpoint       string  `mapstructure:"otlp_endpoint"`
	OTLPHeaders        string  `mapstructure:"otlp_headers"`
	MetricsTextfile    string  `mapstructure:"metrics_textfile"`
	SampleRatio        float64 `mapstructure:"sample_ratio"`
	ShutdownTimeoutSec int     `mapstructure:"shutdown_timeout_sec"`
	OTLPInsecure       bool    `mapstructure:"otlp_insecure"`
}

// GrammarsConfig controls where grammar files are loaded from.
type GrammarsConfig struct {
	// Default names the grammar scope used when none is detected for a file.
	Default string `mapstructure:"default"`
	// Dirs are searched in order; later directories may not redefine a scope name.
	Dirs []string `mapstructure:"dirs"`
	// Builtin loads the embedded grammars before Dirs.
	Builtin bool `mapstructure:"builtin"`
}

// LoadConfig loads configuration from file and environment variables. An empty configPath
// searches for .scopemap.yaml in the working directory, $HOME and /etc/scopemap; a missing
// file there is not an error.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("$HOME")
		viperCfg.AddConfigPath("/etc/scopemap")
	}

	viperCfg.SetEnvPrefix(EnvPrefix)
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var config Config

	unmarshalErr := viperCfg.Unmarshal(&config)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	validateErr := validateConfig(&config)
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &config, nil
}

// setDefaults sets default configuration values. Every key needs a default so that
// AutomaticEnv can override it during Unmarshal.
func setDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("logging.level", DefaultLogLevel)
	viperCfg.SetDefault("logging.format", DefaultLogFormat)

	viperCfg.SetDefault("observability.otlp_endpoint", "")
	viperCfg.SetDefault("observability.otlp_headers", "")
	viperCfg.SetDefault("observability.otlp_insecure", DefaultOTLPInsecure)
	viperCfg.SetDefault("observability.metrics_textfile", "")
	viperCfg.SetDefault("observability.sample_ratio", DefaultSampleRatio)
	viperCfg.SetDefault("observability.shutdown_timeout_sec", DefaultShutdownTimeoutSec)

	viperCfg.SetDefault("grammars.builtin", DefaultGrammarBuiltin)
	viperCfg.SetDefault("grammars.dirs", []string{})
	viperCfg.SetDefault("grammars.default", "")
}

// validateConfig validates the configuration.
func validateConfig(config *Config) error {
	config.Logging.Level = strings.ToLower(config.Logging.Level)
	config.Logging.Format = strings.ToLower(config.Logging.Format)

	if !slices.Contains(validLevels, config.Logging.Level) {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, config.Logging.Level)
	}

	if !slices.Contains(validFormats, config.Logging.Format) {
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, config.Logging.Format)
	}

	ratio := config.Observability.SampleRatio
	if ratio < 0 || ratio > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidSampleRatio, ratio)
	}

	if config.Observability.ShutdownTimeoutSec <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidTimeout, config.Observability.ShutdownTimeoutSec)
	}

	return nil
}
