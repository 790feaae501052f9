package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the enumctl configuration
type Config struct {
	Locale      string         `mapstructure:"locale"`
	LocaleFiles []string       `mapstructure:"locale_files"`
	Redis       RedisConfig    `mapstructure:"redis"`
	Database    DatabaseConfig `mapstructure:"database"`
	Log         LogConfig      `mapstructure:"log"`
}

// RedisConfig points at a Redis translation store. An empty Addr disables it.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	URL    string `mapstructure:"url"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

var drivers = map[string]bool{
	"sqlite3": true,
	"pgx":     true,
}

// Load loads the configuration. An explicit path must exist; otherwise
// enumctl.yaml is read from the working directory when present.
// ENUMCTL_* environment variables override file values.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("locale", "en")
	v.SetDefault("locale_files", []string{})
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "i18n:")
	v.SetDefault("database.driver", "sqlite3")
	v.SetDefault("database.url", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("enumctl")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	// Enable environment variable support
	v.SetEnvPrefix("ENUMCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - use defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if cfg.Locale == "" {
		return fmt.Errorf("locale must not be empty")
	}
	if !drivers[cfg.Database.Driver] {
		return fmt.Errorf("database.driver must be sqlite3 or pgx, got: %s", cfg.Database.Driver)
	}
	return nil
}
