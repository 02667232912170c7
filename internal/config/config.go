// Package config loads botpanel configuration from a YAML file, BOTPANEL_*
// environment variables and built-in defaults, and validates the result.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables overriding config keys,
// e.g. BOTPANEL_TELEGRAM_TOKEN for telegram.token.
const EnvPrefix = "BOTPANEL"

// ErrConfiguration wraps every loading or validation failure.
var ErrConfiguration = errors.New("configuration error")

// LoadConfig reads the configuration at path. A missing file is not an
// error; defaults and environment variables are used instead.
func LoadConfig(path string) (*Config, error) {
	startTime := time.Now()

	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: failed to read %s: %w", ErrConfiguration, path, err)
		}
		slog.Debug("Configuration file not found, using defaults", "path", path)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %w", ErrConfiguration, path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	slog.Debug("Configuration loaded",
		"path", path,
		"database_path", cfg.Database.Path,
		"log_level", cfg.Logger.Level,
		"tasks", len(cfg.Scheduler.Tasks),
		"duration", time.Since(startTime))
	return cfg, nil
}

// Validate checks struct constraints of the configuration.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	return nil
}

// ValidateTelegram checks the settings needed to run the Telegram front-end.
func (c *Config) ValidateTelegram() error {
	if c.Telegram.Token == "" {
		return fmt.Errorf("%w: telegram.token is required to serve", ErrConfiguration)
	}
	if c.Telegram.AdminUserID <= 0 {
		return fmt.Errorf("%w: telegram.admin_user_id is required to serve", ErrConfiguration)
	}
	return nil
}
