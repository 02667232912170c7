package config

import "time"

// Config is the root configuration of botpanel.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger"`
	Database  DatabaseConfig  `mapstructure:"database"`
	API       APIConfig       `mapstructure:"api"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Messages  MessagesConfig  `mapstructure:"messages"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// LoggerConfig controls the slog handler. When File is set, logs are also
// written to a rotated file.
type LoggerConfig struct {
	Level      string `mapstructure:"level"        validate:"oneof=debug info warn error"`
	JSON       bool   `mapstructure:"json"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"  validate:"min=1"`
	MaxBackups int    `mapstructure:"max_backups"  validate:"min=0"`
	MaxAgeDays int    `mapstructure:"max_age_days" validate:"min=0"`
}

// DatabaseConfig points at the SQLite file holding bots and groups.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// APIConfig tunes the HTTP client used against bot backends.
type APIConfig struct {
	Timeout    time.Duration `mapstructure:"timeout"     validate:"min=1s,max=10m"`
	RetryCount int           `mapstructure:"retry_count" validate:"min=0,max=10"`
	UserAgent  string        `mapstructure:"user_agent"`
}

// TelegramConfig configures the chat-ops front-end. The front-end is only
// started by `serve` and requires Token and AdminUserID at that point.
type TelegramConfig struct {
	Token       string `mapstructure:"token"`
	AdminUserID int64  `mapstructure:"admin_user_id" validate:"min=0"`
}

// MessagesConfig holds user-facing reply strings of the Telegram front-end.
type MessagesConfig struct {
	Welcome          string `mapstructure:"welcome"           validate:"required"`
	Unauthorized     string `mapstructure:"unauthorized"      validate:"required"`
	GeneralError     string `mapstructure:"general_error"     validate:"required"`
	Timeout          string `mapstructure:"timeout"           validate:"required"`
	NoActiveBot      string `mapstructure:"no_active_bot"     validate:"required"`
	Unreachable      string `mapstructure:"unreachable"       validate:"required"`
	Usage            string `mapstructure:"usage"             validate:"required"`
	BotStarted       string `mapstructure:"bot_started"       validate:"required"`
	BotStopped       string `mapstructure:"bot_stopped"       validate:"required"`
	ActiveBotChanged string `mapstructure:"active_bot_changed" validate:"required"`
}

// GeminiConfig enables AI survey summaries. An empty APIKey disables them.
type GeminiConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	ModelName   string  `mapstructure:"model_name"  validate:"required"`
	Temperature float32 `mapstructure:"temperature" validate:"min=0,max=2"`
	MaxRetries  int     `mapstructure:"max_retries" validate:"min=0,max=5"`
}

// SchedulerConfig maps task names to their schedule.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks" validate:"dive"`
}

// TaskConfig is the schedule of a single task. Schedule is a cron expression
// with an optional seconds field.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule" validate:"required_if=Enabled true"`
}
