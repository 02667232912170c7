package config

import (
	"time"

	"github.com/spf13/viper"
)

// Default values for optional configuration keys.
const (
	DefaultLogLevel      = "info"
	DefaultLogMaxSizeMB  = 10
	DefaultLogMaxBackups = 3
	DefaultLogMaxAgeDays = 28

	DefaultDatabasePath = "botpanel.db"

	DefaultAPITimeout    = 30 * time.Second
	DefaultAPIRetryCount = 0
	DefaultAPIUserAgent  = "botpanel"

	DefaultGeminiModel       = "gemini-2.0-flash"
	DefaultGeminiTemperature = 0.4
	DefaultGeminiMaxRetries  = 2

	DefaultStatusCheckSchedule    = "0 */5 * * * *"
	DefaultSQLMaintenanceSchedule = "0 0 4 * * *"
)

// DefaultMessages are the Telegram reply strings used when none are configured.
var DefaultMessages = MessagesConfig{
	Welcome:          "Bot panel ready. Send /help for the list of commands.",
	Unauthorized:     "You are not authorized to use this bot.",
	GeneralError:     "An error occurred. Please try again later.",
	Timeout:          "The backend did not answer in time.",
	NoActiveBot:      "No active bot. Use /bots and /use <name> to select one.",
	Unreachable:      "The bot backend is unreachable.",
	Usage:            "Invalid arguments. Send /help for usage.",
	BotStarted:       "Bot started.",
	BotStopped:       "Bot stopped.",
	ActiveBotChanged: "Active bot changed.",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", DefaultLogLevel)
	v.SetDefault("logger.json", false)
	v.SetDefault("logger.file", "")
	v.SetDefault("logger.max_size_mb", DefaultLogMaxSizeMB)
	v.SetDefault("logger.max_backups", DefaultLogMaxBackups)
	v.SetDefault("logger.max_age_days", DefaultLogMaxAgeDays)

	v.SetDefault("database.path", DefaultDatabasePath)

	v.SetDefault("api.timeout", DefaultAPITimeout)
	v.SetDefault("api.retry_count", DefaultAPIRetryCount)
	v.SetDefault("api.user_agent", DefaultAPIUserAgent)

	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.admin_user_id", 0)

	v.SetDefault("messages.welcome", DefaultMessages.Welcome)
	v.SetDefault("messages.unauthorized", DefaultMessages.Unauthorized)
	v.SetDefault("messages.general_error", DefaultMessages.GeneralError)
	v.SetDefault("messages.timeout", DefaultMessages.Timeout)
	v.SetDefault("messages.no_active_bot", DefaultMessages.NoActiveBot)
	v.SetDefault("messages.unreachable", DefaultMessages.Unreachable)
	v.SetDefault("messages.usage", DefaultMessages.Usage)
	v.SetDefault("messages.bot_started", DefaultMessages.BotStarted)
	v.SetDefault("messages.bot_stopped", DefaultMessages.BotStopped)
	v.SetDefault("messages.active_bot_changed", DefaultMessages.ActiveBotChanged)

	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model_name", DefaultGeminiModel)
	v.SetDefault("gemini.temperature", DefaultGeminiTemperature)
	v.SetDefault("gemini.max_retries", DefaultGeminiMaxRetries)

	v.SetDefault("scheduler.tasks", map[string]any{
		"status_check": map[string]any{
			"enabled":  true,
			"schedule": DefaultStatusCheckSchedule,
		},
		"sql_maintenance": map[string]any{
			"enabled":  true,
			"schedule": DefaultSQLMaintenanceSchedule,
		},
	})
}
