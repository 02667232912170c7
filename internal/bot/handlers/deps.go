package handlers

import (
	"log/slog"

	"github.com/edgard/botpanel/internal/config"
	"github.com/edgard/botpanel/internal/control"
)

// HandlerDeps provides dependencies for Telegram command handlers.
type HandlerDeps struct {
	Logger  *slog.Logger
	Config  *config.Config
	Service *control.Service
}
