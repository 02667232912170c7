// Package tasks implements the scheduled jobs of the bot panel.
package tasks

import (
	"log/slog"

	"github.com/edgard/botpanel/internal/control"
	"github.com/edgard/botpanel/internal/database"
)

// TaskDeps holds what scheduled tasks need to run.
type TaskDeps struct {
	Logger  *slog.Logger
	Store   database.Store
	Service *control.Service
}
