package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/edgard/botpanel/internal/api"
)

const statusCheckTimeout = time.Minute

// newStatusCheckTask refreshes the recorded status of the active bot. An
// unreachable backend is recorded on the bot and is not a task failure.
func newStatusCheckTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "status_check")

	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, statusCheckTimeout)
		defer cancel()

		bot, err := deps.Service.CheckActiveStatus(ctx)
		switch {
		case err == nil && bot == nil:
			return nil
		case err == nil:
			log.DebugContext(ctx, "Bot status recorded", "bot", bot.Name, "status", bot.LastStatus)
			return nil
		case errors.Is(err, api.ErrUnreachable):
			log.WarnContext(ctx, "Active bot unreachable", "error", err)
			return nil
		case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
			log.WarnContext(ctx, "Status check timed out or was cancelled", "error", err)
			return fmt.Errorf("status check interrupted: %w", err)
		default:
			return fmt.Errorf("status check failed: %w", err)
		}
	}
}
