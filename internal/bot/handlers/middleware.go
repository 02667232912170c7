// Package handlers contains the Telegram commands of the panel, their
// registration and middleware.
package handlers

import (
	"context"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// AdminOnly lets only the configured admin user through. Everyone else gets
// the unauthorized message.
func AdminOnly(deps HandlerDeps) tgbot.Middleware {
	log := deps.Logger.With("middleware", "admin_only")

	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, b *tgbot.Bot, update *models.Update) {
			if update.Message == nil {
				return
			}
			if isAdmin(deps, update) {
				next(ctx, b, update)
				return
			}

			var userID int64
			if update.Message.From != nil {
				userID = update.Message.From.ID
			}
			chatID := update.Message.Chat.ID
			log.WarnContext(ctx, "Unauthorized access attempt", "user_id", userID, "chat_id", chatID)
			sendReply(ctx, b, log, chatID, deps.Config.Messages.Unauthorized)
		}
	}
}

func isAdmin(deps HandlerDeps, update *models.Update) bool {
	adminID := deps.Config.Telegram.AdminUserID
	if adminID == 0 || update == nil || update.Message == nil || update.Message.From == nil {
		return false
	}
	return update.Message.From.ID == adminID
}
