package handlers

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/botpanel/internal/api"
	"github.com/edgard/botpanel/internal/config"
	"github.com/edgard/botpanel/internal/control"
	"github.com/edgard/botpanel/internal/database"
	"github.com/edgard/botpanel/internal/logger"
)

// maxMessageLength is the Telegram limit for a text message.
const maxMessageLength = 4096

// errUsage is returned by commands called with invalid arguments.
var errUsage = errors.New("invalid usage")

// commandFunc runs a command with the arguments following it and returns the
// reply text.
type commandFunc func(ctx context.Context, args []string) (string, error)

// commandHandler adapts a commandFunc to a Telegram handler.
type commandHandler struct {
	deps HandlerDeps
	name string
	run  commandFunc
}

func newCommandHandler(deps HandlerDeps, name string, run commandFunc) tgbot.HandlerFunc {
	return commandHandler{deps: deps, name: name, run: run}.Handle
}

func (h commandHandler) Handle(ctx context.Context, b *tgbot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", h.name)

	if update.Message == nil {
		log.WarnContext(ctx, "Command received update without message", "update_id", update.ID)
		return
	}
	chatID := update.Message.Chat.ID

	text, err := h.run(ctx, commandArgs(update.Message.Text))
	if err != nil {
		switch {
		case errors.Is(err, errUsage):
			log.DebugContext(ctx, "Invalid command usage", "text", update.Message.Text)
		case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
			log.WarnContext(ctx, "Command timed out or was cancelled", "error", err)
		default:
			log.ErrorContext(ctx, "Command failed", "error", err)
		}
		text = errorReply(h.deps.Config.Messages, err)
	}
	sendReply(ctx, b, log, chatID, text)
}

// commandArgs returns the words after the command, dropping any @botname
// suffix of the command itself.
func commandArgs(text string) []string {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return fields
	}
	return fields[1:]
}

// errorReply maps a command failure to the text sent back to the admin.
// Failures the admin can act on are shown as they are; anything else gets
// the general error message.
func errorReply(msgs config.MessagesConfig, err error) string {
	var apiErr *api.APIError
	switch {
	case errors.Is(err, errUsage):
		return msgs.Usage
	case errors.Is(err, control.ErrNoActiveBot):
		return msgs.NoActiveBot
	case errors.Is(err, api.ErrUnreachable):
		return msgs.Unreachable
	case errors.Is(err, context.DeadlineExceeded):
		return msgs.Timeout
	case errors.Is(err, database.ErrNotFound),
		errors.Is(err, api.ErrInvalidArgument),
		errors.Is(err, control.ErrMissingToken),
		errors.Is(err, control.ErrGroupInvalid),
		errors.Is(err, control.ErrAttendanceActive),
		errors.Is(err, control.ErrAttendanceInactive),
		errors.Is(err, control.ErrAttendanceNotRecorded):
		return err.Error()
	case errors.As(err, &apiErr):
		return apiErr.Error()
	default:
		return msgs.GeneralError
	}
}

func sendReply(ctx context.Context, b *tgbot.Bot, log *slog.Logger, chatID int64, text string) {
	_, err := b.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID: chatID,
		Text:   logger.Truncate(text, maxMessageLength),
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send reply", "error", err, "chat_id", chatID)
	}
}
