// Package telegram creates the Telegram client and registers the panel
// commands on it.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/botpanel/internal/bot/handlers"
	"github.com/edgard/botpanel/internal/logger"
)

// ErrEmptyToken is returned when no bot token is configured.
var ErrEmptyToken = errors.New("telegram bot token cannot be empty")

// NewTelegramBot creates a Telegram client that logs every update and
// ignores messages no command matches.
func NewTelegramBot(token string, log *slog.Logger, opts ...bot.Option) (*bot.Bot, error) {
	if token == "" {
		return nil, ErrEmptyToken
	}
	if log == nil {
		log = logger.Discard()
	}
	log = log.With("component", "telegram")

	opts = append([]bot.Option{
		bot.WithMiddlewares(logger.Middleware(log)),
		bot.WithDefaultHandler(func(ctx context.Context, _ *bot.Bot, update *models.Update) {
			log.DebugContext(ctx, "Ignoring update without matching command", "update_id", update.ID)
		}),
		bot.WithErrorsHandler(func(err error) {
			log.Error("Telegram client error", "error", err)
		}),
	}, opts...)

	b, err := bot.New(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	log.Info("Telegram bot created", "token", logger.Truncate(token, 8))
	return b, nil
}

// applyMiddleware wraps handler so that mw[0] runs first.
func applyMiddleware(handler bot.HandlerFunc, mw []bot.Middleware) bot.HandlerFunc {
	for i := len(mw) - 1; i >= 0; i-- {
		handler = mw[i](handler)
	}
	return handler
}

// RegisterHandlers registers every command on b behind its middleware.
func RegisterHandlers(b *bot.Bot, log *slog.Logger, registered map[string]handlers.RegisteredHandler) error {
	if b == nil {
		return errors.New("bot instance cannot be nil")
	}
	if log == nil {
		log = logger.Discard()
	}
	log = log.With("component", "handler_registry")

	for name, h := range registered {
		if h.Handler == nil {
			log.Warn("Skipping nil handler", "command", name)
			continue
		}
		b.RegisterHandler(h.HandlerType, h.Pattern, h.MatchType, applyMiddleware(h.Handler, h.Middleware))
		log.Debug("Registered handler", "command", name, "middleware_count", len(h.Middleware))
	}

	log.Info("Registered Telegram handlers", "count", len(registered))
	return nil
}
