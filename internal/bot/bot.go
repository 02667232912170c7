// Package bot runs the long-lived side of the panel: the Telegram front-end
// and the task scheduler.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	tgbot "github.com/go-telegram/bot"
	"golang.org/x/sync/errgroup"
)

// Bot orchestrates the Telegram listener and the scheduler.
type Bot struct {
	logger    *slog.Logger
	tgBot     *tgbot.Bot
	scheduler *Scheduler
}

// NewBot creates an orchestrator. tgBot may be nil to run the scheduler alone.
func NewBot(log *slog.Logger, tgBot *tgbot.Bot, scheduler *Scheduler) *Bot {
	return &Bot{
		logger:    log.With("component", "orchestrator"),
		tgBot:     tgBot,
		scheduler: scheduler,
	}
}

// Run blocks until ctx is cancelled or a component fails.
func (b *Bot) Run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	if b.tgBot != nil {
		g.Go(func() error {
			b.logger.Info("Starting Telegram listener")
			b.tgBot.Start(gCtx)
			if gCtx.Err() == nil {
				return errors.New("telegram listener stopped unexpectedly")
			}
			b.logger.Info("Telegram listener stopped")
			return nil
		})
	}

	g.Go(func() error {
		if _, err := b.scheduler.Start(gCtx); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
		<-gCtx.Done()
		if err := b.scheduler.Stop(); err != nil {
			b.logger.Error("Error stopping scheduler", "error", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		b.logger.Error("Orchestrator stopped due to error", "error", err)
		return err
	}
	b.logger.Info("Orchestrator stopped")
	return nil
}
