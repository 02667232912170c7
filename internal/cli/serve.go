package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/edgard/botpanel/internal/bot"
	"github.com/edgard/botpanel/internal/bot/handlers"
	"github.com/edgard/botpanel/internal/bot/tasks"
	"github.com/edgard/botpanel/internal/control"
	"github.com/edgard/botpanel/internal/telegram"
)

func (a *app) cmdServe() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the Telegram front-end and scheduled tasks until interrupted",
		Action: a.action(func(ctx context.Context, _ *cli.Command, svc *control.Service) error {
			if err := a.cfg.ValidateTelegram(); err != nil {
				return err
			}
			log := a.logger

			tg, err := telegram.NewTelegramBot(a.cfg.Telegram.Token, log)
			if err != nil {
				return err
			}
			hDeps := handlers.HandlerDeps{
				Logger:  log,
				Config:  a.cfg,
				Service: svc,
			}
			if err := telegram.RegisterHandlers(tg, log, handlers.RegisterAllCommands(hDeps)); err != nil {
				return fmt.Errorf("failed to register Telegram handlers: %w", err)
			}

			tDeps := tasks.TaskDeps{
				Logger:  log,
				Store:   svc.Store(),
				Service: svc,
			}
			sched, err := bot.NewScheduler(log, a.cfg.Scheduler, tasks.RegisterAllTasks(tDeps))
			if err != nil {
				return err
			}

			log.Info("Serving", "admin_user_id", a.cfg.Telegram.AdminUserID, "database", a.cfg.Database.Path)
			return bot.NewBot(log, tg, sched).Run(ctx)
		}),
	}
}
