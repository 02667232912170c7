package handlers

import (
	"context"

	"github.com/edgard/botpanel/internal/format"
)

func botsCommand(deps HandlerDeps) commandFunc {
	return func(ctx context.Context, _ []string) (string, error) {
		bots, err := deps.Service.Store().ListBots(ctx)
		if err != nil {
			return "", err
		}
		return format.Bots(bots), nil
	}
}

func useCommand(deps HandlerDeps) commandFunc {
	return func(ctx context.Context, args []string) (string, error) {
		name := joinArgs(args)
		if name == "" {
			return "", errUsage
		}
		bot, err := deps.Service.ActivateBot(ctx, name)
		if err != nil {
			return "", err
		}
		return deps.Config.Messages.ActiveBotChanged + "\n" + format.BotLine(bot), nil
	}
}

func statusCommand(deps HandlerDeps) commandFunc {
	return func(ctx context.Context, _ []string) (string, error) {
		bot, status, err := deps.Service.Status(ctx, "")
		if err != nil {
			return "", err
		}
		return format.Status(bot, status), nil
	}
}

func startBotCommand(deps HandlerDeps) commandFunc {
	return func(ctx context.Context, _ []string) (string, error) {
		bot, status, err := deps.Service.Start(ctx, "")
		if err != nil {
			return "", err
		}
		return deps.Config.Messages.BotStarted + "\n" + format.Status(bot, status), nil
	}
}

func stopBotCommand(deps HandlerDeps) commandFunc {
	return func(ctx context.Context, _ []string) (string, error) {
		bot, status, err := deps.Service.Stop(ctx, "")
		if err != nil {
			return "", err
		}
		return deps.Config.Messages.BotStopped + "\n" + format.Status(bot, status), nil
	}
}
