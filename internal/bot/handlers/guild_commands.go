package handlers

import (
	"context"
	"strconv"

	"github.com/edgard/botpanel/internal/format"
)

func membersCommand(deps HandlerDeps) commandFunc {
	return func(ctx context.Context, args []string) (string, error) {
		members, err := deps.Service.Members(ctx, "", joinArgs(args))
		if err != nil {
			return "", err
		}
		return format.Members(members), nil
	}
}

func rolesCommand(deps HandlerDeps) commandFunc {
	return func(ctx context.Context, _ []string) (string, error) {
		roles, err := deps.Service.Roles(ctx, "")
		if err != nil {
			return "", err
		}
		return format.Roles(roles), nil
	}
}

func channelsCommand(deps HandlerDeps) commandFunc {
	return func(ctx context.Context, _ []string) (string, error) {
		channels, err := deps.Service.Channels(ctx, "")
		if err != nil {
			return "", err
		}
		return format.Channels(channels), nil
	}
}

// clearCommand handles /clear <channel> <n>.
func clearCommand(deps HandlerDeps) commandFunc {
	return func(ctx context.Context, args []string) (string, error) {
		if len(args) != 2 {
			return "", errUsage
		}
		limit, err := strconv.Atoi(args[1])
		if err != nil {
			return "", errUsage
		}
		result, err := deps.Service.ClearMessages(ctx, "", args[0], limit)
		if err != nil {
			return "", err
		}
		return format.Cleared(result), nil
	}
}
