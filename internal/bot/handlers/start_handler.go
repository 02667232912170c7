package handlers

import (
	"context"
	"strings"
)

const helpText = `Commands:
/bots - list configured bots
/use <name> - make a bot the active one
/status - status of the active bot
/startbot - start the active bot
/stopbot - stop the active bot
/members [role] - list guild members
/roles - list guild roles
/channels - list guild channels
/clear <channel> <n> - delete the last n messages of a channel
/attendance start <group> [channel] - open attendance for a group
/attendance stop <group> - close attendance for a group
/attendance files - list attendance files
/attendance show <file> - show an attendance report
/surveys - list surveys
/survey <file> - show survey results
/summarize <file> - summarize survey results`

func startCommand(deps HandlerDeps) commandFunc {
	return func(context.Context, []string) (string, error) {
		return deps.Config.Messages.Welcome, nil
	}
}

func helpCommand(HandlerDeps) commandFunc {
	return func(context.Context, []string) (string, error) {
		return helpText, nil
	}
}

// joinArgs joins arguments back into a name that may contain spaces.
func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
