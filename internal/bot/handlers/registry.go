package handlers

import (
	tgbot "github.com/go-telegram/bot"
)

// RegisteredHandler is a command handler with the middleware it runs behind.
type RegisteredHandler struct {
	HandlerType tgbot.HandlerType
	Pattern     string
	Handler     tgbot.HandlerFunc
	Middleware  []tgbot.Middleware
	MatchType   tgbot.MatchType
}

// RegisterAllCommands returns every command keyed by its slash name. All
// commands are restricted to the admin user.
func RegisterAllCommands(deps HandlerDeps) map[string]RegisteredHandler {
	commands := map[string]func(HandlerDeps) commandFunc{
		"start":      startCommand,
		"help":       helpCommand,
		"bots":       botsCommand,
		"use":        useCommand,
		"status":     statusCommand,
		"startbot":   startBotCommand,
		"stopbot":    stopBotCommand,
		"members":    membersCommand,
		"roles":      rolesCommand,
		"channels":   channelsCommand,
		"clear":      clearCommand,
		"attendance": attendanceCommand,
		"surveys":    surveysCommand,
		"survey":     surveyCommand,
		"summarize":  summarizeCommand,
	}

	adminMiddleware := []tgbot.Middleware{AdminOnly(deps)}

	handlers := make(map[string]RegisteredHandler, len(commands))
	for name, factory := range commands {
		handlers["/"+name] = RegisteredHandler{
			HandlerType: tgbot.HandlerTypeMessageText,
			Pattern:     name,
			Handler:     newCommandHandler(deps, name, factory(deps)),
			Middleware:  adminMiddleware,
			MatchType:   tgbot.MatchTypeCommandStartOnly,
		}
	}
	return handlers
}
