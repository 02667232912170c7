package api

import (
	"context"
	"net/http"
)

// Status reports whether the bot process is running on the backend.
func (c *Client) Status(ctx context.Context) (*BotStatus, error) {
	var status BotStatus
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/status"}, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// StartBot starts the bot process with the given Discord token.
func (c *Client) StartBot(ctx context.Context, token string) (*BotStatus, error) {
	if token == "" {
		return nil, invalidArg("token is empty")
	}
	var status BotStatus
	req := request{method: http.MethodPost, path: "/api/bot/start", body: startRequest{Token: token}}
	if err := c.do(ctx, req, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// StopBot stops the bot process.
func (c *Client) StopBot(ctx context.Context) (*BotStatus, error) {
	var status BotStatus
	if err := c.do(ctx, request{method: http.MethodPost, path: "/api/bot/stop"}, &status); err != nil {
		return nil, err
	}
	return &status, nil
}
