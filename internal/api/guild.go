package api

import (
	"context"
	"net/http"
	"strings"
)

// MaxClearLimit is the largest number of messages one clear request may delete.
const MaxClearLimit = 100

// Members lists guild members, optionally only those holding role.
func (c *Client) Members(ctx context.Context, role string) ([]Member, error) {
	req := request{method: http.MethodGet, path: "/api/members"}
	if role != "" {
		req.query = map[string]string{"role": role}
	}
	var members []Member
	if err := c.do(ctx, req, &members); err != nil {
		return nil, err
	}
	return members, nil
}

// Roles lists guild roles.
func (c *Client) Roles(ctx context.Context) ([]Role, error) {
	var roles []Role
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/roles"}, &roles); err != nil {
		return nil, err
	}
	return roles, nil
}

// Channels lists guild channels.
func (c *Client) Channels(ctx context.Context) ([]Channel, error) {
	var channels []Channel
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/channels"}, &channels); err != nil {
		return nil, err
	}
	return channels, nil
}

// AssignRole grants role to the given members.
func (c *Client) AssignRole(ctx context.Context, role string, memberIDs []string) (*AssignRoleResult, error) {
	return c.changeRole(ctx, "/api/roles/assign", role, memberIDs)
}

// RemoveRole revokes role from the given members.
func (c *Client) RemoveRole(ctx context.Context, role string, memberIDs []string) (*AssignRoleResult, error) {
	return c.changeRole(ctx, "/api/roles/remove", role, memberIDs)
}

func (c *Client) changeRole(ctx context.Context, path, role string, memberIDs []string) (*AssignRoleResult, error) {
	if strings.TrimSpace(role) == "" {
		return nil, invalidArg("role is empty")
	}
	if len(memberIDs) == 0 {
		return nil, invalidArg("no members given")
	}
	var result AssignRoleResult
	req := request{
		method: http.MethodPost,
		path:   path,
		body:   roleChangeRequest{Role: role, MemberIDs: memberIDs},
	}
	if err := c.do(ctx, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ClearMessages deletes up to limit of the most recent messages in a channel.
func (c *Client) ClearMessages(ctx context.Context, channelID string, limit int) (*ClearResult, error) {
	if strings.TrimSpace(channelID) == "" {
		return nil, invalidArg("channel id is empty")
	}
	if limit <= 0 || limit > MaxClearLimit {
		return nil, invalidArg("limit must be between 1 and %d, got %d", MaxClearLimit, limit)
	}
	var result ClearResult
	req := request{
		method:     http.MethodPost,
		path:       "/api/channels/{id}/clear",
		pathParams: map[string]string{"id": channelID},
		body:       clearRequest{Limit: limit},
	}
	if err := c.do(ctx, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
