// Package api is the HTTP client of the bot backend server. Every method
// issues exactly one request and decodes the JSON response into a DTO.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/edgard/botpanel/internal/logger"
)

// Header names sent with every request.
const (
	HeaderAPIKey    = "X-API-Key"
	HeaderRequestID = "X-Request-ID"
)

// Options tunes a Client. Zero values use the defaults below.
type Options struct {
	Timeout    time.Duration
	RetryCount int
	UserAgent  string
	Logger     *slog.Logger
}

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "botpanel"
)

// Client talks to one bot backend.
type Client struct {
	client  *resty.Client
	baseURL string
	logger  *slog.Logger
}

// NewClient creates a client for the backend at serverIP, which may be a bare
// host, a host:port pair or a full URL.
func NewClient(serverIP, apiKey string, opts Options) (*Client, error) {
	baseURL, err := BaseURL(serverIP)
	if err != nil {
		return nil, err
	}

	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.Logger == nil {
		opts.Logger = logger.Discard()
	}

	rc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(opts.Timeout).
		SetRetryCount(opts.RetryCount).
		AddRetryCondition(retryable).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", opts.UserAgent)
	if apiKey != "" {
		rc.SetHeader(HeaderAPIKey, apiKey)
	}

	return &Client{
		client:  rc,
		baseURL: baseURL,
		logger:  opts.Logger.With("component", "api_client", "base_url", baseURL),
	}, nil
}

// retryable retries reads only. Mutations such as starting a bot or clearing
// messages are never re-sent.
func retryable(resp *resty.Response, err error) bool {
	if resp == nil || resp.Request == nil || resp.Request.Method != http.MethodGet {
		return false
	}
	if err != nil {
		return true
	}
	code := resp.StatusCode()
	return code >= http.StatusInternalServerError || code == http.StatusTooManyRequests
}

// BaseURL normalizes a configured server address into a base URL.
func BaseURL(serverIP string) (string, error) {
	s := strings.TrimSpace(serverIP)
	if s == "" {
		return "", invalidArg("server address is empty")
	}
	if !strings.Contains(s, "://") {
		s = "http://" + s
	}
	return strings.TrimRight(s, "/"), nil
}

// BaseURLString returns the base URL requests are sent to.
func (c *Client) BaseURLString() string {
	return c.baseURL
}

type request struct {
	method     string
	path       string
	pathParams map[string]string
	query      map[string]string
	body       any
}

// do executes req and decodes a successful body into out when out is non-nil.
func (c *Client) do(ctx context.Context, req request, out any) error {
	requestID := uuid.NewString()
	startTime := time.Now()

	r := c.client.R().
		SetContext(ctx).
		SetHeader(HeaderRequestID, requestID)
	if len(req.pathParams) > 0 {
		r.SetPathParams(req.pathParams)
	}
	if len(req.query) > 0 {
		r.SetQueryParams(req.query)
	}
	if req.body != nil {
		r.SetHeader("Content-Type", "application/json").SetBody(req.body)
	}

	log := c.logger.With("request_id", requestID, "method", req.method, "path", req.path)

	resp, err := r.Execute(req.method, req.path)
	if err != nil {
		if ctx.Err() != nil {
			log.WarnContext(ctx, "Request cancelled", "error", ctx.Err())
			return fmt.Errorf("%s %s: %w", req.method, req.path, ctx.Err())
		}
		log.WarnContext(ctx, "Request failed", "error", err)
		return fmt.Errorf("%s %s: %w: %w", req.method, req.path, ErrUnreachable, err)
	}

	log.DebugContext(ctx, "Request finished", "status", resp.StatusCode(), "duration", time.Since(startTime))

	if resp.IsError() || resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		return &APIError{
			StatusCode: resp.StatusCode(),
			Message:    errorMessage(resp.Body()),
			Method:     req.method,
			Path:       req.path,
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		log.WarnContext(ctx, "Failed to decode response", "error", err, "body", logger.Truncate(string(resp.Body()), 200))
		return fmt.Errorf("%s %s: %w: %w", req.method, req.path, ErrDecode, err)
	}
	return nil
}

// errorMessage extracts the message of a failed response. JSON bodies of the
// form {"error": "..."} yield the message, anything else the trimmed text.
func errorMessage(body []byte) string {
	var er ErrorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.Error != "" {
		return er.Error
	}
	return logger.Truncate(strings.TrimSpace(string(body)), 200)
}
