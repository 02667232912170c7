// Package gemini generates short natural-language summaries of survey
// results with Google's Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/edgard/botpanel/internal/api"
	"github.com/edgard/botpanel/internal/config"
)

// Client produces survey summaries.
type Client interface {
	SummarizeSurvey(ctx context.Context, survey *api.SurveyResult) (string, error)
}

type sdkClient struct {
	genaiClient   *genai.Client
	log           *slog.Logger
	contentConfig *genai.GenerateContentConfig
	modelName     string
	maxRetries    int
	retryDelay    time.Duration
}

// NewClient creates a Gemini client. It fails when no API key is configured;
// callers treat that as "summaries disabled".
func NewClient(ctx context.Context, cfg config.GeminiConfig, log *slog.Logger) (Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini API key is required")
	}

	gi, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	temperature := cfg.Temperature
	logger := log.With("component", "gemini_client")
	logger.Info("Gemini client initialized", "model", cfg.ModelName)

	return &sdkClient{
		genaiClient: gi,
		log:         logger,
		contentConfig: &genai.GenerateContentConfig{
			Temperature:       &temperature,
			SystemInstruction: genai.NewContentFromText(SurveySummaryInstruction, genai.RoleUser),
		},
		modelName:  cfg.ModelName,
		maxRetries: cfg.MaxRetries,
		retryDelay: 2 * time.Second,
	}, nil
}

func (c *sdkClient) SummarizeSurvey(ctx context.Context, survey *api.SurveyResult) (string, error) {
	if survey == nil {
		return "", errors.New("survey is nil")
	}
	c.log.DebugContext(ctx, "Summarizing survey", "survey", survey.Name, "options", len(survey.Options))

	contents := []*genai.Content{genai.NewContentFromText(BuildSurveyPrompt(survey), genai.RoleUser)}
	resp, err := c.generateContentWithRetries(ctx, contents)
	if err != nil {
		return "", err
	}
	return extractText(resp)
}

// generateContentWithRetries retries 500 and 503 API errors up to maxRetries times.
func (c *sdkClient) generateContentWithRetries(ctx context.Context, contents []*genai.Content) (*genai.GenerateContentResponse, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		resp, err := c.genaiClient.Models.GenerateContent(ctx, c.modelName, contents, c.contentConfig)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		var apiErr *genai.APIError
		code := 0
		if errors.As(err, &apiErr) {
			code = apiErr.Code
		}
		if code != 500 && code != 503 {
			return nil, fmt.Errorf("gemini API call failed: %w", err)
		}

		c.log.WarnContext(ctx, "Gemini API call failed, retrying", "attempt", attempt+1, "code", code, "error", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.retryDelay):
		}
	}
	return nil, fmt.Errorf("gemini API call failed after %d retries: %w", c.maxRetries, lastErr)
}

func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", errors.New("gemini returned no response")
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockedReasonUnspecified {
		return "", fmt.Errorf("summary blocked by safety filter: %v", resp.PromptFeedback.BlockReason)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.New("gemini returned empty text")
	}
	return text, nil
}

// BuildSurveyPrompt renders survey data as the user turn of the request.
func BuildSurveyPrompt(survey *api.SurveyResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, surveyPromptHeader, survey.Title, survey.Question, survey.Voters, survey.Closed)
	for _, o := range survey.Options {
		fmt.Fprintf(&sb, "- %s: %d\n", o.Label, o.Votes)
	}
	return sb.String()
}
