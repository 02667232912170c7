package api

import (
	"context"
	"net/http"
	"strings"
)

// MinSurveyOptions is the smallest number of answers a survey may offer.
const MinSurveyOptions = 2

// CreateSurvey posts a survey to a channel.
func (c *Client) CreateSurvey(ctx context.Context, survey SurveyRequest) (*SurveyFile, error) {
	if strings.TrimSpace(survey.Title) == "" {
		return nil, invalidArg("survey title is empty")
	}
	if strings.TrimSpace(survey.ChannelID) == "" {
		return nil, invalidArg("channel id is empty")
	}
	if len(survey.Options) < MinSurveyOptions {
		return nil, invalidArg("a survey needs at least %d options, got %d", MinSurveyOptions, len(survey.Options))
	}
	for i, o := range survey.Options {
		if strings.TrimSpace(o) == "" {
			return nil, invalidArg("survey option %d is empty", i+1)
		}
	}
	if survey.DurationMinutes < 0 {
		return nil, invalidArg("duration must not be negative")
	}

	var file SurveyFile
	req := request{method: http.MethodPost, path: "/api/surveys", body: survey}
	if err := c.do(ctx, req, &file); err != nil {
		return nil, err
	}
	return &file, nil
}

// SurveyFiles lists stored survey files.
func (c *Client) SurveyFiles(ctx context.Context) ([]SurveyFile, error) {
	var files []SurveyFile
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/surveys/files"}, &files); err != nil {
		return nil, err
	}
	return files, nil
}

// SurveyFile fetches the result stored under name.
func (c *Client) SurveyFile(ctx context.Context, name string) (*SurveyResult, error) {
	if strings.TrimSpace(name) == "" {
		return nil, invalidArg("file name is empty")
	}
	var result SurveyResult
	req := request{
		method:     http.MethodGet,
		path:       "/api/surveys/files/{name}",
		pathParams: map[string]string{"name": name},
	}
	if err := c.do(ctx, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
