package handlers

import (
	"context"

	"github.com/edgard/botpanel/internal/format"
)

func surveysCommand(deps HandlerDeps) commandFunc {
	return func(ctx context.Context, _ []string) (string, error) {
		files, err := deps.Service.SurveyFiles(ctx, "")
		if err != nil {
			return "", err
		}
		return format.SurveyFiles(files), nil
	}
}

func surveyCommand(deps HandlerDeps) commandFunc {
	return func(ctx context.Context, args []string) (string, error) {
		name := joinArgs(args)
		if name == "" {
			return "", errUsage
		}
		result, err := deps.Service.SurveyFile(ctx, "", name)
		if err != nil {
			return "", err
		}
		return format.SurveyResult(result), nil
	}
}

func summarizeCommand(deps HandlerDeps) commandFunc {
	return func(ctx context.Context, args []string) (string, error) {
		name := joinArgs(args)
		if name == "" {
			return "", errUsage
		}
		return deps.Service.SummarizeSurvey(ctx, "", name)
	}
}
