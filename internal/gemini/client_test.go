package gemini

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/botpanel/internal/api"
	"github.com/edgard/botpanel/internal/config"
	"github.com/edgard/botpanel/internal/logger"
)

func TestBuildSurveyPrompt(t *testing.T) {
	t.Parallel()

	prompt := BuildSurveyPrompt(&api.SurveyResult{
		Title:    "Lunch",
		Question: "Where do we eat?",
		Voters:   9,
		Closed:   true,
		Options: []api.SurveyOption{
			{Label: "Pizza", Votes: 4},
			{Label: "Sushi", Votes: 5},
		},
	})

	want := "Survey: Lunch\nQuestion: Where do we eat?\nVoters: 9\nClosed: true\nResults:\n- Pizza: 4\n- Sushi: 5\n"
	assert.Equal(t, want, prompt)
}

func TestNewClientRequiresKey(t *testing.T) {
	t.Parallel()

	_, err := NewClient(context.Background(), config.GeminiConfig{ModelName: "m"}, logger.Discard())
	require.Error(t, err)
}

func TestExtractTextNil(t *testing.T) {
	t.Parallel()

	_, err := extractText(nil)
	assert.Error(t, err)
}
