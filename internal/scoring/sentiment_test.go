package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentimentLabelThresholds(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		want  string
	}{
		{"positive boundary", 0.05, "positive"},
		{"just below positive", 0.049, "neutral"},
		{"zero", 0, "neutral"},
		{"just above negative", -0.049, "neutral"},
		{"negative boundary", -0.05, "negative"},
		{"strongly positive", 0.9, "positive"},
		{"strongly negative", -0.9, "negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SentimentLabel(tt.score))
		})
	}
}

func TestAnalyzeSentiment(t *testing.T) {
	result := AnalyzeSentiment("I love this")

	assert.Equal(t, "positive", result.Sentiment)
	assert.Greater(t, result.Score, 0.05)
	assert.LessOrEqual(t, result.Score, 1.0)
	assert.GreaterOrEqual(t, result.Score, -1.0)
}

func TestAnalyzeSentimentLabelConsistency(t *testing.T) {
	texts := []string{
		"I love this",
		"I hate everything about today",
		"The sky is blue",
		"This was a terrible, awful experience",
		"What a wonderful, beautiful morning",
	}

	for _, text := range texts {
		result := AnalyzeSentiment(text)

		require.GreaterOrEqual(t, result.Score, -1.0, "text: %s", text)
		require.LessOrEqual(t, result.Score, 1.0, "text: %s", text)
		assert.Equal(t, SentimentLabel(result.Score), result.Sentiment, "text: %s", text)
	}
}
