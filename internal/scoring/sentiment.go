package scoring

import "github.com/jonreiter/govader"

var analyzer = govader.NewSentimentIntensityAnalyzer()

const (
	positiveThreshold = 0.05
	negativeThreshold = -0.05
)

type SentimentResult struct {
	Sentiment string  `json:"sentiment"`
	Score     float64 `json:"score"`
}

// AnalyzeSentiment scores text with VADER. The compound score lands in
// [-1, 1] and the label follows the fixed thresholds.
func AnalyzeSentiment(text string) SentimentResult {
	plain := PlainText(text)

	score := analyzer.PolarityScores(plain).Compound

	return SentimentResult{
		Sentiment: SentimentLabel(score),
		Score:     score,
	}
}

func SentimentLabel(score float64) string {
	switch {
	case score >= positiveThreshold:
		return "positive"
	case score <= negativeThreshold:
		return "negative"
	default:
		return "neutral"
	}
}
