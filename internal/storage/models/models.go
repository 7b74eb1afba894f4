package models

import "time"

// CategoryScores is the fixed per-attribute toxicity breakdown returned by
// the Perspective API. Adding an upstream attribute means adding a field
// here, a column in the entries table, and the attribute in the scoring
// client's request list.
type CategoryScores struct {
	Toxicity       float64 `json:"TOXICITY"`
	SevereToxicity float64 `json:"SEVERE_TOXICITY"`
	Insult         float64 `json:"INSULT"`
	Threat         float64 `json:"THREAT"`
	Profanity      float64 `json:"PROFANITY"`
}

// SentimentEntry is one analyzed journal submission. Entries are
// append-only: never updated or deleted once written.
type SentimentEntry struct {
	ID             string         `json:"id"`
	UserID         string         `json:"userId"`
	Text           string         `json:"text"`
	Sentiment      string         `json:"sentiment"`
	SentimentScore float64        `json:"sentimentScore"`
	Toxicity       string         `json:"toxicity"`
	ToxicityScore  float64        `json:"toxicityScore"`
	CategoryScores CategoryScores `json:"categoryScores"`
	WordCount      int            `json:"wordCount"`
	SentenceCount  int            `json:"sentenceCount"`
	AnalyzedAt     time.Time      `json:"analyzedAt"`
	CreatedAt      time.Time      `json:"createdAt"`
}

// TrendBucket is one calendar-day aggregate of a user's entries.
type TrendBucket struct {
	Date           string         `json:"date"`
	AvgSentiment   float64        `json:"avgSentiment"`
	AvgToxicity    float64        `json:"avgToxicity"`
	CategoryScores CategoryScores `json:"avgCategoryScores"`
	Count          int            `json:"count"`
}

// MoodSummary reports the user's most frequent mood. The averages cover
// entries in the most frequent mood group only, not all entries.
type MoodSummary struct {
	MostFrequentMood string         `json:"mostFrequentMood"`
	Emoji            string         `json:"emoji"`
	AvgSentiment     float64        `json:"avgSentiment"`
	AvgToxicity      float64        `json:"avgToxicity"`
	Counts           map[string]int `json:"counts"`
	CategoryScores   CategoryScores `json:"categoryScores"`
}

type ScoreRange struct {
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
	Difference float64 `json:"difference"`
}

// WeeklyStability classifies sentiment volatility over the trailing 7 days.
// Stability is "No Data" when the window holds no entries.
type WeeklyStability struct {
	Stability    string      `json:"stability"`
	ScoreRange   *ScoreRange `json:"scoreRange"`
	TotalEntries int         `json:"totalEntries"`
}

// LoginLog records authenticated sessions, one row per user per day with a
// counter for repeat logins.
type LoginLog struct {
	ID         int64     `json:"id"`
	UserID     string    `json:"userId"`
	IPAddress  string    `json:"ipAddress"`
	UserAgent  string    `json:"userAgent"`
	Location   string    `json:"location"`
	LoginCount int       `json:"loginCount"`
	Timestamp  time.Time `json:"timestamp"`
}
