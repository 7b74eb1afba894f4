package analytics

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manovie/backend/internal/storage/models"
	"github.com/manovie/backend/internal/storage/sqlite"
)

func newTestEngine(t *testing.T) (*Engine, *sqlite.Client) {
	t.Helper()

	store, err := sqlite.NewClient(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, store.InitSchema())
	t.Cleanup(func() { store.Close() })

	return NewEngine(store, nil, time.Minute), store
}

func insertEntry(t *testing.T, store *sqlite.Client, userID string, score float64, at time.Time) {
	t.Helper()

	sentiment := "neutral"
	if score >= 0.05 {
		sentiment = "positive"
	} else if score <= -0.05 {
		sentiment = "negative"
	}

	require.NoError(t, store.InsertEntry(&models.SentimentEntry{
		ID:             uuid.NewString(),
		UserID:         userID,
		Text:           "entry",
		Sentiment:      sentiment,
		SentimentScore: score,
		Toxicity:       "low",
		ToxicityScore:  0.1,
		AnalyzedAt:     at,
		CreatedAt:      at,
	}))
}

func TestClassifyStabilityThresholds(t *testing.T) {
	tests := []struct {
		name       string
		difference float64
		want       string
	}{
		{"no spread", 0, StabilityStable},
		{"boundary stays stable", 0.2, StabilityStable},
		{"just past slight boundary", 0.21, StabilitySlightlyUnstable},
		{"boundary stays slightly unstable", 0.4, StabilitySlightlyUnstable},
		{"just past unstable boundary", 0.41, StabilityUnstable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyStability(tt.difference))
		})
	}
}

func TestRangeCutoff(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	week, err := rangeCutoff("week", now)
	require.NoError(t, err)
	assert.Equal(t, now.AddDate(0, 0, -7), week)

	month, err := rangeCutoff("month", now)
	require.NoError(t, err)
	assert.Equal(t, now.AddDate(0, -1, 0), month)

	year, err := rangeCutoff("year", now)
	require.NoError(t, err)
	assert.Equal(t, now.AddDate(-1, 0, 0), year)

	_, err = rangeCutoff("decade", now)
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestTrendsSingleEntryToday(t *testing.T) {
	engine, store := newTestEngine(t)
	insertEntry(t, store, "user-1", 0.6369, time.Now())

	buckets, err := engine.Trends(context.Background(), "user-1", "week")
	require.NoError(t, err)
	require.Len(t, buckets, 1)
	assert.InDelta(t, 0.6369, buckets[0].AvgSentiment, 1e-9)
}

func TestTrendsEmptyWindowIsEmptySlice(t *testing.T) {
	engine, _ := newTestEngine(t)

	buckets, err := engine.Trends(context.Background(), "user-1", "year")
	require.NoError(t, err)
	assert.NotNil(t, buckets)
	assert.Empty(t, buckets)
}

func TestTrendsInvalidRange(t *testing.T) {
	engine, _ := newTestEngine(t)

	_, err := engine.Trends(context.Background(), "user-1", "fortnight")
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestSummaryNoEntries(t *testing.T) {
	engine, _ := newTestEngine(t)

	summary, err := engine.Summary(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Nil(t, summary)
}

func TestWeeklyStabilityNoData(t *testing.T) {
	engine, _ := newTestEngine(t)

	result, err := engine.WeeklyStability(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, StabilityNoData, result.Stability)
	assert.Nil(t, result.ScoreRange)
	assert.Zero(t, result.TotalEntries)
}

func TestWeeklyStabilityIdenticalScores(t *testing.T) {
	engine, store := newTestEngine(t)
	now := time.Now()

	for i := 0; i < 3; i++ {
		insertEntry(t, store, "user-1", 0.25, now.Add(-time.Duration(i)*time.Hour))
	}

	result, err := engine.WeeklyStability(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, StabilityStable, result.Stability)
	require.NotNil(t, result.ScoreRange)
	assert.Zero(t, result.ScoreRange.Difference)
	assert.Equal(t, 3, result.TotalEntries)
}

func TestWeeklyStabilityVolatileWeek(t *testing.T) {
	engine, store := newTestEngine(t)
	now := time.Now()

	insertEntry(t, store, "user-1", 0.9, now)
	insertEntry(t, store, "user-1", -0.3, now.Add(-24*time.Hour))
	// Outside the window; must not widen the range.
	insertEntry(t, store, "user-1", -0.99, now.AddDate(0, 0, -10))

	result, err := engine.WeeklyStability(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, StabilityUnstable, result.Stability)
	require.NotNil(t, result.ScoreRange)
	assert.InDelta(t, 1.2, result.ScoreRange.Difference, 1e-9)
	assert.Equal(t, 2, result.TotalEntries)
}

func TestTotalJournalsScopedToUser(t *testing.T) {
	engine, store := newTestEngine(t)
	now := time.Now()

	for i := 0; i < 4; i++ {
		insertEntry(t, store, "user-1", 0.1, now)
	}
	insertEntry(t, store, "user-2", 0.1, now)

	total, err := engine.TotalJournals(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 4, total)
}

func TestHistoryNewestFirst(t *testing.T) {
	engine, store := newTestEngine(t)
	now := time.Now()

	insertEntry(t, store, "user-1", 0.1, now.Add(-2*time.Hour))
	insertEntry(t, store, "user-1", 0.2, now)

	entries, err := engine.History(context.Background(), "user-1", "week")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.InDelta(t, 0.2, entries[0].SentimentScore, 1e-9)
	assert.InDelta(t, 0.1, entries[1].SentimentScore, 1e-9)
}
