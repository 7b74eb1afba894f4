package sqlite

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manovie/backend/internal/storage/models"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()

	client, err := NewClient(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, client.InitSchema())
	t.Cleanup(func() { client.Close() })

	return client
}

func newEntry(userID, sentiment string, score float64, at time.Time) *models.SentimentEntry {
	return &models.SentimentEntry{
		ID:             uuid.NewString(),
		UserID:         userID,
		Text:           "sample entry",
		Sentiment:      sentiment,
		SentimentScore: score,
		Toxicity:       "low",
		ToxicityScore:  0.1,
		CategoryScores: models.CategoryScores{
			Toxicity:       0.1,
			SevereToxicity: 0.02,
			Insult:         0.05,
			Threat:         0.01,
			Profanity:      0.03,
		},
		WordCount:     2,
		SentenceCount: 1,
		AnalyzedAt:    at,
		CreatedAt:     at,
	}
}

func TestInsertAndEntriesSince(t *testing.T) {
	client := newTestClient(t)
	now := time.Now()

	older := newEntry("user-1", "neutral", 0.0, now.Add(-2*time.Hour))
	newer := newEntry("user-1", "positive", 0.8, now)
	require.NoError(t, client.InsertEntry(older))
	require.NoError(t, client.InsertEntry(newer))

	entries, err := client.EntriesSince("user-1", now.AddDate(0, 0, -7))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Newest first.
	assert.Equal(t, newer.ID, entries[0].ID)
	assert.Equal(t, older.ID, entries[1].ID)

	got := entries[0]
	assert.Equal(t, "user-1", got.UserID)
	assert.Equal(t, "positive", got.Sentiment)
	assert.InDelta(t, 0.8, got.SentimentScore, 1e-9)
	assert.InDelta(t, 0.02, got.CategoryScores.SevereToxicity, 1e-9)
	assert.Equal(t, 2, got.WordCount)
	assert.Equal(t, now.Unix(), got.AnalyzedAt.Unix())
}

func TestEntriesSinceExcludesOutsideWindow(t *testing.T) {
	client := newTestClient(t)
	now := time.Now()

	require.NoError(t, client.InsertEntry(newEntry("user-1", "neutral", 0.0, now.AddDate(0, 0, -10))))
	require.NoError(t, client.InsertEntry(newEntry("user-1", "positive", 0.5, now)))

	entries, err := client.EntriesSince("user-1", now.AddDate(0, 0, -7))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "positive", entries[0].Sentiment)
}

func TestCountEntriesIsScopedToUser(t *testing.T) {
	client := newTestClient(t)
	now := time.Now()

	for i := 0; i < 3; i++ {
		require.NoError(t, client.InsertEntry(newEntry("user-1", "positive", 0.5, now)))
	}
	require.NoError(t, client.InsertEntry(newEntry("user-2", "negative", -0.5, now)))

	count, err := client.CountEntries("user-1")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	count, err = client.CountEntries("user-2")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = client.CountEntries("user-3")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestTrendBucketsSingleEntry(t *testing.T) {
	client := newTestClient(t)
	now := time.Now()

	entry := newEntry("user-1", "positive", 0.6124, now)
	entry.ToxicityScore = 0.22
	entry.CategoryScores.Toxicity = 0.22
	require.NoError(t, client.InsertEntry(entry))

	buckets, err := client.TrendBuckets("user-1", now.AddDate(0, 0, -7))
	require.NoError(t, err)
	require.Len(t, buckets, 1)

	b := buckets[0]
	assert.Equal(t, time.Unix(now.Unix(), 0).UTC().Format("2006-01-02"), b.Date)
	assert.InDelta(t, 0.6124, b.AvgSentiment, 1e-9)
	assert.InDelta(t, 0.22, b.AvgToxicity, 1e-9)
	assert.InDelta(t, 0.22, b.CategoryScores.Toxicity, 1e-9)
	assert.Equal(t, 1, b.Count)
}

func TestTrendBucketsGroupByCalendarDay(t *testing.T) {
	client := newTestClient(t)
	base := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	require.NoError(t, client.InsertEntry(newEntry("user-1", "positive", 0.4, base)))
	require.NoError(t, client.InsertEntry(newEntry("user-1", "positive", 0.8, base.Add(2*time.Hour))))
	require.NoError(t, client.InsertEntry(newEntry("user-1", "negative", -0.2, base.AddDate(0, 0, -1))))

	buckets, err := client.TrendBuckets("user-1", base.AddDate(0, 0, -7))
	require.NoError(t, err)
	require.Len(t, buckets, 2)

	// Ascending date order.
	assert.Equal(t, "2025-06-14", buckets[0].Date)
	assert.Equal(t, "2025-06-15", buckets[1].Date)

	assert.InDelta(t, -0.2, buckets[0].AvgSentiment, 1e-9)
	assert.InDelta(t, 0.6, buckets[1].AvgSentiment, 1e-9)
	assert.Equal(t, 2, buckets[1].Count)
}

func TestTrendBucketsEmptyWindow(t *testing.T) {
	client := newTestClient(t)

	buckets, err := client.TrendBuckets("user-1", time.Now().AddDate(0, 0, -7))
	require.NoError(t, err)
	assert.Empty(t, buckets)
}

func TestMoodSummaryMostFrequentGroup(t *testing.T) {
	client := newTestClient(t)
	now := time.Now()

	scores := []float64{0.5, 0.6, 0.7}
	for _, s := range scores {
		e := newEntry("user-1", "positive", s, now)
		e.ToxicityScore = 0.1
		require.NoError(t, client.InsertEntry(e))
	}
	negative := newEntry("user-1", "negative", -0.9, now)
	negative.ToxicityScore = 0.9
	require.NoError(t, client.InsertEntry(negative))

	summary, err := client.MoodSummary("user-1")
	require.NoError(t, err)
	require.NotNil(t, summary)

	assert.Equal(t, "positive", summary.MostFrequentMood)
	assert.Equal(t, "🙂", summary.Emoji)
	// Averages cover the positive group only; the negative entry's scores
	// must not leak in.
	assert.InDelta(t, 0.6, summary.AvgSentiment, 1e-9)
	assert.InDelta(t, 0.1, summary.AvgToxicity, 1e-9)
	assert.Equal(t, map[string]int{"positive": 3, "negative": 1}, summary.Counts)
}

func TestMoodSummaryTieBreaksByLabel(t *testing.T) {
	client := newTestClient(t)
	now := time.Now()

	require.NoError(t, client.InsertEntry(newEntry("user-1", "positive", 0.5, now)))
	require.NoError(t, client.InsertEntry(newEntry("user-1", "positive", 0.6, now)))
	require.NoError(t, client.InsertEntry(newEntry("user-1", "negative", -0.5, now)))
	require.NoError(t, client.InsertEntry(newEntry("user-1", "negative", -0.6, now)))

	summary, err := client.MoodSummary("user-1")
	require.NoError(t, err)
	require.NotNil(t, summary)

	// Equal counts resolve by label ascending.
	assert.Equal(t, "negative", summary.MostFrequentMood)
	assert.Equal(t, "🙁", summary.Emoji)
}

func TestMoodSummaryNoEntries(t *testing.T) {
	client := newTestClient(t)

	summary, err := client.MoodSummary("user-1")
	require.NoError(t, err)
	assert.Nil(t, summary)
}

func TestSentimentRange(t *testing.T) {
	client := newTestClient(t)
	now := time.Now()

	count, _, _, err := client.SentimentRange("user-1", now.AddDate(0, 0, -7))
	require.NoError(t, err)
	assert.Zero(t, count)

	require.NoError(t, client.InsertEntry(newEntry("user-1", "positive", 0.3, now)))
	require.NoError(t, client.InsertEntry(newEntry("user-1", "positive", 0.3, now)))

	count, min, max, err := client.SentimentRange("user-1", now.AddDate(0, 0, -7))
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.InDelta(t, 0.3, min, 1e-9)
	assert.InDelta(t, 0.3, max, 1e-9)
}

func TestRecordLoginUpsertsSameDay(t *testing.T) {
	client := newTestClient(t)
	noon := time.Date(2025, 6, 15, 12, 0, 0, 0, time.Local)

	require.NoError(t, client.RecordLogin("user-1", "10.0.0.1", "test-agent", "Unknown", noon))
	require.NoError(t, client.RecordLogin("user-1", "10.0.0.1", "test-agent", "Unknown", noon.Add(time.Minute)))

	logs, err := client.LoginLogs("user-1")
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, 2, logs[0].LoginCount)
	assert.Equal(t, "10.0.0.1", logs[0].IPAddress)
}
