// Package analytics turns raw per-entry scores into the reports the
// dashboard renders: day-bucketed trends, the mood summary, the weekly
// stability classification and totals.
package analytics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	cacheredis "github.com/manovie/backend/internal/cache/redis"
	"github.com/manovie/backend/internal/metrics"
	"github.com/manovie/backend/internal/storage/models"
	"github.com/manovie/backend/internal/storage/sqlite"
	"github.com/manovie/backend/pkg/logger"
)

var ErrInvalidRange = errors.New("invalid range: use 'week', 'month', or 'year'")

const (
	StabilityStable           = "Stable"
	StabilitySlightlyUnstable = "Slightly Unstable"
	StabilityUnstable         = "Unstable"
	StabilityNoData           = "No Data"

	unstableThreshold         = 0.4
	slightlyUnstableThreshold = 0.2
)

type Engine struct {
	store *sqlite.Client
	cache *cacheredis.Client
	ttl   time.Duration
}

// NewEngine builds the reporting engine. cache may be nil, which disables
// the read-through layer.
func NewEngine(store *sqlite.Client, cache *cacheredis.Client, ttl time.Duration) *Engine {
	return &Engine{
		store: store,
		cache: cache,
		ttl:   ttl,
	}
}

// rangeCutoff anchors the lookback window at now minus the range, not at
// calendar boundaries.
func rangeCutoff(rng string, now time.Time) (time.Time, error) {
	switch rng {
	case "week":
		return now.AddDate(0, 0, -7), nil
	case "month":
		return now.AddDate(0, -1, 0), nil
	case "year":
		return now.AddDate(-1, 0, 0), nil
	default:
		return time.Time{}, ErrInvalidRange
	}
}

// Trends returns day-bucketed score averages inside the lookback window,
// oldest bucket first. An empty window yields an empty slice.
func (e *Engine) Trends(ctx context.Context, userID, rng string) ([]models.TrendBucket, error) {
	cutoff, err := rangeCutoff(rng, time.Now())
	if err != nil {
		return nil, err
	}

	metrics.ReportRequests.WithLabelValues("trends").Inc()

	key := cacheredis.ReportKey(userID, "trends:"+rng)
	var cached []models.TrendBucket
	if e.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	buckets, err := e.store.TrendBuckets(userID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to compute trends: %w", err)
	}
	if buckets == nil {
		buckets = []models.TrendBucket{}
	}

	e.cacheSet(ctx, key, buckets)
	return buckets, nil
}

// Summary reports the user's most frequent mood across all entries.
// Returns nil when the user has no entries.
func (e *Engine) Summary(ctx context.Context, userID string) (*models.MoodSummary, error) {
	metrics.ReportRequests.WithLabelValues("summary").Inc()

	key := cacheredis.ReportKey(userID, "summary")
	var cached models.MoodSummary
	if e.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	summary, err := e.store.MoodSummary(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute mood summary: %w", err)
	}
	if summary == nil {
		return nil, nil
	}

	e.cacheSet(ctx, key, summary)
	return summary, nil
}

// WeeklyStability classifies sentiment volatility over the trailing 7
// days from the spread between the best and worst score in the window.
func (e *Engine) WeeklyStability(ctx context.Context, userID string) (*models.WeeklyStability, error) {
	metrics.ReportRequests.WithLabelValues("weekly_stability").Inc()

	key := cacheredis.ReportKey(userID, "weekly-stability")
	var cached models.WeeklyStability
	if e.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	cutoff := time.Now().AddDate(0, 0, -7)
	count, min, max, err := e.store.SentimentRange(userID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to compute weekly stability: %w", err)
	}

	if count == 0 {
		return &models.WeeklyStability{
			Stability:    StabilityNoData,
			TotalEntries: 0,
		}, nil
	}

	difference := max - min
	result := &models.WeeklyStability{
		Stability: classifyStability(difference),
		ScoreRange: &models.ScoreRange{
			Min:        min,
			Max:        max,
			Difference: difference,
		},
		TotalEntries: count,
	}

	e.cacheSet(ctx, key, result)
	return result, nil
}

func classifyStability(difference float64) string {
	switch {
	case difference > unstableThreshold:
		return StabilityUnstable
	case difference > slightlyUnstableThreshold:
		return StabilitySlightlyUnstable
	default:
		return StabilityStable
	}
}

// TotalJournals counts every entry the user ever stored.
func (e *Engine) TotalJournals(ctx context.Context, userID string) (int, error) {
	metrics.ReportRequests.WithLabelValues("total").Inc()

	count, err := e.store.CountEntries(userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count journals: %w", err)
	}
	return count, nil
}

// History returns the raw entries inside the lookback window, newest
// first.
func (e *Engine) History(ctx context.Context, userID, rng string) ([]models.SentimentEntry, error) {
	cutoff, err := rangeCutoff(rng, time.Now())
	if err != nil {
		return nil, err
	}

	metrics.ReportRequests.WithLabelValues("history").Inc()

	entries, err := e.store.EntriesSince(userID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	if entries == nil {
		entries = []models.SentimentEntry{}
	}
	return entries, nil
}

func (e *Engine) cacheGet(ctx context.Context, key string, out interface{}) bool {
	if e.cache == nil {
		return false
	}

	hit, err := e.cache.GetJSON(ctx, key, out)
	if err != nil {
		logger.Warn("Report cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	if hit {
		metrics.CacheHits.WithLabelValues("report").Inc()
		return true
	}
	metrics.CacheMisses.WithLabelValues("report").Inc()
	return false
}

func (e *Engine) cacheSet(ctx context.Context, key string, value interface{}) {
	if e.cache == nil {
		return
	}

	if err := e.cache.SetJSON(ctx, key, value, e.ttl); err != nil {
		logger.Warn("Report cache write failed", zap.String("key", key), zap.Error(err))
	}
}
