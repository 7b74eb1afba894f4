package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	cacheredis "github.com/manovie/backend/internal/cache/redis"
	"github.com/manovie/backend/internal/metrics"
	"github.com/manovie/backend/internal/scoring"
	"github.com/manovie/backend/internal/storage/models"
	"github.com/manovie/backend/internal/storage/sqlite"
	"github.com/manovie/backend/pkg/logger"
	"github.com/manovie/backend/pkg/utils"
)

var ErrEmptyText = errors.New("text is required")

// ScoringError marks an upstream scoring dependency failure; the handler
// maps it to a 502.
type ScoringError struct {
	Provider string
	Err      error
}

func (e *ScoringError) Error() string {
	return fmt.Sprintf("%s scoring failed: %v", e.Provider, e.Err)
}

func (e *ScoringError) Unwrap() error {
	return e.Err
}

// ToxicityScorer is satisfied by scoring.ToxicityClient.
type ToxicityScorer interface {
	Analyze(ctx context.Context, text string) (*scoring.ToxicityResult, error)
}

// Result is the analyze response: the persisted entry plus the full
// per-category breakdown for immediate client display.
type Result struct {
	UserID    string                  `json:"userId"`
	Entry     *models.SentimentEntry  `json:"entry"`
	Sentiment scoring.SentimentResult `json:"sentiment"`
	Toxicity  ToxicityPayload         `json:"toxicity"`
}

type ToxicityPayload struct {
	AttributeScores   map[string]scoring.AttributeScore `json:"attributeScores"`
	Languages         []string                          `json:"languages"`
	DetectedLanguages []string                          `json:"detectedLanguages"`
}

type Service struct {
	store    *sqlite.Client
	toxicity ToxicityScorer
	cache    *cacheredis.Client
	scoreTTL time.Duration
}

// NewService wires the analyze-and-store operation. cache may be nil; the
// service then always hits the toxicity API directly.
func NewService(store *sqlite.Client, toxicity ToxicityScorer, cache *cacheredis.Client, scoreTTL time.Duration) *Service {
	return &Service{
		store:    store,
		toxicity: toxicity,
		cache:    cache,
		scoreTTL: scoreTTL,
	}
}

// Analyze validates the text, runs both scoring adapters concurrently,
// derives labels and persists exactly one entry. Nothing is written when
// either adapter fails.
func (s *Service) Analyze(ctx context.Context, userID, text string) (*Result, error) {
	start := time.Now()

	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	var (
		sentimentRes scoring.SentimentResult
		toxicityRes  *scoring.ToxicityResult
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		sentimentRes = scoring.AnalyzeSentiment(text)
		return nil
	})

	g.Go(func() error {
		res, err := s.scoreToxicity(gctx, text)
		if err != nil {
			metrics.ScoringFailures.WithLabelValues("perspective").Inc()
			return &ScoringError{Provider: "perspective", Err: err}
		}
		toxicityRes = res
		return nil
	})

	if err := g.Wait(); err != nil {
		metrics.AnalyzeTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	toxicityValue := toxicityRes.Score(scoring.AttributeToxicity)
	words, sentences := scoring.TextStats(scoring.PlainText(text))

	now := time.Now()
	entry := &models.SentimentEntry{
		ID:             uuid.NewString(),
		UserID:         userID,
		Text:           text,
		Sentiment:      sentimentRes.Sentiment,
		SentimentScore: sentimentRes.Score,
		Toxicity:       scoring.ToxicityLabel(toxicityValue),
		ToxicityScore:  toxicityValue,
		CategoryScores: toxicityRes.CategoryScores(),
		WordCount:      words,
		SentenceCount:  sentences,
		AnalyzedAt:     now,
		CreatedAt:      now,
	}

	if err := s.store.InsertEntry(entry); err != nil {
		metrics.AnalyzeTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to persist entry: %w", err)
	}

	metrics.EntriesCreated.Inc()
	metrics.AnalyzeTotal.WithLabelValues("success").Inc()
	metrics.AnalyzeDuration.Observe(time.Since(start).Seconds())

	s.invalidateReports(ctx, userID)

	logger.Info("Entry analyzed",
		zap.String("entry_id", entry.ID),
		zap.String("user_id", userID),
		zap.String("sentiment", entry.Sentiment),
		zap.String("toxicity", entry.Toxicity),
		zap.Duration("took", time.Since(start)),
	)

	return &Result{
		UserID:    userID,
		Entry:     entry,
		Sentiment: sentimentRes,
		Toxicity: ToxicityPayload{
			AttributeScores:   toxicityRes.AttributeScores,
			Languages:         toxicityRes.Languages,
			DetectedLanguages: toxicityRes.DetectedLanguages,
		},
	}, nil
}

// scoreToxicity consults the short-TTL score cache before calling the API.
// Identical text submitted twice costs one Perspective call; a cache hit
// still persists a fresh entry upstream in Analyze.
func (s *Service) scoreToxicity(ctx context.Context, text string) (*scoring.ToxicityResult, error) {
	if s.cache == nil {
		return s.toxicity.Analyze(ctx, text)
	}

	key := cacheredis.ScoreKey(utils.HashText(text))

	var cached scoring.ToxicityResult
	hit, err := s.cache.GetJSON(ctx, key, &cached)
	if err != nil {
		logger.Warn("Score cache read failed", zap.Error(err))
	}
	if hit {
		metrics.CacheHits.WithLabelValues("score").Inc()
		return &cached, nil
	}
	metrics.CacheMisses.WithLabelValues("score").Inc()

	result, err := s.toxicity.Analyze(ctx, text)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetJSON(ctx, key, result, s.scoreTTL); err != nil {
		logger.Warn("Score cache write failed", zap.Error(err))
	}

	return result, nil
}

func (s *Service) invalidateReports(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateUserReports(ctx, userID); err != nil {
		logger.Warn("Report cache invalidation failed",
			zap.String("user_id", userID),
			zap.Error(err),
		)
	}
}
