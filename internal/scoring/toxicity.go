package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/manovie/backend/internal/storage/models"
	"github.com/manovie/backend/pkg/circuitbreaker"
	"github.com/manovie/backend/pkg/logger"
	"github.com/manovie/backend/pkg/retry"
)

const (
	toxicityHighThreshold   = 0.6
	toxicityMediumThreshold = 0.3

	// AttributeToxicity is the primary attribute; its score drives the
	// stored label.
	AttributeToxicity = "TOXICITY"
)

// requestedAttributes is the fixed vocabulary requested from the
// Perspective API, mirrored by models.CategoryScores.
var requestedAttributes = []string{
	"TOXICITY",
	"SEVERE_TOXICITY",
	"INSULT",
	"THREAT",
	"PROFANITY",
}

func ToxicityLabel(score float64) string {
	switch {
	case score > toxicityHighThreshold:
		return "high"
	case score > toxicityMediumThreshold:
		return "medium"
	default:
		return "low"
	}
}

type SummaryScore struct {
	Value float64 `json:"value"`
	Type  string  `json:"type,omitempty"`
}

type AttributeScore struct {
	SummaryScore SummaryScore `json:"summaryScore"`
}

type ToxicityResult struct {
	AttributeScores   map[string]AttributeScore `json:"attributeScores"`
	Languages         []string                  `json:"languages,omitempty"`
	DetectedLanguages []string                  `json:"detectedLanguages,omitempty"`
}

func (r *ToxicityResult) Score(attribute string) float64 {
	if r == nil {
		return 0
	}
	return r.AttributeScores[attribute].SummaryScore.Value
}

func (r *ToxicityResult) CategoryScores() models.CategoryScores {
	return models.CategoryScores{
		Toxicity:       r.Score("TOXICITY"),
		SevereToxicity: r.Score("SEVERE_TOXICITY"),
		Insult:         r.Score("INSULT"),
		Threat:         r.Score("THREAT"),
		Profanity:      r.Score("PROFANITY"),
	}
}

// ToxicityClient calls the Perspective comments:analyze endpoint. The call
// is wrapped in bounded retry and a circuit breaker; exhausted retries fail
// the whole analyze operation with nothing persisted.
type ToxicityClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	cb         *circuitbreaker.CircuitBreaker
	retryCfg   retry.Config
}

func NewToxicityClient(apiKey, baseURL string, timeout time.Duration) *ToxicityClient {
	cb := circuitbreaker.NewCircuitBreaker("perspective", circuitbreaker.Config{
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Timeout:          30 * time.Second,
		Logger:           logger.GetLogger(),
	})

	retryCfg := retry.DefaultConfig()
	retryCfg.Logger = logger.GetLogger()
	retryCfg.Retryable = isRetryable

	return &ToxicityClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		cb:       cb,
		retryCfg: retryCfg,
	}
}

type analyzeComment struct {
	Text string `json:"text"`
}

type analyzeRequest struct {
	Comment             analyzeComment      `json:"comment"`
	Languages           []string            `json:"languages"`
	RequestedAttributes map[string]struct{} `json:"requestedAttributes"`
}

type httpStatusError struct {
	status int
	body   string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("perspective api returned %d: %s", e.status, e.body)
}

func isRetryable(err error) bool {
	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		return statusErr.status >= 500 || statusErr.status == http.StatusTooManyRequests
	}
	if errors.Is(err, circuitbreaker.ErrCircuitOpen) {
		return false
	}
	// Network-level failures are worth another attempt.
	return true
}

func (c *ToxicityClient) Analyze(ctx context.Context, text string) (*ToxicityResult, error) {
	attrs := make(map[string]struct{}, len(requestedAttributes))
	for _, attr := range requestedAttributes {
		attrs[attr] = struct{}{}
	}

	payload, err := json.Marshal(analyzeRequest{
		Comment:             analyzeComment{Text: text},
		Languages:           []string{"en"},
		RequestedAttributes: attrs,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal analyze request: %w", err)
	}

	var result *ToxicityResult
	err = retry.Do(ctx, c.retryCfg, func() error {
		return c.cb.Execute(func() error {
			res, err := c.doRequest(ctx, payload)
			if err != nil {
				return err
			}
			result = res
			return nil
		})
	})
	if err != nil {
		logger.Error("Toxicity analysis failed", zap.Error(err))
		return nil, err
	}

	return result, nil
}

func (c *ToxicityClient) doRequest(ctx context.Context, payload []byte) (*ToxicityResult, error) {
	url := fmt.Sprintf("%s/comments:analyze?key=%s", c.baseURL, c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call perspective api: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &httpStatusError{status: resp.StatusCode, body: string(body)}
	}

	var result ToxicityResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(result.DetectedLanguages) == 0 {
		result.DetectedLanguages = []string{"en"}
	}
	if len(result.Languages) == 0 {
		result.Languages = []string{"en"}
	}

	return &result, nil
}
