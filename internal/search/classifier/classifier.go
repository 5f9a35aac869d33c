// internal/search/classifier/classifier.go
package classifier

import (
	"context"
	"strings"
	"time"

	commonerrors "scout-search/internal/common/errors"
	"scout-search/internal/common/logger"
	"scout-search/internal/common/metrics"
	"scout-search/internal/models"
	"scout-search/internal/search/params"
)

// ParsedQuery wraps SearchParameters with parse provenance. Created once per
// search invocation and never reused.
type ParsedQuery struct {
	Parameters       params.SearchParameters `json:"parameters"`
	Confidence       float64                 `json:"confidence"`
	FallbackUsed     bool                    `json:"fallbackUsed"`
	CacheHit         bool                    `json:"cacheHit"`
	ProcessingTimeMs int64                   `json:"processingTimeMs"`
	TokenUsage       int                     `json:"tokenUsage,omitempty"`
}

// Confidence scoring constants. Base plus a bonus per extracted field group,
// capped at 1.0.
const (
	confidenceBase            = 0.5
	confidencePositionBonus   = 0.2
	confidenceAgeBonus        = 0.15
	confidenceFieldBonus      = 0.1 // nationality, league, market value
	confidencePriorityBonus   = 0.1
	confidenceCap             = 1.0
)

// Config holds the retry and cache tunables for the parse service. CacheTTL
// bounds cached-parse freshness at the service level, independent of the
// cache implementation's own expiry.
type Config struct {
	MaxRetries  int
	BaseBackoff time.Duration
	CacheTTL    time.Duration
}

// DefaultConfig mirrors the production defaults.
func DefaultConfig() Config {
	return Config{
		MaxRetries:  3,
		BaseBackoff: 200 * time.Millisecond,
		CacheTTL:    24 * time.Hour,
	}
}

// Service converts free text into a ParsedQuery. Parse never fails: every
// failure path resolves to a valid fallback parse.
type Service struct {
	config Config
	client Classifier
	cache  Cache
	logger logger.Logger
	stats  *UsageStats
}

func NewService(config Config, client Classifier, cache Cache, log logger.Logger) *Service {
	return &Service{
		config: config,
		client: client,
		cache:  cache,
		logger: log.WithFields(map[string]interface{}{"component": "query-classifier"}),
		stats:  &UsageStats{},
	}
}

// Parse turns free text into search parameters. Degenerate input and
// classifier exhaustion both resolve to the deterministic fallback; a fresh
// cached parse short-circuits the external call entirely.
func (s *Service) Parse(ctx context.Context, freeText string) *ParsedQuery {
	start := time.Now()
	defer func() {
		metrics.ParseDuration.Observe(time.Since(start).Seconds())
	}()

	trimmed := params.NormalizeText(freeText)
	if len(trimmed) <= 1 {
		return s.finishFallback(freeText, start, "degenerate input")
	}

	key := NormalizeKey(trimmed)
	if entry, ok := s.cache.Get(ctx, key); ok && time.Since(entry.Timestamp) <= s.config.CacheTTL {
		metrics.ParseCacheHits.Inc()

		parameters := entry.Parameters
		parameters.OriginalQuery = trimmed
		result := &ParsedQuery{
			Parameters:       parameters,
			Confidence:       entry.Confidence,
			FallbackUsed:     false,
			CacheHit:         true,
			ProcessingTimeMs: time.Since(start).Milliseconds(),
		}
		s.stats.record(time.Since(start), true, false, 0)
		return result
	}

	structured, err := s.classifyWithRetry(ctx, trimmed)
	if err != nil {
		s.logger.Warn("classifier unavailable, using fallback parse", map[string]interface{}{
			"error": err.Error(),
		})
		metrics.ClassifierRequests.WithLabelValues("failed").Inc()
		return s.finishFallback(freeText, start, "classifier exhausted")
	}
	if structured == nil {
		metrics.ClassifierRequests.WithLabelValues("failed").Inc()
		return s.finishFallback(freeText, start, "empty classifier result")
	}
	metrics.ClassifierRequests.WithLabelValues("success").Inc()

	parameters := s.clampStructured(structured, trimmed)
	confidence := computeConfidence(&parameters)
	parameters.Confidence = confidence

	s.cache.Set(ctx, key, &CacheEntry{
		Parameters: parameters,
		Confidence: confidence,
		Timestamp:  time.Now(),
	})

	s.stats.record(time.Since(start), false, false, structured.TokenUsage)
	return &ParsedQuery{
		Parameters:       parameters,
		Confidence:       confidence,
		FallbackUsed:     false,
		CacheHit:         false,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
		TokenUsage:       structured.TokenUsage,
	}
}

// Stats returns a snapshot of the usage counters.
func (s *Service) Stats() UsageSnapshot {
	return s.stats.Snapshot()
}

// Close releases the cache.
func (s *Service) Close() {
	s.cache.Close()
}

func (s *Service) finishFallback(freeText string, start time.Time, reason string) *ParsedQuery {
	metrics.FallbackParses.Inc()

	parameters := FallbackParse(freeText)
	s.stats.record(time.Since(start), false, true, 0)

	s.logger.Debug("fallback parse", map[string]interface{}{
		"reason": reason,
	})

	return &ParsedQuery{
		Parameters:       parameters,
		Confidence:       FallbackConfidence,
		FallbackUsed:     true,
		CacheHit:         false,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
	}
}

// classifyWithRetry retries transient failures with exponential backoff. A
// cancelled or timed-out context stops immediately so the caller can fall
// back instead of propagating an error.
func (s *Service) classifyWithRetry(ctx context.Context, text string) (*StructuredResult, error) {
	var lastErr error

	for attempt := 1; attempt <= s.config.MaxRetries; attempt++ {
		if attempt > 1 {
			metrics.ClassifierRetries.Inc()
			backoff := s.config.BaseBackoff * time.Duration(1<<(attempt-2))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, commonerrors.NewClassifierTimeoutError()
			}
		}

		s.stats.recordClassifierCall()
		result, err := s.client.Classify(ctx, text)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, commonerrors.NewClassifierTimeoutError()
		}
	}

	return nil, lastErr
}

// clampStructured validates every classifier field server-side. The
// classifier output is never trusted verbatim.
func (s *Service) clampStructured(r *StructuredResult, originalQuery string) params.SearchParameters {
	p := params.SearchParameters{
		OriginalQuery:   originalQuery,
		ParsedIntent:    params.NormalizeText(r.ParsedIntent),
		PriorityFactors: r.PriorityFactors,
		Keywords:        r.Keywords,
	}

	for _, pos := range r.Positions {
		code := strings.ToUpper(params.NormalizeText(pos))
		if models.ValidPositions[code] && len(p.Positions) < params.MaxPositions {
			p.Positions = append(p.Positions, code)
		}
	}

	if r.AgeMin != nil {
		v := clampAge(*r.AgeMin)
		p.Age.Min = &v
	}
	if r.AgeMax != nil {
		v := clampAge(*r.AgeMax)
		p.Age.Max = &v
	}
	if p.Age.Min != nil && p.Age.Max != nil && *p.Age.Min > *p.Age.Max {
		p.Age.Min, p.Age.Max = p.Age.Max, p.Age.Min
	}

	for _, nat := range r.Nationalities {
		if len(p.Nationalities) < params.MaxNationalities {
			p.Nationalities = append(p.Nationalities, params.CanonicalCountry(nat))
		}
	}

	for _, lg := range r.Leagues {
		canonical := params.CanonicalLeague(lg)
		if models.ValidLeagues[canonical] && len(p.Leagues) < params.MaxLeagues {
			p.Leagues = append(p.Leagues, canonical)
		}
	}

	if r.MarketValueMin != nil && *r.MarketValueMin >= 0 {
		p.MarketValue.Min = r.MarketValueMin
	}
	if r.MarketValueMax != nil && *r.MarketValueMax >= 0 {
		p.MarketValue.Max = r.MarketValueMax
	}
	if p.MarketValue.Min != nil && p.MarketValue.Max != nil && *p.MarketValue.Min > *p.MarketValue.Max {
		p.MarketValue.Min, p.MarketValue.Max = p.MarketValue.Max, p.MarketValue.Min
	}

	if models.ValidTransferStatus[r.TransferStatus] {
		p.TransferStatus = r.TransferStatus
	}

	if len(p.Keywords) > params.MaxKeywords {
		p.Keywords = p.Keywords[:params.MaxKeywords]
	}

	params.Sanitize(&p)
	return p
}

func computeConfidence(p *params.SearchParameters) float64 {
	confidence := confidenceBase
	if len(p.Positions) > 0 {
		confidence += confidencePositionBonus
	}
	if p.HasAge() {
		confidence += confidenceAgeBonus
	}
	if len(p.Nationalities) > 0 {
		confidence += confidenceFieldBonus
	}
	if len(p.Leagues) > 0 {
		confidence += confidenceFieldBonus
	}
	if p.HasMarketValue() {
		confidence += confidenceFieldBonus
	}
	if len(p.PriorityFactors) > 0 {
		confidence += confidencePriorityBonus
	}
	if confidence > confidenceCap {
		confidence = confidenceCap
	}
	return confidence
}
