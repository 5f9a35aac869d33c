// internal/search/classifier/stats.go
package classifier

import (
	"sync"
	"time"
)

// UsageStats tracks classifier usage across all parses. Safe for concurrent
// updates; a cancelled search never leaves a counter half-applied.
type UsageStats struct {
	mu sync.Mutex

	TotalQueries    int64
	CacheHits       int64
	FallbackParses  int64
	ClassifierCalls int64
	TokensUsed      int64

	processingTimes []time.Duration
}

// maxSamples caps the retained processing-time window.
const maxSamples = 512

func (s *UsageStats) record(d time.Duration, cacheHit, fallback bool, tokens int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.TotalQueries++
	if cacheHit {
		s.CacheHits++
	}
	if fallback {
		s.FallbackParses++
	}
	s.TokensUsed += int64(tokens)

	s.processingTimes = append(s.processingTimes, d)
	if len(s.processingTimes) > maxSamples {
		s.processingTimes = s.processingTimes[len(s.processingTimes)-maxSamples:]
	}
}

func (s *UsageStats) recordClassifierCall() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ClassifierCalls++
}

// Snapshot returns a copy of the counters plus the mean processing time.
func (s *UsageStats) Snapshot() UsageSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := UsageSnapshot{
		TotalQueries:    s.TotalQueries,
		CacheHits:       s.CacheHits,
		FallbackParses:  s.FallbackParses,
		ClassifierCalls: s.ClassifierCalls,
		TokensUsed:      s.TokensUsed,
	}
	if len(s.processingTimes) > 0 {
		var total time.Duration
		for _, d := range s.processingTimes {
			total += d
		}
		snap.AvgProcessingMs = float64(total.Milliseconds()) / float64(len(s.processingTimes))
	}
	return snap
}

// UsageSnapshot is a point-in-time copy of usage counters.
type UsageSnapshot struct {
	TotalQueries    int64   `json:"totalQueries"`
	CacheHits       int64   `json:"cacheHits"`
	FallbackParses  int64   `json:"fallbackParses"`
	ClassifierCalls int64   `json:"classifierCalls"`
	TokensUsed      int64   `json:"tokensUsed"`
	AvgProcessingMs float64 `json:"avgProcessingMs"`
}
