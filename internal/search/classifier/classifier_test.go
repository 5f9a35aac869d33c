// internal/search/classifier/classifier_test.go
package classifier

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	commonerrors "scout-search/internal/common/errors"
	"scout-search/internal/common/logger"
	"scout-search/internal/search/params"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestLogger(t *testing.T) logger.Logger {
	return logger.NewZapAdapter(zaptest.NewLogger(t))
}

type mockClassifier struct {
	mu     sync.Mutex
	calls  int
	result *StructuredResult
	err    error
}

func (m *mockClassifier) Classify(_ context.Context, _ string) (*StructuredResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func (m *mockClassifier) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func newTestService(t *testing.T, client Classifier) *Service {
	cache := NewMemoryCache(24*time.Hour, time.Hour)
	t.Cleanup(cache.Close)

	return NewService(Config{
		MaxRetries:  3,
		BaseBackoff: time.Millisecond,
		CacheTTL:    24 * time.Hour,
	}, client, cache, createTestLogger(t))
}

// ==========================
// Parse Service Tests
// ==========================

func TestParse_ClassifierSuccess(t *testing.T) {
	mock := &mockClassifier{
		result: &StructuredResult{
			Positions:     []string{"st", "cf"},
			AgeMax:        params.IntPtr(25),
			Nationalities: []string{"brazilian"},
			ParsedIntent:  "young strikers from brazil",
			TokenUsage:    120,
		},
	}
	service := newTestService(t, mock)

	result := service.Parse(context.Background(), "young brazilian striker under 25")

	assert.False(t, result.FallbackUsed)
	assert.False(t, result.CacheHit)
	assert.Equal(t, 1, mock.callCount())
	assert.Equal(t, []string{"ST", "CF"}, result.Parameters.Positions)
	assert.Equal(t, []string{"Brazil"}, result.Parameters.Nationalities)
	if assert.NotNil(t, result.Parameters.Age.Max) {
		assert.Equal(t, 25, *result.Parameters.Age.Max)
	}
	// Base + positions + age + nationality.
	assert.InDelta(t, 0.95, result.Confidence, 0.001)
	assert.Equal(t, 120, result.TokenUsage)
}

func TestParse_CacheHitSkipsClassifier(t *testing.T) {
	mock := &mockClassifier{
		result: &StructuredResult{Positions: []string{"gk"}},
	}
	service := newTestService(t, mock)

	first := service.Parse(context.Background(), "experienced goalkeeper")
	second := service.Parse(context.Background(), "  Experienced Goalkeeper ")

	assert.False(t, first.CacheHit)
	assert.True(t, second.CacheHit)
	assert.False(t, second.FallbackUsed)
	assert.Equal(t, 1, mock.callCount())
	assert.Equal(t, first.Parameters.Positions, second.Parameters.Positions)
	assert.Equal(t, first.Confidence, second.Confidence)
	// The cached entry keeps its parse; only the query text reflects this call.
	assert.Equal(t, "Experienced Goalkeeper", second.Parameters.OriginalQuery)
}

func TestParse_DegenerateInputNeverCallsClassifier(t *testing.T) {
	tests := []string{"", " ", "a", "\t\n"}

	for _, query := range tests {
		t.Run("query "+query, func(t *testing.T) {
			mock := &mockClassifier{err: commonerrors.NewClassifierFailedError(assert.AnError)}
			service := newTestService(t, mock)

			result := service.Parse(context.Background(), query)

			assert.True(t, result.FallbackUsed)
			assert.Equal(t, FallbackConfidence, result.Confidence)
			assert.Equal(t, 0, mock.callCount())
		})
	}
}

func TestParse_RetryExhaustionFallsBack(t *testing.T) {
	mock := &mockClassifier{err: commonerrors.NewClassifierFailedError(assert.AnError)}
	service := newTestService(t, mock)

	result := service.Parse(context.Background(), "young striker under 25")

	assert.True(t, result.FallbackUsed)
	assert.Equal(t, 3, mock.callCount())
	assert.Equal(t, FallbackConfidence, result.Confidence)
	// The fallback still extracts what it can.
	assert.Equal(t, []string{"ST", "CF"}, result.Parameters.Positions)
	if assert.NotNil(t, result.Parameters.Age.Max) {
		assert.Equal(t, 25, *result.Parameters.Age.Max)
	}
}

func TestParse_CancelledContextFallsBackImmediately(t *testing.T) {
	mock := &mockClassifier{err: commonerrors.NewClassifierFailedError(assert.AnError)}
	service := newTestService(t, mock)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := service.Parse(ctx, "young striker")

	assert.True(t, result.FallbackUsed)
	assert.Equal(t, 1, mock.callCount())
}

func TestParse_NilClassifierResultFallsBack(t *testing.T) {
	mock := &mockClassifier{}
	service := newTestService(t, mock)

	result := service.Parse(context.Background(), "young striker under 25")

	assert.True(t, result.FallbackUsed)
	assert.Equal(t, FallbackConfidence, result.Confidence)
	assert.Equal(t, []string{"ST", "CF"}, result.Parameters.Positions)
}

func TestParse_StaleCacheEntryIgnored(t *testing.T) {
	mock := &mockClassifier{
		result: &StructuredResult{Positions: []string{"gk"}},
	}
	cache := NewMemoryCache(48*time.Hour, time.Hour)
	t.Cleanup(cache.Close)
	service := NewService(Config{
		MaxRetries:  1,
		BaseBackoff: time.Millisecond,
		CacheTTL:    time.Hour,
	}, mock, cache, createTestLogger(t))

	// The cache itself would still serve this entry; the service window is
	// tighter and rejects it.
	cache.Set(context.Background(), "experienced goalkeeper", &CacheEntry{
		Parameters: params.SearchParameters{Positions: []string{"CB"}},
		Confidence: 0.9,
		Timestamp:  time.Now().Add(-2 * time.Hour),
	})

	result := service.Parse(context.Background(), "experienced goalkeeper")

	assert.False(t, result.CacheHit)
	assert.Equal(t, 1, mock.callCount())
	assert.Equal(t, []string{"GK"}, result.Parameters.Positions)
}

func TestParse_CachedParsesDoNotShareArrays(t *testing.T) {
	mock := &mockClassifier{
		result: &StructuredResult{Positions: []string{"st", "cf"}, Nationalities: []string{"brazilian"}},
	}
	service := newTestService(t, mock)

	first := service.Parse(context.Background(), "brazilian striker")
	second := service.Parse(context.Background(), "brazilian striker")

	first.Parameters.Positions[0] = "GK"
	first.Parameters.Nationalities[0] = "Spain"

	assert.Equal(t, []string{"ST", "CF"}, second.Parameters.Positions)
	assert.Equal(t, []string{"Brazil"}, second.Parameters.Nationalities)

	third := service.Parse(context.Background(), "brazilian striker")
	assert.Equal(t, []string{"ST", "CF"}, third.Parameters.Positions)
}

func TestParse_ConcurrentCacheHitsAreIndependent(t *testing.T) {
	mock := &mockClassifier{
		result: &StructuredResult{Positions: []string{"st", "cf"}, Nationalities: []string{"brazilian"}},
	}
	service := newTestService(t, mock)
	service.Parse(context.Background(), "brazilian striker")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result := service.Parse(context.Background(), "brazilian striker")
			params.Sanitize(&result.Parameters)
			result.Parameters.Positions[0] = "GK"
		}()
	}
	wg.Wait()

	final := service.Parse(context.Background(), "brazilian striker")
	assert.Equal(t, []string{"ST", "CF"}, final.Parameters.Positions)
	assert.Equal(t, 1, mock.callCount())
}

func TestParse_ClampsClassifierOutput(t *testing.T) {
	mock := &mockClassifier{
		result: &StructuredResult{
			Positions:      []string{"ST", "QUARTERBACK"},
			AgeMin:         params.IntPtr(30),
			AgeMax:         params.IntPtr(20),
			Leagues:        []string{"EPL", "Fantasy League"},
			MarketValueMin: params.Int64Ptr(-5),
			TransferStatus: "loan",
		},
	}
	service := newTestService(t, mock)

	result := service.Parse(context.Background(), "some query")
	p := result.Parameters

	assert.Equal(t, []string{"ST"}, p.Positions)
	assert.Equal(t, []string{"Premier League"}, p.Leagues)
	// Inverted bounds are swapped, not rejected.
	assert.Equal(t, 20, *p.Age.Min)
	assert.Equal(t, 30, *p.Age.Max)
	assert.Nil(t, p.MarketValue.Min)
	assert.Empty(t, p.TransferStatus)
}

func TestParse_StatsCounters(t *testing.T) {
	mock := &mockClassifier{
		result: &StructuredResult{Positions: []string{"cb"}, TokenUsage: 50},
	}
	service := newTestService(t, mock)

	service.Parse(context.Background(), "solid defender")
	service.Parse(context.Background(), "solid defender")
	service.Parse(context.Background(), "x")

	snap := service.Stats()
	assert.Equal(t, int64(3), snap.TotalQueries)
	assert.Equal(t, int64(1), snap.CacheHits)
	assert.Equal(t, int64(1), snap.FallbackParses)
	assert.Equal(t, int64(1), snap.ClassifierCalls)
	assert.Equal(t, int64(50), snap.TokensUsed)
}

func TestComputeConfidence_Cap(t *testing.T) {
	p := &params.SearchParameters{
		Positions:       []string{"ST"},
		Age:             params.AgeRange{Min: params.IntPtr(18), Max: params.IntPtr(25)},
		Nationalities:   []string{"Brazil"},
		Leagues:         []string{"Serie A"},
		MarketValue:     params.ValueRange{Max: params.Int64Ptr(1)},
		PriorityFactors: []string{"pace"},
	}

	assert.Equal(t, confidenceCap, computeConfidence(p))
}
