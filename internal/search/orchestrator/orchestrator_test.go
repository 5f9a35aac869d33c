// internal/search/orchestrator/orchestrator_test.go
package orchestrator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	"scout-search/internal/common/config"
	commonerrors "scout-search/internal/common/errors"
	"scout-search/internal/common/logger"
	"scout-search/internal/models"
	"scout-search/internal/search/classifier"
	"scout-search/internal/search/explain"
	"scout-search/internal/search/params"
	"scout-search/internal/search/querybuilder"
	"scout-search/internal/search/scorer"
	"scout-search/internal/search/store"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestLogger(t *testing.T) logger.Logger {
	return logger.NewZapAdapter(zaptest.NewLogger(t))
}

type stubClassifier struct {
	result *classifier.StructuredResult
	err    error
}

func (s *stubClassifier) Classify(_ context.Context, _ string) (*classifier.StructuredResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type fakeStore struct {
	spec   *querybuilder.FilterSpec
	result *store.CandidateSet
	err    error
}

func (f *fakeStore) FetchCandidates(_ context.Context, spec *querybuilder.FilterSpec) (*store.CandidateSet, error) {
	f.spec = spec
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type recordingAudit struct {
	search  store.SearchAudit
	results []store.ResultAudit
	calls   int
	err     error
}

func (r *recordingAudit) Record(_ context.Context, search store.SearchAudit, results []store.ResultAudit) error {
	r.calls++
	r.search = search
	r.results = results
	return r.err
}

type eventSink struct {
	mu     sync.Mutex
	events []ProgressEvent
}

func (s *eventSink) collect(e ProgressEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *eventSink) stages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	stages := make([]string, len(s.events))
	for i, e := range s.events {
		stages[i] = e.Stage
	}
	return stages
}

func testPlayers() []models.Player {
	return []models.Player{
		{ID: "p1", Name: "Marco Rossi", Position: "CM", Age: 29, Nationality: "Italy", Goals: 3, Assists: 4, Appearances: 30},
		{ID: "p2", Name: "Gabriel Souza", Position: "ST", Age: 22, Nationality: "Brazil", Goals: 16, Assists: 5, Appearances: 30},
		{ID: "p3", Name: "Jan Kowalski", Position: "CF", Age: 24, Nationality: "Poland", Goals: 12, Assists: 6, Appearances: 28},
	}
}

func newTestOrchestrator(t *testing.T, cls classifier.Classifier, playerStore store.PlayerStore, audit store.AuditLogger) (*Orchestrator, *eventSink) {
	log := createTestLogger(t)

	cache := classifier.NewMemoryCache(24*time.Hour, time.Hour)
	t.Cleanup(cache.Close)
	classifierService := classifier.NewService(classifier.Config{
		MaxRetries:  1,
		BaseBackoff: time.Millisecond,
		CacheTTL:    24 * time.Hour,
	}, cls, cache, log)

	matchScorer := scorer.NewDefault()
	sink := &eventSink{}

	orch := New(
		classifierService,
		querybuilder.New(config.SearchConfig{MaxResults: 100}),
		playerStore,
		matchScorer,
		explain.NewService(matchScorer),
		audit,
		nil,
		log,
	).WithProgressSink(sink.collect)

	return orch, sink
}

// ==========================
// Pipeline Tests
// ==========================

func TestSearch_Success(t *testing.T) {
	cls := &stubClassifier{
		result: &classifier.StructuredResult{
			Positions: []string{"ST", "CF"},
			AgeMax:    params.IntPtr(25),
		},
	}
	playerStore := &fakeStore{result: &store.CandidateSet{Players: testPlayers(), Total: 12}}
	audit := &recordingAudit{}
	orch, sink := newTestOrchestrator(t, cls, playerStore, audit)

	response, err := orch.Search(context.Background(), Request{
		Query:  "young striker under 25",
		Caller: "scout-42",
	})

	assert.NoError(t, err)
	assert.NotEmpty(t, response.SearchID)
	assert.False(t, response.FallbackUsed)
	assert.Equal(t, 12, response.Total)
	assert.Equal(t, 1, response.Page)
	assert.Equal(t, params.DefaultPageSize, response.PageSize)
	assert.Len(t, response.Results, 3)

	// Relevance ordering: the exact-position young striker outranks the rest.
	assert.Equal(t, "p2", response.Results[0].Player.ID)
	assert.Equal(t, 1, response.Results[0].Rank)
	for i := 1; i < len(response.Results); i++ {
		assert.Equal(t, i+1, response.Results[i].Rank)
		assert.GreaterOrEqual(t,
			response.Results[i-1].Score.Percentage,
			response.Results[i].Score.Percentage)
	}

	// Every result carries an explanation.
	for _, r := range response.Results {
		assert.NotEmpty(t, r.Explanation.Summary)
	}

	assert.Equal(t, []string{
		StageStarted, StageClassifying, StageValidating, StagePersistenceQuery,
		StageExplanation, StageResults, StageCompleted,
	}, sink.stages())

	// Progress is monotonic and terminates at 100.
	last := -1
	for _, e := range sink.events {
		assert.GreaterOrEqual(t, e.Progress, last)
		last = e.Progress
	}
	assert.Equal(t, 100, last)

	// Audit captured the search and every ranked result.
	assert.Equal(t, 1, audit.calls)
	assert.Equal(t, response.SearchID, audit.search.SearchID)
	assert.Equal(t, "young striker under 25", audit.search.QueryText)
	assert.Equal(t, "scout-42", audit.search.Caller)
	assert.Len(t, audit.results, 3)
	assert.Equal(t, "p2", audit.results[0].CandidateID)
	assert.Equal(t, 1, audit.results[0].Rank)
}

func TestSearch_ClassifierDownDegradesToFallback(t *testing.T) {
	cls := &stubClassifier{err: commonerrors.NewClassifierFailedError(assert.AnError)}
	playerStore := &fakeStore{result: &store.CandidateSet{Players: testPlayers(), Total: 10}}
	orch, _ := newTestOrchestrator(t, cls, playerStore, &recordingAudit{})

	response, err := orch.Search(context.Background(), Request{Query: "young striker under 25"})

	assert.NoError(t, err)
	assert.True(t, response.FallbackUsed)
	assert.Equal(t, classifier.FallbackConfidence, response.Confidence)
	assert.Equal(t, []string{"ST", "CF"}, response.Parameters.Positions)
}

func TestSearch_StoreFailureSurfaces(t *testing.T) {
	cls := &stubClassifier{result: &classifier.StructuredResult{Positions: []string{"ST"}}}
	playerStore := &fakeStore{err: commonerrors.NewStoreQueryFailedError(assert.AnError)}
	orch, sink := newTestOrchestrator(t, cls, playerStore, &recordingAudit{})

	response, err := orch.Search(context.Background(), Request{Query: "any striker"})

	assert.Nil(t, response)
	var serr *commonerrors.StandardError
	assert.ErrorAs(t, err, &serr)
	assert.Equal(t, commonerrors.ErrCodeStoreQueryFailed, serr.Code)

	stages := sink.stages()
	assert.Equal(t, StageError, stages[len(stages)-1])

	// The terminal error event keeps the last progress value.
	events := sink.events
	assert.Equal(t, events[len(events)-2].Progress, events[len(events)-1].Progress)
}

func TestSearch_AuditFailureDoesNotFailSearch(t *testing.T) {
	cls := &stubClassifier{result: &classifier.StructuredResult{Positions: []string{"ST"}}}
	playerStore := &fakeStore{result: &store.CandidateSet{Players: testPlayers(), Total: 8}}
	audit := &recordingAudit{err: commonerrors.NewAuditLogFailedError(assert.AnError)}
	orch, sink := newTestOrchestrator(t, cls, playerStore, audit)

	response, err := orch.Search(context.Background(), Request{Query: "striker"})

	assert.NoError(t, err)
	assert.NotNil(t, response)
	assert.Equal(t, 1, audit.calls)

	stages := sink.stages()
	assert.Equal(t, StageCompleted, stages[len(stages)-1])
}

func TestSearch_NonRelevanceSortKeepsStoreOrder(t *testing.T) {
	cls := &stubClassifier{result: &classifier.StructuredResult{Positions: []string{"ST"}}}
	playerStore := &fakeStore{result: &store.CandidateSet{Players: testPlayers(), Total: 3}}
	orch, _ := newTestOrchestrator(t, cls, playerStore, &recordingAudit{})

	// The classifier never sets a sort, so exercise the path through a direct
	// scoreAndExplain call with an explicit field sort.
	p := &params.SearchParameters{
		Positions: []string{"ST"},
		Sort:      params.Sort{Field: "age", Direction: "asc"},
	}
	results := orch.scoreAndExplain(testPlayers(), p, 3)

	assert.Equal(t, "p1", results[0].Player.ID)
	assert.Equal(t, "p2", results[1].Player.ID)
	assert.Equal(t, "p3", results[2].Player.ID)
	for i, r := range results {
		assert.Equal(t, i+1, r.Rank)
	}
}

// ==========================
// Suggestion Tests
// ==========================

func TestBuildSuggestions(t *testing.T) {
	tests := []struct {
		name     string
		p        *params.SearchParameters
		total    int
		expected []string
	}{
		{
			name:     "few results broadens the most restrictive filter",
			p:        &params.SearchParameters{Positions: []string{"ST"}, Leagues: []string{"Serie A"}},
			total:    2,
			expected: []string{"few results found, consider broadening the league filter"},
		},
		{
			name:     "club outranks every other filter for broadening",
			p:        &params.SearchParameters{Clubs: []string{"Ajax"}, Positions: []string{"ST"}},
			total:    0,
			expected: []string{"few results found, consider broadening the club filter"},
		},
		{
			name:     "few results with no filters suggests rephrasing",
			p:        &params.SearchParameters{},
			total:    1,
			expected: []string{"few results found, consider rephrasing the query"},
		},
		{
			name:     "many results suggests the first unset filter",
			p:        &params.SearchParameters{Positions: []string{"ST"}},
			total:    80,
			expected: []string{"many results found, consider filtering by age"},
		},
		{
			name:     "many results with nothing set suggests position first",
			p:        &params.SearchParameters{},
			total:    200,
			expected: []string{"many results found, consider filtering by position"},
		},
		{
			name:     "normal result count needs no suggestion",
			p:        &params.SearchParameters{Positions: []string{"ST"}},
			total:    20,
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, buildSuggestions(tt.p, tt.total))
		})
	}
}

// ==========================
// Event Emitter Tests
// ==========================

func TestEmitter_MonotonicProgress(t *testing.T) {
	sink := &eventSink{}
	e := newEmitter("search-1", sink.collect)

	e.emit(StageStarted, 0, nil)
	e.emit(StageClassifying, 10, nil)
	e.emit(StageError, 0, nil)

	assert.Equal(t, []string{StageStarted, StageClassifying, StageError}, sink.stages())
	assert.Equal(t, 10, sink.events[2].Progress)
}

func TestEmitter_TerminalEventStopsEmission(t *testing.T) {
	sink := &eventSink{}
	e := newEmitter("search-1", sink.collect)

	e.emit(StageCompleted, 100, nil)
	e.emit(StageResults, 85, nil)

	assert.Len(t, sink.events, 1)
	assert.Equal(t, StageCompleted, sink.events[0].Stage)
}

func TestEmitter_NilSinkIsNoop(t *testing.T) {
	e := newEmitter("search-1", nil)
	e.emit(StageStarted, 0, nil)
	e.emit(StageCompleted, 100, nil)
}
