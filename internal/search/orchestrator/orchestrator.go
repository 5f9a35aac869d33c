// internal/search/orchestrator/orchestrator.go
package orchestrator

import (
	"context"
	"sort"
	"time"

	"scout-search/internal/common/logger"
	"scout-search/internal/common/metrics"
	"scout-search/internal/common/observability"
	"scout-search/internal/models"
	"scout-search/internal/search/classifier"
	"scout-search/internal/search/explain"
	"scout-search/internal/search/params"
	"scout-search/internal/search/querybuilder"
	"scout-search/internal/search/scorer"
	"scout-search/internal/search/store"

	"github.com/google/uuid"
)

// Request is one free-text search invocation.
type Request struct {
	Query  string `json:"query"`
	Caller string `json:"caller,omitempty"`
}

// RankedResult pairs a candidate with its score and explanation for one
// response. Rank is 1-based.
type RankedResult struct {
	Player      models.Player            `json:"player"`
	Rank        int                      `json:"rank"`
	Score       scorer.DetailedScore     `json:"score"`
	Explanation explain.MatchExplanation `json:"explanation"`
}

// Response is the assembled search result.
type Response struct {
	SearchID         string                  `json:"searchId"`
	Parameters       params.SearchParameters `json:"parameters"`
	Confidence       float64                 `json:"confidence"`
	FallbackUsed     bool                    `json:"fallbackUsed"`
	CacheHit         bool                    `json:"cacheHit"`
	Results          []RankedResult          `json:"results"`
	Total            int                     `json:"total"`
	Page             int                     `json:"page"`
	PageSize         int                     `json:"pageSize"`
	Suggestions      []string                `json:"suggestions,omitempty"`
	ProcessingTimeMs int64                   `json:"processingTimeMs"`
}

// Orchestrator sequences the search pipeline. Every stage that can degrade
// does so before reaching it; the only failures surfaced to the caller are
// request validation and an unrecoverable candidate store error.
type Orchestrator struct {
	classifier *classifier.Service
	builder    *querybuilder.Builder
	store      store.PlayerStore
	scorer     *scorer.Scorer
	explainer  *explain.Service
	audit      store.AuditLogger
	obs        *observability.Observability
	logger     logger.Logger
	sink       ProgressSink
}

func New(
	cls *classifier.Service,
	builder *querybuilder.Builder,
	playerStore store.PlayerStore,
	sc *scorer.Scorer,
	explainer *explain.Service,
	audit store.AuditLogger,
	obs *observability.Observability,
	log logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		classifier: cls,
		builder:    builder,
		store:      playerStore,
		scorer:     sc,
		explainer:  explainer,
		audit:      audit,
		obs:        obs,
		logger:     log.WithFields(map[string]interface{}{"component": "search-orchestrator"}),
	}
}

// WithProgressSink attaches a stage-event consumer.
func (o *Orchestrator) WithProgressSink(sink ProgressSink) *Orchestrator {
	o.sink = sink
	return o
}

// Search runs the full pipeline for one free-text query.
func (o *Orchestrator) Search(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	searchID := uuid.NewString()
	events := newEmitter(searchID, o.sink)

	log := o.logger.WithFields(map[string]interface{}{"search_id": searchID})
	log.Info("search started", map[string]interface{}{"query": req.Query})

	events.emit(StageStarted, progressStarted, map[string]interface{}{"query": req.Query})

	// Classification never fails; it degrades to the fallback parse.
	events.emit(StageClassifying, progressClassifying, nil)
	stageStart := time.Now()
	parsed := o.classifier.Parse(ctx, req.Query)
	o.recordStage(ctx, StageClassifying, stageStart)

	events.emit(StageValidating, progressValidating, map[string]interface{}{
		"confidence":   parsed.Confidence,
		"fallbackUsed": parsed.FallbackUsed,
	})
	stageStart = time.Now()
	parameters := parsed.Parameters
	params.Sanitize(&parameters)
	if verr := params.Validate(&parameters); verr != nil {
		o.recordStage(ctx, StageValidating, stageStart)
		o.finish(ctx, events, log, "validation_failed", start, verr.Messages())
		return nil, verr
	}
	params.ApplyDefaults(&parameters)
	o.recordStage(ctx, StageValidating, stageStart)

	events.emit(StagePersistenceQuery, progressQuery, map[string]interface{}{
		"activeFilters": parameters.ActiveFilterCount(),
	})
	stageStart = time.Now()
	spec := o.builder.Build(&parameters)
	candidates, err := o.store.FetchCandidates(ctx, spec)
	o.recordStage(ctx, StagePersistenceQuery, stageStart)
	if err != nil {
		log.Error("candidate fetch failed", map[string]interface{}{"error": err.Error()})
		o.finish(ctx, events, log, "store_failed", start, map[string]interface{}{"error": err.Error()})
		return nil, err
	}

	events.emit(StageExplanation, progressExplanation, map[string]interface{}{
		"candidates": len(candidates.Players),
	})
	stageStart = time.Now()
	results := o.scoreAndExplain(candidates.Players, &parameters, candidates.Total)
	o.recordStage(ctx, StageExplanation, stageStart)

	events.emit(StageResults, progressResults, map[string]interface{}{
		"returned": len(results),
		"total":    candidates.Total,
	})

	response := &Response{
		SearchID:         searchID,
		Parameters:       parameters,
		Confidence:       parsed.Confidence,
		FallbackUsed:     parsed.FallbackUsed,
		CacheHit:         parsed.CacheHit,
		Results:          results,
		Total:            candidates.Total,
		Page:             spec.Page,
		PageSize:         spec.PageSize,
		Suggestions:      buildSuggestions(&parameters, candidates.Total),
		ProcessingTimeMs: time.Since(start).Milliseconds(),
	}

	o.recordAudit(ctx, log, searchID, req, &parameters, results)

	events.emit(StageCompleted, progressCompleted, map[string]interface{}{
		"processingTimeMs": response.ProcessingTimeMs,
	})
	metrics.SearchesTotal.WithLabelValues("success").Inc()
	metrics.SearchDuration.WithLabelValues("success").Observe(time.Since(start).Seconds())
	if o.obs != nil {
		o.obs.RecordSearchProcessed(ctx, "success")
	}
	log.Info("search completed", map[string]interface{}{
		"results":            len(results),
		"total":              candidates.Total,
		"processing_time_ms": response.ProcessingTimeMs,
	})

	return response, nil
}

// scoreAndExplain scores every candidate, orders by descending match when the
// caller asked for relevance, and attaches explanations with final ranks.
func (o *Orchestrator) scoreAndExplain(players []models.Player, p *params.SearchParameters, total int) []RankedResult {
	results := make([]RankedResult, 0, len(players))
	for i := range players {
		player := players[i]
		detailed := o.scorer.Score(&player, p)
		metrics.CandidatesScored.Inc()
		results = append(results, RankedResult{
			Player: player,
			Score:  detailed,
		})
	}

	// Non-relevance sorts keep the store's order.
	if p.Sort.Field == "" || p.Sort.Field == "relevance" {
		sort.SliceStable(results, func(i, j int) bool {
			if results[i].Score.Percentage != results[j].Score.Percentage {
				if p.Sort.Direction == "asc" {
					return results[i].Score.Percentage < results[j].Score.Percentage
				}
				return results[i].Score.Percentage > results[j].Score.Percentage
			}
			return results[i].Player.Name < results[j].Player.Name
		})
	}

	for i := range results {
		results[i].Rank = i + 1
		results[i].Explanation = o.explainer.Explain(&results[i].Player, p, explain.Context{
			Rank:         i + 1,
			TotalResults: total,
		})
	}
	return results
}

// recordAudit writes the audit trail best-effort. A failed write is logged
// and swallowed; it never fails the search.
func (o *Orchestrator) recordAudit(ctx context.Context, log logger.Logger, searchID string, req Request, p *params.SearchParameters, results []RankedResult) {
	if o.audit == nil {
		return
	}

	resultRecords := make([]store.ResultAudit, 0, len(results))
	for _, r := range results {
		resultRecords = append(resultRecords, store.ResultAudit{
			CandidateID: r.Player.ID,
			MatchScore:  r.Explanation.StrengthScore,
			Rank:        r.Rank,
		})
	}

	err := o.audit.Record(ctx, store.SearchAudit{
		SearchID:   searchID,
		QueryText:  req.Query,
		Parameters: *p,
		Caller:     req.Caller,
		Timestamp:  time.Now().UTC(),
	}, resultRecords)
	if err != nil {
		log.Warn("audit log write failed", map[string]interface{}{"error": err.Error()})
	}
}

func (o *Orchestrator) finish(ctx context.Context, events *emitter, log logger.Logger, status string, start time.Time, payload interface{}) {
	// Progress 0 is clamped up to the last emitted value.
	events.emit(StageError, 0, map[string]interface{}{"reason": status, "detail": payload})
	metrics.SearchesTotal.WithLabelValues(status).Inc()
	metrics.SearchDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
	if o.obs != nil {
		o.obs.RecordSearchProcessed(ctx, status)
	}
	log.Warn("search aborted", map[string]interface{}{"status": status})
}

func (o *Orchestrator) recordStage(ctx context.Context, stage string, start time.Time) {
	if o.obs != nil {
		o.obs.RecordStageDuration(ctx, stage, time.Since(start))
	}
}
