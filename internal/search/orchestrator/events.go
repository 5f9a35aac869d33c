// internal/search/orchestrator/events.go
package orchestrator

import (
	"sync"
	"time"
)

// Pipeline stage names, emitted in this order. An error event terminates the
// sequence for its search id.
const (
	StageStarted          = "started"
	StageClassifying      = "classifying"
	StageValidating       = "validating"
	StagePersistenceQuery = "persistence-query"
	StageExplanation      = "explanation-generation"
	StageResults          = "results"
	StageCompleted        = "completed"
	StageError            = "error"
)

// Stage progress percentages.
const (
	progressStarted     = 0
	progressClassifying = 10
	progressValidating  = 25
	progressQuery       = 40
	progressExplanation = 60
	progressResults     = 85
	progressCompleted   = 100
)

// ProgressEvent is one stage notification for a search.
type ProgressEvent struct {
	SearchID  string                 `json:"searchId"`
	Stage     string                 `json:"stage"`
	Progress  int                    `json:"progress"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// ProgressSink receives stage events. A nil sink disables event emission.
type ProgressSink func(ProgressEvent)

// emitter enforces per-search event ordering: progress never decreases and
// nothing follows a terminal event.
type emitter struct {
	mu       sync.Mutex
	searchID string
	sink     ProgressSink
	progress int
	done     bool
}

func newEmitter(searchID string, sink ProgressSink) *emitter {
	return &emitter{searchID: searchID, sink: sink}
}

func (e *emitter) emit(stage string, progress int, payload map[string]interface{}) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.done || e.sink == nil {
		return
	}
	if progress < e.progress {
		progress = e.progress
	}
	e.progress = progress
	if stage == StageCompleted || stage == StageError {
		e.done = true
	}

	e.sink(ProgressEvent{
		SearchID:  e.searchID,
		Stage:     stage,
		Progress:  progress,
		Payload:   payload,
		Timestamp: time.Now(),
	})
}
