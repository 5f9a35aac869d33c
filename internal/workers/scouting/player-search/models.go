// internal/workers/scouting/player-search/models.go
package playersearch

import (
	"scout-search/internal/search/orchestrator"
)

type Input struct {
	Query  string `json:"query"`
	Caller string `json:"caller,omitempty"`
}

type Output struct {
	SearchID         string                       `json:"searchId"`
	Results          []orchestrator.RankedResult  `json:"results"`
	Total            int                          `json:"total"`
	Page             int                          `json:"page"`
	PageSize         int                          `json:"pageSize"`
	Confidence       float64                      `json:"confidence"`
	FallbackUsed     bool                         `json:"fallbackUsed"`
	Suggestions      []string                     `json:"suggestions,omitempty"`
	ProcessingTimeMs int64                        `json:"processingTimeMs"`
}
