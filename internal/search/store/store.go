// internal/search/store/store.go
package store

import (
	"context"

	"scout-search/internal/models"
	"scout-search/internal/search/querybuilder"
)

// CandidateSet is one page of candidates plus the unpaginated total.
type CandidateSet struct {
	Players []models.Player `json:"players"`
	Total   int             `json:"total"`
}

// PlayerStore fetches candidate records for a filter spec.
type PlayerStore interface {
	FetchCandidates(ctx context.Context, spec *querybuilder.FilterSpec) (*CandidateSet, error)
}
