// internal/search/querybuilder/querybuilder.go
package querybuilder

import (
	"scout-search/internal/common/config"
	"scout-search/internal/search/params"
)

// FilterSpec is the declarative query handed to a persistence adapter. It
// mirrors SearchParameters plus pagination, sort, and internal flags; the
// adapter owns the translation into an actual query.
type FilterSpec struct {
	Positions      []string `json:"positions,omitempty"`
	AgeMin         *int     `json:"ageMin,omitempty"`
	AgeMax         *int     `json:"ageMax,omitempty"`
	Nationalities  []string `json:"nationalities,omitempty"`
	Leagues        []string `json:"leagues,omitempty"`
	Clubs          []string `json:"clubs,omitempty"`
	MarketValueMin *int64   `json:"marketValueMin,omitempty"`
	MarketValueMax *int64   `json:"marketValueMax,omitempty"`
	HeightMin      *int     `json:"heightMin,omitempty"`
	HeightMax      *int     `json:"heightMax,omitempty"`
	TransferStatus string   `json:"transferStatus,omitempty"`
	PreferredFoot  string   `json:"preferredFoot,omitempty"`
	Keywords       []string `json:"keywords,omitempty"`

	Page          int    `json:"page"`
	PageSize      int    `json:"pageSize"`
	SortBy        string `json:"sortBy"`
	SortDirection string `json:"sortDirection"`

	DataQualityThreshold float64 `json:"dataQualityThreshold"`
	MaxResults           int     `json:"maxResults"`
	IncludeStats         bool    `json:"includeStats"`
}

// Offset returns the zero-based row offset for the requested page.
func (f *FilterSpec) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}

// Builder translates validated parameters into filter specs. Mechanical
// translation only; all judgement lives upstream in validation and scoring.
type Builder struct {
	maxResults           int
	dataQualityThreshold float64
}

func New(cfg config.SearchConfig) *Builder {
	return &Builder{
		maxResults:           cfg.MaxResults,
		dataQualityThreshold: cfg.DataQualityThreshold,
	}
}

// Build converts sanitized parameters into a FilterSpec. The page size is
// capped by the configured result ceiling.
func (b *Builder) Build(p *params.SearchParameters) *FilterSpec {
	spec := &FilterSpec{
		Positions:      p.Positions,
		AgeMin:         p.Age.Min,
		AgeMax:         p.Age.Max,
		Nationalities:  p.Nationalities,
		Leagues:        p.Leagues,
		Clubs:          p.Clubs,
		MarketValueMin: p.MarketValue.Min,
		MarketValueMax: p.MarketValue.Max,
		HeightMin:      p.Height.Min,
		HeightMax:      p.Height.Max,
		TransferStatus: p.TransferStatus,
		PreferredFoot:  p.PreferredFoot,
		Keywords:       p.Keywords,

		Page:          p.Pagination.Page,
		PageSize:      p.Pagination.Size,
		SortBy:        p.Sort.Field,
		SortDirection: p.Sort.Direction,

		DataQualityThreshold: b.dataQualityThreshold,
		MaxResults:           b.maxResults,
		IncludeStats:         true,
	}

	if spec.Page < 1 {
		spec.Page = 1
	}
	if spec.PageSize < 1 {
		spec.PageSize = params.DefaultPageSize
	}
	if b.maxResults > 0 && spec.PageSize > b.maxResults {
		spec.PageSize = b.maxResults
	}

	return spec
}
