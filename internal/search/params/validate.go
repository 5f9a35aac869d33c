// internal/search/params/validate.go
package params

import (
	"fmt"

	commonerrors "scout-search/internal/common/errors"
	"scout-search/internal/models"
)

// Bounds on array-valued fields.
const (
	MaxPositions     = 5
	MaxNationalities = 10
	MaxLeagues       = 10
	MaxClubs         = 20
	MaxKeywords      = 20
	MaxPageSize      = 100
	DefaultPageSize  = 20
)

// Age bounds for professional players.
const (
	MinPlayerAge = 16
	MaxPlayerAge = 45
)

// Validate checks a sanitized request against the schema rules. A nil return
// means the parameters are valid. Sanitize should run first; Validate only
// rejects, it never mutates.
func Validate(p *SearchParameters) *commonerrors.ValidationError {
	verr := &commonerrors.ValidationError{}

	if len(p.Positions) > MaxPositions {
		verr.Add("positions", fmt.Sprintf("at most %d positions allowed", MaxPositions))
	}
	for _, pos := range p.Positions {
		if !models.ValidPositions[pos] {
			verr.Add("positions", fmt.Sprintf("unknown position code '%s'", pos))
		}
	}

	if p.Age.Min != nil && (*p.Age.Min < MinPlayerAge || *p.Age.Min > MaxPlayerAge) {
		verr.Add("age.min", fmt.Sprintf("must be between %d and %d", MinPlayerAge, MaxPlayerAge))
	}
	if p.Age.Max != nil && (*p.Age.Max < MinPlayerAge || *p.Age.Max > MaxPlayerAge) {
		verr.Add("age.max", fmt.Sprintf("must be between %d and %d", MinPlayerAge, MaxPlayerAge))
	}
	if p.Age.Min != nil && p.Age.Max != nil && *p.Age.Min > *p.Age.Max {
		verr.Add("age", fmt.Sprintf("min (%d) must not exceed max (%d)", *p.Age.Min, *p.Age.Max))
	}

	if len(p.Nationalities) > MaxNationalities {
		verr.Add("nationalities", fmt.Sprintf("at most %d nationalities allowed", MaxNationalities))
	}

	if len(p.Leagues) > MaxLeagues {
		verr.Add("leagues", fmt.Sprintf("at most %d leagues allowed", MaxLeagues))
	}
	for _, lg := range p.Leagues {
		if !models.ValidLeagues[lg] {
			verr.Add("leagues", fmt.Sprintf("unknown league '%s'", lg))
		}
	}

	if len(p.Clubs) > MaxClubs {
		verr.Add("clubs", fmt.Sprintf("at most %d clubs allowed", MaxClubs))
	}

	if p.MarketValue.Min != nil && *p.MarketValue.Min < 0 {
		verr.Add("marketValue.min", "must not be negative")
	}
	if p.MarketValue.Max != nil && *p.MarketValue.Max < 0 {
		verr.Add("marketValue.max", "must not be negative")
	}
	if p.MarketValue.Min != nil && p.MarketValue.Max != nil && *p.MarketValue.Min > *p.MarketValue.Max {
		verr.Add("marketValue", fmt.Sprintf("min (%d) must not exceed max (%d)", *p.MarketValue.Min, *p.MarketValue.Max))
	}

	if p.Height.Min != nil && p.Height.Max != nil && *p.Height.Min > *p.Height.Max {
		verr.Add("height", fmt.Sprintf("min (%d) must not exceed max (%d)", *p.Height.Min, *p.Height.Max))
	}

	if p.TransferStatus != "" && !models.ValidTransferStatus[p.TransferStatus] {
		verr.Add("transferStatus", fmt.Sprintf("must be one of available, contract_ending, any; got '%s'", p.TransferStatus))
	}

	if p.PreferredFoot != "" && !models.ValidPreferredFoot[p.PreferredFoot] {
		verr.Add("preferredFoot", fmt.Sprintf("must be one of left, right, both; got '%s'", p.PreferredFoot))
	}

	if len(p.Keywords) > MaxKeywords {
		verr.Add("keywords", fmt.Sprintf("at most %d keywords allowed", MaxKeywords))
	}

	if p.Sort.Field != "" && !models.ValidSortFields[p.Sort.Field] {
		verr.Add("sort.field", fmt.Sprintf("unknown sort field '%s'", p.Sort.Field))
	}
	if p.Sort.Direction != "" && !models.ValidSortDirections[p.Sort.Direction] {
		verr.Add("sort.direction", fmt.Sprintf("must be asc or desc; got '%s'", p.Sort.Direction))
	}

	if p.Pagination.Page < 0 {
		verr.Add("pagination.page", "must be >= 1")
	}
	if p.Pagination.Size < 0 || p.Pagination.Size > MaxPageSize {
		verr.Add("pagination.size", fmt.Sprintf("must be between 1 and %d", MaxPageSize))
	}

	if verr.HasErrors() {
		return verr
	}
	return nil
}

// ApplyDefaults fills pagination and sort defaults after validation.
func ApplyDefaults(p *SearchParameters) {
	if p.Pagination.Page == 0 {
		p.Pagination.Page = 1
	}
	if p.Pagination.Size == 0 {
		p.Pagination.Size = DefaultPageSize
	}
	if p.Sort.Field == "" {
		p.Sort.Field = "relevance"
	}
	if p.Sort.Direction == "" {
		p.Sort.Direction = "desc"
	}
	if p.TransferStatus == "" {
		p.TransferStatus = models.TransferAny
	}
}
