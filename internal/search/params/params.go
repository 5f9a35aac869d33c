// internal/search/params/params.go
package params

// AgeRange bounds candidate age. Nil means the bound was not requested.
type AgeRange struct {
	Min *int `json:"min,omitempty"`
	Max *int `json:"max,omitempty"`
}

// ValueRange bounds market value in currency minor units.
type ValueRange struct {
	Min *int64 `json:"min,omitempty"`
	Max *int64 `json:"max,omitempty"`
}

// HeightRange bounds candidate height in centimeters.
type HeightRange struct {
	Min *int `json:"min,omitempty"`
	Max *int `json:"max,omitempty"`
}

// Pagination for the persistence collaborator.
type Pagination struct {
	Page int `json:"page"`
	Size int `json:"size"`
}

// Sort for the persistence collaborator.
type Sort struct {
	Field     string `json:"field"`
	Direction string `json:"direction"`
}

// SearchParameters is the canonical shape of a scouting search request.
// Immutable after validation; never persisted except as a JSON audit blob.
type SearchParameters struct {
	Positions       []string   `json:"positions,omitempty"`
	Age             AgeRange   `json:"age,omitempty"`
	Nationalities   []string   `json:"nationalities,omitempty"`
	Leagues         []string   `json:"leagues,omitempty"`
	Clubs           []string   `json:"clubs,omitempty"`
	MarketValue     ValueRange `json:"marketValue,omitempty"`
	Height          HeightRange `json:"height,omitempty"`
	TransferStatus  string     `json:"transferStatus,omitempty"`
	PreferredFoot   string     `json:"preferredFoot,omitempty"`
	Keywords        []string   `json:"keywords,omitempty"`
	OriginalQuery   string     `json:"originalQuery,omitempty"`
	ParsedIntent    string     `json:"parsedIntent,omitempty"`
	PriorityFactors []string   `json:"priorityFactors,omitempty"`
	Confidence      float64    `json:"confidence,omitempty"`
	Sort            Sort       `json:"sort,omitempty"`
	Pagination      Pagination `json:"pagination,omitempty"`
}

// HasAge reports whether any age bound was requested.
func (p *SearchParameters) HasAge() bool {
	return p.Age.Min != nil || p.Age.Max != nil
}

// HasMarketValue reports whether any market value bound was requested.
func (p *SearchParameters) HasMarketValue() bool {
	return p.MarketValue.Min != nil || p.MarketValue.Max != nil
}

// ActiveFilterCount counts the criteria the caller actually constrained.
func (p *SearchParameters) ActiveFilterCount() int {
	count := 0
	if len(p.Positions) > 0 {
		count++
	}
	if p.HasAge() {
		count++
	}
	if len(p.Nationalities) > 0 {
		count++
	}
	if len(p.Leagues) > 0 {
		count++
	}
	if len(p.Clubs) > 0 {
		count++
	}
	if p.HasMarketValue() {
		count++
	}
	if p.Height.Min != nil || p.Height.Max != nil {
		count++
	}
	if p.TransferStatus != "" && p.TransferStatus != "any" {
		count++
	}
	return count
}

// Clone returns a deep copy. Parameters cached across searches must never
// share backing arrays with a caller: Sanitize rewrites slice elements in
// place, so every consumer mutates its own copy.
func (p *SearchParameters) Clone() SearchParameters {
	c := *p
	c.Positions = cloneStrings(p.Positions)
	c.Nationalities = cloneStrings(p.Nationalities)
	c.Leagues = cloneStrings(p.Leagues)
	c.Clubs = cloneStrings(p.Clubs)
	c.Keywords = cloneStrings(p.Keywords)
	c.PriorityFactors = cloneStrings(p.PriorityFactors)
	c.Age.Min = cloneInt(p.Age.Min)
	c.Age.Max = cloneInt(p.Age.Max)
	c.Height.Min = cloneInt(p.Height.Min)
	c.Height.Max = cloneInt(p.Height.Max)
	c.MarketValue.Min = cloneInt64(p.MarketValue.Min)
	c.MarketValue.Max = cloneInt64(p.MarketValue.Max)
	return c
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneInt64(v *int64) *int64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// IntPtr returns a pointer to v. Convenience for building ranges.
func IntPtr(v int) *int { return &v }

// Int64Ptr returns a pointer to v.
func Int64Ptr(v int64) *int64 { return &v }
