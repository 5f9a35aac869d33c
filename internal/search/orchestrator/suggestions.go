// internal/search/orchestrator/suggestions.go
package orchestrator

import (
	"fmt"

	"scout-search/internal/search/params"
)

// Suggestion thresholds on the unpaginated total.
const (
	fewResultsThreshold  = 5
	manyResultsThreshold = 50
)

// buildSuggestions applies the fixed refinement rules: a thin result set
// suggests broadening the most restrictive active filter, a flood suggests
// adding an unset one.
func buildSuggestions(p *params.SearchParameters, total int) []string {
	if total < fewResultsThreshold {
		if filter := mostRestrictiveFilter(p); filter != "" {
			return []string{fmt.Sprintf("few results found, consider broadening the %s filter", filter)}
		}
		return []string{"few results found, consider rephrasing the query"}
	}
	if total > manyResultsThreshold {
		if filter := firstUnsetFilter(p); filter != "" {
			return []string{fmt.Sprintf("many results found, consider filtering by %s", filter)}
		}
	}
	return nil
}

// mostRestrictiveFilter picks the active filter to broaden, in fixed
// precedence order from narrowest to widest in practice.
func mostRestrictiveFilter(p *params.SearchParameters) string {
	switch {
	case len(p.Clubs) > 0:
		return "club"
	case p.HasMarketValue():
		return "market value"
	case p.HasAge():
		return "age"
	case len(p.Leagues) > 0:
		return "league"
	case len(p.Nationalities) > 0:
		return "nationality"
	case len(p.Positions) > 0:
		return "position"
	}
	return ""
}

// firstUnsetFilter picks the filter to add, broad criteria first.
func firstUnsetFilter(p *params.SearchParameters) string {
	switch {
	case len(p.Positions) == 0:
		return "position"
	case !p.HasAge():
		return "age"
	case len(p.Leagues) == 0:
		return "league"
	case len(p.Nationalities) == 0:
		return "nationality"
	case !p.HasMarketValue():
		return "market value"
	}
	return ""
}
