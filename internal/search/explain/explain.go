// internal/search/explain/explain.go
package explain

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"scout-search/internal/models"
	"scout-search/internal/search/params"
	"scout-search/internal/search/scorer"
)

// MatchStrength is the qualitative label for one criterion.
type MatchStrength string

const (
	StrengthPerfect MatchStrength = "perfect"
	StrengthGood    MatchStrength = "good"
	StrengthPartial MatchStrength = "partial"
	StrengthWeak    MatchStrength = "weak"
)

// strengthRank orders strengths for sorting and maps each to its fixed
// display weight. The display weight never feeds the aggregate score.
var strengthRank = map[MatchStrength]int{
	StrengthPerfect: 100,
	StrengthGood:    80,
	StrengthPartial: 60,
	StrengthWeak:    40,
}

// Strength tier thresholds on score/maxScore.
const (
	perfectThreshold = 0.9
	goodThreshold    = 0.7
	partialThreshold = 0.4
)

// Summary tier thresholds on the aggregate percentage.
const (
	excellentMatchPct = 80
	goodMatchPct      = 60
	partialMatchPct   = 40
)

// MatchedCriterion is one criterion-level line of the explanation.
type MatchedCriterion struct {
	Criterion      string        `json:"criterion"`
	SearchValue    string        `json:"searchValue"`
	CandidateValue string        `json:"candidateValue"`
	MatchStrength  MatchStrength `json:"matchStrength"`
	Explanation    string        `json:"explanation"`
}

// DisplayWeight returns the fixed numeric weight for the strength label.
func (m *MatchedCriterion) DisplayWeight() int {
	return strengthRank[m.MatchStrength]
}

// Context carries result-level information into the explanation.
type Context struct {
	Rank         int
	TotalResults int
}

// MatchExplanation is the human-readable account of one candidate's match.
// Attached to a candidate only for the lifetime of a single search response.
type MatchExplanation struct {
	Summary           string             `json:"summary"`
	MatchedCriteria   []MatchedCriterion `json:"matchedCriteria"`
	StrengthScore     int                `json:"strengthScore"`
	PotentialConcerns []string           `json:"potentialConcerns"`
	AdditionalContext string             `json:"additionalContext"`
}

// Concern thresholds.
const (
	concernWeightFloor    = 10
	concernAgeOverYears   = 3
	concernAgeUnderYears  = 2
	concernValueRatio     = 1.5
	concernMinAppearances = 10
)

// Service derives explanations from the scorer's breakdown. Pure and
// idempotent for identical input.
type Service struct {
	scorer *scorer.Scorer
	now    func() time.Time
}

func NewService(sc *scorer.Scorer) *Service {
	return &Service{
		scorer: sc,
		now:    time.Now,
	}
}

// Explain builds a MatchExplanation for one candidate. It never fails: any
// internal problem degrades to a valid neutral explanation.
func (s *Service) Explain(candidate *models.Player, p *params.SearchParameters, ctx Context) (result MatchExplanation) {
	defer func() {
		if r := recover(); r != nil {
			result = s.degraded(candidate)
		}
	}()

	if candidate == nil || p == nil {
		return s.degraded(candidate)
	}

	detailed := s.scorer.Score(candidate, p)

	result.StrengthScore = clampScore(int(math.Round(detailed.Percentage)))
	result.MatchedCriteria = s.matchedCriteria(candidate, p, detailed)
	result.Summary = s.summary(candidate, detailed)
	result.PotentialConcerns = s.concerns(candidate, p, detailed)
	result.AdditionalContext = s.additionalContext(candidate, ctx)
	return result
}

func (s *Service) degraded(candidate *models.Player) MatchExplanation {
	name := "this candidate"
	if candidate != nil && candidate.Name != "" {
		name = candidate.Name
	}
	return MatchExplanation{
		Summary:           fmt.Sprintf("%s could not be fully analyzed", name),
		MatchedCriteria:   []MatchedCriterion{},
		StrengthScore:     50,
		PotentialConcerns: []string{"unable to generate detailed analysis"},
	}
}

// matchedCriteria keeps criteria with score > 0, ordered by descending
// strength.
func (s *Service) matchedCriteria(candidate *models.Player, p *params.SearchParameters, detailed scorer.DetailedScore) []MatchedCriterion {
	matched := make([]MatchedCriterion, 0, len(detailed.Breakdown))
	for _, row := range detailed.Breakdown {
		if row.Score <= 0 || row.MaxScore <= 0 {
			continue
		}
		matched = append(matched, MatchedCriterion{
			Criterion:      row.Criterion,
			SearchValue:    searchValue(row.Criterion, p),
			CandidateValue: candidateValue(row.Criterion, candidate),
			MatchStrength:  strengthFor(row.Score / row.MaxScore),
			Explanation:    row.Explanation,
		})
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return strengthRank[matched[i].MatchStrength] > strengthRank[matched[j].MatchStrength]
	})
	return matched
}

func (s *Service) summary(candidate *models.Player, detailed scorer.DetailedScore) string {
	name := candidate.Name
	if name == "" {
		name = "The candidate"
	}

	var tier string
	switch {
	case detailed.Percentage >= excellentMatchPct:
		tier = "is an excellent match"
	case detailed.Percentage >= goodMatchPct:
		tier = "is a good match"
	case detailed.Percentage >= partialMatchPct:
		tier = "partially matches"
	default:
		tier = "shows limited alignment with"
	}

	summary := fmt.Sprintf("%s %s the search criteria", name, tier)

	var highlights []string
	for _, row := range detailed.Breakdown {
		if row.MaxScore > 0 && row.Score >= row.MaxScore*goodThreshold {
			highlights = append(highlights, row.Criterion)
		}
		if len(highlights) == 3 {
			break
		}
	}
	if len(highlights) > 0 {
		summary += ", with strong " + strings.Join(highlights, ", ")
	}
	return summary
}

func (s *Service) concerns(candidate *models.Player, p *params.SearchParameters, detailed scorer.DetailedScore) []string {
	var concerns []string

	for _, row := range detailed.Breakdown {
		if row.Score == 0 && row.Weight >= concernWeightFloor {
			concerns = append(concerns, fmt.Sprintf("no %s match: %s", row.Criterion, row.Explanation))
		}
	}

	if candidate.Age > 0 {
		if p.Age.Max != nil && candidate.Age > *p.Age.Max+concernAgeOverYears {
			concerns = append(concerns, fmt.Sprintf("age %d is well above the requested maximum of %d", candidate.Age, *p.Age.Max))
		}
		if p.Age.Min != nil && candidate.Age < *p.Age.Min-concernAgeUnderYears {
			concerns = append(concerns, fmt.Sprintf("age %d is well below the requested minimum of %d", candidate.Age, *p.Age.Min))
		}
	}

	if p.MarketValue.Max != nil && candidate.MarketValue > 0 &&
		float64(candidate.MarketValue) > float64(*p.MarketValue.Max)*concernValueRatio {
		concerns = append(concerns, "market value significantly exceeds the requested budget")
	}

	if candidate.Appearances < concernMinAppearances {
		concerns = append(concerns, fmt.Sprintf("only %d appearances this season, limited playing-time signal", candidate.Appearances))
	}

	return concerns
}

func (s *Service) additionalContext(candidate *models.Player, ctx Context) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("Season: %d goals and %d assists in %d appearances.",
		candidate.Goals, candidate.Assists, candidate.Appearances))

	if candidate.ContractExpiry != nil {
		months := int(candidate.ContractExpiry.Sub(s.now()).Hours() / (24 * 30))
		if months >= 0 && months < 12 {
			parts = append(parts, fmt.Sprintf("Contract expires in %d months, transfer window opportunity.", months))
		}
	}

	if candidate.League != "" {
		parts = append(parts, fmt.Sprintf("Currently playing in %s.", candidate.League))
	}

	if ctx.Rank > 0 && ctx.Rank <= 5 {
		parts = append(parts, fmt.Sprintf("Ranked #%d of %d results for this search.", ctx.Rank, ctx.TotalResults))
	}

	return strings.Join(parts, " ")
}

func strengthFor(ratio float64) MatchStrength {
	switch {
	case ratio >= perfectThreshold:
		return StrengthPerfect
	case ratio >= goodThreshold:
		return StrengthGood
	case ratio >= partialThreshold:
		return StrengthPartial
	default:
		return StrengthWeak
	}
}

func searchValue(criterion string, p *params.SearchParameters) string {
	switch criterion {
	case scorer.CriterionPosition:
		return strings.Join(p.Positions, "/")
	case scorer.CriterionAge:
		return rangeLabel(p.Age.Min, p.Age.Max, "years")
	case scorer.CriterionNationality:
		return strings.Join(p.Nationalities, ", ")
	case scorer.CriterionLeague:
		return strings.Join(p.Leagues, ", ")
	case scorer.CriterionMarketValue:
		return valueRangeLabel(p.MarketValue.Min, p.MarketValue.Max)
	case scorer.CriterionPerformance:
		return "season output vs position benchmark"
	case scorer.CriterionContract:
		return p.TransferStatus
	}
	return ""
}

func candidateValue(criterion string, candidate *models.Player) string {
	switch criterion {
	case scorer.CriterionPosition:
		return candidate.Position
	case scorer.CriterionAge:
		return fmt.Sprintf("%d years", candidate.Age)
	case scorer.CriterionNationality:
		return candidate.Nationality
	case scorer.CriterionLeague:
		return candidate.League
	case scorer.CriterionMarketValue:
		return fmt.Sprintf("%d", candidate.MarketValue)
	case scorer.CriterionPerformance:
		return fmt.Sprintf("%dG %dA in %d apps", candidate.Goals, candidate.Assists, candidate.Appearances)
	case scorer.CriterionContract:
		if candidate.ContractExpiry != nil {
			return candidate.ContractExpiry.Format("2006-01")
		}
		return "unknown"
	}
	return ""
}

func rangeLabel(min, max *int, unit string) string {
	switch {
	case min != nil && max != nil:
		return fmt.Sprintf("%d-%d %s", *min, *max, unit)
	case min != nil:
		return fmt.Sprintf("over %d %s", *min, unit)
	case max != nil:
		return fmt.Sprintf("under %d %s", *max, unit)
	}
	return "any"
}

func valueRangeLabel(min, max *int64) string {
	switch {
	case min != nil && max != nil:
		return fmt.Sprintf("%d-%d", *min, *max)
	case min != nil:
		return fmt.Sprintf("over %d", *min)
	case max != nil:
		return fmt.Sprintf("under %d", *max)
	}
	return "any"
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
