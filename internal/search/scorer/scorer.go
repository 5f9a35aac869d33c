// internal/search/scorer/scorer.go
package scorer

import (
	"fmt"
	"strings"
	"time"

	"scout-search/internal/models"
	"scout-search/internal/search/params"
)

// Criterion names used in breakdowns, explanations, and priority factors.
const (
	CriterionPosition    = "position"
	CriterionAge         = "age"
	CriterionNationality = "nationality"
	CriterionLeague      = "league"
	CriterionMarketValue = "marketValue"
	CriterionPerformance = "performance"
	CriterionContract    = "contract"
)

// Weights is the fixed point allocation per criterion; each value is that
// criterion's maximum contribution to the total.
type Weights struct {
	Position    float64
	Age         float64
	Nationality float64
	League      float64
	MarketValue float64
	Performance float64
	Contract    float64
}

// DefaultWeights returns the production point allocation.
func DefaultWeights() Weights {
	return Weights{
		Position:    25,
		Age:         20,
		Nationality: 15,
		League:      12,
		MarketValue: 10,
		Performance: 8,
		Contract:    2,
	}
}

// Tolerances are the heuristic credit windows. They have no product-derived
// rationale and are deliberately configuration, not law.
type Tolerances struct {
	AgeYears             int
	ValueOverageRatio    float64
	ContractUrgentMonths int
	ContractSoonMonths   int
	ContractStableMonths int
}

// DefaultTolerances returns the production tolerance windows.
func DefaultTolerances() Tolerances {
	return Tolerances{
		AgeYears:             2,
		ValueOverageRatio:    0.2,
		ContractUrgentMonths: 6,
		ContractSoonMonths:   12,
		ContractStableMonths: 24,
	}
}

// CriterionScore is one row of the score breakdown.
type CriterionScore struct {
	Criterion   string  `json:"criterion"`
	Score       float64 `json:"score"`
	MaxScore    float64 `json:"maxScore"`
	Weight      float64 `json:"weight"`
	Explanation string  `json:"explanation"`
}

// DetailedScore is the result of scoring one candidate against one parameter
// set. Computed fresh per pair and never cached, so the breakdown always
// reflects the current parameters.
type DetailedScore struct {
	TotalScore       float64          `json:"totalScore"`
	MaxPossibleScore float64          `json:"maxPossibleScore"`
	Percentage       float64          `json:"percentage"`
	Breakdown        []CriterionScore `json:"breakdown"`
}

// positionCompatibility maps a requested position to codes that earn partial
// credit.
var positionCompatibility = map[string][]string{
	"ST":  {"CF"},
	"CF":  {"ST"},
	"CAM": {"CM"},
	"CM":  {"CAM", "CDM"},
	"CDM": {"CM"},
	"LW":  {"LM", "RW"},
	"RW":  {"RM", "LW"},
	"LM":  {"LW"},
	"RM":  {"RW"},
	"LB":  {"LWB"},
	"RB":  {"RWB"},
	"LWB": {"LB"},
	"RWB": {"RB"},
}

// Partial-credit ratios per criterion.
const (
	compatiblePositionCredit = 0.7
	nearAgeCredit            = 0.5
	overBudgetCredit         = 0.6
	partialNationalityCredit = 0.8
	topLeagueCredit          = 0.6
	contractSoonCredit       = 0.8
	contractMidCredit        = 0.6
	contractStableCredit     = 0.5
)

// Performance tier credit by ratio to benchmark.
const (
	perfExceedsRatio = 1.2
	perfMeetsRatio   = 0.8
	perfNearRatio    = 0.5

	perfExceedsCredit = 1.0
	perfMeetsCredit   = 0.8
	perfNearCredit    = 0.5
	perfLowCredit     = 0.2
)

// Scorer computes weighted multi-criterion matches. Pure: no I/O, no shared
// mutable state, deterministic for identical input.
type Scorer struct {
	weights Weights
	tol     Tolerances
	now     func() time.Time
}

func New(weights Weights, tol Tolerances) *Scorer {
	return &Scorer{
		weights: weights,
		tol:     tol,
		now:     time.Now,
	}
}

// NewDefault builds a scorer with production weights and tolerances.
func NewDefault() *Scorer {
	return New(DefaultWeights(), DefaultTolerances())
}

// Score evaluates a candidate against the parameters. A criterion is scored
// only if the corresponding parameter was supplied; performance is always
// scored. Missing or malformed candidate fields degrade the affected
// criterion to 0 with an explanatory string rather than failing the call.
func (s *Scorer) Score(candidate *models.Player, p *params.SearchParameters) DetailedScore {
	result := DetailedScore{}
	if candidate == nil {
		return result
	}

	if len(p.Positions) > 0 {
		result.add(s.scorePosition(candidate, p))
	}
	if p.HasAge() {
		result.add(s.scoreAge(candidate, p))
	}
	if len(p.Nationalities) > 0 {
		result.add(s.scoreNationality(candidate, p))
	}
	if len(p.Leagues) > 0 {
		result.add(s.scoreLeague(candidate, p))
	}
	if p.HasMarketValue() {
		result.add(s.scoreMarketValue(candidate, p))
	}
	result.add(s.scorePerformance(candidate))
	if contractRequested(p) {
		result.add(s.scoreContract(candidate))
	}

	if result.MaxPossibleScore > 0 {
		result.Percentage = result.TotalScore / result.MaxPossibleScore * 100
	}
	if result.Percentage < 0 {
		result.Percentage = 0
	}
	if result.Percentage > 100 {
		result.Percentage = 100
	}
	return result
}

func (r *DetailedScore) add(c CriterionScore) {
	r.Breakdown = append(r.Breakdown, c)
	r.TotalScore += c.Score
	r.MaxPossibleScore += c.MaxScore
}

func (s *Scorer) scorePosition(candidate *models.Player, p *params.SearchParameters) CriterionScore {
	c := CriterionScore{
		Criterion: CriterionPosition,
		MaxScore:  s.weights.Position,
		Weight:    s.weights.Position,
	}

	pos := strings.ToUpper(strings.TrimSpace(candidate.Position))
	if pos == "" {
		c.Explanation = "candidate position unknown"
		return c
	}

	for _, wanted := range p.Positions {
		if wanted == pos {
			c.Score = s.weights.Position
			c.Explanation = fmt.Sprintf("plays the requested position %s", pos)
			return c
		}
	}
	for _, wanted := range p.Positions {
		for _, compatible := range positionCompatibility[wanted] {
			if compatible == pos {
				c.Score = s.weights.Position * compatiblePositionCredit
				c.Explanation = fmt.Sprintf("%s is compatible with requested %s", pos, wanted)
				return c
			}
		}
	}

	c.Explanation = fmt.Sprintf("%s does not cover requested %s", pos, strings.Join(p.Positions, "/"))
	return c
}

func (s *Scorer) scoreAge(candidate *models.Player, p *params.SearchParameters) CriterionScore {
	c := CriterionScore{
		Criterion: CriterionAge,
		MaxScore:  s.weights.Age,
		Weight:    s.weights.Age,
	}

	age := candidate.Age
	if age <= 0 {
		c.Explanation = "candidate age unknown"
		return c
	}

	min, max := p.Age.Min, p.Age.Max
	switch {
	case min != nil && max != nil:
		if age >= *min && age <= *max {
			c.Score = s.weights.Age
			c.Explanation = fmt.Sprintf("age %d is inside the requested %d-%d range", age, *min, *max)
		} else if age >= *min-s.tol.AgeYears && age <= *max+s.tol.AgeYears {
			c.Score = s.weights.Age * nearAgeCredit
			c.Explanation = fmt.Sprintf("age %d is within %d years of the requested %d-%d range", age, s.tol.AgeYears, *min, *max)
		} else {
			c.Explanation = fmt.Sprintf("age %d is outside the requested %d-%d range", age, *min, *max)
		}
	case min != nil:
		if age >= *min {
			c.Score = s.weights.Age
			c.Explanation = fmt.Sprintf("age %d satisfies the minimum of %d", age, *min)
		} else {
			c.Explanation = fmt.Sprintf("age %d is under the requested minimum of %d", age, *min)
		}
	case max != nil:
		if age <= *max {
			c.Score = s.weights.Age
			c.Explanation = fmt.Sprintf("age %d satisfies the maximum of %d", age, *max)
		} else {
			c.Explanation = fmt.Sprintf("age %d exceeds the requested maximum of %d", age, *max)
		}
	}
	return c
}

func (s *Scorer) scoreNationality(candidate *models.Player, p *params.SearchParameters) CriterionScore {
	c := CriterionScore{
		Criterion: CriterionNationality,
		MaxScore:  s.weights.Nationality,
		Weight:    s.weights.Nationality,
	}

	nat := strings.TrimSpace(candidate.Nationality)
	if nat == "" {
		c.Explanation = "candidate nationality unknown"
		return c
	}

	lowered := strings.ToLower(nat)
	for _, wanted := range p.Nationalities {
		if strings.EqualFold(wanted, nat) {
			c.Score = s.weights.Nationality
			c.Explanation = fmt.Sprintf("nationality %s matches the request", nat)
			return c
		}
	}
	for _, wanted := range p.Nationalities {
		w := strings.ToLower(wanted)
		if strings.Contains(lowered, w) || strings.Contains(w, lowered) {
			c.Score = s.weights.Nationality * partialNationalityCredit
			c.Explanation = fmt.Sprintf("nationality %s partially matches requested %s", nat, wanted)
			return c
		}
	}

	c.Explanation = fmt.Sprintf("nationality %s was not requested", nat)
	return c
}

func (s *Scorer) scoreLeague(candidate *models.Player, p *params.SearchParameters) CriterionScore {
	c := CriterionScore{
		Criterion: CriterionLeague,
		MaxScore:  s.weights.League,
		Weight:    s.weights.League,
	}

	league := strings.TrimSpace(candidate.League)
	if league == "" {
		c.Explanation = "candidate league unknown"
		return c
	}

	for _, wanted := range p.Leagues {
		if strings.EqualFold(wanted, league) {
			c.Score = s.weights.League
			c.Explanation = fmt.Sprintf("plays in the requested %s", league)
			return c
		}
	}
	if models.TopLeagues[league] {
		for _, wanted := range p.Leagues {
			if models.TopLeagues[wanted] {
				c.Score = s.weights.League * topLeagueCredit
				c.Explanation = fmt.Sprintf("%s and requested %s are both top-five leagues", league, wanted)
				return c
			}
		}
	}

	c.Explanation = fmt.Sprintf("%s does not match the requested league(s)", league)
	return c
}

func (s *Scorer) scoreMarketValue(candidate *models.Player, p *params.SearchParameters) CriterionScore {
	c := CriterionScore{
		Criterion: CriterionMarketValue,
		MaxScore:  s.weights.MarketValue,
		Weight:    s.weights.MarketValue,
	}

	value := candidate.MarketValue
	if value <= 0 {
		c.Explanation = "candidate market value unknown"
		return c
	}

	min, max := p.MarketValue.Min, p.MarketValue.Max
	switch {
	case min != nil && max != nil:
		if value >= *min && value <= *max {
			c.Score = s.weights.MarketValue
			c.Explanation = "market value is inside the requested budget"
		} else if value > *max && float64(value) <= float64(*max)*(1+s.tol.ValueOverageRatio) {
			c.Score = s.weights.MarketValue * overBudgetCredit
			c.Explanation = fmt.Sprintf("market value is within %.0f%% over the requested budget", s.tol.ValueOverageRatio*100)
		} else {
			c.Explanation = "market value is outside the requested budget"
		}
	case max != nil:
		if value <= *max {
			c.Score = s.weights.MarketValue
			c.Explanation = "market value is under the requested budget"
		} else if float64(value) <= float64(*max)*(1+s.tol.ValueOverageRatio) {
			c.Score = s.weights.MarketValue * overBudgetCredit
			c.Explanation = fmt.Sprintf("market value is within %.0f%% over the requested budget", s.tol.ValueOverageRatio*100)
		} else {
			c.Explanation = "market value exceeds the requested budget"
		}
	case min != nil:
		if value >= *min {
			c.Score = s.weights.MarketValue
			c.Explanation = "market value meets the requested minimum"
		} else {
			c.Explanation = "market value is under the requested minimum"
		}
	}
	return c
}

func (s *Scorer) scorePerformance(candidate *models.Player) CriterionScore {
	c := CriterionScore{
		Criterion: CriterionPerformance,
		MaxScore:  s.weights.Performance,
		Weight:    s.weights.Performance,
	}

	benchmark := BenchmarkFor(strings.ToUpper(strings.TrimSpace(candidate.Position)))
	statWeight := s.weights.Performance / 3

	score := 0.0
	score += statWeight * perfTier(float64(candidate.Goals), benchmark.Goals)
	score += statWeight * perfTier(float64(candidate.Assists), benchmark.Assists)
	score += statWeight * perfTier(float64(candidate.Appearances), benchmark.Appearances)
	if score > s.weights.Performance {
		score = s.weights.Performance
	}

	c.Score = score
	c.Explanation = fmt.Sprintf("%d goals, %d assists in %d appearances against the %s benchmark",
		candidate.Goals, candidate.Assists, candidate.Appearances, benchmarkLabel(candidate.Position))
	return c
}

func (s *Scorer) scoreContract(candidate *models.Player) CriterionScore {
	c := CriterionScore{
		Criterion: CriterionContract,
		MaxScore:  s.weights.Contract,
		Weight:    s.weights.Contract,
	}

	if candidate.ContractExpiry == nil {
		c.Explanation = "contract expiry unknown"
		return c
	}

	months := monthsUntil(s.now(), *candidate.ContractExpiry)
	switch {
	case months <= s.tol.ContractUrgentMonths:
		c.Score = s.weights.Contract
		c.Explanation = fmt.Sprintf("contract expires in %d months", months)
	case months <= s.tol.ContractSoonMonths:
		c.Score = s.weights.Contract * contractSoonCredit
		c.Explanation = fmt.Sprintf("contract expires within %d months", s.tol.ContractSoonMonths)
	case months > s.tol.ContractStableMonths:
		c.Score = s.weights.Contract * contractStableCredit
		c.Explanation = "contract is stable with no transfer urgency"
	default:
		c.Score = s.weights.Contract * contractMidCredit
		c.Explanation = fmt.Sprintf("contract runs for another %d months", months)
	}
	return c
}

// perfTier converts a stat-to-benchmark ratio into credit. A zero expectation
// always earns full credit.
func perfTier(actual, expected float64) float64 {
	if expected <= 0 {
		return perfExceedsCredit
	}
	ratio := actual / expected
	switch {
	case ratio >= perfExceedsRatio:
		return perfExceedsCredit
	case ratio >= perfMeetsRatio:
		return perfMeetsCredit
	case ratio >= perfNearRatio:
		return perfNearCredit
	default:
		return perfLowCredit
	}
}

func contractRequested(p *params.SearchParameters) bool {
	return p.TransferStatus == models.TransferAvailable || p.TransferStatus == models.TransferContractEnding
}

func monthsUntil(from, until time.Time) int {
	if until.Before(from) {
		return 0
	}
	months := int(until.Sub(from).Hours() / (24 * 30))
	return months
}

func benchmarkLabel(position string) string {
	pos := strings.ToUpper(strings.TrimSpace(position))
	if _, ok := positionBenchmarks[pos]; ok {
		return pos
	}
	return "generic midfield"
}
