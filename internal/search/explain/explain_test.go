// internal/search/explain/explain_test.go
package explain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"scout-search/internal/models"
	"scout-search/internal/search/params"
	"scout-search/internal/search/scorer"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestService() *Service {
	s := NewService(scorer.NewDefault())
	s.now = func() time.Time {
		return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	}
	return s
}

func createTestCandidate() *models.Player {
	return &models.Player{
		ID:          "player-1",
		Name:        "Gabriel Souza",
		Position:    "ST",
		Age:         22,
		Nationality: "Brazil",
		Club:        "Cruzeiro",
		League:      "Serie B",
		MarketValue: 8_000_000,
		Goals:       16,
		Assists:     5,
		Appearances: 30,
	}
}

func createTestParams() *params.SearchParameters {
	return &params.SearchParameters{
		Positions:     []string{"ST", "CF"},
		Age:           params.AgeRange{Min: params.IntPtr(18), Max: params.IntPtr(25)},
		Nationalities: []string{"Brazil"},
	}
}

// ==========================
// Explanation Tests
// ==========================

func TestExplain_StrongMatch(t *testing.T) {
	service := createTestService()

	result := service.Explain(createTestCandidate(), createTestParams(), Context{Rank: 1, TotalResults: 12})

	assert.Contains(t, result.Summary, "Gabriel Souza")
	assert.Contains(t, result.Summary, "excellent match")
	assert.GreaterOrEqual(t, result.StrengthScore, 80)
	assert.NotEmpty(t, result.MatchedCriteria)
	assert.Contains(t, result.AdditionalContext, "Ranked #1 of 12 results")
	assert.Contains(t, result.AdditionalContext, "Serie B")
}

func TestExplain_Idempotent(t *testing.T) {
	service := createTestService()
	candidate := createTestCandidate()
	p := createTestParams()
	ctx := Context{Rank: 2, TotalResults: 5}

	first := service.Explain(candidate, p, ctx)
	second := service.Explain(candidate, p, ctx)

	assert.Equal(t, first, second)
}

func TestExplain_CriteriaSortedByStrength(t *testing.T) {
	service := createTestService()
	candidate := createTestCandidate()
	candidate.Age = 27 // near the range, partial credit

	result := service.Explain(candidate, createTestParams(), Context{})

	for i := 1; i < len(result.MatchedCriteria); i++ {
		assert.GreaterOrEqual(t,
			result.MatchedCriteria[i-1].DisplayWeight(),
			result.MatchedCriteria[i].DisplayWeight())
	}
}

func TestExplain_ZeroScoreCriteriaExcluded(t *testing.T) {
	service := createTestService()
	candidate := createTestCandidate()
	candidate.Nationality = "Japan"

	result := service.Explain(candidate, createTestParams(), Context{})

	for _, c := range result.MatchedCriteria {
		assert.NotEqual(t, scorer.CriterionNationality, c.Criterion)
	}
}

func TestExplain_Concerns(t *testing.T) {
	service := createTestService()

	t.Run("heavy criterion miss", func(t *testing.T) {
		candidate := createTestCandidate()
		candidate.Position = "GK"

		result := service.Explain(candidate, createTestParams(), Context{})

		found := false
		for _, c := range result.PotentialConcerns {
			if strings.Contains(c, "no position match") {
				found = true
			}
		}
		assert.True(t, found)
	})

	t.Run("well above age maximum", func(t *testing.T) {
		candidate := createTestCandidate()
		candidate.Age = 29

		result := service.Explain(candidate, createTestParams(), Context{})

		assert.Contains(t, result.PotentialConcerns, "age 29 is well above the requested maximum of 25")
	})

	t.Run("market value far over budget", func(t *testing.T) {
		candidate := createTestCandidate()
		candidate.MarketValue = 20_000_000
		p := createTestParams()
		p.MarketValue.Max = params.Int64Ptr(10_000_000)

		result := service.Explain(candidate, p, Context{})

		assert.Contains(t, result.PotentialConcerns, "market value significantly exceeds the requested budget")
	})

	t.Run("limited appearances", func(t *testing.T) {
		candidate := createTestCandidate()
		candidate.Appearances = 4

		result := service.Explain(candidate, createTestParams(), Context{})

		assert.Contains(t, result.PotentialConcerns, "only 4 appearances this season, limited playing-time signal")
	})

	t.Run("no concerns for a clean match", func(t *testing.T) {
		result := service.Explain(createTestCandidate(), createTestParams(), Context{})

		assert.Empty(t, result.PotentialConcerns)
	})
}

func TestExplain_ContractWindowContext(t *testing.T) {
	service := createTestService()
	candidate := createTestCandidate()
	expiry := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	candidate.ContractExpiry = &expiry

	result := service.Explain(candidate, createTestParams(), Context{})

	assert.Contains(t, result.AdditionalContext, "transfer window opportunity")
}

func TestExplain_DegradedOutput(t *testing.T) {
	service := createTestService()

	t.Run("nil candidate", func(t *testing.T) {
		result := service.Explain(nil, createTestParams(), Context{})

		assert.Equal(t, "this candidate could not be fully analyzed", result.Summary)
		assert.Equal(t, 50, result.StrengthScore)
		assert.Empty(t, result.MatchedCriteria)
		assert.Contains(t, result.PotentialConcerns, "unable to generate detailed analysis")
	})

	t.Run("nil parameters", func(t *testing.T) {
		result := service.Explain(createTestCandidate(), nil, Context{})

		assert.Equal(t, "Gabriel Souza could not be fully analyzed", result.Summary)
		assert.Equal(t, 50, result.StrengthScore)
	})
}

func TestExplain_StrengthScoreBounds(t *testing.T) {
	service := createTestService()

	candidates := []*models.Player{
		createTestCandidate(),
		{Name: "Empty Profile"},
		{Name: "Veteran", Position: "GK", Age: 40, Appearances: 2},
	}

	for _, candidate := range candidates {
		result := service.Explain(candidate, createTestParams(), Context{})
		assert.GreaterOrEqual(t, result.StrengthScore, 0)
		assert.LessOrEqual(t, result.StrengthScore, 100)
	}
}

func TestStrengthFor(t *testing.T) {
	assert.Equal(t, StrengthPerfect, strengthFor(1.0))
	assert.Equal(t, StrengthPerfect, strengthFor(0.9))
	assert.Equal(t, StrengthGood, strengthFor(0.7))
	assert.Equal(t, StrengthPartial, strengthFor(0.5))
	assert.Equal(t, StrengthWeak, strengthFor(0.2))
}
