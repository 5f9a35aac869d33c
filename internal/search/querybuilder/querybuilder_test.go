// internal/search/querybuilder/querybuilder_test.go
package querybuilder

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"scout-search/internal/common/config"
	"scout-search/internal/search/params"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestBuilder() *Builder {
	return New(config.SearchConfig{
		MaxResults:           100,
		DataQualityThreshold: 0.4,
	})
}

// ==========================
// Builder Tests
// ==========================

func TestBuild_FieldMapping(t *testing.T) {
	b := createTestBuilder()
	p := &params.SearchParameters{
		Positions:      []string{"ST", "CF"},
		Age:            params.AgeRange{Min: params.IntPtr(18), Max: params.IntPtr(25)},
		Nationalities:  []string{"Brazil"},
		Leagues:        []string{"Serie A"},
		Clubs:          []string{"Flamengo"},
		MarketValue:    params.ValueRange{Max: params.Int64Ptr(10_000_000)},
		Height:         params.HeightRange{Min: params.IntPtr(180)},
		TransferStatus: "available",
		Keywords:       []string{"fast"},
		Pagination:     params.Pagination{Page: 2, Size: 25},
		Sort:           params.Sort{Field: "age", Direction: "asc"},
	}

	spec := b.Build(p)

	assert.Equal(t, []string{"ST", "CF"}, spec.Positions)
	assert.Equal(t, 18, *spec.AgeMin)
	assert.Equal(t, 25, *spec.AgeMax)
	assert.Equal(t, []string{"Brazil"}, spec.Nationalities)
	assert.Equal(t, []string{"Serie A"}, spec.Leagues)
	assert.Equal(t, []string{"Flamengo"}, spec.Clubs)
	assert.Equal(t, int64(10_000_000), *spec.MarketValueMax)
	assert.Equal(t, 180, *spec.HeightMin)
	assert.Equal(t, "available", spec.TransferStatus)
	assert.Equal(t, []string{"fast"}, spec.Keywords)
	assert.Equal(t, 2, spec.Page)
	assert.Equal(t, 25, spec.PageSize)
	assert.Equal(t, "age", spec.SortBy)
	assert.Equal(t, "asc", spec.SortDirection)
	assert.Equal(t, 0.4, spec.DataQualityThreshold)
	assert.Equal(t, 100, spec.MaxResults)
	assert.True(t, spec.IncludeStats)
}

func TestBuild_PaginationDefaults(t *testing.T) {
	b := createTestBuilder()

	spec := b.Build(&params.SearchParameters{})

	assert.Equal(t, 1, spec.Page)
	assert.Equal(t, params.DefaultPageSize, spec.PageSize)
}

func TestBuild_PageSizeCappedByMaxResults(t *testing.T) {
	b := New(config.SearchConfig{MaxResults: 50})

	spec := b.Build(&params.SearchParameters{
		Pagination: params.Pagination{Size: 500},
	})

	assert.Equal(t, 50, spec.PageSize)
}

func TestFilterSpec_Offset(t *testing.T) {
	tests := []struct {
		name     string
		page     int
		size     int
		expected int
	}{
		{"first page", 1, 20, 0},
		{"third page", 3, 20, 40},
		{"unset page", 0, 20, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := &FilterSpec{Page: tt.page, PageSize: tt.size}
			assert.Equal(t, tt.expected, spec.Offset())
		})
	}
}

// ==========================
// Elasticsearch Rendering Tests
// ==========================

func TestElasticsearchQuery_Filters(t *testing.T) {
	spec := &FilterSpec{
		Positions:            []string{"ST"},
		AgeMax:               params.IntPtr(25),
		MarketValueMax:       params.Int64Ptr(10_000_000),
		TransferStatus:       "available",
		Keywords:             []string{"fast"},
		Page:                 2,
		PageSize:             20,
		SortBy:               "age",
		SortDirection:        "asc",
		DataQualityThreshold: 0.4,
	}

	body := ElasticsearchQuery(spec)

	assert.Equal(t, 20, body["from"])
	assert.Equal(t, 20, body["size"])

	boolQuery := body["query"].(map[string]interface{})["bool"].(map[string]interface{})
	filter := boolQuery["filter"].([]map[string]interface{})
	should := boolQuery["should"].([]map[string]interface{})

	assert.Contains(t, filter, map[string]interface{}{
		"terms": map[string]interface{}{"position": []string{"ST"}},
	})
	assert.Contains(t, filter, map[string]interface{}{
		"range": map[string]interface{}{"age": map[string]interface{}{"lte": 25}},
	})
	assert.Contains(t, filter, map[string]interface{}{
		"range": map[string]interface{}{"market_value": map[string]interface{}{"lte": int64(10_000_000)}},
	})
	assert.Contains(t, filter, map[string]interface{}{
		"term": map[string]interface{}{"transfer_status": "available"},
	})
	assert.Contains(t, filter, map[string]interface{}{
		"range": map[string]interface{}{"data_quality": map[string]interface{}{"gte": 0.4}},
	})

	assert.Len(t, should, 1)

	sort := body["sort"].([]map[string]interface{})
	assert.Equal(t, map[string]interface{}{"order": "asc"}, sort[0]["age"])
}

func TestElasticsearchQuery_EmptySpecMatchesAll(t *testing.T) {
	body := ElasticsearchQuery(&FilterSpec{Page: 1, PageSize: 20})

	boolQuery := body["query"].(map[string]interface{})["bool"].(map[string]interface{})
	must := boolQuery["must"].([]map[string]interface{})

	assert.Len(t, must, 1)
	assert.Contains(t, must[0], "match_all")
	assert.Nil(t, boolQuery["filter"])
}

func TestElasticsearchQuery_RelevanceUsesDefaultScoring(t *testing.T) {
	body := ElasticsearchQuery(&FilterSpec{Page: 1, PageSize: 20, SortBy: "relevance"})

	_, hasSort := body["sort"]
	assert.False(t, hasSort)
}

func TestElasticsearchQuery_AnyTransferStatusNotFiltered(t *testing.T) {
	body := ElasticsearchQuery(&FilterSpec{Page: 1, PageSize: 20, TransferStatus: "any"})

	boolQuery := body["query"].(map[string]interface{})["bool"].(map[string]interface{})
	assert.Nil(t, boolQuery["filter"])
}
