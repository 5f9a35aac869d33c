// internal/search/querybuilder/elastic.go
package querybuilder

// ElasticsearchQuery renders a FilterSpec into an Elasticsearch bool query
// body. Structured filters go into the filter context; keywords become a
// should clause over the text fields so they influence relevance without
// excluding candidates.
func ElasticsearchQuery(spec *FilterSpec) map[string]interface{} {
	var filter []map[string]interface{}
	var should []map[string]interface{}

	if len(spec.Positions) > 0 {
		filter = append(filter, termsClause("position", spec.Positions))
	}
	if len(spec.Nationalities) > 0 {
		filter = append(filter, termsClause("nationality", spec.Nationalities))
	}
	if len(spec.Leagues) > 0 {
		filter = append(filter, termsClause("league", spec.Leagues))
	}
	if len(spec.Clubs) > 0 {
		filter = append(filter, termsClause("club", spec.Clubs))
	}

	if r := rangeClause(intBound(spec.AgeMin), intBound(spec.AgeMax)); r != nil {
		filter = append(filter, map[string]interface{}{"range": map[string]interface{}{"age": r}})
	}
	if r := rangeClause(int64Bound(spec.MarketValueMin), int64Bound(spec.MarketValueMax)); r != nil {
		filter = append(filter, map[string]interface{}{"range": map[string]interface{}{"market_value": r}})
	}
	if r := rangeClause(intBound(spec.HeightMin), intBound(spec.HeightMax)); r != nil {
		filter = append(filter, map[string]interface{}{"range": map[string]interface{}{"height_cm": r}})
	}

	if spec.TransferStatus != "" && spec.TransferStatus != "any" {
		filter = append(filter, map[string]interface{}{
			"term": map[string]interface{}{"transfer_status": spec.TransferStatus},
		})
	}
	if spec.PreferredFoot != "" {
		filter = append(filter, map[string]interface{}{
			"term": map[string]interface{}{"preferred_foot": spec.PreferredFoot},
		})
	}

	if spec.DataQualityThreshold > 0 {
		filter = append(filter, map[string]interface{}{
			"range": map[string]interface{}{
				"data_quality": map[string]interface{}{"gte": spec.DataQualityThreshold},
			},
		})
	}

	for _, kw := range spec.Keywords {
		should = append(should, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  kw,
				"fields": []string{"name", "club", "league"},
			},
		})
	}

	boolQuery := map[string]interface{}{}
	if len(filter) > 0 {
		boolQuery["filter"] = filter
	}
	if len(should) > 0 {
		boolQuery["should"] = should
	}
	if len(boolQuery) == 0 {
		boolQuery["must"] = []map[string]interface{}{{"match_all": map[string]interface{}{}}}
	}

	body := map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
		"from":  spec.Offset(),
		"size":  spec.PageSize,
	}

	if sortField := elasticSortField(spec.SortBy); sortField != "" {
		direction := spec.SortDirection
		if direction == "" {
			direction = "desc"
		}
		body["sort"] = []map[string]interface{}{
			{sortField: map[string]interface{}{"order": direction}},
		}
	}

	return body
}

func termsClause(field string, values []string) map[string]interface{} {
	return map[string]interface{}{
		"terms": map[string]interface{}{field: values},
	}
}

// rangeClause builds a gte/lte body, or nil when both bounds are absent.
func rangeClause(min, max interface{}) map[string]interface{} {
	if min == nil && max == nil {
		return nil
	}
	r := map[string]interface{}{}
	if min != nil {
		r["gte"] = min
	}
	if max != nil {
		r["lte"] = max
	}
	return r
}

func intBound(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func int64Bound(v *int64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

// elasticSortField maps API sort fields to index fields. Relevance sorts by
// score, which is the ES default, so it maps to no explicit sort.
func elasticSortField(sortBy string) string {
	switch sortBy {
	case "age":
		return "age"
	case "market_value":
		return "market_value"
	case "name":
		return "name.keyword"
	}
	return ""
}
