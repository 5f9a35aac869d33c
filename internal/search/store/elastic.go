// internal/search/store/elastic.go
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"scout-search/internal/common/errors"
	"scout-search/internal/common/logger"
	"scout-search/internal/models"
	"scout-search/internal/search/querybuilder"

	"github.com/elastic/go-elasticsearch/v8"
)

// ElasticsearchStore reads candidates from the players index.
type ElasticsearchStore struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewElasticsearchStore(client *elasticsearch.Client, index string, log logger.Logger) *ElasticsearchStore {
	return &ElasticsearchStore{
		client: client,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"component": "elasticsearch-store"}),
	}
}

// esPlayer is the index document shape. The index uses snake_case fields and
// RFC 3339 contract dates.
type esPlayer struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Position       string  `json:"position"`
	Age            int     `json:"age"`
	Nationality    string  `json:"nationality"`
	Club           string  `json:"club"`
	MarketValue    int64   `json:"market_value"`
	League         string  `json:"league"`
	HeightCm       int     `json:"height_cm"`
	PreferredFoot  string  `json:"preferred_foot"`
	Goals          int     `json:"goals"`
	Assists        int     `json:"assists"`
	Appearances    int     `json:"appearances"`
	ContractExpiry string  `json:"contract_expiry"`
	DataQuality    float64 `json:"data_quality"`
}

type esSearchResponse struct {
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []struct {
			ID     string   `json:"_id"`
			Source esPlayer `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// FetchCandidates renders the filter spec into a bool query and executes it
// against the players index.
func (s *ElasticsearchStore) FetchCandidates(ctx context.Context, spec *querybuilder.FilterSpec) (*CandidateSet, error) {
	body := querybuilder.ElasticsearchQuery(spec)

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, errors.NewSearchIndexFailedError(err)
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.index),
		s.client.Search.WithBody(&buf),
		s.client.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.NewStoreQueryTimeoutError()
		}
		return nil, errors.NewSearchIndexFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, errors.NewSearchIndexFailedError(fmt.Errorf("search returned %s", res.Status()))
	}

	var parsed esSearchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, errors.NewSearchIndexFailedError(err)
	}

	players := make([]models.Player, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		players = append(players, toPlayer(hit.ID, hit.Source))
	}

	s.logger.Debug("index candidates fetched", map[string]interface{}{
		"returned": len(players),
		"total":    parsed.Hits.Total.Value,
	})

	return &CandidateSet{Players: players, Total: parsed.Hits.Total.Value}, nil
}

func toPlayer(hitID string, doc esPlayer) models.Player {
	p := models.Player{
		ID:            doc.ID,
		Name:          doc.Name,
		Position:      doc.Position,
		Age:           doc.Age,
		Nationality:   doc.Nationality,
		Club:          doc.Club,
		MarketValue:   doc.MarketValue,
		League:        doc.League,
		HeightCm:      doc.HeightCm,
		PreferredFoot: doc.PreferredFoot,
		Goals:         doc.Goals,
		Assists:       doc.Assists,
		Appearances:   doc.Appearances,
		DataQuality:   doc.DataQuality,
	}
	if p.ID == "" {
		p.ID = hitID
	}
	if doc.ContractExpiry != "" {
		if t, err := time.Parse(time.RFC3339, doc.ContractExpiry); err == nil {
			p.ContractExpiry = &t
		} else if t, err := time.Parse("2006-01-02", doc.ContractExpiry); err == nil {
			p.ContractExpiry = &t
		}
	}
	return p
}
