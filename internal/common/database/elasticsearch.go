// internal/common/database/elasticsearch.go
package database

import (
	"context"
	"fmt"
	"time"

	"scout-search/internal/common/config"
	commonerrors "scout-search/internal/common/errors"

	"github.com/elastic/go-elasticsearch/v8"
)

// ElasticsearchClient wraps the index client the candidate store queries.
type ElasticsearchClient struct {
	Client *elasticsearch.Client
}

// NewElasticsearch builds the client from config. Credentials are optional
// for local clusters.
func NewElasticsearch(cfg config.ElasticsearchConfig) (*ElasticsearchClient, error) {
	esCfg := elasticsearch.Config{
		Addresses: cfg.Addresses,
	}
	if cfg.Username != "" {
		esCfg.Username = cfg.Username
		esCfg.Password = cfg.Password
	}

	es, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, commonerrors.NewDatabaseConnectionFailedError(err)
	}

	return &ElasticsearchClient{Client: es}, nil
}

// Ping verifies the index is reachable before the worker starts taking jobs.
func (c *ElasticsearchClient) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := c.Client.Ping(
		c.Client.Ping.WithContext(ctx),
	)
	if err != nil {
		return commonerrors.NewDatabaseConnectionFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return commonerrors.NewDatabaseConnectionFailedError(fmt.Errorf("ping status %s", res.Status()))
	}

	return nil
}
