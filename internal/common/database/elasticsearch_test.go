// internal/common/database/elasticsearch_test.go
package database

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"scout-search/internal/common/config"
	commonerrors "scout-search/internal/common/errors"
)

func newStubCluster(t *testing.T, status int) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.WriteHeader(status)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestElasticsearchPing_Success(t *testing.T) {
	server := newStubCluster(t, http.StatusOK)

	client, err := NewElasticsearch(config.ElasticsearchConfig{Addresses: []string{server.URL}})
	assert.NoError(t, err)

	assert.NoError(t, client.Ping(context.Background()))
}

func TestElasticsearchPing_ClusterError(t *testing.T) {
	server := newStubCluster(t, http.StatusServiceUnavailable)

	client, err := NewElasticsearch(config.ElasticsearchConfig{Addresses: []string{server.URL}})
	assert.NoError(t, err)

	err = client.Ping(context.Background())

	var serr *commonerrors.StandardError
	assert.ErrorAs(t, err, &serr)
	assert.Equal(t, commonerrors.ErrCodeDatabaseConnectionFailed, serr.Code)
	assert.True(t, serr.Retryable)
}
