// internal/search/store/cached.go
package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"scout-search/internal/common/logger"
	"scout-search/internal/search/querybuilder"

	"github.com/redis/go-redis/v9"
)

const (
	candidateKeyPrefix  = "search:candidates:"
	defaultCandidateTTL = 60 * time.Second
)

// CachedStore is a Redis read-through in front of another PlayerStore. Redis
// failures are logged and bypassed; a degraded cache never degrades a search.
type CachedStore struct {
	inner  PlayerStore
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedStore(inner PlayerStore, client *redis.Client, ttl time.Duration, log logger.Logger) *CachedStore {
	if ttl <= 0 {
		ttl = defaultCandidateTTL
	}
	return &CachedStore{
		inner:  inner,
		client: client,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "candidate-cache"}),
	}
}

func (s *CachedStore) FetchCandidates(ctx context.Context, spec *querybuilder.FilterSpec) (*CandidateSet, error) {
	key, ok := cacheKey(spec)
	if ok {
		raw, err := s.client.Get(ctx, key).Bytes()
		if err == nil {
			var cached CandidateSet
			if json.Unmarshal(raw, &cached) == nil {
				return &cached, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn("candidate cache read failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	result, err := s.inner.FetchCandidates(ctx, spec)
	if err != nil {
		return nil, err
	}

	if ok {
		if raw, merr := json.Marshal(result); merr == nil {
			if serr := s.client.Set(ctx, key, raw, s.ttl).Err(); serr != nil {
				s.logger.Warn("candidate cache write failed", map[string]interface{}{
					"error": serr.Error(),
				})
			}
		}
	}

	return result, nil
}

// cacheKey hashes the full spec so every filter, sort, and page combination
// gets its own entry.
func cacheKey(spec *querybuilder.FilterSpec) (string, bool) {
	raw, err := json.Marshal(spec)
	if err != nil {
		return "", false
	}
	sum := sha256.Sum256(raw)
	return candidateKeyPrefix + hex.EncodeToString(sum[:]), true
}
