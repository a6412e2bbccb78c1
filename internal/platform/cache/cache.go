// Package cache holds the TTL stores behind the read-heavy aggregate views
// (active doctor list, referral rollups).
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
)

type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// DeletePrefix drops every key starting with prefix.
	DeletePrefix(ctx context.Context, prefix string) error
}

// Remember returns the cached value at key, or calls load and caches its
// result for ttl. Cache failures degrade to calling load.
func Remember[T any](ctx context.Context, s Store, key string, ttl time.Duration, load func(ctx context.Context) (T, error)) (T, error) {
	log := zerolog.Ctx(ctx)
	if data, ok, err := s.Get(ctx, key); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache read failed")
	} else if ok {
		var v T
		if err := json.Unmarshal(data, &v); err == nil {
			return v, nil
		}
		log.Warn().Str("key", key).Msg("discarding undecodable cache entry")
	}

	v, err := load(ctx)
	if err != nil {
		return v, err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return v, nil
	}
	if err := s.Set(ctx, key, data, ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
	return v, nil
}
