package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheRepository stores rendered catalog pages in Redis. A nil client
// disables caching entirely; lookups then always miss.
type CacheRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCacheRepository constructs a CacheRepository.
func NewCacheRepository(client *redis.Client, ttl time.Duration) *CacheRepository {
	return &CacheRepository{client: client, ttl: ttl}
}

// Get unmarshals a cached value into dest, reporting whether it was found.
// Cache failures are soft: a broken cache behaves like a miss.
func (r *CacheRepository) Get(ctx context.Context, key string, dest interface{}) bool {
	if r == nil || r.client == nil {
		return false
	}
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

// Set marshals and stores a value under the configured TTL.
func (r *CacheRepository) Set(ctx context.Context, key string, value interface{}) {
	if r == nil || r.client == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	r.client.Set(ctx, key, raw, r.ttl)
}

// Invalidate drops every key under the given prefix. Used after catalog
// mutations so stale pages never outlive their TTL unnecessarily.
func (r *CacheRepository) Invalidate(ctx context.Context, prefix string) {
	if r == nil || r.client == nil {
		return
	}
	iter := r.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		r.client.Del(ctx, iter.Val())
	}
}
