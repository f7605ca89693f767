// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// favicon.go provides a Valkey-backed cache for proxied site icons, so a
// dashboard full of links does not hit the upstream icon services on
// every page load.
package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// faviconKeyPrefix is the Valkey key prefix for cached icons.
	faviconKeyPrefix = "favicon:"

	// DefaultFaviconTTL is how long a fetched icon stays cached.
	DefaultFaviconTTL = 24 * time.Hour
)

// Favicon is a cached icon image.
type Favicon struct {
	ContentType string
	Data        []byte
}

// FaviconCache stores icons per hostname in Valkey.
type FaviconCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewFaviconCache creates a favicon cache backed by the given Valkey client.
func NewFaviconCache(client *redis.Client, ttl time.Duration) *FaviconCache {
	if ttl == 0 {
		ttl = DefaultFaviconTTL
	}
	return &FaviconCache{client: client, ttl: ttl}
}

// Get returns the cached icon for a hostname.
func (fc *FaviconCache) Get(ctx context.Context, host string) (*Favicon, bool) {
	vals, err := fc.client.HMGet(ctx, faviconKeyPrefix+host, "type", "data").Result()
	if err != nil {
		slog.Warn("favicon cache get error", "host", host, "error", err)
		faviconLookups.WithLabelValues("error").Inc()
		return nil, false
	}
	ct, _ := vals[0].(string)
	data, _ := vals[1].(string)
	if data == "" {
		faviconLookups.WithLabelValues("miss").Inc()
		return nil, false
	}
	faviconLookups.WithLabelValues("hit").Inc()
	return &Favicon{ContentType: ct, Data: []byte(data)}, true
}

// Set stores an icon for a hostname with the configured TTL.
func (fc *FaviconCache) Set(ctx context.Context, host string, icon *Favicon) {
	key := faviconKeyPrefix + host
	pipe := fc.client.TxPipeline()
	pipe.HSet(ctx, key, "type", icon.ContentType, "data", icon.Data)
	pipe.Expire(ctx, key, fc.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		slog.Warn("favicon cache set error", "host", host, "error", err)
	}
}

// Clear removes all cached icons by scanning for the prefix.
func (fc *FaviconCache) Clear(ctx context.Context) int {
	var cursor uint64
	var deleted int
	for {
		keys, next, err := fc.client.Scan(ctx, cursor, faviconKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("favicon cache scan error", "error", err)
			return deleted
		}
		if len(keys) > 0 {
			if err := fc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("favicon cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Info("favicon cache cleared", "deleted", deleted)
	}
	return deleted
}
