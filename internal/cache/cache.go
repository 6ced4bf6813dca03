// Package cache holds recently probed file metadata in Redis. Payload bytes
// are never cached here, only metadata records.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"drivegate/internal/config"
	"drivegate/internal/drive"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "drivegate:meta:"

// Cache is a short-TTL metadata cache backed by Redis.
type Cache struct {
	client *redis.Client
}

// New connects to the configured Redis instance and verifies the connection.
func New(ctx context.Context) (*Cache, error) {
	addr := fmt.Sprintf("%s:%d", config.ValkeyHost, config.ValkeyPort)
	slog.Debug("Connecting to metadata cache", "addr", addr)

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: "",
		DB:       0,
	})

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	slog.Info("Metadata cache initialized", "addr", addr, "ttl", config.MetadataCacheTTL)
	return &Cache{client: client}, nil
}

// NewWithClient wraps an existing Redis client (for testing).
func NewWithClient(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// Get returns the cached metadata for fileID, or (nil, false) on a miss.
// Cache errors degrade to a miss.
func (c *Cache) Get(ctx context.Context, fileID string) (*drive.Metadata, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}

	raw, err := c.client.Get(ctx, keyPrefix+fileID).Result()
	if err != nil {
		if err != redis.Nil {
			slog.Warn("Metadata cache read failed", "file_id", fileID, "error", err)
		}
		return nil, false
	}

	var meta drive.Metadata
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		slog.Warn("Discarding unreadable cached metadata", "file_id", fileID, "error", err)
		return nil, false
	}
	return &meta, true
}

// Set stores metadata under the configured TTL. Degraded records are not
// cached so a later probe can recover the real metadata.
func (c *Cache) Set(ctx context.Context, fileID string, meta *drive.Metadata) {
	if c == nil || c.client == nil || meta == nil || meta.Degraded {
		return
	}

	raw, err := json.Marshal(meta)
	if err != nil {
		slog.Warn("Failed to marshal metadata for cache", "file_id", fileID, "error", err)
		return
	}

	if err := c.client.Set(ctx, keyPrefix+fileID, raw, config.MetadataCacheTTL).Err(); err != nil {
		slog.Warn("Metadata cache write failed", "file_id", fileID, "error", err)
	}
}

// Close closes the underlying connection.
func (c *Cache) Close() error {
	if c != nil && c.client != nil {
		return c.client.Close()
	}
	return nil
}
