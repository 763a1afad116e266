// Package cache keeps a short-lived copy of each owner's entry for the current
// day. Entries are write-once, so a cached copy never goes stale; the cache is
// never used to decide whether a submission conflicts.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
	"github.com/vedran77/moodboard/internal/domain"
)

const (
	keyPrefix      = "moodboard:today:"
	defaultTTL     = 48 * time.Hour
	defaultTimeout = 250 * time.Millisecond
)

type RedisCache struct {
	client  *redis.Client
	ttl     time.Duration
	timeout time.Duration
}

// NewRedisCache accepts either a redis:// URL or a bare host:port and pings
// the server before returning.
func NewRedisCache(ctx context.Context, url string) (*RedisCache, error) {
	opts, err := parseOptions(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisCacheFromClient(client), nil
}

func NewRedisCacheFromClient(client *redis.Client) *RedisCache {
	return &RedisCache{client: client, ttl: defaultTTL, timeout: defaultTimeout}
}

func parseOptions(url string) (*redis.Options, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, errors.New("empty redis url")
	}
	if strings.Contains(url, "://") {
		opts, err := redis.ParseURL(url)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		return opts, nil
	}
	return &redis.Options{Addr: url}, nil
}

// Get returns (nil, nil) on a miss.
func (c *RedisCache) Get(ctx context.Context, ownerID uuid.UUID, date string) (*domain.MoodEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	raw, err := c.client.Get(ctx, Key(ownerID, date)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var entry domain.MoodEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, fmt.Errorf("decode cached entry: %w", err)
	}
	return &entry, nil
}

func (c *RedisCache) Set(ctx context.Context, entry *domain.MoodEntry) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode entry: %w", err)
	}
	return c.client.Set(ctx, Key(entry.OwnerID, entry.Date), raw, c.ttl).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func Key(ownerID uuid.UUID, date string) string {
	return keyPrefix + ownerID.String() + ":" + date
}
