// Package cache mirrors reel analyses into Redis so repeat lookups skip the
// document store. The store stays the source of truth.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"portfolio-stack/internal/models"
	"portfolio-stack/shared/config"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// ReelCache is the subset of Cache the reel pipeline depends on.
type ReelCache interface {
	GetReelAnalysis(ctx context.Context, reelURL string) (*models.ReelAnalysis, bool, error)
	SetReelAnalysis(ctx context.Context, a *models.ReelAnalysis) error
}

type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache connects to Redis. A nil Cache with a nil error is returned when
// no address is configured.
func NewCache(ctx context.Context, cfg *config.RedisConfig) (*Cache, error) {
	if cfg.Addr == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Printf("Connected to Redis at %s", cfg.Addr)
	return &Cache{client: client, ttl: cfg.TTL}, nil
}

// ReelKey generates a consistent cache key for a normalized reel URL.
func ReelKey(reelURL string) string {
	hash := sha256.Sum256([]byte(reelURL))
	return fmt.Sprintf("reel:%x", hash[:8])
}

// GetReelAnalysis reports found=false on a miss.
func (c *Cache) GetReelAnalysis(ctx context.Context, reelURL string) (*models.ReelAnalysis, bool, error) {
	val, err := c.client.Get(ctx, ReelKey(reelURL)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get reel %s: %w", reelURL, err)
	}

	var a models.ReelAnalysis
	if err := json.Unmarshal(val, &a); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached reel %s: %w", reelURL, err)
	}
	return &a, true, nil
}

func (c *Cache) SetReelAnalysis(ctx context.Context, a *models.ReelAnalysis) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to marshal reel %s: %w", a.ReelURL, err)
	}
	if err := c.client.Set(ctx, ReelKey(a.ReelURL), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set reel %s: %w", a.ReelURL, err)
	}
	return nil
}

func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	return c.client.Close()
}
