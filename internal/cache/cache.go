// Package cache stores shaped public job listings in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/jonathan/job-board/internal/types"
)

const (
	keyPrefix     = "jobboard:listings:"
	generationKey = keyPrefix + "gen"
)

// NewRedisClient creates and verifies a Redis client connection.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL: %w", err)
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return rdb, nil
}

// Listings caches listing pages under a generation number. Invalidate bumps
// the generation so every earlier entry is ignored and left to expire.
type Listings struct {
	rdb *redis.Client
	ttl time.Duration
	log *zap.SugaredLogger
}

// NewListings wraps rdb. Entries live for ttl.
func NewListings(rdb *redis.Client, ttl time.Duration, log *zap.SugaredLogger) *Listings {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Listings{rdb: rdb, ttl: ttl, log: log}
}

func entryKey(generation int64, key string) string {
	return keyPrefix + strconv.FormatInt(generation, 10) + ":" + key
}

func (l *Listings) generation(ctx context.Context) (int64, error) {
	gen, err := l.rdb.Get(ctx, generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// Get returns the cached listing for key. Redis errors count as a miss.
func (l *Listings) Get(ctx context.Context, key string) ([]types.JobResponse, bool) {
	gen, err := l.generation(ctx)
	if err != nil {
		l.log.Warnw("listing cache generation lookup failed", "err", err)
		return nil, false
	}
	raw, err := l.rdb.Get(ctx, entryKey(gen, key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			l.log.Warnw("listing cache get failed", "key", key, "err", err)
		}
		return nil, false
	}
	var jobs []types.JobResponse
	if err := json.Unmarshal(raw, &jobs); err != nil {
		l.log.Warnw("listing cache entry unreadable", "key", key, "err", err)
		return nil, false
	}
	return jobs, true
}

// Set stores jobs under key for the configured TTL.
func (l *Listings) Set(ctx context.Context, key string, jobs []types.JobResponse) {
	gen, err := l.generation(ctx)
	if err != nil {
		l.log.Warnw("listing cache generation lookup failed", "err", err)
		return
	}
	raw, err := json.Marshal(jobs)
	if err != nil {
		l.log.Warnw("listing cache encode failed", "key", key, "err", err)
		return
	}
	if err := l.rdb.Set(ctx, entryKey(gen, key), raw, l.ttl).Err(); err != nil {
		l.log.Warnw("listing cache set failed", "key", key, "err", err)
	}
}

// Invalidate discards every cached listing.
func (l *Listings) Invalidate(ctx context.Context) {
	if err := l.rdb.Incr(ctx, generationKey).Err(); err != nil {
		l.log.Warnw("listing cache invalidate failed", "err", err)
	}
}
