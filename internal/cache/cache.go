// Package cache keeps computed balance reports in Redis so repeated reads of
// an unchanged trip skip the storage round trips and the engine run.
//
// Each trip has a generation counter that Invalidate bumps. A report is only
// stored under the generation that was current before its inputs were read,
// so a write racing a recompute cannot leave a stale entry behind.
//
// A nil *BalanceCache is valid and behaves as a cache that never hits.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mmynk/tripsettle/pkg/api"
)

const (
	keyPrefix        = "tripsettle:balances:"
	generationPrefix = "tripsettle:balances-gen:"
)

// ErrStale is returned by Set when the trip was invalidated after the
// report's generation was read.
var ErrStale = errors.New("balance report is stale")

// BalanceCache stores GetBalances responses keyed by trip ID.
type BalanceCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New wraps an existing client. Entries expire after ttl (0 keeps them
// until invalidated).
func New(client *redis.Client, ttl time.Duration) *BalanceCache {
	if client == nil {
		return nil
	}
	return &BalanceCache{client: client, ttl: ttl}
}

// Connect dials Redis at rawURL and pings it. rawURL is either a redis://
// or rediss:// URL or a bare host:port.
func Connect(ctx context.Context, rawURL string, ttl time.Duration) (*BalanceCache, error) {
	opts, err := parseAddress(rawURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return New(client, ttl), nil
}

func parseAddress(rawURL string) (*redis.Options, error) {
	if strings.Contains(rawURL, "://") {
		opts, err := redis.ParseURL(rawURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		return opts, nil
	}
	if rawURL == "" {
		return nil, errors.New("redis address is empty")
	}
	return &redis.Options{Addr: rawURL}, nil
}

func key(tripID string) string {
	return keyPrefix + tripID
}

func generationKey(tripID string) string {
	return generationPrefix + tripID
}

// Generation returns the trip's current generation. Read it before loading
// the data a report is computed from, and pass it to Set.
func (c *BalanceCache) Generation(ctx context.Context, tripID string) (int64, error) {
	if c == nil {
		return 0, nil
	}
	gen, err := c.client.Get(ctx, generationKey(tripID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get generation: %w", err)
	}
	return gen, nil
}

// Get returns the cached report for tripID. The boolean is false on a miss.
func (c *BalanceCache) Get(ctx context.Context, tripID string) (*api.GetBalancesResponse, bool, error) {
	if c == nil {
		return nil, false, nil
	}

	data, err := c.client.Get(ctx, key(tripID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	report := &api.GetBalancesResponse{}
	if err := json.Unmarshal(data, report); err != nil {
		// A corrupt entry is dropped rather than served.
		_ = c.client.Del(ctx, key(tripID)).Err()
		return nil, false, fmt.Errorf("decode cached report: %w", err)
	}
	return report, true, nil
}

// Set stores report for tripID if the trip is still at generation. It
// returns ErrStale, and stores nothing, when the trip was invalidated since.
func (c *BalanceCache) Set(ctx context.Context, tripID string, generation int64, report *api.GetBalancesResponse) error {
	if c == nil || report == nil {
		return nil
	}

	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	genKey := generationKey(tripID)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != generation {
			return ErrStale
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key(tripID), data, c.ttl)
			return nil
		})
		return err
	}, genKey)
	switch {
	case errors.Is(err, ErrStale), errors.Is(err, redis.TxFailedErr):
		return ErrStale
	case err != nil:
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Invalidate drops the cached report for tripID and moves the trip to a new
// generation. Every write that changes a trip's expenses, participants,
// groups or settlements must call it.
func (c *BalanceCache) Invalidate(ctx context.Context, tripID string) error {
	if c == nil {
		return nil
	}
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey(tripID))
		pipe.Del(ctx, key(tripID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis invalidate: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (c *BalanceCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
