// Package cache holds the sorted window listing of snapshots.
//
// Keys embed the snapshot id and its last_modified timestamp, so an install or
// an edit moves readers to a new key and old entries simply expire. The
// authoritative header is always read from the store first.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lalith-99/maintcal/internal/models"
	"github.com/lalith-99/maintcal/internal/observ"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Loader fetches the listing from the store on a miss.
type Loader func(ctx context.Context) ([]models.Window, error)

// WindowKey names the cached listing of one snapshot version.
func WindowKey(snap *models.Snapshot) string {
	return fmt.Sprintf("maintcal:windows:%s:%d:%d", snap.Tenant, snap.ID, snap.LastModified.UnixNano())
}

// Redis caches listings as JSON. Concurrent misses for one key share a single
// load. Redis failures are logged and fall through to the loader.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	sf     singleflight.Group
	logger *zap.Logger
}

func NewRedis(client *redis.Client, ttl time.Duration, logger *zap.Logger) *Redis {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Redis{client: client, ttl: ttl, logger: logger}
}

func (r *Redis) GetOrLoad(ctx context.Context, key string, load Loader) ([]models.Window, error) {
	raw, err := r.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var windows []models.Window
		if jerr := json.Unmarshal(raw, &windows); jerr == nil {
			observ.CacheLookups.WithLabelValues("hit").Inc()
			return windows, nil
		}
		r.logger.Warn("discarding undecodable cache entry", zap.String("key", key))
	case errors.Is(err, redis.Nil):
		observ.CacheLookups.WithLabelValues("miss").Inc()
	default:
		observ.CacheLookups.WithLabelValues("error").Inc()
		r.logger.Warn("window cache read failed", zap.String("key", key), zap.Error(err))
	}

	v, err, _ := r.sf.Do(key, func() (any, error) {
		windows, err := load(ctx)
		if err != nil {
			return nil, err
		}
		payload, err := json.Marshal(windows)
		if err == nil {
			if serr := r.client.Set(ctx, key, payload, r.ttl).Err(); serr != nil {
				r.logger.Warn("window cache write failed", zap.String("key", key), zap.Error(serr))
			}
		}
		return windows, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.Window), nil
}

// Nop loads on every call, sharing concurrent loads of one key.
type Nop struct {
	sf singleflight.Group
}

func (n *Nop) GetOrLoad(ctx context.Context, key string, load Loader) ([]models.Window, error) {
	v, err, _ := n.sf.Do(key, func() (any, error) {
		return load(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.Window), nil
}
