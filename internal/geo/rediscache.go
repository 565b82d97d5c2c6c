package geo

import (
	"context"
	"fmt"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// CachedProvider memoizes per-pair distances in Redis. Cache misses and Redis
// errors both fall through to the inner provider; a stale or unavailable cache
// degrades optimality, not correctness.
type CachedProvider struct {
	inner DistanceProvider
	rdb   *redis.Client
	ttl   time.Duration
}

func NewCachedProvider(inner DistanceProvider, rdb *redis.Client, ttl time.Duration) *CachedProvider {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &CachedProvider{inner: inner, rdb: rdb, ttl: ttl}
}

func (p *CachedProvider) RoadDistanceMeters(ctx context.Context, from, to Point) (int, error) {
	key := pairKey(from, to)
	if v, err := p.rdb.Get(ctx, key).Result(); err == nil {
		if d, err := strconv.Atoi(v); err == nil {
			return d, nil
		}
	}
	d, err := p.inner.RoadDistanceMeters(ctx, from, to)
	if err != nil {
		return 0, err
	}
	_ = p.rdb.Set(ctx, key, strconv.Itoa(d), p.ttl).Err()
	return d, nil
}

// pairKey is order-independent since road distances are treated as symmetric.
func pairKey(a, b Point) string {
	if a.Lat > b.Lat || (a.Lat == b.Lat && a.Lng > b.Lng) {
		a, b = b, a
	}
	return fmt.Sprintf("dist:%.6f,%.6f:%.6f,%.6f", a.Lat, a.Lng, b.Lat, b.Lng)
}
