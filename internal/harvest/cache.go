package harvest

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// EndpointCache remembers the last working endpoint per source across runs so
// repeated invocations skip probing dead URL variants. Optional: a nil cache
// disables the behaviour.
type EndpointCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewEndpointCache(rdb *redis.Client, ttl time.Duration) *EndpointCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &EndpointCache{rdb: rdb, ttl: ttl}
}

func endpointKey(source string) string { return "quotemill:endpoint:" + source }

// Working returns the cached endpoint for source, if any. Cache errors are
// indistinguishable from misses: the caller just probes.
func (c *EndpointCache) Working(ctx context.Context, source string) (string, bool) {
	if c == nil || c.rdb == nil {
		return "", false
	}
	v, err := c.rdb.Get(ctx, endpointKey(source)).Result()
	if err != nil || v == "" {
		return "", false
	}
	return v, true
}

// SetWorking records the endpoint that answered the probe.
func (c *EndpointCache) SetWorking(ctx context.Context, source, endpoint string) {
	if c == nil || c.rdb == nil {
		return
	}
	c.rdb.Set(ctx, endpointKey(source), endpoint, c.ttl)
}

// Forget drops the cached endpoint, used when the cached value stops
// responding.
func (c *EndpointCache) Forget(ctx context.Context, source string) {
	if c == nil || c.rdb == nil {
		return
	}
	c.rdb.Del(ctx, endpointKey(source))
}
