package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"invoiceflow/billing"
	"invoiceflow/logger"
	"invoiceflow/metrics"

	"github.com/redis/go-redis/v9"
)

const schemesKeyFmt = "schemes:%s"

// SchemeCache holds each tenant's scheme list. A nil *SchemeCache or a cache
// without a client is valid and always misses.
type SchemeCache struct {
	client *redis.Client
	ttl    time.Duration
}

// Connect pings Redis and returns a cache. On failure the returned cache is
// disabled and the error is reported so the caller can log it.
func Connect(addr, password string, db int, ttl time.Duration) (*SchemeCache, error) {
	if addr == "" {
		return &SchemeCache{ttl: ttl}, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return &SchemeCache{ttl: ttl}, err
	}
	return &SchemeCache{client: client, ttl: ttl}, nil
}

func (c *SchemeCache) Enabled() bool {
	return c != nil && c.client != nil
}

func key(schema string) string {
	return fmt.Sprintf(schemesKeyFmt, schema)
}

// Schemes returns the cached schemes for a tenant.
func (c *SchemeCache) Schemes(ctx context.Context, schema string) ([]billing.Scheme, bool) {
	if !c.Enabled() {
		return nil, false
	}
	data, err := c.client.Get(ctx, key(schema)).Bytes()
	if err != nil {
		metrics.SchemeCacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	}
	var schemes []billing.Scheme
	if err := json.Unmarshal(data, &schemes); err != nil {
		log := logger.WithComponent("cache")
		log.Warn().Err(err).Str("tenant", schema).Msg("dropping undecodable scheme cache entry")
		c.client.Del(ctx, key(schema))
		metrics.SchemeCacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	}
	metrics.SchemeCacheLookups.WithLabelValues("hit").Inc()
	return schemes, true
}

func (c *SchemeCache) StoreSchemes(ctx context.Context, schema string, schemes []billing.Scheme) {
	if !c.Enabled() {
		return
	}
	data, err := json.Marshal(schemes)
	if err != nil {
		return
	}
	c.client.Set(ctx, key(schema), data, c.ttl)
}

// Invalidate drops a tenant's cached schemes after any scheme write.
func (c *SchemeCache) Invalidate(ctx context.Context, schema string) {
	if !c.Enabled() {
		return
	}
	c.client.Del(ctx, key(schema))
}

func (c *SchemeCache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}
