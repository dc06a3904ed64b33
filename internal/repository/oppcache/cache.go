// Package oppcache is a read-through cache in front of the opportunity source.
package oppcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/liquiditick/internal/db"
	"github.com/kailas-cloud/liquiditick/internal/domain"
	domopp "github.com/kailas-cloud/liquiditick/internal/domain/opportunity"
)

// source is the decorated data source (ISP).
type source interface {
	Fetch(ctx context.Context, f domopp.Filters) ([]domopp.Row, error)
	Tokens(ctx context.Context) ([]string, error)
	Stats(ctx context.Context) (domopp.Stats, error)
}

// store is the consumer interface for the cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedSource caches fetch and token results for ttl. Errors are never cached.
type CachedSource struct {
	inner      source
	store      store
	prefix     string
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner source,
	s store,
	prefix string,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedSource {
	if prefix == "" {
		prefix = domain.DefaultKeyPrefix
	}
	return &CachedSource{
		inner:      inner,
		store:      s,
		prefix:     prefix + "oppcache:",
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Fetch returns cached rows for equivalent filters or reads through.
func (c *CachedSource) Fetch(ctx context.Context, f domopp.Filters) ([]domopp.Row, error) {
	key := c.cacheKey("rows:" + f.Canonical())

	var cached []rowDTO
	if c.get(ctx, key, &cached) {
		c.incCache("hit")
		return dtosToRows(cached), nil
	}
	c.incCache("miss")

	rows, err := c.inner.Fetch(ctx, f)
	if err != nil {
		return nil, err
	}
	c.put(ctx, key, rowsToDTOs(rows))
	return rows, nil
}

// Tokens returns the cached symbol list or reads through.
func (c *CachedSource) Tokens(ctx context.Context) ([]string, error) {
	key := c.cacheKey("tokens")

	var cached []string
	if c.get(ctx, key, &cached) {
		c.incCache("hit")
		return cached, nil
	}
	c.incCache("miss")

	tokens, err := c.inner.Tokens(ctx)
	if err != nil {
		return nil, err
	}
	c.put(ctx, key, tokens)
	return tokens, nil
}

// Stats is not cached; the row is tiny and changes with every scan.
func (c *CachedSource) Stats(ctx context.Context) (domopp.Stats, error) {
	return c.inner.Stats(ctx)
}

func (c *CachedSource) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *CachedSource) cacheKey(s string) string {
	h := sha256.Sum256([]byte(s))
	return c.prefix + hex.EncodeToString(h[:])
}

func (c *CachedSource) get(ctx context.Context, key string, dst any) bool {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to read opportunity cache", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		c.logger.Warn("Failed to parse opportunity cache", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (c *CachedSource) put(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Warn("Failed to encode opportunity cache", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to write opportunity cache", zap.String("key", key), zap.Error(err))
	}
}
