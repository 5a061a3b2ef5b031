// Package rescache memoizes search resolutions and related-search outcomes in a key-value store.
package rescache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/psyvisions/foofind-web/internal/db"
	"github.com/psyvisions/foofind-web/internal/domain"
	"github.com/psyvisions/foofind-web/internal/domain/search/request"
	"github.com/psyvisions/foofind-web/internal/domain/search/result"
)

// Cache names used as metric labels.
const (
	CacheSearch  = "search"
	CacheRelated = "related"
)

// Default TTLs.
const (
	DefaultSearchTTL  = 6 * time.Hour
	DefaultRelatedTTL = time.Hour
)

// store is the consumer interface for the result cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Config holds the cache TTLs and key prefix.
type Config struct {
	SearchTTL  time.Duration
	RelatedTTL time.Duration
	// Prefix namespaces the keys; empty selects domain.KeyPrefix.
	Prefix string
}

// Cache stores cacheable responses. Store failures are logged and treated as misses.
type Cache struct {
	store      store
	cfg        Config
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a result cache.
// cacheTotal is a counter vec with labels "cache" and "result" ("hit"/"miss"/"skip"), passed explicitly.
func New(s store, cfg Config, cacheTotal *prometheus.CounterVec, logger *zap.Logger) *Cache {
	if cfg.SearchTTL <= 0 {
		cfg.SearchTTL = DefaultSearchTTL
	}
	if cfg.RelatedTTL <= 0 {
		cfg.RelatedTTL = DefaultRelatedTTL
	}
	if cfg.Prefix == "" {
		cfg.Prefix = domain.KeyPrefix
	}
	return &Cache{store: s, cfg: cfg, cacheTotal: cacheTotal, logger: logger}
}

// GetSearch returns the memoized resolution of req.
func (c *Cache) GetSearch(ctx context.Context, req request.Request) (result.Resolution, bool) {
	var e searchEntry
	if !c.get(ctx, CacheSearch, c.searchKey(req), &e) {
		return result.Resolution{}, false
	}
	return e.resolution(), true
}

// PutSearch memoizes res unless it carries a warning or an error.
func (c *Cache) PutSearch(ctx context.Context, req request.Request, res result.Resolution) {
	if !res.Cacheable() {
		c.inc(CacheSearch, "skip")
		return
	}
	c.put(ctx, c.searchKey(req), newSearchEntry(res), c.cfg.SearchTTL)
}

// GetRelated returns the memoized outcomes for phrases.
func (c *Cache) GetRelated(ctx context.Context, phrases []string) ([]result.Outcome, bool) {
	var out []result.Outcome
	if !c.get(ctx, CacheRelated, c.relatedKey(phrases), &out) {
		return nil, false
	}
	return out, true
}

// PutRelated memoizes outcomes unless any of them carries a warning or an error.
func (c *Cache) PutRelated(ctx context.Context, phrases []string, outcomes []result.Outcome) {
	if !result.Cacheable(result.Collect(outcomes)) {
		c.inc(CacheRelated, "skip")
		return
	}
	c.put(ctx, c.relatedKey(phrases), outcomes, c.cfg.RelatedTTL)
}

func (c *Cache) get(ctx context.Context, cache, key string, dst any) bool {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached result", zap.String("key", key), zap.Error(err))
		}
		c.inc(cache, "miss")
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		c.logger.Warn("Failed to parse cached result", zap.String("key", key), zap.Error(err))
		c.inc(cache, "miss")
		return false
	}
	c.inc(cache, "hit")
	return true
}

func (c *Cache) put(ctx context.Context, key string, v any, ttl time.Duration) {
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Warn("Failed to encode result for cache", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, ttl); err != nil {
		c.logger.Warn("Failed to cache result", zap.String("key", key), zap.Error(err))
	}
}

func (c *Cache) inc(cache, res string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(cache, res).Inc()
	}
}

func (c *Cache) searchKey(req request.Request) string {
	f := req.Filters()
	return c.key(CacheSearch, req.Query(), f.Type, f.Src, f.Size, strconv.Itoa(req.Page()))
}

func (c *Cache) relatedKey(phrases []string) string {
	return c.key(CacheRelated, phrases...)
}

func (c *Cache) key(cache string, parts ...string) string {
	h := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return c.cfg.Prefix + "res_cache:" + cache + ":" + hex.EncodeToString(h[:])
}
