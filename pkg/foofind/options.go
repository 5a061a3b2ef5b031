package foofind

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	daemonAddr string
	index      string

	redisAddrs    []string
	redisPassword string
	keyPrefix     string

	sourcesDSN     string
	sourceCacheTTL time.Duration

	cacheEnabled bool
	searchTTL    time.Duration
	relatedTTL   time.Duration

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

// WithDaemon sets the SphinxQL address of the search daemon.
func WithDaemon(addr string) Option {
	return optionFunc(func(c *clientConfig) {
		c.daemonAddr = addr
	})
}

// WithIndex overrides the files index name.
func WithIndex(name string) Option {
	return optionFunc(func(c *clientConfig) {
		c.index = name
	})
}

// WithRedis configures the Redis instance holding sources, ranking stats,
// the result cache and the feedback stream.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.redisAddrs = []string{addr}
		c.redisPassword = password
	})
}

// WithKeyPrefix sets the Redis key prefix. Default: "foofind:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithPostgresSources reads the source registry from Postgres instead of Redis.
func WithPostgresSources(dsn string) Option {
	return optionFunc(func(c *clientConfig) {
		c.sourcesDSN = dsn
	})
}

// WithSourceCacheTTL sets how long the source list is kept in memory.
// Zero disables the in-process cache. Default: 30s.
func WithSourceCacheTTL(ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.sourceCacheTTL = ttl
	})
}

// WithResultCache enables the Redis result cache. Zero TTLs select the defaults
// (6h for searches, 1h for related files).
func WithResultCache(searchTTL, relatedTTL time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheEnabled = true
		c.searchTTL = searchTTL
		c.relatedTTL = relatedTTL
	})
}

// WithLogger enables structured logging for client operations.
// Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers client metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
