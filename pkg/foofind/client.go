package foofind

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	dbRedis "github.com/psyvisions/foofind-web/internal/db/redis"
	"github.com/psyvisions/foofind-web/internal/db/sphinxql"
	"github.com/psyvisions/foofind-web/internal/domain/search/plan"
	"github.com/psyvisions/foofind-web/internal/domain/search/request"
	"github.com/psyvisions/foofind-web/internal/domain/search/result"
	domsrc "github.com/psyvisions/foofind-web/internal/domain/source"
	"github.com/psyvisions/foofind-web/internal/metrics"
	feedbackrepo "github.com/psyvisions/foofind-web/internal/repository/feedback"
	"github.com/psyvisions/foofind-web/internal/repository/rescache"
	searchrepo "github.com/psyvisions/foofind-web/internal/repository/search"
	sourcerepo "github.com/psyvisions/foofind-web/internal/repository/source"
	statsrepo "github.com/psyvisions/foofind-web/internal/repository/stats"
	blockuc "github.com/psyvisions/foofind-web/internal/usecase/block"
	healthuc "github.com/psyvisions/foofind-web/internal/usecase/health"
	searchuc "github.com/psyvisions/foofind-web/internal/usecase/search"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultSourceCacheTTL   = 30 * time.Second
)

// Internal interfaces, swapped in tests.
type searchUseCase interface {
	Search(ctx context.Context, req request.Request) (result.Resolution, error)
	Related(ctx context.Context, rel request.Related) ([]result.Outcome, error)
	LocateServer(ctx context.Context, externalID, name string) (uint32, bool, error)
}

type blockUseCase interface {
	SetBlocked(ctx context.Context, ids []uint64, files []blockuc.File, block bool) (blockuc.Report, error)
}

type statsRefresher interface {
	Refresh(ctx context.Context) error
}

type sourceLister interface {
	List(ctx context.Context, group string, blockedOnly bool) ([]domsrc.Source, error)
}

// Client is the foofind entry point.
type Client struct {
	redis  *dbRedis.Store
	daemon *sphinxql.Daemon
	pg     *sql.DB

	searchSvc searchUseCase
	blockSvc  blockUseCase
	healthSvc healthUseCase
	stats     statsRefresher
	sources   sourceLister
	obs       *observer
}

// New creates a Client, waits for Redis and loads the ranking statistics once.
// The provided context bounds the readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{sourceCacheTTL: defaultSourceCacheTTL}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.daemonAddr == "" {
		return nil, errors.New("foofind: daemon address required (use WithDaemon)")
	}
	if len(cfg.redisAddrs) == 0 {
		return nil, errors.New("foofind: redis address required (use WithRedis)")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	c := &Client{obs: obs}
	if err := c.connect(ctx, cfg); err != nil {
		c.Close()
		return nil, err
	}
	c.wire(cfg)

	// Searches rank with neutral coefficients until stats load.
	if err := c.RefreshStats(ctx); err != nil && cfg.logger != nil {
		cfg.logger.Warn("Initial ranking stats load failed", zap.Error(err))
	}
	return c, nil
}

func (c *Client) connect(ctx context.Context, cfg *clientConfig) error {
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.redisAddrs,
		Password: cfg.redisPassword,
	})
	if err != nil {
		return fmt.Errorf("foofind: create redis store: %w", err)
	}
	c.redis = store
	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		return fmt.Errorf("foofind: redis not ready: %w", err)
	}

	daemon, err := sphinxql.New(sphinxql.Config{Addr: cfg.daemonAddr})
	if err != nil {
		return fmt.Errorf("foofind: create daemon client: %w", err)
	}
	c.daemon = daemon

	if cfg.sourcesDSN != "" {
		pg, err := sourcerepo.OpenPostgres(cfg.sourcesDSN)
		if err != nil {
			return fmt.Errorf("foofind: open sources database: %w", err)
		}
		c.pg = pg
	}
	return nil
}

func (c *Client) wire(cfg *clientConfig) {
	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var lister sourcerepo.Lister = sourcerepo.NewRedisLister(c.redis, cfg.keyPrefix, logger)
	if c.pg != nil {
		lister = sourcerepo.NewPostgresLister(c.pg, logger)
	}
	registry := sourcerepo.NewRegistry(lister, cfg.sourceCacheTTL)

	holder := statsrepo.NewHolder(statsrepo.NewLoader(c.redis, cfg.keyPrefix, logger), logger)

	// nil interface, not a typed nil pointer, when caching is off.
	var cache searchuc.Cache
	if cfg.cacheEnabled {
		cache = rescache.New(c.redis, rescache.Config{
			SearchTTL:  cfg.searchTTL,
			RelatedTTL: cfg.relatedTTL,
			Prefix:     cfg.keyPrefix,
		}, metrics.CacheTotal, logger)
	}

	params := searchrepo.DefaultParams()
	if cfg.index != "" {
		params.Index = cfg.index
	}
	repo := searchrepo.New(c.daemon, params)

	c.searchSvc = searchuc.New(
		repo, registry, plan.New(nil), holder, cache,
		feedbackrepo.New(c.redis, cfg.keyPrefix, logger), logger,
	)
	c.blockSvc = blockuc.New(repo, logger)
	c.healthSvc = healthuc.New(c.daemon, c.redis)
	c.stats = holder
	c.sources = registry
}

// Close releases all resources.
func (c *Client) Close() {
	if c.pg != nil {
		_ = c.pg.Close()
	}
	if c.daemon != nil {
		_ = c.daemon.Close()
	}
	if c.redis != nil {
		c.redis.Close()
	}
}

// Ping checks daemon connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.daemon.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// RefreshStats reloads the ranking statistics. On failure the previous snapshot stays in use.
func (c *Client) RefreshStats(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("stats.refresh", start, err) }()

	if err = c.stats.Refresh(ctx); err != nil {
		return fmt.Errorf("refresh stats: %w", err)
	}
	return nil
}

// Sources lists known sources, optionally only those in group and only blocked ones.
func (c *Client) Sources(ctx context.Context, group string, blockedOnly bool) (_ []Source, err error) {
	start := time.Now()
	defer func() { c.obs.observe("sources.list", start, err) }()

	list, err := c.sources.List(ctx, group, blockedOnly)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	out := make([]Source, len(list))
	for i, s := range list {
		out[i] = Source{ID: s.ID(), Domain: s.Domain(), Groups: s.Groups(), Blocked: s.Blocked()}
	}
	return out, nil
}
