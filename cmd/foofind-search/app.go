package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/psyvisions/foofind-web/internal/config"
	dbRedis "github.com/psyvisions/foofind-web/internal/db/redis"
	"github.com/psyvisions/foofind-web/internal/db/sphinxql"
	"github.com/psyvisions/foofind-web/internal/domain/search/plan"
	logpkg "github.com/psyvisions/foofind-web/internal/logger"
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

// app is the composition root shared by every command.
type app struct {
	env    string
	cfg    config.Config
	logger *zap.Logger

	redis  *dbRedis.Store
	daemon *sphinxql.Daemon
	pg     *sql.DB

	sources *sourcerepo.Registry
	stats   *statsrepo.Holder
	search  *searchuc.Service
	block   *blockuc.Service
	health  *healthuc.Service
}

func newApp(ctx context.Context, env string) (*app, error) {
	cfg, err := config.Load(env)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	a := &app{env: env, cfg: cfg, logger: logger}
	if err := a.wire(ctx); err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

func (a *app) wire(ctx context.Context) error {
	cfg := a.cfg

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Redis.Addrs,
		Password: cfg.Redis.Password,
	})
	if err != nil {
		return fmt.Errorf("create redis store: %w", err)
	}
	a.redis = store

	if err := store.WaitForReady(ctx, time.Duration(cfg.Redis.ReadinessTimeout)*time.Second); err != nil {
		// The API still answers uncached while Redis is down.
		a.logger.Warn("Redis not ready, continuing degraded", zap.Error(err))
	} else {
		a.logger.Info("Connected to redis")
	}

	daemon, err := sphinxql.New(sphinxql.Config{
		Addr:           cfg.Daemon.Addr,
		ConnectTimeout: time.Duration(cfg.Daemon.ConnectTimeoutMs) * time.Millisecond,
		ReadTimeout:    2 * time.Duration(cfg.Daemon.MaxQueryTimeMs) * time.Millisecond,
		MaxOpenConns:   cfg.Daemon.MaxOpenConns,
	})
	if err != nil {
		return fmt.Errorf("create daemon client: %w", err)
	}
	a.daemon = daemon

	metrics.RegisterSearchMetrics()

	lister, err := a.sourceLister()
	if err != nil {
		return err
	}
	a.sources = sourcerepo.NewRegistry(lister, time.Duration(cfg.Sources.CacheTTLSec)*time.Second)

	prefix := cfg.Redis.KeyPrefix
	a.stats = statsrepo.NewHolder(statsrepo.NewLoader(store, prefix, a.logger), a.logger)

	// Pass a nil interface, not a typed nil pointer, when caching is off.
	var cache searchuc.Cache
	if cfg.Cache.IsEnabled() {
		cache = rescache.New(store, rescache.Config{
			SearchTTL:  time.Duration(cfg.Cache.SearchTTLSec) * time.Second,
			RelatedTTL: time.Duration(cfg.Cache.RelatedTTLSec) * time.Second,
			Prefix:     prefix,
		}, metrics.CacheTotal, a.logger)
	}

	repo := searchrepo.New(daemon, searchrepo.Params{
		Index:        cfg.Daemon.Index,
		PageSize:     cfg.Daemon.PageSize,
		MaxMatches:   cfg.Daemon.MaxMatches,
		Cutoff:       cfg.Daemon.Cutoff,
		MaxQueryTime: time.Duration(cfg.Daemon.MaxQueryTimeMs) * time.Millisecond,
		MaxBatchSize: cfg.Daemon.MaxBatchSize,
	})

	a.search = searchuc.New(
		repo, a.sources, plan.New(nil), a.stats, cache,
		feedbackrepo.New(store, prefix, a.logger), a.logger,
	)
	a.block = blockuc.New(repo, a.logger)
	a.health = healthuc.New(daemon, store)
	return nil
}

// reload drops the cached source list and reloads the ranking statistics.
func (a *app) reload(ctx context.Context) {
	a.sources.Invalidate()
	if err := a.stats.Refresh(ctx); err != nil {
		a.logger.Warn("Reload kept previous ranking stats", zap.Error(err))
		return
	}
	a.logger.Info("Reloaded sources and ranking stats")
}

func (a *app) sourceLister() (sourcerepo.Lister, error) {
	switch a.cfg.Sources.Driver {
	case "postgres":
		pg, err := sourcerepo.OpenPostgres(a.cfg.Sources.DSN)
		if err != nil {
			return nil, fmt.Errorf("open sources database: %w", err)
		}
		a.pg = pg
		return sourcerepo.NewPostgresLister(pg, a.logger), nil
	case "redis":
		return sourcerepo.NewRedisLister(a.redis, a.cfg.Redis.KeyPrefix, a.logger), nil
	default:
		return nil, fmt.Errorf("unknown sources driver %q", a.cfg.Sources.Driver)
	}
}

// close releases every connection that was opened. Safe on a partially wired app.
func (a *app) close() {
	if a.pg != nil {
		if err := a.pg.Close(); err != nil {
			a.logger.Warn("Closing sources database", zap.Error(err))
		}
	}
	if a.daemon != nil {
		if err := a.daemon.Close(); err != nil {
			a.logger.Warn("Closing daemon client", zap.Error(err))
		}
	}
	if a.redis != nil {
		a.redis.Close()
	}
	_ = a.logger.Sync()
}
