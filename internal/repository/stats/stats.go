// Package stats loads the per-source ranking telemetry published by the external
// ranking collaborator and keeps the latest snapshot for the formula synthesizer.
package stats

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/psyvisions/foofind-web/internal/domain"
	"github.com/psyvisions/foofind-web/internal/domain/search/formula"
	"github.com/psyvisions/foofind-web/internal/metrics"
)

// Statistic tables, one Redis hash each: field = source id, value = float.
const (
	TablePopularity = "rc"
	TableAverage    = "ra"
	TableDeviation  = "rd"
)

var tables = []string{TablePopularity, TableAverage, TableDeviation}

// store is the consumer interface for the statistics tables (ISP).
type store interface {
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
}

// Loader reads the three statistics hashes in one round trip.
type Loader struct {
	store  store
	prefix string
	logger *zap.Logger
}

// NewLoader creates a loader. An empty prefix selects domain.KeyPrefix.
func NewLoader(s store, prefix string, logger *zap.Logger) *Loader {
	if prefix == "" {
		prefix = domain.KeyPrefix
	}
	return &Loader{store: s, prefix: prefix, logger: logger}
}

// Load returns a fresh snapshot. Unparsable, non-finite and negative-count entries are dropped.
func (l *Loader) Load(ctx context.Context) (*formula.Stats, error) {
	keys := make([]string, len(tables))
	for i, t := range tables {
		keys[i] = l.prefix + "stats:" + t
	}
	hashes, err := l.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("load ranking stats: %w", err)
	}
	if len(hashes) != len(tables) {
		return nil, fmt.Errorf("load ranking stats: got %d tables, want %d", len(hashes), len(tables))
	}
	parsed := make([]map[uint32]float64, len(tables))
	for i, h := range hashes {
		parsed[i] = l.parse(tables[i], h)
	}
	return formula.NewStats(parsed[0], parsed[1], parsed[2]), nil
}

func (l *Loader) parse(table string, h map[string]string) map[uint32]float64 {
	out := make(map[uint32]float64, len(h))
	for k, v := range h {
		id, err := strconv.ParseUint(k, 10, 32)
		if err != nil {
			l.logger.Debug("Skipping stats entry", zap.String("table", table), zap.String("source", k))
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			l.logger.Debug("Skipping stats entry", zap.String("table", table), zap.String("source", k))
			continue
		}
		if math.IsNaN(f) || math.IsInf(f, 0) || (table == TablePopularity && f < 0) {
			l.logger.Warn("Skipping out-of-range stats value",
				zap.String("table", table), zap.String("source", k), zap.String("value", v))
			continue
		}
		out[uint32(id)] = f
	}
	return out
}

// Holder publishes the latest snapshot. Readers never block.
type Holder struct {
	loader *Loader
	logger *zap.Logger
	cur    atomic.Pointer[formula.Stats]
}

// NewHolder creates a holder that starts with an empty snapshot.
func NewHolder(loader *Loader, logger *zap.Logger) *Holder {
	h := &Holder{loader: loader, logger: logger}
	h.cur.Store(formula.Empty())
	return h
}

// Snapshot returns the current snapshot.
func (h *Holder) Snapshot() formula.Snapshot { return h.cur.Load() }

// Refresh loads a new snapshot. On failure the previous one stays in place.
func (h *Holder) Refresh(ctx context.Context) error {
	s, err := h.loader.Load(ctx)
	if err != nil {
		return err
	}
	h.cur.Store(s)
	rc, ra, rd := s.Len()
	metrics.StatsSources.WithLabelValues(TablePopularity).Set(float64(rc))
	metrics.StatsSources.WithLabelValues(TableAverage).Set(float64(ra))
	metrics.StatsSources.WithLabelValues(TableDeviation).Set(float64(rd))
	return nil
}

// Run refreshes every interval until ctx is cancelled. It refreshes once immediately.
func (h *Holder) Run(ctx context.Context, interval time.Duration) error {
	if err := h.Refresh(ctx); err != nil {
		h.logger.Warn("Initial ranking stats load failed", zap.Error(err))
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := h.Refresh(ctx); err != nil {
				h.logger.Warn("Ranking stats refresh failed, keeping previous snapshot", zap.Error(err))
			}
		}
	}
}
