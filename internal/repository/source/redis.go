package source

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/psyvisions/foofind-web/internal/domain"
	domsrc "github.com/psyvisions/foofind-web/internal/domain/source"
)

// hashStore is the consumer interface for Redis-backed sources (ISP).
type hashStore interface {
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// RedisLister reads sources from <prefix>source:<id> hashes.
type RedisLister struct {
	store  hashStore
	prefix string
	logger *zap.Logger
}

// NewRedisLister creates a lister. An empty prefix selects domain.KeyPrefix.
func NewRedisLister(s hashStore, prefix string, logger *zap.Logger) *RedisLister {
	if prefix == "" {
		prefix = domain.KeyPrefix
	}
	return &RedisLister{store: s, prefix: prefix, logger: logger}
}

// ListAll returns every source ordered by id. Malformed hashes are skipped and logged.
func (l *RedisLister) ListAll(ctx context.Context) ([]domsrc.Source, error) {
	keys, err := l.store.Scan(ctx, l.key("*"))
	if err != nil {
		return nil, fmt.Errorf("scan sources: %w", err)
	}
	if len(keys) == 0 {
		return []domsrc.Source{}, nil
	}

	results, err := l.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("hgetall sources: %w", err)
	}

	out := make([]domsrc.Source, 0, len(results))
	for i, m := range results {
		if len(m) == 0 {
			continue // deleted between SCAN and HGETALL
		}
		s, err := sourceFromHash(m)
		if err != nil {
			l.logger.Warn("Skipping malformed source", zap.String("key", keys[i]), zap.Error(err))
			continue
		}
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b domsrc.Source) int { return cmp.Compare(a.ID(), b.ID()) })
	return out, nil
}

func (l *RedisLister) key(id string) string {
	return l.prefix + "source:" + id
}
