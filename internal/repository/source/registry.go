// Package source adapts the external source registry: listers for Redis and Postgres
// and a TTL-cached registry on top of them.
package source

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	domsrc "github.com/psyvisions/foofind-web/internal/domain/source"
)

const allKey = "all"

// Lister loads the full source list from a backing store.
type Lister interface {
	ListAll(ctx context.Context) ([]domsrc.Source, error)
}

// Registry serves source lists from an in-process cache refreshed every ttl.
type Registry struct {
	lister Lister
	cache  *expirable.LRU[string, []domsrc.Source]
}

// NewRegistry creates a registry. A non-positive ttl disables caching.
func NewRegistry(l Lister, ttl time.Duration) *Registry {
	r := &Registry{lister: l}
	if ttl > 0 {
		r.cache = expirable.NewLRU[string, []domsrc.Source](1, nil, ttl)
	}
	return r
}

// All returns every known source.
func (r *Registry) All(ctx context.Context) ([]domsrc.Source, error) {
	if r.cache != nil {
		if v, ok := r.cache.Get(allKey); ok {
			return v, nil
		}
	}
	v, err := r.lister.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	if r.cache != nil {
		r.cache.Add(allKey, v)
	}
	return v, nil
}

// List returns the sources in group (any group when empty), only blocked ones when blockedOnly.
func (r *Registry) List(ctx context.Context, group string, blockedOnly bool) ([]domsrc.Source, error) {
	all, err := r.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domsrc.Source, 0, len(all))
	for _, s := range all {
		if group != "" && !s.InGroup(group) {
			continue
		}
		if blockedOnly && !s.Blocked() {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

// Invalidate drops the cached list.
func (r *Registry) Invalidate() {
	if r.cache != nil {
		r.cache.Purge()
	}
}
