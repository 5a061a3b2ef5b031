package search

import (
	"context"

	"github.com/psyvisions/foofind-web/internal/domain/search/formula"
	"github.com/psyvisions/foofind-web/internal/domain/search/plan"
	"github.com/psyvisions/foofind-web/internal/domain/search/request"
	"github.com/psyvisions/foofind-web/internal/domain/search/result"
	"github.com/psyvisions/foofind-web/internal/domain/source"
)

// Repository runs batches against the search daemon.
type Repository interface {
	Search(ctx context.Context, b plan.Batch, page int, rank formula.Formula) ([]result.Outcome, error)
	Related(ctx context.Context, phrases []string, sources []uint32) ([]result.Outcome, error)
	Lookup(ctx context.Context, lookups []request.Lookup) ([]result.Outcome, error)
}

// SourceLister reads the source registry.
type SourceLister interface {
	All(ctx context.Context) ([]source.Source, error)
}

// Planner turns a request into a batch of sub-queries.
type Planner interface {
	Plan(req request.Request, sources []source.Source) plan.Batch
}

// StatsProvider returns the current ranking statistics snapshot.
type StatsProvider interface {
	Snapshot() formula.Snapshot
}

// Cache memoizes warning-free responses.
type Cache interface {
	GetSearch(ctx context.Context, req request.Request) (result.Resolution, bool)
	PutSearch(ctx context.Context, req request.Request, res result.Resolution)
	GetRelated(ctx context.Context, phrases []string) ([]result.Outcome, bool)
	PutRelated(ctx context.Context, phrases []string, outcomes []result.Outcome)
}

// FeedbackNotifier receives server-resolution events.
type FeedbackNotifier interface {
	Notify(ctx context.Context, externalID string, shard *uint32)
}
