package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/psyvisions/foofind-web/internal/db"
	"github.com/psyvisions/foofind-web/internal/domain"
	"github.com/psyvisions/foofind-web/internal/domain/search/filter"
	"github.com/psyvisions/foofind-web/internal/domain/search/formula"
	"github.com/psyvisions/foofind-web/internal/domain/search/mode"
	"github.com/psyvisions/foofind-web/internal/domain/search/plan"
	"github.com/psyvisions/foofind-web/internal/domain/search/query"
	"github.com/psyvisions/foofind-web/internal/domain/search/request"
	"github.com/psyvisions/foofind-web/internal/domain/search/result"
	"github.com/psyvisions/foofind-web/internal/metrics"
)

// Ranking and ordering of the daemon queries.
const (
	searchRanker  = "sum((10.0*lcs+1.0/min_best_span_pos)*user_weight)"
	searchSort    = "wr DESC, r2 DESC, uri1 DESC"
	relatedRanker = "sum((2.0*lcs/min_best_span_pos)*user_weight)"
	relatedSort   = "r DESC, r2 DESC, uri1 DESC"

	relatedLimit      = 6
	relatedMaxMatches = 6
	relatedCutoff     = 10000

	// CommentRelated tags related-file queries in the daemon log.
	CommentRelated = "search.search_related"
)

// Batch operation names used as metric labels.
const (
	OpSearch  = "search"
	OpRelated = "related"
	OpLookup  = "lookup"
	OpUpdate  = "update"
)

// store is the consumer interface for the search daemon (ISP).
type store interface {
	RunQueries(ctx context.Context, queries []*db.Query) ([]db.Outcome, error)
	UpdateAttributes(ctx context.Context, index, attr string, values map[uint64]int64) (int, error)
}

// Params are the daemon query budgets.
type Params struct {
	Index        string
	PageSize     int
	MaxMatches   int
	Cutoff       int
	MaxQueryTime time.Duration
	// MaxBatchSize caps the queries sent in one round trip.
	MaxBatchSize int
}

// DefaultParams returns the production budgets.
func DefaultParams() Params {
	return Params{
		Index:        domain.FilesIndex,
		PageSize:     10,
		MaxMatches:   1000,
		Cutoff:       2000000,
		MaxQueryTime: 1500 * time.Millisecond,
		MaxBatchSize: 32,
	}
}

// Repo dispatches planned queries to the search daemon.
type Repo struct {
	store  store
	params Params
}

// New creates a search repository.
func New(s store, p Params) *Repo {
	return &Repo{store: s, params: p}
}

// Search runs every plan of the batch in one round trip, ranked by rank.
func (r *Repo) Search(ctx context.Context, b plan.Batch, page int, rank formula.Formula) ([]result.Outcome, error) {
	if page < 1 {
		page = 1
	}
	sel := rank.Select()
	queries := make([]*db.Query, 0, len(b.Plans))
	for _, p := range b.Plans {
		q, err := db.NewQuery(r.params.Index).
			Match(p.Text, mode.Extended).
			Select(sel).
			Ranker(searchRanker).
			FieldWeight(domain.FieldName, 100).
			FieldWeight(domain.FieldMeta, 1).
			FieldWeight(domain.FieldRelMeta, 50).
			SortBy(searchSort).
			Filter(p.Filters).
			Limits((page-1)*r.params.PageSize, r.params.PageSize, r.params.MaxMatches, r.params.Cutoff).
			MaxQueryTime(r.params.MaxQueryTime).
			Comment(p.Label).
			Build()
		if err != nil {
			return nil, mapErr(fmt.Errorf("plan %d: %w", p.Position, err))
		}
		queries = append(queries, q)
	}
	return r.run(ctx, OpSearch, queries)
}

// Related runs one ranked query per phrase over the given sources.
func (r *Repo) Related(ctx context.Context, phrases []string, sources []uint32) ([]result.Outcome, error) {
	if len(phrases) == 0 {
		return nil, nil
	}
	filters, err := relatedFilters(sources)
	if err != nil {
		return nil, mapErr(err)
	}
	queries := make([]*db.Query, 0, len(phrases))
	for _, phrase := range phrases {
		q, err := db.NewQuery(r.params.Index).
			Match(query.Escape(phrase), mode.Extended).
			Ranker(relatedRanker).
			FieldWeight(domain.FieldName, 100).
			FieldWeight(domain.FieldMeta, 1).
			SortBy(relatedSort).
			Filter(filters).
			Limits(0, relatedLimit, relatedMaxMatches, relatedCutoff).
			MaxQueryTime(r.params.MaxQueryTime).
			Comment(CommentRelated).
			Build()
		if err != nil {
			return nil, mapErr(err)
		}
		queries = append(queries, q)
	}
	return r.run(ctx, OpRelated, queries)
}

// Lookup resolves files by exact identifier match, MaxBatchSize lookups per round trip.
// Outcomes are returned in input order.
func (r *Repo) Lookup(ctx context.Context, lookups []request.Lookup) ([]result.Outcome, error) {
	size := r.params.MaxBatchSize
	if size <= 0 {
		size = len(lookups)
	}
	out := make([]result.Outcome, 0, len(lookups))
	for start := 0; start < len(lookups); start += size {
		end := min(start+size, len(lookups))
		queries := make([]*db.Query, 0, end-start)
		for _, l := range lookups[start:end] {
			q, err := lookupQuery(r.params, l)
			if err != nil {
				return nil, mapErr(err)
			}
			queries = append(queries, q)
		}
		chunk, err := r.run(ctx, OpLookup, queries)
		if err != nil {
			return nil, err
		}
		out = append(out, chunk...)
	}
	return out, nil
}

// SetBlocked sets the blocked flag on every document id and returns the rows updated.
func (r *Repo) SetBlocked(ctx context.Context, ids []uint64, blocked bool) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	v := int64(0)
	if blocked {
		v = 1
	}
	values := make(map[uint64]int64, len(ids))
	for _, id := range ids {
		values[id] = v
	}

	start := time.Now()
	n, err := r.store.UpdateAttributes(ctx, r.params.Index, domain.AttrBlocked, values)
	metrics.DaemonBatchDuration.WithLabelValues(OpUpdate).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.DaemonBatchesTotal.WithLabelValues(OpUpdate, "error").Inc()
		return n, mapErr(err)
	}
	metrics.DaemonBatchesTotal.WithLabelValues(OpUpdate, "ok").Inc()
	return n, nil
}

func (r *Repo) run(ctx context.Context, op string, queries []*db.Query) ([]result.Outcome, error) {
	if len(queries) == 0 {
		return nil, nil
	}
	start := time.Now()
	raw, err := r.store.RunQueries(ctx, queries)
	metrics.DaemonBatchDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.DaemonBatchesTotal.WithLabelValues(op, "error").Inc()
		return nil, mapErr(err)
	}
	if len(raw) != len(queries) {
		metrics.DaemonBatchesTotal.WithLabelValues(op, "error").Inc()
		return nil, fmt.Errorf("%w: %d outcomes for %d queries", domain.ErrSearchUnavailable, len(raw), len(queries))
	}

	status := "ok"
	out := make([]result.Outcome, len(raw))
	for i, o := range raw {
		out[i] = toOutcome(o)
		if o.Error != "" {
			status = "partial"
		}
	}
	metrics.DaemonBatchesTotal.WithLabelValues(op, status).Inc()
	return out, nil
}

func lookupQuery(p Params, l request.Lookup) (*db.Query, error) {
	parts := l.File.Parts()
	var e filter.Expression
	for _, c := range []struct {
		key string
		v   uint32
	}{
		{domain.AttrURI1, parts.P1},
		{domain.AttrURI2, parts.P2},
		{domain.AttrURI3, parts.P3},
	} {
		cond, err := filter.NewValues(c.key, []int64{int64(c.v)})
		if err != nil {
			return nil, err
		}
		e = e.And(cond)
	}
	return db.NewQuery(p.Index).
		Match(l.Token, mode.All).
		Filter(e).
		Limits(0, 1, 1, 1).
		MaxQueryTime(p.MaxQueryTime).
		Comment(l.Comment).
		Build()
}

func relatedFilters(sources []uint32) (filter.Expression, error) {
	bl, err := filter.NewValues(domain.AttrBlocked, []int64{0})
	if err != nil {
		return filter.Expression{}, err
	}
	ids := make([]int64, len(sources))
	for i, s := range sources {
		ids[i] = int64(s)
	}
	s, err := filter.NewValues(domain.AttrSource, ids)
	if err != nil {
		return filter.Expression{}, err
	}
	return filter.Expression{}.And(bl).And(s), nil
}

func toOutcome(o db.Outcome) result.Outcome {
	matches := make([]result.Match, len(o.Entries))
	for i, e := range o.Entries {
		matches[i] = result.Match{ID: e.ID, Weight: e.Weight, Attrs: e.Attrs}
	}
	return result.Outcome{
		Total:      o.Total,
		TotalFound: o.TotalFound,
		Matches:    matches,
		Warning:    o.Warning,
		Error:      o.Error,
	}
}

// mapErr translates driver errors into the domain taxonomy.
func mapErr(err error) error {
	if errors.Is(err, db.ErrInvalidQuery) {
		return fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}
	return fmt.Errorf("%w: %w", domain.ErrSearchUnavailable, err)
}
