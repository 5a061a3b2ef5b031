package db

import (
	"time"

	"github.com/psyvisions/foofind-web/internal/domain/search/filter"
	"github.com/psyvisions/foofind-web/internal/domain/search/mode"
)

// QueryBuilder is a fluent builder for daemon queries.
type QueryBuilder struct {
	q Query
}

// NewQuery starts building a query against index. Defaults: extended mode, limit 20.
func NewQuery(index string) *QueryBuilder {
	return &QueryBuilder{
		q: Query{
			Index: index,
			Mode:  mode.Extended,
			Limit: 20,
		},
	}
}

// Match sets the match text and mode.
func (b *QueryBuilder) Match(text string, m mode.Mode) *QueryBuilder {
	b.q.Text = text
	b.q.Mode = m
	return b
}

// Select adds returned expressions.
func (b *QueryBuilder) Select(exprs ...string) *QueryBuilder {
	b.q.Select = append(b.q.Select, exprs...)
	return b
}

// Ranker sets the ranking expression.
func (b *QueryBuilder) Ranker(expr string) *QueryBuilder {
	b.q.Ranker = expr
	return b
}

// FieldWeight adds a per-field rank weight.
func (b *QueryBuilder) FieldWeight(field string, weight int) *QueryBuilder {
	b.q.FieldWeights = append(b.q.FieldWeights, FieldWeight{Field: field, Weight: weight})
	return b
}

// SortBy sets the sort expression, e.g. "wr DESC, r2 DESC".
func (b *QueryBuilder) SortBy(expr string) *QueryBuilder {
	b.q.Sort = expr
	return b
}

// Filter sets the attribute filters.
func (b *QueryBuilder) Filter(e filter.Expression) *QueryBuilder {
	b.q.Filters = e
	return b
}

// Limits sets the pagination window.
func (b *QueryBuilder) Limits(offset, limit, maxMatches, cutoff int) *QueryBuilder {
	b.q.Offset = offset
	b.q.Limit = limit
	b.q.MaxMatches = maxMatches
	b.q.Cutoff = cutoff
	return b
}

// MaxQueryTime bounds the daemon-side execution time.
func (b *QueryBuilder) MaxQueryTime(d time.Duration) *QueryBuilder {
	b.q.MaxQueryTime = d
	return b
}

// Comment tags the query in the daemon's query log.
func (b *QueryBuilder) Comment(c string) *QueryBuilder {
	b.q.Comment = c
	return b
}

// Build validates and returns the query.
func (b *QueryBuilder) Build() (*Query, error) {
	q := b.q
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return &q, nil
}

// MustBuild calls Build and panics on error.
func (b *QueryBuilder) MustBuild() *Query {
	q, err := b.Build()
	if err != nil {
		panic(err)
	}
	return q
}
