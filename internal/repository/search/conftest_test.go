package search

import (
	"context"
	"testing"

	"github.com/psyvisions/foofind-web/internal/db"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	runQueriesFn       func(ctx context.Context, queries []*db.Query) ([]db.Outcome, error)
	updateAttributesFn func(ctx context.Context, index, attr string, values map[uint64]int64) (int, error)
}

func (m *mockStore) RunQueries(ctx context.Context, queries []*db.Query) ([]db.Outcome, error) {
	if m.runQueriesFn != nil {
		return m.runQueriesFn(ctx, queries)
	}
	return make([]db.Outcome, len(queries)), nil
}

func (m *mockStore) UpdateAttributes(ctx context.Context, index, attr string, values map[uint64]int64) (int, error) {
	if m.updateAttributesFn != nil {
		return m.updateAttributesFn(ctx, index, attr, values)
	}
	return len(values), nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, DefaultParams()), ms
}
