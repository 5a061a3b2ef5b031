package source

import (
	"context"

	domsrc "github.com/psyvisions/foofind-web/internal/domain/source"
)

// mockHashStore implements the consumer interface for tests.
type mockHashStore struct {
	scanFn         func(ctx context.Context, pattern string) ([]string, error)
	hgetAllMultiFn func(ctx context.Context, keys []string) ([]map[string]string, error)
}

func (m *mockHashStore) Scan(ctx context.Context, pattern string) ([]string, error) {
	if m.scanFn != nil {
		return m.scanFn(ctx, pattern)
	}
	return nil, nil
}

func (m *mockHashStore) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	if m.hgetAllMultiFn != nil {
		return m.hgetAllMultiFn(ctx, keys)
	}
	return make([]map[string]string, len(keys)), nil
}

// countingLister counts ListAll calls.
type countingLister struct {
	sources []domsrc.Source
	err     error
	calls   int
}

func (l *countingLister) ListAll(context.Context) ([]domsrc.Source, error) {
	l.calls++
	return l.sources, l.err
}
