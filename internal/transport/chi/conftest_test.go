package chi

import (
	"context"
	"net/http"
	"testing"

	"go.uber.org/zap"

	"github.com/psyvisions/foofind-web/internal/domain/search/request"
	"github.com/psyvisions/foofind-web/internal/domain/search/result"
	blockuc "github.com/psyvisions/foofind-web/internal/usecase/block"
	healthuc "github.com/psyvisions/foofind-web/internal/usecase/health"
)

type mockSearch struct {
	searchFn  func(ctx context.Context, req request.Request) (result.Resolution, error)
	relatedFn func(ctx context.Context, rel request.Related) ([]result.Outcome, error)
	locateFn  func(ctx context.Context, id, name string) (uint32, bool, error)
}

func (m *mockSearch) Search(ctx context.Context, req request.Request) (result.Resolution, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, req)
	}
	return result.Resolution{}, nil
}

func (m *mockSearch) Related(ctx context.Context, rel request.Related) ([]result.Outcome, error) {
	if m.relatedFn != nil {
		return m.relatedFn(ctx, rel)
	}
	return nil, nil
}

func (m *mockSearch) LocateServer(ctx context.Context, id, name string) (uint32, bool, error) {
	if m.locateFn != nil {
		return m.locateFn(ctx, id, name)
	}
	return 0, false, nil
}

type mockBlock struct {
	setBlockedFn func(ctx context.Context, ids []uint64, files []blockuc.File, block bool) (blockuc.Report, error)
}

func (m *mockBlock) SetBlocked(ctx context.Context, ids []uint64, files []blockuc.File, block bool) (blockuc.Report, error) {
	if m.setBlockedFn != nil {
		return m.setBlockedFn(ctx, ids, files, block)
	}
	return blockuc.Report{OK: true}, nil
}

type mockHealth struct{ report healthuc.Report }

func (m *mockHealth) Check(context.Context) healthuc.Report { return m.report }

type testAPI struct {
	handler http.Handler
	search  *mockSearch
	block   *mockBlock
	health  *mockHealth
}

func newTestAPI(t *testing.T, apiKeys ...string) testAPI {
	t.Helper()
	api := testAPI{search: &mockSearch{}, block: &mockBlock{}, health: &mockHealth{}}
	srv := NewServer(api.search, api.block, api.health, zap.NewNop())
	api.handler = NewRouter(srv, apiKeys, zap.NewNop())
	return api
}
