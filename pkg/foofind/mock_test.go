package foofind

import (
	"context"

	"github.com/psyvisions/foofind-web/internal/domain/search/request"
	"github.com/psyvisions/foofind-web/internal/domain/search/result"
	domsrc "github.com/psyvisions/foofind-web/internal/domain/source"
	blockuc "github.com/psyvisions/foofind-web/internal/usecase/block"
	healthuc "github.com/psyvisions/foofind-web/internal/usecase/health"
)

// --- searchUseCase mock ---

type mockSearchUC struct {
	searchFn  func(ctx context.Context, req request.Request) (result.Resolution, error)
	relatedFn func(ctx context.Context, rel request.Related) ([]result.Outcome, error)
	locateFn  func(ctx context.Context, id, name string) (uint32, bool, error)
}

func (m *mockSearchUC) Search(ctx context.Context, req request.Request) (result.Resolution, error) {
	return m.searchFn(ctx, req)
}

func (m *mockSearchUC) Related(ctx context.Context, rel request.Related) ([]result.Outcome, error) {
	return m.relatedFn(ctx, rel)
}

func (m *mockSearchUC) LocateServer(ctx context.Context, id, name string) (uint32, bool, error) {
	return m.locateFn(ctx, id, name)
}

// --- blockUseCase mock ---

type mockBlockUC struct {
	setBlockedFn func(ctx context.Context, ids []uint64, files []blockuc.File, block bool) (blockuc.Report, error)
}

func (m *mockBlockUC) SetBlocked(
	ctx context.Context, ids []uint64, files []blockuc.File, block bool,
) (blockuc.Report, error) {
	return m.setBlockedFn(ctx, ids, files, block)
}

// --- healthUseCase / statsRefresher mocks ---

type mockHealthUC struct{ report healthuc.Report }

func (m *mockHealthUC) Check(context.Context) healthuc.Report { return m.report }

type mockStats struct{ err error }

func (m *mockStats) Refresh(context.Context) error { return m.err }

// --- sourceLister mock ---

type mockSources struct {
	listFn func(ctx context.Context, group string, blockedOnly bool) ([]domsrc.Source, error)
}

func (m *mockSources) List(ctx context.Context, group string, blockedOnly bool) ([]domsrc.Source, error) {
	return m.listFn(ctx, group, blockedOnly)
}
