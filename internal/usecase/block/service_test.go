package block

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/psyvisions/foofind-web/internal/domain"
	dombatch "github.com/psyvisions/foofind-web/internal/domain/batch"
	"github.com/psyvisions/foofind-web/internal/domain/ident"
	"github.com/psyvisions/foofind-web/internal/domain/search/request"
	"github.com/psyvisions/foofind-web/internal/domain/search/result"
)

// --- Mocks ---

type mockRepo struct {
	lookupFn     func(ctx context.Context, lookups []request.Lookup) ([]result.Outcome, error)
	setBlockedFn func(ctx context.Context, ids []uint64, blocked bool) (int, error)
	setCalls     int
}

func (m *mockRepo) Lookup(ctx context.Context, lookups []request.Lookup) ([]result.Outcome, error) {
	if m.lookupFn != nil {
		return m.lookupFn(ctx, lookups)
	}
	return make([]result.Outcome, len(lookups)), nil
}

func (m *mockRepo) SetBlocked(ctx context.Context, ids []uint64, blocked bool) (int, error) {
	m.setCalls++
	if m.setBlockedFn != nil {
		return m.setBlockedFn(ctx, ids, blocked)
	}
	return len(ids), nil
}

// --- Tests ---

func TestSetBlocked_UnresolvedFileFails(t *testing.T) {
	repo := &mockRepo{}
	var token string
	repo.lookupFn = func(_ context.Context, lookups []request.Lookup) ([]result.Outcome, error) {
		token = lookups[0].Token
		return []result.Outcome{{}}, nil
	}
	svc := New(repo, zap.NewNop())

	rep, err := svc.SetBlocked(context.Background(), nil,
		[]File{{ID: ident.Encode(1, 2, 3).Hex(), Name: "My Movie 2021.mkv"}}, true)

	if !errors.Is(err, domain.ErrMaintenanceMismatch) {
		t.Fatalf("err = %v, want mismatch", err)
	}
	var mm *domain.MismatchError
	if !errors.As(err, &mm) || mm.Attempted != 1 || mm.Updated != 0 {
		t.Errorf("mismatch = %+v", mm)
	}
	if rep.OK || rep.Attempted != 1 || rep.Updated != 0 {
		t.Errorf("report = %+v", rep)
	}
	if repo.setCalls != 0 {
		t.Error("empty update set must not reach the daemon")
	}
	if token != "movie" {
		t.Errorf("lookup token = %q, want movie", token)
	}
	if rep.Files[0].Status() != dombatch.StatusNotFound {
		t.Errorf("file status = %q", rep.Files[0].Status())
	}
}

func TestSetBlocked_MergesDirectAndResolved(t *testing.T) {
	repo := &mockRepo{}
	repo.lookupFn = func(_ context.Context, lookups []request.Lookup) ([]result.Outcome, error) {
		return []result.Outcome{
			{TotalFound: 1, Matches: []result.Match{{ID: 100}}},
			{TotalFound: 1, Matches: []result.Match{{ID: 200}}},
		}, nil
	}
	var gotIDs []uint64
	var gotBlocked bool
	repo.setBlockedFn = func(_ context.Context, ids []uint64, blocked bool) (int, error) {
		gotIDs, gotBlocked = ids, blocked
		return 4, nil
	}
	svc := New(repo, zap.NewNop())

	rep, err := svc.SetBlocked(context.Background(), []uint64{7, 8, 7}, []File{
		{ID: ident.Encode(1, 0, 0).Hex(), Name: "a"},
		{ID: ident.Encode(2, 0, 0).Hex(), Name: "b"},
	}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rep.OK || rep.Attempted != 4 || rep.Updated != 4 {
		t.Errorf("report = %+v", rep)
	}
	if len(gotIDs) != 4 || gotIDs[0] != 7 || gotIDs[1] != 8 || gotIDs[2] != 100 || gotIDs[3] != 200 {
		t.Errorf("ids = %v, want distinct sorted [7 8 100 200]", gotIDs)
	}
	if gotBlocked {
		t.Error("unblock must clear the flag")
	}
	if rep.Files[0].DocID() != 100 || rep.Files[1].Status() != dombatch.StatusResolved {
		t.Errorf("files = %+v", rep.Files)
	}
}

func TestSetBlocked_MalformedFileRejectsCall(t *testing.T) {
	repo := &mockRepo{}
	lookups := 0
	repo.lookupFn = func(_ context.Context, l []request.Lookup) ([]result.Outcome, error) {
		lookups += len(l)
		return make([]result.Outcome, len(l)), nil
	}
	svc := New(repo, zap.NewNop())

	rep, err := svc.SetBlocked(context.Background(), []uint64{5}, []File{
		{ID: ident.Encode(1, 1, 1).Hex(), Name: "y"},
		{ID: "bogus", Name: "x"},
	}, true)
	if !errors.Is(err, domain.ErrMalformedIdentifier) {
		t.Fatalf("err = %v, want ErrMalformedIdentifier", err)
	}
	if rep.OK {
		t.Error("rejected call must not report ok")
	}
	if lookups != 0 || repo.setCalls != 0 {
		t.Errorf("lookups = %d, updates = %d, want none", lookups, repo.setCalls)
	}
}

func TestSetBlocked_FailedLookupCountsAsAttempted(t *testing.T) {
	repo := &mockRepo{}
	repo.lookupFn = func(_ context.Context, lookups []request.Lookup) ([]result.Outcome, error) {
		return []result.Outcome{{Error: "not executed"}}, nil
	}
	svc := New(repo, zap.NewNop())

	rep, err := svc.SetBlocked(context.Background(), []uint64{5}, []File{
		{ID: ident.Encode(1, 1, 1).Hex(), Name: "y"},
	}, true)
	if !errors.Is(err, domain.ErrMaintenanceMismatch) {
		t.Fatalf("err = %v", err)
	}
	if rep.Attempted != 2 || rep.Updated != 1 {
		t.Errorf("report = %+v", rep)
	}
	if !errors.Is(rep.Files[0].Err(), domain.ErrPartialPlanFailure) {
		t.Errorf("file[0] err = %v", rep.Files[0].Err())
	}
}

func TestSetBlocked_ResolvedIDOverlappingDirect(t *testing.T) {
	repo := &mockRepo{}
	repo.lookupFn = func(_ context.Context, lookups []request.Lookup) ([]result.Outcome, error) {
		return []result.Outcome{{TotalFound: 1, Matches: []result.Match{{ID: 100}}}}, nil
	}
	var gotIDs []uint64
	repo.setBlockedFn = func(_ context.Context, ids []uint64, _ bool) (int, error) {
		gotIDs = ids
		return len(ids), nil
	}
	svc := New(repo, zap.NewNop())

	rep, err := svc.SetBlocked(context.Background(), []uint64{100}, []File{
		{ID: ident.Encode(4, 5, 6).Hex(), Name: "a.avi"},
	}, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rep.OK || rep.Attempted != 1 || rep.Updated != 1 {
		t.Errorf("report = %+v, want attempted=1 updated=1 ok", rep)
	}
	if len(gotIDs) != 1 || gotIDs[0] != 100 {
		t.Errorf("ids = %v, want [100]", gotIDs)
	}
}

func TestSetBlocked_DuplicateFileCountedOnce(t *testing.T) {
	repo := &mockRepo{}
	hex := ident.Encode(1, 2, 3).Hex()
	repo.lookupFn = func(_ context.Context, lookups []request.Lookup) ([]result.Outcome, error) {
		return []result.Outcome{
			{TotalFound: 1, Matches: []result.Match{{ID: 42}}},
			{},
			{},
		}, nil
	}
	svc := New(repo, zap.NewNop())

	rep, err := svc.SetBlocked(context.Background(), nil, []File{
		{ID: hex, Name: "Movie.avi"},
		{ID: hex, Name: "Movie (copy).avi"},
		{ID: ident.Encode(9, 9, 9).Hex(), Name: "other"},
	}, true)
	if !errors.Is(err, domain.ErrMaintenanceMismatch) {
		t.Fatalf("err = %v", err)
	}
	// 42 plus the one distinct file id that never resolved.
	if rep.Attempted != 2 || rep.Updated != 1 {
		t.Errorf("report = %+v", rep)
	}
}

func TestSetBlocked_DaemonErrors(t *testing.T) {
	repo := &mockRepo{}
	repo.lookupFn = func(context.Context, []request.Lookup) ([]result.Outcome, error) {
		return nil, domain.ErrSearchUnavailable
	}
	svc := New(repo, zap.NewNop())
	_, err := svc.SetBlocked(context.Background(), nil, []File{{ID: ident.Encode(1, 1, 1).Hex()}}, true)
	if !errors.Is(err, domain.ErrSearchUnavailable) {
		t.Errorf("lookup err = %v", err)
	}

	repo.setBlockedFn = func(context.Context, []uint64, bool) (int, error) {
		return 0, domain.ErrSearchUnavailable
	}
	_, err = svc.SetBlocked(context.Background(), []uint64{1}, nil, true)
	if !errors.Is(err, domain.ErrSearchUnavailable) {
		t.Errorf("update err = %v", err)
	}
}
