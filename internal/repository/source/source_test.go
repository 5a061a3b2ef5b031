package source

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	domsrc "github.com/psyvisions/foofind-web/internal/domain/source"
)

func TestRedisLister_ListAll(t *testing.T) {
	ms := &mockHashStore{}
	var pattern string
	ms.scanFn = func(_ context.Context, p string) ([]string, error) {
		pattern = p
		return []string{"foofind:source:7", "foofind:source:2", "foofind:source:9", "foofind:source:x"}, nil
	}
	ms.hgetAllMultiFn = func(_ context.Context, keys []string) ([]map[string]string, error) {
		return []map[string]string{
			{"id": "7", "domain": "tpb.org", "groups": "t", "blocked": "1"},
			{"id": "2", "domain": "web.com", "groups": "w,s"},
			{},
			{"id": "nope", "domain": "bad.com"},
		}, nil
	}

	got, err := NewRedisLister(ms, "", zap.NewNop()).ListAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pattern != "foofind:source:*" {
		t.Errorf("pattern = %q", pattern)
	}
	if len(got) != 2 {
		t.Fatalf("got %d sources, want 2", len(got))
	}
	if got[0].ID() != 2 || got[1].ID() != 7 {
		t.Errorf("order = %d, %d", got[0].ID(), got[1].ID())
	}
	if !got[1].Blocked() || got[0].Blocked() {
		t.Error("blocked flags not parsed")
	}
	if !got[0].InGroup("s") || !got[0].InGroup("w") {
		t.Errorf("groups = %v", got[0].Groups())
	}
}

func TestRedisLister_Errors(t *testing.T) {
	boom := errors.New("boom")
	ms := &mockHashStore{scanFn: func(context.Context, string) ([]string, error) { return nil, boom }}
	if _, err := NewRedisLister(ms, "p:", zap.NewNop()).ListAll(context.Background()); !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}

	ms = &mockHashStore{}
	got, err := NewRedisLister(ms, "p:", zap.NewNop()).ListAll(context.Background())
	if err != nil || got == nil || len(got) != 0 {
		t.Errorf("empty registry = %v, %v", got, err)
	}
}

func TestPostgresLister_ListAll(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "domain", "groups", "blocked"}).
		AddRow(int64(1), "web.com", []byte("{w}"), false).
		AddRow(int64(4), "emule.net", []byte("{e,g}"), true)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, domain, groups, blocked")).WillReturnRows(rows)

	got, err := NewPostgresLister(db, zap.NewNop()).ListAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d sources", len(got))
	}
	if got[1].ID() != 4 || !got[1].Blocked() || !got[1].InGroup("g") {
		t.Errorf("source[1] = %+v", got[1])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestPostgresLister_SkipsBadRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "domain", "groups", "blocked"}).
		AddRow(int64(-1), "neg.com", []byte("{w}"), false).
		AddRow(int64(1)<<33, "huge.com", []byte("{w}"), false).
		AddRow(int64(3), nil, []byte("{w}"), false).
		AddRow(int64(5), "ok.com", []byte("{t}"), false)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, domain, groups, blocked")).WillReturnRows(rows)

	core, logs := observer.New(zapcore.WarnLevel)
	got, err := NewPostgresLister(db, zap.New(core)).ListAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID() != 5 {
		t.Errorf("got %+v, want only source 5", got)
	}
	if logs.Len() != 3 {
		t.Errorf("warnings = %d, want 3", logs.Len())
	}
}

func TestPostgresLister_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT").WillReturnError(&pq.Error{Code: "42P01", Message: "relation does not exist"})
	_, err = NewPostgresLister(db, zap.NewNop()).ListAll(context.Background())
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != "42P01" {
		t.Errorf("err = %v, want wrapped pq error", err)
	}
}

func TestRegistry_CachesAndFilters(t *testing.T) {
	l := &countingLister{sources: []domsrc.Source{
		domsrc.New(1, "web.com", []string{"w"}, false),
		domsrc.New(2, "tpb.org", []string{"t"}, true),
		domsrc.New(3, "kat.cr", []string{"t"}, false),
	}}
	r := NewRegistry(l, time.Minute)
	ctx := context.Background()

	torrents, err := r.List(ctx, "t", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(torrents) != 2 {
		t.Errorf("torrents = %d, want 2", len(torrents))
	}
	blocked, _ := r.List(ctx, "", true)
	if len(blocked) != 1 || blocked[0].ID() != 2 {
		t.Errorf("blocked = %v", blocked)
	}
	all, _ := r.All(ctx)
	if len(all) != 3 {
		t.Errorf("all = %d", len(all))
	}
	if l.calls != 1 {
		t.Errorf("lister calls = %d, want 1", l.calls)
	}

	r.Invalidate()
	if _, err := r.All(ctx); err != nil {
		t.Fatal(err)
	}
	if l.calls != 2 {
		t.Errorf("lister calls after invalidate = %d, want 2", l.calls)
	}
}

func TestRegistry_NoCacheAndErrors(t *testing.T) {
	boom := errors.New("down")
	l := &countingLister{err: boom}
	r := NewRegistry(l, 0)
	if _, err := r.List(context.Background(), "", false); !errors.Is(err, boom) {
		t.Errorf("err = %v, want down", err)
	}
	_, _ = r.All(context.Background())
	if l.calls != 2 {
		t.Errorf("calls = %d, want 2 without cache", l.calls)
	}
}
