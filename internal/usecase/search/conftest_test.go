package search

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/psyvisions/foofind-web/internal/domain/search/formula"
	"github.com/psyvisions/foofind-web/internal/domain/search/plan"
	"github.com/psyvisions/foofind-web/internal/domain/search/request"
	"github.com/psyvisions/foofind-web/internal/domain/search/result"
	"github.com/psyvisions/foofind-web/internal/domain/source"
)

type mockRepo struct {
	searchFn  func(ctx context.Context, b plan.Batch, page int, rank formula.Formula) ([]result.Outcome, error)
	relatedFn func(ctx context.Context, phrases []string, sources []uint32) ([]result.Outcome, error)
	lookupFn  func(ctx context.Context, lookups []request.Lookup) ([]result.Outcome, error)
}

func (m *mockRepo) Search(ctx context.Context, b plan.Batch, page int, rank formula.Formula) ([]result.Outcome, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, b, page, rank)
	}
	return make([]result.Outcome, len(b.Plans)), nil
}

func (m *mockRepo) Related(ctx context.Context, phrases []string, sources []uint32) ([]result.Outcome, error) {
	if m.relatedFn != nil {
		return m.relatedFn(ctx, phrases, sources)
	}
	return make([]result.Outcome, len(phrases)), nil
}

func (m *mockRepo) Lookup(ctx context.Context, lookups []request.Lookup) ([]result.Outcome, error) {
	if m.lookupFn != nil {
		return m.lookupFn(ctx, lookups)
	}
	return make([]result.Outcome, len(lookups)), nil
}

type mockSources struct {
	sources []source.Source
	err     error
}

func (m *mockSources) All(context.Context) ([]source.Source, error) { return m.sources, m.err }

type fixedStats struct{ snap formula.Snapshot }

func (f fixedStats) Snapshot() formula.Snapshot { return f.snap }

type mockCache struct {
	search     map[string]result.Resolution
	related    map[string][]result.Outcome
	putSearch  int
	putRelated int
}

func newMockCache() *mockCache {
	return &mockCache{search: map[string]result.Resolution{}, related: map[string][]result.Outcome{}}
}

func (c *mockCache) GetSearch(_ context.Context, req request.Request) (result.Resolution, bool) {
	r, ok := c.search[req.Query()]
	return r, ok
}

func (c *mockCache) PutSearch(_ context.Context, req request.Request, res result.Resolution) {
	c.putSearch++
	c.search[req.Query()] = res
}

func (c *mockCache) GetRelated(_ context.Context, phrases []string) ([]result.Outcome, bool) {
	if len(phrases) == 0 {
		return nil, false
	}
	r, ok := c.related[phrases[0]]
	return r, ok
}

func (c *mockCache) PutRelated(_ context.Context, phrases []string, outcomes []result.Outcome) {
	c.putRelated++
	c.related[phrases[0]] = outcomes
}

type feedbackCall struct {
	id    string
	shard *uint32
}

type mockFeedback struct{ calls []feedbackCall }

func (m *mockFeedback) Notify(_ context.Context, id string, shard *uint32) {
	m.calls = append(m.calls, feedbackCall{id: id, shard: shard})
}

func testSources() []source.Source {
	return []source.Source{
		source.New(1, "web.com", []string{source.GroupWeb}, false),
		source.New(2, "tpb.org", []string{source.GroupTorrent}, false),
		source.New(3, "spam.net", []string{source.GroupWeb}, true),
	}
}

type fixture struct {
	svc      *Service
	repo     *mockRepo
	cache    *mockCache
	feedback *mockFeedback
}

func newFixture(t *testing.T, logger *zap.Logger) fixture {
	t.Helper()
	if logger == nil {
		logger = zap.NewNop()
	}
	f := fixture{repo: &mockRepo{}, cache: newMockCache(), feedback: &mockFeedback{}}
	f.svc = New(f.repo, &mockSources{sources: testSources()}, plan.New(nil),
		fixedStats{snap: formula.Empty()}, f.cache, f.feedback, logger)
	return f
}
