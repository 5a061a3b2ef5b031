package search

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/psyvisions/foofind-web/internal/domain"
	"github.com/psyvisions/foofind-web/internal/domain/ident"
	"github.com/psyvisions/foofind-web/internal/domain/search/category"
	"github.com/psyvisions/foofind-web/internal/domain/search/formula"
	"github.com/psyvisions/foofind-web/internal/domain/search/phrase"
	"github.com/psyvisions/foofind-web/internal/domain/search/plan"
	"github.com/psyvisions/foofind-web/internal/domain/search/request"
	"github.com/psyvisions/foofind-web/internal/domain/search/result"
	"github.com/psyvisions/foofind-web/internal/domain/source"
	logpkg "github.com/psyvisions/foofind-web/internal/logger"
	"github.com/psyvisions/foofind-web/internal/metrics"
)

// MaxRelatedPhrases caps the phrases queried by Related.
const MaxRelatedPhrases = 5

// CommentLocate prefixes the daemon comment of server lookups.
const CommentLocate = "search.get_id_server_from_search"

// selectionNone labels searches that produced no resolution.
const selectionNone = "none"

// Service runs file searches, related-file searches and server lookups.
type Service struct {
	repo     Repository
	sources  SourceLister
	planner  Planner
	stats    StatsProvider
	cache    Cache
	feedback FeedbackNotifier
	logger   *zap.Logger
}

// New creates a search service. cache and feedback can be nil.
func New(
	repo Repository, sources SourceLister, planner Planner, stats StatsProvider,
	cache Cache, feedback FeedbackNotifier, logger *zap.Logger,
) *Service {
	return &Service{
		repo: repo, sources: sources, planner: planner, stats: stats,
		cache: cache, feedback: feedback, logger: logger,
	}
}

// Search plans req, runs every plan in one batch and resolves one answer.
// Sub-query failures are logged and disable caching; they do not fail the call.
func (s *Service) Search(ctx context.Context, req request.Request) (result.Resolution, error) {
	if s.cache != nil {
		if res, ok := s.cache.GetSearch(ctx, req); ok {
			return res, nil
		}
	}

	sources, err := s.sources.All(ctx)
	if err != nil {
		metrics.PlanSelectedTotal.WithLabelValues(selectionNone).Inc()
		return result.Resolution{}, fmt.Errorf("%w: %w", domain.ErrSearchUnavailable, err)
	}

	l := logpkg.FromContext(ctx, s.logger)
	b := s.planner.Plan(req, sources)
	for _, issue := range b.Issues {
		l.Warn("Ignoring filter value",
			zap.String("q", req.Query()), zap.Any("filters", req.Filters()), zap.Error(issue))
	}
	if ce := l.Check(zap.DebugLevel, "Search planned"); ce != nil && len(b.Plans) > 0 {
		ce.Write(zap.String("q", req.Query()), zap.Int("plans", len(b.Plans)),
			zap.String("source_filter", sourceFilter(b.Plans[0])))
	}

	var snap formula.Snapshot = formula.Empty()
	if s.stats != nil {
		snap = s.stats.Snapshot()
	}
	rank := formula.Build(b.Candidates, snap)

	outcomes, err := s.repo.Search(ctx, b, req.Page(), rank)
	if err != nil {
		metrics.PlanSelectedTotal.WithLabelValues(selectionNone).Inc()
		l.Error("Search batch failed", zap.String("method", "search"), zap.String("q", req.Query()), zap.Error(err))
		return result.Resolution{}, err
	}

	res, err := result.Resolve(b.Plans, outcomes)
	warnings, errs := result.Collect(outcomes)
	s.logMessages(ctx, "search", req.Query(), warnings, errs)
	if err != nil {
		metrics.PlanSelectedTotal.WithLabelValues(selectionNone).Inc()
		return result.Resolution{}, err
	}
	metrics.PlanSelectedTotal.WithLabelValues(string(res.Selection)).Inc()

	if s.cache != nil {
		s.cache.PutSearch(ctx, req, res)
	}
	return res, nil
}

// Related runs one query per candidate phrase over every known source and returns all outcomes.
func (s *Service) Related(ctx context.Context, rel request.Related) ([]result.Outcome, error) {
	phrases := SelectPhrases(rel.Phrases())
	if len(phrases) == 0 {
		return []result.Outcome{}, nil
	}
	if s.cache != nil {
		if out, ok := s.cache.GetRelated(ctx, phrases); ok {
			return out, nil
		}
	}

	sources, err := s.sources.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSearchUnavailable, err)
	}

	out, err := s.repo.Related(ctx, phrases, source.IDs(sources))
	if err != nil {
		logpkg.FromContext(ctx, s.logger).Error("Related batch failed", zap.String("method", "related"), zap.Strings("q", phrases), zap.Error(err))
		return nil, err
	}
	warnings, errs := result.Collect(out)
	s.logMessages(ctx, "related", phrases[0], warnings, errs)

	if s.cache != nil {
		s.cache.PutRelated(ctx, phrases, out)
	}
	return out, nil
}

// SelectPhrases drops a trailing file-extension phrase, orders the rest by length
// (longest first, stable) and keeps at most MaxRelatedPhrases.
func SelectPhrases(phrases []string) []string {
	out := slices.Clone(phrases)
	if n := len(out); n > 0 && category.IsExtension(out[n-1]) {
		out = out[:n-1]
	}
	slices.SortStableFunc(out, func(a, b string) int {
		return cmp.Compare(utf8.RuneCountInString(b), utf8.RuneCountInString(a))
	})
	if len(out) > MaxRelatedPhrases {
		out = out[:MaxRelatedPhrases]
	}
	return out
}

// LocateServer finds the shard holding the file externalID. found is false unless
// exactly one document matches. The feedback sink is notified either way.
func (s *Service) LocateServer(ctx context.Context, externalID, name string) (shard uint32, found bool, err error) {
	id, err := ident.Parse(externalID)
	if err != nil {
		return 0, false, err
	}

	defer func() {
		if s.feedback == nil {
			return
		}
		var resolved *uint32
		if found {
			resolved = &shard
		}
		s.feedback.Notify(ctx, externalID, resolved)
	}()

	out, err := s.repo.Lookup(ctx, []request.Lookup{{
		File:    id,
		Token:   phrase.LongestToken(name),
		Comment: CommentLocate + " " + externalID,
	}})
	if err != nil {
		return 0, false, err
	}
	if len(out) != 1 {
		return 0, false, fmt.Errorf("%w: %d outcomes for one lookup", domain.ErrSearchUnavailable, len(out))
	}
	o := out[0]
	warnings, errs := result.Collect(out)
	s.logMessages(ctx, "locate", externalID, warnings, errs)
	if !o.Ran() || o.TotalFound != 1 || len(o.Matches) != 1 {
		return 0, false, nil
	}
	return o.Matches[0].Server(), true, nil
}

// sourceFilter names how a plan restricts the s attribute.
func sourceFilter(p plan.Plan) string {
	inclusion, ok := p.Direction()
	switch {
	case !ok:
		return "none"
	case inclusion:
		return "include"
	}
	return "exclude"
}

func (s *Service) logMessages(ctx context.Context, method, q string, warnings, errs []string) {
	l := logpkg.FromContext(ctx, s.logger)
	for _, w := range warnings {
		l.Warn("Search daemon warning", zap.String("method", method), zap.String("q", q), zap.String("orig_msg", w))
	}
	for _, e := range errs {
		l.Error("Search daemon error", zap.String("method", method), zap.String("q", q), zap.String("orig_msg", e))
	}
}
