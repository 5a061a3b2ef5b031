// Package block sets and clears the blocked flag on indexed files.
package block

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/psyvisions/foofind-web/internal/domain"
	dombatch "github.com/psyvisions/foofind-web/internal/domain/batch"
	"github.com/psyvisions/foofind-web/internal/domain/ident"
	"github.com/psyvisions/foofind-web/internal/domain/search/phrase"
	"github.com/psyvisions/foofind-web/internal/domain/search/request"
	logpkg "github.com/psyvisions/foofind-web/internal/logger"
	"github.com/psyvisions/foofind-web/internal/metrics"
)

// CommentResolve tags block lookups in the daemon log.
const CommentResolve = "search.block_files"

// File is an external file id and its display name, resolved before the update.
type File struct {
	ID   string
	Name string
}

// Report is the outcome of one block or unblock call.
type Report struct {
	// Files holds one resolution result per input file, in input order.
	Files     []dombatch.Result
	Attempted int
	Updated   int
	OK        bool
}

// Service handles block and unblock requests.
type Service struct {
	repo   Repository
	logger *zap.Logger
}

// New creates a block service.
func New(repo Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// SetBlocked resolves files to document ids, merges them with ids and sets the blocked
// flag on the distinct set in one update. A malformed file id rejects the whole call
// before any lookup. Report.OK requires the updated row count to equal the attempted
// count: the distinct merged ids plus the distinct file ids that did not resolve. A
// mismatch is logged and returned as a MismatchError without retry.
func (s *Service) SetBlocked(ctx context.Context, ids []uint64, files []File, block bool) (Report, error) {
	rep := Report{Files: make([]dombatch.Result, len(files))}

	parsed, err := parseFiles(files)
	if err != nil {
		metrics.BlockUpdatesTotal.WithLabelValues("error").Inc()
		return rep, err
	}
	resolved, unresolved, err := s.resolve(ctx, files, parsed, rep.Files)
	if err != nil {
		metrics.BlockUpdatesTotal.WithLabelValues("error").Inc()
		return rep, err
	}

	targets := distinct(append(slices.Clone(ids), resolved...))
	attempted := len(targets) + unresolved
	rep.Attempted = attempted

	if len(targets) > 0 {
		n, err := s.repo.SetBlocked(ctx, targets, block)
		if err != nil {
			metrics.BlockUpdatesTotal.WithLabelValues("error").Inc()
			return rep, err
		}
		rep.Updated = n
	}

	if rep.Updated != attempted {
		metrics.BlockUpdatesTotal.WithLabelValues("mismatch").Inc()
		logpkg.FromContext(ctx, s.logger).Warn("Block update count mismatch",
			zap.Bool("block", block), zap.Int("attempted", attempted), zap.Int("updated", rep.Updated))
		return rep, domain.NewMismatch(attempted, rep.Updated)
	}
	rep.OK = true
	metrics.BlockUpdatesTotal.WithLabelValues("ok").Inc()
	return rep, nil
}

func parseFiles(files []File) ([]ident.ID, error) {
	out := make([]ident.ID, len(files))
	for i, f := range files {
		id, err := ident.Parse(f.ID)
		if err != nil {
			return nil, fmt.Errorf("file %d (%q): %w", i, f.ID, err)
		}
		out[i] = id
	}
	return out, nil
}

// resolve looks up every file with its longest name token and fills out. It returns the
// ids found and the number of distinct file ids no lookup resolved. Lookups failing as a
// whole abort the call.
func (s *Service) resolve(ctx context.Context, files []File, parsed []ident.ID, out []dombatch.Result) ([]uint64, int, error) {
	if len(files) == 0 {
		return nil, 0, nil
	}
	lookups := make([]request.Lookup, len(files))
	for i, f := range files {
		lookups[i] = request.Lookup{
			File:    parsed[i],
			Token:   phrase.LongestToken(f.Name),
			Comment: CommentResolve,
		}
	}

	outcomes, err := s.repo.Lookup(ctx, lookups)
	if err != nil {
		return nil, 0, fmt.Errorf("resolve files: %w", err)
	}
	if len(outcomes) != len(lookups) {
		return nil, 0, fmt.Errorf("%w: %d outcomes for %d lookups", domain.ErrSearchUnavailable, len(outcomes), len(lookups))
	}

	var found []uint64
	hit := make(map[string]bool, len(files))
	for i, o := range outcomes {
		id := files[i].ID
		switch {
		case !o.Ran():
			out[i] = dombatch.NewError(id, fmt.Errorf("%w: %s", domain.ErrPartialPlanFailure, o.Error))
		case len(o.Matches) == 0:
			out[i] = dombatch.NewNotFound(id)
		default:
			docID := o.Matches[0].ID
			out[i] = dombatch.NewResolved(id, docID)
			found = append(found, docID)
			hit[id] = true
			continue
		}
		if _, ok := hit[id]; !ok {
			hit[id] = false
		}
	}
	unresolved := 0
	for _, ok := range hit {
		if !ok {
			unresolved++
		}
	}
	return found, unresolved, nil
}

func distinct(ids []uint64) []uint64 {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}
