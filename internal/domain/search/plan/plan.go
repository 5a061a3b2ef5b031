// Package plan turns a search request into an ordered list of daemon sub-queries.
package plan

import (
	"slices"
	"strings"

	"github.com/psyvisions/foofind-web/internal/domain"
	"github.com/psyvisions/foofind-web/internal/domain/search/filter"
	"github.com/psyvisions/foofind-web/internal/domain/search/query"
	"github.com/psyvisions/foofind-web/internal/domain/search/request"
	"github.com/psyvisions/foofind-web/internal/domain/source"
)

// Plan labels, sent to the daemon as query comments.
const (
	LabelPrimary  = "search.search_files"
	LabelFallback = "search.search_files +sources"
)

// Plan is one sub-query of a search batch.
type Plan struct {
	// Position is the plan's index in the batch; 0 is the primary plan.
	Position int
	Label    string
	// Text is the match predicate in extended syntax.
	Text    string
	Filters filter.Expression
	// Allowed lists the sources the plan may return, ascending.
	Allowed []uint32
}

// IsPrimary reports whether p is the primary plan.
func (p Plan) IsPrimary() bool { return p.Position == 0 }

// Batch is the planner output for one search.
type Batch struct {
	Plans []Plan
	// Candidates are the sources allowed by the primary plan, the ranking formula's input.
	Candidates []source.Source
	// Issues lists ignored filter values, each wrapping domain.ErrInvalidFilterValue.
	Issues []error
}

// Parser extracts the primary predicate and source hints from query text.
type Parser interface {
	Parse(text string, aliases query.Aliases) query.Parsed
}

// Planner builds search batches.
type Planner struct {
	parser Parser
}

// New creates a Planner. A nil parser selects the default query parser.
func New(parser Parser) *Planner {
	if parser == nil {
		parser = query.Parser{}
	}
	return &Planner{parser: parser}
}

// AliasesOf indexes the aliases of every source.
func AliasesOf(sources []source.Source) query.Aliases {
	out := make(query.Aliases)
	for _, s := range sources {
		for _, a := range s.Aliases() {
			if !slices.Contains(out[a], s.ID()) {
				out[a] = append(out[a], s.ID())
			}
		}
	}
	return out
}

// Plan builds the batch for req over the known sources. It never fails: malformed
// filter values are reported in Batch.Issues and left out of the plans.
func (p *Planner) Plan(req request.Request, sources []source.Source) Batch {
	var b Batch
	parsed := p.parser.Parse(req.Query(), AliasesOf(sources))
	f := req.Filters()

	base := mustValues(domain.AttrBlocked, []int64{0}, filter.Expression{}, false)

	if f.Type != "" {
		codes, issues := typeCodes(f.Type)
		b.Issues = append(b.Issues, issues...)
		if len(codes) > 0 {
			base = mustValues(domain.AttrType, codes, base, false)
		}
	}

	if f.Size != "" {
		r, err := sizeRange(f.Size)
		if err != nil {
			b.Issues = append(b.Issues, err)
		} else if c, cerr := filter.NewRange(domain.AttrSize, r); cerr == nil {
			base = base.And(c)
		}
	}

	excluded := make(map[uint32]struct{})
	for _, id := range parsed.Excluded {
		excluded[id] = struct{}{}
	}
	if tags := srcTags(f.Src); len(tags) > 0 {
		for _, s := range sources {
			if !s.InAnyGroup(tags) {
				excluded[s.ID()] = struct{}{}
			}
		}
	}
	for _, s := range sources {
		if s.Blocked() {
			excluded[s.ID()] = struct{}{}
		}
	}

	var allowed []uint32
	for _, s := range sources {
		if _, ok := excluded[s.ID()]; !ok && !slices.Contains(allowed, s.ID()) {
			allowed = append(allowed, s.ID())
			b.Candidates = append(b.Candidates, s)
		}
	}
	slices.Sort(allowed)

	primary := base
	switch {
	case len(allowed) == 0 && len(excluded) == 0:
		// No known sources: leave the source attribute unconstrained.
	case len(allowed) <= len(excluded):
		primary = mustValues(domain.AttrSource, ids64(allowed), primary, false)
	default:
		primary = mustValues(domain.AttrSource, ids64(sortedKeys(excluded)), primary, true)
	}

	b.Plans = append(b.Plans, Plan{
		Label: LabelPrimary, Text: parsed.Text, Filters: primary, Allowed: allowed,
	})

	for _, h := range parsed.Hints {
		var hinted []uint32
		for _, id := range h.Sources {
			if _, ok := slices.BinarySearch(allowed, id); ok && !slices.Contains(hinted, id) {
				hinted = append(hinted, id)
			}
		}
		if len(hinted) == 0 {
			continue
		}
		slices.Sort(hinted)
		b.Plans = append(b.Plans, Plan{
			Position: len(b.Plans),
			Label:    LabelFallback,
			Text:     h.Text,
			Filters:  mustValues(domain.AttrSource, ids64(hinted), base, false),
			Allowed:  hinted,
		})
	}
	return b
}

// Direction reports whether the primary plan filters sources by inclusion.
// ok is false when the plan carries no source filter.
func (p Plan) Direction() (inclusion, ok bool) {
	_, negated, found := p.Filters.Find(domain.AttrSource)
	return found && !negated, found
}

func mustValues(key string, values []int64, e filter.Expression, negate bool) filter.Expression {
	c, err := filter.NewValues(key, values)
	if err != nil {
		return e
	}
	if negate {
		return e.AndNot(c)
	}
	return e.And(c)
}

// srcTags reads "w|t" or "w,t" as a tag list and "wt" as one tag per letter.
func srcTags(v string) []string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	var parts []string
	if strings.ContainsAny(v, "|,") {
		parts = strings.FieldsFunc(v, func(r rune) bool { return r == '|' || r == ',' })
	} else {
		for _, r := range v {
			parts = append(parts, string(r))
		}
	}
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}

func ids64(ids []uint32) []int64 {
	out := make([]int64, len(ids))
	for i, id := range ids {
		out[i] = int64(id)
	}
	return out
}

func sortedKeys(m map[uint32]struct{}) []uint32 {
	out := make([]uint32, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
