// Package formula synthesizes the per-source ranking expression used to order search results.
//
// Synthesis is split in two steps: Build turns sources and a telemetry Snapshot into an
// explicit model of coefficient groups, and Render turns the model into daemon expression text.
package formula

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/psyvisions/foofind-web/internal/domain"
	"github.com/psyvisions/foofind-web/internal/domain/source"
)

// Tolerance is the distance under which two coefficients are considered equal.
const Tolerance = 1e-8

// Neutral coefficients for sources without telemetry.
const (
	NeutralPopularity = 1.0
	NeutralAverage    = 0.0
	NeutralDeviation  = 0.0
)

// Group is a set of source ids sharing one coefficient.
type Group struct {
	Coef float64
	IDs  []uint32
}

// Table is an ordered list of coefficient groups with the value used for sources outside it.
type Table struct {
	Default float64
	Groups  []Group
}

// Formula is the coefficient model behind the ranking expression.
type Formula struct {
	Popularity Table
	Average    Table
	Deviation  Table
}

// Build computes the coefficient tables for the candidate sources.
// Each candidate lands in exactly one group per table; sources without telemetry get the
// table default. Input order does not affect the result.
func Build(candidates []source.Source, snap Snapshot) Formula {
	seen := make(map[uint32]struct{}, len(candidates))
	var pop, avg, dev []coefEntry
	for _, s := range candidates {
		id := s.ID()
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		rc, _ := snap.Popularity(id)
		if !finite(rc) || rc < 0 {
			rc = 0
		}
		p := source.StaticWeight(s) / (1 + math.Log(rc+1))
		if !finite(p) {
			p = NeutralPopularity
		}
		pop = append(pop, coefEntry{id: id, coef: p})

		ra, ok := snap.RatingAverage(id)
		if !ok || !finite(ra) {
			ra = NeutralAverage
		}
		avg = append(avg, coefEntry{id: id, coef: ra})

		d := NeutralDeviation
		if rd, ok := snap.RatingDeviation(id); ok && finite(rd) {
			d = rd - 1.0
		}
		dev = append(dev, coefEntry{id: id, coef: d})
	}
	return Formula{
		Popularity: Table{Default: NeutralPopularity, Groups: group(pop)},
		Average:    Table{Default: NeutralAverage, Groups: group(avg)},
		Deviation:  Table{Default: NeutralDeviation, Groups: group(dev)},
	}
}

type coefEntry struct {
	id   uint32
	coef float64
}

// group sorts entries by (coef, id) and merges runs whose coefficient is within Tolerance
// of the run's first value.
func group(entries []coefEntry) []Group {
	slices.SortStableFunc(entries, func(a, b coefEntry) int {
		if c := cmp.Compare(a.coef, b.coef); c != 0 {
			return c
		}
		return cmp.Compare(a.id, b.id)
	})
	var groups []Group
	for _, e := range entries {
		if n := len(groups); n > 0 && math.Abs(e.coef-groups[n-1].Coef) <= Tolerance {
			groups[n-1].IDs = append(groups[n-1].IDs, e.id)
			continue
		}
		groups = append(groups, Group{Coef: e.coef, IDs: []uint32{e.id}})
	}
	return groups
}

// Expression renders a table as `default+IN(s,ids)*delta+...`, skipping groups at the default.
func (t Table) Expression() string {
	var b strings.Builder
	if math.Abs(t.Default) > Tolerance {
		b.WriteString(number(t.Default))
	}
	for _, g := range t.Groups {
		delta := g.Coef - t.Default
		if math.Abs(delta) <= Tolerance {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('+')
		}
		fmt.Fprintf(&b, "IN(%s,%s)*%s", domain.AttrSource, joinIDs(g.IDs), number(delta))
	}
	if b.Len() == 0 {
		return number(t.Default)
	}
	return b.String()
}

// Render returns the ranking expression. Byte-identical for identical models.
// The rating bonus is zero for unrated documents and for ratings below the source average.
func (f Formula) Render() string {
	r, avg := domain.AttrRating, f.Average.Expression()
	return fmt.Sprintf("WEIGHT()*(%s)*(0.4+IF(%s>-1,IF(%s-(%s)>0,%s-(%s),0),0)/(1.0+(%s)))",
		f.Popularity.Expression(),
		r, r, avg, r, avg,
		f.Deviation.Expression())
}

// Select returns the rendered expression aliased to the ranked attribute.
func (f Formula) Select() string {
	return f.Render() + " AS " + domain.AttrRanked
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func number(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }

func joinIDs(ids []uint32) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatUint(uint64(id), 10)
	}
	return strings.Join(parts, ",")
}
