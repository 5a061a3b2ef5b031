// Package source models content sources (sites and networks files are found on).
package source

import (
	"slices"
	"strings"
)

// Group tags. A source belongs to one or more groups.
const (
	GroupWeb       = "w"
	GroupStreaming = "s"
	GroupTorrent   = "t"
	GroupED2K      = "e"
	GroupGnutella  = "g"
)

// legacySourceID is a single source whose weight is cut further by legacyDivisor.
// The rule is not generalised to other sources.
const (
	legacySourceID = 18
	legacyDivisor  = 1.8
)

// groupWeights lists static weights in precedence order: when a source is in several
// groups the last listed match wins.
var groupWeights = []struct {
	group  string
	weight float64
}{
	{GroupWeb, 1},
	{GroupStreaming, 1},
	{GroupTorrent, 0.2},
	{GroupED2K, 0.08},
	{GroupGnutella, 0.08},
}

// Source is a known content source.
type Source struct {
	id      uint32
	domain  string
	groups  []string
	blocked bool
}

// New creates a Source. Groups are de-duplicated and sorted.
func New(id uint32, domain string, groups []string, blocked bool) Source {
	gs := make([]string, 0, len(groups))
	for _, g := range groups {
		g = strings.TrimSpace(g)
		if g != "" && !slices.Contains(gs, g) {
			gs = append(gs, g)
		}
	}
	slices.Sort(gs)
	return Source{id: id, domain: domain, groups: gs, blocked: blocked}
}

// ID returns the numeric source id used by the daemon's "s" attribute.
func (s Source) ID() uint32 { return s.id }

// Domain returns the source domain, e.g. "example.com".
func (s Source) Domain() string { return s.domain }

// Groups returns the sorted group tags.
func (s Source) Groups() []string { return s.groups }

// Blocked reports whether the source is blocked.
func (s Source) Blocked() bool { return s.blocked }

// InGroup reports whether the source carries the tag.
func (s Source) InGroup(group string) bool { return slices.Contains(s.groups, group) }

// InAnyGroup reports whether the source carries at least one of the tags.
func (s Source) InAnyGroup(groups []string) bool {
	for _, g := range groups {
		if s.InGroup(g) {
			return true
		}
	}
	return false
}

// Aliases returns the lower-cased names a query may use to refer to the source:
// the domain and its first label ("example.com" -> "example.com", "example").
func (s Source) Aliases() []string {
	d := strings.ToLower(strings.TrimSpace(s.domain))
	if d == "" {
		return nil
	}
	first, _, found := strings.Cut(d, ".")
	if !found || first == "" || first == d {
		return []string{d}
	}
	return []string{d, first}
}

// GroupWeight returns the static weight of a group tag; unknown tags weigh 1.
func GroupWeight(group string) float64 {
	for _, gw := range groupWeights {
		if gw.group == group {
			return gw.weight
		}
	}
	return 1
}

// StaticWeight returns the static ranking weight of a source.
func StaticWeight(s Source) float64 {
	w := 1.0
	for _, gw := range groupWeights {
		if s.InGroup(gw.group) {
			w = gw.weight
		}
	}
	if s.id == legacySourceID {
		w /= legacyDivisor
	}
	return w
}

// IDs returns the ids of the given sources in input order.
func IDs(sources []Source) []uint32 {
	ids := make([]uint32, len(sources))
	for i, s := range sources {
		ids[i] = s.id
	}
	return ids
}
