// Package result models daemon outcomes and resolves one answer out of a search batch.
package result

import (
	"fmt"
	"strconv"

	"github.com/psyvisions/foofind-web/internal/domain"
	"github.com/psyvisions/foofind-web/internal/domain/ident"
	"github.com/psyvisions/foofind-web/internal/domain/search/plan"
)

// Match is one document returned by the daemon.
type Match struct {
	ID     uint64            `json:"id"`
	Weight int64             `json:"weight"`
	Attrs  map[string]string `json:"attrs,omitempty"`
}

// FileID rebuilds the external file identifier from the uri1..3 attributes.
func (m Match) FileID() (ident.ID, error) {
	var parts [3]uint32
	for i, name := range []string{domain.AttrURI1, domain.AttrURI2, domain.AttrURI3} {
		v, err := strconv.ParseUint(m.Attrs[name], 10, 32)
		if err != nil {
			return ident.ID{}, fmt.Errorf("%w: attribute %s: %v", domain.ErrMalformedIdentifier, name, err)
		}
		parts[i] = uint32(v)
	}
	return ident.Encode(parts[0], parts[1], parts[2]), nil
}

// Server returns the shard the document lives on.
func (m Match) Server() uint32 { return ident.ShardOf(m.ID) }

// Outcome is the daemon's answer to one sub-query.
type Outcome struct {
	Total      uint64  `json:"total"`
	TotalFound uint64  `json:"total_found"`
	Matches    []Match `json:"matches"`
	Warning    string  `json:"warning,omitempty"`
	// Error is set when the daemon rejected or did not execute the sub-query.
	Error string `json:"error,omitempty"`
}

// Ran reports whether the sub-query produced a result set.
func (o Outcome) Ran() bool { return o.Error == "" }

// Selection tells how the resolver picked its outcome.
type Selection string

// Selection values.
const (
	SelectedPrimary  Selection = "primary"
	SelectedFallback Selection = "fallback"
	// SelectedDefault marks an empty answer: no sub-query found anything.
	SelectedDefault Selection = "default"
)

// Resolution is the single answer of a search batch.
type Resolution struct {
	Plan      plan.Plan
	Outcome   Outcome
	Selection Selection
	Warnings  []string
	Errors    []string
}

// Cacheable reports whether the resolution may be memoized.
func (r Resolution) Cacheable() bool { return Cacheable(r.Warnings, r.Errors) }

// Err returns an error wrapping domain.ErrPartialPlanFailure when any sub-query failed.
func (r Resolution) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %d of the batch sub-queries failed", domain.ErrPartialPlanFailure, len(r.Errors))
}

// Cacheable reports whether a response with these messages may be memoized.
func Cacheable(warnings, errs []string) bool { return len(warnings) == 0 && len(errs) == 0 }

// Collect gathers the warnings and errors of every outcome, in order.
func Collect(outcomes []Outcome) (warnings, errs []string) {
	for _, o := range outcomes {
		if o.Warning != "" {
			warnings = append(warnings, o.Warning)
		}
		if o.Error != "" {
			errs = append(errs, o.Error)
		}
	}
	return warnings, errs
}

// Resolve walks outcomes in submission order and returns the first one with TotalFound > 0.
// When none found anything it returns the first outcome that ran. Every warning and error
// is collected. It fails with domain.ErrSearchUnavailable when no sub-query ran.
func Resolve(plans []plan.Plan, outcomes []Outcome) (Resolution, error) {
	if len(plans) != len(outcomes) {
		return Resolution{}, fmt.Errorf("%w: %d plans, %d outcomes", domain.ErrSearchUnavailable, len(plans), len(outcomes))
	}
	warnings, errs := Collect(outcomes)

	chosen := -1
	for i, o := range outcomes {
		if !o.Ran() {
			continue
		}
		if chosen < 0 {
			chosen = i
		}
		if o.TotalFound > 0 {
			chosen = i
			break
		}
	}
	if chosen < 0 {
		return Resolution{}, fmt.Errorf("%w: every sub-query failed", domain.ErrSearchUnavailable)
	}

	sel := SelectedDefault
	if outcomes[chosen].TotalFound > 0 {
		sel = SelectedFallback
		if plans[chosen].IsPrimary() {
			sel = SelectedPrimary
		}
	}
	return Resolution{
		Plan:      plans[chosen],
		Outcome:   outcomes[chosen],
		Selection: sel,
		Warnings:  warnings,
		Errors:    errs,
	}, nil
}
