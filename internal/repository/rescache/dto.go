package rescache

import (
	"github.com/psyvisions/foofind-web/internal/domain/search/plan"
	"github.com/psyvisions/foofind-web/internal/domain/search/result"
)

// searchEntry is the JSON form of a cached resolution. Plan filters are not kept:
// a cached answer only needs to say which plan produced it.
type searchEntry struct {
	Position  int              `json:"position"`
	Label     string           `json:"label"`
	Text      string           `json:"text"`
	Selection result.Selection `json:"selection"`
	Outcome   result.Outcome   `json:"outcome"`
}

func newSearchEntry(r result.Resolution) searchEntry {
	return searchEntry{
		Position:  r.Plan.Position,
		Label:     r.Plan.Label,
		Text:      r.Plan.Text,
		Selection: r.Selection,
		Outcome:   r.Outcome,
	}
}

func (e searchEntry) resolution() result.Resolution {
	return result.Resolution{
		Plan:      plan.Plan{Position: e.Position, Label: e.Label, Text: e.Text},
		Outcome:   e.Outcome,
		Selection: e.Selection,
	}
}
