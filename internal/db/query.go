package db

import (
	"fmt"
	"regexp"
	"slices"
	"time"

	"github.com/psyvisions/foofind-web/internal/domain/search/filter"
	"github.com/psyvisions/foofind-web/internal/domain/search/mode"
)

var identRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ValidIdent reports whether s can be used as an index, field or attribute name.
func ValidIdent(s string) bool { return identRe.MatchString(s) }

// FieldWeight scales the contribution of a full-text field to the rank.
type FieldWeight struct {
	Field  string
	Weight int
}

// Query is one daemon sub-query.
type Query struct {
	Index string
	Text  string
	Mode  mode.Mode
	// Select lists expressions returned next to the document columns, e.g. "<expr> AS wr".
	Select       []string
	Ranker       string
	FieldWeights []FieldWeight
	Sort         string
	Filters      filter.Expression
	Offset       int
	Limit        int
	MaxMatches   int
	Cutoff       int
	MaxQueryTime time.Duration
	Comment      string
}

// Validate checks identifiers and the pagination window.
func (q *Query) Validate() error {
	if !identRe.MatchString(q.Index) {
		return fmt.Errorf("%w: index name %q", ErrInvalidQuery, q.Index)
	}
	if !q.Mode.IsValid() {
		return fmt.Errorf("%w: match mode %q", ErrInvalidQuery, q.Mode)
	}
	for _, fw := range q.FieldWeights {
		if !identRe.MatchString(fw.Field) {
			return fmt.Errorf("%w: field name %q", ErrInvalidQuery, fw.Field)
		}
		if fw.Weight < 0 {
			return fmt.Errorf("%w: negative weight for field %s", ErrInvalidQuery, fw.Field)
		}
	}
	for _, c := range slices.Concat(q.Filters.Must(), q.Filters.MustNot()) {
		if !identRe.MatchString(c.Key()) {
			return fmt.Errorf("%w: attribute name %q", ErrInvalidQuery, c.Key())
		}
	}
	if q.Offset < 0 || q.Limit <= 0 {
		return fmt.Errorf("%w: limits %d,%d", ErrInvalidQuery, q.Offset, q.Limit)
	}
	if q.MaxMatches > 0 && q.Offset+q.Limit > q.MaxMatches {
		return fmt.Errorf("%w: window %d+%d exceeds max_matches %d", ErrInvalidQuery, q.Offset, q.Limit, q.MaxMatches)
	}
	if q.Cutoff < 0 || q.MaxQueryTime < 0 {
		return fmt.Errorf("%w: negative cutoff or max query time", ErrInvalidQuery)
	}
	return nil
}
