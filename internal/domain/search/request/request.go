package request

import (
	"fmt"
	"strings"

	"github.com/psyvisions/foofind-web/internal/domain/ident"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed search query length.
	MaxQueryLength = 4096
	MaxPage        = 100
	// MaxPhrases caps the phrases accepted by a related-files request before trimming.
	MaxPhrases = 64
)

// Filters are the user-supplied constraints of a search. Values are kept raw:
// malformed values are ignored when the plan is built, never rejected here.
type Filters struct {
	// Type is a pipe-separated list of content categories, e.g. "video|audio".
	Type string
	// Src lists the source group tags to keep.
	Src string
	// Size is a bucket 1-4 or an explicit "min,max" byte-size pair.
	Size string
}

// IsEmpty reports whether no filter is set.
func (f Filters) IsEmpty() bool {
	return f.Type == "" && f.Src == "" && f.Size == ""
}

// Request is a validated search query.
type Request struct {
	query   string
	filters Filters
	page    int
}

// New validates and normalizes search parameters. Page defaults to 1.
func New(query string, filters Filters, page int) (Request, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Request{}, fmt.Errorf("query is required")
	}
	if len(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("query too long (max %d chars)", MaxQueryLength)
	}
	if page <= 0 {
		page = 1
	}
	if page > MaxPage {
		return Request{}, fmt.Errorf("page must be at most %d", MaxPage)
	}
	filters.Type = strings.TrimSpace(filters.Type)
	filters.Src = strings.TrimSpace(filters.Src)
	filters.Size = strings.TrimSpace(filters.Size)

	return Request{query: query, filters: filters, page: page}, nil
}

// Query returns the search query text.
func (r *Request) Query() string { return r.query }

// Filters returns the raw user filters.
func (r *Request) Filters() Filters { return r.filters }

// Page returns the 1-based result page.
func (r *Request) Page() int { return r.page }

// Related is a validated related-files request.
type Related struct {
	phrases []string
}

// NewRelated keeps the non-blank phrases in their original order.
func NewRelated(phrases []string) (Related, error) {
	if len(phrases) > MaxPhrases {
		return Related{}, fmt.Errorf("too many phrases (max %d)", MaxPhrases)
	}
	kept := make([]string, 0, len(phrases))
	for _, p := range phrases {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return Related{phrases: kept}, nil
}

// Phrases returns the candidate phrases in input order.
func (r *Related) Phrases() []string { return r.phrases }

// Lookup is an exact-match query for one file, scoped to its routing key.
type Lookup struct {
	File ident.ID
	// Token narrows the match; empty matches on the attribute filters alone.
	Token   string
	Comment string
}
