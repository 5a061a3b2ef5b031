package foofind

import (
	dombatch "github.com/psyvisions/foofind-web/internal/domain/batch"
	"github.com/psyvisions/foofind-web/internal/domain/search/result"
	blockuc "github.com/psyvisions/foofind-web/internal/usecase/block"
)

// Filters narrow a search. Malformed values are ignored, never rejected.
type Filters struct {
	// Type is a pipe-separated list of categories, e.g. "video|audio".
	Type string
	// Src lists source group tags, e.g. "wt" or "w|t".
	Src string
	// Size is a bucket "1".."4" or a "min,max" byte range.
	Size string
}

// Match is one matching file.
type Match struct {
	ID uint64
	// FileID is the URL form of the file identifier; empty when the document lacks one.
	FileID string
	Server uint32
	Weight int64
	Attrs  map[string]string
}

// Outcome is the daemon's answer to one sub-query.
type Outcome struct {
	Total      uint64
	TotalFound uint64
	Matches    []Match
	Warning    string
	Error      string
}

// SearchResult is the resolved answer of a search.
type SearchResult struct {
	Outcome
	// Plan is the label of the sub-query that produced the answer.
	Plan      string
	PlanText  string
	Selection string
	Warnings  []string
	Errors    []string
	Cacheable bool
}

// File is an external file id with its display name.
type File struct {
	ID   string
	Name string
}

// FileResult is the resolution of one file of a block request.
type FileResult struct {
	ID     string
	Status string // "resolved", "not_found", "error"
	DocID  uint64
	Err    error
}

// BlockReport summarizes a block or unblock call.
type BlockReport struct {
	OK        bool
	Attempted int
	Updated   int
	Files     []FileResult
}

// Source is a site or network files are found on.
type Source struct {
	ID      uint32
	Domain  string
	Groups  []string
	Blocked bool
}

func outcomeFromDomain(o result.Outcome) Outcome {
	matches := make([]Match, len(o.Matches))
	for i, m := range o.Matches {
		matches[i] = Match{ID: m.ID, Server: m.Server(), Weight: m.Weight, Attrs: m.Attrs}
		if id, err := m.FileID(); err == nil {
			matches[i].FileID = id.URL()
		}
	}
	return Outcome{
		Total:      o.Total,
		TotalFound: o.TotalFound,
		Matches:    matches,
		Warning:    o.Warning,
		Error:      o.Error,
	}
}

func resolutionFromDomain(r result.Resolution) SearchResult {
	return SearchResult{
		Outcome:   outcomeFromDomain(r.Outcome),
		Plan:      r.Plan.Label,
		PlanText:  r.Plan.Text,
		Selection: string(r.Selection),
		Warnings:  r.Warnings,
		Errors:    r.Errors,
		Cacheable: r.Cacheable(),
	}
}

func reportFromDomain(r blockuc.Report) BlockReport {
	files := make([]FileResult, len(r.Files))
	for i, f := range r.Files {
		files[i] = fileResultFromDomain(f)
	}
	return BlockReport{OK: r.OK, Attempted: r.Attempted, Updated: r.Updated, Files: files}
}

func fileResultFromDomain(r dombatch.Result) FileResult {
	return FileResult{ID: r.ID(), Status: string(r.Status()), DocID: r.DocID(), Err: r.Err()}
}
