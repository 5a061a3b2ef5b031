package chi

import (
	dombatch "github.com/psyvisions/foofind-web/internal/domain/batch"
	"github.com/psyvisions/foofind-web/internal/domain/search/result"
	blockuc "github.com/psyvisions/foofind-web/internal/usecase/block"
)

// PlanResponse identifies the sub-query that produced a search answer.
type PlanResponse struct {
	Position int    `json:"position"`
	Label    string `json:"label"`
	Text     string `json:"text"`
}

// MatchResponse is one matching file.
type MatchResponse struct {
	ID     uint64            `json:"id"`
	FileID string            `json:"file_id,omitempty"`
	Server uint32            `json:"server"`
	Weight int64             `json:"weight"`
	Attrs  map[string]string `json:"attrs,omitempty"`
}

// OutcomeResponse is the answer of one sub-query.
type OutcomeResponse struct {
	Total      uint64          `json:"total"`
	TotalFound uint64          `json:"total_found"`
	Matches    []MatchResponse `json:"matches"`
	Warning    string          `json:"warning,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// SearchResponse is the body of GET /search.
type SearchResponse struct {
	Plan      PlanResponse    `json:"plan"`
	Selection string          `json:"selection"`
	Result    OutcomeResponse `json:"result"`
	Warnings  []string        `json:"warnings,omitempty"`
	Errors    []string        `json:"errors,omitempty"`
	Cacheable bool            `json:"cacheable"`
}

// RelatedResponse is the body of GET /related.
type RelatedResponse struct {
	Items []OutcomeResponse `json:"items"`
}

// BlockFile is a file to resolve before blocking.
type BlockFile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// BlockRequest is the body of POST /blocks.
type BlockRequest struct {
	IDs   []uint64    `json:"ids"`
	Files []BlockFile `json:"files"`
	Block *bool       `json:"block"`
}

// BlockFileResult is the resolution of one requested file.
type BlockFileResult struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	DocID  uint64 `json:"doc_id,omitempty"`
	Error  string `json:"error,omitempty"`
}

// BlockResponse is the body of POST /blocks.
type BlockResponse struct {
	OK        bool              `json:"ok"`
	Attempted int               `json:"attempted"`
	Updated   int               `json:"updated"`
	Files     []BlockFileResult `json:"files"`
}

// ServerResponse is the body of GET /files/{id}/server.
type ServerResponse struct {
	ID     string `json:"id"`
	Server uint32 `json:"server"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func resolutionToResponse(r result.Resolution) SearchResponse {
	return SearchResponse{
		Plan:      PlanResponse{Position: r.Plan.Position, Label: r.Plan.Label, Text: r.Plan.Text},
		Selection: string(r.Selection),
		Result:    outcomeToResponse(r.Outcome),
		Warnings:  r.Warnings,
		Errors:    r.Errors,
		Cacheable: r.Cacheable(),
	}
}

func outcomeToResponse(o result.Outcome) OutcomeResponse {
	matches := make([]MatchResponse, len(o.Matches))
	for i, m := range o.Matches {
		matches[i] = MatchResponse{
			ID:     m.ID,
			Server: m.Server(),
			Weight: m.Weight,
			Attrs:  m.Attrs,
		}
		if id, err := m.FileID(); err == nil {
			matches[i].FileID = id.URL()
		}
	}
	return OutcomeResponse{
		Total:      o.Total,
		TotalFound: o.TotalFound,
		Matches:    matches,
		Warning:    o.Warning,
		Error:      o.Error,
	}
}

func reportToResponse(r blockuc.Report) BlockResponse {
	files := make([]BlockFileResult, len(r.Files))
	for i, f := range r.Files {
		files[i] = batchResultToResponse(f)
	}
	return BlockResponse{OK: r.OK, Attempted: r.Attempted, Updated: r.Updated, Files: files}
}

func batchResultToResponse(r dombatch.Result) BlockFileResult {
	item := BlockFileResult{ID: r.ID(), Status: string(r.Status()), DocID: r.DocID()}
	if r.Err() != nil {
		item.Error = safeDomainMessage(r.Err())
	}
	return item
}
