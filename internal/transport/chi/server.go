// Package chi serves the search HTTP API on a chi router.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/psyvisions/foofind-web/internal/domain"
	"github.com/psyvisions/foofind-web/internal/domain/search/request"
	"github.com/psyvisions/foofind-web/internal/domain/search/result"
	blockuc "github.com/psyvisions/foofind-web/internal/usecase/block"
	healthuc "github.com/psyvisions/foofind-web/internal/usecase/health"
)

const maxBlockItems = 1000

// SearchService runs searches and server lookups.
type SearchService interface {
	Search(ctx context.Context, req request.Request) (result.Resolution, error)
	Related(ctx context.Context, rel request.Related) ([]result.Outcome, error)
	LocateServer(ctx context.Context, externalID, name string) (uint32, bool, error)
}

// BlockService sets the blocked flag on files.
type BlockService interface {
	SetBlocked(ctx context.Context, ids []uint64, files []blockuc.File, block bool) (blockuc.Report, error)
}

// HealthChecker reports backend health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Server holds the HTTP handlers.
type Server struct {
	search SearchService
	block  BlockService
	health HealthChecker
	logger *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(search SearchService, block BlockService, health HealthChecker, logger *zap.Logger) *Server {
	return &Server{search: search, block: block, health: health, logger: logger}
}

// Search handles GET /search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := 1
	if v := q.Get("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, CodeBadRequest, "page must be an integer")
			return
		}
		page = p
	}

	req, err := request.New(q.Get("q"), request.Filters{
		Type: q.Get("type"),
		Src:  q.Get("src"),
		Size: q.Get("size"),
	}, page)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
		return
	}

	res, err := s.search.Search(r.Context(), req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resolutionToResponse(res))
}

// Related handles GET /related.
func (s *Server) Related(w http.ResponseWriter, r *http.Request) {
	rel, err := request.NewRelated(r.URL.Query()["phrase"])
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
		return
	}

	out, err := s.search.Related(r.Context(), rel)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	items := make([]OutcomeResponse, len(out))
	for i, o := range out {
		items[i] = outcomeToResponse(o)
	}
	writeJSON(w, http.StatusOK, RelatedResponse{Items: items})
}

// SetBlocked handles POST /blocks.
func (s *Server) SetBlocked(w http.ResponseWriter, r *http.Request) {
	var req BlockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Block == nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "block is required")
		return
	}
	if n := len(req.IDs) + len(req.Files); n == 0 || n > maxBlockItems {
		writeError(w, http.StatusBadRequest, CodeValidationFailed,
			fmt.Sprintf("ids and files together must hold between 1 and %d items", maxBlockItems))
		return
	}

	files := make([]blockuc.File, len(req.Files))
	for i, f := range req.Files {
		files[i] = blockuc.File{ID: f.ID, Name: f.Name}
	}

	rep, err := s.block.SetBlocked(r.Context(), req.IDs, files, *req.Block)
	// A count mismatch is a reported outcome, not a request failure.
	if err != nil && !errors.Is(err, domain.ErrMaintenanceMismatch) {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reportToResponse(rep))
}

// LocateServer handles GET /files/{id}/server.
func (s *Server) LocateServer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	shard, found, err := s.search.LocateServer(r.Context(), id, r.URL.Query().Get("name"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, CodeNotFound, "file not found on any server")
		return
	}
	writeJSON(w, http.StatusOK, ServerResponse{ID: id, Server: shard})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}
