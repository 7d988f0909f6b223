package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/custodia-labs/kbrag/internal/core/domain"
	"github.com/custodia-labs/kbrag/internal/logger"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if s.services.Answer == nil {
		respondError(w, http.StatusServiceUnavailable, "Answer service not configured")
		return
	}

	var req domain.AskRequest
	if !decode(w, r, &req) {
		return
	}

	answer, err := s.services.Answer.Ask(r.Context(), req)
	if err != nil {
		s.respondFailure(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, answer)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if s.services.Search == nil {
		respondError(w, http.StatusServiceUnavailable, "Search service not configured")
		return
	}

	var req domain.SearchRequest
	if !decode(w, r, &req) {
		return
	}

	resp, err := s.services.Search.Search(r.Context(), req)
	if err != nil {
		s.respondFailure(w, r, err)
		return
	}
	if resp.Hits == nil {
		resp.Hits = []domain.SearchHit{}
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.services.Health == nil {
		respondError(w, http.StatusServiceUnavailable, "Health service not configured")
		return
	}

	status := s.services.Health.Check(r.Context())
	code := http.StatusOK
	if status.Status != domain.StatusHealthy {
		code = http.StatusServiceUnavailable
	}
	respondJSON(w, code, status)
}

// decode reads a JSON body into v. It writes a 400 response and returns
// false when the body is not valid JSON.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// respondFailure maps a service error to a response. Validation errors are
// the caller's fault; everything else is reported as an internal error
// carrying the request ID.
func (s *Server) respondFailure(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, domain.ErrInvalidInput) {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	id := middleware.GetReqID(r.Context())
	logger.Error("%s %s failed [%s]: %v", r.Method, r.URL.Path, id, err)
	respondJSON(w, http.StatusInternalServerError, map[string]string{
		"error":      "Internal server error",
		"message":    err.Error(),
		"request_id": id,
	})
}
