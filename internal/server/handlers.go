package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/jonathan/unihan-tabular/internal/db"
	"github.com/jonathan/unihan-tabular/internal/grammar"
	"github.com/jonathan/unihan-tabular/internal/manifest"
	"github.com/jonathan/unihan-tabular/internal/normalize"
)

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"database": s.store != nil,
	})
}

// handleFields lists the fields of each source file, optionally
// restricted with repeated ?file= parameters
func (s *Server) handleFields(w http.ResponseWriter, r *http.Request) {
	m := manifest.Default
	if files := r.URL.Query()["file"]; len(files) > 0 {
		sub, err := m.Filter(files)
		if err != nil {
			s.errorFrom(w, err)
			return
		}
		m = sub
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"files":  m,
		"fields": m.Fields(),
	})
}

// DecodeRequest is the body of POST /decode
type DecodeRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// handleDecode decodes one raw value with its field grammar
func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	var req DecodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid JSON body: "+err.Error())
		return
	}
	if req.Field == "" {
		s.errorFrom(w, &ValidationError{Field: "field", Message: "is required"})
		return
	}

	value, err := grammar.Decode(req.Field, req.Value)
	if err != nil {
		s.errorFrom(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"field": req.Field,
		"value": value,
	})
}

// handleListRuns returns stored builds, newest first
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.errorFrom(w, errNoDatabase)
		return
	}

	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n < 1 {
			s.errorFrom(w, &ValidationError{Field: "limit", Message: "must be a positive integer"})
			return
		}
		limit = n
	}

	runs, err := s.store.ListRuns(r.Context(), limit)
	if err != nil {
		s.errorFrom(w, err)
		return
	}
	if runs == nil {
		runs = []db.Run{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"runs":  runs,
		"count": len(runs),
	})
}

// handleGetRun returns one stored build
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.errorFrom(w, errNoDatabase)
		return
	}
	runID, ok := s.runIDParam(w, r.PathValue("id"))
	if !ok {
		return
	}

	run, err := s.store.GetRun(r.Context(), runID)
	if err != nil {
		s.errorFrom(w, err)
		return
	}
	if run == nil {
		s.errorFrom(w, &NotFoundError{Resource: "run", ID: runID.String()})
		return
	}
	s.jsonResponse(w, http.StatusOK, run)
}

// handleDeleteRun deletes a stored build and its characters
func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.errorFrom(w, errNoDatabase)
		return
	}
	runID, ok := s.runIDParam(w, r.PathValue("id"))
	if !ok {
		return
	}

	if err := s.store.DeleteRun(r.Context(), runID); err != nil {
		s.errorFrom(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleGetCharacter returns a stored record by character or U+XXXX
// codepoint, from ?run_id= or the latest completed build
func (s *Server) handleGetCharacter(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.errorFrom(w, errNoDatabase)
		return
	}
	codepoint, err := normalize.ResolveCharacter(r.PathValue("char"))
	if err != nil {
		s.errorFrom(w, err)
		return
	}

	runID := uuid.Nil
	if idStr := r.URL.Query().Get("run_id"); idStr != "" {
		var ok bool
		if runID, ok = s.runIDParam(w, idStr); !ok {
			return
		}
	}

	character, err := s.store.GetCharacter(r.Context(), runID, codepoint)
	if err != nil {
		s.errorFrom(w, err)
		return
	}
	if character == nil {
		s.errorFrom(w, &NotFoundError{Resource: "character", ID: codepoint})
		return
	}
	s.jsonResponse(w, http.StatusOK, character)
}

// runIDParam parses a run ID, writing a 400 response when it is invalid
func (s *Server) runIDParam(w http.ResponseWriter, idStr string) (uuid.UUID, bool) {
	runID, err := uuid.Parse(idStr)
	if err != nil {
		s.errorFrom(w, &ValidationError{Field: "run_id", Message: "invalid run ID format"})
		return uuid.Nil, false
	}
	return runID, true
}
