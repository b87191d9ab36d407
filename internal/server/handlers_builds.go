package server

import (
	"encoding/json"
	"net/http"

	"github.com/jonathan/unihan-tabular/internal/config"
	"github.com/jonathan/unihan-tabular/internal/logging"
	"github.com/jonathan/unihan-tabular/internal/pipeline"
	"github.com/jonathan/unihan-tabular/internal/server/middleware"
)

// BuildRequest is the body of POST /builds/stream. Unset values keep the
// server's build configuration; the source archive cannot be changed
// except by choosing a Unicode version.
type BuildRequest struct {
	UnicodeVersion string   `json:"unicode_version,omitempty"`
	Format         string   `json:"format,omitempty"`
	Fields         []string `json:"fields,omitempty"`
	InputFiles     []string `json:"input_files,omitempty"`
	NoExpand       bool     `json:"no_expand,omitempty"`
	NoPrune        bool     `json:"no_prune,omitempty"`
	OnDecodeError  string   `json:"on_decode_error,omitempty"`
	Store          bool     `json:"store,omitempty"`
}

// BuildSummary is the payload of the "result" event
type BuildSummary struct {
	RunID        string   `json:"run_id"`
	Steps        []string `json:"steps"`
	Files        []string `json:"files"`
	Records      int      `json:"records"`
	Malformed    int      `json:"malformed"`
	DecodeErrors int      `json:"decode_errors"`
	Output       string   `json:"output,omitempty"`
	Stored       int64    `json:"stored"`
	FromCache    bool     `json:"from_cache"`
	DurationMS   int64    `json:"duration_ms"`
}

// buildConfig applies req on top of the server's build configuration
func (s *Server) buildConfig(req BuildRequest) (config.Config, error) {
	cfg := s.build
	if req.UnicodeVersion != "" {
		cfg.UnicodeVersion = req.UnicodeVersion
		cfg.Source = ""
	}
	if req.Format != "" {
		cfg.Format = req.Format
	}
	if len(req.Fields) > 0 {
		cfg.Fields = req.Fields
	}
	if len(req.InputFiles) > 0 {
		cfg.InputFiles = req.InputFiles
	}
	if req.OnDecodeError != "" {
		cfg.OnDecodeError = req.OnDecodeError
	}
	cfg.NoExpand = cfg.NoExpand || req.NoExpand
	cfg.NoPrune = cfg.NoPrune || req.NoPrune
	if !req.Store {
		cfg.DatabaseURL = ""
	}
	cfg.Verbose = false

	if err := cfg.Validate(); err != nil {
		return cfg, &ValidationError{Field: "body", Message: err.Error()}
	}
	return cfg, nil
}

// handleBuildStream runs a build and streams its progress as Server-Sent Events
func (s *Server) handleBuildStream(w http.ResponseWriter, r *http.Request) {
	var req BuildRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.errorResponse(w, http.StatusBadRequest, "Invalid JSON body: "+err.Error())
			return
		}
	}

	cfg, err := s.buildConfig(req)
	if err != nil {
		s.errorFrom(w, err)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	subject, _ := middleware.Subject(r)
	logging.FromContext(r.Context()).Info("build requested", "subject", subject, "format", cfg.Format)

	s.buildMu.Lock()
	defer s.buildMu.Unlock()
	result, err := pipeline.Run(r.Context(), pipeline.RunOptions{
		Config: cfg,
		OnProgress: func(event pipeline.ProgressEvent) {
			sse.WriteEvent("progress", event) //nolint:errcheck
		},
	})
	if err != nil {
		sse.WriteError(err.Error())
		sse.WriteComplete("", "failed")
		return
	}

	sse.WriteEvent("result", BuildSummary{ //nolint:errcheck
		RunID:        result.RunID.String(),
		Steps:        result.Steps,
		Files:        result.Selection.Files,
		Records:      len(result.Records),
		Malformed:    len(result.Malformed),
		DecodeErrors: len(result.DecodeErrors),
		Output:       result.Output,
		Stored:       result.Stored,
		FromCache:    result.FromCache,
		DurationMS:   result.Duration.Milliseconds(),
	})
	sse.WriteComplete(result.RunID.String(), "completed")
}
