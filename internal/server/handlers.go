package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/okellolabs/textsight/constants"
	"github.com/okellolabs/textsight/internal/history"
)

type recognizeRequest struct {
	Path           string `json:"path"`
	WithConfidence bool   `json:"with_confidence"`
}

// recognizeResponse mirrors the recognition result: exactly one of text or
// error is meaningful; confidence only appears on the confidence-aware path.
type recognizeResponse struct {
	Text       string   `json:"text"`
	Confidence *float64 `json:"confidence,omitempty"`
	Error      string   `json:"error,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleFormats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"formats": constants.SupportedExtensions()})
}

func (s *Server) handleRecognize(w http.ResponseWriter, r *http.Request) {
	var req recognizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.Path == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "path is required"})
		return
	}
	if !s.svc.IsSupportedFormat(req.Path) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unsupported file format"})
		return
	}

	start := time.Now()
	var (
		text string
		conf float64
		err  error
	)
	if req.WithConfidence {
		text, conf, err = s.svc.DetectDocumentWithConfidence(r.Context(), req.Path)
	} else {
		text, err = s.svc.DetectDocument(r.Context(), req.Path)
	}
	dur := time.Since(start)

	resp := recognizeResponse{Text: text}
	if req.WithConfidence && err == nil {
		resp.Confidence = &conf
	}
	if err != nil {
		resp.Error = err.Error()
	}

	s.record(r, req.Path, text, conf, err, dur)

	// Engine outcomes are part of the result contract, not transport errors.
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	if s.hist == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "history store is not configured"})
		return
	}
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = n
	}
	recs, err := s.hist.ListRecent(r.Context(), limit)
	if err != nil {
		s.logger.Error("history list failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to list history"})
		return
	}
	type item struct {
		ID         string  `json:"id"`
		Path       string  `json:"path"`
		Engine     string  `json:"engine"`
		Characters int     `json:"characters"`
		Confidence float64 `json:"confidence"`
		Error      string  `json:"error,omitempty"`
		DurationMs int64   `json:"duration_ms"`
		CreatedAt  string  `json:"created_at"`
	}
	out := make([]item, 0, len(recs))
	for _, rec := range recs {
		out = append(out, item{
			ID:         rec.ID.String(),
			Path:       rec.Path,
			Engine:     rec.Engine,
			Characters: len(rec.Text),
			Confidence: rec.Confidence,
			Error:      rec.ErrorMessage,
			DurationMs: rec.Duration.Milliseconds(),
			CreatedAt:  rec.CreatedAt.Format(time.RFC3339Nano),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"recognitions": out})
}

func (s *Server) record(r *http.Request, path, text string, conf float64, err error, dur time.Duration) {
	if s.hist == nil {
		return
	}
	rec := history.Record{
		Path:       path,
		Engine:     s.svc.Engine(),
		Text:       text,
		Confidence: conf,
		Duration:   dur,
	}
	if err != nil {
		rec.ErrorMessage = err.Error()
	}
	if _, insErr := s.hist.Insert(r.Context(), rec); insErr != nil {
		s.logger.Error("history insert failed", "path", path, "error", insErr)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
