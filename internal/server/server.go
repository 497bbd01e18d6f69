// Package server exposes the recognition service over HTTP/JSON. Engine
// outcomes (no text, processing error) are payload, not HTTP failures: the
// caller always gets a RecognitionResult-shaped body on a well-formed request.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/okellolabs/textsight/internal/history"
)

// Recognizer is the slice of the recognition service the server needs.
type Recognizer interface {
	DetectDocument(ctx context.Context, path string) (string, error)
	DetectDocumentWithConfidence(ctx context.Context, path string) (string, float64, error)
	IsSupportedFormat(path string) bool
	Engine() string
}

// History is the optional audit store. A nil History disables the endpoint.
type History interface {
	Insert(ctx context.Context, rec history.Record) (history.Record, error)
	ListRecent(ctx context.Context, limit int) ([]history.Record, error)
}

// Server wires handlers, middleware, and the HTTP listener.
type Server struct {
	svc    Recognizer
	hist   History
	logger *slog.Logger
}

func New(svc Recognizer, hist History, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{svc: svc, hist: hist, logger: logger}
}

// Router builds the HTTP handler with recovery, request-id, and logging
// middleware applied.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/v1/formats", s.handleFormats).Methods(http.MethodGet)
	r.HandleFunc("/v1/recognitions", s.handleRecognize).Methods(http.MethodPost)
	r.HandleFunc("/v1/recognitions", s.handleListHistory).Methods(http.MethodGet)

	h := s.requestIDMiddleware(r)
	h = s.loggingMiddleware(h)
	return handlers.RecoveryHandler(handlers.RecoveryLogger(recoveryLogger{s.logger}))(h)
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // OCR on large images is slow
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

type ctxKey string

const requestIDKey ctxKey = "request_id"

func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", requestIDFrom(r.Context()),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func requestIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// recoveryLogger adapts slog to the gorilla/handlers recovery logger.
type recoveryLogger struct {
	logger *slog.Logger
}

func (l recoveryLogger) Println(v ...interface{}) {
	l.logger.Error("panic recovered in http handler", "detail", v)
}
