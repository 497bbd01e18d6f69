// Package recognition exposes the image text recognition contract: extract
// text, extract text with a confidence score, and a file-extension check.
// All substantive work is delegated to the configured OCR engine.
package recognition

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/okellolabs/textsight/constants"
	"github.com/okellolabs/textsight/internal/ocr"
)

// ErrNoTextDetected reports an image with no extractable text. It is an
// expected outcome, not an engine failure.
var ErrNoTextDetected = errors.New("no text detected in the image")

// Service forwards file paths into an OCR engine and aggregates per-line
// results into a single string. It owns the engine handle for its lifetime
// and keeps no other state.
type Service struct {
	engine ocr.Engine
	logger *slog.Logger
}

// NewService wraps the given engine. A nil logger falls back to slog.Default.
func NewService(engine ocr.Engine, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{engine: engine, logger: logger}
}

// Engine returns the name of the wrapped engine.
func (s *Service) Engine() string { return s.engine.Name() }

// DetectDocument extracts text from the image at path. Detected lines are
// joined with single spaces. An image without text yields ErrNoTextDetected;
// any engine failure is wrapped and returned, never panicked.
func (s *Service) DetectDocument(ctx context.Context, path string) (string, error) {
	start := time.Now()
	res, err := s.engine.Recognize(ctx, path)
	if err != nil {
		s.logger.Error("recognition failed", "path", path, "engine", s.engine.Name(), "error", err)
		return "", fmt.Errorf("processing image: %w", err)
	}
	text := joinLines(res.Lines)
	if text == "" {
		return "", ErrNoTextDetected
	}
	s.logger.Debug("recognition ok",
		"path", path,
		"engine", s.engine.Name(),
		"lines", len(res.Lines),
		"bytes", len(text),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return text, nil
}

// DetectDocumentWithConfidence extracts text like DetectDocument and also
// reports the arithmetic mean of per-line confidence scores in [0,1]. The
// mean is 0.0 when no lines were scored.
func (s *Service) DetectDocumentWithConfidence(ctx context.Context, path string) (string, float64, error) {
	start := time.Now()
	res, err := s.engine.RecognizeWithConfidence(ctx, path)
	if err != nil {
		s.logger.Error("recognition failed", "path", path, "engine", s.engine.Name(), "error", err)
		return "", 0, fmt.Errorf("processing image: %w", err)
	}
	text := joinLines(res.Lines)
	if text == "" {
		return "", 0, ErrNoTextDetected
	}
	conf := meanConfidence(res.Lines)
	s.logger.Debug("recognition ok",
		"path", path,
		"engine", s.engine.Name(),
		"lines", len(res.Lines),
		"bytes", len(text),
		"confidence", conf,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return text, conf, nil
}

// IsSupportedFormat reports whether the path's suffix is in the image
// allow-list. Purely a string check; the file is never touched.
func (s *Service) IsSupportedFormat(path string) bool {
	return constants.IsImageExt(filepath.Ext(path))
}

func joinLines(lines []ocr.Line) string {
	parts := make([]string, 0, len(lines))
	for _, ln := range lines {
		if t := strings.TrimSpace(ln.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

func meanConfidence(lines []ocr.Line) float64 {
	var sum float64
	var n int
	for _, ln := range lines {
		if strings.TrimSpace(ln.Text) == "" {
			continue
		}
		sum += ln.Confidence
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
