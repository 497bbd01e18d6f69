// Package gosseract provides an ocr.Engine backed by the gosseract cgo
// binding to libtesseract. It avoids per-call process spawning at the cost
// of a build-time dependency on the Tesseract headers.
package gosseract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tess "github.com/otiai10/gosseract/v2"

	"github.com/okellolabs/textsight/internal/ocr"
)

func init() {
	ocr.Register("gosseract", func(cfg ocr.Config, logger *slog.Logger) (ocr.Engine, error) {
		return NewEngine(cfg, logger), nil
	})
}

// Engine implements ocr.Engine using a fresh gosseract client per call. The
// client is not safe for concurrent use, and per-call construction keeps the
// engine stateless between recognitions.
type Engine struct {
	cfg           ocr.Config
	logger        *slog.Logger
	clientFactory func() *tess.Client
}

// NewEngine constructs a gosseract-backed OCR engine.
func NewEngine(cfg ocr.Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{cfg: cfg, logger: logger, clientFactory: tess.NewClient}
}

func (e *Engine) Name() string { return "gosseract" }

// Recognize extracts text without per-line scoring.
func (e *Engine) Recognize(ctx context.Context, path string) (ocr.Result, error) {
	c, err := e.configuredClient(path)
	if err != nil {
		return ocr.Result{}, err
	}
	defer c.Close()

	if err := ctx.Err(); err != nil {
		return ocr.Result{}, err
	}
	text, err := c.Text()
	if err != nil {
		return ocr.Result{}, fmt.Errorf("gosseract text: %w", err)
	}
	var lines []ocr.Line
	for _, ln := range strings.Split(ocr.Normalize(text), "\n") {
		if ln = strings.TrimSpace(ln); ln != "" {
			lines = append(lines, ocr.Line{Text: ln})
		}
	}
	return ocr.Result{Lines: lines, Language: e.language()}, nil
}

// RecognizeWithConfidence extracts text lines with confidence in 0..1 from
// the line-level bounding boxes.
func (e *Engine) RecognizeWithConfidence(ctx context.Context, path string) (ocr.Result, error) {
	c, err := e.configuredClient(path)
	if err != nil {
		return ocr.Result{}, err
	}
	defer c.Close()

	if err := ctx.Err(); err != nil {
		return ocr.Result{}, err
	}
	boxes, err := c.GetBoundingBoxes(tess.RIL_TEXTLINE)
	if err != nil {
		return ocr.Result{}, fmt.Errorf("gosseract bounding boxes: %w", err)
	}
	var lines []ocr.Line
	for _, b := range boxes {
		txt := strings.TrimSpace(b.Word)
		if txt == "" {
			continue
		}
		lines = append(lines, ocr.Line{Text: txt, Confidence: b.Confidence / 100.0})
	}
	return ocr.Result{Lines: lines, Language: e.language()}, nil
}

func (e *Engine) configuredClient(path string) (*tess.Client, error) {
	c := e.clientFactory()
	c.Trim = true
	if err := c.SetImage(path); err != nil {
		c.Close()
		return nil, fmt.Errorf("set image: %w", err)
	}
	if langs := e.cfg.Languages; len(langs) > 0 {
		if err := c.SetLanguage(langs...); err != nil {
			c.Close()
			return nil, fmt.Errorf("set languages: %w", err)
		}
	}
	if e.cfg.TessdataDir != "" {
		if err := c.SetTessdataPrefix(e.cfg.TessdataDir); err != nil {
			c.Close()
			return nil, fmt.Errorf("set tessdata prefix: %w", err)
		}
	}
	if e.cfg.PSM > 0 {
		if err := c.SetPageSegMode(tess.PageSegMode(e.cfg.PSM)); err != nil {
			c.Close()
			return nil, fmt.Errorf("set page seg mode: %w", err)
		}
	}
	return c, nil
}

func (e *Engine) language() string {
	return strings.Join(e.cfg.Languages, "+")
}
