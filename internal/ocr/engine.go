// Package ocr defines the engine contract recognition delegates to, a named
// engine registry, and the default tesseract CLI implementation.
package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
)

// Config holds engine tuning knobs shared by all providers.
type Config struct {
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	Languages []string // tesseract language codes, default ["eng"]

	TessdataDir string
	PSM         int // e.g., 6 is good for uniform block of text
	OEM         int // 1 = LSTM; leave 0 to use default
}

func (c Config) withDefaults() Config {
	if c.Tesseract == "" {
		c.Tesseract = "tesseract"
	}
	if len(c.Languages) == 0 {
		c.Languages = []string{"eng"}
	}
	return c
}

// Line is a single recognized text line with an optional confidence score.
type Line struct {
	Text       string
	Confidence float64 // 0..1, only populated by the confidence-aware path
}

// Result captures recognition output for one image.
type Result struct {
	Lines    []Line
	Language string
}

// Engine is the provider contract: one image path in, recognized lines out.
// Recognize skips per-line scoring; RecognizeWithConfidence populates
// Line.Confidence for every returned line.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, path string) (Result, error)
	RecognizeWithConfidence(ctx context.Context, path string) (Result, error)
}

// Factory builds a configured engine instance.
type Factory func(cfg Config, logger *slog.Logger) (Engine, error)

var engines = map[string]Factory{}

// Register makes an engine constructor available under name. Providers call
// this from init; the last registration for a name wins.
func Register(name string, f Factory) {
	engines[name] = f
}

// New constructs the named engine.
func New(name string, cfg Config, logger *slog.Logger) (Engine, error) {
	f, ok := engines[name]
	if !ok {
		return nil, fmt.Errorf("unknown ocr engine %q (registered: %v)", name, registered())
	}
	return f(cfg, logger)
}

func registered() []string {
	names := make([]string, 0, len(engines))
	for n := range engines {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
