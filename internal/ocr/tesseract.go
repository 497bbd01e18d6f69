package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

func init() {
	Register("tesseract", func(cfg Config, logger *slog.Logger) (Engine, error) {
		return NewTesseractEngine(cfg, logger), nil
	})
}

// TesseractEngine shells out to the tesseract binary. Plain stdout mode
// yields lines without scores; TSV mode yields per-word confidences that are
// grouped and averaged into line confidences.
type TesseractEngine struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

// NewTesseractEngine constructs a CLI-backed engine with defaults applied.
func NewTesseractEngine(cfg Config, logger *slog.Logger) *TesseractEngine {
	if logger == nil {
		logger = slog.Default()
	}
	return &TesseractEngine{cfg: cfg.withDefaults(), runner: execRunner{logger: logger}, logger: logger}
}

func (e *TesseractEngine) Name() string { return "tesseract" }

// Recognize runs tesseract in plain text mode.
// tesseract <file> stdout -l <lang>
func (e *TesseractEngine) Recognize(ctx context.Context, path string) (Result, error) {
	args := e.baseArgs(path)
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return Result{}, cmdError("tesseract", err, errb)
	}
	txt := Normalize(string(out))
	var lines []Line
	for _, ln := range strings.Split(txt, "\n") {
		if ln = strings.TrimSpace(ln); ln != "" {
			lines = append(lines, Line{Text: ln})
		}
	}
	return Result{Lines: lines, Language: e.language()}, nil
}

// RecognizeWithConfidence runs tesseract in TSV mode and returns lines with
// mean word confidence in 0..1.
func (e *TesseractEngine) RecognizeWithConfidence(ctx context.Context, path string) (Result, error) {
	args := append(e.baseArgs(path), "tsv")
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return Result{}, cmdError("tesseract TSV", err, errb)
	}
	return Result{Lines: parseTSVLines(string(out)), Language: e.language()}, nil
}

func (e *TesseractEngine) baseArgs(path string) []string {
	args := []string{path, "stdout", "-l", e.language()}
	if e.cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(e.cfg.PSM))
	}
	if e.cfg.OEM > 0 {
		args = append(args, "--oem", strconv.Itoa(e.cfg.OEM))
	}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	return args
}

func (e *TesseractEngine) language() string {
	return strings.Join(e.cfg.Languages, "+")
}

func cmdError(op string, err error, stderr []byte) error {
	msg := strings.TrimSpace(string(stderr))
	if msg == "" {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %s", op, err, msg)
}

// lineKey identifies a TSV text line: page/block/paragraph/line numbers.
type lineKey struct {
	page, block, par, line string
}

// parseTSVLines groups TSV word rows into lines. Columns:
// level page block par line word left top width height conf text.
// Word rows have level 5; conf -1 marks non-word structural rows.
func parseTSVLines(tsv string) []Line {
	type acc struct {
		words []string
		sum   float64
		n     int
	}
	var order []lineKey
	byLine := map[lineKey]*acc{}

	rows := strings.Split(tsv, "\n")
	for i, row := range rows {
		if i == 0 || len(row) == 0 {
			continue // skip header
		}
		cols := strings.Split(row, "\t")
		if len(cols) < 12 {
			continue
		}
		if cols[0] != "5" {
			continue
		}
		word := strings.TrimSpace(cols[11])
		if word == "" {
			continue
		}
		conf, err := strconv.ParseFloat(cols[10], 64)
		if err != nil || conf < 0 {
			continue
		}
		key := lineKey{page: cols[1], block: cols[2], par: cols[3], line: cols[4]}
		a, ok := byLine[key]
		if !ok {
			a = &acc{}
			byLine[key] = a
			order = append(order, key)
		}
		a.words = append(a.words, word)
		a.sum += conf
		a.n++
	}

	lines := make([]Line, 0, len(order))
	for _, key := range order {
		a := byLine[key]
		if a.n == 0 {
			continue
		}
		lines = append(lines, Line{
			Text:       strings.Join(a.words, " "),
			Confidence: a.sum / float64(a.n) / 100.0,
		})
	}
	return lines
}
