package export

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"
)

// Row is one batch recognition outcome destined for the workbook.
type Row struct {
	File       string
	Status     string // "ok" | "no-text" | "error"
	Characters int
	Confidence float64
	Duration   time.Duration
	Error      string
}

// Service produces XLSX bytes for batch recognition results.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// ResultsXLSX returns an XLSX workbook (as bytes) listing the given rows.
func (s *Service) ResultsXLSX(rows []Row) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	const sheet = "Recognitions"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	if index, _ := f.GetSheetIndex("Sheet1"); index != -1 {
		_ = f.DeleteSheet("Sheet1")
	}

	headers := []string{
		"File",
		"Status",
		"Characters",
		"Confidence",
		"Duration (ms)",
		"Error",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	rowIdx := 2
	for _, r := range rows {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, rowIdx)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, r.File)
		write(2, r.Status)
		write(3, r.Characters)
		if r.Status == "ok" {
			write(4, fmt.Sprintf("%.3f", r.Confidence))
		} else {
			write(4, "")
		}
		write(5, r.Duration.Milliseconds())
		write(6, truncate(r.Error, 140))

		rowIdx++
	}

	// Widen a few columns
	_ = f.SetColWidth(sheet, "A", "A", 60) // path
	_ = f.SetColWidth(sheet, "B", "B", 10) // status
	_ = f.SetColWidth(sheet, "C", "E", 14) // numbers
	_ = f.SetColWidth(sheet, "F", "F", 48) // error

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(rows),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
