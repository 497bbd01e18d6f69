package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/okellolabs/textsight/internal/export"
	"github.com/okellolabs/textsight/internal/recognition"
)

var batchOut string

var batchCmd = &cobra.Command{
	Use:   "batch <dir>",
	Short: "Recognize every supported image under a directory into an XLSX report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, logger, err := buildService()
		if err != nil {
			return err
		}
		root := args[0]

		var rows []export.Row
		// Files are processed one at a time; recognition is blocking by
		// contract.
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !svc.IsSupportedFormat(path) {
				return nil
			}
			rows = append(rows, recognizeOne(cmd.Context(), svc, path))
			return nil
		})
		if err != nil {
			return fmt.Errorf("walk %s: %w", root, err)
		}
		if len(rows) == 0 {
			return fmt.Errorf("no supported images under %s", root)
		}

		data, err := export.NewService(logger).ResultsXLSX(rows)
		if err != nil {
			return err
		}
		if err := os.WriteFile(batchOut, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", batchOut, err)
		}
		fmt.Printf("processed %d file(s), report written to %s\n", len(rows), batchOut)
		return nil
	},
}

func recognizeOne(ctx context.Context, svc *recognition.Service, path string) export.Row {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	start := time.Now()
	text, conf, err := svc.DetectDocumentWithConfidence(ctx, path)
	row := export.Row{
		File:       path,
		Characters: len(text),
		Confidence: conf,
		Duration:   time.Since(start),
	}
	switch {
	case errors.Is(err, recognition.ErrNoTextDetected):
		row.Status = "no-text"
	case err != nil:
		row.Status = "error"
		row.Error = err.Error()
	default:
		row.Status = "ok"
	}
	return row
}

func init() {
	batchCmd.Flags().StringVarP(&batchOut, "out", "o", "recognitions.xlsx", "output XLSX path")
	rootCmd.AddCommand(batchCmd)
}
