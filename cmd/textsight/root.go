package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/okellolabs/textsight/internal/common"
	"github.com/okellolabs/textsight/internal/ocr"
	_ "github.com/okellolabs/textsight/internal/ocr/gosseract" // register native engine
	"github.com/okellolabs/textsight/internal/recognition"
)

var (
	engineName   string
	languages    []string
	tesseractBin string
	verbose      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "textsight",
	Short: "Extract text from images using a configurable OCR engine",
	Long: `textsight is a thin CLI over an OCR engine. It extracts text from a
single image, optionally with an average confidence score, or processes a
directory of images into an XLSX report.

Engines:
  tesseract  shell out to the tesseract binary (default)
  gosseract  use the libtesseract cgo binding`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&engineName, "engine", "", "OCR engine (tesseract, gosseract)")
	rootCmd.PersistentFlags().StringSliceVar(&languages, "langs", nil, "language codes, e.g. eng,deu")
	rootCmd.PersistentFlags().StringVar(&tesseractBin, "tesseract-bin", "", "path to the tesseract binary")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// buildService assembles the recognition service from env config plus
// command-line overrides.
func buildService() (*recognition.Service, *slog.Logger, error) {
	cfg := common.LoadConfig()
	if verbose {
		cfg.Log.Level = "debug"
	}
	if engineName != "" {
		cfg.OCR.Engine = engineName
	}
	if len(languages) > 0 {
		cfg.OCR.Languages = languages
	}
	if tesseractBin != "" {
		cfg.OCR.Tesseract = tesseractBin
	}
	logger := common.NewLogger(cfg.Log.Level)
	if err := cfg.Validate(); err != nil {
		return nil, logger, err
	}

	engine, err := ocr.New(cfg.OCR.Engine, ocr.Config{
		Tesseract:   cfg.OCR.Tesseract,
		Languages:   cfg.OCR.Languages,
		TessdataDir: cfg.OCR.TessdataDir,
		PSM:         cfg.OCR.PSM,
		OEM:         cfg.OCR.OEM,
	}, logger)
	if err != nil {
		return nil, logger, err
	}
	return recognition.NewService(engine, logger), logger, nil
}
