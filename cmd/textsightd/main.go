package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/okellolabs/textsight/internal/common"
	"github.com/okellolabs/textsight/internal/history"
	"github.com/okellolabs/textsight/internal/ocr"
	_ "github.com/okellolabs/textsight/internal/ocr/gosseract" // register native engine
	"github.com/okellolabs/textsight/internal/recognition"
	"github.com/okellolabs/textsight/internal/server"
)

func main() {
	configFile := flag.String("config", "", "optional JSON config file")
	flag.Parse()

	cfg := common.LoadConfig()
	if *configFile != "" {
		if err := cfg.LoadConfigFile(*configFile); err != nil {
			common.NewLogger("info").Error("config file", "path", *configFile, "error", err)
			os.Exit(1)
		}
	}
	logger := common.NewLogger(cfg.Log.Level)
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine, err := ocr.New(cfg.OCR.Engine, ocr.Config{
		Tesseract:   cfg.OCR.Tesseract,
		Languages:   cfg.OCR.Languages,
		TessdataDir: cfg.OCR.TessdataDir,
		PSM:         cfg.OCR.PSM,
		OEM:         cfg.OCR.OEM,
	}, logger)
	if err != nil {
		logger.Error("build ocr engine", "error", err)
		os.Exit(1)
	}

	svc := recognition.NewService(engine, logger)

	var hist server.History
	if cfg.History.DSN != "" {
		store, err := history.Open(ctx, cfg.History.DSN, logger)
		if err != nil {
			logger.Error("open history store", "error", err)
			os.Exit(1)
		}
		defer func() {
			if cerr := store.Close(); cerr != nil {
				logger.Error("close history store", "error", cerr)
			}
		}()
		hist = store
	}

	srv := server.New(svc, hist, logger)
	if err := srv.Run(ctx, cfg.Server.HTTPAddr, cfg.Server.ShutdownTimeout); err != nil {
		logger.Error("http server", "error", err)
		os.Exit(1)
	}
	logger.Info("stopped")
}
