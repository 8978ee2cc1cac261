package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/J0na555/ExitPrep/internal/app"
	"github.com/J0na555/ExitPrep/internal/config"
	"github.com/J0na555/ExitPrep/internal/extraction"
	"github.com/J0na555/ExitPrep/pkg/logger"
	"github.com/spf13/pflag"
)

func main() {
	configPath := pflag.String("config", os.Getenv("CONFIG_PATH"), "path to the YAML config file")
	course := pflag.String("course", "", "course name for extracted questions (default: PDF file stem)")
	rawDir := pflag.String("raw-dir", "", "directory of past paper PDFs (default: extraction.raw_dir)")
	outDir := pflag.String("out-dir", "", "directory for JSON batches (default: extraction.out_dir)")
	pflag.Parse()

	cfg, err := config.LoadExtraction(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	log := logger.New(cfg.Env)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dirs := extraction.Dirs{Raw: cfg.Extraction.RawDir, Text: cfg.Extraction.TextDir, Out: cfg.Extraction.OutDir}
	if *rawDir != "" {
		dirs.Raw = *rawDir
	}
	if *outDir != "" {
		dirs.Out = *outDir
	}

	var archive extraction.Archive
	paperArchive, err := app.OpenArchive(ctx, cfg.Minio)
	switch {
	case err != nil:
		log.ErrorErr("paper archive unavailable, uploads disabled", err)
	case paperArchive != nil:
		archive = paperArchive
	}

	extractor := extraction.NewExtractor(log, dirs, extraction.PDFToText(cfg.Extraction.PDFToText), extraction.NewGeminiClient(log, cfg.Gemini), archive)
	summary, err := extractor.Run(ctx, *course)
	fmt.Print(summary)
	if err != nil {
		log.FatalErr("extraction aborted", err)
	}
	if len(summary.Failed) > 0 {
		os.Exit(1)
	}
}
