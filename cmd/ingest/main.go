package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/J0na555/ExitPrep/internal/app"
	"github.com/J0na555/ExitPrep/internal/config"
	"github.com/J0na555/ExitPrep/internal/ingestion"
	"github.com/J0na555/ExitPrep/internal/storage/postgres"
	"github.com/J0na555/ExitPrep/pkg/logger"
	"github.com/spf13/pflag"
)

func main() {
	configPath := pflag.String("config", os.Getenv("CONFIG_PATH"), "path to the YAML config file")
	dir := pflag.String("dir", "", "directory of *.json batches (default: ingestion.input_dir)")
	fromArchive := pflag.Bool("from-archive", false, "read batches from the MinIO archive instead of a directory")
	chapter := pflag.String("chapter", "", "chapter that receives new questions (default: ingestion.default_chapter)")
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	log := logger.New(cfg.Env)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pg, err := app.OpenPostgres(ctx, cfg.Postgres)
	if err != nil {
		log.FatalErr("error connecting to database", err)
	}
	defer pg.Close()

	var indexer ingestion.Indexer
	index, err := app.OpenSearchIndex(ctx, cfg.ES)
	switch {
	case err != nil:
		log.ErrorErr("elasticsearch unavailable, questions will not be indexed", err)
	case index != nil:
		indexer = index
	}

	var src ingestion.Source
	if *fromArchive {
		archive, err := app.OpenArchive(ctx, cfg.Minio)
		if err != nil {
			log.FatalErr("error opening paper archive", err)
		}
		if archive == nil {
			log.Fatal("--from-archive requires minio.enabled")
		}
		src = ingestion.ArchiveSource{Store: archive, Prefix: cfg.Ingestion.ArchivePrefix}
	} else {
		inputDir := cfg.Ingestion.InputDir
		if *dir != "" {
			inputDir = *dir
		}
		src = ingestion.DirSource{Dir: inputDir}
	}

	chapterTitle := cfg.Ingestion.ChapterTitle
	if *chapter != "" {
		chapterTitle = *chapter
	}

	pipeline := ingestion.NewPipeline(log, postgres.NewIngestPostgres(pg.Pool), indexer, chapterTitle)
	report, err := pipeline.Run(ctx, src)
	if err != nil {
		log.FatalErr("ingestion aborted", err, "report", report.String())
	}
	fmt.Println(report)
}
