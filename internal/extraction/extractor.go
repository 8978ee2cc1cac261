package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/J0na555/ExitPrep/internal/storage/minio_storage"
	"github.com/J0na555/ExitPrep/pkg/logger"
)

// Archive receives copies of every paper, text and batch the extractor produces.
type Archive interface {
	PutFile(ctx context.Context, prefix, localPath string) (string, error)
	Put(ctx context.Context, key string, data []byte) error
}

type Dirs struct {
	Raw  string
	Text string
	Out  string
}

type Failure struct {
	Name   string
	Reason string
}

type Summary struct {
	Succeeded []string
	Failed    []Failure
}

func (s Summary) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Succeeded: %d\n", len(s.Succeeded))
	for _, name := range s.Succeeded {
		fmt.Fprintf(&sb, "  - %s\n", name)
	}
	fmt.Fprintf(&sb, "Failed: %d\n", len(s.Failed))
	for _, f := range s.Failed {
		fmt.Fprintf(&sb, "  - %s: %s\n", f.Name, f.Reason)
	}
	return sb.String()
}

type Extractor struct {
	log     logger.Log
	dirs    Dirs
	toText  TextExtractor
	model   Generator
	archive Archive
}

// NewExtractor builds an extractor. archive may be nil.
func NewExtractor(l logger.Log, dirs Dirs, toText TextExtractor, model Generator, archive Archive) *Extractor {
	return &Extractor{
		log:     l.With("component", "extractor"),
		dirs:    dirs,
		toText:  toText,
		model:   model,
		archive: archive,
	}
}

// Run processes every *.pdf in the raw directory in name order. courseName
// labels the generated records; empty means the PDF's file stem. Per-file
// failures are collected in the summary.
func (e *Extractor) Run(ctx context.Context, courseName string) (Summary, error) {
	var summary Summary

	pdfs, err := filepath.Glob(filepath.Join(e.dirs.Raw, "*.pdf"))
	if err != nil {
		return summary, err
	}
	sort.Strings(pdfs)
	if len(pdfs) == 0 {
		e.log.Warn("no PDF files found", "dir", e.dirs.Raw)
		return summary, nil
	}
	for _, dir := range []string{e.dirs.Text, e.dirs.Out} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return summary, fmt.Errorf("create %s: %w", dir, err)
		}
	}

	for _, pdf := range pdfs {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		name := filepath.Base(pdf)
		if err := e.ExtractFile(ctx, pdf, courseName); err != nil {
			e.log.ErrorErr("extraction failed", err, "file", name)
			summary.Failed = append(summary.Failed, Failure{Name: name, Reason: err.Error()})
			continue
		}
		summary.Succeeded = append(summary.Succeeded, name)
	}
	return summary, nil
}

// ExtractFile turns one PDF into <stem>.txt and <stem>.json.
func (e *Extractor) ExtractFile(ctx context.Context, pdfPath, courseName string) error {
	stem := strings.TrimSuffix(filepath.Base(pdfPath), filepath.Ext(pdfPath))
	if courseName == "" {
		courseName = stem
	}

	text, err := e.toText(ctx, pdfPath)
	if err != nil {
		return err
	}
	textPath := filepath.Join(e.dirs.Text, stem+".txt")
	if err := os.WriteFile(textPath, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write text: %w", err)
	}

	reply, err := e.model.Generate(ctx, BuildPrompt(text))
	if err != nil {
		return fmt.Errorf("generate questions: %w", err)
	}
	items, err := CleanReply(reply)
	if err != nil {
		return err
	}
	records, dropped := Normalize(items, courseName)
	if dropped > 0 {
		e.log.Warn("dropped unrecognised items", "file", stem, "dropped", dropped)
	}
	if len(records) == 0 {
		return fmt.Errorf("no usable questions in model reply (%d items)", len(items))
	}

	batch, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	outPath := filepath.Join(e.dirs.Out, stem+".json")
	if err := os.WriteFile(outPath, batch, 0o644); err != nil {
		return fmt.Errorf("write batch: %w", err)
	}
	e.log.Info("extracted questions", "file", stem, "questions", len(records), "output", outPath)

	e.upload(ctx, pdfPath, textPath, stem+".json", batch)
	return nil
}

func (e *Extractor) upload(ctx context.Context, pdfPath, textPath, batchName string, batch []byte) {
	if e.archive == nil {
		return
	}
	for _, f := range []struct{ prefix, path string }{
		{minio_storage.RawPrefix, pdfPath},
		{minio_storage.TextPrefix, textPath},
	} {
		if _, err := e.archive.PutFile(ctx, f.prefix, f.path); err != nil {
			e.log.ErrorErr("archive upload failed", err, "file", f.path)
		}
	}
	if err := e.archive.Put(ctx, minio_storage.QuestionsPrefix+batchName, batch); err != nil {
		e.log.ErrorErr("archive upload failed", err, "file", batchName)
	}
}
