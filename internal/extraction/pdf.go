package extraction

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const pdfToTextTimeout = 2 * time.Minute

// TextExtractor converts a PDF on disk to plain text.
type TextExtractor func(ctx context.Context, pdfPath string) (string, error)

// PDFToText shells out to poppler's pdftotext, writing the text to stdout.
func PDFToText(binary string) TextExtractor {
	if binary == "" {
		binary = "pdftotext"
	}
	return func(ctx context.Context, pdfPath string) (string, error) {
		ctx, cancel := context.WithTimeout(ctx, pdfToTextTimeout)
		defer cancel()

		cmd := exec.CommandContext(ctx, binary, "-enc", "UTF-8", "-q", pdfPath, "-")
		var stderr strings.Builder
		cmd.Stderr = &stderr
		out, err := cmd.Output()
		if err != nil {
			return "", fmt.Errorf("pdftotext failed: %w; out=%s", err, strings.TrimSpace(stderr.String()))
		}
		text := strings.TrimSpace(string(out))
		if text == "" {
			return "", fmt.Errorf("pdftotext produced no text for %s", pdfPath)
		}
		return text, nil
	}
}
