// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert turns binary source documents into the plain text files
// the ingestion pipeline consumes. Text extraction itself runs in an
// external converter container; this package batches documents through it
// and manages the output files. See docs/ARCHITECTURE § Conversion.
package convert

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Converter extracts plain text from one source document.
type Converter interface {
	Convert(ctx context.Context, path string) (string, error)
}

// supportedExt lists the source formats the converter handles. Plain text
// files skip conversion entirely and go straight to ingestion.
var supportedExt = map[string]bool{
	".pdf":  true,
	".docx": true,
	".pptx": true,
	".xlsx": true,
	".html": true,
}

// Supported reports whether path has a convertible extension.
func Supported(path string) bool {
	return supportedExt[strings.ToLower(filepath.Ext(path))]
}

type status int

const (
	statusConverted status = iota
	statusSkipped
	statusFailed
)

// BatchResult holds the outcome of a batch conversion run.
type BatchResult struct {
	Converted int
	Skipped   int
	Failed    int
}

// Total returns the total number of documents processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Skipped + r.Failed
}

// HasFailures reports whether any documents failed conversion.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// convertFile extracts one document into outDir, writing per-file status to
// w. Existing output is left alone so re-runs only pay for new documents.
func convertFile(ctx context.Context, c Converter, path, outDir string, w io.Writer) status {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	outPath := filepath.Join(outDir, base+".txt")

	if _, err := os.Stat(outPath); err == nil {
		fmt.Fprintf(w, "skipped: %s (already exists)\n", base)
		return statusSkipped
	}

	if !Supported(path) {
		fmt.Fprintf(w, "failed:  %s (unsupported format %q)\n", base, filepath.Ext(path))
		return statusFailed
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", base, err)
		return statusFailed
	}

	text, err := c.Convert(ctx, path)
	if err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", base, err)
		return statusFailed
	}

	if err := os.WriteFile(outPath, []byte(text), 0o644); err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", base, err)
		return statusFailed
	}

	fmt.Fprintf(w, "converted: %s\n", base)
	return statusConverted
}

// ConvertFiles processes the documents through the converter, printing
// per-file status to w and a summary at the end. A failed document does not
// stop the batch; a cancelled ctx does.
func ConvertFiles(ctx context.Context, c Converter, paths []string, outDir string, w io.Writer) (BatchResult, error) {
	var result BatchResult
	for _, p := range paths {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		switch convertFile(ctx, c, p, outDir, w) {
		case statusConverted:
			result.Converted++
		case statusSkipped:
			result.Skipped++
		case statusFailed:
			result.Failed++
		}
	}

	fmt.Fprintf(w, "\nBatch summary: %d converted, %d skipped, %d failed (total: %d)\n",
		result.Converted, result.Skipped, result.Failed, result.Total())
	return result, nil
}
