package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/healthlens/healthlens/internal/document"
	"github.com/healthlens/healthlens/internal/ocr"
	"github.com/healthlens/healthlens/internal/raster"
)

// PDFOCRExtractor handles scanned PDFs: rasterize once per document, prepare
// each page image, OCR the pages, and concatenate in page order. The temp
// workspace is removed on every exit path.
type PDFOCRExtractor struct {
	rasterizer raster.Rasterizer
	engine     ocr.Engine
	lang       string
	maxPages   int
	workers    int
	logger     *slog.Logger
}

func NewPDFOCRExtractor(rasterizer raster.Rasterizer, engine ocr.Engine, lang string, maxPages, workers int, logger *slog.Logger) *PDFOCRExtractor {
	if lang == "" {
		lang = "eng"
	}
	if workers <= 0 {
		workers = 4
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PDFOCRExtractor{
		rasterizer: rasterizer,
		engine:     engine,
		lang:       lang,
		maxPages:   maxPages,
		workers:    workers,
		logger:     logger,
	}
}

func (e *PDFOCRExtractor) Extract(ctx context.Context, doc document.Document) (string, error) {
	tmpDir, err := os.MkdirTemp("", "hl-raster-*")
	if err != nil {
		return "", fmt.Errorf("create temp workspace: %w", err)
	}
	defer func() {
		if rmErr := os.RemoveAll(tmpDir); rmErr != nil {
			e.logger.Warn("extract.pdfocr.cleanup_failed", "dir", tmpDir, "error", rmErr)
		}
	}()

	in := filepath.Join(tmpDir, "input.pdf")
	if err := os.WriteFile(in, doc.Bytes, 0o600); err != nil {
		return "", fmt.Errorf("stage pdf: %w", err)
	}

	pages, err := e.rasterizer.Rasterize(ctx, in, tmpDir)
	if err != nil {
		return "", fmt.Errorf("rasterize: %w", err)
	}
	if e.maxPages > 0 && len(pages) > e.maxPages {
		e.logger.Warn("extract.pdfocr.page_cap", "pages", len(pages), "cap", e.maxPages)
		pages = pages[:e.maxPages]
	}

	// OCR pages concurrently; indexing by page keeps concatenation ordered.
	texts := make([]string, len(pages))
	sem := make(chan struct{}, e.workers)
	var wg sync.WaitGroup
	for i, page := range pages {
		wg.Add(1)
		go func(idx int, path string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if err := raster.Prepare(path); err != nil {
				// OCR the raw render rather than losing the page.
				e.logger.Warn("extract.pdfocr.prepare_failed", "page", idx+1, "error", err)
			}
			txt, err := e.engine.Recognize(ctx, path, e.lang)
			if err != nil {
				e.logger.Warn("extract.pdfocr.page_failed", "page", idx+1, "error", err)
				return
			}
			texts[idx] = strings.TrimSpace(txt)
		}(i, page)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return "", err
	}

	text := ocr.Normalize(strings.Join(texts, "\n"))
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyContent
	}
	return text, nil
}
