package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/healthlens/healthlens/internal/document"
	"github.com/healthlens/healthlens/internal/ocr"
)

// ImageOCRExtractor applies OCR directly to a single photographed or scanned
// image.
type ImageOCRExtractor struct {
	engine ocr.Engine
	lang   string
	logger *slog.Logger
}

func NewImageOCRExtractor(engine ocr.Engine, lang string, logger *slog.Logger) *ImageOCRExtractor {
	if lang == "" {
		lang = "eng"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ImageOCRExtractor{engine: engine, lang: lang, logger: logger}
}

func (e *ImageOCRExtractor) Extract(ctx context.Context, doc document.Document) (string, error) {
	tmpDir, err := os.MkdirTemp("", "hl-image-*")
	if err != nil {
		return "", fmt.Errorf("create temp workspace: %w", err)
	}
	defer func() {
		if rmErr := os.RemoveAll(tmpDir); rmErr != nil {
			e.logger.Warn("extract.imageocr.cleanup_failed", "dir", tmpDir, "error", rmErr)
		}
	}()

	path := filepath.Join(tmpDir, "input"+extFor(doc.MediaType))
	if err := os.WriteFile(path, doc.Bytes, 0o600); err != nil {
		return "", fmt.Errorf("stage image: %w", err)
	}

	txt, err := e.engine.Recognize(ctx, path, e.lang)
	if err != nil {
		return "", err
	}
	text := ocr.Normalize(txt)
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyContent
	}
	return text, nil
}

func extFor(mt document.MediaType) string {
	switch mt {
	case document.MediaPNG:
		return ".png"
	case document.MediaJPEG:
		return ".jpg"
	default:
		return ".bin"
	}
}
