package pipeline

import (
	"log/slog"

	"github.com/healthlens/healthlens/internal/common"
	"github.com/healthlens/healthlens/internal/document"
	"github.com/healthlens/healthlens/internal/extract"
	"github.com/healthlens/healthlens/internal/metrics"
	"github.com/healthlens/healthlens/internal/ocr"
	"github.com/healthlens/healthlens/internal/raster"
	"github.com/healthlens/healthlens/internal/summarize"
)

// Assemble wires a Processor from process-wide configuration. Both the HTTP
// server and the CLI build the pipeline through here.
func Assemble(cfg *common.Config, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}

	runner := ocr.ExecRunner{}
	engine := ocr.NewTesseract(runner, cfg.OCR.Tesseract, cfg.OCR.TessdataDir, logger)

	var rasterizer raster.Rasterizer
	switch cfg.OCR.Rasterizer {
	case "mupdf":
		rasterizer = raster.NewFitz(cfg.OCR.DPI)
	default:
		rasterizer = raster.NewPoppler(runner, cfg.OCR.Pdftoppm, cfg.OCR.DPI, logger)
	}

	classifier := document.NewClassifier(document.PDFProber{}, logger)
	orchestrator := extract.NewOrchestrator(
		classifier,
		extract.NewPDFTextExtractor(logger),
		extract.NewPDFOCRExtractor(rasterizer, engine, cfg.OCR.Language, cfg.OCR.MaxPages, cfg.OCR.PageWorkers, logger),
		extract.NewImageOCRExtractor(engine, cfg.OCR.Language, logger),
		logger,
	)

	client := summarize.NewClient(summarize.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	}, logger)

	return NewProcessor(orchestrator, metrics.NewParser(nil), client, cfg.Pipeline.RequestTimeout, logger)
}
