package extract

import (
	"context"
	"log/slog"
	"strings"

	"github.com/healthlens/healthlens/internal/document"
)

// Orchestrator selects an extraction strategy, invokes it, and applies the
// fallback and degradation policy. Clinical documents vary wildly in
// provenance, so "could not read" is a data condition reported downstream,
// not a system fault.
type Orchestrator struct {
	classifier *document.Classifier
	extractors map[document.Strategy]TextExtractor
	logger     *slog.Logger
}

func NewOrchestrator(classifier *document.Classifier, pdfText, pdfOCR, imageOCR TextExtractor, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		classifier: classifier,
		extractors: map[document.Strategy]TextExtractor{
			document.DirectPDFText:    pdfText,
			document.RasterizedPDFOCR: pdfOCR,
			document.ImageOCR:         imageOCR,
		},
		logger: logger,
	}
}

// Run classifies the document and extracts its text. Direct PDF extraction
// falls back once to rasterized OCR when it fails or yields only whitespace.
// Exhausting the fallback produces a degraded result, never an error; only
// an unsupported media type or a cancelled context is terminal.
func (o *Orchestrator) Run(ctx context.Context, doc document.Document) (Result, error) {
	strategy, err := o.classifier.Classify(doc)
	if err != nil {
		return Result{}, err
	}

	text, err := o.extractors[strategy].Extract(ctx, doc)
	if usable(text, err) {
		return Result{Text: text, Strategy: strategy, Degraded: false}, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Result{}, ctxErr
	}

	if strategy == document.DirectPDFText {
		o.logger.Warn("extract.fallback", "from", strategy, "to", document.RasterizedPDFOCR, "error", err)
		strategy = document.RasterizedPDFOCR
		text, err = o.extractors[strategy].Extract(ctx, doc)
		if usable(text, err) {
			return Result{Text: text, Strategy: strategy, Degraded: false}, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, ctxErr
		}
	}

	o.logger.Warn("extract.degraded", "strategy", strategy, "error", err)
	return Result{Text: "", Strategy: strategy, Degraded: true}, nil
}

func usable(text string, err error) bool {
	return err == nil && strings.TrimSpace(text) != ""
}
