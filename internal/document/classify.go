package document

import (
	"fmt"
	"log/slog"

	"github.com/healthlens/healthlens/internal/common"
)

// TextProber reports whether a PDF carries an extractable text layer.
type TextProber interface {
	HasTextLayer(raw []byte) (bool, error)
}

// Classifier picks the extraction strategy for a document.
type Classifier struct {
	prober TextProber
	logger *slog.Logger
}

func NewClassifier(prober TextProber, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{prober: prober, logger: logger}
}

// Classify inspects the declared media type and, for PDFs, probes the text
// layer. A probe failure is treated as evidence of a scanned document, never
// as a request failure: only an unknown media type is terminal.
func (c *Classifier) Classify(doc Document) (Strategy, error) {
	switch doc.MediaType {
	case MediaJPEG, MediaPNG:
		return ImageOCR, nil
	case MediaPDF:
		hasText, err := c.prober.HasTextLayer(doc.Bytes)
		if err != nil {
			c.logger.Warn("classify.probe.failed", "error", err, "assume", "scanned")
			return RasterizedPDFOCR, nil
		}
		if hasText {
			return DirectPDFText, nil
		}
		return RasterizedPDFOCR, nil
	default:
		return "", fmt.Errorf("%w: %q", common.ErrUnsupportedMediaType, string(doc.MediaType))
	}
}
