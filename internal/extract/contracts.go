package extract

import (
	"context"
	"errors"

	"github.com/healthlens/healthlens/internal/document"
)

// TextExtractor is one strategy for turning a document into text.
type TextExtractor interface {
	Extract(ctx context.Context, doc document.Document) (string, error)
}

// ErrEmptyContent signals an extraction that completed without a hard error
// but produced no usable text. The orchestrator recovers it via fallback or
// degradation; it is never surfaced to the end user.
var ErrEmptyContent = errors.New("no text content extracted")

// Result is what the orchestrator hands downstream. Text is never nil:
// absence is an empty string with Degraded set, and callers must not treat
// that as equivalent to genuine extracted text.
type Result struct {
	Text     string
	Strategy document.Strategy
	Degraded bool
}
