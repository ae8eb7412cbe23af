package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/healthlens/healthlens/internal/document"
	"github.com/healthlens/healthlens/internal/extract"
	"github.com/healthlens/healthlens/internal/metrics"
	"github.com/healthlens/healthlens/internal/prompt"
)

// Summarizer is the external text-generation collaborator.
type Summarizer interface {
	Complete(ctx context.Context, promptText string) (string, error)
}

// Result is the terminal output of one pipeline invocation.
type Result struct {
	Summary  string
	Strategy document.Strategy
	Degraded bool
	Metrics  *metrics.Set
}

// Processor runs one upload through classify → extract → parse → prompt →
// summarize. Every entity it touches is request-scoped; nothing is shared
// across invocations beyond configuration.
type Processor struct {
	orchestrator *extract.Orchestrator
	parser       *metrics.Parser
	builder      prompt.Builder
	summarizer   Summarizer
	timeout      time.Duration
	logger       *slog.Logger
}

func NewProcessor(orchestrator *extract.Orchestrator, parser *metrics.Parser, summarizer Summarizer, timeout time.Duration, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		orchestrator: orchestrator,
		parser:       parser,
		summarizer:   summarizer,
		timeout:      timeout,
		logger:       logger,
	}
}

// Process analyzes one document. Degraded extraction does not abort the
// request: the summarizer still runs, instructed to stick to the placeholder.
// Summary-service failures return alongside the extraction outcome so the
// caller can report which stage failed.
func (p *Processor) Process(ctx context.Context, doc document.Document, patient *prompt.PatientContext) (Result, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	rid := uuid.New().String()
	start := time.Now()
	p.logger.Info("pipeline.start",
		"req_id", rid,
		"media_type", string(doc.MediaType),
		"bytes", len(doc.Bytes),
	)

	extracted, err := p.orchestrator.Run(ctx, doc)
	if err != nil {
		p.logger.Warn("pipeline.extract.rejected", "req_id", rid, "error", err)
		return Result{}, err
	}
	p.logger.Info("pipeline.extract.ok",
		"req_id", rid,
		"strategy", string(extracted.Strategy),
		"degraded", extracted.Degraded,
		"text_len", len(extracted.Text),
	)

	set := p.parser.Parse(extracted.Text)
	promptText := p.builder.Build(patient, extracted, set)

	summary, err := p.summarizer.Complete(ctx, promptText)
	if err != nil {
		p.logger.Error("pipeline.summarize.failed", "req_id", rid, "error", err)
		return Result{Strategy: extracted.Strategy, Degraded: extracted.Degraded, Metrics: set}, err
	}

	p.logger.Info("pipeline.ok",
		"req_id", rid,
		"strategy", string(extracted.Strategy),
		"degraded", extracted.Degraded,
		"metrics", set.Len(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return Result{
		Summary:  summary,
		Strategy: extracted.Strategy,
		Degraded: extracted.Degraded,
		Metrics:  set,
	}, nil
}
