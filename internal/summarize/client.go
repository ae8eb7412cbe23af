package summarize

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"

	"github.com/healthlens/healthlens/internal/common"
)

// Config for the summary service client. The credential is read once at
// startup and treated as immutable for the process lifetime.
type Config struct {
	APIKey      string
	BaseURL     string // default https://api.openai.com/v1
	Model       string // e.g. "gpt-4o-mini"
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
}

// Client sends prompts to an OpenAI-compatible chat completion endpoint and
// returns generated text. Failures surface as common.ErrSummaryService so
// callers can tell a summarization failure from a document problem.
type Client struct {
	api         *openai.Client
	model       string
	maxTokens   int
	temperature float32
	logger      *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 500
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	apiCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &Client{
		api:         openai.NewClientWithConfig(apiCfg),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		logger:      logger,
	}
}

// Complete sends one prompt and returns the generated text.
func (c *Client) Complete(ctx context.Context, promptText string) (string, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.logger.Info("llm.summarize.start",
		"req_id", rid,
		"model", c.model,
		"prompt_len", len(promptText),
	)

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: promptText},
		},
	})
	if err != nil {
		c.logger.Error("llm.summarize.failed",
			"req_id", rid,
			"error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", fmt.Errorf("%w: %v", common.ErrSummaryService, err)
	}
	if len(resp.Choices) == 0 {
		c.logger.Error("llm.summarize.no_choices", "req_id", rid)
		return "", fmt.Errorf("%w: empty completion response", common.ErrSummaryService)
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	c.logger.Info("llm.summarize.ok",
		"req_id", rid,
		"summary_len", len(text),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return text, nil
}
