package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
)

// Engine recognizes the text in a single page image. Confidence is left in
// its default mode and never surfaced; callers only see the recognized text.
type Engine interface {
	Recognize(ctx context.Context, imagePath, lang string) (string, error)
}

var reBoxNoise = regexp.MustCompile(`(?m)^\s*[_\-]{3,}\s*$`)

// Tesseract drives the tesseract binary through a Runner.
type Tesseract struct {
	runner      Runner
	bin         string
	tessdataDir string
	logger      *slog.Logger
}

func NewTesseract(runner Runner, bin, tessdataDir string, logger *slog.Logger) *Tesseract {
	if runner == nil {
		runner = ExecRunner{}
	}
	if bin == "" {
		bin = "tesseract"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Tesseract{runner: runner, bin: bin, tessdataDir: tessdataDir, logger: logger}
}

// Recognize runs tesseract <image> stdout -l <lang> and strips obvious
// line-rule noise from the output.
func (t *Tesseract) Recognize(ctx context.Context, imagePath, lang string) (string, error) {
	args := []string{imagePath, "stdout", "-l", lang}
	if t.tessdataDir != "" {
		args = append(args, "--tessdata-dir", t.tessdataDir)
	}

	out, errb, err := t.runner.Run(ctx, t.bin, args...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, Truncate(string(errb), 2<<10))
	}
	return reBoxNoise.ReplaceAllString(string(out), ""), nil
}
