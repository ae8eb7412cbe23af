// Command analyze runs the pipeline against a local report file and prints
// the generated summary, useful for trying the pipeline without the HTTP
// layer.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/healthlens/healthlens/constants"
	"github.com/healthlens/healthlens/internal/common"
	"github.com/healthlens/healthlens/internal/document"
	"github.com/healthlens/healthlens/internal/pipeline"
	"github.com/healthlens/healthlens/internal/server"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file loaded", "error", err)
	}

	if len(os.Args) < 2 || len(os.Args) > 3 {
		fmt.Fprintln(os.Stderr, "usage: analyze <report-file> [userInfo-json]")
		os.Exit(2)
	}
	path := os.Args[1]

	mediaType := constants.MediaTypeForExt(filepath.Ext(path))
	if mediaType == "" {
		fmt.Fprintf(os.Stderr, "unsupported file extension: %s\n", filepath.Ext(path))
		os.Exit(2)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read %s: %v\n", path, err)
		os.Exit(1)
	}

	var userInfo []byte
	if len(os.Args) == 3 {
		userInfo = []byte(os.Args[2])
	}
	patient, err := server.ParsePatientContext(userInfo)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid userInfo: %v\n", err)
		os.Exit(2)
	}

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	start := time.Now()
	res, err := pipeline.Assemble(cfg, logger).Process(ctx, document.Document{
		Bytes:     raw,
		MediaType: document.MediaType(mediaType),
	}, patient)
	if err != nil {
		fmt.Fprintf(os.Stderr, "analyze failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(res.Summary)
	if res.Metrics != nil && res.Metrics.Len() > 0 {
		if b, mErr := json.Marshal(res.Metrics); mErr == nil {
			fmt.Fprintf(os.Stderr, "\nmetrics: %s\n", b)
		}
	}
	fmt.Fprintf(os.Stderr, "strategy=%s degraded=%t duration=%s\n",
		res.Strategy, res.Degraded, time.Since(start).Round(time.Millisecond))
}
