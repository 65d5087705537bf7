// ABOUTME: One-shot pipeline runner for cron jobs and manual digests
// ABOUTME: Runs a single aggregation pass and prints the outcome

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"business-digest-api/core/interfaces"
	"business-digest-api/core/pipeline"
	stdhttp "business-digest-api/infrastructure/http/standard"
	"business-digest-api/infrastructure/llm/openai"
	logruslogger "business-digest-api/infrastructure/logger/logrus"
	filestore "business-digest-api/infrastructure/store/file"
	"business-digest-api/pkg/config"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger := logruslogger.New(logruslogger.Options{
		Level: cfg.Log.Level,
		File:  cfg.Log.File,
	})

	sources, err := config.LoadSources(cfg.Pipeline.SourcesFile)
	if err != nil {
		log.Fatalf("Failed to load feed sources: %v", err)
	}

	if err := os.MkdirAll(cfg.Pipeline.DataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	// The one-shot runner always uses the file store so repeated cron
	// invocations share a cache without a database dependency.
	ttl := time.Duration(cfg.Store.TTLHours) * time.Hour
	store, err := filestore.New(cfg.Store.FilePath, ttl)
	if err != nil {
		log.Fatalf("Failed to open article store: %v", err)
	}
	defer store.Close()

	var llm interfaces.LLMClient
	if cfg.LLM.APIKey != "" {
		llm = openai.New(openai.Options{
			APIKey:            cfg.LLM.APIKey,
			Model:             cfg.LLM.Model,
			BaseURL:           cfg.LLM.BaseURL,
			RequestsPerMinute: cfg.LLM.RequestsPerMinute,
		})
	} else {
		logger.Warn("No LLM API key configured, using fallback summaries", nil)
	}

	deps := interfaces.Dependencies{
		Store:      store,
		HTTPClient: stdhttp.NewStandardHTTPClient(10 * time.Second),
		LLM:        llm,
		Logger:     logger,
	}

	p := pipeline.New(deps, pipeline.Config{
		Sources:      sources,
		MaxItems:     cfg.Pipeline.MaxItems,
		BatchSize:    cfg.Pipeline.BatchSize,
		Window:       time.Duration(cfg.Pipeline.WindowHours) * time.Hour,
		DigestPath:   filepath.Join(cfg.Pipeline.DataDir, "latest_digest.json"),
		MarkdownPath: filepath.Join(cfg.Pipeline.DataDir, "digest.md"),
		AuditDir:     cfg.Pipeline.DataDir,
	})

	digest, err := p.Run(context.Background())
	if err != nil {
		log.Fatalf("Pipeline run failed: %v", err)
	}

	fmt.Printf("Digest for %s: %d items across %d categories\n",
		digest.Date, digest.TotalItems, len(digest.Categories))
}
