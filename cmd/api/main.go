// ABOUTME: Main entry point for the business digest API server
// ABOUTME: Wires together all components, starts the background runner and HTTP server

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"business-digest-api/api"
	"business-digest-api/core/interfaces"
	"business-digest-api/core/pipeline"
	stdhttp "business-digest-api/infrastructure/http/standard"
	"business-digest-api/infrastructure/llm/openai"
	logruslogger "business-digest-api/infrastructure/logger/logrus"
	filestore "business-digest-api/infrastructure/store/file"
	memorystore "business-digest-api/infrastructure/store/memory"
	redisstore "business-digest-api/infrastructure/store/redis"
	sqlitestore "business-digest-api/infrastructure/store/sqlite"
	"business-digest-api/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Create logger
	logger := logruslogger.New(logruslogger.Options{
		Level: cfg.Log.Level,
		File:  cfg.Log.File,
	})
	logger.Info("Starting Business Digest API", map[string]interface{}{
		"port":       cfg.Server.Port,
		"store_type": cfg.Store.Type,
		"refresh_s":  cfg.Pipeline.RefreshSeconds,
	})

	// Load feed sources
	sources, err := config.LoadSources(cfg.Pipeline.SourcesFile)
	if err != nil {
		log.Fatalf("Failed to load feed sources: %v", err)
	}
	logger.Info("Loaded feed sources", map[string]interface{}{"count": len(sources)})

	if err := os.MkdirAll(cfg.Pipeline.DataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	// Create article store
	ttl := time.Duration(cfg.Store.TTLHours) * time.Hour
	var store interfaces.ArticleStore
	switch cfg.Store.Type {
	case "memory":
		store = memorystore.New(ttl)
		logger.Info("Using memory store", nil)
	case "sqlite":
		sqliteStore, err := sqlitestore.New(cfg.Store.SQLitePath, ttl)
		if err != nil {
			log.Fatalf("Failed to open SQLite store: %v", err)
		}
		store = sqliteStore
		logger.Info("Using SQLite store", map[string]interface{}{"path": cfg.Store.SQLitePath})
	case "redis":
		redisStore, err := redisstore.New(cfg.Store.Redis, ttl)
		if err != nil {
			logger.Error("Failed to create Redis store, falling back to memory", map[string]interface{}{
				"error": err.Error(),
			})
			store = memorystore.New(ttl)
		} else {
			store = redisStore
			logger.Info("Using Redis store", map[string]interface{}{"address": cfg.Store.Redis.Address})
		}
	default:
		fileStore, err := filestore.New(cfg.Store.FilePath, ttl)
		if err != nil {
			log.Fatalf("Failed to open file store: %v", err)
		}
		store = fileStore
		logger.Info("Using file store", map[string]interface{}{"path": cfg.Store.FilePath})
	}
	defer store.Close()

	// Create HTTP client
	httpClient := stdhttp.NewStandardHTTPClient(10 * time.Second)

	// Create LLM client. Without an API key the pipeline runs with
	// deterministic fallback summaries.
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
		HTTPClient: httpClient,
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

	statusPath := filepath.Join(cfg.Pipeline.DataDir, "service_status.json")
	runner := pipeline.NewRunner(p, logger, time.Duration(cfg.Pipeline.RefreshSeconds)*time.Second, statusPath)

	runnerCtx, stopRunner := context.WithCancel(context.Background())
	runnerDone := make(chan struct{})
	go func() {
		runner.Run(runnerCtx)
		close(runnerDone)
	}()

	// Create HTTP server
	handler := api.NewHandler(api.Config{
		Logger:             logger,
		RateLimitPerSecond: cfg.Server.RateLimitPerSecond,
		DigestPath:         filepath.Join(cfg.Pipeline.DataDir, "latest_digest.json"),
		StatusPath:         statusPath,
		Refresher:          runner,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute, // /api/refresh runs the pipeline inline
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP server starting", map[string]interface{}{"address": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...", nil)

	stopRunner()
	<-runnerDone

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server stopped", nil)
}

func init() {
	fmt.Println(`
   ___            _                      ___  _                _
  / _ )__ _____  (_)__  ___ ___ ___     / _ \(_)__ ____ ___   / /_
 / _  / // (_-< / / _ \/ -_|_-<(_-<    / // / / _ '/ -_|_-</ __/
/____/\_,_/___//_/_//_/\__/___/___/   /____/_/\_, /\__/___/\__/
                                             /___/
	`)
}
