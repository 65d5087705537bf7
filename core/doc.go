// Package core contains the business logic for the business digest
// service. It is designed to be framework-agnostic and can be used
// independently of any web framework or infrastructure concerns.
//
// The core package is organized into several sub-packages:
//
// - domain: Pure domain models (FeedSource, RawArticle, ProcessedArticle, Digest)
// - fetch: Concurrent feed fetching with recency filtering and sanitization
// - dedup: Link-based deduplication of fetched items
// - process: LLM batch summarization with validation and fallback
// - digest: Digest assembly and markdown rendering
// - pipeline: Run orchestration and the background runner
// - errors: Custom error types for better error handling
// - interfaces: Contracts for external dependencies (store, HTTP, LLM, logger)
//
// # Design Principles
//
// The core package follows clean architecture principles:
// - No external framework dependencies
// - All external dependencies are injected via interfaces
// - Business logic is testable in isolation
// - Domain models are free from persistence concerns
//
// # Usage Example
//
//	import (
//	    "business-digest-api/core/interfaces"
//	    "business-digest-api/core/pipeline"
//	)
//
//	// Create dependencies
//	deps := interfaces.Dependencies{
//	    Store:      myStore,      // implements interfaces.ArticleStore
//	    HTTPClient: myHTTPClient, // implements interfaces.HTTPClient
//	    LLM:        myLLM,        // implements interfaces.LLMClient
//	    Logger:     myLogger,     // implements interfaces.Logger
//	}
//
//	// Run the pipeline once
//	p := pipeline.New(deps, pipeline.Config{Sources: sources})
//	digest, err := p.Run(ctx)
package core
