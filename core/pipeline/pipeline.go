// ABOUTME: Pipeline orchestrator wires fetch, dedup, cache, LLM, and digest stages
// ABOUTME: One Run produces the persisted digest, markdown, and audit artifacts

package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"business-digest-api/core/dedup"
	"business-digest-api/core/digest"
	"business-digest-api/core/domain"
	coreerrors "business-digest-api/core/errors"
	"business-digest-api/core/fetch"
	"business-digest-api/core/interfaces"
	"business-digest-api/core/process"
)

const (
	emptyDigestMessage   = "No articles available - all feeds unavailable"
	emptyMarkdownMessage = "No items available today. All RSS feeds were unavailable."
)

// Config holds a pipeline's sources, limits, and artifact paths.
type Config struct {
	Sources   []domain.FeedSource
	MaxItems  int
	BatchSize int
	Window    time.Duration

	// Artifact paths. Empty paths disable the corresponding write,
	// which tests use to exercise stages in isolation.
	DigestPath   string
	MarkdownPath string
	AuditDir     string
}

// Pipeline runs the full aggregation flow. A single Pipeline owns its
// store and artifact files exclusively for the duration of each run.
type Pipeline struct {
	deps      interfaces.Dependencies
	cfg       Config
	fetcher   *fetch.Service
	processor *process.Service
	now       func() time.Time
}

// New creates a pipeline from its dependencies and configuration.
func New(deps interfaces.Dependencies, cfg Config) *Pipeline {
	if cfg.MaxItems <= 0 {
		cfg.MaxItems = 50
	}
	return &Pipeline{
		deps:      deps,
		cfg:       cfg,
		fetcher:   fetch.NewService(deps, cfg.Window),
		processor: process.NewService(deps, cfg.BatchSize),
		now:       time.Now,
	}
}

// Run executes one pipeline invocation and returns the digest it
// persisted. Fetch and LLM failures degrade gracefully; only artifact
// or cache persistence failures surface as errors.
func (p *Pipeline) Run(ctx context.Context) (domain.Digest, error) {
	now := p.now()

	rawItems, feedSummary, err := p.fetcher.FetchAll(ctx, p.cfg.Sources)
	if err != nil {
		return domain.Digest{}, err
	}
	p.logInfo("fetch complete", map[string]interface{}{
		"items": len(rawItems),
		"feeds": len(p.cfg.Sources),
	})

	if len(rawItems) == 0 {
		// All feeds down: publish explicit empty artifacts rather
		// than erroring, so consumers always find well-formed output.
		p.logWarn("no items fetched, writing empty digest", nil)
		empty := digest.BuildEmpty(emptyDigestMessage, now)
		if err := p.writeArtifacts(empty, digest.RenderEmptyMarkdown(emptyMarkdownMessage, now), nil, nil, now); err != nil {
			return domain.Digest{}, err
		}
		return empty, nil
	}

	if len(rawItems) > p.cfg.MaxItems {
		rawItems = rawItems[:p.cfg.MaxItems]
	}

	dedupedItems := dedup.ByLink(rawItems)
	p.logInfo("deduplication complete", map[string]interface{}{
		"before": len(rawItems),
		"after":  len(dedupedItems),
	})

	cachedItems, newItems, err := p.splitByCache(ctx, dedupedItems)
	if err != nil {
		return domain.Digest{}, err
	}

	processedItems := append(cachedItems, newItems...)
	p.logInfo("processing complete", map[string]interface{}{
		"cached": len(cachedItems),
		"new":    len(newItems),
		"total":  len(processedItems),
	})

	var d domain.Digest
	var markdown string
	if len(processedItems) == 0 {
		d = digest.BuildEmpty("No articles available", now)
		markdown = digest.RenderEmptyMarkdown("No items available today.", now)
	} else {
		d = digest.Build(processedItems, feedSummary, now)
		markdown = digest.RenderMarkdown(digest.GroupByLabel(processedItems), now)
	}

	if err := p.writeArtifacts(d, markdown, rawItems, processedItems, now); err != nil {
		return domain.Digest{}, err
	}

	return d, nil
}

// splitByCache partitions the working set into already-processed articles
// from the store and freshly processed ones, updating the store with the
// latter.
func (p *Pipeline) splitByCache(ctx context.Context, items []domain.RawArticle) (cached, fresh []domain.ProcessedArticle, err error) {
	store := p.deps.Store
	if store == nil {
		// No store configured: process everything.
		return []domain.ProcessedArticle{}, p.processor.Process(ctx, items), nil
	}

	removed, err := store.CleanExpired(ctx)
	if err != nil {
		return nil, nil, coreerrors.WrapError(err, "cache cleanup failed")
	}
	if removed > 0 {
		p.logInfo("expired cache entries removed", map[string]interface{}{"count": removed})
	}

	cached, err = store.Lookup(ctx, items)
	if err != nil {
		return nil, nil, coreerrors.WrapError(err, "cache lookup failed")
	}

	uncached, err := store.FilterUncached(ctx, items)
	if err != nil {
		return nil, nil, coreerrors.WrapError(err, "cache filter failed")
	}

	p.logInfo("cache stats", map[string]interface{}{
		"cached":   len(cached),
		"uncached": len(uncached),
	})

	if len(uncached) == 0 {
		return cached, []domain.ProcessedArticle{}, nil
	}

	fresh = p.processor.Process(ctx, uncached)

	if err := store.Update(ctx, uncached, fresh); err != nil {
		return nil, nil, coreerrors.WrapError(err, "cache update failed")
	}

	return cached, fresh, nil
}

// writeArtifacts persists the digest JSON, markdown rendering, and audit
// file. Any write failure is a hard failure for the run.
func (p *Pipeline) writeArtifacts(d domain.Digest, markdown string, rawItems []domain.RawArticle, processed []domain.ProcessedArticle, now time.Time) error {
	if p.cfg.DigestPath != "" {
		if err := writeJSON(p.cfg.DigestPath, d); err != nil {
			return err
		}
		p.logInfo("digest saved", map[string]interface{}{"path": p.cfg.DigestPath, "items": d.TotalItems})
	}

	if p.cfg.MarkdownPath != "" {
		if err := os.WriteFile(p.cfg.MarkdownPath, []byte(markdown), 0644); err != nil {
			return &coreerrors.PersistenceError{Path: p.cfg.MarkdownPath, Err: err}
		}
	}

	if p.cfg.AuditDir != "" {
		audit := digest.BuildAudit(rawItems, processed, now)
		path := filepath.Join(p.cfg.AuditDir, fmt.Sprintf("run_%s.json", now.Format("2006-01-02")))
		if err := writeJSON(path, audit); err != nil {
			return err
		}
		p.logInfo("audit saved", map[string]interface{}{"path": path})
	}

	return nil
}

// writeJSON marshals v and writes it to path.
func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return &coreerrors.PersistenceError{Path: path, Err: err}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return &coreerrors.PersistenceError{Path: path, Err: err}
	}
	return nil
}

// LoadDigest reads a previously persisted digest from disk.
func LoadDigest(path string) (domain.Digest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Digest{}, err
	}
	var d domain.Digest
	if err := json.Unmarshal(data, &d); err != nil {
		return domain.Digest{}, err
	}
	return d, nil
}

func (p *Pipeline) logInfo(msg string, fields map[string]interface{}) {
	if p.deps.Logger != nil {
		p.deps.Logger.Info(msg, fields)
	}
}

func (p *Pipeline) logWarn(msg string, fields map[string]interface{}) {
	if p.deps.Logger != nil {
		p.deps.Logger.Warn(msg, fields)
	}
}
