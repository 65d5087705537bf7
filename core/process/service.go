// ABOUTME: LLM batch processor turns raw articles into summarized, labeled ones
// ABOUTME: Processes sequential bounded batches with retry and deterministic fallback

package process

import (
	"context"
	"encoding/json"
	"time"

	"business-digest-api/core/domain"
	"business-digest-api/core/interfaces"
)

const (
	// defaultBatchSize matches the upstream service's timeout budget.
	defaultBatchSize = 4

	// simplifiedRetryItems is how many leading batch items the simplified
	// retry prompt covers.
	simplifiedRetryItems = 3

	// batchTimeout bounds a single LLM call.
	batchTimeout = 120 * time.Second
)

// Service is the LLM batch processor.
type Service struct {
	deps      interfaces.Dependencies
	batchSize int
}

// NewService creates a processor. A batchSize of 0 selects the default.
func NewService(deps interfaces.Dependencies, batchSize int) *Service {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &Service{
		deps:      deps,
		batchSize: batchSize,
	}
}

// Process summarizes and classifies every item. Batches run sequentially
// to respect the upstream service's concurrency limits, and a failing
// batch degrades to fallback output instead of aborting the rest. The
// result always contains one article per input item.
func (s *Service) Process(ctx context.Context, items []domain.RawArticle) []domain.ProcessedArticle {
	if len(items) == 0 {
		return []domain.ProcessedArticle{}
	}

	processed := make([]domain.ProcessedArticle, 0, len(items))
	total := (len(items) + s.batchSize - 1) / s.batchSize

	for i := 0; i < len(items); i += s.batchSize {
		end := i + s.batchSize
		if end > len(items) {
			end = len(items)
		}
		batch := items[i:end]

		s.logInfo("processing batch", map[string]interface{}{
			"batch": i/s.batchSize + 1,
			"of":    total,
			"items": len(batch),
		})

		processed = append(processed, s.processBatch(ctx, batch)...)
	}

	return processed
}

// processBatch handles one batch end to end: call, decode, validate, and
// every failure path down to the deterministic fallback.
func (s *Service) processBatch(ctx context.Context, batch []domain.RawArticle) []domain.ProcessedArticle {
	if s.deps.LLM == nil {
		return fallbackBatch(batch)
	}

	callCtx, cancel := context.WithTimeout(ctx, batchTimeout)
	defer cancel()

	response, err := s.deps.LLM.Complete(callCtx, systemPrompt, buildUserPrompt(batch))
	if err != nil {
		s.logWarn("LLM call failed, using fallback", map[string]interface{}{
			"items": len(batch),
			"error": err.Error(),
		})
		return fallbackBatch(batch)
	}

	items, err := decodeResponse(response)
	if err != nil {
		s.logWarn("LLM response undecodable, retrying with simplified prompt", map[string]interface{}{
			"error": err.Error(),
		})
		return s.retrySimplified(ctx, batch)
	}

	return validateOutput(items, batch)
}

// retrySimplified reissues the request with a shorter prompt covering
// only the leading items. Items beyond that head still get fallback
// output so the batch's counts reconcile.
func (s *Service) retrySimplified(ctx context.Context, batch []domain.RawArticle) []domain.ProcessedArticle {
	head := batch
	if len(head) > simplifiedRetryItems {
		head = head[:simplifiedRetryItems]
	}

	callCtx, cancel := context.WithTimeout(ctx, batchTimeout)
	defer cancel()

	response, err := s.deps.LLM.Complete(callCtx, systemPrompt, buildSimplifiedPrompt(head))
	if err != nil {
		s.logWarn("simplified retry failed, using fallback", map[string]interface{}{
			"error": err.Error(),
		})
		return fallbackBatch(batch)
	}

	items, err := decodeResponse(response)
	if err != nil {
		s.logWarn("simplified retry undecodable, using fallback", map[string]interface{}{
			"error": err.Error(),
		})
		return fallbackBatch(batch)
	}

	processed := validateOutput(items, head)
	if len(batch) > len(head) {
		processed = append(processed, fallbackBatch(batch[len(head):])...)
	}
	return processed
}

// decodeResponse unwraps the envelope and decodes each article object.
func decodeResponse(response string) ([]llmArticle, error) {
	rawItems, err := decodeEnvelope([]byte(response))
	if err != nil {
		return nil, err
	}

	items := make([]llmArticle, 0, len(rawItems))
	for _, raw := range rawItems {
		var item llmArticle
		if err := json.Unmarshal(raw, &item); err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, nil
}

func (s *Service) logInfo(msg string, fields map[string]interface{}) {
	if s.deps.Logger != nil {
		s.deps.Logger.Info(msg, fields)
	}
}

func (s *Service) logWarn(msg string, fields map[string]interface{}) {
	if s.deps.Logger != nil {
		s.deps.Logger.Warn(msg, fields)
	}
}
