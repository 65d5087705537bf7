// ABOUTME: HTTP handlers for the digest endpoints
// ABOUTME: Serves the latest digest flat, as cards, and grouped, plus status and refresh

package handlers

import (
	"context"
	"net/http"
	"os"

	"business-digest-api/core/domain"
	"business-digest-api/core/interfaces"
	"business-digest-api/core/pipeline"
)

// Refresher runs one synchronous pipeline invocation.
type Refresher interface {
	RunOnce(ctx context.Context) (domain.Digest, error)
}

// DigestHandler serves the digest endpoints from the files the pipeline
// maintains.
type DigestHandler struct {
	digestPath string
	statusPath string
	refresher  Refresher
	logger     interfaces.Logger
}

// NewDigestHandler creates a digest handler. refresher may be nil, in
// which case /api/refresh reports the feature unavailable.
func NewDigestHandler(digestPath, statusPath string, refresher Refresher, logger interfaces.Logger) *DigestHandler {
	return &DigestHandler{
		digestPath: digestPath,
		statusPath: statusPath,
		refresher:  refresher,
		logger:     logger,
	}
}

// RegisterRoutes attaches all digest endpoints to mux.
func (h *DigestHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", h.Health)
	mux.HandleFunc("GET /api/news", h.News)
	mux.HandleFunc("GET /api/cards", h.Cards)
	mux.HandleFunc("GET /api/news/categorized", h.Categorized)
	mux.HandleFunc("GET /api/status", h.Status)
	mux.HandleFunc("POST /api/refresh", h.Refresh)
	mux.HandleFunc("GET /api/refresh", h.Refresh)
}

// Health answers the liveness probe.
func (h *DigestHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, map[string]string{"status": "ok"}, nil)
}

// News returns the digest's articles as a flat list in section order.
func (h *DigestHandler) News(w http.ResponseWriter, r *http.Request) {
	digest, ok := h.loadDigest(w)
	if !ok {
		return
	}

	articles := flatten(digest)
	writeSuccess(w, articles, intPtr(len(articles)))
}

// cardCategory is one category block in the cards response.
type cardCategory struct {
	Name     string                    `json:"name"`
	Color    string                    `json:"color"`
	Articles []domain.ProcessedArticle `json:"articles"`
}

// cardStats summarizes the digest for the cards response.
type cardStats struct {
	TotalStories    int    `json:"total_stories"`
	TotalCategories int    `json:"total_categories"`
	LastUpdated     string `json:"last_updated"`
}

// Cards returns categories with display colors plus summary stats.
func (h *DigestHandler) Cards(w http.ResponseWriter, r *http.Request) {
	digest, ok := h.loadDigest(w)
	if !ok {
		return
	}

	categories := []cardCategory{}
	for _, label := range domain.LabelOrder {
		articles := digest.Categories[domain.SectionName(label)]
		if len(articles) == 0 {
			continue
		}
		categories = append(categories, cardCategory{
			Name:     domain.CategoryDisplayName(label),
			Color:    domain.CategoryColor(label),
			Articles: articles,
		})
	}

	data := map[string]interface{}{
		"categories": categories,
		"stats": cardStats{
			TotalStories:    digest.TotalItems,
			TotalCategories: len(categories),
			LastUpdated:     digest.LastUpdated,
		},
	}
	writeSuccess(w, data, intPtr(digest.TotalItems))
}

// Categorized returns the digest exactly as persisted.
func (h *DigestHandler) Categorized(w http.ResponseWriter, r *http.Request) {
	digest, ok := h.loadDigest(w)
	if !ok {
		return
	}
	writeSuccess(w, digest, intPtr(digest.TotalItems))
}

// Status returns the background runner's status record.
func (h *DigestHandler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := pipeline.LoadStatus(h.statusPath)
	if err != nil {
		if os.IsNotExist(err) {
			writeSuccess(w, domain.RunStatus{Status: "unknown", Message: "Service has not reported status yet"}, nil)
			return
		}
		h.logError("failed to read status file", err)
		writeError(w, http.StatusInternalServerError, "Could not read service status")
		return
	}
	writeSuccess(w, status, nil)
}

// Refresh runs the pipeline synchronously and returns the fresh digest.
func (h *DigestHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if h.refresher == nil {
		writeError(w, http.StatusServiceUnavailable, "Refresh is not available")
		return
	}

	digest, err := h.refresher.RunOnce(r.Context())
	if err != nil {
		h.logError("refresh failed", err)
		writeError(w, http.StatusInternalServerError, "Refresh failed")
		return
	}
	writeSuccess(w, digest, intPtr(digest.TotalItems))
}

// loadDigest reads the persisted digest, writing the error response on
// failure.
func (h *DigestHandler) loadDigest(w http.ResponseWriter) (domain.Digest, bool) {
	digest, err := pipeline.LoadDigest(h.digestPath)
	if err != nil {
		if os.IsNotExist(err) {
			writeError(w, http.StatusNotFound, "No digest available yet")
			return domain.Digest{}, false
		}
		h.logError("failed to read digest file", err)
		writeError(w, http.StatusInternalServerError, "Could not read digest")
		return domain.Digest{}, false
	}
	return digest, true
}

// flatten returns the digest's articles in fixed section order.
func flatten(digest domain.Digest) []domain.ProcessedArticle {
	articles := []domain.ProcessedArticle{}
	for _, label := range domain.LabelOrder {
		articles = append(articles, digest.Categories[domain.SectionName(label)]...)
	}
	return articles
}

func (h *DigestHandler) logError(msg string, err error) {
	if h.logger != nil {
		h.logger.Error(msg, map[string]interface{}{"error": err.Error()})
	}
}
