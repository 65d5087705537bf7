// ABOUTME: Tests for the digest HTTP handlers
// ABOUTME: Exercises every endpoint through httptest with digest files on disk

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"business-digest-api/core/domain"
)

type mockRefresher struct {
	digest domain.Digest
	err    error
	calls  int
}

func (m *mockRefresher) RunOnce(ctx context.Context) (domain.Digest, error) {
	m.calls++
	return m.digest, m.err
}

func sampleDigest() domain.Digest {
	article := func(link, label string) domain.ProcessedArticle {
		return domain.ProcessedArticle{
			Title:    "Title " + link,
			Link:     link,
			Source:   "Test",
			OneLiner: "Summary.",
			Labels:   []string{label},
			AutoTags: domain.EmptyAutoTags(),
		}
	}
	return domain.Digest{
		Date:        "2026-09-01",
		LastUpdated: time.Now().Format(time.RFC3339),
		Categories: map[string][]domain.ProcessedArticle{
			domain.SectionName(domain.LabelMarkets): {article("m1", domain.LabelMarkets), article("m2", domain.LabelMarkets)},
			domain.SectionName(domain.LabelPolicy):  {article("p1", domain.LabelPolicy)},
		},
		TotalItems: 3,
	}
}

func writeDigestFile(t *testing.T, d domain.Digest) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "digest.json")
	data, err := json.Marshal(d)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestMux(t *testing.T, digestPath, statusPath string, refresher Refresher) *http.ServeMux {
	t.Helper()
	mux := http.NewServeMux()
	NewDigestHandler(digestPath, statusPath, refresher, nil).RegisterRoutes(mux)
	return mux
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v\n%s", err, rec.Body.String())
	}
	return body
}

func TestHealth(t *testing.T) {
	mux := newTestMux(t, "", "", nil)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/api/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeEnvelope(t, rec)
	if body["success"] != true {
		t.Errorf("expected success envelope: %v", body)
	}
	if body["timestamp"] == nil {
		t.Error("envelope missing timestamp")
	}
}

func TestNews_FlatListInSectionOrder(t *testing.T) {
	path := writeDigestFile(t, sampleDigest())
	mux := newTestMux(t, path, "", nil)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/api/news", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeEnvelope(t, rec)
	if body["count"] != float64(3) {
		t.Errorf("expected count 3, got %v", body["count"])
	}

	articles := body["data"].([]interface{})
	if len(articles) != 3 {
		t.Fatalf("expected 3 articles, got %d", len(articles))
	}
	// Policy section precedes markets in the fixed order.
	first := articles[0].(map[string]interface{})
	if first["link"] != "p1" {
		t.Errorf("expected policy article first, got %v", first["link"])
	}
}

func TestNews_NoDigestYet(t *testing.T) {
	mux := newTestMux(t, filepath.Join(t.TempDir(), "absent.json"), "", nil)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/api/news", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	body := decodeEnvelope(t, rec)
	if body["success"] != false || body["error"] == nil {
		t.Errorf("expected error envelope: %v", body)
	}
}

func TestCards_CategoriesAndStats(t *testing.T) {
	path := writeDigestFile(t, sampleDigest())
	mux := newTestMux(t, path, "", nil)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/api/cards", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeEnvelope(t, rec)
	data := body["data"].(map[string]interface{})

	categories := data["categories"].([]interface{})
	if len(categories) != 2 {
		t.Fatalf("expected 2 non-empty categories, got %d", len(categories))
	}
	first := categories[0].(map[string]interface{})
	if first["name"] != "Policy" {
		t.Errorf("expected Policy category first, got %v", first["name"])
	}
	if first["color"] != "#3B82F6" {
		t.Errorf("unexpected policy color %v", first["color"])
	}

	stats := data["stats"].(map[string]interface{})
	if stats["total_stories"] != float64(3) {
		t.Errorf("expected 3 total stories, got %v", stats["total_stories"])
	}
	if stats["total_categories"] != float64(2) {
		t.Errorf("expected 2 categories, got %v", stats["total_categories"])
	}
}

func TestCategorized_ReturnsDigest(t *testing.T) {
	path := writeDigestFile(t, sampleDigest())
	mux := newTestMux(t, path, "", nil)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/api/news/categorized", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeEnvelope(t, rec)
	data := body["data"].(map[string]interface{})
	if data["total_items"] != float64(3) {
		t.Errorf("unexpected digest payload: %v", data)
	}
	if _, ok := data["categories"].(map[string]interface{}); !ok {
		t.Errorf("digest payload missing categories: %v", data)
	}
}

func TestStatus_UnknownBeforeFirstRun(t *testing.T) {
	mux := newTestMux(t, "", filepath.Join(t.TempDir(), "absent.json"), nil)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/api/status", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeEnvelope(t, rec)
	data := body["data"].(map[string]interface{})
	if data["status"] != "unknown" {
		t.Errorf("expected unknown status, got %v", data["status"])
	}
}

func TestStatus_ReadsStatusFile(t *testing.T) {
	statusPath := filepath.Join(t.TempDir(), "service_status.json")
	record := domain.RunStatus{Status: domain.RunStatusIdle, Message: "Digest updated with 5 items"}
	data, _ := json.Marshal(record)
	if err := os.WriteFile(statusPath, data, 0644); err != nil {
		t.Fatal(err)
	}
	mux := newTestMux(t, "", statusPath, nil)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/api/status", nil))

	body := decodeEnvelope(t, rec)
	got := body["data"].(map[string]interface{})
	if got["status"] != domain.RunStatusIdle {
		t.Errorf("expected idle status, got %v", got["status"])
	}
}

func TestRefresh_RunsPipeline(t *testing.T) {
	refresher := &mockRefresher{digest: sampleDigest()}
	mux := newTestMux(t, "", "", refresher)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("POST", "/api/refresh", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if refresher.calls != 1 {
		t.Errorf("expected 1 refresh call, got %d", refresher.calls)
	}
	body := decodeEnvelope(t, rec)
	if body["count"] != float64(3) {
		t.Errorf("expected count 3, got %v", body["count"])
	}
}

func TestRefresh_FailureReturns500(t *testing.T) {
	refresher := &mockRefresher{err: errors.New("store offline")}
	mux := newTestMux(t, "", "", refresher)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("POST", "/api/refresh", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	body := decodeEnvelope(t, rec)
	if body["success"] != false {
		t.Errorf("expected error envelope: %v", body)
	}
}

func TestRefresh_UnavailableWithoutRefresher(t *testing.T) {
	mux := newTestMux(t, "", "", nil)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/api/refresh", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}
