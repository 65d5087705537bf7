// ABOUTME: Response envelope helpers shared by the digest handlers
// ABOUTME: Every endpoint answers with a success or error envelope

package handlers

import (
	"encoding/json"
	"net/http"
	"time"
)

// envelope is the uniform response wrapper.
type envelope struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Count     *int        `json:"count,omitempty"`
	Error     string      `json:"error,omitempty"`
	Timestamp string      `json:"timestamp"`
}

func writeSuccess(w http.ResponseWriter, data interface{}, count *int) {
	writeJSON(w, http.StatusOK, envelope{
		Success:   true,
		Data:      data,
		Count:     count,
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{
		Success:   false,
		Error:     message,
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func intPtr(n int) *int {
	return &n
}
