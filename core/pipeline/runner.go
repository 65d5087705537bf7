// ABOUTME: Runner executes the pipeline on a fixed interval with panic isolation
// ABOUTME: Publishes a service status file so operators can observe the loop

package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"business-digest-api/core/domain"
	"business-digest-api/core/interfaces"
)

// Runner drives repeated pipeline runs. A failed or panicking run is
// logged and reported through the status file; the loop keeps going.
type Runner struct {
	pipeline   *Pipeline
	logger     interfaces.Logger
	interval   time.Duration
	statusPath string
	now        func() time.Time

	// Serializes runs: the ticker loop and on-demand refreshes share one
	// store and one set of artifact files, so only one run may be active.
	runMu sync.Mutex
}

// NewRunner creates a runner that executes p every interval. statusPath
// may be empty to disable status reporting.
func NewRunner(p *Pipeline, logger interfaces.Logger, interval time.Duration, statusPath string) *Runner {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Runner{
		pipeline:   p,
		logger:     logger,
		interval:   interval,
		statusPath: statusPath,
		now:        time.Now,
	}
}

// Run blocks, executing the pipeline immediately and then on every tick
// until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) {
	r.writeStatus(domain.RunStatusStarting, "Service starting")

	r.runOnce(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.writeStatus(domain.RunStatusStopped, "Service stopped")
			r.logInfo("runner stopped", nil)
			return
		case <-ticker.C:
			r.runOnce(ctx)
		}
	}
}

// RunOnce executes a single supervised pipeline run, for callers that
// trigger refreshes on demand.
func (r *Runner) RunOnce(ctx context.Context) (domain.Digest, error) {
	r.runMu.Lock()
	defer r.runMu.Unlock()

	r.writeStatus(domain.RunStatusProcessing, "Refreshing digest")
	d, err := r.pipeline.Run(ctx)
	if err != nil {
		r.writeStatus(domain.RunStatusError, err.Error())
		return domain.Digest{}, err
	}
	r.writeStatus(domain.RunStatusIdle, fmt.Sprintf("Digest updated with %d items", d.TotalItems))
	return d, nil
}

func (r *Runner) runOnce(ctx context.Context) {
	defer func() {
		if rec := recover(); rec != nil {
			msg := fmt.Sprintf("pipeline run panicked: %v", rec)
			r.logError(msg, nil)
			r.writeStatus(domain.RunStatusError, msg)
		}
	}()

	start := r.now()
	d, err := r.RunOnce(ctx)
	if err != nil {
		r.logError("pipeline run failed", map[string]interface{}{"error": err.Error()})
		return
	}
	r.logInfo("pipeline run complete", map[string]interface{}{
		"items":    d.TotalItems,
		"duration": r.now().Sub(start).String(),
	})
}

func (r *Runner) writeStatus(status, message string) {
	if r.statusPath == "" {
		return
	}
	now := r.now()
	s := domain.RunStatus{
		Status:     status,
		Message:    message,
		LastUpdate: now.Format(time.RFC3339),
		NextUpdate: now.Add(r.interval).Format(time.RFC3339),
	}
	if err := writeJSON(r.statusPath, s); err != nil {
		r.logError("failed to write status file", map[string]interface{}{"error": err.Error()})
	}
}

// LoadStatus reads the runner's status file.
func LoadStatus(path string) (domain.RunStatus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.RunStatus{}, err
	}
	var s domain.RunStatus
	if err := json.Unmarshal(data, &s); err != nil {
		return domain.RunStatus{}, err
	}
	return s, nil
}

func (r *Runner) logInfo(msg string, fields map[string]interface{}) {
	if r.logger != nil {
		r.logger.Info(msg, fields)
	}
}

func (r *Runner) logError(msg string, fields map[string]interface{}) {
	if r.logger != nil {
		r.logger.Error(msg, fields)
	}
}
