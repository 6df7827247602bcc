// Package health provides liveness and readiness probe endpoints.
//
// Registered checks run periodically on one background goroutine. A check
// flips to unhealthy only after three consecutive failures, so a single
// flaky probe does not bounce the service out of rotation, and recovers on
// the first success.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

const failureThreshold = 3

// CheckFunc probes one component, returning nil when it is healthy.
type CheckFunc func(ctx context.Context) error

type kind int

const (
	liveness kind = iota
	readiness
)

type check struct {
	name    string
	kind    kind
	timeout time.Duration
	fn      CheckFunc

	// fails is only touched by the runner goroutine.
	fails int
}

// Health runs probes and serves their aggregate state.
type Health struct {
	mu      sync.RWMutex
	checks  []*check
	state   map[string]error // name -> last error (nil when healthy)
	ready   bool
	cancel  context.CancelFunc
	stopped chan struct{}
}

// New creates a Health registry. The service starts not ready; call
// SetReady(true) once initialization completes.
func New() *Health {
	return &Health{state: make(map[string]error)}
}

// AddLivenessCheck registers a probe for /livez. Register before Start.
func (h *Health) AddLivenessCheck(name string, timeout time.Duration, fn CheckFunc) {
	h.add(&check{name: name, kind: liveness, timeout: timeout, fn: fn})
}

// AddReadinessCheck registers a probe for /readyz. Register before Start.
func (h *Health) AddReadinessCheck(name string, timeout time.Duration, fn CheckFunc) {
	h.add(&check{name: name, kind: readiness, timeout: timeout, fn: fn})
}

func (h *Health) add(c *check) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks = append(h.checks, c)
}

// Start launches the runner goroutine. All checks run once immediately, then
// every interval, until ctx is cancelled or Stop is called.
func (h *Health) Start(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)

	h.mu.Lock()
	h.cancel = cancel
	h.stopped = make(chan struct{})
	checks := make([]*check, len(h.checks))
	copy(checks, h.checks)
	stopped := h.stopped
	h.mu.Unlock()

	go func() {
		defer close(stopped)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		h.runAll(ctx, checks)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				h.runAll(ctx, checks)
			}
		}
	}()
}

func (h *Health) runAll(ctx context.Context, checks []*check) {
	for _, c := range checks {
		checkCtx, cancel := context.WithTimeout(ctx, c.timeout)
		err := c.fn(checkCtx)
		cancel()

		if err != nil {
			c.fails++
		} else {
			c.fails = 0
		}

		h.mu.Lock()
		if c.fails >= failureThreshold {
			h.state[c.name] = err
		} else {
			h.state[c.name] = nil
		}
		h.mu.Unlock()
	}
}

// Stop cancels the runner goroutine and waits for it to exit. Safe to call
// more than once.
func (h *Health) Stop() {
	h.mu.Lock()
	cancel, stopped := h.cancel, h.stopped
	h.cancel = nil
	h.mu.Unlock()

	if cancel != nil {
		cancel()
		<-stopped
	}
}

// SetReady flips the manual readiness gate. Set false during graceful
// shutdown to drain traffic before closing the listener.
func (h *Health) SetReady(ready bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ready = ready
}

// IsReady reports whether the manual gate is open and every readiness check
// is passing.
func (h *Health) IsReady() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if !h.ready {
		return false
	}
	for _, c := range h.checks {
		if c.kind == readiness && h.state[c.name] != nil {
			return false
		}
	}
	return true
}

type statusResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// LiveEndpoint serves /livez: 200 while liveness checks pass, 503 with the
// failing checks otherwise.
func (h *Health) LiveEndpoint(w http.ResponseWriter, _ *http.Request) {
	h.respond(w, h.failures(liveness))
}

// ReadyEndpoint serves /readyz: 200 while the service is marked ready and
// readiness checks pass, 503 with details otherwise.
func (h *Health) ReadyEndpoint(w http.ResponseWriter, _ *http.Request) {
	failures := h.failures(readiness)

	h.mu.RLock()
	ready := h.ready
	h.mu.RUnlock()
	if !ready {
		failures["_readiness"] = "service is not ready"
	}
	h.respond(w, failures)
}

func (h *Health) failures(k kind) map[string]string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make(map[string]string)
	for _, c := range h.checks {
		if c.kind != k {
			continue
		}
		if err := h.state[c.name]; err != nil {
			out[c.name] = err.Error()
		}
	}
	return out
}

func (h *Health) respond(w http.ResponseWriter, failures map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	if len(failures) > 0 {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(statusResponse{Status: "unhealthy", Checks: failures})
		return
	}
	_ = json.NewEncoder(w).Encode(statusResponse{Status: "ok"})
}
