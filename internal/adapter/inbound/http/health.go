package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
)

// HealthResponse is the JSON response from the /health endpoint.
type HealthResponse struct {
	Status  string            `json:"status"`            // "healthy" or "unhealthy"
	Checks  map[string]string `json:"checks"`            // Component check results
	Version string            `json:"version,omitempty"` // Optional version info
}

// sizer is satisfied by the in-memory rate limiter and result cache; both
// expose a cheap Size accessor for liveness reporting.
type sizer interface {
	Size() int
}

// auditDepther is satisfied by an audit sink that buffers records through a
// channel, such as the async file-backed audit store.
type auditDepther interface {
	ChannelDepth() int
	ChannelCapacity() int
	DroppedRecords() int64
}

// HealthChecker verifies component health.
type HealthChecker struct {
	rateLimiter  sizer
	resultCache  sizer
	auditSink    auditDepther
	version      string
}

// NewHealthChecker creates a HealthChecker with optional components.
// Pass nil for components that aren't available.
func NewHealthChecker(rateLimiter sizer, resultCache sizer, auditSink auditDepther, version string) *HealthChecker {
	return &HealthChecker{
		rateLimiter: rateLimiter,
		resultCache: resultCache,
		auditSink:   auditSink,
		version:     version,
	}
}

// Check performs health checks on all components.
func (h *HealthChecker) Check() HealthResponse {
	checks := make(map[string]string)
	healthy := true

	if h.rateLimiter != nil {
		_ = h.rateLimiter.Size()
		checks["rate_limiter"] = "ok"
	} else {
		checks["rate_limiter"] = "not configured"
	}

	if h.resultCache != nil {
		_ = h.resultCache.Size()
		checks["result_cache"] = "ok"
	} else {
		checks["result_cache"] = "not configured"
	}

	if h.auditSink != nil {
		depth := h.auditSink.ChannelDepth()
		capacity := h.auditSink.ChannelCapacity()
		percentFull := 0
		if capacity > 0 {
			percentFull = depth * 100 / capacity
		}

		if percentFull > 90 {
			checks["audit"] = fmt.Sprintf("degraded: %d/%d (%d%%)", depth, capacity, percentFull)
			healthy = false
		} else {
			checks["audit"] = fmt.Sprintf("ok: %d/%d (%d%%)", depth, capacity, percentFull)
		}

		if drops := h.auditSink.DroppedRecords(); drops > 0 {
			checks["audit_drops"] = fmt.Sprintf("%d dropped", drops)
		}
	} else {
		checks["audit"] = "not configured"
	}

	checks["goroutines"] = fmt.Sprintf("%d", runtime.NumGoroutine())

	status := "healthy"
	if !healthy {
		status = "unhealthy"
	}

	return HealthResponse{
		Status:  status,
		Checks:  checks,
		Version: h.version,
	}
}

// Handler returns an HTTP handler for the health endpoint.
func (h *HealthChecker) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		health := h.Check()

		w.Header().Set("Content-Type", "application/json")
		if health.Status != "healthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		} else {
			w.WriteHeader(http.StatusOK)
		}

		_ = json.NewEncoder(w).Encode(health)
	})
}
