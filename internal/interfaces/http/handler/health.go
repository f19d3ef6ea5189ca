package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/dealer/reporting/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// Pinger is a dependency whose reachability gates readiness
type Pinger interface {
	Ping(ctx context.Context) error
}

type namedCheck struct {
	name   string
	pinger Pinger
}

// HealthHandler serves liveness and readiness probes
type HealthHandler struct {
	BaseHandler
	version   string
	startTime time.Time
	timeout   time.Duration
	checks    []namedCheck
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(version string) *HealthHandler {
	return &HealthHandler{
		version:   version,
		startTime: time.Now(),
		timeout:   2 * time.Second,
	}
}

// AddCheck registers a readiness dependency
func (h *HealthHandler) AddCheck(name string, p Pinger) *HealthHandler {
	h.checks = append(h.checks, namedCheck{name: name, pinger: p})
	return h
}

// HealthResponse is the liveness payload
type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
}

// ReadyResponse is the readiness payload; Checks maps dependency to "ok" or its error
type ReadyResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Health reports that the process is serving.
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	h.Success(c, HealthResponse{
		Status:    "ok",
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	})
}

// Ready pings every registered dependency.
// GET /ready
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	resp := ReadyResponse{Status: "ok", Checks: make(map[string]string, len(h.checks))}
	for _, check := range h.checks {
		if err := check.pinger.Ping(ctx); err != nil {
			resp.Status = "unavailable"
			resp.Checks[check.name] = err.Error()
			continue
		}
		resp.Checks[check.name] = "ok"
	}

	if resp.Status != "ok" {
		out := dto.NewErrorResponseWithRequestID(dto.ErrCodeUnavailable, "Dependencies unavailable", getRequestID(c))
		out.Data = resp
		c.JSON(http.StatusServiceUnavailable, out)
		return
	}
	h.Success(c, resp)
}
