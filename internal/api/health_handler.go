package api

import (
	"context"
	"net/http"
	"time"

	"github.com/ignite/newsletter/internal/pkg/httputil"
)

// HealthStatus represents the overall health of the service.
type HealthStatus struct {
	Status string            `json:"status"` // "healthy" or "unhealthy"
	Checks map[string]string `json:"checks"`
}

// HealthCheck reports liveness plus a database ping.
//
//	GET /health
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{Status: "healthy", Checks: map[string]string{}}

	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			status.Status = "unhealthy"
			status.Checks["database"] = "down"
		} else {
			status.Checks["database"] = "up"
		}
	} else {
		status.Checks["database"] = "not_configured"
	}

	code := http.StatusOK
	if status.Status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	httputil.JSON(w, code, status)
}
