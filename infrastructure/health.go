// infrastructure/health.go
package infrastructure

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthCheck is one named dependency probe.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type HealthHandler struct {
	Checks  []HealthCheck
	Timeout time.Duration
}

func (h *HealthHandler) Handle(c *gin.Context) {
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
	defer cancel()

	body := gin.H{"status": "UP"}
	code := http.StatusOK
	for _, hc := range h.Checks {
		status := "connected"
		if err := hc.Check(ctx); err != nil {
			status = "error: " + err.Error()
			code = http.StatusInternalServerError
			body["status"] = "DOWN"
		}
		body[hc.Name] = status
	}
	c.JSON(code, body)
}
