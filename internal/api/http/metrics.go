package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/makerhub/innovation-wizard/internal/ai"
)

// MetricsHandler reports the call counters of the upstream AI client.
type MetricsHandler struct {
	ai *ai.Metrics
}

func NewMetricsHandler(m *ai.Metrics) *MetricsHandler {
	return &MetricsHandler{ai: m}
}

func (h *MetricsHandler) Upstream(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "ai": h.ai.Snapshot()})
}

func (h *MetricsHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/metrics/upstream", h.Upstream)
}
