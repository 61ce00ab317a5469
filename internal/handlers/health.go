package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// LimiterStats reports the rate limiter's configured limit and how many
// identities it tracks.
type LimiterStats interface {
	Limit() int
	Len() int
}

// HealthHandler provides liveness and readiness endpoints.
type HealthHandler struct {
	db      *gorm.DB
	limiter LimiterStats
}

func NewHealthHandler(db *gorm.DB, limiter LimiterStats) *HealthHandler {
	return &HealthHandler{db: db, limiter: limiter}
}

// Health reports that the process is serving.
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready reports whether dependencies are usable.
// GET /ready
func (h *HealthHandler) Ready(c *gin.Context) {
	status, code := "ready", http.StatusOK

	dbStatus := "ok"
	if err := h.pingDB(c.Request.Context()); err != nil {
		dbStatus = "error: " + err.Error()
		status, code = "unavailable", http.StatusServiceUnavailable
	}

	components := gin.H{"database": dbStatus}
	if h.limiter != nil {
		components["rate_limit_keys"] = h.limiter.Len()
		components["rate_limit_per_window"] = h.limiter.Limit()
	}

	c.JSON(code, gin.H{
		"status":     status,
		"components": components,
	})
}

func (h *HealthHandler) pingDB(ctx context.Context) error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}
