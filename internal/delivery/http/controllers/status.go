package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/J0na555/ExitPrep/pkg/logger"
	"github.com/gin-gonic/gin"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type StatusHandler struct {
	log logger.Log
	db  Pinger
}

func NewStatusHandler(l logger.Log, db Pinger) *StatusHandler {
	return &StatusHandler{log: l, db: db}
}

func (h *StatusHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "Available"})
}

// Health reports whether the database answers within two seconds.
func (h *StatusHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.log.ErrorErr("health check failed", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "database": "unreachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "database": "ok"})
}
