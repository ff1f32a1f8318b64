package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"direct_messenger/internal/config"
)

type HealthHandler struct {
	cfg       *config.Config
	startedAt time.Time
}

func NewHealthHandler(cfg *config.Config) *HealthHandler {
	return &HealthHandler{
		cfg:       cfg,
		startedAt: time.Now(),
	}
}

func (h *HealthHandler) Check(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"environment": h.cfg.Environment,
		"uptime":      time.Since(h.startedAt).String(),
	})
}
