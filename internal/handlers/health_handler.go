package handlers

import (
	"net/http"

	"estate_backend/internal/logger"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	*BaseHandler
}

func NewHealthHandler(base *BaseHandler) *HealthHandler {
	return &HealthHandler{BaseHandler: base}
}

func (h *HealthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", h.Health)
}

// Health godoc
// @Summary Проверка состояния
// @Tags platform
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	sqlDB, err := h.GetDB(c).DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		logger.CtxWithError(c.Request.Context(), "Health check failed", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": "down"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "up"})
}
