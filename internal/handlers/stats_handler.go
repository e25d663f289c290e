package handlers

import (
	"net/http"

	"estate_backend/internal/middleware"
	"estate_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// StatsHandler - сводка для админ-панели
type StatsHandler struct {
	*BaseHandler
	statsService services.StatsService
}

func NewStatsHandler(base *BaseHandler, statsService services.StatsService) *StatsHandler {
	return &StatsHandler{
		BaseHandler:  base,
		statsService: statsService,
	}
}

func (h *StatsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/admin/stats", h.Auth.Required(), middleware.AdminMiddleware(), h.GetDashboard)
}

// GetDashboard godoc
// @Summary Статистика
// @Description Объекты по статусам, пользователи по ролям, заявки, консультации, статьи
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} repositories.DashboardStats
// @Router /admin/stats [get]
func (h *StatsHandler) GetDashboard(c *gin.Context) {
	stats, err := h.statsService.Dashboard(c.Request.Context(), h.GetDB(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
