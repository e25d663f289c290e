package handlers

import (
	"net/http"

	"estate_backend/internal/middleware"
	"estate_backend/internal/services"
	"estate_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type ConsultationHandler struct {
	*BaseHandler
	consultationService services.ConsultationService
}

func NewConsultationHandler(base *BaseHandler, consultationService services.ConsultationService) *ConsultationHandler {
	return &ConsultationHandler{
		BaseHandler:         base,
		consultationService: consultationService,
	}
}

func (h *ConsultationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	consultations := rg.Group("/consultations")
	{
		consultations.POST("", h.Auth.Optional(), h.CreateConsultation)

		admin := consultations.Group("")
		admin.Use(h.Auth.Required(), middleware.AdminMiddleware())
		{
			admin.GET("", h.ListConsultations)
			admin.GET("/:id", h.GetConsultation)
			admin.PUT("/:id", h.RespondConsultation)
			admin.DELETE("/:id", h.DeleteConsultation)
		}
	}
}

// CreateConsultation godoc
// @Summary Записаться на консультацию
// @Tags consultations
// @Accept json
// @Produce json
// @Param request body dto.CreateConsultationRequest true "Заявка на консультацию"
// @Success 201 {object} dto.ConsultationResponse
// @Router /consultations [post]
func (h *ConsultationHandler) CreateConsultation(c *gin.Context) {
	var req dto.CreateConsultationRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	consultation, err := h.consultationService.Create(c.Request.Context(), h.GetDB(c), h.Actor(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, consultation)
}

func (h *ConsultationHandler) ListConsultations(c *gin.Context) {
	var query dto.RequestListQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	result, err := h.consultationService.List(c.Request.Context(), h.GetDB(c), &query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *ConsultationHandler) GetConsultation(c *gin.Context) {
	consultation, err := h.consultationService.Get(c.Request.Context(), h.GetDB(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, consultation)
}

func (h *ConsultationHandler) RespondConsultation(c *gin.Context) {
	var req dto.RespondRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	consultation, err := h.consultationService.Respond(c.Request.Context(), h.GetDB(c), h.Actor(c), c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, consultation)
}

func (h *ConsultationHandler) DeleteConsultation(c *gin.Context) {
	if err := h.consultationService.Delete(c.Request.Context(), h.GetDB(c), c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Consultation deleted successfully."})
}
