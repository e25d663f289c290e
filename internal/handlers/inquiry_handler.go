package handlers

import (
	"net/http"

	"estate_backend/internal/services"
	"estate_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type InquiryHandler struct {
	*BaseHandler
	inquiryService services.InquiryService
}

func NewInquiryHandler(base *BaseHandler, inquiryService services.InquiryService) *InquiryHandler {
	return &InquiryHandler{
		BaseHandler:    base,
		inquiryService: inquiryService,
	}
}

func (h *InquiryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	inquiries := rg.Group("/inquiries")
	{
		// гость может оставить заявку; вошедший пользователь привязывается к ней
		inquiries.POST("", h.Auth.Optional(), h.CreateInquiry)

		protected := inquiries.Group("")
		protected.Use(h.Auth.Required())
		{
			protected.GET("", h.ListInquiries)
			protected.GET("/:id", h.GetInquiry)
			protected.PUT("/:id", h.RespondInquiry)
			protected.DELETE("/:id", h.DeleteInquiry)
		}
	}
}

// CreateInquiry godoc
// @Summary Оставить заявку
// @Tags inquiries
// @Accept json
// @Produce json
// @Param request body dto.CreateInquiryRequest true "Заявка"
// @Success 201 {object} dto.InquiryResponse
// @Failure 422 {object} apperrors.AppError
// @Router /inquiries [post]
func (h *InquiryHandler) CreateInquiry(c *gin.Context) {
	var req dto.CreateInquiryRequest
	if !h.BindAndValidate_Body(c, &req) {
		return
	}

	inquiry, err := h.inquiryService.Create(c.Request.Context(), h.GetDB(c), h.Actor(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, inquiry)
}

func (h *InquiryHandler) ListInquiries(c *gin.Context) {
	var query dto.RequestListQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	result, err := h.inquiryService.List(c.Request.Context(), h.GetDB(c), h.Actor(c), &query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *InquiryHandler) GetInquiry(c *gin.Context) {
	inquiry, err := h.inquiryService.Get(c.Request.Context(), h.GetDB(c), h.Actor(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, inquiry)
}

// RespondInquiry godoc
// @Summary Ответить на заявку
// @Description Меняет статус и/или отправляет ответ клиенту по email
// @Tags inquiries
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID заявки"
// @Param request body dto.RespondRequest true "Статус и текст ответа"
// @Success 200 {object} dto.InquiryResponse
// @Failure 403 {object} apperrors.AppError
// @Router /inquiries/{id} [put]
func (h *InquiryHandler) RespondInquiry(c *gin.Context) {
	var req dto.RespondRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	inquiry, err := h.inquiryService.Respond(c.Request.Context(), h.GetDB(c), h.Actor(c), c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, inquiry)
}

func (h *InquiryHandler) DeleteInquiry(c *gin.Context) {
	if err := h.inquiryService.Delete(c.Request.Context(), h.GetDB(c), h.Actor(c), c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Inquiry deleted successfully."})
}
