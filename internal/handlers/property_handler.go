package handlers

import (
	"net/http"

	"estate_backend/internal/services"
	"estate_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type PropertyHandler struct {
	*BaseHandler
	propertyService services.PropertyService
}

func NewPropertyHandler(base *BaseHandler, propertyService services.PropertyService) *PropertyHandler {
	return &PropertyHandler{
		BaseHandler:     base,
		propertyService: propertyService,
	}
}

func (h *PropertyHandler) RegisterRoutes(rg *gin.RouterGroup) {
	properties := rg.Group("/properties")
	{
		// Публичные
		properties.GET("", h.ListProperties)
		properties.GET("/featured", h.ListFeatured)
		properties.GET("/smart-home", h.ListSmartHome)
		properties.GET("/:id", h.Auth.Optional(), h.GetProperty)

		// Требуют входа; права проверяет сервис
		protected := properties.Group("")
		protected.Use(h.Auth.Required())
		{
			protected.GET("/my", h.ListMyProperties)
			protected.GET("/pending", h.ListPending)
			protected.POST("", h.CreateProperty)
			protected.PUT("/:id", h.UpdateProperty)
			protected.POST("/:id", h.UpdateProperty) // multipart из форм, где PUT недоступен
			protected.DELETE("/:id", h.DeleteProperty)
			protected.POST("/:id/approve", h.ApproveProperty)
			protected.POST("/:id/reject", h.RejectProperty)
		}
	}
}

// ListProperties godoc
// @Summary Опубликованные объекты
// @Description Только approved; фильтры по городу, типу, цене, спальням
// @Tags properties
// @Produce json
// @Param city query string false "Город"
// @Param type query string false "Тип"
// @Param min_price query number false "Мин. цена"
// @Param max_price query number false "Макс. цена"
// @Param bedrooms query int false "Мин. спален"
// @Param search query string false "Поиск"
// @Param page query int false "Страница"
// @Param per_page query int false "На странице"
// @Success 200 {object} dto.ListResponse[dto.PropertyResponse]
// @Router /properties [get]
func (h *PropertyHandler) ListProperties(c *gin.Context) {
	h.listPublic(c, nil)
}

func (h *PropertyHandler) ListFeatured(c *gin.Context) {
	h.listPublic(c, func(q *dto.PropertyQuery) {
		featured := true
		q.IsFeatured = &featured
	})
}

func (h *PropertyHandler) ListSmartHome(c *gin.Context) {
	h.listPublic(c, func(q *dto.PropertyQuery) {
		smart := true
		q.IsSmartHome = &smart
	})
}

func (h *PropertyHandler) listPublic(c *gin.Context, scope func(q *dto.PropertyQuery)) {
	var query dto.PropertyQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}
	if scope != nil {
		scope(&query)
	}

	result, err := h.propertyService.ListPublic(c.Request.Context(), h.GetDB(c), &query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListMyProperties godoc
// @Summary Мои объекты
// @Description Агент видит свои объекты в любом статусе, администратор - все
// @Tags properties
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending, approved или rejected"
// @Success 200 {object} dto.ListResponse[dto.PropertyResponse]
// @Router /properties/my [get]
func (h *PropertyHandler) ListMyProperties(c *gin.Context) {
	var query dto.PropertyQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	result, err := h.propertyService.ListMine(c.Request.Context(), h.GetDB(c), h.Actor(c), &query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *PropertyHandler) ListPending(c *gin.Context) {
	var query dto.PropertyQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	result, err := h.propertyService.ListPending(c.Request.Context(), h.GetDB(c), h.Actor(c), &query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetProperty godoc
// @Summary Объект по id или slug
// @Description Неопубликованный объект виден только владельцу и администратору
// @Tags properties
// @Produce json
// @Param id path string true "ID или slug"
// @Success 200 {object} dto.PropertyResponse
// @Failure 403 {object} apperrors.AppError
// @Failure 404 {object} apperrors.AppError
// @Router /properties/{id} [get]
func (h *PropertyHandler) GetProperty(c *gin.Context) {
	property, err := h.propertyService.Get(c.Request.Context(), h.GetDB(c), h.Actor(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, property)
}

// CreateProperty godoc
// @Summary Подать объект
// @Description Объект агента уходит на модерацию (pending), объект администратора публикуется сразу
// @Tags properties
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param request body dto.PropertyRequest true "Данные объекта; файлы - в images[]"
// @Success 201 {object} dto.PropertyResponse
// @Failure 422 {object} apperrors.AppError
// @Router /properties [post]
func (h *PropertyHandler) CreateProperty(c *gin.Context) {
	req, ok := h.bindPropertyRequest(c)
	if !ok {
		return
	}

	property, err := h.propertyService.Create(c.Request.Context(), h.GetDB(c), h.Actor(c), req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, property)
}

func (h *PropertyHandler) UpdateProperty(c *gin.Context) {
	req, ok := h.bindPropertyRequest(c)
	if !ok {
		return
	}

	property, err := h.propertyService.Update(c.Request.Context(), h.GetDB(c), h.Actor(c), c.Param("id"), req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, property)
}

func (h *PropertyHandler) DeleteProperty(c *gin.Context) {
	if err := h.propertyService.Delete(c.Request.Context(), h.GetDB(c), h.Actor(c), c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Property deleted successfully."})
}

// ApproveProperty godoc
// @Summary Одобрить объект
// @Description pending -> approved. Повторное одобрение ничего не меняет, одобрение отклоненного - 409
// @Tags properties
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID объекта"
// @Success 200 {object} dto.PropertyResponse
// @Failure 403 {object} apperrors.AppError
// @Failure 409 {object} apperrors.AppError
// @Router /properties/{id}/approve [post]
func (h *PropertyHandler) ApproveProperty(c *gin.Context) {
	property, err := h.propertyService.Approve(c.Request.Context(), h.GetDB(c), h.Actor(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, property)
}

// RejectProperty godoc
// @Summary Отклонить объект
// @Tags properties
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID объекта"
// @Success 200 {object} dto.PropertyResponse
// @Failure 403 {object} apperrors.AppError
// @Failure 409 {object} apperrors.AppError
// @Router /properties/{id}/reject [post]
func (h *PropertyHandler) RejectProperty(c *gin.Context) {
	property, err := h.propertyService.Reject(c.Request.Context(), h.GetDB(c), h.Actor(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, property)
}

func (h *PropertyHandler) bindPropertyRequest(c *gin.Context) (*dto.PropertyRequest, bool) {
	var req dto.PropertyRequest
	if !h.BindAndValidate_Body(c, &req) {
		return nil, false
	}

	images, ok := h.FormFiles(c, "images")
	if !ok {
		return nil, false
	}
	req.Images = images
	return &req, true
}
