package handlers

import (
	"net/http"

	"estate_backend/internal/middleware"
	"estate_backend/internal/services"
	"estate_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

// CatalogHandler - каталог услуг smart home (/api/services)
type CatalogHandler struct {
	*BaseHandler
	catalogService services.CatalogService
}

func NewCatalogHandler(base *BaseHandler, catalogService services.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		BaseHandler:    base,
		catalogService: catalogService,
	}
}

func (h *CatalogHandler) RegisterRoutes(rg *gin.RouterGroup) {
	catalog := rg.Group("/services")
	{
		catalog.GET("", h.Auth.Optional(), h.ListServices)
		catalog.GET("/:slug", h.Auth.Optional(), h.GetService)

		admin := catalog.Group("")
		admin.Use(h.Auth.Required(), middleware.AdminMiddleware())
		{
			admin.POST("", h.CreateService)
			admin.PUT("/:id", h.UpdateService)
			admin.POST("/:id", h.UpdateService)
			admin.DELETE("/:id", h.DeleteService)
		}
	}
}

// ListServices godoc
// @Summary Услуги
// @Description Активные услуги; администратор с include_inactive=true видит все
// @Tags services
// @Produce json
// @Param include_inactive query bool false "Включая неактивные (только админ)"
// @Success 200 {array} dto.ServiceResponse
// @Router /services [get]
func (h *CatalogHandler) ListServices(c *gin.Context) {
	includeInactive := h.Actor(c).IsAdmin() && c.Query("include_inactive") == "true"

	items, err := h.catalogService.List(c.Request.Context(), h.GetDB(c), includeInactive)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (h *CatalogHandler) GetService(c *gin.Context) {
	item, err := h.catalogService.Get(c.Request.Context(), h.GetDB(c), h.Actor(c), c.Param("slug"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *CatalogHandler) CreateService(c *gin.Context) {
	req, ok := h.bindServiceRequest(c)
	if !ok {
		return
	}

	item, err := h.catalogService.Create(c.Request.Context(), h.GetDB(c), req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *CatalogHandler) UpdateService(c *gin.Context) {
	req, ok := h.bindServiceRequest(c)
	if !ok {
		return
	}

	item, err := h.catalogService.Update(c.Request.Context(), h.GetDB(c), c.Param("id"), req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *CatalogHandler) DeleteService(c *gin.Context) {
	if err := h.catalogService.Delete(c.Request.Context(), h.GetDB(c), c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Service deleted successfully."})
}

func (h *CatalogHandler) bindServiceRequest(c *gin.Context) (*dto.ServiceRequest, bool) {
	var req dto.ServiceRequest
	if !h.BindAndValidate_Body(c, &req) {
		return nil, false
	}

	image, ok := h.FormFile(c, "image")
	if !ok {
		return nil, false
	}
	req.Image = image
	return &req, true
}
