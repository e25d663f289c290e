package handlers

import (
	"errors"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"estate_backend/internal/middleware"
	"estate_backend/internal/services"
	"estate_backend/internal/services/dto"
	"estate_backend/internal/storage"
	"estate_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

type MediaHandler struct {
	*BaseHandler
	mediaService  services.MediaService
	repairService services.MediaRepairService
}

func NewMediaHandler(base *BaseHandler, mediaService services.MediaService, repairService services.MediaRepairService) *MediaHandler {
	return &MediaHandler{
		BaseHandler:   base,
		mediaService:  mediaService,
		repairService: repairService,
	}
}

func (h *MediaHandler) RegisterRoutes(rg *gin.RouterGroup) {
	admin := rg.Group("/admin/media")
	admin.Use(h.Auth.Required(), middleware.AdminMiddleware())
	{
		admin.GET("/broken", h.ListBrokenImages)
		admin.POST("/repair", h.RepairCategory)
		admin.POST("/repair/:category/:id", h.RepairItem)
	}
}

// ListBrokenImages godoc
// @Summary Битые ссылки на изображения
// @Description Записи категории, чей файл отсутствует и в хранилище, и в public
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param category query string true "blog, property, profile_picture или service"
// @Success 200 {object} dto.BrokenImagesResponse
// @Router /admin/media/broken [get]
func (h *MediaHandler) ListBrokenImages(c *gin.Context) {
	var query dto.BrokenImagesQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	items, err := h.repairService.ScanBroken(c.Request.Context(), h.GetDB(c), query.Category)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.BrokenImagesResponse{
		Category: query.Category,
		Count:    len(items),
		Items:    items,
	})
}

// RepairCategory godoc
// @Summary Заменить все битые ссылки категории
// @Tags admin
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param request body dto.RepairRequest true "Категория и default_image (или файл в поле file)"
// @Success 200 {object} dto.RepairResult
// @Router /admin/media/repair [post]
func (h *MediaHandler) RepairCategory(c *gin.Context) {
	var req dto.RepairRequest
	if !h.BindAndValidate_Body(c, &req) {
		return
	}
	file, ok := h.FormFile(c, "file")
	if !ok {
		return
	}
	req.File = file

	result, err := h.repairService.RepairCategory(c.Request.Context(), h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *MediaHandler) RepairItem(c *gin.Context) {
	var req dto.RepairItemRequest
	if !h.BindAndValidate_Body(c, &req) {
		return
	}
	file, ok := h.FormFile(c, "file")
	if !ok {
		return
	}
	req.File = file

	result, err := h.repairService.RepairItem(c.Request.Context(), h.GetDB(c), c.Param("category"), c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ServeFile отдает файл из основного хранилища по /storage/*path (для не-локальных бэкендов)
func (h *MediaHandler) ServeFile(c *gin.Context) {
	path := strings.TrimPrefix(c.Param("path"), "/")
	if path == "" || strings.Contains(path, "..") {
		apperrors.HandleError(c, apperrors.New(apperrors.CodeNotFound, "storage", "File not found", http.StatusNotFound))
		return
	}

	reader, err := h.mediaService.Open(c.Request.Context(), path)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			apperrors.HandleError(c, apperrors.New(apperrors.CodeNotFound, "storage", "File not found", http.StatusNotFound))
			return
		}
		h.HandleServiceError(c, err)
		return
	}
	defer reader.Close()

	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Cache-Control", "public, max-age=86400")
	c.DataFromReader(http.StatusOK, -1, contentType, reader, nil)
}
