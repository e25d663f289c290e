package handlers

import (
	"net/http"

	"estate_backend/internal/services"
	"estate_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type BlogHandler struct {
	*BaseHandler
	blogService services.BlogService
}

func NewBlogHandler(base *BaseHandler, blogService services.BlogService) *BlogHandler {
	return &BlogHandler{
		BaseHandler: base,
		blogService: blogService,
	}
}

func (h *BlogHandler) RegisterRoutes(rg *gin.RouterGroup) {
	posts := rg.Group("/blog-posts")
	{
		posts.GET("", h.ListPosts)
		posts.GET("/mine", h.Auth.Required(), h.ListMyPosts)
		posts.GET("/:slug", h.Auth.Optional(), h.GetPost)

		// роль (admin или agent) и авторство проверяет сервис
		protected := posts.Group("")
		protected.Use(h.Auth.Required())
		{
			protected.POST("", h.CreatePost)
			protected.PUT("/:id", h.UpdatePost)
			protected.POST("/:id", h.UpdatePost)
			protected.DELETE("/:id", h.DeletePost)
		}
	}
}

// ListPosts godoc
// @Summary Опубликованные статьи
// @Tags blog
// @Produce json
// @Param category query string false "Категория"
// @Param search query string false "Поиск"
// @Success 200 {object} dto.ListResponse[dto.BlogPostResponse]
// @Router /blog-posts [get]
func (h *BlogHandler) ListPosts(c *gin.Context) {
	var query dto.BlogPostQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	result, err := h.blogService.ListPublished(c.Request.Context(), h.GetDB(c), &query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *BlogHandler) ListMyPosts(c *gin.Context) {
	var query dto.BlogPostQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	result, err := h.blogService.ListMine(c.Request.Context(), h.GetDB(c), h.Actor(c), &query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetPost godoc
// @Summary Статья по slug
// @Description Ищет по точному slug, затем по нормализованному вводу, затем по префиксу, затем по id
// @Tags blog
// @Produce json
// @Param slug path string true "slug или id"
// @Success 200 {object} dto.BlogPostResponse
// @Failure 404 {object} apperrors.AppError
// @Router /blog-posts/{slug} [get]
func (h *BlogHandler) GetPost(c *gin.Context) {
	post, err := h.blogService.Get(c.Request.Context(), h.GetDB(c), h.Actor(c), c.Param("slug"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *BlogHandler) CreatePost(c *gin.Context) {
	req, ok := h.bindPostRequest(c)
	if !ok {
		return
	}

	post, err := h.blogService.Create(c.Request.Context(), h.GetDB(c), h.Actor(c), req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

func (h *BlogHandler) UpdatePost(c *gin.Context) {
	req, ok := h.bindPostRequest(c)
	if !ok {
		return
	}

	post, err := h.blogService.Update(c.Request.Context(), h.GetDB(c), h.Actor(c), c.Param("id"), req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *BlogHandler) DeletePost(c *gin.Context) {
	if err := h.blogService.Delete(c.Request.Context(), h.GetDB(c), h.Actor(c), c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Blog post deleted successfully."})
}

func (h *BlogHandler) bindPostRequest(c *gin.Context) (*dto.BlogPostRequest, bool) {
	var req dto.BlogPostRequest
	if !h.BindAndValidate_Body(c, &req) {
		return nil, false
	}

	image, ok := h.FormFile(c, "featured_image")
	if !ok {
		return nil, false
	}
	req.FeaturedImage = image
	return &req, true
}
