package handlers

import (
	"net/http"

	"estate_backend/internal/middleware"
	"estate_backend/internal/services"
	"estate_backend/internal/services/dto"
	"estate_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	*BaseHandler
	userService services.UserService
}

func NewUserHandler(base *BaseHandler, userService services.UserService) *UserHandler {
	return &UserHandler{
		BaseHandler: base,
		userService: userService,
	}
}

func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup) {
	user := rg.Group("/user")
	user.Use(h.Auth.Required())
	{
		user.GET("", h.GetCurrentUser)
		user.PATCH("", h.UpdateProfile)
		user.POST("/profile-picture", h.UploadProfilePicture)
	}

	admin := rg.Group("/admin/users")
	admin.Use(h.Auth.Required(), middleware.AdminMiddleware())
	{
		admin.GET("", h.AdminListUsers)
		admin.PATCH("/:id", h.AdminUpdateUser)
	}
}

// GetCurrentUser godoc
// @Summary Текущий пользователь
// @Tags user
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.UserResponse
// @Router /user [get]
func (h *UserHandler) GetCurrentUser(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	user, err := h.userService.GetCurrent(c.Request.Context(), h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UploadProfilePicture принимает multipart-поле image
func (h *UserHandler) UploadProfilePicture(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	file, ok := h.FormFile(c, "image")
	if !ok {
		return
	}
	if file == nil {
		apperrors.HandleError(c, apperrors.FieldError("image", "The image field is required."))
		return
	}

	user, err := h.userService.UpdateProfilePicture(c.Request.Context(), h.GetDB(c), userID, file)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// AdminListUsers godoc
// @Summary Список пользователей
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param role query string false "Роль"
// @Param status query string false "Статус"
// @Param search query string false "Поиск по имени и email"
// @Success 200 {object} dto.ListResponse[dto.UserResponse]
// @Router /admin/users [get]
func (h *UserHandler) AdminListUsers(c *gin.Context) {
	var query dto.UserListQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	users, err := h.userService.List(c.Request.Context(), h.GetDB(c), &query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *UserHandler) AdminUpdateUser(c *gin.Context) {
	var req dto.AdminUpdateUserRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	user, err := h.userService.AdminUpdate(c.Request.Context(), h.GetDB(c), c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
