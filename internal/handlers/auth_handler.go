package handlers

import (
	"net/http"

	"estate_backend/internal/logger"
	"estate_backend/internal/middleware"
	"estate_backend/internal/services"
	"estate_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

// CookieSettings - параметры cookie с токеном для SPA
type CookieSettings struct {
	Name   string
	Domain string
	Secure bool
}

type AuthHandler struct {
	*BaseHandler
	authService services.AuthService
	limiter     *middleware.RateLimiter
	cookie      CookieSettings
}

func NewAuthHandler(base *BaseHandler, authService services.AuthService, limiter *middleware.RateLimiter, cookie CookieSettings) *AuthHandler {
	return &AuthHandler{
		BaseHandler: base,
		authService: authService,
		limiter:     limiter,
		cookie:      cookie,
	}
}

// RegisterRoutes регистрирует маршруты аутентификации
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	// регистрация и вход ограничены по IP
	limited := rg.Group("")
	if h.limiter != nil {
		limited.Use(h.limiter.Middleware())
	}
	{
		limited.POST("/register", h.Register)
		limited.POST("/login", h.Login)
	}

	rg.POST("/logout", h.Auth.Required(), h.Logout)
}

// Register godoc
// @Summary Регистрация
// @Description Создает пользователя (роль user или agent) и сразу выдает токен
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Данные регистрации"
// @Success 201 {object} dto.AuthResponse
// @Failure 422 {object} apperrors.AppError
// @Router /register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !h.BindAndValidate_Body(c, &req) {
		return
	}

	response, err := h.authService.Register(c.Request.Context(), h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.setTokenCookie(c, response)
	c.JSON(http.StatusCreated, response)
}

// Login godoc
// @Summary Вход
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Email и пароль"
// @Success 200 {object} dto.AuthResponse
// @Failure 401 {object} apperrors.AppError
// @Failure 429 {object} apperrors.AppError
// @Router /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.BindAndValidate_Body(c, &req) {
		return
	}

	response, err := h.authService.Login(c.Request.Context(), h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.setTokenCookie(c, response)
	c.JSON(http.StatusOK, response)
}

// Logout godoc
// @Summary Выход
// @Description Отзывает текущий токен и очищает cookie
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.MessageResponse
// @Router /logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	tokenID, expiresAt := middleware.GetToken(c)

	if err := h.authService.Logout(c.Request.Context(), tokenID, expiresAt); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	logger.CtxInfo(c.Request.Context(), "User logged out", "user_id", middleware.GetUserID(c))
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, "", -1, "/", h.cookie.Domain, h.cookie.Secure, true)
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Logged out successfully."})
}

func (h *AuthHandler) setTokenCookie(c *gin.Context, response *dto.AuthResponse) {
	if h.cookie.Name == "" {
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, response.Token, int(response.ExpiresIn), "/", h.cookie.Domain, h.cookie.Secure, true)
}
