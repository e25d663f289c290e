package middleware

import (
	"context"
	"errors"
	"strings"
	"time"

	"estate_backend/internal/auth"
	"estate_backend/internal/logger"
	"estate_backend/internal/models"
	"estate_backend/pkg/apperrors"
	"estate_backend/pkg/contextkeys"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Authenticator проверяет токен и возвращает пользователя (реализует AuthService)
type Authenticator interface {
	Authenticate(ctx context.Context, db *gorm.DB, token string) (*models.User, *auth.Claims, error)
}

// AuthMiddleware принимает "Authorization: Bearer <jwt>" или сессионную cookie
type AuthMiddleware struct {
	authenticator Authenticator
	cookieName    string
}

func NewAuthMiddleware(authenticator Authenticator, cookieName string) *AuthMiddleware {
	return &AuthMiddleware{authenticator: authenticator, cookieName: cookieName}
}

// Required - без валидного токена запрос завершается 401
func (m *AuthMiddleware) Required() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := m.extractToken(c)
		if token == "" {
			apperrors.HandleError(c, apperrors.ErrUnauthenticated)
			return
		}
		if err := m.authenticate(c, token); err != nil {
			apperrors.HandleError(c, err)
			return
		}
		c.Next()
	}
}

// Optional - аноним проходит; невалидный токен тоже не ошибка, запрос считается анонимным
func (m *AuthMiddleware) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := m.extractToken(c); token != "" {
			if err := m.authenticate(c, token); err != nil {
				logger.CtxDebug(c.Request.Context(), "optional auth ignored", "error", err.Error())
			}
		}
		c.Next()
	}
}

func (m *AuthMiddleware) extractToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if m.cookieName != "" {
		if cookie, err := c.Cookie(m.cookieName); err == nil {
			return cookie
		}
	}
	// браузерный websocket не умеет ставить заголовки
	if c.Request.URL.Path == "/ws" {
		return c.Query("token")
	}
	return ""
}

func (m *AuthMiddleware) authenticate(c *gin.Context, token string) error {
	db, ok := DBFromContext(c)
	if !ok {
		return apperrors.InternalError(errors.New("db is not set in context"))
	}

	user, claims, err := m.authenticator.Authenticate(c.Request.Context(), db, token)
	if err != nil {
		return err
	}

	c.Set(string(contextkeys.UserIDKey), user.ID)
	c.Set(string(contextkeys.RoleKey), string(user.Role))
	c.Set(string(contextkeys.TokenIDKey), claims.ID)
	if claims.ExpiresAt != nil {
		c.Set(string(contextkeys.TokenExpKey), claims.ExpiresAt.Time)
	}
	c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), user.ID))
	return nil
}

// RequireRoles - доступ только для перечисленных ролей; ставится после Required
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[string(r)] = true
	}

	return func(c *gin.Context) {
		role := GetRole(c)
		if role == "" {
			apperrors.HandleError(c, apperrors.ErrUnauthenticated)
			return
		}
		if !allowed[role] {
			if auth.IsAdmin(role) {
				c.Next()
				return
			}
			apperrors.HandleError(c, apperrors.NewForbiddenError("Access denied: insufficient permissions"))
			return
		}
		c.Next()
	}
}

// AdminMiddleware - только администратор
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !auth.IsAdmin(GetRole(c)) {
			apperrors.HandleError(c, apperrors.ErrAdminOnly)
			return
		}
		c.Next()
	}
}

// GetUserID извлекает ID пользователя из контекста ("" для анонима)
func GetUserID(c *gin.Context) string {
	return c.GetString(string(contextkeys.UserIDKey))
}

func GetRole(c *gin.Context) string {
	return c.GetString(string(contextkeys.RoleKey))
}

// GetToken возвращает jti и срок действия текущего токена
func GetToken(c *gin.Context) (string, time.Time) {
	return c.GetString(string(contextkeys.TokenIDKey)), c.GetTime(string(contextkeys.TokenExpKey))
}

// DBFromContext - *gorm.DB, положенный DBMiddleware
func DBFromContext(c *gin.Context) (*gorm.DB, bool) {
	db, ok := c.Get(string(contextkeys.DBContextKey))
	if !ok {
		return nil, false
	}
	gdb, ok := db.(*gorm.DB)
	return gdb, ok && gdb != nil
}
