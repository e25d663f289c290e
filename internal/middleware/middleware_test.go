package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"estate_backend/internal/auth"
	"estate_backend/internal/models"
	"estate_backend/internal/testutil"
	"estate_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type stubAuthenticator struct {
	user *models.User
}

func (s stubAuthenticator) Authenticate(ctx context.Context, db *gorm.DB, token string) (*models.User, *auth.Claims, error) {
	if token != "good" || s.user == nil {
		return nil, nil, apperrors.ErrInvalidToken
	}
	return s.user, &auth.Claims{
		UserID:           s.user.ID,
		Role:             string(s.user.Role),
		RegisteredClaims: jwt.RegisteredClaims{ID: "jti-1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}, nil
}

func newRouter(t *testing.T, mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(DBMiddleware(testutil.NewTestDB(t)))
	r.GET("/x", append(mw, func(c *gin.Context) {
		c.String(http.StatusOK, GetUserID(c)+"|"+GetRole(c))
	})...)
	return r
}

func TestAuthMiddleware_BearerAndCookie(t *testing.T) {
	user := &models.User{BaseModel: models.BaseModel{ID: "u1"}, Role: models.UserRoleAgent}
	am := NewAuthMiddleware(stubAuthenticator{user: user}, "estate_session")
	r := newRouter(t, am.Required())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer good")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1|agent", w.Body.String())

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.AddCookie(&http.Cookie{Name: "estate_session", Value: "good"})
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer bad")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_OptionalIgnoresBadToken(t *testing.T) {
	am := NewAuthMiddleware(stubAuthenticator{}, "")
	r := newRouter(t, am.Optional())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer bad")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "|", w.Body.String())
}

func TestRequireRoles(t *testing.T) {
	for role, expected := range map[models.UserRole]int{
		models.UserRoleAgent: http.StatusOK,
		models.UserRoleAdmin: http.StatusOK,
		models.UserRoleUser:  http.StatusForbidden,
	} {
		user := &models.User{BaseModel: models.BaseModel{ID: "u1"}, Role: role}
		am := NewAuthMiddleware(stubAuthenticator{user: user}, "")
		r := newRouter(t, am.Required(), RequireRoles(models.UserRoleAgent))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Authorization", "Bearer good")
		r.ServeHTTP(w, req)
		assert.Equal(t, expected, w.Code, role)
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(60, 2)
	now := time.Now()
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("1.1.1.1"))
	assert.True(t, rl.Allow("1.1.1.1"))
	assert.False(t, rl.Allow("1.1.1.1"))
	assert.True(t, rl.Allow("2.2.2.2"), "лимит считается по клиенту")

	now = now.Add(time.Second)
	assert.True(t, rl.Allow("1.1.1.1"))
}

func TestCORSMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORSMiddleware([]string{"http://localhost:3000/"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://evil.test")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
