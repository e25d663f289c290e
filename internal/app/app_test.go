package app_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"estate_backend/internal/config"
	"estate_backend/internal/models"
	"estate_backend/internal/testutil/testserver"
	"estate_backend/internal/workers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type propertyBody struct {
	ID        string   `json:"id"`
	Slug      string   `json:"slug"`
	Status    string   `json:"status"`
	ImageURLs []string `json:"image_urls"`
}

type propertyList struct {
	Data []propertyBody `json:"data"`
	Meta struct {
		CurrentPage int   `json:"current_page"`
		PerPage     int   `json:"per_page"`
		Total       int64 `json:"total"`
		LastPage    int   `json:"last_page"`
	} `json:"meta"`
}

type errorBody struct {
	Message string            `json:"message"`
	Code    string            `json:"code"`
	Errors  map[string]string `json:"errors"`
}

func villa() map[string]interface{} {
	return map[string]interface{}{
		"title":    "Sea View Villa",
		"location": "Coastline 1",
		"city":     "Almaty",
		"price":    450000,
		"bedrooms": 4,
	}
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		img.Set(x, x, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func processOutbox(t *testing.T, srv *testserver.Server) int {
	t.Helper()
	svc := srv.Components.Services
	worker := workers.NewOutboxWorker(srv.DB, svc.OutboxRepository, svc.EventDispatcher, workers.OutboxConfig{
		PollInterval: time.Second,
		BatchSize:    50,
		MaxAttempts:  3,
		RetryDelay:   time.Minute,
	})
	processed, err := worker.ProcessOnce(context.Background())
	require.NoError(t, err)
	return processed
}

func TestPropertyModerationFlow(t *testing.T) {
	srv := testserver.New(t)
	_, adminToken := srv.CreateUser(t, "Admin", "admin@estate.test", models.UserRoleAdmin)
	_, agentToken := srv.CreateUser(t, "Agent", "agent@estate.test", models.UserRoleAgent)

	rec := srv.Do(t, http.MethodPost, "/api/properties", villa(), agentToken)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created propertyBody
	testserver.Decode(t, rec, &created)
	assert.Equal(t, "pending", created.Status)
	assert.Equal(t, "sea-view-villa", created.Slug)

	// pending не виден публично
	rec = srv.Do(t, http.MethodGet, "/api/properties", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list propertyList
	testserver.Decode(t, rec, &list)
	assert.Empty(t, list.Data)
	assert.Equal(t, int64(0), list.Meta.Total)

	rec = srv.Do(t, http.MethodGet, "/api/properties/"+created.ID, nil, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = srv.Do(t, http.MethodGet, "/api/properties/"+created.ID, nil, agentToken)
	assert.Equal(t, http.StatusOK, rec.Code)

	// агент не может одобрить
	rec = srv.Do(t, http.MethodPost, "/api/properties/"+created.ID+"/approve", nil, agentToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = srv.Do(t, http.MethodPost, "/api/properties/"+created.ID+"/approve", nil, adminToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var approved propertyBody
	testserver.Decode(t, rec, &approved)
	assert.Equal(t, "approved", approved.Status)

	// повторное одобрение ничего не меняет
	rec = srv.Do(t, http.MethodPost, "/api/properties/"+created.ID+"/approve", nil, adminToken)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = srv.Do(t, http.MethodPost, "/api/properties/"+created.ID+"/reject", nil, adminToken)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = srv.Do(t, http.MethodGet, "/api/properties", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	list = propertyList{}
	testserver.Decode(t, rec, &list)
	require.Len(t, list.Data, 1)
	assert.Equal(t, created.ID, list.Data[0].ID)
	assert.Equal(t, 1, list.Meta.CurrentPage)
	assert.Equal(t, 15, list.Meta.PerPage)
	assert.Equal(t, int64(1), list.Meta.Total)
	assert.Equal(t, 1, list.Meta.LastPage)

	rec = srv.Do(t, http.MethodGet, "/api/properties/sea-view-villa", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPropertyApproval_NotifiesAgentThroughOutbox(t *testing.T) {
	srv := testserver.New(t)
	_, adminToken := srv.CreateUser(t, "Admin", "admin@estate.test", models.UserRoleAdmin)
	_, agentToken := srv.CreateUser(t, "Agent", "agent@estate.test", models.UserRoleAgent)

	rec := srv.Do(t, http.MethodPost, "/api/properties", villa(), agentToken)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created propertyBody
	testserver.Decode(t, rec, &created)

	rec = srv.Do(t, http.MethodPost, "/api/properties/"+created.ID+"/approve", nil, adminToken)
	require.Equal(t, http.StatusOK, rec.Code)

	// submitted + approved
	assert.Equal(t, 2, processOutbox(t, srv))
	// поставленные ими эффекты: push на submitted, push и письмо на approved
	assert.Equal(t, 3, processOutbox(t, srv))
	assert.Equal(t, 0, processOutbox(t, srv))

	rec = srv.Do(t, http.MethodGet, "/api/notifications/unread-count", nil, agentToken)
	require.Equal(t, http.StatusOK, rec.Code)
	var count struct {
		Count int64 `json:"count"`
	}
	testserver.Decode(t, rec, &count)
	assert.Equal(t, int64(1), count.Count)

	rec = srv.Do(t, http.MethodPost, "/api/notifications/read-all", nil, agentToken)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = srv.Do(t, http.MethodGet, "/api/notifications/unread-count", nil, agentToken)
	testserver.Decode(t, rec, &count)
	assert.Equal(t, int64(0), count.Count)
}

func TestValidationErrorShape(t *testing.T) {
	srv := testserver.New(t)
	_, agentToken := srv.CreateUser(t, "Agent", "agent@estate.test", models.UserRoleAgent)

	rec := srv.Do(t, http.MethodPost, "/api/properties", map[string]interface{}{"city": "Almaty"}, agentToken)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body errorBody
	testserver.Decode(t, rec, &body)
	assert.Equal(t, "The given data was invalid.", body.Message)
	assert.Contains(t, body.Errors, "title")
	assert.Contains(t, body.Errors, "price")
	assert.Contains(t, body.Errors, "location")
}

func TestPropertyMultipartUpload_ServesImage(t *testing.T) {
	srv := testserver.New(t)
	_, agentToken := srv.CreateUser(t, "Agent", "agent@estate.test", models.UserRoleAgent)

	rec := srv.DoMultipart(t, http.MethodPost, "/api/properties", map[string]string{
		"title":    "Garden House",
		"location": "Green street 5",
		"price":    "120000",
	}, map[string][]byte{"images[]": pngBytes(t)}, agentToken)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created propertyBody
	testserver.Decode(t, rec, &created)
	require.Len(t, created.ImageURLs, 1)
	assert.True(t, strings.HasPrefix(created.ImageURLs[0], "/storage/properties/"), created.ImageURLs[0])

	rec = srv.Do(t, http.MethodGet, created.ImageURLs[0], nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthFlow_RegisterLogoutRevokesToken(t *testing.T) {
	srv := testserver.New(t)

	rec := srv.Do(t, http.MethodPost, "/api/register", map[string]string{
		"name":                  "Buyer",
		"email":                 "Buyer@Estate.test",
		"password":              "password123",
		"password_confirmation": "password123",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var auth struct {
		Token string `json:"token"`
		User  struct {
			Email string `json:"email"`
			Role  string `json:"role"`
		} `json:"user"`
	}
	testserver.Decode(t, rec, &auth)
	assert.Equal(t, "buyer@estate.test", auth.User.Email)
	assert.Equal(t, "user", auth.User.Role)

	var sessionCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == srv.Config.Auth.CookieName {
			sessionCookie = c
		}
	}
	require.NotNil(t, sessionCookie)
	assert.True(t, sessionCookie.HttpOnly)

	rec = srv.Do(t, http.MethodGet, "/api/user", nil, auth.Token)
	assert.Equal(t, http.StatusOK, rec.Code)

	// cookie работает вместо заголовка
	req := httptest.NewRequest(http.MethodGet, "/api/user", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookie.Name, Value: sessionCookie.Value})
	cookieRec := httptest.NewRecorder()
	srv.Router.ServeHTTP(cookieRec, req)
	assert.Equal(t, http.StatusOK, cookieRec.Code)

	rec = srv.Do(t, http.MethodPost, "/api/logout", nil, auth.Token)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = srv.Do(t, http.MethodGet, "/api/user", nil, auth.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = srv.Do(t, http.MethodPost, "/api/login", map[string]string{"email": "buyer@estate.test", "password": "wrong-password"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginIsRateLimited(t *testing.T) {
	srv := testserver.New(t, func(cfg *config.Config) {
		cfg.RateLimit.AuthPerMinute = 1
		cfg.RateLimit.AuthBurst = 2
	})

	creds := map[string]string{"email": "nobody@estate.test", "password": "password123"}
	for i := 0; i < 2; i++ {
		rec := srv.Do(t, http.MethodPost, "/api/login", creds, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}
	rec := srv.Do(t, http.MethodPost, "/api/login", creds, "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestAdminEndpointsRequireAdmin(t *testing.T) {
	srv := testserver.New(t)
	_, adminToken := srv.CreateUser(t, "Admin", "admin@estate.test", models.UserRoleAdmin)
	_, agentToken := srv.CreateUser(t, "Agent", "agent@estate.test", models.UserRoleAgent)

	rec := srv.Do(t, http.MethodGet, "/api/admin/stats", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = srv.Do(t, http.MethodGet, "/api/admin/stats", nil, agentToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = srv.Do(t, http.MethodGet, "/api/admin/stats", nil, adminToken)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats struct {
		UsersByRole map[string]int64 `json:"users_by_role"`
	}
	testserver.Decode(t, rec, &stats)
	assert.Equal(t, int64(1), stats.UsersByRole["agent"])

	rec = srv.Do(t, http.MethodGet, "/api/admin/media/broken?category=property", nil, adminToken)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = srv.Do(t, http.MethodGet, "/api/admin/media/broken?category=unknown", nil, adminToken)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestPublicInquiryAndBlog(t *testing.T) {
	srv := testserver.New(t)
	_, agentToken := srv.CreateUser(t, "Agent", "agent@estate.test", models.UserRoleAgent)

	rec := srv.Do(t, http.MethodPost, "/api/inquiries", map[string]string{
		"name":    "Guest",
		"email":   "guest@estate.test",
		"message": "Is it still available?",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = srv.Do(t, http.MethodGet, "/api/inquiries", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = srv.Do(t, http.MethodPost, "/api/blog-posts", map[string]string{
		"title":    "Smart Home Trends",
		"content":  "Body",
		"category": "tech",
		"status":   "published",
	}, agentToken)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = srv.Do(t, http.MethodGet, "/api/blog-posts/Smart%20Home%20Trends", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthAndCORS(t *testing.T) {
	srv := testserver.New(t)

	rec := srv.Do(t, http.MethodGet, "/api/health", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var health map[string]string
	testserver.Decode(t, rec, &health)
	assert.Equal(t, "ok", health["status"])

	req := httptest.NewRequest(http.MethodOptions, "/api/properties", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	preflight := httptest.NewRecorder()
	srv.Router.ServeHTTP(preflight, req)
	assert.Equal(t, http.StatusNoContent, preflight.Code)
	assert.Equal(t, "http://localhost:3000", preflight.Header().Get("Access-Control-Allow-Origin"))
}
