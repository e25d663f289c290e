// Package testserver поднимает настоящий роутер приложения поверх in-memory sqlite
package testserver

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"estate_backend/internal/app"
	"estate_backend/internal/config"
	"estate_backend/internal/models"
	"estate_backend/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Server - роутер с зависимостями одного теста
type Server struct {
	Router     *gin.Engine
	DB         *gorm.DB
	Config     *config.Config
	Components *app.Components
}

// Config - конфигурация по умолчанию с локальным хранилищем во временном каталоге
func Config(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.Server.Env = "test"
	cfg.Database.Driver = "sqlite"
	cfg.JWT.Secret = "test-secret"
	cfg.Email.Provider = "log"
	cfg.Storage.BasePath = t.TempDir()
	cfg.Storage.PublicDir = t.TempDir()
	cfg.RateLimit.AuthPerMinute = 1000
	cfg.RateLimit.AuthBurst = 1000
	return cfg
}

// New собирает сервер с конфигурацией по умолчанию; mutate может ее изменить
func New(t *testing.T, mutate ...func(cfg *config.Config)) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := Config(t)
	for _, fn := range mutate {
		fn(cfg)
	}

	db := testutil.NewTestDB(t)
	components, err := app.NewComponents(cfg)
	require.NoError(t, err)
	t.Cleanup(components.Close)

	return &Server{
		Router:     app.SetupRouter(cfg, db, components),
		DB:         db,
		Config:     cfg,
		Components: components,
	}
}

// Do выполняет JSON-запрос; body == nil - без тела
func (s *Server) Do(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return s.serve(req, token)
}

// DoMultipart отправляет форму с файлами: files - имя поля -> содержимое
func (s *Server) DoMultipart(t *testing.T, method, path string, fields map[string]string, files map[string][]byte, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for name, value := range fields {
		require.NoError(t, w.WriteField(name, value))
	}
	for name, data := range files {
		part, err := w.CreateFormFile(name, "upload.png")
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return s.serve(req, token)
}

func (s *Server) serve(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, req)
	return rec
}

// CreateUser создает пользователя напрямую и возвращает токен, полученный через /api/login
func (s *Server) CreateUser(t *testing.T, name, email string, role models.UserRole) (*models.User, string) {
	t.Helper()

	user := testutil.CreateUser(t, s.DB, name, email, "password123", role)
	return user, s.Login(t, email, "password123")
}

func (s *Server) Login(t *testing.T, email, password string) string {
	t.Helper()

	rec := s.Do(t, http.MethodPost, "/api/login", map[string]string{"email": email, "password": password}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	Decode(t, rec, &resp)
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

// Decode разбирает JSON-ответ
func Decode(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
}
