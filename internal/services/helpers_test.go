package services_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"estate_backend/internal/auth"
	"estate_backend/internal/email"
	"estate_backend/internal/imageprocessor"
	"estate_backend/internal/models"
	"estate_backend/internal/services"
	"estate_backend/internal/services/dto"
	"estate_backend/internal/storage"
	"estate_backend/internal/testutil"
	"estate_backend/pkg/apperrors"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	db      *gorm.DB
	svc     *services.ServiceContainer
	store   storage.Storage
	mailer  *email.LogProvider
	admin   services.Actor
	agent   services.Actor
	adminID string
	agentID string
}

// newTestEnv собирает сервисы над sqlite и локальным хранилищем; opts меняют зависимости
func newTestEnv(t *testing.T, opts ...func(*services.Dependencies)) *testEnv {
	t.Helper()
	db := testutil.NewTestDB(t)

	store, err := storage.NewLocalStorage(storage.Config{BasePath: t.TempDir(), BaseURL: "http://localhost/storage"})
	require.NoError(t, err)

	tm, err := email.NewDefaultTemplateManager("")
	require.NoError(t, err)
	mailer := email.NewLogProvider(email.Config{}, tm)

	deps := services.Dependencies{
		Resolver:    storage.NewResolver(store, "", ""),
		Processor:   imageprocessor.NewProcessor(85, 2<<20, nil),
		Tokens:      auth.NewTokenManager("test-secret", time.Hour),
		Blacklist:   auth.NewMemoryBlacklist(),
		Mailer:      mailer,
		FrontendURL: "http://localhost:3000",
	}
	for _, opt := range opts {
		opt(&deps)
	}
	svc := services.NewServiceContainer(deps)

	admin := testutil.CreateUser(t, db, "Admin", "admin@estate.test", "password123", models.UserRoleAdmin)
	agent := testutil.CreateUser(t, db, "Agent", "agent@estate.test", "password123", models.UserRoleAgent)

	return &testEnv{
		db:      db,
		svc:     svc,
		store:   store,
		mailer:  mailer,
		admin:   services.Actor{UserID: admin.ID, Role: models.UserRoleAdmin},
		agent:   services.Actor{UserID: agent.ID, Role: models.UserRoleAgent},
		adminID: admin.ID,
		agentID: agent.ID,
	}
}

func newActor(t *testing.T, env *testEnv, name, email string, role models.UserRole) services.Actor {
	t.Helper()
	u := testutil.CreateUser(t, env.db, name, email, "password123", role)
	return services.Actor{UserID: u.ID, Role: role}
}

func pngUpload(t *testing.T, field string) *dto.UploadedFile {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	img.Set(1, 1, color.RGBA{R: 200, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return &dto.UploadedFile{Field: field, Filename: "photo.png", ContentType: "image/png", Data: buf.Bytes()}
}

func httpStatus(err error) int {
	if appErr, ok := apperrors.AsAppError(err); ok {
		return appErr.HTTPCode
	}
	return 0
}

func price(v float64) *float64 {
	return &v
}

func outboxEvents(t *testing.T, db *gorm.DB, eventType string) []models.OutboxEvent {
	t.Helper()
	var events []models.OutboxEvent
	require.NoError(t, db.Where("event_type = ?", eventType).Find(&events).Error)
	return events
}

// failingMailer - почтовый провайдер, который всегда отказывает
type failingMailer struct{}

func (failingMailer) Send(context.Context, *email.Email) error { return errors.New("smtp down") }
func (failingMailer) SendTemplate(context.Context, []string, string, string, email.TemplateData) error {
	return errors.New("smtp down")
}
func (failingMailer) Validate() error { return nil }
func (failingMailer) Close() error    { return nil }
