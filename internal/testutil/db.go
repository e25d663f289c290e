package testutil

import (
	"fmt"
	"strings"
	"testing"

	"estate_backend/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB открывает отдельную in-memory sqlite базу на тест и прогоняет миграции
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "не удалось открыть тестовую БД")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// одна коннекция: in-memory база живет, пока открыт хотя бы один коннект
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...), "миграции не прошли")
	return db
}

// CreateUser создает активного пользователя; пароль передается в открытом виде
func CreateUser(t *testing.T, db *gorm.DB, name, email, password string, role models.UserRole) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Name:         name,
		Email:        strings.ToLower(email),
		PasswordHash: string(hash),
		Role:         role,
		Status:       models.UserStatusActive,
		IsApproved:   role != models.UserRoleAgent,
	}
	require.NoError(t, db.Create(user).Error, "не удалось создать пользователя %s", email)
	return user
}

// CreateProperty создает объект напрямую в БД
func CreateProperty(t *testing.T, db *gorm.DB, agentID, title string, status models.PropertyStatus) *models.Property {
	t.Helper()

	property := &models.Property{
		AgentID: agentID,
		Title:   title,
		Slug:    strings.ReplaceAll(strings.ToLower(title), " ", "-") + "-" + uuid.NewString()[:8],
		Price:   100000,
		City:    "Almaty",
		Status:  status,
	}
	require.NoError(t, db.Create(property).Error)
	return property
}
