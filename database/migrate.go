package database

import (
	"fmt"
	"time"

	"estate_backend/internal/logger"
	"estate_backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open подключается к БД по драйверу (postgres или sqlite) и проверяет соединение
func Open(driver, dsn string, debug bool) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "", "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	logLevel := gormlogger.Warn
	if debug {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to GORM: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get *sql.DB from GORM: %w", err)
	}
	if driver == "sqlite" {
		// sqlite не переносит параллельную запись
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("database unavailable: %w", err)
	}
	return db, nil
}

// AutoMigrate выполняет миграцию всех моделей
func AutoMigrate(db *gorm.DB) error {
	logger.Info("Running auto-migration...")
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto-migration failed: %w", err)
	}
	logger.Info("Auto-migration completed")
	return nil
}
