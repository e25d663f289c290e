package repositories

import (
	"time"

	"estate_backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OutboxRepository interface {
	Create(db *gorm.DB, event *models.OutboxEvent) error
	// ClaimDue выбирает готовые к обработке события (pending, available_at <= now)
	ClaimDue(db *gorm.DB, now time.Time, limit int) ([]models.OutboxEvent, error)
	MarkProcessed(db *gorm.DB, id string, at time.Time) error
	MarkRetry(db *gorm.DB, id string, attempts int, lastError string, availableAt time.Time) error
	MarkFailed(db *gorm.DB, id string, attempts int, lastError string) error
	CountByStatus(db *gorm.DB, status models.OutboxStatus) (int64, error)
}

type outboxRepository struct{}

func NewOutboxRepository() OutboxRepository {
	return &outboxRepository{}
}

func (r *outboxRepository) Create(db *gorm.DB, event *models.OutboxEvent) error {
	if event.Status == "" {
		event.Status = models.OutboxStatusPending
	}
	if event.AvailableAt.IsZero() {
		event.AvailableAt = time.Now()
	}
	return db.Create(event).Error
}

func (r *outboxRepository) ClaimDue(db *gorm.DB, now time.Time, limit int) ([]models.OutboxEvent, error) {
	query := db.Where("status = ? AND available_at <= ?", models.OutboxStatusPending, now).
		Order("available_at ASC").
		Order("created_at ASC").
		Limit(limit)

	// несколько инстансов не возьмут одно событие; sqlite блокировок строк не знает
	if db.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"})
	}

	var events []models.OutboxEvent
	err := query.Find(&events).Error
	return events, err
}

func (r *outboxRepository) MarkProcessed(db *gorm.DB, id string, at time.Time) error {
	return db.Model(&models.OutboxEvent{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":       models.OutboxStatusProcessed,
		"processed_at": at,
		"attempts":     gorm.Expr("attempts + 1"),
		"last_error":   "",
	}).Error
}

func (r *outboxRepository) MarkRetry(db *gorm.DB, id string, attempts int, lastError string, availableAt time.Time) error {
	return db.Model(&models.OutboxEvent{}).Where("id = ?", id).Updates(map[string]interface{}{
		"attempts":     attempts,
		"last_error":   lastError,
		"available_at": availableAt,
	}).Error
}

func (r *outboxRepository) MarkFailed(db *gorm.DB, id string, attempts int, lastError string) error {
	return db.Model(&models.OutboxEvent{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":     models.OutboxStatusFailed,
		"attempts":   attempts,
		"last_error": lastError,
	}).Error
}

func (r *outboxRepository) CountByStatus(db *gorm.DB, status models.OutboxStatus) (int64, error) {
	var count int64
	err := db.Model(&models.OutboxEvent{}).Where("status = ?", status).Count(&count).Error
	return count, err
}
