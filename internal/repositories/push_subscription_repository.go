package repositories

import (
	"errors"

	"estate_backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrSubscriptionNotFound = errors.New("push subscription not found")

type PushSubscriptionRepository interface {
	// Upsert по endpoint: повторная подписка того же браузера обновляет ключи и владельца
	Upsert(db *gorm.DB, sub *models.PushSubscription) error
	FindAll(db *gorm.DB) ([]models.PushSubscription, error)
	FindByUser(db *gorm.DB, userID string) ([]models.PushSubscription, error)
	DeleteByEndpoint(db *gorm.DB, endpoint string) error
}

type pushSubscriptionRepository struct{}

func NewPushSubscriptionRepository() PushSubscriptionRepository {
	return &pushSubscriptionRepository{}
}

func (r *pushSubscriptionRepository) Upsert(db *gorm.DB, sub *models.PushSubscription) error {
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "kind", "p256dh", "auth", "updated_at"}),
	}).Create(sub).Error
	if err != nil {
		return err
	}
	// при конфликте в sub остался сгенерированный ID, перечитываем строку
	var stored models.PushSubscription
	if err := db.Where("endpoint = ?", sub.Endpoint).First(&stored).Error; err != nil {
		return err
	}
	*sub = stored
	return nil
}

func (r *pushSubscriptionRepository) FindAll(db *gorm.DB) ([]models.PushSubscription, error) {
	var subs []models.PushSubscription
	err := db.Order("created_at ASC").Find(&subs).Error
	return subs, err
}

func (r *pushSubscriptionRepository) FindByUser(db *gorm.DB, userID string) ([]models.PushSubscription, error) {
	var subs []models.PushSubscription
	err := db.Where("user_id = ?", userID).Order("created_at ASC").Find(&subs).Error
	return subs, err
}

func (r *pushSubscriptionRepository) DeleteByEndpoint(db *gorm.DB, endpoint string) error {
	result := db.Where("endpoint = ?", endpoint).Delete(&models.PushSubscription{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSubscriptionNotFound
	}
	return nil
}
