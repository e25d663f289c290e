package repositories

import (
	"errors"
	"time"

	"estate_backend/internal/models"

	"gorm.io/gorm"
)

var ErrNotificationNotFound = errors.New("notification not found")

// Типы уведомлений
const (
	NotificationTypePropertySubmitted = "property_submitted"
	NotificationTypePropertyApproved  = "property_approved"
	NotificationTypeNewInquiry        = "new_inquiry"
	NotificationTypeNewConsultation   = "new_consultation"
	NotificationTypeInquiryResponded  = "inquiry_responded"
	NotificationTypeBlogPostPublished = "blog_post_published"
)

type NotificationRepository interface {
	Create(db *gorm.DB, notification *models.Notification) error
	CreateBulk(db *gorm.DB, notifications []*models.Notification) error
	FindForUser(db *gorm.DB, id, userID string) (*models.Notification, error)
	ListForUser(db *gorm.DB, userID string, unreadOnly bool, paging Paging) ([]models.Notification, int64, error)
	CountUnread(db *gorm.DB, userID string) (int64, error)
	MarkAsRead(db *gorm.DB, id, userID string, at time.Time) error
	MarkAllAsRead(db *gorm.DB, userID string, at time.Time) (int64, error)
	Delete(db *gorm.DB, id, userID string) error
}

type notificationRepository struct{}

func NewNotificationRepository() NotificationRepository {
	return &notificationRepository{}
}

func (r *notificationRepository) Create(db *gorm.DB, notification *models.Notification) error {
	if notification.UserID == "" || notification.Title == "" {
		return errors.New("invalid notification data")
	}
	return db.Create(notification).Error
}

func (r *notificationRepository) CreateBulk(db *gorm.DB, notifications []*models.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	return db.CreateInBatches(notifications, 100).Error
}

// FindForUser - чужое уведомление неотличимо от отсутствующего
func (r *notificationRepository) FindForUser(db *gorm.DB, id, userID string) (*models.Notification, error) {
	var notification models.Notification
	err := db.Where("id = ? AND user_id = ?", id, userID).First(&notification).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, err
	}
	return &notification, nil
}

func (r *notificationRepository) ListForUser(db *gorm.DB, userID string, unreadOnly bool, paging Paging) ([]models.Notification, int64, error) {
	query := db.Model(&models.Notification{}).Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("read_at IS NULL")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var notifications []models.Notification
	err := paginate(query.Order("created_at DESC"), paging).Find(&notifications).Error
	return notifications, total, err
}

func (r *notificationRepository) CountUnread(db *gorm.DB, userID string) (int64, error) {
	var count int64
	err := db.Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Count(&count).Error
	return count, err
}

// MarkAsRead идемпотентен: уже прочитанное уведомление не трогается
func (r *notificationRepository) MarkAsRead(db *gorm.DB, id, userID string, at time.Time) error {
	if _, err := r.FindForUser(db, id, userID); err != nil {
		return err
	}
	return db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ? AND read_at IS NULL", id, userID).
		Update("read_at", at).Error
}

func (r *notificationRepository) MarkAllAsRead(db *gorm.DB, userID string, at time.Time) (int64, error) {
	result := db.Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Update("read_at", at)
	return result.RowsAffected, result.Error
}

func (r *notificationRepository) Delete(db *gorm.DB, id, userID string) error {
	result := db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Notification{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}
