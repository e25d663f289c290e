package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"estate_backend/internal/logger"
	"estate_backend/internal/models"
	"estate_backend/internal/repositories"
	"estate_backend/internal/services/dto"
	"estate_backend/pkg/apperrors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RealtimePublisher доставляет событие в открытые websocket-соединения пользователя
type RealtimePublisher interface {
	PublishToUser(userID string, event string, payload interface{})
}

type NotificationService interface {
	// Notify создает уведомление пользователю и отправляет его в websocket (после COMMIT, см. OnCommit)
	Notify(ctx context.Context, db *gorm.DB, userID, notificationType, title, message string, data interface{}) (*models.Notification, error)
	// NotifyAdmins - по одному уведомлению каждому активному администратору
	NotifyAdmins(ctx context.Context, db *gorm.DB, notificationType, title, message string, data interface{}) (int, error)

	List(ctx context.Context, db *gorm.DB, userID string, query *dto.NotificationQuery) (*dto.ListResponse[dto.NotificationResponse], error)
	UnreadCount(ctx context.Context, db *gorm.DB, userID string) (int64, error)
	MarkAsRead(ctx context.Context, db *gorm.DB, userID, notificationID string) error
	MarkAllAsRead(ctx context.Context, db *gorm.DB, userID string) (int64, error)
	Delete(ctx context.Context, db *gorm.DB, userID, notificationID string) error
}

type notificationService struct {
	notificationRepo repositories.NotificationRepository
	userRepo         repositories.UserRepository
	publisher        RealtimePublisher
}

func NewNotificationService(
	notificationRepo repositories.NotificationRepository,
	userRepo repositories.UserRepository,
	publisher RealtimePublisher,
) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		publisher:        publisher,
	}
}

func encodeData(data interface{}) (datatypes.JSON, error) {
	if data == nil {
		return nil, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode notification data: %w", err)
	}
	return datatypes.JSON(raw), nil
}

func (s *notificationService) Notify(ctx context.Context, db *gorm.DB, userID, notificationType, title, message string, data interface{}) (*models.Notification, error) {
	raw, err := encodeData(data)
	if err != nil {
		return nil, err
	}

	notification := &models.Notification{
		UserID:  userID,
		Type:    notificationType,
		Title:   title,
		Message: message,
		Data:    raw,
	}
	if err := s.notificationRepo.Create(db, notification); err != nil {
		return nil, err
	}

	s.publish(ctx, notification)
	return notification, nil
}

func (s *notificationService) NotifyAdmins(ctx context.Context, db *gorm.DB, notificationType, title, message string, data interface{}) (int, error) {
	admins, err := s.userRepo.FindByRole(db, models.UserRoleAdmin)
	if err != nil {
		return 0, err
	}
	if len(admins) == 0 {
		logger.CtxWarn(ctx, "no admin accounts to notify", "type", notificationType)
		return 0, nil
	}

	raw, err := encodeData(data)
	if err != nil {
		return 0, err
	}

	notifications := make([]*models.Notification, 0, len(admins))
	for _, admin := range admins {
		notifications = append(notifications, &models.Notification{
			UserID:  admin.ID,
			Type:    notificationType,
			Title:   title,
			Message: message,
			Data:    raw,
		})
	}
	if err := s.notificationRepo.CreateBulk(db, notifications); err != nil {
		return 0, err
	}

	for _, n := range notifications {
		s.publish(ctx, n)
	}
	return len(notifications), nil
}

// publish отправляет уведомление в websocket после COMMIT: откаченная строка не доходит до клиента
func (s *notificationService) publish(ctx context.Context, n *models.Notification) {
	if s.publisher == nil {
		return
	}
	payload := toNotificationResponse(n)
	OnCommit(ctx, func() {
		s.publisher.PublishToUser(n.UserID, "notification", payload)
	})
}

func (s *notificationService) List(ctx context.Context, db *gorm.DB, userID string, query *dto.NotificationQuery) (*dto.ListResponse[dto.NotificationResponse], error) {
	paging := repositories.Paging{Page: query.Page, PerPage: query.PerPage}.Normalize()

	notifications, total, err := s.notificationRepo.ListForUser(db, userID, query.UnreadOnly, paging)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	items := make([]dto.NotificationResponse, 0, len(notifications))
	for i := range notifications {
		items = append(items, toNotificationResponse(&notifications[i]))
	}
	return &dto.ListResponse[dto.NotificationResponse]{
		Data: items,
		Meta: dto.NewPaginationMeta(paging.Page, paging.PerPage, total),
	}, nil
}

func (s *notificationService) UnreadCount(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	count, err := s.notificationRepo.CountUnread(db, userID)
	if err != nil {
		return 0, apperrors.InternalError(err)
	}
	return count, nil
}

func (s *notificationService) MarkAsRead(ctx context.Context, db *gorm.DB, userID, notificationID string) error {
	return handleNotificationError(s.notificationRepo.MarkAsRead(db, notificationID, userID, time.Now()))
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	count, err := s.notificationRepo.MarkAllAsRead(db, userID, time.Now())
	if err != nil {
		return 0, apperrors.InternalError(err)
	}
	return count, nil
}

func (s *notificationService) Delete(ctx context.Context, db *gorm.DB, userID, notificationID string) error {
	return handleNotificationError(s.notificationRepo.Delete(db, notificationID, userID))
}

// чужие уведомления неотличимы от несуществующих
func handleNotificationError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repositories.ErrNotificationNotFound) {
		return apperrors.ErrNotificationNotFound
	}
	return apperrors.InternalError(err)
}

func toNotificationResponse(n *models.Notification) dto.NotificationResponse {
	var data json.RawMessage
	if len(n.Data) > 0 {
		data = json.RawMessage(n.Data)
	}
	return dto.NotificationResponse{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		Data:      data,
		IsRead:    n.IsRead(),
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}
