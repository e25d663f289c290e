package services

import (
	"context"
	"errors"
	"strings"

	"estate_backend/internal/logger"
	"estate_backend/internal/models"
	"estate_backend/internal/push"
	"estate_backend/internal/repositories"
	"estate_backend/internal/services/dto"
	"estate_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type PushService interface {
	VAPIDPublicKey() string
	Subscribe(ctx context.Context, db *gorm.DB, actor Actor, req *dto.SubscribeRequest) (*dto.PushSubscriptionResponse, error)
	Unsubscribe(ctx context.Context, db *gorm.DB, endpoint string) error
	// Broadcast отправляет сообщение всем подписчикам. Ошибки доставки логируются,
	// подписки с ответом 404/410 удаляются.
	Broadcast(ctx context.Context, db *gorm.DB, msg push.Message) (*dto.BroadcastResult, error)
}

type pushService struct {
	subscriptionRepo repositories.PushSubscriptionRepository
	sender           push.Sender
	vapidPublicKey   string
}

func NewPushService(subscriptionRepo repositories.PushSubscriptionRepository, sender push.Sender, vapidPublicKey string) PushService {
	return &pushService{
		subscriptionRepo: subscriptionRepo,
		sender:           sender,
		vapidPublicKey:   vapidPublicKey,
	}
}

func (s *pushService) VAPIDPublicKey() string {
	return s.vapidPublicKey
}

func (s *pushService) Subscribe(ctx context.Context, db *gorm.DB, actor Actor, req *dto.SubscribeRequest) (*dto.PushSubscriptionResponse, error) {
	sub := &models.PushSubscription{UserID: actor.userIDPtr()}

	if token := strings.TrimSpace(req.ExpoToken); token != "" {
		if !push.ValidExpoToken(token) {
			return nil, apperrors.FieldError("expo_token", "The expo token is invalid.")
		}
		sub.Kind = models.PushKindExpo
		sub.Endpoint = token
	} else {
		if req.Endpoint == "" || req.Keys == nil {
			return nil, apperrors.FieldError("keys", "This field is required")
		}
		sub.Kind = models.PushKindWeb
		sub.Endpoint = req.Endpoint
		sub.P256dh = req.Keys.P256dh
		sub.Auth = req.Keys.Auth
	}

	if err := s.subscriptionRepo.Upsert(db, sub); err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "push subscription saved", "kind", sub.Kind)
	return &dto.PushSubscriptionResponse{ID: sub.ID, Kind: string(sub.Kind), Endpoint: sub.Endpoint}, nil
}

func (s *pushService) Unsubscribe(ctx context.Context, db *gorm.DB, endpoint string) error {
	if err := s.subscriptionRepo.DeleteByEndpoint(db, endpoint); err != nil {
		if errors.Is(err, repositories.ErrSubscriptionNotFound) {
			return apperrors.ErrSubscriptionNotFound
		}
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *pushService) Broadcast(ctx context.Context, db *gorm.DB, msg push.Message) (*dto.BroadcastResult, error) {
	// push не настроен (нет VAPID-ключей и Expo выключен)
	if s.sender == nil {
		return &dto.BroadcastResult{}, nil
	}

	subs, err := s.subscriptionRepo.FindAll(db)
	if err != nil {
		return nil, err
	}

	result := &dto.BroadcastResult{}
	for i := range subs {
		sub := &subs[i]
		err := s.sender.Send(ctx, sub, msg)
		switch {
		case err == nil:
			result.Sent++
		case errors.Is(err, push.ErrSubscriptionGone):
			if delErr := s.subscriptionRepo.DeleteByEndpoint(db, sub.Endpoint); delErr != nil && !errors.Is(delErr, repositories.ErrSubscriptionNotFound) {
				logger.CtxWithError(ctx, "failed to delete expired push subscription", delErr, "subscription_id", sub.ID)
			}
			result.Removed++
		default:
			logger.CtxWarn(ctx, "push delivery failed", "subscription_id", sub.ID, "kind", sub.Kind, "error", err.Error())
			result.Failed++
		}
	}

	logger.CtxInfo(ctx, "push broadcast finished",
		"sent", result.Sent, "failed", result.Failed, "removed", result.Removed)
	return result, nil
}
