package push

import (
	"context"
	"fmt"

	expo "github.com/oliveroneill/exponent-server-sdk-golang/sdk"

	"estate_backend/internal/models"
)

// ExpoSender отправляет уведомления в мобильное приложение через Expo Push API.
// Для expo-подписок Endpoint хранит токен вида ExponentPushToken[...].
type ExpoSender struct {
	client *expo.PushClient
}

func NewExpoSender(client *expo.PushClient) *ExpoSender {
	if client == nil {
		client = expo.NewPushClient(nil)
	}
	return &ExpoSender{client: client}
}

// ValidExpoToken проверяет формат токена до сохранения подписки
func ValidExpoToken(token string) bool {
	_, err := expo.NewExponentPushToken(token)
	return err == nil
}

func (s *ExpoSender) Send(ctx context.Context, sub *models.PushSubscription, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	token, err := expo.NewExponentPushToken(sub.Endpoint)
	if err != nil {
		return ErrSubscriptionGone
	}

	data := make(map[string]string, len(msg.Data)+1)
	for k, v := range msg.Data {
		data[k] = v
	}
	if msg.URL != "" {
		data["url"] = msg.URL
	}

	resp, err := s.client.Publish(&expo.PushMessage{
		To:       []expo.ExponentPushToken{token},
		Title:    msg.Title,
		Body:     msg.Body,
		Data:     data,
		Sound:    "default",
		Priority: expo.DefaultPriority,
	})
	if err != nil {
		return fmt.Errorf("failed to publish expo push: %w", err)
	}
	if resp.Details["error"] == "DeviceNotRegistered" {
		return ErrSubscriptionGone
	}
	if err := resp.ValidateResponse(); err != nil {
		return fmt.Errorf("expo push rejected: %w", err)
	}
	return nil
}
