package push

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"

	"estate_backend/internal/models"
)

// WebPushSender отправляет браузерные уведомления по протоколу Web Push с VAPID
type WebPushSender struct {
	publicKey  string
	privateKey string
	subscriber string
	ttl        int
	httpClient *http.Client
}

func NewWebPushSender(publicKey, privateKey, subscriber string, ttl int) (*WebPushSender, error) {
	if publicKey == "" || privateKey == "" {
		return nil, fmt.Errorf("VAPID keys are required for web push")
	}
	if ttl <= 0 {
		ttl = 3600
	}
	return &WebPushSender{
		publicKey:  publicKey,
		privateKey: privateKey,
		subscriber: subscriber,
		ttl:        ttl,
	}, nil
}

// WithHTTPClient подменяет HTTP-клиент (тесты)
func (s *WebPushSender) WithHTTPClient(client *http.Client) *WebPushSender {
	s.httpClient = client
	return s
}

func (s *WebPushSender) Send(ctx context.Context, sub *models.PushSubscription, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode push payload: %w", err)
	}

	resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			Auth:   sub.Auth,
			P256dh: sub.P256dh,
		},
	}, &webpush.Options{
		HTTPClient:      s.httpClient,
		Subscriber:      s.subscriber,
		VAPIDPublicKey:  s.publicKey,
		VAPIDPrivateKey: s.privateKey,
		TTL:             s.ttl,
	})
	if err != nil {
		return fmt.Errorf("failed to send web push: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return ErrSubscriptionGone
	case resp.StatusCode >= 400:
		return fmt.Errorf("push service returned status %d", resp.StatusCode)
	}
	return nil
}

// GenerateVAPIDKeys создает новую пару ключей (estatectl push vapid-keys)
func GenerateVAPIDKeys() (publicKey, privateKey string, err error) {
	privateKey, publicKey, err = webpush.GenerateVAPIDKeys()
	return publicKey, privateKey, err
}
