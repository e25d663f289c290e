package push

import (
	"context"
	"errors"
	"fmt"

	"estate_backend/internal/models"
)

// ErrSubscriptionGone - получатель больше не существует (HTTP 404/410, DeviceNotRegistered), подписку надо удалить
var ErrSubscriptionGone = errors.New("push subscription is gone")

// Message - содержимое push-уведомления
type Message struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	URL   string            `json:"url,omitempty"`
	Data  map[string]string `json:"data,omitempty"`
}

// Sender доставляет сообщение одной подписке
type Sender interface {
	Send(ctx context.Context, sub *models.PushSubscription, msg Message) error
}

// KindRouter выбирает Sender по типу подписки (web / expo)
type KindRouter struct {
	senders map[models.PushKind]Sender
}

func NewKindRouter(web, expo Sender) *KindRouter {
	r := &KindRouter{senders: make(map[models.PushKind]Sender, 2)}
	if web != nil {
		r.senders[models.PushKindWeb] = web
	}
	if expo != nil {
		r.senders[models.PushKindExpo] = expo
	}
	return r
}

func (r *KindRouter) Send(ctx context.Context, sub *models.PushSubscription, msg Message) error {
	sender, ok := r.senders[sub.Kind]
	if !ok {
		return fmt.Errorf("no push sender configured for kind %q", sub.Kind)
	}
	return sender.Send(ctx, sub, msg)
}
