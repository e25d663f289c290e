package dto

type PushKeys struct {
	P256dh string `json:"p256dh" validate:"required"`
	Auth   string `json:"auth" validate:"required"`
}

// SubscribeRequest - либо web push подписка браузера, либо expo-токен мобильного приложения
type SubscribeRequest struct {
	Endpoint  string    `json:"endpoint" validate:"required_without=ExpoToken,omitempty,url"`
	Keys      *PushKeys `json:"keys" validate:"required_with=Endpoint,omitempty"`
	ExpoToken string    `json:"expo_token" validate:"required_without=Endpoint,omitempty,max=255"`
}

type UnsubscribeRequest struct {
	Endpoint string `json:"endpoint" validate:"required"`
}

type VAPIDKeyResponse struct {
	PublicKey string `json:"public_key"`
}

type PushSubscriptionResponse struct {
	ID       string `json:"id"`
	Kind     string `json:"kind"`
	Endpoint string `json:"endpoint"`
}

type BroadcastResult struct {
	Sent    int `json:"sent"`
	Failed  int `json:"failed"`
	Removed int `json:"removed"`
}

// BroadcastRequest - ручная рассылка администратора
type BroadcastRequest struct {
	Title string `json:"title" validate:"required,max=255"`
	Body  string `json:"body" validate:"required,max=1000"`
	URL   string `json:"url" validate:"omitempty,max=1000"`
}
