package models

type PushSubscription struct {
	BaseModel
	UserID   *string  `gorm:"type:varchar(36);index"`
	Kind     PushKind `gorm:"type:varchar(10);not null;default:'web'"`
	Endpoint string   `gorm:"uniqueIndex;not null"` // для expo - сам push-токен
	P256dh   string
	Auth     string
}
