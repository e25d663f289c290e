package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BaseModel struct {
	ID        string    `gorm:"type:varchar(36);primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// BeforeCreate генерирует UUID, если ID не задан
func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// All возвращает все модели для миграции
func All() []any {
	return []any{
		&User{},
		&Property{},
		&BlogPost{},
		&Inquiry{},
		&Consultation{},
		&Service{},
		&Notification{},
		&PushSubscription{},
		&OutboxEvent{},
	}
}
