package models

import (
	"time"

	"gorm.io/datatypes"
)

// OutboxEvent пишется в той же транзакции, что и изменение состояния;
// побочные эффекты выполняет воркер.
type OutboxEvent struct {
	BaseModel
	EventType   string         `gorm:"not null;index"`
	AggregateID string         `gorm:"type:varchar(36);index"`
	Payload     datatypes.JSON
	Status      OutboxStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
	Attempts    int          `gorm:"not null;default:0"`
	LastError   string       `gorm:"type:text"`
	AvailableAt time.Time    `gorm:"index"`
	ProcessedAt *time.Time
}
