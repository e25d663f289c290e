package models

import (
	"time"

	"gorm.io/datatypes"
)

type Notification struct {
	BaseModel
	UserID  string `gorm:"type:varchar(36);not null;index"`
	Type    string `gorm:"not null"` // "property_submitted", "property_approved", "new_inquiry"
	Title   string `gorm:"not null"`
	Message string
	Data    datatypes.JSON
	ReadAt  *time.Time `gorm:"index"` // nil = не прочитано
}

func (n *Notification) IsRead() bool {
	return n.ReadAt != nil
}
