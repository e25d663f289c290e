package models

import (
	"time"

	"gorm.io/datatypes"
)

type Property struct {
	BaseModel
	AgentID string `gorm:"type:varchar(36);not null;index"`
	Agent   *User  `gorm:"foreignKey:AgentID"`

	Title       string  `gorm:"not null"`
	Slug        string  `gorm:"uniqueIndex;not null"`
	Description string  `gorm:"type:text"`
	Location    string
	Address     string
	City        string  `gorm:"index"`
	Price       float64 `gorm:"not null"`
	Bedrooms    int
	Bathrooms   int
	Size        float64
	Type        string                      `gorm:"index"`
	Images      datatypes.JSONSlice[string] `gorm:"type:json"`
	IsFeatured  bool                        `gorm:"not null;default:false"`
	IsSmartHome bool                        `gorm:"not null;default:false"`

	Status     PropertyStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
	ApprovedAt *time.Time
	ApprovedBy *string `gorm:"type:varchar(36)"`

	AgentName  string
	AgentPhone string
	AgentEmail string
}

func (p *Property) IsOwnedBy(userID string) bool {
	return userID != "" && p.AgentID == userID
}
