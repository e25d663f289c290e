package models

// Service - услуга каталога smart home, показывается на маркетинговых страницах
type Service struct {
	BaseModel
	Title       string `gorm:"not null"`
	Slug        string `gorm:"uniqueIndex;not null"`
	Description string `gorm:"type:text"`
	Image       string // путь в storage (services/...)
	IsActive    bool   `gorm:"not null"`
	SortOrder   int    `gorm:"not null;default:0"`
}
