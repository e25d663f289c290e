package models

import "time"

// Inquiry - запрос посетителя по объекту недвижимости (или общий)
type Inquiry struct {
	BaseModel
	PropertyID      *string   `gorm:"type:varchar(36);index"`
	Property        *Property `gorm:"foreignKey:PropertyID;constraint:OnDelete:SET NULL"`
	UserID          *string   `gorm:"type:varchar(36);index"`
	Name            string    `gorm:"not null"`
	Email           string    `gorm:"not null"`
	Phone           string
	Subject         string
	Message         string        `gorm:"type:text;not null"`
	Status          RequestStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
	ResponseMessage string        `gorm:"type:text"`
	RespondedAt     *time.Time
	RespondedBy     *string `gorm:"type:varchar(36)"`
}

// Consultation - заявка на консультацию (smart home, покупка, оценка)
type Consultation struct {
	BaseModel
	UserID          *string `gorm:"type:varchar(36);index"`
	Name            string  `gorm:"not null"`
	Email           string  `gorm:"not null"`
	Phone           string
	ServiceType     string
	PreferredDate   *time.Time
	Message         string        `gorm:"type:text"`
	Status          RequestStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
	ResponseMessage string        `gorm:"type:text"`
	RespondedAt     *time.Time
	RespondedBy     *string `gorm:"type:varchar(36)"`
}
