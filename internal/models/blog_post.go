package models

import "time"

type BlogPost struct {
	BaseModel
	UserID        string `gorm:"type:varchar(36);not null;index"`
	Author        *User  `gorm:"foreignKey:UserID"`
	Title         string `gorm:"not null"`
	Slug          string `gorm:"uniqueIndex;not null"`
	Subtitle      string
	Excerpt       string     `gorm:"type:text"`
	Summary       string     `gorm:"type:text"`
	Content       string     `gorm:"type:text;not null"`
	Category      string     `gorm:"index"`
	FeaturedImage string     // путь в storage (blogs/...)
	Status        BlogStatus `gorm:"type:varchar(20);not null;default:'draft';index"`
	PublishedAt   *time.Time
}
