package dto

import "time"

// ServiceRequest - услуга каталога smart home
type ServiceRequest struct {
	Title       string `json:"title" form:"title" validate:"required,max=255"`
	Description string `json:"description" form:"description" validate:"omitempty,max=20000"`
	IsActive    *bool  `json:"is_active" form:"is_active"`
	SortOrder   int    `json:"sort_order" form:"sort_order" validate:"gte=0"`

	Image *UploadedFile `json:"-" form:"-"`
}

type ServiceResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Image       string    `json:"image,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	IsActive    bool      `json:"is_active"`
	SortOrder   int       `json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
