package dto

import (
	"time"

	"estate_backend/internal/models"
)

// BlogPostRequest - создание/редактирование поста; featured_image приходит файлом
type BlogPostRequest struct {
	Title    string `json:"title" form:"title" validate:"required,max=255"`
	Subtitle string `json:"subtitle" form:"subtitle" validate:"omitempty,max=255"`
	Excerpt  string `json:"excerpt" form:"excerpt" validate:"omitempty,max=1000"`
	Summary  string `json:"summary" form:"summary" validate:"omitempty,max=2000"`
	Content  string `json:"content" form:"content" validate:"required"`
	Category string `json:"category" form:"category" validate:"required,max=100"`
	Status   string `json:"status" form:"status" validate:"omitempty,is-blog-status"`

	FeaturedImage       *UploadedFile `json:"-" form:"-"`
	RemoveFeaturedImage bool          `json:"remove_featured_image" form:"remove_featured_image"`
}

type BlogPostQuery struct {
	Category string `form:"category" validate:"omitempty,max=100"`
	Search   string `form:"search" validate:"omitempty,max=100"`
	Status   string `form:"status" validate:"omitempty,is-blog-status"`
	Page     int    `form:"page" validate:"omitempty,min=1"`
	PerPage  int    `form:"per_page" validate:"omitempty,min=1,max=100"`
}

type BlogPostResponse struct {
	ID               string            `json:"id"`
	Title            string            `json:"title"`
	Slug             string            `json:"slug"`
	Subtitle         string            `json:"subtitle,omitempty"`
	Excerpt          string            `json:"excerpt,omitempty"`
	Summary          string            `json:"summary,omitempty"`
	Content          string            `json:"content"`
	Category         string            `json:"category"`
	FeaturedImage    string            `json:"featured_image,omitempty"`
	FeaturedImageURL string            `json:"featured_image_url,omitempty"`
	Status           models.BlogStatus `json:"status"`
	PublishedAt      *time.Time        `json:"published_at,omitempty"`
	AuthorID         string            `json:"author_id"`
	AuthorName       string            `json:"author_name,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}
