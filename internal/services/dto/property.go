package dto

import (
	"time"

	"estate_backend/internal/models"
)

// PropertyRequest - создание и редактирование объекта (JSON или multipart)
type PropertyRequest struct {
	Title        string   `json:"title" form:"title" validate:"required,max=255"`
	Description  string   `json:"description" form:"description" validate:"omitempty,max=20000"`
	Location     string   `json:"location" form:"location" validate:"required_without=Address,max=255"`
	Address      string   `json:"address" form:"address" validate:"required_without=Location,max=255"`
	City         string   `json:"city" form:"city" validate:"omitempty,max=100"`
	Price        *float64 `json:"price" form:"price" validate:"required,gte=0"`
	Bedrooms     int      `json:"bedrooms" form:"bedrooms" validate:"gte=0,lte=100"`
	Bathrooms    int      `json:"bathrooms" form:"bathrooms" validate:"gte=0,lte=100"`
	Size         float64  `json:"size" form:"size" validate:"gte=0"`
	Type         string   `json:"type" form:"type" validate:"omitempty,max=50"`
	IsFeatured   bool     `json:"is_featured" form:"is_featured"`
	IsSmartHome  bool     `json:"is_smart_home" form:"is_smart_home"`
	AgentName    string   `json:"agent_name" form:"agent_name" validate:"omitempty,max=255"`
	AgentPhone   string   `json:"agent_phone" form:"agent_phone" validate:"omitempty,max=50"`
	AgentEmail   string   `json:"agent_email" form:"agent_email" validate:"omitempty,email"`
	RemoveImages []string `json:"remove_images" form:"remove_images[]"`

	// Images заполняется хендлером из multipart-поля images[]
	Images []*UploadedFile `json:"-" form:"-"`
}

type PropertyQuery struct {
	City        string   `form:"city" validate:"omitempty,max=100"`
	Type        string   `form:"type" validate:"omitempty,max=50"`
	MinPrice    *float64 `form:"min_price" validate:"omitempty,gte=0"`
	MaxPrice    *float64 `form:"max_price" validate:"omitempty,gte=0"`
	Bedrooms    *int     `form:"bedrooms" validate:"omitempty,gte=0"`
	IsFeatured  *bool    `form:"is_featured"`
	IsSmartHome *bool    `form:"is_smart_home"`
	Status      string   `form:"status" validate:"omitempty,is-property-status"`
	Search      string   `form:"search" validate:"omitempty,max=100"`
	Page        int      `form:"page" validate:"omitempty,min=1"`
	PerPage     int      `form:"per_page" validate:"omitempty,min=1,max=100"`
}

type AgentSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

type PropertyResponse struct {
	ID          string                `json:"id"`
	Title       string                `json:"title"`
	Slug        string                `json:"slug"`
	Description string                `json:"description"`
	Location    string                `json:"location"`
	Address     string                `json:"address"`
	City        string                `json:"city"`
	Price       float64               `json:"price"`
	Bedrooms    int                   `json:"bedrooms"`
	Bathrooms   int                   `json:"bathrooms"`
	Size        float64               `json:"size"`
	Type        string                `json:"type"`
	Images      []string              `json:"images"`     // пути в хранилище
	ImageURLs   []string              `json:"image_urls"` // публичные URL
	IsFeatured  bool                  `json:"is_featured"`
	IsSmartHome bool                  `json:"is_smart_home"`
	Status      models.PropertyStatus `json:"status"`
	AgentID     string                `json:"agent_id"`
	Agent       *AgentSummary         `json:"agent,omitempty"`
	AgentName   string                `json:"agent_name,omitempty"`
	AgentPhone  string                `json:"agent_phone,omitempty"`
	AgentEmail  string                `json:"agent_email,omitempty"`
	ApprovedAt  *time.Time            `json:"approved_at,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}
