package dto

import (
	"time"

	"estate_backend/internal/models"
)

type CreateInquiryRequest struct {
	PropertyID string `json:"property_id" form:"property_id" validate:"omitempty,max=64"`
	Name       string `json:"name" form:"name" validate:"required,max=255"`
	Email      string `json:"email" form:"email" validate:"required,email"`
	Phone      string `json:"phone" form:"phone" validate:"omitempty,max=50"`
	Subject    string `json:"subject" form:"subject" validate:"omitempty,max=255"`
	Message    string `json:"message" form:"message" validate:"required,max=5000"`
}

// RespondRequest - общий для inquiry и consultation: статус и/или ответ
type RespondRequest struct {
	Status          string  `json:"status" validate:"omitempty,is-request-status"`
	ResponseMessage *string `json:"response_message" validate:"omitempty,max=5000"`
}

type RequestListQuery struct {
	Status      string `form:"status" validate:"omitempty,is-request-status"`
	PropertyID  string `form:"property_id" validate:"omitempty,max=64"`
	ServiceType string `form:"service_type" validate:"omitempty,max=100"`
	Page        int    `form:"page" validate:"omitempty,min=1"`
	PerPage     int    `form:"per_page" validate:"omitempty,min=1,max=100"`
}

type PropertySummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Slug  string `json:"slug"`
}

type InquiryResponse struct {
	ID              string               `json:"id"`
	PropertyID      *string              `json:"property_id"`
	Property        *PropertySummary     `json:"property,omitempty"`
	UserID          *string              `json:"user_id"`
	Name            string               `json:"name"`
	Email           string               `json:"email"`
	Phone           string               `json:"phone,omitempty"`
	Subject         string               `json:"subject,omitempty"`
	Message         string               `json:"message"`
	Status          models.RequestStatus `json:"status"`
	ResponseMessage string               `json:"response_message,omitempty"`
	RespondedAt     *time.Time           `json:"responded_at,omitempty"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}
