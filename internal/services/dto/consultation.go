package dto

import (
	"time"

	"estate_backend/internal/models"
)

type CreateConsultationRequest struct {
	Name          string     `json:"name" validate:"required,max=255"`
	Email         string     `json:"email" validate:"required,email"`
	Phone         string     `json:"phone" validate:"omitempty,max=50"`
	ServiceType   string     `json:"service_type" validate:"required,max=100"`
	PreferredDate *time.Time `json:"preferred_date"`
	Message       string     `json:"message" validate:"omitempty,max=5000"`
}

type ConsultationResponse struct {
	ID              string               `json:"id"`
	UserID          *string              `json:"user_id"`
	Name            string               `json:"name"`
	Email           string               `json:"email"`
	Phone           string               `json:"phone,omitempty"`
	ServiceType     string               `json:"service_type"`
	PreferredDate   *time.Time           `json:"preferred_date,omitempty"`
	Message         string               `json:"message,omitempty"`
	Status          models.RequestStatus `json:"status"`
	ResponseMessage string               `json:"response_message,omitempty"`
	RespondedAt     *time.Time           `json:"responded_at,omitempty"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}
