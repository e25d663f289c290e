package dto

import (
	"time"

	"estate_backend/internal/models"
)

type UserResponse struct {
	ID                string            `json:"id"`
	Name              string            `json:"name"`
	Email             string            `json:"email"`
	Role              models.UserRole   `json:"role"`
	Status            models.UserStatus `json:"status"`
	IsApproved        bool              `json:"is_approved"`
	Phone             string            `json:"phone,omitempty"`
	Bio               string            `json:"bio,omitempty"`
	ProfilePicture    string            `json:"profile_picture,omitempty"`
	ProfilePictureURL string            `json:"profile_picture_url,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
}

// UpdateProfileRequest - PATCH /api/user; смена пароля требует current_password
type UpdateProfileRequest struct {
	Name                 *string `json:"name" validate:"omitempty,min=1,max=255"`
	Phone                *string `json:"phone" validate:"omitempty,max=50"`
	Bio                  *string `json:"bio" validate:"omitempty,max=2000"`
	CurrentPassword      string  `json:"current_password" validate:"required_with=Password"`
	Password             string  `json:"password" validate:"omitempty,min=8"`
	PasswordConfirmation string  `json:"password_confirmation" validate:"eqfield=Password"`
}

// AdminUpdateUserRequest - PATCH /api/admin/users/{id}
type AdminUpdateUserRequest struct {
	Role       *string `json:"role" validate:"omitempty,is-user-role"`
	Status     *string `json:"status" validate:"omitempty,oneof=active suspended"`
	IsApproved *bool   `json:"is_approved"`
}

type UserListQuery struct {
	Role    string `form:"role" validate:"omitempty,is-user-role"`
	Status  string `form:"status" validate:"omitempty,oneof=active suspended"`
	Search  string `form:"search" validate:"omitempty,max=100"`
	Page    int    `form:"page" validate:"omitempty,min=1"`
	PerPage int    `form:"per_page" validate:"omitempty,min=1,max=100"`
}
