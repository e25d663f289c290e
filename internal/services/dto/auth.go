package dto

// RegisterRequest - запрос регистрации
type RegisterRequest struct {
	Name                 string `json:"name" form:"name" validate:"required,max=255"`
	Email                string `json:"email" form:"email" validate:"required,email,max=255"`
	Password             string `json:"password" form:"password" validate:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" form:"password_confirmation" validate:"required,eqfield=Password"`
	Role                 string `json:"role" form:"role" validate:"omitempty,is-self-role"`
	Phone                string `json:"phone" form:"phone" validate:"omitempty,max=50"`
}

// LoginRequest - запрос входа
type LoginRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
}

// AuthResponse - токен и пользователь
type AuthResponse struct {
	Token     string        `json:"token"`
	TokenType string        `json:"token_type"`
	ExpiresIn int64         `json:"expires_in"` // секунды
	User      *UserResponse `json:"user"`
}
