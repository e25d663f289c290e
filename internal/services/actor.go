package services

import "estate_backend/internal/models"

// Actor - аутентифицированный пользователь, от имени которого выполняется операция.
// Нулевое значение означает анонимный запрос.
type Actor struct {
	UserID string
	Role   models.UserRole
}

func (a Actor) IsAuthenticated() bool {
	return a.UserID != ""
}

func (a Actor) IsAdmin() bool {
	return a.Role == models.UserRoleAdmin
}

func (a Actor) IsAgent() bool {
	return a.Role == models.UserRoleAgent
}

func (a Actor) userIDPtr() *string {
	if a.UserID == "" {
		return nil
	}
	id := a.UserID
	return &id
}
