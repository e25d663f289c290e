package auth

import "estate_backend/internal/models"

// Роль - простая строка, проверка сводится к сравнению.

func IsAdmin(role string) bool {
	return role == string(models.UserRoleAdmin)
}

// CanAuthorContent - может ли роль публиковать блог
func CanAuthorContent(role string) bool {
	return role == string(models.UserRoleAdmin) || role == string(models.UserRoleAgent)
}

// SelfAssignableRole - роли, доступные при регистрации
func SelfAssignableRole(role string) bool {
	return role == string(models.UserRoleAgent) || role == string(models.UserRoleUser)
}
