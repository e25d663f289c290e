package validator

import (
	"log"

	"estate_backend/internal/models"

	"github.com/go-playground/validator/v10"
)

// MediaCategories - категории, которые проверяет утилита восстановления изображений
var MediaCategories = []string{"blog", "property", "profile_picture", "service"}

func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	mustRegister("is-user-role", validateUserRole)
	mustRegister("is-self-role", validateSelfRole)
	mustRegister("is-property-status", validatePropertyStatus)
	mustRegister("is-blog-status", validateBlogStatus)
	mustRegister("is-request-status", validateRequestStatus)
	mustRegister("is-media-category", validateMediaCategory)
}

// Пустые значения пропускаются: для них есть 'required'.

func validateUserRole(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == "" || models.UserRole(value).Valid()
}

// is-self-role: при регистрации нельзя выбрать admin
func validateSelfRole(fl validator.FieldLevel) bool {
	switch models.UserRole(fl.Field().String()) {
	case "", models.UserRoleAgent, models.UserRoleUser:
		return true
	}
	return false
}

func validatePropertyStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == "" || models.PropertyStatus(value).Valid()
}

func validateBlogStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == "" || models.BlogStatus(value).Valid()
}

func validateRequestStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == "" || models.RequestStatus(value).Valid()
}

func validateMediaCategory(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	for _, c := range MediaCategories {
		if c == value {
			return true
		}
	}
	return false
}
