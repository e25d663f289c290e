package auth

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

// Длина пароля считается в символах; bcrypt использует только первые 72 байта
const (
	MinPasswordLength = 8
	maxPasswordBytes  = 72
)

var (
	ErrPasswordTooShort = fmt.Errorf("password must be at least %d characters long", MinPasswordLength)
	ErrPasswordTooLong  = fmt.Errorf("password may not be greater than %d bytes", maxPasswordBytes)
)

// HashCost - стоимость bcrypt для новых хешей; хеши с другой стоимостью пересчитываются при входе
var HashCost = bcrypt.DefaultCost

func HashPassword(password string) (string, error) {
	if len(password) > maxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), HashCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPasswordHash принимает и перенесенные хеши с префиксом $2y$
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// NeedsRehash - хеш создан с другой стоимостью или не разбирается как bcrypt
func NeedsRehash(hash string) bool {
	cost, err := bcrypt.Cost([]byte(hash))
	return err != nil || cost != HashCost
}

func ValidatePassword(password string) error {
	switch {
	case utf8.RuneCountInString(password) < MinPasswordLength:
		return ErrPasswordTooShort
	case len(password) > maxPasswordBytes:
		return ErrPasswordTooLong
	}
	return nil
}

// IsPasswordPolicyError отличает нарушение политики от сбоя bcrypt
func IsPasswordPolicyError(err error) bool {
	return errors.Is(err, ErrPasswordTooShort) || errors.Is(err, ErrPasswordTooLong)
}
