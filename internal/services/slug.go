package services

import (
	"errors"
	"fmt"

	"estate_backend/internal/repositories"

	"github.com/gosimple/slug"
)

const maxSlugAttempts = 5

// makeSlug - slug из заголовка; для заголовков без латиницы/цифр используется fallback
func makeSlug(title, fallback string) string {
	s := slug.Make(title)
	if s == "" {
		return fallback
	}
	return s
}

// uniqueSlug подбирает base, base-1, base-2, ... пока exists не вернет false
func uniqueSlug(base string, exists func(candidate string) (bool, error)) (string, error) {
	candidate := base
	for i := 1; ; i++ {
		taken, err := exists(candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

// withSlugRetry повторяет вставку, если между проверкой и insert slug занял параллельный запрос.
// Уникальный индекс остается последней линией защиты.
func withSlugRetry(fn func() error) error {
	var err error
	for attempt := 0; attempt < maxSlugAttempts; attempt++ {
		err = fn()
		if !errors.Is(err, repositories.ErrSlugTaken) {
			return err
		}
	}
	return err
}
