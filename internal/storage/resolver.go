package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
)

// Resolver отвечает на вопрос "есть ли файл и где его раздавать" с учётом
// запасной публичной папки (старые загрузки лежат в public/).
type Resolver struct {
	primary   Storage
	publicDir string
	publicURL string
}

func NewResolver(primary Storage, publicDir, publicURL string) *Resolver {
	return &Resolver{primary: primary, publicDir: publicDir, publicURL: publicURL}
}

// Storage возвращает основное хранилище
func (r *Resolver) Storage() Storage {
	return r.primary
}

// IsAbsoluteURL - внешние ссылки не проверяются и считаются существующими
func IsAbsoluteURL(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") || strings.HasPrefix(path, "//")
}

// NormalizePath убирает префиксы публичного URL, которые попадали в БД ("/storage/blogs/a.jpg" -> "blogs/a.jpg")
func NormalizePath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" || IsAbsoluteURL(path) {
		return path
	}
	path = strings.TrimPrefix(path, "/")
	path = strings.TrimPrefix(path, "storage/")
	return path
}

func (r *Resolver) existsInPublic(path string) bool {
	if r.publicDir == "" {
		return false
	}
	clean := filepath.Clean("/" + path)
	info, err := os.Stat(filepath.Join(r.publicDir, clean))
	return err == nil && !info.IsDir()
}

// Exists проверяет основное хранилище, затем публичную папку
func (r *Resolver) Exists(ctx context.Context, path string) (bool, error) {
	if path == "" {
		return false, nil
	}
	if IsAbsoluteURL(path) {
		return true, nil
	}
	path = NormalizePath(path)

	ok, err := r.primary.Exists(ctx, path)
	if err != nil {
		return false, err
	}
	if ok {
		return true, nil
	}
	return r.existsInPublic(path), nil
}

// URL возвращает публичный адрес файла; пустой путь даёт пустую строку
func (r *Resolver) URL(ctx context.Context, path string) string {
	if path == "" {
		return ""
	}
	if IsAbsoluteURL(path) {
		return path
	}
	path = NormalizePath(path)

	if ok, err := r.primary.Exists(ctx, path); err == nil && !ok && r.existsInPublic(path) {
		return joinURL(r.publicURL, path)
	}

	url, err := r.primary.GetURL(ctx, path)
	if err != nil {
		return ""
	}
	return url
}

// URLs - URL для списка путей
func (r *Resolver) URLs(ctx context.Context, paths []string) []string {
	urls := make([]string, 0, len(paths))
	for _, p := range paths {
		if u := r.URL(ctx, p); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}
