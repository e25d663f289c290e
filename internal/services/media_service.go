package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"estate_backend/internal/imageprocessor"
	"estate_backend/internal/logger"
	"estate_backend/internal/services/dto"
	"estate_backend/internal/storage"
	"estate_backend/pkg/apperrors"

	"github.com/google/uuid"
)

// Категории медиа и их папки в хранилище
const (
	MediaCategoryBlog           = "blog"
	MediaCategoryProperty       = "property"
	MediaCategoryProfilePicture = "profile_picture"
	MediaCategoryService        = "service"
)

var mediaFolders = map[string]string{
	MediaCategoryBlog:           "blogs",
	MediaCategoryProperty:       "properties",
	MediaCategoryProfilePicture: "profile_pictures",
	MediaCategoryService:        "services",
}

// MediaFolder возвращает папку категории ("" для неизвестной)
func MediaFolder(category string) string {
	return mediaFolders[category]
}

// MediaService - сохранение, удаление и публичные URL изображений
type MediaService interface {
	// StoreImage проверяет файл и сохраняет его в папку категории; возвращает путь в хранилище
	StoreImage(ctx context.Context, category string, file *dto.UploadedFile) (string, error)
	// DeleteImage удаляет файл и его миниатюру; ошибки только логируются
	DeleteImage(ctx context.Context, path string)
	DeleteImages(ctx context.Context, paths []string)
	Exists(ctx context.Context, path string) (bool, error)
	URL(ctx context.Context, path string) string
	URLs(ctx context.Context, paths []string) []string
	// Open читает файл из основного хранилища (раздача /storage для не-локальных бэкендов)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}

type mediaService struct {
	resolver   *storage.Resolver
	processor  *imageprocessor.Processor
	thumbnails bool
}

func NewMediaService(resolver *storage.Resolver, processor *imageprocessor.Processor, thumbnails bool) MediaService {
	return &mediaService{
		resolver:   resolver,
		processor:  processor,
		thumbnails: thumbnails,
	}
}

func (s *mediaService) StoreImage(ctx context.Context, category string, file *dto.UploadedFile) (string, error) {
	folder := MediaFolder(category)
	if folder == "" {
		return "", apperrors.ErrUnknownCategory
	}
	if file == nil || len(file.Data) == 0 {
		return "", apperrors.FieldError(fieldName(file), "The file failed to upload.")
	}

	info, err := s.processor.Inspect(file.Data)
	if err != nil {
		switch {
		case errors.Is(err, imageprocessor.ErrTooLarge):
			return "", apperrors.FieldError(fieldName(file),
				fmt.Sprintf("The image may not be greater than %d kilobytes.", s.processor.MaxSize()/1024))
		case errors.Is(err, imageprocessor.ErrInvalidType):
			return "", apperrors.FieldError(fieldName(file), "The file must be an image (jpeg, png, gif, webp).")
		default:
			return "", apperrors.InternalError(err)
		}
	}

	path := fmt.Sprintf("%s/%s%s", folder, uuid.NewString(), info.Extension)
	if err := s.resolver.Storage().Save(ctx, path, bytes.NewReader(file.Data), info.MimeType); err != nil {
		return "", apperrors.InternalError(fmt.Errorf("failed to save image: %w", err))
	}

	if s.thumbnails {
		s.storeThumbnail(ctx, path, file.Data)
	}

	logger.CtxDebug(ctx, "image stored", "path", path, "size", info.Size, "mime", info.MimeType)
	return path, nil
}

// миниатюра необязательна: ошибка не отменяет загрузку
func (s *mediaService) storeThumbnail(ctx context.Context, path string, data []byte) {
	thumb, err := s.processor.Thumbnail(data)
	if err != nil {
		logger.CtxWithError(ctx, "failed to build thumbnail", err, "path", path)
		return
	}
	if err := s.resolver.Storage().Save(ctx, imageprocessor.ThumbnailPath(path), bytes.NewReader(thumb), "image/jpeg"); err != nil {
		logger.CtxWithError(ctx, "failed to save thumbnail", err, "path", path)
	}
}

func (s *mediaService) DeleteImage(ctx context.Context, path string) {
	if path == "" || storage.IsAbsoluteURL(path) {
		return
	}
	path = storage.NormalizePath(path)

	if err := s.resolver.Storage().Delete(ctx, path); err != nil {
		logger.CtxWithError(ctx, "failed to delete image", err, "path", path)
	}
	if !imageprocessor.IsThumbnail(path) {
		if err := s.resolver.Storage().Delete(ctx, imageprocessor.ThumbnailPath(path)); err != nil {
			logger.CtxWithError(ctx, "failed to delete thumbnail", err, "path", path)
		}
	}
}

func (s *mediaService) DeleteImages(ctx context.Context, paths []string) {
	for _, p := range paths {
		s.DeleteImage(ctx, p)
	}
}

func (s *mediaService) Exists(ctx context.Context, path string) (bool, error) {
	return s.resolver.Exists(ctx, path)
}

func (s *mediaService) URL(ctx context.Context, path string) string {
	return s.resolver.URL(ctx, path)
}

func (s *mediaService) URLs(ctx context.Context, paths []string) []string {
	return s.resolver.URLs(ctx, paths)
}

func (s *mediaService) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	return s.resolver.Storage().Get(ctx, storage.NormalizePath(path))
}

func fieldName(file *dto.UploadedFile) string {
	if file == nil || file.Field == "" {
		return "image"
	}
	return file.Field
}
