package services

import (
	"context"
	"errors"
	"io"
	"path/filepath"

	"estate_backend/internal/logger"
	"estate_backend/internal/repositories"
	"estate_backend/internal/services/dto"
	"estate_backend/internal/storage"
	"estate_backend/pkg/apperrors"

	"gorm.io/gorm"
)

// MediaRepairService находит записи со ссылками на отсутствующие файлы и заменяет ссылки
type MediaRepairService interface {
	ScanBroken(ctx context.Context, db *gorm.DB, category string) ([]dto.BrokenImage, error)
	// RepairCategory заменяет все битые ссылки категории; при загрузке файла каждая запись получает свою копию
	RepairCategory(ctx context.Context, db *gorm.DB, req *dto.RepairRequest) (*dto.RepairResult, error)
	// RepairItem заменяет ссылку одной записи (для объекта - указанный путь или все битые пути)
	RepairItem(ctx context.Context, db *gorm.DB, category, id string, req *dto.RepairItemRequest) (*dto.RepairResult, error)
}

// mediaRef - запись и пути изображений, на которые она ссылается
type mediaRef struct {
	ID    string
	Title string
	Field string
	Paths []string
}

// mediaSource - доступ к ссылкам одной категории
type mediaSource struct {
	all     func(db *gorm.DB) ([]mediaRef, error)
	one     func(db *gorm.DB, id string) (*mediaRef, error)
	replace func(db *gorm.DB, ref *mediaRef, broken []string, replacement string) error
}

type mediaRepairService struct {
	media   MediaService
	sources map[string]mediaSource
}

func NewMediaRepairService(
	media MediaService,
	userRepo repositories.UserRepository,
	propertyRepo repositories.PropertyRepository,
	postRepo repositories.BlogPostRepository,
	serviceRepo repositories.ServiceRepository,
) MediaRepairService {
	s := &mediaRepairService{media: media}
	s.sources = map[string]mediaSource{
		MediaCategoryBlog:           blogSource(postRepo),
		MediaCategoryProperty:       propertySource(propertyRepo),
		MediaCategoryProfilePicture: profilePictureSource(userRepo),
		MediaCategoryService:        serviceSource(serviceRepo),
	}
	return s
}

func (s *mediaRepairService) source(category string) (mediaSource, error) {
	src, ok := s.sources[category]
	if !ok {
		return mediaSource{}, apperrors.ErrUnknownCategory
	}
	return src, nil
}

func (s *mediaRepairService) ScanBroken(ctx context.Context, db *gorm.DB, category string) ([]dto.BrokenImage, error) {
	src, err := s.source(category)
	if err != nil {
		return nil, err
	}
	refs, err := src.all(db)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	broken := []dto.BrokenImage{}
	for _, ref := range refs {
		missing, err := s.missingPaths(ctx, ref.Paths)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		for _, p := range missing {
			broken = append(broken, dto.BrokenImage{
				Category: category,
				ID:       ref.ID,
				Title:    ref.Title,
				Field:    ref.Field,
				Path:     p,
			})
		}
	}
	return broken, nil
}

func (s *mediaRepairService) missingPaths(ctx context.Context, paths []string) ([]string, error) {
	var missing []string
	for _, p := range paths {
		if p == "" {
			continue
		}
		ok, err := s.media.Exists(ctx, p)
		if err != nil {
			return nil, err
		}
		if !ok {
			missing = append(missing, p)
		}
	}
	return missing, nil
}

// replacement - источник новой ссылки: загруженный файл (копия на каждую запись) или существующий путь.
// Первая копия файла сохраняется сразу, это заодно проверяет загрузку.
type replacement struct {
	category string
	file     *dto.UploadedFile
	path     string
	first    string
}

func (s *mediaRepairService) newReplacement(ctx context.Context, category, defaultImage string, file *dto.UploadedFile) (*replacement, error) {
	if file != nil {
		first, err := s.media.StoreImage(ctx, category, file)
		if err != nil {
			return nil, err
		}
		return &replacement{category: category, file: file, first: first}, nil
	}
	if defaultImage == "" {
		return nil, apperrors.FieldError("default_image", "Provide a default_image or upload a file.")
	}

	path := storage.NormalizePath(defaultImage)
	ok, err := s.media.Exists(ctx, path)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if !ok {
		return nil, apperrors.FieldError("default_image", "The default image does not exist.")
	}

	// файл из основного хранилища копируется в каждую запись: удаление записи удаляет ее файлы
	copied, err := s.loadDefault(ctx, path)
	if err != nil {
		return nil, err
	}
	if copied == nil {
		// файл из public не удаляется вместе с записью, ссылку можно разделять
		return &replacement{category: category, path: path}, nil
	}
	return s.newReplacement(ctx, category, "", copied)
}

// loadDefault читает изображение по умолчанию из основного хранилища; nil, если его там нет
func (s *mediaRepairService) loadDefault(ctx context.Context, path string) (*dto.UploadedFile, error) {
	rc, err := s.media.Open(ctx, path)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, apperrors.InternalError(err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return &dto.UploadedFile{Field: "default_image", Filename: filepath.Base(path), Data: data}, nil
}

func (r *replacement) next(ctx context.Context, media MediaService) (string, error) {
	if r.file == nil {
		return r.path, nil
	}
	if r.first != "" {
		p := r.first
		r.first = ""
		return p, nil
	}
	return media.StoreImage(ctx, r.category, r.file)
}

// release удаляет неиспользованную копию
func (r *replacement) release(ctx context.Context, media MediaService) {
	if r.first != "" {
		media.DeleteImage(ctx, r.first)
		r.first = ""
	}
}

func (s *mediaRepairService) RepairCategory(ctx context.Context, db *gorm.DB, req *dto.RepairRequest) (*dto.RepairResult, error) {
	src, err := s.source(req.Category)
	if err != nil {
		return nil, err
	}
	refs, err := src.all(db)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	repl, err := s.newReplacement(ctx, req.Category, req.DefaultImage, req.File)
	if err != nil {
		return nil, err
	}
	defer repl.release(ctx, s.media)

	result := &dto.RepairResult{Category: req.Category, Items: []string{}}
	for i := range refs {
		ref := &refs[i]
		result.Scanned++

		missing, err := s.missingPaths(ctx, ref.Paths)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		if len(missing) == 0 {
			continue
		}
		result.Broken++

		if err := s.repair(ctx, db, src, ref, missing, repl); err != nil {
			logger.CtxWithError(ctx, "media repair failed", err, "category", req.Category, "id", ref.ID)
			result.Failed++
			continue
		}
		result.Repaired++
		result.Items = append(result.Items, ref.ID)
	}

	logger.CtxInfo(ctx, "media repair finished", "category", req.Category,
		"scanned", result.Scanned, "broken", result.Broken, "repaired", result.Repaired, "failed", result.Failed)
	return result, nil
}

func (s *mediaRepairService) RepairItem(ctx context.Context, db *gorm.DB, category, id string, req *dto.RepairItemRequest) (*dto.RepairResult, error) {
	src, err := s.source(category)
	if err != nil {
		return nil, err
	}
	ref, err := src.one(db, id)
	if err != nil {
		return nil, err
	}
	var targets []string
	switch {
	case req.Path != "":
		if !containsPath(ref.Paths, req.Path) {
			return nil, apperrors.FieldError("path", "The path is not referenced by this item.")
		}
		targets = []string{req.Path}
	case category == MediaCategoryProperty:
		targets, err = s.missingPaths(ctx, ref.Paths)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
	default:
		// одиночное поле заменяется целиком
		targets = ref.Paths
		if len(targets) == 0 {
			targets = []string{""}
		}
	}

	result := &dto.RepairResult{Category: category, Scanned: 1, Broken: len(targets), Items: []string{}}
	if len(targets) == 0 {
		return result, nil
	}

	repl, err := s.newReplacement(ctx, category, req.DefaultImage, req.File)
	if err != nil {
		return nil, err
	}
	defer repl.release(ctx, s.media)

	if err := s.repair(ctx, db, src, ref, targets, repl); err != nil {
		return nil, err
	}
	result.Repaired = 1
	result.Items = append(result.Items, ref.ID)
	return result, nil
}

func (s *mediaRepairService) repair(ctx context.Context, db *gorm.DB, src mediaSource, ref *mediaRef, broken []string, repl *replacement) error {
	path, err := repl.next(ctx, s.media)
	if err != nil {
		return err
	}
	if err := src.replace(db, ref, broken, path); err != nil {
		if repl.file != nil {
			s.media.DeleteImage(ctx, path)
		}
		return err
	}
	return nil
}

func containsPath(paths []string, target string) bool {
	norm := storage.NormalizePath(target)
	for _, p := range paths {
		if p == target || storage.NormalizePath(p) == norm {
			return true
		}
	}
	return false
}

// ============================================
// Источники по категориям
// ============================================

func blogSource(repo repositories.BlogPostRepository) mediaSource {
	return mediaSource{
		all: func(db *gorm.DB) ([]mediaRef, error) {
			posts, err := repo.FindWithFeaturedImages(db)
			if err != nil {
				return nil, err
			}
			refs := make([]mediaRef, 0, len(posts))
			for _, p := range posts {
				refs = append(refs, mediaRef{ID: p.ID, Title: p.Title, Field: "featured_image", Paths: []string{p.FeaturedImage}})
			}
			return refs, nil
		},
		one: func(db *gorm.DB, id string) (*mediaRef, error) {
			p, err := repo.FindByID(db, id)
			if err != nil {
				return nil, handleBlogError(err)
			}
			return &mediaRef{ID: p.ID, Title: p.Title, Field: "featured_image", Paths: nonEmpty(p.FeaturedImage)}, nil
		},
		replace: func(db *gorm.DB, ref *mediaRef, _ []string, replacement string) error {
			return repo.UpdateFeaturedImage(db, ref.ID, replacement)
		},
	}
}

func propertySource(repo repositories.PropertyRepository) mediaSource {
	return mediaSource{
		all: func(db *gorm.DB) ([]mediaRef, error) {
			properties, err := repo.FindWithImages(db)
			if err != nil {
				return nil, err
			}
			refs := make([]mediaRef, 0, len(properties))
			for _, p := range properties {
				refs = append(refs, mediaRef{ID: p.ID, Title: p.Title, Field: "images", Paths: []string(p.Images)})
			}
			return refs, nil
		},
		one: func(db *gorm.DB, id string) (*mediaRef, error) {
			p, err := repo.FindByID(db, id)
			if err != nil {
				return nil, handlePropertyError(err)
			}
			return &mediaRef{ID: p.ID, Title: p.Title, Field: "images", Paths: []string(p.Images)}, nil
		},
		replace: func(db *gorm.DB, ref *mediaRef, broken []string, replacement string) error {
			images := make([]string, len(ref.Paths))
			for i, p := range ref.Paths {
				images[i] = p
				if containsPath(broken, p) {
					images[i] = replacement
				}
			}
			return repo.UpdateImages(db, ref.ID, images)
		},
	}
}

func profilePictureSource(repo repositories.UserRepository) mediaSource {
	return mediaSource{
		all: func(db *gorm.DB) ([]mediaRef, error) {
			users, err := repo.FindWithProfilePictures(db)
			if err != nil {
				return nil, err
			}
			refs := make([]mediaRef, 0, len(users))
			for _, u := range users {
				refs = append(refs, mediaRef{ID: u.ID, Title: u.Name, Field: "profile_picture", Paths: []string{u.ProfilePicture}})
			}
			return refs, nil
		},
		one: func(db *gorm.DB, id string) (*mediaRef, error) {
			u, err := repo.FindByID(db, id)
			if err != nil {
				return nil, handleUserError(err)
			}
			return &mediaRef{ID: u.ID, Title: u.Name, Field: "profile_picture", Paths: nonEmpty(u.ProfilePicture)}, nil
		},
		replace: func(db *gorm.DB, ref *mediaRef, _ []string, replacement string) error {
			return repo.UpdateProfilePicture(db, ref.ID, replacement)
		},
	}
}

func serviceSource(repo repositories.ServiceRepository) mediaSource {
	return mediaSource{
		all: func(db *gorm.DB) ([]mediaRef, error) {
			services, err := repo.FindWithImages(db)
			if err != nil {
				return nil, err
			}
			refs := make([]mediaRef, 0, len(services))
			for _, svc := range services {
				refs = append(refs, mediaRef{ID: svc.ID, Title: svc.Title, Field: "image", Paths: []string{svc.Image}})
			}
			return refs, nil
		},
		one: func(db *gorm.DB, id string) (*mediaRef, error) {
			svc, err := repo.FindByID(db, id)
			if err != nil {
				return nil, handleServiceError(err)
			}
			return &mediaRef{ID: svc.ID, Title: svc.Title, Field: "image", Paths: nonEmpty(svc.Image)}, nil
		},
		replace: func(db *gorm.DB, ref *mediaRef, _ []string, replacement string) error {
			return repo.UpdateImage(db, ref.ID, replacement)
		},
	}
}

func nonEmpty(path string) []string {
	if path == "" {
		return nil
	}
	return []string{path}
}
