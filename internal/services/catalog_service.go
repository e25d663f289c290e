package services

import (
	"context"
	"errors"
	"strings"

	"estate_backend/internal/models"
	"estate_backend/internal/repositories"
	"estate_backend/internal/services/dto"
	"estate_backend/pkg/apperrors"

	"gorm.io/gorm"
)

// CatalogService - каталог услуг smart home
type CatalogService interface {
	List(ctx context.Context, db *gorm.DB, includeInactive bool) ([]dto.ServiceResponse, error)
	// Get принимает slug или id; неактивные услуги видит только администратор
	Get(ctx context.Context, db *gorm.DB, actor Actor, slugOrID string) (*dto.ServiceResponse, error)
	Create(ctx context.Context, db *gorm.DB, req *dto.ServiceRequest) (*dto.ServiceResponse, error)
	Update(ctx context.Context, db *gorm.DB, id string, req *dto.ServiceRequest) (*dto.ServiceResponse, error)
	Delete(ctx context.Context, db *gorm.DB, id string) error
}

type catalogService struct {
	serviceRepo repositories.ServiceRepository
	media       MediaService
}

func NewCatalogService(serviceRepo repositories.ServiceRepository, media MediaService) CatalogService {
	return &catalogService{serviceRepo: serviceRepo, media: media}
}

func (s *catalogService) List(ctx context.Context, db *gorm.DB, includeInactive bool) ([]dto.ServiceResponse, error) {
	services, err := s.serviceRepo.List(db, !includeInactive)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	items := make([]dto.ServiceResponse, 0, len(services))
	for i := range services {
		items = append(items, *toServiceResponse(ctx, s.media, &services[i]))
	}
	return items, nil
}

func (s *catalogService) Get(ctx context.Context, db *gorm.DB, actor Actor, slugOrID string) (*dto.ServiceResponse, error) {
	service, err := s.serviceRepo.FindBySlug(db, slugOrID)
	if errors.Is(err, repositories.ErrServiceNotFound) {
		service, err = s.serviceRepo.FindByID(db, slugOrID)
	}
	if err != nil {
		return nil, handleServiceError(err)
	}
	if !service.IsActive && !actor.IsAdmin() {
		return nil, apperrors.ErrServiceNotFound
	}
	return toServiceResponse(ctx, s.media, service), nil
}

func (s *catalogService) Create(ctx context.Context, db *gorm.DB, req *dto.ServiceRequest) (*dto.ServiceResponse, error) {
	service := &models.Service{IsActive: true}
	applyServiceRequest(service, req)

	if req.Image != nil {
		path, err := s.media.StoreImage(ctx, MediaCategoryService, req.Image)
		if err != nil {
			return nil, err
		}
		service.Image = path
	}

	base := makeSlug(service.Title, "service")
	err := withSlugRetry(func() error {
		slug, err := uniqueSlug(base, func(c string) (bool, error) {
			return s.serviceRepo.SlugExists(db, c, "")
		})
		if err != nil {
			return err
		}
		service.Slug = slug
		service.ID = ""
		return s.serviceRepo.Create(db, service)
	})
	if err != nil {
		s.media.DeleteImage(ctx, service.Image)
		return nil, handleServiceError(err)
	}
	return toServiceResponse(ctx, s.media, service), nil
}

func (s *catalogService) Update(ctx context.Context, db *gorm.DB, id string, req *dto.ServiceRequest) (*dto.ServiceResponse, error) {
	service, err := s.serviceRepo.FindByID(db, id)
	if err != nil {
		return nil, handleServiceError(err)
	}

	oldTitle := service.Title
	oldImage := service.Image
	applyServiceRequest(service, req)

	var newImage string
	if req.Image != nil {
		newImage, err = s.media.StoreImage(ctx, MediaCategoryService, req.Image)
		if err != nil {
			return nil, err
		}
		service.Image = newImage
	}

	err = withSlugRetry(func() error {
		if service.Title != oldTitle {
			slug, err := uniqueSlug(makeSlug(service.Title, "service"), func(c string) (bool, error) {
				return s.serviceRepo.SlugExists(db, c, service.ID)
			})
			if err != nil {
				return err
			}
			service.Slug = slug
		}
		return s.serviceRepo.Update(db, service)
	})
	if err != nil {
		s.media.DeleteImage(ctx, newImage)
		return nil, handleServiceError(err)
	}

	if newImage != "" && oldImage != "" {
		s.media.DeleteImage(ctx, oldImage)
	}
	return toServiceResponse(ctx, s.media, service), nil
}

func (s *catalogService) Delete(ctx context.Context, db *gorm.DB, id string) error {
	service, err := s.serviceRepo.FindByID(db, id)
	if err != nil {
		return handleServiceError(err)
	}
	if err := s.serviceRepo.Delete(db, service.ID); err != nil {
		return handleServiceError(err)
	}
	s.media.DeleteImage(ctx, service.Image)
	return nil
}

func applyServiceRequest(service *models.Service, req *dto.ServiceRequest) {
	service.Title = strings.TrimSpace(req.Title)
	service.Description = req.Description
	service.SortOrder = req.SortOrder
	if req.IsActive != nil {
		service.IsActive = *req.IsActive
	}
}

func handleServiceError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrServiceNotFound):
		return apperrors.ErrServiceNotFound
	case errors.Is(err, repositories.ErrSlugTaken):
		return apperrors.ErrConflict(err, "service", "Could not generate a unique slug, please retry")
	default:
		return apperrors.InternalError(err)
	}
}

func toServiceResponse(ctx context.Context, media MediaService, service *models.Service) *dto.ServiceResponse {
	return &dto.ServiceResponse{
		ID:          service.ID,
		Title:       service.Title,
		Slug:        service.Slug,
		Description: service.Description,
		Image:       service.Image,
		ImageURL:    media.URL(ctx, service.Image),
		IsActive:    service.IsActive,
		SortOrder:   service.SortOrder,
		CreatedAt:   service.CreatedAt,
		UpdatedAt:   service.UpdatedAt,
	}
}
