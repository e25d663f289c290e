package repositories

import (
	"errors"

	"estate_backend/internal/models"

	"gorm.io/gorm"
)

var ErrServiceNotFound = errors.New("service not found")

// ServiceRepository - каталог услуг smart home
type ServiceRepository interface {
	Create(db *gorm.DB, service *models.Service) error
	FindByID(db *gorm.DB, id string) (*models.Service, error)
	FindBySlug(db *gorm.DB, slug string) (*models.Service, error)
	SlugExists(db *gorm.DB, slug, excludeID string) (bool, error)
	Update(db *gorm.DB, service *models.Service) error
	UpdateImage(db *gorm.DB, id, path string) error
	Delete(db *gorm.DB, id string) error
	List(db *gorm.DB, activeOnly bool) ([]models.Service, error)
	FindWithImages(db *gorm.DB) ([]models.Service, error)
}

type serviceRepository struct{}

func NewServiceRepository() ServiceRepository {
	return &serviceRepository{}
}

func (r *serviceRepository) Create(db *gorm.DB, service *models.Service) error {
	if err := db.Create(service).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrSlugTaken
		}
		return err
	}
	return nil
}

func (r *serviceRepository) FindByID(db *gorm.DB, id string) (*models.Service, error) {
	var service models.Service
	if err := db.First(&service, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, err
	}
	return &service, nil
}

func (r *serviceRepository) FindBySlug(db *gorm.DB, slug string) (*models.Service, error) {
	var service models.Service
	if err := db.Where("slug = ?", slug).First(&service).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, err
	}
	return &service, nil
}

func (r *serviceRepository) SlugExists(db *gorm.DB, slug, excludeID string) (bool, error) {
	query := db.Model(&models.Service{}).Where("slug = ?", slug)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	err := query.Count(&count).Error
	return count > 0, err
}

func (r *serviceRepository) Update(db *gorm.DB, service *models.Service) error {
	if err := db.Save(service).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrSlugTaken
		}
		return err
	}
	return nil
}

func (r *serviceRepository) UpdateImage(db *gorm.DB, id, path string) error {
	result := db.Model(&models.Service{}).Where("id = ?", id).Update("image", path)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrServiceNotFound
	}
	return nil
}

func (r *serviceRepository) Delete(db *gorm.DB, id string) error {
	result := db.Where("id = ?", id).Delete(&models.Service{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrServiceNotFound
	}
	return nil
}

func (r *serviceRepository) List(db *gorm.DB, activeOnly bool) ([]models.Service, error) {
	query := db.Model(&models.Service{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var services []models.Service
	err := query.Order("sort_order ASC").Order("title ASC").Find(&services).Error
	return services, err
}

func (r *serviceRepository) FindWithImages(db *gorm.DB) ([]models.Service, error) {
	var services []models.Service
	err := db.Where("image <> ''").Order("sort_order ASC").Find(&services).Error
	return services, err
}
