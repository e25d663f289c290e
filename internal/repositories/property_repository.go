package repositories

import (
	"errors"
	"strings"
	"time"

	"estate_backend/internal/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrPropertyNotFound = errors.New("property not found")
	ErrSlugTaken        = errors.New("slug already taken")
)

type PropertyRepository interface {
	Create(db *gorm.DB, property *models.Property) error
	FindByID(db *gorm.DB, id string) (*models.Property, error)
	FindBySlug(db *gorm.DB, slug string) (*models.Property, error)
	SlugExists(db *gorm.DB, slug, excludeID string) (bool, error)
	UpdateDetails(db *gorm.DB, property *models.Property) error
	UpdateImages(db *gorm.DB, id string, images []string) error
	// Transition меняет статус только если текущий статус равен from; false - строка не изменилась
	Transition(db *gorm.DB, id string, from, to models.PropertyStatus, by *string, at time.Time) (bool, error)
	Delete(db *gorm.DB, id string) error
	List(db *gorm.DB, filter PropertyFilter) ([]models.Property, int64, error)
	FindWithImages(db *gorm.DB) ([]models.Property, error)
}

type PropertyFilter struct {
	Status      models.PropertyStatus
	AgentID     string
	City        string
	Type        string
	MinPrice    *float64
	MaxPrice    *float64
	Bedrooms    *int // минимум спален
	IsFeatured  *bool
	IsSmartHome *bool
	Search      string
	Paging
}

type propertyRepository struct{}

func NewPropertyRepository() PropertyRepository {
	return &propertyRepository{}
}

func (r *propertyRepository) Create(db *gorm.DB, property *models.Property) error {
	if err := db.Create(property).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrSlugTaken
		}
		return err
	}
	return nil
}

func (r *propertyRepository) FindByID(db *gorm.DB, id string) (*models.Property, error) {
	var property models.Property
	if err := db.Preload("Agent").First(&property, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPropertyNotFound
		}
		return nil, err
	}
	return &property, nil
}

func (r *propertyRepository) FindBySlug(db *gorm.DB, slug string) (*models.Property, error) {
	var property models.Property
	if err := db.Preload("Agent").Where("slug = ?", slug).First(&property).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPropertyNotFound
		}
		return nil, err
	}
	return &property, nil
}

func (r *propertyRepository) SlugExists(db *gorm.DB, slug, excludeID string) (bool, error) {
	query := db.Model(&models.Property{}).Where("slug = ?", slug)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	err := query.Count(&count).Error
	return count > 0, err
}

// UpdateDetails обновляет редактируемые поля; статус здесь не меняется никогда
func (r *propertyRepository) UpdateDetails(db *gorm.DB, property *models.Property) error {
	result := db.Model(&models.Property{}).Where("id = ?", property.ID).Updates(map[string]interface{}{
		"title":         property.Title,
		"slug":          property.Slug,
		"description":   property.Description,
		"location":      property.Location,
		"address":       property.Address,
		"city":          property.City,
		"price":         property.Price,
		"bedrooms":      property.Bedrooms,
		"bathrooms":     property.Bathrooms,
		"size":          property.Size,
		"type":          property.Type,
		"images":        property.Images,
		"is_featured":   property.IsFeatured,
		"is_smart_home": property.IsSmartHome,
		"agent_name":    property.AgentName,
		"agent_phone":   property.AgentPhone,
		"agent_email":   property.AgentEmail,
	})
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return ErrSlugTaken
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPropertyNotFound
	}
	return nil
}

func (r *propertyRepository) UpdateImages(db *gorm.DB, id string, images []string) error {
	result := db.Model(&models.Property{}).Where("id = ?", id).
		Update("images", datatypes.JSONSlice[string](images))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPropertyNotFound
	}
	return nil
}

func (r *propertyRepository) Transition(db *gorm.DB, id string, from, to models.PropertyStatus, by *string, at time.Time) (bool, error) {
	updates := map[string]interface{}{"status": to}
	if to == models.PropertyStatusApproved {
		updates["approved_at"] = at
		updates["approved_by"] = by
	}

	result := db.Model(&models.Property{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *propertyRepository) Delete(db *gorm.DB, id string) error {
	result := db.Where("id = ?", id).Delete(&models.Property{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPropertyNotFound
	}
	return nil
}

func (r *propertyRepository) List(db *gorm.DB, filter PropertyFilter) ([]models.Property, int64, error) {
	query := db.Model(&models.Property{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.AgentID != "" {
		query = query.Where("agent_id = ?", filter.AgentID)
	}
	if filter.City != "" {
		query = query.Where("LOWER(city) = ?", strings.ToLower(filter.City))
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.MinPrice != nil {
		query = query.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("price <= ?", *filter.MaxPrice)
	}
	if filter.Bedrooms != nil {
		query = query.Where("bedrooms >= ?", *filter.Bedrooms)
	}
	if filter.IsFeatured != nil {
		query = query.Where("is_featured = ?", *filter.IsFeatured)
	}
	if filter.IsSmartHome != nil {
		query = query.Where("is_smart_home = ?", *filter.IsSmartHome)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		pattern := likePattern(strings.ToLower(s))
		query = query.Where(
			"LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(location) LIKE ? OR LOWER(address) LIKE ?",
			pattern, pattern, pattern, pattern,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var properties []models.Property
	err := paginate(query.Preload("Agent").Order("created_at DESC"), filter.Paging).Find(&properties).Error
	return properties, total, err
}

func (r *propertyRepository) FindWithImages(db *gorm.DB) ([]models.Property, error) {
	var properties []models.Property
	err := db.Order("created_at ASC").Find(&properties).Error
	if err != nil {
		return nil, err
	}

	withImages := properties[:0]
	for _, p := range properties {
		if len(p.Images) > 0 {
			withImages = append(withImages, p)
		}
	}
	return withImages, nil
}
