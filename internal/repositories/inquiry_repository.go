package repositories

import (
	"errors"

	"estate_backend/internal/models"

	"gorm.io/gorm"
)

var ErrInquiryNotFound = errors.New("inquiry not found")

type InquiryRepository interface {
	Create(db *gorm.DB, inquiry *models.Inquiry) error
	FindByID(db *gorm.DB, id string) (*models.Inquiry, error)
	Update(db *gorm.DB, inquiry *models.Inquiry) error
	Delete(db *gorm.DB, id string) error
	List(db *gorm.DB, filter InquiryFilter) ([]models.Inquiry, int64, error)
}

// InquiryFilter: AgentID - заявки по объектам агента, UserID - заявки самого пользователя
type InquiryFilter struct {
	Status     models.RequestStatus
	PropertyID string
	AgentID    string
	UserID     string
	Paging
}

type inquiryRepository struct{}

func NewInquiryRepository() InquiryRepository {
	return &inquiryRepository{}
}

func (r *inquiryRepository) Create(db *gorm.DB, inquiry *models.Inquiry) error {
	return db.Omit("Property").Create(inquiry).Error
}

func (r *inquiryRepository) FindByID(db *gorm.DB, id string) (*models.Inquiry, error) {
	var inquiry models.Inquiry
	if err := db.Preload("Property").First(&inquiry, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInquiryNotFound
		}
		return nil, err
	}
	return &inquiry, nil
}

func (r *inquiryRepository) Update(db *gorm.DB, inquiry *models.Inquiry) error {
	return db.Omit("Property").Save(inquiry).Error
}

func (r *inquiryRepository) Delete(db *gorm.DB, id string) error {
	result := db.Where("id = ?", id).Delete(&models.Inquiry{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInquiryNotFound
	}
	return nil
}

func (r *inquiryRepository) List(db *gorm.DB, filter InquiryFilter) ([]models.Inquiry, int64, error) {
	query := db.Model(&models.Inquiry{})
	if filter.Status != "" {
		query = query.Where("inquiries.status = ?", filter.Status)
	}
	if filter.PropertyID != "" {
		query = query.Where("inquiries.property_id = ?", filter.PropertyID)
	}
	if filter.AgentID != "" {
		query = query.Where("inquiries.property_id IN (?)",
			db.Model(&models.Property{}).Select("id").Where("agent_id = ?", filter.AgentID))
	}
	if filter.UserID != "" {
		query = query.Where("inquiries.user_id = ?", filter.UserID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var inquiries []models.Inquiry
	err := paginate(query.Preload("Property").Order("inquiries.created_at DESC"), filter.Paging).Find(&inquiries).Error
	return inquiries, total, err
}
