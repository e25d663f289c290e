package repositories

import (
	"errors"

	"estate_backend/internal/models"

	"gorm.io/gorm"
)

var ErrConsultationNotFound = errors.New("consultation not found")

type ConsultationRepository interface {
	Create(db *gorm.DB, consultation *models.Consultation) error
	FindByID(db *gorm.DB, id string) (*models.Consultation, error)
	Update(db *gorm.DB, consultation *models.Consultation) error
	Delete(db *gorm.DB, id string) error
	List(db *gorm.DB, filter ConsultationFilter) ([]models.Consultation, int64, error)
}

type ConsultationFilter struct {
	Status      models.RequestStatus
	ServiceType string
	Paging
}

type consultationRepository struct{}

func NewConsultationRepository() ConsultationRepository {
	return &consultationRepository{}
}

func (r *consultationRepository) Create(db *gorm.DB, consultation *models.Consultation) error {
	return db.Create(consultation).Error
}

func (r *consultationRepository) FindByID(db *gorm.DB, id string) (*models.Consultation, error) {
	var consultation models.Consultation
	if err := db.First(&consultation, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConsultationNotFound
		}
		return nil, err
	}
	return &consultation, nil
}

func (r *consultationRepository) Update(db *gorm.DB, consultation *models.Consultation) error {
	return db.Save(consultation).Error
}

func (r *consultationRepository) Delete(db *gorm.DB, id string) error {
	result := db.Where("id = ?", id).Delete(&models.Consultation{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrConsultationNotFound
	}
	return nil
}

func (r *consultationRepository) List(db *gorm.DB, filter ConsultationFilter) ([]models.Consultation, int64, error) {
	query := db.Model(&models.Consultation{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.ServiceType != "" {
		query = query.Where("service_type = ?", filter.ServiceType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var consultations []models.Consultation
	err := paginate(query.Order("created_at DESC"), filter.Paging).Find(&consultations).Error
	return consultations, total, err
}
