package repositories

import (
	"errors"
	"strings"

	"estate_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
)

type UserRepository interface {
	Create(db *gorm.DB, user *models.User) error
	FindByID(db *gorm.DB, id string) (*models.User, error)
	FindByEmail(db *gorm.DB, email string) (*models.User, error)
	Update(db *gorm.DB, user *models.User) error
	FindByRole(db *gorm.DB, role models.UserRole) ([]models.User, error)
	List(db *gorm.DB, filter UserFilter) ([]models.User, int64, error)
	FindWithProfilePictures(db *gorm.DB) ([]models.User, error)
	UpdateProfilePicture(db *gorm.DB, id, path string) error
	UpdatePasswordHash(db *gorm.DB, id, hash string) error
}

type UserFilter struct {
	Role   models.UserRole
	Status models.UserStatus
	Search string
	Paging
}

type userRepository struct{}

func NewUserRepository() UserRepository {
	return &userRepository{}
}

func (r *userRepository) Create(db *gorm.DB, user *models.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if err := db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrUserAlreadyExists
		}
		return err
	}
	return nil
}

func (r *userRepository) FindByID(db *gorm.DB, id string) (*models.User, error) {
	var user models.User
	if err := db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(db *gorm.DB, email string) (*models.User, error) {
	var user models.User
	err := db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Update(db *gorm.DB, user *models.User) error {
	result := db.Save(user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return ErrUserAlreadyExists
		}
		return result.Error
	}
	return nil
}

// FindByRole - например, все администраторы для рассылки уведомлений
func (r *userRepository) FindByRole(db *gorm.DB, role models.UserRole) ([]models.User, error) {
	var users []models.User
	err := db.Where("role = ? AND status = ?", role, models.UserStatusActive).
		Order("created_at ASC").
		Find(&users).Error
	return users, err
}

func (r *userRepository) List(db *gorm.DB, filter UserFilter) ([]models.User, int64, error) {
	query := db.Model(&models.User{})
	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		pattern := likePattern(strings.ToLower(s))
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	err := paginate(query.Order("created_at DESC"), filter.Paging).Find(&users).Error
	return users, total, err
}

func (r *userRepository) FindWithProfilePictures(db *gorm.DB) ([]models.User, error) {
	var users []models.User
	err := db.Where("profile_picture <> ''").Order("created_at ASC").Find(&users).Error
	return users, err
}

func (r *userRepository) UpdateProfilePicture(db *gorm.DB, id, path string) error {
	result := db.Model(&models.User{}).Where("id = ?", id).Update("profile_picture", path)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *userRepository) UpdatePasswordHash(db *gorm.DB, id, hash string) error {
	result := db.Model(&models.User{}).Where("id = ?", id).Update("password_hash", hash)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
