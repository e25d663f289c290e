package repositories

import (
	"errors"
	"strings"

	"estate_backend/internal/models"

	"gorm.io/gorm"
)

var ErrBlogPostNotFound = errors.New("blog post not found")

type BlogPostRepository interface {
	Create(db *gorm.DB, post *models.BlogPost) error
	FindByID(db *gorm.DB, id string) (*models.BlogPost, error)
	FindBySlug(db *gorm.DB, slug string) (*models.BlogPost, error)
	// FindPublishedBySlugPrefix - самый свежий опубликованный пост, slug которого начинается с prefix
	FindPublishedBySlugPrefix(db *gorm.DB, prefix string) (*models.BlogPost, error)
	SlugExists(db *gorm.DB, slug, excludeID string) (bool, error)
	Update(db *gorm.DB, post *models.BlogPost) error
	UpdateFeaturedImage(db *gorm.DB, id, path string) error
	Delete(db *gorm.DB, id string) error
	List(db *gorm.DB, filter BlogPostFilter) ([]models.BlogPost, int64, error)
	FindWithFeaturedImages(db *gorm.DB) ([]models.BlogPost, error)
}

type BlogPostFilter struct {
	Status   models.BlogStatus
	UserID   string
	Category string
	Search   string
	Paging
}

type blogPostRepository struct{}

func NewBlogPostRepository() BlogPostRepository {
	return &blogPostRepository{}
}

func (r *blogPostRepository) Create(db *gorm.DB, post *models.BlogPost) error {
	if err := db.Create(post).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrSlugTaken
		}
		return err
	}
	return nil
}

func (r *blogPostRepository) first(query *gorm.DB) (*models.BlogPost, error) {
	var post models.BlogPost
	if err := query.Preload("Author").First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBlogPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

func (r *blogPostRepository) FindByID(db *gorm.DB, id string) (*models.BlogPost, error) {
	return r.first(db.Where("id = ?", id))
}

func (r *blogPostRepository) FindBySlug(db *gorm.DB, slug string) (*models.BlogPost, error) {
	return r.first(db.Where("slug = ?", slug))
}

func (r *blogPostRepository) FindPublishedBySlugPrefix(db *gorm.DB, prefix string) (*models.BlogPost, error) {
	if prefix == "" {
		return nil, ErrBlogPostNotFound
	}
	return r.first(db.
		Where("slug LIKE ? AND status = ?", prefix+"%", models.BlogStatusPublished).
		Order("published_at DESC").
		Order("created_at DESC"))
}

func (r *blogPostRepository) SlugExists(db *gorm.DB, slug, excludeID string) (bool, error) {
	query := db.Model(&models.BlogPost{}).Where("slug = ?", slug)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	err := query.Count(&count).Error
	return count > 0, err
}

func (r *blogPostRepository) Update(db *gorm.DB, post *models.BlogPost) error {
	if err := db.Omit("Author").Save(post).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrSlugTaken
		}
		return err
	}
	return nil
}

func (r *blogPostRepository) UpdateFeaturedImage(db *gorm.DB, id, path string) error {
	result := db.Model(&models.BlogPost{}).Where("id = ?", id).Update("featured_image", path)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBlogPostNotFound
	}
	return nil
}

func (r *blogPostRepository) Delete(db *gorm.DB, id string) error {
	result := db.Where("id = ?", id).Delete(&models.BlogPost{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBlogPostNotFound
	}
	return nil
}

func (r *blogPostRepository) List(db *gorm.DB, filter BlogPostFilter) ([]models.BlogPost, int64, error) {
	query := db.Model(&models.BlogPost{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		pattern := likePattern(strings.ToLower(s))
		query = query.Where("LOWER(title) LIKE ? OR LOWER(excerpt) LIKE ? OR LOWER(content) LIKE ?", pattern, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "created_at DESC"
	if filter.Status == models.BlogStatusPublished {
		order = "published_at DESC"
	}

	var posts []models.BlogPost
	err := paginate(query.Preload("Author").Order(order), filter.Paging).Find(&posts).Error
	return posts, total, err
}

func (r *blogPostRepository) FindWithFeaturedImages(db *gorm.DB) ([]models.BlogPost, error) {
	var posts []models.BlogPost
	err := db.Where("featured_image <> ''").Order("created_at ASC").Find(&posts).Error
	return posts, err
}
