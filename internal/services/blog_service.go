package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"estate_backend/internal/auth"
	"estate_backend/internal/logger"
	"estate_backend/internal/models"
	"estate_backend/internal/repositories"
	"estate_backend/internal/services/dto"
	"estate_backend/pkg/apperrors"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type BlogService interface {
	ListPublished(ctx context.Context, db *gorm.DB, query *dto.BlogPostQuery) (*dto.ListResponse[dto.BlogPostResponse], error)
	// ListMine - посты автора в любом статусе; администратор видит все
	ListMine(ctx context.Context, db *gorm.DB, actor Actor, query *dto.BlogPostQuery) (*dto.ListResponse[dto.BlogPostResponse], error)
	// Get - нестрогий поиск: slug -> нормализованный slug -> префикс (опубликованные) -> id
	Get(ctx context.Context, db *gorm.DB, actor Actor, slugOrID string) (*dto.BlogPostResponse, error)
	Create(ctx context.Context, db *gorm.DB, actor Actor, req *dto.BlogPostRequest) (*dto.BlogPostResponse, error)
	Update(ctx context.Context, db *gorm.DB, actor Actor, id string, req *dto.BlogPostRequest) (*dto.BlogPostResponse, error)
	Delete(ctx context.Context, db *gorm.DB, actor Actor, id string) error
}

type blogService struct {
	postRepo   repositories.BlogPostRepository
	outboxRepo repositories.OutboxRepository
	media      MediaService
}

func NewBlogService(postRepo repositories.BlogPostRepository, outboxRepo repositories.OutboxRepository, media MediaService) BlogService {
	return &blogService{
		postRepo:   postRepo,
		outboxRepo: outboxRepo,
		media:      media,
	}
}

func (s *blogService) ListPublished(ctx context.Context, db *gorm.DB, query *dto.BlogPostQuery) (*dto.ListResponse[dto.BlogPostResponse], error) {
	filter := blogFilter(query)
	filter.Status = models.BlogStatusPublished
	return s.list(ctx, db, filter)
}

func (s *blogService) ListMine(ctx context.Context, db *gorm.DB, actor Actor, query *dto.BlogPostQuery) (*dto.ListResponse[dto.BlogPostResponse], error) {
	if !actor.IsAuthenticated() {
		return nil, apperrors.ErrUnauthenticated
	}
	filter := blogFilter(query)
	filter.Status = models.BlogStatus(query.Status)
	if !actor.IsAdmin() {
		filter.UserID = actor.UserID
	}
	return s.list(ctx, db, filter)
}

func blogFilter(query *dto.BlogPostQuery) repositories.BlogPostFilter {
	return repositories.BlogPostFilter{
		Category: query.Category,
		Search:   query.Search,
		Paging:   repositories.Paging{Page: query.Page, PerPage: query.PerPage}.Normalize(),
	}
}

func (s *blogService) list(ctx context.Context, db *gorm.DB, filter repositories.BlogPostFilter) (*dto.ListResponse[dto.BlogPostResponse], error) {
	posts, total, err := s.postRepo.List(db, filter)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	items := make([]dto.BlogPostResponse, 0, len(posts))
	for i := range posts {
		items = append(items, *toBlogPostResponse(ctx, s.media, &posts[i]))
	}
	return &dto.ListResponse[dto.BlogPostResponse]{
		Data: items,
		Meta: dto.NewPaginationMeta(filter.Page, filter.PerPage, total),
	}, nil
}

func (s *blogService) Get(ctx context.Context, db *gorm.DB, actor Actor, slugOrID string) (*dto.BlogPostResponse, error) {
	post, err := s.lookup(db, strings.TrimSpace(slugOrID))
	if err != nil {
		return nil, handleBlogError(err)
	}
	// черновик для посторонних не существует
	if post.Status != models.BlogStatusPublished && !canEditPost(actor, post) {
		return nil, apperrors.ErrBlogPostNotFound
	}
	return toBlogPostResponse(ctx, s.media, post), nil
}

func (s *blogService) lookup(db *gorm.DB, input string) (*models.BlogPost, error) {
	if input == "" {
		return nil, repositories.ErrBlogPostNotFound
	}

	post, err := s.postRepo.FindBySlug(db, input)
	if !errors.Is(err, repositories.ErrBlogPostNotFound) {
		return post, err
	}

	normalized := slug.Make(input)
	if normalized != "" && normalized != input {
		post, err = s.postRepo.FindBySlug(db, normalized)
		if !errors.Is(err, repositories.ErrBlogPostNotFound) {
			return post, err
		}
	}

	if normalized != "" {
		post, err = s.postRepo.FindPublishedBySlugPrefix(db, normalized)
		if !errors.Is(err, repositories.ErrBlogPostNotFound) {
			return post, err
		}
	}

	return s.postRepo.FindByID(db, input)
}

func canEditPost(actor Actor, post *models.BlogPost) bool {
	return actor.IsAdmin() || (actor.UserID != "" && post.UserID == actor.UserID)
}

func (s *blogService) Create(ctx context.Context, db *gorm.DB, actor Actor, req *dto.BlogPostRequest) (*dto.BlogPostResponse, error) {
	if !auth.CanAuthorContent(string(actor.Role)) {
		return nil, apperrors.NewForbiddenError("Only agents and administrators can write blog posts")
	}

	post := &models.BlogPost{UserID: actor.UserID}
	applyBlogRequest(post, req)
	if post.Status == "" {
		post.Status = models.BlogStatusDraft
	}
	if post.Status == models.BlogStatusPublished {
		now := time.Now()
		post.PublishedAt = &now
	}

	if req.FeaturedImage != nil {
		path, err := s.media.StoreImage(ctx, MediaCategoryBlog, req.FeaturedImage)
		if err != nil {
			return nil, err
		}
		post.FeaturedImage = path
	}

	base := makeSlug(post.Title, "post")
	err := withSlugRetry(func() error {
		return db.Transaction(func(tx *gorm.DB) error {
			slug, err := uniqueSlug(base, func(c string) (bool, error) {
				return s.postRepo.SlugExists(tx, c, "")
			})
			if err != nil {
				return err
			}
			post.Slug = slug
			post.ID = ""

			if err := s.postRepo.Create(tx, post); err != nil {
				return err
			}
			if post.Status != models.BlogStatusPublished {
				return nil
			}
			return s.enqueuePublished(tx, post)
		})
	})
	if err != nil {
		s.media.DeleteImage(ctx, post.FeaturedImage)
		return nil, handleBlogError(err)
	}

	logger.CtxInfo(ctx, "blog post created", "post_id", post.ID, "slug", post.Slug, "status", post.Status)
	return s.reload(ctx, db, post.ID)
}

func (s *blogService) Update(ctx context.Context, db *gorm.DB, actor Actor, id string, req *dto.BlogPostRequest) (*dto.BlogPostResponse, error) {
	post, err := s.postRepo.FindByID(db, id)
	if err != nil {
		return nil, handleBlogError(err)
	}
	if !canEditPost(actor, post) {
		return nil, apperrors.ErrBlogPostForbidden
	}

	wasPublished := post.Status == models.BlogStatusPublished
	oldTitle := post.Title
	oldImage := post.FeaturedImage

	applyBlogRequest(post, req)

	justPublished := !wasPublished && post.Status == models.BlogStatusPublished
	if justPublished && post.PublishedAt == nil {
		now := time.Now()
		post.PublishedAt = &now
	}

	var newImage string
	switch {
	case req.FeaturedImage != nil:
		newImage, err = s.media.StoreImage(ctx, MediaCategoryBlog, req.FeaturedImage)
		if err != nil {
			return nil, err
		}
		post.FeaturedImage = newImage
	case req.RemoveFeaturedImage:
		post.FeaturedImage = ""
	}

	post.Author = nil
	err = withSlugRetry(func() error {
		return db.Transaction(func(tx *gorm.DB) error {
			if post.Title != oldTitle {
				slug, err := uniqueSlug(makeSlug(post.Title, "post"), func(c string) (bool, error) {
					return s.postRepo.SlugExists(tx, c, post.ID)
				})
				if err != nil {
					return err
				}
				post.Slug = slug
			}
			if err := s.postRepo.Update(tx, post); err != nil {
				return err
			}
			if !justPublished {
				return nil
			}
			return s.enqueuePublished(tx, post)
		})
	})
	if err != nil {
		s.media.DeleteImage(ctx, newImage)
		return nil, handleBlogError(err)
	}

	if oldImage != "" && oldImage != post.FeaturedImage {
		s.media.DeleteImage(ctx, oldImage)
	}
	if justPublished {
		logger.CtxInfo(ctx, "blog post published", "post_id", post.ID, "slug", post.Slug)
	}
	return s.reload(ctx, db, post.ID)
}

func (s *blogService) Delete(ctx context.Context, db *gorm.DB, actor Actor, id string) error {
	post, err := s.postRepo.FindByID(db, id)
	if err != nil {
		return handleBlogError(err)
	}
	if !canEditPost(actor, post) {
		return apperrors.ErrBlogPostForbidden
	}

	if err := s.postRepo.Delete(db, post.ID); err != nil {
		return handleBlogError(err)
	}
	s.media.DeleteImage(ctx, post.FeaturedImage)
	return nil
}

func (s *blogService) enqueuePublished(tx *gorm.DB, post *models.BlogPost) error {
	return enqueueEvent(tx, s.outboxRepo, EventBlogPublished, post.ID, BlogEvent{
		PostID:   post.ID,
		Title:    post.Title,
		Slug:     post.Slug,
		AuthorID: post.UserID,
	})
}

func (s *blogService) reload(ctx context.Context, db *gorm.DB, id string) (*dto.BlogPostResponse, error) {
	post, err := s.postRepo.FindByID(db, id)
	if err != nil {
		return nil, handleBlogError(err)
	}
	return toBlogPostResponse(ctx, s.media, post), nil
}

func applyBlogRequest(post *models.BlogPost, req *dto.BlogPostRequest) {
	post.Title = strings.TrimSpace(req.Title)
	post.Subtitle = req.Subtitle
	post.Excerpt = req.Excerpt
	post.Summary = req.Summary
	post.Content = req.Content
	post.Category = req.Category
	if req.Status != "" {
		post.Status = models.BlogStatus(req.Status)
	}
}

func handleBlogError(err error) error {
	if _, ok := apperrors.AsAppError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, repositories.ErrBlogPostNotFound):
		return apperrors.ErrBlogPostNotFound
	case errors.Is(err, repositories.ErrSlugTaken):
		return apperrors.ErrConflict(err, "blog", "Could not generate a unique slug, please retry")
	default:
		return apperrors.InternalError(err)
	}
}

func toBlogPostResponse(ctx context.Context, media MediaService, post *models.BlogPost) *dto.BlogPostResponse {
	resp := &dto.BlogPostResponse{
		ID:               post.ID,
		Title:            post.Title,
		Slug:             post.Slug,
		Subtitle:         post.Subtitle,
		Excerpt:          post.Excerpt,
		Summary:          post.Summary,
		Content:          post.Content,
		Category:         post.Category,
		FeaturedImage:    post.FeaturedImage,
		FeaturedImageURL: media.URL(ctx, post.FeaturedImage),
		Status:           post.Status,
		PublishedAt:      post.PublishedAt,
		AuthorID:         post.UserID,
		CreatedAt:        post.CreatedAt,
		UpdatedAt:        post.UpdatedAt,
	}
	if post.Author != nil {
		resp.AuthorName = post.Author.Name
	}
	return resp
}
