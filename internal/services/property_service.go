package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"estate_backend/internal/logger"
	"estate_backend/internal/models"
	"estate_backend/internal/repositories"
	"estate_backend/internal/services/dto"
	"estate_backend/pkg/apperrors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var errPropertyDeleteLocked = apperrors.New(apperrors.CodeForbidden, "property",
	"Approved properties can only be deleted by an administrator", http.StatusForbidden)

type PropertyService interface {
	// Submission: админ публикует сразу, остальные отправляют на модерацию
	Create(ctx context.Context, db *gorm.DB, actor Actor, req *dto.PropertyRequest) (*dto.PropertyResponse, error)
	Update(ctx context.Context, db *gorm.DB, actor Actor, id string, req *dto.PropertyRequest) (*dto.PropertyResponse, error)
	Delete(ctx context.Context, db *gorm.DB, actor Actor, id string) error
	// Get принимает id или slug
	Get(ctx context.Context, db *gorm.DB, actor Actor, idOrSlug string) (*dto.PropertyResponse, error)

	ListPublic(ctx context.Context, db *gorm.DB, query *dto.PropertyQuery) (*dto.ListResponse[dto.PropertyResponse], error)
	ListMine(ctx context.Context, db *gorm.DB, actor Actor, query *dto.PropertyQuery) (*dto.ListResponse[dto.PropertyResponse], error)
	ListPending(ctx context.Context, db *gorm.DB, actor Actor, query *dto.PropertyQuery) (*dto.ListResponse[dto.PropertyResponse], error)

	// Approve: pending -> approved; повтор для approved - no-op, для rejected - 409
	Approve(ctx context.Context, db *gorm.DB, actor Actor, id string) (*dto.PropertyResponse, error)
	// Reject: pending -> rejected; повтор - no-op, для approved - 409
	Reject(ctx context.Context, db *gorm.DB, actor Actor, id string) (*dto.PropertyResponse, error)
}

type propertyService struct {
	propertyRepo repositories.PropertyRepository
	userRepo     repositories.UserRepository
	outboxRepo   repositories.OutboxRepository
	media        MediaService
}

func NewPropertyService(
	propertyRepo repositories.PropertyRepository,
	userRepo repositories.UserRepository,
	outboxRepo repositories.OutboxRepository,
	media MediaService,
) PropertyService {
	return &propertyService{
		propertyRepo: propertyRepo,
		userRepo:     userRepo,
		outboxRepo:   outboxRepo,
		media:        media,
	}
}

// ============================================
// Submission
// ============================================

func (s *propertyService) Create(ctx context.Context, db *gorm.DB, actor Actor, req *dto.PropertyRequest) (*dto.PropertyResponse, error) {
	if !actor.IsAuthenticated() {
		return nil, apperrors.ErrUnauthenticated
	}

	submitter, err := s.userRepo.FindByID(db, actor.UserID)
	if err != nil {
		return nil, handleUserError(err)
	}

	images, err := s.storeImages(ctx, req.Images)
	if err != nil {
		return nil, err
	}

	property := &models.Property{AgentID: submitter.ID}
	applyPropertyRequest(property, req, actor)
	property.Images = datatypes.JSONSlice[string](images)

	// контакты агента по умолчанию берутся из профиля
	if property.AgentName == "" {
		property.AgentName = submitter.Name
	}
	if property.AgentEmail == "" {
		property.AgentEmail = submitter.Email
	}
	if property.AgentPhone == "" {
		property.AgentPhone = submitter.Phone
	}

	if actor.IsAdmin() {
		now := time.Now()
		property.Status = models.PropertyStatusApproved
		property.ApprovedAt = &now
		property.ApprovedBy = actor.userIDPtr()
	} else {
		property.Status = models.PropertyStatusPending
	}

	base := makeSlug(property.Title, "property")
	err = withSlugRetry(func() error {
		return db.Transaction(func(tx *gorm.DB) error {
			slug, err := uniqueSlug(base, func(c string) (bool, error) {
				return s.propertyRepo.SlugExists(tx, c, "")
			})
			if err != nil {
				return err
			}
			property.Slug = slug
			property.ID = ""

			if err := s.propertyRepo.Create(tx, property); err != nil {
				return err
			}

			if property.Status != models.PropertyStatusPending {
				return nil
			}
			return enqueueEvent(tx, s.outboxRepo, EventPropertySubmitted, property.ID, PropertyEvent{
				PropertyID: property.ID,
				Title:      property.Title,
				Slug:       property.Slug,
				AgentID:    property.AgentID,
				AgentName:  submitter.Name,
			})
		})
	})
	if err != nil {
		s.media.DeleteImages(ctx, images)
		return nil, handlePropertyError(err)
	}

	logger.CtxInfo(ctx, "property submitted",
		"property_id", property.ID, "status", property.Status, "images", len(images))

	property.Agent = submitter
	return toPropertyResponse(ctx, s.media, property), nil
}

func (s *propertyService) storeImages(ctx context.Context, files []*dto.UploadedFile) ([]string, error) {
	paths := make([]string, 0, len(files))
	for _, file := range files {
		path, err := s.media.StoreImage(ctx, MediaCategoryProperty, file)
		if err != nil {
			s.media.DeleteImages(ctx, paths)
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func applyPropertyRequest(p *models.Property, req *dto.PropertyRequest, actor Actor) {
	p.Title = strings.TrimSpace(req.Title)
	p.Description = req.Description
	p.Location = req.Location
	p.Address = req.Address
	p.City = req.City
	if req.Price != nil {
		p.Price = *req.Price
	}
	p.Bedrooms = req.Bedrooms
	p.Bathrooms = req.Bathrooms
	p.Size = req.Size
	p.Type = req.Type
	// витрину (/properties/featured) формирует только администратор
	if actor.IsAdmin() {
		p.IsFeatured = req.IsFeatured
	}
	p.IsSmartHome = req.IsSmartHome
	// пустые контакты не затирают сохраненные
	if req.AgentName != "" {
		p.AgentName = req.AgentName
	}
	if req.AgentPhone != "" {
		p.AgentPhone = req.AgentPhone
	}
	if req.AgentEmail != "" {
		p.AgentEmail = req.AgentEmail
	}
}

// ============================================
// Editing
// ============================================

func (s *propertyService) Update(ctx context.Context, db *gorm.DB, actor Actor, id string, req *dto.PropertyRequest) (*dto.PropertyResponse, error) {
	property, err := s.propertyRepo.FindByID(db, id)
	if err != nil {
		return nil, handlePropertyError(err)
	}

	if !actor.IsAdmin() {
		if !property.IsOwnedBy(actor.UserID) {
			return nil, apperrors.ErrPropertyForbidden
		}
		if property.Status != models.PropertyStatusPending {
			return nil, apperrors.ErrPropertyLocked
		}
	}

	added, err := s.storeImages(ctx, req.Images)
	if err != nil {
		return nil, err
	}

	remove := make(map[string]bool, len(req.RemoveImages))
	for _, p := range req.RemoveImages {
		remove[p] = true
	}
	kept := make([]string, 0, len(property.Images)+len(added))
	var removed []string
	for _, p := range property.Images {
		if remove[p] {
			removed = append(removed, p)
			continue
		}
		kept = append(kept, p)
	}
	kept = append(kept, added...)

	oldTitle := property.Title
	applyPropertyRequest(property, req, actor)
	property.Images = datatypes.JSONSlice[string](kept)

	err = withSlugRetry(func() error {
		return db.Transaction(func(tx *gorm.DB) error {
			if property.Title != oldTitle {
				slug, err := uniqueSlug(makeSlug(property.Title, "property"), func(c string) (bool, error) {
					return s.propertyRepo.SlugExists(tx, c, property.ID)
				})
				if err != nil {
					return err
				}
				property.Slug = slug
			}
			return s.propertyRepo.UpdateDetails(tx, property)
		})
	})
	if err != nil {
		s.media.DeleteImages(ctx, added)
		return nil, handlePropertyError(err)
	}

	s.media.DeleteImages(ctx, removed)

	updated, err := s.propertyRepo.FindByID(db, property.ID)
	if err != nil {
		return nil, handlePropertyError(err)
	}
	return toPropertyResponse(ctx, s.media, updated), nil
}

func (s *propertyService) Delete(ctx context.Context, db *gorm.DB, actor Actor, id string) error {
	property, err := s.propertyRepo.FindByID(db, id)
	if err != nil {
		return handlePropertyError(err)
	}

	if !actor.IsAdmin() {
		if !property.IsOwnedBy(actor.UserID) {
			return apperrors.ErrPropertyForbidden
		}
		if property.Status == models.PropertyStatusApproved {
			return errPropertyDeleteLocked
		}
	}

	if err := s.propertyRepo.Delete(db, property.ID); err != nil {
		return handlePropertyError(err)
	}

	// файлы удаляются после записи: строка без файлов лучше, чем файлы без строки
	s.media.DeleteImages(ctx, property.Images)

	logger.CtxInfo(ctx, "property deleted", "property_id", property.ID, "images", len(property.Images))
	return nil
}

// ============================================
// Queries
// ============================================

func (s *propertyService) Get(ctx context.Context, db *gorm.DB, actor Actor, idOrSlug string) (*dto.PropertyResponse, error) {
	property, err := s.propertyRepo.FindByID(db, idOrSlug)
	if errors.Is(err, repositories.ErrPropertyNotFound) {
		property, err = s.propertyRepo.FindBySlug(db, idOrSlug)
	}
	if err != nil {
		return nil, handlePropertyError(err)
	}

	if !canViewProperty(actor, property) {
		return nil, apperrors.ErrPropertyForbidden
	}
	return toPropertyResponse(ctx, s.media, property), nil
}

// canViewProperty: approved видят все, остальное - владелец и администратор
func canViewProperty(actor Actor, p *models.Property) bool {
	return p.Status == models.PropertyStatusApproved || actor.IsAdmin() || p.IsOwnedBy(actor.UserID)
}

func (s *propertyService) ListPublic(ctx context.Context, db *gorm.DB, query *dto.PropertyQuery) (*dto.ListResponse[dto.PropertyResponse], error) {
	filter := propertyFilter(query)
	filter.Status = models.PropertyStatusApproved
	return s.list(ctx, db, filter)
}

func (s *propertyService) ListMine(ctx context.Context, db *gorm.DB, actor Actor, query *dto.PropertyQuery) (*dto.ListResponse[dto.PropertyResponse], error) {
	if !actor.IsAuthenticated() {
		return nil, apperrors.ErrUnauthenticated
	}
	filter := propertyFilter(query)
	filter.Status = models.PropertyStatus(query.Status)
	if !actor.IsAdmin() {
		filter.AgentID = actor.UserID
	}
	return s.list(ctx, db, filter)
}

func (s *propertyService) ListPending(ctx context.Context, db *gorm.DB, actor Actor, query *dto.PropertyQuery) (*dto.ListResponse[dto.PropertyResponse], error) {
	if !actor.IsAdmin() {
		return nil, apperrors.ErrAdminOnly
	}
	filter := propertyFilter(query)
	filter.Status = models.PropertyStatusPending
	return s.list(ctx, db, filter)
}

func propertyFilter(query *dto.PropertyQuery) repositories.PropertyFilter {
	return repositories.PropertyFilter{
		City:        query.City,
		Type:        query.Type,
		MinPrice:    query.MinPrice,
		MaxPrice:    query.MaxPrice,
		Bedrooms:    query.Bedrooms,
		IsFeatured:  query.IsFeatured,
		IsSmartHome: query.IsSmartHome,
		Search:      query.Search,
		Paging:      repositories.Paging{Page: query.Page, PerPage: query.PerPage}.Normalize(),
	}
}

func (s *propertyService) list(ctx context.Context, db *gorm.DB, filter repositories.PropertyFilter) (*dto.ListResponse[dto.PropertyResponse], error) {
	properties, total, err := s.propertyRepo.List(db, filter)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	items := make([]dto.PropertyResponse, 0, len(properties))
	for i := range properties {
		items = append(items, *toPropertyResponse(ctx, s.media, &properties[i]))
	}
	return &dto.ListResponse[dto.PropertyResponse]{
		Data: items,
		Meta: dto.NewPaginationMeta(filter.Page, filter.PerPage, total),
	}, nil
}

// ============================================
// Approval / Rejection
// ============================================

func (s *propertyService) Approve(ctx context.Context, db *gorm.DB, actor Actor, id string) (*dto.PropertyResponse, error) {
	return s.transition(ctx, db, actor, id, models.PropertyStatusApproved)
}

func (s *propertyService) Reject(ctx context.Context, db *gorm.DB, actor Actor, id string) (*dto.PropertyResponse, error) {
	return s.transition(ctx, db, actor, id, models.PropertyStatusRejected)
}

// transition - единственный путь смены статуса. Условный UPDATE ... WHERE status = 'pending'
// гарантирует, что из двух параллельных решений выигрывает ровно одно.
func (s *propertyService) transition(ctx context.Context, db *gorm.DB, actor Actor, id string, target models.PropertyStatus) (*dto.PropertyResponse, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.ErrAdminOnly
	}

	changed := false
	err := db.Transaction(func(tx *gorm.DB) error {
		property, err := s.propertyRepo.FindByID(tx, id)
		if err != nil {
			return err
		}
		if err := checkTransition(property.Status, target); err != nil || property.Status == target {
			return err
		}

		ok, err := s.propertyRepo.Transition(tx, property.ID, models.PropertyStatusPending, target, actor.userIDPtr(), time.Now())
		if err != nil {
			return err
		}
		if !ok {
			// параллельный запрос успел первым: перечитываем итоговый статус
			current, err := s.propertyRepo.FindByID(tx, property.ID)
			if err != nil {
				return err
			}
			return checkTransition(current.Status, target)
		}
		changed = true

		if target != models.PropertyStatusApproved {
			return nil
		}
		return enqueueEvent(tx, s.outboxRepo, EventPropertyApproved, property.ID, PropertyEvent{
			PropertyID: property.ID,
			Title:      property.Title,
			Slug:       property.Slug,
			AgentID:    property.AgentID,
		})
	})
	if err != nil {
		return nil, handlePropertyError(err)
	}

	if changed {
		logger.CtxInfo(ctx, "property status changed", "property_id", id, "status", target, "admin_id", actor.UserID)
	}

	property, err := s.propertyRepo.FindByID(db, id)
	if err != nil {
		return nil, handlePropertyError(err)
	}
	return toPropertyResponse(ctx, s.media, property), nil
}

// checkTransition: из pending можно всё, повтор того же решения допустим, смена решения - 409
func checkTransition(current, target models.PropertyStatus) error {
	if current == models.PropertyStatusPending || current == target {
		return nil
	}
	if target == models.PropertyStatusApproved {
		return apperrors.ErrInvalidStatus("property", "A rejected property cannot be approved")
	}
	return apperrors.ErrInvalidStatus("property", "An approved property cannot be rejected")
}

func handlePropertyError(err error) error {
	if _, ok := apperrors.AsAppError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, repositories.ErrPropertyNotFound):
		return apperrors.ErrPropertyNotFound
	case errors.Is(err, repositories.ErrSlugTaken):
		return apperrors.ErrConflict(err, "property", "Could not generate a unique slug, please retry")
	default:
		return apperrors.InternalError(err)
	}
}

func toPropertyResponse(ctx context.Context, media MediaService, p *models.Property) *dto.PropertyResponse {
	images := []string(p.Images)
	if images == nil {
		images = []string{}
	}
	resp := &dto.PropertyResponse{
		ID:          p.ID,
		Title:       p.Title,
		Slug:        p.Slug,
		Description: p.Description,
		Location:    p.Location,
		Address:     p.Address,
		City:        p.City,
		Price:       p.Price,
		Bedrooms:    p.Bedrooms,
		Bathrooms:   p.Bathrooms,
		Size:        p.Size,
		Type:        p.Type,
		Images:      images,
		ImageURLs:   media.URLs(ctx, images),
		IsFeatured:  p.IsFeatured,
		IsSmartHome: p.IsSmartHome,
		Status:      p.Status,
		AgentID:     p.AgentID,
		AgentName:   p.AgentName,
		AgentPhone:  p.AgentPhone,
		AgentEmail:  p.AgentEmail,
		ApprovedAt:  p.ApprovedAt,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if p.Agent != nil {
		resp.Agent = &dto.AgentSummary{
			ID:    p.Agent.ID,
			Name:  p.Agent.Name,
			Email: p.Agent.Email,
			Phone: p.Agent.Phone,
		}
	}
	return resp
}
