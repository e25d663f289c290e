package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"estate_backend/internal/logger"
	"estate_backend/internal/models"
	"estate_backend/internal/repositories"
	"estate_backend/internal/services/dto"
	"estate_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type InquiryService interface {
	// Create - публичная заявка; статус всегда pending
	Create(ctx context.Context, db *gorm.DB, actor Actor, req *dto.CreateInquiryRequest) (*dto.InquiryResponse, error)
	// List: админ - все, агент - по своим объектам, пользователь - свои
	List(ctx context.Context, db *gorm.DB, actor Actor, query *dto.RequestListQuery) (*dto.ListResponse[dto.InquiryResponse], error)
	Get(ctx context.Context, db *gorm.DB, actor Actor, id string) (*dto.InquiryResponse, error)
	// Respond меняет статус и/или отправляет ответ; ответ без статуса означает responded
	Respond(ctx context.Context, db *gorm.DB, actor Actor, id string, req *dto.RespondRequest) (*dto.InquiryResponse, error)
	Delete(ctx context.Context, db *gorm.DB, actor Actor, id string) error
}

type inquiryService struct {
	inquiryRepo  repositories.InquiryRepository
	propertyRepo repositories.PropertyRepository
	outboxRepo   repositories.OutboxRepository
}

func NewInquiryService(
	inquiryRepo repositories.InquiryRepository,
	propertyRepo repositories.PropertyRepository,
	outboxRepo repositories.OutboxRepository,
) InquiryService {
	return &inquiryService{
		inquiryRepo:  inquiryRepo,
		propertyRepo: propertyRepo,
		outboxRepo:   outboxRepo,
	}
}

func (s *inquiryService) Create(ctx context.Context, db *gorm.DB, actor Actor, req *dto.CreateInquiryRequest) (*dto.InquiryResponse, error) {
	inquiry := &models.Inquiry{
		UserID:  actor.userIDPtr(),
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Phone:   req.Phone,
		Subject: req.Subject,
		Message: req.Message,
		Status:  models.RequestStatusPending,
	}

	var property *models.Property
	if req.PropertyID != "" {
		p, err := s.propertyRepo.FindByID(db, req.PropertyID)
		if err != nil {
			if errors.Is(err, repositories.ErrPropertyNotFound) {
				return nil, apperrors.FieldError("property_id", "The selected property is invalid.")
			}
			return nil, apperrors.InternalError(err)
		}
		property = p
		inquiry.PropertyID = &p.ID
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := s.inquiryRepo.Create(tx, inquiry); err != nil {
			return err
		}
		event := requestEventFromInquiry(inquiry)
		if property != nil {
			event.PropertyTitle = property.Title
			event.AgentID = property.AgentID
		}
		return enqueueEvent(tx, s.outboxRepo, EventInquiryCreated, inquiry.ID, event)
	})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "inquiry created", "inquiry_id", inquiry.ID, "property_id", req.PropertyID)

	inquiry.Property = property
	return toInquiryResponse(inquiry), nil
}

func (s *inquiryService) List(ctx context.Context, db *gorm.DB, actor Actor, query *dto.RequestListQuery) (*dto.ListResponse[dto.InquiryResponse], error) {
	if !actor.IsAuthenticated() {
		return nil, apperrors.ErrUnauthenticated
	}

	paging := repositories.Paging{Page: query.Page, PerPage: query.PerPage}.Normalize()
	filter := repositories.InquiryFilter{
		Status:     models.RequestStatus(query.Status),
		PropertyID: query.PropertyID,
		Paging:     paging,
	}
	switch {
	case actor.IsAdmin():
	case actor.IsAgent():
		filter.AgentID = actor.UserID
	default:
		filter.UserID = actor.UserID
	}

	inquiries, total, err := s.inquiryRepo.List(db, filter)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	items := make([]dto.InquiryResponse, 0, len(inquiries))
	for i := range inquiries {
		items = append(items, *toInquiryResponse(&inquiries[i]))
	}
	return &dto.ListResponse[dto.InquiryResponse]{
		Data: items,
		Meta: dto.NewPaginationMeta(paging.Page, paging.PerPage, total),
	}, nil
}

func (s *inquiryService) Get(ctx context.Context, db *gorm.DB, actor Actor, id string) (*dto.InquiryResponse, error) {
	inquiry, err := s.inquiryRepo.FindByID(db, id)
	if err != nil {
		return nil, handleInquiryError(err)
	}
	if !canViewInquiry(actor, inquiry) {
		return nil, apperrors.ErrInquiryForbidden
	}
	return toInquiryResponse(inquiry), nil
}

func canViewInquiry(actor Actor, inquiry *models.Inquiry) bool {
	if canManageInquiry(actor, inquiry) {
		return true
	}
	return actor.UserID != "" && inquiry.UserID != nil && *inquiry.UserID == actor.UserID
}

// canManageInquiry - администратор или агент, которому принадлежит объект
func canManageInquiry(actor Actor, inquiry *models.Inquiry) bool {
	if actor.IsAdmin() {
		return true
	}
	return actor.IsAgent() && inquiry.Property != nil && inquiry.Property.IsOwnedBy(actor.UserID)
}

func (s *inquiryService) Respond(ctx context.Context, db *gorm.DB, actor Actor, id string, req *dto.RespondRequest) (*dto.InquiryResponse, error) {
	inquiry, err := s.inquiryRepo.FindByID(db, id)
	if err != nil {
		return nil, handleInquiryError(err)
	}
	if !canManageInquiry(actor, inquiry) {
		return nil, apperrors.ErrInquiryForbidden
	}

	responded := applyResponse(&inquiry.Status, &inquiry.ResponseMessage, &inquiry.RespondedAt, &inquiry.RespondedBy, actor, req)

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := s.inquiryRepo.Update(tx, inquiry); err != nil {
			return err
		}
		if !responded {
			return nil
		}
		return enqueueEvent(tx, s.outboxRepo, EventInquiryResponded, inquiry.ID, requestEventFromInquiry(inquiry))
	})
	if err != nil {
		return nil, handleInquiryError(err)
	}

	logger.CtxInfo(ctx, "inquiry updated", "inquiry_id", inquiry.ID, "status", inquiry.Status, "responded", responded)
	return toInquiryResponse(inquiry), nil
}

func (s *inquiryService) Delete(ctx context.Context, db *gorm.DB, actor Actor, id string) error {
	if !actor.IsAdmin() {
		return apperrors.ErrAdminOnly
	}
	return handleInquiryError(s.inquiryRepo.Delete(db, id))
}

// applyResponse применяет RespondRequest к заявке. true - появился новый ответ, нужно письмо.
func applyResponse(status *models.RequestStatus, message *string, respondedAt **time.Time, respondedBy **string, actor Actor, req *dto.RespondRequest) bool {
	if req.Status != "" {
		*status = models.RequestStatus(req.Status)
	}
	if req.ResponseMessage == nil {
		return false
	}

	text := strings.TrimSpace(*req.ResponseMessage)
	if text == "" {
		return false
	}

	now := time.Now()
	*message = text
	*respondedAt = &now
	*respondedBy = actor.userIDPtr()
	if req.Status == "" {
		*status = models.RequestStatusResponded
	}
	return true
}

func requestEventFromInquiry(inquiry *models.Inquiry) RequestEvent {
	event := RequestEvent{
		RequestID:       inquiry.ID,
		Name:            inquiry.Name,
		Email:           inquiry.Email,
		Subject:         inquiry.Subject,
		ResponseMessage: inquiry.ResponseMessage,
	}
	if inquiry.PropertyID != nil {
		event.PropertyID = *inquiry.PropertyID
	}
	if inquiry.UserID != nil {
		event.UserID = *inquiry.UserID
	}
	if inquiry.Property != nil {
		event.PropertyTitle = inquiry.Property.Title
		event.AgentID = inquiry.Property.AgentID
	}
	return event
}

func handleInquiryError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperrors.AsAppError(err); ok {
		return err
	}
	if errors.Is(err, repositories.ErrInquiryNotFound) {
		return apperrors.ErrInquiryNotFound
	}
	return apperrors.InternalError(err)
}

func toInquiryResponse(inquiry *models.Inquiry) *dto.InquiryResponse {
	resp := &dto.InquiryResponse{
		ID:              inquiry.ID,
		PropertyID:      inquiry.PropertyID,
		UserID:          inquiry.UserID,
		Name:            inquiry.Name,
		Email:           inquiry.Email,
		Phone:           inquiry.Phone,
		Subject:         inquiry.Subject,
		Message:         inquiry.Message,
		Status:          inquiry.Status,
		ResponseMessage: inquiry.ResponseMessage,
		RespondedAt:     inquiry.RespondedAt,
		CreatedAt:       inquiry.CreatedAt,
		UpdatedAt:       inquiry.UpdatedAt,
	}
	if inquiry.Property != nil {
		resp.Property = &dto.PropertySummary{
			ID:    inquiry.Property.ID,
			Title: inquiry.Property.Title,
			Slug:  inquiry.Property.Slug,
		}
	}
	return resp
}
