package services

import (
	"context"
	"errors"
	"strings"

	"estate_backend/internal/logger"
	"estate_backend/internal/models"
	"estate_backend/internal/repositories"
	"estate_backend/internal/services/dto"
	"estate_backend/pkg/apperrors"

	"gorm.io/gorm"
)

// ConsultationService - заявки на консультацию; всё, кроме создания, доступно только администратору
type ConsultationService interface {
	Create(ctx context.Context, db *gorm.DB, actor Actor, req *dto.CreateConsultationRequest) (*dto.ConsultationResponse, error)
	List(ctx context.Context, db *gorm.DB, query *dto.RequestListQuery) (*dto.ListResponse[dto.ConsultationResponse], error)
	Get(ctx context.Context, db *gorm.DB, id string) (*dto.ConsultationResponse, error)
	Respond(ctx context.Context, db *gorm.DB, actor Actor, id string, req *dto.RespondRequest) (*dto.ConsultationResponse, error)
	Delete(ctx context.Context, db *gorm.DB, id string) error
}

type consultationService struct {
	consultationRepo repositories.ConsultationRepository
	outboxRepo       repositories.OutboxRepository
}

func NewConsultationService(consultationRepo repositories.ConsultationRepository, outboxRepo repositories.OutboxRepository) ConsultationService {
	return &consultationService{
		consultationRepo: consultationRepo,
		outboxRepo:       outboxRepo,
	}
}

func (s *consultationService) Create(ctx context.Context, db *gorm.DB, actor Actor, req *dto.CreateConsultationRequest) (*dto.ConsultationResponse, error) {
	consultation := &models.Consultation{
		UserID:        actor.userIDPtr(),
		Name:          strings.TrimSpace(req.Name),
		Email:         strings.TrimSpace(req.Email),
		Phone:         req.Phone,
		ServiceType:   req.ServiceType,
		PreferredDate: req.PreferredDate,
		Message:       req.Message,
		Status:        models.RequestStatusPending,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := s.consultationRepo.Create(tx, consultation); err != nil {
			return err
		}
		return enqueueEvent(tx, s.outboxRepo, EventConsultationCreated, consultation.ID, requestEventFromConsultation(consultation))
	})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "consultation requested", "consultation_id", consultation.ID, "service_type", consultation.ServiceType)
	return toConsultationResponse(consultation), nil
}

func (s *consultationService) List(ctx context.Context, db *gorm.DB, query *dto.RequestListQuery) (*dto.ListResponse[dto.ConsultationResponse], error) {
	paging := repositories.Paging{Page: query.Page, PerPage: query.PerPage}.Normalize()
	consultations, total, err := s.consultationRepo.List(db, repositories.ConsultationFilter{
		Status:      models.RequestStatus(query.Status),
		ServiceType: query.ServiceType,
		Paging:      paging,
	})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	items := make([]dto.ConsultationResponse, 0, len(consultations))
	for i := range consultations {
		items = append(items, *toConsultationResponse(&consultations[i]))
	}
	return &dto.ListResponse[dto.ConsultationResponse]{
		Data: items,
		Meta: dto.NewPaginationMeta(paging.Page, paging.PerPage, total),
	}, nil
}

func (s *consultationService) Get(ctx context.Context, db *gorm.DB, id string) (*dto.ConsultationResponse, error) {
	consultation, err := s.consultationRepo.FindByID(db, id)
	if err != nil {
		return nil, handleConsultationError(err)
	}
	return toConsultationResponse(consultation), nil
}

func (s *consultationService) Respond(ctx context.Context, db *gorm.DB, actor Actor, id string, req *dto.RespondRequest) (*dto.ConsultationResponse, error) {
	consultation, err := s.consultationRepo.FindByID(db, id)
	if err != nil {
		return nil, handleConsultationError(err)
	}

	responded := applyResponse(&consultation.Status, &consultation.ResponseMessage,
		&consultation.RespondedAt, &consultation.RespondedBy, actor, req)

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := s.consultationRepo.Update(tx, consultation); err != nil {
			return err
		}
		if !responded {
			return nil
		}
		return enqueueEvent(tx, s.outboxRepo, EventConsultationResponded, consultation.ID, requestEventFromConsultation(consultation))
	})
	if err != nil {
		return nil, handleConsultationError(err)
	}
	return toConsultationResponse(consultation), nil
}

func (s *consultationService) Delete(ctx context.Context, db *gorm.DB, id string) error {
	return handleConsultationError(s.consultationRepo.Delete(db, id))
}

func requestEventFromConsultation(c *models.Consultation) RequestEvent {
	event := RequestEvent{
		RequestID:       c.ID,
		Name:            c.Name,
		Email:           c.Email,
		ServiceType:     c.ServiceType,
		ResponseMessage: c.ResponseMessage,
	}
	if c.UserID != nil {
		event.UserID = *c.UserID
	}
	return event
}

func handleConsultationError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repositories.ErrConsultationNotFound) {
		return apperrors.ErrConsultationNotFound
	}
	return apperrors.InternalError(err)
}

func toConsultationResponse(c *models.Consultation) *dto.ConsultationResponse {
	return &dto.ConsultationResponse{
		ID:              c.ID,
		UserID:          c.UserID,
		Name:            c.Name,
		Email:           c.Email,
		Phone:           c.Phone,
		ServiceType:     c.ServiceType,
		PreferredDate:   c.PreferredDate,
		Message:         c.Message,
		Status:          c.Status,
		ResponseMessage: c.ResponseMessage,
		RespondedAt:     c.RespondedAt,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}
