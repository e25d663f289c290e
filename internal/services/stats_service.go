package services

import (
	"context"

	"estate_backend/internal/repositories"
	"estate_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type StatsService interface {
	Dashboard(ctx context.Context, db *gorm.DB) (*repositories.DashboardStats, error)
}

type statsService struct {
	statsRepo repositories.StatsRepository
}

func NewStatsService(statsRepo repositories.StatsRepository) StatsService {
	return &statsService{statsRepo: statsRepo}
}

func (s *statsService) Dashboard(ctx context.Context, db *gorm.DB) (*repositories.DashboardStats, error) {
	stats, err := s.statsRepo.Dashboard(db.WithContext(ctx))
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return stats, nil
}
