package handlers

import (
	"estate_backend/internal/middleware"
	"estate_backend/internal/services"
	"estate_backend/internal/validator"
)

// AppHandlers содержит все хэндлеры приложения.
type AppHandlers struct {
	AuthHandler         *AuthHandler
	UserHandler         *UserHandler
	PropertyHandler     *PropertyHandler
	BlogHandler         *BlogHandler
	InquiryHandler      *InquiryHandler
	ConsultationHandler *ConsultationHandler
	CatalogHandler      *CatalogHandler
	NotificationHandler *NotificationHandler
	PushHandler         *PushHandler
	MediaHandler        *MediaHandler
	StatsHandler        *StatsHandler
	HealthHandler       *HealthHandler
}

// Options - параметры HTTP-слоя, не относящиеся к сервисам
type Options struct {
	MaxUploadSize int64
	Cookie        CookieSettings
	AuthLimiter   *middleware.RateLimiter
}

// NewAppHandlers собирает хэндлеры поверх контейнера сервисов
func NewAppHandlers(svc *services.ServiceContainer, auth *middleware.AuthMiddleware, opts Options) *AppHandlers {
	base := NewBaseHandler(validator.New(), auth, opts.MaxUploadSize)

	return &AppHandlers{
		AuthHandler:         NewAuthHandler(base, svc.AuthService, opts.AuthLimiter, opts.Cookie),
		UserHandler:         NewUserHandler(base, svc.UserService),
		PropertyHandler:     NewPropertyHandler(base, svc.PropertyService),
		BlogHandler:         NewBlogHandler(base, svc.BlogService),
		InquiryHandler:      NewInquiryHandler(base, svc.InquiryService),
		ConsultationHandler: NewConsultationHandler(base, svc.ConsultationService),
		CatalogHandler:      NewCatalogHandler(base, svc.CatalogService),
		NotificationHandler: NewNotificationHandler(base, svc.NotificationService),
		PushHandler:         NewPushHandler(base, svc.PushService),
		MediaHandler:        NewMediaHandler(base, svc.MediaService, svc.MediaRepairService),
		StatsHandler:        NewStatsHandler(base, svc.StatsService),
		HealthHandler:       NewHealthHandler(base),
	}
}
