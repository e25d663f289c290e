package services

import (
	"estate_backend/internal/auth"
	"estate_backend/internal/email"
	"estate_backend/internal/imageprocessor"
	"estate_backend/internal/push"
	"estate_backend/internal/repositories"
	"estate_backend/internal/storage"
)

// Dependencies - внешние компоненты, из которых собираются сервисы
type Dependencies struct {
	Resolver       *storage.Resolver
	Processor      *imageprocessor.Processor
	Thumbnails     bool
	Tokens         *auth.TokenManager
	Blacklist      auth.Blacklist
	Mailer         email.Provider
	PushSender     push.Sender
	VAPIDPublicKey string
	Realtime       RealtimePublisher
	FrontendURL    string
}

// ServiceContainer содержит все сервисы приложения.
type ServiceContainer struct {
	MediaService        MediaService
	MediaRepairService  MediaRepairService
	AuthService         AuthService
	UserService         UserService
	PropertyService     PropertyService
	BlogService         BlogService
	InquiryService      InquiryService
	ConsultationService ConsultationService
	CatalogService      CatalogService
	NotificationService NotificationService
	PushService         PushService
	StatsService        StatsService
	EventDispatcher     EventDispatcher
	OutboxRepository    repositories.OutboxRepository
}

// NewServiceContainer собирает сервисы; репозитории не хранят состояния и создаются здесь
func NewServiceContainer(deps Dependencies) *ServiceContainer {
	userRepo := repositories.NewUserRepository()
	propertyRepo := repositories.NewPropertyRepository()
	postRepo := repositories.NewBlogPostRepository()
	inquiryRepo := repositories.NewInquiryRepository()
	consultationRepo := repositories.NewConsultationRepository()
	serviceRepo := repositories.NewServiceRepository()
	notificationRepo := repositories.NewNotificationRepository()
	pushRepo := repositories.NewPushSubscriptionRepository()
	outboxRepo := repositories.NewOutboxRepository()
	statsRepo := repositories.NewStatsRepository()

	media := NewMediaService(deps.Resolver, deps.Processor, deps.Thumbnails)
	notifications := NewNotificationService(notificationRepo, userRepo, deps.Realtime)
	pushService := NewPushService(pushRepo, deps.PushSender, deps.VAPIDPublicKey)

	return &ServiceContainer{
		MediaService:        media,
		MediaRepairService:  NewMediaRepairService(media, userRepo, propertyRepo, postRepo, serviceRepo),
		AuthService:         NewAuthService(userRepo, outboxRepo, deps.Tokens, deps.Blacklist, media),
		UserService:         NewUserService(userRepo, media),
		PropertyService:     NewPropertyService(propertyRepo, userRepo, outboxRepo, media),
		BlogService:         NewBlogService(postRepo, outboxRepo, media),
		InquiryService:      NewInquiryService(inquiryRepo, propertyRepo, outboxRepo),
		ConsultationService: NewConsultationService(consultationRepo, outboxRepo),
		CatalogService:      NewCatalogService(serviceRepo, media),
		NotificationService: notifications,
		PushService:         pushService,
		StatsService:        NewStatsService(statsRepo),
		EventDispatcher:     NewEventDispatcher(userRepo, outboxRepo, notifications, pushService, deps.Mailer, deps.FrontendURL),
		OutboxRepository:    outboxRepo,
	}
}
