package routes

import (
	"strings"

	_ "estate_backend/docs"
	"estate_backend/internal/handlers"
	"estate_backend/internal/logger"
	"estate_backend/internal/middleware"
	"estate_backend/ws"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// StorageRoute - как раздавать загруженные файлы по публичному префиксу
type StorageRoute struct {
	// Prefix - URL-префикс, например /storage; пустой - файлы отдает сам бэкенд хранилища
	Prefix string
	// LocalDir - каталог локального хранилища; пустой - чтение через MediaHandler
	LocalDir string
}

// RegisterRoutes регистрирует все HTTP и WebSocket маршруты.
func RegisterRoutes(
	ginRouter *gin.Engine,
	appHandlers *handlers.AppHandlers,
	wsHandler *ws.WebSocketHandler,
	auth *middleware.AuthMiddleware,
	storageRoute StorageRoute,
) {
	api := ginRouter.Group("/api")
	{
		appHandlers.HealthHandler.RegisterRoutes(api)
		appHandlers.AuthHandler.RegisterRoutes(api)
		appHandlers.UserHandler.RegisterRoutes(api)
		appHandlers.PropertyHandler.RegisterRoutes(api)
		appHandlers.BlogHandler.RegisterRoutes(api)
		appHandlers.InquiryHandler.RegisterRoutes(api)
		appHandlers.ConsultationHandler.RegisterRoutes(api)
		appHandlers.CatalogHandler.RegisterRoutes(api)
		appHandlers.NotificationHandler.RegisterRoutes(api)
		appHandlers.PushHandler.RegisterRoutes(api)
		appHandlers.MediaHandler.RegisterRoutes(api)
		appHandlers.StatsHandler.RegisterRoutes(api)
	}

	registerStorage(ginRouter, appHandlers.MediaHandler, storageRoute)

	ginRouter.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// токен берется из заголовка, cookie или ?token= (браузерный WebSocket не шлет заголовки)
	wsGroup := ginRouter.Group("/ws")
	wsGroup.Use(auth.Required())
	{
		wsGroup.GET("", wsHandler.ServeWS)
	}
	logger.Info("WebSocket route /ws registered")
}

func registerStorage(ginRouter *gin.Engine, mediaHandler *handlers.MediaHandler, route StorageRoute) {
	prefix := strings.TrimRight(route.Prefix, "/")
	// абсолютный URL (CDN, S3) - раздавать нечего
	if prefix == "" || strings.Contains(prefix, "://") {
		return
	}

	if route.LocalDir != "" {
		ginRouter.Static(prefix, route.LocalDir)
		logger.Info("Serving local storage", "prefix", prefix, "dir", route.LocalDir)
		return
	}

	ginRouter.GET(prefix+"/*path", mediaHandler.ServeFile)
	ginRouter.HEAD(prefix+"/*path", mediaHandler.ServeFile)
	logger.Info("Serving storage through backend", "prefix", prefix)
}
