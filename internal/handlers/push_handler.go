package handlers

import (
	"net/http"

	"estate_backend/internal/middleware"
	"estate_backend/internal/push"
	"estate_backend/internal/services"
	"estate_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type PushHandler struct {
	*BaseHandler
	pushService services.PushService
}

func NewPushHandler(base *BaseHandler, pushService services.PushService) *PushHandler {
	return &PushHandler{
		BaseHandler: base,
		pushService: pushService,
	}
}

func (h *PushHandler) RegisterRoutes(rg *gin.RouterGroup) {
	pushGroup := rg.Group("/push")
	{
		pushGroup.GET("/vapid-public-key", h.GetVAPIDPublicKey)
		pushGroup.POST("/subscribe", h.Auth.Optional(), h.Subscribe)
		pushGroup.POST("/unsubscribe", h.Unsubscribe)
	}

	rg.POST("/admin/push/broadcast", h.Auth.Required(), middleware.AdminMiddleware(), h.Broadcast)
}

// GetVAPIDPublicKey godoc
// @Summary Публичный VAPID-ключ для подписки браузера
// @Tags push
// @Produce json
// @Success 200 {object} dto.VAPIDKeyResponse
// @Router /push/vapid-public-key [get]
func (h *PushHandler) GetVAPIDPublicKey(c *gin.Context) {
	c.JSON(http.StatusOK, dto.VAPIDKeyResponse{PublicKey: h.pushService.VAPIDPublicKey()})
}

// Subscribe godoc
// @Summary Подписаться на push
// @Description Web push подписка браузера или expo-токен; повторная подписка обновляет ключи
// @Tags push
// @Accept json
// @Produce json
// @Param request body dto.SubscribeRequest true "Подписка"
// @Success 201 {object} dto.PushSubscriptionResponse
// @Router /push/subscribe [post]
func (h *PushHandler) Subscribe(c *gin.Context) {
	var req dto.SubscribeRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	sub, err := h.pushService.Subscribe(c.Request.Context(), h.GetDB(c), h.Actor(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sub)
}

func (h *PushHandler) Unsubscribe(c *gin.Context) {
	var req dto.UnsubscribeRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.pushService.Unsubscribe(c.Request.Context(), h.GetDB(c), req.Endpoint); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Unsubscribed."})
}

func (h *PushHandler) Broadcast(c *gin.Context) {
	var req dto.BroadcastRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	result, err := h.pushService.Broadcast(c.Request.Context(), h.GetDB(c), push.Message{
		Title: req.Title,
		Body:  req.Body,
		URL:   req.URL,
	})
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
