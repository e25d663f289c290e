package ws

import (
	"net/http"
	"strings"

	"estate_backend/internal/logger"
	"estate_backend/internal/middleware"
	"estate_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type WebSocketHandler struct {
	Manager  *WebSocketManager
	upgrader websocket.Upgrader
}

// NewWebSocketHandler: origins - разрешенные Origin ("*" - любой); запросы без Origin (мобильные клиенты) пропускаются
func NewWebSocketHandler(manager *WebSocketManager, origins []string) *WebSocketHandler {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[strings.TrimRight(strings.TrimSpace(o), "/")] = true
	}

	return &WebSocketHandler{
		Manager: manager,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed["*"] || allowed[origin]
			},
		},
	}
}

// ServeWS godoc
// @Summary      Realtime-уведомления
// @Description  WebSocket; токен в заголовке Authorization, cookie или ?token=
// @Tags         notifications
// @Success      101
// @Failure      401  {object}  apperrors.AppError
// @Router       /ws [get]
func (h *WebSocketHandler) ServeWS(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		apperrors.HandleError(c, apperrors.ErrUnauthenticated)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.CtxWithError(c.Request.Context(), "websocket upgrade failed", err)
		return
	}

	client := newClient(h.Manager, conn, userID)
	if !h.Manager.Register(client) {
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
