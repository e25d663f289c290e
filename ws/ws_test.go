package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"estate_backend/pkg/contextkeys"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebSocketManager_PublishToUser(t *testing.T) {
	manager := NewWebSocketManager()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go manager.Run(ctx)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ws", func(c *gin.Context) {
		c.Set(string(contextkeys.UserIDKey), c.Query("user"))
	}, NewWebSocketHandler(manager, []string{"*"}).ServeWS)

	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?user=u1"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return manager.IsUserConnected("u1") }, 2*time.Second, 10*time.Millisecond)

	manager.PublishToUser("u2", "notification", map[string]string{"title": "not for u1"})
	manager.PublishToUser("u1", "notification", map[string]string{"title": "Property approved"})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg struct {
		Event string            `json:"event"`
		Data  map[string]string `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "notification", msg.Event)
	assert.Equal(t, "Property approved", msg.Data["title"])

	require.NoError(t, conn.WriteJSON(IncomingWSMessage{Action: "ping"}))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "pong", msg.Event)

	conn.Close()
	assert.Eventually(t, func() bool { return !manager.IsUserConnected("u1") }, 2*time.Second, 10*time.Millisecond)
}

func TestWebSocketHandler_RequiresUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ws", NewWebSocketHandler(NewWebSocketManager(), nil).ServeWS)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
