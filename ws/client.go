package ws

import (
	"encoding/json"
	"time"

	"estate_backend/internal/logger"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufferSize = 64
)

// IncomingWSMessage - сообщение от клиента; сервер понимает только "ping"
type IncomingWSMessage struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data"`
}

type Client struct {
	UserID  string
	Conn    *websocket.Conn
	Send    chan any
	Manager *WebSocketManager
}

func newClient(manager *WebSocketManager, conn *websocket.Conn, userID string) *Client {
	return &Client{
		UserID:  userID,
		Conn:    conn,
		Send:    make(chan any, sendBufferSize),
		Manager: manager,
	}
}

func (c *Client) readPump() {
	defer func() {
		c.Manager.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msgBytes, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("ws read error", "user_id", c.UserID, "error", err.Error())
			}
			return
		}

		var msg IncomingWSMessage
		if err := json.Unmarshal(msgBytes, &msg); err != nil {
			logger.Debug("ws: failed to parse message", "user_id", c.UserID, "error", err.Error())
			continue
		}
		c.handleMessage(msg)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// менеджер закрыл канал
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteJSON(msg); err != nil {
				logger.Warn("ws write error", "user_id", c.UserID, "error", err.Error())
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(msg IncomingWSMessage) {
	switch msg.Action {
	case "ping":
		select {
		case c.Send <- Message{Event: "pong"}:
		default:
		}
	default:
		logger.Debug("ws: unhandled action", "action", msg.Action)
	}
}
