package ws

import (
	"context"
	"sync"

	"estate_backend/internal/logger"
)

// Message - конверт, который получает клиент: {"event": "notification", "data": {...}}
type Message struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// WebSocketManager хранит открытые соединения по пользователям.
// У одного пользователя может быть несколько вкладок/устройств.
type WebSocketManager struct {
	clients    map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
}

func NewWebSocketManager() *WebSocketManager {
	return &WebSocketManager{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run обслуживает регистрацию клиентов до отмены ctx, затем закрывает все соединения
func (manager *WebSocketManager) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(manager.done)
			manager.closeAll()
			return

		case client := <-manager.register:
			manager.mu.Lock()
			if manager.clients[client.UserID] == nil {
				manager.clients[client.UserID] = make(map[*Client]bool)
			}
			manager.clients[client.UserID][client] = true
			manager.mu.Unlock()
			logger.Debug("ws client registered", "user_id", client.UserID, "total", manager.GetClientCount())

		case client := <-manager.unregister:
			manager.remove(client)
		}
	}
}

func (manager *WebSocketManager) remove(client *Client) {
	manager.mu.Lock()
	defer manager.mu.Unlock()

	conns, ok := manager.clients[client.UserID]
	if !ok || !conns[client] {
		return
	}
	delete(conns, client)
	close(client.Send)
	if len(conns) == 0 {
		delete(manager.clients, client.UserID)
	}
	logger.Debug("ws client unregistered", "user_id", client.UserID)
}

func (manager *WebSocketManager) closeAll() {
	manager.mu.Lock()
	defer manager.mu.Unlock()

	for userID, conns := range manager.clients {
		for client := range conns {
			close(client.Send)
		}
		delete(manager.clients, userID)
	}
}

// Register/Unregister не блокируются после остановки Run
func (manager *WebSocketManager) Register(client *Client) bool {
	select {
	case manager.register <- client:
		return true
	case <-manager.done:
		return false
	}
}

func (manager *WebSocketManager) Unregister(client *Client) {
	select {
	case manager.unregister <- client:
	case <-manager.done:
	}
}

// PublishToUser отправляет событие во все соединения пользователя.
// Не блокирует: клиент с переполненной очередью отключается.
func (manager *WebSocketManager) PublishToUser(userID, event string, payload interface{}) {
	msg := Message{Event: event, Data: payload}

	manager.mu.RLock()
	defer manager.mu.RUnlock()

	for client := range manager.clients[userID] {
		select {
		case client.Send <- msg:
		default:
			logger.Warn("ws client send buffer is full, disconnecting", "user_id", userID)
			go manager.Unregister(client)
		}
	}
}

// GetClientCount возвращает количество открытых соединений
func (manager *WebSocketManager) GetClientCount() int {
	manager.mu.RLock()
	defer manager.mu.RUnlock()

	total := 0
	for _, conns := range manager.clients {
		total += len(conns)
	}
	return total
}

// IsUserConnected проверяет, есть ли у пользователя открытые соединения
func (manager *WebSocketManager) IsUserConnected(userID string) bool {
	manager.mu.RLock()
	defer manager.mu.RUnlock()
	return len(manager.clients[userID]) > 0
}
