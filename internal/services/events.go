package services

import (
	"encoding/json"
	"fmt"

	"estate_backend/internal/models"
	"estate_backend/internal/repositories"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Типы событий outbox
const (
	EventPropertySubmitted     = "property.submitted"
	EventPropertyApproved      = "property.approved"
	EventBlogPublished         = "blog.published"
	EventInquiryCreated        = "inquiry.created"
	EventInquiryResponded      = "inquiry.responded"
	EventConsultationCreated   = "consultation.created"
	EventConsultationResponded = "consultation.responded"
	EventUserRegistered        = "user.registered"

	// События-эффекты: каждое выполняет ровно один внешний вызов,
	// поэтому повтор после ошибки не дублирует уже выполненные эффекты
	EventEmailSend     = "email.send"
	EventPushBroadcast = "push.broadcast"
)

// Полезная нагрузка хранит снимок данных на момент изменения:
// обработчик не зависит от того, что стало с записью позже.

type PropertyEvent struct {
	PropertyID string `json:"property_id"`
	Title      string `json:"title"`
	Slug       string `json:"slug"`
	AgentID    string `json:"agent_id"`
	AgentName  string `json:"agent_name,omitempty"`
}

type BlogEvent struct {
	PostID   string `json:"post_id"`
	Title    string `json:"title"`
	Slug     string `json:"slug"`
	AuthorID string `json:"author_id"`
}

// RequestEvent - inquiry или consultation
type RequestEvent struct {
	RequestID       string `json:"request_id"`
	PropertyID      string `json:"property_id,omitempty"`
	PropertyTitle   string `json:"property_title,omitempty"`
	AgentID         string `json:"agent_id,omitempty"`
	UserID          string `json:"user_id,omitempty"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	Subject         string `json:"subject,omitempty"`
	ServiceType     string `json:"service_type,omitempty"`
	ResponseMessage string `json:"response_message,omitempty"`
}

type UserEvent struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

// EmailEvent - одно письмо по шаблону
type EmailEvent struct {
	To       []string               `json:"to"`
	Subject  string                 `json:"subject"`
	Template string                 `json:"template"`
	Data     map[string]interface{} `json:"data,omitempty"`
}

// Полезная нагрузка push.broadcast - push.Message

// enqueueEvent пишет событие в outbox; db должен быть транзакцией, меняющей состояние
func enqueueEvent(db *gorm.DB, repo repositories.OutboxRepository, eventType, aggregateID string, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", eventType, err)
	}
	return repo.Create(db, &models.OutboxEvent{
		EventType:   eventType,
		AggregateID: aggregateID,
		Payload:     datatypes.JSON(raw),
	})
}

func decodePayload(event *models.OutboxEvent, dst interface{}) error {
	if err := json.Unmarshal(event.Payload, dst); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", event.EventType, err)
	}
	return nil
}
