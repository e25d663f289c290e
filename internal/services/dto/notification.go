package dto

import (
	"encoding/json"
	"time"
)

type NotificationQuery struct {
	UnreadOnly bool `form:"unread_only"`
	Page       int  `form:"page" validate:"omitempty,min=1"`
	PerPage    int  `form:"per_page" validate:"omitempty,min=1,max=100"`
}

type NotificationResponse struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Title     string          `json:"title"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data,omitempty"`
	IsRead    bool            `json:"is_read"`
	ReadAt    *time.Time      `json:"read_at,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

type UnreadCountResponse struct {
	Count int64 `json:"count"`
}
