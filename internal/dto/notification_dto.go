package dto

import (
	"time"

	"github.com/noah-isme/teamerp-api/internal/models"
)

// NotificationCreateRequest describes the payload to create a notification.
type NotificationCreateRequest struct {
	UserID            uint    `json:"user_id" validate:"required,gt=0"`
	Title             string  `json:"title" validate:"required,min=1,max=255"`
	Message           string  `json:"message" validate:"required,min=1,max=2000"`
	Type              string  `json:"type" validate:"omitempty,max=32"`
	RelatedEntityType *string `json:"related_entity_type" validate:"omitempty,max=64"`
	RelatedEntityID   *uint   `json:"related_entity_id"`
}

// NotificationResponse represents notification data returned to clients.
type NotificationResponse struct {
	ID                uint      `json:"id"`
	UserID            uint      `json:"user_id"`
	Title             string    `json:"title"`
	Message           string    `json:"message"`
	Type              string    `json:"type"`
	RelatedEntityType *string   `json:"related_entity_type,omitempty"`
	RelatedEntityID   *uint     `json:"related_entity_id,omitempty"`
	IsRead            bool      `json:"is_read"`
	CreatedAt         time.Time `json:"created_at"`
}

// UnreadCountResponse carries the navigation badge count.
type UnreadCountResponse struct {
	Count int64 `json:"count"`
}

// MarkAllReadResponse reports how many notifications were flipped to read.
type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}

// NewNotificationResponse converts a notification model to a DTO.
func NewNotificationResponse(model models.Notification) NotificationResponse {
	return NotificationResponse{
		ID:                model.ID,
		UserID:            model.UserID,
		Title:             model.Title,
		Message:           model.Message,
		Type:              model.Type,
		RelatedEntityType: model.RelatedEntityType,
		RelatedEntityID:   model.RelatedEntityID,
		IsRead:            model.IsRead,
		CreatedAt:         model.CreatedAt,
	}
}

// NewNotificationResponseSlice converts a slice of models into DTOs.
func NewNotificationResponseSlice(models []models.Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(models))
	for _, model := range models {
		out = append(out, NewNotificationResponse(model))
	}
	return out
}
