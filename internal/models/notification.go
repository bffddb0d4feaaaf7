package models

import (
	"strings"
	"time"
)

// Notification type vocabulary. Anything else is normalized to info.
const (
	NotificationTypeInfo    = "info"
	NotificationTypeSuccess = "success"
	NotificationTypeWarning = "warning"
	NotificationTypeError   = "error"
)

// NormalizeNotificationType maps unknown or empty notification types to info.
// Unknown types are tolerated rather than rejected so producers that gain new
// event kinds never lose notifications over a styling hint.
func NormalizeNotificationType(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case NotificationTypeSuccess:
		return NotificationTypeSuccess
	case NotificationTypeWarning:
		return NotificationTypeWarning
	case NotificationTypeError:
		return NotificationTypeError
	default:
		return NotificationTypeInfo
	}
}

// Notification is a per-user message with a read/unread lifecycle, optionally
// linked to a business entity by a loose (type, id) pair. Deleting the
// referenced entity does not cascade here.
type Notification struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	UserID            uint      `gorm:"not null;index" json:"user_id"`
	Title             string    `gorm:"size:255;not null" json:"title"`
	Message           string    `gorm:"type:text;not null" json:"message"`
	Type              string    `gorm:"size:32;not null;default:info" json:"type"`
	RelatedEntityType *string   `gorm:"size:64" json:"related_entity_type"`
	RelatedEntityID   *uint     `json:"related_entity_id"`
	IsRead            bool      `gorm:"not null;default:false;index" json:"is_read"`
	CreatedAt         time.Time `json:"created_at"`
}
