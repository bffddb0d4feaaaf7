package models

import (
	"time"

	"gorm.io/datatypes"
)

// Known audit action vocabulary. Unrecognized actions are stored as-is so
// stats stay truthful when new event kinds appear before the enum catches up.
const (
	ActionCreated    = "created"
	ActionUpdated    = "updated"
	ActionDeleted    = "deleted"
	ActionLogin      = "login"
	ActionLogout     = "logout"
	ActionRegistered = "registered"
	ActionCommented  = "commented"
	ActionAttached   = "attached"
)

var knownActions = map[string]struct{}{
	ActionCreated:    {},
	ActionUpdated:    {},
	ActionDeleted:    {},
	ActionLogin:      {},
	ActionLogout:     {},
	ActionRegistered: {},
	ActionCommented:  {},
	ActionAttached:   {},
}

// KnownAction reports whether the action belongs to the closed vocabulary.
func KnownAction(action string) bool {
	_, ok := knownActions[action]
	return ok
}

// ActivityLog is an append-only audit entry. A nil ActorID credits the
// system itself. Rows are never updated or deleted by the application.
type ActivityLog struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	ActorID     *uint             `gorm:"column:user_id;index" json:"actor_id"`
	Action      string            `gorm:"size:64;not null;index" json:"action"`
	EntityType  string            `gorm:"size:64;not null;index" json:"entity_type"`
	EntityID    *uint             `json:"entity_id"`
	Description string            `gorm:"type:text" json:"description"`
	IPAddress   string            `gorm:"size:64" json:"ip_address"`
	UserAgent   string            `gorm:"size:255" json:"user_agent"`
	Metadata    datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	CreatedAt   time.Time         `gorm:"index" json:"created_at"`
}

// TableName keeps the table name used by data migrated from the previous system.
func (ActivityLog) TableName() string {
	return "activities"
}
