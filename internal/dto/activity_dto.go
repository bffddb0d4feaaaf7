package dto

import (
	"time"

	"github.com/noah-isme/teamerp-api/internal/models"
)

// PaginationMeta captures pagination metadata for list responses.
type PaginationMeta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// ActivityListRequest defines filters for listing audit entries.
type ActivityListRequest struct {
	Page       int
	PageSize   int
	ActorID    uint
	Action     string
	EntityType string
	DateFrom   *time.Time
	DateTo     *time.Time
}

// ActivityStatsRequest reuses the list filters without pagination.
type ActivityStatsRequest struct {
	ActorID    uint
	Action     string
	EntityType string
	DateFrom   *time.Time
	DateTo     *time.Time
}

// ActivityResponse serializes an audit entry.
type ActivityResponse struct {
	ID          uint                   `json:"id"`
	ActorID     *uint                  `json:"actor_id"`
	Action      string                 `json:"action"`
	EntityType  string                 `json:"entity_type"`
	EntityID    *uint                  `json:"entity_id"`
	Description string                 `json:"description,omitempty"`
	IPAddress   string                 `json:"ip_address,omitempty"`
	UserAgent   string                 `json:"user_agent,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
}

// ActivityListResponse wraps a paginated audit trail page.
type ActivityListResponse struct {
	Items      []ActivityResponse `json:"items"`
	Pagination PaginationMeta     `json:"pagination"`
}

// ActivityStatsResponse reports per-action counts over the matching rows.
// Total counts every matching row, including unrecognized actions.
type ActivityStatsResponse struct {
	Total        int64            `json:"total"`
	CreatedCount int64            `json:"created_count"`
	UpdatedCount int64            `json:"updated_count"`
	DeletedCount int64            `json:"deleted_count"`
	ByAction     map[string]int64 `json:"by_action"`
}

// NewActivityResponse converts a model into a DTO.
func NewActivityResponse(entry models.ActivityLog) ActivityResponse {
	return ActivityResponse{
		ID:          entry.ID,
		ActorID:     entry.ActorID,
		Action:      entry.Action,
		EntityType:  entry.EntityType,
		EntityID:    entry.EntityID,
		Description: entry.Description,
		IPAddress:   entry.IPAddress,
		UserAgent:   entry.UserAgent,
		Metadata:    entry.Metadata,
		CreatedAt:   entry.CreatedAt,
	}
}

// NewActivityResponseSlice converts a slice of models into DTOs.
func NewActivityResponseSlice(entries []models.ActivityLog) []ActivityResponse {
	out := make([]ActivityResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, NewActivityResponse(entry))
	}
	return out
}
