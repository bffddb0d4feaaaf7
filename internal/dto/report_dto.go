package dto

import "time"

// ReportFilter narrows the report window. Zero values impose no constraint.
type ReportFilter struct {
	Action     string
	EntityType string
	DateFrom   *time.Time
	DateTo     *time.Time
}

// ReportSummaryResponse is the dashboard payload. Non-admin scopes see the
// same shape with every count restricted to their own rows.
type ReportSummaryResponse struct {
	Activity     ActivityStatsResponse `json:"activity"`
	ProjectCount int64                 `json:"project_count"`
	TaskCount    int64                 `json:"task_count"`
	UserCount    int64                 `json:"user_count,omitempty"`
	Scope        string                `json:"scope"`
	CacheHit     bool                  `json:"cache_hit,omitempty"`
	GeneratedAt  time.Time             `json:"generated_at"`
}
