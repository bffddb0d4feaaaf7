package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/noah-isme/teamerp-api/internal/dto"
	"github.com/noah-isme/teamerp-api/internal/models"
	"github.com/noah-isme/teamerp-api/internal/observability"
	"github.com/noah-isme/teamerp-api/internal/repository"
)

// Actor identifies who triggered an operation. A nil ID means the system
// itself. Identity always arrives explicitly from the caller, never from
// ambient state.
type Actor struct {
	ID   *uint
	Role string
}

// RequestOrigin carries the client address and agent captured at the HTTP edge.
type RequestOrigin struct {
	IPAddress string
	UserAgent string
}

// ActivityEntry captures the details required to persist an audit entry.
type ActivityEntry struct {
	ActorID     *uint
	Action      string
	EntityType  string
	EntityID    *uint
	Description string
	Origin      RequestOrigin
	Metadata    map[string]interface{}
}

// ActivityRecorder is the trigger interface business logic calls after
// completing a domain action.
type ActivityRecorder interface {
	Record(ctx context.Context, entry ActivityEntry) (dto.ActivityResponse, error)
	Log(ctx context.Context, entry ActivityEntry)
}

// ActivityService exposes methods to persist and query the audit trail.
type ActivityService interface {
	ActivityRecorder
	Query(ctx context.Context, req dto.ActivityListRequest) (dto.ActivityListResponse, error)
	Stats(ctx context.Context, req dto.ActivityStatsRequest) (dto.ActivityStatsResponse, error)
}

type activityService struct {
	repo        repository.ActivityLogRepository
	maxPageSize int
	logger      zerolog.Logger
	now         func() time.Time
}

// NewActivityService constructs the activity log service.
func NewActivityService(repo repository.ActivityLogRepository, maxPageSize int, logger zerolog.Logger) ActivityService {
	if maxPageSize <= 0 {
		maxPageSize = 200
	}
	return &activityService{
		repo:        repo,
		maxPageSize: maxPageSize,
		logger:      logger.With().Str("component", "activity_service").Logger(),
		now:         time.Now,
	}
}

// Record appends one audit entry. Unlike Log it surfaces persistence errors,
// for callers that want the audit write inside their own failure handling.
func (s *activityService) Record(ctx context.Context, entry ActivityEntry) (dto.ActivityResponse, error) {
	action := strings.ToLower(strings.TrimSpace(entry.Action))
	entityType := strings.ToLower(strings.TrimSpace(entry.EntityType))
	if action == "" {
		return dto.ActivityResponse{}, fmt.Errorf("%w: action is required", ErrInvalidArgument)
	}
	if entityType == "" {
		return dto.ActivityResponse{}, fmt.Errorf("%w: entity type is required", ErrInvalidArgument)
	}

	model := models.ActivityLog{
		ActorID:     entry.ActorID,
		Action:      action,
		EntityType:  entityType,
		EntityID:    entry.EntityID,
		Description: strings.TrimSpace(entry.Description),
		IPAddress:   entry.Origin.IPAddress,
		UserAgent:   entry.Origin.UserAgent,
		Metadata:    sanitizeMetadata(entry.Metadata),
		CreatedAt:   s.now().UTC(),
	}

	if err := s.repo.Create(ctx, &model); err != nil {
		s.logger.Error().Err(err).Str("action", action).Str("entity_type", entityType).Msg("failed to persist activity log")
		return dto.ActivityResponse{}, err
	}

	observability.ActivitiesRecorded().WithLabelValues(action).Inc()

	return dto.NewActivityResponse(model), nil
}

// Log is the fire-and-forget variant: any failure is written to the
// operational log and swallowed so the triggering business operation is
// never aborted by its own audit trail.
func (s *activityService) Log(ctx context.Context, entry ActivityEntry) {
	if _, err := s.Record(ctx, entry); err != nil {
		s.logger.Warn().Err(err).Str("action", entry.Action).Msg("activity log dropped")
	}
}

func (s *activityService) Query(ctx context.Context, req dto.ActivityListRequest) (dto.ActivityListResponse, error) {
	page := req.Page
	if page <= 0 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 25
	}
	if pageSize > s.maxPageSize {
		pageSize = s.maxPageSize
	}

	filter := repository.ActivityLogFilter{
		Page:       page,
		PageSize:   pageSize,
		Action:     strings.ToLower(strings.TrimSpace(req.Action)),
		EntityType: strings.ToLower(strings.TrimSpace(req.EntityType)),
		DateFrom:   req.DateFrom,
		DateTo:     req.DateTo,
	}
	if req.ActorID > 0 {
		actorID := req.ActorID
		filter.ActorID = &actorID
	}

	entries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.ActivityListResponse{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	pagination := dto.PaginationMeta{
		Page:       page,
		PageSize:   pageSize,
		TotalItems: total,
		TotalPages: int(math.Ceil(float64(total) / float64(pageSize))),
	}

	return dto.ActivityListResponse{
		Items:      dto.NewActivityResponseSlice(entries),
		Pagination: pagination,
	}, nil
}

func (s *activityService) Stats(ctx context.Context, req dto.ActivityStatsRequest) (dto.ActivityStatsResponse, error) {
	filter := repository.ActivityLogFilter{
		Action:     strings.ToLower(strings.TrimSpace(req.Action)),
		EntityType: strings.ToLower(strings.TrimSpace(req.EntityType)),
		DateFrom:   req.DateFrom,
		DateTo:     req.DateTo,
	}
	if req.ActorID > 0 {
		actorID := req.ActorID
		filter.ActorID = &actorID
	}

	counts, total, err := s.repo.CountByAction(ctx, filter)
	if err != nil {
		return dto.ActivityStatsResponse{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	byAction := make(map[string]int64, len(counts))
	for action, count := range counts {
		byAction[action] = count
	}

	return dto.ActivityStatsResponse{
		Total:        total,
		CreatedCount: counts[models.ActionCreated],
		UpdatedCount: counts[models.ActionUpdated],
		DeletedCount: counts[models.ActionDeleted],
		ByAction:     byAction,
	}, nil
}

func sanitizeMetadata(metadata map[string]interface{}) datatypes.JSONMap {
	if metadata == nil {
		return datatypes.JSONMap{}
	}

	sanitized := datatypes.JSONMap{}
	for key, value := range metadata {
		lower := strings.ToLower(key)
		if strings.Contains(lower, "password") || strings.Contains(lower, "token") || strings.Contains(lower, "secret") {
			sanitized[key] = "***"
			continue
		}
		sanitized[key] = value
	}
	return sanitized
}
