package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/noah-isme/teamerp-api/internal/dto"
	"github.com/noah-isme/teamerp-api/internal/models"
	"github.com/noah-isme/teamerp-api/internal/repository"
)

// ReportScope is the explicit identity a summary is computed for. Admins see
// every row; anyone else sees only rows scoped to their own user id.
type ReportScope struct {
	UserID uint
	Role   string
}

// Admin reports whether the scope sees unrestricted data.
func (s ReportScope) Admin() bool {
	return s.Role == models.RoleAdmin
}

// ReportService aggregates dashboard and export summaries.
type ReportService interface {
	Summary(ctx context.Context, scope ReportScope, filter dto.ReportFilter) (dto.ReportSummaryResponse, error)
}

type reportService struct {
	activities ActivityService
	resources  repository.ResourceRepository
	cache      *redis.Client
	cacheTTL   time.Duration
	logger     zerolog.Logger
	now        func() time.Time
}

// NewReportService constructs the reporting service.
func NewReportService(activities ActivityService, resources repository.ResourceRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) ReportService {
	return &reportService{
		activities: activities,
		resources:  resources,
		cache:      cache,
		cacheTTL:   ttl,
		logger:     logger.With().Str("component", "report_service").Logger(),
		now:        time.Now,
	}
}

// Summary runs one aggregation path for every role. The scope only narrows
// the filters, so an admin summary and a user summary differ in nothing but
// the rows they count.
func (s *reportService) Summary(ctx context.Context, scope ReportScope, filter dto.ReportFilter) (dto.ReportSummaryResponse, error) {
	tracer := otel.Tracer("github.com/noah-isme/teamerp-api/internal/service/report")
	ctx, span := tracer.Start(ctx, "reports.summary")
	span.SetAttributes(
		attribute.String("report.role", scope.Role),
		attribute.Int64("report.user_id", int64(scope.UserID)),
	)
	defer span.End()

	// Filtered summaries bypass the cache; only the default dashboard view
	// is hot enough to be worth caching per scope.
	cacheable := filter == (dto.ReportFilter{})

	cacheKey := s.cacheKey(scope)
	if cacheable && s.cache != nil && s.cacheTTL > 0 {
		cached, err := s.cache.Get(ctx, cacheKey).Result()
		if err == nil {
			var response dto.ReportSummaryResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				response.CacheHit = true
				span.SetAttributes(attribute.Bool("report.cache_hit", true))
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read report cache")
			span.RecordError(err)
		}
	}

	statsReq := dto.ActivityStatsRequest{
		Action:     filter.Action,
		EntityType: filter.EntityType,
		DateFrom:   filter.DateFrom,
		DateTo:     filter.DateTo,
	}

	var ownerScope *uint
	scopeLabel := "all"
	if !scope.Admin() {
		userID := scope.UserID
		statsReq.ActorID = userID
		ownerScope = &userID
		scopeLabel = fmt.Sprintf("user:%d", userID)
	}

	stats, err := s.activities.Stats(ctx, statsReq)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "activity_stats_failed")
		return dto.ReportSummaryResponse{}, err
	}

	projectCount, err := s.resources.CountProjects(ctx, ownerScope)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "count_projects_failed")
		return dto.ReportSummaryResponse{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	taskCount, err := s.resources.CountTasks(ctx, ownerScope)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "count_tasks_failed")
		return dto.ReportSummaryResponse{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	summary := dto.ReportSummaryResponse{
		Activity:     stats,
		ProjectCount: projectCount,
		TaskCount:    taskCount,
		Scope:        scopeLabel,
		GeneratedAt:  s.now().UTC(),
	}

	if scope.Admin() {
		userCount, err := s.resources.CountUsers(ctx)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "count_users_failed")
			return dto.ReportSummaryResponse{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		summary.UserCount = userCount
	}

	if cacheable && s.cache != nil && s.cacheTTL > 0 {
		if payload, err := json.Marshal(summary); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store report cache")
				span.RecordError(err)
			}
		}
	}

	return summary, nil
}

func (s *reportService) cacheKey(scope ReportScope) string {
	if scope.Admin() {
		return "reports:summary:admin"
	}
	return fmt.Sprintf("reports:summary:user:%d", scope.UserID)
}
