package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/teamerp-api/internal/dto"
	"github.com/noah-isme/teamerp-api/internal/models"
	"github.com/noah-isme/teamerp-api/internal/observability"
	"github.com/noah-isme/teamerp-api/internal/repository"
)

const notificationBufferSize = 16

// NotificationServiceConfig tunes list limits and the unread-count cache.
type NotificationServiceConfig struct {
	DefaultLimit   int
	MaxLimit       int
	UnreadCacheTTL time.Duration
	ChannelBase    string
}

// NotificationService creates per-user notifications, tracks their
// read/unread lifecycle and streams them to connected clients.
type NotificationService interface {
	Create(ctx context.Context, payload dto.NotificationCreateRequest) (dto.NotificationResponse, error)
	Notify(ctx context.Context, payload dto.NotificationCreateRequest)
	List(ctx context.Context, userID uint, limit int, unreadOnly bool) ([]dto.NotificationResponse, error)
	UnreadCount(ctx context.Context, userID uint) (int64, error)
	MarkRead(ctx context.Context, id, userID uint) (dto.NotificationResponse, error)
	MarkAllRead(ctx context.Context, userID uint) (int64, error)
	Delete(ctx context.Context, id, userID uint) error
	Subscribe(userID uint) (<-chan dto.NotificationResponse, func())
	Start(ctx context.Context)
}

type notificationService struct {
	repo        repository.NotificationRepository
	redis       *redis.Client
	redisStream string
	nats        *nats.Conn
	natsSubject string
	cfg         NotificationServiceConfig
	validator   *validator.Validate
	logger      zerolog.Logger
	tracer      trace.Tracer
	sanitizer   *bluemonday.Policy
	broker      *notificationBroker
	nodeID      string
	now         func() time.Time
}

type notificationEvent struct {
	Source       string                   `json:"source"`
	Notification dto.NotificationResponse `json:"notification"`
	SentAt       time.Time                `json:"sent_at"`
}

type notificationBroker struct {
	mu          sync.RWMutex
	subscribers map[uint]map[chan dto.NotificationResponse]struct{}
}

// NewNotificationService constructs a notification service.
func NewNotificationService(repo repository.NotificationRepository, redisClient *redis.Client, natsConn *nats.Conn, cfg NotificationServiceConfig, validate *validator.Validate, logger zerolog.Logger) NotificationService {
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 20
	}
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = 100
	}

	stream := ""
	subject := ""
	if cfg.ChannelBase != "" {
		stream = cfg.ChannelBase + ":notifications"
		subject = strings.ReplaceAll(cfg.ChannelBase, ":", ".") + ".notifications"
	}

	return &notificationService{
		repo:        repo,
		redis:       redisClient,
		redisStream: stream,
		nats:        natsConn,
		natsSubject: subject,
		cfg:         cfg,
		validator:   validate,
		logger:      logger.With().Str("component", "notification_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/teamerp-api/internal/service/notification"),
		sanitizer:   bluemonday.StrictPolicy(),
		broker: &notificationBroker{
			subscribers: make(map[uint]map[chan dto.NotificationResponse]struct{}),
		},
		nodeID: uuid.NewString(),
		now:    time.Now,
	}
}

// Start launches the cross-node fan-out consumers. Safe to skip when neither
// Redis nor NATS is configured.
func (s *notificationService) Start(ctx context.Context) {
	if s.redis != nil && s.redisStream != "" {
		go s.consumeRedis(ctx)
	}
	if s.nats != nil && s.natsSubject != "" {
		go s.consumeNATS(ctx)
	}
}

func (s *notificationService) Create(ctx context.Context, payload dto.NotificationCreateRequest) (dto.NotificationResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.NotificationResponse{}, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	cleanTitle := strings.TrimSpace(s.sanitizer.Sanitize(payload.Title))
	cleanMessage := strings.TrimSpace(s.sanitizer.Sanitize(payload.Message))
	if cleanTitle == "" || cleanMessage == "" {
		return dto.NotificationResponse{}, fmt.Errorf("%w: notification empty after sanitization", ErrInvalidArgument)
	}

	notificationType := models.NormalizeNotificationType(payload.Type)

	attrs := []attribute.KeyValue{
		attribute.Int64("notification.user_id", int64(payload.UserID)),
		attribute.String("notification.type", notificationType),
	}
	spanCtx, span := s.tracer.Start(ctx, "notifications.create", trace.WithAttributes(attrs...))
	defer span.End()

	model := models.Notification{
		UserID:            payload.UserID,
		Title:             cleanTitle,
		Message:           cleanMessage,
		Type:              notificationType,
		RelatedEntityType: payload.RelatedEntityType,
		RelatedEntityID:   payload.RelatedEntityID,
		CreatedAt:         s.now().UTC(),
	}

	if err := s.repo.Create(spanCtx, &model); err != nil {
		span.RecordError(err)
		return dto.NotificationResponse{}, err
	}

	s.invalidateUnreadCache(spanCtx, payload.UserID)

	response := dto.NewNotificationResponse(model)
	s.broker.broadcast(response.UserID, response)
	if err := s.publish(spanCtx, response); err != nil {
		s.logger.Warn().Err(err).Msg("failed to publish notification to broker")
	}

	observability.NotificationsCreated().WithLabelValues(response.Type).Inc()

	return response, nil
}

// Notify is the best-effort trigger entry point: a failed write is logged
// and swallowed so the business action that raised the event still succeeds.
func (s *notificationService) Notify(ctx context.Context, payload dto.NotificationCreateRequest) {
	if _, err := s.Create(ctx, payload); err != nil {
		s.logger.Warn().Err(err).Uint("user_id", payload.UserID).Msg("notification dropped")
	}
}

func (s *notificationService) List(ctx context.Context, userID uint, limit int, unreadOnly bool) ([]dto.NotificationResponse, error) {
	if userID == 0 {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidArgument)
	}

	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}
	if limit > s.cfg.MaxLimit {
		limit = s.cfg.MaxLimit
	}

	notifications, err := s.repo.ListByUser(ctx, userID, limit, unreadOnly)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return dto.NewNotificationResponseSlice(notifications), nil
}

// UnreadCount is rendered on every page, so the value is cached briefly in
// Redis and invalidated on every mutation from this node.
func (s *notificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	if userID == 0 {
		return 0, fmt.Errorf("%w: user id is required", ErrInvalidArgument)
	}

	cacheKey := s.unreadCacheKey(userID)
	if s.redis != nil && s.cfg.UnreadCacheTTL > 0 {
		cached, err := s.redis.Get(ctx, cacheKey).Result()
		if err == nil {
			if count, parseErr := strconv.ParseInt(cached, 10, 64); parseErr == nil {
				return count, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("failed to read unread-count cache")
		}
	}

	count, err := s.repo.CountByUser(ctx, userID, true)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if s.redis != nil && s.cfg.UnreadCacheTTL > 0 {
		if err := s.redis.Set(ctx, cacheKey, strconv.FormatInt(count, 10), s.cfg.UnreadCacheTTL).Err(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to store unread-count cache")
		}
	}

	return count, nil
}

// MarkRead flips the read flag after verifying ownership. Marking an
// already-read notification succeeds with no change.
func (s *notificationService) MarkRead(ctx context.Context, id, userID uint) (dto.NotificationResponse, error) {
	notification, err := s.ownedNotification(ctx, id, userID)
	if err != nil {
		return dto.NotificationResponse{}, err
	}

	if notification.IsRead {
		return dto.NewNotificationResponse(notification), nil
	}

	if err := s.repo.MarkRead(ctx, id); err != nil {
		return dto.NotificationResponse{}, err
	}
	notification.IsRead = true

	s.invalidateUnreadCache(ctx, userID)

	return dto.NewNotificationResponse(notification), nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	if userID == 0 {
		return 0, fmt.Errorf("%w: user id is required", ErrInvalidArgument)
	}

	updated, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, err
	}

	s.invalidateUnreadCache(ctx, userID)

	return updated, nil
}

// Delete removes the notification permanently after the ownership check.
func (s *notificationService) Delete(ctx context.Context, id, userID uint) error {
	if _, err := s.ownedNotification(ctx, id, userID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidateUnreadCache(ctx, userID)

	return nil
}

func (s *notificationService) Subscribe(userID uint) (<-chan dto.NotificationResponse, func()) {
	channel := make(chan dto.NotificationResponse, notificationBufferSize)

	s.broker.subscribe(userID, channel)
	observability.SSEClientsActive().Inc()

	cleanup := func() {
		s.broker.unsubscribe(userID, channel)
		observability.SSEClientsActive().Dec()
	}

	return channel, cleanup
}

func (s *notificationService) ownedNotification(ctx context.Context, id, userID uint) (models.Notification, error) {
	notification, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Notification{}, ErrNotFound
		}
		return models.Notification{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if notification.UserID != userID {
		return models.Notification{}, ErrForbidden
	}
	return notification, nil
}

func (s *notificationService) unreadCacheKey(userID uint) string {
	return fmt.Sprintf("notifications:unread:%d", userID)
}

func (s *notificationService) invalidateUnreadCache(ctx context.Context, userID uint) {
	if s.redis == nil || s.cfg.UnreadCacheTTL <= 0 {
		return
	}
	if err := s.redis.Del(ctx, s.unreadCacheKey(userID)).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate unread-count cache")
	}
}

func (s *notificationService) publish(ctx context.Context, notification dto.NotificationResponse) error {
	event := notificationEvent{
		Source:       s.nodeID,
		Notification: notification,
		SentAt:       s.now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if s.redis != nil && s.redisStream != "" {
		if err := s.redis.Publish(ctx, s.redisStream, payload).Err(); err != nil {
			return err
		}
	}

	if s.nats != nil && s.natsSubject != "" {
		if err := s.nats.Publish(s.natsSubject, payload); err != nil {
			return err
		}
	}

	return nil
}

func (s *notificationService) consumeRedis(ctx context.Context) {
	pubsub := s.redis.Subscribe(ctx, s.redisStream)
	defer func() { _ = pubsub.Close() }()

	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			s.logger.Error().Err(err).Msg("notification redis subscription closed")
			return
		}
		s.handleEvent([]byte(msg.Payload))
	}
}

func (s *notificationService) consumeNATS(ctx context.Context) {
	sub, err := s.nats.QueueSubscribe(s.natsSubject, "teamerp-notifications", func(msg *nats.Msg) {
		s.handleEvent(msg.Data)
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to subscribe to nats notifications subject")
		return
	}

	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to drain notification nats subscription")
		}
	}()
}

func (s *notificationService) handleEvent(payload []byte) {
	var event notificationEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		s.logger.Warn().Err(err).Msg("invalid notification event payload")
		return
	}

	// Events published by this node were already broadcast locally.
	if event.Source == s.nodeID {
		return
	}

	notification := event.Notification
	notification.Type = models.NormalizeNotificationType(notification.Type)

	s.broker.broadcast(notification.UserID, notification)
}

func (b *notificationBroker) subscribe(userID uint, ch chan dto.NotificationResponse) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.subscribers[userID]; !exists {
		b.subscribers[userID] = make(map[chan dto.NotificationResponse]struct{})
	}
	b.subscribers[userID][ch] = struct{}{}
}

func (b *notificationBroker) unsubscribe(userID uint, ch chan dto.NotificationResponse) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if subscribers, ok := b.subscribers[userID]; ok {
		delete(subscribers, ch)
		close(ch)
		if len(subscribers) == 0 {
			delete(b.subscribers, userID)
		}
	}
}

func (b *notificationBroker) broadcast(userID uint, notification dto.NotificationResponse) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	subscribers := b.subscribers[userID]
	for ch := range subscribers {
		select {
		case ch <- notification:
		default:
		}
	}
}
