package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/teamerp-api/internal/dto"
	"github.com/noah-isme/teamerp-api/internal/models"
)

func newNotificationServiceForTest(repo *memoryNotificationRepo, redisClient *redis.Client) *notificationService {
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewNotificationService(repo, redisClient, nil, NotificationServiceConfig{
		DefaultLimit:   20,
		MaxLimit:       100,
		UnreadCacheTTL: time.Minute,
	}, validate, testLogger()).(*notificationService)
	svc.now = fixedClock(time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC))
	return svc
}

func TestNotificationServiceCreateValidatesPayload(t *testing.T) {
	svc := newNotificationServiceForTest(&memoryNotificationRepo{}, nil)

	_, err := svc.Create(context.Background(), dto.NotificationCreateRequest{Title: "x", Message: "y"})
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = svc.Create(context.Background(), dto.NotificationCreateRequest{UserID: 5, Message: "y"})
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestNotificationServiceCreateNormalizesTypeAndSanitizes(t *testing.T) {
	repo := &memoryNotificationRepo{}
	svc := newNotificationServiceForTest(repo, nil)

	notification, err := svc.Create(context.Background(), dto.NotificationCreateRequest{
		UserID:  5,
		Title:   "Task assigned",
		Message: "See <script>alert(1)</script> details",
		Type:    "urgent",
	})
	require.NoError(t, err)
	require.Equal(t, models.NotificationTypeInfo, notification.Type, "unknown type normalized to info")
	require.NotContains(t, notification.Message, "<script>")
	require.False(t, notification.IsRead)
}

func TestNotificationServiceNotifySwallowsStoreFailure(t *testing.T) {
	repo := &memoryNotificationRepo{failCreate: true}
	svc := newNotificationServiceForTest(repo, nil)

	// Must not panic; the triggering business action is unaffected.
	svc.Notify(context.Background(), dto.NotificationCreateRequest{
		UserID:  5,
		Title:   "Task assigned",
		Message: "details",
	})
	require.Empty(t, repo.notifications)
}

func TestNotificationServiceUnreadCountLifecycle(t *testing.T) {
	repo := &memoryNotificationRepo{}
	svc := newNotificationServiceForTest(repo, nil)

	created, err := svc.Create(context.Background(), dto.NotificationCreateRequest{
		UserID:  5,
		Title:   "Task assigned",
		Message: "details",
		Type:    models.NotificationTypeInfo,
	})
	require.NoError(t, err)

	count, err := svc.UnreadCount(context.Background(), 5)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)

	_, err = svc.MarkRead(context.Background(), created.ID, 5)
	require.NoError(t, err)

	count, err = svc.UnreadCount(context.Background(), 5)
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestNotificationServiceUnreadCountMatchesUnreadList(t *testing.T) {
	repo := &memoryNotificationRepo{}
	svc := newNotificationServiceForTest(repo, nil)

	for i := 0; i < 5; i++ {
		_, err := svc.Create(context.Background(), dto.NotificationCreateRequest{UserID: 5, Title: "n", Message: "m"})
		require.NoError(t, err)
	}
	created, err := svc.Create(context.Background(), dto.NotificationCreateRequest{UserID: 5, Title: "n", Message: "m"})
	require.NoError(t, err)
	_, err = svc.MarkRead(context.Background(), created.ID, 5)
	require.NoError(t, err)

	unread, err := svc.List(context.Background(), 5, 0, true)
	require.NoError(t, err)

	count, err := svc.UnreadCount(context.Background(), 5)
	require.NoError(t, err)
	require.Equal(t, int64(len(unread)), count)
}

func TestNotificationServiceUnreadCountCachesInRedis(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer client.Close()

	repo := &memoryNotificationRepo{}
	svc := newNotificationServiceForTest(repo, client)

	_, err = svc.Create(context.Background(), dto.NotificationCreateRequest{UserID: 5, Title: "n", Message: "m"})
	require.NoError(t, err)

	count, err := svc.UnreadCount(context.Background(), 5)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
	require.True(t, server.Exists("notifications:unread:5"))

	// A mutation invalidates the cached badge value.
	_, err = svc.MarkAllRead(context.Background(), 5)
	require.NoError(t, err)
	require.False(t, server.Exists("notifications:unread:5"))

	count, err = svc.UnreadCount(context.Background(), 5)
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestNotificationServiceMarkReadIsIdempotent(t *testing.T) {
	repo := &memoryNotificationRepo{}
	svc := newNotificationServiceForTest(repo, nil)

	created, err := svc.Create(context.Background(), dto.NotificationCreateRequest{UserID: 5, Title: "n", Message: "m"})
	require.NoError(t, err)

	first, err := svc.MarkRead(context.Background(), created.ID, 5)
	require.NoError(t, err)
	require.True(t, first.IsRead)

	second, err := svc.MarkRead(context.Background(), created.ID, 5)
	require.NoError(t, err)
	require.Equal(t, first.IsRead, second.IsRead)
}

func TestNotificationServiceOwnershipIsolation(t *testing.T) {
	repo := &memoryNotificationRepo{}
	svc := newNotificationServiceForTest(repo, nil)

	created, err := svc.Create(context.Background(), dto.NotificationCreateRequest{UserID: 5, Title: "n", Message: "m"})
	require.NoError(t, err)

	_, err = svc.MarkRead(context.Background(), created.ID, 6)
	require.ErrorIs(t, err, ErrForbidden)

	err = svc.Delete(context.Background(), created.ID, 6)
	require.ErrorIs(t, err, ErrForbidden)

	// State unchanged: still unread and still owned by user 5.
	count, err := svc.UnreadCount(context.Background(), 5)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)

	listed, err := svc.List(context.Background(), 6, 0, false)
	require.NoError(t, err)
	require.Empty(t, listed)
}

func TestNotificationServiceMutationsOnMissingRow(t *testing.T) {
	svc := newNotificationServiceForTest(&memoryNotificationRepo{}, nil)

	_, err := svc.MarkRead(context.Background(), 42, 5)
	require.ErrorIs(t, err, ErrNotFound)

	err = svc.Delete(context.Background(), 42, 5)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestNotificationServiceListHonorsLimit(t *testing.T) {
	repo := &memoryNotificationRepo{}
	svc := newNotificationServiceForTest(repo, nil)

	for i := 0; i < 50; i++ {
		_, err := svc.Create(context.Background(), dto.NotificationCreateRequest{UserID: 7, Title: "n", Message: "m"})
		require.NoError(t, err)
	}

	listed, err := svc.List(context.Background(), 7, 10, false)
	require.NoError(t, err)
	require.Len(t, listed, 10)
	for i := 1; i < len(listed); i++ {
		require.False(t, listed[i].CreatedAt.After(listed[i-1].CreatedAt), "most recent first")
	}
}

func TestNotificationServiceSubscribeReceivesCreated(t *testing.T) {
	repo := &memoryNotificationRepo{}
	svc := newNotificationServiceForTest(repo, nil)

	stream, cleanup := svc.Subscribe(5)
	defer cleanup()

	created, err := svc.Create(context.Background(), dto.NotificationCreateRequest{UserID: 5, Title: "n", Message: "m"})
	require.NoError(t, err)

	select {
	case delivered := <-stream:
		require.Equal(t, created.ID, delivered.ID)
	case <-time.After(time.Second):
		t.Fatal("expected notification on stream")
	}
}
