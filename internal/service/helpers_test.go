package service

import (
	"context"
	"errors"
	"io"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/teamerp-api/internal/models"
	"github.com/noah-isme/teamerp-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func ptrUint(v uint) *uint {
	return &v
}

var errStoreDown = errors.New("store down")

// memoryActivityRepo mirrors the repository contract closely enough to
// exercise ordering and filter semantics without a database.
type memoryActivityRepo struct {
	entries []models.ActivityLog
	failing bool
}

func (m *memoryActivityRepo) Create(_ context.Context, entry *models.ActivityLog) error {
	if m.failing {
		return errStoreDown
	}
	entry.ID = uint(len(m.entries) + 1)
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memoryActivityRepo) List(_ context.Context, filter repository.ActivityLogFilter) ([]models.ActivityLog, int64, error) {
	if m.failing {
		return nil, 0, errStoreDown
	}

	matched := m.matching(filter)
	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	total := int64(len(matched))
	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		offset := (page - 1) * filter.PageSize
		if offset >= len(matched) {
			return nil, total, nil
		}
		end := offset + filter.PageSize
		if end > len(matched) {
			end = len(matched)
		}
		matched = matched[offset:end]
	}

	return matched, total, nil
}

func (m *memoryActivityRepo) CountByAction(_ context.Context, filter repository.ActivityLogFilter) (repository.ActionCounts, int64, error) {
	if m.failing {
		return nil, 0, errStoreDown
	}

	counts := repository.ActionCounts{}
	var total int64
	for _, entry := range m.matching(filter) {
		counts[entry.Action]++
		total++
	}
	return counts, total, nil
}

func (m *memoryActivityRepo) matching(filter repository.ActivityLogFilter) []models.ActivityLog {
	matched := make([]models.ActivityLog, 0, len(m.entries))
	for _, entry := range m.entries {
		if filter.ActorID != nil && (entry.ActorID == nil || *entry.ActorID != *filter.ActorID) {
			continue
		}
		if filter.Action != "" && entry.Action != filter.Action {
			continue
		}
		if filter.EntityType != "" && entry.EntityType != filter.EntityType {
			continue
		}
		if filter.DateFrom != nil && entry.CreatedAt.Before(*filter.DateFrom) {
			continue
		}
		if filter.DateTo != nil && entry.CreatedAt.After(*filter.DateTo) {
			continue
		}
		matched = append(matched, entry)
	}
	return matched
}

// memoryNotificationRepo is the in-memory counterpart of the GORM repository.
type memoryNotificationRepo struct {
	notifications []models.Notification
	nextID        uint
	failCreate    bool
}

func (m *memoryNotificationRepo) Create(_ context.Context, notification *models.Notification) error {
	if m.failCreate {
		return errStoreDown
	}
	m.nextID++
	notification.ID = m.nextID
	m.notifications = append(m.notifications, *notification)
	return nil
}

func (m *memoryNotificationRepo) FindByID(_ context.Context, id uint) (models.Notification, error) {
	for _, notification := range m.notifications {
		if notification.ID == id {
			return notification, nil
		}
	}
	return models.Notification{}, gorm.ErrRecordNotFound
}

func (m *memoryNotificationRepo) ListByUser(_ context.Context, userID uint, limit int, unreadOnly bool) ([]models.Notification, error) {
	matched := make([]models.Notification, 0, len(m.notifications))
	for _, notification := range m.notifications {
		if notification.UserID != userID {
			continue
		}
		if unreadOnly && notification.IsRead {
			continue
		}
		matched = append(matched, notification)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}

	return matched, nil
}

func (m *memoryNotificationRepo) CountByUser(_ context.Context, userID uint, unreadOnly bool) (int64, error) {
	var count int64
	for _, notification := range m.notifications {
		if notification.UserID != userID {
			continue
		}
		if unreadOnly && notification.IsRead {
			continue
		}
		count++
	}
	return count, nil
}

func (m *memoryNotificationRepo) MarkRead(_ context.Context, id uint) error {
	for i := range m.notifications {
		if m.notifications[i].ID == id {
			m.notifications[i].IsRead = true
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *memoryNotificationRepo) MarkAllRead(_ context.Context, userID uint) (int64, error) {
	var updated int64
	for i := range m.notifications {
		if m.notifications[i].UserID == userID && !m.notifications[i].IsRead {
			m.notifications[i].IsRead = true
			updated++
		}
	}
	return updated, nil
}

func (m *memoryNotificationRepo) Delete(_ context.Context, id uint) error {
	for i := range m.notifications {
		if m.notifications[i].ID == id {
			m.notifications = append(m.notifications[:i], m.notifications[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// fixedClock returns successive timestamps one minute apart, starting at base.
func fixedClock(base time.Time) func() time.Time {
	step := 0
	return func() time.Time {
		t := base.Add(time.Duration(step) * time.Minute)
		step++
		return t
	}
}
