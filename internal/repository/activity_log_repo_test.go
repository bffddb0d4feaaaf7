package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/teamerp-api/internal/models"
)

func TestActivityLogRepositoryListOrdersNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	repo := NewActivityLogRepository(db)

	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	actor := uint(1)
	older := models.ActivityLog{ActorID: &actor, Action: models.ActionCreated, EntityType: "project", CreatedAt: base}
	newer := models.ActivityLog{ActorID: &actor, Action: models.ActionUpdated, EntityType: "task", CreatedAt: base.Add(time.Hour)}
	require.NoError(t, db.Create(&older).Error)
	require.NoError(t, db.Create(&newer).Error)

	entries, total, err := repo.List(context.Background(), ActivityLogFilter{PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, entries, 2)
	require.Equal(t, models.ActionUpdated, entries[0].Action, "expected newest record first")
	require.Equal(t, models.ActionCreated, entries[1].Action)
}

func TestActivityLogRepositoryListBreaksTimestampTiesByID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewActivityLogRepository(db)

	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	first := models.ActivityLog{Action: models.ActionCreated, EntityType: "task", CreatedAt: at}
	second := models.ActivityLog{Action: models.ActionCommented, EntityType: "task", CreatedAt: at}
	require.NoError(t, db.Create(&first).Error)
	require.NoError(t, db.Create(&second).Error)

	entries, _, err := repo.List(context.Background(), ActivityLogFilter{PageSize: 10})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, second.ID, entries[0].ID, "later insertion wins timestamp ties")
}

func TestActivityLogRepositoryListFiltersAreConjunctive(t *testing.T) {
	db := setupTestDB(t)
	repo := NewActivityLogRepository(db)

	actorA := uint(1)
	actorB := uint(2)
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, db.Create(&models.ActivityLog{ActorID: &actorA, Action: models.ActionCreated, EntityType: "project", CreatedAt: at}).Error)
	require.NoError(t, db.Create(&models.ActivityLog{ActorID: &actorA, Action: models.ActionDeleted, EntityType: "project", CreatedAt: at}).Error)
	require.NoError(t, db.Create(&models.ActivityLog{ActorID: &actorB, Action: models.ActionCreated, EntityType: "project", CreatedAt: at}).Error)

	entries, total, err := repo.List(context.Background(), ActivityLogFilter{
		PageSize:   10,
		ActorID:    &actorA,
		Action:     models.ActionCreated,
		EntityType: "project",
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Len(t, entries, 1)
	require.Equal(t, &actorA, entries[0].ActorID)
}

func TestActivityLogRepositoryListDateRangeIsInclusive(t *testing.T) {
	db := setupTestDB(t)
	repo := NewActivityLogRepository(db)

	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
	require.NoError(t, db.Create(&models.ActivityLog{Action: models.ActionLogin, EntityType: "user", CreatedAt: from}).Error)
	require.NoError(t, db.Create(&models.ActivityLog{Action: models.ActionLogout, EntityType: "user", CreatedAt: to}).Error)
	require.NoError(t, db.Create(&models.ActivityLog{Action: models.ActionLogin, EntityType: "user", CreatedAt: to.Add(time.Second)}).Error)

	entries, total, err := repo.List(context.Background(), ActivityLogFilter{PageSize: 10, DateFrom: &from, DateTo: &to})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, entries, 2)
}

func TestActivityLogRepositoryListOutOfRangePageIsEmpty(t *testing.T) {
	db := setupTestDB(t)
	repo := NewActivityLogRepository(db)

	require.NoError(t, db.Create(&models.ActivityLog{Action: models.ActionCreated, EntityType: "task", CreatedAt: time.Now()}).Error)

	entries, total, err := repo.List(context.Background(), ActivityLogFilter{Page: 99, PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Empty(t, entries)
}

func TestActivityLogRepositoryCountByAction(t *testing.T) {
	db := setupTestDB(t)
	repo := NewActivityLogRepository(db)

	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	for _, action := range []string{
		models.ActionCreated, models.ActionCreated, models.ActionUpdated, models.ActionDeleted, "archived",
	} {
		require.NoError(t, db.Create(&models.ActivityLog{Action: action, EntityType: "project", CreatedAt: at}).Error)
	}

	counts, total, err := repo.CountByAction(context.Background(), ActivityLogFilter{})
	require.NoError(t, err)
	require.Equal(t, int64(5), total, "total counts unrecognized actions too")
	require.Equal(t, int64(2), counts[models.ActionCreated])
	require.Equal(t, int64(1), counts[models.ActionUpdated])
	require.Equal(t, int64(1), counts[models.ActionDeleted])
	require.Equal(t, int64(1), counts["archived"])

	var sum int64
	for _, count := range counts {
		sum += count
	}
	require.Equal(t, total, sum)
}

func TestActivityLogRepositoryCountByActionMatchesList(t *testing.T) {
	db := setupTestDB(t)
	repo := NewActivityLogRepository(db)

	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, db.Create(&models.ActivityLog{Action: models.ActionCreated, EntityType: "project", CreatedAt: at}).Error)
	require.NoError(t, db.Create(&models.ActivityLog{Action: models.ActionCreated, EntityType: "task", CreatedAt: at}).Error)

	filter := ActivityLogFilter{EntityType: "project"}
	_, listTotal, err := repo.List(context.Background(), ActivityLogFilter{EntityType: "project", PageSize: 10})
	require.NoError(t, err)

	_, statsTotal, err := repo.CountByAction(context.Background(), filter)
	require.NoError(t, err)
	require.Equal(t, listTotal, statsTotal)
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.ActivityLog{}, &models.Notification{}, &models.User{}, &models.Project{}, &models.Task{}))
	return db
}
