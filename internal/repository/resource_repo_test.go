package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/teamerp-api/internal/models"
)

func TestResourceRepositoryCountsScopeByOwner(t *testing.T) {
	db := setupTestDB(t)
	repo := NewResourceRepository(db)

	require.NoError(t, db.Create(&models.Project{Name: "alpha", OwnerID: 1}).Error)
	require.NoError(t, db.Create(&models.Project{Name: "beta", OwnerID: 2}).Error)
	assignee := uint(1)
	require.NoError(t, db.Create(&models.Task{ProjectID: 1, Title: "t1", AssigneeID: &assignee}).Error)
	require.NoError(t, db.Create(&models.Task{ProjectID: 1, Title: "t2"}).Error)
	require.NoError(t, db.Create(&models.User{Name: "A", Email: "a@example.com"}).Error)

	all, err := repo.CountProjects(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, int64(2), all)

	owner := uint(1)
	scoped, err := repo.CountProjects(context.Background(), &owner)
	require.NoError(t, err)
	require.Equal(t, int64(1), scoped)

	tasks, err := repo.CountTasks(context.Background(), &owner)
	require.NoError(t, err)
	require.Equal(t, int64(1), tasks)

	users, err := repo.CountUsers(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(1), users)
}

func TestResourceRepositoryAssignTask(t *testing.T) {
	db := setupTestDB(t)
	repo := NewResourceRepository(db)

	task := models.Task{ProjectID: 1, Title: "t1"}
	require.NoError(t, db.Create(&task).Error)

	require.NoError(t, repo.AssignTask(context.Background(), task.ID, 9))

	found, err := repo.FindTask(context.Background(), task.ID)
	require.NoError(t, err)
	require.NotNil(t, found.AssigneeID)
	require.Equal(t, uint(9), *found.AssigneeID)
}
