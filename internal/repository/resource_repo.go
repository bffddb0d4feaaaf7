package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/teamerp-api/internal/models"
)

// ResourceRepository supplies the black-box counts the reporting side needs
// and the single task mutation exposed by this service.
type ResourceRepository interface {
	CountProjects(ctx context.Context, ownerID *uint) (int64, error)
	CountTasks(ctx context.Context, assigneeID *uint) (int64, error)
	CountUsers(ctx context.Context) (int64, error)
	FindTask(ctx context.Context, id uint) (models.Task, error)
	AssignTask(ctx context.Context, id uint, assigneeID uint) error
}

type resourceRepository struct {
	db *gorm.DB
}

// NewResourceRepository constructs the resource repository.
func NewResourceRepository(db *gorm.DB) ResourceRepository {
	return &resourceRepository{db: db}
}

func (r *resourceRepository) CountProjects(ctx context.Context, ownerID *uint) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Project{})
	if ownerID != nil {
		query = query.Where("owner_id = ?", *ownerID)
	}

	var count int64
	err := query.Count(&count).Error
	return count, err
}

func (r *resourceRepository) CountTasks(ctx context.Context, assigneeID *uint) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Task{})
	if assigneeID != nil {
		query = query.Where("assignee_id = ?", *assigneeID)
	}

	var count int64
	err := query.Count(&count).Error
	return count, err
}

func (r *resourceRepository) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error
	return count, err
}

func (r *resourceRepository) FindTask(ctx context.Context, id uint) (models.Task, error) {
	var task models.Task
	if err := r.db.WithContext(ctx).First(&task, id).Error; err != nil {
		return models.Task{}, err
	}
	return task, nil
}

func (r *resourceRepository) AssignTask(ctx context.Context, id uint, assigneeID uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Task{}).
		Where("id = ?", id).
		Update("assignee_id", assigneeID).Error
}
