package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/teamerp-api/internal/dto"
	"github.com/noah-isme/teamerp-api/internal/models"
	"github.com/noah-isme/teamerp-api/internal/repository"
)

// TaskService exposes the task mutations that raise audit and notification
// events. The primary write commits first; logging and notifying are
// best-effort afterthoughts that can never fail it.
type TaskService interface {
	Assign(ctx context.Context, actor Actor, taskID, assigneeID uint, origin RequestOrigin) (models.Task, error)
}

type taskService struct {
	resources     repository.ResourceRepository
	recorder      ActivityRecorder
	notifications NotificationService
	logger        zerolog.Logger
}

// NewTaskService constructs the task service.
func NewTaskService(resources repository.ResourceRepository, recorder ActivityRecorder, notifications NotificationService, logger zerolog.Logger) TaskService {
	return &taskService{
		resources:     resources,
		recorder:      recorder,
		notifications: notifications,
		logger:        logger.With().Str("component", "task_service").Logger(),
	}
}

func (s *taskService) Assign(ctx context.Context, actor Actor, taskID, assigneeID uint, origin RequestOrigin) (models.Task, error) {
	if taskID == 0 || assigneeID == 0 {
		return models.Task{}, fmt.Errorf("%w: task and assignee ids are required", ErrInvalidArgument)
	}

	task, err := s.resources.FindTask(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Task{}, ErrNotFound
		}
		return models.Task{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if err := s.resources.AssignTask(ctx, taskID, assigneeID); err != nil {
		return models.Task{}, err
	}
	task.AssigneeID = &assigneeID

	s.recorder.Log(ctx, ActivityEntry{
		ActorID:     actor.ID,
		Action:      models.ActionUpdated,
		EntityType:  "task",
		EntityID:    &task.ID,
		Description: fmt.Sprintf("task %q assigned to user %d", task.Title, assigneeID),
		Origin:      origin,
	})

	entityType := "task"
	s.notifications.Notify(ctx, dto.NotificationCreateRequest{
		UserID:            assigneeID,
		Title:             "Task assigned",
		Message:           fmt.Sprintf("You have been assigned the task %q.", task.Title),
		Type:              models.NotificationTypeInfo,
		RelatedEntityType: &entityType,
		RelatedEntityID:   &task.ID,
	})

	return task, nil
}
