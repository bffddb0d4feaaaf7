package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/teamerp-api/internal/service"
	"github.com/noah-isme/teamerp-api/internal/utils"
)

// TaskHandler exposes the task mutations that raise audit/notification events.
type TaskHandler struct {
	service service.TaskService
	logger  zerolog.Logger
}

// NewTaskHandler constructs the handler.
func NewTaskHandler(service service.TaskService, logger zerolog.Logger) *TaskHandler {
	return &TaskHandler{
		service: service,
		logger:  logger.With().Str("component", "task_handler").Logger(),
	}
}

// Register binds the task routes.
func (h *TaskHandler) Register(router fiber.Router) {
	router.Post("/:id/assign", h.assign)
}

type taskAssignRequest struct {
	AssigneeID uint `json:"assignee_id"`
}

func (h *TaskHandler) assign(c *fiber.Ctx) error {
	actor := actorFromContext(c)
	if actor.ID == nil {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	idParam := c.Params("id")
	taskID, err := strconv.ParseUint(idParam, 10, 64)
	if err != nil || taskID == 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid task id")
	}

	var payload taskAssignRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	task, err := h.service.Assign(c.UserContext(), actor, uint(taskID), payload.AssigneeID, originFromRequest(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "task not found")
		case errors.Is(err, service.ErrInvalidArgument):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			h.logger.Error().Err(err).Msg("failed to assign task")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to assign task")
		}
	}

	return utils.SendSuccess(c, "task assigned", task)
}
