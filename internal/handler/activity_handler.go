package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/teamerp-api/internal/dto"
	"github.com/noah-isme/teamerp-api/internal/service"
	"github.com/noah-isme/teamerp-api/internal/utils"
)

// ActivityHandler exposes the admin-facing audit trail endpoints.
type ActivityHandler struct {
	service service.ActivityService
	logger  zerolog.Logger
}

// NewActivityHandler constructs the handler.
func NewActivityHandler(service service.ActivityService, logger zerolog.Logger) *ActivityHandler {
	return &ActivityHandler{
		service: service,
		logger:  logger.With().Str("component", "activity_handler").Logger(),
	}
}

// Register attaches audit trail routes to the router group.
func (h *ActivityHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/stats", h.stats)
}

func (h *ActivityHandler) list(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}

	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page size")
	}

	actorID, err := parseQueryInt(c, "actor_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid actor id")
	}

	dateFrom, err := parseQueryDate(c, "date_from", false)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid date_from")
	}
	dateTo, err := parseQueryDate(c, "date_to", true)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid date_to")
	}

	req := dto.ActivityListRequest{
		Page:       page,
		PageSize:   pageSize,
		Action:     c.Query("action"),
		EntityType: c.Query("entity_type"),
		DateFrom:   dateFrom,
		DateTo:     dateTo,
	}
	if actorID > 0 {
		req.ActorID = uint(actorID)
	}

	response, err := h.service.Query(c.UserContext(), req)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list activity logs")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list activity logs")
	}

	return utils.SendSuccess(c, "activity logs", response)
}

func (h *ActivityHandler) stats(c *fiber.Ctx) error {
	actorID, err := parseQueryInt(c, "actor_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid actor id")
	}

	dateFrom, err := parseQueryDate(c, "date_from", false)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid date_from")
	}
	dateTo, err := parseQueryDate(c, "date_to", true)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid date_to")
	}

	req := dto.ActivityStatsRequest{
		Action:     c.Query("action"),
		EntityType: c.Query("entity_type"),
		DateFrom:   dateFrom,
		DateTo:     dateTo,
	}
	if actorID > 0 {
		req.ActorID = uint(actorID)
	}

	response, err := h.service.Stats(c.UserContext(), req)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to compute activity stats")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to compute activity stats")
	}

	return utils.SendSuccess(c, "activity stats", response)
}
