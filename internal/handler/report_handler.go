package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/teamerp-api/internal/dto"
	"github.com/noah-isme/teamerp-api/internal/models"
	"github.com/noah-isme/teamerp-api/internal/service"
	"github.com/noah-isme/teamerp-api/internal/utils"
)

// ReportHandler serves the dashboard summary in admin and self-scoped flavours.
type ReportHandler struct {
	service service.ReportService
	logger  zerolog.Logger
}

// NewReportHandler constructs the handler.
func NewReportHandler(service service.ReportService, logger zerolog.Logger) *ReportHandler {
	return &ReportHandler{
		service: service,
		logger:  logger.With().Str("component", "report_handler").Logger(),
	}
}

// RegisterAdmin binds the unrestricted summary route.
func (h *ReportHandler) RegisterAdmin(router fiber.Router) {
	router.Get("/summary", h.adminSummary)
}

// RegisterUser binds the self-scoped summary route.
func (h *ReportHandler) RegisterUser(router fiber.Router) {
	router.Get("/summary", h.userSummary)
}

func (h *ReportHandler) adminSummary(c *fiber.Ctx) error {
	scope := service.ReportScope{
		UserID: userIDFromContext(c),
		Role:   models.RoleAdmin,
	}
	return h.summary(c, scope)
}

// userSummary always scopes to the session identity regardless of role, so a
// non-admin can never widen the filter through this route.
func (h *ReportHandler) userSummary(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	scope := service.ReportScope{
		UserID: userID,
		Role:   models.RoleUser,
	}
	return h.summary(c, scope)
}

func (h *ReportHandler) summary(c *fiber.Ctx, scope service.ReportScope) error {
	dateFrom, err := parseQueryDate(c, "date_from", false)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid date_from")
	}
	dateTo, err := parseQueryDate(c, "date_to", true)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid date_to")
	}

	filter := dto.ReportFilter{
		Action:     c.Query("action"),
		EntityType: c.Query("entity_type"),
		DateFrom:   dateFrom,
		DateTo:     dateTo,
	}

	response, err := h.service.Summary(c.UserContext(), scope, filter)
	if err != nil {
		h.logger.Error().Err(err).Str("scope", scope.Role).Msg("failed to build report summary")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to build report summary")
	}

	return utils.SendSuccess(c, "report summary", response)
}
