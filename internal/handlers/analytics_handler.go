package handlers

import (
	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/dto"
	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AnalyticsHandler struct {
	visits *services.VisitService
}

func NewAnalyticsHandler(visits *services.VisitService) *AnalyticsHandler {
	return &AnalyticsHandler{visits: visits}
}

// RegisterVisit records the calling device. Repeat visits only refresh
// its last-seen time.
func (h *AnalyticsHandler) RegisterVisit(c *fiber.Ctx) error {
	var req dto.VisitRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid_body", "Invalid request body")
	}
	isNew, err := h.visits.Register(c.UserContext(), req.DeviceToken)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.VisitResponse{IsNew: isNew})
}

func (h *AnalyticsHandler) VisitCount(c *fiber.Ctx) error {
	total, err := h.visits.Count(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.VisitCountResponse{Total: total})
}
