package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/ohse-platform/incident-backend/internal/services"
)

// ReferenceHandler serves the static safety directory content shown on
// the portal landing pages.
type ReferenceHandler struct {
	referenceService *services.ReferenceService
}

func NewReferenceHandler(referenceService *services.ReferenceService) *ReferenceHandler {
	return &ReferenceHandler{referenceService: referenceService}
}

func (h *ReferenceHandler) Coordinators(c *fiber.Ctx) error {
	items, err := h.referenceService.Coordinators(c.Context())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"coordinators": items})
}

func (h *ReferenceHandler) FloorMarshalls(c *fiber.Ctx) error {
	items, err := h.referenceService.FloorMarshalls(c.Context())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"floor_marshalls": items})
}

func (h *ReferenceHandler) FirstAiders(c *fiber.Ctx) error {
	items, err := h.referenceService.FirstAiders(c.Context())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"first_aiders": items})
}

func (h *ReferenceHandler) News(c *fiber.Ctx) error {
	items, err := h.referenceService.News(c.Context())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"news": items})
}

func (h *ReferenceHandler) FAQs(c *fiber.Ctx) error {
	items, err := h.referenceService.FAQs(c.Context())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"faqs": items})
}

func (h *ReferenceHandler) UserGuides(c *fiber.Ctx) error {
	items, err := h.referenceService.UserGuides(c.Context(), c.Query("role"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"user_guides": items})
}
