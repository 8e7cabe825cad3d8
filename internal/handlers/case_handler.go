package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/ohse-platform/incident-backend/internal/dto"
	"github.com/ohse-platform/incident-backend/internal/services"
)

type CaseHandler struct {
	caseService *services.CaseService
	authService *services.AuthService
}

func NewCaseHandler(caseService *services.CaseService, authService *services.AuthService) *CaseHandler {
	return &CaseHandler{caseService: caseService, authService: authService}
}

func (h *CaseHandler) Create(c *fiber.Ctx) error {
	user, err := currentUser(c, h.authService)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.CreateCaseRequest
	if err := c.BodyParser(&req); err != nil || len(req.FormData) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	created, err := h.caseService.Create(c.Context(), user, req.FormData)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *CaseHandler) List(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	if limit > 100 {
		limit = 100
	}

	filter := services.CaseFilter{
		ApproverStatus: c.Query("approver_status", ""),
		IncidentStatus: c.Query("incident_status", ""),
		RiskTier:       c.Query("risk_tier", ""),
		ReporterID:     c.Query("reporter_id", ""),
	}

	cases, total, err := h.caseService.List(c.Context(), filter, limit, offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"cases":  cases,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

func (h *CaseHandler) Get(c *fiber.Ctx) error {
	loaded, err := h.caseService.Get(c.Context(), c.Params("tracking_no"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(loaded)
}

func (h *CaseHandler) Approve(c *fiber.Ctx) error {
	user, err := currentUser(c, h.authService)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	updated, err := h.caseService.Approve(c.Context(), user, c.Params("tracking_no"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(updated)
}

func (h *CaseHandler) Reject(c *fiber.Ctx) error {
	user, err := currentUser(c, h.authService)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.RejectRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	updated, err := h.caseService.Reject(c.Context(), user, c.Params("tracking_no"), req.Comment)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(updated)
}

func (h *CaseHandler) Resubmit(c *fiber.Ctx) error {
	user, err := currentUser(c, h.authService)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.ResubmitCaseRequest
	if err := c.BodyParser(&req); err != nil || len(req.FormData) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	updated, err := h.caseService.Resubmit(c.Context(), user, c.Params("tracking_no"), req.FormData)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(updated)
}

func (h *CaseHandler) Close(c *fiber.Ctx) error {
	user, err := currentUser(c, h.authService)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	updated, err := h.caseService.Close(c.Context(), user, c.Params("tracking_no"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(updated)
}

func (h *CaseHandler) AddAttachment(c *fiber.Ctx) error {
	var req dto.AttachmentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	attachment, err := h.caseService.RegisterAttachment(c.Context(), c.Params("tracking_no"), req.FileType, req.StorageRef)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(attachment)
}
