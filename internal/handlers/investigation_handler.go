package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/ohse-platform/incident-backend/internal/dto"
	"github.com/ohse-platform/incident-backend/internal/services"
)

type InvestigationHandler struct {
	caseService          *services.CaseService
	investigationService *services.InvestigationService
	authService          *services.AuthService
}

func NewInvestigationHandler(caseService *services.CaseService, investigationService *services.InvestigationService, authService *services.AuthService) *InvestigationHandler {
	return &InvestigationHandler{
		caseService:          caseService,
		investigationService: investigationService,
		authService:          authService,
	}
}

func (h *InvestigationHandler) Open(c *fiber.Ctx) error {
	user, err := currentUser(c, h.authService)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	updated, err := h.caseService.OpenInvestigation(c.Context(), user, c.Params("tracking_no"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(updated)
}

func (h *InvestigationHandler) Submit(c *fiber.Ctx) error {
	user, err := currentUser(c, h.authService)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.SubmitInvestigationRequest
	if err := c.BodyParser(&req); err != nil || len(req.FormData) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	updated, err := h.caseService.SubmitInvestigation(c.Context(), user, c.Params("tracking_no"), req.FormData)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(updated)
}

func (h *InvestigationHandler) Approve(c *fiber.Ctx) error {
	user, err := currentUser(c, h.authService)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	updated, err := h.caseService.ApproveInvestigation(c.Context(), user, c.Params("tracking_no"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(updated)
}

func (h *InvestigationHandler) Reject(c *fiber.Ctx) error {
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

	updated, err := h.caseService.RejectInvestigation(c.Context(), user, c.Params("tracking_no"), req.Comment)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(updated)
}

func (h *InvestigationHandler) Resubmit(c *fiber.Ctx) error {
	user, err := currentUser(c, h.authService)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.SubmitInvestigationRequest
	if err := c.BodyParser(&req); err != nil || len(req.FormData) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	updated, err := h.caseService.ResubmitInvestigation(c.Context(), user, c.Params("tracking_no"), req.FormData)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(updated)
}

func (h *InvestigationHandler) Get(c *fiber.Ctx) error {
	investigation, err := h.investigationService.GetByCase(c.Context(), c.Params("tracking_no"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(investigation)
}

func (h *InvestigationHandler) AddComment(c *fiber.Ctx) error {
	user, err := currentUser(c, h.authService)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	investigationID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid investigation ID",
		})
	}

	var req dto.CommentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	comment, err := h.investigationService.AddComment(c.Context(), user, investigationID, req.Text)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

func (h *InvestigationHandler) AddAttachment(c *fiber.Ctx) error {
	investigationID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid investigation ID",
		})
	}

	var req dto.AttachmentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	attachment, err := h.investigationService.RegisterAttachment(c.Context(), investigationID, req.FileType, req.StorageRef)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(attachment)
}
