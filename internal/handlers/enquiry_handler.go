package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/ohse-platform/incident-backend/internal/dto"
	"github.com/ohse-platform/incident-backend/internal/services"
)

type EnquiryHandler struct {
	enquiryService *services.EnquiryService
	authService    *services.AuthService
}

func NewEnquiryHandler(enquiryService *services.EnquiryService, authService *services.AuthService) *EnquiryHandler {
	return &EnquiryHandler{enquiryService: enquiryService, authService: authService}
}

func (h *EnquiryHandler) Create(c *fiber.Ctx) error {
	user, err := currentUser(c, h.authService)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.CreateEnquiryRequest
	if err := c.BodyParser(&req); err != nil || len(req.FormData) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	enquiry, err := h.enquiryService.Create(c.Context(), user, req.FormData)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(enquiry)
}

func (h *EnquiryHandler) List(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	if limit < 1 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	enquiries, total, err := h.enquiryService.List(c.Context(), c.Query("status"), limit, offset)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"enquiries": enquiries,
		"total":     total,
		"limit":     limit,
		"offset":    offset,
	})
}

func (h *EnquiryHandler) Get(c *fiber.Ctx) error {
	enquiry, err := h.enquiryService.Get(c.Context(), c.Params("enquiry_id"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(enquiry)
}

func (h *EnquiryHandler) UpdateStatus(c *fiber.Ctx) error {
	var req dto.UpdateEnquiryStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	enquiry, err := h.enquiryService.UpdateStatus(c.Context(), c.Params("enquiry_id"), req.Status)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(enquiry)
}

func (h *EnquiryHandler) AddComment(c *fiber.Ctx) error {
	user, err := currentUser(c, h.authService)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.CommentRequest
	if err := c.BodyParser(&req); err != nil || req.Text == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	comment, err := h.enquiryService.AddComment(c.Context(), user, c.Params("enquiry_id"), req.Text)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}
