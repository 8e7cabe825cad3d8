package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/ohse-platform/incident-backend/internal/dto"
	"github.com/ohse-platform/incident-backend/internal/lifecycle"
	"github.com/ohse-platform/incident-backend/internal/middleware"
	"github.com/ohse-platform/incident-backend/internal/models"
	"github.com/ohse-platform/incident-backend/internal/services"
	"github.com/ohse-platform/incident-backend/internal/validation"
)

// respondServiceError maps the service error taxonomy onto HTTP statuses.
func respondServiceError(c *fiber.Ctx, err error) error {
	var violation *validation.SchemaViolationError
	if errors.As(err, &violation) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ValidationErrorResponse{
			Error:   true,
			Message: "Form validation failed",
			Fields:  violation.Fields,
		})
	}

	var invalid *lifecycle.InvalidTransitionError
	if errors.As(err, &invalid) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Error: true, Message: invalid.Error(),
		})
	}

	switch {
	case errors.Is(err, services.ErrCaseNotFound),
		errors.Is(err, services.ErrInvestigationNotFound),
		errors.Is(err, services.ErrEnquiryNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	case errors.Is(err, services.ErrVersionConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	case errors.Is(err, services.ErrCommentRequired),
		errors.Is(err, services.ErrInvalidStatus):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	case errors.Is(err, services.ErrNotOwner):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	case errors.Is(err, services.ErrAllocationExhausted):
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}

	slog.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err.Error())
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: true, Message: "Internal server error",
	})
}

// currentUser loads the authenticated user behind the request's JWT.
func currentUser(c *fiber.Ctx, auth *services.AuthService) (*models.User, error) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return nil, err
	}
	return auth.GetUser(userID.String())
}
