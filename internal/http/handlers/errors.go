package handlers

import (
	"errors"

	"github.com/admin-portal/backend/internal/http/dto"
	"github.com/admin-portal/backend/internal/middleware"
	"github.com/admin-portal/backend/internal/models"
	"github.com/gofiber/fiber/v2"
)

// respondError maps the workflow error taxonomy onto HTTP statuses. Expected
// conditions (lock conflicts, not-found, already-resolved) never surface as
// an opaque 500.
func respondError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	msg := "internal error"

	switch {
	case errors.Is(err, models.ErrEntityNotFound),
		errors.Is(err, models.ErrRequestNotFound):
		status = fiber.StatusNotFound
		msg = err.Error()
	case errors.Is(err, models.ErrEntityLocked),
		errors.Is(err, models.ErrAlreadyInStatus),
		errors.Is(err, models.ErrNotPending):
		status = fiber.StatusConflict
		msg = err.Error()
	case errors.Is(err, models.ErrReferencedEntityNotFound),
		errors.Is(err, models.ErrMalformedPayload):
		status = fiber.StatusUnprocessableEntity
		msg = err.Error()
	case errors.Is(err, models.ErrActorRequired):
		status = fiber.StatusUnauthorized
		msg = err.Error()
	}

	return c.Status(status).JSON(dto.ErrorResponse{
		Error:     msg,
		RequestID: middleware.GetRequestID(c),
	})
}
