package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/core/capture"
	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/core/history"
	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/core/media"
	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/shared/apperror"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string        `json:"error"`
	Kind  apperror.Kind `json:"kind,omitempty"`
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, media.ErrTooLarge):
		return fiber.StatusRequestEntityTooLarge
	case errors.Is(err, history.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, capture.ErrPermissionDenied):
		return fiber.StatusForbidden
	case errors.Is(err, capture.ErrSessionClosed):
		return fiber.StatusConflict
	}

	switch apperror.KindOf(err) {
	case apperror.KindValidation:
		return fiber.StatusBadRequest
	case apperror.KindPermission:
		return fiber.StatusServiceUnavailable
	case apperror.KindService:
		return fiber.StatusBadGateway
	case apperror.KindBusy:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError maps an error class to a status; only the classified message
// reaches the client.
func respondError(c *fiber.Ctx, err error) error {
	status := statusFor(err)

	msg := "internal server error"
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		msg = appErr.Message
	} else if status == fiber.StatusNotFound {
		msg = err.Error()
	}

	if status >= 500 {
		log.Error().Err(err).Str("path", c.Path()).Int("status", status).Msg("❌ Request failed")
	} else {
		log.Warn().Err(err).Str("path", c.Path()).Int("status", status).Msg("⚠️ Request rejected")
	}

	return c.Status(status).JSON(ErrorResponse{Error: msg, Kind: apperror.KindOf(err)})
}
