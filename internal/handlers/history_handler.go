package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/core/history"
)

type HistoryHandler struct {
	store *history.Store
}

func NewHistoryHandler(store *history.Store) *HistoryHandler {
	return &HistoryHandler{store: store}
}

// List godoc
// @Summary Transcription history
// @Description Most recent transcriptions, newest first (at most 50 are kept)
// @Tags History
// @Produce json
// @Param limit query int false "Return at most this many records"
// @Success 200 {array} history.Record
// @Failure 500 {object} ErrorResponse
// @Router /history [get]
func (h *HistoryHandler) List(c *fiber.Ctx) error {
	records, err := h.store.Load(c.Context())
	if err != nil {
		return respondError(c, err)
	}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "limit must be a non-negative integer"})
		}
		if limit < len(records) {
			records = records[:limit]
		}
	}
	return c.JSON(records)
}

// Get godoc
// @Summary One history record
// @Tags History
// @Produce json
// @Param id path string true "Record ID"
// @Success 200 {object} history.Record
// @Failure 404 {object} ErrorResponse
// @Router /history/{id} [get]
func (h *HistoryHandler) Get(c *fiber.Ctx) error {
	rec, err := h.store.Get(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(rec)
}

// QRCode godoc
// @Summary Transcription as a QR code
// @Description PNG QR code carrying the record's text, for moving it to a phone
// @Tags History
// @Produce image/png
// @Param id path string true "Record ID"
// @Param size query int false "Image size in pixels (default 256)"
// @Success 200 {file} binary
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /history/{id}/qr [get]
func (h *HistoryHandler) QRCode(c *fiber.Ctx) error {
	rec, err := h.store.Get(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}

	size := c.QueryInt("size", 256)
	if size < 64 || size > 1024 {
		size = 256
	}

	png, err := qrcode.Encode(rec.Text, qrcode.Medium, size)
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{Error: "transcription is too long for a QR code"})
	}

	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(png)
}
