package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// HealthInfo is what /health reports besides "ok"
type HealthInfo struct {
	LLMProvider   string
	OCRProvider   string
	StorageDriver string
}

type HealthHandler struct {
	info HealthInfo
	busy func() bool
}

func NewHealthHandler(info HealthInfo, busy func() bool) *HealthHandler {
	return &HealthHandler{info: info, busy: busy}
}

// GetHealth godoc
// @Summary Service health check
// @Description Check if API is alive
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *HealthHandler) GetHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":       "ok",
		"service":      "clarity-ocr-api",
		"llm_provider": h.info.LLMProvider,
		"ocr_provider": h.info.OCRProvider,
		"storage":      h.info.StorageDriver,
		"busy":         h.busy != nil && h.busy(),
	})
}
