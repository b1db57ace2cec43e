package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/core/banner"
)

type BannerHandler struct {
	banner *banner.Service
}

func NewBannerHandler(svc *banner.Service) *BannerHandler {
	return &BannerHandler{banner: svc}
}

// GetImage godoc
// @Summary Site banner image
// @Description AI generated banner; an SVG placeholder with status 500 when generation fails
// @Tags Banner
// @Produce image/png
// @Produce image/svg+xml
// @Success 200 {file} binary
// @Failure 500 {file} binary
// @Router /api/image [get]
func (h *BannerHandler) GetImage(c *fiber.Ctx) error {
	c.Set(fiber.HeaderCacheControl, "no-cache, no-store, must-revalidate")

	img, err := h.banner.Current(c.Context())
	if err != nil {
		c.Set(fiber.HeaderContentType, banner.PlaceholderContentType)
		return c.Status(fiber.StatusInternalServerError).SendString(banner.Placeholder)
	}

	c.Set(fiber.HeaderContentType, img.MIMEType())
	return c.Send(img.Bytes())
}
