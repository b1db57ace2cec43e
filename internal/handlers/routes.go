package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// Routes groups every handler the API mounts
type Routes struct {
	Health  *HealthHandler
	OCR     *OCRHandler
	Camera  *CameraHandler
	History *HistoryHandler
	Banner  *BannerHandler
}

// BodyLimit leaves room above the 4MB image cap so oversized uploads reach
// validation and get a JSON 413 instead of fasthttp's plain one.
const BodyLimit = 16 * 1024 * 1024

func (r Routes) Register(app *fiber.App) {
	// Health check
	app.Get("/health", r.Health.GetHealth)

	// OCR routes
	app.Post("/ocr/extract", r.OCR.Extract)
	app.Post("/ocr/extract/raw", r.OCR.ExtractRaw)
	app.Post("/ocr/analyze", r.OCR.Analyze)
	app.Post("/ocr/clarify", r.OCR.Clarify)

	// Camera routes
	app.Post("/camera/start", r.Camera.Start)
	app.Get("/camera/preview", r.Camera.Preview)
	app.Post("/camera/capture", r.Camera.Capture)
	app.Post("/camera/stop", r.Camera.Stop)
	app.Get("/camera/status", r.Camera.Status)

	// History routes
	app.Get("/history", r.History.List)
	app.Get("/history/:id", r.History.Get)
	app.Get("/history/:id/qr", r.History.QRCode)

	// Banner
	app.Get("/api/image", r.Banner.GetImage)
}
