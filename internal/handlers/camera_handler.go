package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/core/capture"
	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/core/pipeline"
)

// CameraHandler drives the single camera session over HTTP
type CameraHandler struct {
	camera *capture.Camera
	ocr    *OCRHandler
}

func NewCameraHandler(camera *capture.Camera, ocr *OCRHandler) *CameraHandler {
	return &CameraHandler{camera: camera, ocr: ocr}
}

// CameraStatus describes the configured devices and the open session
type CameraStatus struct {
	Active  bool             `json:"active"`
	Session *capture.Session `json:"session,omitempty"`
	Devices []string         `json:"devices"`
}

func (h *CameraHandler) noSession(c *fiber.Ctx) error {
	return c.Status(fiber.StatusConflict).JSON(ErrorResponse{Error: "no active camera session, start one first"})
}

// Start godoc
// @Summary Open a camera session
// @Description Releases any open session, then opens a device (rear-facing first)
// @Tags Camera
// @Produce json
// @Success 200 {object} capture.Session
// @Failure 403 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /camera/start [post]
func (h *CameraHandler) Start(c *fiber.Ctx) error {
	if h.camera == nil {
		return respondError(c, capture.ErrUnsupported)
	}
	session, err := h.camera.Start(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(session)
}

// Preview godoc
// @Summary Latest camera frame
// @Description Returns the current frame without ending the session
// @Tags Camera
// @Produce image/jpeg
// @Success 200 {file} binary
// @Failure 409 {object} ErrorResponse
// @Router /camera/preview [get]
func (h *CameraHandler) Preview(c *fiber.Ctx) error {
	if h.camera == nil {
		return respondError(c, capture.ErrUnsupported)
	}
	session := h.camera.Active()
	if session == nil {
		return h.noSession(c)
	}

	frame, contentType, err := session.Preview(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	if contentType == "" {
		contentType = "image/jpeg"
	}
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.Send(frame)
}

// Capture godoc
// @Summary Capture a frame and transcribe it
// @Description Freezes the next frame, releases the camera, then runs the extraction pipeline on it
// @Tags Camera
// @Produce json
// @Param flow query string false "text or annotated (default annotated)"
// @Param x query number false "Crop X in display pixels"
// @Param y query number false "Crop Y in display pixels"
// @Param width query number false "Crop width in display pixels"
// @Param height query number false "Crop height in display pixels"
// @Param scale_x query number false "Native/display width ratio"
// @Param scale_y query number false "Native/display height ratio"
// @Success 200 {object} ExtractResponse
// @Failure 409 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /camera/capture [post]
func (h *CameraHandler) Capture(c *fiber.Ctx) error {
	if h.camera == nil {
		return respondError(c, capture.ErrUnsupported)
	}
	session := h.camera.Active()
	if session == nil {
		return h.noSession(c)
	}

	flow, err := textFlow(c.Query("flow"))
	if err != nil {
		return respondError(c, err)
	}
	// keep the session open so the frame is not lost while a run is in flight
	if h.ocr.pipeline.Busy() {
		return respondError(c, pipeline.ErrBusy)
	}

	img, err := session.Capture(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return h.ocr.run(c, img, flow)
}

// Stop godoc
// @Summary Release the camera
// @Tags Camera
// @Produce json
// @Success 200 {object} map[string]string
// @Router /camera/stop [post]
func (h *CameraHandler) Stop(c *fiber.Ctx) error {
	if h.camera != nil {
		if err := h.camera.Stop(); err != nil {
			return respondError(c, err)
		}
	}
	return c.JSON(fiber.Map{"status": "stopped"})
}

// Status godoc
// @Summary Camera status
// @Tags Camera
// @Produce json
// @Success 200 {object} CameraStatus
// @Router /camera/status [get]
func (h *CameraHandler) Status(c *fiber.Ctx) error {
	status := CameraStatus{Devices: []string{}}
	if h.camera != nil {
		for _, d := range h.camera.Devices() {
			status.Devices = append(status.Devices, d.Name())
		}
		status.Session = h.camera.Active()
		status.Active = status.Session != nil
	}
	return c.JSON(status)
}
