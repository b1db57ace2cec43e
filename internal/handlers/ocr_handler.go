package handlers

import (
	"bytes"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/core/capture"
	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/core/crop"
	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/core/media"
	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/core/ocr"
	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/core/pipeline"
	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/shared/apperror"
)

// OCRHandler handles extraction and analysis requests
type OCRHandler struct {
	pipeline *pipeline.Pipeline
	adapter  *capture.Adapter
}

// NewOCRHandler creates a new OCR handler
func NewOCRHandler(p *pipeline.Pipeline, adapter *capture.Adapter) *OCRHandler {
	return &OCRHandler{pipeline: p, adapter: adapter}
}

// ExtractResponse is the outcome of one pipeline run
type ExtractResponse struct {
	Kind         ocr.Kind   `json:"kind"`
	Result       ocr.Result `json:"result"`
	HistoryID    string     `json:"history_id,omitempty"`
	HistoryError string     `json:"history_error,omitempty"`
	DurationMS   int64      `json:"duration_ms"`
}

// ClarifyRequest applies one accepted suggestion to a transcription
type ClarifyRequest struct {
	Text         string `json:"text"`
	OriginalWord string `json:"originalWord"`
	Replacement  string `json:"replacement"`
}

// Extract godoc
// @Summary Extract text from an uploaded image
// @Description Upload an image (max 4MB), optionally crop it, and transcribe it. The annotated flow adds a context summary and clarifications for ambiguous words.
// @Tags OCR
// @Accept multipart/form-data
// @Produce json
// @Param image formData file true "Image file"
// @Param flow formData string false "text or annotated (default annotated)"
// @Param x formData number false "Crop X in display pixels"
// @Param y formData number false "Crop Y in display pixels"
// @Param width formData number false "Crop width in display pixels"
// @Param height formData number false "Crop height in display pixels"
// @Param scale_x formData number false "Native/display width ratio"
// @Param scale_y formData number false "Native/display height ratio"
// @Success 200 {object} ExtractResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 413 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /ocr/extract [post]
func (h *OCRHandler) Extract(c *fiber.Ctx) error {
	file, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "image file is required"})
	}

	img, err := h.adapter.FromUpload(file)
	if err != nil {
		return respondError(c, err)
	}

	flow, err := textFlow(c.FormValue("flow"))
	if err != nil {
		return respondError(c, err)
	}
	return h.run(c, img, flow)
}

// ExtractRaw godoc
// @Summary Extract text from a raw image body
// @Description Same as /ocr/extract but the request body is the image itself (drag and drop clients)
// @Tags OCR
// @Accept image/png
// @Accept image/jpeg
// @Produce json
// @Param flow query string false "text or annotated (default annotated)"
// @Param x query number false "Crop X in display pixels"
// @Param y query number false "Crop Y in display pixels"
// @Param width query number false "Crop width in display pixels"
// @Param height query number false "Crop height in display pixels"
// @Param scale_x query number false "Native/display width ratio"
// @Param scale_y query number false "Native/display height ratio"
// @Success 200 {object} ExtractResponse
// @Failure 400 {object} ErrorResponse
// @Failure 413 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /ocr/extract/raw [post]
func (h *OCRHandler) ExtractRaw(c *fiber.Ctx) error {
	body := c.Body()
	img, err := h.adapter.FromDrop(bytes.NewReader(body), int64(len(body)), c.Get(fiber.HeaderContentType))
	if err != nil {
		return respondError(c, err)
	}

	flow, err := textFlow(c.Query("flow"))
	if err != nil {
		return respondError(c, err)
	}
	return h.run(c, img, flow)
}

// Analyze godoc
// @Summary Describe an image and suggest searches
// @Description Returns a summary of the image and up to five search suggestions. Nothing is written to history.
// @Tags OCR
// @Accept multipart/form-data
// @Produce json
// @Param image formData file true "Image file"
// @Success 200 {object} ExtractResponse
// @Failure 400 {object} ErrorResponse
// @Failure 413 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /ocr/analyze [post]
func (h *OCRHandler) Analyze(c *fiber.Ctx) error {
	file, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "image file is required"})
	}

	img, err := h.adapter.FromUpload(file)
	if err != nil {
		return respondError(c, err)
	}
	return h.run(c, img, ocr.FlowAnalysis)
}

// Clarify godoc
// @Summary Apply a clarification to a transcription
// @Description Replaces every whole-word, case-insensitive occurrence of originalWord with replacement
// @Tags OCR
// @Accept json
// @Produce json
// @Param request body ClarifyRequest true "Text and chosen replacement"
// @Success 200 {object} map[string]string
// @Failure 400 {object} ErrorResponse
// @Router /ocr/clarify [post]
func (h *OCRHandler) Clarify(c *fiber.Ctx) error {
	var req ClarifyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request"})
	}
	if req.OriginalWord == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "originalWord is required"})
	}

	return c.JSON(fiber.Map{
		"text": ocr.ApplyClarification(req.Text, req.OriginalWord, req.Replacement),
	})
}

func (h *OCRHandler) run(c *fiber.Ctx, img *media.CapturedImage, flow ocr.Flow) error {
	region, err := cropRegion(c)
	if err != nil {
		return respondError(c, err)
	}

	log.Info().Str("image", img.String()).Str("flow", string(flow)).Msg("📸 Processing image")

	out, err := h.pipeline.Run(c.Context(), pipeline.Request{Image: img, Crop: region, Flow: flow})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(newExtractResponse(out))
}

func newExtractResponse(out *pipeline.Outcome) ExtractResponse {
	resp := ExtractResponse{
		Kind:       out.Result.Kind(),
		Result:     out.Result,
		DurationMS: out.Duration.Milliseconds(),
	}
	if out.Record != nil {
		resp.HistoryID = out.Record.ID
	}
	if out.HistoryErr != nil {
		resp.HistoryError = "transcription was not saved to history"
	}
	return resp
}

// textFlow restricts the extract endpoints to the transcription flows
func textFlow(s string) (ocr.Flow, error) {
	flow, err := ocr.ParseFlow(s)
	if err != nil {
		return "", err
	}
	if flow != ocr.FlowText && flow != ocr.FlowAnnotated {
		return "", apperror.Validation("flow must be text or annotated", nil)
	}
	return flow, nil
}

var cropFields = []string{"x", "y", "width", "height", "scale_x", "scale_y"}

// cropRegion reads the crop fields from the form or query; none set means no crop
func cropRegion(c *fiber.Ctx) (*crop.Region, error) {
	values := make([]float64, len(cropFields))
	set := false
	for i, name := range cropFields {
		raw := c.FormValue(name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, apperror.Validation("crop field "+name+" must be a number", err)
		}
		values[i] = v
		set = true
	}
	if !set {
		return nil, nil
	}

	return &crop.Region{
		X:      values[0],
		Y:      values[1],
		Width:  values[2],
		Height: values[3],
		ScaleX: values[4],
		ScaleY: values[5],
	}, nil
}
