package ocr

import (
	"context"
	"fmt"
	"mime"

	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/core/media"
)

// Provider interface for plain OCR services
type Provider interface {
	// ExtractText extracts text from image
	ExtractText(ctx context.Context, img *media.CapturedImage) (*OCRResult, error)

	// GetProviderName returns the provider name
	GetProviderName() string
}

// OCRResult contains the extracted text and metadata
type OCRResult struct {
	Text       string  `json:"text"`       // Raw extracted text
	Confidence float64 `json:"confidence"` // OCR confidence score (0-1)
}

// ProviderConfig selects the backend for the plain text flow
type ProviderConfig struct {
	Name               string // llm, googlevision, ocrspace, tesseract
	GoogleVisionAPIKey string
	OCRSpaceAPIKey     string
	TesseractLanguage  string
}

// NewProvider builds the plain OCR backend; "llm" (or empty) transcribes with the vision model
func NewProvider(cfg ProviderConfig, model Model) (Provider, error) {
	switch cfg.Name {
	case "", "llm":
		if model == nil {
			return nil, fmt.Errorf("llm OCR provider needs a vision model")
		}
		return NewLLMProvider(model), nil
	case "googlevision":
		if cfg.GoogleVisionAPIKey == "" {
			return nil, fmt.Errorf("GOOGLE_VISION_API_KEY is required")
		}
		return NewGoogleVisionProvider(cfg.GoogleVisionAPIKey), nil
	case "ocrspace":
		if cfg.OCRSpaceAPIKey == "" {
			return nil, fmt.Errorf("OCRSPACE_API_KEY is required")
		}
		return NewOCRSpaceProvider(cfg.OCRSpaceAPIKey), nil
	case "tesseract":
		return NewTesseractProvider(cfg.TesseractLanguage), nil
	default:
		return nil, fmt.Errorf("unknown OCR provider: %s", cfg.Name)
	}
}

// extensionFor picks the file extension OCR engines expect for a MIME type
func extensionFor(mimeType string) string {
	switch mimeType {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/tiff":
		return ".tif"
	}
	if exts, _ := mime.ExtensionsByType(mimeType); len(exts) > 0 {
		return exts[0]
	}
	return ".jpg"
}
