package ocr

import (
	"context"

	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/core/media"
)

// Model is the slice of the LLM service the flows need
type Model interface {
	GenerateFromImage(ctx context.Context, systemPrompt, userMessage, imageDataURI string) (string, error)
	GenerateImage(ctx context.Context, prompt string) (string, error)
	GetProviderName() string
}

// LLMProvider transcribes with a vision model; it is the default plain OCR backend
type LLMProvider struct {
	model Model
}

func NewLLMProvider(model Model) *LLMProvider {
	return &LLMProvider{model: model}
}

func (p *LLMProvider) GetProviderName() string {
	return p.model.GetProviderName()
}

func (p *LLMProvider) ExtractText(ctx context.Context, img *media.CapturedImage) (*OCRResult, error) {
	response, err := p.model.GenerateFromImage(ctx, plainTextPrompt, userInstruction, img.DataURI())
	if err != nil {
		return nil, err
	}

	result, err := parseTextResult(response)
	if err != nil {
		return nil, err
	}

	// vision models report no confidence
	return &OCRResult{Text: result.ExtractedText, Confidence: 0.9}, nil
}
