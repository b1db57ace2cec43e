package ocr

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/core/media"
)

// TesseractProvider implements OCR using Tesseract OCR engine
type TesseractProvider struct {
	tesseractPath string
	language      string
}

// NewTesseractProvider creates a new Tesseract OCR provider
// language is any tesseract language spec, e.g. "eng" or "eng+ind"
func NewTesseractProvider(language string) *TesseractProvider {
	if language == "" {
		language = "eng"
	}

	return &TesseractProvider{
		tesseractPath: "tesseract", // Assumes tesseract is in PATH
		language:      language,
	}
}

// ExtractText writes the image to a temp file and reads the transcription from stdout
func (p *TesseractProvider) ExtractText(ctx context.Context, img *media.CapturedImage) (*OCRResult, error) {
	ext := extensionFor(img.MIMEType())

	tmp, err := os.CreateTemp("", "ocr_image_*"+ext)
	if err != nil {
		return nil, fmt.Errorf("failed to create temp image: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(img.Bytes()); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("failed to write temp image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("failed to write temp image: %w", err)
	}

	// tesseract input.jpg stdout -l eng
	cmd := exec.CommandContext(ctx, p.tesseractPath, tmp.Name(), "stdout", "-l", p.language)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("tesseract command failed: %w, output: %s", err, stderr.String())
	}

	return &OCRResult{
		Text:       strings.TrimSpace(stdout.String()),
		Confidence: 0.90, // tesseract reports no page confidence on stdout
	}, nil
}

// GetProviderName returns the name of the provider
func (p *TesseractProvider) GetProviderName() string {
	return "Tesseract OCR"
}
