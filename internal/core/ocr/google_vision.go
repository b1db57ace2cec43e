package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/core/media"
)

const googleVisionBaseURL = "https://vision.googleapis.com/v1"

// GoogleVisionProvider implements OCR using Google Cloud Vision API
type GoogleVisionProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewGoogleVisionProvider creates a new Google Vision OCR provider
func NewGoogleVisionProvider(apiKey string) *GoogleVisionProvider {
	return &GoogleVisionProvider{
		apiKey:  apiKey,
		baseURL: googleVisionBaseURL,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// GetProviderName returns the provider name
func (p *GoogleVisionProvider) GetProviderName() string {
	return "Google Cloud Vision"
}

// Google Vision API request/response structures
type visionRequest struct {
	Requests []visionRequestItem `json:"requests"`
}

type visionRequestItem struct {
	Image    visionImage     `json:"image"`
	Features []visionFeature `json:"features"`
}

type visionImage struct {
	Content string `json:"content"` // base64 encoded image
}

type visionFeature struct {
	Type       string `json:"type"`
	MaxResults int    `json:"maxResults,omitempty"`
}

type visionResponse struct {
	Responses []struct {
		FullTextAnnotation *struct {
			Text  string `json:"text"`
			Pages []struct {
				Confidence float64 `json:"confidence"`
			} `json:"pages"`
		} `json:"fullTextAnnotation,omitempty"`
		Error *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error,omitempty"`
	} `json:"responses"`
}

// ExtractText uses DOCUMENT_TEXT_DETECTION, the dense-text model that also reads handwriting
func (p *GoogleVisionProvider) ExtractText(ctx context.Context, img *media.CapturedImage) (*OCRResult, error) {
	reqBody := visionRequest{
		Requests: []visionRequestItem{
			{
				Image: visionImage{
					Content: base64.StdEncoding.EncodeToString(img.Bytes()),
				},
				Features: []visionFeature{
					{Type: "DOCUMENT_TEXT_DETECTION"},
				},
			},
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/images:annotate?key=%s", p.baseURL, p.apiKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("google vision request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google vision error (status: %d): %s", resp.StatusCode, string(body))
	}

	var visionResp visionResponse
	if err := json.Unmarshal(body, &visionResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if len(visionResp.Responses) == 0 {
		return nil, fmt.Errorf("no response from Google Vision")
	}

	r := visionResp.Responses[0]
	if r.Error != nil {
		return nil, fmt.Errorf("google vision API error: %s", r.Error.Message)
	}

	// No annotation means the image holds no text
	if r.FullTextAnnotation == nil {
		return &OCRResult{}, nil
	}

	confidence := 0.95
	if len(r.FullTextAnnotation.Pages) > 0 && r.FullTextAnnotation.Pages[0].Confidence > 0 {
		confidence = r.FullTextAnnotation.Pages[0].Confidence
	}

	return &OCRResult{
		Text:       r.FullTextAnnotation.Text,
		Confidence: confidence,
	}, nil
}
