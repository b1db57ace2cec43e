package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

type GeminiProvider struct {
	apiKey      string
	model       string
	imageModel  string
	temperature float32
	maxTokens   int
	baseURL     string
	client      *http.Client
}

func NewGeminiProvider(apiKey string, model string, temperature float32, maxTokens int) *GeminiProvider {
	if model == "" {
		model = "gemini-1.5-flash"
	}
	if temperature == 0 {
		temperature = 0.2
	}
	if maxTokens == 0 {
		maxTokens = 8192 // annotated transcriptions are long JSON documents
	}

	return &GeminiProvider{
		apiKey:      apiKey,
		model:       model,
		imageModel:  "gemini-2.0-flash-preview-image-generation",
		temperature: temperature,
		maxTokens:   maxTokens,
		baseURL:     geminiBaseURL,
		client: &http.Client{
			Timeout: 90 * time.Second,
		},
	}
}

func (p *GeminiProvider) GetProviderName() string {
	return "Google Gemini"
}

// Gemini REST API request/response structures
type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
	Role  string       `json:"role,omitempty"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiGenerationConfig struct {
	Temperature        float32  `json:"temperature"`
	MaxOutputTokens    int      `json:"maxOutputTokens"`
	ResponseModalities []string `json:"responseModalities,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (p *GeminiProvider) GenerateResponse(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	return p.generateText(ctx, []geminiPart{{Text: joinPrompt(systemPrompt, userMessage)}})
}

func (p *GeminiProvider) GenerateFromImage(ctx context.Context, systemPrompt, userMessage, imageDataURI string) (string, error) {
	mimeType, payload, err := splitDataURI(imageDataURI)
	if err != nil {
		return "", err
	}

	return p.generateText(ctx, []geminiPart{
		{Text: joinPrompt(systemPrompt, userMessage)},
		{InlineData: &geminiInlineData{MimeType: mimeType, Data: payload}},
	})
}

func (p *GeminiProvider) GenerateImage(ctx context.Context, prompt string) (string, error) {
	resp, err := p.call(ctx, p.imageModel, geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}, Role: "user"}},
		GenerationConfig: geminiGenerationConfig{
			Temperature:        p.temperature,
			MaxOutputTokens:    p.maxTokens,
			ResponseModalities: []string{"TEXT", "IMAGE"},
		},
	})
	if err != nil {
		return "", err
	}

	for _, c := range resp.Candidates {
		for _, part := range c.Content.Parts {
			if part.InlineData != nil && part.InlineData.Data != "" {
				return fmt.Sprintf("data:%s;base64,%s", part.InlineData.MimeType, part.InlineData.Data), nil
			}
		}
	}
	return "", fmt.Errorf("no image from Gemini (candidates: %d)", len(resp.Candidates))
}

// For Gemini the system instruction travels in the first user message
func joinPrompt(systemPrompt, userMessage string) string {
	if systemPrompt == "" {
		return userMessage
	}
	return systemPrompt + "\n\n" + userMessage
}

func (p *GeminiProvider) generateText(ctx context.Context, parts []geminiPart) (string, error) {
	resp, err := p.call(ctx, p.model, geminiRequest{
		Contents: []geminiContent{{Parts: parts, Role: "user"}},
		GenerationConfig: geminiGenerationConfig{
			Temperature:     p.temperature,
			MaxOutputTokens: p.maxTokens,
		},
	})
	if err != nil {
		return "", err
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from Gemini (candidates: %d)", len(resp.Candidates))
	}

	return resp.Candidates[0].Content.Parts[0].Text, nil
}

func (p *GeminiProvider) call(ctx context.Context, model string, reqBody geminiRequest) (*geminiResponse, error) {
	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", p.baseURL, model, p.apiKey)

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gemini error (model: %s, status: %d): %s", model, resp.StatusCode, string(body))
	}

	var geminiResp geminiResponse
	if err := json.Unmarshal(body, &geminiResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	log.Debug().Str("model", model).Int("candidates", len(geminiResp.Candidates)).Msg("🔍 Gemini response")
	return &geminiResp, nil
}
