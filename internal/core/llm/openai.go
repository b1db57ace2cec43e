package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider talks to OpenAI or any OpenAI-compatible endpoint (Groq)
type OpenAIProvider struct {
	client      *openai.Client
	name        string
	model       string
	imageModel  string
	temperature float32
	maxTokens   int
	vision      bool
	images      bool
}

type OpenAIOption func(*openAIOptions)

type openAIOptions struct {
	baseURL    string
	name       string
	imageModel string
	vision     bool
	images     bool
}

func WithBaseURL(url string) OpenAIOption {
	return func(o *openAIOptions) {
		if url != "" {
			o.baseURL = url
		}
	}
}

func WithImageModel(model string) OpenAIOption {
	return func(o *openAIOptions) {
		if model != "" {
			o.imageModel = model
		}
	}
}

func withName(name string) OpenAIOption {
	return func(o *openAIOptions) { o.name = name }
}

func withCapabilities(vision, images bool) OpenAIOption {
	return func(o *openAIOptions) {
		o.vision = vision
		o.images = images
	}
}

func NewOpenAIProvider(apiKey string, model string, temperature float32, maxTokens int, opts ...OpenAIOption) *OpenAIProvider {
	if model == "" {
		model = "gpt-4o-mini"
	}
	if temperature == 0 {
		temperature = 0.2
	}
	if maxTokens == 0 {
		maxTokens = 4096
	}

	o := &openAIOptions{
		name:       "OpenAI",
		imageModel: "dall-e-3",
		vision:     true,
		images:     true,
	}
	for _, opt := range opts {
		opt(o)
	}

	config := openai.DefaultConfig(apiKey)
	if o.baseURL != "" {
		config.BaseURL = o.baseURL
	}
	config.HTTPClient = &http.Client{
		Timeout: 90 * time.Second, // images make for slow completions
	}

	return &OpenAIProvider{
		client:      openai.NewClientWithConfig(config),
		name:        o.name,
		model:       model,
		imageModel:  o.imageModel,
		temperature: temperature,
		maxTokens:   maxTokens,
		vision:      o.vision,
		images:      o.images,
	}
}

func (p *OpenAIProvider) GetProviderName() string {
	return p.name
}

// AcceptsImages is false for OpenAI-compatible backends without vision models
func (p *OpenAIProvider) AcceptsImages() bool {
	return p.vision
}

func (p *OpenAIProvider) GenerateResponse(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	return p.complete(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: userMessage},
	})
}

func (p *OpenAIProvider) GenerateFromImage(ctx context.Context, systemPrompt, userMessage, imageDataURI string) (string, error) {
	if !p.vision {
		return "", fmt.Errorf("%s: %w", p.name, ErrVisionUnsupported)
	}
	if _, _, err := splitDataURI(imageDataURI); err != nil {
		return "", err
	}

	return p.complete(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
		{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText, Text: userMessage},
				{
					Type: openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{
						URL:    imageDataURI,
						Detail: openai.ImageURLDetailHigh, // handwriting needs the full resolution
					},
				},
			},
		},
	})
}

func (p *OpenAIProvider) complete(ctx context.Context, messages []openai.ChatCompletionMessage) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    messages,
		Temperature: p.temperature,
		MaxTokens:   p.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("%s error: %w", strings.ToLower(p.name), err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from %s", p.name)
	}

	return resp.Choices[0].Message.Content, nil
}

func (p *OpenAIProvider) GenerateImage(ctx context.Context, prompt string) (string, error) {
	if !p.images {
		return "", fmt.Errorf("%s: %w", p.name, ErrImageUnsupported)
	}

	req := openai.ImageRequest{
		Prompt: prompt,
		Model:  p.imageModel,
		N:      1,
		Size:   openai.CreateImageSize1792x1024, // banner shaped
	}
	// gpt-image models always answer in base64 and reject the field
	if strings.HasPrefix(p.imageModel, "dall-e") {
		req.ResponseFormat = openai.CreateImageResponseFormatB64JSON
	}

	resp, err := p.client.CreateImage(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%s image error: %w", strings.ToLower(p.name), err)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return "", fmt.Errorf("no image from %s", p.name)
	}

	return "data:image/png;base64," + resp.Data[0].B64JSON, nil
}
