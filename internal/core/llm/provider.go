package llm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

// LLMProvider is the text-only contract every provider implements
type LLMProvider interface {
	GenerateResponse(ctx context.Context, systemPrompt, userMessage string) (string, error)
	GetProviderName() string
}

// VisionProvider accepts an image alongside the prompt.
// imageDataURI has the form data:<mimetype>;base64,<payload>.
type VisionProvider interface {
	LLMProvider
	GenerateFromImage(ctx context.Context, systemPrompt, userMessage, imageDataURI string) (string, error)
}

// ImageGenerator produces an image and returns it as a data URI
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

var (
	ErrVisionUnsupported = errors.New("provider does not accept image input")
	ErrImageUnsupported  = errors.New("provider cannot generate images")
)

// ProviderType untuk factory
type ProviderType string

const (
	ProviderOpenAI ProviderType = "openai"
	ProviderGemini ProviderType = "gemini"
	ProviderGroq   ProviderType = "groq"
	ProviderClaude ProviderType = "claude"
)

// ProviderConfig untuk create provider
type ProviderConfig struct {
	Type ProviderType

	// API Keys
	OpenAIKey string
	GeminiKey string
	GroqKey   string
	ClaudeKey string

	// Model configs
	Model       string
	ImageModel  string
	Temperature float32
	MaxTokens   int

	// BaseURL overrides the provider endpoint (proxies, tests)
	BaseURL string
}

// NewProvider factory untuk create LLM provider
func NewProvider(cfg *ProviderConfig) (LLMProvider, error) {
	switch cfg.Type {
	case ProviderOpenAI:
		if cfg.OpenAIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required")
		}
		return NewOpenAIProvider(cfg.OpenAIKey, cfg.Model, cfg.Temperature, cfg.MaxTokens,
			WithBaseURL(cfg.BaseURL), WithImageModel(cfg.ImageModel)), nil

	case ProviderGemini:
		if cfg.GeminiKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required")
		}
		p := NewGeminiProvider(cfg.GeminiKey, cfg.Model, cfg.Temperature, cfg.MaxTokens)
		if cfg.BaseURL != "" {
			p.baseURL = strings.TrimRight(cfg.BaseURL, "/")
		}
		if cfg.ImageModel != "" {
			p.imageModel = cfg.ImageModel
		}
		return p, nil

	case ProviderGroq:
		if cfg.GroqKey == "" {
			return nil, fmt.Errorf("GROQ_API_KEY is required")
		}
		return NewGroqProvider(cfg.GroqKey, cfg.Model, cfg.Temperature, cfg.MaxTokens), nil

	case ProviderClaude:
		if cfg.ClaudeKey == "" {
			return nil, fmt.Errorf("CLAUDE_API_KEY is required")
		}
		p := NewClaudeProvider(cfg.ClaudeKey, cfg.Model, cfg.Temperature, cfg.MaxTokens)
		if cfg.BaseURL != "" {
			p.baseURL = strings.TrimRight(cfg.BaseURL, "/")
		}
		return p, nil

	default:
		return nil, fmt.Errorf("unknown LLM provider type: %s (use gemini, openai, groq or claude)", cfg.Type)
	}
}

// LoadProviderFromEnv load config dari environment variables
func LoadProviderFromEnv() (*ProviderConfig, error) {
	providerType := os.Getenv("LLM_PROVIDER")
	if providerType == "" {
		providerType = "gemini" // the transcription prompts were tuned on Gemini
	}

	cfg := &ProviderConfig{
		Type:        ProviderType(providerType),
		OpenAIKey:   os.Getenv("OPENAI_API_KEY"),
		GeminiKey:   os.Getenv("GEMINI_API_KEY"),
		GroqKey:     os.Getenv("GROQ_API_KEY"),
		ClaudeKey:   os.Getenv("CLAUDE_API_KEY"),
		ImageModel:  os.Getenv("LLM_IMAGE_MODEL"),
		BaseURL:     os.Getenv("LLM_BASE_URL"),
	}

	if model := os.Getenv("LLM_MODEL"); model != "" {
		cfg.Model = model
	} else {
		// Provider-specific defaults, all vision capable
		switch cfg.Type {
		case ProviderOpenAI:
			cfg.Model = "gpt-4o-mini"
		case ProviderGemini:
			cfg.Model = "gemini-1.5-flash"
		case ProviderGroq:
			cfg.Model = "meta-llama/llama-4-scout-17b-16e-instruct"
		case ProviderClaude:
			cfg.Model = "claude-3-5-sonnet-20241022"
		}
	}

	// Transcription wants low randomness and room for long documents
	cfg.Temperature = 0.2
	cfg.MaxTokens = 4096

	return cfg, nil
}

// splitDataURI returns the MIME type and the still-encoded base64 payload
func splitDataURI(uri string) (string, string, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", "", fmt.Errorf("image must be a data URI")
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok || !strings.HasSuffix(header, ";base64") {
		return "", "", fmt.Errorf("image data URI must be base64 encoded")
	}
	mimeType, _, _ := strings.Cut(header, ";")
	return mimeType, payload, nil
}
