package llm

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// Service wraps LLM provider untuk dependency injection
type Service struct {
	provider LLMProvider
	imager   ImageGenerator
}

// NewServiceFromEnv creates LLM service with provider from environment
func NewServiceFromEnv() (*Service, error) {
	cfg, err := LoadProviderFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load LLM config: %w", err)
	}

	provider, err := NewProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM provider: %w", err)
	}

	log.Info().Str("provider", provider.GetProviderName()).Str("model", cfg.Model).Msg("🤖 Using LLM provider")

	return NewServiceWithProvider(provider), nil
}

// NewServiceWithProvider creates service with custom provider (for testing)
func NewServiceWithProvider(provider LLMProvider) *Service {
	s := &Service{provider: provider}
	if g, ok := provider.(ImageGenerator); ok {
		s.imager = g
	}
	return s
}

// SupportsVision reports whether GenerateFromImage can succeed at all
func (s *Service) SupportsVision() bool {
	if _, ok := s.provider.(VisionProvider); !ok {
		return false
	}
	if c, ok := s.provider.(interface{ AcceptsImages() bool }); ok {
		return c.AcceptsImages()
	}
	return true
}

// GenerateFromImage sends the image with the prompt; the provider must accept images
func (s *Service) GenerateFromImage(ctx context.Context, systemPrompt, userMessage, imageDataURI string) (string, error) {
	vp, ok := s.provider.(VisionProvider)
	if !ok {
		return "", fmt.Errorf("%s: %w", s.provider.GetProviderName(), ErrVisionUnsupported)
	}
	return vp.GenerateFromImage(ctx, systemPrompt, userMessage, imageDataURI)
}

// GenerateImage returns a data URI
func (s *Service) GenerateImage(ctx context.Context, prompt string) (string, error) {
	if s.imager == nil {
		return "", fmt.Errorf("%s: %w", s.provider.GetProviderName(), ErrImageUnsupported)
	}
	return s.imager.GenerateImage(ctx, prompt)
}

// GetProviderName returns current provider name
func (s *Service) GetProviderName() string {
	return s.provider.GetProviderName()
}
