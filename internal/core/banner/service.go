// Package banner serves the generated site banner image.
package banner

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/core/media"
)

// Placeholder is served with status 500 when no banner can be produced
const Placeholder = `<svg xmlns="http://www.w3.org/2000/svg" width="600" height="240" viewBox="0 0 600 240"><rect width="600" height="240" fill="#e2e8f0"/><text x="50%" y="50%" dominant-baseline="middle" text-anchor="middle" font-family="sans-serif" font-size="20" fill="#94a3b8">Error generating image</text></svg>`

const PlaceholderContentType = "image/svg+xml"

type Generator interface {
	GenerateBanner(ctx context.Context, prompt string) (*media.CapturedImage, error)
}

// Service caches the last generated banner; Refresh replaces it
type Service struct {
	gen    Generator
	prompt string

	mu          sync.Mutex
	current     *media.CapturedImage
	generatedAt time.Time
}

// NewService uses the generator's default prompt when prompt is empty
func NewService(gen Generator, prompt string) *Service {
	return &Service{gen: gen, prompt: prompt}
}

// Current returns the cached banner, generating it on first use
func (s *Service) Current(ctx context.Context) (*media.CapturedImage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		return s.current, nil
	}
	return s.generateLocked(ctx)
}

// Refresh generates a new banner; on failure the previous one stays cached
func (s *Service) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.generateLocked(ctx)
	return err
}

// GeneratedAt is zero until a banner exists
func (s *Service) GeneratedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generatedAt
}

func (s *Service) generateLocked(ctx context.Context) (*media.CapturedImage, error) {
	img, err := s.gen.GenerateBanner(ctx, s.prompt)
	if err != nil {
		log.Error().Err(err).Msg("❌ Banner generation failed")
		return nil, err
	}

	s.current = img
	s.generatedAt = time.Now()
	log.Info().Str("image", img.String()).Msg("🖼️ Banner generated")
	return img, nil
}
