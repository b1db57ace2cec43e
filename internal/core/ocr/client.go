package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/core/media"
	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/shared/apperror"
)

// Flow names one external AI operation a caller can run on an image
type Flow string

const (
	FlowText        Flow = "text"
	FlowAnnotated   Flow = "annotated"
	FlowAnalysis    Flow = "analysis"
	FlowSuggestions Flow = "suggestions"
)

// ParseFlow accepts a flow name; empty means annotated
func ParseFlow(s string) (Flow, error) {
	switch f := Flow(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FlowAnnotated, nil
	case FlowText, FlowAnnotated, FlowAnalysis, FlowSuggestions:
		return f, nil
	default:
		return "", apperror.Validation(fmt.Sprintf("unknown flow %q", s), nil)
	}
}

// Client invokes exactly one flow per call and never retries
type Client struct {
	model Model
	text  Provider
}

// NewClient uses text for the plain flow; nil falls back to the vision model
func NewClient(model Model, text Provider) *Client {
	if text == nil {
		text = NewLLMProvider(model)
	}
	return &Client{model: model, text: text}
}

func (c *Client) ModelName() string {
	return c.model.GetProviderName()
}

// TextProviderName is the backend serving the plain text flow
func (c *Client) TextProviderName() string {
	return c.text.GetProviderName()
}

// Run dispatches a flow. FlowAnalysis returns both summary and suggestions.
func (c *Client) Run(ctx context.Context, flow Flow, img *media.CapturedImage) (Result, error) {
	switch flow {
	case FlowText:
		return c.ExtractText(ctx, img)
	case FlowAnnotated:
		return c.ExtractAnnotated(ctx, img)
	case FlowAnalysis:
		return c.Analyze(ctx, img)
	case FlowSuggestions:
		return c.GenerateSuggestions(ctx, img)
	default:
		return nil, apperror.Validation(fmt.Sprintf("unknown flow %q", flow), nil)
	}
}

func (c *Client) ExtractText(ctx context.Context, img *media.CapturedImage) (*TextResult, error) {
	if img == nil {
		return nil, media.ErrEmpty
	}

	log.Info().Str("provider", c.text.GetProviderName()).Str("image", img.String()).Msg("🔍 Extracting text")
	res, err := c.text.ExtractText(ctx, img)
	if err != nil {
		return nil, serviceError("text extraction failed", err)
	}
	return &TextResult{ExtractedText: res.Text}, nil
}

func (c *Client) ExtractAnnotated(ctx context.Context, img *media.CapturedImage) (*AnnotatedResult, error) {
	response, err := c.ask(ctx, img, annotatedTextPrompt, "annotated extraction failed")
	if err != nil {
		return nil, err
	}

	result, err := parseAnnotatedResult(response)
	if err != nil {
		log.Warn().Err(err).Msg("⚠️ Annotated response rejected")
		return nil, err
	}
	log.Info().Int("clarifications", len(result.Clarifications)).Msg("✅ Annotated text extracted")
	return result, nil
}

// AnalyzeImage fills only Summary
func (c *Client) AnalyzeImage(ctx context.Context, img *media.CapturedImage) (*AnalysisResult, error) {
	response, err := c.ask(ctx, img, analysisPrompt, "image analysis failed")
	if err != nil {
		return nil, err
	}

	summary, err := parseSummary(response)
	if err != nil {
		return nil, err
	}
	return &AnalysisResult{Summary: summary}, nil
}

// GenerateSuggestions fills only Suggestions, at most MaxSearchSuggestions
func (c *Client) GenerateSuggestions(ctx context.Context, img *media.CapturedImage) (*AnalysisResult, error) {
	response, err := c.ask(ctx, img, suggestionsPrompt, "suggestion generation failed")
	if err != nil {
		return nil, err
	}

	suggestions, err := parseSuggestions(response)
	if err != nil {
		return nil, err
	}
	return &AnalysisResult{Suggestions: suggestions}, nil
}

// Analyze runs the analysis and suggestion flows side by side; either failing fails both
func (c *Client) Analyze(ctx context.Context, img *media.CapturedImage) (*AnalysisResult, error) {
	var analysis, suggestions *AnalysisResult

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		analysis, err = c.AnalyzeImage(gctx, img)
		return err
	})
	g.Go(func() error {
		var err error
		suggestions, err = c.GenerateSuggestions(gctx, img)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &AnalysisResult{Summary: analysis.Summary, Suggestions: suggestions.Suggestions}, nil
}

// GenerateBanner asks the model for an image; the answer must be a data:image/ URI
func (c *Client) GenerateBanner(ctx context.Context, prompt string) (*media.CapturedImage, error) {
	if prompt == "" {
		prompt = DefaultBannerPrompt
	}

	uri, err := c.model.GenerateImage(ctx, prompt)
	if err != nil {
		return nil, serviceError("image generation failed", err)
	}
	if !strings.HasPrefix(uri, "data:image/") {
		return nil, apperror.Service("invalid image data returned from model", nil)
	}

	img, err := media.ParseDataURI(uri, media.SourceGenerated)
	if err != nil {
		return nil, apperror.Service("invalid image data returned from model", err)
	}
	return img, nil
}

func (c *Client) ask(ctx context.Context, img *media.CapturedImage, systemPrompt, failure string) (string, error) {
	if img == nil {
		return "", media.ErrEmpty
	}

	log.Info().Str("provider", c.model.GetProviderName()).Str("image", img.String()).Msg("🤖 Calling vision model")
	response, err := c.model.GenerateFromImage(ctx, systemPrompt, userInstruction, img.DataURI())
	if err != nil {
		log.Error().Err(err).Msg("❌ " + failure)
		return "", serviceError(failure, err)
	}
	return response, nil
}

// serviceError keeps an already classified error and wraps everything else as a service failure
func serviceError(msg string, err error) error {
	if apperror.KindOf(err) != "" {
		return err
	}
	return apperror.Service(msg, err)
}
