// Package app wires the capture pipeline from configuration. Both the HTTP
// API and the CLI build on it.
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/core/banner"
	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/core/capture"
	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/core/history"
	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/core/kvstore"
	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/core/llm"
	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/core/ocr"
	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/core/pipeline"
	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/shared/config"
	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/shared/utils"
)

type App struct {
	Config   *config.Config
	OCR      *ocr.Client
	Store    kvstore.Store
	History  *history.Store
	Camera   *capture.Camera
	Adapter  *capture.Adapter
	Pipeline *pipeline.Pipeline
	Banner   *banner.Service
}

// New builds everything except the model from cfg
func New(ctx context.Context, cfg *config.Config, model ocr.Model) (*App, error) {
	textProvider, err := ocr.NewProvider(ocr.ProviderConfig{
		Name:               cfg.OCRProvider,
		GoogleVisionAPIKey: cfg.GoogleVisionAPIKey,
		OCRSpaceAPIKey:     cfg.OCRSpaceAPIKey,
		TesseractLanguage:  cfg.TesseractLanguage,
	}, model)
	if err != nil {
		return nil, fmt.Errorf("ocr provider: %w", err)
	}
	client := ocr.NewClient(model, textProvider)

	store, err := kvstore.Open(ctx, cfg.StorageDriver, cfg.StorageDSN)
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}
	hist := history.NewStore(store, history.WithKey(cfg.HistoryKey), history.WithLimit(cfg.HistoryLimit))

	devices := make([]capture.Device, 0, len(cfg.CameraDevices))
	for _, entry := range cfg.CameraDevices {
		dev, err := capture.ParseDevice(entry)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("camera: %w", err)
		}
		devices = append(devices, dev)
	}
	camera := capture.NewCamera(devices...)

	log.Info().Str("provider", model.GetProviderName()).Msg("🤖 Using LLM provider")
	log.Info().Str("provider", client.TextProviderName()).Msg("🔍 Using OCR provider")
	log.Info().Str("driver", cfg.StorageDriver).Str("key", cfg.HistoryKey).Msg("💾 History storage ready")
	if len(devices) == 0 {
		utils.LogWarn("⚠️ No camera configured, only uploads are available", map[string]interface{}{
			"setting": "CAMERA_DEVICES",
		})
	} else {
		log.Info().Int("devices", len(devices)).Msg("📷 Cameras configured")
	}

	return &App{
		Config:   cfg,
		OCR:      client,
		Store:    store,
		History:  hist,
		Camera:   camera,
		Adapter:  capture.NewAdapter(camera),
		Pipeline: pipeline.New(client, hist),
		Banner:   banner.NewService(client, cfg.BannerPrompt),
	}, nil
}

// NewFromEnv uses the LLM provider selected by LLM_PROVIDER
func NewFromEnv(ctx context.Context, cfg *config.Config) (*App, error) {
	model, err := llm.NewServiceFromEnv()
	if err != nil {
		return nil, fmt.Errorf("llm: %w", err)
	}
	if err := requireVision(model); err != nil {
		return nil, err
	}
	return New(ctx, cfg, model)
}

// requireVision fails at startup instead of on every extraction
func requireVision(model *llm.Service) error {
	if !model.SupportsVision() {
		return fmt.Errorf("llm: LLM_PROVIDER %s cannot read images, every flow needs a vision model: %w",
			model.GetProviderName(), llm.ErrVisionUnsupported)
	}
	return nil
}

// Close releases the camera and the storage backend
func (a *App) Close() error {
	camErr := a.Camera.Close()
	if err := a.Store.Close(); err != nil {
		return err
	}
	return camErr
}
