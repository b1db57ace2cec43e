package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/swagger"
	"github.com/rs/zerolog/log"

	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/app"
	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/core/banner"
	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/handlers"
	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/shared/config"
	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/shared/utils"

	_ "github.com/MuhamadAgungGumelar/clarity-ocr-be/cmd/api/docs"
)

// @title Clarity OCR API
// @version 1.0
// @description Capture, crop and transcribe images of text, with AI clarifications for ambiguous words
// @termsOfService http://swagger.io/terms/
// @contact.name API Support
// @license.name MIT
// @host localhost:8080
// @BasePath /
func main() {
	// Load config
	cfg := config.LoadConfig()
	utils.InitLogger(cfg.Env)
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("🚀 Starting clarity-ocr api")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, cfg, app.NewFromEnv)
	stop()
	if err != nil {
		log.Fatal().Err(err).Msg("❌ api stopped")
	}
	log.Info().Msg("👋 Goodbye!")
}

// run owns every resource it opens and releases them before returning
func run(ctx context.Context, cfg *config.Config, open func(context.Context, *config.Config) (*app.App, error)) error {
	a, err := open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer a.Close()

	// Banner refresh
	if cfg.BannerRefreshCron != "" {
		scheduler := banner.NewScheduler()
		if err := scheduler.ScheduleRefresh(a.Banner, cfg.BannerRefreshCron, 2*time.Minute); err != nil {
			return fmt.Errorf("invalid banner schedule %q: %w", cfg.BannerRefreshCron, err)
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	server := newServer(a, cfg)

	go func() {
		<-ctx.Done()
		log.Info().Msg("🛑 Shutting down api...")
		if err := server.ShutdownWithTimeout(10 * time.Second); err != nil {
			utils.LogError("❌ Shutdown failed", err, map[string]interface{}{"timeout": "10s"})
		}
	}()

	utils.LogInfo("✅ api running", map[string]interface{}{
		"addr":    ":" + cfg.Port,
		"swagger": "http://localhost:" + cfg.Port + "/swagger/",
	})
	if err := server.Listen(":" + cfg.Port); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}
	return nil
}

func newServer(a *app.App, cfg *config.Config) *fiber.App {
	// Init handlers
	ocrHandler := handlers.NewOCRHandler(a.Pipeline, a.Adapter)
	routes := handlers.Routes{
		Health: handlers.NewHealthHandler(handlers.HealthInfo{
			LLMProvider:   a.OCR.ModelName(),
			OCRProvider:   a.OCR.TextProviderName(),
			StorageDriver: cfg.StorageDriver,
		}, a.Pipeline.Busy),
		OCR:     ocrHandler,
		Camera:  handlers.NewCameraHandler(a.Camera, ocrHandler),
		History: handlers.NewHistoryHandler(a.History),
		Banner:  handlers.NewBannerHandler(a.Banner),
	}

	// Init Fiber app
	server := fiber.New(fiber.Config{
		AppName:               "Clarity OCR API",
		BodyLimit:             handlers.BodyLimit,
		DisableStartupMessage: cfg.Env == "test",
	})

	// Middleware
	server.Use(cors.New())

	// Swagger
	server.Get("/swagger/*", swagger.HandlerDefault)

	routes.Register(server)
	return server
}
