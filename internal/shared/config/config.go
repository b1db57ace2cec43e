package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// MaxHistoryLimit caps the stored transcription history
const MaxHistoryLimit = 50

type Config struct {
	Port string
	Env  string

	// OCR backend for the plain transcription flow: llm, googlevision, ocrspace, tesseract
	OCRProvider        string
	GoogleVisionAPIKey string
	OCRSpaceAPIKey     string
	TesseractLanguage  string

	// History storage: file, sqlite, postgres, redis, memory
	StorageDriver string
	StorageDSN    string
	HistoryKey    string
	HistoryLimit  int

	// Network cameras, comma separated "name|facing|kind|url" entries
	CameraDevices []string

	BannerPrompt      string
	BannerRefreshCron string
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ .env file not found, using system environment variables")
	}

	cfg := &Config{
		Port:               os.Getenv("PORT"),
		Env:                os.Getenv("ENV"),
		OCRProvider:        os.Getenv("OCR_PROVIDER"),
		GoogleVisionAPIKey: os.Getenv("GOOGLE_VISION_API_KEY"),
		OCRSpaceAPIKey:     os.Getenv("OCRSPACE_API_KEY"),
		TesseractLanguage:  os.Getenv("TESSERACT_LANGUAGE"),
		StorageDriver:      os.Getenv("STORAGE_DRIVER"),
		StorageDSN:         os.Getenv("STORAGE_DSN"),
		HistoryKey:         os.Getenv("HISTORY_KEY"),
		HistoryLimit:       envInt("HISTORY_LIMIT", MaxHistoryLimit),
		CameraDevices:      splitList(os.Getenv("CAMERA_DEVICES")),
		BannerPrompt:       os.Getenv("BANNER_PROMPT"),
		BannerRefreshCron:  os.Getenv("BANNER_REFRESH_CRON"),
	}

	// Default values
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.Env == "" {
		cfg.Env = "development"
	}
	if cfg.OCRProvider == "" {
		cfg.OCRProvider = "llm"
	}
	if cfg.TesseractLanguage == "" {
		cfg.TesseractLanguage = "eng"
	}
	if cfg.StorageDriver == "" {
		cfg.StorageDriver = "file"
	}
	if cfg.StorageDSN == "" && cfg.StorageDriver == "file" {
		cfg.StorageDSN = "./data"
	}
	if cfg.HistoryKey == "" {
		cfg.HistoryKey = "transcriptionHistory"
	}
	if cfg.HistoryLimit > MaxHistoryLimit {
		log.Printf("⚠️ HISTORY_LIMIT=%d exceeds %d, capping", cfg.HistoryLimit, MaxHistoryLimit)
		cfg.HistoryLimit = MaxHistoryLimit
	}

	return cfg
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		log.Printf("⚠️ invalid %s=%q, using %d", key, raw, fallback)
		return fallback
	}
	return v
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
