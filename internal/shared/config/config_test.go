package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_HistoryLimit(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int
	}{
		{"unset", "", MaxHistoryLimit},
		{"smaller", "10", 10},
		{"capped", "500", MaxHistoryLimit},
		{"invalid", "many", MaxHistoryLimit},
		{"negative", "-3", MaxHistoryLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("HISTORY_LIMIT", tt.raw)
			assert.Equal(t, tt.want, LoadConfig().HistoryLimit)
		})
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "ENV", "OCR_PROVIDER", "STORAGE_DRIVER", "STORAGE_DSN", "HISTORY_KEY"} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "llm", cfg.OCRProvider)
	assert.Equal(t, "file", cfg.StorageDriver)
	assert.Equal(t, "./data", cfg.StorageDSN)
	assert.Equal(t, "transcriptionHistory", cfg.HistoryKey)
}
