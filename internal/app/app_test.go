package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/core/llm"
	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/core/media"
	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/core/ocr"
	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/core/pipeline"
	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/shared/config"
)

type stubModel struct{}

func (stubModel) GenerateFromImage(context.Context, string, string, string) (string, error) {
	return `{"extractedText":"Hello"}`, nil
}

func (stubModel) GenerateImage(context.Context, string) (string, error) {
	return "", nil
}

func (stubModel) GetProviderName() string { return "stub" }

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		OCRProvider:   "llm",
		StorageDriver: "file",
		StorageDSN:    t.TempDir(),
		HistoryKey:    "transcriptionHistory",
		HistoryLimit:  2,
	}
}

func TestNew_RunsPipelineIntoHistory(t *testing.T) {
	a, err := New(context.Background(), testConfig(t), stubModel{})
	require.NoError(t, err)
	defer a.Close()

	img, err := media.Encode([]byte("\x89PNG\r\n\x1a\n"), "image/png", media.SourceFile)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		out, err := a.Pipeline.Run(context.Background(), pipeline.Request{Image: img, Flow: ocr.FlowText})
		require.NoError(t, err)
		require.NoError(t, out.HistoryErr)
		require.NotNil(t, out.Record)
		assert.Equal(t, "Hello", out.Record.Text)
	}

	records, err := a.History.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 2, "history limit comes from config")
	assert.Equal(t, 0, a.Camera.ActiveSessions())
}

type textOnlyProvider struct{}

func (textOnlyProvider) GenerateResponse(context.Context, string, string) (string, error) {
	return "", nil
}

func (textOnlyProvider) GetProviderName() string { return "text-only" }

func TestRequireVision(t *testing.T) {
	err := requireVision(llm.NewServiceWithProvider(textOnlyProvider{}))
	assert.ErrorIs(t, err, llm.ErrVisionUnsupported)
	assert.Contains(t, err.Error(), "text-only")

	assert.NoError(t, requireVision(llm.NewServiceWithProvider(llm.NewGroqProvider("k", "", 0, 0))))
}

func TestNewFromEnv_RejectsUnknownProvider(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "deepseek")
	_, err := NewFromEnv(context.Background(), testConfig(t))
	assert.ErrorContains(t, err, "unknown LLM provider type")
}

func TestNew_RejectsBadSettings(t *testing.T) {
	cfg := testConfig(t)
	cfg.CameraDevices = []string{"broken"}
	_, err := New(context.Background(), cfg, stubModel{})
	assert.Error(t, err)

	cfg = testConfig(t)
	cfg.OCRProvider = "carrier-pigeon"
	_, err = New(context.Background(), cfg, stubModel{})
	assert.Error(t, err)

	cfg = testConfig(t)
	cfg.StorageDriver = "floppy"
	_, err = New(context.Background(), cfg, stubModel{})
	assert.Error(t, err)
}
