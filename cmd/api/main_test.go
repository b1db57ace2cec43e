package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/app"
	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/shared/config"
)

const (
	timeout = 5 * time.Second
	tick    = 20 * time.Millisecond
)

type stubModel struct{}

func (stubModel) GenerateFromImage(context.Context, string, string, string) (string, error) {
	return `{"extractedText":"Hello"}`, nil
}

func (stubModel) GenerateImage(context.Context, string) (string, error) { return "", nil }

func (stubModel) GetProviderName() string { return "stub" }

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte{0xff, 0xd8, 0xff, 0xd9})
	}))
	t.Cleanup(srv.Close)

	return &config.Config{
		Env:           "test",
		OCRProvider:   "llm",
		StorageDriver: "file",
		StorageDSN:    t.TempDir(),
		HistoryKey:    "transcriptionHistory",
		HistoryLimit:  config.MaxHistoryLimit,
		CameraDevices: []string{"desk|environment|snapshot|" + srv.URL},
	}
}

// openWithSession builds the app and leaves a camera session open, so tests can see teardown
func openWithSession(opened **app.App) func(context.Context, *config.Config) (*app.App, error) {
	return func(ctx context.Context, cfg *config.Config) (*app.App, error) {
		a, err := app.New(ctx, cfg, stubModel{})
		if err != nil {
			return nil, err
		}
		if _, err := a.Camera.Start(ctx); err != nil {
			return nil, err
		}
		*opened = a
		return a, nil
	}
}

func TestRun_ReleasesResourcesWhenListenFails(t *testing.T) {
	busy, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer busy.Close()

	cfg := testConfig(t)
	cfg.Port = strconv.Itoa(busy.Addr().(*net.TCPAddr).Port)

	var a *app.App
	err = run(context.Background(), cfg, openWithSession(&a))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server stopped")

	require.NotNil(t, a)
	assert.Equal(t, 0, a.Camera.ActiveSessions(), "camera must be released before exit")
}

func TestRun_ReleasesResourcesOnBadSchedule(t *testing.T) {
	cfg := testConfig(t)
	cfg.BannerRefreshCron = "not a cron"

	var a *app.App
	err := run(context.Background(), cfg, openWithSession(&a))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid banner schedule")

	require.NotNil(t, a)
	assert.Equal(t, 0, a.Camera.ActiveSessions())
}

func TestRun_InitFailure(t *testing.T) {
	boom := errors.New("no provider")
	err := run(context.Background(), testConfig(t), func(context.Context, *config.Config) (*app.App, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestRun_StopsOnCancel(t *testing.T) {
	l, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())

	cfg := testConfig(t)
	cfg.Port = strconv.Itoa(port)

	ctx, cancel := context.WithCancel(context.Background())
	var a *app.App
	done := make(chan error, 1)
	go func() { done <- run(ctx, cfg, openWithSession(&a)) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://127.0.0.1:" + cfg.Port + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, timeout, tick)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(timeout):
		t.Fatal("run did not return after cancel")
	}
	assert.Equal(t, 0, a.Camera.ActiveSessions())
}
