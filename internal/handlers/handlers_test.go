package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/core/banner"
	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/core/capture"
	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/core/history"
	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/core/kvstore"
	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/core/media"
	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/core/ocr"
	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/core/pipeline"
	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/shared/apperror"
)

type fakeExtractor struct {
	mu     sync.Mutex
	images []*media.CapturedImage
	err    error
	// gate, when set, holds every run until it is closed
	gate chan struct{}
}

func (f *fakeExtractor) Run(_ context.Context, flow ocr.Flow, img *media.CapturedImage) (ocr.Result, error) {
	f.mu.Lock()
	f.images = append(f.images, img)
	f.mu.Unlock()

	if f.gate != nil {
		<-f.gate
	}

	if f.err != nil {
		return nil, f.err
	}
	switch flow {
	case ocr.FlowText:
		return &ocr.TextResult{ExtractedText: "Hello"}, nil
	case ocr.FlowAnalysis:
		return &ocr.AnalysisResult{Summary: "a note", Suggestions: []string{"notes"}}, nil
	default:
		return &ocr.AnnotatedResult{
			ContextualSummary: "This appears to be a medical prescription.",
			ExtractedText:     "Take Amoxicillim",
			Clarifications: []ocr.Clarification{{
				OriginalWord: "Amoxicillim",
				Suggestions:  []string{"Amoxicillin", "Amoxicillan"},
				Reasoning:    "Illegible handwriting",
			}},
		}, nil
	}
}

type fakeBanner struct{ err error }

func (f fakeBanner) GenerateBanner(context.Context, string) (*media.CapturedImage, error) {
	if f.err != nil {
		return nil, f.err
	}
	return media.Encode([]byte("\x89PNG\r\n\x1a\nbanner"), "image/png", media.SourceGenerated)
}

type harness struct {
	app      *fiber.App
	ext      *fakeExtractor
	store    *history.Store
	pipeline *pipeline.Pipeline
}

func newHarness(t *testing.T, cam *capture.Camera, bannerErr error) *harness {
	t.Helper()
	ext := &fakeExtractor{}
	store := history.NewStore(kvstore.NewMemoryStore())
	p := pipeline.New(ext, store)
	ocrHandler := NewOCRHandler(p, capture.NewAdapter(cam))

	app := fiber.New(fiber.Config{BodyLimit: BodyLimit})
	Routes{
		Health:  NewHealthHandler(HealthInfo{LLMProvider: "fake", OCRProvider: "fake", StorageDriver: "memory"}, p.Busy),
		OCR:     ocrHandler,
		Camera:  NewCameraHandler(cam, ocrHandler),
		History: NewHistoryHandler(store),
		Banner:  NewBannerHandler(banner.NewService(fakeBanner{err: bannerErr}, "")),
	}.Register(app)

	return &harness{app: app, ext: ext, store: store, pipeline: p}
}

func (h *harness) do(t *testing.T, req *http.Request) (*http.Response, []byte) {
	t.Helper()
	resp, err := h.app.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, body
}

func uploadRequest(t *testing.T, path, contentType string, data []byte, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="image"; filename="scan"`)
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func TestExtract_TextFlowWritesHistory(t *testing.T) {
	h := newHarness(t, nil, nil)

	resp, body := h.do(t, uploadRequest(t, "/ocr/extract", "image/png", pngBytes(t, 10, 10), map[string]string{"flow": "text"}))
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))

	var out struct {
		Kind      string `json:"kind"`
		HistoryID string `json:"history_id"`
		Result    struct {
			ExtractedText string `json:"extractedText"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "text", out.Kind)
	assert.Equal(t, "Hello", out.Result.ExtractedText)
	require.NotEmpty(t, out.HistoryID)

	resp, body = h.do(t, httptest.NewRequest(http.MethodGet, "/history", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var records []history.Record
	require.NoError(t, json.Unmarshal(body, &records))
	require.Len(t, records, 1)
	assert.Equal(t, "Hello", records[0].Text)
	assert.True(t, strings.HasPrefix(records[0].Image, "data:image/png;base64,"))

	resp, body = h.do(t, httptest.NewRequest(http.MethodGet, "/history/"+out.HistoryID, nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"text":"Hello"`)

	resp, body = h.do(t, httptest.NewRequest(http.MethodGet, "/history/"+out.HistoryID+"/qr", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(body, []byte("\x89PNG")))
}

func TestExtract_AnnotatedByDefault(t *testing.T) {
	h := newHarness(t, nil, nil)

	resp, body := h.do(t, uploadRequest(t, "/ocr/extract", "image/png", pngBytes(t, 10, 10), nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))
	assert.Contains(t, string(body), `"kind":"annotatedText"`)
	assert.Contains(t, string(body), `"originalWord":"Amoxicillim"`)
}

func TestExtract_Rejections(t *testing.T) {
	h := newHarness(t, nil, nil)

	tests := []struct {
		name   string
		req    *http.Request
		status int
	}{
		{"too large", uploadRequest(t, "/ocr/extract", "image/jpeg", make([]byte, 5*1024*1024), nil), fiber.StatusRequestEntityTooLarge},
		{"not an image", uploadRequest(t, "/ocr/extract", "application/pdf", []byte("%PDF-1.4"), nil), fiber.StatusBadRequest},
		{"analysis is not a text flow", uploadRequest(t, "/ocr/extract", "image/png", pngBytes(t, 4, 4), map[string]string{"flow": "analysis"}), fiber.StatusBadRequest},
		{"bad crop field", uploadRequest(t, "/ocr/extract", "image/png", pngBytes(t, 4, 4), map[string]string{"width": "wide"}), fiber.StatusBadRequest},
		{"missing file", httptest.NewRequest(http.MethodPost, "/ocr/extract", nil), fiber.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := h.do(t, tt.req)
			assert.Equal(t, tt.status, resp.StatusCode, string(body))
			assert.Contains(t, string(body), `"error"`)
		})
	}

	assert.Empty(t, h.ext.images, "nothing reached the model")
	records, err := h.store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestExtractRaw_CropsFromQuery(t *testing.T) {
	h := newHarness(t, nil, nil)

	req := httptest.NewRequest(http.MethodPost,
		"/ocr/extract/raw?flow=text&x=100&y=100&width=400&height=300&scale_x=2&scale_y=2",
		bytes.NewReader(pngBytes(t, 1920, 1080)))
	req.Header.Set("Content-Type", "image/png")

	resp, body := h.do(t, req)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))

	require.Len(t, h.ext.images, 1)
	w, hgt, err := h.ext.images[0].Dimensions()
	require.NoError(t, err)
	assert.Equal(t, 800, w)
	assert.Equal(t, 600, hgt)
}

func TestAnalyze_NoHistory(t *testing.T) {
	h := newHarness(t, nil, nil)

	resp, body := h.do(t, uploadRequest(t, "/ocr/analyze", "image/png", pngBytes(t, 10, 10), nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))
	assert.Contains(t, string(body), `"kind":"analysis+suggestions"`)
	assert.NotContains(t, string(body), "history_id")

	records, err := h.store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestExtract_ServiceFailure(t *testing.T) {
	h := newHarness(t, nil, nil)
	h.ext.err = apperror.Service("text extraction failed", errors.New("upstream 503"))

	resp, body := h.do(t, uploadRequest(t, "/ocr/extract", "image/png", pngBytes(t, 10, 10), nil))
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
	assert.JSONEq(t, `{"error":"text extraction failed","kind":"service"}`, string(body))
}

func TestClarify(t *testing.T) {
	h := newHarness(t, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/ocr/clarify", strings.NewReader(
		`{"text":"Amoxicillim 500mg, amoxicillim at night","originalWord":"Amoxicillim","replacement":"Amoxicillin"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, body := h.do(t, req)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"text":"Amoxicillin 500mg, Amoxicillin at night"}`, string(body))

	req = httptest.NewRequest(http.MethodPost, "/ocr/clarify", strings.NewReader(`{"text":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, _ = h.do(t, req)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func jpegFrame(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 32, 24)), nil))
	return buf.Bytes()
}

func cameraServer(t *testing.T, status int) string {
	t.Helper()
	frame := jpegFrame(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write(frame)
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestCamera_StartCaptureRelease(t *testing.T) {
	cam := capture.NewCamera(capture.NewSnapshotDevice("desk", capture.FacingEnvironment, cameraServer(t, http.StatusOK)))
	h := newHarness(t, cam, nil)

	resp, body := h.do(t, httptest.NewRequest(http.MethodPost, "/camera/capture", nil))
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode, string(body))

	resp, body = h.do(t, httptest.NewRequest(http.MethodPost, "/camera/start", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))
	assert.Contains(t, string(body), `"device":"desk"`)

	resp, body = h.do(t, httptest.NewRequest(http.MethodGet, "/camera/status", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"active":true`)

	resp, body = h.do(t, httptest.NewRequest(http.MethodGet, "/camera/preview", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/jpeg", resp.Header.Get("Content-Type"))
	assert.NotEmpty(t, body)

	resp, body = h.do(t, httptest.NewRequest(http.MethodPost, "/camera/capture?flow=text", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))
	assert.Contains(t, string(body), `"extractedText":"Hello"`)
	assert.Equal(t, 0, cam.ActiveSessions())
	require.Len(t, h.ext.images, 1)
	assert.Equal(t, media.SourceCamera, h.ext.images[0].Source())

	resp, _ = h.do(t, httptest.NewRequest(http.MethodPost, "/camera/stop", nil))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestCamera_CaptureWhileBusyKeepsSession(t *testing.T) {
	cam := capture.NewCamera(capture.NewSnapshotDevice("desk", capture.FacingEnvironment, cameraServer(t, http.StatusOK)))
	h := newHarness(t, cam, nil)
	h.ext.gate = make(chan struct{})

	resp, body := h.do(t, httptest.NewRequest(http.MethodPost, "/camera/start", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))

	req := uploadRequest(t, "/ocr/extract", "image/png", pngBytes(t, 4, 4), nil)
	upload := make(chan int, 1)
	go func() {
		resp, err := h.app.Test(req, -1)
		if err != nil {
			upload <- 0
			return
		}
		resp.Body.Close()
		upload <- resp.StatusCode
	}()
	require.Eventually(t, h.pipeline.Busy, 2*time.Second, 10*time.Millisecond)

	resp, body = h.do(t, httptest.NewRequest(http.MethodPost, "/camera/capture?flow=text", nil))
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode, string(body))
	assert.Contains(t, string(body), `"kind":"busy"`)
	assert.Equal(t, 1, cam.ActiveSessions(), "the frame stays available for a retry")

	close(h.ext.gate)
	assert.Equal(t, fiber.StatusOK, <-upload)

	resp, body = h.do(t, httptest.NewRequest(http.MethodPost, "/camera/capture?flow=text", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, 0, cam.ActiveSessions())
}

func TestCamera_Errors(t *testing.T) {
	h := newHarness(t, nil, nil)
	resp, body := h.do(t, httptest.NewRequest(http.MethodPost, "/camera/start", nil))
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode, string(body))

	denied := capture.NewCamera(capture.NewSnapshotDevice("desk", capture.FacingEnvironment, cameraServer(t, http.StatusForbidden)))
	h = newHarness(t, denied, nil)
	resp, body = h.do(t, httptest.NewRequest(http.MethodPost, "/camera/start", nil))
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode, string(body))
	assert.Contains(t, string(body), `"kind":"permission"`)

	// uploads keep working after the camera was refused
	resp, body = h.do(t, uploadRequest(t, "/ocr/extract", "image/png", pngBytes(t, 4, 4), nil))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))
}

func TestBanner(t *testing.T) {
	h := newHarness(t, nil, nil)
	resp, body := h.do(t, httptest.NewRequest(http.MethodGet, "/api/image", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(body, []byte("\x89PNG")))

	h = newHarness(t, nil, errors.New("quota"))
	resp, body = h.do(t, httptest.NewRequest(http.MethodGet, "/api/image", nil))
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, banner.PlaceholderContentType, resp.Header.Get("Content-Type"))
	assert.Contains(t, string(body), "Error generating image")
}

func TestHistory_NotFoundAndLimit(t *testing.T) {
	h := newHarness(t, nil, nil)

	resp, _ := h.do(t, httptest.NewRequest(http.MethodGet, "/history/nope", nil))
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	for i := 0; i < 3; i++ {
		_, err := h.store.Record(context.Background(), mustImage(t), "note")
		require.NoError(t, err)
	}
	resp, body := h.do(t, httptest.NewRequest(http.MethodGet, "/history?limit=2", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var records []history.Record
	require.NoError(t, json.Unmarshal(body, &records))
	assert.Len(t, records, 2)

	resp, _ = h.do(t, httptest.NewRequest(http.MethodGet, "/history?limit=-1", nil))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	h := newHarness(t, nil, nil)
	resp, body := h.do(t, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"status":"ok"`)
	assert.Contains(t, string(body), `"busy":false`)
}

func mustImage(t *testing.T) *media.CapturedImage {
	t.Helper()
	img, err := media.Encode(pngBytes(t, 2, 2), "image/png", media.SourceFile)
	require.NoError(t, err)
	return img
}
