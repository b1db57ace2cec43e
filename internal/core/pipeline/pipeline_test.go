package pipeline

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/core/capture"
	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/core/crop"
	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/core/history"
	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/core/kvstore"
	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/core/media"
	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/core/ocr"
	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/shared/apperror"
)

type fakeExtractor struct {
	mu      sync.Mutex
	calls   int
	flows   []ocr.Flow
	images  []*media.CapturedImage
	result  ocr.Result
	err     error
	block   chan struct{}
	started chan struct{}
}

func (f *fakeExtractor) Run(ctx context.Context, flow ocr.Flow, img *media.CapturedImage) (ocr.Result, error) {
	f.mu.Lock()
	f.calls++
	f.flows = append(f.flows, flow)
	f.images = append(f.images, img)
	f.mu.Unlock()

	if f.started != nil {
		close(f.started)
	}
	if f.block != nil {
		<-f.block
	}
	return f.result, f.err
}

type failingRecorder struct{}

func (failingRecorder) Record(context.Context, *media.CapturedImage, string) (*history.Record, error) {
	return nil, apperror.Persistence("failed to save history", errors.New("quota exceeded"))
}

func pngOfSize(t *testing.T, size int) *media.CapturedImage {
	t.Helper()
	raw := make([]byte, size)
	copy(raw, "\x89PNG\r\n\x1a\n")
	img, err := media.Encode(raw, "image/png", media.SourceFile)
	require.NoError(t, err)
	return img
}

func TestRun_ScenarioA_TextFlowRecordsHistory(t *testing.T) {
	ctx := context.Background()
	store := history.NewStore(kvstore.NewMemoryStore())
	ext := &fakeExtractor{result: &ocr.TextResult{ExtractedText: "Hello"}}
	p := New(ext, store)

	img := pngOfSize(t, 2*1024*1024)
	out, err := p.Run(ctx, Request{Image: img, Flow: ocr.FlowText})
	require.NoError(t, err)
	assert.Equal(t, ocr.KindText, out.Result.Kind())
	require.NotNil(t, out.Record)
	assert.NoError(t, out.HistoryErr)

	records, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Hello", records[0].Text)
	assert.Equal(t, img.DataURI(), records[0].Image)
}

func TestRun_ScenarioB_OversizedNeverReachesClient(t *testing.T) {
	ctx := context.Background()
	store := history.NewStore(kvstore.NewMemoryStore())
	ext := &fakeExtractor{result: &ocr.TextResult{ExtractedText: "unused"}}

	raw := make([]byte, 5*1024*1024)
	_, err := capture.NewAdapter(nil).FromDrop(bytes.NewReader(raw), int64(len(raw)), "image/jpeg")
	require.ErrorIs(t, err, media.ErrTooLarge)
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	assert.Zero(t, ext.calls)
	records, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestRun_AnalysisFlowSkipsHistory(t *testing.T) {
	ctx := context.Background()
	store := history.NewStore(kvstore.NewMemoryStore())
	ext := &fakeExtractor{result: &ocr.AnalysisResult{Summary: "a cat", Suggestions: []string{"cats"}}}

	out, err := New(ext, store).Run(ctx, Request{Image: pngOfSize(t, 64), Flow: ocr.FlowAnalysis})
	require.NoError(t, err)
	assert.Nil(t, out.Record)

	records, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestRun_DefaultsToAnnotatedFlow(t *testing.T) {
	ext := &fakeExtractor{result: &ocr.AnnotatedResult{ExtractedText: "x"}}
	_, err := New(ext, nil).Run(context.Background(), Request{Image: pngOfSize(t, 64)})
	require.NoError(t, err)
	assert.Equal(t, []ocr.Flow{ocr.FlowAnnotated}, ext.flows)
}

func TestRun_ServiceFailureWritesNothing(t *testing.T) {
	ctx := context.Background()
	store := history.NewStore(kvstore.NewMemoryStore())
	ext := &fakeExtractor{err: apperror.Service("text extraction failed", errors.New("timeout"))}

	_, err := New(ext, store).Run(ctx, Request{Image: pngOfSize(t, 64), Flow: ocr.FlowText})
	assert.True(t, apperror.Is(err, apperror.KindService))

	records, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestRun_HistoryFailureKeepsResult(t *testing.T) {
	ext := &fakeExtractor{result: &ocr.TextResult{ExtractedText: "Hello"}}
	out, err := New(ext, failingRecorder{}).Run(context.Background(), Request{Image: pngOfSize(t, 64), Flow: ocr.FlowText})
	require.NoError(t, err)
	assert.Equal(t, "Hello", out.Result.(*ocr.TextResult).ExtractedText)
	assert.Nil(t, out.Record)
	assert.True(t, apperror.Is(out.HistoryErr, apperror.KindPersistence))
}

func TestRun_RejectsConcurrentRun(t *testing.T) {
	ext := &fakeExtractor{
		result:  &ocr.TextResult{ExtractedText: "slow"},
		block:   make(chan struct{}),
		started: make(chan struct{}),
	}
	p := New(ext, nil)

	done := make(chan error, 1)
	go func() {
		_, err := p.Run(context.Background(), Request{Image: pngOfSize(t, 64), Flow: ocr.FlowText})
		done <- err
	}()
	<-ext.started
	assert.True(t, p.Busy())

	_, err := p.Run(context.Background(), Request{Image: pngOfSize(t, 64), Flow: ocr.FlowText})
	assert.ErrorIs(t, err, ErrBusy)
	assert.True(t, apperror.Is(err, apperror.KindBusy))

	close(ext.block)
	require.NoError(t, <-done)
	assert.False(t, p.Busy())
	assert.Equal(t, 1, ext.calls)
}

func TestRun_CropsBeforeExtraction(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 1920, 1080))))
	img, err := media.Encode(buf.Bytes(), "image/png", media.SourceFile)
	require.NoError(t, err)

	ext := &fakeExtractor{result: &ocr.TextResult{ExtractedText: "x"}}
	region := crop.Region{X: 100, Y: 100, Width: 400, Height: 300, ScaleX: 2, ScaleY: 2}
	out, err := New(ext, nil).Run(context.Background(), Request{Image: img, Crop: &region, Flow: ocr.FlowText})
	require.NoError(t, err)

	assert.Equal(t, media.SourceCropResult, out.Image.Source())
	w, h, err := ext.images[0].Dimensions()
	require.NoError(t, err)
	assert.Equal(t, 800, w)
	assert.Equal(t, 600, h)
}

func TestRun_BadCropIsValidationError(t *testing.T) {
	ext := &fakeExtractor{result: &ocr.TextResult{ExtractedText: "x"}}
	region := crop.Region{Width: 0, Height: 10}
	_, err := New(ext, nil).Run(context.Background(), Request{Image: pngOfSize(t, 64), Crop: &region})
	assert.True(t, apperror.Is(err, apperror.KindValidation))
	assert.Zero(t, ext.calls)
}
