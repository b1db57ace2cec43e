package banner

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/core/media"
)

type countingGenerator struct {
	calls atomic.Int32
	fail  atomic.Bool
}

func (g *countingGenerator) GenerateBanner(context.Context, string) (*media.CapturedImage, error) {
	n := g.calls.Add(1)
	if g.fail.Load() {
		return nil, errors.New("quota")
	}
	// a distinct payload per call so refreshes are observable
	return media.Encode([]byte{0x89, 'P', 'N', 'G', byte(n)}, "image/png", media.SourceGenerated)
}

func TestService_CachesFirstBanner(t *testing.T) {
	gen := &countingGenerator{}
	svc := NewService(gen, "")

	first, err := svc.Current(context.Background())
	require.NoError(t, err)
	second, err := svc.Current(context.Background())
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int32(1), gen.calls.Load())
	assert.False(t, svc.GeneratedAt().IsZero())
}

func TestService_RefreshKeepsOldBannerOnFailure(t *testing.T) {
	gen := &countingGenerator{}
	svc := NewService(gen, "")

	first, err := svc.Current(context.Background())
	require.NoError(t, err)

	gen.fail.Store(true)
	assert.Error(t, svc.Refresh(context.Background()))
	still, err := svc.Current(context.Background())
	require.NoError(t, err)
	assert.Same(t, first, still)

	gen.fail.Store(false)
	require.NoError(t, svc.Refresh(context.Background()))
	fresh, err := svc.Current(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, first.Bytes(), fresh.Bytes())
}

func TestService_FailureWithoutCache(t *testing.T) {
	gen := &countingGenerator{}
	gen.fail.Store(true)
	_, err := NewService(gen, "").Current(context.Background())
	assert.Error(t, err)
}

func TestScheduler_RefreshesOnSchedule(t *testing.T) {
	gen := &countingGenerator{}
	svc := NewService(gen, "")

	s := NewScheduler()
	require.NoError(t, s.ScheduleRefresh(svc, "@every 1s", time.Second))
	assert.Len(t, s.cron.Entries(), 1)

	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool { return gen.calls.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)
	_, err := svc.Current(context.Background())
	require.NoError(t, err)
}

func TestScheduler_RescheduleReplaces(t *testing.T) {
	svc := NewService(&countingGenerator{}, "")
	s := NewScheduler()

	assert.Error(t, s.ScheduleRefresh(svc, "not a cron", time.Second))
	assert.Empty(t, s.cron.Entries())

	require.NoError(t, s.ScheduleRefresh(svc, "0 0 * * * *", time.Second))
	require.NoError(t, s.ScheduleRefresh(svc, "0 30 * * * *", time.Second))
	assert.Len(t, s.cron.Entries(), 1)

	// a bad expression keeps the schedule already in place
	assert.Error(t, s.ScheduleRefresh(svc, "nope", time.Second))
	assert.Len(t, s.cron.Entries(), 1)
}
