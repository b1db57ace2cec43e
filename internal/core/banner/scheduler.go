package banner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Scheduler refreshes the banner on a cron schedule. Expressions carry a
// seconds field ("0 0 */6 * * *") or use descriptors ("@every 6h").
type Scheduler struct {
	cron      *cron.Cron
	refresh   cron.EntryID
	scheduled bool
	mu        sync.Mutex
}

func NewScheduler() *Scheduler {
	return &Scheduler{cron: cron.New(cron.WithSeconds())}
}

func (s *Scheduler) Start() {
	log.Info().Msg("⏰ Starting scheduler...")
	s.cron.Start()
}

// Stop waits for a running refresh to finish
func (s *Scheduler) Stop() {
	log.Info().Msg("⏰ Stopping scheduler...")
	<-s.cron.Stop().Done()
	log.Info().Msg("✅ Scheduler stopped")
}

// ScheduleRefresh regenerates the banner on schedule, each attempt bounded by
// timeout. Calling it again replaces the previous schedule.
func (s *Scheduler) ScheduleRefresh(svc *Service, schedule string, timeout time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entryID, err := s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := svc.Refresh(ctx); err != nil {
			log.Warn().Err(err).Msg("⚠️ Scheduled banner refresh failed, keeping previous banner")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	if s.scheduled {
		s.cron.Remove(s.refresh)
	}
	s.refresh, s.scheduled = entryID, true
	log.Info().Str("schedule", schedule).Msg("✅ Banner refresh scheduled")
	return nil
}
