// Package history is an append-and-cap log of successful transcriptions kept
// as a single JSON document in a kvstore.
package history

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/core/kvstore"
	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/core/media"
	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/shared/apperror"
)

const (
	DefaultKey   = "transcriptionHistory"
	DefaultLimit = 50
)

var ErrNotFound = errors.New("history record not found")

// Record is immutable once written
type Record struct {
	ID        string    `json:"id"`
	Image     string    `json:"image"` // data URI
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Store assumes one logical writer per process; the mutex serialises the
// read-modify-write of Record. Separate processes sharing a backend are
// last-writer-wins.
type Store struct {
	kv    kvstore.Store
	key   string
	limit int
	now   func() time.Time

	mu sync.Mutex
}

type Option func(*Store)

func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// WithLimit lowers the retained record count; it never exceeds DefaultLimit
func WithLimit(limit int) Option {
	return func(s *Store) {
		if limit > 0 && limit <= DefaultLimit {
			s.limit = limit
		}
	}
}

func withClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func NewStore(kv kvstore.Store, opts ...Option) *Store {
	s := &Store{
		kv:    kv,
		key:   DefaultKey,
		limit: DefaultLimit,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Record prepends a new entry, drops the oldest beyond the limit and persists
// the whole list.
func (s *Store) Record(ctx context.Context, img *media.CapturedImage, text string) (*Record, error) {
	if img == nil {
		return nil, media.ErrEmpty
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, apperror.Persistence("failed to allocate history id", err)
	}
	rec := Record{
		ID:        id.String(),
		Image:     img.DataURI(),
		Text:      text,
		Timestamp: s.now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.read(ctx)
	if err != nil {
		return nil, err
	}

	records = append([]Record{rec}, records...)
	if len(records) > s.limit {
		records = records[:s.limit]
	}

	payload, err := json.Marshal(records)
	if err != nil {
		return nil, apperror.Persistence("failed to encode history", err)
	}
	if err := s.kv.Set(ctx, s.key, payload); err != nil {
		return nil, apperror.Persistence("failed to save history", err)
	}

	log.Info().Str("id", rec.ID).Int("records", len(records)).Msg("💾 History recorded")
	return &rec, nil
}

// Load returns every record, newest first. Absent or unparsable data is an
// empty history.
func (s *Store) Load(ctx context.Context) ([]Record, error) {
	records, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(records, func(a, b Record) int {
		return cmp.Compare(b.Timestamp.UnixNano(), a.Timestamp.UnixNano())
	})
	return records, nil
}

// Get finds one record by id
func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	records, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].ID == id {
			return &records[i], nil
		}
	}
	return nil, ErrNotFound
}

func (s *Store) read(ctx context.Context) ([]Record, error) {
	raw, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, kvstore.ErrNotFound) {
		return []Record{}, nil
	}
	if err != nil {
		return nil, apperror.Persistence("history storage unavailable", err)
	}

	var records []Record
	if err := json.Unmarshal(raw, &records); err != nil {
		log.Warn().Err(err).Str("key", s.key).Msg("⚠️ Stored history is unreadable, starting empty")
		return []Record{}, nil
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}
