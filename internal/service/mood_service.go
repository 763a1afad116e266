package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/moodboard/internal/domain"
	"github.com/vedran77/moodboard/internal/metrics"
	"github.com/vedran77/moodboard/internal/repository"
	"github.com/vedran77/moodboard/pkg/validator"
)

// TodayCache holds the current day's entry per owner. Implementations return
// (nil, nil) on a miss.
type TodayCache interface {
	Get(ctx context.Context, ownerID uuid.UUID, date string) (*domain.MoodEntry, error)
	Set(ctx context.Context, entry *domain.MoodEntry) error
}

type MoodService struct {
	moods   repository.MoodRepository
	cache   TodayCache
	loc     *time.Location
	now     func() time.Time
	log     *slog.Logger
	metrics *metrics.Metrics
}

type MoodOption func(*MoodService)

// WithTodayCache enables a read-side cache for GetToday.
func WithTodayCache(c TodayCache) MoodOption {
	return func(s *MoodService) { s.cache = c }
}

func WithClock(now func() time.Time) MoodOption {
	return func(s *MoodService) { s.now = now }
}

// NewMoodService computes "today" in loc; a nil loc means UTC.
func NewMoodService(moods repository.MoodRepository, loc *time.Location, log *slog.Logger, m *metrics.Metrics, opts ...MoodOption) *MoodService {
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = slog.Default()
	}
	s := &MoodService{
		moods:   moods,
		loc:     loc,
		now:     time.Now,
		log:     log,
		metrics: m,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type SubmitMoodInput struct {
	Emojis   []string `json:"emojis"`
	ImageURL *string  `json:"imageUrl"`
	Color    *string  `json:"color"`
	Note     *string  `json:"note"`
}

// Submit fills today's slot for ownerID. A second submission for the same day
// fails with ErrEntryExists, decided by the repository's unique key.
func (s *MoodService) Submit(ctx context.Context, ownerID uuid.UUID, input SubmitMoodInput) (*domain.MoodEntry, error) {
	if errs := validator.ValidateMood(input.Emojis, input.Note, domain.MaxNoteLength); errs.HasErrors() {
		s.metrics.MoodSubmission(metrics.OutcomeInvalid)
		return nil, errs
	}

	entry := &domain.MoodEntry{
		ID:       uuid.New(),
		OwnerID:  ownerID,
		Date:     s.Today(),
		Emojis:   cleanEmojis(input.Emojis),
		ImageURL: optional(input.ImageURL),
		Color:    optional(input.Color),
		Note:     optional(input.Note),
	}

	if err := s.moods.Insert(ctx, entry); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			s.metrics.MoodSubmission(metrics.OutcomeConflict)
			return nil, ErrEntryExists
		}
		s.metrics.MoodSubmission(metrics.OutcomeError)
		return nil, fmt.Errorf("inserting mood entry: %w", err)
	}
	s.metrics.MoodSubmission(metrics.OutcomeOK)

	s.remember(ctx, entry)
	return entry, nil
}

// GetToday returns nil without error when nothing was submitted today.
func (s *MoodService) GetToday(ctx context.Context, ownerID uuid.UUID) (*domain.MoodEntry, error) {
	date := s.Today()

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, ownerID, date)
		switch {
		case err != nil:
			s.metrics.CacheLookup(metrics.OutcomeCacheError)
			s.log.Warn("today cache lookup failed", "owner_id", ownerID, "error", err)
		case cached != nil:
			s.metrics.CacheLookup(metrics.OutcomeCacheHit)
			return cached, nil
		default:
			s.metrics.CacheLookup(metrics.OutcomeCacheMiss)
		}
	}

	entry, err := s.moods.GetByOwnerAndDate(ctx, ownerID, date)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading today's entry: %w", err)
	}

	s.remember(ctx, entry)
	return entry, nil
}

// GetHistory lists every entry of ownerID, newest day first.
func (s *MoodService) GetHistory(ctx context.Context, ownerID uuid.UUID) ([]domain.MoodEntry, error) {
	entries, err := s.moods.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}
	if entries == nil {
		entries = []domain.MoodEntry{}
	}
	return entries, nil
}

// Today is the civil date in the service's timezone.
func (s *MoodService) Today() string {
	return s.now().In(s.loc).Format(domain.DateLayout)
}

func (s *MoodService) remember(ctx context.Context, entry *domain.MoodEntry) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, entry); err != nil {
		s.log.Warn("caching today's entry failed", "owner_id", entry.OwnerID, "error", err)
	}
}

func cleanEmojis(in []string) []string {
	out := make([]string, 0, len(in))
	for _, e := range in {
		if e = strings.TrimSpace(e); e != "" {
			out = append(out, e)
		}
	}
	return out
}

func optional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
