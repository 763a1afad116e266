// Package memory holds in-process repositories used for local development and
// tests. They enforce the same unique keys as the PostgreSQL schema.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/moodboard/internal/domain"
	"github.com/vedran77/moodboard/internal/repository"
)

var (
	_ repository.AccountRepository = (*AccountStore)(nil)
	_ repository.MoodRepository    = (*MoodStore)(nil)
)

type AccountStore struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]domain.Account
	byEmail map[string]uuid.UUID
}

func NewAccountStore() *AccountStore {
	return &AccountStore{
		byID:    make(map[uuid.UUID]domain.Account),
		byEmail: make(map[string]uuid.UUID),
	}
}

func (s *AccountStore) Create(_ context.Context, account *domain.Account) error {
	key := emailKey(account.Email)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byEmail[key]; taken {
		return repository.ErrDuplicate
	}
	if _, taken := s.byID[account.ID]; taken {
		return repository.ErrDuplicate
	}
	s.byID[account.ID] = *account
	s.byEmail[key] = account.ID
	return nil
}

func (s *AccountStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (s *AccountStore) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[emailKey(email)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	a := s.byID[id]
	return &a, nil
}

func (s *AccountStore) Ping(context.Context) error { return nil }

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type slotKey struct {
	owner uuid.UUID
	date  string
}

type MoodStore struct {
	mu      sync.RWMutex
	now     func() time.Time
	entries map[slotKey]domain.MoodEntry
	byOwner map[uuid.UUID][]slotKey
}

func NewMoodStore() *MoodStore {
	return &MoodStore{
		now:     time.Now,
		entries: make(map[slotKey]domain.MoodEntry),
		byOwner: make(map[uuid.UUID][]slotKey),
	}
}

// Insert fills the (owner, date) slot or fails with repository.ErrDuplicate.
// The check and the write happen under one lock.
func (s *MoodStore) Insert(_ context.Context, entry *domain.MoodEntry) error {
	key := slotKey{owner: entry.OwnerID, date: entry.Date}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, filled := s.entries[key]; filled {
		return repository.ErrDuplicate
	}

	now := s.now().UTC()
	entry.CreatedAt = now
	entry.UpdatedAt = now

	s.entries[key] = entry.Clone()
	s.byOwner[entry.OwnerID] = append(s.byOwner[entry.OwnerID], key)
	return nil
}

func (s *MoodStore) GetByOwnerAndDate(_ context.Context, ownerID uuid.UUID, date string) (*domain.MoodEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[slotKey{owner: ownerID, date: date}]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := e.Clone()
	return &out, nil
}

func (s *MoodStore) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]domain.MoodEntry, error) {
	s.mu.RLock()
	keys := s.byOwner[ownerID]
	out := make([]domain.MoodEntry, 0, len(keys))
	for _, k := range keys {
		out = append(out, s.entries[k].Clone())
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MoodStore) Ping(context.Context) error { return nil }
