package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/vedran77/moodboard/internal/domain"
)

// AccountRepository stores accounts. Create must fail with ErrDuplicate when
// the email (compared case-insensitively) is already registered.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
}

// MoodRepository stores daily mood entries. Insert is the only write path and
// must fail with ErrDuplicate when (OwnerID, Date) already has an entry.
type MoodRepository interface {
	Insert(ctx context.Context, entry *domain.MoodEntry) error
	GetByOwnerAndDate(ctx context.Context, ownerID uuid.UUID, date string) (*domain.MoodEntry, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.MoodEntry, error)
}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}
