package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vedran77/moodboard/internal/domain"
	"github.com/vedran77/moodboard/internal/repository"
)

type MoodRepo struct {
	pool *pgxpool.Pool
}

var _ repository.MoodRepository = (*MoodRepo)(nil)

func NewMoodRepo(pool *pgxpool.Pool) *MoodRepo {
	return &MoodRepo{pool: pool}
}

const moodColumns = `id, owner_id, entry_date, emojis, image_url, color, note, created_at, updated_at`

// Insert is a plain INSERT; the (owner_id, entry_date) unique constraint
// decides which of two concurrent submissions wins.
func (r *MoodRepo) Insert(ctx context.Context, entry *domain.MoodEntry) error {
	date, err := time.Parse(domain.DateLayout, entry.Date)
	if err != nil {
		return fmt.Errorf("parsing entry date: %w", err)
	}

	query := `
		INSERT INTO mood_entries (id, owner_id, entry_date, emojis, image_url, color, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	err = r.pool.QueryRow(ctx, query,
		entry.ID, entry.OwnerID, date, entry.Emojis,
		entry.ImageURL, entry.Color, entry.Note,
	).Scan(&entry.CreatedAt, &entry.UpdatedAt)
	return translate(err)
}

func (r *MoodRepo) GetByOwnerAndDate(ctx context.Context, ownerID uuid.UUID, date string) (*domain.MoodEntry, error) {
	day, err := time.Parse(domain.DateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("parsing entry date: %w", err)
	}

	query := `SELECT ` + moodColumns + ` FROM mood_entries WHERE owner_id = $1 AND entry_date = $2`
	entry, err := scanMood(r.pool.QueryRow(ctx, query, ownerID, day))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *MoodRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.MoodEntry, error) {
	query := `
		SELECT ` + moodColumns + `
		FROM mood_entries
		WHERE owner_id = $1
		ORDER BY entry_date DESC, created_at DESC`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []domain.MoodEntry{}
	for rows.Next() {
		entry, err := scanMood(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	return entries, rows.Err()
}

func scanMood(row pgx.Row) (*domain.MoodEntry, error) {
	var (
		e    domain.MoodEntry
		date time.Time
	)
	if err := row.Scan(
		&e.ID, &e.OwnerID, &date, &e.Emojis,
		&e.ImageURL, &e.Color, &e.Note,
		&e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		return nil, err
	}
	e.Date = date.Format(domain.DateLayout)
	return &e, nil
}
