package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vedran77/moodboard/internal/domain"
	"github.com/vedran77/moodboard/internal/repository"
)

type AccountRepo struct {
	pool *pgxpool.Pool
}

var _ repository.AccountRepository = (*AccountRepo)(nil)

func NewAccountRepo(pool *pgxpool.Pool) *AccountRepo {
	return &AccountRepo{pool: pool}
}

// Create relies on the unique index over lower(email) to reject duplicates.
func (r *AccountRepo) Create(ctx context.Context, account *domain.Account) error {
	query := `
		INSERT INTO accounts (id, name, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.pool.Exec(ctx, query,
		account.ID, account.Name, account.Email,
		account.PasswordHash, account.CreatedAt, account.UpdatedAt,
	)
	return translate(err)
}

func (r *AccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	return r.scanAccount(ctx, "SELECT id, name, email, password_hash, created_at, updated_at FROM accounts WHERE id = $1", id)
}

func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.scanAccount(ctx, "SELECT id, name, email, password_hash, created_at, updated_at FROM accounts WHERE lower(email) = lower($1)", email)
}

func (r *AccountRepo) scanAccount(ctx context.Context, query string, arg any) (*domain.Account, error) {
	var a domain.Account
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}
