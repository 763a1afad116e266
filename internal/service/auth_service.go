package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/moodboard/internal/domain"
	"github.com/vedran77/moodboard/internal/metrics"
	"github.com/vedran77/moodboard/internal/repository"
	"github.com/vedran77/moodboard/pkg/token"
	"github.com/vedran77/moodboard/pkg/validator"
	"golang.org/x/crypto/bcrypt"
)

type AuthConfig struct {
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int
}

type AuthService struct {
	accounts repository.AccountRepository
	cfg      AuthConfig
	now      func() time.Time
	log      *slog.Logger
	metrics  *metrics.Metrics

	dummyOnce sync.Once
	dummyHash []byte
}

func NewAuthService(accounts repository.AccountRepository, cfg AuthConfig, log *slog.Logger, m *metrics.Metrics) *AuthService {
	if log == nil {
		log = slog.Default()
	}
	return &AuthService{
		accounts: accounts,
		cfg:      cfg,
		now:      time.Now,
		log:      log,
		metrics:  m,
	}
}

type SignupInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string            `json:"token"`
	User  domain.PublicUser `json:"user"`
}

func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*AuthResponse, error) {
	if errs := validator.ValidateSignup(input.Name, input.Email, input.Password); errs.HasErrors() {
		s.metrics.AuthAttempt("signup", metrics.OutcomeInvalid)
		return nil, errs
	}
	email := normalizeEmail(input.Email)

	// Early exit only; the unique index on lower(email) is what actually
	// rejects a concurrent duplicate below.
	existing, err := s.accounts.GetByEmail(ctx, email)
	switch {
	case err == nil && existing != nil:
		s.metrics.AuthAttempt("signup", metrics.OutcomeConflict)
		return nil, ErrEmailTaken
	case err != nil && !errors.Is(err, repository.ErrNotFound):
		s.metrics.AuthAttempt("signup", metrics.OutcomeError)
		return nil, fmt.Errorf("looking up email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.cfg.BcryptCost)
	if err != nil {
		s.metrics.AuthAttempt("signup", metrics.OutcomeError)
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	now := s.now().UTC()
	account := &domain.Account{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			s.metrics.AuthAttempt("signup", metrics.OutcomeConflict)
			return nil, ErrEmailTaken
		}
		s.metrics.AuthAttempt("signup", metrics.OutcomeError)
		return nil, fmt.Errorf("creating account: %w", err)
	}

	resp, err := s.respond(account)
	if err != nil {
		s.metrics.AuthAttempt("signup", metrics.OutcomeError)
		return nil, err
	}
	s.metrics.AuthAttempt("signup", metrics.OutcomeOK)
	s.log.Info("account registered", "account_id", account.ID)
	return resp, nil
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResponse, error) {
	if errs := validator.ValidateLogin(input.Email, input.Password); errs.HasErrors() {
		s.metrics.AuthAttempt("login", metrics.OutcomeInvalid)
		return nil, errs
	}

	account, err := s.accounts.GetByEmail(ctx, normalizeEmail(input.Email))
	if errors.Is(err, repository.ErrNotFound) {
		// Burn a comparison so unknown emails cost as much as wrong passwords.
		_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(input.Password))
		s.metrics.AuthAttempt("login", metrics.OutcomeDenied)
		return nil, ErrInvalidCreds
	}
	if err != nil {
		s.metrics.AuthAttempt("login", metrics.OutcomeError)
		return nil, fmt.Errorf("looking up account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(input.Password)); err != nil {
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			s.log.Warn("password comparison failed", "account_id", account.ID, "error", err)
		}
		s.metrics.AuthAttempt("login", metrics.OutcomeDenied)
		return nil, ErrInvalidCreds
	}

	resp, err := s.respond(account)
	if err != nil {
		s.metrics.AuthAttempt("login", metrics.OutcomeError)
		return nil, err
	}
	s.metrics.AuthAttempt("login", metrics.OutcomeOK)
	return resp, nil
}

// Verify turns a bearer token into an identity without touching storage.
func (s *AuthService) Verify(raw string) (token.Identity, error) {
	identity, err := token.Verify(raw, s.cfg.JWTSecret)
	if err != nil {
		return token.Identity{}, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	return identity, nil
}

func (s *AuthService) respond(account *domain.Account) (*AuthResponse, error) {
	tok, err := token.Issue(token.Identity{
		AccountID: account.ID,
		Name:      account.Name,
		Email:     account.Email,
	}, s.cfg.JWTSecret, s.cfg.TokenTTL, s.now())
	if err != nil {
		return nil, fmt.Errorf("generating token: %w", err)
	}
	return &AuthResponse{Token: tok, User: account.Public()}, nil
}

func (s *AuthService) dummy() []byte {
	s.dummyOnce.Do(func() {
		pw := make([]byte, 32)
		_, _ = rand.Read(pw)
		hash, err := bcrypt.GenerateFromPassword(pw, s.cfg.BcryptCost)
		if err != nil {
			s.log.Warn("generating dummy hash", "error", err)
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
