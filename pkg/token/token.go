package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const Issuer = "moodboard"

var ErrInvalid = errors.New("invalid token")

// Identity is who a verified token speaks for.
type Identity struct {
	AccountID uuid.UUID
	Name      string
	Email     string
}

// Claims is the JWT payload. id/name/email are what the browser client decodes.
type Claims struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	jwtlib.RegisteredClaims
}

// Issue signs an HS256 token for identity valid for ttl from now.
func Issue(identity Identity, secret string, ttl time.Duration, now time.Time) (string, error) {
	if secret == "" {
		return "", errors.New("token: empty secret")
	}
	claims := Claims{
		ID:    identity.AccountID.String(),
		Name:  identity.Name,
		Email: identity.Email,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   identity.AccountID.String(),
			Issuer:    Issuer,
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(ttl)),
		},
	}
	tok := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return tok.SignedString([]byte(secret))
}

// Verify checks signature, algorithm, issuer and expiry and returns the
// identity embedded in the token. Every failure wraps ErrInvalid.
func Verify(raw, secret string) (Identity, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Identity{}, fmt.Errorf("%w: empty", ErrInvalid)
	}

	parsed, err := jwtlib.ParseWithClaims(raw, &Claims{}, func(t *jwtlib.Token) (any, error) {
		return []byte(secret), nil
	},
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Name}),
		jwtlib.WithIssuer(Issuer),
		jwtlib.WithExpirationRequired(),
	)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalid, jwtlib.ErrTokenInvalidClaims)
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: subject: %v", ErrInvalid, err)
	}

	return Identity{AccountID: id, Name: claims.Name, Email: claims.Email}, nil
}
