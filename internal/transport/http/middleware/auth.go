package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/vedran77/moodboard/pkg/token"
)

type contextKey string

const identityKey contextKey = "identity"

// TokenVerifier turns a raw bearer token into an identity.
type TokenVerifier interface {
	Verify(raw string) (token.Identity, error)
}

// Auth rejects the request with 401 unless it carries a valid bearer token.
// On success the token's identity is the only owner the handlers see.
func Auth(verifier TokenVerifier, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				unauthenticated(w)
				return
			}

			identity, err := verifier.Verify(raw)
			if err != nil {
				log.Debug("token rejected", "path", r.URL.Path, "error", err)
				unauthenticated(w)
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetIdentity extracts the authenticated identity from request context.
func GetIdentity(ctx context.Context) (token.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(token.Identity)
	return identity, ok
}

// GetUserID extracts the authenticated account ID, or uuid.Nil outside Auth.
func GetUserID(ctx context.Context) uuid.UUID {
	identity, _ := GetIdentity(ctx)
	return identity.AccountID
}

// WithIdentity is for handlers exercised without the Auth middleware.
func WithIdentity(ctx context.Context, identity token.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

func unauthenticated(w http.ResponseWriter) {
	writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "unauthenticated")
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
}
