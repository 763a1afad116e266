package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/vedran77/moodboard/internal/domain"
	"github.com/vedran77/moodboard/internal/metrics"
	"github.com/vedran77/moodboard/internal/repository/memory"
	"github.com/vedran77/moodboard/internal/service"
	"golang.org/x/crypto/bcrypt"
)

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("db down") }

type testServer struct {
	handler http.Handler
}

func setupRouter(t *testing.T) testServer {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.New()
	accounts := memory.NewAccountStore()
	moods := memory.NewMoodStore()

	// Pin the clock mid-day so tests never straddle midnight.
	noon := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

	authSvc := service.NewAuthService(accounts, service.AuthConfig{
		JWTSecret:  "router-test-secret",
		TokenTTL:   time.Hour,
		BcryptCost: bcrypt.MinCost,
	}, log, m)
	moodSvc := service.NewMoodService(moods, time.UTC, log, m, service.WithClock(func() time.Time { return noon }))

	return testServer{
		handler: NewRouter(Deps{
			Log:         log,
			Auth:        authSvc,
			Moods:       moodSvc,
			Store:       accounts,
			Metrics:     m,
			CORSOrigins: []string{"*"},
		}),
	}
}

func (s testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	return rr
}

type authBody struct {
	Token string `json:"token"`
	User  struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"user"`
}

type errorBody struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	} `json:"error"`
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return v
}

func expectStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, rr.Code, rr.Body.String())
	}
}

func TestAnnScenario(t *testing.T) {
	s := setupRouter(t)

	rr := s.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{"name": "Ann", "email": "ann@x.com", "password": "pw123456"})
	expectStatus(t, rr, http.StatusCreated)
	signup := decode[authBody](t, rr)
	if signup.Token == "" || signup.User.Email != "ann@x.com" || signup.User.Name != "Ann" || signup.User.ID == "" {
		t.Fatalf("unexpected signup body %+v", signup)
	}
	if strings.Contains(rr.Body.String(), "password") || strings.Contains(rr.Body.String(), "$2a$") {
		t.Fatalf("signup leaked credential material: %s", rr.Body.String())
	}

	rr = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ann@x.com", "password": "wrong"})
	expectStatus(t, rr, http.StatusUnauthorized)
	if e := decode[errorBody](t, rr); e.Error.Message != "invalid credentials" {
		t.Fatalf("unexpected login error %+v", e)
	}

	rr = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ann@x.com", "password": "pw123456"})
	expectStatus(t, rr, http.StatusOK)
	login := decode[authBody](t, rr)
	if login.Token == "" || login.User.ID != signup.User.ID {
		t.Fatalf("unexpected login body %+v", login)
	}

	rr = s.do(t, http.MethodPost, "/api/mood", login.Token, map[string]any{"emojis": []string{"😴"}})
	expectStatus(t, rr, http.StatusCreated)

	rr = s.do(t, http.MethodPost, "/api/mood", login.Token, map[string]any{"emojis": []string{"🎉"}})
	expectStatus(t, rr, http.StatusConflict)
	if e := decode[errorBody](t, rr); e.Error.Code != "ENTRY_EXISTS" {
		t.Fatalf("unexpected conflict body %+v", e)
	}
}

func TestSignupErrors(t *testing.T) {
	s := setupRouter(t)

	rr := s.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{"email": "ann@x.com"})
	expectStatus(t, rr, http.StatusBadRequest)
	if e := decode[errorBody](t, rr); e.Error.Code != "VALIDATION_ERROR" || e.Error.Fields["name"] == "" || e.Error.Fields["password"] == "" {
		t.Fatalf("unexpected validation body %+v", e)
	}

	rr = s.do(t, http.MethodPost, "/api/auth/signup", "", "{not json")
	expectStatus(t, rr, http.StatusBadRequest)

	rr = s.do(t, http.MethodPost, "/api/auth/signup", "", `{"name":"A","email":"a@x.com","password":"p"} {"again":true}`)
	expectStatus(t, rr, http.StatusBadRequest)

	body := map[string]string{"name": "Ann", "email": "ann@x.com", "password": "pw123456"}
	expectStatus(t, s.do(t, http.MethodPost, "/api/auth/signup", "", body), http.StatusCreated)

	body["email"] = "ANN@x.com"
	rr = s.do(t, http.MethodPost, "/api/auth/signup", "", body)
	expectStatus(t, rr, http.StatusConflict)
	if e := decode[errorBody](t, rr); e.Error.Code != "EMAIL_TAKEN" || e.Error.Message != "email already registered" {
		t.Fatalf("unexpected conflict body %+v", e)
	}

	rr = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ann@x.com"})
	expectStatus(t, rr, http.StatusBadRequest)

	rr = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "nobody@x.com", "password": "pw123456"})
	expectStatus(t, rr, http.StatusUnauthorized)
	if e := decode[errorBody](t, rr); e.Error.Message != "invalid credentials" {
		t.Fatalf("unknown account must look like a wrong password, got %+v", e)
	}
}

func TestMoodEndpointsRequireToken(t *testing.T) {
	s := setupRouter(t)
	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/api/mood"},
		{http.MethodGet, "/api/mood/today"},
		{http.MethodGet, "/api/mood/history"},
	} {
		for _, token := range []string{"", "garbage", "a.b.c"} {
			var body any
			if tc.method == http.MethodPost {
				body = map[string]any{"emojis": []string{"😊"}}
			}
			rr := s.do(t, tc.method, tc.path, token, body)
			expectStatus(t, rr, http.StatusUnauthorized)
			if e := decode[errorBody](t, rr); e.Error.Message != "unauthenticated" {
				t.Fatalf("%s %s: unexpected body %+v", tc.method, tc.path, e)
			}
		}
	}
}

func signupToken(t *testing.T, s testServer, email string) (string, string) {
	t.Helper()
	rr := s.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{"name": "User", "email": email, "password": "pw123456"})
	expectStatus(t, rr, http.StatusCreated)
	b := decode[authBody](t, rr)
	return b.Token, b.User.ID
}

func TestTodayAndHistory(t *testing.T) {
	s := setupRouter(t)
	token, userID := signupToken(t, s, "ann@x.com")

	rr := s.do(t, http.MethodGet, "/api/mood/today", token, nil)
	expectStatus(t, rr, http.StatusOK)
	if strings.TrimSpace(rr.Body.String()) != "null" {
		t.Fatalf("expected null before submission, got %s", rr.Body.String())
	}

	rr = s.do(t, http.MethodGet, "/api/mood/history", token, nil)
	expectStatus(t, rr, http.StatusOK)
	if strings.TrimSpace(rr.Body.String()) != "[]" {
		t.Fatalf("expected empty array, got %s", rr.Body.String())
	}

	rr = s.do(t, http.MethodPost, "/api/mood", token, map[string]any{
		"emojis":  []string{"😊", "🎉"},
		"note":    "great day",
		"color":   "#FFD93D",
		"ownerId": "00000000-0000-0000-0000-000000000000",
		"user":    "someone-else",
	})
	expectStatus(t, rr, http.StatusCreated)
	created := decode[domain.MoodEntry](t, rr)
	if created.OwnerID.String() != userID {
		t.Fatalf("owner must come from the token, got %s want %s", created.OwnerID, userID)
	}
	if created.Date != "2026-10-15" {
		t.Fatalf("unexpected date %s", created.Date)
	}

	rr = s.do(t, http.MethodGet, "/api/mood/today", token, nil)
	expectStatus(t, rr, http.StatusOK)
	today := decode[domain.MoodEntry](t, rr)
	if today.ID != created.ID || strings.Join(today.Emojis, "") != "😊🎉" || *today.Note != "great day" || *today.Color != "#FFD93D" {
		t.Fatalf("today mismatch: %+v", today)
	}

	rr = s.do(t, http.MethodGet, "/api/mood/history", token, nil)
	expectStatus(t, rr, http.StatusOK)
	history := decode[[]domain.MoodEntry](t, rr)
	if len(history) != 1 || history[0].ID != created.ID {
		t.Fatalf("unexpected history %+v", history)
	}

	// another account sees nothing
	other, _ := signupToken(t, s, "bob@x.com")
	rr = s.do(t, http.MethodGet, "/api/mood/today", other, nil)
	expectStatus(t, rr, http.StatusOK)
	if strings.TrimSpace(rr.Body.String()) != "null" {
		t.Fatalf("entries leaked across accounts: %s", rr.Body.String())
	}
}

func TestSubmitValidationOverHTTP(t *testing.T) {
	s := setupRouter(t)
	token, _ := signupToken(t, s, "ann@x.com")

	rr := s.do(t, http.MethodPost, "/api/mood", token, map[string]any{"emojis": []string{}})
	expectStatus(t, rr, http.StatusBadRequest)
	if e := decode[errorBody](t, rr); e.Error.Fields["emojis"] != "at least one emoji is required" {
		t.Fatalf("unexpected body %+v", e)
	}

	rr = s.do(t, http.MethodPost, "/api/mood", token, map[string]any{"emojis": []string{"😊"}, "note": strings.Repeat("x", 201)})
	expectStatus(t, rr, http.StatusBadRequest)

	rr = s.do(t, http.MethodPost, "/api/mood", token, map[string]any{"emojis": "😊"})
	expectStatus(t, rr, http.StatusBadRequest)

	rr = s.do(t, http.MethodPost, "/api/mood", token, map[string]any{"emojis": []string{"😊"}, "note": strings.Repeat("x", 200)})
	expectStatus(t, rr, http.StatusCreated)
}

func TestConcurrentSubmissionsOverHTTP(t *testing.T) {
	s := setupRouter(t)
	token, _ := signupToken(t, s, "ann@x.com")

	const n = 20
	codes := make(chan int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			codes <- s.do(t, http.MethodPost, "/api/mood", token, map[string]any{"emojis": []string{"😊"}}).Code
		}()
	}
	wg.Wait()
	close(codes)

	counts := map[int]int{}
	for c := range codes {
		counts[c]++
	}
	if counts[http.StatusCreated] != 1 || counts[http.StatusConflict] != n-1 {
		t.Fatalf("expected 1x201 and %dx409, got %v", n-1, counts)
	}
}

func TestHealthReadyMetrics(t *testing.T) {
	s := setupRouter(t)

	rr := s.do(t, http.MethodGet, "/health", "", nil)
	expectStatus(t, rr, http.StatusOK)

	rr = s.do(t, http.MethodGet, "/ready", "", nil)
	expectStatus(t, rr, http.StatusOK)

	rr = s.do(t, http.MethodGet, "/metrics", "", nil)
	expectStatus(t, rr, http.StatusOK)
	if !strings.Contains(rr.Body.String(), "moodboard_api_http_requests_total") {
		t.Fatalf("metrics missing request counter")
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	down := NewRouter(Deps{
		Log:   log,
		Auth:  service.NewAuthService(memory.NewAccountStore(), service.AuthConfig{JWTSecret: "x", TokenTTL: time.Hour, BcryptCost: bcrypt.MinCost}, log, nil),
		Moods: service.NewMoodService(memory.NewMoodStore(), time.UTC, log, nil),
		Store: failingPinger{},
	})
	rr = httptest.NewRecorder()
	down.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ready", nil))
	expectStatus(t, rr, http.StatusServiceUnavailable)
}

func TestPreflight(t *testing.T) {
	s := setupRouter(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/mood", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	expectStatus(t, rr, http.StatusNoContent)
}
