package httpx

import (
	"log/slog"
	"net/http"

	"github.com/vedran77/moodboard/internal/metrics"
	"github.com/vedran77/moodboard/internal/repository"
	"github.com/vedran77/moodboard/internal/service"
	"github.com/vedran77/moodboard/internal/transport/http/handlers"
	"github.com/vedran77/moodboard/internal/transport/http/middleware"
)

type Deps struct {
	Log         *slog.Logger
	Auth        *service.AuthService
	Moods       *service.MoodService
	Store       repository.Pinger
	Metrics     *metrics.Metrics
	CORSOrigins []string
}

func NewRouter(d Deps) http.Handler {
	authHandler := handlers.NewAuthHandler(d.Auth, d.Log)
	moodHandler := handlers.NewMoodHandler(d.Moods, d.Log)
	healthHandler := handlers.NewHealthHandler(d.Store, d.Log)

	auth := middleware.Auth(d.Auth, d.Log)

	mux := http.NewServeMux()

	// Public
	mux.HandleFunc("GET /health", healthHandler.Live)
	mux.HandleFunc("GET /ready", healthHandler.Ready)
	if d.Metrics != nil {
		mux.Handle("GET /metrics", d.Metrics.Handler())
	}
	mux.HandleFunc("POST /api/auth/signup", authHandler.Signup)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Protected - Mood
	mux.Handle("POST /api/mood", auth(http.HandlerFunc(moodHandler.Submit)))
	mux.Handle("GET /api/mood/today", auth(http.HandlerFunc(moodHandler.Today)))
	mux.Handle("GET /api/mood/history", auth(http.HandlerFunc(moodHandler.History)))

	var observer middleware.RequestObserver
	if d.Metrics != nil {
		observer = d.Metrics
	}

	var h http.Handler = mux
	h = middleware.CORS(d.CORSOrigins)(h)
	h = middleware.AccessLog(d.Log, observer)(h)
	h = middleware.Recover(d.Log)(h)
	return h
}
