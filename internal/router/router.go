package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"fingpt-backend/internal/config"
	"fingpt-backend/internal/handlers"
	"fingpt-backend/internal/middleware"
)

type Handlers struct {
	Chat    *handlers.ChatHandler
	Session *handlers.SessionHandler
	Context *handlers.ContextHandler
	Speech  *handlers.SpeechHandler
}

func New(cfg *config.Config, h Handlers) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(cfg.FrontendURL))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/sessions", h.Session.Create)
		r.Get("/sessions/{id}/messages", h.Session.Messages)
		r.Post("/sessions/{id}/reset", h.Session.Reset)
		r.Get("/sessions/{id}/transcript", h.Session.Transcript)
		r.Post("/sessions/{id}/speak", h.Speech.Speak)

		r.Post("/context/files", h.Context.Upload)
		r.Get("/context/files", h.Context.List)

		r.Post("/speech/transcribe", h.Speech.Transcribe)

		// Chat turns hit the hosted model, so they get their own limiter.
		r.Group(func(r chi.Router) {
			limiter := middleware.NewRateLimiter(cfg.ChatRequestsPerMin, time.Minute)
			r.Use(limiter.Middleware)
			r.Post("/chat", h.Chat.Ask)
		})
	})

	return r
}
