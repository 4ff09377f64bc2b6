package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"studydeck-backend/internal/handlers"
	"studydeck-backend/internal/middleware"
	"studydeck-backend/internal/websocket"
)

func New(
	jwtAuth *middleware.JWTAuth,
	authHandler *handlers.AuthHandler,
	setHandler *handlers.SetHandler,
	studyHandler *handlers.StudyHandler,
	timerHandler *handlers.TimerHandler,
	statsHandler *handlers.StatsHandler,
	wsHub *websocket.Hub,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Auth rate limiter (10 req/min per IP)
	authLimiter := middleware.NewRateLimiter(10, time.Minute)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Auth Routes (public) ────
		r.Route("/auth", func(r chi.Router) {
			r.Use(authLimiter.Middleware)
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)

			// Logout requires auth
			r.Group(func(r chi.Router) {
				r.Use(jwtAuth.Middleware)
				r.Post("/logout", authHandler.Logout)
			})
		})

		// ──── User Routes ────
		r.Route("/user", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/me", authHandler.Me)
		})

		// ──── Question Set Routes ────
		r.Route("/sets", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Post("/", setHandler.Create)
			r.Get("/", setHandler.List)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", setHandler.Get)
				r.Delete("/", setHandler.Delete)
				r.Post("/questions", setHandler.AddQuestion)
				r.Get("/questions", setHandler.ListQuestions)

				// ──── Study Session Routes ────
				r.Route("/study", func(r chi.Router) {
					r.Post("/start", studyHandler.Start)
					r.Get("/next", studyHandler.Next)
					r.Post("/answer", studyHandler.Answer)
					r.Post("/select", studyHandler.Select)
					r.Get("/progress", studyHandler.Progress)
					r.Get("/probabilities", studyHandler.Probabilities)
					r.Post("/complete", studyHandler.Complete)
					r.Post("/restart", studyHandler.Restart)
					r.Post("/reset", studyHandler.Reset)
				})

				// ──── Timer Routes ────
				r.Route("/timer", func(r chi.Router) {
					r.Get("/", timerHandler.Status)
					r.Post("/start", timerHandler.Start)
					r.Post("/pause", timerHandler.Pause)
					r.Post("/advance", timerHandler.Advance)
					r.Post("/stop", timerHandler.Stop)
					r.Put("/config", timerHandler.UpdateConfig)
				})
			})
		})

		// ──── Question Routes ────
		r.Route("/questions", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Delete("/{id}", setHandler.DeleteQuestion)
		})

		// ──── Stats Routes ────
		r.Route("/stats", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/sets/{id}", statsHandler.SetStats)
		})

		// ──── WebSocket ────
		r.Get("/ws", wsHub.HandleWebSocket)
	})

	return r
}
