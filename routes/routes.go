package routes

import (
	"time"

	_ "github.com/Dosada05/calcutta-bracket/docs"
	"github.com/Dosada05/calcutta-bracket/handlers"
	"github.com/Dosada05/calcutta-bracket/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

const requestTimeout = 30 * time.Second

type Handlers struct {
	Tournament *handlers.TournamentHandler
	Team       *handlers.TeamHandler
	Bracket    *handlers.BracketHandler
	WebSocket  *handlers.WebSocketHandler
	Health     *handlers.HealthHandler
}

func SetupRoutes(router chi.Router, h Handlers, auth *middleware.Authenticator, allowedOrigins []string) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/healthz", h.Health.Health)
	router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// Long-lived connections stay outside the request timeout.
	router.Get("/ws/tournaments/{tournamentID}", h.WebSocket.ServeWs)

	router.Group(func(r chi.Router) {
		r.Use(chiMiddleware.Timeout(requestTimeout))

		r.Route("/tournaments", func(r chi.Router) {
			r.Get("/", h.Tournament.ListTournaments)
			r.With(auth.Authenticate, middleware.Authorize(middleware.RoleAdmin)).Post("/", h.Tournament.CreateTournament)

			r.Route("/{tournamentID}", func(r chi.Router) {
				r.Get("/", h.Tournament.GetTournamentByID)
				r.Get("/teams", h.Team.ListTeams)
				r.Get("/bracket", h.Bracket.GetBracket)
				r.Get("/bracket/validation", h.Bracket.ValidateBracket)

				r.Group(func(r chi.Router) {
					r.Use(auth.Authenticate)
					r.Use(middleware.Authorize(middleware.RoleAdmin))

					r.Put("/", h.Tournament.UpdateTournament)
					r.Put("/teams", h.Team.ReplaceTeams)
					r.Post("/bracket", h.Bracket.GenerateBracket)
					r.Post("/bracket/games/{gameID}/winner", h.Bracket.SelectWinner)
					r.Delete("/bracket/games/{gameID}/winner", h.Bracket.UnselectWinner)
				})
			})
		})
	})
}
