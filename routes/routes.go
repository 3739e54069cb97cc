package routes

import (
	"net/http"
	"time"

	_ "github.com/Dosada05/pickleball-tournament/docs"
	"github.com/Dosada05/pickleball-tournament/handlers"
	"github.com/Dosada05/pickleball-tournament/middleware"
	"github.com/Dosada05/pickleball-tournament/models"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	JWTSecret      string
	AllowedOrigins []string
	// Roles - сохраненная роль; изменения разрешены только пока она admin.
	Roles middleware.RoleSource
}

func SetupRoutes(
	router chi.Router,
	opts Options,
	tournamentHandler *handlers.TournamentHandler,
	authHandler *handlers.AuthHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	requireAdmin := func(r chi.Router) {
		r.Use(middleware.Authenticate(opts.JWTSecret))
		r.Use(middleware.RequireRole(models.RoleAdmin))
		if opts.Roles != nil {
			r.Use(middleware.RequireActiveRole(opts.Roles, models.RoleAdmin))
		}
	}

	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	router.Get("/ws/tournament", webSocketHandler.ServeWs)

	router.Route("/api", func(r chi.Router) {
		r.Use(chiMiddleware.Timeout(30 * time.Second))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.Login)
			r.Get("/role", authHandler.Role)
			r.With(middleware.Authenticate(opts.JWTSecret), middleware.RequireRole(models.RoleAdmin)).
				Post("/logout", authHandler.Logout)
		})

		r.Get("/tournament", tournamentHandler.GetTournament)
		r.Get("/teams", tournamentHandler.ListTeams)
		r.Get("/matches", tournamentHandler.ListMatches)
		r.Get("/ranking", tournamentHandler.Ranking)

		// Изменения турнира доступны только администратору
		r.Group(func(r chi.Router) {
			requireAdmin(r)

			r.Post("/teams", tournamentHandler.AddTeam)
			r.Patch("/teams/{teamID}", tournamentHandler.RenameTeam)
			r.Delete("/teams/{teamID}", tournamentHandler.RemoveTeam)

			r.Post("/matches/generate", tournamentHandler.GenerateMatches)
			r.Put("/matches/{matchID}/score", tournamentHandler.UpdateScore)
			r.Delete("/matches/{matchID}/score", tournamentHandler.ClearScore)

			r.Post("/tournament/recalculate", tournamentHandler.Recalculate)
			r.Post("/tournament/reset", tournamentHandler.Reset)
		})
	})

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}
