package routes

import (
	"embed"
	"net/http"
	"time"

	"github.com/Dosada05/prediction-league/handlers"
	"github.com/Dosada05/prediction-league/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

//go:embed docs/swagger.json
var swaggerDoc embed.FS

type Handlers struct {
	Auth        *handlers.AuthHandler
	Stage       *handlers.StageHandler
	Team        *handlers.TeamHandler
	Match       *handlers.MatchHandler
	Bet         *handlers.BetHandler
	Leaderboard *handlers.LeaderboardHandler
	WebSocket   *handlers.WebSocketHandler
	Health      *handlers.HealthHandler
}

type Options struct {
	JWTSecret      string
	AllowedOrigins []string
	// Metrics отдаётся на /metrics, если задан.
	Metrics http.Handler
}

func SetupRoutes(router chi.Router, h Handlers, opts Options) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate([]byte(opts.JWTSecret))

	router.Get("/health", h.Health.Health)
	if opts.Metrics != nil {
		router.Handle("/metrics", opts.Metrics)
	}
	router.Get("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		http.ServeFileFS(w, r, swaggerDoc, "docs/swagger.json")
	})
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// WebSocket живёт без таймаута.
	router.Get("/ws/stages/{stageID}", h.WebSocket.ServeStage)

	router.Group(func(r chi.Router) {
		r.Use(chiMiddleware.Timeout(30 * time.Second))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.Auth.Login)

			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				r.Get("/me", h.Auth.GetMe)
				r.Put("/me", h.Auth.UpdateMe)
			})

			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				r.Use(middleware.RequireSuperuser)
				r.Post("/register", h.Auth.Register)
			})
		})

		r.Route("/stages", func(r chi.Router) {
			r.Get("/", h.Stage.ListStages)
			r.Get("/classification", h.Stage.Classification)
			r.Get("/{stageID}", h.Stage.GetStage)
			r.Get("/{stageID}/matches", h.Stage.ListStageMatches)

			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				r.Get("/{stageID}/bets", h.Stage.ListStageBets)
			})

			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				r.Use(middleware.RequireSuperuser)
				r.Post("/", h.Stage.CreateStage)
				r.Put("/{stageID}", h.Stage.UpdateStage)
				r.Delete("/{stageID}", h.Stage.DeleteStage)
			})
		})

		r.Route("/teams", func(r chi.Router) {
			r.Get("/", h.Team.ListTeams)
			r.Get("/{teamID}", h.Team.GetTeam)

			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				r.Use(middleware.RequireSuperuser)
				r.Post("/", h.Team.CreateTeam)
				r.Post("/{teamID}/logo", h.Team.UploadLogo)
			})
		})

		r.Route("/matches", func(r chi.Router) {
			r.Get("/", h.Match.ListMatches)
			r.Get("/{matchID}", h.Match.GetMatch)

			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				r.Use(middleware.RequireSuperuser)
				r.Post("/", h.Match.CreateMatch)
				r.Put("/{matchID}/score", h.Match.RecordScore)
			})
		})

		r.Route("/bets", func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/", h.Bet.PlaceBet)
			r.Get("/user/{userID}", h.Bet.ListUserBets)
			r.Get("/{betID}", h.Bet.GetBet)
			r.Patch("/{betID}", h.Bet.UpdateBet)
		})

		r.Get("/leaderboard", h.Leaderboard.GetLeaderboard)
	})
}
