package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/hooplink/hooplink-api/handlers"
	"github.com/hooplink/hooplink-api/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/hooplink/hooplink-api/docs"
)

type Options struct {
	JWTSecret      string
	AllowedOrigins []string
}

func SetupRoutes(
	router chi.Router,
	opts Options,
	healthHandler *handlers.HealthHandler,
	gameHandler *handlers.GameHandler,
	bracketHandler *handlers.BracketHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate(opts.JWTSecret)

	router.Get("/health", healthHandler.Check)
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// The feed is long-lived, so it stays outside the request timeout.
	router.Get("/ws/games/{gameID}", webSocketHandler.ServeWs)

	router.Group(func(r chi.Router) {
		r.Use(chiMiddleware.Timeout(15 * time.Second))

		r.Route("/games", func(r chi.Router) {
			r.Get("/", gameHandler.List)
			r.With(authenticate).Post("/", gameHandler.Create)

			r.Route("/{gameID}", func(r chi.Router) {
				r.Get("/", gameHandler.GetByID)
				r.Get("/bracket", bracketHandler.Get)

				r.Group(func(r chi.Router) {
					r.Use(authenticate)

					r.Patch("/", gameHandler.Update)
					r.Put("/tournament-config", gameHandler.UpdateTournamentConfig)
					r.Post("/cancel", gameHandler.Cancel)
					r.Post("/privacy", gameHandler.TogglePrivacy)
					r.Post("/host", gameHandler.TransferHost)
					r.Post("/join", gameHandler.Join)
					r.Post("/leave", gameHandler.Leave)
					r.Delete("/participants/{userID}", gameHandler.RemovePlayer)

					r.Post("/bracket", bracketHandler.Generate)
					r.Put("/bracket/matches/{matchID}", bracketHandler.RecordResult)
					r.Post("/bracket/matches/{matchID}/correction", bracketHandler.CorrectResult)
				})
			})
		})
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"the requested resource could not be found"}` + "\n"))
	})
}
