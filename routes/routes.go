package routes

import (
	"net/http"
	"time"

	"github.com/Dosada05/tournament-draws/docs"
	"github.com/Dosada05/tournament-draws/handlers"
	"github.com/Dosada05/tournament-draws/middleware"
	"github.com/Dosada05/tournament-draws/services"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	JWTSecret      string
	AllowedOrigins []string
}

func SetupRoutes(
	router chi.Router,
	opts Options,
	authHandler *handlers.AuthHandler,
	drawHandler *handlers.DrawHandler,
	participantHandler *handlers.ParticipantHandler,
	webSocketHandler *handlers.WebSocketHandler,
	healthHandler *handlers.HealthHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", healthHandler.Healthz)
	router.Get("/swagger/doc.json", docs.Handler)
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// The websocket route sits outside the timeout middleware.
	router.Get("/ws/draws/{drawID}", webSocketHandler.ServeWs)

	authenticate := middleware.Authenticate(opts.JWTSecret)
	organizerOnly := middleware.Authorize(services.RoleOrganizer)

	router.Group(func(r chi.Router) {
		r.Use(chiMiddleware.Timeout(60 * time.Second))

		r.Post("/auth/login", authHandler.Login)

		r.Route("/draws", func(r chi.Router) {
			r.With(authenticate, organizerOnly).Post("/", drawHandler.CreateDraw)

			r.Route("/{drawID}", func(r chi.Router) {
				r.Get("/", drawHandler.GetDraw)

				r.Get("/participants", participantHandler.ListParticipants)
				r.With(authenticate, organizerOnly).Post("/participants", participantHandler.CreateParticipant)

				r.Route("/structures/{structureID}", func(r chi.Router) {
					r.Post("/conflicts", drawHandler.GetConflicts)
					r.Post("/swaps", drawHandler.GetSwapOptions)

					r.Group(func(r chi.Router) {
						r.Use(authenticate, organizerOnly)

						r.Post("/positions/automated", drawHandler.AutomatePositions)
						r.Put("/positions/{drawPosition}", drawHandler.AssignPosition)
						r.Delete("/positions/{drawPosition}", drawHandler.ClearPosition)
						r.Post("/swaps/apply", drawHandler.ApplySwap)
					})
				})
			})
		})
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"the requested resource could not be found","code":"NOT_FOUND"}` + "\n"))
	})
}
