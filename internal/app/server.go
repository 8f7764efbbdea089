package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/mclarke-dev/docuchat/internal/api/handlers"
	appMiddleware "github.com/mclarke-dev/docuchat/internal/api/middlewares"
	"github.com/mclarke-dev/docuchat/internal/config"
	"github.com/mclarke-dev/docuchat/internal/core/identity"
	"github.com/mclarke-dev/docuchat/internal/services"
	"github.com/mclarke-dev/docuchat/internal/session"
	"github.com/mclarke-dev/docuchat/internal/state"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
	logger     zerolog.Logger
}

// NewServer builds and wires all routes.
func NewServer(cfg *config.Config, logger zerolog.Logger, idClient *identity.Client, mgr *session.Manager, registry *state.Registry,
	docSvc *services.DocumentService, chatSvc *services.ChatService, profileSvc *services.ProfileService) *Server {

	authHandler := handlers.NewAuthHandler(idClient, mgr, registry)
	pageHandler := handlers.NewPageHandler(mgr, cfg.WebDir)
	docHandler := handlers.NewDocumentHandler(docSvc)
	chatHandler := handlers.NewChatHandler(chatSvc)
	profileHandler := handlers.NewProfileHandler(profileSvc)
	stateHandler := handlers.NewStateHandler(docSvc, chatSvc, profileSvc)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(appMiddleware.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:" + cfg.Port},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// Browser routes with redirect rules.
	r.Get("/", pageHandler.Landing)
	r.Get("/login", pageHandler.Login)
	r.Get("/signup", pageHandler.Signup)
	r.Get("/home", pageHandler.Home)
	r.Get("/profile", pageHandler.Profile)
	r.Get("/auth/confirm", authHandler.Confirm)

	// Static page assets.
	fileServer := http.FileServer(http.Dir(cfg.WebDir))
	r.Handle("/static/*", http.StripPrefix("/static/", fileServer))

	// JSON API the pages call, session-cookie authenticated.
	r.Route("/app", func(api chi.Router) {
		api.Post("/login", authHandler.Login)
		api.Post("/signup", authHandler.Signup)
		api.Post("/logout", authHandler.Logout)

		api.Group(func(protected chi.Router) {
			protected.Use(appMiddleware.RequireSession(mgr, registry))

			protected.Get("/state", stateHandler.Get)

			protected.Post("/documents", docHandler.Upload)
			protected.Delete("/documents", docHandler.Delete)

			protected.Get("/chat/sessions", chatHandler.List)
			protected.Post("/chat/sessions", chatHandler.Create)
			protected.Post("/chat/sessions/{sessionID}/select", chatHandler.Select)
			protected.Delete("/chat/sessions/{sessionID}", chatHandler.Delete)
			protected.Post("/chat/messages", chatHandler.Send)

			protected.Get("/profile", profileHandler.Get)
			protected.Put("/profile", profileHandler.Put)
		})
	})

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	return &Server{httpServer: httpSrv, logger: logger}
}

// Start runs the HTTP server.
func (s *Server) Start() {
	s.logger.Info().Str("addr", s.httpServer.Addr).Msg("HTTP server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.Fatal().Err(err).Msg("server error")
	}
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
