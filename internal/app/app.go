package app

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/mclarke-dev/docuchat/internal/config"
	"github.com/mclarke-dev/docuchat/internal/core/backend"
	"github.com/mclarke-dev/docuchat/internal/core/identity"
	"github.com/mclarke-dev/docuchat/internal/services"
	"github.com/mclarke-dev/docuchat/internal/session"
	"github.com/mclarke-dev/docuchat/internal/state"
)

type App struct {
	Backend   *backend.Client
	Identity  *identity.Client
	Sessions  *session.Manager
	Workspace *state.Registry
	Server    *Server
}

// NewApp wires the clients, the session layer, the workspace registry and
// the panel services. ctx outlives requests: document poll loops run under
// it and stop on shutdown.
func NewApp(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*App, error) {
	backendClient := backend.NewClient(cfg.BackendURL, cfg.HTTPTimeout)
	identityClient := identity.NewClient(cfg.AuthURL, cfg.AuthAnonKey, cfg.HTTPTimeout)

	sessionMgr, err := session.NewManager(cfg, identityClient)
	if err != nil {
		return nil, err
	}
	registry := state.NewRegistry()

	docSvc := services.NewDocumentService(ctx, backendClient, cfg.PollInterval, cfg.MaxUploadSize, logger)
	chatSvc := services.NewChatService(backendClient, logger)
	profileSvc := services.NewProfileService(identityClient)

	server := NewServer(cfg, logger, identityClient, sessionMgr, registry, docSvc, chatSvc, profileSvc)

	return &App{
		Backend:   backendClient,
		Identity:  identityClient,
		Sessions:  sessionMgr,
		Workspace: registry,
		Server:    server,
	}, nil
}
