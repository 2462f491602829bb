package api

import (
	"context"
	"sync"

	"github.com/brianmay/penguin-nurse/internal"
	"github.com/brianmay/penguin-nurse/internal/auth"
	"github.com/brianmay/penguin-nurse/internal/config"
	"github.com/brianmay/penguin-nurse/internal/service"
	"github.com/brianmay/penguin-nurse/internal/storage"
)

// App is what the handlers need from the running server.
type App interface {
	Logger() internal.Logger
	Store() storage.Store
	Services() *service.Services
	Sessions() *auth.SessionManager
	Auth() auth.Provider
	// OIDC is nil when no provider is configured.
	OIDC() *auth.OIDC
}

type Application struct {
	logger   internal.Logger
	store    storage.Store
	services *service.Services
	sessions *auth.SessionManager
	provider auth.Provider
	oidc     *auth.OIDC
}

func NewApplication(cfg *config.Config, store storage.Store, logger internal.Logger) (*Application, error) {
	dayStart, err := cfg.DayStartOffset()
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	app := &Application{
		logger:   logger,
		store:    store,
		services: service.New(store, service.TimelineOptions{DayStart: dayStart, Location: loc}),
		sessions: auth.NewSessionManager(store.Sessions(), store.Users(), cfg.SessionTTL, cfg.SessionSecure, logger),
		provider: auth.NewLocalAuthProvider(store.Users(), logger),
	}
	if cfg.OIDCEnabled() {
		app.oidc = auth.NewOIDC(auth.OIDCConfig{
			DiscoveryURL: cfg.OIDCDiscovery,
			ClientID:     cfg.OIDCClientID,
			ClientSecret: cfg.OIDCSecret,
			Scopes:       auth.ParseScopes(cfg.OIDCAuthScope),
			BaseURL:      cfg.BaseURL,
			Secure:       cfg.SessionSecure,
		}, store.Users(), app.sessions, logger)
	}
	return app, nil
}

func (a *Application) Logger() internal.Logger       { return a.logger }
func (a *Application) Store() storage.Store           { return a.store }
func (a *Application) Services() *service.Services    { return a.services }
func (a *Application) Sessions() *auth.SessionManager { return a.sessions }
func (a *Application) Auth() auth.Provider            { return a.provider }
func (a *Application) OIDC() *auth.OIDC               { return a.oidc }

// RunBackground starts the session cleanup and OIDC discovery loops. They
// stop when ctx is done; the returned func waits for that.
func (a *Application) RunBackground(ctx context.Context) (wait func()) {
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		a.sessions.RunCleanup(ctx)
	}()
	if a.oidc != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.oidc.Run(ctx)
		}()
	}
	return wg.Wait
}

var _ App = (*Application)(nil)
