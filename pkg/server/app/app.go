package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/vulntor/siteprint/pkg/config"
	"github.com/vulntor/siteprint/pkg/fingerprint"
	"github.com/vulntor/siteprint/pkg/server/api"
	"github.com/vulntor/siteprint/pkg/server/httpx"
)

// App orchestrates the server runtime components:
// - HTTP server (API, health, metrics)
// - The active fingerprint engine and its reload triggers
// - Lifecycle management
type App struct {
	HTTP   *http.Server
	Ready  *atomic.Bool
	Config config.ServerConfig
	Deps   *Deps

	engine   atomic.Pointer[fingerprint.Engine]
	watcher  *fingerprint.CatalogWatcher
	listener net.Listener
	signals  chan os.Signal
}

// New loads the catalog and configures a new server application.
func New(_ context.Context, cfg config.ServerConfig, deps *Deps) (*App, error) {
	deps.Logger.Info().Msg("Initializing server application")

	a := &App{
		Ready:   &atomic.Bool{},
		Config:  cfg,
		Deps:    deps,
		signals: make(chan os.Signal, 1),
	}
	if err := a.loadCatalog(); err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	if deps.Catalog.Watch {
		files := deps.Catalog.files()
		if len(files) == 0 {
			deps.Logger.Warn().Msg("Catalog watch requested without custom catalog files; nothing to watch")
		} else {
			w, err := fingerprint.NewCatalogWatcher(files, a.ReloadCatalog, deps.Logger)
			if err != nil {
				return nil, fmt.Errorf("create catalog watcher: %w", err)
			}
			a.watcher = w
		}
	}

	apiCfg := api.DefaultConfig()
	if cfg.MaxBodyBytes > 0 {
		apiCfg.MaxBodyBytes = cfg.MaxBodyBytes
	}
	if cfg.WriteTimeout > 0 {
		apiCfg.HandlerTimeout = cfg.WriteTimeout
	}
	if err := apiCfg.Validate(); err != nil {
		return nil, err
	}

	apiDeps := &api.Deps{
		Engine:    a.engine.Load,
		Reports:   deps.Reports,
		Telemetry: deps.Telemetry,
		Metrics:   deps.Metrics,
		Config:    apiCfg,
		Ready:     a.Ready,
	}

	router := httpx.NewRouter(cfg, apiDeps)

	if cfg.APIEnabled {
		deps.Logger.Info().Msg("API endpoints enabled")
	} else {
		deps.Logger.Warn().Msg("API endpoints disabled")
	}
	if cfg.AuthToken != "" {
		deps.Logger.Info().Msg("Bearer token authentication enabled for API routes")
	}

	a.HTTP = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Addr, cfg.Port),
		Handler:      httpx.Chain(cfg, router),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return a, nil
}

// Engine returns the engine currently serving requests.
func (a *App) Engine() *fingerprint.Engine {
	return a.engine.Load()
}

// ReloadCatalog rebuilds the catalog from its sources and swaps the engine. On failure
// the previous engine keeps serving.
func (a *App) ReloadCatalog() error {
	err := a.loadCatalog()
	a.Deps.Metrics.ObserveReload(err)
	if err != nil {
		return err
	}
	a.Deps.Logger.Info().
		Int("rules", a.engine.Load().Catalog().RuleCount()).
		Msg("Fingerprint catalog reloaded")
	return nil
}

func (a *App) loadCatalog() error {
	opts := a.Deps.Catalog
	catalog, err := fingerprint.ResolveCatalog(opts.RulesFile, opts.CookiesFile, opts.CacheDir, a.Deps.Logger)
	if err != nil {
		return err
	}
	engine := fingerprint.NewEngine(catalog, fingerprint.WithLogger(a.Deps.Logger))
	a.engine.Store(engine)
	fingerprint.SetDefaultEngine(engine)
	a.Deps.Metrics.SetCatalogRules(catalog.RuleCount())
	return nil
}

// Addr returns the listening address once Run has bound the socket.
func (a *App) Addr() string {
	if a.listener == nil {
		return a.HTTP.Addr
	}
	return a.listener.Addr().String()
}

// Run starts the server and blocks until shutdown.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.HTTP.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", a.HTTP.Addr, err)
	}
	a.listener = ln

	a.Deps.Logger.Info().
		Str("addr", ln.Addr().String()).
		Bool("api", a.Config.APIEnabled).
		Bool("metrics", a.Config.MetricsEnabled).
		Bool("reports", a.Deps.Reports != nil).
		Bool("watch", a.watcher != nil).
		Msg("Starting siteprint server")

	serverErr := make(chan error, 1)
	go func() {
		if err := a.HTTP.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	bgCtx, stopBackground := context.WithCancel(ctx)
	defer stopBackground()

	if a.watcher != nil {
		go func() {
			if err := a.watcher.Start(bgCtx); err != nil && !errors.Is(err, context.Canceled) {
				a.Deps.Logger.Warn().Err(err).Msg("Catalog watcher stopped; reload with SIGHUP instead")
			}
		}()
	}

	a.configureSignals()
	defer a.stopSignals()
	go a.listenSignals(bgCtx)

	a.Ready.Store(true)
	a.Deps.Logger.Info().Msg("Server is ready and accepting connections")

	select {
	case <-ctx.Done():
		a.Deps.Logger.Info().Msg("Shutdown signal received")
	case err := <-serverErr:
		a.Deps.Logger.Error().Err(err).Msg("Server error")
		a.Ready.Store(false)
		return err
	}

	return a.shutdown()
}

// shutdown performs graceful shutdown of all components.
func (a *App) shutdown() error {
	a.Deps.Logger.Info().Msg("Initiating graceful shutdown")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a.Ready.Store(false)

	a.Deps.Logger.Info().Msg("Shutting down HTTP server...")
	if err := a.HTTP.Shutdown(shutdownCtx); err != nil {
		a.Deps.Logger.Error().Err(err).Msg("HTTP server shutdown failed")
		return err
	}
	a.Deps.Logger.Info().Msg("HTTP server stopped")

	if err := a.Deps.Telemetry.Close(); err != nil {
		a.Deps.Logger.Error().Err(err).Msg("Telemetry close failed")
		return err
	}

	a.Deps.Logger.Info().Msg("Server shutdown complete")
	return nil
}
