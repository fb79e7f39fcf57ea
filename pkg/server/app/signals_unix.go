//go:build !windows

package app

import (
	"context"
	"os/signal"
	"syscall"
)

// configureSignals subscribes to SIGHUP, which reloads the fingerprint catalog.
func (a *App) configureSignals() {
	signal.Notify(a.signals, syscall.SIGHUP)
}

func (a *App) stopSignals() {
	signal.Stop(a.signals)
}

func (a *App) listenSignals(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-a.signals:
			a.Deps.Logger.Info().Str("signal", sig.String()).Msg("Reloading fingerprint catalog")
			if err := a.ReloadCatalog(); err != nil {
				a.Deps.Logger.Error().Err(err).Msg("Catalog reload failed; keeping previous catalog")
			}
		}
	}
}
