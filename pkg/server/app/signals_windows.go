//go:build windows

package app

import "context"

func (a *App) configureSignals() {}

func (a *App) stopSignals() {}

func (a *App) listenSignals(ctx context.Context) {
	<-ctx.Done()
}
