package main

import (
	"context"
	"fmt"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"gitpilot/internal/services"
)

// App struct
type App struct {
	ctx     context.Context
	auth    *services.AuthService
	device  *services.DeviceFlowService
	dbClose func() error
}

// NewApp creates a new App application struct
func NewApp() *App {
	return &App{}
}

// startup is called when the app starts. The context is saved
// so we can call the runtime methods
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
}

// shutdown is called when the app is closing. Clean up resources here.
func (a *App) shutdown(ctx context.Context) {
	// Stop a device-flow poller that may still be ticking
	if a.device != nil {
		a.device.Cancel()
	}

	// Close database connection pool
	if a.dbClose != nil {
		if err := a.dbClose(); err != nil {
			runtime.LogError(ctx, fmt.Sprintf("failed to close database: %v", err))
		} else {
			runtime.LogInfo(ctx, "database closed")
		}
		a.dbClose = nil
	}
}

// Bootstrap validates any stored session and reports the resulting auth
// state; the frontend calls this once on load before rendering anything.
func (a *App) Bootstrap() services.AuthSnapshot {
	if a.auth == nil {
		return services.AuthSnapshot{State: services.StateUnauthenticated}
	}
	return a.auth.Bootstrap(a.ctx)
}

// OpenExternal opens a URL in the system browser.
func (a *App) OpenExternal(url string) {
	if url != "" {
		runtime.BrowserOpenURL(a.ctx, url)
	}
}
