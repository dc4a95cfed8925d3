package events

import (
	"context"

	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// Emit delivers an event to the frontend. It defaults to a no-op so
// services can emit unconditionally in tests.
var Emit = func(ctx context.Context, name string, evt AppEvent) {}

// EnableRuntimeEmitter routes events through the Wails runtime. Called
// once on startup.
func EnableRuntimeEmitter() {
	Emit = func(ctx context.Context, name string, evt AppEvent) {
		runtime.EventsEmit(ctx, name, evt)
		logRuntimeEvent(ctx, evt)
	}
}

// SetCustomEmitter swaps the emitter, primarily for tests. A nil f
// restores the no-op.
func SetCustomEmitter(f func(ctx context.Context, name string, evt AppEvent)) {
	if f == nil {
		Emit = func(context.Context, string, AppEvent) {}
		return
	}
	Emit = f
}
