package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"gitpilot/internal/apiclient"
	"gitpilot/internal/events"
)

func newTestAPI(t *testing.T, handler http.Handler) *apiclient.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := apiclient.New(srv.URL)
	require.NoError(t, err)
	return c
}

// eventRecorder captures emitted frontend events for assertions.
type eventRecorder struct {
	mu   sync.Mutex
	seen []recordedEvent
}

type recordedEvent struct {
	Name  string
	Event events.AppEvent
}

func recordEvents(t *testing.T) *eventRecorder {
	t.Helper()
	rec := &eventRecorder{}
	events.SetCustomEmitter(func(ctx context.Context, name string, evt events.AppEvent) {
		rec.mu.Lock()
		rec.seen = append(rec.seen, recordedEvent{Name: name, Event: evt})
		rec.mu.Unlock()
	})
	t.Cleanup(func() { events.SetCustomEmitter(nil) })
	return rec
}

func (r *eventRecorder) named(name string) []recordedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []recordedEvent
	for _, e := range r.seen {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}
