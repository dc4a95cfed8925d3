package services

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitpilot/internal/events"
	"gitpilot/internal/models"
)

// contextHandler serves a small tree plus a configurable access answer.
// With staleFirst set, the first access call reports push access without
// the app, and later calls serve the stored answer; this reproduces the
// upstream endpoint lagging behind an installation.
type contextHandler struct {
	accessCalls atomic.Int32
	access      atomic.Value // models.RepoAccess
	staleFirst  bool

	// failFrom makes the access endpoint fail from the nth call on.
	failFrom int32
}

func (h *contextHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/api/auth/repo-access":
		n := h.accessCalls.Add(1)
		if h.failFrom > 0 && n >= h.failFrom {
			w.WriteHeader(http.StatusBadGateway)
			json.NewEncoder(w).Encode(map[string]string{"error": "upstream unavailable"})
			return
		}
		answer := h.access.Load().(models.RepoAccess)
		if h.staleFirst && n == 1 {
			answer = models.RepoAccess{CanWrite: true, AppInstalled: false}
		}
		json.NewEncoder(w).Encode(answer)
	default:
		json.NewEncoder(w).Encode(map[string]any{
			"files": []models.TreeEntry{
				{Path: "cmd", Type: "dir"},
				{Path: "cmd/main.go", Type: "file"},
				{Path: "README.md", Type: "file"},
			},
		})
	}
}

func newContextService(t *testing.T, h *contextHandler) *ContextService {
	t.Helper()
	svc := NewContextService(newTestAPI(t, h))
	svc.Startup(context.Background())
	svc.recheckDelay = 10 * time.Millisecond
	return svc
}

func TestLoadContext_ReadOnly(t *testing.T) {
	h := &contextHandler{}
	h.access.Store(models.RepoAccess{CanWrite: false, AppInstalled: false})
	svc := newContextService(t, h)

	pc, err := svc.LoadContext(context.Background(), models.Repository{
		Owner: "octocat", Name: "demo", DefaultBranch: "main",
	})
	require.NoError(t, err)
	assert.Equal(t, models.AccessReadOnly, pc.Access)
	assert.Equal(t, "main", pc.Branch)
	assert.Equal(t, 2, pc.FileCount, "directories are not counted as files")
	assert.Len(t, pc.Files, 3)
	assert.Equal(t, int32(1), h.accessCalls.Load(), "read-only never re-checks")
}

func TestLoadContext_AppInstalled(t *testing.T) {
	h := &contextHandler{}
	h.access.Store(models.RepoAccess{CanWrite: true, AppInstalled: true})
	svc := newContextService(t, h)

	pc, err := svc.LoadContext(context.Background(), models.Repository{Owner: "octocat", Name: "demo"})
	require.NoError(t, err)
	assert.Equal(t, models.AccessAppInstalled, pc.Access)
	assert.Equal(t, int32(1), h.accessCalls.Load())
}

func TestLoadContext_StaleAnswerRechecksExactlyOnce(t *testing.T) {
	rec := recordEvents(t)
	h := &contextHandler{staleFirst: true}
	h.access.Store(models.RepoAccess{CanWrite: true, AppInstalled: true})
	svc := newContextService(t, h)

	pc, err := svc.LoadContext(context.Background(), models.Repository{Owner: "octocat", Name: "demo"})
	require.NoError(t, err)
	assert.Equal(t, models.AccessPendingRecheck, pc.Access)

	// The installation lands between the first answer and the re-check.
	waitFor(t, func() bool { return len(rec.named(events.ContextAccess)) > 0 })
	verdicts := rec.named(events.ContextAccess)
	require.Len(t, verdicts, 1)
	assert.Equal(t, string(models.AccessAppInstalled), verdicts[0].Event.Metadata["access"])
	assert.Equal(t, "octocat/demo", verdicts[0].Event.Metadata["repository"])

	// No further checks after the verdict: one initial call, one re-check.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(2), h.accessCalls.Load())
}

func TestLoadContext_StillStaleResolvesPushNoApp(t *testing.T) {
	rec := recordEvents(t)
	h := &contextHandler{}
	h.access.Store(models.RepoAccess{CanWrite: true, AppInstalled: false})
	svc := newContextService(t, h)

	_, err := svc.LoadContext(context.Background(), models.Repository{Owner: "octocat", Name: "demo"})
	require.NoError(t, err)

	waitFor(t, func() bool { return len(rec.named(events.ContextAccess)) > 0 })
	verdicts := rec.named(events.ContextAccess)
	require.Len(t, verdicts, 1)
	assert.Equal(t, string(models.AccessPushNoApp), verdicts[0].Event.Metadata["access"])

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(2), h.accessCalls.Load(), "the retry is bounded, never a loop")
}

func TestLoadContext_RecheckFailureLeavesVerdictUnresolved(t *testing.T) {
	rec := recordEvents(t)
	h := &contextHandler{failFrom: 2}
	h.access.Store(models.RepoAccess{CanWrite: true, AppInstalled: false})
	svc := newContextService(t, h)

	_, err := svc.LoadContext(context.Background(), models.Repository{Owner: "octocat", Name: "demo"})
	require.NoError(t, err)

	waitFor(t, func() bool { return len(rec.named(events.ContextAccess)) > 0 })
	verdicts := rec.named(events.ContextAccess)
	require.Len(t, verdicts, 1)
	assert.Equal(t, events.EventError, verdicts[0].Event.Type)
	assert.Equal(t, string(models.AccessPendingRecheck), verdicts[0].Event.Metadata["access"],
		"a failed re-check must not claim the app is absent")
}

func TestLoadContext_DuplicateLoadDoesNotDoubleRecheck(t *testing.T) {
	rec := recordEvents(t)
	h := &contextHandler{}
	h.access.Store(models.RepoAccess{CanWrite: true, AppInstalled: false})
	svc := NewContextService(newTestAPI(t, h))
	svc.Startup(context.Background())
	svc.recheckDelay = 30 * time.Millisecond

	repo := models.Repository{Owner: "octocat", Name: "demo"}
	_, err := svc.LoadContext(context.Background(), repo)
	require.NoError(t, err)
	_, err = svc.LoadContext(context.Background(), repo)
	require.NoError(t, err)

	waitFor(t, func() bool { return len(rec.named(events.ContextAccess)) > 0 })
	time.Sleep(60 * time.Millisecond)
	assert.Len(t, rec.named(events.ContextAccess), 1, "one pending re-check per repository")
	assert.Equal(t, int32(3), h.accessCalls.Load(), "two initial checks plus a single re-check")
}

func TestLoadContext_MissingRepoRejected(t *testing.T) {
	svc := NewContextService(nil)
	_, err := svc.LoadContext(context.Background(), models.Repository{})
	assert.Error(t, err)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
