package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gitpilot/internal/apiclient"
	"gitpilot/internal/events"
	"gitpilot/internal/models"
	"gitpilot/internal/tree"
)

// accessRecheckDelay is how long to wait before the single follow-up
// access check when the first answer looks stale.
const accessRecheckDelay = 3 * time.Second

// ContextService loads everything the project panel shows for a
// selected repository: branch, file tree, and a write-access verdict.
//
// The upstream access endpoint is known to return transiently stale
// app_installed values right after installation. When the first answer
// is "can push, app not detected" the service schedules exactly one
// delayed re-check before concluding; it is a single bounded retry,
// never a loop.
type ContextService struct {
	ctx context.Context
	api *apiclient.Client

	mu         sync.Mutex
	recheckFor string // repo full name with a pending re-check

	recheckDelay time.Duration
}

func NewContextService(api *apiclient.Client) *ContextService {
	return &ContextService{api: api, recheckDelay: accessRecheckDelay}
}

func (s *ContextService) Startup(ctx context.Context) {
	s.ctx = ctx
}

// LoadContext fetches the repository tree and classifies write access.
// A pending-recheck verdict means the final classification arrives via
// the events:context:access event once the bounded re-check resolves.
func (s *ContextService) LoadContext(ctx context.Context, repo models.Repository) (*models.ProjectContext, error) {
	if repo.Owner == "" || repo.Name == "" {
		return nil, fmt.Errorf("repository owner and name are required")
	}

	files, err := s.api.RepoTree(ctx, repo.Owner, repo.Name)
	if err != nil {
		return nil, fmt.Errorf("load repository tree: %w", err)
	}

	access, err := s.api.RepoAccess(ctx, repo.Owner, repo.Name)
	if err != nil {
		return nil, fmt.Errorf("check repository access: %w", err)
	}

	level := classifyAccess(access)
	if level == models.AccessPendingRecheck {
		s.scheduleRecheck(repo)
	}

	return &models.ProjectContext{
		Repository: repo,
		Branch:     repo.DefaultBranch,
		FileCount:  countFiles(files),
		Files:      files,
		Access:     level,
	}, nil
}

// BuildTree shapes a flat listing into the nested tree the file browser
// renders.
func (s *ContextService) BuildTree(files []models.TreeEntry) []*tree.Node {
	return tree.Build(files)
}

// classifyAccess maps the raw answer to the 4-way verdict. The
// pending-recheck case exists only for first answers; re-checks resolve
// it to push-no-app or app-installed.
func classifyAccess(access *models.RepoAccess) models.AccessLevel {
	switch {
	case !access.CanWrite:
		return models.AccessReadOnly
	case access.AppInstalled:
		return models.AccessAppInstalled
	default:
		return models.AccessPendingRecheck
	}
}

// scheduleRecheck arms the one bounded follow-up check for a repository.
// A re-check already pending for the same repository is not doubled.
func (s *ContextService) scheduleRecheck(repo models.Repository) {
	full := repo.FullName
	if full == "" {
		full = repo.Owner + "/" + repo.Name
	}

	s.mu.Lock()
	if s.recheckFor == full {
		s.mu.Unlock()
		return
	}
	s.recheckFor = full
	s.mu.Unlock()

	time.AfterFunc(s.recheckDelay, func() {
		defer func() {
			s.mu.Lock()
			if s.recheckFor == full {
				s.recheckFor = ""
			}
			s.mu.Unlock()
		}()

		ctx := s.ctx
		if ctx == nil {
			ctx = context.Background()
		}
		access, err := s.api.RepoAccess(ctx, repo.Owner, repo.Name)
		if err != nil {
			// A failed re-check proves nothing about the app; report
			// the error and leave the verdict unresolved instead of
			// prompting an install over a network blip.
			s.emitAccessFailure(full, err)
			return
		}

		level := classifyAccess(access)
		if level == models.AccessPendingRecheck {
			// Still stale after the retry: conclude the app is
			// genuinely absent.
			level = models.AccessPushNoApp
		}
		s.emitAccess(full, level)
	})
}

func (s *ContextService) emitAccessFailure(fullName string, err error) {
	if s.ctx == nil {
		return
	}
	evt := events.NewError("access re-check failed: " + err.Error())
	evt.Metadata = map[string]string{"repository": fullName, "access": string(models.AccessPendingRecheck)}
	events.Emit(s.ctx, events.ContextAccess, evt)
}

func (s *ContextService) emitAccess(fullName string, level models.AccessLevel) {
	if s.ctx == nil {
		return
	}
	evt := events.NewInfo(string(level))
	evt.Metadata = map[string]string{"repository": fullName, "access": string(level)}
	events.Emit(s.ctx, events.ContextAccess, evt)
}

func countFiles(entries []models.TreeEntry) int {
	n := 0
	for _, entry := range entries {
		if entry.Type != "dir" {
			n++
		}
	}
	return n
}
