package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/yargevad/filepathx"

	"gitpilot/internal/models"
	"gitpilot/internal/tree"
)

// WorkspaceService manages optional local clones of the selected
// repository so executed changes can be inspected offline. Failures here
// never affect the plan/execute flow.
type WorkspaceService struct {
	ctx      context.Context
	token    func() string
	cacheDir string
}

// NewWorkspaceService builds the service; token supplies the session
// credential for HTTPS clone auth.
func NewWorkspaceService(token func() string) (*WorkspaceService, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return nil, fmt.Errorf("resolve cache dir: %w", err)
	}
	dir := filepath.Join(cacheDir, "gitpilot", "workspaces")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create workspace dir: %w", err)
	}
	return &WorkspaceService{token: token, cacheDir: dir}, nil
}

func (s *WorkspaceService) Startup(ctx context.Context) {
	s.ctx = ctx
}

// ClonePath is where a repository's local clone lives (or would live).
func (s *WorkspaceService) ClonePath(owner, name string) string {
	return filepath.Join(s.cacheDir, owner, name)
}

func (s *WorkspaceService) auth() *http.BasicAuth {
	if s.token == nil {
		return nil
	}
	token := s.token()
	if token == "" {
		return nil
	}
	// GitHub accepts the token as the password with any username.
	return &http.BasicAuth{Username: "gitpilot", Password: token}
}

// Clone fetches the repository into the local cache. An existing clone
// is pulled instead.
func (s *WorkspaceService) Clone(repo models.Repository) (string, error) {
	if repo.Owner == "" || repo.Name == "" {
		return "", fmt.Errorf("repository owner and name are required")
	}
	path := s.ClonePath(repo.Owner, repo.Name)

	if _, err := git.PlainOpen(path); err == nil {
		if err := s.Pull(path); err != nil {
			return "", err
		}
		return path, nil
	}

	cloneURL := fmt.Sprintf("https://github.com/%s/%s.git", repo.Owner, repo.Name)
	_, err := git.PlainClone(path, false, &git.CloneOptions{
		URL:  cloneURL,
		Auth: s.auth(),
	})
	if err != nil {
		return "", fmt.Errorf("clone %s: %w", repo.FullName, err)
	}
	return path, nil
}

// Pull updates an existing clone from origin. An already-up-to-date
// worktree is not an error.
func (s *WorkspaceService) Pull(path string) error {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return fmt.Errorf("open repository at %s: %w", path, err)
	}
	w, err := repo.Worktree()
	if err != nil {
		return err
	}
	err = w.Pull(&git.PullOptions{RemoteName: "origin", Auth: s.auth()})
	if err != nil && err != git.NoErrAlreadyUpToDate {
		return fmt.Errorf("pull: %w", err)
	}
	return nil
}

// ListBranches returns the clone's local branches with last-commit
// dates, alphabetically; the frontend can re-sort by recency.
func (s *WorkspaceService) ListBranches(path string) ([]models.BranchInfo, error) {
	if path == "" {
		return nil, fmt.Errorf("repository path cannot be empty")
	}
	repo, err := git.PlainOpen(path)
	if err != nil {
		return nil, fmt.Errorf("open repository at %s: %w", path, err)
	}

	iter, err := repo.Branches()
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var branches []models.BranchInfo
	if err := iter.ForEach(func(ref *plumbing.Reference) error {
		commit, cErr := repo.CommitObject(ref.Hash())
		if cErr != nil {
			return cErr
		}
		branches = append(branches, models.BranchInfo{
			Name:           ref.Name().Short(),
			LastCommitDate: commit.Author.When,
		})
		return nil
	}); err != nil {
		return nil, err
	}

	sort.Slice(branches, func(i, j int) bool { return branches[i].Name < branches[j].Name })
	return branches, nil
}

// LocalTree lists the clone's files recursively and shapes them with
// the same tree builder the remote browser uses, so the frontend renders
// both identically. The .git directory is excluded.
func (s *WorkspaceService) LocalTree(path string) ([]*tree.Node, error) {
	if path == "" {
		return nil, fmt.Errorf("repository path cannot be empty")
	}
	matches, err := filepathx.Glob(filepath.Join(path, "**", "*"))
	if err != nil {
		return nil, fmt.Errorf("list workspace files: %w", err)
	}

	var entries []models.TreeEntry
	for _, match := range matches {
		rel, err := filepath.Rel(path, match)
		if err != nil {
			continue
		}
		rel = filepath.ToSlash(rel)
		if rel == "." || rel == ".git" || strings.HasPrefix(rel, ".git/") {
			continue
		}
		info, err := os.Stat(match)
		if err != nil {
			continue
		}
		kind := "file"
		if info.IsDir() {
			kind = "dir"
		}
		entries = append(entries, models.TreeEntry{Path: rel, Type: kind})
	}
	return tree.Build(entries), nil
}
