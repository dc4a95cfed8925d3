package services

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClonePath(t *testing.T) {
	svc, err := NewWorkspaceService(func() string { return "tok" })
	require.NoError(t, err)

	path := svc.ClonePath("octocat", "demo")
	assert.Equal(t, filepath.Join("octocat", "demo"), filepath.Join(filepath.Base(filepath.Dir(path)), filepath.Base(path)))
	assert.NotNil(t, svc.auth())
}

func TestAuth_EmptyTokenMeansNone(t *testing.T) {
	svc, err := NewWorkspaceService(func() string { return "" })
	require.NoError(t, err)
	assert.Nil(t, svc.auth())
}

func TestLocalTree_ExcludesGitDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".git", "objects"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "cmd"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".git", "HEAD"), []byte("ref: refs/heads/main\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cmd", "main.go"), []byte("package main\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# demo\n"), 0644))

	svc := &WorkspaceService{cacheDir: dir}
	nodes, err := svc.LocalTree(dir)
	require.NoError(t, err)

	names := make([]string, 0, len(nodes))
	for _, n := range nodes {
		names = append(names, n.Name)
	}
	assert.Equal(t, []string{"cmd", "README.md"}, names, "directories first, no .git")
	require.Len(t, nodes[0].Children, 1)
	assert.Equal(t, "main.go", nodes[0].Children[0].Name)
}

func TestListBranches_SortedByName(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "file.txt"), []byte("hello\n"), 0644))
	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("file.txt")
	require.NoError(t, err)
	hash, err := wt.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "dev", Email: "dev@example.com", When: time.Now()},
	})
	require.NoError(t, err)

	require.NoError(t, repo.Storer.SetReference(plumbing.NewHashReference("refs/heads/alpha", hash)))

	svc := &WorkspaceService{}
	branches, err := svc.ListBranches(dir)
	require.NoError(t, err)
	require.Len(t, branches, 2)
	assert.Equal(t, "alpha", branches[0].Name)
	assert.False(t, branches[0].LastCommitDate.IsZero())

	_, err = svc.ListBranches(filepath.Join(dir, "nope"))
	assert.Error(t, err)
}
