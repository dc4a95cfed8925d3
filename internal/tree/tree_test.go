package tree

import (
	"reflect"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"

	"gitpilot/internal/models"
)

func TestBuild_Empty(t *testing.T) {
	assert.Empty(t, Build(nil))
	assert.Empty(t, Build([]models.TreeEntry{}))
}

func TestBuild_GroupsByPathSegment(t *testing.T) {
	entries := []models.TreeEntry{
		{Path: "README.md", Type: "file"},
		{Path: "app/health.py", Type: "file"},
		{Path: "app/models/user.py", Type: "file"},
		{Path: "docs/index.md", Type: "file"},
	}

	forest := Build(entries)
	assert.Len(t, forest, 3)

	// directories first, then files, lexicographic within kind
	assert.Equal(t, "app", forest[0].Name)
	assert.True(t, forest[0].IsDir)
	assert.Equal(t, "docs", forest[1].Name)
	assert.Equal(t, "README.md", forest[2].Name)
	assert.False(t, forest[2].IsDir)

	app := forest[0]
	assert.Len(t, app.Children, 2)
	assert.Equal(t, "models", app.Children[0].Name)
	assert.True(t, app.Children[0].IsDir)
	assert.Equal(t, "health.py", app.Children[1].Name)
	assert.Equal(t, "app/health.py", app.Children[1].Path)
}

func TestBuild_DirectoriesSortBeforeFilesAtEveryLevel(t *testing.T) {
	entries := []models.TreeEntry{
		{Path: "src/zz.go", Type: "file"},
		{Path: "src/aa/one.go", Type: "file"},
		{Path: "src/bb.go", Type: "file"},
		{Path: "src/cc/two.go", Type: "file"},
	}

	forest := Build(entries)
	src := forest[0]
	var names []string
	for _, child := range src.Children {
		names = append(names, child.Name)
	}
	assert.Equal(t, []string{"aa", "cc", "bb.go", "zz.go"}, names)
}

func TestBuild_LeafPathsReproduceInput(t *testing.T) {
	entries := []models.TreeEntry{
		{Path: "a/b/c.txt", Type: "file"},
		{Path: "a/d.txt", Type: "file"},
		{Path: "e.txt", Type: "file"},
		{Path: "f/g/h/i.txt", Type: "file"},
	}

	got := Flatten(Build(entries))
	want := []string{"a/b/c.txt", "a/d.txt", "e.txt", "f/g/h/i.txt"}
	sort.Strings(got)
	sort.Strings(want)
	assert.Equal(t, want, got)
}

func TestBuild_Idempotent(t *testing.T) {
	entries := []models.TreeEntry{
		{Path: "x/y.go", Type: "file"},
		{Path: "x/z", Type: "dir"},
		{Path: "a.md", Type: "file"},
	}

	first := Build(entries)
	second := Build(entries)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical trees across runs: %#v vs %#v", first, second)
	}
}

func TestBuild_ExplicitDirEntries(t *testing.T) {
	entries := []models.TreeEntry{
		{Path: "empty", Type: "dir"},
		{Path: "pkg", Type: "dir"},
		{Path: "pkg/mod.go", Type: "file"},
	}

	forest := Build(entries)
	assert.Len(t, forest, 2)
	assert.Equal(t, "empty", forest[0].Name)
	assert.True(t, forest[0].IsDir)
	assert.Empty(t, forest[0].Children)
	assert.Equal(t, "pkg", forest[1].Name)
	assert.Len(t, forest[1].Children, 1)
}
