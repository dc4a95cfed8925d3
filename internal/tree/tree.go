// Package tree shapes a flat file listing into a nested tree for the
// repository browser.
package tree

import (
	"sort"
	"strings"

	"gitpilot/internal/models"
)

// Node is one named entry in the nested tree. Directories carry
// children; files are leaves.
type Node struct {
	Name     string  `json:"name"`
	Path     string  `json:"path"`
	IsDir    bool    `json:"isDir"`
	Children []*Node `json:"children,omitempty"`
}

// Build groups a flat {path, type} listing by path segment. At every
// level directories sort before files and same-kind siblings sort
// lexicographically. Building twice from the same input yields a
// structurally identical tree; empty input yields an empty forest.
func Build(entries []models.TreeEntry) []*Node {
	root := &Node{IsDir: true}
	index := map[string]*Node{"": root}

	for _, entry := range entries {
		path := strings.Trim(entry.Path, "/")
		if path == "" {
			continue
		}
		segments := strings.Split(path, "/")
		parent := root
		for i, segment := range segments {
			childPath := strings.Join(segments[:i+1], "/")
			node, ok := index[childPath]
			if !ok {
				isDir := i < len(segments)-1 || entry.Type == "dir"
				node = &Node{Name: segment, Path: childPath, IsDir: isDir}
				index[childPath] = node
				parent.Children = append(parent.Children, node)
			} else if i < len(segments)-1 && !node.IsDir {
				// A later entry proves this segment is a directory.
				node.IsDir = true
			}
			parent = node
		}
	}

	sortChildren(root)
	return root.Children
}

func sortChildren(n *Node) {
	sort.SliceStable(n.Children, func(i, j int) bool {
		a, b := n.Children[i], n.Children[j]
		if a.IsDir != b.IsDir {
			return a.IsDir
		}
		return a.Name < b.Name
	})
	for _, child := range n.Children {
		sortChildren(child)
	}
}

// Flatten returns every leaf path of the forest, depth first. Rejoining
// a built tree reproduces the input path set.
func Flatten(nodes []*Node) []string {
	var paths []string
	var walk func(n *Node)
	walk = func(n *Node) {
		if !n.IsDir || len(n.Children) == 0 {
			paths = append(paths, n.Path)
			return
		}
		for _, child := range n.Children {
			walk(child)
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return paths
}
