package fstree

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

const (
	RootID = 0

	// NoPathID is the path ID of the root and of every directory.
	NoPathID = -1
)

var (
	ErrEmptyPath     = errors.New("could not work with empty path")
	ErrDuplicatePath = errors.New("path is listed more than once")
	ErrPathConflict  = errors.New("path is both a file and a directory")
	ErrUnknownNode   = errors.New("unknown node")
)

type Node struct {
	Name     string
	IsDir    bool
	PathID   int
	Children map[string]int
}

// Tree is an arena of nodes. Node 0 is the synthetic root.
type Tree struct {
	nodes []Node
}

type Row struct {
	ID    int
	Depth int
}

func newDir(name string) Node {
	return Node{
		Name:     name,
		IsDir:    true,
		PathID:   NoPathID,
		Children: map[string]int{},
	}
}

func Build(paths []string) (*Tree, error) {
	t := &Tree{
		nodes: []Node{newDir("")},
	}

	for pathID, p := range paths {
		if err := t.insert(pathID, p); err != nil {
			return nil, fmt.Errorf("could not insert path %q: %w", p, err)
		}
	}

	return t, nil
}

func split(p string) []string {
	components := []string{}
	for _, c := range strings.Split(filepath.ToSlash(p), "/") {
		if c == "" || c == "." {
			continue
		}

		components = append(components, c)
	}

	return components
}

func (t *Tree) insert(pathID int, p string) error {
	components := split(p)
	if len(components) == 0 {
		return ErrEmptyPath
	}

	current := RootID
	for i, name := range components {
		last := i == len(components)-1

		if id, ok := t.nodes[current].Children[name]; ok {
			existing := t.nodes[id]

			switch {
			case last && existing.IsDir:
				return ErrPathConflict
			case last:
				return ErrDuplicatePath
			case !existing.IsDir:
				return ErrPathConflict
			}

			current = id

			continue
		}

		node := newDir(name)
		if last {
			node = Node{
				Name:   name,
				PathID: pathID,
			}
		}

		id := len(t.nodes)
		t.nodes = append(t.nodes, node)
		t.nodes[current].Children[name] = id

		current = id
	}

	return nil
}

func (t *Tree) Len() int {
	return len(t.nodes)
}

func (t *Tree) Node(id int) (Node, error) {
	if id < 0 || id >= len(t.nodes) {
		return Node{}, ErrUnknownNode
	}

	return t.nodes[id], nil
}

// Children returns the child IDs of a node, directories first, then by name.
func (t *Tree) Children(id int) []int {
	if id < 0 || id >= len(t.nodes) {
		return nil
	}

	children := make([]int, 0, len(t.nodes[id].Children))
	for _, child := range t.nodes[id].Children {
		children = append(children, child)
	}

	sort.Slice(children, func(i, j int) bool {
		a, b := t.nodes[children[i]], t.nodes[children[j]]
		if a.IsDir != b.IsDir {
			return a.IsDir
		}

		return a.Name < b.Name
	})

	return children
}

// Lookup resolves a slash-separated path to a node ID. The empty path is the root.
func (t *Tree) Lookup(p string) (int, bool) {
	current := RootID
	for _, name := range split(p) {
		id, ok := t.nodes[current].Children[name]
		if !ok {
			return 0, false
		}

		current = id
	}

	return current, true
}

// CollectPathIDs returns the sorted path IDs of every leaf beneath id, or of id itself if it is a leaf.
func (t *Tree) CollectPathIDs(id int) []int {
	ids := []int{}
	if id < 0 || id >= len(t.nodes) {
		return ids
	}

	var walk func(int)
	walk = func(id int) {
		node := t.nodes[id]
		if !node.IsDir {
			ids = append(ids, node.PathID)

			return
		}

		for _, child := range node.Children {
			walk(child)
		}
	}
	walk(id)

	sort.Ints(ids)

	return ids
}

// Checked reports whether every leaf beneath id is enabled. A partially enabled directory is not checked.
func (t *Tree) Checked(id int, enabled func(pathID int) bool) bool {
	for _, pathID := range t.CollectPathIDs(id) {
		if !enabled(pathID) {
			return false
		}
	}

	return true
}

// Rows flattens the tree depth-first in display order, without the root.
func (t *Tree) Rows() []Row {
	rows := []Row{}

	var walk func(id, depth int)
	walk = func(id, depth int) {
		for _, child := range t.Children(id) {
			rows = append(rows, Row{ID: child, Depth: depth})

			walk(child, depth+1)
		}
	}
	walk(RootID, 0)

	return rows
}
