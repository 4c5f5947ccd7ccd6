package fstree

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seasons() []string {
	return []string{
		"S1/a", "S1/b", "S1/c", "S1/d",
		"S2/a", "S2/b", "S2/c", "S2/d",
		"S2/bonus/a", "S2/bonus/b", "S2/bonus/c", "S2/bonus/d",
	}
}

func leafCount(t *Tree, id int) int {
	n := 0
	for _, child := range t.Children(id) {
		node, _ := t.Node(child)
		if !node.IsDir {
			n++
		}
	}

	return n
}

func TestBuildSeasons(t *testing.T) {
	tree, err := Build(seasons())
	require.NoError(t, err)

	root, err := tree.Node(RootID)
	require.NoError(t, err)
	assert.Len(t, root.Children, 2)
	assert.Equal(t, NoPathID, root.PathID)

	s1, ok := tree.Lookup("S1")
	require.True(t, ok)
	s2, ok := tree.Lookup("S2")
	require.True(t, ok)
	bonus, ok := tree.Lookup("S2/bonus")
	require.True(t, ok)

	assert.Len(t, tree.Children(s1), 4)
	assert.Equal(t, 4, leafCount(tree, s1))

	assert.Len(t, tree.Children(s2), 5)
	assert.Equal(t, 4, leafCount(tree, s2))

	assert.Len(t, tree.Children(bonus), 4)
	assert.Equal(t, 4, leafCount(tree, bonus))

	assert.Equal(t, []int{0, 1, 2, 3}, tree.CollectPathIDs(s1))
	assert.Equal(t, []int{4, 5, 6, 7, 8, 9, 10, 11}, tree.CollectPathIDs(s2))
	assert.Equal(t, []int{8, 9, 10, 11}, tree.CollectPathIDs(bonus))
}

func TestBuildLeavesArePermutation(t *testing.T) {
	paths := seasons()
	rand.New(rand.NewSource(42)).Shuffle(len(paths), func(i, j int) {
		paths[i], paths[j] = paths[j], paths[i]
	})
	paths = append(paths, "single", "deep/er/than/before/file.mkv", "S1/e")

	tree, err := Build(paths)
	require.NoError(t, err)

	leaves := []int{}
	for id := 0; id < tree.Len(); id++ {
		node, err := tree.Node(id)
		require.NoError(t, err)

		if !node.IsDir {
			leaves = append(leaves, node.PathID)
		}
	}
	sort.Ints(leaves)

	expected := make([]int, len(paths))
	for i := range expected {
		expected[i] = i
	}

	assert.Equal(t, expected, leaves)
	assert.Equal(t, expected, tree.CollectPathIDs(RootID))

	for i, p := range paths {
		id, ok := tree.Lookup(p)
		require.True(t, ok, p)

		node, err := tree.Node(id)
		require.NoError(t, err)
		assert.Equal(t, i, node.PathID, p)
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name  string
		paths []string
		err   error
	}{
		{"empty", []string{""}, ErrEmptyPath},
		{"only separators", []string{"a", "//"}, ErrEmptyPath},
		{"duplicate", []string{"a/b", "a/b"}, ErrDuplicatePath},
		{"file then directory", []string{"a", "a/b"}, ErrPathConflict},
		{"directory then file", []string{"a/b", "a"}, ErrPathConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.paths)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestBuildEmptyList(t *testing.T) {
	tree, err := Build(nil)
	require.NoError(t, err)

	assert.Equal(t, 1, tree.Len())
	assert.Empty(t, tree.CollectPathIDs(RootID))
	assert.Empty(t, tree.Rows())
}

func TestChecked(t *testing.T) {
	tree, err := Build(seasons())
	require.NoError(t, err)

	s2, _ := tree.Lookup("S2")
	bonus, _ := tree.Lookup("S2/bonus")

	all := func(int) bool { return true }
	assert.True(t, tree.Checked(s2, all))

	// One disabled leaf below bonus unchecks bonus and S2, but not S1.
	partial := func(id int) bool { return id != 9 }
	assert.False(t, tree.Checked(s2, partial))
	assert.False(t, tree.Checked(bonus, partial))

	s1, _ := tree.Lookup("S1")
	assert.True(t, tree.Checked(s1, partial))
}

func TestRows(t *testing.T) {
	tree, err := Build([]string{"b.txt", "dir/z", "dir/a", "a.txt"})
	require.NoError(t, err)

	names := []string{}
	depths := []int{}
	for _, row := range tree.Rows() {
		node, err := tree.Node(row.ID)
		require.NoError(t, err)

		names = append(names, node.Name)
		depths = append(depths, row.Depth)
	}

	assert.Equal(t, []string{"dir", "a", "z", "a.txt", "b.txt"}, names)
	assert.Equal(t, []int{0, 1, 1, 0, 0}, depths)
}
