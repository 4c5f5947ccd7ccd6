package tui

import (
	"github.com/pojntfx/torrenter/pkg/fstree"
	"github.com/pojntfx/torrenter/pkg/state"
)

type fileRow struct {
	node   int
	depth  int
	name   string
	isDir  bool
	pathID int
}

type fileRows struct {
	tree  *fstree.Tree
	rows  []fileRow
	files []state.File
	err   error
}

// fileRows lays out the selected torrent's files as a tree, or as a flat list
// if the paths do not form one.
func (m *Model) fileRows() fileRows {
	t, _, ok := m.torrent()
	if !ok {
		return fileRows{}
	}

	return buildFileRows(t.Files)
}

func buildFileRows(files []state.File) fileRows {
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}

	tree, err := fstree.Build(paths)
	if err != nil {
		rows := make([]fileRow, len(files))
		for i, f := range files {
			rows[i] = fileRow{
				node:   fstree.NoPathID,
				name:   f.Path,
				pathID: i,
			}
		}

		return fileRows{rows: rows, files: files, err: err}
	}

	rows := []fileRow{}
	for _, r := range tree.Rows() {
		n, err := tree.Node(r.ID)
		if err != nil {
			continue
		}

		rows = append(rows, fileRow{
			node:   r.ID,
			depth:  r.Depth,
			name:   n.Name,
			isDir:  n.IsDir,
			pathID: n.PathID,
		})
	}

	return fileRows{tree: tree, rows: rows, files: files}
}

func (f fileRows) enabled(pathID int) bool {
	if pathID < 0 || pathID >= len(f.files) {
		return false
	}

	return f.files[pathID].Priority.Enabled()
}

// checked reports whether a row's file, or every file beneath its directory, is enabled.
func (f fileRows) checked(row fileRow) bool {
	if !row.isDir {
		return f.enabled(row.pathID)
	}

	return f.tree.Checked(row.node, f.enabled)
}

func (f fileRows) priority(row fileRow) (state.FilePriority, bool) {
	if row.isDir || row.pathID < 0 || row.pathID >= len(f.files) {
		return 0, false
	}

	return f.files[row.pathID].Priority, true
}
