package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pojntfx/torrenter/pkg/coordinator"
	"github.com/pojntfx/torrenter/pkg/engine"
	"github.com/pojntfx/torrenter/pkg/state"
)

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		return m.quit()
	}

	if m.quitting {
		return nil
	}

	if m.adding {
		return m.handleAddKey(msg)
	}

	switch msg.String() {
	case "q":
		return m.quit()
	case "tab":
		m.tab = tabs[(int(m.tab)+1)%len(tabs)]
		m.fileCursor = 0
	case "shift+tab":
		m.tab = tabs[(int(m.tab)+len(tabs)-1)%len(tabs)]
		m.fileCursor = 0
	case "up", "k":
		if m.tab == TabFiles {
			if m.fileCursor > 0 {
				m.fileCursor--
			}

			return nil
		}

		m.selectTorrent(m.cursor - 1)
	case "down", "j":
		if m.tab == TabFiles {
			if m.fileCursor < len(m.fileRows().rows)-1 {
				m.fileCursor++
			}

			return nil
		}

		m.selectTorrent(m.cursor + 1)
	case "[":
		m.selectTorrent(m.cursor - 1)
	case "]":
		m.selectTorrent(m.cursor + 1)
	case "a":
		m.adding = true
		m.input.SetValue("")

		return m.input.Focus()
	case "x":
		if _, index, ok := m.torrent(); ok {
			m.send(coordinator.RemoveTorrent{Index: index})
		}
	case "p":
		if t, index, ok := m.torrent(); ok {
			m.send(coordinator.UpdateState{State: t.State, Index: index})
		}
	case "s":
		if _, index, ok := m.torrent(); ok {
			m.send(coordinator.ToggleStreamMode{Index: index})
		}
	case "o":
		if t, _, ok := m.torrent(); ok {
			m.send(coordinator.OpenDir{Path: t.SavePath})
		}
	case " ":
		if m.tab == TabFiles {
			m.toggleFile()
		}
	case "+", "=":
		if m.tab == TabFiles {
			m.cyclePriority(state.FilePriority.Next)
		}
	case "-":
		if m.tab == TabFiles {
			m.cyclePriority(state.FilePriority.Prev)
		}
	}

	return nil
}

func (m *Model) handleAddKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.adding = false
		m.input.Blur()

		return nil
	case "enter":
		m.adding = false
		m.input.Blur()

		source := strings.TrimSpace(m.input.Value())
		if source == "" {
			return nil
		}

		kind := engine.AddKindFile
		if strings.HasPrefix(source, "magnet:") {
			kind = engine.AddKindMagnetURL
		}

		m.send(coordinator.AddTorrent{Source: source, Kind: kind})

		return nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	return cmd
}

// quit starts the shutdown protocol; the program exits once the coordinator is done.
func (m *Model) quit() tea.Cmd {
	if m.quitting {
		return nil
	}

	m.quitting = true
	m.status = "Shutting down ..."

	if err := m.bus.Send(coordinator.Stop{}); err != nil {
		return tea.Quit
	}

	if m.done == nil {
		return tea.Quit
	}

	return nil
}

func (m *Model) selectTorrent(index int) {
	if index < 0 || index >= len(m.snapshot.Torrents) || index == m.cursor {
		return
	}

	m.cursor = index
	m.fileCursor = 0

	m.syncSelection()
	m.send(
		coordinator.FetchPeers{Index: index},
		coordinator.FetchFiles{Index: index},
	)
}

func (m *Model) currentFileRow() (fileRows, fileRow, int, bool) {
	_, index, ok := m.torrent()
	if !ok {
		return fileRows{}, fileRow{}, 0, false
	}

	rows := m.fileRows()
	if m.fileCursor < 0 || m.fileCursor >= len(rows.rows) {
		return fileRows{}, fileRow{}, 0, false
	}

	return rows, rows.rows[m.fileCursor], index, true
}

func (m *Model) toggleFile() {
	rows, row, index, ok := m.currentFileRow()
	if !ok {
		return
	}

	if row.isDir {
		m.send(coordinator.ToggleCommands(rows.tree, row.node, index, !rows.checked(row))...)

		return
	}

	priority := state.FilePrioritySkip
	if !rows.checked(row) {
		priority = state.FilePriorityDefault
	}

	m.send(coordinator.UpdateFilePriority{Index: index, FileIndex: row.pathID, Priority: priority})
}

func (m *Model) cyclePriority(next func(state.FilePriority) state.FilePriority) {
	rows, row, index, ok := m.currentFileRow()
	if !ok {
		return
	}

	current, ok := rows.priority(row)
	if !ok {
		return
	}

	m.send(coordinator.UpdateFilePriority{Index: index, FileIndex: row.pathID, Priority: next(current)})
}
