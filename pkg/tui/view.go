package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/pojntfx/torrenter/pkg/format"
	"github.com/pojntfx/torrenter/pkg/state"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1)

	tabStyle = lipgloss.NewStyle().
			Padding(0, 1)

	activeTabStyle = tabStyle.
			Border(lipgloss.RoundedBorder(), false, false, true, false).
			Bold(true)

	selectedStyle = lipgloss.NewStyle().
			Reverse(true)

	dimStyle = lipgloss.NewStyle().
			Faint(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	pieceStyles = map[state.PieceState]lipgloss.Style{
		state.PieceComplete:   lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		state.PieceQueued:     lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		state.PieceIncomplete: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
)

const help = "↑/↓ select • tab pane • a add • x remove • p pause/resume • s stream • o open • space toggle • +/- priority • q quit"

func (m Model) View() string {
	b := strings.Builder{}

	b.WriteString(titleStyle.Render("torrenter"))
	b.WriteString("\n\n")

	b.WriteString(m.torrentsView())
	b.WriteString("\n")

	b.WriteString(m.tabsView())
	b.WriteString("\n")

	switch m.tab {
	case TabGeneral:
		b.WriteString(m.generalView())
	case TabFiles:
		b.WriteString(m.filesView())
	case TabPeers:
		b.WriteString(m.peersView())
	case TabPieces:
		b.WriteString(m.piecesView())
	}

	b.WriteString("\n")

	if m.adding {
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}

	if m.status != "" {
		b.WriteString(errorStyle.Render(m.status))
		b.WriteString("\n")
	}

	b.WriteString(dimStyle.Render(help))

	return b.String()
}

func (m Model) torrentsView() string {
	if len(m.snapshot.Torrents) == 0 {
		return dimStyle.Render("No torrents, press a to add one.") + "\n"
	}

	b := strings.Builder{}
	for i, t := range m.snapshot.Torrents {
		line := fmt.Sprintf(
			"%-40.40s %-20s %7s  ↓ %-12s ↑ %-12s %s",
			t.Name,
			t.State,
			format.Percent(t.Progress),
			format.Rate(t.DownloadRate),
			format.Rate(t.UploadRate),
			format.Bytes(t.TotalSize),
		)

		if t.IsStreaming {
			line += " [stream]"
		}

		if i == m.cursor {
			line = selectedStyle.Render(line)
		}

		b.WriteString(line)
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) tabsView() string {
	rendered := make([]string, len(tabs))
	for i, t := range tabs {
		if t == m.tab {
			rendered[i] = activeTabStyle.Render(t.String())
		} else {
			rendered[i] = tabStyle.Render(t.String())
		}
	}

	return lipgloss.JoinHorizontal(lipgloss.Bottom, rendered...)
}

func (m Model) generalView() string {
	t, _, ok := m.torrent()
	if !ok {
		return ""
	}

	rows := [][2]string{
		{"ETA", format.Duration(t.ETA)},
		{"Time Active", fmt.Sprintf("%s (seeding for %s)", format.Duration(t.ActiveDuration), format.Duration(t.SeedingDuration))},
		{"Downloaded", fmt.Sprintf("%s (%s in this session)", format.Bytes(t.TotalDownload), format.Bytes(t.SessionDownload))},
		{"Uploaded", fmt.Sprintf("%s (%s in this session)", format.Bytes(t.TotalUpload), format.Bytes(t.SessionUpload))},
		{"Peers", fmt.Sprintf("%d (%d seeds)", t.NumPeers, t.NumSeeds)},
		{"Reannounce In", format.Duration(t.NextAnnounce)},
		{"Save Path", t.SavePath},
		{"Hash", t.Hash},
		{"Pieces", fmt.Sprintf("%s x %s (have %s)", format.Count(len(t.Pieces)), format.Bytes(t.PieceLength), format.Count(t.PiecesDownloaded))},
		{"Comment", t.Comment},
	}

	b := strings.Builder{}
	for _, r := range rows {
		b.WriteString(fmt.Sprintf("%-15s %s\n", r[0]+":", r[1]))
	}

	return b.String()
}

func (m Model) filesView() string {
	rows := m.fileRows()
	if len(rows.rows) == 0 {
		return dimStyle.Render("No files yet.") + "\n"
	}

	b := strings.Builder{}
	if rows.err != nil {
		b.WriteString(errorStyle.Render("Could not build file tree: " + rows.err.Error()))
		b.WriteString("\n")
	}

	for i, row := range rows.rows {
		check := "[ ]"
		if rows.checked(row) {
			check = "[x]"
		}

		line := strings.Repeat("  ", row.depth) + check + " " + row.name
		if row.isDir {
			line += "/"
		} else if row.pathID >= 0 && row.pathID < len(rows.files) {
			f := rows.files[row.pathID]

			line = fmt.Sprintf("%-60s %-8s %7s %s", line, f.Priority, format.Percent(f.Progress), format.Bytes(f.Size))
		}

		if i == m.fileCursor {
			line = selectedStyle.Render(line)
		}

		b.WriteString(line)
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) peersView() string {
	t, _, ok := m.torrent()
	if !ok || len(t.Peers) == 0 {
		return dimStyle.Render("No peers.") + "\n"
	}

	b := strings.Builder{}
	b.WriteString(fmt.Sprintf("%-40s %-20s %8s %-12s %-12s\n", "Address", "Client", "Progress", "Down", "Up"))
	for _, p := range t.Peers {
		b.WriteString(fmt.Sprintf(
			"%-40.40s %-20.20s %8s %-12s %-12s\n",
			p.IPAddress,
			p.Client,
			format.Percent(p.Progress),
			format.Rate(p.DownloadRate),
			format.Rate(p.UploadRate),
		))
	}

	return b.String()
}

func (m Model) piecesView() string {
	t, _, ok := m.torrent()
	if !ok || len(t.Pieces) == 0 {
		return dimStyle.Render("No pieces yet.") + "\n"
	}

	width := m.width
	if width <= 0 {
		width = 80
	}

	b := strings.Builder{}
	for i, p := range t.Pieces {
		if i > 0 && i%width == 0 {
			b.WriteString("\n")
		}

		b.WriteString(pieceStyles[p].Render("█"))
	}
	b.WriteString("\n")

	return b.String()
}
