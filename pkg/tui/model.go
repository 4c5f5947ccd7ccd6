package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pojntfx/torrenter/pkg/coordinator"
	"github.com/pojntfx/torrenter/pkg/state"
	"github.com/rs/zerolog/log"
)

// FrameInterval is how often the UI asks for a refresh and redraws.
const FrameInterval = 100 * time.Millisecond

type Tab int

const (
	TabGeneral Tab = iota
	TabFiles
	TabPeers
	TabPieces
)

var tabs = []Tab{TabGeneral, TabFiles, TabPeers, TabPieces}

func (t Tab) String() string {
	switch t {
	case TabGeneral:
		return "General"
	case TabFiles:
		return "Files"
	case TabPeers:
		return "Peers"
	default:
		return "Pieces"
	}
}

type tickMsg time.Time

type failureMsg struct {
	err error
}

type doneMsg struct{}

// Model renders the latest cache snapshot and turns key presses into commands.
// It never calls the engine.
type Model struct {
	bus      *coordinator.Bus
	cache    *state.Cache
	failures <-chan error
	done     <-chan struct{}

	snapshot state.Snapshot

	cursor     int
	tab        Tab
	fileCursor int

	// Last selection sent to the coordinator, -1 for none.
	selection int

	adding bool
	input  textinput.Model

	status   string
	quitting bool

	width  int
	height int
}

func NewModel(
	bus *coordinator.Bus,
	cache *state.Cache,
	failures <-chan error,
	done <-chan struct{},
) Model {
	input := textinput.New()
	input.Placeholder = "magnet:?xt=urn:btih:... or /path/to/file.torrent"
	input.Prompt = "Add: "
	input.CharLimit = 4096

	return Model{
		bus:      bus,
		cache:    cache,
		failures: failures,
		done:     done,

		snapshot: cache.Snapshot(),

		selection: -1,

		input: input,
	}
}

func tick() tea.Cmd {
	return tea.Tick(FrameInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func waitForFailure(failures <-chan error) tea.Cmd {
	if failures == nil {
		return nil
	}

	return func() tea.Msg {
		err, ok := <-failures
		if !ok {
			return nil
		}

		return failureMsg{err}
	}
}

func waitForDone(done <-chan struct{}) tea.Cmd {
	if done == nil {
		return nil
	}

	return func() tea.Msg {
		<-done

		return doneMsg{}
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tick(),
		waitForFailure(m.failures),
		waitForDone(m.done),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		return m, nil

	case tickMsg:
		m.frame()

		return m, tick()

	case failureMsg:
		m.status = msg.err.Error()

		return m, waitForFailure(m.failures)

	case doneMsg:
		return m, tea.Quit

	case tea.KeyMsg:
		cmd := m.handleKey(msg)

		return m, cmd
	}

	if m.adding {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)

		return m, cmd
	}

	return m, nil
}

// frame runs once per tick: it requests a refresh, keeps the details of the
// visible tab current and picks up the latest snapshot.
func (m *Model) frame() {
	cmds := []coordinator.Command{coordinator.Refresh{}}

	if index, ok := m.selected(); ok {
		switch m.tab {
		case TabFiles:
			cmds = append(cmds, coordinator.FetchFiles{Index: index})
		case TabPeers:
			cmds = append(cmds, coordinator.FetchPeers{Index: index})
		}
	}

	m.send(cmds...)

	m.snapshot = m.cache.Snapshot()
	m.clamp()
	m.syncSelection()
}

func (m *Model) clamp() {
	if m.cursor >= len(m.snapshot.Torrents) {
		m.cursor = len(m.snapshot.Torrents) - 1
	}

	if m.cursor < 0 {
		m.cursor = 0
	}

	if rows := m.fileRows(); m.fileCursor >= len(rows.rows) {
		m.fileCursor = max(len(rows.rows)-1, 0)
	}
}

// syncSelection sends UpdateSelTorrent if the cursor moved since the last one.
func (m *Model) syncSelection() {
	selection := -1
	if index, ok := m.selected(); ok {
		selection = index
	}

	if selection == m.selection {
		return
	}

	m.selection = selection

	if selection < 0 {
		m.send(coordinator.UpdateSelTorrent{Index: nil})

		return
	}

	m.send(coordinator.UpdateSelTorrent{Index: &selection})
}

func (m *Model) selected() (int, bool) {
	if m.cursor < 0 || m.cursor >= len(m.snapshot.Torrents) {
		return 0, false
	}

	return m.cursor, true
}

func (m *Model) torrent() (state.Torrent, int, bool) {
	index, ok := m.selected()
	if !ok {
		return state.Torrent{}, 0, false
	}

	return m.snapshot.Torrents[index], index, true
}

func (m *Model) send(cmds ...coordinator.Command) {
	if err := m.bus.SendAll(cmds...); err != nil {
		log.Trace().
			Err(err).
			Msg("Could not send commands")
	}
}
