package coordinator

import (
	"github.com/pojntfx/torrenter/pkg/engine"
	"github.com/pojntfx/torrenter/pkg/state"
)

// Command is a message processed by the coordinator.
type Command interface {
	name() string
}

type Stop struct{}

type Refresh struct{}

type ForcedRefresh struct{}

type AddTorrent struct {
	Source string
	Kind   engine.AddKind
}

type RemoveTorrent struct {
	Index int
}

// UpdateState pauses the torrent unless State is paused, in which case it resumes it.
type UpdateState struct {
	State state.TorrentState
	Index int
}

func Pause(index int) UpdateState {
	return UpdateState{State: state.StateDownloading, Index: index}
}

func Resume(index int) UpdateState {
	return UpdateState{State: state.StatePaused, Index: index}
}

type ToggleStreamMode struct {
	Index int
}

type UpdateFilePriority struct {
	Index     int
	FileIndex int
	Priority  state.FilePriority
}

type FetchPeers struct {
	Index int
}

type FetchFiles struct {
	Index int
}

type OpenDir struct {
	Path string
}

type UpdateSelTorrent struct {
	Index *int
}

type StreamResult struct {
	Stream engine.Stream
	Err    error
}

// OpenStream opens a file of a torrent for reading. Without Done, Reply must be
// buffered and a result that can't be delivered is closed. With Done, the
// result is handed over on Reply unless Done closes first, in which case the
// stream is closed or never opened.
type OpenStream struct {
	Index     int
	FileIndex int
	Reply     chan<- StreamResult
	Done      <-chan struct{}
}

func (Stop) name() string               { return "stop" }
func (Refresh) name() string            { return "refresh" }
func (ForcedRefresh) name() string      { return "forced_refresh" }
func (AddTorrent) name() string         { return "add_torrent" }
func (RemoveTorrent) name() string      { return "remove_torrent" }
func (UpdateState) name() string        { return "update_state" }
func (ToggleStreamMode) name() string   { return "toggle_stream_mode" }
func (UpdateFilePriority) name() string { return "update_file_priority" }
func (FetchPeers) name() string         { return "fetch_peers" }
func (FetchFiles) name() string         { return "fetch_files" }
func (OpenDir) name() string            { return "open_dir" }
func (UpdateSelTorrent) name() string   { return "update_sel_torrent" }
func (OpenStream) name() string         { return "open_stream" }
