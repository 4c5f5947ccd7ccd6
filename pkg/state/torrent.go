package state

import (
	"time"

	"github.com/pojntfx/torrenter/pkg/engine"
)

type TorrentState int

const (
	StateQueuedForChecking TorrentState = iota
	StateCheckingFiles
	StateDownloadingMetadata
	StateDownloading
	StateFinished
	StateSeeding
	StateAllocating
	StateCheckingResumeData
	StatePaused
)

// StateFromEngine maps an engine state value; anything outside 0..7 is paused.
func StateFromEngine(v int) TorrentState {
	if v < int(StateQueuedForChecking) || v > int(StateCheckingResumeData) {
		return StatePaused
	}

	return TorrentState(v)
}

func (s TorrentState) String() string {
	switch s {
	case StateQueuedForChecking:
		return "Queued for checking"
	case StateCheckingFiles:
		return "Checking files"
	case StateDownloadingMetadata:
		return "Downloading metadata"
	case StateDownloading:
		return "Downloading"
	case StateFinished:
		return "Finished"
	case StateSeeding:
		return "Seeding"
	case StateAllocating:
		return "Allocating"
	case StateCheckingResumeData:
		return "Checking resume data"
	default:
		return "Paused"
	}
}

type PieceState byte

const (
	PieceComplete   PieceState = 'c'
	PieceIncomplete PieceState = 'i'
	PieceQueued     PieceState = 'q'
)

func PieceStateFromByte(b byte) PieceState {
	switch PieceState(b) {
	case PieceComplete, PieceQueued:
		return PieceState(b)
	default:
		return PieceIncomplete
	}
}

type Peer struct {
	IPAddress    string
	Client       string
	Progress     float64
	DownloadRate int64
	UploadRate   int64
}

type File struct {
	Path     string
	Priority FilePriority
	Size     int64
	Progress float64
}

type Torrent struct {
	Hash     string
	Name     string
	SavePath string
	Comment  string

	Progress     float64
	DownloadRate int64
	UploadRate   int64
	TotalSize    int64
	NumPeers     int
	NumSeeds     int

	State       TorrentState
	Pieces      []PieceState
	IsStreaming bool

	PieceLength      int64
	PiecesDownloaded int

	ActiveDuration  time.Duration
	SeedingDuration time.Duration
	NextAnnounce    time.Duration
	ETA             time.Duration

	TotalDownload   int64
	TotalUpload     int64
	SessionDownload int64
	SessionUpload   int64

	Files []File
	Peers []Peer
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

func NewTorrent(info engine.TorrentInfo) Torrent {
	pieces := make([]PieceState, len(info.Pieces))
	for i, b := range info.Pieces {
		pieces[i] = PieceStateFromByte(b)
	}

	return Torrent{
		Hash:     info.Hash,
		Name:     info.Name,
		SavePath: info.SavePath,
		Comment:  info.Comment,

		Progress:     clamp(info.Progress),
		DownloadRate: info.DownloadRate,
		UploadRate:   info.UploadRate,
		TotalSize:    info.TotalSize,
		NumPeers:     info.NumPeers,
		NumSeeds:     info.NumSeeds,

		State:       StateFromEngine(info.State),
		Pieces:      pieces,
		IsStreaming: info.IsStreaming,

		PieceLength:      info.PieceLength,
		PiecesDownloaded: info.PiecesDownloaded,

		ActiveDuration:  info.ActiveDuration,
		SeedingDuration: info.SeedingDuration,
		NextAnnounce:    info.NextAnnounce,
		ETA:             info.ETA,

		TotalDownload:   info.TotalDownload,
		TotalUpload:     info.TotalUpload,
		SessionDownload: info.SessionDownload,
		SessionUpload:   info.SessionUpload,
	}
}

func NewPeers(peers []engine.PeerInfo) []Peer {
	out := make([]Peer, len(peers))
	for i, p := range peers {
		out[i] = Peer{
			IPAddress:    p.IPAddress,
			Client:       p.Client,
			Progress:     clamp(p.Progress),
			DownloadRate: p.DownloadRate,
			UploadRate:   p.UploadRate,
		}
	}

	return out
}

func NewFiles(files []engine.FileInfo) []File {
	out := make([]File, len(files))
	for i, f := range files {
		out[i] = File{
			Path:     f.Path,
			Priority: FilePriorityFromLevel(f.Priority),
			Size:     f.Size,
			Progress: clamp(f.Progress),
		}
	}

	return out
}

// Clone returns a deep copy that shares no slices with t.
func (t Torrent) Clone() Torrent {
	c := t

	if t.Pieces != nil {
		c.Pieces = append([]PieceState(nil), t.Pieces...)
	}

	if t.Files != nil {
		c.Files = append([]File(nil), t.Files...)
	}

	if t.Peers != nil {
		c.Peers = append([]Peer(nil), t.Peers...)
	}

	return c
}
