package engine

import (
	"errors"
	"io"
	"time"
)

// PausedState is the engine state value of a paused torrent.
const PausedState = -1

var (
	ErrNotStreamable = errors.New("engine can not stream files")
)

type AddKind int

const (
	AddKindFile AddKind = iota
	AddKindMagnetURL
)

func (k AddKind) String() string {
	switch k {
	case AddKindFile:
		return "file"
	case AddKindMagnetURL:
		return "magnet"
	default:
		return "unknown"
	}
}

type TorrentInfo struct {
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

	State       int
	Pieces      []byte
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
}

type PeerInfo struct {
	IPAddress    string
	Client       string
	Progress     float64
	DownloadRate int64
	UploadRate   int64
}

type FileInfo struct {
	Path     string
	Priority uint8
	Size     int64
	Progress float64
}

// Engine is the synchronous torrent engine boundary. Implementations are not
// required to be safe for concurrent use; torrents are addressed by their
// index in [0, Count()).
type Engine interface {
	Init(resumeDir string) error
	Shutdown() error

	// Pump processes the engine's pending events and must be called before Info.
	Pump()
	Count() int
	Info(index int) TorrentInfo

	Add(source string, downloadsDir string, kind AddKind) (string, error)
	Remove(index int) bool
	Pause(index int) bool
	Resume(index int) bool
	ToggleStream(index int) bool
	SetFilePriority(index int, fileIndex int, level uint8) bool

	Peers(index int) []PeerInfo
	Files(index int) []FileInfo
}

type Stream interface {
	io.ReadSeekCloser

	Name() string
	ModTime() time.Time
}

// Streamer is implemented by engines that can read a file while it downloads.
type Streamer interface {
	OpenFile(index int, fileIndex int) (Stream, error)
}
