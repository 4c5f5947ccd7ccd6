package v1

import "time"

type Snapshot struct {
	Version  uint64    `json:"version"`
	Selected *int      `json:"selected,omitempty"`
	Torrents []Torrent `json:"torrents"`
}

type Torrent struct {
	Index    int    `json:"index"`
	Hash     string `json:"hash"`
	Name     string `json:"name"`
	SavePath string `json:"savePath"`
	Comment  string `json:"comment,omitempty"`

	Progress     float64 `json:"progress"`
	DownloadRate int64   `json:"downloadRate"`
	UploadRate   int64   `json:"uploadRate"`
	TotalSize    int64   `json:"totalSize"`
	NumPeers     int     `json:"numPeers"`
	NumSeeds     int     `json:"numSeeds"`

	State       string `json:"state"`
	Paused      bool   `json:"paused"`
	Pieces      string `json:"pieces"`
	IsStreaming bool   `json:"isStreaming"`

	PieceLength      int64 `json:"pieceLength"`
	PiecesDownloaded int   `json:"piecesDownloaded"`

	ActiveSeconds   int64 `json:"activeSeconds"`
	SeedingSeconds  int64 `json:"seedingSeconds"`
	ETASeconds      int64 `json:"etaSeconds"`
	TotalDownload   int64 `json:"totalDownload"`
	TotalUpload     int64 `json:"totalUpload"`
	SessionDownload int64 `json:"sessionDownload"`
	SessionUpload   int64 `json:"sessionUpload"`

	Files []File `json:"files,omitempty"`
	Peers []Peer `json:"peers,omitempty"`
}

type File struct {
	Index    int     `json:"index"`
	Path     string  `json:"path"`
	Priority string  `json:"priority"`
	Size     int64   `json:"size"`
	Progress float64 `json:"progress"`
}

type Peer struct {
	IPAddress    string  `json:"ipAddress"`
	Client       string  `json:"client"`
	Progress     float64 `json:"progress"`
	DownloadRate int64   `json:"downloadRate"`
	UploadRate   int64   `json:"uploadRate"`
}

type AddTorrent struct {
	Source string `json:"source"`
	Kind   string `json:"kind,omitempty"`
}

type FilePriority struct {
	Priority string `json:"priority"`
}

type Failure struct {
	Time    time.Time `json:"time"`
	Op      string    `json:"op"`
	Index   int       `json:"index"`
	Message string    `json:"message"`
}

type Stream struct {
	Index     int    `json:"index"`
	FileIndex int    `json:"fileIndex"`
	Name      string `json:"name"`
	Remote    string `json:"remote"`
}
