package server

import (
	v1 "github.com/pojntfx/torrenter/pkg/api/http/v1"
	"github.com/pojntfx/torrenter/pkg/state"
)

func toTorrent(index int, t state.Torrent) v1.Torrent {
	pieces := make([]byte, len(t.Pieces))
	for i, p := range t.Pieces {
		pieces[i] = byte(p)
	}

	res := v1.Torrent{
		Index:    index,
		Hash:     t.Hash,
		Name:     t.Name,
		SavePath: t.SavePath,
		Comment:  t.Comment,

		Progress:     t.Progress,
		DownloadRate: t.DownloadRate,
		UploadRate:   t.UploadRate,
		TotalSize:    t.TotalSize,
		NumPeers:     t.NumPeers,
		NumSeeds:     t.NumSeeds,

		State:       t.State.String(),
		Paused:      t.State == state.StatePaused,
		Pieces:      string(pieces),
		IsStreaming: t.IsStreaming,

		PieceLength:      t.PieceLength,
		PiecesDownloaded: t.PiecesDownloaded,

		ActiveSeconds:   int64(t.ActiveDuration.Seconds()),
		SeedingSeconds:  int64(t.SeedingDuration.Seconds()),
		ETASeconds:      int64(t.ETA.Seconds()),
		TotalDownload:   t.TotalDownload,
		TotalUpload:     t.TotalUpload,
		SessionDownload: t.SessionDownload,
		SessionUpload:   t.SessionUpload,
	}

	for i, f := range t.Files {
		res.Files = append(res.Files, v1.File{
			Index:    i,
			Path:     f.Path,
			Priority: f.Priority.String(),
			Size:     f.Size,
			Progress: f.Progress,
		})
	}

	for _, p := range t.Peers {
		res.Peers = append(res.Peers, v1.Peer{
			IPAddress:    p.IPAddress,
			Client:       p.Client,
			Progress:     p.Progress,
			DownloadRate: p.DownloadRate,
			UploadRate:   p.UploadRate,
		})
	}

	return res
}
