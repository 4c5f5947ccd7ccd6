package anacrolix

import (
	"github.com/anacrolix/torrent"
	"github.com/pojntfx/torrenter/pkg/engine"
)

const (
	stateCheckingFiles       = 1
	stateDownloadingMetadata = 2
	stateDownloading         = 3
	stateFinished            = 4
	stateSeeding             = 5

	levelDefault uint8 = 4
	levelHigh    uint8 = 7

	// Number of incomplete pieces kept at high priority while streaming.
	sequentialPieces = 16
)

// priorityForLevel maps an engine priority level onto anacrolix's scale,
// which has nothing below normal: low and default both download normally.
func priorityForLevel(level uint8) torrent.PiecePriority {
	switch {
	case level == 0:
		return torrent.PiecePriorityNone
	case level >= levelHigh:
		return torrent.PiecePriorityHigh
	default:
		return torrent.PiecePriorityNormal
	}
}

type status struct {
	paused     bool
	gotInfo    bool
	checking   bool
	wantedDone bool
	allDone    bool
	seeding    bool
}

func deriveState(s status) int {
	switch {
	case s.paused:
		return engine.PausedState
	case !s.gotInfo:
		return stateDownloadingMetadata
	case s.checking:
		return stateCheckingFiles
	case s.allDone && s.seeding:
		return stateSeeding
	case s.wantedDone:
		return stateFinished
	default:
		return stateDownloading
	}
}

func pieceByte(ps torrent.PieceState) byte {
	switch {
	case ps.Complete:
		return 'c'
	case ps.Partial:
		return 'q'
	default:
		return 'i'
	}
}

// streamWindow returns the pieces at the head and the tail of a torrent that
// are needed before playback can start: the first and last 1%, at least one each.
func streamWindow(numPieces int) []int {
	if numPieces <= 0 {
		return []int{}
	}

	n := numPieces / 100
	if n < 1 {
		n = 1
	}

	pieces := []int{}
	seen := map[int]struct{}{}
	add := func(i int) {
		if _, ok := seen[i]; ok {
			return
		}

		seen[i] = struct{}{}
		pieces = append(pieces, i)
	}

	for i := 0; i < n && i < numPieces; i++ {
		add(i)
	}

	for i := numPieces - n; i < numPieces; i++ {
		if i >= 0 {
			add(i)
		}
	}

	return pieces
}

// sequentialWindow returns the first size pieces, in order, that skip does
// not exclude.
func sequentialWindow(numPieces int, size int, skip func(piece int) bool) []int {
	pieces := []int{}
	for i := 0; i < numPieces && len(pieces) < size; i++ {
		if skip(i) {
			continue
		}

		pieces = append(pieces, i)
	}

	return pieces
}

func ratio(done, total int64) float64 {
	if total <= 0 {
		return 0
	}

	return float64(done) / float64(total)
}
