package state

import (
	"testing"

	"github.com/pojntfx/torrenter/pkg/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilePriorityLevels(t *testing.T) {
	tests := []struct {
		priority FilePriority
		level    uint8
	}{
		{FilePrioritySkip, 0},
		{FilePriorityLow, 1},
		{FilePriorityDefault, 4},
		{FilePriorityHigh, 7},
	}

	for _, tt := range tests {
		t.Run(tt.priority.String(), func(t *testing.T) {
			assert.Equal(t, tt.level, tt.priority.Level())
			assert.Equal(t, tt.priority, FilePriorityFromLevel(tt.level))
		})
	}
}

func TestFilePriorityFromIntermediateLevel(t *testing.T) {
	assert.Equal(t, FilePriorityLow, FilePriorityFromLevel(2))
	assert.Equal(t, FilePriorityDefault, FilePriorityFromLevel(6))
	assert.Equal(t, FilePriorityHigh, FilePriorityFromLevel(255))
}

func TestParseFilePriority(t *testing.T) {
	p, err := ParseFilePriority(" High ")
	require.NoError(t, err)
	assert.Equal(t, FilePriorityHigh, p)

	_, err = ParseFilePriority("urgent")
	assert.ErrorIs(t, err, ErrUnknownPriority)
}

func TestFilePriorityCycle(t *testing.T) {
	assert.Equal(t, FilePriorityLow, FilePrioritySkip.Next())
	assert.Equal(t, FilePrioritySkip, FilePriorityHigh.Next())
	assert.Equal(t, FilePriorityHigh, FilePrioritySkip.Prev())
	assert.False(t, FilePrioritySkip.Enabled())
	assert.True(t, FilePriorityLow.Enabled())
}

func TestStateFromEngine(t *testing.T) {
	assert.Equal(t, StateDownloading, StateFromEngine(3))
	assert.Equal(t, StateCheckingResumeData, StateFromEngine(7))
	assert.Equal(t, StatePaused, StateFromEngine(engine.PausedState))
	assert.Equal(t, StatePaused, StateFromEngine(8))
	assert.Equal(t, "Seeding", StateSeeding.String())
}

func TestNewTorrent(t *testing.T) {
	torrent := NewTorrent(engine.TorrentInfo{
		Hash:     "abc",
		Name:     "debian.iso",
		Progress: 1.5,
		State:    engine.PausedState,
		Pieces:   []byte{'c', 'i', 'q', 'x'},
	})

	assert.Equal(t, "abc", torrent.Hash)
	assert.Equal(t, 1.0, torrent.Progress)
	assert.Equal(t, StatePaused, torrent.State)
	assert.Equal(t, []PieceState{PieceComplete, PieceIncomplete, PieceQueued, PieceIncomplete}, torrent.Pieces)
	assert.Nil(t, torrent.Peers)
	assert.Nil(t, torrent.Files)
}

func TestCacheSnapshotIsDeepCopy(t *testing.T) {
	c := NewCache()
	c.Replace([]Torrent{{Hash: "a", Pieces: []PieceState{PieceIncomplete}}})
	require.True(t, c.SetFiles(0, []File{{Path: "a.txt", Priority: FilePriorityDefault}}))

	s := c.Snapshot()
	s.Torrents[0].Pieces[0] = PieceComplete
	s.Torrents[0].Files[0].Priority = FilePrioritySkip

	again := c.Snapshot()
	assert.Equal(t, PieceIncomplete, again.Torrents[0].Pieces[0])
	assert.Equal(t, FilePriorityDefault, again.Torrents[0].Files[0].Priority)
}

func TestCacheReplaceTruncatesAndExtends(t *testing.T) {
	c := NewCache()
	c.Replace([]Torrent{{Hash: "a"}, {Hash: "b"}, {Hash: "c"}})
	assert.Equal(t, 3, c.Len())

	c.Replace([]Torrent{{Hash: "a"}})
	assert.Equal(t, 1, c.Len())

	c.Replace([]Torrent{{Hash: "a"}, {}})
	s := c.Snapshot()
	require.Len(t, s.Torrents, 2)
	assert.Equal(t, Torrent{}, s.Torrents[1])
}

func TestCacheReplaceKeepsDetailsOnlyForSameTorrent(t *testing.T) {
	c := NewCache()
	c.Replace([]Torrent{{Hash: "a"}, {Hash: "b"}})
	c.SetPeers(0, []Peer{{IPAddress: "1.2.3.4"}})
	c.SetPeers(1, []Peer{{IPAddress: "5.6.7.8"}})
	c.SetFiles(1, []File{{Path: "b.txt"}})

	// "a" was removed, "b" moved to slot 0 and "c" is new in slot 1.
	c.Replace([]Torrent{{Hash: "b"}, {Hash: "c"}})

	s := c.Snapshot()
	assert.Empty(t, s.Torrents[0].Peers)
	assert.Empty(t, s.Torrents[0].Files)
	assert.Empty(t, s.Torrents[1].Peers)
	assert.Empty(t, s.Torrents[1].Files)

	c.SetPeers(0, []Peer{{IPAddress: "5.6.7.8"}})
	c.Replace([]Torrent{{Hash: "b"}, {Hash: "c"}})

	s = c.Snapshot()
	assert.Equal(t, []Peer{{IPAddress: "5.6.7.8"}}, s.Torrents[0].Peers)
}

func TestCacheStaleWritesAreIgnored(t *testing.T) {
	c := NewCache()
	c.Replace([]Torrent{{Hash: "a"}})
	version := c.Snapshot().Version

	assert.False(t, c.SetPeers(1, []Peer{{}}))
	assert.False(t, c.SetFiles(-1, []File{{}}))

	stale := 4
	assert.False(t, c.SetSelected(&stale))
	assert.Equal(t, version, c.Snapshot().Version)
}

func TestCacheSelection(t *testing.T) {
	c := NewCache()
	c.Replace([]Torrent{{Hash: "a"}, {Hash: "b"}})

	one := 1
	require.True(t, c.SetSelected(&one))
	require.NotNil(t, c.Snapshot().Selected)
	assert.Equal(t, 1, *c.Snapshot().Selected)

	c.Replace([]Torrent{{Hash: "a"}})
	assert.Nil(t, c.Snapshot().Selected)

	zero := 0
	require.True(t, c.SetSelected(&zero))
	require.True(t, c.SetSelected(nil))
	assert.Nil(t, c.Snapshot().Selected)
}
