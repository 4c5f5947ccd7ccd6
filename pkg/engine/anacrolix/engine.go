package anacrolix

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/anacrolix/torrent"
	"github.com/anacrolix/torrent/metainfo"
	"github.com/anacrolix/torrent/storage"
	"github.com/phayes/freeport"
	"github.com/pojntfx/torrenter/pkg/engine"
	"github.com/rs/zerolog/log"
)

var (
	ErrNotInitialized   = errors.New("engine is not initialized")
	ErrDuplicateTorrent = errors.New("torrent is already added")
	ErrUnknownKind      = errors.New("unknown torrent source kind")
	ErrNoMetadata       = errors.New("torrent metadata is not available yet")
	ErrUnknownFile      = errors.New("unknown file index")
)

type handle struct {
	t      *torrent.Torrent
	record *record

	applied bool

	// Pieces raised by the sequential window of stream mode.
	sequential []int

	activeSince  time.Time
	seedingSince time.Time

	settledRead    int64
	settledWritten int64

	sampledAt    time.Time
	bytesRead    int64
	bytesWritten int64
	downloadRate int64
	uploadRate   int64
}

// Engine implements engine.Engine on top of an anacrolix torrent client.
// Torrents keep the order in which they were added.
type Engine struct {
	listenPort int

	client     *torrent.Client
	completion storage.PieceCompletion
	storages   map[string]storage.ClientImpl
	store      *store
	handles    []*handle

	now func() time.Time
}

// NewEngine creates an engine; a listenPort of 0 picks a free port.
func NewEngine(listenPort int) *Engine {
	return &Engine{
		listenPort: listenPort,
		storages:   map[string]storage.ClientImpl{},
		now:        time.Now,
	}
}

func (e *Engine) Init(resumeDir string) error {
	log.Trace().
		Str("resumeDir", resumeDir).
		Msg("Initializing engine")

	s, err := newStore(resumeDir)
	if err != nil {
		return err
	}
	e.store = s

	completion, err := storage.NewDefaultPieceCompletionForDir(resumeDir)
	if err != nil {
		return err
	}
	e.completion = completion

	cfg := torrent.NewDefaultClientConfig()
	cfg.DataDir = resumeDir
	cfg.Seed = true

	port := e.listenPort
	if port == 0 {
		port, err = freeport.GetFreePort()
		if err != nil {
			return err
		}
	}
	cfg.ListenPort = port

	c, err := torrent.NewClient(cfg)
	if err != nil {
		return err
	}
	e.client = c

	records, err := e.store.List()
	if err != nil {
		return err
	}

	for _, r := range records {
		if err := e.restore(r); err != nil {
			log.Warn().
				Err(err).
				Str("hash", r.InfoHash).
				Msg("Could not restore torrent, skipping")
		}
	}

	log.Debug().
		Int("port", port).
		Int("torrents", len(e.handles)).
		Msg("Engine initialized")

	return nil
}

func (e *Engine) restore(r *record) error {
	var (
		spec *torrent.TorrentSpec
		err  error
	)
	if len(r.Metainfo) > 0 {
		mi, err := metainfo.Load(bytes.NewReader(r.Metainfo))
		if err != nil {
			return err
		}

		spec, err = torrent.TorrentSpecFromMetaInfoErr(mi)
		if err != nil {
			return err
		}
	} else {
		spec, err = torrent.TorrentSpecFromMagnetUri(r.Magnet)
		if err != nil {
			return err
		}
	}

	_, err = e.add(spec, r)

	return err
}

func (e *Engine) Shutdown() error {
	log.Trace().Msg("Shutting down engine")

	if e.client == nil {
		return nil
	}

	now := e.now()
	for _, h := range e.handles {
		e.settle(h, now)

		if err := e.store.Save(h.record); err != nil {
			log.Warn().
				Err(err).
				Str("hash", h.record.InfoHash).
				Msg("Could not save resume record")
		}
	}

	var errs []error
	for _, err := range e.client.Close() {
		if err != nil {
			errs = append(errs, err)
		}
	}

	if err := e.completion.Close(); err != nil {
		errs = append(errs, err)
	}

	e.client = nil
	e.handles = nil

	return errors.Join(errs...)
}

// settle folds the session's counters and durations into the resume record.
func (e *Engine) settle(h *handle, now time.Time) {
	stats := h.t.Stats()
	read := stats.BytesReadUsefulData.Int64()
	written := stats.BytesWrittenData.Int64()

	h.record.Downloaded += read - h.settledRead
	h.record.Uploaded += written - h.settledWritten
	h.settledRead = read
	h.settledWritten = written

	if !h.activeSince.IsZero() {
		h.record.ActiveSeconds += int64(now.Sub(h.activeSince).Seconds())
		h.activeSince = time.Time{}
	}

	if !h.seedingSince.IsZero() {
		h.record.SeedingSeconds += int64(now.Sub(h.seedingSince).Seconds())
		h.seedingSince = time.Time{}
	}
}

func gotInfo(t *torrent.Torrent) bool {
	select {
	case <-t.GotInfo():
		return true
	default:
		return false
	}
}

func (e *Engine) Pump() {
	if e.client == nil {
		return
	}

	now := e.now()
	for _, h := range e.handles {
		if !h.applied && gotInfo(h.t) {
			e.apply(h)
		}

		if h.applied && h.record.Streaming && !h.record.Paused {
			e.advanceStream(h)
		}

		e.sample(h, now)

		done := h.applied && e.allDone(h)
		switch {
		case done && h.seedingSince.IsZero() && !h.record.Paused:
			h.seedingSince = now
		case (!done || h.record.Paused) && !h.seedingSince.IsZero():
			h.record.SeedingSeconds += int64(now.Sub(h.seedingSince).Seconds())
			h.seedingSince = time.Time{}
		}
	}
}

// apply pushes the recorded settings into a torrent once its metadata is known.
func (e *Engine) apply(h *handle) {
	files := h.t.Files()
	if len(h.record.FilePriorities) != len(files) {
		h.record.FilePriorities = make([]uint8, len(files))
		for i := range h.record.FilePriorities {
			h.record.FilePriorities[i] = levelDefault
		}
	}

	for i, f := range files {
		f.SetPriority(priorityForLevel(h.record.FilePriorities[i]))
	}

	if h.record.Streaming {
		e.setStreamPriorities(h, true)
	}

	if len(h.record.Metainfo) == 0 {
		var buf bytes.Buffer
		if err := h.t.Metainfo().Write(&buf); err == nil {
			h.record.Metainfo = buf.Bytes()
		}
	}

	h.applied = true

	e.save(h)

	log.Debug().
		Str("hash", h.record.InfoHash).
		Int("files", len(files)).
		Msg("Got torrent metadata")
}

func (e *Engine) sample(h *handle, now time.Time) {
	stats := h.t.Stats()
	read := stats.BytesReadUsefulData.Int64()
	written := stats.BytesWrittenData.Int64()

	if !h.sampledAt.IsZero() {
		if dt := now.Sub(h.sampledAt).Seconds(); dt > 0 {
			h.downloadRate = int64(float64(read-h.bytesRead) / dt)
			h.uploadRate = int64(float64(written-h.bytesWritten) / dt)
		}
	}

	if h.downloadRate < 0 {
		h.downloadRate = 0
	}

	if h.uploadRate < 0 {
		h.uploadRate = 0
	}

	h.sampledAt = now
	h.bytesRead = read
	h.bytesWritten = written
}

func (e *Engine) save(h *handle) {
	if err := e.store.Save(h.record); err != nil {
		log.Warn().
			Err(err).
			Str("hash", h.record.InfoHash).
			Msg("Could not save resume record")
	}
}

func (e *Engine) at(index int) (*handle, bool) {
	if index < 0 || index >= len(e.handles) {
		return nil, false
	}

	return e.handles[index], true
}

func (e *Engine) Count() int {
	return len(e.handles)
}

func (e *Engine) Add(source string, downloadsDir string, kind engine.AddKind) (string, error) {
	if e.client == nil {
		return "", ErrNotInitialized
	}

	r := &record{
		SavePath: downloadsDir,
		AddedAt:  e.now(),
	}

	var spec *torrent.TorrentSpec
	switch kind {
	case engine.AddKindMagnetURL:
		s, err := torrent.TorrentSpecFromMagnetUri(source)
		if err != nil {
			return "", err
		}

		spec = s
		r.Magnet = source

	case engine.AddKindFile:
		mi, err := metainfo.LoadFromFile(source)
		if err != nil {
			return "", err
		}

		s, err := torrent.TorrentSpecFromMetaInfoErr(mi)
		if err != nil {
			return "", err
		}

		var buf bytes.Buffer
		if err := mi.Write(&buf); err != nil {
			return "", err
		}

		spec = s
		r.Metainfo = buf.Bytes()

	default:
		return "", ErrUnknownKind
	}

	return e.add(spec, r)
}

func (e *Engine) add(spec *torrent.TorrentSpec, r *record) (string, error) {
	hash := spec.InfoHash.HexString()
	for _, h := range e.handles {
		if h.record.InfoHash == hash {
			return hash, ErrDuplicateTorrent
		}
	}

	if err := os.MkdirAll(r.SavePath, 0o755); err != nil {
		return "", err
	}

	spec.Storage = e.storageFor(r.SavePath)

	t, _, err := e.client.AddTorrentSpec(spec)
	if err != nil {
		return "", err
	}

	r.InfoHash = hash

	h := &handle{
		t:      t,
		record: r,
	}
	if r.Paused {
		t.DisallowDataDownload()
		t.DisallowDataUpload()
	} else {
		h.activeSince = e.now()
	}

	e.handles = append(e.handles, h)

	if gotInfo(t) {
		e.apply(h)
	} else {
		e.save(h)
	}

	log.Debug().
		Str("hash", hash).
		Str("savePath", r.SavePath).
		Msg("Added torrent")

	return hash, nil
}

func (e *Engine) storageFor(savePath string) storage.ClientImpl {
	if s, ok := e.storages[savePath]; ok {
		return s
	}

	s := storage.NewFileWithCompletion(savePath, e.completion)
	e.storages[savePath] = s

	return s
}

func (e *Engine) Remove(index int) bool {
	h, ok := e.at(index)
	if !ok {
		return false
	}

	h.t.Drop()

	if err := e.store.Delete(h.record.InfoHash); err != nil {
		log.Warn().
			Err(err).
			Str("hash", h.record.InfoHash).
			Msg("Could not delete resume record")
	}

	e.handles = append(e.handles[:index], e.handles[index+1:]...)

	return true
}

func (e *Engine) Pause(index int) bool {
	h, ok := e.at(index)
	if !ok {
		return false
	}

	h.t.DisallowDataDownload()
	h.t.DisallowDataUpload()

	if !h.record.Paused {
		e.settle(h, e.now())

		h.record.Paused = true
		e.save(h)
	}

	return true
}

func (e *Engine) Resume(index int) bool {
	h, ok := e.at(index)
	if !ok {
		return false
	}

	h.t.AllowDataUpload()
	h.t.AllowDataDownload()

	if h.record.Paused {
		h.record.Paused = false
		h.activeSince = e.now()
		e.save(h)
	}

	return true
}

func (e *Engine) ToggleStream(index int) bool {
	h, ok := e.at(index)
	if !ok || !h.applied {
		return false
	}

	h.record.Streaming = !h.record.Streaming
	e.setStreamPriorities(h, h.record.Streaming)
	e.save(h)

	return true
}

func (e *Engine) setStreamPriorities(h *handle, on bool) {
	if on {
		for _, i := range streamWindow(h.t.NumPieces()) {
			h.t.Piece(i).SetPriority(torrent.PiecePriorityNow)
		}

		e.advanceStream(h)

		return
	}

	for _, i := range h.sequential {
		h.t.Piece(i).SetPriority(torrent.PiecePriorityNone)
	}
	h.sequential = nil

	for _, i := range streamWindow(h.t.NumPieces()) {
		h.t.Piece(i).SetPriority(torrent.PiecePriorityNone)
	}

	for i, f := range h.t.Files() {
		f.SetPriority(priorityForLevel(h.record.FilePriorities[i]))
	}
}

// advanceStream moves the sequential window to the next incomplete pieces of
// the wanted files so that a streaming torrent downloads front to back.
func (e *Engine) advanceStream(h *handle) {
	numPieces := h.t.NumPieces()

	wanted := make([]bool, numPieces)
	for i, f := range h.t.Files() {
		if i < len(h.record.FilePriorities) && h.record.FilePriorities[i] == 0 {
			continue
		}

		for p := f.BeginPieceIndex(); p < f.EndPieceIndex() && p < numPieces; p++ {
			wanted[p] = true
		}
	}

	next := sequentialWindow(numPieces, sequentialPieces, func(piece int) bool {
		return !wanted[piece] || h.t.PieceState(piece).Complete
	})

	pinned := map[int]struct{}{}
	for _, i := range streamWindow(numPieces) {
		pinned[i] = struct{}{}
	}

	raised := map[int]struct{}{}
	for _, i := range h.sequential {
		raised[i] = struct{}{}
	}

	keep := map[int]struct{}{}
	for _, i := range next {
		keep[i] = struct{}{}

		if _, ok := pinned[i]; ok {
			continue
		}

		if _, ok := raised[i]; !ok {
			h.t.Piece(i).SetPriority(torrent.PiecePriorityHigh)
		}
	}

	for _, i := range h.sequential {
		if _, ok := keep[i]; ok {
			continue
		}

		if _, ok := pinned[i]; ok {
			continue
		}

		h.t.Piece(i).SetPriority(torrent.PiecePriorityNone)
	}

	h.sequential = next
}

func (e *Engine) SetFilePriority(index int, fileIndex int, level uint8) bool {
	h, ok := e.at(index)
	if !ok || !h.applied {
		return false
	}

	files := h.t.Files()
	if fileIndex < 0 || fileIndex >= len(files) {
		return false
	}

	files[fileIndex].SetPriority(priorityForLevel(level))

	h.record.FilePriorities[fileIndex] = level
	e.save(h)

	return true
}

func (e *Engine) allDone(h *handle) bool {
	for _, f := range h.t.Files() {
		if f.BytesCompleted() < f.Length() {
			return false
		}
	}

	return true
}

func (e *Engine) wantedDone(h *handle) bool {
	for i, f := range h.t.Files() {
		if i < len(h.record.FilePriorities) && h.record.FilePriorities[i] == 0 {
			continue
		}

		if f.BytesCompleted() < f.Length() {
			return false
		}
	}

	return true
}

func (e *Engine) Info(index int) engine.TorrentInfo {
	h, ok := e.at(index)
	if !ok {
		return engine.TorrentInfo{State: engine.PausedState}
	}

	now := e.now()
	stats := h.t.Stats()

	info := engine.TorrentInfo{
		Hash:     h.record.InfoHash,
		Name:     h.t.Name(),
		SavePath: h.record.SavePath,

		DownloadRate: h.downloadRate,
		UploadRate:   h.uploadRate,
		NumPeers:     stats.ActivePeers,
		NumSeeds:     stats.ConnectedSeeders,

		IsStreaming: h.record.Streaming,

		ActiveDuration:  time.Duration(h.record.ActiveSeconds) * time.Second,
		SeedingDuration: time.Duration(h.record.SeedingSeconds) * time.Second,

		SessionDownload: stats.BytesReadUsefulData.Int64(),
		SessionUpload:   stats.BytesWrittenData.Int64(),
	}
	info.TotalDownload = h.record.Downloaded + info.SessionDownload - h.settledRead
	info.TotalUpload = h.record.Uploaded + info.SessionUpload - h.settledWritten

	if !h.activeSince.IsZero() {
		info.ActiveDuration += now.Sub(h.activeSince)
	}

	if !h.seedingSince.IsZero() {
		info.SeedingDuration += now.Sub(h.seedingSince)
	}

	s := status{
		paused:  h.record.Paused,
		gotInfo: h.applied,
		seeding: true,
	}

	if h.applied {
		info.Comment = h.t.Metainfo().Comment
		info.TotalSize = h.t.Length()
		info.PieceLength = h.t.Info().PieceLength

		completed := h.t.BytesCompleted()
		info.Progress = ratio(completed, info.TotalSize)

		if remaining := info.TotalSize - completed; remaining > 0 && h.downloadRate > 0 {
			info.ETA = time.Duration(remaining/h.downloadRate) * time.Second
		}

		n := h.t.NumPieces()
		info.Pieces = make([]byte, n)
		for i := 0; i < n; i++ {
			ps := h.t.PieceState(i)

			info.Pieces[i] = pieceByte(ps)
			if ps.Complete {
				info.PiecesDownloaded++
			}
			if ps.Checking {
				s.checking = true
			}
		}

		s.allDone = e.allDone(h)
		s.wantedDone = s.allDone || e.wantedDone(h)
	}

	info.State = deriveState(s)

	return info
}

func (e *Engine) Peers(index int) []engine.PeerInfo {
	h, ok := e.at(index)
	if !ok {
		return []engine.PeerInfo{}
	}

	numPieces := 0
	if h.applied {
		numPieces = h.t.NumPieces()
	}

	peers := []engine.PeerInfo{}
	for _, pc := range h.t.PeerConns() {
		stats := pc.Stats()

		client, _ := pc.PeerClientName.Load().(string)

		peers = append(peers, engine.PeerInfo{
			IPAddress:    pc.RemoteAddr.String(),
			Client:       client,
			Progress:     ratio(int64(stats.RemotePieceCount), int64(numPieces)),
			DownloadRate: int64(stats.DownloadRate),
			UploadRate:   int64(stats.LastWriteUploadRate),
		})
	}

	return peers
}

func (e *Engine) Files(index int) []engine.FileInfo {
	h, ok := e.at(index)
	if !ok || !h.applied {
		return []engine.FileInfo{}
	}

	files := []engine.FileInfo{}
	for i, f := range h.t.Files() {
		files = append(files, engine.FileInfo{
			Path:     f.Path(),
			Priority: h.record.FilePriorities[i],
			Size:     f.Length(),
			Progress: ratio(f.BytesCompleted(), f.Length()),
		})
	}

	return files
}

type stream struct {
	torrent.Reader

	name    string
	modTime time.Time
}

func (s *stream) Name() string {
	return s.name
}

func (s *stream) ModTime() time.Time {
	return s.modTime
}

// OpenFile returns a reader that prioritizes the pieces around its position.
func (e *Engine) OpenFile(index int, fileIndex int) (engine.Stream, error) {
	h, ok := e.at(index)
	if !ok {
		return nil, fmt.Errorf("%w: torrent %v", ErrUnknownFile, index)
	}

	if !h.applied {
		return nil, ErrNoMetadata
	}

	files := h.t.Files()
	if fileIndex < 0 || fileIndex >= len(files) {
		return nil, fmt.Errorf("%w: %v", ErrUnknownFile, fileIndex)
	}

	f := files[fileIndex]

	r := f.NewReader()
	r.SetResponsive()
	r.SetReadahead(f.Length() / 100)

	return &stream{
		Reader:  r,
		name:    f.DisplayPath(),
		modTime: time.Unix(h.t.Metainfo().CreationDate, 0),
	}, nil
}
