package coordinator

import (
	"bytes"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/pojntfx/torrenter/pkg/engine"
)

type fakeTorrent struct {
	hash       string
	paused     bool
	streaming  bool
	files      []string
	priorities []uint8
}

type fakeEngine struct {
	lock sync.Mutex

	torrents []*fakeTorrent

	resumeDir string
	pumps     int
	infos     int
	shutdowns int
	calls     []string

	reject  map[string]bool
	addErr  error
	panicOn string

	streams []*fakeStream
}

func newFakeEngine(hashes ...string) *fakeEngine {
	e := &fakeEngine{
		reject: map[string]bool{},
	}

	for _, h := range hashes {
		e.torrents = append(e.torrents, &fakeTorrent{
			hash:       h,
			files:      []string{h + "/a", h + "/b"},
			priorities: []uint8{4, 4},
		})
	}

	return e
}

func (e *fakeEngine) record(call string) {
	e.calls = append(e.calls, call)

	if e.panicOn == call {
		panic("boom")
	}
}

func (e *fakeEngine) Init(resumeDir string) error {
	e.lock.Lock()
	defer e.lock.Unlock()

	e.resumeDir = resumeDir

	return nil
}

func (e *fakeEngine) Shutdown() error {
	e.lock.Lock()
	defer e.lock.Unlock()

	e.shutdowns++

	return nil
}

func (e *fakeEngine) Pump() {
	e.lock.Lock()
	defer e.lock.Unlock()

	e.pumps++
}

func (e *fakeEngine) Count() int {
	e.lock.Lock()
	defer e.lock.Unlock()

	return len(e.torrents)
}

func (e *fakeEngine) Info(index int) engine.TorrentInfo {
	e.lock.Lock()
	defer e.lock.Unlock()

	e.infos++

	t := e.torrents[index]
	state := 3
	if t.paused {
		state = engine.PausedState
	}

	return engine.TorrentInfo{
		Hash:        t.hash,
		Name:        t.hash,
		State:       state,
		IsStreaming: t.streaming,
		Pieces:      []byte("ciq"),
	}
}

func (e *fakeEngine) Add(source string, downloadsDir string, kind engine.AddKind) (string, error) {
	e.lock.Lock()
	defer e.lock.Unlock()

	e.record("Add")

	if e.addErr != nil {
		return "", e.addErr
	}

	e.torrents = append(e.torrents, &fakeTorrent{hash: source})

	return source, nil
}

func (e *fakeEngine) mutate(call string, index int, fn func(t *fakeTorrent)) bool {
	e.lock.Lock()
	defer e.lock.Unlock()

	e.record(call)

	if e.reject[call] {
		return false
	}

	fn(e.torrents[index])

	return true
}

func (e *fakeEngine) Remove(index int) bool {
	e.lock.Lock()
	defer e.lock.Unlock()

	e.record("Remove")

	if e.reject["Remove"] {
		return false
	}

	e.torrents = append(e.torrents[:index], e.torrents[index+1:]...)

	return true
}

func (e *fakeEngine) Pause(index int) bool {
	return e.mutate("Pause", index, func(t *fakeTorrent) { t.paused = true })
}

func (e *fakeEngine) Resume(index int) bool {
	return e.mutate("Resume", index, func(t *fakeTorrent) { t.paused = false })
}

func (e *fakeEngine) ToggleStream(index int) bool {
	return e.mutate("ToggleStream", index, func(t *fakeTorrent) { t.streaming = !t.streaming })
}

func (e *fakeEngine) SetFilePriority(index int, fileIndex int, level uint8) bool {
	ok := true

	return e.mutate("SetFilePriority", index, func(t *fakeTorrent) {
		if fileIndex < 0 || fileIndex >= len(t.priorities) {
			ok = false

			return
		}

		t.priorities[fileIndex] = level
	}) && ok
}

func (e *fakeEngine) Peers(index int) []engine.PeerInfo {
	e.lock.Lock()
	defer e.lock.Unlock()

	e.record("Peers")

	return []engine.PeerInfo{{IPAddress: "10.0.0.1:6881", Client: e.torrents[index].hash, Progress: 0.5}}
}

func (e *fakeEngine) Files(index int) []engine.FileInfo {
	e.lock.Lock()
	defer e.lock.Unlock()

	e.record("Files")

	t := e.torrents[index]
	files := make([]engine.FileInfo, len(t.files))
	for i, p := range t.files {
		files[i] = engine.FileInfo{Path: p, Priority: t.priorities[i]}
	}

	return files
}

func (e *fakeEngine) stats() (pumps, infos, shutdowns int) {
	e.lock.Lock()
	defer e.lock.Unlock()

	return e.pumps, e.infos, e.shutdowns
}

func (e *fakeEngine) called(call string) int {
	e.lock.Lock()
	defer e.lock.Unlock()

	n := 0
	for _, c := range e.calls {
		if c == call {
			n++
		}
	}

	return n
}

type fakeStream struct {
	*bytes.Reader

	name   string
	closed bool
}

func (s *fakeStream) Close() error {
	s.closed = true

	return nil
}

func (s *fakeStream) Name() string {
	return s.name
}

func (s *fakeStream) ModTime() time.Time {
	return time.Unix(0, 0)
}

var _ io.ReadSeekCloser = (*fakeStream)(nil)

type streamingEngine struct {
	*fakeEngine
}

var errNoSuchFile = errors.New("no such file")

func (e *streamingEngine) OpenFile(index int, fileIndex int) (engine.Stream, error) {
	e.lock.Lock()
	defer e.lock.Unlock()

	t := e.torrents[index]
	if fileIndex < 0 || fileIndex >= len(t.files) {
		return nil, errNoSuchFile
	}

	s := &fakeStream{Reader: bytes.NewReader([]byte("hello")), name: t.files[fileIndex]}
	e.streams = append(e.streams, s)

	return s, nil
}

type clock struct {
	lock sync.Mutex
	now  time.Time
}

func (c *clock) Now() time.Time {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.now = c.now.Add(d)
}

type failures struct {
	lock sync.Mutex
	errs []error
}

func (f *failures) add(err error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	f.errs = append(f.errs, err)
}

func (f *failures) all() []error {
	f.lock.Lock()
	defer f.lock.Unlock()

	return append([]error{}, f.errs...)
}
