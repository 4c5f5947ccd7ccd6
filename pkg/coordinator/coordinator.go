package coordinator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/browser"
	"github.com/pojntfx/torrenter/pkg/engine"
	"github.com/pojntfx/torrenter/pkg/metrics"
	"github.com/pojntfx/torrenter/pkg/state"
	"github.com/rs/zerolog/log"
)

// RefreshInterval is the minimum time between two non-forced refreshes.
const RefreshInterval = 900 * time.Millisecond

// Coordinator is the only caller of the engine and the only writer of the
// cache. It processes commands from its bus one at a time, in order.
type Coordinator struct {
	engine       engine.Engine
	cache        *state.Cache
	bus          *Bus
	resumeDir    string
	downloadsDir string

	onFailure func(err error)

	openDir func(path string) error
	now     func() time.Time

	lastRefresh time.Time
	refreshed   bool

	done        chan struct{}
	stopOnce    sync.Once
	safeToExit  atomic.Bool
	shutdownErr error

	ctx context.Context
}

func NewCoordinator(
	e engine.Engine,
	cache *state.Cache,
	bus *Bus,
	resumeDir string,
	downloadsDir string,

	onFailure func(err error),

	ctx context.Context,
) *Coordinator {
	return &Coordinator{
		engine:       e,
		cache:        cache,
		bus:          bus,
		resumeDir:    resumeDir,
		downloadsDir: downloadsDir,

		onFailure: onFailure,

		openDir: browser.OpenFile,
		now:     time.Now,

		done: make(chan struct{}),

		ctx: ctx,
	}
}

// Open initializes the engine and starts the command loop.
func (c *Coordinator) Open() error {
	log.Trace().
		Str("resumeDir", c.resumeDir).
		Msg("Opening coordinator")

	if err := c.engine.Init(c.resumeDir); err != nil {
		return err
	}

	go c.loop()

	return nil
}

func (c *Coordinator) loop() {
	for {
		cmd, err := c.bus.Receive(c.ctx)
		if err != nil {
			log.Debug().
				Err(err).
				Msg("Context is done, stopping coordinator")

			c.stop()

			return
		}

		metrics.QueueDepth.Set(float64(c.bus.Len()))
		metrics.CommandsTotal.WithLabelValues(cmd.name()).Inc()

		log.Trace().
			Str("command", cmd.name()).
			Msg("Processing command")

		if _, ok := cmd.(Stop); ok {
			c.stop()

			return
		}

		c.handle(cmd)
	}
}

func (c *Coordinator) handle(cmd Command) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str("command", cmd.name()).
				Interface("panic", r).
				Msg("Recovered from panic while processing command")

			c.fail(opOf(cmd), -1, fmt.Errorf("%w: %s: %v", ErrCommandPanicked, cmd.name(), r))
		}
	}()

	switch cmd := cmd.(type) {
	case Refresh:
		c.refresh(false)

	case ForcedRefresh:
		c.refresh(true)

	case AddTorrent:
		c.add(cmd)

		c.enqueue(ForcedRefresh{})

	case RemoveTorrent:
		c.mutate(cmd.Index, OpRemove, func() bool {
			return c.engine.Remove(cmd.Index)
		})

	case UpdateState:
		if cmd.State != state.StatePaused {
			c.mutate(cmd.Index, OpPause, func() bool {
				return c.engine.Pause(cmd.Index)
			})
		} else {
			c.mutate(cmd.Index, OpResume, func() bool {
				return c.engine.Resume(cmd.Index)
			})
		}

	case ToggleStreamMode:
		c.mutate(cmd.Index, OpToggleStream, func() bool {
			return c.engine.ToggleStream(cmd.Index)
		})

	case UpdateFilePriority:
		if !cmd.Priority.Valid() {
			c.fail(OpChangePriority, cmd.Index, ErrInvalidPriority)

			return
		}

		c.mutate(cmd.Index, OpChangePriority, func() bool {
			return c.engine.SetFilePriority(cmd.Index, cmd.FileIndex, cmd.Priority.Level())
		})

	case FetchPeers:
		if !c.valid(cmd.Index) {
			return
		}

		c.cache.SetPeers(cmd.Index, state.NewPeers(c.engine.Peers(cmd.Index)))

	case FetchFiles:
		if !c.valid(cmd.Index) {
			return
		}

		c.cache.SetFiles(cmd.Index, state.NewFiles(c.engine.Files(cmd.Index)))

	case OpenDir:
		if err := checkString(cmd.Path); err != nil {
			c.fail(OpOpenDir, -1, err)

			return
		}

		if strings.TrimSpace(cmd.Path) == "" {
			c.fail(OpOpenDir, -1, ErrEmptyPath)

			return
		}

		if err := c.openDir(cmd.Path); err != nil {
			c.fail(OpOpenDir, -1, err)
		}

	case UpdateSelTorrent:
		c.cache.SetSelected(cmd.Index)

	case OpenStream:
		c.openStream(cmd)

	default:
		log.Warn().
			Str("command", cmd.name()).
			Msg("Ignoring unknown command")
	}
}

func opOf(cmd Command) Op {
	switch cmd := cmd.(type) {
	case Refresh, ForcedRefresh:
		return OpRefresh
	case AddTorrent:
		return OpAdd
	case RemoveTorrent:
		return OpRemove
	case UpdateState:
		if cmd.State != state.StatePaused {
			return OpPause
		}

		return OpResume
	case ToggleStreamMode:
		return OpToggleStream
	case UpdateFilePriority:
		return OpChangePriority
	case OpenDir:
		return OpOpenDir
	case OpenStream:
		return OpOpenStream
	default:
		return OpFetch
	}
}

func (c *Coordinator) refresh(forced bool) {
	now := c.now()
	if !forced && c.refreshed && now.Sub(c.lastRefresh) < RefreshInterval {
		metrics.RefreshesTotal.WithLabelValues("throttled").Inc()

		return
	}

	c.engine.Pump()

	count := c.engine.Count()
	torrents := make([]state.Torrent, count)
	for i := range torrents {
		torrents[i] = state.NewTorrent(c.engine.Info(i))
	}

	c.cache.Replace(torrents)

	c.lastRefresh = now
	c.refreshed = true

	metrics.RefreshesTotal.WithLabelValues("executed").Inc()
	metrics.RefreshDuration.Observe(c.now().Sub(now).Seconds())
	metrics.Torrents.Set(float64(count))
}

func (c *Coordinator) add(cmd AddTorrent) {
	if err := checkString(cmd.Source); err != nil {
		c.fail(OpAdd, -1, err)

		return
	}

	if strings.TrimSpace(cmd.Source) == "" {
		c.fail(OpAdd, -1, ErrEmptyPath)

		return
	}

	hash, err := c.engine.Add(cmd.Source, c.downloadsDir, cmd.Kind)
	if err != nil {
		c.fail(OpAdd, -1, err)

		return
	}

	log.Debug().
		Str("hash", hash).
		Str("kind", cmd.Kind.String()).
		Msg("Added torrent")
}

// mutate runs a boolean engine operation against a valid index and schedules a refresh.
func (c *Coordinator) mutate(index int, op Op, fn func() bool) {
	if !c.valid(index) {
		return
	}

	if !fn() {
		c.fail(op, index, ErrEngineRejected)
	}

	c.enqueue(ForcedRefresh{})
}

func (c *Coordinator) openStream(cmd OpenStream) {
	if abandoned(cmd.Done) {
		log.Debug().
			Int("index", cmd.Index).
			Msg("Stream was abandoned before it was opened")

		return
	}

	res := StreamResult{}

	streamer, ok := c.engine.(engine.Streamer)
	switch {
	case !ok:
		res.Err = engine.ErrNotStreamable
	case !c.valid(cmd.Index):
		res.Err = ErrStaleIndex
	default:
		res.Stream, res.Err = streamer.OpenFile(cmd.Index, cmd.FileIndex)
	}

	if res.Err != nil {
		metrics.FailuresTotal.WithLabelValues(string(OpOpenStream)).Inc()

		res.Err = &Failure{Op: OpOpenStream, Index: cmd.Index, Err: res.Err}
	}

	if cmd.Done == nil {
		select {
		case cmd.Reply <- res:
			return
		default:
		}
	} else {
		select {
		case cmd.Reply <- res:
			return
		case <-cmd.Done:
		}
	}

	log.Warn().
		Int("index", cmd.Index).
		Msg("Nobody is waiting for the stream, closing it")

	if res.Stream != nil {
		_ = res.Stream.Close()
	}
}

func abandoned(done <-chan struct{}) bool {
	if done == nil {
		return false
	}

	select {
	case <-done:
		return true
	default:
		return false
	}
}

func (c *Coordinator) valid(index int) bool {
	if index >= 0 && index < c.engine.Count() {
		return true
	}

	log.Debug().
		Int("index", index).
		Msg("Ignoring command for stale torrent index")

	return false
}

func (c *Coordinator) enqueue(cmd Command) {
	if err := c.bus.Send(cmd); err != nil {
		log.Trace().
			Str("command", cmd.name()).
			Msg("Bus is closed, dropping command")
	}
}

func (c *Coordinator) fail(op Op, index int, err error) {
	f := &Failure{Op: op, Index: index, Err: err}

	metrics.FailuresTotal.WithLabelValues(string(op)).Inc()

	log.Warn().
		Err(err).
		Int("index", index).
		Msg(f.Error())

	if c.onFailure != nil {
		c.onFailure(f)
	}
}
