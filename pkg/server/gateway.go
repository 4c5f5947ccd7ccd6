package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/pojntfx/go-auth-utils/pkg/authn"
	"github.com/pojntfx/go-auth-utils/pkg/authn/basic"
	"github.com/pojntfx/go-auth-utils/pkg/authn/oidc"
	v1 "github.com/pojntfx/torrenter/pkg/api/http/v1"
	"github.com/pojntfx/torrenter/pkg/coordinator"
	"github.com/pojntfx/torrenter/pkg/engine"
	"github.com/pojntfx/torrenter/pkg/state"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

var (
	json = jsoniter.ConfigCompatibleWithStandardLibrary
)

var (
	ErrEmptySource      = errors.New("could not work with empty source")
	ErrInvalidIndex     = errors.New("could not parse index")
	ErrUnknownTorrent   = errors.New("could not find torrent")
	ErrUnknownKind      = errors.New("unknown torrent source kind")
	ErrCoordinatorGone  = errors.New("coordinator is shutting down")
	ErrMalformedRequest = errors.New("could not decode request body")
)

type validator interface {
	Validate(username string, password string) error
}

// Gateway exposes the torrent list and the command bus over HTTP.
type Gateway struct {
	laddr        string
	apiUsername  string
	apiPassword  string
	oidcIssuer   string
	oidcClientID string

	cache    *state.Cache
	bus      *coordinator.Bus
	failures *coordinator.FailureLog
	gatherer prometheus.Gatherer

	onStream func(stream v1.Stream)

	srv *http.Server

	errs chan error

	ctx context.Context
}

func NewGateway(
	laddr string,
	apiUsername string,
	apiPassword string,
	oidcIssuer string,
	oidcClientID string,

	cache *state.Cache,
	bus *coordinator.Bus,
	failures *coordinator.FailureLog,
	gatherer prometheus.Gatherer,

	onStream func(stream v1.Stream),

	ctx context.Context,
) *Gateway {
	return &Gateway{
		laddr:        laddr,
		apiUsername:  apiUsername,
		apiPassword:  apiPassword,
		oidcIssuer:   oidcIssuer,
		oidcClientID: oidcClientID,

		cache:    cache,
		bus:      bus,
		failures: failures,
		gatherer: gatherer,

		onStream: onStream,

		errs: make(chan error),

		ctx: ctx,
	}
}

func (g *Gateway) Open() error {
	log.Trace().Msg("Opening gateway")

	var auth authn.Authn
	if strings.TrimSpace(g.oidcIssuer) == "" && strings.TrimSpace(g.oidcClientID) == "" {
		auth = basic.NewAuthn(g.apiUsername, g.apiPassword)
	} else {
		auth = oidc.NewAuthn(g.oidcIssuer, g.oidcClientID)
	}

	if err := auth.Open(g.ctx); err != nil {
		return err
	}

	g.srv = &http.Server{Addr: g.laddr}
	g.srv.Handler = g.handler(auth)

	log.Debug().
		Str("address", g.laddr).
		Msg("Listening")

	go func() {
		if err := g.srv.ListenAndServe(); err != nil {
			if err == http.ErrServerClosed {
				close(g.errs)

				return
			}

			g.errs <- err

			return
		}
	}()

	return nil
}

func (g *Gateway) Close() error {
	log.Trace().Msg("Closing gateway")

	if g.srv == nil {
		return nil
	}

	if err := g.srv.Shutdown(g.ctx); err != nil {
		if err != context.Canceled {
			return err
		}
	}

	return nil
}

func (g *Gateway) Wait() error {
	for err := range g.errs {
		if err != nil {
			return err
		}
	}

	return nil
}

func (g *Gateway) handler(auth validator) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /torrents", g.listTorrents)
	mux.HandleFunc("POST /torrents", g.addTorrent)
	mux.HandleFunc("GET /torrents/{index}", g.getTorrent)
	mux.HandleFunc("DELETE /torrents/{index}", g.indexCommand(func(index int) coordinator.Command {
		return coordinator.RemoveTorrent{Index: index}
	}))
	mux.HandleFunc("POST /torrents/{index}/pause", g.indexCommand(func(index int) coordinator.Command {
		return coordinator.Pause(index)
	}))
	mux.HandleFunc("POST /torrents/{index}/resume", g.indexCommand(func(index int) coordinator.Command {
		return coordinator.Resume(index)
	}))
	mux.HandleFunc("POST /torrents/{index}/stream-mode", g.indexCommand(func(index int) coordinator.Command {
		return coordinator.ToggleStreamMode{Index: index}
	}))
	mux.HandleFunc("PUT /torrents/{index}/files/{file}/priority", g.setFilePriority)
	mux.HandleFunc("GET /stream", g.stream)
	mux.HandleFunc("GET /failures", g.listFailures)
	mux.Handle("GET /prometheus", promhttp.HandlerFor(g.gatherer, promhttp.HandlerOpts{}))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if err := auth.Validate(u, p); !ok || err != nil {
			log.Debug().
				Str("remote", r.RemoteAddr).
				Str("path", r.URL.Path).
				Msg("Rejected unauthorized request")

			w.Header().Set("WWW-Authenticate", `Basic realm="Torrenter"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)

			return
		}

		mux.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debug().
			Err(err).
			Msg("Could not encode response")
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	log.Debug().
		Err(err).
		Int("status", status).
		Msg("Could not handle request")

	http.Error(w, err.Error(), status)
}

func (g *Gateway) send(w http.ResponseWriter, cmds ...coordinator.Command) bool {
	if err := g.bus.SendAll(cmds...); err != nil {
		writeError(w, http.StatusServiceUnavailable, ErrCoordinatorGone)

		return false
	}

	return true
}

// torrentIndex parses the index path value and checks it against the latest snapshot.
func (g *Gateway) torrentIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrInvalidIndex)

		return 0, false
	}

	if index < 0 || index >= g.cache.Len() {
		writeError(w, http.StatusNotFound, ErrUnknownTorrent)

		return 0, false
	}

	return index, true
}

func (g *Gateway) listTorrents(w http.ResponseWriter, r *http.Request) {
	s := g.cache.Snapshot()

	res := v1.Snapshot{
		Version:  s.Version,
		Selected: s.Selected,
		Torrents: make([]v1.Torrent, len(s.Torrents)),
	}
	for i, t := range s.Torrents {
		res.Torrents[i] = toTorrent(i, t)
	}

	writeJSON(w, http.StatusOK, res)
}

func (g *Gateway) getTorrent(w http.ResponseWriter, r *http.Request) {
	index, ok := g.torrentIndex(w, r)
	if !ok {
		return
	}

	t, ok := g.cache.Get(index)
	if !ok {
		writeError(w, http.StatusNotFound, ErrUnknownTorrent)

		return
	}

	// Details land in the cache asynchronously and show up on the next request.
	if !g.send(w, coordinator.FetchPeers{Index: index}, coordinator.FetchFiles{Index: index}) {
		return
	}

	writeJSON(w, http.StatusOK, toTorrent(index, t))
}

func parseKind(kind string, source string) (engine.AddKind, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "magnet":
		return engine.AddKindMagnetURL, nil
	case "file":
		return engine.AddKindFile, nil
	case "":
		if strings.HasPrefix(strings.TrimSpace(source), "magnet:") {
			return engine.AddKindMagnetURL, nil
		}

		return engine.AddKindFile, nil
	default:
		return 0, ErrUnknownKind
	}
}

func (g *Gateway) addTorrent(w http.ResponseWriter, r *http.Request) {
	req := v1.AddTorrent{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrMalformedRequest)

		return
	}

	if strings.TrimSpace(req.Source) == "" {
		writeError(w, http.StatusUnprocessableEntity, ErrEmptySource)

		return
	}

	kind, err := parseKind(req.Kind, req.Source)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)

		return
	}

	log.Debug().
		Str("source", req.Source).
		Str("kind", kind.String()).
		Msg("Adding torrent")

	if !g.send(w, coordinator.AddTorrent{Source: strings.TrimSpace(req.Source), Kind: kind}) {
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

func (g *Gateway) indexCommand(build func(index int) coordinator.Command) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		index, ok := g.torrentIndex(w, r)
		if !ok {
			return
		}

		if !g.send(w, build(index)) {
			return
		}

		w.WriteHeader(http.StatusAccepted)
	}
}

func (g *Gateway) setFilePriority(w http.ResponseWriter, r *http.Request) {
	index, ok := g.torrentIndex(w, r)
	if !ok {
		return
	}

	file, err := strconv.Atoi(r.PathValue("file"))
	if err != nil || file < 0 {
		writeError(w, http.StatusBadRequest, ErrInvalidIndex)

		return
	}

	req := v1.FilePriority{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrMalformedRequest)

		return
	}

	priority, err := state.ParseFilePriority(req.Priority)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)

		return
	}

	if !g.send(w, coordinator.UpdateFilePriority{Index: index, FileIndex: file, Priority: priority}) {
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

func (g *Gateway) stream(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.URL.Query().Get("index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrInvalidIndex)

		return
	}

	file, err := strconv.Atoi(r.URL.Query().Get("file"))
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrInvalidIndex)

		return
	}

	reply := make(chan coordinator.StreamResult)
	if !g.send(w, coordinator.OpenStream{Index: index, FileIndex: file, Reply: reply, Done: r.Context().Done()}) {
		return
	}

	var res coordinator.StreamResult
	select {
	case res = <-reply:
	case <-r.Context().Done():
		return
	}

	if res.Err != nil {
		switch {
		case errors.Is(res.Err, coordinator.ErrStaleIndex):
			writeError(w, http.StatusNotFound, res.Err)
		case errors.Is(res.Err, engine.ErrNotStreamable):
			writeError(w, http.StatusNotImplemented, res.Err)
		default:
			writeError(w, http.StatusUnprocessableEntity, res.Err)
		}

		return
	}
	defer res.Stream.Close()

	log.Debug().
		Int("index", index).
		Int("file", file).
		Str("name", res.Stream.Name()).
		Msg("Streaming")

	if g.onStream != nil {
		g.onStream(v1.Stream{
			Index:     index,
			FileIndex: file,
			Name:      res.Stream.Name(),
			Remote:    r.RemoteAddr,
		})
	}

	http.ServeContent(w, r, res.Stream.Name(), res.Stream.ModTime(), res.Stream)
}

func (g *Gateway) listFailures(w http.ResponseWriter, r *http.Request) {
	entries := g.failures.List()

	res := make([]v1.Failure, len(entries))
	for i, e := range entries {
		res[i] = v1.Failure{
			Time:    e.Time,
			Op:      string(e.Op),
			Index:   e.Index,
			Message: e.Message,
		}
	}

	writeJSON(w, http.StatusOK, res)
}
