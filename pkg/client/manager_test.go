package client

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	v1 "github.com/pojntfx/torrenter/pkg/api/http/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type request struct {
	method string
	path   string
	body   string
}

type recorder struct {
	lock     sync.Mutex
	requests []request
}

func (r *recorder) all() []request {
	r.lock.Lock()
	defer r.lock.Unlock()

	return append([]request{}, r.requests...)
}

func newServer(t *testing.T, status int, response string) (*Manager, *recorder) {
	t.Helper()

	rec := &recorder{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || u != "admin" || p != "secret" {
			w.WriteHeader(http.StatusUnauthorized)

			return
		}

		body, _ := io.ReadAll(r.Body)

		rec.lock.Lock()
		rec.requests = append(rec.requests, request{r.Method, r.URL.Path, string(body)})
		rec.lock.Unlock()

		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)

	return NewManager(srv.URL+"/", "admin", "secret", context.Background()), rec
}

func TestListTorrents(t *testing.T) {
	m, rec := newServer(t, http.StatusOK, `{"version":3,"torrents":[{"index":0,"name":"first","state":"Seeding"}]}`)

	s, err := m.ListTorrents()
	require.NoError(t, err)

	assert.Equal(t, uint64(3), s.Version)
	require.Len(t, s.Torrents, 1)
	assert.Equal(t, "first", s.Torrents[0].Name)
	assert.Equal(t, []request{{http.MethodGet, "/torrents", ""}}, rec.all())
}

func TestGetTorrent(t *testing.T) {
	m, rec := newServer(t, http.StatusOK, `{"index":4,"hash":"aaaa"}`)

	torrent, err := m.GetTorrent(4)
	require.NoError(t, err)

	assert.Equal(t, "aaaa", torrent.Hash)
	assert.Equal(t, []request{{http.MethodGet, "/torrents/4", ""}}, rec.all())
}

func TestMutations(t *testing.T) {
	m, rec := newServer(t, http.StatusAccepted, "")

	require.NoError(t, m.AddTorrent("magnet:?xt=urn:btih:aaaa", "magnet"))
	require.NoError(t, m.RemoveTorrent(1))
	require.NoError(t, m.PauseTorrent(2))
	require.NoError(t, m.ResumeTorrent(3))
	require.NoError(t, m.ToggleStreamMode(4))
	require.NoError(t, m.SetFilePriority(5, 6, "skip"))

	assert.Equal(t, []request{
		{http.MethodPost, "/torrents", `{"source":"magnet:?xt=urn:btih:aaaa","kind":"magnet"}`},
		{http.MethodDelete, "/torrents/1", ""},
		{http.MethodPost, "/torrents/2/pause", ""},
		{http.MethodPost, "/torrents/3/resume", ""},
		{http.MethodPost, "/torrents/4/stream-mode", ""},
		{http.MethodPut, "/torrents/5/files/6/priority", `{"priority":"skip"}`},
	}, rec.all())
}

func TestUnexpectedStatus(t *testing.T) {
	m, _ := newServer(t, http.StatusNotFound, "")

	err := m.RemoveTorrent(9)
	require.Error(t, err)
	assert.Equal(t, "404 Not Found", err.Error())
}

func TestWrongCredentials(t *testing.T) {
	m, _ := newServer(t, http.StatusOK, "[]")
	m.password = "wrong"

	_, err := m.GetFailures()
	require.Error(t, err)
	assert.Equal(t, "401 Unauthorized", err.Error())
}

func TestGetFailures(t *testing.T) {
	m, _ := newServer(t, http.StatusOK, `[{"op":"remove torrent","index":1,"message":"failed to remove torrent"}]`)

	failures, err := m.GetFailures()
	require.NoError(t, err)

	assert.Equal(t, []v1.Failure{{Op: "remove torrent", Index: 1, Message: "failed to remove torrent"}}, failures)
}

func TestStreamURL(t *testing.T) {
	m := NewManager("http://localhost:1337/", "admin", "secret", context.Background())

	u, err := m.StreamURL(2, 3)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:1337/stream?file=3&index=2", u)
}
