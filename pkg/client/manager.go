package client

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"

	jsoniter "github.com/json-iterator/go"
	v1 "github.com/pojntfx/torrenter/pkg/api/http/v1"
)

var (
	json = jsoniter.ConfigCompatibleWithStandardLibrary
)

// Manager talks to a remote gateway.
type Manager struct {
	url      string
	username string
	password string
	ctx      context.Context
}

func NewManager(
	url string,
	username string,
	password string,
	ctx context.Context,
) *Manager {
	return &Manager{
		url:      url,
		username: username,
		password: password,
		ctx:      ctx,
	}
}

func (m *Manager) do(method string, suffix string, in any, status int, out any) error {
	hc := &http.Client{}

	baseURL, err := url.Parse(m.url)
	if err != nil {
		return err
	}

	suffixURL, err := url.Parse(suffix)
	if err != nil {
		return err
	}

	reqURL := baseURL.ResolveReference(suffixURL)

	var body io.Reader = http.NoBody
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}

		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(m.ctx, method, reqURL.String(), body)
	if err != nil {
		return err
	}
	req.SetBasicAuth(m.username, m.password)

	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := hc.Do(req)
	if err != nil {
		return err
	}
	if res.Body != nil {
		defer res.Body.Close()
	}
	if res.StatusCode != status {
		return errors.New(res.Status)
	}

	if out == nil {
		return nil
	}

	dec := json.NewDecoder(res.Body)
	if err := dec.Decode(out); err != nil {
		return err
	}

	return nil
}

func torrentPath(index int, suffix string) string {
	return "/torrents/" + strconv.Itoa(index) + suffix
}

func (m *Manager) ListTorrents() (v1.Snapshot, error) {
	snapshot := v1.Snapshot{}
	if err := m.do(http.MethodGet, "/torrents", nil, http.StatusOK, &snapshot); err != nil {
		return v1.Snapshot{}, err
	}

	return snapshot, nil
}

// GetTorrent also asks the gateway to refresh the torrent's peers and files.
func (m *Manager) GetTorrent(index int) (v1.Torrent, error) {
	torrent := v1.Torrent{}
	if err := m.do(http.MethodGet, torrentPath(index, ""), nil, http.StatusOK, &torrent); err != nil {
		return v1.Torrent{}, err
	}

	return torrent, nil
}

func (m *Manager) AddTorrent(source string, kind string) error {
	return m.do(http.MethodPost, "/torrents", v1.AddTorrent{
		Source: source,
		Kind:   kind,
	}, http.StatusAccepted, nil)
}

func (m *Manager) RemoveTorrent(index int) error {
	return m.do(http.MethodDelete, torrentPath(index, ""), nil, http.StatusAccepted, nil)
}

func (m *Manager) PauseTorrent(index int) error {
	return m.do(http.MethodPost, torrentPath(index, "/pause"), nil, http.StatusAccepted, nil)
}

func (m *Manager) ResumeTorrent(index int) error {
	return m.do(http.MethodPost, torrentPath(index, "/resume"), nil, http.StatusAccepted, nil)
}

func (m *Manager) ToggleStreamMode(index int) error {
	return m.do(http.MethodPost, torrentPath(index, "/stream-mode"), nil, http.StatusAccepted, nil)
}

func (m *Manager) SetFilePriority(index int, file int, priority string) error {
	return m.do(
		http.MethodPut,
		torrentPath(index, "/files/"+strconv.Itoa(file)+"/priority"),
		v1.FilePriority{Priority: priority},
		http.StatusAccepted,
		nil,
	)
}

func (m *Manager) GetFailures() ([]v1.Failure, error) {
	failures := []v1.Failure{}
	if err := m.do(http.MethodGet, "/failures", nil, http.StatusOK, &failures); err != nil {
		return []v1.Failure{}, err
	}

	return failures, nil
}

// StreamURL returns the address a media player can read a file of a torrent from.
func (m *Manager) StreamURL(index int, file int) (string, error) {
	baseURL, err := url.Parse(m.url)
	if err != nil {
		return "", err
	}

	streamSuffix, err := url.Parse("/stream")
	if err != nil {
		return "", err
	}

	streamURL := baseURL.ResolveReference(streamSuffix)

	q := streamURL.Query()
	q.Set("index", strconv.Itoa(index))
	q.Set("file", strconv.Itoa(file))
	streamURL.RawQuery = q.Encode()

	return streamURL.String(), nil
}
