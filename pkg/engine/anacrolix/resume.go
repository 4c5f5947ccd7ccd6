package anacrolix

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"
)

var (
	json = jsoniter.ConfigCompatibleWithStandardLibrary
)

const resumeSuffix = ".json"

type record struct {
	InfoHash string `json:"infoHash"`
	Magnet   string `json:"magnet,omitempty"`
	Metainfo []byte `json:"metainfo,omitempty"`
	SavePath string `json:"savePath"`

	Paused         bool    `json:"paused"`
	Streaming      bool    `json:"streaming"`
	FilePriorities []uint8 `json:"filePriorities,omitempty"`

	AddedAt        time.Time `json:"addedAt"`
	Downloaded     int64     `json:"downloaded"`
	Uploaded       int64     `json:"uploaded"`
	ActiveSeconds  int64     `json:"activeSeconds"`
	SeedingSeconds int64     `json:"seedingSeconds"`
}

// store keeps one record per torrent in the resume directory.
type store struct {
	dir string
}

func newStore(dir string) (*store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	return &store{dir: dir}, nil
}

func (s *store) path(infoHash string) string {
	return filepath.Join(s.dir, infoHash+resumeSuffix)
}

func (s *store) Save(r *record) error {
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path(r.InfoHash) + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}

	return os.Rename(tmp, s.path(r.InfoHash))
}

func (s *store) Delete(infoHash string) error {
	if err := os.Remove(s.path(infoHash)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	return nil
}

// List returns all readable records, oldest first. Unreadable records are skipped.
func (s *store) List() ([]*record, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}

	records := []*record{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), resumeSuffix) {
			continue
		}

		p := filepath.Join(s.dir, entry.Name())

		b, err := os.ReadFile(p)
		if err != nil {
			log.Warn().
				Err(err).
				Str("path", p).
				Msg("Could not read resume record, skipping")

			continue
		}

		r := &record{}
		if err := json.Unmarshal(b, r); err != nil || r.InfoHash == "" {
			log.Warn().
				Err(err).
				Str("path", p).
				Msg("Could not parse resume record, skipping")

			continue
		}

		records = append(records, r)
	}

	sort.SliceStable(records, func(i, j int) bool {
		if records[i].AddedAt.Equal(records[j].AddedAt) {
			return records[i].InfoHash < records[j].InfoHash
		}

		return records[i].AddedAt.Before(records[j].AddedAt)
	})

	return records, nil
}
