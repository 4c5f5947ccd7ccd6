package state

import (
	"sync"
)

type Snapshot struct {
	Version  uint64
	Torrents []Torrent
	Selected *int
}

// Cache holds the torrent list shared between the coordinator, which is its
// only writer, and any number of readers. Readers only ever get deep copies.
type Cache struct {
	lock sync.RWMutex

	torrents []Torrent
	selected *int
	version  uint64
}

func NewCache() *Cache {
	return &Cache{
		torrents: []Torrent{},
	}
}

func (c *Cache) Snapshot() Snapshot {
	c.lock.RLock()
	defer c.lock.RUnlock()

	torrents := make([]Torrent, len(c.torrents))
	for i, t := range c.torrents {
		torrents[i] = t.Clone()
	}

	var selected *int
	if c.selected != nil {
		s := *c.selected
		selected = &s
	}

	return Snapshot{
		Version:  c.version,
		Torrents: torrents,
		Selected: selected,
	}
}

func (c *Cache) Len() int {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return len(c.torrents)
}

func (c *Cache) Get(index int) (Torrent, bool) {
	c.lock.RLock()
	defer c.lock.RUnlock()

	if index < 0 || index >= len(c.torrents) {
		return Torrent{}, false
	}

	return c.torrents[index].Clone(), true
}

// Replace swaps in a new torrent list. Peers and files fetched earlier are kept
// for a slot only if it still holds the same torrent.
func (c *Cache) Replace(torrents []Torrent) {
	next := make([]Torrent, len(torrents))
	for i, t := range torrents {
		next[i] = t.Clone()
	}

	c.lock.Lock()
	defer c.lock.Unlock()

	for i := range next {
		if i >= len(c.torrents) || c.torrents[i].Hash == "" || c.torrents[i].Hash != next[i].Hash {
			continue
		}

		if next[i].Peers == nil {
			next[i].Peers = c.torrents[i].Peers
		}

		if next[i].Files == nil {
			next[i].Files = c.torrents[i].Files
		}
	}

	c.torrents = next

	if c.selected != nil && *c.selected >= len(c.torrents) {
		c.selected = nil
	}

	c.version++
}

func (c *Cache) SetPeers(index int, peers []Peer) bool {
	c.lock.Lock()
	defer c.lock.Unlock()

	if index < 0 || index >= len(c.torrents) {
		return false
	}

	c.torrents[index].Peers = append([]Peer{}, peers...)
	c.version++

	return true
}

func (c *Cache) SetFiles(index int, files []File) bool {
	c.lock.Lock()
	defer c.lock.Unlock()

	if index < 0 || index >= len(c.torrents) {
		return false
	}

	c.torrents[index].Files = append([]File{}, files...)
	c.version++

	return true
}

// SetSelected selects a torrent; nil clears the selection.
func (c *Cache) SetSelected(index *int) bool {
	c.lock.Lock()
	defer c.lock.Unlock()

	if index == nil {
		c.selected = nil
		c.version++

		return true
	}

	if *index < 0 || *index >= len(c.torrents) {
		return false
	}

	s := *index
	c.selected = &s
	c.version++

	return true
}
