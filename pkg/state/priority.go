package state

import (
	"errors"
	"strings"
)

var (
	ErrUnknownPriority = errors.New("unknown file priority")
)

type FilePriority int

const (
	FilePrioritySkip FilePriority = iota
	FilePriorityLow
	FilePriorityDefault
	FilePriorityHigh
)

// Engine priority levels. This mapping is part of the engine protocol.
const (
	levelSkip    uint8 = 0
	levelLow     uint8 = 1
	levelDefault uint8 = 4
	levelHigh    uint8 = 7
)

func (p FilePriority) Valid() bool {
	return p >= FilePrioritySkip && p <= FilePriorityHigh
}

func (p FilePriority) Level() uint8 {
	switch p {
	case FilePrioritySkip:
		return levelSkip
	case FilePriorityLow:
		return levelLow
	case FilePriorityHigh:
		return levelHigh
	default:
		return levelDefault
	}
}

// FilePriorityFromLevel is the inverse of Level. Levels in between are rounded
// down to the closest known level.
func FilePriorityFromLevel(level uint8) FilePriority {
	switch {
	case level >= levelHigh:
		return FilePriorityHigh
	case level >= levelDefault:
		return FilePriorityDefault
	case level >= levelLow:
		return FilePriorityLow
	default:
		return FilePrioritySkip
	}
}

func (p FilePriority) String() string {
	switch p {
	case FilePrioritySkip:
		return "skip"
	case FilePriorityLow:
		return "low"
	case FilePriorityDefault:
		return "default"
	case FilePriorityHigh:
		return "high"
	default:
		return "unknown"
	}
}

func ParseFilePriority(s string) (FilePriority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "skip":
		return FilePrioritySkip, nil
	case "low":
		return FilePriorityLow, nil
	case "default", "normal":
		return FilePriorityDefault, nil
	case "high":
		return FilePriorityHigh, nil
	default:
		return 0, ErrUnknownPriority
	}
}

// Next cycles skip, low, default, high and back to skip.
func (p FilePriority) Next() FilePriority {
	if p >= FilePriorityHigh {
		return FilePrioritySkip
	}

	return p + 1
}

func (p FilePriority) Prev() FilePriority {
	if p <= FilePrioritySkip {
		return FilePriorityHigh
	}

	return p - 1
}

func (p FilePriority) Enabled() bool {
	return p != FilePrioritySkip
}
