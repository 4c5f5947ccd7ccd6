package coordinator

import (
	"errors"
	"strings"
	"unicode/utf8"
)

var (
	ErrEngineRejected  = errors.New("rejected by engine")
	ErrInvalidString   = errors.New("string is not valid UTF-8 or contains a NUL byte")
	ErrEmptyPath       = errors.New("could not work with empty path")
	ErrInvalidPriority = errors.New("invalid file priority")
	ErrStaleIndex      = errors.New("torrent index is out of range")
	ErrCommandPanicked = errors.New("command panicked")
)

type Op string

const (
	OpAdd            Op = "add torrent"
	OpRemove         Op = "remove torrent"
	OpPause          Op = "pause torrent"
	OpResume         Op = "resume torrent"
	OpToggleStream   Op = "toggle stream mode"
	OpChangePriority Op = "change priority"
	OpOpenDir        Op = "open directory"
	OpOpenStream     Op = "open stream"
	OpFetch          Op = "fetch torrent details"
	OpRefresh        Op = "refresh torrents"
)

// Failure is a command that could not be carried out. It is reported, never retried.
type Failure struct {
	Op    Op
	Index int
	Err   error
}

func (f *Failure) Error() string {
	msg := "failed to " + string(f.Op)
	if f.Err != nil && !errors.Is(f.Err, ErrEngineRejected) {
		msg += ": " + f.Err.Error()
	}

	return msg
}

func (f *Failure) Unwrap() error {
	return f.Err
}

func checkString(s string) error {
	if !utf8.ValidString(s) || strings.ContainsRune(s, 0) {
		return ErrInvalidString
	}

	return nil
}
