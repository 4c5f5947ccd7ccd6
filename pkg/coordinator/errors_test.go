package coordinator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFailureMessages(t *testing.T) {
	tests := []struct {
		failure *Failure
		msg     string
	}{
		{&Failure{Op: OpAdd, Err: ErrEngineRejected}, "failed to add torrent"},
		{&Failure{Op: OpChangePriority, Err: ErrEngineRejected}, "failed to change priority"},
		{&Failure{Op: OpAdd, Err: errors.New("no such file")}, "failed to add torrent: no such file"},
		{&Failure{Op: OpOpenDir}, "failed to open directory"},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			assert.EqualError(t, tt.failure, tt.msg)
		})
	}
}

func TestCheckString(t *testing.T) {
	assert.NoError(t, checkString("magnet:?xt=urn:btih:abc&dn=Größe"))
	assert.ErrorIs(t, checkString("a\x00b"), ErrInvalidString)
	assert.ErrorIs(t, checkString(string([]byte{0xff, 0xfe})), ErrInvalidString)
}
