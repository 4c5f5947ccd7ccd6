package coordinator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFailureLogKeepsMostRecent(t *testing.T) {
	l := NewFailureLog(2)

	l.Add(&Failure{Op: OpRemove, Index: 1, Err: ErrEngineRejected})
	l.Add(errors.New("plain error"))
	l.Add(&Failure{Op: OpChangePriority, Index: 3, Err: ErrEngineRejected})

	entries := l.List()
	require.Len(t, entries, 2)

	assert.Equal(t, "plain error", entries[0].Message)
	assert.Equal(t, -1, entries[0].Index)

	assert.Equal(t, OpChangePriority, entries[1].Op)
	assert.Equal(t, 3, entries[1].Index)
	assert.Equal(t, "failed to change priority", entries[1].Message)
}
