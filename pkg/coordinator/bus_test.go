package coordinator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusIsFIFO(t *testing.T) {
	b := NewBus()

	for i := 0; i < 100; i++ {
		require.NoError(t, b.Send(RemoveTorrent{Index: i}))
	}

	for i := 0; i < 100; i++ {
		cmd, err := b.Receive(context.Background())
		require.NoError(t, err)
		assert.Equal(t, RemoveTorrent{Index: i}, cmd)
	}

	assert.Equal(t, 0, b.Len())
}

func TestBusKeepsPerSenderOrder(t *testing.T) {
	const (
		senders = 8
		each    = 200
	)

	b := NewBus()

	var wg sync.WaitGroup
	for s := 0; s < senders; s++ {
		wg.Add(1)

		go func(s int) {
			defer wg.Done()

			for i := 0; i < each; i++ {
				assert.NoError(t, b.Send(UpdateFilePriority{Index: s, FileIndex: i}))
			}
		}(s)
	}

	last := map[int]int{}
	for s := 0; s < senders; s++ {
		last[s] = -1
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for n := 0; n < senders*each; n++ {
		cmd, err := b.Receive(ctx)
		require.NoError(t, err)

		u := cmd.(UpdateFilePriority)
		assert.Equal(t, last[u.Index]+1, u.FileIndex)
		last[u.Index] = u.FileIndex
	}

	wg.Wait()
}

func TestBusReceiveWaitsForSend(t *testing.T) {
	b := NewBus()

	go func() {
		time.Sleep(10 * time.Millisecond)

		_ = b.Send(Refresh{})
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cmd, err := b.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, Refresh{}, cmd)
}

func TestBusReceiveHonorsContext(t *testing.T) {
	b := NewBus()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := b.Receive(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBusClosesAfterStop(t *testing.T) {
	b := NewBus()

	require.NoError(t, b.Send(Refresh{}))
	require.NoError(t, b.Send(Stop{}))
	assert.True(t, b.Closed())
	assert.ErrorIs(t, b.Send(Refresh{}), ErrBusClosed)

	// Whatever was sent before Stop can still be received.
	cmd, err := b.Receive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Refresh{}, cmd)

	cmd, err = b.Receive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Stop{}, cmd)
}

func TestBusSendAllStopsAtStop(t *testing.T) {
	b := NewBus()

	err := b.SendAll(Refresh{}, Stop{}, ForcedRefresh{})
	assert.ErrorIs(t, err, ErrBusClosed)
	assert.Equal(t, 2, b.Len())
}
