package coordinator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeepFreshTicksWithinRefreshInterval(t *testing.T) {
	bus := NewBus()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)

		KeepFresh(ctx, bus)
	}()

	require.Eventually(t, func() bool {
		return bus.Len() >= 2
	}, RefreshInterval+KeepFreshInterval, 10*time.Millisecond)

	cancel()
	<-stopped

	cmd, err := bus.Receive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Refresh{}, cmd)
}

func TestKeepFreshStopsOnClosedBus(t *testing.T) {
	bus := NewBus()
	require.NoError(t, bus.Send(Stop{}))

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)

		KeepFresh(context.Background(), bus)
	}()

	select {
	case <-stopped:
	case <-time.After(2 * RefreshInterval):
		t.Fatal("KeepFresh did not return after the bus was closed")
	}
}
