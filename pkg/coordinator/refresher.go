package coordinator

import (
	"context"
	"time"
)

// KeepFreshInterval is the period of KeepFresh. It is shorter than
// RefreshInterval so that a tick which lands just inside the throttle window
// does not skip a whole period.
const KeepFreshInterval = RefreshInterval / 2

// KeepFresh sends a Refresh every KeepFreshInterval until ctx is done or the
// bus is closed.
func KeepFresh(ctx context.Context, bus *Bus) {
	t := time.NewTicker(KeepFreshInterval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := bus.Send(Refresh{}); err != nil {
				return
			}
		}
	}
}
