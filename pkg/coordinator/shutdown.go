package coordinator

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
)

func (c *Coordinator) stop() {
	c.bus.Close()

	c.stopOnce.Do(func() {
		log.Trace().Msg("Shutting down engine")

		func() {
			defer func() {
				if r := recover(); r != nil {
					c.shutdownErr = fmt.Errorf("%w: shutdown: %v", ErrCommandPanicked, r)
				}
			}()

			c.shutdownErr = c.engine.Shutdown()
		}()

		c.safeToExit.Store(true)
		close(c.done)
	})
}

// Stop sends Stop and blocks until the engine has been shut down or ctx is done.
func (c *Coordinator) Stop(ctx context.Context) error {
	if err := c.bus.Send(Stop{}); err != nil && !errors.Is(err, ErrBusClosed) {
		return err
	}

	select {
	case <-c.done:
		return c.shutdownErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SafeToExit reports whether the engine has been released.
func (c *Coordinator) SafeToExit() bool {
	return c.safeToExit.Load()
}

func (c *Coordinator) Done() <-chan struct{} {
	return c.done
}

func (c *Coordinator) Wait() error {
	<-c.done

	return c.shutdownErr
}
