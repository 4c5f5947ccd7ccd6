package coordinator

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrBusClosed = errors.New("command bus is closed")
)

// Bus is an unbounded FIFO with any number of senders and a single receiver.
// It closes once a Stop has been sent.
type Bus struct {
	lock   sync.Mutex
	queue  []Command
	closed bool

	notify chan struct{}
}

func NewBus() *Bus {
	return &Bus{
		queue:  []Command{},
		notify: make(chan struct{}, 1),
	}
}

// Send enqueues a command. It never blocks.
func (b *Bus) Send(cmd Command) error {
	b.lock.Lock()
	defer b.lock.Unlock()

	if b.closed {
		return ErrBusClosed
	}

	b.push(cmd)

	if _, ok := cmd.(Stop); ok {
		b.closed = true
	}

	return nil
}

// SendAll enqueues commands back to back, so that no other sender can interleave.
func (b *Bus) SendAll(cmds ...Command) error {
	b.lock.Lock()
	defer b.lock.Unlock()

	for _, cmd := range cmds {
		if b.closed {
			return ErrBusClosed
		}

		b.push(cmd)

		if _, ok := cmd.(Stop); ok {
			b.closed = true
		}
	}

	return nil
}

func (b *Bus) push(cmd Command) {
	b.queue = append(b.queue, cmd)

	select {
	case b.notify <- struct{}{}:
	default:
	}
}

// Receive blocks until a command is available or ctx is done.
func (b *Bus) Receive(ctx context.Context) (Command, error) {
	for {
		b.lock.Lock()
		if len(b.queue) > 0 {
			cmd := b.queue[0]
			b.queue[0] = nil
			b.queue = b.queue[1:]
			b.lock.Unlock()

			return cmd, nil
		}
		b.lock.Unlock()

		select {
		case <-b.notify:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (b *Bus) Close() {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.closed = true
}

func (b *Bus) Closed() bool {
	b.lock.Lock()
	defer b.lock.Unlock()

	return b.closed
}

func (b *Bus) Len() int {
	b.lock.Lock()
	defer b.lock.Unlock()

	return len(b.queue)
}
