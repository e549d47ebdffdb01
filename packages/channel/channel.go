// Package channel provides a single-producer/single-consumer FIFO with close
// semantics. It connects the formula lexer, which pushes tokens as it scans,
// to the parser, which pops and peeks them one at a time.
//
// Unlike a Go chan, a Channel has an unbounded buffer (Push never blocks),
// a non-removing Peek, and a Close that lets buffered values drain before
// consumers see ErrClosed.
package channel

import (
	"errors"
	"sync"
)

var (
	// ErrClosed is returned by Pop and Peek on an empty, closed channel and
	// by Push on a closed channel.
	ErrClosed = errors.New("channel closed")

	// ErrBusy is returned when a second consumer tries to wait on Pop (or
	// Peek) while another one is already suspended on it.
	ErrBusy = errors.New("channel already has a waiting consumer")
)

// Channel is a FIFO queue with one producer and one consumer
type Channel[T any] struct {
	mu      sync.Mutex
	ready   *sync.Cond
	buffer  []T
	closed  bool
	popping bool // a Pop caller is suspended
	peeking bool // a Peek caller is suspended

	// value handed to a suspended Peek by Push, so that a Pop woken by the
	// same Push cannot take it away first
	handoff       T
	handoffFilled bool
}

// New creates an open, empty channel
func New[T any]() *Channel[T] {
	c := &Channel[T]{}
	c.ready = sync.NewCond(&c.mu)
	return c
}

// Push enqueues value and wakes any suspended consumer
func (c *Channel[T]) Push(value T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	c.buffer = append(c.buffer, value)
	if c.peeking && !c.handoffFilled {
		c.handoff = c.buffer[0]
		c.handoffFilled = true
	}
	c.ready.Broadcast()
	return nil
}

// Pop removes and returns the oldest value, suspending until one is pushed
// or the channel is closed.
func (c *Channel[T]) Pop() (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.waitPop(); err != nil {
		var zero T
		return zero, err
	}

	value := c.buffer[0]
	var zero T
	c.buffer[0] = zero // drop the reference held by the backing array
	c.buffer = c.buffer[1:]
	return value, nil
}

// Peek returns the oldest value without removing it, suspending like Pop
func (c *Channel[T]) Peek() (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	if len(c.buffer) > 0 {
		return c.buffer[0], nil
	}
	if c.closed {
		return zero, ErrClosed
	}
	if c.peeking {
		return zero, ErrBusy
	}

	c.peeking = true
	for !c.handoffFilled && len(c.buffer) == 0 && !c.closed {
		c.ready.Wait()
	}
	c.peeking = false

	if c.handoffFilled {
		value := c.handoff
		c.handoff, c.handoffFilled = zero, false
		return value, nil
	}
	if len(c.buffer) > 0 {
		return c.buffer[0], nil
	}
	return zero, ErrClosed
}

// waitPop blocks until the buffer is non-empty or the channel is closed
// and empty. c.mu must be held.
func (c *Channel[T]) waitPop() error {
	if len(c.buffer) > 0 {
		return nil
	}
	if c.closed {
		return ErrClosed
	}
	if c.popping {
		return ErrBusy
	}

	c.popping = true
	defer func() { c.popping = false }()

	for len(c.buffer) == 0 && !c.closed {
		c.ready.Wait()
	}
	if len(c.buffer) == 0 {
		return ErrClosed
	}
	return nil
}

// Close marks that no further values will be pushed. buffered values can
// still be popped; after that Pop and Peek fail with ErrClosed. closing an
// already closed channel is a no-op.
func (c *Channel[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	c.ready.Broadcast()
}

// Receiving reports whether a Pop could still return a value, either
// because values are buffered or because the channel is open.
func (c *Channel[T]) Receiving() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.buffer) > 0 || !c.closed
}

// Len returns the number of buffered values
func (c *Channel[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.buffer)
}
