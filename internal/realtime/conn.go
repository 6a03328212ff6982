package realtime

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event is a message pushed to a connected user. Name becomes the SSE event
// name and Data is encoded as JSON.
type Event struct {
	Name string
	Data any
}

// Conn is the server side of one live connection. The registry enqueues
// onto it without blocking; the connection's writer loop drains Outbound
// until Done is closed.
type Conn struct {
	ID          string
	ConnectedAt time.Time

	out       chan Event
	done      chan struct{}
	closeOnce sync.Once
}

// NewConn creates a connection whose outbound queue holds queueSize events.
func NewConn(queueSize int) *Conn {
	if queueSize <= 0 {
		queueSize = 1
	}
	return &Conn{
		ID:          uuid.NewString(),
		ConnectedAt: time.Now(),
		out:         make(chan Event, queueSize),
		done:        make(chan struct{}),
	}
}

// Outbound is drained by the connection's writer loop.
func (c *Conn) Outbound() <-chan Event {
	return c.out
}

// Done is closed once the connection is closed or replaced.
func (c *Conn) Done() <-chan struct{} {
	return c.done
}

// Close stops further deliveries. The outbound channel is never closed, so
// a concurrent enqueue cannot panic.
func (c *Conn) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

func (c *Conn) closed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// enqueue never blocks: it reports false if the connection is closed or
// its queue is full.
func (c *Conn) enqueue(ev Event) bool {
	if c.closed() {
		return false
	}
	select {
	case c.out <- ev:
		return true
	default:
		return false
	}
}
