package realtime

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRegistry() *Registry {
	return NewRegistry(zap.NewNop())
}

func TestRegistry_PushToConnectedUser(t *testing.T) {
	r := newTestRegistry()
	conn := NewConn(4)
	r.Register("alice", conn)

	ok := r.Push("alice", Event{Name: "SWAP_REQUESTED", Data: "hello"})
	require.True(t, ok)

	select {
	case ev := <-conn.Outbound():
		assert.Equal(t, "SWAP_REQUESTED", ev.Name)
		assert.Equal(t, "hello", ev.Data)
	default:
		t.Fatal("expected an event on the outbound queue")
	}
}

func TestRegistry_PushToAbsentUserIsNoop(t *testing.T) {
	r := newTestRegistry()
	assert.False(t, r.Push("nobody", Event{Name: "x"}))
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_RegisterReplacesAndClosesPrevious(t *testing.T) {
	r := newTestRegistry()
	first := NewConn(4)
	second := NewConn(4)

	r.Register("alice", first)
	r.Register("alice", second)

	select {
	case <-first.Done():
	default:
		t.Fatal("replaced connection should be closed")
	}
	assert.Equal(t, 1, r.Len())

	require.True(t, r.Push("alice", Event{Name: "ping"}))
	assert.Len(t, second.Outbound(), 1)
	assert.Len(t, first.Outbound(), 0)
}

func TestRegistry_StaleUnregisterKeepsNewerConnection(t *testing.T) {
	r := newTestRegistry()
	first := NewConn(4)
	second := NewConn(4)

	r.Register("alice", first)
	r.Register("alice", second)

	assert.False(t, r.Unregister("alice", first))
	assert.True(t, r.Connected("alice"))

	assert.True(t, r.Unregister("alice", second))
	assert.False(t, r.Connected("alice"))
}

func TestRegistry_FullQueueDropsEvent(t *testing.T) {
	r := newTestRegistry()
	conn := NewConn(1)
	r.Register("alice", conn)

	assert.True(t, r.Push("alice", Event{Name: "first"}))
	assert.False(t, r.Push("alice", Event{Name: "second"}))

	ev := <-conn.Outbound()
	assert.Equal(t, "first", ev.Name)
}

func TestRegistry_PushAfterCloseIsDropped(t *testing.T) {
	r := newTestRegistry()
	conn := NewConn(4)
	r.Register("alice", conn)
	conn.Close()

	assert.False(t, r.Push("alice", Event{Name: "late"}))
}

func TestRegistry_CloseAll(t *testing.T) {
	r := newTestRegistry()
	a, b := NewConn(1), NewConn(1)
	r.Register("alice", a)
	r.Register("bob", b)

	r.CloseAll()

	assert.Equal(t, 0, r.Len())
	for _, c := range []*Conn{a, b} {
		select {
		case <-c.Done():
		default:
			t.Fatal("connection should be closed")
		}
	}
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := newTestRegistry()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			user := fmt.Sprintf("user-%d", i%5)
			conn := NewConn(2)
			r.Register(user, conn)
			r.Push(user, Event{Name: "tick"})
			r.Connected(user)
			r.Unregister(user, conn)
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, r.Len(), 5)
}
