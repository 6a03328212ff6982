package realtime

import (
	"sync"

	"go.uber.org/zap"
)

// Registry maps each user to at most one live connection. A newer
// connection from the same user replaces (and closes) the older one.
type Registry struct {
	mu     sync.RWMutex
	conns  map[string]*Conn
	logger *zap.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		conns:  make(map[string]*Conn),
		logger: logger,
	}
}

// Register stores conn for an already authenticated user.
func (r *Registry) Register(userID string, conn *Conn) {
	r.mu.Lock()
	prev := r.conns[userID]
	r.conns[userID] = conn
	r.mu.Unlock()

	if prev != nil && prev != conn {
		prev.Close()
		r.logger.Info("Connection replaced",
			zap.String("user_id", userID),
			zap.String("conn_id", conn.ID),
			zap.String("replaced_conn_id", prev.ID),
		)
		return
	}
	r.logger.Info("User connected", zap.String("user_id", userID), zap.String("conn_id", conn.ID))
}

// Unregister removes the mapping only if it still points at conn, so a
// late disconnect cannot evict a newer connection.
func (r *Registry) Unregister(userID string, conn *Conn) bool {
	r.mu.Lock()
	current, ok := r.conns[userID]
	removed := ok && current == conn
	if removed {
		delete(r.conns, userID)
	}
	r.mu.Unlock()

	conn.Close()
	if removed {
		r.logger.Info("User disconnected", zap.String("user_id", userID), zap.String("conn_id", conn.ID))
	}
	return removed
}

// Push enqueues ev for userID. It is a no-op when the user is not connected
// and never blocks; the return value reports whether ev was queued.
func (r *Registry) Push(userID string, ev Event) bool {
	r.mu.RLock()
	conn, ok := r.conns[userID]
	r.mu.RUnlock()

	if !ok {
		return false
	}
	if !conn.enqueue(ev) {
		r.logger.Warn("Dropped realtime event",
			zap.String("user_id", userID),
			zap.String("conn_id", conn.ID),
			zap.String("event", ev.Name),
		)
		return false
	}
	return true
}

// Connected reports whether userID has a live connection.
func (r *Registry) Connected(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.conns[userID]
	return ok
}

// Len returns the number of connected users.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// CloseAll closes every connection, letting their writer loops return
// before the HTTP server shuts down.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	conns := r.conns
	r.conns = make(map[string]*Conn)
	r.mu.Unlock()

	for _, conn := range conns {
		conn.Close()
	}
}
