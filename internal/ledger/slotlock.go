package ledger

import (
	"sort"
	"sync"
)

// slotLocks serializes work per slot inside one process. Entries are
// reference counted and removed once nobody holds or waits for them.
type slotLocks struct {
	mu      sync.Mutex
	entries map[string]*slotLockEntry
}

type slotLockEntry struct {
	mu   sync.Mutex
	refs int
}

func newSlotLocks() *slotLocks {
	return &slotLocks{entries: make(map[string]*slotLockEntry)}
}

// Lock acquires the locks of all ids in sorted order, so two callers
// locking the same pair can never deadlock. Duplicates are ignored.
// The returned func releases everything.
func (l *slotLocks) Lock(ids ...string) func() {
	keys := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		keys = append(keys, id)
	}
	sort.Strings(keys)

	held := make([]*slotLockEntry, 0, len(keys))
	for _, key := range keys {
		held = append(held, l.acquire(key))
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			for i := len(held) - 1; i >= 0; i-- {
				l.release(keys[i], held[i])
			}
		})
	}
}

func (l *slotLocks) acquire(key string) *slotLockEntry {
	l.mu.Lock()
	e, ok := l.entries[key]
	if !ok {
		e = &slotLockEntry{}
		l.entries[key] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
	return e
}

func (l *slotLocks) release(key string, e *slotLockEntry) {
	e.mu.Unlock()

	l.mu.Lock()
	e.refs--
	if e.refs == 0 {
		delete(l.entries, key)
	}
	l.mu.Unlock()
}

func (l *slotLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
