package service

import "sync"

// userLocks hands out one mutex per user id. Entries are reference counted and removed once
// no goroutine holds or waits on them.
type userLocks struct {
	mu      sync.Mutex
	entries map[string]*userLockEntry
}

type userLockEntry struct {
	mu   sync.Mutex
	refs int
}

func newUserLocks() *userLocks {
	return &userLocks{entries: make(map[string]*userLockEntry)}
}

// lock blocks until the caller owns key and returns the matching unlock func.
func (l *userLocks) lock(key string) func() {
	l.mu.Lock()
	entry, ok := l.entries[key]
	if !ok {
		entry = &userLockEntry{}
		l.entries[key] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.entries, key)
		}
		l.mu.Unlock()
	}
}

func (l *userLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
