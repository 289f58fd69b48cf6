package service

import "sync"

// workspaceLocks hands out one mutex per workspace id. Entries are reference
// counted and dropped when the last holder unlocks.
type workspaceLocks struct {
	mu    sync.Mutex
	locks map[int64]*workspaceLock
}

type workspaceLock struct {
	mu   sync.Mutex
	refs int
}

func newWorkspaceLocks() *workspaceLocks {
	return &workspaceLocks{locks: make(map[int64]*workspaceLock)}
}

// lock blocks until the caller holds the workspace and returns the matching unlock.
func (l *workspaceLocks) lock(workspaceID int64) func() {
	l.mu.Lock()
	entry, ok := l.locks[workspaceID]
	if !ok {
		entry = &workspaceLock{}
		l.locks[workspaceID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, workspaceID)
		}
		l.mu.Unlock()
	}
}

func (l *workspaceLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
