// Package room tracks which workspace ("room") each live connection is
// subscribed to. A connection is in at most one room at a time.
package room

import (
	"errors"
	"sort"
	"sync"
)

var ErrNotJoined = errors.New("connection has not joined a workspace")

// Tracker is process-wide membership state. Build one with NewTracker and
// share it by reference.
type Tracker struct {
	mu      sync.RWMutex
	members map[string]int64
	rooms   map[int64]map[string]struct{}
}

func NewTracker() *Tracker {
	return &Tracker{
		members: make(map[string]int64),
		rooms:   make(map[int64]map[string]struct{}),
	}
}

// Join maps connID to workspaceID, leaving any previous room first. It
// returns the room that was left, if any.
func (t *Tracker) Join(connID string, workspaceID int64) (left int64, hadPrevious bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	left, hadPrevious = t.leaveLocked(connID)

	t.members[connID] = workspaceID
	room, ok := t.rooms[workspaceID]
	if !ok {
		room = make(map[string]struct{})
		t.rooms[workspaceID] = room
	}
	room[connID] = struct{}{}

	return left, hadPrevious
}

// Leave removes connID from its room. ok is false when it was not in one.
func (t *Tracker) Leave(connID string) (workspaceID int64, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.leaveLocked(connID)
}

func (t *Tracker) IsJoined(connID string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.members[connID]
	return ok
}

func (t *Tracker) CurrentWorkspace(connID string) (int64, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	workspaceID, ok := t.members[connID]
	if !ok {
		return 0, ErrNotJoined
	}
	return workspaceID, nil
}

func (t *Tracker) CountInRoom(workspaceID int64) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rooms[workspaceID])
}

// Members returns a sorted snapshot of the connections in a room.
func (t *Tracker) Members(workspaceID int64) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	room := t.rooms[workspaceID]
	out := make([]string, 0, len(room))
	for connID := range room {
		out = append(out, connID)
	}
	sort.Strings(out)
	return out
}

// CloseRoom evicts every connection in the room and returns the evicted ids.
func (t *Tracker) CloseRoom(workspaceID int64) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	room := t.rooms[workspaceID]
	evicted := make([]string, 0, len(room))
	for connID := range room {
		delete(t.members, connID)
		evicted = append(evicted, connID)
	}
	delete(t.rooms, workspaceID)
	sort.Strings(evicted)
	return evicted
}

func (t *Tracker) leaveLocked(connID string) (int64, bool) {
	workspaceID, ok := t.members[connID]
	if !ok {
		return 0, false
	}
	delete(t.members, connID)

	room := t.rooms[workspaceID]
	delete(room, connID)
	if len(room) == 0 {
		delete(t.rooms, workspaceID)
	}
	return workspaceID, true
}
