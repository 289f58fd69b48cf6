package realtime

import "sync"

// Session is the state carried alongside one connection. It is created on
// connect, changed on join and leave, and dropped on disconnect. A session
// is either unjoined or joined to exactly one workspace.
type Session struct {
	id string

	mu          sync.Mutex
	joined      bool
	workspaceID int64
}

func NewSession(id string) *Session {
	return &Session{id: id}
}

func (s *Session) ID() string {
	return s.id
}

// Workspace returns the joined workspace, if any.
func (s *Session) Workspace() (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.workspaceID, s.joined
}

// evict marks the session unjoined when it is still in workspaceID. It
// reports whether the session changed.
func (s *Session) evict(workspaceID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.joined || s.workspaceID != workspaceID {
		return false
	}
	s.joined = false
	s.workspaceID = 0
	return true
}
