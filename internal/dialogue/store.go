package dialogue

import "sync"

// Store owns all sessions. The map lock only covers lookup and insert; each
// session has its own lock held for the length of a turn.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

// Acquire returns the session for id, creating it on first use, locked for
// exclusive use. The caller must call release when the turn is done.
func (st *Store) Acquire(id string) (s *Session, release func()) {
	s = st.lookup(id)
	s.mu.Lock()
	return s, s.mu.Unlock
}

func (st *Store) lookup(id string) *Session {
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()
	if ok {
		return s
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if s, ok := st.sessions[id]; ok {
		return s
	}
	s = newSession(id)
	st.sessions[id] = s
	return s
}

// Get returns a copy of the session state, waiting for any turn in progress.
func (st *Store) Get(id string) (State, bool) {
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return State{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot(), true
}

// Len returns the number of known sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
