package flow

import "sync"

// Store keeps per-user sessions in memory and serializes transitions so a
// double-tapped button cannot interleave with itself.
type Store struct {
	mu       sync.RWMutex
	machine  Machine
	sessions map[int64]Session
}

// NewStore constructs a session store driven by the given machine.
func NewStore(machine Machine) *Store {
	return &Store{
		machine:  machine,
		sessions: make(map[int64]Session),
	}
}

// Get returns the user's session, an idle one if none exists.
func (st *Store) Get(userID int64) Session {
	st.mu.RLock()
	defer st.mu.RUnlock()
	if s, ok := st.sessions[userID]; ok {
		return s
	}
	return Session{Step: StepIdle}
}

// Step returns the user's current flow step.
func (st *Store) Step(userID int64) Step {
	return st.Get(userID).Step
}

// InProgress reports whether the user has an active flow.
func (st *Store) InProgress(userID int64) bool {
	return st.Step(userID) != StepIdle
}

// Reset discards any active flow for the user.
func (st *Store) Reset(userID int64) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, userID)
}

// Apply runs one transition for the user under the store lock and persists
// the resulting session. Idle sessions are dropped from the map so completed
// and cancelled flows do not accumulate.
func (st *Store) Apply(userID int64, ev Event) Result {
	st.mu.Lock()
	defer st.mu.Unlock()

	current, ok := st.sessions[userID]
	if !ok {
		current = Session{Step: StepIdle}
	}
	res := st.machine.Apply(current, ev)
	if res.Session.Step == StepIdle {
		delete(st.sessions, userID)
	} else {
		st.sessions[userID] = res.Session
	}
	return res
}
