package backend

import "sync"

// Handle is a consistent snapshot of the supervised backend.
type Handle struct {
	// Port is zero when no backend has been launched.
	Port int

	// Process is nil when no process is held.
	Process Process
}

// Store is the single lifecycle record shared by startup, proxying,
// streaming, and shutdown. Critical sections only copy or replace values;
// no I/O happens while the lock is held.
type Store struct {
	mu     sync.RWMutex
	handle Handle
	closed bool
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Port returns the recorded port and whether one is set.
func (s *Store) Port() (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.handle.Port, s.handle.Port != 0
}

// Snapshot returns a copy of the current handle.
func (s *Store) Snapshot() Handle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.handle
}

// SetLaunched records a freshly spawned backend. A port may be assigned only
// once between a launch and the following shutdown, and never after Close.
func (s *Store) SetLaunched(port int, proc Process) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrShuttingDown
	}
	if s.handle.Port != 0 {
		return ErrAlreadyLaunched
	}
	s.handle = Handle{Port: port, Process: proc}
	return nil
}

// TakeProcess clears and returns the process reference.
func (s *Store) TakeProcess() Process {
	s.mu.Lock()
	defer s.mu.Unlock()
	proc := s.handle.Process
	s.handle.Process = nil
	return proc
}

// ClearPort forgets the recorded port.
func (s *Store) ClearPort() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handle.Port = 0
}

// Close makes every later SetLaunched fail with ErrShuttingDown. A launch
// still in flight when shutdown starts must then dispose of its own process.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}
