package chain

import "sync"

// Shared guards process-wide state behind an exclusive-acquisition lock.
// One Shared value is created at dispatcher startup and handed to every
// in-flight request; it lives until shutdown.
//
// The guard does not protect against a holder that blocks: a step that
// performs I/O between Acquire and Release stalls every other request
// waiting on the same guard. Prefer Do with a short critical section.
type Shared[G any] struct {
	mu    sync.Mutex
	value G
}

// NewShared wraps value in a guard.
func NewShared[G any](value G) *Shared[G] {
	return &Shared[G]{value: value}
}

// Acquire takes the lock and returns the guarded value. The caller must
// call Release when done; until then every other Acquire blocks.
func (s *Shared[G]) Acquire() *G {
	s.mu.Lock()
	return &s.value
}

// Release gives the lock back.
func (s *Shared[G]) Release() {
	s.mu.Unlock()
}

// Do runs fn with the guard held.
func (s *Shared[G]) Do(fn func(*G)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.value)
}
