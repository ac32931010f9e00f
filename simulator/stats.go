package simulator

import "sync"

// Stats aggregates per-action outcome counts across all users.
type Stats struct {
	mu        sync.Mutex
	successes map[ActionKind]uint64
	failures  map[ActionKind]uint64
}

// NewStats creates an empty Stats.
func NewStats() *Stats {
	return &Stats{
		successes: make(map[ActionKind]uint64),
		failures:  make(map[ActionKind]uint64),
	}
}

func (s *Stats) recordSuccess(kind ActionKind) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.successes[kind]++
}

func (s *Stats) recordFailure(kind ActionKind) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failures[kind]++
}

// Successes returns the number of committed executions of one action.
func (s *Stats) Successes(kind ActionKind) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.successes[kind]
}

// Failures returns the number of failed executions of one action.
func (s *Stats) Failures(kind ActionKind) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.failures[kind]
}

// Totals returns the aggregate success and failure counts.
func (s *Stats) Totals() (successes, failures uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, n := range s.successes {
		successes += n
	}
	for _, n := range s.failures {
		failures += n
	}

	return successes, failures
}
