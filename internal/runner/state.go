package runner

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

var ErrAlreadyRunning = errors.New("прогон уже запущен")

// Snapshot - то, что отдаёт /api/status.
type Snapshot struct {
	Running      bool    `json:"running"`
	AppliedCount int     `json:"applied_count"`
	Error        *string `json:"error"`
	RunID        string  `json:"run_id,omitempty"`
}

// State is the process-wide run state shared by the loop and the HTTP handlers.
type State struct {
	mu      sync.RWMutex
	running bool
	applied int
	err     string
	runID   string
	newID   func() string
}

func NewState() *State {
	return &State{newID: uuid.NewString}
}

// Begin marks a new run as started and resets the counters.
func (s *State) Begin() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return "", ErrAlreadyRunning
	}
	s.running = true
	s.applied = 0
	s.err = ""
	s.runID = s.newID()
	return s.runID, nil
}

func (s *State) IncApplied() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applied++
	return s.applied
}

// Finish ends the run; a nil err keeps the error field empty.
func (s *State) Finish(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	if err != nil {
		s.err = err.Error()
	}
}

func (s *State) Running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Running:      s.running,
		AppliedCount: s.applied,
		RunID:        s.runID,
	}
	if s.err != "" {
		e := s.err
		snap.Error = &e
	}
	return snap
}
