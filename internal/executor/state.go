package executor

import (
	"sync"
	"time"

	"github.com/hrideymarwah15/studyassistant/internal/bridge"
	"github.com/hrideymarwah15/studyassistant/internal/nlu"
)

// Status is the lifecycle state of one multi-step run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusWaiting   Status = "waiting"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// ExecutionState tracks the progress of one multi-step command. A single
// executor invocation owns and mutates it; nothing else writes to it.
type ExecutionState struct {
	CommandID   string
	Intent      string
	CurrentStep int
	TotalSteps  int
	Results     map[string]map[string]any // step id -> output data, append-only
	Status      Status
	Error       string
	WaitingStep string // id of the step awaiting user input, when Status is waiting

	// Retained so a waiting run can be re-entered.
	Steps      []nlu.CommandStep
	Completion string
	Context    *bridge.CommandContext

	UpdatedAt time.Time
}

// StateStore keeps execution states keyed by command id. Each run gets a
// unique id, so entries are never written concurrently; the store itself is
// safe for concurrent lookups.
type StateStore struct {
	mu     sync.RWMutex
	states map[string]*ExecutionState
	ttl    time.Duration
}

const defaultStateTTL = 30 * time.Minute

func NewStateStore() *StateStore {
	return &StateStore{
		states: make(map[string]*ExecutionState),
		ttl:    defaultStateTTL,
	}
}

// SetTTL overrides the eviction window.
func (s *StateStore) SetTTL(ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	s.mu.Lock()
	s.ttl = ttl
	s.mu.Unlock()
}

func (s *StateStore) Put(st *ExecutionState) {
	s.mu.Lock()
	s.states[st.CommandID] = st
	s.mu.Unlock()
}

func (s *StateStore) Get(commandID string) (*ExecutionState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.states[commandID]
	return st, ok
}

// Sweep evicts states that have been idle past the TTL. Terminal states and
// abandoned waiting states both go; without this the map grows forever.
func (s *StateStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := time.Now().Add(-s.ttl)

	evicted := 0
	for id, st := range s.states {
		if st.UpdatedAt.Before(cutoff) {
			delete(s.states, id)
			evicted++
		}
	}
	return evicted
}

func (s *StateStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.states)
}
