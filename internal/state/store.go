package state

import (
	"sync"
	"time"

	"github.com/five82/spotwatch/internal/monitor"
)

// Phase is where a target is in its lifecycle.
type Phase string

const (
	PhasePolling  Phase = "polling"
	PhaseStopped  Phase = "stopped"
	PhaseRejected Phase = "rejected"
)

// TargetStatus is the latest known state of one target.
type TargetStatus struct {
	Key                 string    `json:"key"`
	Description         string    `json:"description"`
	Place               string    `json:"place"`
	Date                string    `json:"date"`
	TimeSlot            string    `json:"timeSlot"`
	Threshold           int       `json:"threshold"`
	Phase               Phase     `json:"phase"`
	Outcome             string    `json:"outcome,omitempty"`
	Free                int       `json:"free"`
	Booked              int       `json:"booked"`
	Total               int       `json:"total"`
	Message             string    `json:"message,omitempty"`
	LastError           string    `json:"lastError,omitempty"`
	Cycles              int       `json:"cycles"`
	ConsecutiveFailures int       `json:"consecutiveFailures"`
	Notifications       int       `json:"notifications"`
	LastUpdated         time.Time `json:"lastUpdated"`
	StopReason          string    `json:"stopReason,omitempty"`
}

// IsFailing returns true when the last polls kept failing.
func (s TargetStatus) IsFailing() bool {
	return s.ConsecutiveFailures >= 2
}

// Snapshot is a copy of every target status in registration order.
type Snapshot struct {
	RunID     string         `json:"runId"`
	StartedAt time.Time      `json:"startedAt"`
	Targets   []TargetStatus `json:"targets"`
}

// Counts returns how many targets are in each phase.
func (s Snapshot) Counts() map[Phase]int {
	counts := make(map[Phase]int)
	for _, t := range s.Targets {
		counts[t.Phase]++
	}
	return counts
}

// Store is shared by every polling goroutine, the dashboard and the status
// server. The zero value is ready to use.
type Store struct {
	mu        sync.RWMutex
	runID     string
	startedAt time.Time
	order     []string
	targets   map[string]*TargetStatus
}

// Begin records the run identity.
func (s *Store) Begin(runID string, startedAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runID = runID
	s.startedAt = startedAt
}

// Register adds a resolved target in the polling phase.
func (s *Store) Register(target monitor.Target) {
	s.put(TargetStatus{
		Key:         target.Key(),
		Description: target.String(),
		Place:       target.Place(),
		Date:        target.Date,
		TimeSlot:    target.TimeSlot,
		Threshold:   target.Threshold,
		Phase:       PhasePolling,
		LastUpdated: time.Now(),
	})
}

// Reject adds an entry that never started polling.
func (s *Store) Reject(key, description string, err error) {
	status := TargetStatus{
		Key:         key,
		Description: description,
		Phase:       PhaseRejected,
		LastUpdated: time.Now(),
	}
	if err != nil {
		status.LastError = err.Error()
		status.StopReason = err.Error()
	}
	s.put(status)
}

// Record stores the outcome of one cycle.
func (s *Store) Record(key string, outcome monitor.Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.targets[key]
	if !ok {
		return
	}
	t.Cycles++
	t.Outcome = outcome.Kind.String()
	t.Message = outcome.Message
	t.LastUpdated = time.Now()
	if outcome.Kind == monitor.KindError {
		t.ConsecutiveFailures++
		if outcome.Err != nil {
			t.LastError = outcome.Err.Error()
		}
		return
	}
	t.Free = outcome.Free
	t.Booked = outcome.Booked
	t.Total = outcome.Total
	t.LastError = ""
	t.ConsecutiveFailures = 0
}

// Notified counts a delivered notification.
func (s *Store) Notified(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.targets[key]; ok {
		t.Notifications++
	}
}

// Stop marks a target whose polling goroutine has ended.
func (s *Store) Stop(key, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.targets[key]; ok {
		t.Phase = PhaseStopped
		t.StopReason = reason
		t.LastUpdated = time.Now()
	}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{RunID: s.runID, StartedAt: s.startedAt}
	if len(s.order) == 0 {
		return snap
	}
	snap.Targets = make([]TargetStatus, 0, len(s.order))
	for _, key := range s.order {
		snap.Targets = append(snap.Targets, *s.targets[key])
	}
	return snap
}

func (s *Store) put(status TargetStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.targets == nil {
		s.targets = make(map[string]*TargetStatus)
	}
	if _, exists := s.targets[status.Key]; !exists {
		s.order = append(s.order, status.Key)
	}
	s.targets[status.Key] = &status
}
