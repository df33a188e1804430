package state

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/five82/spotwatch/internal/monitor"
)

func testTarget() monitor.Target {
	return monitor.Target{
		Gym:       monitor.Gym{ID: 6, NameShort: "Monk"},
		Area:      monitor.Area{ID: 33, Name: "Up", GymID: 6},
		Date:      "2024-01-01",
		TimeSlot:  "09:00",
		Threshold: 3,
	}
}

func TestStore_RegisterAndRecord(t *testing.T) {
	var s Store
	target := testTarget()
	s.Register(target)

	before := time.Now()
	s.Record(target.Key(), monitor.Classify(target, 30, 33))

	snap := s.Snapshot()
	if len(snap.Targets) != 1 {
		t.Fatalf("targets = %d, want 1", len(snap.Targets))
	}
	got := snap.Targets[0]
	if got.Phase != PhasePolling || got.Outcome != "available" || got.Free != 3 || got.Total != 33 {
		t.Fatalf("status = %#v, want polling available 3/33", got)
	}
	if got.Cycles != 1 || got.LastUpdated.Before(before) {
		t.Fatalf("cycles/updated = %d/%v", got.Cycles, got.LastUpdated)
	}
	if got.Place != "Monk:Up" || got.Threshold != 3 {
		t.Fatalf("identity = %q/%d", got.Place, got.Threshold)
	}
}

func TestStore_ErrorKeepsPreviousCounts(t *testing.T) {
	var s Store
	target := testTarget()
	s.Register(target)
	s.Record(target.Key(), monitor.Classify(target, 31, 33))

	s.Record(target.Key(), monitor.Failed(target, errors.New("boom")))
	got := s.Snapshot().Targets[0]
	if got.Booked != 31 || got.Total != 33 {
		t.Fatalf("counts changed on error: %d/%d", got.Booked, got.Total)
	}
	if got.LastError != "boom" || got.Outcome != "error" {
		t.Fatalf("error state = %q/%q", got.LastError, got.Outcome)
	}
	if got.IsFailing() {
		t.Fatal("IsFailing() = true after a single failure")
	}

	s.Record(target.Key(), monitor.Failed(target, errors.New("boom again")))
	if got := s.Snapshot().Targets[0]; !got.IsFailing() || got.ConsecutiveFailures != 2 {
		t.Fatalf("ConsecutiveFailures = %d, want 2 and failing", got.ConsecutiveFailures)
	}

	s.Record(target.Key(), monitor.Classify(target, 33, 33))
	if got := s.Snapshot().Targets[0]; got.ConsecutiveFailures != 0 || got.LastError != "" {
		t.Fatalf("success did not reset failures: %#v", got)
	}
}

func TestStore_PhasesAndCounts(t *testing.T) {
	var s Store
	target := testTarget()
	s.Begin("run-1", time.Unix(100, 0))
	s.Register(target)
	s.Reject("entry#2", "sterk:cafe", errors.New("area \"cafe\" not found"))
	s.Notified(target.Key())
	s.Stop(target.Key(), "panic: boom")

	snap := s.Snapshot()
	if snap.RunID != "run-1" || !snap.StartedAt.Equal(time.Unix(100, 0)) {
		t.Fatalf("run identity = %q/%v", snap.RunID, snap.StartedAt)
	}
	counts := snap.Counts()
	if counts[PhaseStopped] != 1 || counts[PhaseRejected] != 1 || counts[PhasePolling] != 0 {
		t.Fatalf("Counts = %v", counts)
	}
	if snap.Targets[0].Notifications != 1 || snap.Targets[0].StopReason != "panic: boom" {
		t.Fatalf("stopped target = %#v", snap.Targets[0])
	}
	if snap.Targets[1].LastError == "" {
		t.Fatalf("rejected target has no error: %#v", snap.Targets[1])
	}
}

func TestStore_UnknownKeyIgnored(t *testing.T) {
	var s Store
	s.Record("missing", monitor.Outcome{Kind: monitor.KindFull})
	s.Notified("missing")
	s.Stop("missing", "x")
	if snap := s.Snapshot(); len(snap.Targets) != 0 {
		t.Fatalf("targets = %#v, want none", snap.Targets)
	}
}

func TestStore_SnapshotIsCopy(t *testing.T) {
	var s Store
	target := testTarget()
	s.Register(target)

	snap := s.Snapshot()
	snap.Targets[0].Cycles = 99
	if s.Snapshot().Targets[0].Cycles != 0 {
		t.Fatal("Snapshot should copy target statuses")
	}
}

func TestStore_ConcurrentRecord(t *testing.T) {
	var s Store
	target := testTarget()
	s.Register(target)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Record(target.Key(), monitor.Classify(target, 30, 33))
			_ = s.Snapshot()
		}()
	}
	wg.Wait()

	if got := s.Snapshot().Targets[0].Cycles; got != 50 {
		t.Fatalf("Cycles = %d, want 50", got)
	}
}
