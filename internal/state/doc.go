// Package state provides the thread-safe status table shared by the polling
// goroutines, the dashboard and the status server.
//
// # Overview
//
// Every polling goroutine writes only its own row (keyed by monitor.Target.Key)
// and readers take copies with Snapshot. A row is created once at startup,
// either as polling (resolved target) or rejected (config or resolution error),
// and moves to stopped when its goroutine ends.
//
// # Update Semantics
//
//	// Success: counts replaced, failures reset
//	store.Record(key, monitor.Classify(target, booked, total))
//
//	// Error: counts kept, error recorded, failures incremented
//	store.Record(key, monitor.Failed(target, err))
//
// This lets the dashboard keep showing the last known capacity while a target
// is going through a rough patch upstream. IsFailing reports two or more
// consecutive failures.
//
// # Concurrency Model
//
// A single sync.RWMutex guards the table. The lock is held only while copying
// rows, never across network I/O. The zero Store is ready to use.
package state
