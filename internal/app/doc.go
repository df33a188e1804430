// Package app is the composition root of spotwatch.
//
// # Overview
//
// Run loads the configuration, resolves every configured target against the
// TopLogger directory and then polls each resolved target in its own
// goroutine until the context is cancelled.
//
// # Components
//
//   - app.go: Run, logger setup and notifier/gate construction
//   - resolve.go: ResolveTargets, validation and name resolution of entries
//   - poller.go: Scheduler, the per-target polling loop
//
// # Data Flow
//
//	Run()
//	  ├─> config.Load()          read config.toml and .env
//	  ├─> toplogger.NewClient()  rate-limited API client
//	  ├─> ResolveTargets()       directory.Load + Resolve per entry
//	  ├─> server.Run()           optional status endpoint
//	  └─> Scheduler.Run()        one goroutine per target
//	        └─> monitor.Poll() -> store.Record() -> notifier.Notify()
//
// # Failure Handling
//
// Fatal for the whole run:
//   - missing or unparsable config
//   - gym directory cannot be fetched
//   - no entry resolves to a target
//
// Fatal for one target only:
//   - the slots endpoint reports the gym as gone (404/410)
//   - a panic inside the polling loop
//
// Everything else (network errors, bad JSON, missing slot, notification
// failures) is logged and retried after the configured delay.
//
// # Shutdown
//
// Cancelling the context wakes every sleeping target immediately. A
// notification already in flight runs to completion under its own timeout.
package app
