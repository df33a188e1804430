// Package ui provides the optional terminal dashboard of spotwatch.
//
// # Architecture
//
// The dashboard is a Bubble Tea program. It never talks to the booking API:
// it reads state.Store snapshots on every tick and tails the log file the
// rest of the process writes to while the dashboard owns the terminal.
//
//   - app.go: Model, Update loop, tick and snapshot commands, Run
//   - header.go: status bar and command bar
//   - targets.go: target table, filters and the detail pane
//   - logs.go: log viewport with follow mode and regex search
//   - help.go, keys.go: key bindings and the help overlay
//   - theme.go, style.go: palettes and rendering helpers
//
// # Views
//
//   - Targets: one row per configured target with free/booked counts and an
//     outcome badge; rejected and stopped targets stay visible
//   - Logs: the tail of the log file, colored by level
//
// # Lifecycle
//
// Run returns when the user quits or when the context in Options is
// cancelled. The caller cancels the polling scheduler in both cases.
//
// # Preferences
//
// The selected theme is persisted with the prefs package whenever it changes.
package ui
