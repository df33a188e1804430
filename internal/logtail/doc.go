// Package logtail reads the tail of the spotwatch log file for the dashboard.
//
// Read keeps only the last N lines in a ring buffer, so memory stays bounded
// no matter how large the file has grown:
//
//	lines, err := logtail.Read("~/.local/share/spotwatch/spotwatch.log", 2000)
//
// Level recognizes both slog handlers spotwatch can write with:
//
//	time=2024-01-01T09:00:00Z level=WARN msg="..."   -> "WARN"
//	{"time":"...","level":"ERROR","msg":"..."}       -> "ERROR"
package logtail
