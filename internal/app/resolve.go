package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/five82/spotwatch/internal/config"
	"github.com/five82/spotwatch/internal/directory"
	"github.com/five82/spotwatch/internal/metrics"
	"github.com/five82/spotwatch/internal/monitor"
	"github.com/five82/spotwatch/internal/state"
	"github.com/five82/spotwatch/internal/toplogger"
)

// ErrNoResolvedTargets is returned when every configured target was rejected.
var ErrNoResolvedTargets = errors.New("no target could be resolved")

// ResolveTargets validates the configured entries and resolves their gym and
// area names against the booking API. Entries that fail are logged, recorded
// as rejected in store and skipped.
func ResolveTargets(ctx context.Context, source toplogger.Directory, entries []config.TargetEntry, store *state.Store, logger *slog.Logger) ([]monitor.Target, error) {
	if logger == nil {
		logger = slog.Default()
	}
	dir, err := directory.Load(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("load gym directory: %w", err)
	}

	reject := func(index int, entry config.TargetEntry, reason string, err error) {
		metrics.RecordResolutionFailure(reason)
		logger.Error("target rejected",
			slog.String("event", "target.reject"),
			slog.Int("entry", index+1),
			slog.String("gym", entry.Gym),
			slog.String("area", entry.Area),
			slog.String("reason", reason),
			slog.String("error", err.Error()),
		)
		if store != nil {
			store.Reject(fmt.Sprintf("entry#%d", index+1), entryLabel(entry), err)
		}
	}

	targets := make([]monitor.Target, 0, len(entries))
	seen := make(map[string]int, len(entries))
	for i, entry := range entries {
		if err := entry.Validate(i); err != nil {
			reject(i, entry, "invalid_config", err)
			continue
		}

		gym, area, err := dir.Resolve(ctx, strings.TrimSpace(entry.Gym), strings.TrimSpace(entry.Area))
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			reject(i, entry, resolutionReason(err), err)
			continue
		}

		target := monitor.Target{
			Gym:       gym,
			Area:      area,
			Date:      strings.TrimSpace(entry.Date),
			TimeSlot:  strings.TrimSpace(entry.TimeSlot),
			Threshold: entry.Spots,
		}
		if prev, ok := seen[target.Key()]; ok {
			reject(i, entry, "duplicate", fmt.Errorf("duplicates target #%d", prev+1))
			continue
		}
		seen[target.Key()] = i

		logger.Info(target.String(),
			slog.String("event", "target.resolve"),
			slog.String("target", target.Key()),
		)
		if store != nil {
			store.Register(target)
		}
		targets = append(targets, target)
	}

	if len(targets) == 0 {
		return nil, ErrNoResolvedTargets
	}
	return targets, nil
}

func resolutionReason(err error) string {
	switch {
	case errors.Is(err, directory.ErrNotFound):
		return "not_found"
	case errors.Is(err, directory.ErrAmbiguous):
		return "ambiguous"
	default:
		return "lookup_failed"
	}
}

func entryLabel(entry config.TargetEntry) string {
	return fmt.Sprintf("%s:%s %s at %s (%d spots)", entry.Gym, entry.Area, entry.Date, entry.TimeSlot, entry.Spots)
}
