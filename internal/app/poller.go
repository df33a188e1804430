package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/five82/spotwatch/internal/metrics"
	"github.com/five82/spotwatch/internal/monitor"
	"github.com/five82/spotwatch/internal/notify"
	"github.com/five82/spotwatch/internal/state"
)

const (
	defaultPollInterval  = 240 * time.Second
	defaultNotifyTimeout = 30 * time.Second
	gateReleaseTimeout   = 5 * time.Second
)

// ErrAllTargetsStopped is returned by Run when every polling goroutine ended
// on its own before the context was cancelled.
var ErrAllTargetsStopped = errors.New("all targets stopped")

// Scheduler polls each target in its own goroutine.
type Scheduler struct {
	Fetcher       monitor.Fetcher
	Notifier      notify.Notifier
	Gate          notify.Gate  // nil notifies on every available cycle
	Store         *state.Store // optional
	Delay         time.Duration
	NotifyTimeout time.Duration
	Logger        *slog.Logger
}

// Run blocks until every target goroutine has returned. Cancelling ctx stops
// all of them; a failure in one target never stops the others.
func (s *Scheduler) Run(ctx context.Context, targets []monitor.Target) error {
	if len(targets) == 0 {
		return fmt.Errorf("no targets to poll")
	}
	if s.Fetcher == nil {
		return fmt.Errorf("scheduler requires a fetcher")
	}

	var wg sync.WaitGroup
	for _, target := range targets {
		target := target
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.runTask(ctx, target)
		}()
	}
	wg.Wait()

	if ctx.Err() != nil {
		return nil
	}
	return ErrAllTargetsStopped
}

func (s *Scheduler) runTask(ctx context.Context, target monitor.Target) {
	logger := s.logger().With(
		slog.String("target", target.Key()),
		slog.String("place", target.Place()),
	)
	metrics.TaskStarted()

	reason := "cancelled"
	defer func() {
		if r := recover(); r != nil {
			reason = fmt.Sprintf("panic: %v", r)
			logger.Error("polling task crashed",
				slog.String("event", "task.panic"),
				slog.String("target_description", target.String()),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())),
			)
		}
		metrics.TaskStopped()
		if s.Store != nil {
			s.Store.Stop(target.Key(), reason)
		}
	}()

	logger.Debug("polling task started", slog.String("event", "task.start"))
	for ctx.Err() == nil {
		if err := s.cycle(ctx, target, logger); err != nil {
			reason = err.Error()
			logger.Error("polling task stopped",
				slog.String("event", "task.fatal"),
				slog.String("target_description", target.String()),
				slog.String("error", err.Error()),
			)
			return
		}
		if !sleep(ctx, s.delay()) {
			break
		}
	}
	logger.Debug("polling task cancelled", slog.String("event", "task.cancel"))
}

// cycle runs one fetch-classify-notify pass. Only fatal errors are returned.
func (s *Scheduler) cycle(ctx context.Context, target monitor.Target, logger *slog.Logger) error {
	start := time.Now()
	outcome, fatal := monitor.Poll(ctx, s.Fetcher, target)
	if outcome.Kind == monitor.KindError && ctx.Err() != nil {
		// Interrupted by shutdown, not an upstream failure.
		return nil
	}

	metrics.RecordPoll(target.Key(), outcome.Kind.String(), time.Since(start).Seconds())
	if s.Store != nil {
		s.Store.Record(target.Key(), outcome)
	}

	switch outcome.Kind {
	case monitor.KindError:
		logger.Warn(outcome.Message,
			slog.String("event", "poll.error"),
			slog.String("error", outcome.Err.Error()),
		)
		return fatal
	case monitor.KindFull:
		metrics.RecordFreeSpots(target.Key(), outcome.Free)
		logger.Info(outcome.Message, slog.String("event", "poll.full"))
	case monitor.KindAvailable:
		metrics.RecordFreeSpots(target.Key(), outcome.Free)
		logger.Info(outcome.Message, slog.String("event", "poll.available"))
		s.notify(ctx, target, outcome, logger)
	}
	return nil
}

func (s *Scheduler) notify(ctx context.Context, target monitor.Target, outcome monitor.Outcome, logger *slog.Logger) {
	if s.Notifier == nil {
		return
	}
	gated := false
	if s.Gate != nil {
		allowed, err := s.Gate.Allow(ctx, target.Key())
		if err != nil {
			// Fail open when the gate is unreachable.
			logger.Warn("notification gate unavailable",
				slog.String("event", "notify.gate.error"),
				slog.String("error", err.Error()),
			)
		} else if !allowed {
			metrics.RecordNotification("suppressed")
			logger.Debug("notification suppressed by cooldown", slog.String("event", "notify.suppressed"))
			return
		}
		gated = err == nil
	}

	// A notification that has started is allowed to finish even if shutdown
	// begins meanwhile.
	notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout())
	defer cancel()

	if err := s.Notifier.Notify(notifyCtx, outcome.Message); err != nil {
		metrics.RecordNotification("failed")
		logger.Error("notification failed",
			slog.String("event", "notify.fail"),
			slog.String("error", err.Error()),
		)
		if gated {
			releaseCtx, cancelRelease := context.WithTimeout(context.WithoutCancel(ctx), gateReleaseTimeout)
			defer cancelRelease()
			if err := s.Gate.Release(releaseCtx, target.Key()); err != nil {
				logger.Warn("failed to release notification cooldown",
					slog.String("event", "notify.gate.error"),
					slog.String("error", err.Error()),
				)
			}
		}
		return
	}
	metrics.RecordNotification("sent")
	if s.Store != nil {
		s.Store.Notified(target.Key())
	}
}

func (s *Scheduler) delay() time.Duration {
	if s.Delay <= 0 {
		return defaultPollInterval
	}
	return s.Delay
}

func (s *Scheduler) notifyTimeout() time.Duration {
	if s.NotifyTimeout <= 0 {
		return defaultNotifyTimeout
	}
	return s.NotifyTimeout
}

func (s *Scheduler) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

// sleep waits for d and reports false if ctx was cancelled first.
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
