package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/spotwatch/internal/monitor"
	"github.com/five82/spotwatch/internal/notify"
	"github.com/five82/spotwatch/internal/state"
)

type fetcherFunc func(ctx context.Context, target monitor.Target) (monitor.SlotWindow, error)

func (f fetcherFunc) Fetch(ctx context.Context, target monitor.Target) (monitor.SlotWindow, error) {
	return f(ctx, target)
}

type recorder struct {
	mu       sync.Mutex
	messages []string
	err      error
}

func (r *recorder) Notify(_ context.Context, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message)
	return r.err
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.messages)
}

func testTarget(areaID int64, slot string) monitor.Target {
	return monitor.Target{
		Gym:       monitor.Gym{ID: 7, Name: "Monk Eindhoven", NameShort: "Monk"},
		Area:      monitor.Area{ID: areaID, Name: fmt.Sprintf("Area %d", areaID), GymID: 7},
		Date:      "2024-01-01",
		TimeSlot:  slot,
		Threshold: 3,
	}
}

func newTestScheduler(f monitor.Fetcher, n notify.Notifier, store *state.Store) *Scheduler {
	return &Scheduler{
		Fetcher:  f,
		Notifier: n,
		Store:    store,
		Delay:    time.Millisecond,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func registered(targets ...monitor.Target) *state.Store {
	store := &state.Store{}
	for _, t := range targets {
		store.Register(t)
	}
	return store
}

func statusOf(t *testing.T, store *state.Store, key string) state.TargetStatus {
	t.Helper()
	for _, s := range store.Snapshot().Targets {
		if s.Key == key {
			return s
		}
	}
	t.Fatalf("no status for %s", key)
	return state.TargetStatus{}
}

func runAsync(ctx context.Context, s *Scheduler, targets ...monitor.Target) <-chan error {
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, targets) }()
	return done
}

func TestSchedulerRecoversFromTransientErrors(t *testing.T) {
	flaky := testTarget(1, "09:00")
	steady := testTarget(2, "10:00")

	var flakyCalls, steadyCalls atomic.Int32
	fetcher := fetcherFunc(func(_ context.Context, target monitor.Target) (monitor.SlotWindow, error) {
		if target.Area.ID == steady.Area.ID {
			steadyCalls.Add(1)
			return monitor.SlotWindow{Booked: 10, Total: 10}, nil
		}
		if flakyCalls.Add(1) <= 3 {
			return monitor.SlotWindow{}, errors.New("connection reset")
		}
		return monitor.SlotWindow{Booked: 5, Total: 10}, nil
	})

	notifier := &recorder{}
	store := registered(flaky, steady)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := runAsync(ctx, newTestScheduler(fetcher, notifier, store), flaky, steady)

	require.Eventually(t, func() bool { return notifier.count() > 0 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	assert.Equal(t, "Free spots for Monk:Area 1 2024-01-01 at 09:00: 5", notifier.messages[0])
	assert.GreaterOrEqual(t, flakyCalls.Load(), int32(4))
	assert.Positive(t, steadyCalls.Load())
	assert.Equal(t, 0, statusOf(t, store, flaky.Key()).ConsecutiveFailures)
}

func TestSchedulerFatalErrorEndsOnlyThatTarget(t *testing.T) {
	gone := testTarget(1, "09:00")
	alive := testTarget(2, "10:00")

	var aliveCalls atomic.Int32
	fetcher := fetcherFunc(func(_ context.Context, target monitor.Target) (monitor.SlotWindow, error) {
		if target.Area.ID == gone.Area.ID {
			return monitor.SlotWindow{}, fmt.Errorf("%w: gym removed", monitor.ErrFatal)
		}
		aliveCalls.Add(1)
		return monitor.SlotWindow{Booked: 10, Total: 10}, nil
	})

	store := registered(gone, alive)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := runAsync(ctx, newTestScheduler(fetcher, &recorder{}, store), gone, alive)

	require.Eventually(t, func() bool {
		return statusOf(t, store, gone.Key()).Phase == state.PhaseStopped && aliveCalls.Load() > 3
	}, 2*time.Second, 5*time.Millisecond)

	assert.Equal(t, state.PhasePolling, statusOf(t, store, alive.Key()).Phase)
	assert.Contains(t, statusOf(t, store, gone.Key()).StopReason, "gym removed")

	cancel()
	require.NoError(t, <-done)
}

func TestSchedulerRecoversPanics(t *testing.T) {
	broken := testTarget(1, "09:00")
	alive := testTarget(2, "10:00")

	var aliveCalls atomic.Int32
	fetcher := fetcherFunc(func(_ context.Context, target monitor.Target) (monitor.SlotWindow, error) {
		if target.Area.ID == broken.Area.ID {
			panic("boom")
		}
		aliveCalls.Add(1)
		return monitor.SlotWindow{Booked: 1, Total: 2}, nil
	})

	store := registered(broken, alive)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := runAsync(ctx, newTestScheduler(fetcher, &recorder{}, store), broken, alive)

	require.Eventually(t, func() bool {
		return statusOf(t, store, broken.Key()).Phase == state.PhaseStopped && aliveCalls.Load() > 3
	}, 2*time.Second, 5*time.Millisecond)
	assert.True(t, strings.HasPrefix(statusOf(t, store, broken.Key()).StopReason, "panic: boom"))

	cancel()
	require.NoError(t, <-done)
}

func TestSchedulerReturnsWhenEveryTargetStops(t *testing.T) {
	fetcher := fetcherFunc(func(context.Context, monitor.Target) (monitor.SlotWindow, error) {
		return monitor.SlotWindow{}, fmt.Errorf("slots: %w", monitor.ErrFatal)
	})

	err := newTestScheduler(fetcher, nil, nil).Run(context.Background(), []monitor.Target{testTarget(1, "09:00")})
	if !errors.Is(err, ErrAllTargetsStopped) {
		t.Fatalf("Run() error = %v, want ErrAllTargetsStopped", err)
	}
}

func TestSchedulerCancelInterruptsSleep(t *testing.T) {
	polled := make(chan struct{}, 1)
	fetcher := fetcherFunc(func(context.Context, monitor.Target) (monitor.SlotWindow, error) {
		select {
		case polled <- struct{}{}:
		default:
		}
		return monitor.SlotWindow{Booked: 10, Total: 10}, nil
	})

	s := newTestScheduler(fetcher, nil, nil)
	s.Delay = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(ctx, s, testTarget(1, "09:00"), testTarget(2, "10:00"))
	<-polled
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

func TestSchedulerNotificationFailureIsNotFatal(t *testing.T) {
	var calls atomic.Int32
	fetcher := fetcherFunc(func(context.Context, monitor.Target) (monitor.SlotWindow, error) {
		calls.Add(1)
		return monitor.SlotWindow{Booked: 0, Total: 8}, nil
	})
	notifier := &recorder{err: errors.New("telegram down")}
	target := testTarget(1, "09:00")
	store := registered(target)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := runAsync(ctx, newTestScheduler(fetcher, notifier, store), target)

	require.Eventually(t, func() bool { return notifier.count() >= 3 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	status := statusOf(t, store, target.Key())
	assert.Equal(t, 0, status.Notifications)
	assert.Equal(t, "available", status.Outcome)
}

func TestSchedulerGateSuppressesRepeats(t *testing.T) {
	var calls atomic.Int32
	fetcher := fetcherFunc(func(context.Context, monitor.Target) (monitor.SlotWindow, error) {
		calls.Add(1)
		return monitor.SlotWindow{Booked: 0, Total: 8}, nil
	})
	notifier := &recorder{}
	s := newTestScheduler(fetcher, notifier, nil)
	s.Gate = notify.NewMemoryGate(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := runAsync(ctx, s, testTarget(1, "09:00"))

	require.Eventually(t, func() bool { return calls.Load() > 5 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, 1, notifier.count())
}

func TestSchedulerGateRetriesAfterFailedNotification(t *testing.T) {
	fetcher := fetcherFunc(func(context.Context, monitor.Target) (monitor.SlotWindow, error) {
		return monitor.SlotWindow{Booked: 0, Total: 8}, nil
	})
	var attempts atomic.Int32
	notifier := notify.Func(func(context.Context, string) error {
		if attempts.Add(1) == 1 {
			return errors.New("telegram down")
		}
		return nil
	})
	target := testTarget(1, "09:00")
	store := registered(target)
	s := newTestScheduler(fetcher, notifier, store)
	s.Gate = notify.NewMemoryGate(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := runAsync(ctx, s, target)

	require.Eventually(t, func() bool { return statusOf(t, store, target.Key()).Notifications == 1 },
		2*time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	assert.Equal(t, int32(2), attempts.Load(), "one failed send, one delivered, then cooldown")
}

func TestSchedulerNotificationOutlivesCancellation(t *testing.T) {
	fetcher := fetcherFunc(func(context.Context, monitor.Target) (monitor.SlotWindow, error) {
		return monitor.SlotWindow{Booked: 0, Total: 8}, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{})
	var notifyErr error
	var once sync.Once
	notifier := notify.Func(func(nctx context.Context, _ string) error {
		once.Do(func() {
			close(started)
			cancel()
			time.Sleep(20 * time.Millisecond)
			notifyErr = nctx.Err()
		})
		return nil
	})

	done := runAsync(ctx, newTestScheduler(fetcher, notifier, nil), testTarget(1, "09:00"))
	<-started
	require.NoError(t, <-done)
	assert.NoError(t, notifyErr)
}

func TestSchedulerRejectsEmptyTargets(t *testing.T) {
	s := newTestScheduler(fetcherFunc(nil), nil, nil)
	if err := s.Run(context.Background(), nil); err == nil {
		t.Fatal("Run() with no targets should fail")
	}
}

func TestSleep(t *testing.T) {
	if !sleep(context.Background(), time.Millisecond) {
		t.Fatal("sleep() = false, want true")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if sleep(ctx, time.Hour) {
		t.Fatal("sleep() on cancelled context = true, want false")
	}
}
