package monitor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/five82/spotwatch/internal/toplogger"
)

// ErrSlotNotFound is matched by SlotNotFoundError.
var ErrSlotNotFound = errors.New("slot not found")

// ErrFatal marks failures after which a target cannot be polled again.
var ErrFatal = errors.New("target cannot continue")

// SlotNotFoundError reports a time slot that does not exist on the date.
type SlotNotFoundError struct {
	TimeSlot string
	Date     string
}

func (e *SlotNotFoundError) Error() string {
	return fmt.Sprintf("no time slot that starts at '%s' on %s", e.TimeSlot, e.Date)
}

func (e *SlotNotFoundError) Is(target error) bool {
	return target == ErrSlotNotFound
}

// SlotWindow is the capacity of one upstream slot.
type SlotWindow struct {
	StartAt string
	Booked  int
	Total   int
}

// Fetcher returns the slot window a target watches.
type Fetcher interface {
	Fetch(ctx context.Context, target Target) (SlotWindow, error)
}

// SlotFetcher implements Fetcher on top of the TopLogger slots endpoint.
type SlotFetcher struct {
	source toplogger.SlotLister
}

var _ Fetcher = (*SlotFetcher)(nil)

// NewSlotFetcher wraps source.
func NewSlotFetcher(source toplogger.SlotLister) *SlotFetcher {
	return &SlotFetcher{source: source}
}

// Fetch returns the first slot whose start_at contains target.TimeSlot.
func (f *SlotFetcher) Fetch(ctx context.Context, target Target) (SlotWindow, error) {
	slots, err := f.source.FetchSlots(ctx, toplogger.SlotQuery{
		GymID:  target.Gym.ID,
		AreaID: target.Area.ID,
		Date:   target.Date,
	})
	if err != nil {
		var statusErr *toplogger.StatusError
		if errors.As(err, &statusErr) && statusErr.Gone() {
			return SlotWindow{}, fmt.Errorf("%w: %w", ErrFatal, err)
		}
		return SlotWindow{}, fmt.Errorf("fetch slots: %w", err)
	}
	return FindSlot(slots, target.TimeSlot, target.Date)
}

// FindSlot picks the first slot whose start_at contains timeSlot.
func FindSlot(slots []toplogger.Slot, timeSlot, date string) (SlotWindow, error) {
	for _, slot := range slots {
		if strings.Contains(slot.StartAt, timeSlot) {
			return SlotWindow{StartAt: slot.StartAt, Booked: slot.SpotsBooked, Total: slot.Spots}, nil
		}
	}
	return SlotWindow{}, &SlotNotFoundError{TimeSlot: timeSlot, Date: date}
}

// Poll runs one fetch-and-classify cycle. Failures become error outcomes; the
// returned error is non-nil only when it wraps ErrFatal.
func Poll(ctx context.Context, fetcher Fetcher, target Target) (Outcome, error) {
	window, err := fetcher.Fetch(ctx, target)
	if err != nil {
		outcome := Failed(target, err)
		if errors.Is(err, ErrFatal) {
			return outcome, err
		}
		return outcome, nil
	}
	return Classify(target, window.Booked, window.Total), nil
}
