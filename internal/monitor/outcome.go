package monitor

import (
	"errors"
	"fmt"
)

// Kind tags a poll outcome.
type Kind int

const (
	KindError Kind = iota
	KindFull
	KindAvailable
)

func (k Kind) String() string {
	switch k {
	case KindFull:
		return "full"
	case KindAvailable:
		return "available"
	default:
		return "error"
	}
}

// Outcome is the result of one polling cycle. Free, Booked and Total are only
// meaningful when Kind is not KindError; Err is only set when it is.
type Outcome struct {
	Kind    Kind
	Free    int
	Booked  int
	Total   int
	Err     error
	Message string
}

// ErrInconsistentCapacity marks a slot reporting more booked than total spots.
var ErrInconsistentCapacity = errors.New("inconsistent capacity")

// Classify turns booked/total counts into an outcome for target.
func Classify(target Target, booked, total int) Outcome {
	if booked < 0 || total < 0 || booked > total {
		return Failed(target, fmt.Errorf("%w: %d/%d booked", ErrInconsistentCapacity, booked, total))
	}
	free := total - booked
	if free >= target.Threshold {
		return Outcome{
			Kind:    KindAvailable,
			Free:    free,
			Booked:  booked,
			Total:   total,
			Message: fmt.Sprintf("Free spots for %s %s at %s: %d", target.Place(), target.Date, target.TimeSlot, free),
		}
	}
	return Outcome{
		Kind:    KindFull,
		Free:    free,
		Booked:  booked,
		Total:   total,
		Message: fmt.Sprintf("Status for %s %s at %s: %d/%d booked", target.Place(), target.Date, target.TimeSlot, booked, total),
	}
}

// Failed wraps a fetch failure as an error outcome.
func Failed(target Target, err error) Outcome {
	return Outcome{
		Kind:    KindError,
		Err:     err,
		Message: fmt.Sprintf("%s is invalid -> %v", target.Place(), err),
	}
}
