package directory

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound  = errors.New("no match")
	ErrAmbiguous = errors.New("ambiguous match")
)

// Kind distinguishes the two resolution failures.
type Kind int

const (
	NotFound Kind = iota
	Ambiguous
)

// ResolutionError reports a gym or area query that did not resolve to exactly
// one entry.
type ResolutionError struct {
	Kind       Kind
	Subject    string // "gym" or "area"
	Query      string
	Candidates []string
}

func (e *ResolutionError) Error() string {
	if e.Kind == Ambiguous {
		return fmt.Sprintf("%s %q is ambiguous, candidates: %s", e.Subject, e.Query, strings.Join(e.Candidates, ", "))
	}
	if len(e.Candidates) > 0 {
		return fmt.Sprintf("%s %q not found, valid %ss are: %s", e.Subject, e.Query, e.Subject, strings.Join(e.Candidates, ", "))
	}
	return fmt.Sprintf("%s %q not found", e.Subject, e.Query)
}

func (e *ResolutionError) Is(target error) bool {
	switch e.Kind {
	case Ambiguous:
		return target == ErrAmbiguous
	default:
		return target == ErrNotFound
	}
}
