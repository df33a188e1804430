// Package notify delivers availability messages to the operator.
//
// Every Notifier must be safe for concurrent use: each polling goroutine calls
// Notify directly.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Notifier surfaces one message to a human.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

// Func adapts a function to Notifier.
type Func func(ctx context.Context, message string) error

func (f Func) Notify(ctx context.Context, message string) error { return f(ctx, message) }

// Nop drops every message.
type Nop struct{}

func (Nop) Notify(context.Context, string) error { return nil }

// Log writes messages to a logger at warn level so they stand out from poll
// status lines.
type Log struct {
	Logger *slog.Logger
}

func (l Log) Notify(ctx context.Context, message string) error {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.WarnContext(ctx, message, slog.String("event", "notify.log"))
	return nil
}

// Multi delivers each message to every notifier, even when some fail.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, message string) error {
	var errs []error
	for i, n := range m {
		if err := n.Notify(ctx, message); err != nil {
			errs = append(errs, fmt.Errorf("notifier %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}
