package notify

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Command runs an external program per message, with the message appended as
// the last argument. It covers desktop toasts and sound cues, e.g.
// ["notify-send", "spotwatch"].
type Command struct {
	argv []string
}

// NewCommand validates argv.
func NewCommand(argv []string) (*Command, error) {
	if len(argv) == 0 || strings.TrimSpace(argv[0]) == "" {
		return nil, fmt.Errorf("notify command is empty")
	}
	dup := make([]string, len(argv))
	copy(dup, argv)
	return &Command{argv: dup}, nil
}

func (c *Command) Notify(ctx context.Context, message string) error {
	args := append(append([]string{}, c.argv[1:]...), message)
	cmd := exec.CommandContext(ctx, c.argv[0], args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if detail := strings.TrimSpace(stderr.String()); detail != "" {
			return fmt.Errorf("run %s: %w: %s", c.argv[0], err, detail)
		}
		return fmt.Errorf("run %s: %w", c.argv[0], err)
	}
	return nil
}
