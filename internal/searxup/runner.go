package searxup

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Runner abstracts external tool invocation so the deployment driver
// can be exercised in tests without touching the host.
type Runner interface {
	// Capture runs the command and returns its combined output.
	Capture(ctx context.Context, name string, args ...string) (string, error)
	// Stream runs the command with output attached to the terminal
	// (and mirrored into the run log when one is set).
	Stream(ctx context.Context, name string, args ...string) error
}

// ExecRunner is the real Runner backed by os/exec.
type ExecRunner struct {
	// LogWriter receives a copy of all streamed output; nil disables
	// mirroring.
	LogWriter io.Writer
}

func (r *ExecRunner) Capture(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.WaitDelay = 5 * time.Second

	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	err := cmd.Run()
	out := strings.TrimRight(buf.String(), "\n")
	if err != nil {
		if ctx.Err() != nil {
			return out, fmt.Errorf("%s cancelled: %w", name, ctx.Err())
		}
		return out, fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return out, nil
}

func (r *ExecRunner) Stream(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.WaitDelay = 5 * time.Second

	stdout := io.Writer(os.Stdout)
	stderr := io.Writer(os.Stderr)
	if r.LogWriter != nil {
		stdout = io.MultiWriter(os.Stdout, r.LogWriter)
		stderr = io.MultiWriter(os.Stderr, r.LogWriter)
	}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%s cancelled: %w", name, ctx.Err())
		}
		return fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return nil
}
