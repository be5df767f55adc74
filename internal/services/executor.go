package services

import (
	"context"
	"errors"
	"os/exec"
	"time"
)

// CaptureLimit bounds how much of each output stream is retained per command.
const CaptureLimit = 64 * 1024

// CommandResult captures the outcome of one external process invocation.
type CommandResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Executor abstracts external command execution so downloader and media
// clients can be tested with a substitutable fake.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) (CommandResult, error)
}

// NewExecutor returns the default os/exec backed Executor.
func NewExecutor() Executor {
	return commandExecutor{}
}

type commandExecutor struct{}

// Run executes the binary and captures bounded stdout/stderr. A non-zero exit
// code is reported through CommandResult, not as an error; the error return is
// reserved for failures to start or wait on the process.
func (commandExecutor) Run(ctx context.Context, binary string, args []string) (CommandResult, error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	stdout := newBoundedBuffer(CaptureLimit)
	stderr := newBoundedBuffer(CaptureLimit)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	start := time.Now()
	err := cmd.Run()
	result := CommandResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return result, err
	}
	return result, nil
}

type boundedBuffer struct {
	limit     int
	data      []byte
	truncated bool
}

func newBoundedBuffer(limit int) *boundedBuffer {
	return &boundedBuffer{limit: limit}
}

func (b *boundedBuffer) Write(p []byte) (int, error) {
	remaining := b.limit - len(b.data)
	if remaining > 0 {
		if len(p) <= remaining {
			b.data = append(b.data, p...)
		} else {
			b.data = append(b.data, p[:remaining]...)
			b.truncated = true
		}
	} else if len(p) > 0 {
		b.truncated = true
	}
	return len(p), nil
}

func (b *boundedBuffer) String() string {
	if b.truncated {
		return string(b.data) + "\n... [output truncated]"
	}
	return string(b.data)
}
