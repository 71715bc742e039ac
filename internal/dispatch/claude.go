// Package dispatch invokes the claude CLI directly, bypassing the file handshake.
package dispatch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"syscall"
	"time"

	"github.com/jorge-barreto/softcopy/internal/logging"
	"go.uber.org/zap"
)

const DefaultTimeout = 300 * time.Second

// Invocation is a single non-interactive prompt.
type Invocation struct {
	Prompt string
	// JSON requests --output-format json; the result field is unwrapped.
	JSON  bool
	Model string
}

// Claude runs the claude binary.
type Claude struct {
	Command string
	Model   string
	Timeout time.Duration
	WorkDir string
	// Stderr, if set, receives the child's stderr in addition to capture.
	Stderr io.Writer
	Logger *zap.Logger
}

// Args returns the argument list for inv.
func (c *Claude) Args(inv Invocation) []string {
	args := []string{"-p", inv.Prompt, "--dangerously-skip-permissions"}
	if inv.JSON {
		args = append(args, "--output-format", "json")
	}
	model := inv.Model
	if model == "" {
		model = c.Model
	}
	if model != "" {
		args = append(args, "--model", model)
	}
	return args
}

// Run executes inv and returns the trimmed, unwrapped response text. The
// process group is killed when ctx is cancelled or the timeout elapses.
func (c *Claude) Run(ctx context.Context, inv Invocation) (string, error) {
	command := c.Command
	if command == "" {
		command = "claude"
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	log := logging.OrNop(c.Logger)

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, command, c.Args(inv)...)
	cmd.Dir = c.WorkDir
	cmd.Env = BuildEnv()
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGTERM)
	}
	cmd.WaitDelay = 5 * time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	if c.Stderr != nil {
		cmd.Stderr = io.MultiWriter(c.Stderr, &stderr)
	} else {
		cmd.Stderr = &stderr
	}

	start := time.Now()
	code, err := runError(command, cmd.Run(), stderr.String())
	log.Info("claude finished",
		zap.Int("exit_code", code),
		zap.Duration("elapsed", time.Since(start)),
		zap.Bool("json", inv.JSON))

	switch {
	case ctx.Err() != nil:
		return "", &ToolError{Command: command, ExitCode: -1, Err: ctx.Err()}
	case runCtx.Err() != nil:
		return "", &ToolError{Command: command, ExitCode: -1, Err: fmt.Errorf("timed out after %s: %w", timeout, runCtx.Err())}
	case err != nil:
		return "", err
	}

	out := stdout.String()
	if inv.JSON {
		resp, perr := ParseResponse(out)
		if perr == nil && resp.IsError {
			return "", &ToolError{Command: command, ExitCode: code, Stderr: resp.Result}
		}
	}
	return Unwrap(out), nil
}

var ErrToolFailure = errors.New("external tool failure")

// ToolError describes a failed claude invocation. It matches ErrToolFailure.
type ToolError struct {
	Command  string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ToolError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Command, e.Err)
	case e.Stderr != "":
		return fmt.Sprintf("%s exited with code %d: %s", e.Command, e.ExitCode, e.Stderr)
	default:
		return fmt.Sprintf("%s exited with code %d", e.Command, e.ExitCode)
	}
}

func (e *ToolError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrToolFailure}
	}
	return []error{ErrToolFailure, e.Err}
}
