package dispatch

import (
	"errors"
	"os/exec"
	"strings"
)

// runError maps the result of running command to its exit code and a
// *ToolError. A clean exit returns (0, nil). A process that could not start
// reports code -1 with the cause in Err.
func runError(command string, err error, stderr string) (int, error) {
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		return code, &ToolError{Command: command, ExitCode: code, Stderr: strings.TrimSpace(stderr)}
	}
	return -1, &ToolError{Command: command, ExitCode: -1, Err: err}
}
