package dispatch

import (
	"fmt"
	"os/exec"
)

// Preflight checks that command is on PATH when mode invokes it directly.
func Preflight(mode, command string) error {
	if mode != "cli" {
		return nil
	}
	if command == "" {
		command = "claude"
	}
	if _, err := exec.LookPath(command); err != nil {
		return fmt.Errorf("required binary not found in PATH: %s (needed by --mode cli)", command)
	}
	return nil
}
