package dispatch

import (
	"errors"
	"os/exec"
	"testing"
)

func TestRunError_CleanExit(t *testing.T) {
	code, err := runError("claude", nil, "ignored")
	if code != 0 || err != nil {
		t.Fatalf("code=%d, err=%v", code, err)
	}
}

func TestRunError_NonZeroExit(t *testing.T) {
	runErr := exec.Command("sh", "-c", "exit 42").Run()

	code, err := runError("claude", runErr, "  rate limited\n")
	if code != 42 {
		t.Fatalf("code = %d", code)
	}
	var te *ToolError
	if !errors.As(err, &te) {
		t.Fatalf("expected *ToolError, got %T", err)
	}
	if te.ExitCode != 42 || te.Stderr != "rate limited" || te.Err != nil {
		t.Fatalf("unexpected %+v", te)
	}
	if !errors.Is(err, ErrToolFailure) {
		t.Fatal("expected ErrToolFailure")
	}
}

func TestRunError_StartFailure(t *testing.T) {
	runErr := exec.Command("/nonexistent/softcopy-claude").Run()

	code, err := runError("/nonexistent/softcopy-claude", runErr, "")
	if code != -1 {
		t.Fatalf("code = %d", code)
	}
	var te *ToolError
	if !errors.As(err, &te) || te.Err == nil {
		t.Fatalf("expected *ToolError with cause, got %v", err)
	}
	if !errors.Is(err, ErrToolFailure) || !errors.Is(err, runErr) {
		t.Fatalf("cause not preserved: %v", err)
	}
}
