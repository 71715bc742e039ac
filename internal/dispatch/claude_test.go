package dispatch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// fakeClaude writes an executable shell script standing in for claude.
func fakeClaude(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "claude")
	script := "#!/bin/bash\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestArgs(t *testing.T) {
	c := &Claude{Model: "sonnet"}
	got := strings.Join(c.Args(Invocation{Prompt: "hi", JSON: true}), " ")
	want := "-p hi --dangerously-skip-permissions --output-format json --model sonnet"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	got = strings.Join(c.Args(Invocation{Prompt: "hi", Model: "opus"}), " ")
	if got != "-p hi --dangerously-skip-permissions --model opus" {
		t.Fatalf("got %q", got)
	}
}

func TestRun_PlainOutput(t *testing.T) {
	cmd := fakeClaude(t, `echo "  generated for: $2  "`)
	c := &Claude{Command: cmd, Timeout: 10 * time.Second}
	got, err := c.Run(context.Background(), Invocation{Prompt: "srs"})
	if err != nil {
		t.Fatal(err)
	}
	if got != "generated for: srs" {
		t.Fatalf("got %q", got)
	}
}

func TestRun_JSONUnwrapped(t *testing.T) {
	cmd := fakeClaude(t, `echo '{"type":"result","result":"<html></html>","is_error":false}'`)
	c := &Claude{Command: cmd, Timeout: 10 * time.Second}
	got, err := c.Run(context.Background(), Invocation{Prompt: "p", JSON: true})
	if err != nil {
		t.Fatal(err)
	}
	if got != "<html></html>" {
		t.Fatalf("got %q", got)
	}
}

func TestRun_JSONIsError(t *testing.T) {
	cmd := fakeClaude(t, `echo '{"type":"result","result":"rate limited","is_error":true}'`)
	c := &Claude{Command: cmd, Timeout: 10 * time.Second}
	_, err := c.Run(context.Background(), Invocation{Prompt: "p", JSON: true})
	if !errors.Is(err, ErrToolFailure) {
		t.Fatalf("expected ErrToolFailure, got %v", err)
	}
}

func TestRun_NonZeroExit(t *testing.T) {
	cmd := fakeClaude(t, `echo "boom" >&2; exit 3`)
	c := &Claude{Command: cmd, Timeout: 10 * time.Second}
	_, err := c.Run(context.Background(), Invocation{Prompt: "p"})

	var toolErr *ToolError
	if !errors.As(err, &toolErr) {
		t.Fatalf("expected *ToolError, got %v", err)
	}
	if toolErr.ExitCode != 3 || toolErr.Stderr != "boom" {
		t.Fatalf("unexpected error %+v", toolErr)
	}
	if !errors.Is(err, ErrToolFailure) {
		t.Fatal("expected ErrToolFailure")
	}
}

func TestRun_MissingExecutable(t *testing.T) {
	c := &Claude{Command: filepath.Join(t.TempDir(), "nope"), Timeout: time.Second}
	_, err := c.Run(context.Background(), Invocation{Prompt: "p"})
	if !errors.Is(err, ErrToolFailure) {
		t.Fatalf("expected ErrToolFailure, got %v", err)
	}
}

func TestRun_Timeout(t *testing.T) {
	cmd := fakeClaude(t, `sleep 10`)
	c := &Claude{Command: cmd, Timeout: 200 * time.Millisecond}
	start := time.Now()
	_, err := c.Run(context.Background(), Invocation{Prompt: "p"})
	if !errors.Is(err, ErrToolFailure) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected timeout tool failure, got %v", err)
	}
	if time.Since(start) > 8*time.Second {
		t.Fatal("process group was not killed on timeout")
	}
}

func TestRun_Cancelled(t *testing.T) {
	cmd := fakeClaude(t, `sleep 10`)
	c := &Claude{Command: cmd, Timeout: 10 * time.Second}
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()
	_, err := c.Run(ctx, Invocation{Prompt: "p"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRun_StripsClaudeCodeEnv(t *testing.T) {
	t.Setenv("CLAUDECODE", "1")
	t.Setenv("CLAUDECODE_ENTRYPOINT", "cli")
	t.Setenv("SOFTCOPY_TEST_KEEP", "yes")
	cmd := fakeClaude(t, `echo "${CLAUDECODE:-unset}/${CLAUDECODE_ENTRYPOINT:-unset}/${SOFTCOPY_TEST_KEEP}"`)
	c := &Claude{Command: cmd, Timeout: 10 * time.Second}
	got, err := c.Run(context.Background(), Invocation{Prompt: "p"})
	if err != nil {
		t.Fatal(err)
	}
	if got != "unset/unset/yes" {
		t.Fatalf("got %q", got)
	}
}

func TestUnwrap(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`{"result": "  text  "}`, "text"},
		{`{"other": 1}`, `{"other": 1}`},
		{`{"result": 5}`, `{"result": 5}`},
		{"  plain  ", "plain"},
		{`[{"name":"a"}]`, `[{"name":"a"}]`},
		{`{broken`, `{broken`},
	}
	for _, tt := range tests {
		if got := Unwrap(tt.in); got != tt.want {
			t.Errorf("Unwrap(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
