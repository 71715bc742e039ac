package dispatch

import (
	"strings"
	"testing"
)

func TestBuildEnv_StripsClaudeCode(t *testing.T) {
	t.Setenv("CLAUDECODE", "1")
	t.Setenv("CLAUDECODE_SSE_PORT", "1234")
	t.Setenv("PATH_LIKE_KEEP", "x")

	var sawKeep bool
	for _, e := range BuildEnv() {
		if strings.HasPrefix(e, "CLAUDECODE") {
			t.Fatalf("CLAUDECODE variable leaked: %s", e)
		}
		if e == "PATH_LIKE_KEEP=x" {
			sawKeep = true
		}
	}
	if !sawKeep {
		t.Fatal("unrelated variable was dropped")
	}
}
