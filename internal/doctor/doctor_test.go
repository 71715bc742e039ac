package doctor

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jorge-barreto/softcopy/internal/bridge"
	"github.com/jorge-barreto/softcopy/internal/config"
	"github.com/jorge-barreto/softcopy/internal/dispatch"
	"github.com/jorge-barreto/softcopy/internal/state"
)

func testOptions(t *testing.T) Options {
	t.Helper()
	cfg := &config.Config{
		Name:      "test",
		Variables: []config.Variable{{Key: "software_name"}},
		Documents: []config.Document{{Name: "form", Template: "form.md"}},
		Claude:    config.Claude{Command: "definitely-not-installed-xyz"},
	}
	if err := config.Validate(cfg); err != nil {
		t.Fatal(err)
	}
	root := t.TempDir()
	layout := state.NewLayout(root, "templates", "prompts", "process", "output")
	if err := layout.EnsureDirs(); err != nil {
		t.Fatal(err)
	}
	os.MkdirAll(layout.Templates, 0755)
	os.WriteFile(layout.TemplatePath("form.md"), []byte("{{software_name}} {{line_count}}"), 0644)
	return Options{Config: cfg, Layout: layout, Mode: config.ModeAuto}
}

func find(findings []Finding, check string) []Finding {
	var out []Finding
	for _, f := range findings {
		if f.Check == check {
			out = append(out, f)
		}
	}
	return out
}

func TestCheck_Healthy(t *testing.T) {
	opts := testOptions(t)
	for _, f := range Check(opts) {
		if f.Level == LevelFail {
			t.Errorf("unexpected failure: %+v", f)
		}
	}
	claude := find(Check(opts), "claude")
	if len(claude) != 1 || claude[0].Level != LevelWarn {
		t.Fatalf("missing binary should only warn outside cli mode: %+v", claude)
	}
}

func TestCheck_MissingBinaryFailsInCLIMode(t *testing.T) {
	opts := testOptions(t)
	opts.Mode = config.ModeCLI
	claude := find(Check(opts), "claude")
	if len(claude) != 1 || claude[0].Level != LevelFail {
		t.Fatalf("expected failure, got %+v", claude)
	}
	if err := Run(context.Background(), opts); err == nil {
		t.Fatal("expected Run to report the problem")
	}
}

func TestCheck_Templates(t *testing.T) {
	opts := testOptions(t)
	opts.Config.Documents = append(opts.Config.Documents,
		config.Document{Name: "missing", Template: "missing.md"},
		config.Document{Name: "odd", Template: "odd.md"},
	)
	os.WriteFile(opts.Layout.TemplatePath("odd.md"), []byte("{{typo}} {{software_name}} {{typo}} {{also}}"), 0644)

	got := find(Check(opts), "template")
	if len(got) != 3 {
		t.Fatalf("expected 3 template findings, got %+v", got)
	}
	if got[0].Level != LevelOK {
		t.Errorf("form.md: %+v", got[0])
	}
	if got[1].Level != LevelFail || !strings.Contains(got[1].Message, "missing.md") {
		t.Errorf("missing.md: %+v", got[1])
	}
	if got[2].Level != LevelWarn || !strings.HasSuffix(got[2].Message, "also, typo") {
		t.Errorf("odd.md: %+v", got[2])
	}
}

func TestCheck_StaleRequestAndClean(t *testing.T) {
	opts := testOptions(t)
	m := bridge.NewMailbox(opts.Layout.Prompts, opts.Layout.Process, nil)
	req := bridge.NewRequest(bridge.TaskPurpose, "p", "purpose.txt", nil)
	req.PID = -1
	if err := m.Post(req); err != nil {
		t.Fatal(err)
	}
	os.WriteFile(m.MarkerPath("purpose.txt"), nil, 0644)
	os.WriteFile(m.MarkerPath("old.html"), nil, 0644)

	got := find(Check(opts), "request")
	if len(got) != 1 || got[0].Level != LevelWarn || !strings.Contains(got[0].Message, "stale") {
		t.Fatalf("expected stale warning, got %+v", got)
	}
	if markers := find(Check(opts), "markers"); len(markers) != 2 {
		t.Fatalf("expected 2 orphaned markers, got %+v", markers)
	}

	opts.Clean = true
	Check(opts)
	if _, err := m.Current(); !errors.Is(err, bridge.ErrNoRequest) {
		t.Fatalf("descriptor should be cleared, got %v", err)
	}
	if names, _ := m.PendingMarkers(); len(names) != 0 {
		t.Fatalf("markers should be removed, got %v", names)
	}
}

func TestCheck_LiveRequestKeepsMarker(t *testing.T) {
	opts := testOptions(t)
	opts.Clean = true
	m := bridge.NewMailbox(opts.Layout.Prompts, opts.Layout.Process, nil)
	if err := m.Post(bridge.NewRequest(bridge.TaskSummary, "p", "summary.txt", nil)); err != nil {
		t.Fatal(err)
	}
	os.WriteFile(m.MarkerPath("summary.txt"), nil, 0644)

	got := find(Check(opts), "request")
	if len(got) != 1 || got[0].Level != LevelOK || !strings.Contains(got[0].Message, "in progress") {
		t.Fatalf("unexpected findings %+v", got)
	}
	if names, _ := m.PendingMarkers(); len(names) != 1 {
		t.Fatal("live request marker must be kept")
	}
}

func TestCheck_State(t *testing.T) {
	opts := testOptions(t)
	st := &state.State{Status: state.StatusFailed, StepName: "requirements", Step: 1}
	if err := st.Save(opts.Layout.ConfigDir()); err != nil {
		t.Fatal(err)
	}
	got := find(Check(opts), "state")
	if len(got) != 1 || got[0].Level != LevelWarn || !strings.Contains(got[0].Message, "requirements") {
		t.Fatalf("unexpected findings %+v", got)
	}
}

func TestGatherLog(t *testing.T) {
	dir := t.TempDir()
	if got := gatherLog(filepath.Join(dir, "run.log")); got != "(no log file found)" {
		t.Errorf("expected missing placeholder, got %q", got)
	}

	short := filepath.Join(dir, "short.log")
	os.WriteFile(short, []byte("line 1\nline 2\n"), 0644)
	if got := gatherLog(short); got != "line 1\nline 2" {
		t.Errorf("expected full content, got %q", got)
	}

	long := filepath.Join(dir, "long.log")
	os.WriteFile(long, []byte(strings.Repeat("log line\n", 300)), 0644)
	got := gatherLog(long)
	if !strings.HasPrefix(got, "... (truncated to last 200 lines)") {
		t.Errorf("expected truncation prefix, got %q", got[:60])
	}
	if n := len(strings.Split(got, "\n")); n != 201 {
		t.Errorf("expected 201 lines, got %d", n)
	}
}

func TestGatherTiming(t *testing.T) {
	dir := t.TempDir()
	timing := &state.Timing{
		Entries: []state.TimingEntry{
			{Step: "requirements", Start: time.Now(), Duration: "0m 45s"},
			{Step: "frontend", Start: time.Now()},
		},
	}
	timing.Flush(dir)

	if got := gatherTiming(dir, "requirements"); !strings.Contains(got, "0m 45s") {
		t.Errorf("missing duration: %q", got)
	}
	if got := gatherTiming(dir, "frontend"); !strings.Contains(got, "did not complete") {
		t.Errorf("expected 'did not complete', got %q", got)
	}
	if got := gatherTiming(dir, "nonexistent"); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestDiagnose(t *testing.T) {
	bash, err := exec.LookPath("bash")
	if err != nil {
		t.Skip("bash not on PATH")
	}
	opts := testOptions(t)
	st := &state.State{Status: state.StatusInterrupted, StepName: "frontend", Step: 3}
	if err := st.Save(opts.Layout.ConfigDir()); err != nil {
		t.Fatal(err)
	}
	os.WriteFile(opts.Layout.LogPath(), []byte(`{"level":"warn","msg":"module page rejected"}`+"\n"), 0644)

	capture := filepath.Join(t.TempDir(), "prompt.txt")
	script := filepath.Join(t.TempDir(), "claude")
	os.WriteFile(script, []byte("#!"+bash+"\nprintf '%s' \"$2\" > "+capture+"\necho diagnosis\n"), 0755)

	opts.Diagnose = true
	opts.Claude = &dispatch.Claude{Command: script, Timeout: 10 * time.Second}
	if err := Run(context.Background(), opts); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(capture)
	if err != nil {
		t.Fatal(err)
	}
	prompt := string(data)
	if !strings.Contains(prompt, "Step: 4 (frontend)") || !strings.Contains(prompt, "module page rejected") {
		t.Fatalf("prompt missing context:\n%s", prompt)
	}
}

func TestDiagnose_NothingFailed(t *testing.T) {
	opts := testOptions(t)
	opts.Diagnose = true
	opts.Claude = &dispatch.Claude{Command: "definitely-not-installed-xyz"}
	if err := Run(context.Background(), opts); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}
