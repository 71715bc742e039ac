package bridge

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
)

func newTestMailbox(t *testing.T) *Mailbox {
	t.Helper()
	root := t.TempDir()
	return NewMailbox(filepath.Join(root, "prompts"), filepath.Join(root, "process"), nil)
}

func TestMailbox_CurrentEmpty(t *testing.T) {
	m := newTestMailbox(t)
	if _, err := m.Current(); !errors.Is(err, ErrNoRequest) {
		t.Fatalf("expected ErrNoRequest, got %v", err)
	}
}

func TestMailbox_PostCurrentComplete(t *testing.T) {
	m := newTestMailbox(t)
	req := NewRequest(TaskSRS, "list modules", "srs.json", map[string]string{"software_name": "X"})
	if err := m.Post(req); err != nil {
		t.Fatal(err)
	}
	os.WriteFile(m.MarkerPath("srs.json"), []byte("list modules"), 0644)

	got, err := m.Current()
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != req.ID || got.TaskType != TaskSRS || got.OutputFile != "srs.json" {
		t.Fatalf("unexpected request %+v", got)
	}
	if got.PID != os.Getpid() {
		t.Fatalf("PID = %d, want %d", got.PID, os.Getpid())
	}
	if got.Context["software_name"] != "X" {
		t.Fatalf("context not preserved: %v", got.Context)
	}

	done, err := m.Complete(`[{"name":"a"}]`)
	if err != nil {
		t.Fatal(err)
	}
	if done.ID != req.ID {
		t.Fatalf("Complete returned %s, want %s", done.ID, req.ID)
	}
	data, err := os.ReadFile(m.OutputPath("srs.json"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `[{"name":"a"}]` {
		t.Fatalf("output = %q", data)
	}
	if _, err := os.Stat(m.DescriptorPath()); !os.IsNotExist(err) {
		t.Fatal("descriptor should be removed")
	}
	if _, err := os.Stat(m.MarkerPath("srs.json")); !os.IsNotExist(err) {
		t.Fatal("marker should be removed")
	}
}

func TestMailbox_CompleteWithoutRequest(t *testing.T) {
	m := newTestMailbox(t)
	if _, err := m.Complete("x"); !errors.Is(err, ErrNoRequest) {
		t.Fatalf("expected ErrNoRequest, got %v", err)
	}
}

func TestMailbox_CompleteIDChanged(t *testing.T) {
	m := newTestMailbox(t)
	first := NewRequest(TaskSummary, "summary", "summary.txt", nil)
	if err := m.Post(first); err != nil {
		t.Fatal(err)
	}
	if err := m.Release(first.ID); err != nil {
		t.Fatal(err)
	}
	second := NewRequest(TaskPurpose, "purpose", "purpose.txt", nil)
	if err := m.Post(second); err != nil {
		t.Fatal(err)
	}

	if _, err := m.CompleteID(first.ID, "summary answer"); !errors.Is(err, ErrRequestChanged) {
		t.Fatalf("expected ErrRequestChanged, got %v", err)
	}
	if _, err := os.Stat(m.OutputPath("purpose.txt")); !os.IsNotExist(err) {
		t.Fatal("answer must not land in another request's output")
	}
	if cur, err := m.Current(); err != nil || cur.ID != second.ID {
		t.Fatalf("second request should stay outstanding: %v", err)
	}

	done, err := m.CompleteID(second.ID, "purpose answer")
	if err != nil {
		t.Fatal(err)
	}
	if done.OutputFile != "purpose.txt" {
		t.Fatalf("completed %s", done.OutputFile)
	}
	if _, err := m.CompleteID(second.ID, "again"); !errors.Is(err, ErrNoRequest) {
		t.Fatalf("expected ErrNoRequest, got %v", err)
	}
}

func TestMailbox_PostBusy(t *testing.T) {
	m := newTestMailbox(t)
	if err := m.Post(NewRequest(TaskSRS, "a", "srs.json", nil)); err != nil {
		t.Fatal(err)
	}
	err := m.Post(NewRequest(TaskPurpose, "b", "purpose.txt", nil))
	if !errors.Is(err, ErrSlotBusy) {
		t.Fatalf("expected ErrSlotBusy, got %v", err)
	}
	cur, _ := m.Current()
	if cur.OutputFile != "srs.json" {
		t.Fatalf("descriptor overwritten: %+v", cur)
	}
}

func TestMailbox_PostReplacesStale(t *testing.T) {
	m := newTestMailbox(t)
	stale := NewRequest(TaskSRS, "a", "srs.json", nil)
	stale.PID = -1
	if err := m.Post(stale); err != nil {
		t.Fatal(err)
	}
	stale2, err := m.Stale()
	if err != nil || !stale2 {
		t.Fatalf("Stale() = %v, %v", stale2, err)
	}

	fresh := NewRequest(TaskPurpose, "b", "purpose.txt", nil)
	if err := m.Post(fresh); err != nil {
		t.Fatalf("stale descriptor should be replaced: %v", err)
	}
	cur, _ := m.Current()
	if cur.ID != fresh.ID {
		t.Fatalf("expected fresh request, got %+v", cur)
	}
}

func TestMailbox_PostRejectsPathInOutput(t *testing.T) {
	m := newTestMailbox(t)
	if err := m.Post(NewRequest(TaskSRS, "a", "../srs.json", nil)); err == nil {
		t.Fatal("expected error for output path with separators")
	}
}

func TestMailbox_Release(t *testing.T) {
	m := newTestMailbox(t)
	req := NewRequest(TaskSRS, "a", "srs.json", nil)
	if err := m.Post(req); err != nil {
		t.Fatal(err)
	}
	if err := m.Release(uuid.New()); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Current(); err != nil {
		t.Fatalf("Release with another id must keep the descriptor: %v", err)
	}
	if err := m.Release(req.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Current(); !errors.Is(err, ErrNoRequest) {
		t.Fatalf("expected ErrNoRequest, got %v", err)
	}
	if err := m.Release(req.ID); err != nil {
		t.Fatalf("Release on empty slot: %v", err)
	}
}

func TestMailbox_PendingMarkers(t *testing.T) {
	m := newTestMailbox(t)
	os.MkdirAll(m.Prompts, 0755)
	os.WriteFile(m.MarkerPath("b.html"), []byte("p"), 0644)
	os.WriteFile(m.MarkerPath("a.json"), []byte("p"), 0644)
	os.WriteFile(m.PromptRecordPath("c.txt"), []byte("p"), 0644)

	names, err := m.PendingMarkers()
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 || names[0] != "a.json" || names[1] != "b.html" {
		t.Fatalf("unexpected markers %v", names)
	}
}
