package state

import (
	"testing"
)

func TestLoad_NoExistingState(t *testing.T) {
	dir := t.TempDir()
	st, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if st.Step != 0 {
		t.Fatalf("Step = %d, want 0", st.Step)
	}
	if st.Status != "running" {
		t.Fatalf("Status = %q, want running", st.Status)
	}
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	original := &State{
		Step:       3,
		StepName:   "frontend",
		Status:     StatusCompleted,
		Variables:  map[string]string{"software_name": "医院排队叫号系统"},
		TotalLines: 1200,
	}
	if err := original.Save(dir); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Step != 3 || loaded.StepName != "frontend" {
		t.Fatalf("Step = %d (%s)", loaded.Step, loaded.StepName)
	}
	if loaded.Variables["software_name"] != "医院排队叫号系统" {
		t.Fatalf("Variables = %v", loaded.Variables)
	}
	if loaded.UpdatedAt.IsZero() {
		t.Fatal("UpdatedAt not set on save")
	}
}

func TestAdvance(t *testing.T) {
	s := &State{Step: 2}
	s.Advance()
	if s.Step != 3 {
		t.Fatalf("Step = %d, want 3", s.Step)
	}
}

func TestSetStep(t *testing.T) {
	s := &State{Step: 5}
	s.SetStep(1)
	if s.Step != 1 {
		t.Fatalf("Step = %d, want 1", s.Step)
	}
}
