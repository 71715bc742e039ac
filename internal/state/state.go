package state

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

const (
	StatusRunning     = "running"
	StatusCompleted   = "completed"
	StatusFailed      = "failed"
	StatusInterrupted = "interrupted"
	StatusDeclined    = "declined"
)

// State is the persisted progress of a run.
type State struct {
	Step       int               `json:"step"`
	StepName   string            `json:"step_name,omitempty"`
	Status     string            `json:"status"`
	Mode       string            `json:"mode,omitempty"`
	Variables  map[string]string `json:"variables,omitempty"`
	Modules    int               `json:"modules,omitempty"`
	Fallbacks  int               `json:"fallbacks,omitempty"`
	TotalLines int               `json:"total_lines,omitempty"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

func statePath(dir string) string {
	return filepath.Join(dir, "state.json")
}

// Load reads the state from dir. Returns a new state if not found.
func Load(dir string) (*State, error) {
	data, err := os.ReadFile(statePath(dir))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &State{Status: StatusRunning}, nil
		}
		return nil, err
	}
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Save writes the state to dir.
func (s *State) Save(dir string) error {
	s.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return WriteFileAtomic(statePath(dir), data, 0644)
}

// Advance increments the step index.
func (s *State) Advance() {
	s.Step++
}

// SetStep sets the step index for --from jumps.
func (s *State) SetStep(idx int) {
	s.Step = idx
}
