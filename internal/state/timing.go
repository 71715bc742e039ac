package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type TimingEntry struct {
	Step     string    `json:"step"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end,omitempty"`
	Duration string    `json:"duration,omitempty"`
}

type Timing struct {
	mu      sync.Mutex
	Entries []TimingEntry `json:"entries"`
}

func timingPath(dir string) string {
	return filepath.Join(dir, "timing.json")
}

// LoadTiming reads timing data from dir.
func LoadTiming(dir string) (*Timing, error) {
	path := timingPath(dir)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Timing{}, nil
		}
		return nil, err
	}
	var t Timing
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (t *Timing) save(dir string) error {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return err
	}
	return WriteFileAtomic(timingPath(dir), data, 0644)
}

// AddStart appends a new timing entry for the given step.
func (t *Timing) AddStart(stepName string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Entries = append(t.Entries, TimingEntry{
		Step:  stepName,
		Start: time.Now(),
	})
}

// AddEnd records the end time for the most recent entry matching stepName.
func (t *Timing) AddEnd(stepName string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := len(t.Entries) - 1; i >= 0; i-- {
		if t.Entries[i].Step == stepName && t.Entries[i].End.IsZero() {
			t.Entries[i].End = time.Now()
			d := t.Entries[i].End.Sub(t.Entries[i].Start)
			t.Entries[i].Duration = formatDuration(d)
			break
		}
	}
}

// Flush writes the in-memory timing data to disk.
func (t *Timing) Flush(dir string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.save(dir)
}

// LastDuration returns the most recent recorded duration for stepName, or "".
func (t *Timing) LastDuration(stepName string) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := len(t.Entries) - 1; i >= 0; i-- {
		if t.Entries[i].Step == stepName && t.Entries[i].Duration != "" {
			return t.Entries[i].Duration
		}
	}
	return ""
}

func formatDuration(d time.Duration) string {
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm %02ds", m, s)
}
