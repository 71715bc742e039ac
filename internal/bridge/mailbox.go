package bridge

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/jorge-barreto/softcopy/internal/logging"
	"github.com/jorge-barreto/softcopy/internal/state"
	"go.uber.org/zap"
)

const (
	DescriptorName = ".generation_request"
	markerExt      = ".pending"
	promptExt      = ".prompt"
)

// Mailbox is the single-item request slot shared with the fulfiller.
type Mailbox struct {
	Prompts string
	Process string
	Logger  *zap.Logger
}

func NewMailbox(prompts, process string, logger *zap.Logger) *Mailbox {
	return &Mailbox{Prompts: prompts, Process: process, Logger: logging.OrNop(logger)}
}

func (m *Mailbox) DescriptorPath() string {
	return filepath.Join(m.Prompts, DescriptorName)
}

func (m *Mailbox) MarkerPath(outputFile string) string {
	return filepath.Join(m.Prompts, outputFile+markerExt)
}

func (m *Mailbox) PromptRecordPath(outputFile string) string {
	return filepath.Join(m.Prompts, outputFile+promptExt)
}

func (m *Mailbox) OutputPath(outputFile string) string {
	return filepath.Join(m.Process, outputFile)
}

// Post writes req into the slot. A descriptor owned by a live process fails
// with ErrSlotBusy; one whose process is gone is replaced.
func (m *Mailbox) Post(req *Request) error {
	if err := checkOutputName(req.OutputFile); err != nil {
		return err
	}
	existing, err := m.Current()
	switch {
	case err == nil && existing.ID == req.ID:
	case err == nil:
		if processAlive(existing.PID) {
			return fmt.Errorf("%w: %s (pid %d)", ErrSlotBusy, existing.OutputFile, existing.PID)
		}
		m.Logger.Warn("replacing stale request descriptor",
			zap.String("output_file", existing.OutputFile), zap.Int("pid", existing.PID))
	case errors.Is(err, ErrNoRequest):
	default:
		m.Logger.Warn("replacing unreadable request descriptor", zap.Error(err))
	}

	if req.PID == 0 {
		req.PID = os.Getpid()
	}
	data, err := encodeRequest(req)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(m.Prompts, 0755); err != nil {
		return err
	}
	if err := state.WriteFileAtomic(m.DescriptorPath(), data, 0644); err != nil {
		return fmt.Errorf("writing request descriptor: %w", err)
	}
	m.Logger.Info("request posted",
		zap.String("id", req.ID.String()),
		zap.String("task_type", string(req.TaskType)),
		zap.String("output_file", req.OutputFile))
	return nil
}

// Current reads the outstanding request. It returns ErrNoRequest when the slot is empty.
func (m *Mailbox) Current() (*Request, error) {
	data, err := os.ReadFile(m.DescriptorPath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoRequest
		}
		return nil, err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, ErrNoRequest
	}
	return decodeRequest(data)
}

// Complete fulfils the outstanding request with content. The output is written
// atomically, then the descriptor and pending marker are removed.
func (m *Mailbox) Complete(content string) (*Request, error) {
	req, err := m.Current()
	if err != nil {
		return nil, err
	}
	return m.complete(req, content)
}

// CompleteID is Complete for the request carrying id. It fails with
// ErrRequestChanged when the slot now holds another request, and writes nothing.
func (m *Mailbox) CompleteID(id uuid.UUID, content string) (*Request, error) {
	req, err := m.Current()
	if err != nil {
		return nil, err
	}
	if req.ID != id {
		return nil, fmt.Errorf("%w: want %s, slot has %s (%s)", ErrRequestChanged, id, req.ID, req.OutputFile)
	}
	return m.complete(req, content)
}

func (m *Mailbox) complete(req *Request, content string) (*Request, error) {
	if err := checkOutputName(req.OutputFile); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(m.Process, 0755); err != nil {
		return nil, err
	}
	if err := state.WriteFileAtomic(m.OutputPath(req.OutputFile), []byte(content), 0644); err != nil {
		return nil, fmt.Errorf("writing output: %w", err)
	}
	if err := removeIfExists(m.DescriptorPath()); err != nil {
		return nil, err
	}
	if err := removeIfExists(m.MarkerPath(req.OutputFile)); err != nil {
		return nil, err
	}
	m.Logger.Info("request completed",
		zap.String("id", req.ID.String()),
		zap.String("output_file", req.OutputFile),
		zap.Int("bytes", len(content)))
	return req, nil
}

// Release removes the descriptor if it still carries id.
func (m *Mailbox) Release(id uuid.UUID) error {
	req, err := m.Current()
	if errors.Is(err, ErrNoRequest) {
		return nil
	}
	if err != nil {
		return err
	}
	if req.ID != id {
		return nil
	}
	return removeIfExists(m.DescriptorPath())
}

// Clear removes the descriptor regardless of owner.
func (m *Mailbox) Clear() error {
	return removeIfExists(m.DescriptorPath())
}

// Stale reports whether the outstanding descriptor belongs to a dead process.
func (m *Mailbox) Stale() (bool, error) {
	req, err := m.Current()
	if err != nil {
		return false, err
	}
	return !processAlive(req.PID), nil
}

// PendingMarkers lists the output names that have a pending marker, sorted.
func (m *Mailbox) PendingMarkers() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(m.Prompts, "*"+markerExt))
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(matches))
	for _, p := range matches {
		names = append(names, strings.TrimSuffix(filepath.Base(p), markerExt))
	}
	sort.Strings(names)
	return names, nil
}

// RemoveMarker deletes the pending marker for outputFile.
func (m *Mailbox) RemoveMarker(outputFile string) error {
	return removeIfExists(m.MarkerPath(outputFile))
}

func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := syscall.Kill(pid, 0)
	return err == nil || errors.Is(err, syscall.EPERM)
}

func checkOutputName(name string) error {
	if name == "" {
		return fmt.Errorf("request has no output file")
	}
	if name != filepath.Base(name) || name == "." || name == ".." {
		return fmt.Errorf("output file %q must not contain path separators", name)
	}
	return nil
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
