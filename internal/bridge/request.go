// Package bridge implements the file-based generation request protocol
// between the pipeline and an external fulfiller.
package bridge

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TaskType names the kind of content a request asks for.
type TaskType string

const (
	TaskSRS      TaskType = "srs"
	TaskHTMLCode TaskType = "html_code"
	TaskSummary  TaskType = "summary"
	TaskDetailed TaskType = "detailed"
	TaskPurpose  TaskType = "purpose"
	TaskExpand   TaskType = "expand"
)

var (
	ErrTimeout   = errors.New("timed out waiting for output")
	ErrNotFound  = errors.New("output file not found")
	ErrSlotBusy  = errors.New("a generation request is already outstanding")
	ErrNoRequest = errors.New("no generation request outstanding")
	// ErrRequestChanged means the slot holds a different request than the one answered.
	ErrRequestChanged = errors.New("outstanding request changed")
)

// Request is the descriptor written to the request slot.
type Request struct {
	ID         uuid.UUID         `json:"id"`
	TaskType   TaskType          `json:"task_type"`
	Prompt     string            `json:"prompt"`
	OutputFile string            `json:"output_file"`
	Context    map[string]string `json:"context,omitempty"`
	PID        int               `json:"pid"`
	CreatedAt  time.Time         `json:"created_at"`
}

// NewRequest returns a request with a fresh ID and creation time. Post fills in the PID.
func NewRequest(task TaskType, prompt, outputFile string, ctx map[string]string) *Request {
	return &Request{
		ID:         uuid.New(),
		TaskType:   task,
		Prompt:     prompt,
		OutputFile: outputFile,
		Context:    ctx,
		CreatedAt:  time.Now(),
	}
}

func encodeRequest(req *Request) ([]byte, error) {
	data, err := json.MarshalIndent(req, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding request descriptor: %w", err)
	}
	return data, nil
}

func decodeRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("decoding request descriptor: %w", err)
	}
	return &req, nil
}

// OutputError reports that a request ended without an output file.
// It matches ErrNotFound and the underlying cause.
type OutputError struct {
	Path string
	Err  error
}

func (e *OutputError) Error() string {
	return fmt.Sprintf("output file not found: %s (%v)", e.Path, e.Err)
}

func (e *OutputError) Unwrap() []error {
	return []error{e.Err, ErrNotFound}
}
