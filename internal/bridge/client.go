package bridge

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jorge-barreto/softcopy/internal/logging"
	"github.com/jorge-barreto/softcopy/internal/state"
	"go.uber.org/zap"
)

// Client submits requests through a Mailbox and waits for their output.
type Client struct {
	Mailbox      *Mailbox
	Timeout      time.Duration
	PollInterval time.Duration
	// Markers enables the per-request pending marker watched by automated fulfillers.
	Markers bool
	// OnPost, if set, is called once the descriptor is in the slot.
	OnPost        func(req *Request)
	Progress      func(req *Request, elapsed time.Duration)
	ProgressEvery time.Duration
	Logger        *zap.Logger
}

// Submit runs one request to completion and returns the output content. An
// output that already exists and is non-empty is returned without posting.
// The descriptor and marker are removed on every exit path.
func (c *Client) Submit(ctx context.Context, req *Request) (string, error) {
	log := logging.OrNop(c.Logger)
	outPath := c.Mailbox.OutputPath(req.OutputFile)

	if content, ok, err := ReadOutput(outPath); err != nil {
		return "", err
	} else if ok {
		log.Info("reusing existing output", zap.String("output_file", req.OutputFile))
		return content, nil
	}

	if err := os.MkdirAll(c.Mailbox.Prompts, 0755); err != nil {
		return "", err
	}
	if err := os.MkdirAll(c.Mailbox.Process, 0755); err != nil {
		return "", err
	}
	if err := state.WriteFileAtomic(c.Mailbox.PromptRecordPath(req.OutputFile), []byte(req.Prompt), 0644); err != nil {
		return "", fmt.Errorf("writing prompt record: %w", err)
	}

	if err := c.Mailbox.Post(req); err != nil {
		return "", err
	}
	if c.OnPost != nil {
		c.OnPost(req)
	}
	defer func() {
		if err := c.Mailbox.Release(req.ID); err != nil {
			log.Warn("releasing request descriptor", zap.Error(err))
		}
	}()

	if c.Markers {
		if err := state.WriteFileAtomic(c.Mailbox.MarkerPath(req.OutputFile), []byte(req.Prompt), 0644); err != nil {
			return "", fmt.Errorf("writing pending marker: %w", err)
		}
		defer func() {
			if err := c.Mailbox.RemoveMarker(req.OutputFile); err != nil {
				log.Warn("removing pending marker", zap.Error(err))
			}
		}()
	}

	opts := AwaitOptions{
		Timeout:       c.Timeout,
		PollInterval:  c.PollInterval,
		ProgressEvery: c.ProgressEvery,
	}
	if c.Progress != nil {
		opts.Progress = func(elapsed time.Duration) { c.Progress(req, elapsed) }
	}
	content, err := Await(ctx, outPath, opts)
	if err != nil {
		log.Warn("request ended without output",
			zap.String("output_file", req.OutputFile), zap.Error(err))
		return "", err
	}
	log.Info("output received",
		zap.String("output_file", req.OutputFile), zap.Int("bytes", len(content)))
	return content, nil
}
