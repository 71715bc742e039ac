// Package watch follows the pending markers of a running pipeline and
// optionally fulfils each request through the CLI path.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jorge-barreto/softcopy/internal/bridge"
	"github.com/jorge-barreto/softcopy/internal/dispatch"
	"github.com/jorge-barreto/softcopy/internal/logging"
	"github.com/jorge-barreto/softcopy/internal/ux"
	"go.uber.org/zap"
)

const markerExt = ".pending"

// Runner produces content for a prompt. *dispatch.Claude implements it.
type Runner interface {
	Run(ctx context.Context, inv dispatch.Invocation) (string, error)
}

// Watcher reacts to pending markers in the prompts directory.
type Watcher struct {
	Mailbox *bridge.Mailbox
	// Fulfill answers each request with Runner instead of waiting for one.
	Fulfill bool
	Runner  Runner
	// Once stops after the first handled request.
	Once bool
	// Timeout bounds the wait for an output when not fulfilling. Zero waits
	// until ctx is done.
	Timeout      time.Duration
	PollInterval time.Duration
	Logger       *zap.Logger
}

// Run watches until ctx is done, or after one request when Once is set.
// Markers present at start are handled first.
func (w *Watcher) Run(ctx context.Context) error {
	if w.Fulfill && w.Runner == nil {
		return errors.New("fulfill requires a runner")
	}
	if err := os.MkdirAll(w.Mailbox.Prompts, 0755); err != nil {
		return err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer fw.Close()
	if err := fw.Add(w.Mailbox.Prompts); err != nil {
		return fmt.Errorf("watching %s: %w", w.Mailbox.Prompts, err)
	}

	poll := w.PollInterval
	if poll <= 0 {
		poll = time.Second
	}
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	handled := make(map[string]bool)
	ux.Info("watching %s for requests", w.Mailbox.Prompts)

	for {
		done, err := w.scan(ctx, handled)
		if err != nil || (done && w.Once) {
			return err
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Remove) && strings.HasSuffix(ev.Name, markerExt) {
				delete(handled, strings.TrimSuffix(filepath.Base(ev.Name), markerExt))
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logging.OrNop(w.Logger).Warn("watcher error", zap.Error(err))
		}
	}
}

// scan handles every marker not yet seen. done reports whether one was handled.
func (w *Watcher) scan(ctx context.Context, handled map[string]bool) (bool, error) {
	names, err := w.Mailbox.PendingMarkers()
	if err != nil {
		return false, err
	}
	// forget markers that were removed without an event reaching us
	present := make(map[string]bool, len(names))
	for _, n := range names {
		present[n] = true
	}
	for n := range handled {
		if !present[n] {
			delete(handled, n)
		}
	}

	done := false
	for _, name := range names {
		if handled[name] {
			continue
		}
		handled[name] = true
		if err := w.handle(ctx, name); err != nil {
			if ctx.Err() != nil {
				return false, nil
			}
			return false, err
		}
		done = true
		if w.Once {
			return true, nil
		}
	}
	return done, nil
}

func (w *Watcher) handle(ctx context.Context, outputFile string) error {
	log := logging.OrNop(w.Logger)
	ux.RequestPosted(w.Mailbox.DescriptorPath(), w.Mailbox.OutputPath(outputFile))
	log.Info("pending request seen", zap.String("output_file", outputFile))

	if w.Fulfill {
		return w.fulfill(ctx, outputFile)
	}

	ux.Info("prompt: %s", w.Mailbox.PromptRecordPath(outputFile))
	_, err := bridge.Await(ctx, w.Mailbox.OutputPath(outputFile), bridge.AwaitOptions{
		Timeout:      w.Timeout,
		PollInterval: w.PollInterval,
	})
	if err != nil {
		if errors.Is(err, bridge.ErrTimeout) {
			ux.Warn("no output for %s", outputFile)
			log.Warn("request not fulfilled", zap.String("output_file", outputFile))
			return w.Mailbox.RemoveMarker(outputFile)
		}
		return err
	}
	ux.OK("%s ready", outputFile)
	return w.Mailbox.RemoveMarker(outputFile)
}

func (w *Watcher) fulfill(ctx context.Context, outputFile string) error {
	log := logging.OrNop(w.Logger)
	req, err := w.Mailbox.Current()
	if errors.Is(err, bridge.ErrNoRequest) {
		log.Warn("marker without request", zap.String("output_file", outputFile))
		return nil
	}
	if err != nil {
		return err
	}
	if req.OutputFile != outputFile {
		log.Warn("marker does not match outstanding request",
			zap.String("marker", outputFile), zap.String("output_file", req.OutputFile))
		return nil
	}

	content, err := w.Runner.Run(ctx, dispatch.Invocation{Prompt: req.Prompt, JSON: true})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		// leave the request outstanding; the pipeline times out and falls back
		ux.Warn("could not fulfil %s: %v", outputFile, err)
		log.Warn("fulfil failed", zap.String("output_file", outputFile), zap.Error(err))
		return nil
	}
	if _, err := w.Mailbox.CompleteID(req.ID, content); err != nil {
		if errors.Is(err, bridge.ErrRequestChanged) || errors.Is(err, bridge.ErrNoRequest) {
			ux.Warn("request for %s ended before it was fulfilled; answer discarded", outputFile)
			log.Warn("answer discarded", zap.String("output_file", outputFile),
				zap.String("id", req.ID.String()), zap.Error(err))
			return nil
		}
		return fmt.Errorf("completing %s: %w", outputFile, err)
	}
	ux.OK("fulfilled %s", outputFile)
	return nil
}
