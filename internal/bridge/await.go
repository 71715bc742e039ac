package bridge

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// AwaitOptions bounds a wait for an output file.
type AwaitOptions struct {
	// Timeout is the wait bound. Zero waits until ctx is done.
	Timeout      time.Duration
	PollInterval time.Duration
	// Progress, if set, is called every ProgressEvery with the elapsed time.
	Progress      func(elapsed time.Duration)
	ProgressEvery time.Duration
}

// Await blocks until path exists with non-empty content and returns it.
// It watches the parent directory and also polls at a fixed interval.
// When the bound is exceeded or ctx is cancelled, a file that appeared in the
// meantime is still returned; otherwise the result is an *OutputError.
func Await(ctx context.Context, path string, opts AwaitOptions) (string, error) {
	if content, ok, err := ReadOutput(path); err != nil || ok {
		return content, err
	}

	poll := opts.PollInterval
	if poll <= 0 {
		poll = time.Second
	}
	pollTicker := time.NewTicker(poll)
	defer pollTicker.Stop()

	var events <-chan fsnotify.Event
	var watchErrs <-chan error
	if w, err := fsnotify.NewWatcher(); err == nil {
		defer w.Close()
		if err := w.Add(filepath.Dir(path)); err == nil {
			events = w.Events
			watchErrs = w.Errors
		}
	}

	var deadline <-chan time.Time
	if opts.Timeout > 0 {
		timer := time.NewTimer(opts.Timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	var progress <-chan time.Time
	if opts.Progress != nil {
		every := opts.ProgressEvery
		if every <= 0 {
			every = 5 * time.Second
		}
		t := time.NewTicker(every)
		defer t.Stop()
		progress = t.C
	}

	start := time.Now()
	target := filepath.Clean(path)
	for {
		select {
		case <-ctx.Done():
			return finalRead(path, ctx.Err())
		case <-deadline:
			return finalRead(path, ErrTimeout)
		case <-pollTicker.C:
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
		case _, ok := <-watchErrs:
			if !ok {
				watchErrs = nil
			}
			continue
		case <-progress:
			opts.Progress(time.Since(start))
			continue
		}
		if content, ok, err := ReadOutput(path); err != nil || ok {
			return content, err
		}
	}
}

func finalRead(path string, cause error) (string, error) {
	content, ok, err := ReadOutput(path)
	if err != nil {
		return "", err
	}
	if ok {
		return content, nil
	}
	return "", &OutputError{Path: path, Err: cause}
}

// ReadOutput returns the file content when path exists and is non-empty.
// A missing or empty file reports ok=false without an error.
func ReadOutput(path string) (string, bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, err
	}
	if info.IsDir() || info.Size() == 0 {
		return "", false, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, err
	}
	if len(data) == 0 {
		return "", false, nil
	}
	return string(data), true, nil
}
