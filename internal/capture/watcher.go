// Package capture watches a plain-text quick-capture file and feeds its
// lines into the inbox. The file is the local-first capture surface: any
// editor or shell one-liner can append a topic title to it, and the watcher
// consumes the lines (forwards them, then truncates the file).
package capture

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounce coalesces bursts of write events before the file is read.
const debounce = 200 * time.Millisecond

// Sink receives captured titles. Implementations are expected to
// deduplicate against their own state.
type Sink interface {
	CaptureInbox(ctx context.Context, titles []string) (int, error)
}

// Watch monitors the capture file at path until ctx is cancelled. The
// parent directory is watched so the file may be created after startup.
// Each batch of appended lines is forwarded to sink and the file is then
// truncated.
func Watch(ctx context.Context, path string, sink Sink, logger *slog.Logger) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	logger.Info("capture: watching", slog.String("file", abs))

	// Consume anything already sitting in the file.
	consume(ctx, abs, sink, logger)

	var timer *time.Timer
	var timerCh <-chan time.Time

	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
			timerCh = timer.C
		} else {
			timer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("capture: stopped")
			return nil

		case <-timerCh:
			consume(ctx, abs, sink, logger)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Name != abs {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				schedule()
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("capture: watcher error", slog.String("error", err.Error()))
		}
	}
}

// consume reads the capture file, forwards its non-blank lines, and
// truncates it. A missing file is fine; truncation happens only after the
// sink accepted the batch so lines are not lost on failure.
func consume(ctx context.Context, path string, sink Sink, logger *slog.Logger) {
	data, err := os.ReadFile(path)
	if err != nil || len(data) == 0 {
		return
	}

	var titles []string
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			titles = append(titles, line)
		}
	}
	if len(titles) == 0 {
		return
	}

	added, err := sink.CaptureInbox(ctx, titles)
	if err != nil {
		logger.Warn("capture: inbox append failed", slog.String("error", err.Error()))
		return
	}
	if err := os.Truncate(path, 0); err != nil {
		logger.Warn("capture: truncate failed", slog.String("error", err.Error()))
	}
	logger.Debug("capture: consumed", slog.Int("lines", len(titles)), slog.Int("added", added))
}
