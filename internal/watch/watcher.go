package watch

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"verbatim/internal/fileutil"
	"verbatim/internal/logging"
	"verbatim/internal/services"
)

const (
	defaultDebounce     = 300 * time.Millisecond
	defaultPollInterval = 2 * time.Second
)

// Handler receives the full file content after a settled change.
type Handler func(ctx context.Context, content string) error

// Options tunes a Watcher.
type Options struct {
	Debounce     time.Duration
	PollInterval time.Duration
	// PollOnly skips fsnotify.
	PollOnly bool
	// CheckOnStart delivers the current content once before waiting for changes.
	CheckOnStart bool
}

// Watcher calls a Handler whenever a file's content changes.
type Watcher struct {
	path     string
	opts     Options
	handler  Handler
	logger   *slog.Logger
	lastHash string
}

// New builds a watcher for path.
func New(path string, opts Options, handler Handler, logger *slog.Logger) *Watcher {
	if opts.Debounce <= 0 {
		opts.Debounce = defaultDebounce
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	abs, err := filepath.Abs(path)
	if err == nil {
		path = abs
	}
	return &Watcher{
		path:    filepath.Clean(path),
		opts:    opts,
		handler: handler,
		logger:  logging.NewComponentLogger(logger, "watch"),
	}
}

// Run blocks until ctx is done. It returns nil on cancellation and the
// handler's error when that error is marked ErrCanceled.
func (w *Watcher) Run(ctx context.Context) error {
	if w.handler == nil {
		return services.Wrap(services.ErrConfiguration, "watch", "run", "no handler configured", nil)
	}
	if w.opts.CheckOnStart {
		if err := w.check(ctx); err != nil {
			return err
		}
	} else if hash, err := fileutil.FileHash(w.path); err == nil {
		w.lastHash = hash
	}

	if w.opts.PollOnly {
		return w.poll(ctx)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.fallback("fsnotify not available", err)
		return w.poll(ctx)
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			w.logger.Debug("close fsnotify watcher", logging.Error(err))
		}
	}()
	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		w.fallback("cannot watch transcript directory", err)
		return w.poll(ctx)
	}
	w.logger.Info("watching transcript", logging.String("path", w.path), logging.String("mode", "fsnotify"))

	debounce := time.NewTimer(w.opts.Debounce)
	debounce.Stop()
	defer debounce.Stop()
	pollTicker := time.NewTicker(w.opts.PollInterval)
	defer pollTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				w.fallback("fsnotify watcher closed", nil)
				return w.poll(ctx)
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			debounce.Reset(w.opts.Debounce)
		case <-debounce.C:
			if err := w.check(ctx); err != nil {
				return err
			}
		case <-pollTicker.C:
			if err := w.check(ctx); err != nil {
				return err
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				w.fallback("fsnotify error channel closed", nil)
				return w.poll(ctx)
			}
			logging.WarnWithContext(w.logger, "file watcher error", "watch_error",
				logging.Error(err),
				logging.String(logging.FieldImpact, "changes are still picked up by polling"),
			)
		}
	}
}

func (w *Watcher) poll(ctx context.Context) error {
	w.logger.Info("watching transcript",
		logging.String("path", w.path),
		logging.String("mode", "poll"),
		logging.Duration("interval", w.opts.PollInterval),
	)
	ticker := time.NewTicker(w.opts.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := w.check(ctx); err != nil {
				return err
			}
		}
	}
}

func (w *Watcher) fallback(reason string, err error) {
	attrs := []logging.Attr{
		logging.String("reason", reason),
		logging.String(logging.FieldErrorHint, "raise fs.inotify.max_user_watches if this persists"),
		logging.String(logging.FieldImpact, "changes are detected by polling"),
	}
	if err != nil {
		attrs = append(attrs, logging.Error(err))
	}
	logging.WarnWithContext(w.logger, "falling back to polling", "watch_fallback", attrs...)
}

// check reads the file and calls the handler when its content changed. Handler
// failures other than cancellation are logged and the content is retried on
// the next change.
func (w *Watcher) check(ctx context.Context) error {
	data, err := os.ReadFile(w.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			w.logger.Debug("read watched file", logging.Error(err))
		}
		return nil
	}
	hash := fileutil.ContentHash(data)
	if hash == w.lastHash {
		return nil
	}
	if err := w.handler(ctx, string(data)); err != nil {
		if errors.Is(err, services.ErrCanceled) || errors.Is(err, context.Canceled) {
			return err
		}
		hint := services.Hint(err)
		if hint == "" {
			hint = "check logs for details"
		}
		logging.WarnWithContext(w.logger, "saving edit failed", "watch_save_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, hint),
			logging.String(logging.FieldImpact, "the edit is retried after the next save"),
		)
		return nil
	}
	w.lastHash = hash
	return nil
}
