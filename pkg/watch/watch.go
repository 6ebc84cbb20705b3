// Package watch reloads configuration files into live values as they
// change on disk. The reload path goes through the reify engine's
// merge-update semantics, so a running program's config instance is
// updated in place: sub-objects whose file content did not change keep
// their identity across reloads.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"

	"github.com/ndisidore/molt/pkg/document"
	"github.com/ndisidore/molt/pkg/reify"
	"github.com/ndisidore/molt/pkg/slogctx"
)

// ErrNoPath indicates a Config without a file path.
var ErrNoPath = errors.New("watch: path must not be empty")

// ErrNoReload indicates a Config without a reload function.
var ErrNoReload = errors.New("watch: reload function must not be nil")

const _defaultDebounce = 100 * time.Millisecond

// ReloadFunc is invoked after the watched file settles. A returned error is
// logged and reported to OnReload; the watcher keeps running.
type ReloadFunc func(ctx context.Context) error

// Config holds parameters for a Watcher.
type Config struct {
	// Path is the config file to watch.
	Path string
	// Reload is called once at startup and after each settled change.
	Reload ReloadFunc
	// Debounce is how long the file must stay quiet before reloading;
	// editors often emit several events per save. Defaults to 100ms.
	Debounce time.Duration
	// OnReload, when set, observes the outcome of every reload attempt
	// after the initial one. Called from the watch goroutine.
	OnReload func(err error)
}

// Watcher re-runs a reload function whenever its config file changes.
type Watcher struct {
	cfg Config
}

// New validates cfg and returns a Watcher.
func New(cfg Config) (*Watcher, error) {
	if cfg.Path == "" {
		return nil, ErrNoPath
	}
	if cfg.Reload == nil {
		return nil, ErrNoReload
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = _defaultDebounce
	}
	return &Watcher{cfg: cfg}, nil
}

// Bind returns a Watcher that re-parses path (frontend chosen by
// extension) and merge-updates target on every change. The target pointer
// is written from the watch goroutine; coordinate access with OnReload or
// external synchronization. On a reload error the previous values remain,
// except members already written before a validation failure, per the
// engine's populate contract.
func Bind(path string, target any, opts ...reify.Options) (*Watcher, error) {
	return New(Config{
		Path: path,
		Reload: func(context.Context) error {
			node, err := document.ParseFile(path)
			if err != nil {
				return err
			}
			return reify.Update(target, node, opts...)
		},
	})
}

// Run performs the initial load, then watches until ctx is cancelled. The
// initial load failing is fatal; later reload failures are logged and the
// watcher keeps going with the previous values.
func (w *Watcher) Run(ctx context.Context) error {
	log := slogctx.FromContext(ctx).With("path", w.cfg.Path)

	if err := w.cfg.Reload(ctx); err != nil {
		return fmt.Errorf("initial load of %s: %w", w.cfg.Path, err)
	}
	log.Debug("config loaded")

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer func() { _ = fw.Close() }()

	// Watch the directory rather than the file: editors and atomic-write
	// tools replace the file, which drops a direct file watch.
	dir := filepath.Dir(w.cfg.Path)
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return w.loop(ctx, fw, log)
	})
	return g.Wait()
}

func (w *Watcher) loop(ctx context.Context, fw *fsnotify.Watcher, log *slog.Logger) error {
	base := filepath.Base(w.cfg.Path)
	timer := time.NewTimer(w.cfg.Debounce)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != base {
				continue
			}
			if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Rename) {
				continue
			}
			if pending && !timer.Stop() {
				<-timer.C
			}
			timer.Reset(w.cfg.Debounce)
			pending = true

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error", "error", err)

		case <-timer.C:
			pending = false
			err := w.cfg.Reload(ctx)
			if err != nil {
				log.Warn("reload failed, keeping previous config", "error", err)
			} else {
				log.Info("config reloaded")
			}
			if w.cfg.OnReload != nil {
				w.cfg.OnReload(err)
			}
		}
	}
}
