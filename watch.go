package postdesk

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/eringen/postdesk/content"
)

// Reconciler is the part of content.Service the watcher drives.
type Reconciler interface {
	Dir() string
	Reconcile(ctx context.Context) (content.ReconcileResult, error)
}

// Watcher reconciles the content index when content files appear, vanish
// or are renamed outside the authoring API. Bursts of events within the
// debounce interval trigger a single reconcile.
type Watcher struct {
	fs       *fsnotify.Watcher
	target   Reconciler
	debounce time.Duration
	log      content.Logger
}

// NewWatcher starts watching target's content directory.
func NewWatcher(target Reconciler, debounce time.Duration, log content.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(target.Dir()); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", target.Dir(), err)
	}
	return &Watcher{fs: fw, target: target, debounce: debounce, log: log}, nil
}

// Run processes events until ctx is cancelled, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fs.Close()

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if relevant(event) {
				timer.Reset(w.debounce)
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.log.Warnf("content watcher: %v", err)
		case <-timer.C:
			res, err := w.target.Reconcile(ctx)
			if err != nil {
				w.log.Errorf("content watcher: reconcile: %v", err)
				continue
			}
			if len(res.Added) > 0 || len(res.Removed) > 0 {
				w.log.Infof("content watcher: indexed %v, dropped %v", res.Added, res.Removed)
			}
			if len(res.Skipped) > 0 {
				w.log.Warnf("content watcher: could not index %v", res.Skipped)
			}
		}
	}
}

// relevant reports whether event can change the set of content files.
// Writes to existing files are ignored: the index never copies metadata.
func relevant(event fsnotify.Event) bool {
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") || filepath.Ext(name) != content.FileExt {
		return false
	}
	return event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}
