package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/wyilio/cursor-meter/internal/logging"
)

// Kind classifies a filesystem event for the meter.
type Kind string

const (
	// KindEdit is any activity under a watched path.
	KindEdit Kind = "edit"
	// KindSave is a file write or creation, the signal that a request may
	// just have been recorded upstream.
	KindSave Kind = "save"
)

// Event is one observed filesystem change.
type Event struct {
	Kind Kind
	Path string
}

// Notifier watches directories for edit and save activity. Directories are
// added recursively; directories created while watching are picked up from
// their create events.
type Notifier struct {
	watcher *fsnotify.Watcher
	events  chan Event
}

// New creates a Notifier watching the given paths. Paths that do not exist
// are skipped with a warning rather than failing the whole watch. Warnings
// go to the logger carried by ctx.
func New(ctx context.Context, paths []string) (*Notifier, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	n := &Notifier{watcher: w, events: make(chan Event, 64)}

	added := 0
	for _, p := range paths {
		count, err := n.addRecursive(p)
		if err != nil {
			logging.FromContext(ctx).Warn("skipping watch path", "path", p, "error", err)
			continue
		}
		added += count
	}
	if added == 0 {
		w.Close()
		return nil, fmt.Errorf("no watchable paths among %d given", len(paths))
	}
	return n, nil
}

// Events is the stream of classified filesystem events.
func (n *Notifier) Events() <-chan Event {
	return n.events
}

// Run pumps filesystem events until the context is cancelled. The events
// channel is closed on return.
func (n *Notifier) Run(ctx context.Context) error {
	defer close(n.events)
	defer n.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-n.watcher.Events:
			if !ok {
				return nil
			}
			n.handle(ctx, ev)

		case err, ok := <-n.watcher.Errors:
			if !ok {
				return nil
			}
			logging.FromContext(ctx).Warn("watcher error", "error", err)
		}
	}
}

func (n *Notifier) handle(ctx context.Context, ev fsnotify.Event) {
	if ignored(ev.Name) {
		return
	}

	if ev.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if _, err := n.addRecursive(ev.Name); err != nil {
				logging.FromContext(ctx).Warn("watching new directory", "path", ev.Name, "error", err)
			}
		}
	}

	kind := KindEdit
	if ev.Op.Has(fsnotify.Write) || ev.Op.Has(fsnotify.Create) {
		kind = KindSave
	}

	select {
	case n.events <- Event{Kind: kind, Path: ev.Name}:
	case <-ctx.Done():
	default:
		// Drop when the consumer lags; activity signals are advisory.
	}
}

// addRecursive watches path and all non-hidden directories beneath it.
func (n *Notifier) addRecursive(root string) (int, error) {
	count := 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := n.watcher.Add(path); err != nil {
			return err
		}
		count++
		return nil
	})
	if err != nil {
		return count, err
	}
	return count, nil
}

// ignored filters editor noise: hidden files, backup and swap files.
func ignored(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return true
	}
	if strings.HasSuffix(base, "~") || strings.HasSuffix(base, ".swp") || strings.HasSuffix(base, ".tmp") {
		return true
	}
	return false
}
