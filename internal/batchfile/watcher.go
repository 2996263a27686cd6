package batchfile

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeKind describes the type of file change detected.
type ChangeKind int

const (
	ChangeModified ChangeKind = iota // batch file written or recreated
	ChangeRemoved                    // batch file deleted or renamed away
)

func (k ChangeKind) String() string {
	if k == ChangeRemoved {
		return "removed"
	}
	return "modified"
}

// Change represents a settled change to one watched batch file.
type Change struct {
	Kind ChangeKind
	File string // as passed to NewWatcher
}

// Watcher monitors batch files for changes using fsnotify. It watches the
// parent directories so editors that save by rename are still seen.
type Watcher struct {
	Changes <-chan Change // Read-only external channel

	files    map[string]string // absolute path -> path as given
	debounce time.Duration
	changes  chan Change // Internal write channel
	done     chan struct{}
	watcher  *fsnotify.Watcher
}

// NewWatcher creates a watcher for the given batch files.
func NewWatcher(paths ...string) (*Watcher, error) {
	files := make(map[string]string, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", p, err)
		}
		files[abs] = p
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ch := make(chan Change, 16)
	return &Watcher{
		Changes:  ch,
		files:    files,
		debounce: 100 * time.Millisecond,
		changes:  ch,
		done:     make(chan struct{}),
		watcher:  fw,
	}, nil
}

// Start begins watching.
func (w *Watcher) Start() error {
	dirs := make(map[string]bool)
	for abs := range w.files {
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		dirs[dir] = true
		if err := w.watcher.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
	}

	go w.loop()
	return nil
}

// Stop closes the watcher and channels.
func (w *Watcher) Stop() {
	w.watcher.Close()
	<-w.done // Wait for loop to exit
	close(w.changes)
}

func (w *Watcher) loop() {
	defer close(w.done)

	// Debounce: track last event per file.
	type pendingEvent struct {
		at   time.Time
		kind ChangeKind
	}
	pending := make(map[string]pendingEvent)
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				// Drain pending on close.
				for file, p := range pending {
					w.changes <- Change{Kind: p.kind, File: file}
				}
				return
			}

			file, watched := w.files[filepath.Clean(event.Name)]
			if !watched {
				continue
			}

			switch {
			case event.Has(fsnotify.Write) || event.Has(fsnotify.Create):
				pending[file] = pendingEvent{at: time.Now(), kind: ChangeModified}
			case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
				pending[file] = pendingEvent{at: time.Now(), kind: ChangeRemoved}
			}

		case _, ok := <-ticker.C:
			if !ok {
				return
			}
			now := time.Now()
			for file, p := range pending {
				if now.Sub(p.at) >= w.debounce {
					w.changes <- Change{Kind: p.kind, File: file}
					delete(pending, file)
				}
			}

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Ignore watch errors; they're non-fatal.
		}
	}
}
