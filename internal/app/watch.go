package app

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ImageWatcher reloads the displayed image when its file changes on disk,
// e.g. after the stitcher rewrote an overview that is already open.
type ImageWatcher struct {
	state   *State
	watcher *fsnotify.Watcher
	stopCh  chan struct{}

	// follow runs on whichever goroutine emits EventImageLoaded while
	// loop reads the path on its own goroutine.
	mu   sync.Mutex
	path string
}

// NewImageWatcher creates a watcher bound to the state. It follows the
// displayed document as images are opened.
func NewImageWatcher(state *State) (*ImageWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	iw := &ImageWatcher{
		state:   state,
		watcher: w,
		stopCh:  make(chan struct{}),
	}
	state.On(EventImageLoaded, func(data interface{}) {
		if doc := state.Document(); doc != nil {
			iw.follow(doc.Path)
		}
	})
	go iw.loop()
	return iw, nil
}

func (w *ImageWatcher) follow(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.path == path {
		return
	}
	if w.path != "" {
		w.watcher.Remove(filepath.Dir(w.path))
	}
	w.path = path
	if err := w.watcher.Add(filepath.Dir(path)); err != nil {
		w.state.Log.WithError(err).Warn("cannot watch image directory")
	}
}

func (w *ImageWatcher) current() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.path
}

func (w *ImageWatcher) loop() {
	// Writers produce bursts of events; reload once per quiet period.
	var pending <-chan time.Time
	for {
		select {
		case <-w.stopCh:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if ev.Name == w.current() && ev.Op.Has(fsnotify.Write|fsnotify.Create) {
				pending = time.After(200 * time.Millisecond)
			}
		case <-pending:
			pending = nil
			path := w.current()
			if err := w.state.LoadImage(path); err != nil {
				w.state.Log.WithError(err).Warn("image reload failed")
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.state.Log.WithError(err).Warn("image watcher error")
		}
	}
}

// Close stops the watcher.
func (w *ImageWatcher) Close() error {
	close(w.stopCh)
	return w.watcher.Close()
}
