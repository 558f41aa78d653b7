// Package watcher monitors directories for new and changed files.
package watcher

import (
	"context"
	"log"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Op describes what happened to a file.
type Op int

const (
	Created Op = iota
	Modified
	Deleted
)

// Event is one observed file change.
type Event struct {
	Path string
	Op   Op
}

// Watcher emits events for files with watched extensions.
type Watcher struct {
	watcher    *fsnotify.Watcher
	extensions map[string]bool
}

// New creates a Watcher that reports files with the given extensions
// (with leading dot, e.g. ".pdf").
func New(extensions []string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	watched := make(map[string]bool, len(extensions))
	for _, e := range extensions {
		watched[strings.ToLower(e)] = true
	}

	return &Watcher{watcher: w, extensions: watched}, nil
}

// Watch starts monitoring dir and returns a channel of events. The channel
// closes when ctx is cancelled or the watcher is closed.
func (w *Watcher) Watch(ctx context.Context, dir string) (<-chan Event, error) {
	if err := w.watcher.Add(dir); err != nil {
		return nil, err
	}

	events := make(chan Event, 100)

	go func() {
		defer close(events)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if !w.watched(event.Name) {
					continue
				}

				var op Op
				switch {
				case event.Op.Has(fsnotify.Create):
					op = Created
				case event.Op.Has(fsnotify.Write):
					op = Modified
				case event.Op.Has(fsnotify.Remove):
					op = Deleted
				default:
					continue
				}

				select {
				case events <- Event{Path: event.Name, Op: op}:
				case <-ctx.Done():
					return
				}
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				log.Printf("watcher: %v", err)
			}
		}
	}()

	return events, nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func (w *Watcher) watched(path string) bool {
	if len(w.extensions) == 0 {
		return true
	}
	return w.extensions[strings.ToLower(filepath.Ext(path))]
}
