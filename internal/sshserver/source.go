package sshserver

import (
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/stlalpha/tabview/internal/grid"
)

// Source holds the grid handed to new sessions. Running sessions keep the
// copy they started with.
type Source struct {
	mu   sync.RWMutex
	grid *grid.Grid

	watcher     *fsnotify.Watcher
	watcherDone chan struct{}
	debounce    time.Duration
}

// NewSource returns a source serving g.
func NewSource(g *grid.Grid) *Source {
	return &Source{grid: g, debounce: 500 * time.Millisecond}
}

// Grid implements GridSource.
func (s *Source) Grid() *grid.Grid {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.grid
}

func (s *Source) set(g *grid.Grid) {
	s.mu.Lock()
	s.grid = g
	s.mu.Unlock()
}

// Watch reloads the grid with load whenever the file at path changes. The
// directory is watched so that editors replacing the file are noticed.
func (s *Source) Watch(path string, load func() (*grid.Grid, error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	path = filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}
	log.Printf("INFO: Watching %s for changes (auto-reload enabled)", path)

	s.watcher = watcher
	s.watcherDone = make(chan struct{})
	go s.watchLoop(watcher, path, load)
	return nil
}

// Close stops watching.
func (s *Source) Close() error {
	if s.watcher == nil {
		return nil
	}
	close(s.watcherDone)
	err := s.watcher.Close()
	s.watcher = nil
	return err
}

func (s *Source) watchLoop(w *fsnotify.Watcher, path string, load func() (*grid.Grid, error)) {
	// Debounce timer to avoid reloading on rapid successive writes
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(s.debounce, func() {
				s.reload(path, load)
			})

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			log.Printf("ERROR: File watcher error: %v", err)

		case <-s.watcherDone:
			return
		}
	}
}

func (s *Source) reload(path string, load func() (*grid.Grid, error)) {
	g, err := load()
	if err != nil {
		log.Printf("ERROR: Failed to reload %s, keeping previous data: %v", path, err)
		return
	}
	s.set(g)
	log.Printf("INFO: %s reloaded (%d rows)", path, g.Len())
}
