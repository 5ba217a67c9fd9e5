package app

import (
	"log"
	"sync"
	"time"
)

// Autosaver periodically writes a modified project back to the path it was
// last loaded from or saved to. Projects that were never saved are skipped.
type Autosaver struct {
	state    *State
	interval time.Duration

	mu      sync.Mutex
	stopCh  chan struct{}
	running bool
	onSaved func(path string, err error) // Called after every attempt
}

// NewAutosaver creates an autosaver for the state. It returns nil for a
// non-positive interval, which disables autosave.
func NewAutosaver(state *State, interval time.Duration) *Autosaver {
	if interval <= 0 {
		return nil
	}
	return &Autosaver{
		state:    state,
		interval: interval,
	}
}

// OnSaved sets the callback invoked after each autosave attempt. The
// callback runs on the autosave goroutine.
func (a *Autosaver) OnSaved(callback func(path string, err error)) {
	a.mu.Lock()
	a.onSaved = callback
	a.mu.Unlock()
}

// Start begins autosaving in a background goroutine.
func (a *Autosaver) Start() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.running {
		return
	}
	a.stopCh = make(chan struct{})
	a.running = true
	go a.loop(a.stopCh)
}

// Stop stops the autosave goroutine.
func (a *Autosaver) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.running {
		return
	}
	close(a.stopCh)
	a.running = false
}

func (a *Autosaver) loop(stop chan struct{}) {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			a.SaveIfModified()
		}
	}
}

// SaveIfModified saves the project when it has unsaved changes and a known
// path. It reports whether a save was attempted.
func (a *Autosaver) SaveIfModified() bool {
	path := a.state.Path()
	if path == "" || !a.state.IsModified() {
		return false
	}

	clean, err := a.state.Autosave(path)
	switch {
	case err != nil:
		log.Printf("Autosave: %v", err)
	case clean:
		log.Printf("Autosave: saved %s", path)
	default:
		log.Printf("Autosave: saved %s, newer changes still pending", path)
	}

	a.mu.Lock()
	cb := a.onSaved
	a.mu.Unlock()
	if cb != nil {
		cb(path, err)
	}
	return true
}
