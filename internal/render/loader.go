package render

import (
	"context"
	"errors"
	"log"
	"sync"
)

// Result is delivered by the Loader for the latest request only.
type Result struct {
	Page *Page
	Err  error
}

// Loader renders pages off the caller's goroutine. Each request cancels
// the previous one, and a result is delivered only if no newer request
// was made in the meantime, so a page switch never shows a stale bitmap.
type Loader struct {
	renderer Renderer
	deliver  func(pageIndex int, r Result)

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
	wg     sync.WaitGroup

	deliverMu sync.Mutex // orders the staleness check with delivery
}

// NewLoader creates a loader. deliver runs on the render goroutine.
func NewLoader(r Renderer, deliver func(pageIndex int, r Result)) *Loader {
	return &Loader{renderer: r, deliver: deliver}
}

// Request starts rendering a page and returns the request generation.
func (l *Loader) Request(ctx context.Context, pageIndex int, scale float64) uint64 {
	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
	}
	l.gen++
	gen := l.gen
	ctx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.mu.Unlock()

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		defer cancel()

		page, err := l.renderer.RenderPage(ctx, pageIndex, scale)
		if errors.Is(err, context.Canceled) {
			return
		}

		l.deliverMu.Lock()
		defer l.deliverMu.Unlock()
		if !l.current(gen) {
			return
		}
		if err != nil {
			log.Printf("Render: page %d: %v", pageIndex, err)
		}
		l.deliver(pageIndex, Result{Page: page, Err: err})
	}()
	return gen
}

// Cancel abandons the outstanding request, if any.
func (l *Loader) Cancel() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.gen++
}

// Wait blocks until every started render has finished.
func (l *Loader) Wait() {
	l.wg.Wait()
}

func (l *Loader) current(gen uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return gen == l.gen
}
