// Package history keeps per-page undo and redo stacks of whole object-list
// snapshots. Stacks of different pages never interact.
package history

import (
	"sync"

	"elec-takeoff/internal/takeoff"
)

// DefaultDepth is the number of undo steps kept per page.
const DefaultDepth = 200

// Entry is one snapshot of a page's objects.
type Entry struct {
	PageIndex int
	Objects   []takeoff.Object
}

type stacks struct {
	undo []Entry
	redo []Entry
}

// Manager holds the undo and redo stacks of every page.
type Manager struct {
	mu    sync.Mutex
	pages map[int]*stacks
	depth int
}

// NewManager creates a manager keeping at most depth undo steps per page.
// A depth of 0 or less means unlimited.
func NewManager(depth int) *Manager {
	return &Manager{
		pages: make(map[int]*stacks),
		depth: depth,
	}
}

func (m *Manager) page(index int) *stacks {
	s, ok := m.pages[index]
	if !ok {
		s = &stacks{}
		m.pages[index] = s
	}
	return s
}

// Push records the page's current objects before a mutation and clears
// the page's redo stack.
func (m *Manager) Push(pageIndex int, current []takeoff.Object) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.page(pageIndex)
	s.undo = append(s.undo, snapshot(pageIndex, current))
	if m.depth > 0 && len(s.undo) > m.depth {
		s.undo = s.undo[len(s.undo)-m.depth:]
	}
	s.redo = nil
}

// Undo pops the latest snapshot of the page, moves current onto the redo
// stack and returns the snapshot to restore. ok is false when there is
// nothing to undo.
func (m *Manager) Undo(pageIndex int, current []takeoff.Object) (restored []takeoff.Object, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.page(pageIndex)
	if len(s.undo) == 0 {
		return nil, false
	}
	e := s.undo[len(s.undo)-1]
	s.undo = s.undo[:len(s.undo)-1]
	s.redo = append(s.redo, snapshot(pageIndex, current))
	return takeoff.CloneObjects(e.Objects), true
}

// Redo is the inverse of Undo.
func (m *Manager) Redo(pageIndex int, current []takeoff.Object) (restored []takeoff.Object, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.page(pageIndex)
	if len(s.redo) == 0 {
		return nil, false
	}
	e := s.redo[len(s.redo)-1]
	s.redo = s.redo[:len(s.redo)-1]
	s.undo = append(s.undo, snapshot(pageIndex, current))
	return takeoff.CloneObjects(e.Objects), true
}

// CanUndo reports whether the page has undo history.
func (m *Manager) CanUndo(pageIndex int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.pages[pageIndex]
	return ok && len(s.undo) > 0
}

// CanRedo reports whether the page has redo history.
func (m *Manager) CanRedo(pageIndex int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.pages[pageIndex]
	return ok && len(s.redo) > 0
}

// Depth returns the number of undo and redo entries held for a page.
func (m *Manager) Depth(pageIndex int) (undo, redo int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.pages[pageIndex]; ok {
		return len(s.undo), len(s.redo)
	}
	return 0, 0
}

// ClearPage drops the history of one page.
func (m *Manager) ClearPage(pageIndex int) {
	m.mu.Lock()
	delete(m.pages, pageIndex)
	m.mu.Unlock()
}

// Clear drops all history.
func (m *Manager) Clear() {
	m.mu.Lock()
	m.pages = make(map[int]*stacks)
	m.mu.Unlock()
}

func snapshot(pageIndex int, objs []takeoff.Object) Entry {
	c := takeoff.CloneObjects(objs)
	if c == nil {
		c = []takeoff.Object{}
	}
	return Entry{PageIndex: pageIndex, Objects: c}
}
