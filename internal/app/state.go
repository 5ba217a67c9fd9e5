// Package app provides the application state container: pages, tags,
// measurement options, selection and history, with every mutation funneled
// through explicit commands and announced through events.
package app

import (
	"sort"
	"sync"

	"elec-takeoff/internal/history"
	"elec-takeoff/internal/tags"
	"elec-takeoff/internal/takeoff"
)

// State holds the takeoff state of the open project.
type State struct {
	mu sync.RWMutex

	// Project
	ProjectPath string
	FileName    string
	Modified    bool
	PageCount   int

	// gen counts changes so a save can tell whether it wrote the latest state.
	gen uint64
	// sheets is the page count of the loaded drawing set.
	sheets int

	pages   map[int]*takeoff.PageState
	options takeoff.MeasureOptions

	// Tags is the project-wide tag registry.
	Tags *tags.Registry

	history *history.Manager

	// Selection is scoped to one page.
	selPage int
	selIDs  []string

	// Event listeners
	listeners map[EventType][]EventListener
}

// EventType identifies different application events.
type EventType int

const (
	EventProjectLoaded EventType = iota
	EventProjectSaved
	EventProjectReset
	EventObjectsChanged
	EventSelectionChanged
	EventCalibrationChanged
	EventHistoryChanged
	EventModified
	EventTagsChanged
	EventOptionsChanged
	EventPageChanged
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// Option configures a new State.
type Option func(*State)

// WithHistoryDepth limits the undo steps kept per page.
func WithHistoryDepth(depth int) Option {
	return func(s *State) {
		s.history = history.NewManager(depth)
	}
}

// WithMeasureOptions sets the initial measurement options.
func WithMeasureOptions(opts takeoff.MeasureOptions) Option {
	return func(s *State) {
		s.options = opts
	}
}

// WithCategoryRules sets the tag category inference rules.
func WithCategoryRules(rules tags.CategoryRules) Option {
	return func(s *State) {
		s.Tags.SetRules(rules)
	}
}

// NewState creates a new, empty application state.
func NewState(opts ...Option) *State {
	s := &State{
		pages:     make(map[int]*takeoff.PageState),
		options:   takeoff.DefaultMeasureOptions(),
		Tags:      tags.NewRegistry(),
		history:   history.NewManager(history.DefaultDepth),
		listeners: make(map[EventType][]EventListener),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// SetModified marks the project as modified and emits an event.
func (s *State) SetModified(modified bool) {
	s.mu.Lock()
	if modified {
		s.touch()
	} else {
		s.Modified = false
	}
	s.mu.Unlock()
	s.Emit(EventModified, modified)
}

// touch records a change. Callers hold mu.
func (s *State) touch() {
	s.Modified = true
	s.gen++
}

// IsModified reports whether there are unsaved changes.
func (s *State) IsModified() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Modified
}

// Reset clears every page, the history and the selection. It is used for a
// new project and when a new drawing set is loaded.
func (s *State) Reset(fileName string, pageCount int) {
	s.mu.Lock()
	s.ProjectPath = ""
	s.FileName = fileName
	s.PageCount = pageCount
	s.sheets = pageCount
	s.pages = make(map[int]*takeoff.PageState)
	s.selIDs = nil
	s.selPage = 0
	s.Modified = false
	s.gen++
	s.mu.Unlock()

	s.history.Clear()
	s.Emit(EventProjectReset, fileName)
	s.Emit(EventSelectionChanged, nil)
	s.Emit(EventObjectsChanged, -1)
}

// page returns the mutable page, creating it on first use. Callers hold mu.
func (s *State) page(index int) *takeoff.PageState {
	p, ok := s.pages[index]
	if !ok {
		p = takeoff.NewPageState(index)
		s.pages[index] = p
		if index >= s.PageCount {
			s.PageCount = index + 1
		}
	}
	return p
}

// Page returns a deep copy of a page's state.
func (s *State) Page(index int) *takeoff.PageState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.pages[index]
	if !ok {
		return takeoff.NewPageState(index)
	}
	return p.Clone()
}

// Pages returns deep copies of every page that has state, ordered by index.
func (s *State) Pages() []*takeoff.PageState {
	s.mu.RLock()
	out := make([]*takeoff.PageState, 0, len(s.pages))
	for _, p := range s.pages {
		out = append(out, p.Clone())
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].PageIndex < out[j].PageIndex })
	return out
}

// Objects returns a deep copy of a page's objects.
func (s *State) Objects(pageIndex int) []takeoff.Object {
	return s.Page(pageIndex).Objects
}

// Object returns a copy of one object.
func (s *State) Object(pageIndex int, id string) (takeoff.Object, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.pages[pageIndex]
	if !ok {
		return takeoff.Object{}, false
	}
	i := p.Find(id)
	if i < 0 {
		return takeoff.Object{}, false
	}
	return p.Objects[i].Clone(), true
}

// MeasureOptions returns the current (last used) measurement options.
func (s *State) MeasureOptions() takeoff.MeasureOptions {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.options
}

// SetMeasureOptions replaces the current measurement options. Existing
// objects are not touched; see ApplyMeasureOptions.
func (s *State) SetMeasureOptions(opts takeoff.MeasureOptions) {
	s.mu.Lock()
	s.options = opts
	s.touch()
	s.mu.Unlock()
	s.Emit(EventOptionsChanged, opts)
	s.Emit(EventModified, true)
}

// SetCalibration sets a page's pixels-per-foot factor. Non-positive or
// non-finite factors are rejected and leave the page unchanged.
func (s *State) SetCalibration(pageIndex int, pixelsPerFoot float64) bool {
	s.mu.Lock()
	ok := s.page(pageIndex).SetScale(pixelsPerFoot)
	if ok {
		s.touch()
	}
	s.mu.Unlock()

	if ok {
		s.Emit(EventCalibrationChanged, pageIndex)
		s.Emit(EventModified, true)
	}
	return ok
}

// ClearCalibration marks a page as uncalibrated.
func (s *State) ClearCalibration(pageIndex int) {
	s.mu.Lock()
	s.page(pageIndex).PixelsPerFoot = nil
	s.touch()
	s.mu.Unlock()
	s.Emit(EventCalibrationChanged, pageIndex)
}

// SetUnit sets the display unit of a page.
func (s *State) SetUnit(pageIndex int, unit takeoff.Unit) {
	if !unit.Valid() {
		return
	}
	s.mu.Lock()
	s.page(pageIndex).Unit = unit
	s.touch()
	s.mu.Unlock()
	s.Emit(EventCalibrationChanged, pageIndex)
}

// SetPageLabel sets the sheet label of a page.
func (s *State) SetPageLabel(pageIndex int, label string) {
	s.mu.Lock()
	s.page(pageIndex).Label = label
	s.touch()
	s.mu.Unlock()
	s.Emit(EventPageChanged, pageIndex)
}

// SetTags replaces the tag registry contents.
func (s *State) SetTags(list []takeoff.Tag) {
	s.Tags.Replace(list)
	s.SetModified(true)
	s.Emit(EventTagsChanged, nil)
}

// PutTag adds or updates one tag.
func (s *State) PutTag(t takeoff.Tag) bool {
	if !s.Tags.Put(t) {
		return false
	}
	s.SetModified(true)
	s.Emit(EventTagsChanged, t.Code)
	return true
}

// RemoveTag deletes a tag from the registry. Objects keep their codes.
func (s *State) RemoveTag(code string) {
	if _, ok := s.Tags.Lookup(code); !ok {
		return
	}
	s.Tags.Remove(code)
	s.SetModified(true)
	s.Emit(EventTagsChanged, code)
}
