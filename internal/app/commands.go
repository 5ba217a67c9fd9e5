package app

import (
	"math"

	"elec-takeoff/internal/takeoff"
)

// mutate snapshots a page onto its undo stack and then applies fn to it.
// Callers check preconditions first so no-op commands leave no history.
func (s *State) mutate(pageIndex int, fn func(p *takeoff.PageState)) {
	s.mu.Lock()
	p := s.page(pageIndex)
	s.history.Push(pageIndex, p.Objects)
	fn(p)
	s.touch()
	s.mu.Unlock()

	s.Emit(EventObjectsChanged, pageIndex)
	s.Emit(EventHistoryChanged, pageIndex)
	s.Emit(EventModified, true)
}

// AddObject appends an object to its page. Invalid objects are rejected.
func (s *State) AddObject(obj takeoff.Object) error {
	if err := obj.Validate(); err != nil {
		return err
	}
	obj = obj.Clone()
	s.mutate(obj.PageIndex, func(p *takeoff.PageState) {
		p.Objects = append(p.Objects, obj)
	})
	return nil
}

// PatchObject applies fn to a copy of the object and stores the result.
// It returns false when the object does not exist or the patched object is
// no longer valid.
func (s *State) PatchObject(pageIndex int, id string, fn func(*takeoff.Object)) bool {
	obj, ok := s.Object(pageIndex, id)
	if !ok {
		return false
	}
	fn(&obj)
	obj.ID = id
	obj.PageIndex = pageIndex
	if obj.Validate() != nil {
		return false
	}
	s.mutate(pageIndex, func(p *takeoff.PageState) {
		if i := p.Find(id); i >= 0 {
			p.Objects[i] = obj
		}
	})
	return true
}

// MoveObjects translates the given objects by (dx, dy) page units as one
// history step.
func (s *State) MoveObjects(pageIndex int, ids []string, dx, dy float64) int {
	if dx == 0 && dy == 0 || math.IsNaN(dx) || math.IsNaN(dy) || math.IsInf(dx, 0) || math.IsInf(dy, 0) {
		return 0
	}
	want := s.present(pageIndex, ids)
	if len(want) == 0 {
		return 0
	}
	s.mutate(pageIndex, func(p *takeoff.PageState) {
		for i := range p.Objects {
			if want[p.Objects[i].ID] {
				p.Objects[i].Translate(dx, dy)
			}
		}
	})
	return len(want)
}

// RotateObject sets the rotation of a count object, in degrees [0, 360).
func (s *State) RotateObject(pageIndex int, id string, degrees float64) bool {
	obj, ok := s.Object(pageIndex, id)
	if !ok || obj.Type != takeoff.TypeCount || math.IsNaN(degrees) || math.IsInf(degrees, 0) {
		return false
	}
	return s.PatchObject(pageIndex, id, func(o *takeoff.Object) {
		r := math.Mod(degrees, 360)
		if r < 0 {
			r += 360
		}
		o.Rotation = r
	})
}

// RemoveObject deletes one object. It returns false if it was not found.
func (s *State) RemoveObject(pageIndex int, id string) bool {
	if len(s.present(pageIndex, []string{id})) == 0 {
		return false
	}
	s.mutate(pageIndex, func(p *takeoff.PageState) {
		p.Objects = removeIDs(p.Objects, map[string]bool{id: true})
	})
	s.dropFromSelection(pageIndex, id)
	return true
}

// ReplaceObjects replaces the whole object list of a page. Objects that do
// not validate are dropped; objects belonging to another page are re-homed.
func (s *State) ReplaceObjects(pageIndex int, objs []takeoff.Object) {
	next := make([]takeoff.Object, 0, len(objs))
	for _, o := range objs {
		o = o.Clone()
		o.PageIndex = pageIndex
		if o.Validate() == nil {
			next = append(next, o)
		}
	}
	s.mutate(pageIndex, func(p *takeoff.PageState) {
		p.Objects = next
	})
	s.ClearSelection()
}

// DeleteSelected removes every selected object and clears the selection.
func (s *State) DeleteSelected() int {
	pageIndex, ids := s.Selection()
	want := s.present(pageIndex, ids)
	if len(want) == 0 {
		return 0
	}
	s.mutate(pageIndex, func(p *takeoff.PageState) {
		p.Objects = removeIDs(p.Objects, want)
	})
	s.ClearSelection()
	return len(want)
}

// ApplyMeasureOptions re-applies measurement options to existing
// measurement objects as one history step. Count objects are skipped.
func (s *State) ApplyMeasureOptions(pageIndex int, ids []string, opts takeoff.MeasureOptions) int {
	want := s.present(pageIndex, ids)
	s.mu.RLock()
	n := 0
	if p, ok := s.pages[pageIndex]; ok {
		for _, o := range p.Objects {
			if want[o.ID] && o.Type.IsMeasurement() {
				n++
			}
		}
	}
	s.mu.RUnlock()
	if n == 0 {
		return 0
	}
	s.mutate(pageIndex, func(p *takeoff.PageState) {
		for i := range p.Objects {
			o := &p.Objects[i]
			if want[o.ID] && o.Type.IsMeasurement() {
				m := opts
				o.Measure = &m
			}
		}
	})
	return n
}

// Undo restores the previous snapshot of a page. It is a no-op returning
// false when there is nothing to undo.
func (s *State) Undo(pageIndex int) bool {
	return s.travel(pageIndex, true)
}

// Redo re-applies the last undone snapshot of a page.
func (s *State) Redo(pageIndex int) bool {
	return s.travel(pageIndex, false)
}

func (s *State) travel(pageIndex int, back bool) bool {
	s.mu.Lock()
	p := s.page(pageIndex)
	var (
		restored []takeoff.Object
		ok       bool
	)
	if back {
		restored, ok = s.history.Undo(pageIndex, p.Objects)
	} else {
		restored, ok = s.history.Redo(pageIndex, p.Objects)
	}
	if ok {
		p.Objects = restored
		s.touch()
	}
	s.mu.Unlock()

	if !ok {
		return false
	}
	s.pruneSelection()
	s.Emit(EventObjectsChanged, pageIndex)
	s.Emit(EventHistoryChanged, pageIndex)
	s.Emit(EventModified, true)
	return true
}

// CanUndo reports whether the page has undo history.
func (s *State) CanUndo(pageIndex int) bool {
	return s.history.CanUndo(pageIndex)
}

// CanRedo reports whether the page has redo history.
func (s *State) CanRedo(pageIndex int) bool {
	return s.history.CanRedo(pageIndex)
}

// present returns the subset of ids that exist on the page.
func (s *State) present(pageIndex int, ids []string) map[string]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]bool)
	p, ok := s.pages[pageIndex]
	if !ok {
		return out
	}
	for _, id := range ids {
		if p.Find(id) >= 0 {
			out[id] = true
		}
	}
	return out
}

func removeIDs(objs []takeoff.Object, ids map[string]bool) []takeoff.Object {
	out := objs[:0:0]
	for _, o := range objs {
		if !ids[o.ID] {
			out = append(out, o)
		}
	}
	return out
}
