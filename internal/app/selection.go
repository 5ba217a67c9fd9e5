package app

// Select replaces the selection with a single object.
func (s *State) Select(pageIndex int, id string) {
	s.SetSelection(pageIndex, []string{id})
}

// SetSelection replaces the selection with the given ids on one page.
// Duplicate ids are collapsed.
func (s *State) SetSelection(pageIndex int, ids []string) {
	seen := make(map[string]bool, len(ids))
	sel := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		sel = append(sel, id)
	}

	s.mu.Lock()
	s.selPage = pageIndex
	s.selIDs = sel
	s.mu.Unlock()
	s.Emit(EventSelectionChanged, sel)
}

// ClearSelection empties the selection.
func (s *State) ClearSelection() {
	s.mu.Lock()
	had := len(s.selIDs) > 0
	s.selIDs = nil
	s.mu.Unlock()
	if had {
		s.Emit(EventSelectionChanged, nil)
	}
}

// Selection returns the selection page and a copy of the selected ids.
func (s *State) Selection() (int, []string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selPage, append([]string(nil), s.selIDs...)
}

// IsSelected reports whether an object on the page is selected.
func (s *State) IsSelected(pageIndex int, id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if pageIndex != s.selPage {
		return false
	}
	for _, sel := range s.selIDs {
		if sel == id {
			return true
		}
	}
	return false
}

func (s *State) dropFromSelection(pageIndex int, id string) {
	if !s.IsSelected(pageIndex, id) {
		return
	}
	page, ids := s.Selection()
	keep := ids[:0]
	for _, sel := range ids {
		if sel != id {
			keep = append(keep, sel)
		}
	}
	s.SetSelection(page, keep)
}

// pruneSelection drops selected ids that no longer exist, e.g. after undo.
func (s *State) pruneSelection() {
	page, ids := s.Selection()
	if len(ids) == 0 {
		return
	}
	present := s.present(page, ids)
	if len(present) == len(ids) {
		return
	}
	keep := make([]string, 0, len(present))
	for _, id := range ids {
		if present[id] {
			keep = append(keep, id)
		}
	}
	s.SetSelection(page, keep)
}
