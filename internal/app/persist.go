package app

import (
	"fmt"
	"log"

	"elec-takeoff/internal/project"
	"elec-takeoff/internal/takeoff"
)

// Snapshot returns the whole project state as a serializable structure.
func (s *State) Snapshot() *project.File {
	f := project.New(s.fileName())
	for _, p := range s.Pages() {
		f.Pages = append(f.Pages, project.FromPage(p))
	}
	f.Tags = s.Tags.All()
	opts := s.MeasureOptions()
	f.Options = &opts
	return f
}

// Restore replaces the project state with f. History and selection are
// cleared. The page count covers every restored page and the loaded
// drawing set, whichever is larger.
func (s *State) Restore(f *project.File) {
	pages := make(map[int]*takeoff.PageState, len(f.Pages))
	count := s.drawingPages()
	for _, pf := range f.Pages {
		pages[pf.PageIndex] = pf.State()
		if pf.PageIndex >= count {
			count = pf.PageIndex + 1
		}
	}

	s.mu.Lock()
	s.FileName = f.FileName
	s.pages = pages
	s.PageCount = count
	if f.Options != nil {
		s.options = *f.Options
	}
	s.selIDs = nil
	s.Modified = false
	s.gen++
	s.mu.Unlock()

	s.Tags.Replace(f.Tags)
	s.history.Clear()

	s.Emit(EventTagsChanged, nil)
	s.Emit(EventSelectionChanged, nil)
	s.Emit(EventObjectsChanged, -1)
	s.Emit(EventCalibrationChanged, -1)
}

// LoadProject reads a project file and restores it. Load warnings are
// returned for display; they never block the load.
func (s *State) LoadProject(path string) ([]*project.Warning, error) {
	f, warnings, err := project.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	s.Restore(f)

	s.mu.Lock()
	s.ProjectPath = path
	s.mu.Unlock()

	if len(warnings) > 0 {
		log.Printf("Project: loaded %s with %d warnings: %s", path, len(warnings), project.Summary(warnings))
	} else {
		log.Printf("Project: loaded %s", path)
	}
	s.Emit(EventProjectLoaded, path)
	return warnings, nil
}

// SaveProject writes the project to path and remembers it for autosave.
// Changes made while the file was being written keep the project modified.
func (s *State) SaveProject(path string) error {
	gen, err := s.writeProject(path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.ProjectPath = path
	clean := s.markSaved(gen)
	s.mu.Unlock()

	s.Emit(EventProjectSaved, path)
	if clean {
		s.Emit(EventModified, false)
	}
	return nil
}

// Autosave writes the project back to path and reports whether it is now
// clean. It emits no events and leaves the project path alone, so it may
// run off the UI goroutine.
func (s *State) Autosave(path string) (bool, error) {
	gen, err := s.writeProject(path)
	if err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.markSaved(gen), nil
}

// writeProject saves a snapshot and returns the change generation read
// before the snapshot was taken.
func (s *State) writeProject(path string) (uint64, error) {
	s.mu.RLock()
	gen := s.gen
	s.mu.RUnlock()

	if err := s.Snapshot().Save(path); err != nil {
		return 0, fmt.Errorf("failed to save project: %w", err)
	}
	return gen, nil
}

// markSaved clears Modified unless the state changed after generation gen.
// Callers hold mu.
func (s *State) markSaved(gen uint64) bool {
	if s.gen != gen {
		return false
	}
	s.Modified = false
	return true
}

// Path returns the path the project was last loaded from or saved to.
func (s *State) Path() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ProjectPath
}

func (s *State) drawingPages() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sheets
}

func (s *State) fileName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.FileName
}
