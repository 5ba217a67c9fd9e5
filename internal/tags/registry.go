// Package tags provides the project-wide tag registry. Objects refer to
// tags only by code; lookups are case-insensitive and never fail hard, so
// an object whose tag was deleted still renders and exports with fallbacks.
package tags

import (
	"image/color"
	"sort"
	"strings"
	"sync"

	"elec-takeoff/internal/takeoff"
	"elec-takeoff/pkg/colorutil"
)

// Normalize returns the lookup key for a tag code.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Registry maps normalized codes to tags.
type Registry struct {
	mu    sync.RWMutex
	tags  map[string]takeoff.Tag
	rules CategoryRules
}

// NewRegistry creates a registry using the default category rules.
func NewRegistry(tags ...takeoff.Tag) *Registry {
	r := &Registry{
		tags:  make(map[string]takeoff.Tag),
		rules: DefaultCategoryRules(),
	}
	for _, t := range tags {
		r.Put(t)
	}
	return r
}

// SetRules replaces the category inference rules.
func (r *Registry) SetRules(rules CategoryRules) {
	r.mu.Lock()
	r.rules = rules
	r.mu.Unlock()
}

// Rules returns the category inference rules.
func (r *Registry) Rules() CategoryRules {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rules
}

// Put adds or replaces a tag. Tags with an empty code are ignored.
func (r *Registry) Put(t takeoff.Tag) bool {
	key := Normalize(t.Code)
	if key == "" {
		return false
	}
	if t.ID == "" {
		t.ID = takeoff.NewID()
	}
	r.mu.Lock()
	r.tags[key] = t
	r.mu.Unlock()
	return true
}

// Remove deletes a tag by code.
func (r *Registry) Remove(code string) {
	r.mu.Lock()
	delete(r.tags, Normalize(code))
	r.mu.Unlock()
}

// Lookup finds a tag by code, ignoring case and surrounding space.
func (r *Registry) Lookup(code string) (takeoff.Tag, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tags[Normalize(code)]
	return t, ok
}

// Len returns the number of tags.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tags)
}

// All returns the tags sorted by code.
func (r *Registry) All() []takeoff.Tag {
	r.mu.RLock()
	out := make([]takeoff.Tag, 0, len(r.tags))
	for _, t := range r.tags {
		out = append(out, t)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return Normalize(out[i].Code) < Normalize(out[j].Code)
	})
	return out
}

// Replace swaps the whole tag set in one step. Tags with an empty code are
// dropped.
func (r *Registry) Replace(tags []takeoff.Tag) {
	next := make(map[string]takeoff.Tag, len(tags))
	for _, t := range tags {
		key := Normalize(t.Code)
		if key == "" {
			continue
		}
		if t.ID == "" {
			t.ID = takeoff.NewID()
		}
		next[key] = t
	}
	r.mu.Lock()
	r.tags = next
	r.mu.Unlock()
}

// Name returns the tag's display name, or the code itself when unknown.
func (r *Registry) Name(code string) string {
	if t, ok := r.Lookup(code); ok && t.Name != "" {
		return t.Name
	}
	return code
}

// Category returns the tag's explicit category, falling back to the
// prefix heuristic when the tag is unknown or has none.
func (r *Registry) Category(code string) string {
	if t, ok := r.Lookup(code); ok && strings.TrimSpace(t.Category) != "" {
		return t.Category
	}
	return r.Rules().Infer(code)
}

// Color resolves the tag's color, or fallback for unknown tags and
// unparsable colors.
func (r *Registry) Color(code string, fallback color.RGBA) color.RGBA {
	t, ok := r.Lookup(code)
	if !ok {
		return fallback
	}
	c, ok := colorutil.ParseHex(t.Color)
	if !ok {
		return fallback
	}
	return c
}
