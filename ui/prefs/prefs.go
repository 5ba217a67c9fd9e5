// Package prefs provides JSON-based application preferences.
package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"elec-takeoff/internal/takeoff"
)

const prefsFile = "preferences.json"

// Preference keys.
const (
	KeyLastDir        = "lastDir"
	KeyLastProject    = "lastProject"
	KeyLastDrawings   = "lastDrawings"
	KeyActiveCode     = "activeCode"
	KeyZoom           = "zoom"
	KeyMeasureOptions = "measureOptions"
)

// Prefs stores application preferences as a key-value map.
type Prefs struct {
	mu     sync.RWMutex
	values map[string]interface{}
	path   string
}

// Load reads preferences from ~/.config/elec-takeoff/preferences.json.
// Returns a Prefs with defaults if the file doesn't exist.
func Load() *Prefs {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return LoadFrom(filepath.Join(configDir, "elec-takeoff", prefsFile))
}

// LoadFrom reads preferences from a specific file.
func LoadFrom(path string) *Prefs {
	p := &Prefs{
		values: make(map[string]interface{}),
		path:   path,
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return p
	}
	_ = json.Unmarshal(data, &p.values)
	return p
}

// Save writes preferences to disk.
func (p *Prefs) Save() error {
	p.mu.RLock()
	data, err := json.MarshalIndent(p.values, "", "  ")
	p.mu.RUnlock()
	if err != nil {
		return err
	}

	dir := filepath.Dir(p.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(p.path, data, 0o644)
}

// Float returns a float64 preference, or fallback if not set.
func (p *Prefs) Float(key string, fallback float64) float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if v, ok := p.values[key]; ok {
		switch n := v.(type) {
		case float64:
			return n
		case int:
			return float64(n)
		}
	}
	return fallback
}

// SetFloat stores a float64 preference.
func (p *Prefs) SetFloat(key string, val float64) {
	p.mu.Lock()
	p.values[key] = val
	p.mu.Unlock()
}

// String returns a string preference, or "" if not set.
func (p *Prefs) String(key string) string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if v, ok := p.values[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// SetString stores a string preference.
func (p *Prefs) SetString(key string, val string) {
	p.mu.Lock()
	p.values[key] = val
	p.mu.Unlock()
}

// MeasureOptions returns the last used measurement options, or fallback.
func (p *Prefs) MeasureOptions(fallback takeoff.MeasureOptions) takeoff.MeasureOptions {
	p.mu.RLock()
	v, ok := p.values[KeyMeasureOptions]
	p.mu.RUnlock()
	if !ok {
		return fallback
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fallback
	}
	var opts takeoff.MeasureOptions
	if err := json.Unmarshal(data, &opts); err != nil {
		return fallback
	}
	return opts.Normalized()
}

// SetMeasureOptions remembers the last used measurement options.
func (p *Prefs) SetMeasureOptions(opts takeoff.MeasureOptions) {
	p.mu.Lock()
	p.values[KeyMeasureOptions] = opts
	p.mu.Unlock()
}
