// Package prefs provides JSON-based application preferences.
package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

const prefsFile = "preferences.json"

// Preference keys.
const (
	KeyClickTolerance = "click_tolerance"
	KeyMinBoxPixels   = "min_box_pixels"
	KeyLastDirectory  = "last_directory"
	KeyShowLabels     = "show_labels"
)

// Prefs stores application preferences as a key-value map.
type Prefs struct {
	mu     sync.RWMutex
	values map[string]interface{}
	path   string
}

// Load reads preferences from ~/.config/box-marker/preferences.json.
// Returns a Prefs with defaults if the file doesn't exist.
func Load() *Prefs {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return LoadFrom(filepath.Join(configDir, "box-marker", prefsFile))
}

// LoadFrom reads preferences from an explicit path.
func LoadFrom(path string) *Prefs {
	p := &Prefs{
		values: make(map[string]interface{}),
		path:   path,
	}

	data, err := os.ReadFile(p.path)
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

	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(p.path, data, 0o644)
}

// FloatWithFallback returns a float64 preference, or fallback if not set.
func (p *Prefs) FloatWithFallback(key string, fallback float64) float64 {
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

// Bool returns a bool preference, or fallback if not set.
func (p *Prefs) Bool(key string, fallback bool) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if v, ok := p.values[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return fallback
}

// SetBool stores a bool preference.
func (p *Prefs) SetBool(key string, val bool) {
	p.mu.Lock()
	p.values[key] = val
	p.mu.Unlock()
}
