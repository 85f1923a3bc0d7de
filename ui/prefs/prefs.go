// Package prefs provides JSON-based viewer preferences.
package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"drawing-viewer/internal/drawing"
)

const prefsFile = "preferences.json"

// Preference keys.
const (
	KeyLastDrawing    = "lastDrawing"
	KeyLastDiscipline = "lastDiscipline"
	KeyLastRevision   = "lastRevision"
	KeyWindowWidth    = "windowWidth"
	KeyWindowHeight   = "windowHeight"
	KeyPinsVisible    = "pinsVisible"
	KeySplitOffset    = "splitOffset"
)

// Prefs stores viewer preferences as a key-value map.
type Prefs struct {
	mu     sync.RWMutex
	values map[string]interface{}
	path   string
	dirty  bool
}

// Load reads preferences from the user config dir
// (~/.config/drawing-viewer/preferences.json on Linux).
func Load() *Prefs {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return LoadFrom(filepath.Join(configDir, "drawing-viewer", prefsFile))
}

// LoadFrom reads preferences from path. A missing or unreadable file yields
// empty preferences.
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

// Path returns the backing file.
func (p *Prefs) Path() string {
	return p.path
}

// Save writes preferences to disk.
func (p *Prefs) Save() error {
	p.mu.Lock()
	data, err := json.MarshalIndent(p.values, "", "  ")
	p.dirty = false
	p.mu.Unlock()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(p.path, data, 0o644)
}

// SaveIfChanged writes preferences only if a setter ran since the last save.
func (p *Prefs) SaveIfChanged() error {
	p.mu.RLock()
	dirty := p.dirty
	p.mu.RUnlock()
	if !dirty {
		return nil
	}
	return p.Save()
}

func (p *Prefs) set(key string, val interface{}) {
	p.mu.Lock()
	if old, ok := p.values[key]; !ok || old != val {
		p.values[key] = val
		p.dirty = true
	}
	p.mu.Unlock()
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
	p.set(key, val)
}

// String returns a string preference, or "" if not set.
func (p *Prefs) String(key string) string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if s, ok := p.values[key].(string); ok {
		return s
	}
	return ""
}

// SetString stores a string preference.
func (p *Prefs) SetString(key string, val string) {
	p.set(key, val)
}

// Bool returns a bool preference, or fallback if not set.
func (p *Prefs) Bool(key string, fallback bool) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if b, ok := p.values[key].(bool); ok {
		return b
	}
	return fallback
}

// SetBool stores a bool preference.
func (p *Prefs) SetBool(key string, val bool) {
	p.set(key, val)
}

// LastSelection returns the drawing shown when the viewer last closed.
func (p *Prefs) LastSelection() (drawing.Selection, bool) {
	id := p.String(KeyLastDrawing)
	if id == "" {
		return drawing.Selection{}, false
	}
	return drawing.Selection{
		DrawingID:       id,
		Discipline:      p.String(KeyLastDiscipline),
		RevisionVersion: p.String(KeyLastRevision),
	}, true
}

// SetLastSelection remembers sel.
func (p *Prefs) SetLastSelection(sel drawing.Selection) {
	p.SetString(KeyLastDrawing, sel.DrawingID)
	p.SetString(KeyLastDiscipline, sel.Discipline)
	p.SetString(KeyLastRevision, sel.RevisionVersion)
}
