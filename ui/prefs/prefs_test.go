package prefs

import (
	"path/filepath"
	"testing"
)

func TestPrefsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "preferences.json")

	p := LoadFrom(path)
	p.SetFloat(KeyClickTolerance, 12.5)
	p.SetString(KeyLastDirectory, "/data/images")
	p.SetBool(KeyShowLabels, false)
	if err := p.Save(); err != nil {
		t.Fatal(err)
	}

	q := LoadFrom(path)
	if got := q.FloatWithFallback(KeyClickTolerance, 8); got != 12.5 {
		t.Errorf("click tolerance = %v, want 12.5", got)
	}
	if got := q.String(KeyLastDirectory); got != "/data/images" {
		t.Errorf("last directory = %q", got)
	}
	if q.Bool(KeyShowLabels, true) {
		t.Error("show labels = true, want saved false")
	}
}

func TestPrefsDefaults(t *testing.T) {
	p := LoadFrom(filepath.Join(t.TempDir(), "missing.json"))
	if got := p.FloatWithFallback(KeyMinBoxPixels, 6); got != 6 {
		t.Errorf("fallback float = %v, want 6", got)
	}
	if got := p.String(KeyLastDirectory); got != "" {
		t.Errorf("unset string = %q, want empty", got)
	}
	if !p.Bool(KeyShowLabels, true) {
		t.Error("unset bool did not use fallback")
	}
}
