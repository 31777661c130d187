// Package artifact persists and re-loads the durable output of each pipeline
// stage. All artifacts for one run share a base name inside the output
// directory, so any stage can be re-run later against a prior stage's file.
package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Paths addresses one run's artifacts by output directory and base name.
type Paths struct {
	Dir  string
	Base string
}

// NewPaths creates the artifact address for a run, applying defaults for
// empty values.
func NewPaths(dir, base string) Paths {
	if dir == "" {
		dir = "report"
	}
	if base == "" {
		base = "report"
	}
	return Paths{Dir: dir, Base: base}
}

// RawJSON is the raw statistics document from the profiling stage.
func (p Paths) RawJSON() string { return p.join("raw.json") }

// ReportHTML is the rendered human-readable report from the profiling stage.
func (p Paths) ReportHTML() string { return p.join("raw.html") }

// Cleaned is the Cleaner's output artifact.
func (p Paths) Cleaned() string { return p.join("cleaned.json") }

// Shrunk is the Shrinker's output artifact.
func (p Paths) Shrunk() string { return p.join("shrunk.json") }

// Enriched is the final enriched artifact.
func (p Paths) Enriched() string { return p.join("enriched.json") }

func (p Paths) join(suffix string) string {
	return filepath.Join(p.Dir, p.Base+"_"+suffix)
}

// EnsureDir creates the output directory if it does not exist.
func (p Paths) EnsureDir() error {
	if err := os.MkdirAll(p.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", p.Dir, err)
	}
	return nil
}

// Save writes v as indented JSON to path via a temp file and rename, so a
// cancelled run never leaves a torn artifact behind.
func Save(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode artifact: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp artifact: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close artifact: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to finalize artifact: %w", err)
	}
	return nil
}

// SaveBytes writes raw bytes (e.g. the rendered report) with the same
// temp-and-rename discipline as Save.
func SaveBytes(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp artifact: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close artifact: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to finalize artifact: %w", err)
	}
	return nil
}

// Load reads a JSON artifact from path into v.
func Load(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read artifact %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode artifact %s: %w", path, err)
	}
	return nil
}
