package class

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// LabelsFileName is the class list file kept next to the images, one
// class name per line, line index = class id. The name follows the
// darknet/YOLO training convention so external pipelines find it.
const LabelsFileName = "_darknet.labels"

// Load reads a registry from a labels file. A missing file yields an
// empty registry; blank lines (including trailing ones) are skipped.
func Load(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewRegistry(), nil
		}
		return nil, fmt.Errorf("failed to open labels file: %w", err)
	}
	defer f.Close()

	r := NewRegistry()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		name := strings.TrimSpace(scanner.Text())
		if name == "" {
			continue
		}
		r.Add(name)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read labels file: %w", err)
	}
	return r, nil
}

// Save writes the full ordered name list, one per line with a trailing
// newline. The file is always rewritten whole; entries are never removed
// or reordered relative to a previous save.
func (r *Registry) Save(path string) error {
	var sb strings.Builder
	for _, name := range r.names {
		sb.WriteString(name)
		sb.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("failed to write labels file: %w", err)
	}
	return nil
}
