package annotation

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"box-marker/internal/class"
)

// Annotation files are plain text, one box per line:
//
//	<class_token> <cx> <cy> <w> <h>
//
// The class token is a numeric id on write and either a numeric id or a
// legacy class name on read. Field count, order, and the numeric-id
// convention are a compatibility contract with external training
// pipelines and must not change.

// geometryPrecision is the fixed decimal precision used on write.
const geometryPrecision = "%d %.6f %.6f %.6f %.6f\n"

// LineError describes one malformed annotation line. Malformed lines are
// skipped; the rest of the file still loads.
type LineError struct {
	Line int    // 1-based line number
	Text string // the offending line
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d %q: %v", e.Line, e.Text, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// Parse reads annotation lines, resolving class tokens through the
// registry. Every valid line contributes a box; malformed lines are
// collected and returned together so the caller can report them after
// the pass.
func Parse(data []byte, reg *class.Registry) (*Set, []*LineError) {
	set := NewSet()
	var lineErrs []*LineError

	// Split rather than scan: a scanner caps the line length, and one
	// oversized (corrupt) line must not swallow the lines after it.
	for i, raw := range strings.Split(string(data), "\n") {
		lineNo := i + 1
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 5 {
			lineErrs = append(lineErrs, &LineError{
				Line: lineNo,
				Text: line,
				Err:  fmt.Errorf("expected 5 fields, got %d", len(fields)),
			})
			continue
		}

		var geom [4]float64
		bad := false
		for i, field := range fields[1:] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				lineErrs = append(lineErrs, &LineError{
					Line: lineNo,
					Text: line,
					Err:  fmt.Errorf("field %d: %w", i+2, err),
				})
				bad = true
				break
			}
			geom[i] = v
		}
		if bad {
			continue
		}

		// Resolve after the geometry parses so a malformed line cannot
		// grow the registry.
		id := reg.Resolve(fields[0])
		set.Append(Box{ClassID: id, CX: geom[0], CY: geom[1], W: geom[2], H: geom[3]})
	}

	set.ClearDirty() // freshly loaded state is not an edit
	return set, lineErrs
}

// Load reads the annotation file for an image. A missing file yields an
// empty set: an image without annotations is a normal state.
func Load(path string, reg *class.Registry) (*Set, []*LineError, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewSet(), nil, nil
		}
		return nil, nil, fmt.Errorf("failed to read annotations: %w", err)
	}
	set, lineErrs := Parse(data, reg)
	return set, lineErrs, nil
}

// Marshal serializes the set, one line per box in stacking order.
func Marshal(s *Set) []byte {
	var sb strings.Builder
	for _, b := range s.boxes {
		fmt.Fprintf(&sb, geometryPrecision, b.ClassID, b.CX, b.CY, b.W, b.H)
	}
	return []byte(sb.String())
}

// Save writes the annotation file and clears the dirty flag on success.
// Write failures (e.g. missing permission) are returned to the caller;
// silently dropping them would let the shell navigate away and lose the
// edits.
func Save(path string, s *Set) error {
	if err := os.WriteFile(path, Marshal(s), 0644); err != nil {
		return fmt.Errorf("failed to write annotations: %w", err)
	}
	s.ClearDirty()
	return nil
}
