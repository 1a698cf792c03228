// Package source discovers labelable images in a folder and resolves
// their companion annotation files.
package source

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	// Decoders for every extension the scanner accepts.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"box-marker/internal/class"
	"box-marker/pkg/geometry"
)

// probeWorkers bounds concurrent dimension probes during a scan.
const probeWorkers = 8

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".bmp":  true,
	".webp": true,
	".tif":  true,
	".tiff": true,
}

// Entry is one labelable image discovered in a folder.
type Entry struct {
	Path string
	Size geometry.Size // pixel dimensions, zero if the probe failed
	Err  error         // probe failure, nil for a usable image
}

// Name returns the entry's file name without the directory.
func (e Entry) Name() string {
	return filepath.Base(e.Path)
}

// AnnotationPath returns the companion annotation file for an image:
// the same path with the extension swapped to .txt.
func AnnotationPath(imagePath string) string {
	ext := filepath.Ext(imagePath)
	return imagePath[:len(imagePath)-len(ext)] + ".txt"
}

// Folder is a scanned image directory.
type Folder struct {
	Dir     string
	Entries []Entry
}

// Scan lists the supported images directly under dir, sorted by file
// name, and probes each one's pixel dimensions. Extension matching is
// case-insensitive and subdirectories are not descended into. A folder
// with no images is valid and returns zero entries.
func Scan(dir string) (*Folder, error) {
	items, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading folder %s: %w", dir, err)
	}

	f := &Folder{Dir: dir}
	for _, item := range items {
		if item.IsDir() {
			continue
		}
		if !imageExtensions[strings.ToLower(filepath.Ext(item.Name()))] {
			continue
		}
		f.Entries = append(f.Entries, Entry{Path: filepath.Join(dir, item.Name())})
	}
	sort.Slice(f.Entries, func(i, j int) bool {
		return f.Entries[i].Name() < f.Entries[j].Name()
	})

	f.probe()
	return f, nil
}

// probe fills in pixel dimensions by decoding headers concurrently.
// Failures are recorded per entry so one unreadable file does not hide
// the rest of the folder.
func (f *Folder) probe() {
	var g errgroup.Group
	g.SetLimit(probeWorkers)
	for i := range f.Entries {
		e := &f.Entries[i]
		g.Go(func() error {
			w, h, err := probeDimensions(e.Path)
			if err != nil {
				e.Err = err
				return nil
			}
			e.Size = geometry.NewSize(float64(w), float64(h))
			return nil
		})
	}
	g.Wait()
}

func probeDimensions(path string) (int, int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer file.Close()

	cfg, _, err := image.DecodeConfig(file)
	if err != nil {
		return 0, 0, fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}
	return cfg.Width, cfg.Height, nil
}

// Len returns the number of discovered images.
func (f *Folder) Len() int {
	return len(f.Entries)
}

// LabelsPath returns the folder's class list file.
func (f *Folder) LabelsPath() string {
	return filepath.Join(f.Dir, class.LabelsFileName)
}

// Decode loads the full image for display.
func Decode(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}
	return img, nil
}
