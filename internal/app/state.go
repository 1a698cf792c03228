// Package app provides application lifecycle management, configuration, and events.
package app

import (
	"fmt"
	goimage "image"
	"log"
	"sync"

	"box-marker/internal/annotation"
	"box-marker/internal/class"
	"box-marker/internal/edit"
	"box-marker/internal/source"
)

// State holds the application state: the open image folder, the active
// image with its annotations, and the class registry shared by the
// whole folder.
type State struct {
	mu sync.RWMutex

	// Folder
	Folder  *source.Folder
	Classes *class.Registry

	// Active image
	Current    int // index into Folder.Entries, -1 when none
	Image      goimage.Image
	LineErrors []*annotation.LineError // skipped lines from the last load

	// Editor over the active image's annotation set
	Editor *edit.Engine

	// Event listeners
	listeners map[EventType][]EventListener
}

// EventType identifies different application events.
type EventType int

const (
	EventFolderLoaded EventType = iota
	EventImageChanged
	EventBoxesChanged
	EventSelectionChanged
	EventClassesChanged
	EventModified
	EventSaved
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// NewState creates a new application state with no folder open.
func NewState() *State {
	return &State{
		Classes:   class.NewRegistry(),
		Current:   -1,
		Editor:    edit.NewEngine(edit.DefaultConfig(), class.NewRegistry()),
		listeners: make(map[EventType][]EventListener),
	}
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// Modified reports whether the active image has unsaved edits.
func (s *State) Modified() bool {
	return s.Editor.Annotations().Dirty()
}

// NotifyEdited emits the change events after the editor mutated the
// annotation set. The canvas calls this once per committed operation.
func (s *State) NotifyEdited() {
	s.Emit(EventBoxesChanged, nil)
	s.Emit(EventModified, true)
}

// OpenFolder scans a directory for images, loads the folder's class
// list, and activates the first image. Unsaved edits on the previous
// folder's active image are saved first.
func (s *State) OpenFolder(dir string) error {
	if err := s.saveIfModified(); err != nil {
		return err
	}

	folder, err := source.Scan(dir)
	if err != nil {
		return err
	}

	classes, err := class.Load(folder.LabelsPath())
	if err != nil {
		return fmt.Errorf("loading class list: %w", err)
	}

	s.mu.Lock()
	s.Folder = folder
	s.Classes = classes
	s.Current = -1
	s.Image = nil
	s.LineErrors = nil
	cfg := s.Editor.Config()
	s.Editor = edit.NewEngine(cfg, classes)
	s.mu.Unlock()

	s.Emit(EventFolderLoaded, folder)
	s.Emit(EventClassesChanged, nil)

	if folder.Len() > 0 {
		return s.SetCurrent(0)
	}
	s.Emit(EventImageChanged, nil)
	return nil
}

// SetCurrent activates the image at index i, saving the previous
// image's edits first. Loading a fresh image resets the selection and
// the undo history.
func (s *State) SetCurrent(i int) error {
	if s.Folder == nil || i < 0 || i >= s.Folder.Len() {
		return fmt.Errorf("no image at index %d", i)
	}
	if err := s.saveIfModified(); err != nil {
		return err
	}

	entry := s.Folder.Entries[i]
	if entry.Err != nil {
		return fmt.Errorf("unreadable image %s: %w", entry.Name(), entry.Err)
	}

	img, err := source.Decode(entry.Path)
	if err != nil {
		return err
	}

	set, lineErrs, err := annotation.Load(source.AnnotationPath(entry.Path), s.Classes)
	if err != nil {
		return fmt.Errorf("loading annotations for %s: %w", entry.Name(), err)
	}
	for _, le := range lineErrs {
		log.Printf("skipping %s line %d: %v", entry.Name(), le.Line, le.Err)
	}

	s.mu.Lock()
	s.Current = i
	s.Image = img
	s.LineErrors = lineErrs
	s.mu.Unlock()

	s.Editor.SetAnnotations(set)
	s.Emit(EventImageChanged, entry)
	s.Emit(EventBoxesChanged, nil)
	s.Emit(EventClassesChanged, nil)
	return nil
}

// CurrentEntry returns the active image's entry, or nil with no image.
func (s *State) CurrentEntry() *source.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Folder == nil || s.Current < 0 || s.Current >= s.Folder.Len() {
		return nil
	}
	return &s.Folder.Entries[s.Current]
}

// Next advances to the following image, saving edits on the way. At the
// last image it is a no-op.
func (s *State) Next() error {
	if s.Folder == nil || s.Current+1 >= s.Folder.Len() {
		return nil
	}
	return s.SetCurrent(s.Current + 1)
}

// Prev steps back to the previous image, saving edits on the way. At
// the first image it is a no-op.
func (s *State) Prev() error {
	if s.Folder == nil || s.Current <= 0 {
		return nil
	}
	return s.SetCurrent(s.Current - 1)
}

// Save writes the active image's annotations and the folder's class
// list to disk.
func (s *State) Save() error {
	entry := s.CurrentEntry()
	if entry == nil {
		return nil
	}

	if err := annotation.Save(source.AnnotationPath(entry.Path), s.Editor.Annotations()); err != nil {
		return fmt.Errorf("saving annotations for %s: %w", entry.Name(), err)
	}
	if err := s.Classes.Save(s.Folder.LabelsPath()); err != nil {
		return fmt.Errorf("saving class list: %w", err)
	}

	s.Emit(EventSaved, entry.Path)
	s.Emit(EventModified, false)
	return nil
}

// Reload discards unsaved edits on the active image and re-reads its
// annotation file.
func (s *State) Reload() error {
	entry := s.CurrentEntry()
	if entry == nil {
		return nil
	}

	set, lineErrs, err := annotation.Load(source.AnnotationPath(entry.Path), s.Classes)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.LineErrors = lineErrs
	s.mu.Unlock()

	s.Editor.SetAnnotations(set)
	s.Emit(EventBoxesChanged, nil)
	s.Emit(EventModified, false)
	return nil
}

// AddClass appends a class name to the registry and makes it the
// current class for new boxes.
func (s *State) AddClass(name string) int {
	id := s.Classes.Add(name)
	s.Editor.SetCurrentClass(id)
	s.Emit(EventClassesChanged, nil)
	return id
}

// saveIfModified persists the active image's edits before navigation
// or folder changes.
func (s *State) saveIfModified() error {
	if s.CurrentEntry() == nil || !s.Modified() {
		return nil
	}
	return s.Save()
}
