package app

import (
	"os"
	"path/filepath"
	"syscall"
	"time"
)

// HotReloader watches the running binary for changes and triggers a
// callback when a newer build appears. Used during development to
// prompt for a restart after recompilation.
type HotReloader struct {
	execPath      string
	baseline      time.Time
	checkInterval time.Duration
	stopCh        chan struct{}
	onNewBinary   func()
}

// NewHotReloader creates a reloader watching the current executable.
// Returns nil if the executable path cannot be determined.
func NewHotReloader(checkInterval time.Duration) *HotReloader {
	execPath, err := os.Executable()
	if err != nil {
		return nil
	}
	// go build may write a new file behind the symlink
	if realPath, err := filepath.EvalSymlinks(execPath); err == nil {
		execPath = realPath
	}

	info, err := os.Stat(execPath)
	if err != nil {
		return nil
	}

	return &HotReloader{
		execPath:      execPath,
		baseline:      info.ModTime(),
		checkInterval: checkInterval,
		stopCh:        make(chan struct{}),
	}
}

// OnNewBinary sets the callback invoked when a newer binary is seen.
// It runs on a background goroutine; synchronize UI updates yourself.
func (h *HotReloader) OnNewBinary(callback func()) {
	h.onNewBinary = callback
}

// Start begins watching in a background goroutine.
func (h *HotReloader) Start() {
	h.stopCh = make(chan struct{})
	go h.watchLoop()
}

// Stop stops the watcher goroutine.
func (h *HotReloader) Stop() {
	close(h.stopCh)
}

func (h *HotReloader) watchLoop() {
	ticker := time.NewTicker(h.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-h.stopCh:
			return
		case <-ticker.C:
			if h.newerBinary() && h.onNewBinary != nil {
				h.onNewBinary()
				return
			}
		}
	}
}

func (h *HotReloader) newerBinary() bool {
	info, err := os.Stat(h.execPath)
	if err != nil {
		return false
	}
	return info.ModTime().After(h.baseline)
}

// ResetBaseline accepts the current binary as the new baseline. Call
// when the user declines a restart to avoid repeated prompts.
func (h *HotReloader) ResetBaseline() {
	if info, err := os.Stat(h.execPath); err == nil {
		h.baseline = info.ModTime()
	}
}

// Restart replaces the current process with a new instance of the
// binary, preserving arguments and environment. Does not return on
// success.
func (h *HotReloader) Restart() error {
	return syscall.Exec(h.execPath, os.Args, os.Environ())
}
