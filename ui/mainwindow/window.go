// Package mainwindow provides the main application window.
package mainwindow

import (
	"fmt"
	"log"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"box-marker/internal/app"
	"box-marker/internal/version"
	"box-marker/ui/canvas"
	"box-marker/ui/panels"
	"box-marker/ui/prefs"
)

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app       fyne.App
	state     *app.State
	prefs     *prefs.Prefs
	canvas    *canvas.BoxCanvas
	sidePanel *panels.SidePanel
	statusBar *widget.Label

	fitToWindow     bool
	fitToWindowItem *fyne.MenuItem
}

// New creates a new main window.
func New(fyneApp fyne.App, state *app.State, p *prefs.Prefs) *MainWindow {
	win := fyneApp.NewWindow("Box Marker")

	mw := &MainWindow{
		Window: win,
		app:    fyneApp,
		state:  state,
		prefs:  p,
	}

	mw.setupUI()
	mw.setupMenus()
	mw.setupShortcuts()
	mw.setupEventHandlers()

	return mw
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	mw.canvas = canvas.NewBoxCanvas(mw.state)
	mw.canvas.SetShowLabels(mw.prefs.Bool(prefs.KeyShowLabels, true))
	mw.sidePanel = panels.NewSidePanel(mw.state, mw.canvas, mw.prefs)

	mw.statusBar = widget.NewLabel("Open an image folder to start labeling")

	canvasArea := container.NewBorder(
		mw.createToolbar(), // top
		nil, nil, nil,
		mw.canvas.Container(), // center
	)

	split := container.NewHSplit(mw.sidePanel.Container(), canvasArea)
	split.SetOffset(0.22)

	content := container.NewBorder(
		nil,
		container.NewPadded(mw.statusBar), // bottom
		nil, nil,
		split,
	)
	mw.SetContent(content)
}

// createToolbar creates the toolbar with navigation and zoom controls.
func (mw *MainWindow) createToolbar() fyne.CanvasObject {
	prevBtn := widget.NewButton("< Prev", mw.onPrevImage)
	nextBtn := widget.NewButton("Next >", mw.onNextImage)
	saveBtn := widget.NewButton("Save", mw.onSave)
	undoBtn := widget.NewButton("Undo", mw.onUndo)
	deleteBtn := widget.NewButton("Delete", mw.onDeleteBox)
	duplicateBtn := widget.NewButton("Duplicate", mw.onDuplicateBox)

	zoomOutBtn := widget.NewButton("-", mw.onZoomOut)
	zoomInBtn := widget.NewButton("+", mw.onZoomIn)
	fitBtn := widget.NewButton("Fit", mw.onToggleFitToWindow)
	actualBtn := widget.NewButton("1:1", mw.onActualSize)

	return container.NewHBox(
		prevBtn, nextBtn,
		widget.NewSeparator(),
		saveBtn, undoBtn, deleteBtn, duplicateBtn,
		widget.NewSeparator(),
		widget.NewLabel("Zoom:"), zoomOutBtn, zoomInBtn, fitBtn, actualBtn,
	)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open Folder...", mw.onOpenFolder),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Save", mw.onSave),
		fyne.NewMenuItem("Reload from Disk", mw.onReload),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() { mw.app.Quit() }),
	)

	editMenu := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Undo", mw.onUndo),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Delete Box", mw.onDeleteBox),
		fyne.NewMenuItem("Duplicate Box", mw.onDuplicateBox),
	)

	mw.fitToWindowItem = fyne.NewMenuItem("  Fit to Window", mw.onToggleFitToWindow)
	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Zoom In", mw.onZoomIn),
		fyne.NewMenuItem("Zoom Out", mw.onZoomOut),
		mw.fitToWindowItem,
		fyne.NewMenuItem("Actual Size", mw.onActualSize),
	)

	navMenu := fyne.NewMenu("Navigate",
		fyne.NewMenuItem("Next Image", mw.onNextImage),
		fyne.NewMenuItem("Previous Image", mw.onPrevImage),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, editMenu, viewMenu, navMenu, helpMenu))
}

// setupShortcuts registers keyboard shortcuts on the window canvas.
func (mw *MainWindow) setupShortcuts() {
	c := mw.Canvas()
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierControl},
		func(fyne.Shortcut) { mw.onUndo() })
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyS, Modifier: fyne.KeyModifierControl},
		func(fyne.Shortcut) { mw.onSave() })
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyD, Modifier: fyne.KeyModifierControl},
		func(fyne.Shortcut) { mw.onDuplicateBox() })

	c.SetOnTypedKey(func(ev *fyne.KeyEvent) {
		switch ev.Name {
		case fyne.KeyDelete, fyne.KeyBackspace:
			mw.onDeleteBox()
		case fyne.KeyRight, fyne.KeyPageDown:
			mw.onNextImage()
		case fyne.KeyLeft, fyne.KeyPageUp:
			mw.onPrevImage()
		case fyne.KeyEscape:
			mw.state.Editor.ClearSelection()
			mw.canvas.Refresh()
		}
	})
}

// setupEventHandlers registers for application events.
func (mw *MainWindow) setupEventHandlers() {
	mw.state.On(app.EventFolderLoaded, func(data interface{}) {
		if mw.state.Folder != nil {
			mw.SetTitle("Box Marker - " + filepath.Base(mw.state.Folder.Dir))
		}
	})
	mw.state.On(app.EventImageChanged, func(interface{}) {
		mw.updateStatus()
	})
	mw.state.On(app.EventBoxesChanged, func(interface{}) {
		mw.updateStatus()
	})
	mw.state.On(app.EventModified, func(interface{}) {
		mw.updateStatus()
	})
	mw.state.On(app.EventSaved, func(data interface{}) {
		if path, ok := data.(string); ok {
			mw.statusBar.SetText("Saved " + filepath.Base(path))
		}
	})
}

// updateStatus rebuilds the status line for the active image.
func (mw *MainWindow) updateStatus() {
	entry := mw.state.CurrentEntry()
	if entry == nil {
		mw.statusBar.SetText("No image")
		return
	}

	text := fmt.Sprintf("%d/%d  %s  %d boxes",
		mw.state.Current+1, mw.state.Folder.Len(),
		entry.Name(), mw.state.Editor.Annotations().Len())
	if n := len(mw.state.LineErrors); n > 0 {
		text += fmt.Sprintf("  (%d bad lines skipped)", n)
	}
	if mw.state.Modified() {
		text += "  *"
	}
	mw.statusBar.SetText(text)
}

// OpenLastFolder reopens the folder from the previous session, if any.
func (mw *MainWindow) OpenLastFolder() {
	dir := mw.prefs.String(prefs.KeyLastDirectory)
	if dir == "" {
		return
	}
	if err := mw.state.OpenFolder(dir); err != nil {
		mw.statusBar.SetText("Could not reopen " + dir)
	}
}

// OpenFolder opens the given directory directly, bypassing the dialog.
func (mw *MainWindow) OpenFolder(dir string) {
	if err := mw.state.OpenFolder(dir); err != nil {
		dialog.ShowError(err, mw.Window)
		return
	}
	mw.rememberFolder(dir)
}

func (mw *MainWindow) rememberFolder(dir string) {
	mw.prefs.SetString(prefs.KeyLastDirectory, dir)
	if err := mw.prefs.Save(); err != nil {
		log.Printf("Failed to save preferences: %v", err)
	}
}

// Menu action handlers

func (mw *MainWindow) onOpenFolder() {
	fd := dialog.NewFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil || uri == nil {
			return
		}
		mw.OpenFolder(uri.Path())
	}, mw.Window)
	if dir := mw.prefs.String(prefs.KeyLastDirectory); dir != "" {
		if loc, err := storage.ListerForURI(storage.NewFileURI(dir)); err == nil {
			fd.SetLocation(loc)
		}
	}
	fd.Show()
}

func (mw *MainWindow) onSave() {
	if err := mw.state.Save(); err != nil {
		dialog.ShowError(err, mw.Window)
	}
}

func (mw *MainWindow) onReload() {
	if err := mw.state.Reload(); err != nil {
		dialog.ShowError(err, mw.Window)
	}
}

func (mw *MainWindow) onUndo() {
	if mw.state.Editor.Undo() {
		mw.state.NotifyEdited()
		mw.canvas.Refresh()
	}
}

func (mw *MainWindow) onDeleteBox() {
	if mw.state.Editor.Delete() {
		mw.state.NotifyEdited()
		mw.canvas.Refresh()
	}
}

func (mw *MainWindow) onDuplicateBox() {
	if mw.state.Editor.Duplicate() {
		mw.state.NotifyEdited()
		mw.canvas.Refresh()
	}
}

func (mw *MainWindow) onNextImage() {
	if err := mw.state.Next(); err != nil {
		dialog.ShowError(err, mw.Window)
	}
}

func (mw *MainWindow) onPrevImage() {
	if err := mw.state.Prev(); err != nil {
		dialog.ShowError(err, mw.Window)
	}
}

func (mw *MainWindow) onZoomIn() {
	mw.disableFitToWindow()
	mw.canvas.ZoomIn()
}

func (mw *MainWindow) onZoomOut() {
	mw.disableFitToWindow()
	mw.canvas.ZoomOut()
}

func (mw *MainWindow) onToggleFitToWindow() {
	mw.fitToWindow = !mw.fitToWindow
	mw.canvas.SetFitToWindow(mw.fitToWindow)
	if mw.fitToWindow {
		mw.fitToWindowItem.Label = "✓ Fit to Window"
	} else {
		mw.fitToWindowItem.Label = "  Fit to Window"
	}
}

func (mw *MainWindow) onActualSize() {
	mw.disableFitToWindow()
	mw.canvas.SetZoom(1.0)
}

func (mw *MainWindow) disableFitToWindow() {
	if mw.fitToWindow {
		mw.fitToWindow = false
		mw.canvas.SetFitToWindow(false)
		mw.fitToWindowItem.Label = "  Fit to Window"
	}
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About Box Marker",
		fmt.Sprintf("Box Marker %s\n\nBounding box annotation for object detection datasets.\nBuild: %s (%s)",
			version.Version, version.BuildTime, version.GitCommit),
		mw.Window)
}
