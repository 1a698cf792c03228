// Package panels provides UI panels for the application.
package panels

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"

	"box-marker/internal/app"
	"box-marker/ui/canvas"
	"box-marker/ui/prefs"
)

// SidePanel provides the main side panel with tabbed sections.
type SidePanel struct {
	state     *app.State
	canvas    *canvas.BoxCanvas
	container *container.AppTabs

	classesPanel  *ClassesPanel
	imagesPanel   *ImagesPanel
	settingsPanel *SettingsPanel
}

// NewSidePanel creates a new side panel.
func NewSidePanel(state *app.State, cvs *canvas.BoxCanvas, p *prefs.Prefs) *SidePanel {
	sp := &SidePanel{
		state:  state,
		canvas: cvs,
	}

	sp.classesPanel = NewClassesPanel(state)
	sp.imagesPanel = NewImagesPanel(state)
	sp.settingsPanel = NewSettingsPanel(state, cvs, p)

	sp.container = container.NewAppTabs(
		container.NewTabItem("Classes", sp.classesPanel.Container()),
		container.NewTabItem("Images", sp.imagesPanel.Container()),
		container.NewTabItem("Settings", sp.settingsPanel.Container()),
	)

	return sp
}

// Container returns the panel container.
func (sp *SidePanel) Container() fyne.CanvasObject {
	return sp.container
}
