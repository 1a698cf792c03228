package panels

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"box-marker/internal/app"
	"box-marker/ui/canvas"
	"box-marker/ui/prefs"
)

// SettingsPanel adjusts the interaction thresholds and display options.
// Changes apply immediately and persist to preferences.
type SettingsPanel struct {
	state     *app.State
	container fyne.CanvasObject
}

// NewSettingsPanel creates a new settings panel.
func NewSettingsPanel(state *app.State, cvs *canvas.BoxCanvas, p *prefs.Prefs) *SettingsPanel {
	sp := &SettingsPanel{state: state}

	cfg := state.Editor.Config()

	toleranceLabel := widget.NewLabel(fmt.Sprintf("Click tolerance: %.0f px", cfg.ClickTolerance))
	toleranceSlider := widget.NewSlider(1, 20)
	toleranceSlider.Step = 1
	toleranceSlider.Value = cfg.ClickTolerance
	toleranceSlider.OnChanged = func(v float64) {
		c := state.Editor.Config()
		c.ClickTolerance = v
		state.Editor.SetConfig(c)
		toleranceLabel.SetText(fmt.Sprintf("Click tolerance: %.0f px", v))
		p.SetFloat(prefs.KeyClickTolerance, v)
	}

	minBoxLabel := widget.NewLabel(fmt.Sprintf("Minimum box size: %.0f px", cfg.MinBoxPixels))
	minBoxSlider := widget.NewSlider(1, 20)
	minBoxSlider.Step = 1
	minBoxSlider.Value = cfg.MinBoxPixels
	minBoxSlider.OnChanged = func(v float64) {
		c := state.Editor.Config()
		c.MinBoxPixels = v
		state.Editor.SetConfig(c)
		minBoxLabel.SetText(fmt.Sprintf("Minimum box size: %.0f px", v))
		p.SetFloat(prefs.KeyMinBoxPixels, v)
	}

	showLabels := widget.NewCheck("Show class labels", func(on bool) {
		cvs.SetShowLabels(on)
		p.SetBool(prefs.KeyShowLabels, on)
	})
	showLabels.SetChecked(p.Bool(prefs.KeyShowLabels, true))

	fitCheck := widget.NewCheck("Fit image to window", func(on bool) {
		cvs.SetFitToWindow(on)
	})

	sp.container = container.NewVBox(
		toleranceLabel, toleranceSlider,
		minBoxLabel, minBoxSlider,
		widget.NewSeparator(),
		showLabels,
		fitCheck,
	)
	return sp
}

// Container returns the panel container.
func (sp *SettingsPanel) Container() fyne.CanvasObject {
	return sp.container
}
