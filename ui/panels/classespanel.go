package panels

import (
	"fmt"
	"image/color"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"box-marker/internal/app"
	"box-marker/pkg/colorutil"
)

// ClassesPanel lists the folder's classes, picks the class for new
// boxes, and reassigns the selected box.
type ClassesPanel struct {
	state     *app.State
	container fyne.CanvasObject

	list     *widget.List
	addEntry *widget.Entry
}

// NewClassesPanel creates a new classes panel.
func NewClassesPanel(state *app.State) *ClassesPanel {
	cp := &ClassesPanel{state: state}

	cp.list = widget.NewList(
		func() int {
			return state.Classes.Len()
		},
		func() fyne.CanvasObject {
			swatch := fynecanvas.NewRectangle(color.Black)
			swatch.SetMinSize(fyne.NewSize(14, 14))
			return container.NewHBox(swatch, widget.NewLabel("class"))
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			box := obj.(*fyne.Container)
			swatch := box.Objects[0].(*fynecanvas.Rectangle)
			label := box.Objects[1].(*widget.Label)

			c := colorutil.ClassColor(id)
			swatch.FillColor = color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255}
			swatch.Refresh()
			label.SetText(fmt.Sprintf("%d: %s", id, state.Classes.Name(id)))
		},
	)
	cp.list.OnSelected = func(id widget.ListItemID) {
		state.Editor.SetCurrentClass(id)
	}

	cp.addEntry = widget.NewEntry()
	cp.addEntry.SetPlaceHolder("new class name")
	addButton := widget.NewButton("Add Class", func() {
		name := cp.addEntry.Text
		if name == "" {
			return
		}
		id := state.AddClass(name)
		cp.addEntry.SetText("")
		cp.list.Select(id)
	})

	assignButton := widget.NewButton("Assign to Selected Box", func() {
		if state.Editor.AssignClass(state.Editor.CurrentClass()) {
			state.NotifyEdited()
		}
	})

	state.On(app.EventClassesChanged, func(interface{}) {
		cp.list.Refresh()
	})

	cp.container = container.NewBorder(
		nil,
		container.NewVBox(cp.addEntry, addButton, assignButton),
		nil, nil,
		cp.list,
	)
	return cp
}

// Container returns the panel container.
func (cp *ClassesPanel) Container() fyne.CanvasObject {
	return cp.container
}
