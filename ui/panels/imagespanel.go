package panels

import (
	"fmt"
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"box-marker/internal/app"
)

// ImagesPanel lists the open folder's images and switches between them.
type ImagesPanel struct {
	state     *app.State
	container fyne.CanvasObject

	list        *widget.List
	folderLabel *widget.Label
}

// NewImagesPanel creates a new images panel.
func NewImagesPanel(state *app.State) *ImagesPanel {
	ip := &ImagesPanel{state: state}

	ip.folderLabel = widget.NewLabel("No folder open")
	ip.folderLabel.Wrapping = fyne.TextWrapWord

	ip.list = widget.NewList(
		func() int {
			if state.Folder == nil {
				return 0
			}
			return state.Folder.Len()
		},
		func() fyne.CanvasObject {
			return widget.NewLabel("image file name")
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			entry := state.Folder.Entries[id]
			text := entry.Name()
			if entry.Err != nil {
				text += " (unreadable)"
			}
			obj.(*widget.Label).SetText(text)
		},
	)
	ip.list.OnSelected = func(id widget.ListItemID) {
		if id == state.Current {
			return
		}
		if err := state.SetCurrent(id); err != nil {
			log.Printf("switching image: %v", err)
		}
	}

	state.On(app.EventFolderLoaded, func(interface{}) {
		if state.Folder != nil {
			ip.folderLabel.SetText(fmt.Sprintf("%s (%d images)", state.Folder.Dir, state.Folder.Len()))
		}
		ip.list.Refresh()
	})
	state.On(app.EventImageChanged, func(interface{}) {
		if state.Current >= 0 {
			ip.list.Select(state.Current)
		}
	})

	ip.container = container.NewBorder(ip.folderLabel, nil, nil, nil, ip.list)
	return ip
}

// Container returns the panel container.
func (ip *ImagesPanel) Container() fyne.CanvasObject {
	return ip.container
}
