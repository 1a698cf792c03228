// Package canvas provides the annotation canvas with pan, zoom, and
// box editing.
package canvas

import (
	"image"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"box-marker/internal/app"
	"box-marker/internal/view"
	"box-marker/pkg/geometry"
)

const (
	minZoom  = 0.1
	maxZoom  = 10.0
	zoomStep = 1.25
)

// dragKind is what the active pointer drag is doing.
type dragKind int

const (
	dragNone dragKind = iota
	dragCreate
	dragMove
	dragResize
)

// BoxCanvas displays the active image and handles box interaction.
// Clicks select, drags create, move, or resize depending on what sits
// under the drag origin.
type BoxCanvas struct {
	widget.BaseWidget

	state *app.State

	// Display state
	raster *fynecanvas.Raster
	zoom   float64

	// Active drag
	drag       dragKind
	dragStart  geometry.Point2D
	dragPos    geometry.Point2D
	rubberBand *geometry.Rect // creation preview, content coords

	// Container
	scroll  *zoomScroll
	content *draggableContent
	imgSize fyne.Size

	fitToWindow    bool
	lastScrollSize fyne.Size

	showLabels bool

	// Callbacks
	onZoomChange func(zoom float64)
	onSelection  func()
}

// zoomScroll wraps a scroll container but intercepts wheel for zoom.
type zoomScroll struct {
	widget.BaseWidget
	scroll *container.Scroll
	canvas *BoxCanvas
}

func newZoomScroll(content fyne.CanvasObject, canvas *BoxCanvas) *zoomScroll {
	scroll := container.NewScroll(content)
	scroll.Direction = container.ScrollBoth
	zs := &zoomScroll{scroll: scroll, canvas: canvas}
	zs.ExtendBaseWidget(zs)
	return zs
}

func (zs *zoomScroll) Scrolled(ev *fyne.ScrollEvent) {
	// Wheel zooms, it does not scroll
	if ev.Scrolled.DY > 0 {
		zs.canvas.ZoomIn()
	} else if ev.Scrolled.DY < 0 {
		zs.canvas.ZoomOut()
	}
}

func (zs *zoomScroll) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(zs.scroll)
}

// Offset returns the scroll container's current offset.
func (zs *zoomScroll) Offset() fyne.Position {
	return zs.scroll.Offset
}

// Size returns the scroll container's size.
func (zs *zoomScroll) Size() fyne.Size {
	return zs.scroll.Size()
}

// Refresh refreshes the scroll container.
func (zs *zoomScroll) Refresh() {
	zs.scroll.Refresh()
	zs.BaseWidget.Refresh()
}

// Resize sets the size of the scroll container.
func (zs *zoomScroll) Resize(size fyne.Size) {
	zs.scroll.Resize(size)
	zs.BaseWidget.Resize(size)
}

// draggableContent wraps the raster to handle mouse events.
type draggableContent struct {
	widget.BaseWidget
	canvas *BoxCanvas
	raster *fynecanvas.Raster
}

func newDraggableContent(bc *BoxCanvas, raster *fynecanvas.Raster) *draggableContent {
	dc := &draggableContent{canvas: bc, raster: raster}
	dc.ExtendBaseWidget(dc)
	return dc
}

func (dc *draggableContent) CreateRenderer() fyne.WidgetRenderer {
	return &draggableContentRenderer{content: dc}
}

func (dc *draggableContent) MinSize() fyne.Size {
	return dc.raster.MinSize()
}

// contentPos converts an event position to content coordinates.
func (dc *draggableContent) contentPos(pos fyne.Position) geometry.Point2D {
	offset := dc.canvas.scroll.Offset()
	return geometry.NewPoint2D(float64(pos.X+offset.X), float64(pos.Y+offset.Y))
}

// Tapped selects the box (or handle) under the click, or clears the
// selection on a miss.
func (dc *draggableContent) Tapped(ev *fyne.PointEvent) {
	bc := dc.canvas
	if bc.state.Image == nil {
		return
	}
	// Reject clicks outside widget bounds (Fyne can deliver these)
	size := dc.Size()
	if ev.Position.X < 0 || ev.Position.Y < 0 ||
		ev.Position.X > size.Width || ev.Position.Y > size.Height {
		return
	}

	bc.state.Editor.SelectAt(dc.contentPos(ev.Position), bc.Mapper())
	bc.state.Emit(app.EventSelectionChanged, nil)
	if bc.onSelection != nil {
		bc.onSelection()
	}
	bc.Refresh()
}

// Dragged starts or continues a box drag. What the drag does is decided
// once, from whatever sat under the drag origin: a handle of the
// selected box resizes, a box body moves, empty space rubber-bands a
// new box.
func (dc *draggableContent) Dragged(ev *fyne.DragEvent) {
	bc := dc.canvas
	if bc.state.Image == nil {
		return
	}
	m := bc.Mapper()
	pos := dc.contentPos(ev.Position)

	if bc.drag == dragNone {
		origin := geometry.NewPoint2D(
			pos.X-float64(ev.Dragged.DX),
			pos.Y-float64(ev.Dragged.DY),
		)
		bc.dragStart = origin

		hit := bc.state.Editor.SelectAt(origin, m)
		bc.state.Emit(app.EventSelectionChanged, nil)
		switch hit.Kind {
		case view.HitHandle:
			bc.state.Editor.BeginResize(hit.Corner)
			bc.drag = dragResize
		case view.HitBody:
			bc.state.Editor.BeginMove()
			bc.drag = dragMove
		default:
			bc.drag = dragCreate
		}
	}

	bc.dragPos = pos
	switch bc.drag {
	case dragResize:
		bc.state.Editor.ResizeTo(pos, m)
	case dragMove:
		bc.state.Editor.MoveBy(geometry.NewPoint2D(float64(ev.Dragged.DX), float64(ev.Dragged.DY)), m)
	case dragCreate:
		r := geometry.RectFromCorners(bc.dragStart, pos)
		bc.rubberBand = &r
	}
	bc.Refresh()
}

// DragEnd commits the active drag.
func (dc *draggableContent) DragEnd() {
	bc := dc.canvas
	switch bc.drag {
	case dragResize:
		bc.state.Editor.EndResize()
		bc.state.NotifyEdited()
	case dragMove:
		bc.state.Editor.EndMove()
		bc.state.NotifyEdited()
	case dragCreate:
		bc.rubberBand = nil
		if bc.state.Editor.CreateBox(bc.dragStart, bc.dragPos, bc.Mapper()) {
			bc.state.NotifyEdited()
			bc.state.Emit(app.EventSelectionChanged, nil)
		}
	}
	bc.drag = dragNone
	bc.Refresh()
}

func (dc *draggableContent) Scrolled(ev *fyne.ScrollEvent) {
	if ev.Scrolled.DY > 0 {
		dc.canvas.ZoomIn()
	} else if ev.Scrolled.DY < 0 {
		dc.canvas.ZoomOut()
	}
}

type draggableContentRenderer struct {
	content *draggableContent
}

func (r *draggableContentRenderer) Layout(size fyne.Size) {
	r.content.raster.Resize(size)
}

func (r *draggableContentRenderer) MinSize() fyne.Size {
	return r.content.raster.MinSize()
}

func (r *draggableContentRenderer) Refresh() {
	r.content.raster.Refresh()
}

func (r *draggableContentRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.content.raster}
}

func (r *draggableContentRenderer) Destroy() {}

// NewBoxCanvas creates a canvas bound to the application state.
func NewBoxCanvas(state *app.State) *BoxCanvas {
	bc := &BoxCanvas{
		state:      state,
		zoom:       1.0,
		imgSize:    fyne.NewSize(400, 300),
		showLabels: true,
	}

	bc.raster = fynecanvas.NewRaster(bc.draw)
	bc.raster.ScaleMode = fynecanvas.ImageScalePixels
	bc.raster.SetMinSize(bc.imgSize)

	bc.content = newDraggableContent(bc, bc.raster)
	bc.scroll = newZoomScroll(bc.content, bc)

	state.On(app.EventImageChanged, func(interface{}) {
		bc.drag = dragNone
		bc.rubberBand = nil
		bc.updateContentSize()
	})
	state.On(app.EventBoxesChanged, func(interface{}) {
		bc.Refresh()
	})

	bc.ExtendBaseWidget(bc)
	return bc
}

// Container returns the canvas container for embedding in layouts.
func (bc *BoxCanvas) Container() fyne.CanvasObject {
	return bc.scroll
}

// Mapper returns the screen mapper for the current zoom and image.
// Panning is handled by the scroll container, so the viewport pan is
// always zero and screen coordinates are content coordinates.
func (bc *BoxCanvas) Mapper() view.Mapper {
	return view.NewMapper(view.Viewport{Zoom: bc.zoom}, bc.imagePixelSize())
}

func (bc *BoxCanvas) imagePixelSize() geometry.Size {
	if bc.state.Image == nil {
		return geometry.NewSize(1, 1)
	}
	b := bc.state.Image.Bounds()
	return geometry.NewSize(float64(b.Dx()), float64(b.Dy()))
}

// SetZoom sets the zoom level.
func (bc *BoxCanvas) SetZoom(zoom float64) {
	if zoom < minZoom {
		zoom = minZoom
	}
	if zoom > maxZoom {
		zoom = maxZoom
	}
	bc.zoom = zoom
	bc.updateContentSize()

	if bc.onZoomChange != nil {
		bc.onZoomChange(zoom)
	}
}

// Zoom returns the current zoom level.
func (bc *BoxCanvas) Zoom() float64 {
	return bc.zoom
}

// ZoomIn increases the zoom level.
func (bc *BoxCanvas) ZoomIn() {
	bc.SetZoom(bc.zoom * zoomStep)
}

// ZoomOut decreases the zoom level.
func (bc *BoxCanvas) ZoomOut() {
	bc.SetZoom(bc.zoom / zoomStep)
}

// FitToWindow adjusts zoom so the whole image is visible.
func (bc *BoxCanvas) FitToWindow() {
	img := bc.state.Image
	if img == nil {
		return
	}
	b := img.Bounds()
	viewSize := bc.scroll.Size()
	if viewSize.Width <= 0 || viewSize.Height <= 0 || b.Dx() == 0 || b.Dy() == 0 {
		return
	}

	zoomX := float64(viewSize.Width) / float64(b.Dx())
	zoomY := float64(viewSize.Height) / float64(b.Dy())
	zoom := zoomX
	if zoomY < zoomX {
		zoom = zoomY
	}
	bc.SetZoom(zoom * 0.95) // small margin
}

// SetFitToWindow enables or disables auto-fit on resize.
func (bc *BoxCanvas) SetFitToWindow(fit bool) {
	bc.fitToWindow = fit
	if fit {
		bc.FitToWindow()
	}
}

// SetShowLabels toggles class labels on boxes.
func (bc *BoxCanvas) SetShowLabels(show bool) {
	bc.showLabels = show
	bc.Refresh()
}

// OnZoomChange sets a callback for zoom changes.
func (bc *BoxCanvas) OnZoomChange(callback func(zoom float64)) {
	bc.onZoomChange = callback
}

// OnSelection sets a callback invoked after a click changed the
// selection.
func (bc *BoxCanvas) OnSelection(callback func()) {
	bc.onSelection = callback
}

// Refresh refreshes the canvas display.
func (bc *BoxCanvas) Refresh() {
	bc.raster.Refresh()
}

// updateContentSize resizes the content to the zoomed image.
func (bc *BoxCanvas) updateContentSize() {
	img := bc.state.Image
	if img == nil {
		bc.imgSize = fyne.NewSize(400, 300)
	} else {
		b := img.Bounds()
		bc.imgSize = fyne.NewSize(
			float32(float64(b.Dx())*bc.zoom),
			float32(float64(b.Dy())*bc.zoom),
		)
	}

	bc.raster.SetMinSize(bc.imgSize)
	bc.raster.Resize(bc.imgSize)
	if bc.content != nil {
		bc.content.Resize(bc.imgSize)
		bc.content.Refresh()
	}
	bc.raster.Refresh()
	if bc.scroll != nil {
		bc.scroll.Refresh()
	}
}

// CreateRenderer implements fyne.Widget.
func (bc *BoxCanvas) CreateRenderer() fyne.WidgetRenderer {
	return &boxCanvasRenderer{canvas: bc}
}

type boxCanvasRenderer struct {
	canvas *BoxCanvas
}

func (r *boxCanvasRenderer) Layout(size fyne.Size) {
	if r.canvas.scroll != nil {
		r.canvas.scroll.Resize(size)
	}
	if r.canvas.fitToWindow && size.Width > 0 && size.Height > 0 &&
		size != r.canvas.lastScrollSize {
		r.canvas.lastScrollSize = size
		r.canvas.FitToWindow()
	}
}

func (r *boxCanvasRenderer) MinSize() fyne.Size {
	return fyne.NewSize(100, 100)
}

func (r *boxCanvasRenderer) Refresh() {
	r.canvas.raster.Refresh()
}

func (r *boxCanvasRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.canvas.scroll}
}

func (r *boxCanvasRenderer) Destroy() {}

// draw is the raster drawing function.
func (bc *BoxCanvas) draw(w, h int) image.Image {
	output := image.NewRGBA(image.Rect(0, 0, w, h))

	// Black background
	for i := 3; i < len(output.Pix); i += 4 {
		output.Pix[i] = 255
	}

	if bc.state.Image != nil {
		bc.drawImage(output, w, h)
		bc.drawBoxes(output)
	}
	if bc.rubberBand != nil {
		bc.drawRubberBand(output, *bc.rubberBand)
	}
	return output
}
