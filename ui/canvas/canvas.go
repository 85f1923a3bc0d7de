package canvas

import (
	"context"
	"image"
	"math"
	"sync"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"drawing-viewer/internal/app"
	imgpkg "drawing-viewer/internal/image"
	"drawing-viewer/internal/viewport"
	"drawing-viewer/pkg/geometry"
)

// tapSlop is how far the pointer may move between press and release for the
// release to still count as a click.
const tapSlop = 4

// DrawingCanvas renders the viewer's draw list and forwards pointer input to
// it.
type DrawingCanvas struct {
	widget.BaseWidget

	viewer   *app.Viewer
	renderer *imgpkg.Renderer
	logger   *zap.Logger
	raster   *fynecanvas.Raster

	mu        sync.Mutex
	size      fyne.Size
	pressAt   fyne.Position
	pressed   bool
	moved     bool
	lastFrame *image.RGBA

	onClick func(app.ClickResult)
}

var (
	_ fyne.Widget       = (*DrawingCanvas)(nil)
	_ fyne.Tappable     = (*DrawingCanvas)(nil)
	_ fyne.Scrollable   = (*DrawingCanvas)(nil)
	_ fyne.Draggable    = (*DrawingCanvas)(nil)
	_ desktop.Mouseable = (*DrawingCanvas)(nil)
	_ desktop.Hoverable = (*DrawingCanvas)(nil)
)

// New creates a canvas bound to viewer.
func New(viewer *app.Viewer, renderer *imgpkg.Renderer, logger *zap.Logger) *DrawingCanvas {
	if logger == nil {
		logger = zap.NewNop()
	}
	dc := &DrawingCanvas{
		viewer:   viewer,
		renderer: renderer,
		logger:   logger,
	}
	dc.raster = fynecanvas.NewRaster(dc.draw)
	dc.raster.ScaleMode = fynecanvas.ImageScalePixels
	dc.ExtendBaseWidget(dc)
	return dc
}

// OnClick sets the callback run after a click was handled by the viewer.
func (dc *DrawingCanvas) OnClick(callback func(app.ClickResult)) {
	dc.mu.Lock()
	dc.onClick = callback
	dc.mu.Unlock()
}

// LastFrame returns the most recently rendered frame.
func (dc *DrawingCanvas) LastFrame() *image.RGBA {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	return dc.lastFrame
}

// Resize keeps the viewport's container size in step with the widget.
func (dc *DrawingCanvas) Resize(size fyne.Size) {
	dc.mu.Lock()
	dc.size = size
	dc.mu.Unlock()
	dc.viewer.Viewport().SetContainerSize(float64(size.Width), float64(size.Height))
	dc.BaseWidget.Resize(size)
}

// MinSize implements fyne.Widget.
func (dc *DrawingCanvas) MinSize() fyne.Size {
	return fyne.NewSize(200, 150)
}

// draw renders a frame of w x h pixels. Transforms are in widget units, so
// they are scaled by the pixel ratio first.
func (dc *DrawingCanvas) draw(w, h int) image.Image {
	dc.mu.Lock()
	size := dc.size
	dc.mu.Unlock()

	ratio := 1.0
	if size.Width > 0 {
		ratio = float64(w) / float64(size.Width)
	}

	view := dc.viewer.Transform()
	pixelView := geometry.Transform{X: view.X * ratio, Y: view.Y * ratio, Scale: view.Scale * ratio}

	frame, err := dc.renderer.Render(context.Background(), w, h, dc.viewer.DrawList(), pixelView)
	if err != nil {
		dc.logger.Debug("frame rendered with errors", zap.Error(err))
	}

	overlay := NewOverlay(dc.viewer.Children(), dc.viewer.Hovered(), dc.viewer.ScreenPins(), view)
	drawOverlay(frame, overlay.Scaled(ratio), ratio)

	dc.mu.Lock()
	dc.lastFrame = frame
	dc.mu.Unlock()
	return frame
}

// Scrolled zooms about the pointer.
func (dc *DrawingCanvas) Scrolled(ev *fyne.ScrollEvent) {
	// fyne reports wheel-up as positive DY; the viewport expects DOM-style
	// deltas where positive means zoom out.
	dc.viewer.Wheel(float64(ev.Position.X), float64(ev.Position.Y), -float64(ev.Scrolled.DY))
}

// MouseDown starts a pan.
func (dc *DrawingCanvas) MouseDown(ev *desktop.MouseEvent) {
	dc.mu.Lock()
	dc.pressAt = ev.Position
	dc.pressed = true
	dc.moved = false
	dc.mu.Unlock()
	dc.viewer.PointerDown(float64(ev.Position.X), float64(ev.Position.Y), toButton(ev.Button))
}

// MouseUp ends a pan released over the canvas.
func (dc *DrawingCanvas) MouseUp(ev *desktop.MouseEvent) {
	dc.endPan()
}

// Dragged pans. fyne keeps delivering drag events after the pointer has left
// the widget, with positions relative to it, so a pan continues outside.
func (dc *DrawingCanvas) Dragged(ev *fyne.DragEvent) {
	dc.mu.Lock()
	if dc.pressed {
		dx := float64(ev.Position.X - dc.pressAt.X)
		dy := float64(ev.Position.Y - dc.pressAt.Y)
		if math.Hypot(dx, dy) > tapSlop {
			dc.moved = true
		}
	}
	dc.mu.Unlock()
	dc.viewer.PointerMove(float64(ev.Position.X), float64(ev.Position.Y))
}

// DragEnd ends a pan wherever the button was released.
func (dc *DrawingCanvas) DragEnd() {
	dc.endPan()
}

func (dc *DrawingCanvas) endPan() {
	dc.mu.Lock()
	dc.pressed = false
	dc.mu.Unlock()
	dc.viewer.PointerUp()
}

// MouseIn implements desktop.Hoverable.
func (dc *DrawingCanvas) MouseIn(ev *desktop.MouseEvent) {
	dc.viewer.Hover(float64(ev.Position.X), float64(ev.Position.Y))
}

// MouseMoved tracks the hovered child area.
func (dc *DrawingCanvas) MouseMoved(ev *desktop.MouseEvent) {
	dc.viewer.Hover(float64(ev.Position.X), float64(ev.Position.Y))
}

// MouseOut clears the hover. A pan in progress carries on.
func (dc *DrawingCanvas) MouseOut() {
	dc.viewer.ClearHover()
}

// Tapped places a pin or follows a child area, unless the press was a pan.
func (dc *DrawingCanvas) Tapped(ev *fyne.PointEvent) {
	dc.mu.Lock()
	moved := dc.moved
	dc.moved = false
	callback := dc.onClick
	dc.mu.Unlock()
	if moved {
		return
	}

	result := dc.viewer.Click(context.Background(), float64(ev.Position.X), float64(ev.Position.Y))
	if callback != nil {
		callback(result)
	}
}

func toButton(b desktop.MouseButton) viewport.Button {
	switch b {
	case desktop.MouseButtonSecondary:
		return viewport.ButtonSecondary
	case desktop.MouseButtonTertiary:
		return viewport.ButtonTertiary
	default:
		return viewport.ButtonPrimary
	}
}

// CreateRenderer implements fyne.Widget.
func (dc *DrawingCanvas) CreateRenderer() fyne.WidgetRenderer {
	return &drawingCanvasRenderer{canvas: dc}
}

type drawingCanvasRenderer struct {
	canvas *DrawingCanvas
}

func (r *drawingCanvasRenderer) Layout(size fyne.Size) {
	r.canvas.raster.Resize(size)
}

func (r *drawingCanvasRenderer) MinSize() fyne.Size {
	return r.canvas.MinSize()
}

func (r *drawingCanvasRenderer) Refresh() {
	r.canvas.raster.Refresh()
}

func (r *drawingCanvasRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.canvas.raster}
}

func (r *drawingCanvasRenderer) Destroy() {}
