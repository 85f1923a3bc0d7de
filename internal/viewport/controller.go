// Package viewport owns the interactive pan/zoom state of the drawing canvas.
package viewport

import (
	"math"
	"sync"

	"go.uber.org/zap"

	"drawing-viewer/pkg/geometry"
)

// Button identifies a pointer button.
type Button int

const (
	ButtonPrimary Button = iota
	ButtonSecondary
	ButtonTertiary
)

// Limits bounds zoom and fit behavior.
type Limits struct {
	MinScale   float64
	MaxScale   float64
	ZoomFactor float64
	FitPadding float64
}

// DefaultLimits returns the standard viewport limits.
func DefaultLimits() Limits {
	return Limits{
		MinScale:   geometry.DefaultMinScale,
		MaxScale:   geometry.DefaultMaxScale,
		ZoomFactor: geometry.DefaultZoomFactor,
		FitPadding: geometry.DefaultFitPadding,
	}
}

func (l Limits) normalized() Limits {
	d := DefaultLimits()
	if l.MinScale <= 0 {
		l.MinScale = d.MinScale
	}
	if l.MaxScale < l.MinScale {
		l.MaxScale = math.Max(d.MaxScale, l.MinScale)
	}
	if l.ZoomFactor <= 1 {
		l.ZoomFactor = d.ZoomFactor
	}
	if l.FitPadding < 0 {
		l.FitPadding = 0
	}
	return l
}

type dragOrigin struct {
	pointerX, pointerY float64
	x, y               float64
}

// Controller is the only writer of the viewport transform.
type Controller struct {
	mu sync.Mutex

	limits    Limits
	transform geometry.Transform
	container geometry.Size
	image     geometry.Size

	drag       *dragOrigin
	suppressed bool

	onChange func(geometry.Transform)
	logger   *zap.Logger
}

// New creates a controller at the identity transform.
func New(limits Limits, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		limits:    limits.normalized(),
		transform: geometry.IdentityTransform(),
		logger:    logger,
	}
}

// OnChange registers the callback invoked after every transform change. It
// runs outside the controller lock.
func (c *Controller) OnChange(fn func(geometry.Transform)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = fn
}

// Limits returns the active limits.
func (c *Controller) Limits() Limits {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.limits
}

// Transform returns the current transform.
func (c *Controller) Transform() geometry.Transform {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transform
}

// ZoomPercent returns the current scale as a rounded percentage.
func (c *Controller) ZoomPercent() int {
	return int(math.Round(c.Transform().Scale * 100))
}

// Dragging reports whether a drag is in progress.
func (c *Controller) Dragging() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.drag != nil
}

// ImageSize returns the natural image size, zero until known.
func (c *Controller) ImageSize() geometry.Size {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.image
}

// ContainerSize returns the container size.
func (c *Controller) ContainerSize() geometry.Size {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.container
}

// update applies fn under the lock and notifies when the transform changed.
func (c *Controller) update(fn func() bool) {
	c.mu.Lock()
	before := c.transform
	changed := fn()
	if changed {
		c.transform.Scale = geometry.ClampScale(c.transform.Scale, c.limits.MinScale, c.limits.MaxScale)
	}
	after := c.transform
	notify := c.onChange
	c.mu.Unlock()

	if changed && after != before && notify != nil {
		notify(after)
	}
}

// SetDragSuppressed blocks new drags while another interaction mode, such
// as pin placement, owns the primary button. It also ends a drag in progress.
func (c *Controller) SetDragSuppressed(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.suppressed = on
	if on {
		c.drag = nil
	}
}

// PointerDown starts a drag on the primary button.
func (c *Controller) PointerDown(x, y float64, button Button) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if button != ButtonPrimary || c.suppressed {
		return false
	}
	c.drag = &dragOrigin{
		pointerX: x,
		pointerY: y,
		x:        c.transform.X,
		y:        c.transform.Y,
	}
	return true
}

// PointerMove pans while a drag is active. Coordinates may lie outside the
// container.
func (c *Controller) PointerMove(x, y float64) {
	c.update(func() bool {
		if c.drag == nil {
			return false
		}
		c.transform.X = c.drag.x + (x - c.drag.pointerX)
		c.transform.Y = c.drag.y + (y - c.drag.pointerY)
		return true
	})
}

// PointerUp ends the drag.
func (c *Controller) PointerUp() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.drag = nil
}

// Wheel zooms about the pointer: negative deltaY zooms in.
func (c *Controller) Wheel(x, y, deltaY float64) {
	if deltaY == 0 {
		return
	}
	c.update(func() bool {
		factor := c.limits.ZoomFactor
		if deltaY > 0 {
			factor = 1 / factor
		}
		c.transform = geometry.ZoomAbout(c.transform, x, y, factor, c.limits.MinScale, c.limits.MaxScale)
		return true
	})
}

// ZoomIn zooms in about the container center.
func (c *Controller) ZoomIn() {
	c.zoomCenter(true)
}

// ZoomOut zooms out about the container center.
func (c *Controller) ZoomOut() {
	c.zoomCenter(false)
}

func (c *Controller) zoomCenter(in bool) {
	c.update(func() bool {
		factor := c.limits.ZoomFactor
		if !in {
			factor = 1 / factor
		}
		cx, cy := c.container.Width/2, c.container.Height/2
		c.transform = geometry.ZoomAbout(c.transform, cx, cy, factor, c.limits.MinScale, c.limits.MaxScale)
		return true
	})
}

// SetContainerSize records the canvas size.
func (c *Controller) SetContainerSize(w, h float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.container = geometry.NewSize(w, h)
}

// SetImageSize records the natural image size and fits it.
func (c *Controller) SetImageSize(w, h float64) {
	c.mu.Lock()
	c.image = geometry.NewSize(w, h)
	c.mu.Unlock()
	c.FitToScreen()
}

// FitToScreen fits the whole image in the container. It does nothing while
// either size is unknown.
func (c *Controller) FitToScreen() {
	c.update(func() bool {
		t, ok := geometry.FitTransform(c.container.Width, c.container.Height,
			c.image.Width, c.image.Height, c.limits.FitPadding)
		if !ok {
			c.logger.Debug("fit deferred",
				zap.Float64("container_w", c.container.Width),
				zap.Float64("image_w", c.image.Width))
			return false
		}
		if s := geometry.ClampScale(t.Scale, c.limits.MinScale, c.limits.MaxScale); s != t.Scale {
			t = geometry.Transform{
				X:     (c.container.Width - c.image.Width*s) / 2,
				Y:     (c.container.Height - c.image.Height*s) / 2,
				Scale: s,
			}
		}
		c.transform = t
		return true
	})
}

// Reset returns to the identity transform and forgets the image size. Any
// drag in progress is dropped.
func (c *Controller) Reset() {
	c.update(func() bool {
		c.transform = geometry.IdentityTransform()
		c.image = geometry.Size{}
		c.drag = nil
		return true
	})
}

// SetTransform replaces the transform, clamping its scale.
func (c *Controller) SetTransform(t geometry.Transform) {
	c.update(func() bool {
		c.transform = t
		return true
	})
}
