// Package compositor turns revision layer groups into an ordered draw list
// for either single-image viewing or compare mode.
package compositor

import (
	"sync"

	"go.uber.org/zap"

	"drawing-viewer/internal/drawing"
	"drawing-viewer/internal/revision"
	"drawing-viewer/pkg/colorutil"
	"drawing-viewer/pkg/geometry"
)

// BlendMode specifies how a draw item combines with what is beneath it.
type BlendMode int

const (
	BlendNormal BlendMode = iota
	BlendMultiply
)

func (m BlendMode) String() string {
	switch m {
	case BlendNormal:
		return "Normal"
	case BlendMultiply:
		return "Multiply"
	default:
		return "Unknown"
	}
}

// DrawItem is one raster to draw, in back-to-front order.
type DrawItem struct {
	Discipline string
	Version    string
	Image      string
	Opacity    float64
	Blend      BlendMode
	Color      string
	// HueRotate is the tint rotation in degrees; zero for untinted items.
	HueRotate float64
	Tinted    bool
	// Relative maps the item's pixels into the base image's space. Nil means
	// identity.
	Relative *geometry.Transform
}

// DrawList is the compositor output.
type DrawList struct {
	Base     *DrawItem
	Overlays []DrawItem
}

// Empty reports whether there is nothing to draw.
func (l DrawList) Empty() bool {
	return l.Base == nil && len(l.Overlays) == 0
}

// Items returns base and overlays in draw order.
func (l DrawList) Items() []DrawItem {
	items := make([]DrawItem, 0, len(l.Overlays)+1)
	if l.Base != nil {
		items = append(items, *l.Base)
	}
	return append(items, l.Overlays...)
}

// Compositor owns layer visibility and opacity for the current selection.
type Compositor struct {
	mu sync.RWMutex

	groups      []revision.Group
	selection   drawing.Selection
	compare     bool
	drawingBase string

	logger *zap.Logger
}

// Option configures a Compositor.
type Option func(*Compositor)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Compositor) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates an empty compositor.
func New(opts ...Option) *Compositor {
	c := &Compositor{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Rebuild replaces all state. Groups are copied; the caller keeps ownership
// of its slice.
func (c *Compositor) Rebuild(groups []revision.Group, sel drawing.Selection, drawingImage string) {
	cloned := make([]revision.Group, len(groups))
	for i, g := range groups {
		cloned[i] = g.Clone()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.groups = cloned
	c.selection = sel
	c.drawingBase = drawingImage
}

// Clear drops every group. The drawing base image is kept.
func (c *Compositor) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.groups = nil
}

// Groups returns a copy of the current groups.
func (c *Compositor) Groups() []revision.Group {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]revision.Group, len(c.groups))
	for i, g := range c.groups {
		out[i] = g.Clone()
	}
	return out
}

// Selection returns the selection the draw list is computed for.
func (c *Compositor) Selection() drawing.Selection {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.selection
}

// SetRevision changes the revision shown outside compare mode.
func (c *Compositor) SetRevision(version string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selection.RevisionVersion = version
}

// CompareMode reports whether compare mode is on.
func (c *Compositor) CompareMode() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.compare
}

// SetCompareMode switches compare mode.
func (c *Compositor) SetCompareMode(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.compare = on
}

// ToggleGroup flips one discipline group's visibility. It returns the new
// visibility and false when the discipline is unknown.
func (c *Compositor) ToggleGroup(discipline string) (bool, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.groups {
		if c.groups[i].Discipline == discipline {
			c.groups[i].Visible = !c.groups[i].Visible
			return c.groups[i].Visible, true
		}
	}
	return false, false
}

// SetLayerOpacity sets one layer's opacity, clamped to [0, 1]. It returns
// false when the layer does not exist.
func (c *Compositor) SetLayerOpacity(discipline, version string, opacity float64) bool {
	opacity = clamp01(opacity)

	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.groups {
		if c.groups[i].Discipline != discipline {
			continue
		}
		for j := range c.groups[i].Layers {
			if c.groups[i].Layers[j].Revision.Version == version {
				c.groups[i].Layers[j].Opacity = opacity
				return true
			}
		}
	}
	return false
}

// PrependLayer puts a new revision at the front of a discipline group at full
// opacity and lowers the remaining layers to the comparison opacity. It
// returns false when the group does not exist.
func (c *Compositor) PrependLayer(discipline string, rev drawing.Revision) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.groups {
		g := &c.groups[i]
		if g.Discipline != discipline {
			continue
		}
		layers := make([]revision.LayerItem, 0, len(g.Layers)+1)
		layers = append(layers, revision.NewLayer(discipline, rev))
		for _, l := range g.Layers {
			l.Opacity = revision.ComparisonOpacity
			layers = append(layers, l)
		}
		g.Layers = layers
		return true
	}
	return false
}

// DrawList computes what to draw for the current state.
func (c *Compositor) DrawList() DrawList {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.compare {
		return c.compareList()
	}
	return c.singleList()
}

func (c *Compositor) selectedGroup() *revision.Group {
	for i := range c.groups {
		if c.groups[i].Discipline == c.selection.Discipline {
			return &c.groups[i]
		}
	}
	return nil
}

func (c *Compositor) singleList() DrawList {
	g := c.selectedGroup()

	layer, ok := g.Layer(c.selection.RevisionVersion)
	if !ok {
		layer, ok = g.Newest()
	}
	if ok {
		return DrawList{Base: &DrawItem{
			Discipline: g.Discipline,
			Version:    layer.Revision.Version,
			Image:      layer.Revision.Image,
			Opacity:    1,
			Blend:      BlendNormal,
			Color:      layer.Color,
		}}
	}

	if c.drawingBase != "" {
		return DrawList{Base: &DrawItem{
			Image:   c.drawingBase,
			Opacity: 1,
			Blend:   BlendNormal,
		}}
	}
	return DrawList{}
}

func (c *Compositor) compareList() DrawList {
	g := c.selectedGroup()
	base, ok := g.Newest()
	if !ok {
		return c.singleList()
	}

	list := DrawList{Base: &DrawItem{
		Discipline: g.Discipline,
		Version:    base.Revision.Version,
		Image:      base.Revision.Image,
		Opacity:    1,
		Blend:      BlendNormal,
		Color:      base.Color,
	}}
	bt := base.ImageTransform.OrIdentity()

	for gi := range c.groups {
		og := &c.groups[gi]
		if !og.Visible {
			continue
		}
		for li, layer := range og.Layers {
			if og == g && li == 0 {
				continue
			}
			item := DrawItem{
				Discipline: og.Discipline,
				Version:    layer.Revision.Version,
				Image:      layer.Revision.Image,
				Opacity:    layer.Opacity,
				Blend:      BlendMultiply,
				Color:      layer.Color,
				HueRotate:  colorutil.HueDegrees(layer.Color),
				Tinted:     true,
			}
			rel, ok := RelativeTransform(bt, layer.ImageTransform.OrIdentity())
			if ok {
				item.Relative = &rel
			} else {
				c.logger.Debug("degenerate overlay scale",
					zap.String("discipline", og.Discipline),
					zap.String("version", layer.Revision.Version))
			}
			list.Overlays = append(list.Overlays, item)
		}
	}
	return list
}

// RelativeTransform aligns an overlay with the base layer from their image
// transforms: scale = base/overlay and offset = base - overlay*scale. It
// returns false when either scale is zero.
func RelativeTransform(base, overlay drawing.ImageTransform) (geometry.Transform, bool) {
	if base.Scale == 0 || overlay.Scale == 0 {
		return geometry.Transform{}, false
	}
	displayScale := base.Scale / overlay.Scale
	return geometry.Transform{
		X:     base.X - overlay.X*displayScale,
		Y:     base.Y - overlay.Y*displayScale,
		Scale: displayScale,
	}, true
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
