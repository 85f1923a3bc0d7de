package panels

import (
	"sync/atomic"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"drawing-viewer/internal/app"
	"drawing-viewer/internal/revision"
	"drawing-viewer/pkg/colorutil"
)

// LayersPanel controls group visibility and per-revision opacity.
type LayersPanel struct {
	viewer    *app.Viewer
	container fyne.CanvasObject
	box       *fyne.Container
	empty     *widget.Label

	// adjusting is set while a control of this panel is changing the viewer,
	// so the resulting layers event does not rebuild the control under the
	// pointer.
	adjusting atomic.Bool
}

// NewLayersPanel creates a new layers panel.
func NewLayersPanel(viewer *app.Viewer) *LayersPanel {
	lp := &LayersPanel{viewer: viewer}
	lp.empty = widget.NewLabel("Select a drawing to see its revisions")
	lp.empty.Wrapping = fyne.TextWrapWord
	lp.box = container.NewVBox(lp.empty)
	lp.container = container.NewVScroll(lp.box)
	return lp
}

// Container returns the panel container.
func (lp *LayersPanel) Container() fyne.CanvasObject {
	return lp.container
}

// Sync rebuilds the cards from the compositor's groups.
func (lp *LayersPanel) Sync() {
	if lp.adjusting.Load() {
		return
	}

	groups := lp.viewer.Groups()
	lp.box.RemoveAll()
	if len(groups) == 0 {
		lp.box.Add(lp.empty)
		lp.box.Refresh()
		return
	}

	compare := lp.viewer.Compositor().CompareMode()
	for _, g := range groups {
		lp.box.Add(lp.groupCard(g, compare))
	}
	lp.box.Refresh()
}

func (lp *LayersPanel) groupCard(g revision.Group, compare bool) fyne.CanvasObject {
	discipline := g.Discipline

	visible := widget.NewCheck("Show in compare", nil)
	visible.SetChecked(g.Visible)
	visible.OnChanged = func(bool) {
		lp.adjusting.Store(true)
		lp.viewer.ToggleGroup(discipline)
		lp.adjusting.Store(false)
	}
	if !compare {
		visible.Disable()
	}

	rows := container.NewVBox(visible)
	for _, l := range g.Layers {
		rows.Add(lp.layerRow(discipline, l))
	}
	return widget.NewCard(groupTitle(g), "", rows)
}

func (lp *LayersPanel) layerRow(discipline string, l revision.LayerItem) fyne.CanvasObject {
	swatch := fynecanvas.NewRectangle(colorutil.MustParseHex(l.Color))
	swatch.SetMinSize(fyne.NewSize(14, 14))

	version := l.Revision.Version
	slider := widget.NewSlider(0, 100)
	slider.Step = 1
	slider.Value = opacityPercent(l.Opacity)
	slider.OnChanged = func(val float64) {
		lp.adjusting.Store(true)
		lp.viewer.SetLayerOpacity(discipline, version, val/100)
		lp.adjusting.Store(false)
	}

	header := container.NewBorder(nil, nil, swatch, nil, widget.NewLabel(revisionLabel(l)))
	row := container.NewVBox(header, slider)
	if text := changesText(l.Revision); text != "" {
		changes := widget.NewLabel(text)
		changes.Wrapping = fyne.TextWrapWord
		row.Add(changes)
	}
	return row
}
