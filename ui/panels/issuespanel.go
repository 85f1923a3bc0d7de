package panels

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"drawing-viewer/internal/app"
	"drawing-viewer/internal/drawing"
)

// IssuesPanel lists the issue pins of the current drawing.
type IssuesPanel struct {
	viewer    *app.Viewer
	container fyne.CanvasObject

	list     *widget.List
	pins     []drawing.IssuePin
	selected int

	visible *widget.Check
	resolve *widget.Button
	remove  *widget.Button
}

// NewIssuesPanel creates a new issues panel.
func NewIssuesPanel(viewer *app.Viewer) *IssuesPanel {
	ip := &IssuesPanel{viewer: viewer, selected: -1}

	ip.list = widget.NewList(
		func() int { return len(ip.pins) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			if id < len(ip.pins) {
				obj.(*widget.Label).SetText(pinLabel(ip.pins[id]))
			}
		},
	)
	ip.list.OnSelected = func(id widget.ListItemID) {
		ip.selected = id
		ip.updateButtons()
	}
	ip.list.OnUnselected = func(widget.ListItemID) {
		ip.selected = -1
		ip.updateButtons()
	}

	ip.visible = widget.NewCheck("Show pins", nil)
	ip.visible.SetChecked(viewer.Board().Visible())
	ip.visible.OnChanged = func(on bool) {
		viewer.SetPinsVisible(on)
	}

	ip.resolve = widget.NewButton("Resolve", ip.onToggleStatus)
	ip.remove = widget.NewButton("Delete", ip.onRemove)
	ip.updateButtons()

	ip.container = container.NewBorder(
		ip.visible,
		container.NewHBox(ip.resolve, ip.remove),
		nil, nil,
		ip.list,
	)
	return ip
}

// Container returns the panel container.
func (ip *IssuesPanel) Container() fyne.CanvasObject {
	return ip.container
}

// Sync reloads the pins of the current selection.
func (ip *IssuesPanel) Sync() {
	ip.pins = ip.viewer.PinsForSelection()
	if ip.selected >= len(ip.pins) {
		ip.selected = -1
		ip.list.UnselectAll()
	}
	ip.visible.Checked = ip.viewer.Board().Visible()
	ip.visible.Refresh()
	ip.list.Refresh()
	ip.updateButtons()
}

func (ip *IssuesPanel) current() (drawing.IssuePin, bool) {
	if ip.selected < 0 || ip.selected >= len(ip.pins) {
		return drawing.IssuePin{}, false
	}
	return ip.pins[ip.selected], true
}

func (ip *IssuesPanel) updateButtons() {
	pin, ok := ip.current()
	if !ok {
		ip.resolve.Disable()
		ip.remove.Disable()
		return
	}
	ip.resolve.Enable()
	ip.remove.Enable()
	if pin.Status == drawing.PinResolved {
		ip.resolve.SetText("Reopen")
	} else {
		ip.resolve.SetText("Resolve")
	}
}

func (ip *IssuesPanel) onToggleStatus() {
	pin, ok := ip.current()
	if !ok {
		return
	}
	status := drawing.PinResolved
	if pin.Status == drawing.PinResolved {
		status = drawing.PinOpen
	}
	ip.viewer.SetPinStatus(pin.ID, status)
}

func (ip *IssuesPanel) onRemove() {
	pin, ok := ip.current()
	if !ok {
		return
	}
	ip.list.UnselectAll()
	ip.viewer.RemovePin(pin.ID)
}
