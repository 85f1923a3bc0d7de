// Package panels provides the side panels of the main window.
package panels

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"

	"drawing-viewer/internal/app"
)

// SidePanel provides the main side panel with tabbed sections.
type SidePanel struct {
	container *container.AppTabs

	Tree   *TreePanel
	Layers *LayersPanel
	Issues *IssuesPanel
}

// NewSidePanel creates a new side panel.
func NewSidePanel(viewer *app.Viewer) *SidePanel {
	sp := &SidePanel{
		Tree:   NewTreePanel(viewer),
		Layers: NewLayersPanel(viewer),
		Issues: NewIssuesPanel(viewer),
	}

	sp.container = container.NewAppTabs(
		container.NewTabItem("Drawings", sp.Tree.Container()),
		container.NewTabItem("Layers", sp.Layers.Container()),
		container.NewTabItem("Issues", sp.Issues.Container()),
	)
	return sp
}

// Container returns the panel container.
func (sp *SidePanel) Container() fyne.CanvasObject {
	return sp.container
}

// ShowLayers switches to the layers tab.
func (sp *SidePanel) ShowLayers() {
	sp.container.SelectIndex(1)
}
