package panels

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"drawing-viewer/internal/app"
	"drawing-viewer/internal/drawing"
)

// TreePanel lists drawings grouped by discipline.
type TreePanel struct {
	viewer    *app.Viewer
	accordion *widget.Accordion
	container fyne.CanvasObject
	empty     *widget.Label

	open     map[string]bool
	onSelect func(drawing.Selection)
}

// NewTreePanel creates a tree panel for viewer.
func NewTreePanel(viewer *app.Viewer) *TreePanel {
	tp := &TreePanel{
		viewer: viewer,
		open:   map[string]bool{drawing.AllDisciplines: true},
	}
	tp.accordion = widget.NewAccordion()
	tp.accordion.MultiOpen = true
	tp.empty = widget.NewLabel("No drawings loaded")

	tp.container = container.NewVScroll(container.NewVBox(tp.empty, tp.accordion))
	return tp
}

// OnSelect sets the callback for drawing clicks.
func (tp *TreePanel) OnSelect(callback func(drawing.Selection)) {
	tp.onSelect = callback
}

// Container returns the panel container.
func (tp *TreePanel) Container() fyne.CanvasObject {
	return tp.container
}

// Sync rebuilds the sections from the viewer's tree and highlights the
// current selection.
func (tp *TreePanel) Sync() {
	for _, item := range tp.accordion.Items {
		tp.open[item.Title] = item.Open
	}

	tree := tp.viewer.Tree()
	sel, hasSel := tp.viewer.Selection()

	items := make([]*widget.AccordionItem, 0, len(tree))
	for _, section := range tree {
		box := container.NewVBox()
		for _, node := range section.Nodes {
			node := node
			btn := widget.NewButton(node.Label(), func() {
				tp.choose(node)
			})
			btn.Alignment = widget.ButtonAlignLeading
			if hasSel && sel.DrawingID == node.DrawingID && sel.Discipline == node.Discipline {
				btn.Importance = widget.HighImportance
			}
			box.Add(btn)
		}

		title := sectionTitle(section)
		item := widget.NewAccordionItem(title, box)
		item.Open = tp.open[title] || tp.open[section.Discipline]
		items = append(items, item)
	}

	tp.accordion.Items = items
	tp.accordion.Refresh()
	if len(items) == 0 {
		tp.empty.Show()
	} else {
		tp.empty.Hide()
	}
}

func (tp *TreePanel) choose(node drawing.TreeNode) {
	if tp.onSelect == nil {
		return
	}
	tp.onSelect(drawing.Selection{
		DrawingID:       node.DrawingID,
		Discipline:      node.Discipline,
		RevisionVersion: node.LatestVersion(),
	})
}
