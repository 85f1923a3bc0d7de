// Package mainwindow provides the main application window.
package mainwindow

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"drawing-viewer/internal/app"
	"drawing-viewer/internal/drawing"
	imgpkg "drawing-viewer/internal/image"
	"drawing-viewer/internal/version"
	"drawing-viewer/ui/canvas"
	"drawing-viewer/ui/panels"
	"drawing-viewer/ui/prefs"
)

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app    fyne.App
	viewer *app.Viewer
	prefs  *prefs.Prefs
	logger *zap.Logger
	ctx    context.Context

	canvas    *canvas.DrawingCanvas
	sidePanel *panels.SidePanel
	split     *container.Split
	statusBar *widget.Label
	zoomLabel *widget.Label

	revisionSelect *widget.Select
	compareCheck   *widget.Check
	pinButton      *widget.Button

	// syncing is set while controls are updated from viewer state so their
	// change callbacks do not feed back into the viewer.
	syncing atomic.Bool
}

// New creates a new main window.
func New(ctx context.Context, fyneApp fyne.App, viewer *app.Viewer, renderer *imgpkg.Renderer, p *prefs.Prefs, logger *zap.Logger) *MainWindow {
	if logger == nil {
		logger = zap.NewNop()
	}
	win := fyneApp.NewWindow("Drawing Viewer")

	mw := &MainWindow{
		Window: win,
		app:    fyneApp,
		viewer: viewer,
		prefs:  p,
		logger: logger,
		ctx:    ctx,
	}

	mw.canvas = canvas.New(viewer, renderer, logger.Named("canvas"))
	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()

	mw.Resize(fyne.NewSize(
		float32(p.FloatWithFallback(prefs.KeyWindowWidth, 1280)),
		float32(p.FloatWithFallback(prefs.KeyWindowHeight, 800)),
	))
	viewer.SetPinsVisible(p.Bool(prefs.KeyPinsVisible, true))
	win.SetOnClosed(mw.SavePreferences)
	return mw
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	mw.sidePanel = panels.NewSidePanel(mw.viewer)
	mw.sidePanel.Tree.OnSelect(mw.Select)

	mw.statusBar = widget.NewLabel("Ready")
	mw.zoomLabel = widget.NewLabel("100%")

	canvasArea := container.NewBorder(
		mw.createToolbar(), // top
		nil,                // bottom
		nil,                // left
		nil,                // right
		mw.canvas,          // center
	)

	mw.split = container.NewHSplit(mw.sidePanel.Container(), canvasArea)
	mw.split.SetOffset(mw.prefs.FloatWithFallback(prefs.KeySplitOffset, 0.25))

	content := container.NewBorder(
		nil, // top
		container.NewPadded(container.NewBorder(nil, nil, nil, mw.zoomLabel, mw.statusBar)), // bottom
		nil,      // left
		nil,      // right
		mw.split, // center
	)
	mw.SetContent(content)

	mw.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		switch ev.Name {
		case fyne.KeyEscape:
			mw.viewer.CancelPinPlacement()
		case fyne.KeyEqual:
			mw.viewer.Viewport().ZoomIn()
		case fyne.KeyMinus:
			mw.viewer.Viewport().ZoomOut()
		case fyne.Key0:
			mw.viewer.Viewport().FitToScreen()
		}
	})

	mw.canvas.OnClick(func(res app.ClickResult) {
		if res.Pin != nil {
			mw.updateStatus(fmt.Sprintf("Placed %s at %.0f, %.0f", res.Pin.Title, res.Pin.X, res.Pin.Y))
		}
	})
}

// createToolbar creates the toolbar with zoom, revision and compare controls.
func (mw *MainWindow) createToolbar() fyne.CanvasObject {
	vp := mw.viewer.Viewport()
	zoomOutBtn := widget.NewButton("-", vp.ZoomOut)
	zoomInBtn := widget.NewButton("+", vp.ZoomIn)
	fitBtn := widget.NewButton("Fit", vp.FitToScreen)

	mw.revisionSelect = widget.NewSelect(nil, func(v string) {
		if mw.syncing.Load() || v == "" {
			return
		}
		if _, err := mw.viewer.SetRevisionVersion(mw.ctx, v); err != nil {
			mw.updateStatus(err.Error())
		}
	})
	mw.revisionSelect.PlaceHolder = "Revision"
	mw.revisionSelect.Disable()

	mw.compareCheck = widget.NewCheck("Compare", func(on bool) {
		if mw.syncing.Load() {
			return
		}
		mw.viewer.SetCompareMode(on)
		if on {
			mw.sidePanel.ShowLayers()
		}
	})

	mw.pinButton = widget.NewButton("Add Issue", mw.onTogglePlacement)

	return container.NewHBox(
		widget.NewLabel("Zoom:"),
		zoomOutBtn,
		zoomInBtn,
		fitBtn,
		widget.NewSeparator(),
		mw.revisionSelect,
		mw.compareCheck,
		widget.NewSeparator(),
		mw.pinButton,
	)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Reload Metadata", mw.onReload),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Add Revision Image...", mw.onAddRevision),
		fyne.NewMenuItem("Add Drawing Image...", mw.onAddDrawing),
		fyne.NewMenuItem("Remove Drawing", mw.onRemoveDrawing),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Export View...", mw.onExportView),
	)

	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Zoom In", mw.viewer.Viewport().ZoomIn),
		fyne.NewMenuItem("Zoom Out", mw.viewer.Viewport().ZoomOut),
		fyne.NewMenuItem("Fit to Window", mw.viewer.Viewport().FitToScreen),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Toggle Compare", func() {
			mw.compareCheck.SetChecked(!mw.compareCheck.Checked)
		}),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, viewMenu, helpMenu))
}

// setupEventHandlers keeps the widgets in step with the viewer.
func (mw *MainWindow) setupEventHandlers() {
	mw.viewer.On(app.EventTreeLoaded, func(interface{}) {
		mw.sidePanel.Tree.Sync()
	})

	mw.viewer.On(app.EventSelectionChanged, func(data interface{}) {
		sel, _ := data.(drawing.Selection)
		if sel.DrawingID != "" {
			mw.prefs.SetLastSelection(sel)
			mw.updateStatus(fmt.Sprintf("%s · %s", sel.DrawingID, sel.Discipline))
		}
		mw.sidePanel.Tree.Sync()
		mw.sidePanel.Issues.Sync()
	})

	mw.viewer.On(app.EventLayersChanged, func(interface{}) {
		mw.sidePanel.Layers.Sync()
		mw.syncToolbar()
		mw.canvas.Refresh()
	})

	mw.viewer.On(app.EventTransformChanged, func(interface{}) {
		mw.zoomLabel.SetText(fmt.Sprintf("%d%%", mw.viewer.Viewport().ZoomPercent()))
		mw.canvas.Refresh()
	})

	mw.viewer.On(app.EventPinsChanged, func(interface{}) {
		mw.prefs.SetBool(prefs.KeyPinsVisible, mw.viewer.Board().Visible())
		mw.sidePanel.Issues.Sync()
		mw.canvas.Refresh()
	})

	mw.viewer.On(app.EventPlacementChanged, func(data interface{}) {
		if placing, _ := data.(bool); placing {
			mw.pinButton.SetText("Cancel")
			mw.updateStatus("Click on the drawing to place an issue (Esc to cancel)")
		} else {
			mw.pinButton.SetText("Add Issue")
		}
	})

	mw.viewer.On(app.EventHover, func(data interface{}) {
		if id, _ := data.(string); id != "" {
			mw.updateStatus("Open drawing " + id)
		}
		mw.canvas.Refresh()
	})

	mw.viewer.On(app.EventNavigate, func(data interface{}) {
		if sel, ok := data.(drawing.Selection); ok {
			mw.logger.Info("navigating to child drawing", zap.String("drawing", sel.DrawingID))
		}
	})

	mw.viewer.On(app.EventFetchFailed, func(data interface{}) {
		err, _ := data.(error)
		if err == nil {
			return
		}
		if errors.Is(err, drawing.ErrNotFound) {
			mw.updateStatus("Drawing not found")
			return
		}
		mw.updateStatus("Failed to load: " + err.Error())
	})
}

// syncToolbar refreshes the revision picker and compare box.
func (mw *MainWindow) syncToolbar() {
	mw.syncing.Store(true)
	defer mw.syncing.Store(false)

	mw.compareCheck.SetChecked(mw.viewer.Compositor().CompareMode())

	sel, ok := mw.viewer.Selection()
	var options []string
	if ok {
		for _, g := range mw.viewer.Groups() {
			if g.Discipline != sel.Discipline {
				continue
			}
			for _, l := range g.Layers {
				options = append(options, l.Revision.Version)
			}
		}
	}
	mw.revisionSelect.Options = options
	if len(options) == 0 {
		mw.revisionSelect.ClearSelected()
		mw.revisionSelect.Disable()
		return
	}
	mw.revisionSelect.Enable()
	if sel.RevisionVersion != "" {
		mw.revisionSelect.SetSelected(sel.RevisionVersion)
	} else {
		mw.revisionSelect.SetSelected(options[0])
	}
}

// Select shows a drawing.
func (mw *MainWindow) Select(sel drawing.Selection) {
	mw.updateStatus("Loading " + sel.DrawingID + "...")
	mw.viewer.Select(mw.ctx, sel)
}

// RestoreLastSelection shows the drawing that was open when the viewer last
// closed. It reports whether there was one.
func (mw *MainWindow) RestoreLastSelection() bool {
	sel, ok := mw.prefs.LastSelection()
	if !ok {
		return false
	}
	mw.Select(sel)
	return true
}

// SavePreferences writes window geometry and the current selection.
func (mw *MainWindow) SavePreferences() {
	size := mw.Canvas().Size()
	mw.prefs.SetFloat(prefs.KeyWindowWidth, float64(size.Width))
	mw.prefs.SetFloat(prefs.KeyWindowHeight, float64(size.Height))
	mw.prefs.SetFloat(prefs.KeySplitOffset, mw.split.Offset)
	if err := mw.prefs.SaveIfChanged(); err != nil {
		mw.logger.Warn("failed to save preferences", zap.Error(err))
	}
}

// updateStatus updates the status bar text.
func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

func (mw *MainWindow) onTogglePlacement() {
	if mw.viewer.Board().Placing() {
		mw.viewer.CancelPinPlacement()
		mw.updateStatus("Issue placement cancelled")
		return
	}
	if _, ok := mw.viewer.Selection(); !ok {
		mw.updateStatus("Select a drawing first")
		return
	}
	mw.viewer.BeginPinPlacement()
}

func (mw *MainWindow) onReload() {
	if _, err := mw.viewer.Refresh(mw.ctx); err != nil {
		dialog.ShowError(err, mw.Window)
		return
	}
	mw.updateStatus("Metadata reloaded")
}

func imageFilter() storage.FileFilter {
	exts := make([]string, 0, len(imgpkg.SupportedFormats()))
	for _, f := range imgpkg.SupportedFormats() {
		exts = append(exts, "."+f)
	}
	return storage.NewExtensionFileFilter(exts)
}

// pickImage runs a file dialog and passes the chosen path to fn.
func (mw *MainWindow) pickImage(fn func(path string)) {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		if reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()
		fn(path)
	}, mw.Window)
	fd.SetFilter(imageFilter())
	fd.Show()
}

func (mw *MainWindow) onAddRevision() {
	sel, ok := mw.viewer.Selection()
	if !ok {
		mw.updateStatus("Select a drawing first")
		return
	}
	mw.pickImage(func(path string) {
		rev := drawing.Revision{
			Version:     strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
			Image:       path,
			Date:        time.Now().Format("2006-01-02"),
			Description: "Uploaded revision",
		}
		if err := mw.viewer.AddLocalRevision(mw.ctx, rev); err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.updateStatus(fmt.Sprintf("Added revision %s to %s", rev.Version, sel.DrawingID))
	})
}

func (mw *MainWindow) onAddDrawing() {
	discipline := drawing.AllDisciplines
	if sel, ok := mw.viewer.Selection(); ok && sel.Discipline != "" {
		discipline = sel.Discipline
	}
	mw.pickImage(func(path string) {
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		rev := drawing.Revision{
			Version: "REV1",
			Image:   path,
			Date:    time.Now().Format("2006-01-02"),
		}
		node := drawing.TreeNode{
			DrawingID:      "upload-" + name,
			DrawingName:    name,
			Discipline:     discipline,
			LatestRevision: &rev,
			RevisionCount:  1,
		}
		if err := mw.viewer.AddDrawing(mw.ctx, node); err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.Select(drawing.Selection{DrawingID: node.DrawingID, Discipline: discipline, RevisionVersion: rev.Version})
	})
}

func (mw *MainWindow) onRemoveDrawing() {
	sel, ok := mw.viewer.Selection()
	if !ok {
		mw.updateStatus("Select a drawing first")
		return
	}
	dialog.ShowConfirm("Remove Drawing",
		fmt.Sprintf("Remove %s (%s) from the list?", sel.DrawingID, sel.Discipline),
		func(yes bool) {
			if !yes {
				return
			}
			if err := mw.viewer.RemoveDrawing(mw.ctx, sel.DrawingID, sel.Discipline); err != nil {
				dialog.ShowError(err, mw.Window)
				return
			}
			mw.updateStatus("Removed " + sel.DrawingID)
		}, mw.Window)
}

func (mw *MainWindow) onExportView() {
	frame := mw.canvas.LastFrame()
	if frame == nil {
		mw.updateStatus("Nothing to export")
		return
	}
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		if writer == nil {
			return
		}
		path := writer.URI().Path()
		writer.Close()
		if err := imgpkg.Save(path, frame); err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.updateStatus("Exported " + path)
	}, mw.Window)
	fd.SetFileName("view.png")
	fd.Show()
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About Drawing Viewer",
		fmt.Sprintf("Drawing Viewer v%s\n\n"+
			"Browse construction drawings by discipline and\n"+
			"overlay their revisions.\n\n"+
			"Built: %s\n"+
			"Commit: %s",
			version.Version, version.BuildTime, version.GitCommit),
		mw.Window)
}
