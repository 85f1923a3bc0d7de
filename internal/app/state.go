// Package app holds the viewer state: the current selection, the layers built
// for it, the viewport and the issue pins, plus event notification.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"drawing-viewer/internal/compositor"
	"drawing-viewer/internal/drawing"
	imgpkg "drawing-viewer/internal/image"
	"drawing-viewer/internal/localrev"
	"drawing-viewer/internal/metadata"
	"drawing-viewer/internal/pins"
	"drawing-viewer/internal/revision"
	"drawing-viewer/internal/viewport"
	"drawing-viewer/pkg/geometry"
)

// ErrNoSelection is returned by operations that need a selected drawing.
var ErrNoSelection = errors.New("no drawing selected")

// EventType identifies different viewer events.
type EventType int

const (
	EventSelectionChanged EventType = iota // drawing.Selection
	EventLayersChanged                     // nil
	EventTransformChanged                  // geometry.Transform
	EventPinsChanged                       // drawing.IssuePin
	EventNavigate                          // drawing.Selection
	EventHover                             // string child drawing id, "" when none
	EventTreeLoaded                        // drawing.Tree
	EventFetchFailed                       // error
	EventPlacementChanged                  // bool
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// SizeFunc reports an image's natural size.
type SizeFunc func(ctx context.Context, path string) (geometry.Size, error)

// Viewer is the explicit state container of the drawing viewer. All methods
// are safe for concurrent use.
type Viewer struct {
	mu sync.RWMutex
	// seq orders selection changes against the viewport writes they cause
	// (reset and fit). It is taken before mu, never after.
	seq sync.Mutex

	provider metadata.Provider
	local    localrev.Store
	resolver metadata.Resolver
	size     SizeFunc
	hit      pins.HitTester
	logger   *zap.Logger

	viewport   *viewport.Controller
	compositor *compositor.Compositor
	board      *pins.Board

	selection    drawing.Selection
	hasSelection bool
	generation   uint64
	loaded       bool
	current      *drawing.Drawing
	children     []drawing.Drawing
	tree         drawing.Tree
	hovered      string

	listeners map[EventType][]EventListener
}

// Option configures a Viewer.
type Option func(*Viewer)

// WithLocalStore sets the store used for drawings without discipline metadata.
func WithLocalStore(s localrev.Store) Option {
	return func(v *Viewer) { v.local = s }
}

// WithResolver sets how image names map to paths.
func WithResolver(r metadata.Resolver) Option {
	return func(v *Viewer) { v.resolver = r }
}

// WithSizeFunc sets the natural-size probe.
func WithSizeFunc(fn SizeFunc) Option {
	return func(v *Viewer) { v.size = fn }
}

// WithHitTester replaces the polygon hit tester.
func WithHitTester(h pins.HitTester) Option {
	return func(v *Viewer) { v.hit = h }
}

// WithLimits sets the viewport limits.
func WithLimits(l viewport.Limits) Option {
	return func(v *Viewer) { v.viewport = viewport.New(l, v.logger) }
}

// WithReporter sets the reporter recorded on new pins.
func WithReporter(name string) Option {
	return func(v *Viewer) { v.board = pins.NewBoard(name) }
}

// WithLogger sets the logger. It must come before WithLimits to reach the
// viewport.
func WithLogger(l *zap.Logger) Option {
	return func(v *Viewer) {
		if l != nil {
			v.logger = l
		}
	}
}

// NewViewer creates a viewer reading metadata from provider.
func NewViewer(provider metadata.Provider, opts ...Option) *Viewer {
	v := &Viewer{
		provider:  provider,
		local:     localrev.NewMemoryStore(),
		hit:       pins.RayCaster{},
		logger:    zap.NewNop(),
		board:     pins.NewBoard(""),
		tree:      drawing.Tree{},
		listeners: make(map[EventType][]EventListener),
	}
	v.size = func(_ context.Context, path string) (geometry.Size, error) {
		return imgpkg.NaturalSize(path)
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.viewport == nil {
		v.viewport = viewport.New(viewport.DefaultLimits(), v.logger)
	}
	v.compositor = compositor.New(compositor.WithLogger(v.logger))
	v.viewport.OnChange(func(t geometry.Transform) {
		v.Emit(EventTransformChanged, t)
	})
	return v
}

// On registers an event listener for the specified event type.
func (v *Viewer) On(event EventType, listener EventListener) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.listeners[event] = append(v.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (v *Viewer) Emit(event EventType, data interface{}) {
	v.mu.RLock()
	listeners := v.listeners[event]
	v.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// Viewport returns the viewport controller.
func (v *Viewer) Viewport() *viewport.Controller { return v.viewport }

// Compositor returns the layer compositor.
func (v *Viewer) Compositor() *compositor.Compositor { return v.compositor }

// Board returns the issue pin board.
func (v *Viewer) Board() *pins.Board { return v.board }

// Resolver returns the image resolver.
func (v *Viewer) Resolver() metadata.Resolver { return v.resolver }

// Selection returns the current selection and whether there is one.
func (v *Viewer) Selection() (drawing.Selection, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.selection, v.hasSelection
}

// Drawing returns the loaded drawing, nil while loading or for drawings
// unknown to the metadata.
func (v *Viewer) Drawing() *drawing.Drawing {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.current
}

// Children returns the child drawings positioned on the current drawing.
func (v *Viewer) Children() []drawing.Drawing {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]drawing.Drawing, len(v.children))
	copy(out, v.children)
	return out
}

// Hovered returns the id of the child drawing under the pointer.
func (v *Viewer) Hovered() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.hovered
}

// Tree returns the drawing tree.
func (v *Viewer) Tree() drawing.Tree {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.tree
}

// Groups returns the current layer groups.
func (v *Viewer) Groups() []revision.Group {
	return v.compositor.Groups()
}

// DrawList returns what to draw for the current state.
func (v *Viewer) DrawList() compositor.DrawList {
	return v.compositor.DrawList()
}

// Transform returns the viewport transform.
func (v *Viewer) Transform() geometry.Transform {
	return v.viewport.Transform()
}

// ScreenPins returns the pins of the active selection in screen space.
func (v *Viewer) ScreenPins() []pins.ScreenPin {
	sel, ok := v.Selection()
	if !ok {
		return nil
	}
	return v.board.ScreenPins(v.viewport.Transform(), sel)
}

// LoadTree fetches the drawing tree. Nodes added locally are kept.
func (v *Viewer) LoadTree(ctx context.Context) error {
	tree, err := v.provider.DrawingTree(ctx)
	if err != nil {
		v.logger.Warn("failed to load drawing tree", zap.Error(err))
		v.Emit(EventFetchFailed, err)
		return fmt.Errorf("load tree: %w", err)
	}

	v.mu.Lock()
	for _, section := range v.tree {
		for _, n := range section.Nodes {
			if _, ok := tree.Node(n.DrawingID, n.Discipline); !ok {
				tree = tree.Add(n)
			}
		}
	}
	v.tree = tree
	v.mu.Unlock()

	v.Emit(EventTreeLoaded, tree)
	return nil
}

// isCurrent reports whether gen is still the latest selection request.
// Callers hold v.mu.
func (v *Viewer) isCurrent(gen uint64) bool {
	return v.hasSelection && v.generation == gen
}

// Select shows a drawing. The viewport resets immediately and compare mode
// is cleared; layers and the fitted transform follow asynchronously. The
// returned channel closes when this request has finished or was superseded.
func (v *Viewer) Select(ctx context.Context, sel drawing.Selection) <-chan struct{} {
	v.seq.Lock()
	v.mu.Lock()
	v.generation++
	gen := v.generation
	v.selection = sel
	v.hasSelection = true
	v.loaded = false
	v.current = nil
	v.children = nil
	v.hovered = ""
	v.compositor.SetCompareMode(false)
	v.compositor.Rebuild(nil, sel, "")
	v.mu.Unlock()
	v.viewport.Reset()
	v.seq.Unlock()

	v.logger.Debug("selection changed",
		zap.String("drawing", sel.DrawingID),
		zap.String("discipline", sel.Discipline),
		zap.String("revision", sel.RevisionVersion),
		zap.Uint64("generation", gen))
	v.Emit(EventSelectionChanged, sel)
	v.Emit(EventLayersChanged, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if v.load(ctx, gen, sel) {
			v.probe(ctx, gen)
		}
	}()
	return done
}

// load fetches metadata for sel and rebuilds the layers. It returns false
// when the request failed or went stale.
func (v *Viewer) load(ctx context.Context, gen uint64, sel drawing.Selection) bool {
	d, err := v.provider.DrawingByID(ctx, sel.DrawingID)
	if err != nil {
		v.fail(gen, fmt.Errorf("drawing %s: %w", sel.DrawingID, err))
		return false
	}

	var children []drawing.Drawing
	if d != nil {
		children, err = v.provider.ChildDrawings(ctx, sel.DrawingID)
		if err != nil {
			v.fail(gen, fmt.Errorf("children of %s: %w", sel.DrawingID, err))
			return false
		}
	}

	var (
		groups []revision.Group
		base   string
	)
	if d != nil {
		base = d.Image
	}
	if d.HasDisciplines() {
		groups = revision.Build(d, sel.Discipline)
	} else {
		revs, err := v.local.List(ctx, sel.DrawingID, sel.Discipline)
		if err != nil {
			v.fail(gen, fmt.Errorf("local revisions of %s: %w", sel.Key(), err))
			return false
		}
		groups = revision.BuildLocal(sel.Discipline, v.drawingName(d, sel), revs)
		if newest, ok := firstLayer(groups); ok {
			base = newest.Revision.Image
		}
		if d == nil && len(groups) == 0 {
			v.fail(gen, fmt.Errorf("%w: %s", drawing.ErrNotFound, sel.DrawingID))
			return false
		}
	}

	v.mu.Lock()
	if !v.isCurrent(gen) {
		v.mu.Unlock()
		v.logger.Debug("discarding stale drawing response",
			zap.String("drawing", sel.DrawingID),
			zap.Uint64("generation", gen))
		return false
	}
	v.current = d
	v.children = children
	v.loaded = true
	v.compositor.Rebuild(groups, v.selection, base)
	v.mu.Unlock()

	v.Emit(EventLayersChanged, nil)
	return true
}

func firstLayer(groups []revision.Group) (revision.LayerItem, bool) {
	if len(groups) == 0 {
		return revision.LayerItem{}, false
	}
	return groups[0].Newest()
}

func (v *Viewer) drawingName(d *drawing.Drawing, sel drawing.Selection) string {
	if d != nil && d.Name != "" {
		return d.Name
	}
	v.mu.RLock()
	defer v.mu.RUnlock()
	if n, ok := v.tree.Node(sel.DrawingID, sel.Discipline); ok && n.DrawingName != "" {
		return n.DrawingName
	}
	return sel.DrawingID
}

// fail clears the layers of a current request and reports the error.
func (v *Viewer) fail(gen uint64, err error) {
	v.mu.Lock()
	if !v.isCurrent(gen) {
		v.mu.Unlock()
		v.logger.Debug("discarding stale failure", zap.Error(err))
		return
	}
	v.compositor.Clear()
	v.mu.Unlock()

	v.logger.Warn("failed to load drawing", zap.Error(err))
	v.Emit(EventLayersChanged, nil)
	v.Emit(EventFetchFailed, err)
}

// probe reads the natural size of the image on screen and fits it.
func (v *Viewer) probe(ctx context.Context, gen uint64) {
	list := v.compositor.DrawList()
	if list.Base == nil || list.Base.Image == "" {
		return
	}
	path := v.resolver.ImageURL(list.Base.Image)
	size, err := v.size(ctx, path)
	if err != nil {
		v.logger.Warn("failed to read image size", zap.String("path", path), zap.Error(err))
		return
	}

	v.seq.Lock()
	defer v.seq.Unlock()
	v.mu.RLock()
	current := v.isCurrent(gen)
	v.mu.RUnlock()
	if !current {
		v.logger.Debug("discarding stale image size", zap.String("path", path))
		return
	}
	v.viewport.SetImageSize(size.Width, size.Height)
}

// SetRevisionVersion switches the revision shown outside compare mode. Like
// any selection change it resets the viewport and supersedes pending probes;
// the viewport refits once the new image's size is known. While the drawing
// is still loading the whole selection is requested again.
func (v *Viewer) SetRevisionVersion(ctx context.Context, version string) (<-chan struct{}, error) {
	v.seq.Lock()
	v.mu.Lock()
	if !v.hasSelection {
		v.mu.Unlock()
		v.seq.Unlock()
		return nil, ErrNoSelection
	}
	sel := v.selection
	sel.RevisionVersion = version
	if !v.loaded {
		v.mu.Unlock()
		v.seq.Unlock()
		return v.Select(ctx, sel), nil
	}
	v.generation++
	gen := v.generation
	v.selection = sel
	v.compositor.SetRevision(version)
	v.mu.Unlock()
	v.viewport.Reset()
	v.seq.Unlock()

	v.Emit(EventSelectionChanged, sel)
	v.Emit(EventLayersChanged, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		v.probe(ctx, gen)
	}()
	return done, nil
}

// SetCompareMode switches compare mode.
func (v *Viewer) SetCompareMode(on bool) {
	v.compositor.SetCompareMode(on)
	v.Emit(EventLayersChanged, nil)
}

// ToggleGroup flips one discipline group's visibility.
func (v *Viewer) ToggleGroup(discipline string) bool {
	visible, ok := v.compositor.ToggleGroup(discipline)
	if ok {
		v.Emit(EventLayersChanged, nil)
	}
	return visible
}

// SetLayerOpacity sets one layer's opacity.
func (v *Viewer) SetLayerOpacity(discipline, version string, opacity float64) {
	if v.compositor.SetLayerOpacity(discipline, version, opacity) {
		v.Emit(EventLayersChanged, nil)
	}
}

// PointerDown forwards a button press to the viewport.
func (v *Viewer) PointerDown(x, y float64, button viewport.Button) {
	v.viewport.PointerDown(x, y, button)
}

// PointerMove forwards pointer movement to the viewport.
func (v *Viewer) PointerMove(x, y float64) {
	v.viewport.PointerMove(x, y)
}

// PointerUp ends a drag.
func (v *Viewer) PointerUp() {
	v.viewport.PointerUp()
}

// Wheel zooms about the pointer.
func (v *Viewer) Wheel(x, y, deltaY float64) {
	v.viewport.Wheel(x, y, deltaY)
}

// BeginPinPlacement arms pin placement and suppresses dragging.
func (v *Viewer) BeginPinPlacement() {
	v.board.BeginPlacement()
	v.viewport.SetDragSuppressed(true)
	v.Emit(EventPlacementChanged, true)
}

// CancelPinPlacement leaves placement mode.
func (v *Viewer) CancelPinPlacement() {
	v.board.CancelPlacement()
	v.viewport.SetDragSuppressed(false)
	v.Emit(EventPlacementChanged, false)
}

// ClickResult describes what a canvas click did.
type ClickResult struct {
	Pin    *drawing.IssuePin
	Target *drawing.Selection
	// Done closes when a navigation triggered by the click has loaded.
	Done <-chan struct{}
}

// Click handles a canvas click: it places a pin while placement is armed,
// otherwise it navigates into the child drawing under the pointer.
func (v *Viewer) Click(ctx context.Context, sx, sy float64) ClickResult {
	sel, ok := v.Selection()
	if !ok {
		return ClickResult{}
	}
	t := v.viewport.Transform()

	if v.board.Placing() {
		pin, placed := v.board.Place(t, sx, sy, sel)
		v.viewport.SetDragSuppressed(false)
		v.Emit(EventPlacementChanged, false)
		if !placed {
			return ClickResult{}
		}
		v.logger.Info("placed issue pin",
			zap.String("id", pin.ID),
			zap.String("drawing", pin.DrawingID),
			zap.Float64("x", pin.X),
			zap.Float64("y", pin.Y))
		v.Emit(EventPinsChanged, pin)
		return ClickResult{Pin: &pin}
	}

	child, hit := pins.HitChild(v.hit, v.Children(), t.ScreenToImage(sx, sy))
	if !hit {
		return ClickResult{}
	}
	target, found := pins.NavigationTarget(v.Tree(), child.ID)
	if !found {
		v.logger.Debug("child drawing not in tree", zap.String("drawing", child.ID))
		return ClickResult{}
	}
	v.Emit(EventNavigate, target)
	done := v.Select(ctx, target)
	return ClickResult{Target: &target, Done: done}
}

// Hover tracks the child drawing under the pointer.
func (v *Viewer) Hover(sx, sy float64) string {
	t := v.viewport.Transform()
	id := ""
	if child, ok := pins.HitChild(v.hit, v.Children(), t.ScreenToImage(sx, sy)); ok {
		id = child.ID
	}

	v.mu.Lock()
	changed := v.hovered != id
	v.hovered = id
	v.mu.Unlock()

	if changed {
		v.Emit(EventHover, id)
	}
	return id
}

// ClearHover forgets the hovered child, as when the pointer leaves the canvas.
func (v *Viewer) ClearHover() {
	v.mu.Lock()
	changed := v.hovered != ""
	v.hovered = ""
	v.mu.Unlock()

	if changed {
		v.Emit(EventHover, "")
	}
}

// RemovePin deletes an issue pin.
func (v *Viewer) RemovePin(id string) bool {
	if !v.board.Remove(id) {
		return false
	}
	v.Emit(EventPinsChanged, nil)
	return true
}

// SetPinStatus marks an issue pin open or resolved.
func (v *Viewer) SetPinStatus(id string, status drawing.PinStatus) bool {
	if !v.board.SetStatus(id, status) {
		return false
	}
	v.Emit(EventPinsChanged, nil)
	return true
}

// PinsForSelection lists the issue pins of the current selection.
func (v *Viewer) PinsForSelection() []drawing.IssuePin {
	sel, ok := v.Selection()
	if !ok {
		return nil
	}
	return v.board.ForSelection(sel)
}

// SetPinsVisible shows or hides issue pins.
func (v *Viewer) SetPinsVisible(on bool) {
	v.board.SetVisible(on)
	v.Emit(EventPinsChanged, nil)
}

// AddLocalRevision records a new revision for the current selection and puts
// it in front of its discipline's layers.
func (v *Viewer) AddLocalRevision(ctx context.Context, rev drawing.Revision) error {
	sel, ok := v.Selection()
	if !ok {
		return ErrNoSelection
	}
	if err := v.local.Append(ctx, sel.DrawingID, sel.Discipline, rev); err != nil {
		return fmt.Errorf("record revision: %w", err)
	}

	if !v.compositor.PrependLayer(sel.Discipline, rev) {
		revs, err := v.local.List(ctx, sel.DrawingID, sel.Discipline)
		if err != nil {
			return fmt.Errorf("local revisions of %s: %w", sel.Key(), err)
		}
		groups := revision.BuildLocal(sel.Discipline, v.drawingName(v.Drawing(), sel), revs)
		v.compositor.Rebuild(groups, sel, rev.Image)
	}

	v.mu.Lock()
	v.selection.RevisionVersion = rev.Version
	v.loaded = true
	sel = v.selection
	v.tree = v.tree.UpdateLatest(sel.DrawingID, sel.Discipline, rev)
	tree := v.tree
	v.mu.Unlock()
	v.compositor.SetRevision(rev.Version)

	v.Emit(EventTreeLoaded, tree)
	v.Emit(EventSelectionChanged, sel)
	v.Emit(EventLayersChanged, nil)
	return nil
}

// AddDrawing lists a drawing that is not in the metadata, such as an upload,
// and records its first revision in the local store.
func (v *Viewer) AddDrawing(ctx context.Context, node drawing.TreeNode) error {
	if node.LatestRevision != nil {
		if err := v.local.Append(ctx, node.DrawingID, node.Discipline, *node.LatestRevision); err != nil {
			return fmt.Errorf("record revision: %w", err)
		}
	}

	v.mu.Lock()
	v.tree = v.tree.Add(node)
	tree := v.tree
	v.mu.Unlock()

	v.Emit(EventTreeLoaded, tree)
	return nil
}

// RemoveDrawing drops a drawing from the tree and forgets its local
// revisions. Removing the selected drawing clears the selection.
func (v *Viewer) RemoveDrawing(ctx context.Context, drawingID, discipline string) error {
	if err := v.local.Delete(ctx, drawingID, discipline); err != nil {
		return fmt.Errorf("delete local revisions: %w", err)
	}

	v.seq.Lock()
	v.mu.Lock()
	v.tree = v.tree.Remove(drawingID, discipline)
	tree := v.tree
	wasSelected := v.hasSelection && v.selection.DrawingID == drawingID && v.selection.Discipline == discipline
	if wasSelected {
		v.generation++
		v.hasSelection = false
		v.loaded = false
		v.selection = drawing.Selection{}
		v.current = nil
		v.children = nil
		v.compositor.Rebuild(nil, drawing.Selection{}, "")
	}
	v.mu.Unlock()
	if wasSelected {
		v.viewport.Reset()
	}
	v.seq.Unlock()

	v.Emit(EventTreeLoaded, tree)
	if wasSelected {
		v.Emit(EventSelectionChanged, drawing.Selection{})
		v.Emit(EventLayersChanged, nil)
	}
	return nil
}

// Refresh reloads the tree and, when a drawing is selected, selects it again.
func (v *Viewer) Refresh(ctx context.Context) (<-chan struct{}, error) {
	if err := v.LoadTree(ctx); err != nil {
		return nil, err
	}
	sel, ok := v.Selection()
	if !ok {
		return nil, nil
	}
	return v.Select(ctx, sel), nil
}
