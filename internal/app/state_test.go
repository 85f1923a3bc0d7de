package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drawing-viewer/internal/drawing"
	"drawing-viewer/internal/localrev"
	"drawing-viewer/internal/metadata"
	"drawing-viewer/pkg/geometry"
)

func strPtr(s string) *string { return &s }

func square(x0, y0, x1, y1 float64) [][2]float64 {
	return [][2]float64{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}}
}

func testMetadata() *drawing.Metadata {
	return &drawing.Metadata{
		Project:     drawing.Project{Name: "Sample"},
		Disciplines: []drawing.DisciplineInfo{{Name: "건축"}, {Name: "구조"}},
		Drawings: drawing.Drawings{
			{ID: "00", Name: "배치도", Image: "00.png"},
			{
				ID: "01", Name: "101동", Image: "01.png", Parent: strPtr("00"),
				Position: &drawing.Position{Vertices: square(100, 100, 300, 200)},
				Disciplines: drawing.Disciplines{
					{Name: "건축", Revisions: []drawing.Revision{
						{Version: "REV1", Image: "a1.png", Date: "2025-01-01"},
						{Version: "REV2", Image: "a2.png", Date: "2025-02-01"},
					}},
					{Name: "구조", Revisions: []drawing.Revision{
						{Version: "S1", Image: "s1.png", Date: "2025-01-01"},
					}},
				},
			},
			{
				ID: "03", Name: "103동", Image: "03.png", Parent: strPtr("00"),
				Position: &drawing.Position{Vertices: square(400, 100, 500, 200)},
				Disciplines: drawing.Disciplines{
					{Name: "구조", Revisions: []drawing.Revision{
						{Version: "S1", Image: "s3.png", Date: "2025-01-01"},
					}},
				},
			},
			{ID: "02", Name: "업로드", Image: "02.png", Parent: strPtr("00")},
		},
	}
}

// gatedProvider wraps a static provider; DrawingByID blocks on a gate when
// one is registered for the id.
type gatedProvider struct {
	*metadata.FileProvider

	mu    sync.Mutex
	gates map[string]chan struct{}
	err   error
}

func newGatedProvider() *gatedProvider {
	return &gatedProvider{
		FileProvider: metadata.NewStaticProvider(testMetadata()),
		gates:        map[string]chan struct{}{},
	}
}

func (p *gatedProvider) gate(id string) chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	ch := make(chan struct{})
	p.gates[id] = ch
	return ch
}

func (p *gatedProvider) setErr(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

func (p *gatedProvider) DrawingByID(ctx context.Context, id string) (*drawing.Drawing, error) {
	p.mu.Lock()
	gate := p.gates[id]
	err := p.err
	p.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return p.FileProvider.DrawingByID(ctx, id)
}

var sizes = map[string]geometry.Size{
	"00.png": {Width: 1000, Height: 500},
	"a1.png": {Width: 1000, Height: 1000},
	"a2.png": {Width: 2000, Height: 1000},
	"s1.png": {Width: 1000, Height: 500},
	"s3.png": {Width: 400, Height: 400},
	"l1.png": {Width: 800, Height: 400},
	"l2.png": {Width: 800, Height: 400},
}

func fakeSize(_ context.Context, path string) (geometry.Size, error) {
	s, ok := sizes[path]
	if !ok {
		return geometry.Size{}, errors.New("no such image")
	}
	return s, nil
}

type recorder struct {
	mu     sync.Mutex
	events map[EventType][]interface{}
}

func record(v *Viewer, types ...EventType) *recorder {
	r := &recorder{events: map[EventType][]interface{}{}}
	for _, et := range types {
		et := et
		v.On(et, func(data interface{}) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.events[et] = append(r.events[et], data)
		})
	}
	return r
}

func (r *recorder) get(et EventType) []interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]interface{}(nil), r.events[et]...)
}

func newViewer(t *testing.T, p metadata.Provider, opts ...Option) *Viewer {
	t.Helper()
	opts = append([]Option{WithSizeFunc(fakeSize)}, opts...)
	v := NewViewer(p, opts...)
	v.Viewport().SetContainerSize(1048, 548)
	require.NoError(t, v.LoadTree(context.Background()))
	return v
}

func wait(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for selection")
	}
}

func TestSelectBuildsLayersAndFits(t *testing.T) {
	v := newViewer(t, newGatedProvider())
	rec := record(v, EventSelectionChanged, EventLayersChanged, EventTransformChanged)

	wait(t, v.Select(context.Background(), drawing.Selection{DrawingID: "01", Discipline: "건축", RevisionVersion: "REV2"}))

	groups := v.Groups()
	require.Len(t, groups, 2)
	assert.Equal(t, "건축", groups[0].Discipline)
	assert.True(t, groups[0].Visible)
	assert.False(t, groups[1].Visible)

	list := v.DrawList()
	require.NotNil(t, list.Base)
	assert.Equal(t, "a2.png", list.Base.Image)

	assert.Equal(t, geometry.Transform{X: 24, Y: 24, Scale: 0.5}, v.Transform())
	assert.Len(t, rec.get(EventSelectionChanged), 1)
	assert.NotEmpty(t, rec.get(EventLayersChanged))
	assert.NotEmpty(t, rec.get(EventTransformChanged))

	require.NotNil(t, v.Drawing())
	assert.Equal(t, "101동", v.Drawing().Name)
}

func TestSelectResetsViewportAndCompare(t *testing.T) {
	p := newGatedProvider()
	v := newViewer(t, p)
	ctx := context.Background()

	wait(t, v.Select(ctx, drawing.Selection{DrawingID: "01", Discipline: "건축"}))
	v.SetCompareMode(true)
	v.Wheel(10, 10, -1)

	gate := p.gate("03")
	done := v.Select(ctx, drawing.Selection{DrawingID: "03", Discipline: "구조"})
	assert.Equal(t, geometry.IdentityTransform(), v.Transform(), "reset before the new image arrives")
	assert.False(t, v.Compositor().CompareMode())
	close(gate)
	wait(t, done)
}

func TestStaleResponseDiscarded(t *testing.T) {
	p := newGatedProvider()
	v := newViewer(t, p)
	ctx := context.Background()

	gateA := p.gate("01")
	doneA := v.Select(ctx, drawing.Selection{DrawingID: "01", Discipline: "건축", RevisionVersion: "REV2"})
	doneB := v.Select(ctx, drawing.Selection{DrawingID: "03", Discipline: "구조", RevisionVersion: "S1"})
	wait(t, doneB)

	close(gateA)
	wait(t, doneA)

	groups := v.Groups()
	require.Len(t, groups, 1)
	assert.Equal(t, "구조", groups[0].Discipline)
	assert.Equal(t, "s3.png", v.DrawList().Base.Image)
	assert.Equal(t, geometry.Transform{X: 274, Y: 24, Scale: 1.25}, v.Transform())

	sel, ok := v.Selection()
	require.True(t, ok)
	assert.Equal(t, "03", sel.DrawingID)
	assert.Equal(t, "103동", v.Drawing().Name)
}

func TestFetchFailure(t *testing.T) {
	p := newGatedProvider()
	v := newViewer(t, p)
	rec := record(v, EventFetchFailed)
	ctx := context.Background()

	wait(t, v.Select(ctx, drawing.Selection{DrawingID: "01", Discipline: "건축"}))
	require.NotEmpty(t, v.Groups())

	boom := errors.New("backend down")
	p.setErr(boom)
	wait(t, v.Select(ctx, drawing.Selection{DrawingID: "03", Discipline: "구조"}))

	assert.Empty(t, v.Groups())
	assert.True(t, v.DrawList().Empty())
	failures := rec.get(EventFetchFailed)
	require.Len(t, failures, 1)
	assert.ErrorIs(t, failures[0].(error), boom)
}

func TestStaleFailureIgnored(t *testing.T) {
	p := newGatedProvider()
	v := newViewer(t, p)
	rec := record(v, EventFetchFailed)
	ctx := context.Background()

	cancelled, cancel := context.WithCancel(ctx)
	p.gate("01")
	doneA := v.Select(cancelled, drawing.Selection{DrawingID: "01", Discipline: "건축"})
	wait(t, v.Select(ctx, drawing.Selection{DrawingID: "03", Discipline: "구조"}))
	cancel()
	wait(t, doneA)

	assert.Empty(t, rec.get(EventFetchFailed))
	assert.Len(t, v.Groups(), 1)
}

func TestUnknownDrawingFails(t *testing.T) {
	v := newViewer(t, newGatedProvider())
	rec := record(v, EventFetchFailed)
	wait(t, v.Select(context.Background(), drawing.Selection{DrawingID: "99", Discipline: "건축"}))

	failures := rec.get(EventFetchFailed)
	require.Len(t, failures, 1)
	assert.ErrorIs(t, failures[0].(error), drawing.ErrNotFound)
}

func TestSitePlanShowsDrawingImage(t *testing.T) {
	v := newViewer(t, newGatedProvider())
	wait(t, v.Select(context.Background(), drawing.Selection{DrawingID: "00", Discipline: drawing.AllDisciplines}))

	assert.Empty(t, v.Groups())
	require.NotNil(t, v.DrawList().Base)
	assert.Equal(t, "00.png", v.DrawList().Base.Image)
	assert.Equal(t, geometry.Transform{X: 24, Y: 24, Scale: 1}, v.Transform())
	assert.Len(t, v.Children(), 3)
}

func TestClickNavigatesIntoChild(t *testing.T) {
	v := newViewer(t, newGatedProvider())
	rec := record(v, EventNavigate)
	ctx := context.Background()
	wait(t, v.Select(ctx, drawing.Selection{DrawingID: "00", Discipline: drawing.AllDisciplines}))

	s := v.Transform().ImageToScreen(200, 150)
	res := v.Click(ctx, s.X, s.Y)
	require.NotNil(t, res.Target)
	wait(t, res.Done)

	want := drawing.Selection{DrawingID: "01", Discipline: "건축", RevisionVersion: "REV2"}
	assert.Equal(t, want, *res.Target)
	sel, _ := v.Selection()
	assert.Equal(t, want, sel)
	require.Len(t, rec.get(EventNavigate), 1)
	assert.Equal(t, want, rec.get(EventNavigate)[0])
}

func TestClickOutsidePolygonsIsNoop(t *testing.T) {
	v := newViewer(t, newGatedProvider())
	ctx := context.Background()
	wait(t, v.Select(ctx, drawing.Selection{DrawingID: "00", Discipline: drawing.AllDisciplines}))

	s := v.Transform().ImageToScreen(900, 450)
	res := v.Click(ctx, s.X, s.Y)
	assert.Nil(t, res.Target)
	assert.Nil(t, res.Pin)
	sel, _ := v.Selection()
	assert.Equal(t, "00", sel.DrawingID)
}

func TestHover(t *testing.T) {
	v := newViewer(t, newGatedProvider())
	rec := record(v, EventHover)
	wait(t, v.Select(context.Background(), drawing.Selection{DrawingID: "00", Discipline: drawing.AllDisciplines}))

	in := v.Transform().ImageToScreen(450, 150)
	out := v.Transform().ImageToScreen(900, 450)
	assert.Equal(t, "03", v.Hover(in.X, in.Y))
	assert.Equal(t, "03", v.Hover(in.X+1, in.Y))
	assert.Equal(t, "", v.Hover(out.X, out.Y))
	assert.Equal(t, []interface{}{"03", ""}, rec.get(EventHover))

	v.Hover(in.X, in.Y)
	v.ClearHover()
	v.ClearHover()
	assert.Equal(t, "", v.Hovered())
	assert.Equal(t, []interface{}{"03", "", "03", ""}, rec.get(EventHover))
}

func TestPinPlacementClick(t *testing.T) {
	v := newViewer(t, newGatedProvider(), WithReporter("tester"))
	rec := record(v, EventPinsChanged, EventPlacementChanged)
	ctx := context.Background()
	wait(t, v.Select(ctx, drawing.Selection{DrawingID: "00", Discipline: drawing.AllDisciplines}))
	v.Viewport().SetTransform(geometry.Transform{X: 50, Y: 50, Scale: 2})

	v.BeginPinPlacement()
	v.PointerDown(150, 150, 0)
	assert.False(t, v.Viewport().Dragging(), "placement suppresses dragging")

	// Inside child 01's outline, but placement wins over navigation.
	res := v.Click(ctx, 150, 150)
	require.NotNil(t, res.Pin)
	assert.Nil(t, res.Target)
	assert.Equal(t, 50.0, res.Pin.X)
	assert.Equal(t, 50.0, res.Pin.Y)
	assert.Equal(t, "tester", res.Pin.Reporter)
	assert.False(t, v.Board().Placing())

	v.Viewport().SetTransform(geometry.IdentityTransform())
	screen := v.ScreenPins()
	require.Len(t, screen, 1)
	assert.Equal(t, 50.0, screen[0].X)
	assert.Equal(t, 50.0, screen[0].Y)

	assert.Len(t, rec.get(EventPinsChanged), 1)
	assert.Equal(t, []interface{}{true, false}, rec.get(EventPlacementChanged))

	v.PointerDown(0, 0, 0)
	assert.True(t, v.Viewport().Dragging())
	v.PointerUp()

	assert.True(t, v.SetPinStatus(res.Pin.ID, drawing.PinResolved))
	assert.False(t, v.SetPinStatus("missing", drawing.PinResolved))
	listed := v.PinsForSelection()
	require.Len(t, listed, 1)
	assert.Equal(t, drawing.PinResolved, listed[0].Status)

	assert.True(t, v.RemovePin(res.Pin.ID))
	assert.Empty(t, v.ScreenPins())
	assert.Empty(t, v.PinsForSelection())
}

func TestCancelPinPlacement(t *testing.T) {
	v := newViewer(t, newGatedProvider())
	ctx := context.Background()
	wait(t, v.Select(ctx, drawing.Selection{DrawingID: "00", Discipline: drawing.AllDisciplines}))

	v.BeginPinPlacement()
	v.CancelPinPlacement()
	assert.False(t, v.Board().Placing())
	res := v.Click(ctx, 5000, 5000)
	assert.Nil(t, res.Pin)
}

func TestSetRevisionVersion(t *testing.T) {
	v := newViewer(t, newGatedProvider())
	ctx := context.Background()

	_, err := v.SetRevisionVersion(ctx, "REV1")
	assert.ErrorIs(t, err, ErrNoSelection)

	wait(t, v.Select(ctx, drawing.Selection{DrawingID: "01", Discipline: "건축", RevisionVersion: "REV2"}))
	done, err := v.SetRevisionVersion(ctx, "REV1")
	require.NoError(t, err)
	wait(t, done)

	assert.Equal(t, "a1.png", v.DrawList().Base.Image)
	assert.Equal(t, geometry.Transform{X: 274, Y: 24, Scale: 0.5}, v.Transform())
	sel, _ := v.Selection()
	assert.Equal(t, "REV1", sel.RevisionVersion)
}

// gatedSizes wraps fakeSize; lookups block while a gate is registered for
// the path.
type gatedSizes struct {
	mu    sync.Mutex
	gates map[string]chan struct{}
}

func (g *gatedSizes) gate(path string) chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.gates == nil {
		g.gates = map[string]chan struct{}{}
	}
	ch := make(chan struct{})
	g.gates[path] = ch
	return ch
}

func (g *gatedSizes) size(ctx context.Context, path string) (geometry.Size, error) {
	g.mu.Lock()
	gate := g.gates[path]
	g.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return geometry.Size{}, ctx.Err()
		}
	}
	return fakeSize(ctx, path)
}

func TestSetRevisionVersionResetsViewport(t *testing.T) {
	g := &gatedSizes{}
	v := newViewer(t, newGatedProvider(), WithSizeFunc(g.size))
	ctx := context.Background()

	wait(t, v.Select(ctx, drawing.Selection{DrawingID: "01", Discipline: "건축", RevisionVersion: "REV2"}))
	v.Wheel(10, 10, -1)
	require.NotEqual(t, geometry.IdentityTransform(), v.Transform())

	release := g.gate("a1.png")
	done, err := v.SetRevisionVersion(ctx, "REV1")
	require.NoError(t, err)
	assert.Equal(t, geometry.IdentityTransform(), v.Transform())

	close(release)
	wait(t, done)
	assert.Equal(t, geometry.Transform{X: 274, Y: 24, Scale: 0.5}, v.Transform())
}

func TestSetRevisionVersionLatestFitWins(t *testing.T) {
	g := &gatedSizes{}
	v := newViewer(t, newGatedProvider(), WithSizeFunc(g.size))
	ctx := context.Background()

	wait(t, v.Select(ctx, drawing.Selection{DrawingID: "01", Discipline: "건축", RevisionVersion: "REV2"}))

	release := g.gate("a1.png")
	first, err := v.SetRevisionVersion(ctx, "REV1")
	require.NoError(t, err)
	second, err := v.SetRevisionVersion(ctx, "REV2")
	require.NoError(t, err)
	wait(t, second)
	assert.Equal(t, geometry.Transform{X: 24, Y: 24, Scale: 0.5}, v.Transform())

	close(release)
	wait(t, first)
	assert.Equal(t, "a2.png", v.DrawList().Base.Image)
	assert.Equal(t, geometry.Transform{X: 24, Y: 24, Scale: 0.5}, v.Transform())
}

func TestSetRevisionVersionWhileLoading(t *testing.T) {
	p := newGatedProvider()
	v := newViewer(t, p)
	ctx := context.Background()

	release := p.gate("01")
	first := v.Select(ctx, drawing.Selection{DrawingID: "01", Discipline: "건축", RevisionVersion: "REV2"})
	second, err := v.SetRevisionVersion(ctx, "REV1")
	require.NoError(t, err)

	close(release)
	wait(t, first)
	wait(t, second)

	sel, _ := v.Selection()
	assert.Equal(t, "REV1", sel.RevisionVersion)
	assert.Equal(t, "REV1", v.Compositor().Selection().RevisionVersion)
	require.NotNil(t, v.DrawList().Base)
	assert.Equal(t, "a1.png", v.DrawList().Base.Image)
	assert.Equal(t, geometry.Transform{X: 274, Y: 24, Scale: 0.5}, v.Transform())
}

func TestInterleavedSelectKeepsNewestLayers(t *testing.T) {
	v := newViewer(t, newGatedProvider())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			<-v.Select(ctx, drawing.Selection{DrawingID: "03", Discipline: "구조"})
		}()
		go func() {
			defer wg.Done()
			<-v.Select(ctx, drawing.Selection{DrawingID: "01", Discipline: "건축"})
		}()
	}
	wg.Wait()

	sel, ok := v.Selection()
	require.True(t, ok)
	list := v.DrawList()
	require.NotNil(t, list.Base)
	assert.Equal(t, sel, v.Compositor().Selection())
	want := map[string]string{"01": "a2.png", "03": "s3.png"}[sel.DrawingID]
	assert.Equal(t, want, list.Base.Image)
}

func TestLayerControls(t *testing.T) {
	v := newViewer(t, newGatedProvider())
	rec := record(v, EventLayersChanged)
	wait(t, v.Select(context.Background(), drawing.Selection{DrawingID: "01", Discipline: "건축"}))
	before := len(rec.get(EventLayersChanged))

	v.SetCompareMode(true)
	assert.True(t, v.ToggleGroup("구조"))
	v.SetLayerOpacity("구조", "S1", 0.3)
	v.SetLayerOpacity("구조", "missing", 0.3)

	list := v.DrawList()
	require.Len(t, list.Overlays, 2)
	assert.Equal(t, 0.3, list.Overlays[1].Opacity)
	assert.Len(t, rec.get(EventLayersChanged), before+3)
}

func TestLocalFallbackAndRevisions(t *testing.T) {
	store := localrev.NewMemoryStore()
	v := newViewer(t, newGatedProvider(), WithLocalStore(store))
	ctx := context.Background()

	require.NoError(t, v.AddDrawing(ctx, drawing.TreeNode{
		DrawingID:      "02",
		DrawingName:    "업로드",
		Discipline:     "건축",
		LatestRevision: &drawing.Revision{Version: "L1", Image: "l1.png", Date: "2025-01-01"},
		RevisionCount:  1,
	}))
	_, ok := v.Tree().Node("02", "건축")
	require.True(t, ok)

	wait(t, v.Select(ctx, drawing.Selection{DrawingID: "02", Discipline: "건축", RevisionVersion: "L1"}))
	groups := v.Groups()
	require.Len(t, groups, 1)
	assert.Equal(t, "업로드", groups[0].DrawingName)
	assert.Equal(t, "l1.png", v.DrawList().Base.Image)
	assert.Equal(t, geometry.Transform{X: 24, Y: 24, Scale: 1.25}, v.Transform())

	require.NoError(t, v.AddLocalRevision(ctx, drawing.Revision{Version: "L2", Image: "l2.png", Date: "2025-02-01"}))
	groups = v.Groups()
	require.Len(t, groups[0].Layers, 2)
	assert.Equal(t, "L2", groups[0].Layers[0].Revision.Version)
	assert.Equal(t, 0.6, groups[0].Layers[1].Opacity)
	assert.Equal(t, "l2.png", v.DrawList().Base.Image)

	node, _ := v.Tree().Node("02", "건축")
	assert.Equal(t, "L2", node.LatestVersion())
	assert.Equal(t, 2, node.RevisionCount)

	// Selecting again rebuilds from the store.
	wait(t, v.Select(ctx, drawing.Selection{DrawingID: "02", Discipline: "건축"}))
	assert.Len(t, v.Groups()[0].Layers, 2)

	// The reloaded tree keeps the local node.
	require.NoError(t, v.LoadTree(ctx))
	_, ok = v.Tree().Node("02", "건축")
	assert.True(t, ok)
}

func TestAddLocalRevisionToMetadataDrawing(t *testing.T) {
	v := newViewer(t, newGatedProvider())
	ctx := context.Background()

	assert.ErrorIs(t, v.AddLocalRevision(ctx, drawing.Revision{Version: "X"}), ErrNoSelection)

	wait(t, v.Select(ctx, drawing.Selection{DrawingID: "01", Discipline: "건축", RevisionVersion: "REV2"}))
	require.NoError(t, v.AddLocalRevision(ctx, drawing.Revision{Version: "REV3", Image: "a3.png", Date: "2025-03-01"}))

	layers := v.Groups()[0].Layers
	require.Len(t, layers, 3)
	assert.Equal(t, "REV3", layers[0].Revision.Version)
	assert.Equal(t, 1.0, layers[0].Opacity)
	assert.Equal(t, 0.6, layers[1].Opacity)
	assert.Equal(t, "a3.png", v.DrawList().Base.Image)
}

func TestRemoveDrawing(t *testing.T) {
	v := newViewer(t, newGatedProvider())
	ctx := context.Background()
	wait(t, v.Select(ctx, drawing.Selection{DrawingID: "01", Discipline: "건축"}))

	require.NoError(t, v.RemoveDrawing(ctx, "03", "구조"))
	_, ok := v.Selection()
	assert.True(t, ok, "removing another drawing keeps the selection")

	require.NoError(t, v.RemoveDrawing(ctx, "01", "건축"))
	_, ok = v.Selection()
	assert.False(t, ok)
	assert.True(t, v.DrawList().Empty())
	_, found := v.Tree().Node("01", "건축")
	assert.False(t, found)
	_, found = v.Tree().Node("01", "구조")
	assert.True(t, found)
}

func TestLoadTreeFailure(t *testing.T) {
	p := metadata.NewFileProvider(filepath.Join(t.TempDir(), "missing.json"), nil)
	v := NewViewer(p)
	rec := record(v, EventFetchFailed)

	assert.Error(t, v.LoadTree(context.Background()))
	assert.Len(t, rec.get(EventFetchFailed), 1)
}

func TestRefresh(t *testing.T) {
	v := newViewer(t, newGatedProvider())
	ctx := context.Background()

	done, err := v.Refresh(ctx)
	require.NoError(t, err)
	assert.Nil(t, done)

	wait(t, v.Select(ctx, drawing.Selection{DrawingID: "01", Discipline: "건축"}))
	done, err = v.Refresh(ctx)
	require.NoError(t, err)
	wait(t, done)
	assert.Len(t, v.Groups(), 2)
}

func TestFileWatcher(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0644))

	assert.Nil(t, NewFileWatcher(filepath.Join(t.TempDir(), "nope"), time.Second))

	w := NewFileWatcher(path, time.Hour)
	require.NotNil(t, w)
	fired := 0
	w.OnChange(func() { fired++ })

	assert.False(t, w.Check())

	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))
	assert.True(t, w.Check())
	assert.False(t, w.Check(), "fires once per modification")
	assert.Equal(t, 1, fired)

	w.Start()
	w.Stop()
	w.Stop()
}
