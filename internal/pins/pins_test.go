package pins

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drawing-viewer/internal/drawing"
	"drawing-viewer/pkg/geometry"
)

func children() []drawing.Drawing {
	return []drawing.Drawing{
		{ID: "02", Name: "no position"},
		{ID: "01", Position: &drawing.Position{Vertices: [][2]float64{{10, 10}, {110, 10}, {110, 60}, {10, 60}}}},
		{ID: "03", Position: &drawing.Position{Vertices: [][2]float64{{100, 50}, {200, 50}, {200, 100}, {100, 100}}}},
		{ID: "04", Position: &drawing.Position{Vertices: [][2]float64{{0, 0}, {1, 1}}}},
	}
}

func TestHitChild(t *testing.T) {
	hit, ok := HitChild(nil, children(), geometry.Point2D{X: 50, Y: 30})
	require.True(t, ok)
	assert.Equal(t, "01", hit.ID)

	// Overlapping outlines resolve to the first child in order.
	hit, ok = HitChild(RayCaster{}, children(), geometry.Point2D{X: 105, Y: 55})
	require.True(t, ok)
	assert.Equal(t, "01", hit.ID)

	hit, ok = HitChild(RayCaster{}, children(), geometry.Point2D{X: 150, Y: 80})
	require.True(t, ok)
	assert.Equal(t, "03", hit.ID)

	_, ok = HitChild(RayCaster{}, children(), geometry.Point2D{X: 500, Y: 500})
	assert.False(t, ok)
}

func TestHitChildCustomTester(t *testing.T) {
	var calls int
	never := HitTesterFunc(func([]geometry.Point2D, geometry.Point2D) bool {
		calls++
		return false
	})
	_, ok := HitChild(never, children(), geometry.Point2D{X: 50, Y: 30})
	assert.False(t, ok)
	assert.Equal(t, 2, calls, "children without a usable outline are not tested")
}

func testTree() drawing.Tree {
	return drawing.Tree{
		{Discipline: drawing.AllDisciplines, Nodes: []drawing.TreeNode{{DrawingID: "00"}, {DrawingID: "01"}}},
		{Discipline: "건축", Nodes: []drawing.TreeNode{{DrawingID: "02", LatestRevision: &drawing.Revision{Version: "REV2"}}}},
		{Discipline: "구조", Nodes: []drawing.TreeNode{{DrawingID: "01", LatestRevision: &drawing.Revision{Version: "S3"}}}},
		{Discipline: "소방", Nodes: []drawing.TreeNode{{DrawingID: "01"}}},
	}
}

func TestNavigationTarget(t *testing.T) {
	sel, ok := NavigationTarget(testTree(), "01")
	require.True(t, ok)
	assert.Equal(t, drawing.Selection{DrawingID: "01", Discipline: "구조", RevisionVersion: "S3"}, sel)

	_, ok = NavigationTarget(testTree(), "00")
	assert.False(t, ok, "the site-plan section is never a target")

	_, ok = NavigationTarget(testTree(), "99")
	assert.False(t, ok)
}

func TestPinRoundTrip(t *testing.T) {
	b := NewBoard("tester")
	sel := drawing.Selection{DrawingID: "01", Discipline: "건축", RevisionVersion: "REV1"}

	b.BeginPlacement()
	pin, ok := b.Place(geometry.Transform{X: 50, Y: 50, Scale: 2}, 150, 150, sel)
	require.True(t, ok)
	assert.Equal(t, 50.0, pin.X)
	assert.Equal(t, 50.0, pin.Y)
	assert.False(t, b.Placing(), "placement ends after one pin")

	screen := b.ScreenPins(geometry.IdentityTransform(), sel)
	require.Len(t, screen, 1)
	assert.Equal(t, 50.0, screen[0].X)
	assert.Equal(t, 50.0, screen[0].Y)
}

func TestPlaceRequiresPlacementMode(t *testing.T) {
	b := NewBoard("")
	_, ok := b.Place(geometry.IdentityTransform(), 1, 1, drawing.Selection{})
	assert.False(t, ok)

	b.BeginPlacement()
	b.CancelPlacement()
	_, ok = b.Place(geometry.IdentityTransform(), 1, 1, drawing.Selection{})
	assert.False(t, ok)
	assert.Empty(t, b.All())
}

func TestPinFields(t *testing.T) {
	b := NewBoard("kim")
	sel := drawing.Selection{DrawingID: "01", Discipline: "건축", RevisionVersion: "REV1"}

	b.BeginPlacement()
	first, _ := b.Place(geometry.IdentityTransform(), 1, 1, sel)
	b.BeginPlacement()
	second, _ := b.Place(geometry.IdentityTransform(), 2, 2, sel)
	b.BeginPlacement()
	other, _ := b.Place(geometry.IdentityTransform(), 3, 3, drawing.Selection{DrawingID: "01", Discipline: "건축", RevisionVersion: "REV2"})

	_, err := uuid.Parse(first.ID)
	assert.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 1, first.IssueNumber)
	assert.Equal(t, 2, second.IssueNumber)
	assert.Equal(t, 1, other.IssueNumber, "numbering is per revision")
	assert.Equal(t, "New issue #2", second.Title)
	assert.Equal(t, "kim", second.Reporter)
	assert.Equal(t, drawing.PinOpen, second.Status)
}

func TestIssueNumbersNotReusedAfterRemove(t *testing.T) {
	b := NewBoard("")
	sel := drawing.Selection{DrawingID: "01", Discipline: "건축", RevisionVersion: "REV1"}
	place := func() drawing.IssuePin {
		b.BeginPlacement()
		pin, ok := b.Place(geometry.IdentityTransform(), 1, 1, sel)
		require.True(t, ok)
		return pin
	}

	first := place()
	place()
	third := place()
	require.True(t, b.Remove(first.ID))

	next := place()
	assert.Equal(t, 4, next.IssueNumber)

	require.True(t, b.Remove(third.ID))
	require.True(t, b.Remove(next.ID))
	assert.Equal(t, 3, place().IssueNumber)
}

func TestForSelectionAndVisibility(t *testing.T) {
	b := NewBoard("")
	b.Add(drawing.IssuePin{ID: "a", DrawingID: "01", Discipline: "건축", RevisionVersion: "REV1", X: 1, Y: 1})
	b.Add(drawing.IssuePin{ID: "b", DrawingID: "01", Discipline: "건축", RevisionVersion: "REV2", X: 2, Y: 2})
	b.Add(drawing.IssuePin{ID: "c", DrawingID: "01", Discipline: "구조", X: 3, Y: 3})
	b.Add(drawing.IssuePin{ID: "d", DrawingID: "02", Discipline: "건축", X: 4, Y: 4})

	sel := drawing.Selection{DrawingID: "01", Discipline: "건축", RevisionVersion: "REV2"}
	assert.Len(t, b.ForSelection(sel), 2)

	screen := b.ScreenPins(geometry.Transform{X: 10, Y: 0, Scale: 3}, sel)
	require.Len(t, screen, 2)
	assert.Equal(t, 13.0, screen[0].X)
	assert.Equal(t, 3.0, screen[0].Y)

	b.SetVisible(false)
	assert.Empty(t, b.ScreenPins(geometry.IdentityTransform(), sel))
	assert.Len(t, b.ForSelection(sel), 2)
}

func TestRemoveAndStatus(t *testing.T) {
	b := NewBoard("")
	b.Add(drawing.IssuePin{ID: "a"})
	b.Add(drawing.IssuePin{ID: "b"})

	assert.True(t, b.SetStatus("b", drawing.PinResolved))
	assert.False(t, b.SetStatus("z", drawing.PinResolved))
	assert.True(t, b.Remove("a"))
	assert.False(t, b.Remove("a"))

	all := b.All()
	require.Len(t, all, 1)
	assert.Equal(t, drawing.PinResolved, all[0].Status)
}
