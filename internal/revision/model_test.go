package revision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drawing-viewer/internal/drawing"
)

func rev(version, date string) drawing.Revision {
	return drawing.Revision{Version: version, Image: version + ".png", Date: date}
}

func testDrawing() *drawing.Drawing {
	return &drawing.Drawing{
		ID:   "01",
		Name: "101동",
		Disciplines: drawing.Disciplines{
			{
				Name:           "구조",
				ImageTransform: &drawing.ImageTransform{X: 5, Y: 5, Scale: 0.5},
				Revisions: []drawing.Revision{
					rev("S1", "2025-01-01"),
					{Version: "S2", Image: "s2.png", Date: "2025-02-01", ImageTransform: &drawing.ImageTransform{Scale: 2}},
				},
			},
			{
				Name: "건축",
				Revisions: []drawing.Revision{
					rev("REV1", "2025-01-01"),
				},
				Regions: drawing.Regions{
					{Name: "A", Revisions: []drawing.Revision{rev("A2", "2025-03-01")}},
					{Name: "B", Revisions: []drawing.Revision{rev("B1", "2025-02-01")}},
				},
			},
			{Name: "조경", Image: "landscape.png"},
			{Name: "소방"},
		},
	}
}

func versions(g Group) []string {
	out := make([]string, len(g.Layers))
	for i, l := range g.Layers {
		out[i] = l.Revision.Version
	}
	return out
}

func TestBuildOrdersNewestFirst(t *testing.T) {
	groups := Build(testDrawing(), "건축")
	require.Len(t, groups, 3)

	arch := groups[0]
	assert.Equal(t, "건축", arch.Discipline)
	assert.Equal(t, "101동", arch.DrawingName)
	assert.True(t, arch.Visible)
	assert.Equal(t, []string{"A2", "B1", "REV1"}, versions(arch))

	assert.Equal(t, 1.0, arch.Layers[0].Opacity)
	assert.Equal(t, 0.6, arch.Layers[1].Opacity)
	assert.Equal(t, 0.6, arch.Layers[2].Opacity)
}

func TestBuildSelectedFirstOnlyVisible(t *testing.T) {
	groups := Build(testDrawing(), "조경")
	require.Len(t, groups, 3)

	assert.Equal(t, "조경", groups[0].Discipline)
	assert.Equal(t, "구조", groups[1].Discipline)
	assert.Equal(t, "건축", groups[2].Discipline)

	for i, g := range groups {
		assert.Equal(t, i == 0, g.Visible, g.Discipline)
	}
	for _, l := range groups[2].Layers {
		assert.Equal(t, 0.6, l.Opacity)
	}
}

func TestBuildSynthesizesFromDisciplineImage(t *testing.T) {
	groups := Build(testDrawing(), "조경")
	landscape := groups[0]
	require.Len(t, landscape.Layers, 1)
	assert.Equal(t, "조경", landscape.Layers[0].Revision.Version)
	assert.Equal(t, "landscape.png", landscape.Layers[0].Revision.Image)
	assert.Equal(t, 1.0, landscape.Layers[0].Opacity)
}

func TestBuildDropsEmptyDisciplines(t *testing.T) {
	for _, g := range Build(testDrawing(), "소방") {
		assert.NotEqual(t, "소방", g.Discipline)
	}
}

func TestBuildColorsByPosition(t *testing.T) {
	groups := Build(testDrawing(), "건축")
	arch := groups[0]
	assert.Equal(t, "#374151", arch.Layers[0].Color)
	assert.Equal(t, "#6B7280", arch.Layers[1].Color)

	structural := groups[1]
	assert.Equal(t, "#B45309", structural.Layers[0].Color)
	assert.Equal(t, "#D97706", structural.Layers[1].Color)

	assert.Equal(t, "#374151", ColorAt("unknown", 4))
	assert.Equal(t, "#FDE68A", ColorAt("구조", 7))
}

func TestBuildImageTransformFallback(t *testing.T) {
	groups := Build(testDrawing(), "구조")
	structural := groups[0]
	require.Equal(t, []string{"S2", "S1"}, versions(structural))

	require.NotNil(t, structural.Layers[0].ImageTransform)
	assert.Equal(t, 2.0, structural.Layers[0].ImageTransform.Scale)

	require.NotNil(t, structural.Layers[1].ImageTransform)
	assert.Equal(t, 0.5, structural.Layers[1].ImageTransform.Scale)
	assert.Equal(t, 5.0, structural.Layers[1].ImageTransform.X)

	arch := groups[1]
	assert.Nil(t, arch.Layers[0].ImageTransform)
}

func TestBuildNil(t *testing.T) {
	assert.Nil(t, Build(nil, "건축"))
	assert.Empty(t, Build(&drawing.Drawing{ID: "02"}, "건축"))
}

func TestBuildLocal(t *testing.T) {
	assert.Nil(t, BuildLocal("건축", "업로드", nil))

	input := []drawing.Revision{
		rev("L1", "2025-01-01"),
		rev("L3", "2025-03-01"),
		rev("L2", "2025-02-01"),
	}
	groups := BuildLocal("건축", "업로드", input)
	require.Len(t, groups, 1)

	g := groups[0]
	assert.True(t, g.Visible)
	assert.Equal(t, "업로드", g.DrawingName)
	assert.Equal(t, []string{"L3", "L2", "L1"}, versions(g))
	assert.Equal(t, 1.0, g.Layers[0].Opacity)
	assert.Equal(t, 0.6, g.Layers[2].Opacity)
	assert.Equal(t, "L1", input[0].Version, "input is not reordered")
}

func TestGroupLookups(t *testing.T) {
	g := Build(testDrawing(), "건축")[0]

	newest, ok := g.Newest()
	require.True(t, ok)
	assert.Equal(t, "A2", newest.Revision.Version)

	l, ok := g.Layer("B1")
	require.True(t, ok)
	assert.Equal(t, "B1.png", l.Revision.Image)

	_, ok = g.Layer("missing")
	assert.False(t, ok)

	var empty *Group
	_, ok = empty.Newest()
	assert.False(t, ok)

	clone := g.Clone()
	clone.Layers[0].Opacity = 0.1
	assert.Equal(t, 1.0, g.Layers[0].Opacity)
}
